package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/framecast/framecast/internal/registry"
	"github.com/framecast/framecast/internal/timeline"
)

const sampleManifest = `
version: "1"
assetRoot: assets
compositions:
  - id: promo
    width: 1280
    height: 720
    fps: 30
    durationInFrames: 105
    defaultProps:
      title: Hello
      background: "#101020"
    props:
      title: {type: string}
      background: {type: string, optional: true}
    timeline:
      - transitions:
          scenes:
            - name: intro
              durationInFrames: 60
              children:
                - leaf: {component: solid, props: {color: "$background"}}
                - sequence:
                    name: title
                    from: 10
                    durationInFrames: 50
                    premountFor: 5
                    children:
                      - leaf: {component: text, props: {text: "$title", fadeInFrames: 15}}
            - name: outro
              durationInFrames: 60
              children:
                - leaf: {component: gradient, props: {from: "#000000", to: "#3a7bd5"}}
          between:
            - presentation: wipe
              direction: right
              durationInFrames: 15
              easing: in-out-cubic

  - id: slides
    width: 640
    height: 360
    fps: 25
    durationInFrames: 195
    timeline:
      - series:
          items:
            - {name: a, durationInFrames: 60, children: [{leaf: {component: solid}}]}
            - {name: b, durationInFrames: 90, children: [{leaf: {component: solid}}]}
            - {name: c, durationInFrames: 45, children: [{leaf: {component: solid}}]}
`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "framecast.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAndBuild(t *testing.T) {
	m, err := Load(writeManifest(t, sampleManifest))
	require.NoError(t, err)
	require.Len(t, m.Comps, 2)

	reg := registry.New()
	require.NoError(t, m.Build(reg))

	promo, err := reg.Get("promo")
	require.NoError(t, err)
	assert.Equal(t, 1280, promo.Width)
	assert.Equal(t, 105, promo.DurationInFrames)
	assert.Equal(t, "Hello", promo.DefaultProps["title"])

	// The single transitions item becomes the root directly and keeps its
	// strict duration marker.
	root, ok := promo.Root.(*timeline.Sequence)
	require.True(t, ok)
	assert.True(t, root.StrictDuration())
	assert.Equal(t, 105, timeline.TotalDuration(root))

	slides, err := reg.Get("slides")
	require.NoError(t, err)
	assert.Equal(t, 195, timeline.TotalDuration(slides.Root))
}

func TestBuildValidatesProps(t *testing.T) {
	m, err := Load(writeManifest(t, sampleManifest))
	require.NoError(t, err)

	reg := registry.New()
	require.NoError(t, m.Build(reg))

	_, err = reg.Select("promo", map[string]any{"title": "ok"})
	assert.NoError(t, err)

	_, err = reg.Select("promo", map[string]any{"title": 42})
	assert.Error(t, err)
}

func TestLoadRejectsBadManifests(t *testing.T) {
	tests := map[string]string{
		"empty":           "",
		"no compositions": "version: \"1\"\ncompositions: []\n",
		"not yaml":        "{{{{",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeManifest(t, content))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestBuildRejectsBadTimelines(t *testing.T) {
	badDuration := `
compositions:
  - id: broken
    width: 100
    height: 100
    fps: 30
    durationInFrames: 200
    timeline:
      - transitions:
          scenes:
            - {durationInFrames: 60, children: [{leaf: {component: solid}}]}
            - {durationInFrames: 60, children: [{leaf: {component: solid}}]}
          between:
            - {presentation: fade, durationInFrames: 15}
`
	m, err := Load(writeManifest(t, badDuration))
	require.NoError(t, err)
	err = m.Build(registry.New())
	require.Error(t, err, "declared 200 frames but the chain totals 105")

	ambiguous := `
compositions:
  - id: broken
    width: 100
    height: 100
    fps: 30
    durationInFrames: 10
    timeline:
      - leaf: {component: solid}
        sequence: {durationInFrames: 10}
`
	m, err = Load(writeManifest(t, ambiguous))
	require.NoError(t, err)
	assert.Error(t, m.Build(registry.New()))
}

func TestUnknownNamesRejected(t *testing.T) {
	content := `
compositions:
  - id: x
    width: 100
    height: 100
    fps: 30
    durationInFrames: 120
    timeline:
      - transitions:
          scenes:
            - {durationInFrames: 70, children: [{leaf: {component: solid}}]}
            - {durationInFrames: 70, children: [{leaf: {component: solid}}]}
          between:
            - {presentation: teleport, durationInFrames: 20}
`
	m, err := Load(writeManifest(t, content))
	require.NoError(t, err)
	err = m.Build(registry.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "teleport")
}

func TestWriteRoundTrips(t *testing.T) {
	m, err := Load(writeManifest(t, sampleManifest))
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "roundtrip.yaml")
	require.NoError(t, Write(m, out))

	reloaded, err := Load(out)
	require.NoError(t, err)
	require.Len(t, reloaded.Comps, len(m.Comps))

	reg := registry.New()
	require.NoError(t, reloaded.Build(reg))
	promo, err := reg.Get("promo")
	require.NoError(t, err)
	assert.Equal(t, 105, timeline.TotalDuration(promo.Root))
}

func TestResolveAssetRoot(t *testing.T) {
	path := writeManifest(t, sampleManifest)
	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "assets"), m.ResolveAssetRoot())
}
