package engine

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/framecast/framecast/internal/asset"
	"github.com/framecast/framecast/internal/registry"
	"github.com/framecast/framecast/internal/schema"
	"github.com/framecast/framecast/internal/timeline"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	reg := registry.New()
	require.NoError(t, reg.Register(&registry.Composition{
		ID:               "promo",
		Width:            64,
		Height:           36,
		FPS:              30,
		DurationInFrames: 90,
		DefaultProps:     map[string]any{"title": "hi"},
		Schema: &schema.Schema{
			Kind:   schema.Object,
			Fields: map[string]*schema.Schema{"title": {Kind: schema.String}},
		},
		Root: &timeline.Sequence{
			DurationInFrames: 90,
			Children:         []timeline.Node{&timeline.Leaf{Component: "solid"}},
		},
	}))
	return New(reg, asset.NewManager(""), nil, log.New(io.Discard))
}

func TestRenderMediaUnknownComposition(t *testing.T) {
	e := testEngine(t)
	_, err := e.RenderMedia(context.Background(), Request{CompositionID: "nope"})
	var nfe *registry.NotFoundError
	require.ErrorAs(t, err, &nfe)
}

func TestRenderMediaRejectsBadProps(t *testing.T) {
	e := testEngine(t)
	_, err := e.RenderMedia(context.Background(), Request{
		CompositionID: "promo",
		Props:         map[string]any{"title": 7},
	})
	var serr *schema.Error
	require.ErrorAs(t, err, &serr)
}

func TestRenderMediaRejectsBadFrameRange(t *testing.T) {
	e := testEngine(t)
	for _, r := range [][2]int{{-1, 10}, {0, 91}, {50, 40}} {
		r := r
		_, err := e.RenderMedia(context.Background(), Request{
			CompositionID: "promo",
			FrameRange:    &r,
		})
		assert.Error(t, err, "range %v", r)
	}
}

func TestRenderMediaEmptyRangeCompletesImmediately(t *testing.T) {
	// A zero-length range never spawns an encoder, so no output path or
	// ffmpeg binary is needed.
	e := testEngine(t)
	r := [2]int{30, 30}
	report, err := e.RenderMedia(context.Background(), Request{
		CompositionID: "promo",
		FrameRange:    &r,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Frames)
	assert.NotEmpty(t, report.JobID)
	assert.Equal(t, "promo", report.Composition)
}
