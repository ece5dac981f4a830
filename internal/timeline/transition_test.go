package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/framecast/framecast/internal/anim"
)

func fade(frames int) *Transition {
	return &Transition{
		Presentation: Presentation{Kind: PresentationFade},
		Timing:       Timing{DurationInFrames: frames},
	}
}

func TestTransitionSeriesShortensTotal(t *testing.T) {
	root, err := TransitionSeries(
		[]TransitionScene{
			{Name: "a", DurationInFrames: 60, Children: []Node{leaf("a")}},
			{Name: "b", DurationInFrames: 60, Children: []Node{leaf("b")}},
		},
		[]*Transition{fade(15)},
	)
	require.NoError(t, err)

	assert.Equal(t, 105, TotalDuration(root))
	assert.True(t, root.StrictDuration())

	// Scene b starts 15 frames before scene a ends.
	b := root.Children[1].(*Sequence)
	assert.Equal(t, 45, b.From)
}

func TestTransitionSeriesHardCut(t *testing.T) {
	root, err := TransitionSeries(
		[]TransitionScene{
			{DurationInFrames: 30},
			{DurationInFrames: 30},
		},
		[]*Transition{nil},
	)
	require.NoError(t, err)
	assert.Equal(t, 60, TotalDuration(root))
	// No overlap, no synthetic transition window.
	assert.Len(t, root.Children, 2)
}

func TestTransitionSeriesInsertsTransitionWindow(t *testing.T) {
	root, err := TransitionSeries(
		[]TransitionScene{
			{Name: "a", DurationInFrames: 60},
			{Name: "b", DurationInFrames: 60},
		},
		[]*Transition{fade(15)},
	)
	require.NoError(t, err)
	require.Len(t, root.Children, 3)

	window := root.Children[2].(*Sequence)
	assert.Equal(t, 45, window.From)
	assert.Equal(t, 15, window.DurationInFrames)

	tl := window.Children[0].(*TransitionLeaf)
	assert.Same(t, root.Children[0], tl.Out)
	assert.Same(t, root.Children[1], tl.In)
}

func TestTransitionSeriesValidation(t *testing.T) {
	tests := []struct {
		name        string
		scenes      []TransitionScene
		transitions []*Transition
	}{
		{"no scenes", nil, nil},
		{"transition count mismatch",
			[]TransitionScene{{DurationInFrames: 30}},
			[]*Transition{fade(5)}},
		{"zero scene duration",
			[]TransitionScene{{DurationInFrames: 0}, {DurationInFrames: 30}},
			[]*Transition{fade(5)}},
		{"zero transition duration",
			[]TransitionScene{{DurationInFrames: 30}, {DurationInFrames: 30}},
			[]*Transition{fade(0)}},
		{"transition longer than scene",
			[]TransitionScene{{DurationInFrames: 30}, {DurationInFrames: 20}},
			[]*Transition{fade(25)}},
		// Two transitions that together consume a middle scene entirely are
		// rejected, never clamped.
		{"middle scene fully consumed",
			[]TransitionScene{
				{DurationInFrames: 60},
				{DurationInFrames: 20},
				{DurationInFrames: 60},
			},
			[]*Transition{fade(10), fade(10)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TransitionSeries(tt.scenes, tt.transitions)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}
}

func TestTimingProgress(t *testing.T) {
	timing := Timing{DurationInFrames: 11}

	assert.Equal(t, 0.0, timing.Progress(0, 30))
	assert.InDelta(t, 0.5, timing.Progress(5, 30), 1e-9)
	assert.Equal(t, 1.0, timing.Progress(10, 30))
	assert.Equal(t, 1.0, timing.Progress(99, 30))
	assert.Equal(t, 0.0, timing.Progress(-1, 30))
}

func TestTimingProgressEased(t *testing.T) {
	timing := Timing{DurationInFrames: 11, Easing: anim.Quad}
	assert.InDelta(t, 0.25, timing.Progress(5, 30), 1e-9)
}

func TestTimingProgressSpringClamped(t *testing.T) {
	cfg := anim.SpringWobbly
	timing := Timing{DurationInFrames: 30, Spring: &cfg}

	assert.Equal(t, 1.0, timing.Progress(29, 30))
	for f := 0; f < 30; f++ {
		p := timing.Progress(f, 30)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	}
}
