package anim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want RGBA
	}{
		{"#000000", RGBA{0, 0, 0, 1}},
		{"#ffffff", RGBA{1, 1, 1, 1}},
		{"#f00", RGBA{1, 0, 0, 1}},
		{"#ff000080", RGBA{1, 0, 0, 128.0 / 255}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			require.NoError(t, err)
			assert.InDelta(t, tt.want.R, got.R, 1e-9)
			assert.InDelta(t, tt.want.G, got.G, 1e-9)
			assert.InDelta(t, tt.want.B, got.B, 1e-9)
			assert.InDelta(t, tt.want.A, got.A, 1e-9)
		})
	}

	for _, bad := range []string{"", "red", "#12345", "#gggggg"} {
		_, err := ParseColor(bad)
		assert.Error(t, err, "%q should not parse", bad)
	}
}

func TestHexRoundTrip(t *testing.T) {
	c, err := ParseColor("#3a7bd5")
	require.NoError(t, err)
	assert.Equal(t, "#3a7bd5", c.Hex())

	c, err = ParseColor("#3a7bd580")
	require.NoError(t, err)
	assert.Equal(t, "#3a7bd580", c.Hex())
}

func TestInterpolateColors(t *testing.T) {
	mid, err := InterpolateColors(15, []float64{0, 30}, []string{"#000000", "#ffffff"})
	require.NoError(t, err)
	assert.Equal(t, "#808080", mid)

	// Outside the range the nearest endpoint color wins; channels are never
	// extrapolated past the gamut.
	before, err := InterpolateColors(-100, []float64{0, 30}, []string{"#102030", "#ffffff"})
	require.NoError(t, err)
	assert.Equal(t, "#102030", before)

	after, err := InterpolateColors(500, []float64{0, 30}, []string{"#102030", "#ffffff"})
	require.NoError(t, err)
	assert.Equal(t, "#ffffff", after)
}

func TestInterpolateColorsErrors(t *testing.T) {
	_, err := InterpolateColors(0, []float64{0, 10, 20}, []string{"#000", "#fff"})
	var ire *InvalidRangeError
	require.ErrorAs(t, err, &ire)

	_, err = InterpolateColors(0, []float64{0, 10}, []string{"#000", "nope"})
	require.Error(t, err)
}
