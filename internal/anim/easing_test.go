package anim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEasingEndpoints(t *testing.T) {
	for name, e := range namedEasings {
		assert.InDelta(t, 0.0, e(0), 1e-9, "%s at 0", name)
		assert.InDelta(t, 1.0, e(1), 1e-9, "%s at 1", name)
	}
}

func TestOutMirrorsIn(t *testing.T) {
	out := Out(Cubic)
	for _, x := range []float64{0, 0.25, 0.5, 0.75, 1} {
		assert.InDelta(t, 1-Cubic(1-x), out(x), 1e-12)
	}
}

func TestInOutHalves(t *testing.T) {
	io := InOut(Quad)
	assert.InDelta(t, 0.5, io(0.5), 1e-12)
	// First half is compressed ease-in, second half its mirror.
	assert.InDelta(t, Quad(0.5)/2, io(0.25), 1e-12)
	assert.InDelta(t, 1-Quad(0.5)/2, io(0.75), 1e-12)
}

func TestBezier(t *testing.T) {
	linear := Bezier(0.25, 0.25, 0.75, 0.75)
	for _, x := range []float64{0, 0.2, 0.5, 0.8, 1} {
		assert.InDelta(t, x, linear(x), 1e-4, "x=%v", x)
	}

	easeCurve := Bezier(0.42, 0, 0.58, 1) // CSS "ease-in-out"
	assert.Equal(t, 0.0, easeCurve(0))
	assert.Equal(t, 1.0, easeCurve(1))
	assert.InDelta(t, 0.5, easeCurve(0.5), 1e-4)
	assert.Less(t, easeCurve(0.2), 0.2)
	assert.Greater(t, easeCurve(0.8), 0.8)
}

func TestEasingByName(t *testing.T) {
	e, err := EasingByName("in-out-cubic")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, e(0.5), 1e-9)

	_, err = EasingByName("zigzag")
	require.Error(t, err)
}
