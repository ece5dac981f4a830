// Package anim provides the pure numeric primitives leaf components use to
// map a frame number onto a style value: piecewise-linear interpolation,
// color interpolation, damped springs, and an easing curve library.
//
// Every function in this package is referentially transparent given
// (frame, fps, parameters). There is no hidden clock and no mutable state;
// the same inputs always produce the same output, which is what allows the
// render scheduler to compute frames out of order.
package anim

import (
	"fmt"
	"math"
)

// Extrapolation behavior outside the input range.
const (
	// ExtrapolateIdentity continues the slope of the boundary segment.
	ExtrapolateIdentity = "identity"
	// ExtrapolateClamp pins the output to the nearest range endpoint.
	ExtrapolateClamp = "clamp"
)

// InvalidRangeError reports a malformed input/output range.
type InvalidRangeError struct {
	Reason string
}

func (e *InvalidRangeError) Error() string {
	return "interpolate: " + e.Reason
}

// InterpolateOptions tunes extrapolation and per-segment easing.
type InterpolateOptions struct {
	ExtrapolateLeft  string // ExtrapolateIdentity (default) or ExtrapolateClamp
	ExtrapolateRight string
	// Easing remaps the normalized position within the matched segment
	// before the output is computed. Not applied while extrapolating.
	Easing Easing
}

// Interpolate maps frame through the piecewise-linear function defined by
// inputRange -> outputRange. inputRange must be strictly increasing and the
// two ranges must have equal length >= 2.
func Interpolate(frame float64, inputRange, outputRange []float64, opts *InterpolateOptions) (float64, error) {
	if err := checkRanges(inputRange, outputRange); err != nil {
		return 0, err
	}
	if opts == nil {
		opts = &InterpolateOptions{}
	}

	n := len(inputRange)
	if frame < inputRange[0] {
		if opts.ExtrapolateLeft == ExtrapolateClamp {
			return outputRange[0], nil
		}
		return extendSegment(frame, inputRange[0], inputRange[1], outputRange[0], outputRange[1]), nil
	}
	if frame > inputRange[n-1] {
		if opts.ExtrapolateRight == ExtrapolateClamp {
			return outputRange[n-1], nil
		}
		return extendSegment(frame, inputRange[n-2], inputRange[n-1], outputRange[n-2], outputRange[n-1]), nil
	}

	// Find the segment containing frame. Ranges are short in practice, so a
	// linear scan beats anything clever.
	seg := n - 2
	for i := 0; i < n-1; i++ {
		if frame < inputRange[i+1] {
			seg = i
			break
		}
	}

	t := (frame - inputRange[seg]) / (inputRange[seg+1] - inputRange[seg])
	if opts.Easing != nil {
		t = opts.Easing(t)
	}
	return outputRange[seg] + t*(outputRange[seg+1]-outputRange[seg]), nil
}

func extendSegment(x, x0, x1, y0, y1 float64) float64 {
	return y0 + (x-x0)/(x1-x0)*(y1-y0)
}

func checkRanges(inputRange, outputRange []float64) error {
	if len(inputRange) < 2 {
		return &InvalidRangeError{Reason: "input range needs at least 2 points"}
	}
	if len(inputRange) != len(outputRange) {
		return &InvalidRangeError{
			Reason: fmt.Sprintf("range length mismatch: %d inputs vs %d outputs",
				len(inputRange), len(outputRange)),
		}
	}
	for i := range inputRange {
		if math.IsNaN(inputRange[i]) || math.IsInf(inputRange[i], 0) {
			return &InvalidRangeError{Reason: fmt.Sprintf("input range value at index %d is not finite", i)}
		}
		if math.IsNaN(outputRange[i]) || math.IsInf(outputRange[i], 0) {
			return &InvalidRangeError{Reason: fmt.Sprintf("output range value at index %d is not finite", i)}
		}
	}
	for i := 0; i < len(inputRange)-1; i++ {
		if inputRange[i+1] <= inputRange[i] {
			return &InvalidRangeError{
				Reason: fmt.Sprintf("input range not strictly increasing at index %d (%v >= %v)",
					i, inputRange[i], inputRange[i+1]),
			}
		}
	}
	return nil
}

// Lerp is plain linear interpolation between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
