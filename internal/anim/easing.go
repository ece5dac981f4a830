package anim

import (
	"fmt"
	"math"

	"github.com/fogleman/ease"
)

// Easing remaps a normalized progress value. Implementations are expected to
// map 0 to 0 and 1 to 1; values between may overshoot (elastic, back).
type Easing func(t float64) float64

// Linear is the identity easing.
func Linear(t float64) float64 { return t }

// Base curves in their "in" form. Compose with Out/InOut as needed.
var (
	Quad    Easing = ease.InQuad
	Cubic   Easing = ease.InCubic
	Quart   Easing = ease.InQuart
	Quint   Easing = ease.InQuint
	Sin     Easing = ease.InSine
	Exp     Easing = ease.InExpo
	Circle  Easing = ease.InCirc
	Elastic Easing = ease.InElastic
	Back    Easing = ease.InBack
	Bounce  Easing = ease.OutBounce
)

// In returns e unchanged. It exists for symmetry with Out and InOut.
func In(e Easing) Easing { return e }

// Out mirrors an ease-in curve into its ease-out counterpart.
func Out(e Easing) Easing {
	return func(t float64) float64 { return 1 - e(1-t) }
}

// InOut runs the ease-in curve over the first half and its mirror over the
// second half.
func InOut(e Easing) Easing {
	return func(t float64) float64 {
		if t < 0.5 {
			return e(2*t) / 2
		}
		return 1 - e(2*(1-t))/2
	}
}

// Bezier returns the easing described by a cubic Bezier curve through
// (0,0), (x1,y1), (x2,y2), (1,1). The curve is inverted numerically: Newton
// iteration on the parametric x(t) recovers t for a given input x, then y(t)
// is evaluated. Control point x coordinates outside [0,1] make the curve
// non-invertible and are clamped.
func Bezier(x1, y1, x2, y2 float64) Easing {
	x1 = clamp01(x1)
	x2 = clamp01(x2)
	return func(x float64) float64 {
		if x <= 0 {
			return 0
		}
		if x >= 1 {
			return 1
		}
		return bezierCoord(solveBezierT(x, x1, x2), y1, y2)
	}
}

// bezierCoord evaluates one coordinate of the cubic at parameter t, with
// implicit anchors 0 and 1.
func bezierCoord(t, p1, p2 float64) float64 {
	u := 1 - t
	return 3*u*u*t*p1 + 3*u*t*t*p2 + t*t*t
}

func bezierSlope(t, p1, p2 float64) float64 {
	u := 1 - t
	return 3*u*u*p1 + 6*u*t*(p2-p1) + 3*t*t*(1-p2)
}

func solveBezierT(x, x1, x2 float64) float64 {
	t := x // good initial guess: x(t) is close to t for gentle curves
	for i := 0; i < 8; i++ {
		slope := bezierSlope(t, x1, x2)
		if math.Abs(slope) < 1e-7 {
			break
		}
		t -= (bezierCoord(t, x1, x2) - x) / slope
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
	}
	return t
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

var namedEasings = map[string]Easing{
	"linear":         Linear,
	"quad":           Quad,
	"out-quad":       Out(Quad),
	"in-out-quad":    ease.InOutQuad,
	"cubic":          Cubic,
	"out-cubic":      Out(Cubic),
	"in-out-cubic":   ease.InOutCubic,
	"quart":          Quart,
	"out-quart":      Out(Quart),
	"in-out-quart":   ease.InOutQuart,
	"quint":          Quint,
	"out-quint":      Out(Quint),
	"in-out-quint":   ease.InOutQuint,
	"sin":            Sin,
	"out-sin":        Out(Sin),
	"in-out-sin":     ease.InOutSine,
	"exp":            Exp,
	"out-exp":        Out(Exp),
	"in-out-exp":     ease.InOutExpo,
	"circle":         Circle,
	"out-circle":     Out(Circle),
	"in-out-circle":  ease.InOutCirc,
	"elastic":        Elastic,
	"out-elastic":    ease.OutElastic,
	"in-out-elastic": ease.InOutElastic,
	"back":           Back,
	"out-back":       ease.OutBack,
	"in-out-back":    ease.InOutBack,
	"bounce":         Bounce,
	"in-bounce":      ease.InBounce,
	"in-out-bounce":  ease.InOutBounce,
}

// EasingByName resolves a curve name used in manifests ("cubic",
// "in-out-quad", "bounce", ...).
func EasingByName(name string) (Easing, error) {
	e, ok := namedEasings[name]
	if !ok {
		return nil, fmt.Errorf("unknown easing %q", name)
	}
	return e, nil
}
