package anim

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// RGBA is a color with straight (non-premultiplied) channels in [0,1].
type RGBA struct {
	R, G, B, A float64
}

// ParseColor accepts "#rgb", "#rrggbb" and "#rrggbbaa" notations.
func ParseColor(s string) (RGBA, error) {
	raw := strings.TrimSpace(s)
	if !strings.HasPrefix(raw, "#") {
		return RGBA{}, fmt.Errorf("parse color %q: expected leading '#'", s)
	}
	hex := raw[1:]
	alpha := 1.0

	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6:
		// handled below
	case 8:
		a, err := strconv.ParseUint(hex[6:8], 16, 8)
		if err != nil {
			return RGBA{}, fmt.Errorf("parse color %q: bad alpha: %w", s, err)
		}
		alpha = float64(a) / 255
		hex = hex[:6]
	default:
		return RGBA{}, fmt.Errorf("parse color %q: unsupported length", s)
	}

	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return RGBA{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return RGBA{R: c.R, G: c.G, B: c.B, A: alpha}, nil
}

// Hex re-encodes the color. Alpha is included only when it is not fully
// opaque, so "#ff0000" round-trips as "#ff0000".
func (c RGBA) Hex() string {
	base := colorful.Color{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B)}.Hex()
	if c.A >= 1 {
		return base
	}
	return fmt.Sprintf("%s%02x", base, uint8(clamp01(c.A)*255+0.5))
}

// InterpolateColors maps frame onto a color ramp. Each sRGB channel and the
// alpha channel are interpolated independently with the same piecewise-linear
// mapping as Interpolate; output is clamped to the range endpoints because a
// color cannot be extrapolated past its gamut.
func InterpolateColors(frame float64, inputRange []float64, colorRange []string) (string, error) {
	if len(colorRange) != len(inputRange) {
		return "", &InvalidRangeError{
			Reason: fmt.Sprintf("range length mismatch: %d inputs vs %d colors",
				len(inputRange), len(colorRange)),
		}
	}

	parsed := make([]RGBA, len(colorRange))
	for i, s := range colorRange {
		c, err := ParseColor(s)
		if err != nil {
			return "", err
		}
		parsed[i] = c
	}

	opts := &InterpolateOptions{
		ExtrapolateLeft:  ExtrapolateClamp,
		ExtrapolateRight: ExtrapolateClamp,
	}
	channel := func(pick func(RGBA) float64) (float64, error) {
		out := make([]float64, len(parsed))
		for i, c := range parsed {
			out[i] = pick(c)
		}
		return Interpolate(frame, inputRange, out, opts)
	}

	r, err := channel(func(c RGBA) float64 { return c.R })
	if err != nil {
		return "", err
	}
	g, _ := channel(func(c RGBA) float64 { return c.G })
	b, _ := channel(func(c RGBA) float64 { return c.B })
	a, _ := channel(func(c RGBA) float64 { return c.A })

	return RGBA{R: r, G: g, B: b, A: a}.Hex(), nil
}
