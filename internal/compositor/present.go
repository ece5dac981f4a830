package compositor

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/framecast/framecast/internal/timeline"
)

// present composites the incoming scene's layer onto the canvas according to
// the transition's presentation and progress in [0,1]. At progress 0 the
// incoming scene is absent, at 1 it fully covers its extent.
func present(canvas, layer *image.RGBA, p timeline.Presentation, progress float64) {
	switch p.Kind {
	case timeline.PresentationSlide:
		presentSlide(canvas, layer, p.Direction, progress)
	case timeline.PresentationWipe:
		presentWipe(canvas, layer, p.Direction, progress)
	case timeline.PresentationFlip:
		presentFlip(canvas, layer, progress)
	case timeline.PresentationClockWipe:
		presentClockWipe(canvas, layer, progress)
	default:
		presentFade(canvas, layer, progress)
	}
}

func presentFade(canvas, layer *image.RGBA, progress float64) {
	alpha := uint8(math.Round(progress * 255))
	if alpha == 0 {
		return
	}
	mask := image.NewUniform(color.Alpha{A: alpha})
	draw.DrawMask(canvas, canvas.Bounds(), layer, image.Point{}, mask, image.Point{}, draw.Over)
}

// presentSlide moves the incoming frame in from the edge opposite its travel
// direction: a leftward slide enters from the right.
func presentSlide(canvas, layer *image.RGBA, dir timeline.Direction, progress float64) {
	b := canvas.Bounds()
	remain := 1 - progress
	var offset image.Point
	switch dir {
	case timeline.DirectionLeft:
		offset.X = int(math.Round(remain * float64(b.Dx())))
	case timeline.DirectionRight:
		offset.X = -int(math.Round(remain * float64(b.Dx())))
	case timeline.DirectionUp:
		offset.Y = int(math.Round(remain * float64(b.Dy())))
	case timeline.DirectionDown:
		offset.Y = -int(math.Round(remain * float64(b.Dy())))
	}
	draw.Draw(canvas, b.Add(offset), layer, b.Min, draw.Over)
}

// presentWipe reveals the incoming frame behind a straight edge sweeping in
// the given direction.
func presentWipe(canvas, layer *image.RGBA, dir timeline.Direction, progress float64) {
	b := canvas.Bounds()
	w := int(math.Round(progress * float64(b.Dx())))
	h := int(math.Round(progress * float64(b.Dy())))

	var reveal image.Rectangle
	switch dir {
	case timeline.DirectionLeft:
		reveal = image.Rect(b.Max.X-w, b.Min.Y, b.Max.X, b.Max.Y)
	case timeline.DirectionRight:
		reveal = image.Rect(b.Min.X, b.Min.Y, b.Min.X+w, b.Max.Y)
	case timeline.DirectionUp:
		reveal = image.Rect(b.Min.X, b.Max.Y-h, b.Max.X, b.Max.Y)
	case timeline.DirectionDown:
		reveal = image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+h)
	}
	if reveal.Empty() {
		return
	}
	draw.Draw(canvas, reveal, layer, reveal.Min, draw.Over)
}

// presentFlip squeezes the incoming frame horizontally around the vertical
// center line: hidden until half progress (the outgoing side of the card),
// then expanding from zero width to full bleed.
func presentFlip(canvas, layer *image.RGBA, progress float64) {
	if progress < 0.5 {
		return
	}
	b := canvas.Bounds()
	scale := 2*progress - 1
	halfW := scale * float64(b.Dx()) / 2
	cx := float64(b.Min.X+b.Max.X) / 2
	dst := image.Rect(int(cx-halfW), b.Min.Y, int(cx+halfW), b.Max.Y)
	if dst.Dx() < 1 {
		return
	}
	xdraw.ApproxBiLinear.Scale(canvas, dst, layer, b, draw.Over, nil)
}

// presentClockWipe reveals the incoming frame behind a radial edge sweeping
// clockwise from twelve o'clock.
func presentClockWipe(canvas, layer *image.RGBA, progress float64) {
	if progress <= 0 {
		return
	}
	b := canvas.Bounds()
	if progress >= 1 {
		draw.Draw(canvas, b, layer, b.Min, draw.Over)
		return
	}

	mask := image.NewAlpha(b)
	cx := float64(b.Min.X+b.Max.X) / 2
	cy := float64(b.Min.Y+b.Max.Y) / 2
	sweep := progress * 2 * math.Pi
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			// Angle measured clockwise from straight up.
			angle := math.Atan2(float64(x)-cx+0.5, cy-float64(y)-0.5)
			if angle < 0 {
				angle += 2 * math.Pi
			}
			if angle <= sweep {
				mask.SetAlpha(x, y, color.Alpha{A: 255})
			}
		}
	}
	draw.DrawMask(canvas, b, layer, b.Min, mask, b.Min, draw.Over)
}
