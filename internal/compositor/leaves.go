package compositor

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font/basicfont"

	"github.com/framecast/framecast/internal/anim"
)

// builtinLeaves are the leaf components every compositor knows. Each one
// maps its local frame onto a style through the anim primitives, so the same
// (frame, props) pair always produces the same pixels.
var builtinLeaves = map[string]LeafRenderer{
	"solid":    renderSolid,
	"gradient": renderGradient,
	"text":     renderText,
	"image":    renderImage,
	"qr":       renderQR,
}

// renderSolid fills the layer with a color, optionally animating from
// "color" to "colorTo" over "colorFrames" frames.
func renderSolid(lc *LeafContext) error {
	hex := propString(lc.Props, "color", "#000000")
	if to := propString(lc.Props, "colorTo", ""); to != "" {
		frames := propFloat(lc.Props, "colorFrames", float64(lc.FPS))
		blended, err := anim.InterpolateColors(float64(lc.Frame), []float64{0, frames}, []string{hex, to})
		if err != nil {
			return err
		}
		hex = blended
	}

	c, err := anim.ParseColor(hex)
	if err != nil {
		return err
	}
	lc.DC.SetRGBA(c.R, c.G, c.B, c.A)
	lc.DC.Clear()
	return nil
}

// renderGradient draws a vertical ramp from "from" to "to", blended in HCL
// so the midpoints stay perceptually even.
func renderGradient(lc *LeafContext) error {
	from, err := anim.ParseColor(propString(lc.Props, "from", "#000000"))
	if err != nil {
		return err
	}
	to, err := anim.ParseColor(propString(lc.Props, "to", "#ffffff"))
	if err != nil {
		return err
	}

	c1 := colorful.Color{R: from.R, G: from.G, B: from.B}
	c2 := colorful.Color{R: to.R, G: to.G, B: to.B}
	steps := lc.Height - 1
	if steps < 1 {
		// A one-pixel strip shows the start color.
		steps = 1
	}
	for y := 0; y < lc.Height; y++ {
		t := float64(y) / float64(steps)
		c := c1.BlendHcl(c2, t).Clamped()
		a := anim.Lerp(from.A, to.A, t)
		lc.DC.SetRGBA(c.R, c.G, c.B, a)
		lc.DC.DrawRectangle(0, float64(y), float64(lc.Width), 1)
		lc.DC.Fill()
	}
	return nil
}

// renderText draws centered text. "size" is the glyph height in pixels;
// "fadeInFrames" fades the text in, "springIn" pops it in with a spring
// scale. Both are driven purely by the local frame.
func renderText(lc *LeafContext) error {
	text := propString(lc.Props, "text", "")
	if text == "" {
		return fmt.Errorf("text leaf needs a %q prop", "text")
	}

	c, err := anim.ParseColor(propString(lc.Props, "color", "#ffffff"))
	if err != nil {
		return err
	}

	alpha := c.A
	if fade := propFloat(lc.Props, "fadeInFrames", 0); fade > 0 {
		a, err := anim.Interpolate(float64(lc.Frame), []float64{0, fade}, []float64{0, 1}, &anim.InterpolateOptions{
			ExtrapolateLeft:  anim.ExtrapolateClamp,
			ExtrapolateRight: anim.ExtrapolateClamp,
		})
		if err != nil {
			return err
		}
		alpha *= a
	}

	scale := propFloat(lc.Props, "size", 64) / float64(basicfont.Face7x13.Height)
	if propBool(lc.Props, "springIn", false) {
		scale *= anim.Spring(anim.SpringInput{
			Frame:  float64(lc.Frame),
			FPS:    lc.FPS,
			Config: anim.SpringDefault,
		})
	}
	if scale <= 0 || alpha <= 0 {
		return nil
	}

	cx := float64(lc.Width) / 2
	cy := float64(lc.Height) / 2
	lc.DC.Push()
	lc.DC.SetFontFace(basicfont.Face7x13)
	lc.DC.SetRGBA(c.R, c.G, c.B, alpha)
	lc.DC.ScaleAbout(scale, scale, cx, cy)
	lc.DC.DrawStringAnchored(text, cx, cy, 0.5, 0.5)
	lc.DC.Pop()
	return nil
}

// renderImage draws an asset resolved by logical path. "fit" is contain
// (default), cover, or stretch; "zoomSpeed" adds a linear push-in per frame.
func renderImage(lc *LeafContext) error {
	src := propString(lc.Props, "src", "")
	if src == "" {
		return fmt.Errorf("image leaf needs a %q prop", "src")
	}
	img, err := lc.Assets.Image(src)
	if err != nil {
		return err
	}

	zoom := 1 + propFloat(lc.Props, "zoomSpeed", 0)*float64(lc.Frame)
	sb := img.Bounds()
	sw, sh := float64(sb.Dx()), float64(sb.Dy())
	cw, ch := float64(lc.Width), float64(lc.Height)

	var scale float64
	switch propString(lc.Props, "fit", "contain") {
	case "cover":
		scale = math.Max(cw/sw, ch/sh)
	case "stretch":
		dst := scaleRect(cw/sw*zoom, ch/sh*zoom, sw, sh, cw, ch)
		xdraw.BiLinear.Scale(lc.Layer, dst, img, sb, draw.Over, nil)
		return nil
	default:
		scale = math.Min(cw/sw, ch/sh)
	}
	scale *= zoom

	dst := scaleRect(scale, scale, sw, sh, cw, ch)
	xdraw.BiLinear.Scale(lc.Layer, dst, img, sb, draw.Over, nil)
	return nil
}

// scaleRect centers a (sw*sx, sh*sy) rectangle on a cw x ch canvas.
func scaleRect(sx, sy, sw, sh, cw, ch float64) image.Rectangle {
	dw := sw * sx
	dh := sh * sy
	x0 := (cw - dw) / 2
	y0 := (ch - dh) / 2
	return image.Rect(int(math.Round(x0)), int(math.Round(y0)),
		int(math.Round(x0+dw)), int(math.Round(y0+dh)))
}

// renderQR draws a generated QR code centered on the layer. "size" is the
// edge length as a fraction of the smaller canvas dimension.
func renderQR(lc *LeafContext) error {
	payload := propString(lc.Props, "payload", "")
	if payload == "" {
		return fmt.Errorf("qr leaf needs a %q prop", "payload")
	}
	img, err := lc.Assets.Image("qr:" + payload)
	if err != nil {
		return err
	}

	frac := propFloat(lc.Props, "size", 0.4)
	edge := frac * math.Min(float64(lc.Width), float64(lc.Height))
	if edge < 1 {
		return nil
	}
	x0 := (float64(lc.Width) - edge) / 2
	y0 := (float64(lc.Height) - edge) / 2
	dst := image.Rect(int(x0), int(y0), int(x0+edge), int(y0+edge))
	// Nearest neighbor keeps module edges crisp and scannable.
	xdraw.NearestNeighbor.Scale(lc.Layer, dst, img, img.Bounds(), draw.Over, nil)
	return nil
}

func fillBackground(canvas *image.RGBA, props map[string]any) {
	hex := propString(props, "background", "#000000")
	c, err := anim.ParseColor(hex)
	if err != nil {
		c = anim.RGBA{A: 1}
	}
	col := image.NewUniform(color.NRGBA{
		R: uint8(clampUnit(c.R)*255 + 0.5),
		G: uint8(clampUnit(c.G)*255 + 0.5),
		B: uint8(clampUnit(c.B)*255 + 0.5),
		A: uint8(clampUnit(c.A)*255 + 0.5),
	})
	draw.Draw(canvas, canvas.Bounds(), col, image.Point{}, draw.Src)
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Prop accessors. Manifest-decoded numbers arrive as int or float64
// depending on the YAML source, so both are accepted everywhere.

func propString(props map[string]any, key, def string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return def
}

func propFloat(props map[string]any, key string, def float64) float64 {
	switch v := props[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return def
	}
}

func propBool(props map[string]any, key string, def bool) bool {
	if v, ok := props[key].(bool); ok {
		return v
	}
	return def
}
