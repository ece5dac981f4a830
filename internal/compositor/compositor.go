// Package compositor turns a resolved timeline frame into pixels. It renders
// each active leaf onto its layer, applies transition presentations to the
// incoming scene's layer, and composites everything into one RGBA frame.
//
// RenderFrame is a pure function of (composition, props, frame index); the
// compositor holds no per-frame mutable state, so the scheduler may call it
// from any worker for any frame.
package compositor

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/fogleman/gg"

	"github.com/framecast/framecast/internal/asset"
	"github.com/framecast/framecast/internal/registry"
	"github.com/framecast/framecast/internal/system"
	"github.com/framecast/framecast/internal/timeline"
)

// LeafContext is what a leaf renderer gets to work with: a drawing context
// bound to the leaf's layer, the local frame number, and the resolved props.
type LeafContext struct {
	DC     *gg.Context
	Layer  *image.RGBA
	Width  int
	Height int
	FPS    int
	// Frame is the leaf-local frame number.
	Frame  int
	Props  map[string]any
	Assets *asset.Manager
}

// LeafRenderer draws one leaf for one frame.
type LeafRenderer func(lc *LeafContext) error

// Compositor renders frames of a single composition with fixed props.
type Compositor struct {
	comp   *registry.Composition
	props  map[string]any
	assets *asset.Manager
	leaves map[string]LeafRenderer
}

// New builds a compositor for a composition with already-merged props. The
// built-in leaf renderers are registered; RegisterLeaf adds custom ones.
func New(comp *registry.Composition, props map[string]any, assets *asset.Manager) *Compositor {
	c := &Compositor{
		comp:   comp,
		props:  props,
		assets: assets,
		leaves: make(map[string]LeafRenderer, len(builtinLeaves)),
	}
	for name, r := range builtinLeaves {
		c.leaves[name] = r
	}
	return c
}

// RegisterLeaf installs a custom leaf renderer. Registering before the first
// RenderFrame call is the caller's responsibility; the map is read-only
// afterwards.
func (c *Compositor) RegisterLeaf(name string, r LeafRenderer) {
	c.leaves[name] = r
}

// RenderFrame renders one global frame. The returned buffer comes from the
// shared frame pool; the sink recycles it with system.PutFrame.
func (c *Compositor) RenderFrame(ctx context.Context, frame int) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	actives := timeline.Resolve(c.comp.Root, frame)

	// Scenes adjacent to an in-flight transition render into their own
	// layer so the presentation can move or mask them as a unit.
	var transitions []timeline.Active
	layerPaths := map[string]bool{}
	for _, a := range actives {
		if a.Transition != nil && a.State == timeline.StateVisible {
			transitions = append(transitions, a)
			layerPaths[a.Transition.InPath] = true
		}
	}

	bounds := image.Rect(0, 0, c.comp.Width, c.comp.Height)
	canvas := system.GetFrame(bounds)
	fillBackground(canvas, c.props)

	layers := map[string]*image.RGBA{}
	defer func() {
		for _, l := range layers {
			system.PutFrame(l)
		}
	}()

	for _, a := range actives {
		if a.Leaf == nil {
			continue
		}
		if a.State == timeline.StatePremounted {
			// Pre-roll: kick off asset loading, draw nothing.
			c.prefetch(a.Leaf)
			continue
		}

		target := canvas
		if p := owningLayer(a.Path, layerPaths); p != "" {
			l, ok := layers[p]
			if !ok {
				l = system.GetFrame(bounds)
				layers[p] = l
			}
			target = l
		}
		if err := c.renderLeaf(a, target); err != nil {
			system.PutFrame(canvas)
			return nil, fmt.Errorf("frame %d: node %s: %w", frame, a.Path, err)
		}
	}

	for _, a := range transitions {
		layer := layers[a.Transition.InPath]
		if layer == nil {
			continue
		}
		progress := a.Transition.Spec.Timing.Progress(a.LocalFrame, c.comp.FPS)
		present(canvas, layer, a.Transition.Spec.Presentation, progress)
		system.PutFrame(layer)
		delete(layers, a.Transition.InPath)
	}

	return canvas, nil
}

func (c *Compositor) renderLeaf(a timeline.Active, target *image.RGBA) error {
	renderer, ok := c.leaves[a.Leaf.Component]
	if !ok {
		return fmt.Errorf("no renderer for component %q", a.Leaf.Component)
	}
	return renderer(&LeafContext{
		DC:     gg.NewContextForRGBA(target),
		Layer:  target,
		Width:  c.comp.Width,
		Height: c.comp.Height,
		FPS:    c.comp.FPS,
		Frame:  a.LocalFrame,
		Props:  substituteProps(a.Leaf.Props, c.props),
		Assets: c.assets,
	})
}

func (c *Compositor) prefetch(leaf *timeline.Leaf) {
	props := substituteProps(leaf.Props, c.props)
	if src := propString(props, "src", ""); src != "" {
		c.assets.Prefetch(src)
	}
	if payload := propString(props, "payload", ""); payload != "" && leaf.Component == "qr" {
		c.assets.Prefetch("qr:" + payload)
	}
}

// owningLayer returns the layer path whose scene subtree contains the node,
// or "" for the base canvas.
func owningLayer(nodePath string, layerPaths map[string]bool) string {
	for p := range layerPaths {
		if nodePath == p || strings.HasPrefix(nodePath, p+"/") {
			return p
		}
	}
	return ""
}

// substituteProps resolves "$name" string values against the composition's
// input props, which is how manifest-declared leaves consume per-render
// props.
func substituteProps(props, inputs map[string]any) map[string]any {
	if len(props) == 0 {
		return props
	}
	out := make(map[string]any, len(props))
	for k, v := range props {
		if s, ok := v.(string); ok && strings.HasPrefix(s, "$") {
			if resolved, exists := inputs[s[1:]]; exists {
				out[k] = resolved
				continue
			}
		}
		out[k] = v
	}
	return out
}
