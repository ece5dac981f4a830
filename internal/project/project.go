// Package project loads composition manifests from YAML and registers them.
// A manifest is the declarative face of the timeline algebra: nested node
// specs compile into the same Sequence/Leaf trees the Go API builds.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/framecast/framecast/internal/anim"
	"github.com/framecast/framecast/internal/registry"
	"github.com/framecast/framecast/internal/schema"
	"github.com/framecast/framecast/internal/timeline"
)

// Manifest is one project file: shared asset root plus composition specs.
type Manifest struct {
	Version   string            `yaml:"version,omitempty"`
	AssetRoot string            `yaml:"assetRoot,omitempty"`
	Comps     []CompositionSpec `yaml:"compositions"`

	// dir is the manifest file's directory; AssetRoot resolves against it.
	dir string
}

// CompositionSpec is the YAML shape of one composition.
type CompositionSpec struct {
	ID               string                 `yaml:"id"`
	Width            int                    `yaml:"width"`
	Height           int                    `yaml:"height"`
	FPS              int                    `yaml:"fps"`
	DurationInFrames int                    `yaml:"durationInFrames"`
	DefaultProps     map[string]any         `yaml:"defaultProps,omitempty"`
	Props            map[string]*SchemaSpec `yaml:"props,omitempty"`
	Timeline         []NodeSpec             `yaml:"timeline"`
}

// SchemaSpec is the YAML shape of a prop schema node.
type SchemaSpec struct {
	Type     string                 `yaml:"type"`
	Optional bool                   `yaml:"optional,omitempty"`
	Min      *float64               `yaml:"min,omitempty"`
	Max      *float64               `yaml:"max,omitempty"`
	Enum     []string               `yaml:"enum,omitempty"`
	Fields   map[string]*SchemaSpec `yaml:"fields,omitempty"`
	Elem     *SchemaSpec            `yaml:"elem,omitempty"`
}

// NodeSpec is a tagged union: exactly one of the keys must be set.
type NodeSpec struct {
	Leaf        *LeafSpec             `yaml:"leaf,omitempty"`
	Sequence    *SequenceSpec         `yaml:"sequence,omitempty"`
	Series      *SeriesSpec           `yaml:"series,omitempty"`
	Transitions *TransitionSeriesSpec `yaml:"transitions,omitempty"`
}

type LeafSpec struct {
	Component string         `yaml:"component"`
	Name      string         `yaml:"name,omitempty"`
	Props     map[string]any `yaml:"props,omitempty"`
}

type SequenceSpec struct {
	Name             string     `yaml:"name,omitempty"`
	From             int        `yaml:"from"`
	DurationInFrames int        `yaml:"durationInFrames"`
	PremountFor      int        `yaml:"premountFor,omitempty"`
	Layout           string     `yaml:"layout,omitempty"`
	Children         []NodeSpec `yaml:"children"`
}

type SeriesSpec struct {
	Name  string           `yaml:"name,omitempty"`
	Items []SeriesItemSpec `yaml:"items"`
}

type SeriesItemSpec struct {
	Name             string     `yaml:"name,omitempty"`
	DurationInFrames int        `yaml:"durationInFrames"`
	Offset           int        `yaml:"offset,omitempty"`
	PremountFor      int        `yaml:"premountFor,omitempty"`
	Children         []NodeSpec `yaml:"children"`
}

type TransitionSeriesSpec struct {
	Scenes  []SceneSpec       `yaml:"scenes"`
	Between []*TransitionSpec `yaml:"between"`
}

type SceneSpec struct {
	Name             string     `yaml:"name,omitempty"`
	DurationInFrames int        `yaml:"durationInFrames"`
	Children         []NodeSpec `yaml:"children"`
}

// TransitionSpec describes one transition between adjacent scenes. A nil
// entry in the between list is a hard cut.
type TransitionSpec struct {
	Presentation     string      `yaml:"presentation"`
	Direction        string      `yaml:"direction,omitempty"`
	DurationInFrames int         `yaml:"durationInFrames"`
	Easing           string      `yaml:"easing,omitempty"`
	Spring           *SpringSpec `yaml:"spring,omitempty"`
}

type SpringSpec struct {
	Mass      float64 `yaml:"mass,omitempty"`
	Stiffness float64 `yaml:"stiffness,omitempty"`
	Damping   float64 `yaml:"damping,omitempty"`
}

// Load reads and parses a manifest file. Compilation into timeline trees
// happens in Build so that parse errors and timeline errors stay distinct.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	if len(m.Comps) == 0 {
		return nil, fmt.Errorf("manifest %s: no compositions", path)
	}
	m.dir = filepath.Dir(path)
	return &m, nil
}

// Write saves the manifest back to YAML, the inverse of Load.
func Write(m *Manifest, path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("manifest %s: %w", path, err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ResolveAssetRoot returns the asset directory, relative paths resolved
// against the manifest's own directory.
func (m *Manifest) ResolveAssetRoot() string {
	root := m.AssetRoot
	if root == "" {
		root = "."
	}
	if !filepath.IsAbs(root) && m.dir != "" {
		root = filepath.Join(m.dir, root)
	}
	return root
}

// Build compiles every composition spec and registers it. Registration
// re-runs the timeline validation, so a successful Build means every
// composition is renderable.
func (m *Manifest) Build(reg *registry.Registry) error {
	for i := range m.Comps {
		comp, err := m.Comps[i].Compile()
		if err != nil {
			return err
		}
		if err := reg.Register(comp); err != nil {
			return fmt.Errorf("composition %q: %w", m.Comps[i].ID, err)
		}
	}
	return nil
}

// Compile turns one spec into a registry composition.
func (cs *CompositionSpec) Compile() (*registry.Composition, error) {
	if cs.ID == "" {
		return nil, fmt.Errorf("composition has no id")
	}
	root, err := compileTimeline(cs.Timeline, cs.DurationInFrames)
	if err != nil {
		return nil, fmt.Errorf("composition %q: %w", cs.ID, err)
	}
	return &registry.Composition{
		ID:               cs.ID,
		Width:            cs.Width,
		Height:           cs.Height,
		FPS:              cs.FPS,
		DurationInFrames: cs.DurationInFrames,
		DefaultProps:     cs.DefaultProps,
		Schema:           compileSchema(cs.Props),
		Root:             root,
	}, nil
}

// compileTimeline wraps the top-level items. A single item becomes the root
// directly so a strict TransitionSeries wrapper keeps its exact-duration
// check; multiple items share a window spanning the whole composition.
func compileTimeline(items []NodeSpec, duration int) (timeline.Node, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("timeline is empty")
	}
	if len(items) == 1 {
		return compileNode(items[0])
	}
	children := make([]timeline.Node, 0, len(items))
	for _, item := range items {
		n, err := compileNode(item)
		if err != nil {
			return nil, err
		}
		children = append(children, n)
	}
	return &timeline.Sequence{DurationInFrames: duration, Children: children}, nil
}

func compileNode(spec NodeSpec) (timeline.Node, error) {
	set := 0
	if spec.Leaf != nil {
		set++
	}
	if spec.Sequence != nil {
		set++
	}
	if spec.Series != nil {
		set++
	}
	if spec.Transitions != nil {
		set++
	}
	if set != 1 {
		return nil, fmt.Errorf("node needs exactly one of leaf, sequence, series, transitions")
	}

	switch {
	case spec.Leaf != nil:
		return &timeline.Leaf{
			Component: spec.Leaf.Component,
			Name:      spec.Leaf.Name,
			Props:     spec.Leaf.Props,
		}, nil

	case spec.Sequence != nil:
		s := spec.Sequence
		children, err := compileChildren(s.Children)
		if err != nil {
			return nil, err
		}
		layout := timeline.LayoutDefault
		switch s.Layout {
		case "", "default":
		case "none":
			layout = timeline.LayoutNone
		default:
			return nil, fmt.Errorf("sequence %q: unknown layout %q", s.Name, s.Layout)
		}
		return &timeline.Sequence{
			Name:             s.Name,
			From:             s.From,
			DurationInFrames: s.DurationInFrames,
			PremountFor:      s.PremountFor,
			LayoutMode:       layout,
			Children:         children,
		}, nil

	case spec.Series != nil:
		items := make([]timeline.SeriesItem, 0, len(spec.Series.Items))
		for _, it := range spec.Series.Items {
			children, err := compileChildren(it.Children)
			if err != nil {
				return nil, err
			}
			items = append(items, timeline.SeriesItem{
				Name:             it.Name,
				DurationInFrames: it.DurationInFrames,
				Offset:           it.Offset,
				PremountFor:      it.PremountFor,
				Children:         children,
			})
		}
		return timeline.Series(items)

	default:
		ts := spec.Transitions
		scenes := make([]timeline.TransitionScene, 0, len(ts.Scenes))
		for _, sc := range ts.Scenes {
			children, err := compileChildren(sc.Children)
			if err != nil {
				return nil, err
			}
			scenes = append(scenes, timeline.TransitionScene{
				Name:             sc.Name,
				DurationInFrames: sc.DurationInFrames,
				Children:         children,
			})
		}
		transitions := make([]*timeline.Transition, 0, len(ts.Between))
		for _, tr := range ts.Between {
			compiled, err := compileTransition(tr)
			if err != nil {
				return nil, err
			}
			transitions = append(transitions, compiled)
		}
		return timeline.TransitionSeries(scenes, transitions)
	}
}

func compileChildren(specs []NodeSpec) ([]timeline.Node, error) {
	children := make([]timeline.Node, 0, len(specs))
	for _, s := range specs {
		n, err := compileNode(s)
		if err != nil {
			return nil, err
		}
		children = append(children, n)
	}
	return children, nil
}

func compileTransition(spec *TransitionSpec) (*timeline.Transition, error) {
	if spec == nil {
		return nil, nil
	}

	var kind timeline.PresentationKind
	switch spec.Presentation {
	case "", "fade":
		kind = timeline.PresentationFade
	case "slide":
		kind = timeline.PresentationSlide
	case "wipe":
		kind = timeline.PresentationWipe
	case "flip":
		kind = timeline.PresentationFlip
	case "clock-wipe":
		kind = timeline.PresentationClockWipe
	default:
		return nil, fmt.Errorf("unknown presentation %q", spec.Presentation)
	}

	var dir timeline.Direction
	switch spec.Direction {
	case "", "left":
		dir = timeline.DirectionLeft
	case "right":
		dir = timeline.DirectionRight
	case "up":
		dir = timeline.DirectionUp
	case "down":
		dir = timeline.DirectionDown
	default:
		return nil, fmt.Errorf("unknown direction %q", spec.Direction)
	}

	timing := timeline.Timing{DurationInFrames: spec.DurationInFrames}
	if spec.Spring != nil {
		cfg := anim.SpringDefault
		if spec.Spring.Mass > 0 {
			cfg.Mass = spec.Spring.Mass
		}
		if spec.Spring.Stiffness > 0 {
			cfg.Stiffness = spec.Spring.Stiffness
		}
		if spec.Spring.Damping > 0 {
			cfg.Damping = spec.Spring.Damping
		}
		timing.Spring = &cfg
	} else if spec.Easing != "" {
		e, err := anim.EasingByName(spec.Easing)
		if err != nil {
			return nil, err
		}
		timing.Easing = e
	}

	return &timeline.Transition{
		Presentation: timeline.Presentation{Kind: kind, Direction: dir},
		Timing:       timing,
	}, nil
}

func compileSchema(fields map[string]*SchemaSpec) *schema.Schema {
	if len(fields) == 0 {
		return nil
	}
	compiled := make(map[string]*schema.Schema, len(fields))
	for name, f := range fields {
		compiled[name] = compileSchemaNode(f)
	}
	return &schema.Schema{Kind: schema.Object, Fields: compiled}
}

func compileSchemaNode(spec *SchemaSpec) *schema.Schema {
	if spec == nil {
		return nil
	}
	s := &schema.Schema{
		Kind:     schema.Kind(spec.Type),
		Optional: spec.Optional,
		Min:      spec.Min,
		Max:      spec.Max,
		Enum:     spec.Enum,
		Elem:     compileSchemaNode(spec.Elem),
	}
	if len(spec.Fields) > 0 {
		s.Fields = make(map[string]*schema.Schema, len(spec.Fields))
		for name, f := range spec.Fields {
			s.Fields[name] = compileSchemaNode(f)
		}
	}
	return s
}
