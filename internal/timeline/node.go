// Package timeline implements the frame-timeline algebra: a recursive tree of
// time-scoped nodes resolved, for any global frame, into the set of active
// leaves with their locally-rescoped frame numbers.
//
// The tree has two primitive node kinds, Leaf and Sequence. The composite
// constructors Series and TransitionSeries compile eagerly into Sequence
// chains, so a single recursive descent resolves everything.
package timeline

import (
	"fmt"
	"strconv"
)

// Node is a tagged timeline tree variant.
type Node interface {
	node()
}

// Leaf is a renderable unit. It has no children in the timeline algebra;
// whatever it draws internally is opaque to the resolver.
type Leaf struct {
	// Component names a registered leaf renderer ("solid", "text", ...).
	Component string
	// Name labels the leaf in node paths. Optional.
	Name  string
	Props map[string]any
}

func (*Leaf) node() {}

// LayoutMode records whether a Sequence declares an implicit full-bleed
// layer around its children. The renderer composites leaves onto the frame
// canvas with the over operator, which is associative, so an implicit
// full-bleed wrapper produces pixel-identical output to drawing directly;
// both modes therefore render the same way. The field is kept so manifests
// carrying it round-trip, and it never affects timing.
type LayoutMode int

const (
	LayoutDefault LayoutMode = iota
	LayoutNone
)

// Sequence mounts its children for the half-open local-frame window
// [From, From+DurationInFrames), optionally premounted PremountFor frames
// earlier. A premounted child is instantiated (assets start loading) but not
// yet visible.
type Sequence struct {
	Name             string
	From             int
	DurationInFrames int
	PremountFor      int
	LayoutMode       LayoutMode
	Children         []Node

	// strict marks a chain wrapper whose computed duration must match the
	// owning composition's declared duration exactly.
	strict bool
}

func (*Sequence) node() {}

// StrictDuration reports whether this node's duration must match the owning
// composition's durationInFrames exactly (true for TransitionSeries chains).
func (s *Sequence) StrictDuration() bool { return s.strict }

// TransitionLeaf is the synthetic leaf a TransitionSeries inserts over the
// overlap window between two adjacent scenes. Its presentation turns the
// timing's progress value into a cross-fade/wipe/slide of the incoming scene.
type TransitionLeaf struct {
	Spec *Transition
	// Out and In are the adjacent scene wrappers inside the chain.
	Out, In *Sequence
}

func (*TransitionLeaf) node() {}

// ValidationError reports invalid timeline arithmetic or structure. It is
// always surfaced before rendering begins and never retried.
type ValidationError struct {
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return "timeline: " + e.Reason
	}
	return "timeline: " + e.Path + ": " + e.Reason
}

// SeriesItem is one entry of a sequential arrangement.
type SeriesItem struct {
	Name             string
	DurationInFrames int
	// Offset shifts this item relative to the end of the previous one.
	// Negative values overlap the immediately preceding item only.
	Offset      int
	PremountFor int
	Children    []Node
}

// Series arranges items back to back: each item's From is the running sum of
// prior durations plus its own offset. The result is a Sequence wrapper whose
// duration spans the last item's end.
func Series(items []SeriesItem) (*Sequence, error) {
	if len(items) == 0 {
		return nil, &ValidationError{Reason: "series needs at least one item"}
	}

	children := make([]Node, 0, len(items))
	from := 0
	prevFrom := 0
	prevEnd := 0
	prevPrevEnd := 0
	total := 0
	for i, item := range items {
		if item.DurationInFrames <= 0 {
			return nil, &ValidationError{
				Path:   seriesPath(item.Name, i),
				Reason: fmt.Sprintf("durationInFrames must be > 0, got %d", item.DurationInFrames),
			}
		}
		if i == 0 {
			from = item.Offset
		} else {
			from += item.Offset
		}
		if from < 0 {
			return nil, &ValidationError{
				Path:   seriesPath(item.Name, i),
				Reason: fmt.Sprintf("cumulative offset makes from negative (%d)", from),
			}
		}
		if i > 0 && from < prevFrom {
			return nil, &ValidationError{
				Path:   seriesPath(item.Name, i),
				Reason: "offset may only overlap the immediately preceding item",
			}
		}
		// Starting before the end of the item two back would overlap more
		// than the immediately preceding item.
		if i > 1 && from < prevPrevEnd {
			return nil, &ValidationError{
				Path:   seriesPath(item.Name, i),
				Reason: fmt.Sprintf("offset overlaps past the preceding item (starts at %d, item %d ends at %d)",
					from, i-2, prevPrevEnd),
			}
		}
		children = append(children, &Sequence{
			Name:             item.Name,
			From:             from,
			DurationInFrames: item.DurationInFrames,
			PremountFor:      item.PremountFor,
			Children:         item.Children,
		})
		if end := from + item.DurationInFrames; end > total {
			total = end
		}
		prevFrom = from
		prevPrevEnd = prevEnd
		prevEnd = from + item.DurationInFrames
		from += item.DurationInFrames
	}

	return &Sequence{DurationInFrames: total, Children: children}, nil
}

func seriesPath(name string, i int) string {
	if name != "" {
		return "series/" + name
	}
	return "series/" + strconv.Itoa(i)
}

// TotalDuration returns the tree's total extent in frames. A Sequence extends
// to From+DurationInFrames regardless of its children (the window clips
// them); a bare Leaf has no intrinsic extent and reports 0, meaning its
// enclosing window or composition defines it.
func TotalDuration(n Node) int {
	if s, ok := n.(*Sequence); ok {
		return s.From + s.DurationInFrames
	}
	return 0
}

// Validate walks the tree and checks the numeric invariants every node must
// satisfy. It is called once at registration so that resolution never has to
// re-check.
func Validate(root Node) error {
	return validateNode(root, "root")
}

func validateNode(n Node, path string) error {
	switch v := n.(type) {
	case *Leaf:
		if v.Component == "" {
			return &ValidationError{Path: path, Reason: "leaf has no component"}
		}
	case *TransitionLeaf:
		if v.Spec == nil || v.Out == nil || v.In == nil {
			return &ValidationError{Path: path, Reason: "transition leaf not built by TransitionSeries"}
		}
	case *Sequence:
		if v.From < 0 {
			return &ValidationError{Path: path, Reason: fmt.Sprintf("from must be >= 0, got %d", v.From)}
		}
		if v.DurationInFrames <= 0 {
			return &ValidationError{Path: path, Reason: fmt.Sprintf("durationInFrames must be > 0, got %d", v.DurationInFrames)}
		}
		if v.PremountFor < 0 {
			return &ValidationError{Path: path, Reason: fmt.Sprintf("premountFor must be >= 0, got %d", v.PremountFor)}
		}
		for i, c := range v.Children {
			if err := validateNode(c, path+"/"+childLabel(c, i)); err != nil {
				return err
			}
		}
	case nil:
		return &ValidationError{Path: path, Reason: "nil node"}
	default:
		return &ValidationError{Path: path, Reason: fmt.Sprintf("unknown node type %T", n)}
	}
	return nil
}

// childLabel names a child inside a node path: "seq:intro@0", "leaf:title@2".
func childLabel(n Node, idx int) string {
	var kind, name string
	switch v := n.(type) {
	case *Leaf:
		kind, name = "leaf", v.Name
		if name == "" {
			name = v.Component
		}
	case *Sequence:
		kind, name = "seq", v.Name
	case *TransitionLeaf:
		kind = "transition"
	default:
		kind = "node"
	}
	if name != "" {
		return kind + ":" + name + "@" + strconv.Itoa(idx)
	}
	return kind + "@" + strconv.Itoa(idx)
}
