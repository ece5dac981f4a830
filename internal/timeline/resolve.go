package timeline

// MountState distinguishes a leaf that is inside its playback window from one
// that is only premounted (instantiated for eager loading, not yet shown).
type MountState int

const (
	StateVisible MountState = iota
	StatePremounted
)

func (s MountState) String() string {
	if s == StatePremounted {
		return "premounted"
	}
	return "visible"
}

// Active is one resolved leaf for a given global frame.
type Active struct {
	// Path locates the node in the tree ("root/seq:intro@0/leaf:title@1").
	Path string
	// LocalFrame is the frame number rescoped to the innermost enclosing
	// window. Negative during premount pre-roll.
	LocalFrame int
	State      MountState

	// Exactly one of Leaf and Transition is set.
	Leaf       *Leaf
	Transition *ActiveTransition
}

// ActiveTransition is an in-flight transition window with the node paths of
// the two scenes it blends.
type ActiveTransition struct {
	Spec    *Transition
	OutPath string
	InPath  string
}

// Resolve walks the tree for one global frame and returns the active set in
// depth-first order. It is a pure function: identical (tree, frame) inputs
// yield identical results, and the tree is never mutated.
func Resolve(root Node, frame int) []Active {
	r := &resolver{frame: frame, seqPaths: map[*Sequence]string{}}
	r.walk(root, 0, "root", true)
	return r.out
}

type resolver struct {
	frame    int
	out      []Active
	seqPaths map[*Sequence]string
}

// walk descends with acc holding the accumulated From offsets of all
// enclosing sequences, so a leaf's local frame is frame-acc.
func (r *resolver) walk(n Node, acc int, path string, visible bool) {
	switch v := n.(type) {
	case *Leaf:
		r.emit(Active{
			Path:       path,
			LocalFrame: r.frame - acc,
			State:      stateFor(visible),
			Leaf:       v,
		})

	case *TransitionLeaf:
		r.emit(Active{
			Path:       path,
			LocalFrame: r.frame - acc,
			State:      stateFor(visible),
			Transition: &ActiveTransition{
				Spec:    v.Spec,
				OutPath: r.seqPaths[v.Out],
				InPath:  r.seqPaths[v.In],
			},
		})

	case *Sequence:
		start := acc + v.From
		end := start + v.DurationInFrames
		if r.frame < start-v.PremountFor || r.frame >= end {
			return
		}
		r.seqPaths[v] = path
		childVisible := visible && r.frame >= start
		for i, c := range v.Children {
			r.walk(c, start, path+"/"+childLabel(c, i), childVisible)
		}
	}
}

func (r *resolver) emit(a Active) {
	r.out = append(r.out, a)
}

func stateFor(visible bool) MountState {
	if visible {
		return StateVisible
	}
	return StatePremounted
}
