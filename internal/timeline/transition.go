package timeline

import (
	"fmt"

	"github.com/framecast/framecast/internal/anim"
)

// PresentationKind selects how a transition reveals the incoming scene.
type PresentationKind int

const (
	PresentationFade PresentationKind = iota
	PresentationSlide
	PresentationWipe
	PresentationFlip
	PresentationClockWipe
)

func (k PresentationKind) String() string {
	switch k {
	case PresentationFade:
		return "fade"
	case PresentationSlide:
		return "slide"
	case PresentationWipe:
		return "wipe"
	case PresentationFlip:
		return "flip"
	case PresentationClockWipe:
		return "clock-wipe"
	default:
		return "unknown"
	}
}

// Direction orients slide and wipe presentations.
type Direction int

const (
	DirectionLeft Direction = iota
	DirectionRight
	DirectionUp
	DirectionDown
)

// Presentation is the visual half of a transition spec.
type Presentation struct {
	Kind      PresentationKind
	Direction Direction
}

// Timing maps a local frame within the transition window onto a progress
// value in [0,1], either through an easing curve or a spring.
type Timing struct {
	DurationInFrames int
	Easing           anim.Easing        // nil means linear
	Spring           *anim.SpringConfig // takes precedence over Easing
}

// Progress returns the transition progress for a local frame. The first
// frame of the window is 0 (spring timing may differ slightly) and the last
// frame is 1; output is clamped because presentations cannot overshoot.
func (t Timing) Progress(localFrame, fps int) float64 {
	d := t.DurationInFrames
	if d <= 1 || localFrame >= d-1 {
		return 1
	}
	if localFrame < 0 {
		return 0
	}
	if t.Spring != nil {
		v := anim.Spring(anim.SpringInput{
			Frame:            float64(localFrame),
			FPS:              fps,
			Config:           *t.Spring,
			DurationInFrames: float64(d),
		})
		return clampProgress(v)
	}
	p := float64(localFrame) / float64(d-1)
	if t.Easing != nil {
		p = t.Easing(p)
	}
	return clampProgress(p)
}

func clampProgress(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Transition pairs a presentation with its timing.
type Transition struct {
	Presentation Presentation
	Timing       Timing
}

// TransitionScene is one scene of a TransitionSeries.
type TransitionScene struct {
	Name             string
	DurationInFrames int
	Children         []Node
}

// TransitionSeries builds a chain of scenes where consecutive scenes overlap
// by their transition's duration. transitions must hold exactly
// len(scenes)-1 entries; a nil entry is a hard cut.
//
// The total duration is the sum of scene durations minus the sum of
// transition durations, and the returned wrapper is marked strict: the
// registry rejects a composition whose declared durationInFrames differs.
//
// A transition whose duration exceeds the frames an adjacent scene has left
// after its other overlap is a validation error, never silently clamped:
// clamping would change the chain's total duration behind the caller's back.
func TransitionSeries(scenes []TransitionScene, transitions []*Transition) (*Sequence, error) {
	if len(scenes) == 0 {
		return nil, &ValidationError{Reason: "transition series needs at least one scene"}
	}
	if len(transitions) != len(scenes)-1 {
		return nil, &ValidationError{
			Reason: fmt.Sprintf("need %d transitions for %d scenes, got %d",
				len(scenes)-1, len(scenes), len(transitions)),
		}
	}

	for i, sc := range scenes {
		if sc.DurationInFrames <= 0 {
			return nil, &ValidationError{
				Path:   scenePath(sc.Name, i),
				Reason: fmt.Sprintf("durationInFrames must be > 0, got %d", sc.DurationInFrames),
			}
		}
		overlap := 0
		if i > 0 && transitions[i-1] != nil {
			overlap += transitions[i-1].Timing.DurationInFrames
		}
		if i < len(transitions) && transitions[i] != nil {
			overlap += transitions[i].Timing.DurationInFrames
		}
		if overlap >= sc.DurationInFrames {
			return nil, &ValidationError{
				Path: scenePath(sc.Name, i),
				Reason: fmt.Sprintf("adjacent transitions overlap %d of %d frames; scene would have no exclusive frames",
					overlap, sc.DurationInFrames),
			}
		}
	}
	for i, tr := range transitions {
		if tr != nil && tr.Timing.DurationInFrames <= 0 {
			return nil, &ValidationError{
				Path:   fmt.Sprintf("transition@%d", i),
				Reason: fmt.Sprintf("durationInFrames must be > 0, got %d", tr.Timing.DurationInFrames),
			}
		}
	}

	wrappers := make([]*Sequence, len(scenes))
	from := 0
	total := 0
	for i, sc := range scenes {
		if i > 0 {
			overlap := 0
			if transitions[i-1] != nil {
				overlap = transitions[i-1].Timing.DurationInFrames
			}
			from -= overlap
		}
		wrappers[i] = &Sequence{
			Name:             sc.Name,
			From:             from,
			DurationInFrames: sc.DurationInFrames,
			Children:         sc.Children,
		}
		if end := from + sc.DurationInFrames; end > total {
			total = end
		}
		from += sc.DurationInFrames
	}

	children := make([]Node, 0, len(scenes)+len(transitions))
	for _, w := range wrappers {
		children = append(children, w)
	}
	for i, tr := range transitions {
		if tr == nil {
			continue
		}
		in := wrappers[i+1]
		children = append(children, &Sequence{
			Name:             "transition",
			From:             in.From,
			DurationInFrames: tr.Timing.DurationInFrames,
			Children: []Node{&TransitionLeaf{
				Spec: tr,
				Out:  wrappers[i],
				In:   in,
			}},
		})
	}

	return &Sequence{
		DurationInFrames: total,
		Children:         children,
		strict:           true,
	}, nil
}

func scenePath(name string, i int) string {
	if name != "" {
		return "scene/" + name
	}
	return fmt.Sprintf("scene@%d", i)
}
