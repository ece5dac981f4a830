// Package registry holds named composition definitions and validates render
// requests against them. The registry is read-mostly: registration happens
// once at load time, lookups happen concurrently from render workers.
package registry

import (
	"fmt"
	"sync"

	"github.com/framecast/framecast/internal/schema"
	"github.com/framecast/framecast/internal/timeline"
)

// Composition is an immutable, registered video definition.
type Composition struct {
	ID               string
	Width            int
	Height           int
	FPS              int
	DurationInFrames int
	DefaultProps     map[string]any
	Schema           *schema.Schema
	Root             timeline.Node
}

// Metadata is the resolved header a caller needs to set up rendering.
type Metadata struct {
	ID               string
	Width            int
	Height           int
	FPS              int
	DurationInFrames int
	Props            map[string]any
}

// DuplicateIDError reports a repeated composition id.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("composition %q is already registered", e.ID)
}

// NotFoundError reports a lookup of an unknown composition id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("composition %q is not registered", e.ID)
}

// Registry maps composition ids to definitions.
type Registry struct {
	mu    sync.RWMutex
	comps map[string]*Composition
	order []string
}

func New() *Registry {
	return &Registry{comps: map[string]*Composition{}}
}

// Register validates and stores a composition. Duplicate ids fail with
// DuplicateIDError; structural problems fail with a timeline or registry
// validation error. Nothing about a composition is checked again after this.
func (r *Registry) Register(c *Composition) error {
	if err := validate(c); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.comps[c.ID]; exists {
		return &DuplicateIDError{ID: c.ID}
	}
	r.comps[c.ID] = c
	r.order = append(r.order, c.ID)
	return nil
}

func validate(c *Composition) error {
	if c == nil {
		return fmt.Errorf("registry: nil composition")
	}
	if c.ID == "" {
		return fmt.Errorf("registry: composition id must not be empty")
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("registry: composition %q: dimensions must be positive, got %dx%d", c.ID, c.Width, c.Height)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("registry: composition %q: fps must be > 0, got %d", c.ID, c.FPS)
	}
	if c.DurationInFrames <= 0 {
		return fmt.Errorf("registry: composition %q: durationInFrames must be > 0, got %d", c.ID, c.DurationInFrames)
	}
	if c.Root == nil {
		return fmt.Errorf("registry: composition %q: missing timeline root", c.ID)
	}
	if err := timeline.Validate(c.Root); err != nil {
		return fmt.Errorf("registry: composition %q: %w", c.ID, err)
	}

	total := timeline.TotalDuration(c.Root)
	if seq, ok := c.Root.(*timeline.Sequence); ok && seq.StrictDuration() {
		// A transition chain's total changes whenever scenes or transitions
		// change; it must always be re-validated against the declared
		// duration, exactly.
		if total != c.DurationInFrames {
			return fmt.Errorf("registry: composition %q: timeline totals %d frames but durationInFrames is %d",
				c.ID, total, c.DurationInFrames)
		}
	} else if total > c.DurationInFrames {
		return fmt.Errorf("registry: composition %q: timeline extends to frame %d past durationInFrames %d",
			c.ID, total, c.DurationInFrames)
	}
	return nil
}

// Get looks up a composition by id.
func (r *Registry) Get(id string) (*Composition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.comps[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return c, nil
}

// List returns all compositions in registration order.
func (r *Registry) List() []*Composition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Composition, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.comps[id])
	}
	return out
}

// Select resolves a render request: it looks up the composition, merges the
// supplied props over the defaults, and validates the result against the
// registered schema. Without a schema any props are accepted.
func (r *Registry) Select(id string, props map[string]any) (*Metadata, error) {
	c, err := r.Get(id)
	if err != nil {
		return nil, err
	}

	merged := MergeProps(c.DefaultProps, props)
	if err := c.Schema.Validate(merged); err != nil {
		return nil, err
	}

	return &Metadata{
		ID:               c.ID,
		Width:            c.Width,
		Height:           c.Height,
		FPS:              c.FPS,
		DurationInFrames: c.DurationInFrames,
		Props:            merged,
	}, nil
}

// MergeProps lays overrides over defaults without mutating either map.
func MergeProps(defaults, overrides map[string]any) map[string]any {
	merged := make(map[string]any, len(defaults)+len(overrides))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}
