// Package records resolves per-record-class renderers for record page
// components, falling back to a default when a class has no override.
package records

import (
	"context"
	"fmt"
	"sort"
	"sync"

	json "github.com/goccy/go-json"
)

// Record class full names.
const (
	GroupRecordClass    = "GroupRecordClasses.GroupRecordClass"
	SequenceRecordClass = "SequenceRecordClasses.SequenceRecordClass"
)

// Component names.
const (
	RecordAttributeSection = "RecordAttributeSection"
)

// Request identifies one attribute section of one record.
type Request struct {
	RecordClass string
	ID          string
	Attribute   string
}

// Section is a rendered component.
type Section struct {
	ContentType string
	Body        []byte
}

// Renderer renders a component for a record.
type Renderer interface {
	Render(ctx context.Context, req Request) (Section, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, req Request) (Section, error)

// Render calls f.
func (f RendererFunc) Render(ctx context.Context, req Request) (Section, error) {
	return f(ctx, req)
}

// Registry maps (record class, component) to a Renderer.
type Registry struct {
	mu       sync.RWMutex
	byClass  map[string]map[string]Renderer
	fallback Renderer
}

// NewRegistry returns an empty registry. A nil fallback uses DefaultRenderer.
func NewRegistry(fallback Renderer) *Registry {
	if fallback == nil {
		fallback = DefaultRenderer()
	}
	return &Registry{byClass: make(map[string]map[string]Renderer), fallback: fallback}
}

// Register installs a renderer for a class and component.
func (r *Registry) Register(recordClass, component string, rr Renderer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byClass[recordClass] == nil {
		r.byClass[recordClass] = make(map[string]Renderer)
	}
	r.byClass[recordClass][component] = rr
}

// Declare records a class with no overrides so it shows up in Classes.
func (r *Registry) Declare(recordClass string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byClass[recordClass] == nil {
		r.byClass[recordClass] = make(map[string]Renderer)
	}
}

// Classes lists the declared record classes.
func (r *Registry) Classes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byClass))
	for c := range r.byClass {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Resolve returns the renderer for a class and component. It never returns nil.
func (r *Registry) Resolve(recordClass, component string) Renderer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if rr, ok := r.byClass[recordClass][component]; ok && rr != nil {
		return rr
	}
	return r.fallback
}

// Default returns the fallback renderer.
func (r *Registry) Default() Renderer { return r.fallback }

// Render resolves and renders the attribute section of a record.
func (r *Registry) Render(ctx context.Context, req Request) (Section, error) {
	return r.Resolve(req.RecordClass, RecordAttributeSection).Render(ctx, req)
}

// DefaultRenderer describes the requested section as JSON.
func DefaultRenderer() Renderer {
	return RendererFunc(func(_ context.Context, req Request) (Section, error) {
		body, err := json.Marshal(map[string]string{
			"recordClass": req.RecordClass,
			"id":          req.ID,
			"attribute":   req.Attribute,
		})
		if err != nil {
			return Section{}, fmt.Errorf("records: encode default section: %w", err)
		}
		return Section{ContentType: "application/json", Body: body}, nil
	})
}
