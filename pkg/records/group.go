package records

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/vanderheijden86/orthoweb/pkg/clustergraph"
	"github.com/vanderheijden86/orthoweb/pkg/export"
	"github.com/vanderheijden86/orthoweb/pkg/grouplayout"
	"github.com/vanderheijden86/orthoweb/pkg/taxon"
)

// LayoutAttribute is the group attribute rendered as a cluster graph.
const LayoutAttribute = "layout"

// ErrNoTaxonMetadata is returned when the group renderer runs before taxa
// are loaded.
var ErrNoTaxonMetadata = errors.New("records: taxon metadata not loaded")

// LayoutFetcher fetches a group's layout.
type LayoutFetcher interface {
	GetGroupLayout(ctx context.Context, groupName string) (*grouplayout.GroupLayout, error)
}

// Deps are the services the default registry's renderers use.
type Deps struct {
	Layouts LayoutFetcher
	// Meta returns the current taxon metadata; it may change between calls.
	Meta func() *taxon.UIMetadata
}

// NewDefaultRegistry registers the group record attribute section and
// declares the sequence record class with no overrides.
func NewDefaultRegistry(deps Deps) *Registry {
	r := NewRegistry(nil)
	r.Register(GroupRecordClass, RecordAttributeSection, groupAttributeSection(deps, r.Default()))
	r.Declare(SequenceRecordClass)
	return r
}

func groupAttributeSection(deps Deps, fallback Renderer) Renderer {
	return RendererFunc(func(ctx context.Context, req Request) (Section, error) {
		if req.Attribute != LayoutAttribute {
			return fallback.Render(ctx, req)
		}
		var meta *taxon.UIMetadata
		if deps.Meta != nil {
			meta = deps.Meta()
		}
		if meta == nil {
			return Section{}, ErrNoTaxonMetadata
		}
		layout, err := deps.Layouts.GetGroupLayout(ctx, req.ID)
		if err != nil {
			return Section{}, err
		}
		g, err := clustergraph.Build(layout, meta)
		if err != nil {
			return Section{}, fmt.Errorf("group %s: %w", req.ID, err)
		}
		var buf bytes.Buffer
		if err := export.WriteClusterSnapshot(&buf, export.ClusterSnapshotOptions{Format: "svg", View: clustergraph.NewView(g)}); err != nil {
			return Section{}, err
		}
		return Section{ContentType: export.ContentType("svg"), Body: buf.Bytes()}, nil
	})
}
