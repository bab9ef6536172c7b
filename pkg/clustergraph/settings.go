package clustergraph

import (
	"strings"

	"github.com/vanderheijden86/orthoweb/pkg/grouplayout"
)

// Settings are caller-chosen view filters, as they arrive from query
// parameters or CLI flags. Zero values keep the view's initial state.
type Settings struct {
	Display   string // taxa, ec-numbers or pfam-domains
	EValueExp *int   // clamped to the view's range
	EdgeTypes string // comma-separated edge type keys, e.g. "O,C"
}

// Apply applies s to v. On error v is left unchanged.
func (v *View) Apply(s Settings) error {
	var display NodeDisplayType
	if strings.TrimSpace(s.Display) != "" {
		t, err := ParseNodeDisplayType(s.Display)
		if err != nil {
			return err
		}
		display = t
	}
	var types []grouplayout.EdgeType
	if strings.TrimSpace(s.EdgeTypes) != "" {
		parsed, err := grouplayout.ParseEdgeTypes(s.EdgeTypes)
		if err != nil {
			return err
		}
		types = parsed
	}

	if display != "" {
		v.display = display
	}
	if types != nil {
		_ = v.SelectOnlyEdgeTypes(types)
	}
	if s.EValueExp != nil {
		v.SetEValueExp(*s.EValueExp)
	}
	return nil
}
