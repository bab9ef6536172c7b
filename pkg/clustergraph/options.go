// Package clustergraph turns a group layout into a renderable graph model and
// tracks the interactive view state around it: edge filters, e-value cutoff,
// node colouring mode and highlights.
package clustergraph

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/orthoweb/pkg/grouplayout"
)

// MaxPieSlices caps the number of annotation slices drawn per node.
const MaxPieSlices = 16

// NodeDisplayType selects how nodes are coloured.
type NodeDisplayType string

const (
	DisplayTaxa        NodeDisplayType = "taxa"
	DisplayEcNumbers   NodeDisplayType = "ec-numbers"
	DisplayPfamDomains NodeDisplayType = "pfam-domains"
)

// NodeDisplayTypeOrder is the order display types are offered in.
var NodeDisplayTypeOrder = []NodeDisplayType{DisplayTaxa, DisplayEcNumbers, DisplayPfamDomains}

var nodeDisplayNames = map[NodeDisplayType]string{
	DisplayTaxa:        "Taxa",
	DisplayEcNumbers:   "EC Numbers",
	DisplayPfamDomains: "PFam Domains",
}

var legendHeaders = map[NodeDisplayType]string{
	DisplayTaxa:        "Mouse over a taxon legend to highlight sequences of that taxon.",
	DisplayEcNumbers:   "The EC Numbers are rendered in a pie chart for each gene.",
	DisplayPfamDomains: "The PFam Domains are rendered in a pie chart for each gene.",
}

// DisplayName returns the label shown for t.
func (t NodeDisplayType) DisplayName() string {
	if n, ok := nodeDisplayNames[t]; ok {
		return n
	}
	return string(t)
}

// ParseNodeDisplayType validates a display type name.
func ParseNodeDisplayType(s string) (NodeDisplayType, error) {
	t := NodeDisplayType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := nodeDisplayNames[t]; !ok {
		return "", fmt.Errorf("unknown node display type %q", s)
	}
	return t, nil
}

// LegendHeader returns the fixed help text above a legend.
func LegendHeader(t NodeDisplayType) string {
	return legendHeaders[t]
}

// EdgeTypeOption is one entry of the edge type filter.
type EdgeTypeOption struct {
	Key      grouplayout.EdgeType `json:"key"`
	Display  string               `json:"display"`
	Selected bool                 `json:"isSelected"`
}

// NodeDisplayOption is one entry of the node display selector.
type NodeDisplayOption struct {
	Value    NodeDisplayType `json:"value"`
	Display  string          `json:"display"`
	Disabled bool            `json:"disabled"`
}

// NodeDisplayOptions lists the display types, disabling those whose legend
// would be empty.
func NodeDisplayOptions(g *Graph) []NodeDisplayOption {
	legends := Legends(g)
	out := make([]NodeDisplayOption, 0, len(NodeDisplayTypeOrder))
	for _, t := range NodeDisplayTypeOrder {
		out = append(out, NodeDisplayOption{
			Value:    t,
			Display:  t.DisplayName(),
			Disabled: len(legends[t]) == 0,
		})
	}
	return out
}
