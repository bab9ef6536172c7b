// Package grouplayout decodes the /group/{name}/layout payload: the genes of
// an ortholog group, their precomputed positions and the BLAST edges
// between them.
package grouplayout

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
)

// ErrInvalidLayout is wrapped by every decode and integrity failure.
var ErrInvalidLayout = errors.New("invalid group layout")

// EdgeType classifies a BLAST edge.
type EdgeType string

const (
	EdgeOrtholog             EdgeType = "O"
	EdgeCoortholog           EdgeType = "C"
	EdgeInparalog            EdgeType = "P"
	EdgePeripheralCore       EdgeType = "L"
	EdgePeripheralPeripheral EdgeType = "M"
	EdgeOther                EdgeType = "N"
)

// EdgeTypeOrder is the display order of edge types.
var EdgeTypeOrder = []EdgeType{
	EdgeOrtholog,
	EdgeCoortholog,
	EdgeInparalog,
	EdgePeripheralCore,
	EdgePeripheralPeripheral,
	EdgeOther,
}

var edgeTypeNames = map[EdgeType]string{
	EdgeOrtholog:             "Ortholog",
	EdgeCoortholog:           "Coortholog",
	EdgeInparalog:            "Inparalog",
	EdgePeripheralCore:       "Peripheral-Core",
	EdgePeripheralPeripheral: "Peripheral-Peripheral",
	EdgeOther:                "Other",
}

// Known reports whether t is one of the six edge types.
func (t EdgeType) Known() bool {
	_, ok := edgeTypeNames[t]
	return ok
}

// DisplayName returns the human-readable edge type.
func (t EdgeType) DisplayName() string {
	if n, ok := edgeTypeNames[t]; ok {
		return n
	}
	return string(t)
}

// ParseEdgeTypes parses a comma-separated list such as "O,C,P".
func ParseEdgeTypes(s string) ([]EdgeType, error) {
	var out []EdgeType
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		t := EdgeType(strings.ToUpper(part))
		if !t.Known() {
			return nil, fmt.Errorf("unknown edge type %q", part)
		}
		out = append(out, t)
	}
	return out, nil
}

// Taxon identifies the species a gene belongs to.
type Taxon struct {
	Abbrev string `json:"abbrev"`
	Name   string `json:"name"`
}

// GeneEntry describes one sequence in the group.
type GeneEntry struct {
	Accession   string           `json:"accession"`
	Taxon       Taxon            `json:"taxon"`
	Length      int              `json:"length"`
	Description string           `json:"description"`
	EcNumbers   []string         `json:"ecNumbers"`
	PfamDomains map[string][]int `json:"pfamDomains"`
}

// EcNumberEntry is an EC number present in the group.
type EcNumberEntry struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Count       int    `json:"count"`
	Index       int    `json:"index"`
}

// PfamDomainEntry is a Pfam domain present in the group.
type PfamDomainEntry struct {
	Accession   string `json:"accession"`
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Count       int    `json:"count"`
	Index       int    `json:"index"`
}

// Group is the ortholog group and its annotations.
type Group struct {
	Name        string                     `json:"name"`
	Genes       map[string]GeneEntry       `json:"genes"`
	EcNumbers   map[string]EcNumberEntry   `json:"ecNumbers"`
	PfamDomains map[string]PfamDomainEntry `json:"pfamDomains"`
}

// NodeEntry is a laid-out gene.
type NodeEntry struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// EdgeEntry is a BLAST hit between two nodes.
type EdgeEntry struct {
	QueryID   string   `json:"queryId"`
	SubjectID string   `json:"subjectId"`
	T         EdgeType `json:"T"`
	E         string   `json:"E"`
	Score     float64  `json:"score"`
}

// EValue parses E. Decode guarantees it succeeds for decoded layouts.
func (e EdgeEntry) EValue() float64 {
	v, _ := strconv.ParseFloat(e.E, 64)
	return v
}

// GroupLayout is the decoded payload.
type GroupLayout struct {
	Group        Group                `json:"group"`
	Nodes        map[string]NodeEntry `json:"nodes"`
	Edges        map[string]EdgeEntry `json:"edges"`
	MinEvalueExp int                  `json:"minEvalueExp"`
	MaxEvalueExp int                  `json:"maxEvalueExp"`
	Size         int                  `json:"size"`
	TaxonCounts  map[string]int       `json:"taxonCounts"`
}

// NodeIDs returns node IDs in sorted order.
func (l *GroupLayout) NodeIDs() []string {
	ids := make([]string, 0, len(l.Nodes))
	for id := range l.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// EdgeIDs returns edge IDs in sorted order.
func (l *GroupLayout) EdgeIDs() []string {
	ids := make([]string, 0, len(l.Edges))
	for id := range l.Edges {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

var validate = validator.New()

// Decode reads a layout payload. Missing fields, wrong types and dangling
// references all fail the decode.
func Decode(r io.Reader) (*GroupLayout, error) {
	var raw rawLayout
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}
	if err := validate.Struct(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}
	layout := raw.convert()
	if err := layout.check(); err != nil {
		return nil, err
	}
	return layout, nil
}

func (l *GroupLayout) check() error {
	for _, id := range l.NodeIDs() {
		n := l.Nodes[id]
		if n.ID != id {
			return fmt.Errorf("%w: node keyed %q has id %q", ErrInvalidLayout, id, n.ID)
		}
		if _, ok := l.Group.Genes[id]; !ok {
			return fmt.Errorf("%w: node %q has no gene", ErrInvalidLayout, id)
		}
	}
	for _, id := range l.EdgeIDs() {
		e := l.Edges[id]
		if _, ok := l.Nodes[e.QueryID]; !ok {
			return fmt.Errorf("%w: edge %q query %q is not a node", ErrInvalidLayout, id, e.QueryID)
		}
		if _, ok := l.Nodes[e.SubjectID]; !ok {
			return fmt.Errorf("%w: edge %q subject %q is not a node", ErrInvalidLayout, id, e.SubjectID)
		}
		if !e.T.Known() {
			return fmt.Errorf("%w: edge %q has unknown type %q", ErrInvalidLayout, id, e.T)
		}
		if _, err := strconv.ParseFloat(e.E, 64); err != nil {
			return fmt.Errorf("%w: edge %q evalue %q: %v", ErrInvalidLayout, id, e.E, err)
		}
	}
	if l.MinEvalueExp > l.MaxEvalueExp {
		return fmt.Errorf("%w: minEvalueExp %d > maxEvalueExp %d", ErrInvalidLayout, l.MinEvalueExp, l.MaxEvalueExp)
	}
	return nil
}
