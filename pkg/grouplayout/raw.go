package grouplayout

import (
	"bytes"
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
)

// The raw types use pointers so that absent keys and nulls fail validation
// instead of decoding to zero values.

type rawTaxon struct {
	Abbrev *string `json:"abbrev" validate:"required"`
	Name   *string `json:"name" validate:"required"`
}

type rawGene struct {
	Accession   *string          `json:"accession" validate:"required"`
	Taxon       *rawTaxon        `json:"taxon" validate:"required"`
	Length      *int             `json:"length" validate:"required"`
	Description *string          `json:"description" validate:"required"`
	EcNumbers   []string         `json:"ecNumbers" validate:"required"`
	PfamDomains map[string][]int `json:"pfamDomains" validate:"required"`
}

type rawEcNumber struct {
	Code        *string `json:"code" validate:"required"`
	Description string  `json:"description"`
	Color       *string `json:"color" validate:"required"`
	Count       *int    `json:"count" validate:"required"`
	Index       *int    `json:"index" validate:"required"`
}

type rawPfamDomain struct {
	Accession   *string `json:"accession" validate:"required"`
	Symbol      string  `json:"symbol"`
	Description *string `json:"description" validate:"required"`
	Color       *string `json:"color" validate:"required"`
	Count       *int    `json:"count" validate:"required"`
	Index       *int    `json:"index" validate:"required"`
}

type rawGroup struct {
	Name        *string                   `json:"name" validate:"required"`
	Genes       map[string]*rawGene       `json:"genes" validate:"required,dive,required"`
	EcNumbers   map[string]*rawEcNumber   `json:"ecNumbers" validate:"required,dive,required"`
	PfamDomains map[string]*rawPfamDomain `json:"pfamDomains" validate:"required,dive,required"`
}

type rawNode struct {
	ID *string `json:"id" validate:"required"`
	X  *coord  `json:"x" validate:"required"`
	Y  *coord  `json:"y" validate:"required"`
}

type rawEdge struct {
	QueryID   *string  `json:"queryId" validate:"required"`
	SubjectID *string  `json:"subjectId" validate:"required"`
	T         *string  `json:"T" validate:"required"`
	E         *string  `json:"E" validate:"required"`
	Score     *float64 `json:"score" validate:"required"`
}

type rawLayout struct {
	Group        *rawGroup           `json:"group" validate:"required"`
	Nodes        map[string]*rawNode `json:"nodes" validate:"required,dive,required"`
	Edges        map[string]*rawEdge `json:"edges" validate:"required,dive,required"`
	MinEvalueExp *int                `json:"minEvalueExp" validate:"required"`
	MaxEvalueExp *int                `json:"maxEvalueExp" validate:"required"`
	Size         *int                `json:"size" validate:"required"`
	TaxonCounts  map[string]int      `json:"taxonCounts" validate:"required"`
}

// coord accepts a JSON number or a numeric string.
type coord float64

func (c *coord) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("coordinate %q: %w", s, err)
		}
		*c = coord(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = coord(v)
	return nil
}

func (r *rawLayout) convert() *GroupLayout {
	l := &GroupLayout{
		Group: Group{
			Name:        *r.Group.Name,
			Genes:       make(map[string]GeneEntry, len(r.Group.Genes)),
			EcNumbers:   make(map[string]EcNumberEntry, len(r.Group.EcNumbers)),
			PfamDomains: make(map[string]PfamDomainEntry, len(r.Group.PfamDomains)),
		},
		Nodes:        make(map[string]NodeEntry, len(r.Nodes)),
		Edges:        make(map[string]EdgeEntry, len(r.Edges)),
		MinEvalueExp: *r.MinEvalueExp,
		MaxEvalueExp: *r.MaxEvalueExp,
		Size:         *r.Size,
		TaxonCounts:  r.TaxonCounts,
	}
	for id, g := range r.Group.Genes {
		l.Group.Genes[id] = GeneEntry{
			Accession:   *g.Accession,
			Taxon:       Taxon{Abbrev: *g.Taxon.Abbrev, Name: *g.Taxon.Name},
			Length:      *g.Length,
			Description: *g.Description,
			EcNumbers:   g.EcNumbers,
			PfamDomains: g.PfamDomains,
		}
	}
	for code, e := range r.Group.EcNumbers {
		l.Group.EcNumbers[code] = EcNumberEntry{
			Code:        *e.Code,
			Description: e.Description,
			Color:       *e.Color,
			Count:       *e.Count,
			Index:       *e.Index,
		}
	}
	for acc, p := range r.Group.PfamDomains {
		l.Group.PfamDomains[acc] = PfamDomainEntry{
			Accession:   *p.Accession,
			Symbol:      p.Symbol,
			Description: *p.Description,
			Color:       *p.Color,
			Count:       *p.Count,
			Index:       *p.Index,
		}
	}
	for id, n := range r.Nodes {
		l.Nodes[id] = NodeEntry{ID: *n.ID, X: float64(*n.X), Y: float64(*n.Y)}
	}
	for id, e := range r.Edges {
		l.Edges[id] = EdgeEntry{
			QueryID:   *e.QueryID,
			SubjectID: *e.SubjectID,
			T:         EdgeType(*e.T),
			E:         *e.E,
			Score:     *e.Score,
		}
	}
	return l
}
