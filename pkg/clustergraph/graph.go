package clustergraph

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/vanderheijden86/orthoweb/pkg/debug"
	"github.com/vanderheijden86/orthoweb/pkg/grouplayout"
	"github.com/vanderheijden86/orthoweb/pkg/metrics"
	"github.com/vanderheijden86/orthoweb/pkg/taxon"
)

// ErrUnknownTaxon is returned when a gene's species is absent from the
// taxon metadata.
var ErrUnknownTaxon = errors.New("clustergraph: gene taxon not in taxon metadata")

// blank fills pie slices for annotations a gene lacks.
const blank = "white"

// Node is a gene placed on the canvas.
type Node struct {
	ID               string   `json:"id"`
	X                float64  `json:"x"`
	Y                float64  `json:"y"`
	Taxon            string   `json:"taxon"`
	SpeciesColor     string   `json:"speciesColor"`
	GroupColor       string   `json:"groupColor"`
	EcPieColors      []string `json:"ecPieColors"`
	EcPieSliceSize   string   `json:"ecPieSliceSize"`
	PfamPieColors    []string `json:"pfamPieColors"`
	PfamPieSliceSize string   `json:"pfamPieSliceSize"`
}

// Edge is a BLAST similarity between two nodes.
type Edge struct {
	ID     string               `json:"id"`
	Source string               `json:"source"`
	Target string               `json:"target"`
	Type   grouplayout.EdgeType `json:"type"`
	Label  string               `json:"label"`
	EValue float64              `json:"eValue"`
	Score  float64              `json:"score"`
}

// Graph is the renderable model of one group layout.
type Graph struct {
	Layout *grouplayout.GroupLayout
	Meta   *taxon.UIMetadata

	Nodes []Node
	Edges []Edge

	// Annotations ordered by count desc, then index asc.
	EcNumbers   []grouplayout.EcNumberEntry
	PfamDomains []grouplayout.PfamDomainEntry

	nodeIndex map[string]int
	edgeIndex map[string]int
}

// Build maps a layout onto nodes and edges.
func Build(layout *grouplayout.GroupLayout, meta *taxon.UIMetadata) (*Graph, error) {
	defer metrics.Timer(metrics.GraphBuild)()

	g := &Graph{
		Layout:      layout,
		Meta:        meta,
		EcNumbers:   orderedEcNumbers(layout),
		PfamDomains: orderedPfamDomains(layout),
		nodeIndex:   make(map[string]int, len(layout.Nodes)),
		edgeIndex:   make(map[string]int, len(layout.Edges)),
	}
	ecSlices := min(len(g.EcNumbers), MaxPieSlices)
	pfamSlices := min(len(g.PfamDomains), MaxPieSlices)

	for _, id := range layout.NodeIDs() {
		entry := layout.Nodes[id]
		gene := layout.Group.Genes[id]
		info, ok := meta.Info(gene.Taxon.Abbrev)
		if !ok {
			return nil, fmt.Errorf("%w: node %s taxon %q", ErrUnknownTaxon, id, gene.Taxon.Abbrev)
		}

		ecColors := make([]string, ecSlices)
		for i, ec := range g.EcNumbers[:ecSlices] {
			ecColors[i] = blank
			for _, code := range gene.EcNumbers {
				if code == ec.Code {
					ecColors[i] = ec.Color
					break
				}
			}
		}
		pfamColors := make([]string, pfamSlices)
		for i, pf := range g.PfamDomains[:pfamSlices] {
			pfamColors[i] = blank
			if _, has := gene.PfamDomains[pf.Accession]; has {
				pfamColors[i] = pf.Color
			}
		}

		g.nodeIndex[id] = len(g.Nodes)
		g.Nodes = append(g.Nodes, Node{
			ID:               id,
			X:                entry.X,
			Y:                entry.Y,
			Taxon:            gene.Taxon.Abbrev,
			SpeciesColor:     info.Color,
			GroupColor:       info.GroupColor,
			EcPieColors:      ecColors,
			EcPieSliceSize:   sliceSize(ecSlices),
			PfamPieColors:    pfamColors,
			PfamPieSliceSize: sliceSize(pfamSlices),
		})
	}

	for _, id := range layout.EdgeIDs() {
		e := layout.Edges[id]
		g.edgeIndex[id] = len(g.Edges)
		g.Edges = append(g.Edges, Edge{
			ID:     id,
			Source: e.QueryID,
			Target: e.SubjectID,
			Type:   e.T,
			Label:  e.T.DisplayName() + ", evalue=" + e.E,
			EValue: e.EValue(),
			Score:  e.Score,
		})
	}

	debug.Log("clustergraph: built %s with %d nodes, %d edges", layout.Group.Name, len(g.Nodes), len(g.Edges))
	return g, nil
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.nodeIndex[id]
	if !ok {
		return Node{}, false
	}
	return g.Nodes[i], true
}

// Edge returns the edge with the given id.
func (g *Graph) Edge(id string) (Edge, bool) {
	i, ok := g.edgeIndex[id]
	if !ok {
		return Edge{}, false
	}
	return g.Edges[i], true
}

func sliceSize(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.FormatFloat(100/float64(n), 'f', -1, 64) + "%"
}

func orderedEcNumbers(l *grouplayout.GroupLayout) []grouplayout.EcNumberEntry {
	out := make([]grouplayout.EcNumberEntry, 0, len(l.Group.EcNumbers))
	for _, e := range l.Group.EcNumbers {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].Index != out[j].Index {
			return out[i].Index < out[j].Index
		}
		return out[i].Code < out[j].Code
	})
	return out
}

func orderedPfamDomains(l *grouplayout.GroupLayout) []grouplayout.PfamDomainEntry {
	out := make([]grouplayout.PfamDomainEntry, 0, len(l.Group.PfamDomains))
	for _, p := range l.Group.PfamDomains {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].Index != out[j].Index {
			return out[i].Index < out[j].Index
		}
		return out[i].Accession < out[j].Accession
	})
	return out
}
