package clustergraph

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Components returns the connected components of the visible subgraph,
// each sorted by node id, largest component first.
func (v *View) Components() [][]string {
	g := simple.NewUndirectedGraph()
	ids := make(map[int64]string, len(v.g.Nodes))
	for i, n := range v.g.Nodes {
		g.AddNode(simple.Node(int64(i)))
		ids[int64(i)] = n.ID
	}
	for _, e := range v.VisibleEdges() {
		from, to := v.g.nodeIndex[e.Source], v.g.nodeIndex[e.Target]
		if from == to {
			continue
		}
		g.SetEdge(g.NewEdge(simple.Node(int64(from)), simple.Node(int64(to))))
	}

	var out [][]string
	for _, cc := range topo.ConnectedComponents(g) {
		comp := make([]string, 0, len(cc))
		for _, n := range cc {
			comp = append(comp, ids[n.ID()])
		}
		sort.Strings(comp)
		out = append(out, comp)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i][0] < out[j][0]
	})
	return out
}
