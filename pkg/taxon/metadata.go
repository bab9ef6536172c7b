package taxon

// SpeciesInfo is the per-species display metadata used by the cluster graph.
type SpeciesInfo struct {
	Abbrev     string   `json:"abbrev"`
	Name       string   `json:"name"`
	Path       []string `json:"path"` // ancestor names, root first, parent last
	Color      string   `json:"color"`
	GroupColor string   `json:"groupColor"`
}

// UIMetadata indexes a tree for display.
type UIMetadata struct {
	Tree       *Tree                  `json:"-"`
	TaxonOrder []string               `json:"taxonOrder"`
	Species    map[string]SpeciesInfo `json:"species"`
}

// speciesPalette colours individual species by their position in TaxonOrder.
var speciesPalette = []string{
	"#1f77b4", "#aec7e8", "#ff7f0e", "#ffbb78", "#2ca02c",
	"#98df8a", "#d62728", "#ff9896", "#9467bd", "#c5b0d5",
	"#8c564b", "#c49c94", "#e377c2", "#f7b6d2", "#7f7f7f",
	"#c7c7c7", "#bcbd22", "#dbdb8d", "#17becf", "#9edae5",
}

// groupPalette colours the clades directly under the root.
var groupPalette = []string{
	"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f",
	"#edc948", "#b07aa1", "#ff9da7", "#9c755f", "#bab0ac",
}

// NewUIMetadata derives species order, ancestor paths and colours from a tree.
func NewUIMetadata(tree *Tree) *UIMetadata {
	meta := &UIMetadata{
		Tree:    tree,
		Species: make(map[string]SpeciesInfo),
	}
	if tree == nil || tree.Root == nil {
		return meta
	}

	var walk func(n *Node, path []string, group string)
	walk = func(n *Node, path []string, group string) {
		if n.Species {
			idx := len(meta.TaxonOrder)
			meta.TaxonOrder = append(meta.TaxonOrder, n.Abbrev)
			meta.Species[n.Abbrev] = SpeciesInfo{
				Abbrev:     n.Abbrev,
				Name:       n.Name,
				Path:       append([]string(nil), path...),
				Color:      speciesPalette[idx%len(speciesPalette)],
				GroupColor: group,
			}
			return
		}
		childPath := append(append([]string(nil), path...), n.Name)
		for _, c := range n.Children {
			walk(c, childPath, group)
		}
	}

	root := tree.Root
	if root.Species {
		walk(root, nil, groupPalette[0])
		return meta
	}
	for i, clade := range root.Children {
		walk(clade, []string{root.Name}, groupPalette[i%len(groupPalette)])
	}
	return meta
}

// Info returns the metadata for a species abbreviation.
func (m *UIMetadata) Info(abbrev string) (SpeciesInfo, bool) {
	info, ok := m.Species[abbrev]
	return info, ok
}
