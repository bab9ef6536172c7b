// Package phyletic builds phyletic pattern expressions from a taxon tree.
//
// The package has three layers:
//   - Tree: an arena-backed copy of the taxonomy annotated with species
//     counts, with species leaves ordered after sub-clades.
//   - Toggle/Engine: cycles one node's constraint state and propagates it
//     to ancestors and descendants, producing a fresh state map each time.
//   - Synthesize: projects a state map onto the tree as the textual
//     expression consumed by the GroupsByPhyleticPattern search.
package phyletic

import (
	"errors"
	"fmt"

	"github.com/vanderheijden86/orthoweb/pkg/taxon"
)

var (
	ErrEmptyTree       = errors.New("phyletic: empty taxon tree")
	ErrDuplicateAbbrev = errors.New("phyletic: duplicate abbreviation")
	ErrUnknownNode     = errors.New("phyletic: unknown node")
)

const noParent = -1

// node is an arena slot. Links are indexes into Tree.nodes.
type node struct {
	abbrev       string
	name         string
	species      bool
	speciesCount int
	parent       int
	children     []int
}

// Node is a read-only view of one tree node.
type Node struct {
	Abbrev       string   `json:"abbrev"`
	Name         string   `json:"name"`
	Species      bool     `json:"species"`
	SpeciesCount int      `json:"speciesCount"`
	Parent       string   `json:"parent,omitempty"`
	Children     []string `json:"children,omitempty"`
}

// Tree is the annotated taxonomy. It is immutable once built.
type Tree struct {
	nodes []node
	index map[string]int
	root  int
}

// NewTree converts a taxon tree into the annotated arena form.
func NewTree(t *taxon.Tree) (*Tree, error) {
	if t == nil || t.Root == nil {
		return nil, ErrEmptyTree
	}
	tr := &Tree{index: make(map[string]int)}

	var transform func(n *taxon.Node) (int, error)
	transform = func(n *taxon.Node) (int, error) {
		if _, dup := tr.index[n.Abbrev]; dup {
			return 0, fmt.Errorf("%w: %s", ErrDuplicateAbbrev, n.Abbrev)
		}
		// Reserve the slot so duplicates below are caught.
		tr.index[n.Abbrev] = -1

		var clades, species []int
		count := 0
		for _, c := range n.Children {
			ci, err := transform(c)
			if err != nil {
				return 0, err
			}
			if tr.nodes[ci].species {
				species = append(species, ci)
			} else {
				clades = append(clades, ci)
			}
			count += tr.nodes[ci].speciesCount
		}
		if n.Species {
			count = 1
		}

		idx := len(tr.nodes)
		tr.nodes = append(tr.nodes, node{
			abbrev:       n.Abbrev,
			name:         n.Name,
			species:      n.Species,
			speciesCount: count,
			parent:       noParent,
			children:     append(clades, species...),
		})
		tr.index[n.Abbrev] = idx
		return idx, nil
	}

	root, err := transform(t.Root)
	if err != nil {
		return nil, err
	}
	tr.root = root

	for i := range tr.nodes {
		for _, c := range tr.nodes[i].children {
			tr.nodes[c].parent = i
		}
	}
	return tr, nil
}

func (t *Tree) view(i int) Node {
	n := t.nodes[i]
	v := Node{
		Abbrev:       n.abbrev,
		Name:         n.name,
		Species:      n.species,
		SpeciesCount: n.speciesCount,
	}
	if n.parent != noParent {
		v.Parent = t.nodes[n.parent].abbrev
	}
	if len(n.children) > 0 {
		v.Children = make([]string, len(n.children))
		for j, c := range n.children {
			v.Children[j] = t.nodes[c].abbrev
		}
	}
	return v
}

func (t *Tree) lookup(abbrev string) (int, error) {
	i, ok := t.index[abbrev]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownNode, abbrev)
	}
	return i, nil
}

// Root returns the root node.
func (t *Tree) Root() Node {
	return t.view(t.root)
}

// Node returns the node with the given abbreviation.
func (t *Tree) Node(abbrev string) (Node, bool) {
	i, ok := t.index[abbrev]
	if !ok {
		return Node{}, false
	}
	return t.view(i), true
}

// Parent returns the abbreviation of the node's parent. The root has none.
func (t *Tree) Parent(abbrev string) (string, bool) {
	i, ok := t.index[abbrev]
	if !ok || t.nodes[i].parent == noParent {
		return "", false
	}
	return t.nodes[t.nodes[i].parent].abbrev, true
}

// Children returns the node's children, clades first then species.
func (t *Tree) Children(abbrev string) []string {
	i, ok := t.index[abbrev]
	if !ok {
		return nil
	}
	return t.view(i).Children
}

// Ancestors returns the node's ancestors from its parent up to the root.
func (t *Tree) Ancestors(abbrev string) []string {
	i, ok := t.index[abbrev]
	if !ok {
		return nil
	}
	var out []string
	for p := t.nodes[i].parent; p != noParent; p = t.nodes[p].parent {
		out = append(out, t.nodes[p].abbrev)
	}
	return out
}

// Descendants returns every strict descendant in pre-order.
func (t *Tree) Descendants(abbrev string) []string {
	i, ok := t.index[abbrev]
	if !ok {
		return nil
	}
	var out []string
	t.eachDescendant(i, func(d int) {
		out = append(out, t.nodes[d].abbrev)
	})
	return out
}

func (t *Tree) eachDescendant(i int, fn func(int)) {
	for _, c := range t.nodes[i].children {
		fn(c)
		t.eachDescendant(c, fn)
	}
}

// Walk visits nodes in pre-order. Returning false skips the subtree.
func (t *Tree) Walk(fn func(n Node, depth int) bool) {
	var walk func(i, depth int)
	walk = func(i, depth int) {
		if !fn(t.view(i), depth) {
			return
		}
		for _, c := range t.nodes[i].children {
			walk(c, depth+1)
		}
	}
	walk(t.root, 0)
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Abbrevs returns every abbreviation in pre-order.
func (t *Tree) Abbrevs() []string {
	out := make([]string, 0, len(t.nodes))
	out = append(out, t.nodes[t.root].abbrev)
	t.eachDescendant(t.root, func(d int) {
		out = append(out, t.nodes[d].abbrev)
	})
	return out
}
