package taxon

import (
	"errors"
	"fmt"
	"sort"

	"github.com/vanderheijden86/orthoweb/pkg/debug"
	"github.com/vanderheijden86/orthoweb/pkg/metrics"
)

var (
	ErrNoRoot             = errors.New("taxon tree has no root")
	ErrMultipleRoots      = errors.New("taxon tree has multiple roots")
	ErrSpeciesHasChildren = errors.New("species taxon has children")
	ErrUnreachable        = errors.New("taxon not reachable from root")
)

// Node is one taxon in an assembled tree.
type Node struct {
	Abbrev     string
	Name       string
	CommonName string
	ID         int
	SortIndex  int
	Species    bool
	Children   []*Node
}

// Tree is an ordered taxonomy with a single root.
type Tree struct {
	Root *Node
}

// BuildTree assembles entries into a tree. Entries may be listed flat, nested
// under their parents, or both; repeated definitions of one abbreviation
// contribute the union of their children.
func BuildTree(entries Entries) (*Tree, error) {
	defer metrics.Timer(metrics.TreeBuild)()

	flat := make(map[string]Entry)
	kids := make(map[string]map[string]bool)
	// Top-level definitions win over nested stubs.
	for abbrev, e := range entries {
		flat[abbrev] = e
	}
	var collect func(Entries)
	collect = func(es Entries) {
		for abbrev, e := range es {
			if _, seen := flat[abbrev]; !seen {
				flat[abbrev] = e
			}
			if kids[abbrev] == nil {
				kids[abbrev] = make(map[string]bool)
			}
			for child := range e.Children {
				kids[abbrev][child] = true
			}
			collect(e.Children)
		}
	}
	collect(entries)

	isChild := make(map[string]bool)
	for _, set := range kids {
		for child := range set {
			isChild[child] = true
		}
	}
	var roots []string
	for abbrev := range flat {
		if !isChild[abbrev] {
			roots = append(roots, abbrev)
		}
	}
	sort.Strings(roots)
	switch {
	case len(roots) == 0:
		return nil, ErrNoRoot
	case len(roots) > 1:
		return nil, fmt.Errorf("%w: %v", ErrMultipleRoots, roots)
	}

	built := make(map[string]*Node, len(flat))
	var build func(abbrev string) (*Node, error)
	build = func(abbrev string) (*Node, error) {
		e := flat[abbrev]
		n := &Node{
			Abbrev:     e.Abbrev,
			Name:       e.Name,
			CommonName: e.CommonName,
			ID:         e.ID,
			SortIndex:  e.SortIndex,
			Species:    e.Species,
		}
		built[abbrev] = n
		if e.Species && len(kids[abbrev]) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrSpeciesHasChildren, abbrev)
		}
		for child := range kids[abbrev] {
			if _, dup := built[child]; dup {
				// A child reached twice means a cycle or a shared subtree.
				return nil, fmt.Errorf("%w: %s appears under more than one parent", ErrInvalidEntry, child)
			}
			c, err := build(child)
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, c)
		}
		sort.Slice(n.Children, func(i, j int) bool {
			a, b := n.Children[i], n.Children[j]
			if a.SortIndex != b.SortIndex {
				return a.SortIndex < b.SortIndex
			}
			return a.Abbrev < b.Abbrev
		})
		return n, nil
	}

	root, err := build(roots[0])
	if err != nil {
		return nil, err
	}
	if len(built) != len(flat) {
		for abbrev := range flat {
			if _, ok := built[abbrev]; !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnreachable, abbrev)
			}
		}
	}

	debug.Log("taxon: built tree rooted at %s with %d taxa", root.Abbrev, len(built))
	return &Tree{Root: root}, nil
}

// Walk visits nodes in pre-order. Returning false skips the node's subtree.
func (t *Tree) Walk(fn func(n *Node, depth int) bool) {
	if t == nil || t.Root == nil {
		return
	}
	var walk func(*Node, int)
	walk = func(n *Node, depth int) {
		if !fn(n, depth) {
			return
		}
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(t.Root, 0)
}

// Find returns the node with the given abbreviation, or nil.
func (t *Tree) Find(abbrev string) *Node {
	var found *Node
	t.Walk(func(n *Node, _ int) bool {
		if found != nil {
			return false
		}
		if n.Abbrev == abbrev {
			found = n
			return false
		}
		return true
	})
	return found
}
