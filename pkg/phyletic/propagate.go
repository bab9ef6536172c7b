package phyletic

import (
	"github.com/vanderheijden86/orthoweb/pkg/debug"
	"github.com/vanderheijden86/orthoweb/pkg/metrics"
)

// Initialize returns a state map with every node of tree set to free.
func Initialize(tree *Tree) States {
	if tree == nil {
		return States{}
	}
	states := make(States, tree.Len())
	for _, n := range tree.nodes {
		states[n.abbrev] = Free
	}
	return states
}

// Toggle advances the named node to its next state and propagates the change.
// The input map is left untouched; the result is a new, complete map. Entries
// missing from states are read as free, and keys that are not in the tree are
// dropped.
func Toggle(tree *Tree, states States, abbrev string) (States, error) {
	defer metrics.Timer(metrics.Propagation)()

	idx, err := tree.lookup(abbrev)
	if err != nil {
		return nil, err
	}

	next := make(States, tree.Len())
	for _, n := range tree.nodes {
		s, ok := states[n.abbrev]
		if !ok {
			s = Free
		}
		next[n.abbrev] = s
	}

	target := tree.nodes[idx]
	changed := NextState(next[target.abbrev], target.species)
	next[target.abbrev] = changed

	for p := target.parent; p != noParent; p = tree.nodes[p].parent {
		next[tree.nodes[p].abbrev] = summarize(tree, next, p)
	}

	fill := changed
	if changed == IncludeAtLeastOne {
		fill = Free
	}
	tree.eachDescendant(idx, func(d int) {
		next[tree.nodes[d].abbrev] = fill
	})

	debug.Log("phyletic: toggle %s %s -> %s", abbrev, states[abbrev], changed)
	return next, nil
}

// summarize derives an interior node's state from its immediate children.
func summarize(tree *Tree, states States, i int) ConstraintState {
	children := tree.nodes[i].children
	if len(children) == 0 {
		return states[tree.nodes[i].abbrev]
	}
	shared := states[tree.nodes[children[0]].abbrev]
	for _, c := range children[1:] {
		if states[tree.nodes[c].abbrev] != shared {
			return Mixed
		}
	}
	if shared == IncludeAtLeastOne {
		return Mixed
	}
	return shared
}
