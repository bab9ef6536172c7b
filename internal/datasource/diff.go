package datasource

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vanderheijden86/orthoweb/pkg/taxon"
)

// TaxonDiff represents differences between two loaded taxonomies
type TaxonDiff struct {
	// Added contains abbreviations present only in the new tree
	Added []string
	// Removed contains abbreviations present only in the old tree
	Removed []string
	// Moved contains taxa whose parent changed
	Moved []MoveDifference
	// CountA is the number of taxa in the old tree
	CountA int
	// CountB is the number of taxa in the new tree
	CountB int
}

// MoveDifference represents a parent change for a single taxon
type MoveDifference struct {
	Abbrev  string `json:"abbrev"`
	ParentA string `json:"parent_a"`
	ParentB string `json:"parent_b"`
}

// HasChanges returns true if the trees differ
func (d TaxonDiff) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0 || len(d.Moved) > 0
}

// Summary returns a human-readable summary of the differences
func (d TaxonDiff) Summary() string {
	if !d.HasChanges() {
		return fmt.Sprintf("Taxonomy unchanged (%d taxa)", d.CountA)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Taxonomy changed: %d -> %d taxa\n", d.CountA, d.CountB)
	if len(d.Added) > 0 {
		fmt.Fprintf(&b, "  - added: %s\n", abbreviate(d.Added))
	}
	if len(d.Removed) > 0 {
		fmt.Fprintf(&b, "  - removed: %s\n", abbreviate(d.Removed))
	}
	for i, m := range d.Moved {
		if i == 5 {
			fmt.Fprintf(&b, "  - ... and %d more moves\n", len(d.Moved)-5)
			break
		}
		fmt.Fprintf(&b, "  - moved %s: %s -> %s\n", m.Abbrev, m.ParentA, m.ParentB)
	}
	return b.String()
}

func abbreviate(ids []string) string {
	if len(ids) <= 5 {
		return strings.Join(ids, ", ")
	}
	return strings.Join(ids[:5], ", ") + fmt.Sprintf(" (+%d)", len(ids)-5)
}

// DiffTrees compares two taxonomies by abbreviation and parent.
func DiffTrees(a, b *taxon.Tree) TaxonDiff {
	parentsA, parentsB := parents(a), parents(b)
	d := TaxonDiff{CountA: len(parentsA), CountB: len(parentsB)}

	for abbrev, pa := range parentsA {
		pb, ok := parentsB[abbrev]
		if !ok {
			d.Removed = append(d.Removed, abbrev)
			continue
		}
		if pa != pb {
			d.Moved = append(d.Moved, MoveDifference{Abbrev: abbrev, ParentA: pa, ParentB: pb})
		}
	}
	for abbrev := range parentsB {
		if _, ok := parentsA[abbrev]; !ok {
			d.Added = append(d.Added, abbrev)
		}
	}

	sort.Strings(d.Added)
	sort.Strings(d.Removed)
	sort.Slice(d.Moved, func(i, j int) bool { return d.Moved[i].Abbrev < d.Moved[j].Abbrev })
	return d
}

func parents(t *taxon.Tree) map[string]string {
	out := make(map[string]string)
	if t == nil || t.Root == nil {
		return out
	}
	var visit func(n *taxon.Node, parent string)
	visit = func(n *taxon.Node, parent string) {
		out[n.Abbrev] = parent
		for _, c := range n.Children {
			visit(c, n.Abbrev)
		}
	}
	visit(t.Root, "")
	return out
}
