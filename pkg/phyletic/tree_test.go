package phyletic

import (
	"errors"
	"reflect"
	"testing"

	"github.com/vanderheijden86/orthoweb/pkg/taxon"
	"github.com/vanderheijden86/orthoweb/pkg/testutil"
)

func mustTree(t *testing.T, src *taxon.Tree) *Tree {
	t.Helper()
	tree, err := NewTree(src)
	if err != nil {
		t.Fatalf("NewTree: %v", err)
	}
	return tree
}

func TestNewTree_Scenario(t *testing.T) {
	tree := mustTree(t, testutil.Scenario())

	root := tree.Root()
	if root.Abbrev != "R" || root.Parent != "" {
		t.Errorf("unexpected root: %+v", root)
	}
	if root.SpeciesCount != 2 {
		t.Errorf("root species count = %d, want 2", root.SpeciesCount)
	}
	if p, ok := tree.Parent("sp2"); !ok || p != "A" {
		t.Errorf("Parent(sp2) = %q, %v", p, ok)
	}
	if _, ok := tree.Parent("R"); ok {
		t.Error("root should have no parent")
	}
	if got := tree.Ancestors("sp1"); !reflect.DeepEqual(got, []string{"A", "R"}) {
		t.Errorf("Ancestors(sp1) = %v", got)
	}
	if got := tree.Descendants("R"); !reflect.DeepEqual(got, []string{"A", "sp1", "sp2"}) {
		t.Errorf("Descendants(R) = %v", got)
	}
	if tree.Len() != 4 {
		t.Errorf("Len = %d, want 4", tree.Len())
	}
	sp1, ok := tree.Node("sp1")
	if !ok || !sp1.Species || sp1.SpeciesCount != 1 || len(sp1.Children) != 0 {
		t.Errorf("unexpected sp1: %+v", sp1)
	}
	if _, ok := tree.Node("missing"); ok {
		t.Error("expected missing node lookup to fail")
	}
}

func TestNewTree_SpeciesAfterClades(t *testing.T) {
	tree := mustTree(t, testutil.NewDefault().Interleaved(2))

	want := []string{"C2", "C3", "sp1", "sp3"}
	if got := tree.Children("C1"); !reflect.DeepEqual(got, want) {
		t.Errorf("Children(C1) = %v, want %v", got, want)
	}
	if got := tree.Root().SpeciesCount; got != 4 {
		t.Errorf("species count = %d, want 4", got)
	}
}

func TestNewTree_SpeciesCountsSum(t *testing.T) {
	src := testutil.NewDefault().Random(5, 4)
	tree := mustTree(t, src)

	if got, want := tree.Root().SpeciesCount, testutil.CountSpecies(src); got != want {
		t.Errorf("root species count = %d, want %d", got, want)
	}
	tree.Walk(func(n Node, _ int) bool {
		if n.Species {
			if n.SpeciesCount != 1 {
				t.Errorf("species %s count = %d", n.Abbrev, n.SpeciesCount)
			}
			return true
		}
		sum := 0
		for _, c := range n.Children {
			child, _ := tree.Node(c)
			sum += child.SpeciesCount
		}
		if sum != n.SpeciesCount {
			t.Errorf("%s count = %d, children sum to %d", n.Abbrev, n.SpeciesCount, sum)
		}
		return true
	})
}

func TestNewTree_Walk(t *testing.T) {
	tree := mustTree(t, testutil.Scenario())

	var visited []string
	var depths []int
	tree.Walk(func(n Node, depth int) bool {
		visited = append(visited, n.Abbrev)
		depths = append(depths, depth)
		return n.Abbrev != "A"
	})
	if !reflect.DeepEqual(visited, []string{"R", "A"}) {
		t.Errorf("visited = %v", visited)
	}
	if !reflect.DeepEqual(depths, []int{0, 1}) {
		t.Errorf("depths = %v", depths)
	}
	if got := tree.Abbrevs(); !reflect.DeepEqual(got, []string{"R", "A", "sp1", "sp2"}) {
		t.Errorf("Abbrevs = %v", got)
	}
}

func TestNewTree_Errors(t *testing.T) {
	if _, err := NewTree(nil); !errors.Is(err, ErrEmptyTree) {
		t.Errorf("expected ErrEmptyTree, got %v", err)
	}

	dup := &taxon.Tree{Root: &taxon.Node{
		Abbrev: "R",
		Children: []*taxon.Node{
			{Abbrev: "x", Species: true},
			{Abbrev: "A", Children: []*taxon.Node{{Abbrev: "x", Species: true}}},
		},
	}}
	if _, err := NewTree(dup); !errors.Is(err, ErrDuplicateAbbrev) {
		t.Errorf("expected ErrDuplicateAbbrev, got %v", err)
	}
}

func TestNewTree_SpeciesRoot(t *testing.T) {
	tree := mustTree(t, &taxon.Tree{Root: &taxon.Node{Abbrev: "solo", Species: true}})
	if tree.Root().SpeciesCount != 1 || tree.Len() != 1 {
		t.Errorf("unexpected species root: %+v", tree.Root())
	}
}
