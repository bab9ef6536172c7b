package phyletic

import (
	"errors"
	"testing"

	"github.com/vanderheijden86/orthoweb/pkg/taxon"
	"github.com/vanderheijden86/orthoweb/pkg/testutil"
)

func toggleAll(t *testing.T, tree *Tree, states States, abbrevs ...string) States {
	t.Helper()
	for _, a := range abbrevs {
		next, err := Toggle(tree, states, a)
		if err != nil {
			t.Fatalf("Toggle(%s): %v", a, err)
		}
		states = next
	}
	return states
}

func assertStates(t *testing.T, states States, want map[string]ConstraintState) {
	t.Helper()
	for abbrev, w := range want {
		if got := states[abbrev]; got != w {
			t.Errorf("state[%s] = %q, want %q", abbrev, got, w)
		}
	}
}

func TestNextState(t *testing.T) {
	tests := []struct {
		current ConstraintState
		species bool
		want    ConstraintState
	}{
		{Free, false, IncludeAll},
		{IncludeAll, false, IncludeAtLeastOne},
		{IncludeAtLeastOne, false, Exclude},
		{Exclude, false, Free},
		{Mixed, false, IncludeAll},
		{Free, true, IncludeAll},
		{IncludeAll, true, Exclude},
		{Exclude, true, Free},
		{Mixed, true, IncludeAll},
		{"bogus", false, IncludeAll},
	}
	for _, tt := range tests {
		if got := NextState(tt.current, tt.species); got != tt.want {
			t.Errorf("NextState(%q, species=%v) = %q, want %q", tt.current, tt.species, got, tt.want)
		}
	}
}

func TestInitialize(t *testing.T) {
	tree := mustTree(t, testutil.NewDefault().Balanced(3, 3))
	states := Initialize(tree)
	if len(states) != tree.Len() {
		t.Fatalf("expected %d entries, got %d", tree.Len(), len(states))
	}
	if !states.AllFree() {
		t.Error("expected every node free")
	}
}

func TestToggle_SpeciesCycle(t *testing.T) {
	tree := mustTree(t, testutil.Scenario())
	states := Initialize(tree)

	for _, want := range []ConstraintState{IncludeAll, Exclude, Free} {
		states = toggleAll(t, tree, states, "sp1")
		if states["sp1"] != want {
			t.Fatalf("sp1 = %q, want %q", states["sp1"], want)
		}
	}
}

func TestToggle_CladeCycle(t *testing.T) {
	tree := mustTree(t, testutil.Scenario())
	states := Initialize(tree)

	for _, want := range []ConstraintState{IncludeAll, IncludeAtLeastOne, Exclude, Free} {
		states = toggleAll(t, tree, states, "A")
		if states["A"] != want {
			t.Fatalf("A = %q, want %q", states["A"], want)
		}
	}
}

func TestToggle_DownwardPropagation(t *testing.T) {
	tree := mustTree(t, testutil.NewDefault().Balanced(3, 2))
	states := toggleAll(t, tree, Initialize(tree), "C2")

	for _, d := range tree.Descendants("C2") {
		if states[d] != IncludeAll {
			t.Errorf("descendant %s = %q, want include-all", d, states[d])
		}
	}

	states = toggleAll(t, tree, states, "C2")
	if states["C2"] != IncludeAtLeastOne {
		t.Fatalf("C2 = %q, want include-at-least-one", states["C2"])
	}
	for _, d := range tree.Descendants("C2") {
		if states[d] != Free {
			t.Errorf("descendant %s = %q, want free", d, states[d])
		}
	}

	states = toggleAll(t, tree, states, "C2")
	for _, d := range tree.Descendants("C2") {
		if states[d] != Exclude {
			t.Errorf("descendant %s = %q, want exclude", d, states[d])
		}
	}
}

func TestToggle_UpwardUnanimity(t *testing.T) {
	tree := mustTree(t, testutil.Scenario())

	states := toggleAll(t, tree, Initialize(tree), "sp1", "sp1")
	assertStates(t, states, map[string]ConstraintState{"sp1": Exclude, "A": Mixed, "R": Mixed})

	states = toggleAll(t, tree, states, "sp2", "sp2")
	assertStates(t, states, map[string]ConstraintState{"sp2": Exclude, "A": Exclude, "R": Exclude})

	states = toggleAll(t, tree, states, "sp2")
	assertStates(t, states, map[string]ConstraintState{"sp2": Free, "A": Mixed, "R": Mixed})
}

func TestToggle_AtLeastOneNeverSummarizes(t *testing.T) {
	tree := mustTree(t, &taxon.Tree{Root: &taxon.Node{
		Abbrev: "R",
		Children: []*taxon.Node{
			{Abbrev: "A", Children: []*taxon.Node{{Abbrev: "a1", Species: true}, {Abbrev: "a2", Species: true}}},
			{Abbrev: "B", Children: []*taxon.Node{{Abbrev: "b1", Species: true}}},
		},
	}})

	states := toggleAll(t, tree, Initialize(tree), "A", "A", "B", "B")
	assertStates(t, states, map[string]ConstraintState{
		"A": IncludeAtLeastOne, "B": IncludeAtLeastOne, "R": Mixed,
		"a1": Free, "a2": Free, "b1": Free,
	})

	expr, err := Synthesize(tree, states)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if expr != "A>=1T AND B>=1T" {
		t.Errorf("expression = %q", expr)
	}
}

func TestToggle_MixedBreaksToIncludeAll(t *testing.T) {
	tree := mustTree(t, testutil.Scenario())
	states := toggleAll(t, tree, Initialize(tree), "sp1")
	if states["A"] != Mixed {
		t.Fatalf("A = %q, want mixed", states["A"])
	}

	states = toggleAll(t, tree, states, "A")
	assertStates(t, states, map[string]ConstraintState{
		"A": IncludeAll, "sp1": IncludeAll, "sp2": IncludeAll, "R": IncludeAll,
	})
}

func TestToggle_DoesNotMutateInput(t *testing.T) {
	tree := mustTree(t, testutil.Scenario())
	before := Initialize(tree)
	snapshot := before.Clone()

	after, err := Toggle(tree, before, "A")
	if err != nil {
		t.Fatal(err)
	}
	for k, v := range snapshot {
		if before[k] != v {
			t.Errorf("input mutated at %s: %q -> %q", k, v, before[k])
		}
	}
	if after["A"] != IncludeAll {
		t.Errorf("A = %q, want include-all", after["A"])
	}
}

func TestToggle_UnknownNode(t *testing.T) {
	tree := mustTree(t, testutil.Scenario())
	_, err := Toggle(tree, Initialize(tree), "nope")
	if !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("expected ErrUnknownNode, got %v", err)
	}
}

func TestToggle_FillsMissingEntries(t *testing.T) {
	tree := mustTree(t, testutil.Scenario())
	states, err := Toggle(tree, States{"stray": Exclude}, "sp1")
	if err != nil {
		t.Fatal(err)
	}
	if len(states) != tree.Len() {
		t.Errorf("expected %d entries, got %d", tree.Len(), len(states))
	}
	if _, ok := states["stray"]; ok {
		t.Error("keys outside the tree should be dropped")
	}
	assertStates(t, states, map[string]ConstraintState{"sp1": IncludeAll, "sp2": Free, "A": Mixed})
}

func TestEngine(t *testing.T) {
	tree := mustTree(t, testutil.Scenario())
	e := NewEngine(tree)

	if err := e.Toggle("sp1"); err != nil {
		t.Fatal(err)
	}
	prev := e.States()
	if err := e.Toggle("sp2"); err != nil {
		t.Fatal(err)
	}
	if err := e.Toggle("sp2"); err != nil {
		t.Fatal(err)
	}
	if prev["sp2"] != Free {
		t.Error("earlier snapshot must not change")
	}
	if e.State("A") != Mixed {
		t.Errorf("A = %q, want mixed", e.State("A"))
	}
	expr, err := e.Expression()
	if err != nil {
		t.Fatal(err)
	}
	if expr != "sp1=1T AND sp2=0T" {
		t.Errorf("expression = %q", expr)
	}

	if err := e.Toggle("zzz"); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("expected ErrUnknownNode, got %v", err)
	}

	e.Reset(nil)
	if !e.States().AllFree() {
		t.Error("Reset should free every node")
	}
	if e.Tree() != tree {
		t.Error("Reset(nil) should keep the tree")
	}
}
