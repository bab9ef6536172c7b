package phyletic

import (
	"errors"
	"reflect"
	"testing"

	"github.com/vanderheijden86/orthoweb/pkg/taxon"
	"github.com/vanderheijden86/orthoweb/pkg/testutil"
)

// mixedTree is R -> [A -> [sp1, sp2], sp3].
func mixedTree(t *testing.T) *Tree {
	return mustTree(t, &taxon.Tree{Root: &taxon.Node{
		Abbrev: "R",
		Children: []*taxon.Node{
			{Abbrev: "sp3", Species: true},
			{Abbrev: "A", Children: []*taxon.Node{{Abbrev: "sp1", Species: true}, {Abbrev: "sp2", Species: true}}},
		},
	}})
}

func TestSynthesize_AllFree(t *testing.T) {
	tree := mustTree(t, testutil.NewDefault().Balanced(3, 2))
	expr, err := Synthesize(tree, Initialize(tree))
	if err != nil {
		t.Fatal(err)
	}
	if expr != "" {
		t.Errorf("expected empty expression, got %q", expr)
	}
}

func TestSynthesize_Scenario(t *testing.T) {
	tree := mustTree(t, testutil.Scenario())
	states := toggleAll(t, tree, Initialize(tree), "sp1", "sp2", "sp2")

	if states["A"] != Mixed {
		t.Errorf("A = %q, want mixed", states["A"])
	}
	expr, err := Synthesize(tree, states)
	if err != nil {
		t.Fatal(err)
	}
	if expr != "sp1=1T AND sp2=0T" {
		t.Errorf("expression = %q, want %q", expr, "sp1=1T AND sp2=0T")
	}
}

func TestSynthesize_RootIncludeAll(t *testing.T) {
	src := testutil.NewDefault().Balanced(2, 3)
	tree := mustTree(t, src)

	states := Initialize(tree)
	states[tree.Root().Abbrev] = IncludeAll

	expr, err := Synthesize(tree, states)
	if err != nil {
		t.Fatal(err)
	}
	if expr != "C1=9T" {
		t.Errorf("expression = %q, want C1=9T", expr)
	}
}

func TestSynthesize_Clauses(t *testing.T) {
	tests := []struct {
		name    string
		toggles []string
		want    string
	}{
		{"clade include all", []string{"A"}, "A=2T"},
		{"everything", []string{"A", "sp3"}, "R=3T"},
		{"clade at least one", []string{"A", "A"}, "A>=1T"},
		{"clade exclude", []string{"A", "A", "A"}, "A=0T"},
		{"species under mixed root", []string{"sp3", "sp3"}, "sp3=0T"},
		{"nested mixed", []string{"sp1", "sp3", "sp3"}, "sp1=1T AND sp3=0T"},
		{"clade plus species", []string{"sp1", "sp2", "sp3", "sp3"}, "A=2T AND sp3=0T"},
		{"clade and included species", []string{"A", "A", "sp3"}, "A>=1T AND sp3=1T"},
		{"back to free", []string{"sp1", "sp1", "sp1"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := mixedTree(t)
			states := toggleAll(t, tree, Initialize(tree), tt.toggles...)
			got, err := Synthesize(tree, states)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("expression = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompile_Structure(t *testing.T) {
	tree := mixedTree(t)
	states := toggleAll(t, tree, Initialize(tree), "sp1", "sp3", "sp3")

	expr, err := Compile(tree, states)
	if err != nil {
		t.Fatal(err)
	}
	want := Expression{Included: []string{"sp1"}, Excluded: []string{"sp3"}}
	if !reflect.DeepEqual(expr, want) {
		t.Errorf("Compile = %+v, want %+v", expr, want)
	}
	if expr.IncludedClause() != "sp1=1T" || expr.ExcludedClause() != "sp3=0T" {
		t.Errorf("unexpected group clauses %q / %q", expr.IncludedClause(), expr.ExcludedClause())
	}
	if expr.Empty() {
		t.Error("expression should not be empty")
	}
}

func TestCompile_ClauseStructure(t *testing.T) {
	tests := []struct {
		toggles []string
		want    Clause
		text    string
	}{
		{[]string{"A"}, Clause{Abbrev: "A", Kind: ClauseAll, SpeciesCount: 2}, "A=2T"},
		{[]string{"A", "A"}, Clause{Abbrev: "A", Kind: ClauseAtLeastOne, SpeciesCount: 2}, "A>=1T"},
		{[]string{"A", "A", "A"}, Clause{Abbrev: "A", Kind: ClauseNone, SpeciesCount: 2}, "A=0T"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			tree := mixedTree(t)
			expr, err := Compile(tree, toggleAll(t, tree, Initialize(tree), tt.toggles...))
			if err != nil {
				t.Fatal(err)
			}
			if len(expr.Clauses) != 1 || expr.Clauses[0] != tt.want {
				t.Fatalf("Clauses = %+v, want [%+v]", expr.Clauses, tt.want)
			}
			if got := expr.Clauses[0].String(); got != tt.text {
				t.Errorf("String = %q, want %q", got, tt.text)
			}
		})
	}
}

func TestExpression_String(t *testing.T) {
	e := Expression{
		Clauses: []Clause{
			{Abbrev: "MAMM", Kind: ClauseAll, SpeciesCount: 4},
			{Abbrev: "BACT", Kind: ClauseAtLeastOne, SpeciesCount: 9},
		},
		Included: []string{"hsap", "mmus"},
		Excluded: []string{"ecol", "atha", "scer"},
	}
	want := "MAMM=4T AND BACT>=1T AND hsap+mmus=2T AND ecol+atha+scer=0T"
	if got := e.String(); got != want {
		t.Errorf("String = %q, want %q", got, want)
	}
	if (Expression{}).String() != "" {
		t.Error("empty expression should render as empty string")
	}
}

func TestSynthesize_SpeciesRoot(t *testing.T) {
	tree := mustTree(t, &taxon.Tree{Root: &taxon.Node{Abbrev: "solo", Species: true}})
	states := toggleAll(t, tree, Initialize(tree), "solo")
	expr, err := Synthesize(tree, states)
	if err != nil {
		t.Fatal(err)
	}
	if expr != "solo=1T" {
		t.Errorf("expression = %q", expr)
	}
}

func TestSynthesize_Rejects(t *testing.T) {
	tree := mustTree(t, testutil.Scenario())

	missing := Initialize(tree)
	delete(missing, "sp2")
	if _, err := Synthesize(tree, missing); !errors.Is(err, ErrIncompleteStates) {
		t.Errorf("expected ErrIncompleteStates, got %v", err)
	}

	hidden := Initialize(tree)
	hidden["sp1"] = IncludeAll
	if _, err := Synthesize(tree, hidden); !errors.Is(err, ErrInconsistentStates) {
		t.Errorf("expected ErrInconsistentStates for hidden constraint, got %v", err)
	}

	badSpecies := Initialize(tree)
	badSpecies["R"] = Mixed
	badSpecies["A"] = Mixed
	badSpecies["sp1"] = IncludeAtLeastOne
	if _, err := Synthesize(tree, badSpecies); !errors.Is(err, ErrInconsistentStates) {
		t.Errorf("expected ErrInconsistentStates for species state, got %v", err)
	}

	unknown := Initialize(tree)
	unknown["A"] = "sideways"
	if _, err := Synthesize(tree, unknown); !errors.Is(err, ErrInconsistentStates) {
		t.Errorf("expected ErrInconsistentStates for unknown state, got %v", err)
	}
}
