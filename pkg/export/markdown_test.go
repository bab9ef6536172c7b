package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/orthoweb/pkg/phyletic"
	"github.com/vanderheijden86/orthoweb/pkg/taxon"
	"github.com/vanderheijden86/orthoweb/pkg/testutil"
)

func sampleEngine(t *testing.T) *phyletic.Engine {
	t.Helper()
	entries, err := taxon.DecodeEntries(strings.NewReader(testutil.SampleTaxonJSON))
	if err != nil {
		t.Fatal(err)
	}
	tt, err := taxon.BuildTree(entries)
	if err != nil {
		t.Fatal(err)
	}
	tree, err := phyletic.NewTree(tt)
	if err != nil {
		t.Fatal(err)
	}
	return phyletic.NewEngine(tree)
}

func toggleAll(t *testing.T, e *phyletic.Engine, abbrevs ...string) {
	t.Helper()
	for _, a := range abbrevs {
		if err := e.Toggle(a); err != nil {
			t.Fatalf("Toggle(%s): %v", a, err)
		}
	}
}

func TestGenerateExpressionMarkdown_ClausesAndSpecies(t *testing.T) {
	e := sampleEngine(t)
	toggleAll(t, e, "hsap", "ecol", "ecol")

	md, err := GenerateExpressionMarkdown(e.Tree(), e.States(), "Pattern")
	if err != nil {
		t.Fatalf("GenerateExpressionMarkdown: %v", err)
	}

	for _, want := range []string{
		"# Pattern",
		"phyletic_expression=BACT=0T AND hsap=1T",
		"| Clade clauses | 1 |",
		"| Required species | 1 |",
		"| Excluded species | 0 |",
		"| `BACT=0T` | Bacteria | no species present |",
		"| `hsap` | *Homo sapiens* | ✅ present |",
	} {
		testutil.AssertContains(t, md, want)
	}
}

func TestGenerateExpressionMarkdown_AtLeastOne(t *testing.T) {
	e := sampleEngine(t)
	toggleAll(t, e, "ALL", "ALL")

	md, err := GenerateExpressionMarkdown(e.Tree(), e.States(), "Pattern")
	if err != nil {
		t.Fatalf("GenerateExpressionMarkdown: %v", err)
	}
	testutil.AssertContains(t, md, "| `ALL>=1T` | All organisms | at least one of 5 species present |")
	testutil.AssertNotContains(t, md, "## Species")
}

func TestGenerateExpressionMarkdown_Empty(t *testing.T) {
	e := sampleEngine(t)
	md, err := GenerateExpressionMarkdown(e.Tree(), e.States(), "Pattern")
	if err != nil {
		t.Fatalf("GenerateExpressionMarkdown: %v", err)
	}
	testutil.AssertContains(t, md, "No constraints selected")
	testutil.AssertNotContains(t, md, "## Summary")
}

func TestGenerateExpressionMarkdown_IncompleteStates(t *testing.T) {
	e := sampleEngine(t)
	_, err := GenerateExpressionMarkdown(e.Tree(), phyletic.States{"ALL": phyletic.Free}, "Pattern")
	if err == nil {
		t.Fatal("expected an error for a partial state map")
	}
}

func TestExplainClause(t *testing.T) {
	tests := []struct {
		clause  phyletic.Clause
		meaning string
	}{
		{phyletic.Clause{Abbrev: "EUKA", Kind: phyletic.ClauseAll, SpeciesCount: 4}, "all 4 species present"},
		{phyletic.Clause{Abbrev: "EUKA", Kind: phyletic.ClauseAtLeastOne, SpeciesCount: 4}, "at least one of 4 species present"},
		{phyletic.Clause{Abbrev: "BACT", Kind: phyletic.ClauseNone, SpeciesCount: 1}, "no species present"},
	}
	for _, tt := range tests {
		t.Run(tt.clause.String(), func(t *testing.T) {
			if got := explainClause(tt.clause); got != tt.meaning {
				t.Errorf("explainClause(%v) = %q, want %q", tt.clause, got, tt.meaning)
			}
		})
	}
}

func TestEscapeCell(t *testing.T) {
	if got := escapeCell("a|b\nc"); got != `a\|b c` {
		t.Errorf("escapeCell = %q", got)
	}
}

func TestSaveExpressionMarkdown(t *testing.T) {
	e := sampleEngine(t)
	toggleAll(t, e, "EUKA")
	out := filepath.Join(t.TempDir(), "pattern.md")
	if err := SaveExpressionMarkdown(e.Tree(), e.States(), "Pattern", out); err != nil {
		t.Fatalf("SaveExpressionMarkdown: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertContains(t, string(data), "`EUKA=4T`")
}
