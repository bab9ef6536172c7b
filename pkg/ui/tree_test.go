package ui

import (
	"io"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/orthoweb/pkg/phyletic"
	"github.com/vanderheijden86/orthoweb/pkg/taxon"
	"github.com/vanderheijden86/orthoweb/pkg/testutil"
)

func newTestEngine(t *testing.T) *phyletic.Engine {
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

func newTestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(io.Discard))
}

func assertVisible(t *testing.T, tm *TreeModel, want ...string) {
	t.Helper()
	if got := tm.VisibleAbbrevs(); !reflect.DeepEqual(got, want) {
		t.Errorf("visible = %v, want %v", got, want)
	}
}

func assertSelected(t *testing.T, tm *TreeModel, want string) {
	t.Helper()
	n, ok := tm.SelectedNode()
	if !ok || n.Abbrev != want {
		t.Errorf("selected = %q (ok=%v), want %q", n.Abbrev, ok, want)
	}
}

func TestTreeModel_DefaultExpansion(t *testing.T) {
	tm := NewTreeModel(newTestEngine(t), newTestTheme(), "")
	assertVisible(t, &tm, "ALL", "BACT", "EUKA")
	assertSelected(t, &tm, "ALL")
	if !tm.IsExpanded("ALL") || tm.IsExpanded("EUKA") {
		t.Error("only the root should start expanded")
	}
}

func TestTreeModel_ExpandOrMoveToChild(t *testing.T) {
	tm := NewTreeModel(newTestEngine(t), newTestTheme(), "")
	tm.MoveDown()
	tm.MoveDown()
	assertSelected(t, &tm, "EUKA")

	tm.ExpandOrMoveToChild()
	assertVisible(t, &tm, "ALL", "BACT", "EUKA", "hsap", "mmus", "atha", "scer")
	assertSelected(t, &tm, "EUKA")

	tm.ExpandOrMoveToChild()
	assertSelected(t, &tm, "hsap")

	// Species have nothing to expand.
	tm.ExpandOrMoveToChild()
	assertSelected(t, &tm, "hsap")
}

func TestTreeModel_CollapseOrJumpToParent(t *testing.T) {
	tm := NewTreeModel(newTestEngine(t), newTestTheme(), "")
	tm.ExpandAll()
	tm.JumpToBottom()
	assertSelected(t, &tm, "scer")

	tm.CollapseOrJumpToParent()
	assertSelected(t, &tm, "EUKA")

	tm.CollapseOrJumpToParent()
	assertVisible(t, &tm, "ALL", "BACT", "ecol", "EUKA")
	assertSelected(t, &tm, "EUKA")

	tm.CollapseOrJumpToParent()
	assertSelected(t, &tm, "ALL")
	tm.CollapseOrJumpToParent()
	assertVisible(t, &tm, "ALL")

	// The root has no parent to jump to.
	tm.CollapseOrJumpToParent()
	assertSelected(t, &tm, "ALL")
}

func TestTreeModel_ExpandCollapseAll(t *testing.T) {
	tm := NewTreeModel(newTestEngine(t), newTestTheme(), "")
	tm.ExpandAll()
	assertVisible(t, &tm, "ALL", "BACT", "ecol", "EUKA", "hsap", "mmus", "atha", "scer")
	tm.CollapseAll()
	assertVisible(t, &tm, "ALL")
}

func TestTreeModel_CursorFollowsNodeAcrossRebuild(t *testing.T) {
	tm := NewTreeModel(newTestEngine(t), newTestTheme(), "")
	tm.MoveDown()
	tm.MoveDown()
	assertSelected(t, &tm, "EUKA")

	// Expanding BACT above the cursor shifts EUKA down a row.
	tm.expanded["BACT"] = true
	tm.rebuildFlatList()
	assertSelected(t, &tm, "EUKA")
	if tm.Cursor() != 3 {
		t.Errorf("cursor = %d, want 3", tm.Cursor())
	}
}

func TestTreeModel_Scrolling(t *testing.T) {
	tm := NewTreeModel(newTestEngine(t), newTestTheme(), "")
	tm.ExpandAll()
	tm.SetSize(80, 3)
	tm.JumpToBottom()

	view := tm.View()
	testutil.AssertContains(t, view, "Saccharomyces cerevisiae")
	testutil.AssertNotContains(t, view, "All organisms")
	testutil.AssertContains(t, view, "6-8 of 8")

	tm.JumpToTop()
	testutil.AssertContains(t, tm.View(), "All organisms")
}

func TestTreeModel_ViewPrefixesAndStates(t *testing.T) {
	e := newTestEngine(t)
	tm := NewTreeModel(e, newTestTheme(), "")
	tm.ExpandAll()
	if err := e.Toggle("hsap"); err != nil {
		t.Fatal(err)
	}

	view := tm.View()
	for _, want := range []string{
		"├── ▾ [ ] Bacteria",
		"└── ▾ [~] Eukaryota",
		"│   └── • [ ] Escherichia coli (ecol)",
		"    ├── • [✓] Homo sapiens (hsap)",
		"All organisms (ALL, 5 species)",
	} {
		testutil.AssertContains(t, view, want)
	}
}

func TestTreeModel_StatePersistence(t *testing.T) {
	dir := t.TempDir()
	e := newTestEngine(t)

	tm := NewTreeModel(e, newTestTheme(), dir)
	tm.MoveDown()
	tm.ExpandOrMoveToChild()
	assertVisible(t, &tm, "ALL", "BACT", "ecol", "EUKA")

	data, err := os.ReadFile(TreeStatePath(dir))
	if err != nil {
		t.Fatalf("state not written: %v", err)
	}
	testutil.AssertContains(t, string(data), `"BACT": true`)
	testutil.AssertNotContains(t, string(data), `"ALL"`)

	restored := NewTreeModel(e, newTestTheme(), dir)
	assertVisible(t, &restored, "ALL", "BACT", "ecol", "EUKA")
}

func TestLoadTreeState_CorruptFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(TreeStatePath(dir), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	state := LoadTreeState(dir)
	if state.Version != TreeStateVersion || len(state.Expanded) != 0 {
		t.Errorf("state = %+v, want defaults", state)
	}

	tm := NewTreeModel(newTestEngine(t), newTestTheme(), dir)
	assertVisible(t, &tm, "ALL", "BACT", "EUKA")
}

func TestSaveTreeState_EmptyDirIsNoop(t *testing.T) {
	if err := SaveTreeState("", DefaultTreeState()); err != nil {
		t.Errorf("SaveTreeState with no dir: %v", err)
	}
}

func TestTreeModel_RefreshAfterReset(t *testing.T) {
	e := newTestEngine(t)
	tm := NewTreeModel(e, newTestTheme(), "")
	tm.ExpandAll()

	entries := testutil.ToEntries(testutil.Scenario())
	tt, err := taxon.BuildTree(entries)
	if err != nil {
		t.Fatal(err)
	}
	tree, err := phyletic.NewTree(tt)
	if err != nil {
		t.Fatal(err)
	}
	e.Reset(tree)
	tm.Refresh()
	assertVisible(t, &tm, "R", "A")
	assertSelected(t, &tm, "R")
}
