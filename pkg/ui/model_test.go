package ui

import (
	"errors"
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/orthoweb/pkg/phyletic"
	"github.com/vanderheijden86/orthoweb/pkg/testutil"
)

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var spaceKey = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}

func newTestModel(t *testing.T, copied *[]string) Model {
	t.Helper()
	return NewModel(newTestEngine(t), Options{
		Renderer: lipgloss.NewRenderer(io.Discard),
		Clipboard: func(s string) error {
			*copied = append(*copied, s)
			return nil
		},
	})
}

func press(t *testing.T, m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m, cmd
}

func TestModel_ToggleUpdatesExpression(t *testing.T) {
	var copied []string
	m := newTestModel(t, &copied)
	if m.Expression() != "" {
		t.Fatalf("initial expression = %q, want empty", m.Expression())
	}

	// ALL -> BACT, expand, step onto ecol, include it.
	m, _ = press(t, m, runeKey("j"), runeKey("l"), runeKey("l"), spaceKey)
	if n, _ := m.SelectedNode(); n.Abbrev != "ecol" {
		t.Fatalf("selected = %q, want ecol", n.Abbrev)
	}
	if got := m.Expression(); got != "BACT=1T" {
		t.Errorf("expression = %q, want BACT=1T", got)
	}

	// ecol cycles include-all -> exclude.
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.Expression(); got != "BACT=0T" {
		t.Errorf("expression = %q, want BACT=0T", got)
	}
}

func TestModel_ToggleRoot(t *testing.T) {
	var copied []string
	m := newTestModel(t, &copied)
	m, _ = press(t, m, spaceKey)
	if got := m.Expression(); got != "ALL=5T" {
		t.Errorf("expression = %q, want ALL=5T", got)
	}
	m, _ = press(t, m, spaceKey)
	if got := m.Expression(); got != "ALL>=1T" {
		t.Errorf("expression = %q, want ALL>=1T", got)
	}
}

func TestModel_TreeAccessors(t *testing.T) {
	var copied []string
	m := newTestModel(t, &copied)
	m, _ = press(t, m, runeKey("j"), runeKey("l"))

	if n, ok := m.SelectedNode(); !ok || n.Abbrev != "BACT" {
		t.Fatalf("selected = %q (%v), want BACT", n.Abbrev, ok)
	}
	rows := m.VisibleAbbrevs()
	if len(rows) < 3 || rows[0] != "ALL" || rows[1] != "BACT" || rows[2] != "ecol" {
		t.Fatalf("visible rows = %v, want ALL BACT ecol first", rows)
	}

	rows[0] = "changed"
	if got := m.VisibleAbbrevs()[0]; got != "ALL" {
		t.Errorf("returned rows alias the model: first row = %q", got)
	}
}

func TestModel_CopyAndReset(t *testing.T) {
	var copied []string
	m := newTestModel(t, &copied)

	m, _ = press(t, m, runeKey("y"))
	if len(copied) != 0 {
		t.Errorf("empty expression must not be copied, got %v", copied)
	}
	if m.Status() != "Nothing to copy" {
		t.Errorf("status = %q", m.Status())
	}

	m, _ = press(t, m, spaceKey, runeKey("y"))
	if len(copied) != 1 || copied[0] != "ALL=5T" {
		t.Errorf("copied = %v, want [ALL=5T]", copied)
	}

	m, _ = press(t, m, runeKey("r"))
	if m.Expression() != "" {
		t.Errorf("expression after reset = %q", m.Expression())
	}
	if !m.engine.States().AllFree() {
		t.Error("reset should free every node")
	}
}

func TestModel_CopyError(t *testing.T) {
	m := NewModel(newTestEngine(t), Options{
		Renderer:  lipgloss.NewRenderer(io.Discard),
		Clipboard: func(string) error { return errors.New("no display") },
	})
	m, _ = press(t, m, spaceKey, runeKey("y"))
	testutil.AssertContains(t, m.Status(), "no display")
}

func TestModel_Quit(t *testing.T) {
	var copied []string
	m := newTestModel(t, &copied)
	m, cmd := press(t, m, runeKey("q"))
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
	if m.View() != "" {
		t.Error("view should be empty after quitting")
	}
}

func TestModel_ViewShowsExpression(t *testing.T) {
	var copied []string
	m := newTestModel(t, &copied)
	m, _ = press(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	view := m.View()
	testutil.AssertContains(t, view, "Phyletic pattern")
	testutil.AssertContains(t, view, phyletic.ParamName+": (no constraints)")

	m, _ = press(t, m, spaceKey)
	testutil.AssertContains(t, m.View(), phyletic.ParamName+": ALL=5T")
}

func TestModel_HelpToggle(t *testing.T) {
	var copied []string
	m := newTestModel(t, &copied)
	testutil.AssertNotContains(t, m.View(), "collapse all")
	m, _ = press(t, m, runeKey("?"))
	testutil.AssertContains(t, m.View(), "collapse all")
}

func TestStateGlyph(t *testing.T) {
	tests := []struct {
		state phyletic.ConstraintState
		want  string
	}{
		{phyletic.Free, "[ ]"},
		{phyletic.IncludeAll, "[✓]"},
		{phyletic.IncludeAtLeastOne, "[≥]"},
		{phyletic.Exclude, "[✗]"},
		{phyletic.Mixed, "[~]"},
	}
	for _, tt := range tests {
		if got := StateGlyph(tt.state); got != tt.want {
			t.Errorf("StateGlyph(%q) = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"Homo sapiens", 20, "Homo sapiens"},
		{"Homo sapiens", 6, "Homo …"},
		{"Homo sapiens", 0, ""},
		{"ab", 1, "…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
