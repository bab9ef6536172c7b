// tree.go - collapsible taxon tree with per-node constraint checkboxes
package ui

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/orthoweb/pkg/debug"
	"github.com/vanderheijden86/orthoweb/pkg/phyletic"
)

// treeRow is one visible line of the flattened tree.
type treeRow struct {
	node   phyletic.Node
	depth  int
	prefix string
}

// TreeModel renders a phyletic.Engine's tree and tracks the cursor and
// which clades are expanded.
type TreeModel struct {
	engine   *phyletic.Engine
	theme    Theme
	expanded map[string]bool
	stateDir string

	flatList []treeRow
	cursor   int
	offset   int
	width    int
	height   int
}

// NewTreeModel builds a tree view over engine. Expand state is restored
// from stateDir when it is non-empty.
func NewTreeModel(engine *phyletic.Engine, theme Theme, stateDir string) TreeModel {
	t := TreeModel{
		engine:   engine,
		theme:    theme,
		expanded: make(map[string]bool),
		stateDir: stateDir,
		width:    80,
		height:   20,
	}
	t.applyState(LoadTreeState(stateDir))
	t.rebuildFlatList()
	return t
}

func defaultExpanded(depth int) bool {
	return depth < 1
}

// applyState seeds expand flags. Unknown abbreviations are ignored.
func (t *TreeModel) applyState(state *TreeState) {
	t.engine.Tree().Walk(func(n phyletic.Node, depth int) bool {
		if n.Species {
			return false
		}
		open := defaultExpanded(depth)
		if v, ok := state.Expanded[n.Abbrev]; ok {
			open = v
		}
		t.expanded[n.Abbrev] = open
		return true
	})
}

// saveState persists non-default expand flags. Errors are logged only.
func (t *TreeModel) saveState() {
	if t.stateDir == "" {
		return
	}
	state := DefaultTreeState()
	t.engine.Tree().Walk(func(n phyletic.Node, depth int) bool {
		if n.Species {
			return false
		}
		if t.expanded[n.Abbrev] != defaultExpanded(depth) {
			state.Expanded[n.Abbrev] = t.expanded[n.Abbrev]
		}
		return true
	})
	if err := SaveTreeState(t.stateDir, state); err != nil {
		debug.Log("ui: failed to write tree state to %s: %v", t.stateDir, err)
	}
}

// rebuildFlatList recomputes the visible rows, keeping the cursor on the
// same abbreviation when it is still visible.
func (t *TreeModel) rebuildFlatList() {
	var selected string
	if t.cursor >= 0 && t.cursor < len(t.flatList) {
		selected = t.flatList[t.cursor].node.Abbrev
	}

	tree := t.engine.Tree()
	t.flatList = t.flatList[:0]

	var visit func(abbrev string, depth int, lead string, last bool)
	visit = func(abbrev string, depth int, lead string, last bool) {
		n, ok := tree.Node(abbrev)
		if !ok {
			return
		}
		prefix := ""
		childLead := ""
		if depth > 0 {
			if last {
				prefix = lead + "└── "
				childLead = lead + "    "
			} else {
				prefix = lead + "├── "
				childLead = lead + "│   "
			}
		}
		t.flatList = append(t.flatList, treeRow{node: n, depth: depth, prefix: prefix})
		if n.Species || !t.expanded[abbrev] {
			return
		}
		for i, c := range n.Children {
			visit(c, depth+1, childLead, i == len(n.Children)-1)
		}
	}
	visit(tree.Root().Abbrev, 0, "", true)

	t.cursor = 0
	for i, row := range t.flatList {
		if row.node.Abbrev == selected {
			t.cursor = i
			break
		}
	}
	t.ensureCursorVisible()
}

// SetSize sets the number of rows and columns available to the tree.
func (t *TreeModel) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.ensureCursorVisible()
}

func (t *TreeModel) ensureCursorVisible() {
	if t.height <= 0 {
		t.offset = 0
		return
	}
	if t.cursor < t.offset {
		t.offset = t.cursor
	}
	if t.cursor >= t.offset+t.height {
		t.offset = t.cursor - t.height + 1
	}
	if t.offset < 0 {
		t.offset = 0
	}
}

// Refresh rebuilds rows after the engine's tree was swapped.
func (t *TreeModel) Refresh() {
	for k := range t.expanded {
		delete(t.expanded, k)
	}
	t.applyState(LoadTreeState(t.stateDir))
	t.rebuildFlatList()
}

// VisibleAbbrevs returns the abbreviations of the visible rows in order.
func (t *TreeModel) VisibleAbbrevs() []string {
	out := make([]string, len(t.flatList))
	for i, row := range t.flatList {
		out[i] = row.node.Abbrev
	}
	return out
}

// SelectedNode returns the node under the cursor.
func (t *TreeModel) SelectedNode() (phyletic.Node, bool) {
	if t.cursor < 0 || t.cursor >= len(t.flatList) {
		return phyletic.Node{}, false
	}
	return t.flatList[t.cursor].node, true
}

// Cursor returns the cursor row index.
func (t *TreeModel) Cursor() int {
	return t.cursor
}

// IsExpanded reports whether a clade's children are shown.
func (t *TreeModel) IsExpanded(abbrev string) bool {
	return t.expanded[abbrev]
}

func (t *TreeModel) MoveDown() {
	if t.cursor < len(t.flatList)-1 {
		t.cursor++
		t.ensureCursorVisible()
	}
}

func (t *TreeModel) MoveUp() {
	if t.cursor > 0 {
		t.cursor--
		t.ensureCursorVisible()
	}
}

func (t *TreeModel) JumpToTop() {
	t.cursor = 0
	t.ensureCursorVisible()
}

func (t *TreeModel) JumpToBottom() {
	if len(t.flatList) > 0 {
		t.cursor = len(t.flatList) - 1
		t.ensureCursorVisible()
	}
}

// ExpandOrMoveToChild expands a collapsed clade, or steps onto the first
// child of an expanded one.
func (t *TreeModel) ExpandOrMoveToChild() {
	n, ok := t.SelectedNode()
	if !ok || n.Species || len(n.Children) == 0 {
		return
	}
	if !t.expanded[n.Abbrev] {
		t.expanded[n.Abbrev] = true
		t.rebuildFlatList()
		t.saveState()
		return
	}
	t.MoveDown()
}

// CollapseOrJumpToParent collapses an expanded clade, or moves the cursor
// to the parent row.
func (t *TreeModel) CollapseOrJumpToParent() {
	n, ok := t.SelectedNode()
	if !ok {
		return
	}
	if !n.Species && t.expanded[n.Abbrev] {
		t.expanded[n.Abbrev] = false
		t.rebuildFlatList()
		t.saveState()
		return
	}
	if n.Parent == "" {
		return
	}
	for i, row := range t.flatList {
		if row.node.Abbrev == n.Parent {
			t.cursor = i
			t.ensureCursorVisible()
			return
		}
	}
}

// ExpandAll opens every clade.
func (t *TreeModel) ExpandAll() {
	for k := range t.expanded {
		t.expanded[k] = true
	}
	t.rebuildFlatList()
	t.saveState()
}

// CollapseAll closes every clade, leaving only the root row.
func (t *TreeModel) CollapseAll() {
	for k := range t.expanded {
		t.expanded[k] = false
	}
	t.rebuildFlatList()
	t.saveState()
}

// View renders the visible window of rows.
func (t *TreeModel) View() string {
	if len(t.flatList) == 0 {
		return t.theme.MutedText.Render("No taxa loaded")
	}

	var sb strings.Builder
	end := len(t.flatList)
	if t.height > 0 && t.offset+t.height < end {
		end = t.offset + t.height
	}
	for i := t.offset; i < end; i++ {
		line := t.renderRow(t.flatList[i])
		if i == t.cursor {
			line = t.theme.Selected.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	if t.height > 0 && len(t.flatList) > t.height {
		indicator := fmt.Sprintf(" %d-%d of %d", t.offset+1, end, len(t.flatList))
		sb.WriteString(t.theme.MutedText.Render(indicator))
	}
	return sb.String()
}

func (t *TreeModel) renderRow(row treeRow) string {
	r := t.theme.Renderer
	state := t.engine.State(row.node.Abbrev)

	prefix := r.NewStyle().Foreground(t.theme.Muted).Render(row.prefix)
	box := r.NewStyle().Foreground(t.theme.StateColor(state)).Bold(state != phyletic.Free).Render(StateGlyph(state))

	var label string
	if row.node.Species {
		label = fmt.Sprintf("%s (%s)", row.node.Name, row.node.Abbrev)
	} else {
		label = fmt.Sprintf("%s (%s, %d species)", row.node.Name, row.node.Abbrev, row.node.SpeciesCount)
	}
	used := len([]rune(row.prefix)) + 6
	if t.width > used {
		label = truncate(label, t.width-used)
	}
	return prefix + t.expandIndicator(row.node) + " " + box + " " + label
}

func (t *TreeModel) expandIndicator(n phyletic.Node) string {
	if n.Species || len(n.Children) == 0 {
		return "•"
	}
	if t.expanded[n.Abbrev] {
		return "▾"
	}
	return "▸"
}
