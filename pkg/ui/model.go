// Package ui is the terminal phyletic pattern builder: a collapsible taxon
// tree whose checkboxes cycle constraint states, with the synthesized
// expression shown live in the footer.
package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/orthoweb/pkg/phyletic"
)

// Options configures a Model.
type Options struct {
	// Title is shown in the header. Defaults to "Phyletic pattern".
	Title string
	// StateDir holds tree-state.json. Empty disables persistence.
	StateDir string
	// Renderer defaults to a renderer on stdout.
	Renderer *lipgloss.Renderer
	// Clipboard replaces the system clipboard writer.
	Clipboard func(string) error
}

// Model is the bubbletea model for the phyletic tree.
type Model struct {
	engine    *phyletic.Engine
	tree      TreeModel
	theme     Theme
	keys      keyMap
	help      help.Model
	title     string
	clipboard func(string) error

	expr     string
	exprErr  error
	status   string
	width    int
	height   int
	quitting bool
}

// NewModel returns a model over engine.
func NewModel(engine *phyletic.Engine, opts Options) Model {
	r := opts.Renderer
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	theme := DefaultTheme(r)
	if opts.Title == "" {
		opts.Title = "Phyletic pattern"
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}
	m := Model{
		engine:    engine,
		tree:      NewTreeModel(engine, theme, opts.StateDir),
		theme:     theme,
		keys:      defaultKeyMap(),
		help:      help.New(),
		title:     opts.Title,
		clipboard: opts.Clipboard,
		width:     80,
		height:    24,
	}
	m.refreshExpression()
	m.layout()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.layout()
		return m, nil

	case tea.KeyMsg:
		m.status = ""
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			m.tree.MoveUp()
		case key.Matches(msg, m.keys.Down):
			m.tree.MoveDown()
		case key.Matches(msg, m.keys.Top):
			m.tree.JumpToTop()
		case key.Matches(msg, m.keys.Bottom):
			m.tree.JumpToBottom()
		case key.Matches(msg, m.keys.Toggle):
			m.toggleSelected()
		case key.Matches(msg, m.keys.Expand):
			m.tree.ExpandOrMoveToChild()
		case key.Matches(msg, m.keys.Collapse):
			m.tree.CollapseOrJumpToParent()
		case key.Matches(msg, m.keys.ExpandAll):
			m.tree.ExpandAll()
		case key.Matches(msg, m.keys.CollapseAll):
			m.tree.CollapseAll()
		case key.Matches(msg, m.keys.Reset):
			m.engine.Reset(nil)
			m.refreshExpression()
			m.status = "All constraints cleared"
		case key.Matches(msg, m.keys.Copy):
			m.copyExpression()
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.layout()
		}
	}
	return m, nil
}

func (m *Model) toggleSelected() {
	n, ok := m.tree.SelectedNode()
	if !ok {
		return
	}
	if err := m.engine.Toggle(n.Abbrev); err != nil {
		m.status = err.Error()
		return
	}
	m.refreshExpression()
}

func (m *Model) copyExpression() {
	if m.exprErr != nil {
		m.status = m.exprErr.Error()
		return
	}
	if m.expr == "" {
		m.status = "Nothing to copy"
		return
	}
	if err := m.clipboard(m.expr); err != nil {
		m.status = fmt.Sprintf("Clipboard error: %v", err)
		return
	}
	m.status = "📋 Copied expression to clipboard"
}

func (m *Model) refreshExpression() {
	m.expr, m.exprErr = m.engine.Expression()
}

// layout gives the tree whatever the header and footer leave.
func (m *Model) layout() {
	footer := 4
	if m.help.ShowAll {
		footer += 4
	}
	h := m.height - footer - 1
	if h < 1 {
		h = 1
	}
	m.tree.SetSize(m.width, h)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(m.theme.Header.Render(m.title))
	sb.WriteString("\n")
	sb.WriteString(m.tree.View())
	sb.WriteString("\n")
	sb.WriteString(m.theme.Footer.Width(m.width).Render(m.footer()))
	return sb.String()
}

func (m Model) footer() string {
	var lines []string

	label := m.theme.PrimaryBold.Render(phyletic.ParamName + ":")
	switch {
	case m.exprErr != nil:
		lines = append(lines, label+" "+m.theme.ErrorText.Render(m.exprErr.Error()))
	case m.expr == "":
		lines = append(lines, label+" "+m.theme.MutedText.Render("(no constraints)"))
	default:
		lines = append(lines, label+" "+m.expr)
	}
	if m.status != "" {
		lines = append(lines, m.theme.MutedText.Render(m.status))
	}
	lines = append(lines, m.help.View(m.keys))
	return strings.Join(lines, "\n")
}

// Expression returns the current expression, "" when unconstrained.
func (m Model) Expression() string {
	return m.expr
}

// Status returns the last status line message.
func (m Model) Status() string {
	return m.status
}

// SelectedNode returns the node under the tree cursor.
func (m Model) SelectedNode() (phyletic.Node, bool) {
	return m.tree.SelectedNode()
}

// VisibleAbbrevs returns the abbreviations of the visible tree rows.
func (m Model) VisibleAbbrevs() []string {
	return m.tree.VisibleAbbrevs()
}
