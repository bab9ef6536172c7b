package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/orthoweb/pkg/phyletic"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeFg returns the given hex color for ANSI256+ terminals and a safe
// ANSI white (color 7) for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

type Theme struct {
	Renderer *lipgloss.Renderer

	// Colors
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor

	// Constraint states
	Free       lipgloss.AdaptiveColor
	IncludeAll lipgloss.AdaptiveColor
	AtLeastOne lipgloss.AdaptiveColor
	Exclude    lipgloss.AdaptiveColor
	Mixed      lipgloss.AdaptiveColor

	// UI Elements
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor

	// Styles
	Base     lipgloss.Style
	Selected lipgloss.Style
	Header   lipgloss.Style
	Footer   lipgloss.Style

	MutedText   lipgloss.Style
	PrimaryBold lipgloss.Style
	ErrorText   lipgloss.Style
}

// DefaultTheme returns the standard Dracula-inspired theme (adaptive)
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary:   lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"},
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
		Subtext:   lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BFBFBF"},

		Free:       lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BFBFBF"},
		IncludeAll: lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"},
		AtLeastOne: lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"},
		Exclude:    lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"},
		Mixed:      lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"},

		Border:    lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},
		Highlight: lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#44475A"},
		Muted:     lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
	}

	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#F8F8F2"})

	t.Selected = r.NewStyle().
		Background(t.Highlight).
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(t.Primary).
		PaddingLeft(1).
		Bold(true)

	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)

	t.Footer = r.NewStyle().
		Border(lipgloss.NormalBorder(), true, false, false, false).
		BorderForeground(t.Border)

	t.MutedText = r.NewStyle().Foreground(t.Muted)
	t.PrimaryBold = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.ErrorText = r.NewStyle().Foreground(ThemeFg("#FF5555")).Bold(true)

	return t
}

// StateColor returns the color a constraint state is drawn in.
func (t Theme) StateColor(s phyletic.ConstraintState) lipgloss.AdaptiveColor {
	switch s {
	case phyletic.IncludeAll:
		return t.IncludeAll
	case phyletic.IncludeAtLeastOne:
		return t.AtLeastOne
	case phyletic.Exclude:
		return t.Exclude
	case phyletic.Mixed:
		return t.Mixed
	default:
		return t.Free
	}
}

// StateGlyph returns the checkbox glyph for a constraint state.
func StateGlyph(s phyletic.ConstraintState) string {
	switch s {
	case phyletic.IncludeAll:
		return "[✓]"
	case phyletic.IncludeAtLeastOne:
		return "[≥]"
	case phyletic.Exclude:
		return "[✗]"
	case phyletic.Mixed:
		return "[~]"
	default:
		return "[ ]"
	}
}

// TestTheme returns a theme suitable for use in tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}
