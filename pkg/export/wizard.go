// This file implements the interactive snapshot wizard behind
// `ortho graph --interactive`. It walks the user through the view filters
// and output settings, and remembers the last answers.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	json "github.com/goccy/go-json"
	"golang.org/x/term"

	"github.com/vanderheijden86/orthoweb/pkg/clustergraph"
	"github.com/vanderheijden86/orthoweb/pkg/grouplayout"
)

// ErrNotInteractive is returned when the wizard runs without a terminal.
var ErrNotInteractive = errors.New("the graph wizard needs an interactive terminal")

const wizardStateFile = "graph-wizard.json"

// WizardConfig holds the wizard's answers.
type WizardConfig struct {
	Display    string   `json:"display"`
	EdgeTypes  []string `json:"edge_types"`
	EValueExp  int      `json:"evalue_exp"`
	Format     string   `json:"format"`
	OutputPath string   `json:"output_path,omitempty"`
}

// Settings converts the answers into view filters.
func (c *WizardConfig) Settings() clustergraph.Settings {
	exp := c.EValueExp
	return clustergraph.Settings{
		Display:   c.Display,
		EValueExp: &exp,
		EdgeTypes: strings.Join(c.EdgeTypes, ","),
	}
}

// Wizard collects snapshot settings for one view.
type Wizard struct {
	config   *WizardConfig
	view     *clustergraph.View
	stateDir string
	out      io.Writer
}

// NewWizard seeds the answers from the view's current state.
func NewWizard(view *clustergraph.View, stateDir string) *Wizard {
	return &Wizard{
		config:   configFromView(view),
		view:     view,
		stateDir: stateDir,
		out:      os.Stdout,
	}
}

func configFromView(view *clustergraph.View) *WizardConfig {
	cfg := &WizardConfig{
		Display:   string(view.Display()),
		EValueExp: view.EValueExp(),
		Format:    "svg",
	}
	for _, opt := range view.EdgeTypeOptions() {
		if opt.Selected {
			cfg.EdgeTypes = append(cfg.EdgeTypes, string(opt.Key))
		}
	}
	cfg.OutputPath = view.Graph().Layout.Group.Name + ".svg"
	return cfg
}

// IsTerminal reports whether stdin is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func newForm(groups ...*huh.Group) *huh.Form {
	return huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
}

// Run asks the questions, applies the answers to the view and returns them.
func (w *Wizard) Run() (*WizardConfig, error) {
	if !IsTerminal() {
		return nil, ErrNotInteractive
	}

	if saved, err := LoadWizardConfig(w.stateDir); err == nil && saved != nil {
		useSaved, err := w.offerSavedConfig(saved)
		if err != nil {
			return nil, err
		}
		if useSaved {
			saved.OutputPath = w.config.OutputPath
			if saved.Format != "" {
				saved.OutputPath = strings.TrimSuffix(saved.OutputPath, filepath.Ext(saved.OutputPath)) + "." + saved.Format
			}
			w.config = saved
		}
	}

	if err := w.collectViewOptions(); err != nil {
		return nil, err
	}
	if err := w.collectOutputOptions(); err != nil {
		return nil, err
	}
	if err := w.view.Apply(w.config.Settings()); err != nil {
		return nil, err
	}
	if err := SaveWizardConfig(w.stateDir, w.config); err != nil {
		fmt.Fprintf(w.out, "Warning: could not save wizard answers: %v\n", err)
	}
	return w.config, nil
}

func (w *Wizard) offerSavedConfig(saved *WizardConfig) (bool, error) {
	fmt.Fprintln(w.out, "Found previous snapshot settings:")
	fmt.Fprintln(w.out, "─────────────────────────────────")
	fmt.Fprintf(w.out, "  Display:    %s\n", saved.Display)
	fmt.Fprintf(w.out, "  Edge types: %s\n", strings.Join(saved.EdgeTypes, ", "))
	fmt.Fprintf(w.out, "  Cutoff:     1e%d\n", saved.EValueExp)
	fmt.Fprintf(w.out, "  Format:     %s\n", saved.Format)
	fmt.Fprintln(w.out, "")

	useSaved := true
	form := newForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Start from these settings?").
				Value(&useSaved).
				Affirmative("Yes").
				Negative("No, use defaults"),
		),
	)
	if err := form.Run(); err != nil {
		return false, err
	}
	return useSaved, nil
}

func (w *Wizard) collectViewOptions() error {
	var displays []huh.Option[string]
	for _, opt := range clustergraph.NodeDisplayOptions(w.view.Graph()) {
		if opt.Disabled {
			continue
		}
		displays = append(displays, huh.NewOption(opt.Display, string(opt.Value)))
	}

	selected := make(map[string]bool, len(w.config.EdgeTypes))
	for _, t := range w.config.EdgeTypes {
		selected[t] = true
	}
	var edges []huh.Option[string]
	for _, t := range grouplayout.EdgeTypeOrder {
		edges = append(edges, huh.NewOption(t.DisplayName(), string(t)).Selected(selected[string(t)]))
	}

	lo, hi := w.view.EValueRange()
	exp := strconv.Itoa(w.config.EValueExp)

	form := newForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color nodes by").
				Options(displays...).
				Value(&w.config.Display),
			huh.NewMultiSelect[string]().
				Title("Edge types").
				Options(edges...).
				Validate(func(v []string) error {
					if len(v) == 0 {
						return errors.New("select at least one edge type")
					}
					return nil
				}).
				Value(&w.config.EdgeTypes),
			huh.NewInput().
				Title(fmt.Sprintf("E-value cutoff exponent (%d to %d)", lo, hi)).
				Value(&exp).
				Validate(exponentValidator(lo, hi)),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}
	n, err := strconv.Atoi(strings.TrimSpace(exp))
	if err != nil {
		return err
	}
	w.config.EValueExp = n
	return nil
}

func (w *Wizard) collectOutputOptions() error {
	form := newForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Format").
				Options(
					huh.NewOption("SVG (scalable, keeps element ids)", "svg"),
					huh.NewOption("PNG (raster)", "png"),
				).
				Value(&w.config.Format),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	w.config.OutputPath = strings.TrimSuffix(w.config.OutputPath, filepath.Ext(w.config.OutputPath)) + "." + w.config.Format
	path := w.config.OutputPath
	form = newForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Output file").
				Value(&path).
				Placeholder(w.config.OutputPath),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}
	if strings.TrimSpace(path) != "" {
		w.config.OutputPath = strings.TrimSpace(path)
	}
	return nil
}

func exponentValidator(lo, hi int) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("enter a whole number")
		}
		if n < lo || n > hi {
			return fmt.Errorf("must be between %d and %d", lo, hi)
		}
		return nil
	}
}

// LoadWizardConfig reads the saved answers. It returns nil, nil when there
// are none.
func LoadWizardConfig(stateDir string) (*WizardConfig, error) {
	if stateDir == "" {
		return nil, nil
	}
	data, err := os.ReadFile(filepath.Join(stateDir, wizardStateFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var cfg WizardConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveWizardConfig stores the answers, without the output path.
func SaveWizardConfig(stateDir string, cfg *WizardConfig) error {
	if stateDir == "" || cfg == nil {
		return nil
	}
	saved := *cfg
	saved.OutputPath = ""
	data, err := json.MarshalIndent(saved, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(stateDir, wizardStateFile), data, 0o644)
}
