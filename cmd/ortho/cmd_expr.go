package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vanderheijden86/orthoweb/pkg/export"
	"github.com/vanderheijden86/orthoweb/pkg/phyletic"
)

var (
	exprToggles []string
	exprExplain bool
	exprOutput  string

	exprCmd = &cobra.Command{
		Use:   "expr",
		Short: "Build a phyletic expression from a sequence of toggles",
		Long: `Apply toggles to a fresh, all-free taxon tree and print the resulting
phyletic_expression. Each --toggle advances one node through its cycle, so
repeating a node moves it further.

Examples:
  ortho expr --toggle hsap --toggle mmus
  ortho expr --toggle MAMM --toggle MAMM --explain`,
		Args: cobra.NoArgs,
		RunE: runExpr,
	}
)

func init() {
	exprCmd.Flags().StringArrayVarP(&exprToggles, "toggle", "t", nil, "Toggle a node by abbreviation (repeatable, applied in order)")
	exprCmd.Flags().BoolVar(&exprExplain, "explain", false, "Explain the expression as a markdown report")
	exprCmd.Flags().StringVarP(&exprOutput, "output", "o", "", "Write the --explain report to a file instead of stdout")
	rootCmd.AddCommand(exprCmd)
}

func runExpr(cmd *cobra.Command, _ []string) error {
	engine, err := loadEngine(cmd.Context())
	if err != nil {
		return err
	}
	if err := applyToggles(engine, exprToggles); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !exprExplain {
		expr, err := engine.Expression()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, expr)
		return nil
	}

	if exprOutput != "" {
		if err := export.SaveExpressionMarkdown(engine.Tree(), engine.States(), "Phyletic pattern", exprOutput); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %s\n", exprOutput)
		return nil
	}
	md, err := export.GenerateExpressionMarkdown(engine.Tree(), engine.States(), "Phyletic pattern")
	if err != nil {
		return err
	}
	return printMarkdown(out, md)
}

func applyToggles(engine *phyletic.Engine, abbrevs []string) error {
	for _, a := range abbrevs {
		if err := engine.Toggle(a); err != nil {
			return fmt.Errorf("toggle %s: %w", a, err)
		}
	}
	return nil
}

// printMarkdown renders md with glamour on a terminal and writes it raw
// otherwise, so piped output stays plain markdown.
func printMarkdown(w io.Writer, md string) error {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		_, err := io.WriteString(w, md)
		return err
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return err
	}
	rendered, err := r.Render(md)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, rendered)
	return err
}
