package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/orthoweb/pkg/config"
	"github.com/vanderheijden86/orthoweb/pkg/ui"
)

var phyleticCmd = &cobra.Command{
	Use:   "phyletic",
	Short: "Pick a phyletic pattern in the interactive taxon tree",
	Long: `Open the checkbox tree. Space cycles a node's constraint, y copies the
expression and q quits. The final phyletic_expression is printed on exit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		engine, err := loadEngine(cmd.Context())
		if err != nil {
			return err
		}
		if err := applyToggles(engine, phyleticToggles); err != nil {
			return err
		}

		m := ui.NewModel(engine, ui.Options{StateDir: config.StateDir()})
		final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
		if err != nil {
			return fmt.Errorf("running phyletic tree: %w", err)
		}
		if fm, ok := final.(ui.Model); ok && fm.Expression() != "" {
			fmt.Fprintln(cmd.OutOrStdout(), fm.Expression())
		}
		return nil
	},
}

var phyleticToggles []string

func init() {
	phyleticCmd.Flags().StringArrayVarP(&phyleticToggles, "toggle", "t", nil, "Pre-toggle a node before the tree opens (repeatable)")
	rootCmd.AddCommand(phyleticCmd)
}
