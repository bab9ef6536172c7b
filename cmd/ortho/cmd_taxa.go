package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/orthoweb/pkg/phyletic"
)

var taxaCmd = &cobra.Command{
	Use:   "taxa",
	Short: "Print the annotated taxon tree",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		engine, err := loadEngine(cmd.Context())
		if err != nil {
			return err
		}
		printTaxa(cmd.OutOrStdout(), engine.Tree())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(taxaCmd)
}

func printTaxa(w io.Writer, tree *phyletic.Tree) {
	tree.Walk(func(n phyletic.Node, depth int) bool {
		indent := strings.Repeat("  ", depth)
		if n.Species {
			fmt.Fprintf(w, "%s%s (%s)\n", indent, n.Name, n.Abbrev)
		} else {
			fmt.Fprintf(w, "%s%s (%s, %d species)\n", indent, n.Name, n.Abbrev, n.SpeciesCount)
		}
		return true
	})
}
