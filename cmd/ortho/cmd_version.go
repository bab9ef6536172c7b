package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/orthoweb/pkg/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the ortho version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ortho %s\n", version.Version)
	},
	PersistentPreRun: func(*cobra.Command, []string) {},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
