// Command ortho builds phyletic pattern expressions and renders ortholog
// group cluster graphs against the OrthoMCL data service.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/orthoweb/pkg/config"
)

var (
	configPath string
	serviceURL string
	taxonFile  string

	cfg config.Config

	rootCmd = &cobra.Command{
		Use:   "ortho",
		Short: "Phyletic pattern builder and cluster graph renderer for OrthoMCL",
		Long: `ortho talks to the OrthoMCL data service (or a local taxon dump) to
build phyletic pattern search expressions and render group cluster graphs.

Configuration is read from ~/.config/ortho/config.yaml. ORTHO_SERVICE_URL
overrides the service URL, and flags override both.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: loadConfig,
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/ortho/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&serviceURL, "service-url", "", "OrthoMCL service root URL")
	rootCmd.PersistentFlags().StringVar(&taxonFile, "taxon-file", "", "Read taxa from a local /data-summary/taxons JSON dump")
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	var err error
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if serviceURL != "" {
		cfg.Service.BaseURL = serviceURL
	}
	if taxonFile != "" {
		cfg.TaxonFile = taxonFile
	}
	return nil
}
