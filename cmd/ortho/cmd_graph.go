package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/orthoweb/internal/datasource"
	"github.com/vanderheijden86/orthoweb/pkg/clustergraph"
	"github.com/vanderheijden86/orthoweb/pkg/config"
	"github.com/vanderheijden86/orthoweb/pkg/export"
	"github.com/vanderheijden86/orthoweb/pkg/grouplayout"
	"github.com/vanderheijden86/orthoweb/pkg/wdk"
)

var (
	graphOutput      string
	graphDisplay     string
	graphEValue      int
	graphEdges       string
	graphFormat      string
	graphInteractive bool

	graphCmd = &cobra.Command{
		Use:   "graph GROUP",
		Short: "Render the cluster graph of an ortholog group to SVG or PNG",
		Long: `Fetch the group layout and the taxonomy, apply the view filters and write
a static snapshot of the cluster graph.

Examples:
  ortho graph OG6_100000
  ortho graph OG6_100000 -o kinase.png --display pfam-domains --evalue -20
  ortho graph OG6_100000 --edges O,C --interactive`,
		Args: cobra.ExactArgs(1),
		RunE: runGraph,
	}
)

func init() {
	graphCmd.Flags().StringVarP(&graphOutput, "output", "o", "", "Output file (default GROUP.FORMAT)")
	graphCmd.Flags().StringVar(&graphDisplay, "display", "", "Node coloring: taxa, ec-numbers or pfam-domains")
	graphCmd.Flags().IntVar(&graphEValue, "evalue", 0, "E-value cutoff exponent, e.g. -20 for 1e-20")
	graphCmd.Flags().StringVar(&graphEdges, "edges", "", "Comma-separated edge types to show (O,C,P,L,M,N)")
	graphCmd.Flags().StringVar(&graphFormat, "format", "", "Output format: svg or png (default from config or extension)")
	graphCmd.Flags().BoolVarP(&graphInteractive, "interactive", "i", false, "Choose the filters in an interactive form")
	rootCmd.AddCommand(graphCmd)
}

func runGraph(cmd *cobra.Command, args []string) error {
	groupName := args[0]
	client, closer, err := newClient(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	view, err := fetchView(cmd.Context(), client, datasource.Detect(cfg), groupName)
	if err != nil {
		return err
	}

	set := graphSettings(cfg.Graph, cmd.Flags().Changed("evalue"))
	if err := view.Apply(set); err != nil {
		return err
	}

	format := graphFormat
	path := graphOutput
	if graphInteractive {
		if !export.IsTerminal() {
			return export.ErrNotInteractive
		}
		answers, err := export.NewWizard(view, config.StateDir()).Run()
		if err != nil {
			return err
		}
		format = answers.Format
		if path == "" {
			path = answers.OutputPath
		}
	}
	if format == "" && path == "" {
		format = cfg.Graph.Format
	}
	if path == "" {
		ext := format
		if ext == "" {
			ext = "svg"
		}
		path = groupName + "." + ext
	}

	if err := export.SaveClusterSnapshot(export.ClusterSnapshotOptions{
		Path:   path,
		Format: format,
		View:   view,
	}); err != nil {
		return err
	}
	g := view.Graph()
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d nodes, %d of %d edges at 1e%d)\n",
		path, len(g.Nodes), len(view.VisibleEdges()), len(g.Edges), view.EValueExp())
	return nil
}

// graphSettings merges the flags over the configured defaults.
func graphSettings(defaults config.GraphConfig, evalueSet bool) clustergraph.Settings {
	set := clustergraph.Settings{
		Display:   defaults.Display,
		EdgeTypes: strings.Join(defaults.EdgeTypes, ","),
	}
	if graphDisplay != "" {
		set.Display = graphDisplay
	}
	if graphEdges != "" {
		set.EdgeTypes = graphEdges
	}
	if evalueSet {
		exp := graphEValue
		set.EValueExp = &exp
	}
	return set
}

// fetchView loads the taxonomy and the group layout concurrently and
// builds the initial view.
func fetchView(ctx context.Context, client *wdk.Client, src datasource.Source, groupName string) (*clustergraph.View, error) {
	var (
		t      *taxa
		layout *grouplayout.GroupLayout
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		t, err = loadTaxa(gctx, src, client)
		return err
	})
	g.Go(func() error {
		var err error
		layout, err = client.GetGroupLayout(gctx, groupName)
		if err != nil {
			return fmt.Errorf("group %s: %w", groupName, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	graph, err := clustergraph.Build(layout, t.meta)
	if err != nil {
		return nil, err
	}
	return clustergraph.NewView(graph), nil
}
