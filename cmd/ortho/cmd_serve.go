package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/orthoweb/internal/datasource"
	"github.com/vanderheijden86/orthoweb/internal/server"
	"github.com/vanderheijden86/orthoweb/pkg/debug"
	"github.com/vanderheijden86/orthoweb/pkg/metrics"
	"github.com/vanderheijden86/orthoweb/pkg/watcher"
)

var (
	serveAddr string

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the phyletic and cluster graph HTTP API",
		Long: `Run the HTTP server. With a local taxon file the taxonomy is reloaded
whenever the file changes. Prometheus metrics are served at /metrics.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.SetEnabled(true)

	client, closer, err := newClient(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	src := datasource.Detect(cfg)
	srv, err := server.New(ctx, server.Options{
		Source: src,
		Client: client,
		Graph:  cfg.Graph,
	})
	if err != nil {
		return err
	}

	if src.Local() {
		w, err := watchTaxonFile(ctx, src.Path, srv)
		if err != nil {
			return err
		}
		defer w.Stop()
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "ortho serving %s on %s\n", src, addr)
	return srv.Run(ctx, addr)
}

// watchTaxonFile reloads the server's taxonomy whenever path changes.
func watchTaxonFile(ctx context.Context, path string, srv *server.Server) (*watcher.Watcher, error) {
	w, err := watcher.New(path,
		watcher.WithOnChange(func() {
			diff, err := srv.Reload(ctx)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Reload of %s failed, keeping previous taxa: %v\n", path, err)
				return
			}
			if diff.HasChanges() {
				fmt.Fprintf(os.Stderr, "Reloaded %s: %s\n", path, diff.Summary())
			}
		}),
		watcher.WithOnError(func(err error) {
			debug.Log("serve: watcher error: %v", err)
		}),
	)
	if err != nil {
		return nil, err
	}
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return w, nil
}
