// Package server exposes the taxonomy, the phyletic pattern builder, cluster
// graph snapshots and record sections over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vanderheijden86/orthoweb/internal/datasource"
	"github.com/vanderheijden86/orthoweb/pkg/config"
	"github.com/vanderheijden86/orthoweb/pkg/debug"
	"github.com/vanderheijden86/orthoweb/pkg/phyletic"
	"github.com/vanderheijden86/orthoweb/pkg/records"
	"github.com/vanderheijden86/orthoweb/pkg/taxon"
)

// ServiceClient is the part of the WDK client the server uses.
type ServiceClient interface {
	datasource.TaxonFetcher
	records.LayoutFetcher
}

// Options configures a Server.
type Options struct {
	Source datasource.Source
	Client ServiceClient
	Graph  config.GraphConfig
	// Registry defaults to records.NewDefaultRegistry over Client.
	Registry *records.Registry
}

// taxonomy is one loaded generation of the taxon tree and the source state
// it was read from.
type taxonomy struct {
	source   datasource.Source
	tree     *taxon.Tree
	meta     *taxon.UIMetadata
	phyletic *phyletic.Tree
}

// Server owns the router and the current taxonomy.
type Server struct {
	router   *gin.Engine
	client   ServiceClient
	graph    config.GraphConfig
	registry *records.Registry
	prom     *prometheus.Registry
	http     *httpMetrics

	mu   sync.RWMutex
	taxa *taxonomy
}

// New loads the taxonomy and builds the router.
func New(ctx context.Context, opts Options) (*Server, error) {
	if opts.Client == nil && !opts.Source.Local() {
		return nil, errors.New("server: a service client is required for a remote source")
	}
	s := &Server{
		client: opts.Client,
		graph:  opts.Graph,
		prom:   prometheus.NewRegistry(),
	}
	taxa, err := s.load(ctx, opts.Source)
	if err != nil {
		return nil, err
	}
	s.taxa = taxa

	s.registry = opts.Registry
	if s.registry == nil {
		s.registry = records.NewDefaultRegistry(records.Deps{Layouts: opts.Client, Meta: s.meta})
	}

	s.http = newHTTPMetrics()
	s.prom.MustRegister(s.http.requests, s.http.duration, timingCollector{})
	s.router = s.routes()
	return s, nil
}

func (s *Server) load(ctx context.Context, src datasource.Source) (*taxonomy, error) {
	var fetcher datasource.TaxonFetcher
	if s.client != nil {
		fetcher = s.client
	}
	src = src.Refresh()
	tree, meta, err := datasource.LoadTaxonMetadata(ctx, src, fetcher)
	if err != nil {
		return nil, fmt.Errorf("load taxa from %s: %w", src, err)
	}
	pt, err := phyletic.NewTree(tree)
	if err != nil {
		return nil, err
	}
	return &taxonomy{source: src, tree: tree, meta: meta, phyletic: pt}, nil
}

// Reload re-reads the taxonomy and swaps it in. The previous taxonomy stays
// in place when loading fails.
func (s *Server) Reload(ctx context.Context) (datasource.TaxonDiff, error) {
	next, err := s.load(ctx, s.current().source)
	if err != nil {
		return datasource.TaxonDiff{}, err
	}
	s.mu.Lock()
	prev := s.taxa
	s.taxa = next
	s.mu.Unlock()

	diff := datasource.DiffTrees(prev.tree, next.tree)
	debug.Log("server: taxonomy reloaded from %s: %s", next.source, diff.Summary())
	return diff, nil
}

func (s *Server) current() *taxonomy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.taxa
}

func (s *Server) meta() *taxon.UIMetadata {
	return s.current().meta
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		debug.Log("server: listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
