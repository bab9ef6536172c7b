package main

import (
	"context"
	"fmt"
	"io"

	"github.com/vanderheijden86/orthoweb/internal/datasource"
	"github.com/vanderheijden86/orthoweb/pkg/config"
	"github.com/vanderheijden86/orthoweb/pkg/debug"
	"github.com/vanderheijden86/orthoweb/pkg/phyletic"
	"github.com/vanderheijden86/orthoweb/pkg/taxon"
	"github.com/vanderheijden86/orthoweb/pkg/wdk"
)

// newClient builds the service client with the configured response cache.
// The returned closer releases the persistent cache, if any.
func newClient(c config.Config) (*wdk.Client, io.Closer, error) {
	client := wdk.NewClient(c.Service)
	cc := c.Service.Cache
	if !cc.Enabled {
		return client, nopCloser{}, nil
	}
	if cc.SQLitePath != "" {
		cache, err := datasource.OpenSQLiteCache(cc.SQLitePath, cc.TTL)
		if err != nil {
			return nil, nil, fmt.Errorf("open response cache: %w", err)
		}
		debug.Log("ortho: using sqlite response cache at %s", cache.Path())
		client.Cache = cache
		return client, cache, nil
	}
	cache, err := wdk.NewMemoryCache(cc.Size)
	if err != nil {
		return nil, nil, err
	}
	client.Cache = cache
	return client, nopCloser{}, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// taxa is the loaded taxonomy in the forms the commands need.
type taxa struct {
	source   datasource.Source
	tree     *taxon.Tree
	meta     *taxon.UIMetadata
	phyletic *phyletic.Tree
}

// loadTaxa reads the taxonomy from the detected source. client is only
// consulted for remote sources.
func loadTaxa(ctx context.Context, src datasource.Source, client datasource.TaxonFetcher) (*taxa, error) {
	tree, meta, err := datasource.LoadTaxonMetadata(ctx, src, client)
	if err != nil {
		return nil, fmt.Errorf("loading taxa from %s: %w", src, err)
	}
	pt, err := phyletic.NewTree(tree)
	if err != nil {
		return nil, err
	}
	return &taxa{source: src, tree: tree, meta: meta, phyletic: pt}, nil
}

// loadEngine loads the taxonomy with the current config and wraps it in an
// engine with every node free.
func loadEngine(ctx context.Context) (*phyletic.Engine, error) {
	client, closer, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	t, err := loadTaxa(ctx, datasource.Detect(cfg), client)
	if err != nil {
		return nil, err
	}
	return phyletic.NewEngine(t.phyletic), nil
}
