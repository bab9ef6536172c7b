// Package wdk wraps the OrthoMCL data service endpoints the site depends on.
// Every endpoint is cached by request path and decoded fail-closed.
package wdk

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/vanderheijden86/orthoweb/pkg/config"
	"github.com/vanderheijden86/orthoweb/pkg/debug"
	"github.com/vanderheijden86/orthoweb/pkg/grouplayout"
	"github.com/vanderheijden86/orthoweb/pkg/metrics"
	"github.com/vanderheijden86/orthoweb/pkg/taxon"
)

// Service paths.
const (
	TaxonsPath           = "/data-summary/taxons"
	GenomeSourcesPath    = "/data-summary/genome-sources"
	GenomeStatisticsPath = "/data-summary/genome-statistics"
)

// GroupLayoutPath returns the layout path for a group.
func GroupLayoutPath(groupName string) string {
	return "/group/" + url.PathEscape(groupName) + "/layout"
}

// DefaultMaxBody bounds a single response read.
const DefaultMaxBody = 64 << 20

// Client fetches and decodes service responses. Cache may be nil.
// MaxBody <= 0 uses DefaultMaxBody.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Cache   Cache
	MaxBody int64

	flight singleflight.Group
}

// NewClient builds a client from config. The cache is left to the caller
// since the persistent one lives outside this package.
func NewClient(cfg config.ServiceConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(cfg.BaseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// GetTaxons fetches the taxonomy.
func (c *Client) GetTaxons(ctx context.Context) (taxon.Entries, error) {
	var out taxon.Entries
	err := c.getDecoded(ctx, TaxonsPath, func(body []byte) error {
		entries, err := taxon.DecodeEntries(bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDecode, err)
		}
		out = entries
		return nil
	})
	return out, err
}

// GetGroupLayout fetches the cluster graph layout of one group.
func (c *Client) GetGroupLayout(ctx context.Context, groupName string) (*grouplayout.GroupLayout, error) {
	if strings.TrimSpace(groupName) == "" {
		return nil, fmt.Errorf("wdk: group name is required")
	}
	var out *grouplayout.GroupLayout
	err := c.getDecoded(ctx, GroupLayoutPath(groupName), func(body []byte) error {
		l, err := grouplayout.Decode(bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDecode, err)
		}
		out = l
		return nil
	})
	return out, err
}

// GetGenomeSources fetches the genome sources table.
func (c *Client) GetGenomeSources(ctx context.Context) ([]SummaryRow, error) {
	return c.getSummary(ctx, GenomeSourcesPath)
}

// GetGenomeStatistics fetches the genome statistics table.
func (c *Client) GetGenomeStatistics(ctx context.Context) ([]SummaryRow, error) {
	return c.getSummary(ctx, GenomeStatisticsPath)
}

func (c *Client) getSummary(ctx context.Context, path string) ([]SummaryRow, error) {
	var out []SummaryRow
	err := c.getDecoded(ctx, path, func(body []byte) error {
		rows, err := DecodeSummaryRows(body)
		out = rows
		return err
	})
	return out, err
}

// getDecoded serves path from the cache when possible and only stores bodies
// that decode.
func (c *Client) getDecoded(ctx context.Context, path string, decode func([]byte) error) error {
	if c.Cache != nil {
		if body, ok := c.Cache.Get(path); ok {
			if err := decode(body); err == nil {
				metrics.ServiceCache.Hit()
				return nil
			}
			debug.Log("wdk: dropping undecodable cache entry %s", path)
			_ = c.Cache.Delete(path)
		}
		metrics.ServiceCache.Miss()
	}

	body, err := c.fetch(ctx, path)
	if err != nil {
		return err
	}
	if err := decode(body); err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	if c.Cache != nil {
		if err := c.Cache.Put(path, body); err != nil {
			debug.Log("wdk: cache put %s: %v", path, err)
		}
	}
	return nil
}

// fetch collapses concurrent requests for the same path into one. The
// shared request ignores the first caller's cancellation and is bounded by
// the HTTP client timeout; each caller still stops waiting on its own ctx.
func (c *Client) fetch(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	shared := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(path, func() (any, error) {
		return c.do(shared, path)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

func (c *Client) do(ctx context.Context, path string) ([]byte, error) {
	defer metrics.Timer(metrics.ServiceFetch)()
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("wdk: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wdk: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, c.maxBody()))
		return nil, &HTTPError{Path: path, StatusCode: resp.StatusCode}
	}
	limit := c.maxBody()
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("wdk: read %s: %w", path, err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: GET %s exceeds %d bytes", ErrResponseTooLarge, path, limit)
	}
	debug.LogTiming("wdk: GET "+path, time.Since(start))
	return body, nil
}

func (c *Client) maxBody() int64 {
	if c.MaxBody > 0 {
		return c.MaxBody
	}
	return DefaultMaxBody
}
