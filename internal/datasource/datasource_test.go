package datasource

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vanderheijden86/orthoweb/pkg/config"
	"github.com/vanderheijden86/orthoweb/pkg/taxon"
	"github.com/vanderheijden86/orthoweb/pkg/testutil"
	"github.com/vanderheijden86/orthoweb/pkg/wdk"
)

var _ wdk.Cache = (*SQLiteCache)(nil)

type stubFetcher struct {
	entries taxon.Entries
	err     error
	calls   int
}

func (s *stubFetcher) GetTaxons(context.Context) (taxon.Entries, error) {
	s.calls++
	return s.entries, s.err
}

func TestDetect(t *testing.T) {
	dir := t.TempDir()
	file := testutil.WriteFixture(t, "taxons.json", testutil.SampleTaxonJSON)

	cfg := config.DefaultConfig()
	if src := Detect(cfg); src.Type != SourceTypeRemote || src.BaseURL != cfg.Service.BaseURL {
		t.Errorf("expected remote source, got %s", src)
	}

	cfg.TaxonFile = file
	src := Detect(cfg)
	if src.Type != SourceTypeTaxonFile || src.Path != file || !src.Local() {
		t.Errorf("expected taxon file source, got %s", src)
	}
	if src.Size == 0 || src.ModTime.IsZero() {
		t.Errorf("file metadata not populated: %+v", src)
	}

	cfg.TaxonFile = filepath.Join(dir, "missing.json")
	if src := Detect(cfg); src.Type != SourceTypeRemote {
		t.Errorf("missing file should fall back to remote, got %s", src)
	}

	cfg.TaxonFile = dir
	if src := Detect(cfg); src.Type != SourceTypeRemote {
		t.Errorf("directory should fall back to remote, got %s", src)
	}
}

func TestSource_Refresh(t *testing.T) {
	path := testutil.WriteFixture(t, "taxons.json", testutil.SampleTaxonJSON)
	src := Source{Type: SourceTypeTaxonFile, Path: path}.Refresh()
	if src.Size != int64(len(testutil.SampleTaxonJSON)) {
		t.Fatalf("expected size %d, got %d", len(testutil.SampleTaxonJSON), src.Size)
	}

	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	later := time.Now().Add(time.Hour).Truncate(time.Second)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}
	src = src.Refresh()
	if src.Size != 2 || !src.ModTime.Equal(later) {
		t.Errorf("expected refreshed size 2 and mod time %v, got %d %v", later, src.Size, src.ModTime)
	}

	remote := Source{Type: SourceTypeRemote, BaseURL: "http://wdk.test"}
	if got := remote.Refresh(); got != remote {
		t.Errorf("remote source should be unchanged, got %+v", got)
	}
}

func TestLoadTaxonMetadata_File(t *testing.T) {
	file := testutil.WriteFixture(t, "taxons.json", testutil.SampleTaxonJSON)
	fetcher := &stubFetcher{}

	tree, meta, err := LoadTaxonMetadata(context.Background(), Source{Type: SourceTypeTaxonFile, Path: file}, fetcher)
	if err != nil {
		t.Fatalf("LoadTaxonMetadata: %v", err)
	}
	if tree.Root.Abbrev != "ALL" {
		t.Errorf("root = %s", tree.Root.Abbrev)
	}
	if len(meta.TaxonOrder) != 5 {
		t.Errorf("expected 5 species, got %v", meta.TaxonOrder)
	}
	if fetcher.calls != 0 {
		t.Error("local source must not hit the service")
	}
}

func TestLoadTaxonMetadata_Remote(t *testing.T) {
	entries, err := taxon.DecodeEntries(strings.NewReader(testutil.SampleTaxonJSON))
	if err != nil {
		t.Fatal(err)
	}
	fetcher := &stubFetcher{entries: entries}

	_, meta, err := LoadTaxonMetadata(context.Background(), Source{Type: SourceTypeRemote}, fetcher)
	if err != nil {
		t.Fatalf("LoadTaxonMetadata: %v", err)
	}
	if _, ok := meta.Info("scer"); !ok {
		t.Error("expected scer in metadata")
	}

	boom := errors.New("boom")
	if _, _, err := LoadTaxonMetadata(context.Background(), Source{Type: SourceTypeRemote}, &stubFetcher{err: boom}); !errors.Is(err, boom) {
		t.Errorf("expected fetch error, got %v", err)
	}
	if _, err := LoadTaxonEntries(context.Background(), Source{Type: SourceTypeRemote}, nil); err == nil {
		t.Error("expected error without a fetcher")
	}
}

func TestLoadTaxonEntries_Errors(t *testing.T) {
	bad := testutil.WriteFixture(t, "bad.json", `{"ALL": {"abbrev": "ALL"}}`)
	if _, err := LoadTaxonEntries(context.Background(), Source{Type: SourceTypeTaxonFile, Path: bad}, nil); !errors.Is(err, taxon.ErrInvalidEntry) {
		t.Errorf("expected ErrInvalidEntry, got %v", err)
	}
	if _, err := LoadTaxonEntries(context.Background(), Source{Type: SourceTypeTaxonFile, Path: filepath.Join(t.TempDir(), "nope")}, nil); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
	if _, err := LoadTaxonEntries(context.Background(), Source{Type: "ftp"}, nil); err == nil {
		t.Error("expected error for unknown source type")
	}
}

func TestDiffTrees(t *testing.T) {
	a := testutil.Scenario()
	if d := DiffTrees(a, a); d.HasChanges() || !strings.Contains(d.Summary(), "unchanged") {
		t.Errorf("identical trees reported changes: %+v", d)
	}

	entries, err := taxon.DecodeEntries(strings.NewReader(testutil.SampleTaxonJSON))
	if err != nil {
		t.Fatal(err)
	}
	b, err := taxon.BuildTree(entries)
	if err != nil {
		t.Fatal(err)
	}
	d := DiffTrees(a, b)
	if !d.HasChanges() {
		t.Fatal("expected changes")
	}
	if d.CountA != 4 || d.CountB != 8 {
		t.Errorf("counts = %d, %d", d.CountA, d.CountB)
	}
	if len(d.Added) != 8 || len(d.Removed) != 4 {
		t.Errorf("added %v removed %v", d.Added, d.Removed)
	}
	testutil.AssertContains(t, d.Summary(), "removed: A, R, sp1, sp2")
}

func TestDiffTrees_Moved(t *testing.T) {
	moved := testutil.Scenario()
	// Hoist sp2 from A to R.
	a := moved.Root.Children[0]
	sp2 := a.Children[1]
	a.Children = a.Children[:1]
	moved.Root.Children = append(moved.Root.Children, sp2)

	d := DiffTrees(testutil.Scenario(), moved)
	if len(d.Moved) != 1 || d.Moved[0] != (MoveDifference{Abbrev: "sp2", ParentA: "A", ParentB: "R"}) {
		t.Errorf("moved = %+v", d.Moved)
	}
	testutil.AssertContains(t, d.Summary(), "moved sp2: A -> R")
}

func TestSQLiteCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "responses.db")
	c, err := OpenSQLiteCache(path, time.Hour)
	if err != nil {
		t.Fatalf("OpenSQLiteCache: %v", err)
	}
	defer c.Close()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if _, ok := c.Get("/data-summary/taxons"); ok {
		t.Fatal("empty cache returned a hit")
	}
	if err := c.Put("/data-summary/taxons", []byte(`{"a":1}`)); err != nil {
		t.Fatal(err)
	}
	if body, ok := c.Get("/data-summary/taxons"); !ok || string(body) != `{"a":1}` {
		t.Fatalf("Get = %q, %v", body, ok)
	}

	if err := c.Put("/data-summary/taxons", []byte(`{"a":2}`)); err != nil {
		t.Fatal(err)
	}
	if body, _ := c.Get("/data-summary/taxons"); string(body) != `{"a":2}` {
		t.Errorf("overwrite not applied: %q", body)
	}

	_ = c.Put("/group/x/layout", []byte("x"))
	now = now.Add(2 * time.Hour)
	if _, ok := c.Get("/group/x/layout"); ok {
		t.Error("expired entry returned")
	}
	_ = c.Put("/group/y/layout", []byte("y"))
	now = now.Add(2 * time.Hour)
	n, err := c.Purge()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("purged %d rows, want 2", n)
	}
	if l, _ := c.Len(); l != 0 {
		t.Errorf("expected empty cache, got %d rows", l)
	}
}

func TestSQLiteCache_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "responses.db")
	c, err := OpenSQLiteCache(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Put("/k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	c.Close()

	c, err = OpenSQLiteCache(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if body, ok := c.Get("/k"); !ok || string(body) != "v" {
		t.Errorf("Get after reopen = %q, %v", body, ok)
	}
	if err := c.Delete("/k"); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get("/k"); ok {
		t.Error("deleted entry returned")
	}
}

func TestSQLiteCache_WithClient(t *testing.T) {
	c, err := OpenSQLiteCache(filepath.Join(t.TempDir(), "responses.db"), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	client := wdk.NewClient(config.ServiceConfig{BaseURL: "http://127.0.0.1:0"})
	client.Cache = c
	_ = c.Put(wdk.TaxonsPath, []byte(testutil.SampleTaxonJSON))

	entries, err := client.GetTaxons(context.Background())
	if err != nil {
		t.Fatalf("cached GetTaxons: %v", err)
	}
	if _, ok := entries["ALL"]; !ok {
		t.Error("expected entries served from the sqlite cache")
	}
}
