package datasource

import (
	"context"
	"fmt"
	"os"

	"github.com/vanderheijden86/orthoweb/pkg/taxon"
)

// TaxonFetcher fetches the taxonomy from the remote service.
type TaxonFetcher interface {
	GetTaxons(ctx context.Context) (taxon.Entries, error)
}

// LoadTaxonEntries reads taxon entries from the source, dispatching on its
// type. fetcher is only used for remote sources.
func LoadTaxonEntries(ctx context.Context, src Source, fetcher TaxonFetcher) (taxon.Entries, error) {
	switch src.Type {
	case SourceTypeTaxonFile:
		f, err := os.Open(src.Path)
		if err != nil {
			return nil, fmt.Errorf("open taxon file: %w", err)
		}
		defer f.Close()
		entries, err := taxon.DecodeEntries(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src.Path, err)
		}
		return entries, nil

	case SourceTypeRemote:
		if fetcher == nil {
			return nil, fmt.Errorf("remote source requires a service client")
		}
		return fetcher.GetTaxons(ctx)

	default:
		return nil, fmt.Errorf("unknown source type: %s", src.Type)
	}
}

// LoadTaxonMetadata loads the taxonomy and derives the tree and UI metadata.
func LoadTaxonMetadata(ctx context.Context, src Source, fetcher TaxonFetcher) (*taxon.Tree, *taxon.UIMetadata, error) {
	entries, err := LoadTaxonEntries(ctx, src, fetcher)
	if err != nil {
		return nil, nil, err
	}
	tree, err := taxon.BuildTree(entries)
	if err != nil {
		return nil, nil, err
	}
	return tree, taxon.NewUIMetadata(tree), nil
}
