// Package taxon decodes the taxonomy served by the WDK service and assembles
// it into an ordered tree.
package taxon

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
)

// ErrInvalidEntry is wrapped by every decode failure.
var ErrInvalidEntry = errors.New("invalid taxon entry")

// Entry is one taxon as served by /data-summary/taxons.
type Entry struct {
	Abbrev     string  `json:"abbrev"`
	Children   Entries `json:"children"`
	CommonName string  `json:"commonName"`
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	SortIndex  int     `json:"sortIndex"`
	Species    bool    `json:"species"`
}

// Entries maps abbreviation to entry.
type Entries map[string]Entry

// rawEntry mirrors Entry with pointer fields so absent keys and JSON nulls
// can be told apart from zero values.
type rawEntry struct {
	Abbrev     *string              `json:"abbrev" validate:"required"`
	Children   map[string]*rawEntry `json:"children" validate:"required"`
	CommonName *string              `json:"commonName" validate:"required"`
	ID         *float64             `json:"id" validate:"required"`
	Name       *string              `json:"name" validate:"required"`
	SortIndex  *float64             `json:"sortIndex" validate:"required"`
	Species    *bool                `json:"species" validate:"required"`
}

var validate = validator.New()

// DecodeEntries decodes a taxon payload keyed by abbreviation.
// Any missing field, mistyped value or mismatched key fails the whole decode.
func DecodeEntries(r io.Reader) (Entries, error) {
	var raw map[string]*rawEntry
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: payload is null", ErrInvalidEntry)
	}
	return convertEntries(raw, "")
}

func convertEntries(raw map[string]*rawEntry, path string) (Entries, error) {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(Entries, len(raw))
	for _, key := range keys {
		re := raw[key]
		where := path + "/" + key
		if re == nil {
			return nil, fmt.Errorf("%w: %s is null", ErrInvalidEntry, where)
		}
		if err := validate.Struct(re); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidEntry, where, err)
		}
		if *re.Abbrev == "" {
			return nil, fmt.Errorf("%w: %s: empty abbrev", ErrInvalidEntry, where)
		}
		if *re.Abbrev != key {
			return nil, fmt.Errorf("%w: %s: keyed as %q but abbrev is %q", ErrInvalidEntry, where, key, *re.Abbrev)
		}
		children, err := convertEntries(re.Children, where)
		if err != nil {
			return nil, err
		}
		out[key] = Entry{
			Abbrev:     *re.Abbrev,
			Children:   children,
			CommonName: *re.CommonName,
			ID:         int(*re.ID),
			Name:       *re.Name,
			SortIndex:  int(*re.SortIndex),
			Species:    *re.Species,
		}
	}
	return out, nil
}
