package wdk

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
)

// SummaryRow is one row of a data-summary table, column name to value.
type SummaryRow map[string]any

// DecodeSummaryRows decodes a JSON array of objects.
func DecodeSummaryRows(body []byte) ([]SummaryRow, error) {
	var rows []SummaryRow
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if rows == nil {
		return nil, fmt.Errorf("%w: expected an array of rows", ErrDecode)
	}
	for i, r := range rows {
		if r == nil {
			return nil, fmt.Errorf("%w: row %d is not an object", ErrDecode, i)
		}
	}
	return rows, nil
}
