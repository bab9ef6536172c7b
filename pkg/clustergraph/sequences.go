package clustergraph

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/vanderheijden86/orthoweb/pkg/grouplayout"
)

// SequenceRow is one row of the sequence list.
type SequenceRow struct {
	NodeID      string `json:"nodeId"`
	Accession   string `json:"accession"`
	Taxon       string `json:"taxon"`
	Length      int    `json:"length"`
	Description string `json:"description"`
}

// Sequence list columns, in display order.
var SequenceColumns = []string{"accession", "taxon", "length", "description"}

// SortDirection is asc or desc.
type SortDirection string

const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"
)

// SequenceRows lists the laid-out genes sorted by accession.
func SequenceRows(l *grouplayout.GroupLayout) []SequenceRow {
	rows := make([]SequenceRow, 0, len(l.Nodes))
	for _, id := range l.NodeIDs() {
		gene := l.Group.Genes[id]
		rows = append(rows, SequenceRow{
			NodeID:      id,
			Accession:   gene.Accession,
			Taxon:       gene.Taxon.Abbrev,
			Length:      gene.Length,
			Description: gene.Description,
		})
	}
	rows, _ = SortRows(rows, "accession", Asc)
	return rows
}

// SortRows returns a stably sorted copy of rows.
func SortRows(rows []SequenceRow, column string, dir SortDirection) ([]SequenceRow, error) {
	var less func(a, b SequenceRow) bool
	switch column {
	case "accession":
		less = func(a, b SequenceRow) bool { return a.Accession < b.Accession }
	case "taxon":
		less = func(a, b SequenceRow) bool { return a.Taxon < b.Taxon }
	case "length":
		less = func(a, b SequenceRow) bool { return a.Length < b.Length }
	case "description":
		less = func(a, b SequenceRow) bool { return a.Description < b.Description }
	default:
		return nil, fmt.Errorf("unknown sort column %q", column)
	}
	switch dir {
	case Asc, "":
	case Desc:
		asc := less
		less = func(a, b SequenceRow) bool { return asc(b, a) }
	default:
		return nil, fmt.Errorf("unknown sort direction %q", dir)
	}

	out := append([]SequenceRow(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out, nil
}

// FilterRows keeps rows where any column contains term, case-insensitively.
func FilterRows(rows []SequenceRow, term string) []SequenceRow {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return rows
	}
	var out []SequenceRow
	for _, r := range rows {
		for _, field := range []string{r.Accession, r.Taxon, strconv.Itoa(r.Length), r.Description} {
			if strings.Contains(strings.ToLower(field), needle) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}
