package clustergraph

import (
	"sort"
	"strconv"
	"strings"
)

// LegendEntry is one row of a legend. NodeIDs is the set that hovering the
// entry highlights.
type LegendEntry struct {
	Key         string   `json:"key"`
	Description string   `json:"description"`
	Tooltip     string   `json:"tooltip,omitempty"`
	Color       string   `json:"color"`
	GroupColor  string   `json:"groupColor,omitempty"`
	NodeIDs     []string `json:"nodeIds"`
}

// Legends returns every legend keyed by display type.
func Legends(g *Graph) map[NodeDisplayType][]LegendEntry {
	return map[NodeDisplayType][]LegendEntry{
		DisplayTaxa:        TaxonLegend(g),
		DisplayEcNumbers:   EcNumberLegend(g),
		DisplayPfamDomains: PfamDomainLegend(g),
	}
}

// Legend returns the legend for one display type.
func Legend(g *Graph, t NodeDisplayType) []LegendEntry {
	switch t {
	case DisplayEcNumbers:
		return EcNumberLegend(g)
	case DisplayPfamDomains:
		return PfamDomainLegend(g)
	default:
		return TaxonLegend(g)
	}
}

// TaxonLegend lists species present in the group, in taxon order.
func TaxonLegend(g *Graph) []LegendEntry {
	var out []LegendEntry
	for _, abbrev := range g.Meta.TaxonOrder {
		count := g.Layout.TaxonCounts[abbrev]
		if count <= 0 {
			continue
		}
		info, _ := g.Meta.Info(abbrev)
		out = append(out, LegendEntry{
			Key:         abbrev,
			Description: describe(abbrev, count),
			Tooltip:     strings.Join(info.Path, "->") + "\n" + info.Name,
			Color:       info.Color,
			GroupColor:  info.GroupColor,
			NodeIDs: genesWhere(g, func(id string) bool {
				return g.Layout.Group.Genes[id].Taxon.Abbrev == abbrev
			}),
		})
	}
	return out
}

// EcNumberLegend lists EC numbers by count desc, index asc.
func EcNumberLegend(g *Graph) []LegendEntry {
	out := make([]LegendEntry, 0, len(g.EcNumbers))
	for _, ec := range g.EcNumbers {
		code := ec.Code
		out = append(out, LegendEntry{
			Key:         code,
			Description: describe(code, ec.Count),
			Tooltip:     ec.Description,
			Color:       ec.Color,
			NodeIDs: genesWhere(g, func(id string) bool {
				for _, c := range g.Layout.Group.Genes[id].EcNumbers {
					if c == code {
						return true
					}
				}
				return false
			}),
		})
	}
	return out
}

// PfamDomainLegend lists Pfam domains by count desc, index asc.
func PfamDomainLegend(g *Graph) []LegendEntry {
	out := make([]LegendEntry, 0, len(g.PfamDomains))
	for _, pf := range g.PfamDomains {
		acc := pf.Accession
		out = append(out, LegendEntry{
			Key:         acc,
			Description: describe(acc, pf.Count),
			Tooltip:     pf.Description,
			Color:       pf.Color,
			NodeIDs: genesWhere(g, func(id string) bool {
				_, ok := g.Layout.Group.Genes[id].PfamDomains[acc]
				return ok
			}),
		})
	}
	return out
}

func describe(key string, count int) string {
	return key + " (" + strconv.Itoa(count) + ")"
}

func genesWhere(g *Graph, keep func(id string) bool) []string {
	ids := []string{}
	for id := range g.Layout.Group.Genes {
		if keep(id) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
