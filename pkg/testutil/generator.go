// Package testutil provides taxon tree fixture generators and assertions.
// All generators produce deterministic output for reproducible tests.
package testutil

import (
	"fmt"
	"math/rand"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/orthoweb/pkg/taxon"
)

// GeneratorConfig controls tree generation.
type GeneratorConfig struct {
	Seed          int64  // Random seed for determinism (0 = fixed default)
	CladePrefix   string // Prefix for interior abbreviations (default: "C")
	SpeciesPrefix string // Prefix for species abbreviations (default: "sp")
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:          42,
		CladePrefix:   "C",
		SpeciesPrefix: "sp",
	}
}

// Generator creates taxon trees of various shapes.
type Generator struct {
	cfg     GeneratorConfig
	rng     *rand.Rand
	clades  int
	species int
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	if cfg.CladePrefix == "" {
		cfg.CladePrefix = "C"
	}
	if cfg.SpeciesPrefix == "" {
		cfg.SpeciesPrefix = "sp"
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

func (g *Generator) clade() *taxon.Node {
	g.clades++
	abbrev := fmt.Sprintf("%s%d", g.cfg.CladePrefix, g.clades)
	return &taxon.Node{Abbrev: abbrev, Name: "Clade " + abbrev, ID: g.clades, SortIndex: g.clades}
}

func (g *Generator) leaf() *taxon.Node {
	g.species++
	abbrev := fmt.Sprintf("%s%d", g.cfg.SpeciesPrefix, g.species)
	return &taxon.Node{Abbrev: abbrev, Name: "Species " + abbrev, ID: 1000 + g.species, SortIndex: g.species, Species: true}
}

// Scenario returns the three-level tree R -> A -> [sp1, sp2].
func Scenario() *taxon.Tree {
	return &taxon.Tree{Root: &taxon.Node{
		Abbrev: "R", Name: "Root",
		Children: []*taxon.Node{{
			Abbrev: "A", Name: "Clade A",
			Children: []*taxon.Node{
				{Abbrev: "sp1", Name: "Species one", Species: true},
				{Abbrev: "sp2", Name: "Species two", Species: true},
			},
		}},
	}}
}

// Balanced creates a tree where every clade above the last level has
// `breadth` clade children and every clade on the last level has `breadth`
// species. depth counts clade levels, so depth=1 is a root with species.
func (g *Generator) Balanced(depth, breadth int) *taxon.Tree {
	var build func(level int) *taxon.Node
	build = func(level int) *taxon.Node {
		n := g.clade()
		for i := 0; i < breadth; i++ {
			if level == depth {
				n.Children = append(n.Children, g.leaf())
			} else {
				n.Children = append(n.Children, build(level+1))
			}
		}
		return n
	}
	return &taxon.Tree{Root: build(1)}
}

// Chain creates a path of `depth` clades ending in a single species.
func (g *Generator) Chain(depth int) *taxon.Tree {
	root := g.clade()
	cur := root
	for i := 1; i < depth; i++ {
		next := g.clade()
		cur.Children = []*taxon.Node{next}
		cur = next
	}
	cur.Children = []*taxon.Node{g.leaf()}
	return &taxon.Tree{Root: root}
}

// Interleaved creates a root whose children alternate species and clades,
// useful for checking that species are ordered after clades.
func (g *Generator) Interleaved(pairs int) *taxon.Tree {
	root := g.clade()
	for i := 0; i < pairs; i++ {
		root.Children = append(root.Children, g.leaf())
		c := g.clade()
		c.Children = []*taxon.Node{g.leaf()}
		root.Children = append(root.Children, c)
	}
	return &taxon.Tree{Root: root}
}

// Random creates an irregular tree. Every clade has between one and
// maxBreadth children; clades at maxDepth only hold species.
func (g *Generator) Random(maxDepth, maxBreadth int) *taxon.Tree {
	var build func(level int) *taxon.Node
	build = func(level int) *taxon.Node {
		n := g.clade()
		kids := 1 + g.rng.Intn(maxBreadth)
		for i := 0; i < kids; i++ {
			if level >= maxDepth || g.rng.Intn(2) == 0 {
				n.Children = append(n.Children, g.leaf())
			} else {
				n.Children = append(n.Children, build(level+1))
			}
		}
		return n
	}
	return &taxon.Tree{Root: build(1)}
}

// ToEntries converts a tree to the nested service payload shape.
func ToEntries(t *taxon.Tree) taxon.Entries {
	var conv func(n *taxon.Node) taxon.Entry
	conv = func(n *taxon.Node) taxon.Entry {
		children := make(taxon.Entries, len(n.Children))
		for _, c := range n.Children {
			children[c.Abbrev] = conv(c)
		}
		return taxon.Entry{
			Abbrev:     n.Abbrev,
			Children:   children,
			CommonName: n.CommonName,
			ID:         n.ID,
			Name:       n.Name,
			SortIndex:  n.SortIndex,
			Species:    n.Species,
		}
	}
	return taxon.Entries{t.Root.Abbrev: conv(t.Root)}
}

// ToJSON renders a tree as a /data-summary/taxons payload.
func ToJSON(t *taxon.Tree) string {
	data, err := json.Marshal(ToEntries(t))
	if err != nil {
		panic(fmt.Sprintf("testutil: marshal taxons: %v", err))
	}
	return string(data)
}
