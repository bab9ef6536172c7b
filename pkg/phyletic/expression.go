package phyletic

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vanderheijden86/orthoweb/pkg/metrics"
)

// ParamName is the search parameter that receives the expression.
const ParamName = "phyletic_expression"

const clauseSep = " AND "

var (
	ErrIncompleteStates   = errors.New("phyletic: state map does not cover the tree")
	ErrInconsistentStates = errors.New("phyletic: state map violates propagation invariants")
)

// ClauseKind is the quantifier of a whole-clade clause.
type ClauseKind string

const (
	ClauseAll        ClauseKind = "all"          // ABBR=NT
	ClauseAtLeastOne ClauseKind = "at-least-one" // ABBR>=1T
	ClauseNone       ClauseKind = "none"         // ABBR=0T
)

// Clause is a constraint over every species of one clade.
type Clause struct {
	Abbrev       string     `json:"abbrev"`
	Kind         ClauseKind `json:"kind"`
	SpeciesCount int        `json:"speciesCount"`
}

func (c Clause) String() string {
	switch c.Kind {
	case ClauseAtLeastOne:
		return c.Abbrev + ">=1T"
	case ClauseNone:
		return c.Abbrev + "=0T"
	default:
		return c.Abbrev + "=" + strconv.Itoa(c.SpeciesCount) + "T"
	}
}

// Expression is the structured form of a phyletic pattern.
type Expression struct {
	// Clauses are whole-clade constraints such as "MAMM=12T".
	Clauses []Clause `json:"clauses"`
	// Included and Excluded are individually selected species.
	Included []string `json:"included"`
	Excluded []string `json:"excluded"`
}

// Empty reports whether the expression constrains nothing.
func (e Expression) Empty() bool {
	return len(e.Clauses) == 0 && len(e.Included) == 0 && len(e.Excluded) == 0
}

// IncludedClause renders the included species as "a+b=2T", or "".
func (e Expression) IncludedClause() string {
	if len(e.Included) == 0 {
		return ""
	}
	return strings.Join(e.Included, "+") + "=" + strconv.Itoa(len(e.Included)) + "T"
}

// ExcludedClause renders the excluded species as "a+b=0T", or "".
func (e Expression) ExcludedClause() string {
	if len(e.Excluded) == 0 {
		return ""
	}
	return strings.Join(e.Excluded, "+") + "=0T"
}

// String renders the expression in the search backend's grammar.
func (e Expression) String() string {
	parts := make([]string, 0, len(e.Clauses)+2)
	for _, c := range e.Clauses {
		parts = append(parts, c.String())
	}
	if c := e.IncludedClause(); c != "" {
		parts = append(parts, c)
	}
	if c := e.ExcludedClause(); c != "" {
		parts = append(parts, c)
	}
	return strings.Join(parts, clauseSep)
}

// Synthesize renders the expression for states over tree.
func Synthesize(tree *Tree, states States) (string, error) {
	expr, err := Compile(tree, states)
	if err != nil {
		return "", err
	}
	return expr.String(), nil
}

// Compile walks the tree from the root and collects the structured
// expression. It refuses maps that do not cover the tree and maps in which
// a free clade hides constrained descendants, since those constraints would
// otherwise be dropped silently.
func Compile(tree *Tree, states States) (Expression, error) {
	defer metrics.Timer(metrics.Synthesis)()

	for _, n := range tree.nodes {
		s, ok := states[n.abbrev]
		if !ok {
			return Expression{}, fmt.Errorf("%w: no state for %s", ErrIncompleteStates, n.abbrev)
		}
		if !s.AllowedFor(n.species) {
			return Expression{}, fmt.Errorf("%w: %s cannot be %q", ErrInconsistentStates, n.abbrev, s)
		}
	}

	var expr Expression
	collect := func(i int) {
		n := tree.nodes[i]
		switch states[n.abbrev] {
		case IncludeAll:
			expr.Included = append(expr.Included, n.abbrev)
		case Exclude:
			expr.Excluded = append(expr.Excluded, n.abbrev)
		}
	}

	var visit func(i int) error
	visit = func(i int) error {
		n := tree.nodes[i]
		clause := Clause{Abbrev: n.abbrev, SpeciesCount: n.speciesCount}
		switch states[n.abbrev] {
		case IncludeAll:
			clause.Kind = ClauseAll
			expr.Clauses = append(expr.Clauses, clause)
		case IncludeAtLeastOne:
			clause.Kind = ClauseAtLeastOne
			expr.Clauses = append(expr.Clauses, clause)
		case Exclude:
			clause.Kind = ClauseNone
			expr.Clauses = append(expr.Clauses, clause)
		case Mixed:
			for _, c := range n.children {
				if tree.nodes[c].species {
					collect(c)
					continue
				}
				if err := visit(c); err != nil {
					return err
				}
			}
		case Free:
			var hidden string
			tree.eachDescendant(i, func(d int) {
				if hidden == "" && states[tree.nodes[d].abbrev] != Free {
					hidden = tree.nodes[d].abbrev
				}
			})
			if hidden != "" {
				return fmt.Errorf("%w: %s is free but descendant %s is %q",
					ErrInconsistentStates, n.abbrev, hidden, states[hidden])
			}
		}
		return nil
	}

	root := tree.nodes[tree.root]
	if root.species {
		collect(tree.root)
		return expr, nil
	}
	if err := visit(tree.root); err != nil {
		return Expression{}, err
	}
	return expr, nil
}
