package export

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/vanderheijden86/orthoweb/pkg/phyletic"
)

// GenerateExpressionMarkdown explains a phyletic pattern as a markdown
// report: the expression itself, a summary table and one row per clause.
func GenerateExpressionMarkdown(tree *phyletic.Tree, states phyletic.States, title string) (string, error) {
	expr, err := phyletic.Compile(tree, states)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	sb.WriteString(fmt.Sprintf("*Generated: %s*\n\n", time.Now().Format(time.RFC1123)))

	if expr.Empty() {
		sb.WriteString("No constraints selected. Every group matches.\n")
		return sb.String(), nil
	}

	sb.WriteString("```\n")
	sb.WriteString(phyletic.ParamName + "=" + expr.String() + "\n")
	sb.WriteString("```\n\n")

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Constraint | Count |\n|------------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Clade clauses | %d |\n", len(expr.Clauses)))
	sb.WriteString(fmt.Sprintf("| Required species | %d |\n", len(expr.Included)))
	sb.WriteString(fmt.Sprintf("| Excluded species | %d |\n\n", len(expr.Excluded)))

	if len(expr.Clauses) > 0 {
		sb.WriteString("## Clades\n\n")
		sb.WriteString("| Clause | Clade | Meaning |\n|--------|-------|---------|\n")
		for _, clause := range expr.Clauses {
			name := clause.Abbrev
			if n, ok := tree.Node(clause.Abbrev); ok {
				name = n.Name
			}
			sb.WriteString(fmt.Sprintf("| `%s` | %s | %s |\n", clause, escapeCell(name), explainClause(clause)))
		}
		sb.WriteString("\n")
	}

	if len(expr.Included)+len(expr.Excluded) > 0 {
		sb.WriteString("## Species\n\n")
		sb.WriteString("| Species | Name | Constraint |\n|---------|------|------------|\n")
		for _, a := range expr.Included {
			sb.WriteString(speciesRow(tree, a, "✅ present"))
		}
		for _, a := range expr.Excluded {
			sb.WriteString(speciesRow(tree, a, "⛔ absent"))
		}
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

func explainClause(c phyletic.Clause) string {
	switch c.Kind {
	case phyletic.ClauseAtLeastOne:
		return fmt.Sprintf("at least one of %d species present", c.SpeciesCount)
	case phyletic.ClauseNone:
		return "no species present"
	default:
		return fmt.Sprintf("all %d species present", c.SpeciesCount)
	}
}

func speciesRow(tree *phyletic.Tree, abbrev, constraint string) string {
	name := abbrev
	if n, ok := tree.Node(abbrev); ok {
		name = n.Name
	}
	return fmt.Sprintf("| `%s` | *%s* | %s |\n", abbrev, escapeCell(name), constraint)
}

func escapeCell(s string) string {
	return strings.NewReplacer("|", "\\|", "\n", " ").Replace(s)
}

// SaveExpressionMarkdown writes the report to filename.
func SaveExpressionMarkdown(tree *phyletic.Tree, states phyletic.States, title, filename string) error {
	content, err := GenerateExpressionMarkdown(tree, states, title)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, []byte(content), 0o644)
}
