package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/orthoweb/pkg/taxon"
)

// AssertTreeValid verifies unique abbreviations and that species are leaves.
func AssertTreeValid(t *testing.T, tree *taxon.Tree) {
	t.Helper()
	seen := make(map[string]bool)
	tree.Walk(func(n *taxon.Node, _ int) bool {
		if seen[n.Abbrev] {
			t.Errorf("duplicate abbreviation: %s", n.Abbrev)
		}
		seen[n.Abbrev] = true
		if n.Species && len(n.Children) > 0 {
			t.Errorf("species %s has %d children", n.Abbrev, len(n.Children))
		}
		return true
	})
}

// CountSpecies returns the number of species in a tree.
func CountSpecies(tree *taxon.Tree) int {
	count := 0
	tree.Walk(func(n *taxon.Node, _ int) bool {
		if n.Species {
			count++
		}
		return true
	})
	return count
}

// Abbrevs returns every abbreviation in pre-order.
func Abbrevs(tree *taxon.Tree) []string {
	var out []string
	tree.Walk(func(n *taxon.Node, _ int) bool {
		out = append(out, n.Abbrev)
		return true
	})
	return out
}

// AssertContains fails if s does not contain sub.
func AssertContains(t *testing.T, s, sub string) {
	t.Helper()
	if !strings.Contains(s, sub) {
		t.Errorf("expected %q to contain %q", truncate(s, 200), sub)
	}
}

// AssertNotContains fails if s contains sub.
func AssertNotContains(t *testing.T, s, sub string) {
	t.Helper()
	if strings.Contains(s, sub) {
		t.Errorf("expected %q not to contain %q", truncate(s, 200), sub)
	}
}

// AssertFileNonEmpty verifies that a file exists and has content.
func AssertFileNonEmpty(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	if info.Size() == 0 {
		t.Fatalf("%s is empty", path)
	}
}

// WriteFixture writes content to name under a fresh temp dir and returns the path.
func WriteFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
