package ui

import (
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/orthoweb/pkg/debug"
)

// TreeState is the persisted expand/collapse state of the taxon tree,
// saved to tree-state.json in the state directory.
//
//	{
//	  "version": 1,
//	  "expanded": {
//	    "EUKA": true,
//	    "ALL": false
//	  }
//	}
//
// Only explicit changes are stored. Nodes absent from the map use the
// default: the root expanded, everything else collapsed. A missing or
// corrupted file means defaults.
type TreeState struct {
	Version  int             `json:"version"`
	Expanded map[string]bool `json:"expanded"`
}

// TreeStateVersion is the current schema version.
const TreeStateVersion = 1

const treeStateFileName = "tree-state.json"

// DefaultTreeState returns an empty state.
func DefaultTreeState() *TreeState {
	return &TreeState{
		Version:  TreeStateVersion,
		Expanded: make(map[string]bool),
	}
}

// TreeStatePath returns the state file path under dir.
func TreeStatePath(dir string) string {
	return filepath.Join(dir, treeStateFileName)
}

// LoadTreeState reads the state file under dir. Any failure yields the
// default state.
func LoadTreeState(dir string) *TreeState {
	if dir == "" {
		return DefaultTreeState()
	}
	data, err := os.ReadFile(TreeStatePath(dir))
	if err != nil {
		return DefaultTreeState()
	}
	var state TreeState
	if err := json.Unmarshal(data, &state); err != nil {
		debug.Log("ui: invalid tree state file, using defaults: %v", err)
		return DefaultTreeState()
	}
	if state.Expanded == nil {
		state.Expanded = make(map[string]bool)
	}
	return &state
}

// SaveTreeState writes state under dir. An empty dir disables persistence.
func SaveTreeState(dir string, state *TreeState) error {
	if dir == "" || state == nil {
		return nil
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(TreeStatePath(dir), data, 0o644)
}
