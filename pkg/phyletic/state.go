package phyletic

// ConstraintState is a node's inclusion directive.
type ConstraintState string

const (
	Free              ConstraintState = "free"
	IncludeAll        ConstraintState = "include-all"
	IncludeAtLeastOne ConstraintState = "include-at-least-one" // interior only
	Exclude           ConstraintState = "exclude"
	Mixed             ConstraintState = "mixed" // interior only; children disagree
)

var (
	cladeCycle   = []ConstraintState{Free, IncludeAll, IncludeAtLeastOne, Exclude}
	speciesCycle = []ConstraintState{Free, IncludeAll, Exclude}
)

// Valid reports whether s is one of the five known states.
func (s ConstraintState) Valid() bool {
	switch s {
	case Free, IncludeAll, IncludeAtLeastOne, Exclude, Mixed:
		return true
	}
	return false
}

// AllowedFor reports whether a node of the given kind may hold s.
func (s ConstraintState) AllowedFor(species bool) bool {
	if species {
		return s == Free || s == IncludeAll || s == Exclude
	}
	return s.Valid()
}

// NextState returns the state a toggle moves to. Mixed always breaks out to
// include-all; a value outside the node's cycle restarts it from free.
func NextState(current ConstraintState, species bool) ConstraintState {
	if current == Mixed {
		return IncludeAll
	}
	cycle := cladeCycle
	if species {
		cycle = speciesCycle
	}
	for i, s := range cycle {
		if s == current {
			return cycle[(i+1)%len(cycle)]
		}
	}
	return cycle[1]
}

// States maps abbreviation to constraint state. Maps returned by this
// package are snapshots and are never modified after they are handed out.
type States map[string]ConstraintState

// Clone returns a shallow copy.
func (s States) Clone() States {
	out := make(States, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// AllFree reports whether every entry is free.
func (s States) AllFree() bool {
	for _, v := range s {
		if v != Free {
			return false
		}
	}
	return true
}
