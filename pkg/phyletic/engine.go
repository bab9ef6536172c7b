package phyletic

// Engine owns one tree and its current state snapshot. It is meant for a
// single interactive owner and is not safe for concurrent use.
type Engine struct {
	tree   *Tree
	states States
}

// NewEngine returns an engine with every node free.
func NewEngine(tree *Tree) *Engine {
	e := &Engine{}
	e.Reset(tree)
	return e
}

// Reset swaps in a tree, or reinitializes the current one when tree is nil.
func (e *Engine) Reset(tree *Tree) {
	if tree != nil {
		e.tree = tree
	}
	e.states = Initialize(e.tree)
}

// Tree returns the engine's tree.
func (e *Engine) Tree() *Tree {
	return e.tree
}

// Toggle advances one node and replaces the current snapshot.
func (e *Engine) Toggle(abbrev string) error {
	next, err := Toggle(e.tree, e.states, abbrev)
	if err != nil {
		return err
	}
	e.states = next
	return nil
}

// States returns the current snapshot. Callers must not modify it.
func (e *Engine) States() States {
	return e.states
}

// State returns one node's state, or "" for an unknown abbreviation.
func (e *Engine) State(abbrev string) ConstraintState {
	return e.states[abbrev]
}

// Expression renders the current snapshot.
func (e *Engine) Expression() (string, error) {
	return Synthesize(e.tree, e.states)
}

// Compile returns the structured form of the current snapshot.
func (e *Engine) Compile() (Expression, error) {
	return Compile(e.tree, e.states)
}
