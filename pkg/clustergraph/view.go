package clustergraph

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/vanderheijden86/orthoweb/pkg/grouplayout"
)

// CSS-style classes reported by NodeClasses and EdgeClasses.
const (
	ClassHighlighted     = "highlighted"
	ClassSource          = "source"
	ClassTarget          = "target"
	ClassLeftToRight     = "left-to-right"
	ClassRightToLeft     = "right-to-left"
	ClassTopToBottom     = "top-to-bottom"
	ClassBottomToTop     = "bottom-to-top"
	ClassTypeHighlighted = "type-highlighted"
	ClassFilteredOut     = "filtered-out"
)

// View is the interactive state layered over a Graph.
type View struct {
	g *Graph

	selected  map[grouplayout.EdgeType]bool
	eValueExp int
	display   NodeDisplayType

	// Node highlights come either from a legend hover or from the sequence
	// list; whichever was set last wins.
	highlightedNodes map[string]bool

	highlightedEdgeType grouplayout.EdgeType
	highlightedEdge     string
}

// NewView returns the initial view: every edge type selected, taxa
// colouring and the default e-value cutoff.
func NewView(g *Graph) *View {
	v := &View{
		g:                g,
		selected:         make(map[grouplayout.EdgeType]bool, len(grouplayout.EdgeTypeOrder)),
		highlightedNodes: make(map[string]bool),
	}
	v.Reset()
	return v
}

// Reset restores the initial state.
func (v *View) Reset() {
	for _, t := range grouplayout.EdgeTypeOrder {
		v.selected[t] = true
	}
	v.eValueExp = InitialEValueExp(v.g.Layout)
	v.display = DisplayTaxa
	v.highlightedNodes = make(map[string]bool)
	v.highlightedEdgeType = ""
	v.highlightedEdge = ""
}

// Graph returns the underlying graph.
func (v *View) Graph() *Graph { return v.g }

// InitialEValueExp is max - round((max-min)/5).
func InitialEValueExp(l *grouplayout.GroupLayout) int {
	spread := float64(l.MaxEvalueExp-l.MinEvalueExp) / 5.0
	return l.MaxEvalueExp - int(math.Floor(spread+0.5))
}

// EValueRange returns the slider bounds, one past the layout's exponents.
func (v *View) EValueRange() (lo, hi int) {
	return v.g.Layout.MinEvalueExp - 1, v.g.Layout.MaxEvalueExp + 1
}

// EValueExp returns the current cutoff exponent.
func (v *View) EValueExp() int { return v.eValueExp }

// SetEValueExp sets the cutoff exponent, clamped to EValueRange.
func (v *View) SetEValueExp(exp int) {
	lo, hi := v.EValueRange()
	v.eValueExp = max(lo, min(hi, exp))
}

// MaxEValue is the cutoff itself, 1e<exp>.
func (v *View) MaxEValue() float64 {
	f, _ := strconv.ParseFloat("1e"+strconv.Itoa(v.eValueExp), 64)
	return f
}

// EdgeTypeOptions lists edge types in display order with their selection.
func (v *View) EdgeTypeOptions() []EdgeTypeOption {
	out := make([]EdgeTypeOption, 0, len(grouplayout.EdgeTypeOrder))
	for _, t := range grouplayout.EdgeTypeOrder {
		out = append(out, EdgeTypeOption{Key: t, Display: t.DisplayName(), Selected: v.selected[t]})
	}
	return out
}

// SelectEdgeType turns one edge type on or off.
func (v *View) SelectEdgeType(t grouplayout.EdgeType, on bool) error {
	if !t.Known() {
		return fmt.Errorf("unknown edge type %q", t)
	}
	v.selected[t] = on
	return nil
}

// SelectOnlyEdgeTypes selects exactly the given types.
func (v *View) SelectOnlyEdgeTypes(types []grouplayout.EdgeType) error {
	next := make(map[grouplayout.EdgeType]bool, len(grouplayout.EdgeTypeOrder))
	for _, t := range types {
		if !t.Known() {
			return fmt.Errorf("unknown edge type %q", t)
		}
		next[t] = true
	}
	for _, t := range grouplayout.EdgeTypeOrder {
		v.selected[t] = next[t]
	}
	return nil
}

// Display returns the node colouring mode.
func (v *View) Display() NodeDisplayType { return v.display }

// SetDisplay changes the node colouring mode.
func (v *View) SetDisplay(t NodeDisplayType) error {
	if _, ok := nodeDisplayNames[t]; !ok {
		return fmt.Errorf("unknown node display type %q", t)
	}
	v.display = t
	return nil
}

// HighlightLegend highlights the nodes of a legend entry. nil clears.
func (v *View) HighlightLegend(nodeIDs []string) {
	v.highlightedNodes = make(map[string]bool, len(nodeIDs))
	for _, id := range nodeIDs {
		if _, ok := v.g.nodeIndex[id]; ok {
			v.highlightedNodes[id] = true
		}
	}
}

// HighlightSequence highlights one node from the sequence list. "" clears.
func (v *View) HighlightSequence(nodeID string) {
	v.highlightedNodes = make(map[string]bool, 1)
	if _, ok := v.g.nodeIndex[nodeID]; ok {
		v.highlightedNodes[nodeID] = true
	}
}

// HighlightEdgeType marks every edge of a type. "" clears.
func (v *View) HighlightEdgeType(t grouplayout.EdgeType) {
	v.highlightedEdgeType = t
}

// HighlightEdge highlights one BLAST edge and its endpoints. "" clears.
func (v *View) HighlightEdge(edgeID string) {
	if _, ok := v.g.edgeIndex[edgeID]; !ok {
		edgeID = ""
	}
	v.highlightedEdge = edgeID
}

// EdgeVisible reports whether an edge passes the type and e-value filters.
func (v *View) EdgeVisible(id string) bool {
	e, ok := v.g.Edge(id)
	if !ok {
		return false
	}
	return v.selected[e.Type] && e.EValue <= v.MaxEValue()
}

// VisibleEdges returns the edges that pass the filters.
func (v *View) VisibleEdges() []Edge {
	var out []Edge
	for _, e := range v.g.Edges {
		if v.EdgeVisible(e.ID) {
			out = append(out, e)
		}
	}
	return out
}

// NodeClasses returns the classes a node carries in the current state.
func (v *View) NodeClasses(id string) []string {
	if _, ok := v.g.nodeIndex[id]; !ok {
		return nil
	}
	classes := []string{string(v.display)}
	highlighted := v.highlightedNodes[id]

	if v.highlightedEdge != "" {
		e, _ := v.g.Edge(v.highlightedEdge)
		if id == e.Source || id == e.Target {
			highlighted = true
			role := ClassSource
			if id == e.Target && id != e.Source {
				role = ClassTarget
			}
			horizontal, vertical := v.flow(e)
			classes = append(classes, role, horizontal, vertical)
		}
	}
	if highlighted {
		classes = append(classes, ClassHighlighted)
	}
	sort.Strings(classes)
	return classes
}

// EdgeClasses returns the classes an edge carries in the current state.
func (v *View) EdgeClasses(id string) []string {
	e, ok := v.g.Edge(id)
	if !ok {
		return nil
	}
	var classes []string
	if id == v.highlightedEdge {
		classes = append(classes, ClassHighlighted)
	}
	if v.highlightedEdgeType != "" && e.Type == v.highlightedEdgeType {
		classes = append(classes, ClassTypeHighlighted)
	}
	if !v.EdgeVisible(id) {
		classes = append(classes, ClassFilteredOut)
	}
	sort.Strings(classes)
	return classes
}

// HasClass reports whether classes contains c.
func HasClass(classes []string, c string) bool {
	for _, x := range classes {
		if x == c {
			return true
		}
	}
	return false
}

func (v *View) flow(e Edge) (horizontal, vertical string) {
	src, _ := v.g.Node(e.Source)
	dst, _ := v.g.Node(e.Target)
	horizontal = ClassLeftToRight
	if src.X >= dst.X {
		horizontal = ClassRightToLeft
	}
	vertical = ClassBottomToTop
	if src.Y <= dst.Y {
		vertical = ClassTopToBottom
	}
	return horizontal, vertical
}
