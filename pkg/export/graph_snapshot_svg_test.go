package export

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/vanderheijden86/orthoweb/pkg/clustergraph"
	"github.com/vanderheijden86/orthoweb/pkg/testutil"
)

// svgElements decodes the document and counts start elements by name, and
// collects the ids of <line> and <g> elements.
func svgElements(t *testing.T, doc []byte) (counts map[string]int, ids map[string]bool) {
	t.Helper()
	counts = make(map[string]int)
	ids = make(map[string]bool)
	dec := xml.NewDecoder(bytes.NewReader(doc))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return counts, ids
		}
		if err != nil {
			t.Fatalf("SVG is not valid XML: %v\n%s", err, doc)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		counts[se.Name.Local]++
		for _, a := range se.Attr {
			if a.Name.Local == "id" {
				ids[a.Value] = true
			}
		}
	}
}

func renderSVGString(t *testing.T, opts ClusterSnapshotOptions) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := WriteClusterSnapshot(&buf, opts); err != nil {
		t.Fatalf("WriteClusterSnapshot: %v", err)
	}
	return buf.Bytes()
}

func TestSVG_ValidStructure(t *testing.T) {
	doc := renderSVGString(t, ClusterSnapshotOptions{View: sampleView(t)})
	counts, ids := svgElements(t, doc)

	if counts["svg"] != 1 {
		t.Errorf("expected one <svg> root, got %d", counts["svg"])
	}
	for _, id := range []string{"edges", "nodes", "g1", "g2", "g3", "g4"} {
		if !ids[id] {
			t.Errorf("missing element id %q", id)
		}
	}
	if !strings.Contains(string(doc), `width="960"`) {
		t.Error("expected the fixed canvas width")
	}
}

func TestSVG_EdgeLinesFollowFilters(t *testing.T) {
	tests := []struct {
		name  string
		exp   int
		edges string
		want  []string
	}{
		{"initial cutoff", -12, "", []string{"e1", "e2"}},
		{"loosest cutoff", -1, "", []string{"e1", "e2", "e3", "e4"}},
		{"orthologs only", -1, "O", []string{"e1"}},
		{"nothing passes", -60, "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := sampleView(t)
			exp := tt.exp
			if err := view.Apply(clustergraph.Settings{EValueExp: &exp, EdgeTypes: tt.edges}); err != nil {
				t.Fatal(err)
			}
			counts, ids := svgElements(t, renderSVGString(t, ClusterSnapshotOptions{View: view}))
			if counts["line"] != len(tt.want) {
				t.Errorf("<line> count = %d, want %d", counts["line"], len(tt.want))
			}
			for _, id := range tt.want {
				if !ids[id] {
					t.Errorf("edge %s not rendered", id)
				}
			}
		})
	}
}

func TestSVG_TitleEscaping(t *testing.T) {
	doc := renderSVGString(t, ClusterSnapshotOptions{View: sampleView(t), Title: `kinases <&> "receptors"`})
	svgElements(t, doc)
	out := string(doc)
	if strings.Contains(out, "<&>") {
		t.Error("title was not escaped")
	}
	if !strings.Contains(out, "&lt;&amp;&gt;") {
		t.Errorf("escaped title missing from output")
	}
}

func TestSVG_DefaultTitleIsGroupName(t *testing.T) {
	doc := renderSVGString(t, ClusterSnapshotOptions{View: sampleView(t), Title: "   "})
	if !strings.Contains(string(doc), ">OG6_100000<") {
		t.Error("expected the group name as title")
	}
}

func TestSVG_LegendFollowsDisplay(t *testing.T) {
	view := sampleView(t)
	if err := view.SetDisplay(clustergraph.DisplayPfamDomains); err != nil {
		t.Fatal(err)
	}
	out := string(renderSVGString(t, ClusterSnapshotOptions{View: view}))
	if !strings.Contains(out, "display: PFam Domains") {
		t.Error("summary should name the display type")
	}
	if !strings.Contains(out, "fill:#0000ff") {
		t.Error("expected the PF00001 legend colour")
	}
}

func TestSVG_EscapesLayoutValues(t *testing.T) {
	hostile := strings.NewReplacer(
		`"g1"`, `"g1&x\"y"`,
		`"e2"`, `"e2<z>"`,
		`"#ff0000"`, `"red\" onload=\"alert(1)"`,
	).Replace(testutil.SampleLayoutJSON)
	view := viewFromLayout(t, hostile)
	display := clustergraph.DisplayEcNumbers
	if err := view.Apply(clustergraph.Settings{Display: string(display)}); err != nil {
		t.Fatal(err)
	}

	doc := renderSVGString(t, ClusterSnapshotOptions{View: view})
	_, ids := svgElements(t, doc)
	for _, id := range []string{`g1&x"y`, "e2<z>"} {
		if !ids[id] {
			t.Errorf("expected id %q to round-trip through the document", id)
		}
	}
	if bytes.Contains(doc, []byte("onload")) {
		t.Errorf("colour value leaked into the markup:\n%s", doc)
	}
	if !bytes.Contains(doc, []byte("fill:#cccccc")) {
		t.Error("unparseable colour should render grey")
	}
}
