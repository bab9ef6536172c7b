// Package export renders cluster graph snapshots.
package export

import (
	"fmt"
	"html"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vanderheijden86/orthoweb/pkg/clustergraph"
	"github.com/vanderheijden86/orthoweb/pkg/debug"
	"github.com/vanderheijden86/orthoweb/pkg/metrics"

	"git.sr.ht/~sbinet/gg"
	"github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"
)

// ClusterSnapshotOptions controls cluster graph snapshot export.
type ClusterSnapshotOptions struct {
	Path   string             // Output path; format inferred from extension when Format empty
	Format string             // "svg" or "png" (case-insensitive)
	Title  string             // Optional title; defaults to the group name
	View   *clustergraph.View // Graph plus filters and highlights to render
}

// SaveClusterSnapshot renders the view to a file.
func SaveClusterSnapshot(opts ClusterSnapshotOptions) error {
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}
	format, err := resolveFormat(opts.Format, opts.Path)
	if err != nil {
		return err
	}
	if filepath.Ext(opts.Path) == "" {
		opts.Path += "." + format
	}
	opts.Format = format

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	file, err := os.Create(opts.Path)
	if err != nil {
		return err
	}
	if err := WriteClusterSnapshot(file, opts); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// WriteClusterSnapshot renders the view to w. Format defaults to svg.
func WriteClusterSnapshot(w io.Writer, opts ClusterSnapshotOptions) error {
	if opts.View == nil {
		return fmt.Errorf("a cluster graph view is required for snapshot export")
	}
	if len(opts.View.Graph().Nodes) == 0 {
		return fmt.Errorf("no nodes to export")
	}
	format, err := resolveFormat(opts.Format, opts.Path)
	if err != nil {
		return err
	}
	defer metrics.Timer(metrics.SnapshotRender)()

	layout := buildLayout(opts)
	debug.Log("export: %s snapshot %dx%d, %d nodes, %d edges", format, layout.Width, layout.Height, len(layout.Nodes), len(layout.Edges))

	if format == "png" {
		return renderPNG(w, layout)
	}
	return renderSVG(w, layout)
}

// ContentType returns the MIME type for a snapshot format.
func ContentType(format string) string {
	if strings.EqualFold(format, "png") {
		return "image/png"
	}
	return "image/svg+xml"
}

func resolveFormat(format, path string) (string, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".png":
			format = "png"
		default:
			format = "svg"
		}
	}
	if format != "svg" && format != "png" {
		return "", fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	return format, nil
}

// --- layout computation ----------------------------------------------------

const (
	canvasWidth  = 960.0
	graphHeight  = 640.0
	padding      = 36.0
	headerHeight = 120.0
	nodeRadius   = 10.0
	legendRowH   = 16.0
	legendBoxW   = 220.0
	maxLegendRow = 12
)

type layoutNode struct {
	clustergraph.Node
	PX, PY      float64
	Classes     []string
	Highlighted bool
}

type layoutEdge struct {
	clustergraph.Edge
	X1, Y1, X2, Y2 float64
	Highlighted    bool
	TypeHighlight  bool
}

type layoutResult struct {
	Display clustergraph.NodeDisplayType
	Nodes   []layoutNode
	Edges   []layoutEdge
	Legend  []clustergraph.LegendEntry
	Width   int
	Height  int
	Summary summaryInfo
}

type summaryInfo struct {
	Title      string
	NodeCount  int
	EdgeCount  int
	Components int
	Cutoff     string
}

func buildLayout(opts ClusterSnapshotOptions) layoutResult {
	v := opts.View
	g := v.Graph()

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, n := range g.Nodes {
		minX, maxX = math.Min(minX, n.X), math.Max(maxX, n.X)
		minY, maxY = math.Min(minY, n.Y), math.Max(maxY, n.Y)
	}
	areaW := canvasWidth - 2*padding - legendBoxW - 2*nodeRadius
	areaH := graphHeight - 2*nodeRadius
	scale := 1.0
	if span := math.Max(maxX-minX, maxY-minY); span > 0 {
		scale = math.Min(areaW/math.Max(maxX-minX, 1), areaH/math.Max(maxY-minY, 1))
	}
	project := func(x, y float64) (float64, float64) {
		return padding + nodeRadius + (x-minX)*scale, padding + headerHeight + nodeRadius + (y-minY)*scale
	}

	nodes := make([]layoutNode, 0, len(g.Nodes))
	pos := make(map[string]layoutNode, len(g.Nodes))
	for _, n := range g.Nodes {
		px, py := project(n.X, n.Y)
		classes := v.NodeClasses(n.ID)
		ln := layoutNode{Node: n, PX: px, PY: py, Classes: classes, Highlighted: clustergraph.HasClass(classes, clustergraph.ClassHighlighted)}
		nodes = append(nodes, ln)
		pos[n.ID] = ln
	}

	var edges []layoutEdge
	for _, e := range v.VisibleEdges() {
		classes := v.EdgeClasses(e.ID)
		from, to := pos[e.Source], pos[e.Target]
		edges = append(edges, layoutEdge{
			Edge:          e,
			X1:            from.PX,
			Y1:            from.PY,
			X2:            to.PX,
			Y2:            to.PY,
			Highlighted:   clustergraph.HasClass(classes, clustergraph.ClassHighlighted),
			TypeHighlight: clustergraph.HasClass(classes, clustergraph.ClassTypeHighlighted),
		})
	}

	title := opts.Title
	if strings.TrimSpace(title) == "" {
		title = g.Layout.Group.Name
	}
	legend := clustergraph.Legend(g, v.Display())
	if len(legend) > maxLegendRow {
		legend = legend[:maxLegendRow]
	}

	height := int(padding*2 + headerHeight + graphHeight)
	if lh := int(padding*2 + headerHeight + legendRowH*float64(len(legend)+2)); lh > height {
		height = lh
	}

	return layoutResult{
		Display: v.Display(),
		Nodes:   nodes,
		Edges:   edges,
		Legend:  legend,
		Width:   int(canvasWidth),
		Height:  height,
		Summary: summaryInfo{
			Title:      title,
			NodeCount:  len(nodes),
			EdgeCount:  len(edges),
			Components: len(v.Components()),
			Cutoff:     "1e" + strconv.Itoa(v.EValueExp()),
		},
	}
}

// --- rendering -------------------------------------------------------------

var (
	colorStroke    = color.RGBA{0x22, 0x22, 0x22, 0xff}
	colorEdge      = color.RGBA{0x99, 0x99, 0x99, 0xff}
	colorEdgeHot   = color.RGBA{0x1f, 0x4e, 0xb4, 0xff}
	colorEdgeType  = color.RGBA{0xd6, 0x27, 0x28, 0xff}
	colorText      = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle    = color.RGBA{0x66, 0x66, 0x66, 0xff}
	colorBackdrop  = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	colorHeaderBG  = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
	colorLegendBG  = color.RGBA{0xee, 0xee, 0xee, 0xff}
	colorHighlight = color.RGBA{0xff, 0xa5, 0x00, 0xff}
)

func edgeStyle(e layoutEdge) (color.RGBA, float64) {
	switch {
	case e.TypeHighlight:
		return colorEdgeType, 3
	case e.Highlighted:
		return colorEdgeHot, 3
	default:
		return colorEdge, 1
	}
}

// pieColors returns the slice colours for the active display, or nil when
// the node is drawn as a plain taxon circle.
func pieColors(display clustergraph.NodeDisplayType, n clustergraph.Node) []string {
	switch display {
	case clustergraph.DisplayEcNumbers:
		return n.EcPieColors
	case clustergraph.DisplayPfamDomains:
		return n.PfamPieColors
	default:
		return nil
	}
}

func renderPNG(w io.Writer, layout layoutResult) error {
	dc := gg.NewContext(layout.Width, layout.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()

	dc.SetColor(colorHeaderBG)
	dc.DrawRoundedRectangle(16, 16, float64(layout.Width)-32, headerHeight-24, 10)
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)

	drawSummaryBlock(dc, layout)
	drawLegend(dc, layout)

	for _, e := range layout.Edges {
		c, width := edgeStyle(e)
		dc.SetColor(c)
		dc.SetLineWidth(width)
		dc.DrawLine(e.X1, e.Y1, e.X2, e.Y2)
		dc.Stroke()
	}

	for _, n := range layout.Nodes {
		drawNode(dc, layout.Display, n)
	}

	return dc.EncodePNG(w)
}

func drawNode(dc *gg.Context, display clustergraph.NodeDisplayType, n layoutNode) {
	slices := pieColors(display, n.Node)
	if len(slices) == 0 {
		dc.SetColor(parseColor(n.GroupColor))
		dc.DrawCircle(n.PX, n.PY, nodeRadius)
		dc.Fill()
		dc.SetColor(parseColor(n.SpeciesColor))
		dc.DrawCircle(n.PX, n.PY, nodeRadius-3)
		dc.Fill()
	} else {
		step := 2 * math.Pi / float64(len(slices))
		for i, c := range slices {
			a0 := -math.Pi/2 + float64(i)*step
			dc.SetColor(parseColor(c))
			dc.MoveTo(n.PX, n.PY)
			dc.DrawArc(n.PX, n.PY, nodeRadius, a0, a0+step)
			dc.ClosePath()
			dc.Fill()
		}
	}

	dc.SetColor(colorStroke)
	dc.SetLineWidth(1)
	if n.Highlighted {
		dc.SetColor(colorHighlight)
		dc.SetLineWidth(3)
	}
	dc.DrawCircle(n.PX, n.PY, nodeRadius)
	dc.Stroke()
}

func drawSummaryBlock(dc *gg.Context, layout layoutResult) {
	dc.SetColor(colorText)
	dc.DrawStringAnchored(layout.Summary.Title, 32, 44, 0, 0.5)
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(summaryCounts(layout.Summary), 32, 64, 0, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("e-value cutoff: %s", layout.Summary.Cutoff), 32, 84, 0, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("display: %s", layout.Display.DisplayName()), 32, 104, 0, 0.5)
}

func drawLegend(dc *gg.Context, layout layoutResult) {
	x := float64(layout.Width) - legendBoxW - 20
	y := headerHeight + padding
	boxH := legendRowH * float64(len(layout.Legend)+2)
	dc.SetColor(colorLegendBG)
	dc.DrawRoundedRectangle(x, y, legendBoxW, boxH, 10)
	dc.Fill()
	dc.SetColor(colorStroke)
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(x, y, legendBoxW, boxH, 10)
	dc.Stroke()

	dc.SetColor(colorText)
	dc.DrawStringAnchored(layout.Display.DisplayName(), x+12, y+18, 0, 0.5)
	for i, entry := range layout.Legend {
		drawLegendRow(dc, x+12, y+36+float64(i)*legendRowH, parseColor(entry.Color), truncate(entry.Description, 26))
	}
}

func drawLegendRow(dc *gg.Context, x, y float64, c color.RGBA, label string) {
	dc.SetColor(c)
	dc.DrawRoundedRectangle(x, y-8, 12, 12, 3)
	dc.Fill()
	dc.SetColor(colorStroke)
	dc.DrawRoundedRectangle(x, y-8, 12, 12, 3)
	dc.Stroke()
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(label, x+20, y, 0, 0.5)
}

func renderSVG(w io.Writer, layout layoutResult) error {
	canvas := svg.New(w)
	canvas.Start(layout.Width, layout.Height)
	canvas.Rect(0, 0, layout.Width, layout.Height, fmt.Sprintf("fill:%s", css(colorBackdrop)))
	canvas.Roundrect(16, 16, layout.Width-32, int(headerHeight-24), 10, 10, fmt.Sprintf("fill:%s", css(colorHeaderBG)))

	drawSummaryBlockSVG(canvas, layout)
	drawLegendSVG(canvas, layout)

	canvas.Gid("edges")
	for _, e := range layout.Edges {
		c, width := edgeStyle(e)
		canvas.Line(int(e.X1), int(e.Y1), int(e.X2), int(e.Y2),
			fmt.Sprintf("stroke:%s;stroke-width:%g", css(c), width),
			attr("id", e.ID))
	}
	canvas.Gend()

	canvas.Gid("nodes")
	for _, n := range layout.Nodes {
		drawNodeSVG(canvas, layout.Display, n)
	}
	canvas.Gend()

	canvas.End()
	return nil
}

func drawNodeSVG(canvas *svg.SVG, display clustergraph.NodeDisplayType, n layoutNode) {
	x, y, r := int(n.PX), int(n.PY), int(nodeRadius)
	canvas.Group(attr("id", n.ID) + " " + attr("class", strings.Join(n.Classes, " ")))
	canvas.Title(n.ID + " (" + n.Taxon + ")")

	slices := pieColors(display, n.Node)
	if len(slices) == 0 {
		canvas.Circle(x, y, r, fill(n.GroupColor))
		canvas.Circle(x, y, r-3, fill(n.SpeciesColor))
	} else if len(slices) == 1 {
		canvas.Circle(x, y, r, fill(slices[0]))
	} else {
		step := 2 * math.Pi / float64(len(slices))
		for i, c := range slices {
			a0 := -math.Pi/2 + float64(i)*step
			canvas.Path(wedgePath(n.PX, n.PY, nodeRadius, a0, a0+step), fill(c))
		}
	}

	stroke := fmt.Sprintf("fill:none;stroke:%s;stroke-width:1", css(colorStroke))
	if n.Highlighted {
		stroke = fmt.Sprintf("fill:none;stroke:%s;stroke-width:3", css(colorHighlight))
	}
	canvas.Circle(x, y, r, stroke)
	canvas.Gend()
}

func wedgePath(cx, cy, r, a0, a1 float64) string {
	large := 0
	if a1-a0 > math.Pi {
		large = 1
	}
	return fmt.Sprintf("M%.2f,%.2f L%.2f,%.2f A%.2f,%.2f 0 %d,1 %.2f,%.2f Z",
		cx, cy,
		cx+r*math.Cos(a0), cy+r*math.Sin(a0),
		r, r, large,
		cx+r*math.Cos(a1), cy+r*math.Sin(a1))
}

func drawSummaryBlockSVG(canvas *svg.SVG, layout layoutResult) {
	canvas.Text(32, 44, layout.Summary.Title, fmt.Sprintf("fill:%s;font-size:16px;font-family:monospace;font-weight:bold", css(colorText)))
	canvas.Text(32, 64, summaryCounts(layout.Summary), fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))
	canvas.Text(32, 84, fmt.Sprintf("e-value cutoff: %s", layout.Summary.Cutoff), fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))
	canvas.Text(32, 104, fmt.Sprintf("display: %s", layout.Display.DisplayName()), fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorSubtle)))
}

func drawLegendSVG(canvas *svg.SVG, layout layoutResult) {
	x := layout.Width - int(legendBoxW) - 20
	y := int(headerHeight + padding)
	boxH := int(legendRowH) * (len(layout.Legend) + 2)
	canvas.Roundrect(x, y, int(legendBoxW), boxH, 10, 10, fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", css(colorLegendBG), css(colorStroke)))
	canvas.Text(x+12, y+18, layout.Display.DisplayName(), fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace;font-weight:bold", css(colorText)))
	for i, entry := range layout.Legend {
		drawLegendRowSVG(canvas, x+12, y+36+i*int(legendRowH), entry.Color, truncate(entry.Description, 26))
	}
}

func drawLegendRowSVG(canvas *svg.SVG, x, y int, swatch, label string) {
	canvas.Roundrect(x, y-8, 12, 12, 3, 3, fmt.Sprintf("%s;stroke:%s;stroke-width:1", fill(swatch), css(colorStroke)))
	canvas.Text(x+20, y+2, label, fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorSubtle)))
}

// --- helpers ---------------------------------------------------------------

func summaryCounts(s summaryInfo) string {
	return fmt.Sprintf("nodes: %d  edges: %d  components: %d", s.NodeCount, s.EdgeCount, s.Components)
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// attr renders name="value" with value escaped; svgo writes extra
// attribute strings as given.
func attr(name, value string) string {
	return name + `="` + html.EscapeString(value) + `"`
}

// fill normalizes a layout colour into a fill style.
func fill(c string) string {
	return "fill:" + css(parseColor(c))
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// parseColor reads #rgb, #rrggbb and "white". Anything else renders grey.
func parseColor(s string) color.RGBA {
	grey := color.RGBA{0xcc, 0xcc, 0xcc, 0xff}
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "white" {
		return color.RGBA{0xff, 0xff, 0xff, 0xff}
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return grey
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return grey
	}
	return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 0xff}
}
