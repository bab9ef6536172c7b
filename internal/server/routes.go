package server

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vanderheijden86/orthoweb/pkg/clustergraph"
	"github.com/vanderheijden86/orthoweb/pkg/export"
	"github.com/vanderheijden86/orthoweb/pkg/grouplayout"
	"github.com/vanderheijden86/orthoweb/pkg/metrics"
	"github.com/vanderheijden86/orthoweb/pkg/phyletic"
	"github.com/vanderheijden86/orthoweb/pkg/records"
)

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), s.observe())

	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.prom, promhttp.HandlerOpts{})))
	r.GET("/debug/timings", s.handleTimings)

	api := r.Group("/api")
	{
		api.GET("/taxons", s.handleTaxons)
		api.POST("/phyletic/toggle", s.handleToggle)
		api.POST("/phyletic/expression", s.handleExpression)
		api.POST("/questions/GroupsByPhyleticPattern/params", s.handleQuestionParams)
	}

	graph := r.Group("/cluster-graph/:groupName")
	{
		graph.GET("", s.handleClusterGraph)
		graph.GET("/sequences", s.handleSequences)
	}

	r.GET("/records/:recordClass/:id/sections/:attribute", s.handleRecordSection)
	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	taxa := s.current()
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"source": taxa.source.String(),
		"taxa":   taxa.phyletic.Len(),
	})
}

// handleTimings lists the sampled operation timings in milliseconds.
func (s *Server) handleTimings(c *gin.Context) {
	stats := metrics.AllTimingStats()
	if stats == nil {
		stats = []metrics.TimingStats{}
	}
	c.JSON(http.StatusOK, gin.H{"enabled": metrics.Enabled(), "timings": stats})
}

// TaxonNode is the annotated tree served to the checkbox tree.
type TaxonNode struct {
	Abbrev       string       `json:"abbrev"`
	Name         string       `json:"name"`
	Species      bool         `json:"species"`
	SpeciesCount int          `json:"speciesCount"`
	Children     []*TaxonNode `json:"children,omitempty"`
}

func annotate(t *phyletic.Tree, abbrev string) *TaxonNode {
	n, _ := t.Node(abbrev)
	out := &TaxonNode{
		Abbrev:       n.Abbrev,
		Name:         n.Name,
		Species:      n.Species,
		SpeciesCount: n.SpeciesCount,
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, annotate(t, c))
	}
	return out
}

func (s *Server) handleTaxons(c *gin.Context) {
	taxa := s.current()
	c.JSON(http.StatusOK, annotate(taxa.phyletic, taxa.phyletic.Root().Abbrev))
}

type toggleRequest struct {
	States phyletic.States `json:"states"`
	Node   string          `json:"node" binding:"required"`
}

type statesRequest struct {
	States phyletic.States `json:"states" binding:"required"`
}

func (s *Server) handleToggle(c *gin.Context) {
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, badRequest("%v", err))
		return
	}
	tree := s.current().phyletic
	if req.States == nil {
		req.States = phyletic.Initialize(tree)
	}
	next, err := phyletic.Toggle(tree, req.States, req.Node)
	if err != nil {
		abort(c, err)
		return
	}
	expr, err := phyletic.Synthesize(tree, next)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"states": next, "expression": expr})
}

func (s *Server) synthesize(c *gin.Context) (string, bool) {
	var req statesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, badRequest("%v", err))
		return "", false
	}
	expr, err := phyletic.Synthesize(s.current().phyletic, req.States)
	if err != nil {
		abort(c, err)
		return "", false
	}
	return expr, true
}

func (s *Server) handleExpression(c *gin.Context) {
	if expr, ok := s.synthesize(c); ok {
		c.JSON(http.StatusOK, gin.H{"expression": expr})
	}
}

func (s *Server) handleQuestionParams(c *gin.Context) {
	if expr, ok := s.synthesize(c); ok {
		c.JSON(http.StatusOK, gin.H{phyletic.ParamName: expr})
	}
}

func (s *Server) groupLayout(c *gin.Context) (*grouplayout.GroupLayout, error) {
	if s.client == nil {
		return nil, errNoClient
	}
	return s.client.GetGroupLayout(c.Request.Context(), c.Param("groupName"))
}

// settings reads the view filters from the query, falling back to the
// configured graph defaults.
func (s *Server) settings(c *gin.Context) (clustergraph.Settings, error) {
	set := clustergraph.Settings{
		Display:   c.DefaultQuery("display", s.graph.Display),
		EdgeTypes: c.DefaultQuery("edges", strings.Join(s.graph.EdgeTypes, ",")),
	}
	if raw := c.Query("evalue"); raw != "" {
		exp, err := strconv.Atoi(raw)
		if err != nil {
			return set, badRequest("evalue must be an integer exponent, got %q", raw)
		}
		set.EValueExp = &exp
	}
	return set, nil
}

func (s *Server) handleClusterGraph(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", s.graph.Format))
	if format == "" {
		format = "svg"
	}
	if format != "svg" && format != "png" {
		abort(c, badRequest("unsupported format %q (want svg or png)", format))
		return
	}
	set, err := s.settings(c)
	if err != nil {
		abort(c, err)
		return
	}

	layout, err := s.groupLayout(c)
	if err != nil {
		abort(c, err)
		return
	}
	g, err := clustergraph.Build(layout, s.meta())
	if err != nil {
		abort(c, err)
		return
	}
	view := clustergraph.NewView(g)
	if err := view.Apply(set); err != nil {
		abort(c, badRequest("%v", err))
		return
	}

	var buf bytes.Buffer
	if err := export.WriteClusterSnapshot(&buf, export.ClusterSnapshotOptions{Format: format, View: view}); err != nil {
		abort(c, err)
		return
	}
	c.Data(http.StatusOK, export.ContentType(format), buf.Bytes())
}

func (s *Server) handleSequences(c *gin.Context) {
	layout, err := s.groupLayout(c)
	if err != nil {
		abort(c, err)
		return
	}
	rows := clustergraph.FilterRows(clustergraph.SequenceRows(layout), c.Query("q"))
	if column := c.Query("sort"); column != "" {
		rows, err = clustergraph.SortRows(rows, column, clustergraph.SortDirection(c.Query("dir")))
		if err != nil {
			abort(c, badRequest("%v", err))
			return
		}
	}
	if rows == nil {
		rows = []clustergraph.SequenceRow{}
	}
	c.JSON(http.StatusOK, gin.H{
		"groupName": layout.Group.Name,
		"columns":   clustergraph.SequenceColumns,
		"rows":      rows,
	})
}

func (s *Server) handleRecordSection(c *gin.Context) {
	req := records.Request{
		RecordClass: c.Param("recordClass"),
		ID:          c.Param("id"),
		Attribute:   c.Param("attribute"),
	}
	if req.Attribute == records.LayoutAttribute && req.RecordClass == records.GroupRecordClass && s.client == nil {
		abort(c, errNoClient)
		return
	}
	sec, err := s.registry.Render(c.Request.Context(), req)
	if err != nil {
		abort(c, err)
		return
	}
	c.Data(http.StatusOK, sec.ContentType, sec.Body)
}
