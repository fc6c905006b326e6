package server

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agenthands/steward/internal/core/compare"
	"github.com/agenthands/steward/internal/core/model"
	"github.com/agenthands/steward/internal/core/review"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageFuncs = template.FuncMap{
	"pct":    func(f float64) string { return fmt.Sprintf("%.1f%%", f) },
	"ratio":  func(f float64) string { return fmt.Sprintf("%.1f%%", f*100) },
	"score":  func(f float64) string { return fmt.Sprintf("%.2f", f) },
	"band":   compare.ScoreBand,
	"indent": func(depth int) int { return depth * 24 },
	"confirmed": func(b *bool) string {
		switch {
		case b == nil:
			return ""
		case *b:
			return "yes"
		default:
			return "no"
		}
	},
	"when": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format("2006-01-02 15:04")
	},
	"width": func(count, top int64) int64 {
		if top <= 0 {
			return 0
		}
		return count * 100 / top
	},
}

func parsePages() (*template.Template, error) {
	t, err := template.New("pages").Funcs(pageFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}
	return t, nil
}

type page struct {
	Title   string
	Active  string
	Steward string
	Status  Status
	Data    interface{}
}

func (s *Server) render(c *gin.Context, name, title string, data interface{}) {
	c.HTML(http.StatusOK, name, page{
		Title:   title,
		Active:  c.FullPath(),
		Steward: s.stewardName(c),
		Status:  s.Status.Status(),
		Data:    data,
	})
}

func (s *Server) renderError(c *gin.Context, title string, err error) {
	status, retry := classify(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("page failed", "path", c.FullPath(), "status", status, "error", err)
	}
	c.HTML(status, "error", page{
		Title:   title,
		Active:  c.FullPath(),
		Steward: s.stewardName(c),
		Status:  s.Status.Status(),
		Data:    ErrorResponse{Error: err.Error(), Retry: retry},
	})
}

func (s *Server) DashboardPage(c *gin.Context) {
	d, err := s.Steward.Dashboard(c.Request.Context())
	if err != nil {
		s.renderError(c, "Dashboard", err)
		return
	}
	var maxBucket int64
	for _, b := range d.ScoreHistogram {
		maxBucket = max(maxBucket, b.Count)
	}
	s.render(c, "dashboard", "Dashboard", gin.H{"Summary": d, "MaxBucket": maxBucket})
}

// ReviewPage loads the queue on a tab's first visit. Later visits show the
// session as it stands so skips survive the page refresh; the steward reloads
// explicitly. A load already in flight is left alone.
func (s *Server) ReviewPage(c *gin.Context) {
	sess := s.session(c)
	if sess.Snapshot().State != review.Loading {
		s.render(c, "review", "Match Review", sess.Snapshot())
		return
	}
	if err := sess.Load(c.Request.Context()); err != nil && !errors.Is(err, review.ErrBusy) {
		s.log.Warn("review queue load failed", "session_id", sessionID(c), "error", err)
	}
	s.render(c, "review", "Match Review", sess.Snapshot())
}

func (s *Server) GoldenPage(c *gin.Context) {
	search := c.Query("search")
	records, err := s.Steward.GoldenRecords(c.Request.Context(), search)
	if err != nil {
		s.renderError(c, "Golden Records", err)
		return
	}
	s.render(c, "golden", "Golden Records", gin.H{"Records": records, "Search": search})
}

func (s *Server) GoldenDetailPage(c *gin.Context) {
	d, err := s.Steward.GoldenDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.renderError(c, "Golden Record", err)
		return
	}
	s.render(c, "golden_detail", d.Record.Name, d)
}

func (s *Server) HierarchyPage(c *gin.Context) {
	v, err := s.Steward.Hierarchy(c.Request.Context())
	if err != nil {
		s.renderError(c, "Hierarchy", err)
		return
	}
	s.render(c, "hierarchy", "Hierarchy", gin.H{"View": v, "Types": model.RelationshipTypes})
}

func (s *Server) AuditPage(c *gin.Context) {
	p, views, err := s.auditPage(c)
	if err != nil {
		s.renderError(c, "Audit Trail", err)
		return
	}
	s.render(c, "audit", "Audit Trail", gin.H{
		"Page":       p,
		"Entries":    views,
		"EntityType": c.Query("entity_type"),
		"Action":     c.Query("action"),
		"Prev":       p.Page - 1,
		"Next":       p.Page + 1,
	})
}

func (s *Server) QualityPage(c *gin.Context) {
	dq, err := s.Steward.DataQuality(c.Request.Context())
	if err != nil {
		s.renderError(c, "Data Quality", err)
		return
	}
	s.render(c, "quality", "Data Quality", dq)
}
