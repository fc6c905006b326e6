package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/agenthands/steward/internal/core"
	"github.com/agenthands/steward/internal/core/model"
	"github.com/agenthands/steward/internal/core/review"
)

func (s *Server) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.Status.Status())
}

func (s *Server) GetDashboard(c *gin.Context) {
	d, err := s.Steward.Dashboard(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *Server) RunTransform(c *gin.Context) {
	res, err := s.Steward.RunTransform(c.Request.Context(), s.stewardName(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"output":     res.Output,
		"elapsed_ms": res.Elapsed.Milliseconds(),
	})
}

func (s *Server) ListGolden(c *gin.Context) {
	records, err := s.Steward.GoldenRecords(c.Request.Context(), c.Query("search"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records, "count": len(records)})
}

func (s *Server) GetGolden(c *gin.Context) {
	d, err := s.Steward.GoldenDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *Server) SummarizeGolden(c *gin.Context) {
	sum, err := s.Steward.SummarizeGolden(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (s *Server) GetHierarchy(c *gin.Context) {
	v, err := s.Steward.Hierarchy(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (s *Server) AddRelationship(c *gin.Context) {
	var in core.RelationshipInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.respondError(c, &core.ValidationError{Message: "invalid request body"})
		return
	}
	in.Steward = s.stewardName(c)
	if err := s.Steward.AddRelationship(c.Request.Context(), in); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "created"})
}

func (s *Server) SuggestRelationships(c *gin.Context) {
	suggestions, err := s.Steward.SuggestRelationships(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

func (s *Server) SyncHierarchy(c *gin.Context) {
	res, err := s.Steward.SyncHierarchyGraph(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type auditEntryView struct {
	model.AuditLogEntry
	FormattedDetails string `json:"formatted_details"`
}

func (s *Server) auditPage(c *gin.Context) (*model.AuditPage, []auditEntryView, error) {
	page := 0
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, nil, &core.ValidationError{Field: "page", Message: "must be a number"}
		}
		page = n
	}
	filter := model.AuditFilter{EntityType: c.Query("entity_type"), Action: c.Query("action")}
	p, err := s.Steward.AuditTrail(c.Request.Context(), filter, page)
	if err != nil {
		return nil, nil, err
	}
	views := make([]auditEntryView, 0, len(p.Entries))
	for _, e := range p.Entries {
		views = append(views, auditEntryView{AuditLogEntry: e, FormattedDetails: core.FormatDetails(e.ChangeDetails)})
	}
	return p, views, nil
}

func (s *Server) GetAudit(c *gin.Context) {
	p, views, err := s.auditPage(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"entries":   views,
		"page":      p.Page,
		"page_size": p.PageSize,
		"has_more":  p.HasMore,
	})
}

func (s *Server) GetQuality(c *gin.Context) {
	dq, err := s.Steward.DataQuality(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dq)
}

func (s *Server) GetReview(c *gin.Context) {
	c.JSON(http.StatusOK, s.session(c).Snapshot())
}

func (s *Server) LoadReview(c *gin.Context) {
	sess := s.session(c)
	if err := sess.Load(c.Request.Context()); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

type decideRequest struct {
	CandidateID string         `json:"candidate_id"`
	Decision    model.Decision `json:"decision"`
	Notes       string         `json:"notes"`
}

func (s *Server) DecideReview(c *gin.Context) {
	var req decideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, &core.ValidationError{Message: "invalid request body"})
		return
	}
	req.CandidateID = strings.TrimSpace(req.CandidateID)
	switch {
	case req.CandidateID == "":
		s.respondError(c, &core.ValidationError{Field: "candidate_id", Message: "is required"})
		return
	case !req.Decision.Steward():
		s.respondError(c, &core.ValidationError{Field: "decision", Message: "must be match_confirmed or match_rejected"})
		return
	}

	sess := s.session(c)
	if err := sess.Decide(c.Request.Context(), req.CandidateID, req.Decision, req.Notes); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

func (s *Server) SkipReview(c *gin.Context) {
	sess := s.session(c)
	if err := sess.Skip(c.Request.Context()); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

type keyRequest struct {
	Key          string `json:"key"`
	InputFocused bool   `json:"input_focused"`
	Notes        string `json:"notes"`
}

type keyResponse struct {
	Handled  bool            `json:"handled"`
	Snapshot review.Snapshot `json:"snapshot"`
}

func (s *Server) ReviewKey(c *gin.Context) {
	var req keyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, &core.ValidationError{Message: "invalid request body"})
		return
	}
	sess := s.session(c)
	handled, err := sess.HandleKey(c.Request.Context(), req.Key, req.InputFocused, req.Notes)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, keyResponse{Handled: handled, Snapshot: sess.Snapshot()})
}

func (s *Server) AssessCandidate(c *gin.Context) {
	a, err := s.Steward.AssessCandidate(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}
