package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agenthands/steward/internal/config"
	"github.com/agenthands/steward/internal/core/community"
	"github.com/agenthands/steward/internal/core/dedupe"
	"github.com/agenthands/steward/internal/core/extraction"
	"github.com/agenthands/steward/internal/core/summary"
	"github.com/agenthands/steward/internal/driver"
	"github.com/agenthands/steward/internal/llm"
	"github.com/agenthands/steward/internal/logger"
	"github.com/agenthands/steward/internal/transform"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrGraphDisabled    = errors.New("graph sync is not configured")
	ErrAdvisorDisabled  = errors.New("language model is not configured")
	ErrTransformMissing = errors.New("transform runner is not configured")
)

// ValidationError rejects steward input before anything reaches the
// warehouse.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type TransformRunner interface {
	Run(ctx context.Context) (*transform.Result, error)
}

// Steward composes the console's pages and writes on top of the warehouse
// gateway. Graph, Transform and the model-backed helpers are optional.
type Steward struct {
	Gateway    driver.Gateway
	Graph      driver.GraphDriver
	Advisor    *dedupe.Advisor
	Summarizer *summary.Summarizer
	Extractor  *extraction.Extractor
	Transform  TransformRunner
	Clusters   community.ClusterDetector

	Now   func() time.Time
	NewID func() string

	sql           *strings.Replacer
	auditPageSize int
	log           *logger.Logger
}

func NewSteward(gw driver.Gateway, cfg *config.Config, log *logger.Logger) *Steward {
	if log == nil {
		log = logger.Nop()
	}
	pageSize := cfg.Review.AuditPageSize
	if pageSize <= 0 {
		pageSize = 25
	}
	return &Steward{
		Gateway:       gw,
		Clusters:      community.NewSimpleDetector(),
		Now:           func() time.Time { return time.Now().UTC() },
		NewID:         func() string { return uuid.New().String() },
		sql:           tableReplacer(cfg.Warehouse.Tables),
		auditPageSize: pageSize,
		log:           log.With("component", "steward"),
	}
}

// WithLLM enables the model-backed helpers: candidate assessments, golden
// record summaries and relationship suggestions.
func (s *Steward) WithLLM(llmClient llm.LLMClient) *Steward {
	if llmClient != nil {
		s.Advisor = dedupe.NewAdvisor(llmClient)
		s.Summarizer = summary.NewSummarizer(llmClient)
		s.Extractor = extraction.NewExtractor(llmClient)
	}
	return s
}

func (s *Steward) q(query string) string {
	return s.sql.Replace(query)
}

func (s *Steward) read(ctx context.Context, query string, args ...interface{}) ([]driver.Row, error) {
	return s.Gateway.ExecuteRead(ctx, s.q(query), args...)
}

func (s *Steward) count(ctx context.Context, query string, args ...interface{}) (int64, error) {
	rows, err := s.read(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Int("CNT"), nil
}

func (s *Steward) auditStatement(entityType, entityID, action, changedBy, details string) driver.Statement {
	var detailArg interface{}
	if details != "" {
		detailArg = details
	}
	return driver.Statement{
		SQL:  s.q(insertAuditQuery),
		Args: []interface{}{s.NewID(), entityType, entityID, action, changedBy, s.Now(), detailArg},
	}
}
