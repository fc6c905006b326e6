package core

import (
	"context"
	"fmt"

	"github.com/agenthands/steward/internal/core/model"
	"github.com/agenthands/steward/internal/core/review"
	"github.com/agenthands/steward/internal/driver"
	"github.com/agenthands/steward/internal/metrics"
)

var _ review.Store = (*Steward)(nil)

func (s *Steward) PendingCandidates(ctx context.Context) ([]model.MatchCandidate, error) {
	rows, err := s.read(ctx, pendingCandidatesQuery, string(model.DecisionReview))
	if err != nil {
		return nil, err
	}
	out := make([]model.MatchCandidate, 0, len(rows))
	for _, r := range rows {
		out = append(out, candidateFromRow(r))
	}
	return out, nil
}

func (s *Steward) SourceRecord(ctx context.Context, recordID string) (*model.SourceRecord, error) {
	rows, err := s.read(ctx, sourceByIDQuery, recordID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("source record %s: %w", recordID, ErrNotFound)
	}
	rec := sourceFromRow(rows[0])
	return &rec, nil
}

func (s *Steward) candidate(ctx context.Context, candidateID string) (*model.MatchCandidate, error) {
	rows, err := s.read(ctx, candidateByIDQuery, candidateID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("match candidate %s: %w", candidateID, ErrNotFound)
	}
	c := candidateFromRow(rows[0])
	return &c, nil
}

// RecordDecision updates the candidate and appends its audit entry in one
// batch.
func (s *Steward) RecordDecision(ctx context.Context, in review.DecisionInput) error {
	decision := string(in.Decision)
	err := s.Gateway.ExecuteWriteBatch(ctx, []driver.Statement{
		{
			SQL:  s.q(updateDecisionQuery),
			Args: []interface{}{decision, decision, in.Steward, s.Now(), in.Candidate.CandidateID},
		},
		s.auditStatement("match_candidate", in.Candidate.CandidateID, decision, in.Steward, in.Notes),
	})
	metrics.ObserveDecision(decision, err)
	if err != nil {
		return err
	}
	s.log.Info("match decision recorded", "candidate", in.Candidate.CandidateID, "decision", decision, "steward", in.Steward)
	return nil
}

// AssessCandidate asks the configured language model for a second opinion.
// Nothing is written.
func (s *Steward) AssessCandidate(ctx context.Context, candidateID string) (*model.Assessment, error) {
	if s.Advisor == nil {
		return nil, ErrAdvisorDisabled
	}
	c, err := s.candidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	a, err := s.SourceRecord(ctx, c.SourceAID)
	if err != nil {
		return nil, err
	}
	b, err := s.SourceRecord(ctx, c.SourceBID)
	if err != nil {
		return nil, err
	}
	return s.Advisor.Assess(ctx, *c, a, b)
}
