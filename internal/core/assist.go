package core

import (
	"context"
	"fmt"

	"github.com/agenthands/steward/internal/core/hierarchy"
	"github.com/agenthands/steward/internal/core/model"
)

// SummarizeGolden describes where a golden record's sources agree and
// disagree.
func (s *Steward) SummarizeGolden(ctx context.Context, id string) (*model.PayorSummary, error) {
	if s.Summarizer == nil {
		return nil, ErrAdvisorDisabled
	}
	detail, err := s.GoldenDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	text, err := s.Summarizer.SummarizePayor(ctx, detail)
	if err != nil {
		return nil, err
	}
	return &model.PayorSummary{MasterPayorID: detail.Record.MasterPayorID, Summary: text}, nil
}

// SuggestRelationships proposes hierarchy links a steward may confirm.
// Suggestions that duplicate an existing link or would close a loop are
// dropped.
func (s *Steward) SuggestRelationships(ctx context.Context) ([]model.RelationshipSuggestion, error) {
	if s.Extractor == nil {
		return nil, ErrAdvisorDisabled
	}
	goldenRows, err := s.read(ctx, goldenListQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to load golden records: %w", err)
	}
	edgeRows, err := s.read(ctx, rawEdgesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to load hierarchy: %w", err)
	}
	existing := edges(edgeRows)

	proposed, err := s.Extractor.ExtractRelationships(ctx, goldenRecords(goldenRows), existing)
	if err != nil {
		return nil, err
	}

	linked := make(map[[2]string]bool, len(existing))
	for _, e := range existing {
		linked[[2]string{e.ParentID, e.ChildID}] = true
	}
	out := make([]model.RelationshipSuggestion, 0, len(proposed))
	accepted := existing
	for _, p := range proposed {
		if linked[[2]string{p.ParentID, p.ChildID}] || hierarchy.WouldCycle(accepted, p.ParentID, p.ChildID) {
			continue
		}
		// later suggestions are checked against earlier ones too
		accepted = append(accepted, model.HierarchyEdge{ParentID: p.ParentID, ChildID: p.ChildID, RelationshipType: p.RelationshipType})
		linked[[2]string{p.ParentID, p.ChildID}] = true
		out = append(out, p)
	}
	return out, nil
}
