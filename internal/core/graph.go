package core

import (
	"context"
	"fmt"

	"github.com/agenthands/steward/internal/driver"
)

type GraphSyncResult struct {
	Payors int `json:"payors"`
	Edges  int `json:"edges"`
}

// SyncHierarchyGraph mirrors golden payors and their hierarchy into the
// graph store. Nodes and relationships not touched by this sync are pruned.
func (s *Steward) SyncHierarchyGraph(ctx context.Context) (*GraphSyncResult, error) {
	if s.Graph == nil {
		return nil, ErrGraphDisabled
	}

	goldenRows, err := s.read(ctx, goldenListQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to load golden records: %w", err)
	}
	edgeRows, err := s.read(ctx, hierarchyEdgesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to load hierarchy: %w", err)
	}

	syncedAt := s.Now().Format("2006-01-02T15:04:05.000000000Z07:00")

	payors := make([]map[string]interface{}, 0, len(goldenRows))
	for _, g := range goldenRecords(goldenRows) {
		payors = append(payors, map[string]interface{}{
			"id":         g.MasterPayorID,
			"name":       g.Name,
			"state_code": g.StateCode,
			"status":     g.Status,
		})
	}
	links := make([]map[string]interface{}, 0, len(edgeRows))
	for _, e := range edges(edgeRows) {
		links = append(links, map[string]interface{}{
			"parent_id":         e.ParentID,
			"child_id":          e.ChildID,
			"relationship_type": string(e.RelationshipType),
			"confirmed":         e.Confirmed,
		})
	}

	steps := []struct {
		name   string
		query  string
		params map[string]interface{}
	}{
		{"merge payors", driver.MergePayorsQuery, map[string]interface{}{"payors": payors, "synced_at": syncedAt}},
		{"merge hierarchy", driver.MergeHierarchyQuery, map[string]interface{}{"edges": links, "synced_at": syncedAt}},
		{"prune hierarchy", driver.PruneHierarchyQuery, map[string]interface{}{"synced_at": syncedAt}},
		{"prune payors", driver.PrunePayorsQuery, map[string]interface{}{"synced_at": syncedAt}},
	}
	for _, step := range steps {
		if _, err := s.Graph.ExecuteQuery(ctx, step.query, step.params); err != nil {
			return nil, fmt.Errorf("failed to %s: %w", step.name, err)
		}
	}

	s.log.Info("hierarchy graph synced", "payors", len(payors), "edges", len(links))
	return &GraphSyncResult{Payors: len(payors), Edges: len(links)}, nil
}
