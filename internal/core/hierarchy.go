package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/agenthands/steward/internal/core/hierarchy"
	"github.com/agenthands/steward/internal/core/model"
	"github.com/agenthands/steward/internal/driver"
)

type HierarchyView struct {
	Forest     []model.HierarchyNode `json:"forest"`
	Flat       []hierarchy.FlatNode  `json:"flat"`
	Unassigned []model.GoldenRecord  `json:"unassigned"`
	EdgeCount  int                   `json:"edge_count"`
	// Payors lists every golden record for the parent/child pickers.
	Payors []model.GoldenRecord `json:"payors"`
}

// Hierarchy builds the forest from a fresh edge snapshot. A cyclic snapshot
// fails with *hierarchy.TreeCycleError.
func (s *Steward) Hierarchy(ctx context.Context) (*HierarchyView, error) {
	var edgeRows, goldenRows []driver.Row

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		edgeRows, err = s.read(gctx, hierarchyEdgesQuery)
		return err
	})
	g.Go(func() (err error) {
		goldenRows, err = s.read(gctx, goldenListQuery)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load hierarchy: %w", err)
	}

	es := edges(edgeRows)
	forest, err := hierarchy.BuildForest(es)
	if err != nil {
		return nil, err
	}
	all := goldenRecords(goldenRows)

	return &HierarchyView{
		Forest:     forest,
		Flat:       hierarchy.Flatten(forest),
		Unassigned: hierarchy.Unassigned(all, es),
		EdgeCount:  len(es),
		Payors:     all,
	}, nil
}

type RelationshipInput struct {
	ParentID         string                 `json:"parent_id"`
	ChildID          string                 `json:"child_id"`
	RelationshipType model.RelationshipType `json:"relationship_type"`
	Steward          string                 `json:"-"`
}

// AddRelationship records a steward-confirmed parent/child link together with
// its audit entry.
func (s *Steward) AddRelationship(ctx context.Context, in RelationshipInput) error {
	in.ParentID = strings.TrimSpace(in.ParentID)
	in.ChildID = strings.TrimSpace(in.ChildID)
	switch {
	case in.ParentID == "":
		return &ValidationError{Field: "parent_id", Message: "is required"}
	case in.ChildID == "":
		return &ValidationError{Field: "child_id", Message: "is required"}
	case in.ParentID == in.ChildID:
		return &ValidationError{Field: "child_id", Message: "must differ from parent_id"}
	case !in.RelationshipType.Valid():
		return &ValidationError{Field: "relationship_type", Message: fmt.Sprintf("unknown type %q", in.RelationshipType)}
	}

	known, err := s.read(ctx, goldenIDsQuery, in.ParentID, in.ChildID)
	if err != nil {
		return fmt.Errorf("failed to check payors: %w", err)
	}
	found := make(map[string]bool, 2)
	for _, r := range known {
		found[r.String("MASTER_PAYOR_ID")] = true
	}
	for _, id := range []string{in.ParentID, in.ChildID} {
		if !found[id] {
			return &ValidationError{Field: "payor", Message: fmt.Sprintf("unknown golden record %s", id)}
		}
	}

	rows, err := s.read(ctx, rawEdgesQuery)
	if err != nil {
		return fmt.Errorf("failed to load hierarchy: %w", err)
	}
	existing := edges(rows)
	for _, e := range existing {
		if e.ParentID == in.ParentID && e.ChildID == in.ChildID {
			return &ValidationError{Message: "relationship already exists"}
		}
	}
	if path := hierarchy.CyclePath(existing, in.ParentID, in.ChildID); path != nil {
		return &hierarchy.TreeCycleError{Path: path}
	}

	details, err := json.Marshal(map[string]string{
		"parent_id":         in.ParentID,
		"child_id":          in.ChildID,
		"relationship_type": string(in.RelationshipType),
	})
	if err != nil {
		return fmt.Errorf("failed to encode audit details: %w", err)
	}

	err = s.Gateway.ExecuteWriteBatch(ctx, []driver.Statement{
		{
			SQL:  s.q(insertHierarchyQuery),
			Args: []interface{}{in.ParentID, in.ChildID, string(in.RelationshipType), true, in.Steward, s.Now()},
		},
		s.auditStatement("payor_hierarchy", in.ChildID, "relationship_added", in.Steward, string(details)),
	})
	if err != nil {
		return fmt.Errorf("failed to add relationship: %w", err)
	}
	s.log.Info("relationship added", "parent", in.ParentID, "child", in.ChildID, "type", in.RelationshipType, "steward", in.Steward)
	return nil
}
