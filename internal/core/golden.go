package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/sync/errgroup"

	"github.com/agenthands/steward/internal/core/model"
	"github.com/agenthands/steward/internal/driver"
)

// GoldenRecords lists golden payors by name. A non-empty search keeps
// records whose name fuzzily contains it, ignoring case and accents, or whose
// id, tax id, NPI or state contains it.
func (s *Steward) GoldenRecords(ctx context.Context, search string) ([]model.GoldenRecord, error) {
	rows, err := s.read(ctx, goldenListQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list golden records: %w", err)
	}
	all := goldenRecords(rows)

	search = strings.TrimSpace(search)
	if search == "" {
		return all, nil
	}
	out := make([]model.GoldenRecord, 0)
	for _, r := range all {
		if matchesGolden(r, search) {
			out = append(out, r)
		}
	}
	return out, nil
}

// matchesGolden filters across the whole row: the name fuzzily, the
// identifiers and state by substring. Tax ids compare without dashes.
func matchesGolden(r model.GoldenRecord, search string) bool {
	if fuzzy.MatchNormalizedFold(search, r.Name) {
		return true
	}
	q := strings.ToLower(search)
	for _, v := range []string{r.MasterPayorID, r.NPI, r.StateCode} {
		if v != "" && strings.Contains(strings.ToLower(v), q) {
			return true
		}
	}
	if tax := strings.ReplaceAll(q, "-", ""); tax != "" && r.TaxID != "" {
		return strings.Contains(strings.ReplaceAll(r.TaxID, "-", ""), tax)
	}
	return false
}

// GoldenDetail loads one golden record with its contributing source records
// and hierarchy links.
func (s *Steward) GoldenDetail(ctx context.Context, id string) (*model.GoldenDetail, error) {
	var recRows, srcRows, edgeRows []driver.Row

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		recRows, err = s.read(gctx, goldenByIDQuery, id)
		return err
	})
	g.Go(func() (err error) {
		srcRows, err = s.read(gctx, goldenSourcesQuery, id)
		return err
	})
	g.Go(func() (err error) {
		edgeRows, err = s.read(gctx, goldenHierarchyQuery, id, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load golden record %s: %w", id, err)
	}
	if len(recRows) == 0 {
		return nil, fmt.Errorf("golden record %s: %w", id, ErrNotFound)
	}

	detail := &model.GoldenDetail{
		Record:    goldenFromRow(recRows[0]),
		Sources:   make([]model.SourceRecord, 0, len(srcRows)),
		Hierarchy: edges(edgeRows),
	}
	for _, r := range srcRows {
		detail.Sources = append(detail.Sources, sourceFromRow(r))
	}
	return detail, nil
}
