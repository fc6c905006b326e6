package core

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/agenthands/steward/internal/core/model"
	"github.com/agenthands/steward/internal/driver"
)

// Dashboard issues its eight reads concurrently. Any failure fails the whole
// summary.
func (s *Steward) Dashboard(ctx context.Context) (*model.DashboardSummary, error) {
	var (
		summary           model.DashboardSummary
		histRows, mixRows []driver.Row
		recentRows        []driver.Row
	)

	g, gctx := errgroup.WithContext(ctx)
	counts := []struct {
		dst   *int64
		query string
		args  []interface{}
	}{
		{&summary.KPIs.GoldenCount, countGoldenQuery, nil},
		{&summary.KPIs.SourceCount, countSourceQuery, nil},
		{&summary.KPIs.PendingReview, countPendingQuery, []interface{}{string(model.DecisionReview)}},
		{&summary.KPIs.HierarchyCount, countHierarchyQuery, nil},
		{&summary.KPIs.DuplicatePairs, countMatchedQuery, []interface{}{string(model.DecisionAuto), string(model.DecisionConfirm)}},
	}
	for _, c := range counts {
		g.Go(func() error {
			n, err := s.count(gctx, c.query, c.args...)
			if err != nil {
				return err
			}
			*c.dst = n
			return nil
		})
	}
	g.Go(func() (err error) {
		histRows, err = s.read(gctx, scoreHistogramQuery)
		return err
	})
	g.Go(func() (err error) {
		mixRows, err = s.read(gctx, sourceMixQuery)
		return err
	})
	g.Go(func() (err error) {
		recentRows, err = s.read(gctx, recentActivityQuery)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load dashboard: %w", err)
	}

	summary.ScoreHistogram = histogram(histRows)
	summary.SourceMix = make([]model.SourceCount, 0, len(mixRows))
	for _, r := range mixRows {
		summary.SourceMix = append(summary.SourceMix, model.SourceCount{
			SourceSystem: r.String("SOURCE_SYSTEM"),
			Count:        r.Int("CNT"),
		})
	}
	summary.RecentActivity = auditEntries(recentRows)
	return &summary, nil
}

// histogram always returns every bucket, filling the ones the warehouse
// omitted with zero.
func histogram(rows []driver.Row) []model.Bucket {
	buckets := make([]model.Bucket, histogramBuckets)
	for i := range buckets {
		buckets[i] = model.Bucket{
			Low:  float64(i) / histogramBuckets,
			High: float64(i+1) / histogramBuckets,
		}
	}
	for _, r := range rows {
		i := int(r.Int("BUCKET"))
		if i < 0 || i >= histogramBuckets {
			continue
		}
		buckets[i].Count += r.Int("CNT")
	}
	return buckets
}
