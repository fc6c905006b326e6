package core

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/agenthands/steward/internal/core/community"
	"github.com/agenthands/steward/internal/core/model"
	"github.com/agenthands/steward/internal/driver"
)

func (s *Steward) DataQuality(ctx context.Context) (*model.DataQuality, error) {
	var compRows, rateRows, pairRows []driver.Row

	accepted := []interface{}{string(model.DecisionAuto), string(model.DecisionConfirm)}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		compRows, err = s.read(gctx, completenessQuery)
		return err
	})
	g.Go(func() (err error) {
		rateRows, err = s.read(gctx, matchRateQuery, accepted...)
		return err
	})
	g.Go(func() (err error) {
		pairRows, err = s.read(gctx, decidedPairsQuery, append(accepted, string(model.DecisionReject))...)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load data quality: %w", err)
	}

	dq := &model.DataQuality{
		Completeness: make([]model.Completeness, 0, len(compRows)),
		MatchRates:   make([]model.MatchRate, 0, len(rateRows)),
	}
	for _, r := range compRows {
		dq.Completeness = append(dq.Completeness, model.Completeness{
			SourceSystem: r.String("SOURCE_SYSTEM"),
			Total:        r.Int("TOTAL"),
			NamePct:      r.Float("NAME_PCT"),
			TaxIDPct:     r.Float("TAX_PCT"),
			NPIPct:       r.Float("NPI_PCT"),
			AddressPct:   r.Float("ADDR_PCT"),
			PhonePct:     r.Float("PHONE_PCT"),
		})
	}
	for _, r := range rateRows {
		mr := model.MatchRate{
			SourceASystem: r.String("SOURCE_A_SYSTEM"),
			SourceBSystem: r.String("SOURCE_B_SYSTEM"),
			Pairs:         r.Int("PAIRS"),
			Matches:       r.Int("MATCHES"),
		}
		if mr.Pairs > 0 {
			mr.Rate = float64(mr.Matches) / float64(mr.Pairs)
		}
		dq.MatchRates = append(dq.MatchRates, mr)
	}

	pairs := make([]community.Pair, 0, len(pairRows))
	for _, r := range pairRows {
		pairs = append(pairs, community.Pair{
			SourceAID: r.String("SOURCE_A_ID"),
			SourceBID: r.String("SOURCE_B_ID"),
			Decision:  model.Decision(r.String("FINAL_DECISION")),
		})
	}
	clusters, err := s.Clusters.Detect(pairs)
	if err != nil {
		return nil, fmt.Errorf("failed to detect match clusters: %w", err)
	}
	dq.Clusters = clusters
	return dq, nil
}
