package review

import (
	"context"
	"errors"
	"sync"

	"github.com/agenthands/steward/internal/core/model"
)

type MockStore struct {
	mu         sync.Mutex
	Candidates []model.MatchCandidate
	Records    map[string]*model.SourceRecord
	LoadErr    error
	RecordErr  error
	DecideErr  error
	Decisions  []DecisionInput

	// Block, when set, holds RecordDecision until it is closed. Entered is
	// signalled once the call is waiting.
	Block   chan struct{}
	Entered chan struct{}
}

func (m *MockStore) PendingCandidates(ctx context.Context) ([]model.MatchCandidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	out := make([]model.MatchCandidate, len(m.Candidates))
	copy(out, m.Candidates)
	return out, nil
}

func (m *MockStore) SourceRecord(ctx context.Context, id string) (*model.SourceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RecordErr != nil {
		return nil, m.RecordErr
	}
	if r, ok := m.Records[id]; ok {
		return r, nil
	}
	return nil, errors.New("record not found")
}

func (m *MockStore) RecordDecision(ctx context.Context, in DecisionInput) error {
	if m.Block != nil {
		if m.Entered != nil {
			m.Entered <- struct{}{}
		}
		<-m.Block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DecideErr != nil {
		return m.DecideErr
	}
	m.Decisions = append(m.Decisions, in)
	return nil
}

func candidate(id string, composite float64) model.MatchCandidate {
	return model.MatchCandidate{
		CandidateID:   id,
		SourceAID:     id + "-a",
		SourceBID:     id + "-b",
		Scores:        map[model.ScoreField]float64{model.CompositeScore: composite, model.NameScore: composite},
		FinalDecision: model.DecisionReview,
	}
}

func newStore(candidates ...model.MatchCandidate) *MockStore {
	records := make(map[string]*model.SourceRecord)
	for _, c := range candidates {
		for _, id := range []string{c.SourceAID, c.SourceBID} {
			records[id] = &model.SourceRecord{RecordID: id, SourceSystem: "FACETS", Fields: map[string]string{"PAYOR_NAME": "Acme " + id}}
		}
	}
	return &MockStore{Candidates: candidates, Records: records}
}
