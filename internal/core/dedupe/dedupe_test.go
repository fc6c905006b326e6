package dedupe

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/steward/internal/core/model"
)

func pair() (model.MatchCandidate, *model.SourceRecord, *model.SourceRecord) {
	c := model.MatchCandidate{
		CandidateID: "C-1",
		SourceAID:   "FAC-1",
		SourceBID:   "QNX-9",
		Scores:      map[model.ScoreField]float64{model.NameScore: 0.91, model.CompositeScore: 0.74},
	}
	a := &model.SourceRecord{RecordID: "FAC-1", SourceSystem: "FACETS", Fields: map[string]string{"PAYOR_NAME": "Aetna Inc", "TAX_ID": "061234567"}}
	b := &model.SourceRecord{RecordID: "QNX-9", SourceSystem: "QNXT", Fields: map[string]string{"PAYOR_NAME": "AETNA", "TAX_ID": "061234567"}}
	return c, a, b
}

func TestAssess(t *testing.T) {
	// Scenario: the model wraps its answer in prose and markdown
	mockLLM := &MockLLMClient{
		Response: "Here is my answer:\n```json\n{\"verdict\": \"Same\", \"confidence\": 0.93, \"reasoning\": \" Suffix only. \"}\n```",
	}

	advisor := NewAdvisor(mockLLM)
	c, a, b := pair()

	got, err := advisor.Assess(context.Background(), c, a, b)

	require.NoError(t, err)
	assert.Equal(t, "C-1", got.CandidateID)
	assert.Equal(t, model.VerdictSame, got.Verdict)
	assert.InDelta(t, 0.93, got.Confidence, 1e-9)
	assert.Equal(t, "Suffix only.", got.Reasoning)

	assert.Contains(t, mockLLM.Prompt, "PAYOR_NAME: Aetna Inc")
	assert.Contains(t, mockLLM.Prompt, "SOURCE_SYSTEM: QNXT")
	assert.Contains(t, mockLLM.Prompt, "COMPOSITE_SCORE: 0.74")
}

func TestAssess_UnknownVerdictAndRange(t *testing.T) {
	advisor := NewAdvisor(&MockLLMClient{Response: `{"verdict": "maybe", "confidence": 7}`})
	c, a, b := pair()

	got, err := advisor.Assess(context.Background(), c, a, b)

	require.NoError(t, err)
	assert.Equal(t, model.VerdictUnsure, got.Verdict)
	assert.Equal(t, 1.0, got.Confidence)
}

func TestAssess_Errors(t *testing.T) {
	c, a, b := pair()

	_, err := NewAdvisor(&MockLLMClient{Err: errors.New("rate limited")}).Assess(context.Background(), c, a, b)
	assert.ErrorContains(t, err, "rate limited")

	_, err = NewAdvisor(&MockLLMClient{Response: "I cannot tell."}).Assess(context.Background(), c, a, b)
	assert.ErrorContains(t, err, "failed to parse assessment")
}
