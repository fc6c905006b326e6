package extraction

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/steward/internal/core/model"
)

var payors = []model.GoldenRecord{
	{MasterPayorID: "MP-1", Name: "Aetna Inc.", TaxID: "060876543", StateCode: "CT"},
	{MasterPayorID: "MP-2", Name: "Aetna Better Health", TaxID: "060876543", StateCode: "IL"},
	{MasterPayorID: "MP-3", Name: "Aetna Medicare", TaxID: "060876543", StateCode: "CT"},
}

func TestExtractRelationships(t *testing.T) {
	mockJSON := `Here you go:
	{
		"relationships": [
			{"parent_id": "MP-1", "child_id": "MP-2", "relationship_type": "Subsidiary", "reasoning": " shared tax id "},
			{"parent_id": "MP-1", "child_id": "MP-2", "relationship_type": "brand"},
			{"parent_id": "MP-1", "child_id": "MP-9", "relationship_type": "division"},
			{"parent_id": "MP-3", "child_id": "MP-3", "relationship_type": "division"},
			{"parent_id": "MP-1", "child_id": "MP-3", "relationship_type": "sister"}
		]
	}`

	mockLLM := &MockLLMClient{Response: mockJSON}
	extractor := NewExtractor(mockLLM)

	existing := []model.HierarchyEdge{{ParentID: "MP-1", ChildID: "MP-3", RelationshipType: model.Division}}
	got, err := extractor.ExtractRelationships(context.Background(), payors, existing)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "MP-1", got[0].ParentID)
	assert.Equal(t, "MP-2", got[0].ChildID)
	assert.Equal(t, model.Subsidiary, got[0].RelationshipType)
	assert.Equal(t, "shared tax id", got[0].Reasoning)

	assert.Contains(t, mockLLM.Prompt, "ID: MP-2, Name: Aetna Better Health")
	assert.Contains(t, mockLLM.Prompt, "MP-1 -> MP-3 (division)")
}

func TestExtractRelationships_TooFewPayors(t *testing.T) {
	mockLLM := &MockLLMClient{Err: errors.New("should not be called")}
	got, err := NewExtractor(mockLLM).ExtractRelationships(context.Background(), payors[:1], nil)

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, mockLLM.Prompt)
}

func TestExtractRelationships_Errors(t *testing.T) {
	_, err := NewExtractor(&MockLLMClient{Err: errors.New("rate limited")}).
		ExtractRelationships(context.Background(), payors, nil)
	assert.ErrorContains(t, err, "rate limited")

	_, err = NewExtractor(&MockLLMClient{Response: "no json here"}).
		ExtractRelationships(context.Background(), payors, nil)
	assert.ErrorContains(t, err, "failed to extract relationships")
}
