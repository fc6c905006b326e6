package summary

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/steward/internal/core/model"
)

func detailWithSources(n int) *model.GoldenDetail {
	d := &model.GoldenDetail{
		Record: model.GoldenRecord{MasterPayorID: "MP-1", Name: "Aetna Inc.", TaxID: "060876543"},
		Hierarchy: []model.HierarchyEdge{
			{ParentID: "MP-1", ChildID: "MP-2", RelationshipType: model.Subsidiary, ParentName: "Aetna Inc.", ChildName: "Aetna Better Health"},
		},
	}
	for i := 0; i < n; i++ {
		d.Sources = append(d.Sources, model.SourceRecord{
			RecordID:     fmt.Sprintf("CRM-%03d", i),
			SourceSystem: "CRM",
			Fields:       map[string]string{"PAYOR_NAME": "AETNA", "PHONE": ""},
		})
	}
	return d
}

func TestSummarizePayor(t *testing.T) {
	mockLLM := &MockLLMClient{Response: `{"summary": " All sources agree on the name. "}`}
	summarizer := NewSummarizer(mockLLM)

	got, err := summarizer.SummarizePayor(context.Background(), detailWithSources(2))

	require.NoError(t, err)
	assert.Equal(t, "All sources agree on the name.", got)
	require.Len(t, mockLLM.Prompts, 1)
	assert.Contains(t, mockLLM.Prompts[0], "[CRM CRM-001] PAYOR_NAME=AETNA")
	assert.NotContains(t, mockLLM.Prompts[0], "PHONE=")
	assert.Contains(t, mockLLM.Prompts[0], "Aetna Better Health is subsidiary of Aetna Inc.")
	assert.Contains(t, mockLLM.Prompts[0], "NPI none")
}

func TestSummarizePayor_NoSources(t *testing.T) {
	mockLLM := &MockLLMClient{Err: errors.New("unused")}
	got, err := NewSummarizer(mockLLM).SummarizePayor(context.Background(), detailWithSources(0))

	require.NoError(t, err)
	assert.Equal(t, "No source records.", got)
	assert.Empty(t, mockLLM.Prompts)
}

func TestSummarizePayor_ChunksLargePayors(t *testing.T) {
	mockLLM := &MockLLMClient{Responses: []string{
		`{"summary": "first half"}`,
		`{"summary": "second half"}`,
		`{"summary": "combined"}`,
	}}

	got, err := NewSummarizer(mockLLM).SummarizePayor(context.Background(), detailWithSources(ChunkSize+5))

	require.NoError(t, err)
	assert.Equal(t, "combined", got)
	require.Len(t, mockLLM.Prompts, 3)
	assert.Contains(t, mockLLM.Prompts[2], "- first half")
	assert.Contains(t, mockLLM.Prompts[2], "- second half")
}

func TestSummarizePayor_PlainTextAnswer(t *testing.T) {
	mockLLM := &MockLLMClient{Response: "Sources agree."}
	got, err := NewSummarizer(mockLLM).SummarizePayor(context.Background(), detailWithSources(1))

	require.NoError(t, err)
	assert.Equal(t, "Sources agree.", got)
}

func TestSummarizePayor_Error(t *testing.T) {
	mockLLM := &MockLLMClient{Err: errors.New("timeout")}
	_, err := NewSummarizer(mockLLM).SummarizePayor(context.Background(), detailWithSources(1))
	assert.ErrorContains(t, err, "timeout")
}
