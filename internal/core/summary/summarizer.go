package summary

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenthands/steward/internal/core/common"
	"github.com/agenthands/steward/internal/core/compare"
	"github.com/agenthands/steward/internal/core/model"
	"github.com/agenthands/steward/internal/llm"
)

// ChunkSize bounds how many source records go into one prompt. Larger
// payors are summarized chunk by chunk and the partial summaries reduced.
const ChunkSize = 20

type Summarizer struct {
	LLM llm.LLMClient
}

func NewSummarizer(llmClient llm.LLMClient) *Summarizer {
	return &Summarizer{
		LLM: llmClient,
	}
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

// SummarizePayor writes a short steward-facing description of a golden
// record: what the source systems agree on and where they disagree.
func (s *Summarizer) SummarizePayor(ctx context.Context, detail *model.GoldenDetail) (string, error) {
	lines := make([]string, 0, len(detail.Sources))
	for _, src := range detail.Sources {
		lines = append(lines, describeSource(src))
	}
	if len(lines) == 0 {
		return "No source records.", nil
	}

	var header strings.Builder
	r := detail.Record
	fmt.Fprintf(&header, "Golden record %s: %s (tax id %s, NPI %s, state %s, type %s)\n",
		r.MasterPayorID, r.Name, orNone(r.TaxID), orNone(r.NPI), orNone(r.StateCode), orNone(r.PayorType))
	for _, e := range detail.Hierarchy {
		fmt.Fprintf(&header, "- %s is %s of %s\n", e.ChildName, e.RelationshipType, e.ParentName)
	}

	return s.reduce(ctx, header.String(), lines)
}

func (s *Summarizer) reduce(ctx context.Context, header string, lines []string) (string, error) {
	if len(lines) <= ChunkSize {
		return s.summarize(ctx, header, lines)
	}

	var partials []string
	for i := 0; i < len(lines); i += ChunkSize {
		end := min(i+ChunkSize, len(lines))
		part, err := s.summarize(ctx, header, lines[i:end])
		if err != nil {
			return "", err
		}
		partials = append(partials, "- "+part)
	}
	return s.reduce(ctx, header, partials)
}

func (s *Summarizer) summarize(ctx context.Context, header string, lines []string) (string, error) {
	prompt := fmt.Sprintf(`
<GOLDEN RECORD>
%s
</GOLDEN RECORD>

<SOURCE RECORDS>
%s
</SOURCE RECORDS>

Instructions:
Summarize for a data steward, in at most three sentences, what the SOURCE RECORDS say about this payor.
Point out attributes where sources disagree with each other or with the golden record.
Return a JSON object with a single "summary" field.

Example JSON:
{"summary": "Three systems agree on name and tax id. CLAIMS carries an older phone number."}
`, header, strings.Join(lines, "\n"))

	response, err := s.LLM.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate summary: %w", err)
	}

	result, err := common.ParseJSON[summaryResponse](response)
	if err != nil {
		// a bare sentence is still a usable summary
		if text := strings.TrimSpace(response); text != "" && !strings.Contains(text, "{") {
			return text, nil
		}
		return "", fmt.Errorf("failed to parse summary result: %w", err)
	}
	return strings.TrimSpace(result.Summary), nil
}

func describeSource(src model.SourceRecord) string {
	parts := make([]string, 0, len(compare.DisplayFields))
	for _, f := range compare.DisplayFields {
		if v := src.Field(f); v != nil {
			parts = append(parts, fmt.Sprintf("%s=%s", f, *v))
		}
	}
	return fmt.Sprintf("- [%s %s] %s", src.SourceSystem, src.RecordID, strings.Join(parts, ", "))
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
