package dedupe

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenthands/steward/internal/core/common"
	"github.com/agenthands/steward/internal/core/compare"
	"github.com/agenthands/steward/internal/core/model"
	"github.com/agenthands/steward/internal/llm"
)

// Advisor asks a language model whether two source records describe the same
// payor. Its answer is shown to the steward and never persisted.
type Advisor struct {
	LLM llm.LLMClient
}

func NewAdvisor(llmClient llm.LLMClient) *Advisor {
	return &Advisor{
		LLM: llmClient,
	}
}

type assessmentResponse struct {
	Verdict    string  `json:"verdict"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

func (a *Advisor) Assess(ctx context.Context, c model.MatchCandidate, recA, recB *model.SourceRecord) (*model.Assessment, error) {
	prompt := fmt.Sprintf(`
<RECORD A>
%s
</RECORD A>

<RECORD B>
%s
</RECORD B>

<SCORES>
%s
</SCORES>

Instructions:
Decide whether RECORD A and RECORD B describe the same insurance payor organization.
Name suffixes (Inc, LLC, Corp), abbreviations and phone or zip formatting differences do not make records different.
A different tax id or NPI is strong evidence of different organizations.
Return a JSON object with "verdict" ("same", "different" or "unsure"), "confidence" (float between 0 and 1) and "reasoning" (one or two sentences).

Example JSON:
{"verdict": "same", "confidence": 0.85, "reasoning": "Names differ only by suffix and the tax ids agree."}
`, serializeRecord(recA), serializeRecord(recB), serializeScores(c))

	response, err := a.LLM.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate assessment: %w", err)
	}

	result, err := common.ParseJSON[assessmentResponse](response)
	if err != nil {
		return nil, fmt.Errorf("failed to parse assessment: %w", err)
	}

	return &model.Assessment{
		CandidateID: c.CandidateID,
		Verdict:     normalizeVerdict(result.Verdict),
		Confidence:  clamp(result.Confidence),
		Reasoning:   strings.TrimSpace(result.Reasoning),
	}, nil
}

func normalizeVerdict(v string) model.Verdict {
	switch model.Verdict(strings.ToLower(strings.TrimSpace(v))) {
	case model.VerdictSame:
		return model.VerdictSame
	case model.VerdictDifferent:
		return model.VerdictDifferent
	default:
		return model.VerdictUnsure
	}
}

func clamp(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func serializeRecord(r *model.SourceRecord) string {
	if r == nil {
		return "(missing)"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "- SOURCE_SYSTEM: %s\n", r.SourceSystem)
	for _, f := range compare.DisplayFields {
		if v := r.Field(f); v != nil {
			fmt.Fprintf(&sb, "- %s: %s\n", f, *v)
		}
	}
	return sb.String()
}

func serializeScores(c model.MatchCandidate) string {
	var sb strings.Builder
	for _, f := range model.ScoreFields {
		if v, ok := c.Scores[f]; ok {
			fmt.Fprintf(&sb, "- %s: %.2f\n", f, v)
		}
	}
	return sb.String()
}
