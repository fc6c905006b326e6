package extraction

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenthands/steward/internal/core/common"
	"github.com/agenthands/steward/internal/core/model"
	"github.com/agenthands/steward/internal/llm"
)

// Extractor proposes parent/child links between golden payors from their
// names and attributes.
type Extractor struct {
	LLM llm.LLMClient
}

func NewExtractor(llmClient llm.LLMClient) *Extractor {
	return &Extractor{
		LLM: llmClient,
	}
}

type extractedLinks struct {
	Relationships []struct {
		ParentID         string `json:"parent_id"`
		ChildID          string `json:"child_id"`
		RelationshipType string `json:"relationship_type"`
		Reasoning        string `json:"reasoning"`
	} `json:"relationships"`
}

// ExtractRelationships asks for links among payors. Only candidates that
// name two distinct known payors and a valid relationship type are returned;
// the caller still checks for duplicates and cycles.
func (e *Extractor) ExtractRelationships(ctx context.Context, payors []model.GoldenRecord, existing []model.HierarchyEdge) ([]model.RelationshipSuggestion, error) {
	if len(payors) < 2 {
		return []model.RelationshipSuggestion{}, nil
	}

	var payorContext strings.Builder
	known := make(map[string]bool, len(payors))
	for _, p := range payors {
		known[p.MasterPayorID] = true
		fmt.Fprintf(&payorContext, "- ID: %s, Name: %s, Tax ID: %s, State: %s, Type: %s\n",
			p.MasterPayorID, p.Name, p.TaxID, p.StateCode, p.PayorType)
	}
	var edgeContext strings.Builder
	for _, ed := range existing {
		fmt.Fprintf(&edgeContext, "- %s -> %s (%s)\n", ed.ParentID, ed.ChildID, ed.RelationshipType)
	}

	types := make([]string, 0, len(model.RelationshipTypes))
	for _, t := range model.RelationshipTypes {
		types = append(types, string(t))
	}

	prompt := fmt.Sprintf(`
<PAYORS>
%s
</PAYORS>

<EXISTING RELATIONSHIPS>
%s
</EXISTING RELATIONSHIPS>

Instructions:
Identify corporate parent/child relationships between the PAYORS above that are not already listed.
Payors sharing a tax id are usually one corporate family; the parent is the broader organization.
Only use IDs from the PAYORS list. Allowed relationship types: %s.
Return a JSON object with a "relationships" list. Each item has "parent_id", "child_id", "relationship_type" and "reasoning".

Example JSON:
{"relationships": [{"parent_id": "MP-0001", "child_id": "MP-0002", "relationship_type": "subsidiary", "reasoning": "Shared tax id; the child is a Medicaid plan of the parent."}]}
`, payorContext.String(), edgeContext.String(), strings.Join(types, ", "))

	response, err := e.LLM.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate relationships: %w", err)
	}

	result, err := common.ParseJSON[extractedLinks](response)
	if err != nil {
		return nil, fmt.Errorf("failed to extract relationships: %w", err)
	}

	out := make([]model.RelationshipSuggestion, 0, len(result.Relationships))
	seen := make(map[[2]string]bool)
	for _, r := range result.Relationships {
		rt := model.RelationshipType(strings.ToLower(strings.TrimSpace(r.RelationshipType)))
		key := [2]string{r.ParentID, r.ChildID}
		if !known[r.ParentID] || !known[r.ChildID] || r.ParentID == r.ChildID || !rt.Valid() || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, model.RelationshipSuggestion{
			ParentID:         r.ParentID,
			ChildID:          r.ChildID,
			RelationshipType: rt,
			Reasoning:        strings.TrimSpace(r.Reasoning),
		})
	}
	return out, nil
}
