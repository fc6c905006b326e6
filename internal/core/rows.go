package core

import (
	"github.com/agenthands/steward/internal/core/compare"
	"github.com/agenthands/steward/internal/core/model"
	"github.com/agenthands/steward/internal/driver"
)

func goldenFromRow(r driver.Row) model.GoldenRecord {
	return model.GoldenRecord{
		MasterPayorID: r.String("MASTER_PAYOR_ID"),
		Name:          r.String("GOLDEN_PAYOR_NAME"),
		TaxID:         r.String("GOLDEN_TAX_ID"),
		NPI:           r.String("GOLDEN_NPI"),
		StateCode:     r.String("GOLDEN_STATE_CODE"),
		PayorType:     r.String("GOLDEN_PAYOR_TYPE"),
		Status:        r.String("GOLDEN_STATUS"),
		SourceCount:   int(r.Int("SOURCE_COUNT")),
	}
}

func sourceFromRow(r driver.Row) model.SourceRecord {
	rec := model.SourceRecord{
		RecordID:     r.String("RECORD_ID"),
		SourceSystem: r.String("SOURCE_SYSTEM"),
		Fields:       make(map[string]string, len(compare.DisplayFields)),
	}
	for _, f := range compare.DisplayFields {
		if v := r.String(f); v != "" {
			rec.Fields[f] = v
		}
	}
	return rec
}

func edgeFromRow(r driver.Row) model.HierarchyEdge {
	return model.HierarchyEdge{
		ParentID:         r.String("PARENT_PAYOR_ID"),
		ChildID:          r.String("CHILD_PAYOR_ID"),
		RelationshipType: model.RelationshipType(r.String("RELATIONSHIP_TYPE")),
		Confirmed:        r.Bool("STEWARD_CONFIRMED"),
		ParentName:       r.String("PARENT_NAME"),
		ChildName:        r.String("CHILD_NAME"),
	}
}

func auditFromRow(r driver.Row) model.AuditLogEntry {
	return model.AuditLogEntry{
		LogID:         r.String("LOG_ID"),
		EntityType:    r.String("ENTITY_TYPE"),
		EntityID:      r.String("ENTITY_ID"),
		Action:        r.String("ACTION"),
		ChangedBy:     r.String("CHANGED_BY"),
		ChangedAt:     r.Time("CHANGED_AT"),
		ChangeDetails: r.String("CHANGE_DETAILS"),
	}
}

func candidateFromRow(r driver.Row) model.MatchCandidate {
	c := model.MatchCandidate{
		CandidateID:   r.String("CANDIDATE_ID"),
		SourceAID:     r.String("SOURCE_A_ID"),
		SourceBID:     r.String("SOURCE_B_ID"),
		Scores:        make(map[model.ScoreField]float64, len(model.ScoreFields)),
		FinalDecision: model.Decision(r.String("FINAL_DECISION")),
		ReviewedBy:    r.NullableString("REVIEWED_BY"),
		ReviewedAt:    r.NullableTime("REVIEWED_AT"),
	}
	for _, f := range model.ScoreFields {
		if v := r.NullableFloat(string(f)); v != nil {
			c.Scores[f] = *v
		}
	}
	if d := r.NullableString("STEWARD_DECISION"); d != nil {
		decision := model.Decision(*d)
		c.StewardDecision = &decision
	}
	return c
}

func auditEntries(rows []driver.Row) []model.AuditLogEntry {
	out := make([]model.AuditLogEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, auditFromRow(r))
	}
	return out
}

func edges(rows []driver.Row) []model.HierarchyEdge {
	out := make([]model.HierarchyEdge, 0, len(rows))
	for _, r := range rows {
		out = append(out, edgeFromRow(r))
	}
	return out
}

func goldenRecords(rows []driver.Row) []model.GoldenRecord {
	out := make([]model.GoldenRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, goldenFromRow(r))
	}
	return out
}
