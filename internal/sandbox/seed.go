package sandbox

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agenthands/steward/internal/config"
	"github.com/agenthands/steward/internal/core/model"
	"github.com/agenthands/steward/internal/driver"
	"github.com/agenthands/steward/internal/logger"
)

type Stats struct {
	GoldenPayors int `json:"golden_payors"`
	SourceRows   int `json:"source_rows"`
	Candidates   int `json:"candidates"`
	AutoMatches  int `json:"auto_matches"`
	Edges        int `json:"edges"`
}

func (ds *Dataset) Stats() Stats {
	st := Stats{
		GoldenPayors: len(ds.Golden),
		SourceRows:   len(ds.Sources),
		Candidates:   len(ds.Candidates),
		Edges:        len(ds.Edges),
	}
	for _, c := range ds.Candidates {
		if c.FinalDecision == model.DecisionAuto {
			st.AutoMatches++
		}
	}
	return st
}

// Statements replaces the contents of every MDM table with the dataset.
// The schema is created first when missing.
func (ds *Dataset) Statements(t config.TablesConfig, now time.Time) []driver.Statement {
	var out []driver.Statement
	for _, ddl := range Schema(t) {
		out = append(out, driver.Statement{SQL: ddl})
	}
	for _, table := range []string{t.ChangeLog, t.Hierarchy, t.MatchCandidates, t.Xref, t.SourcePayors, t.GoldenPayors} {
		out = append(out, driver.Statement{SQL: "DELETE FROM " + table})
	}

	for _, g := range ds.Golden {
		out = append(out, insert(t.GoldenPayors,
			[]string{"MASTER_PAYOR_ID", "GOLDEN_PAYOR_NAME", "GOLDEN_TAX_ID", "GOLDEN_NPI", "GOLDEN_STATE_CODE", "GOLDEN_PAYOR_TYPE", "GOLDEN_STATUS"},
			g.MasterPayorID, g.Name, g.TaxID, g.NPI, g.StateCode, g.PayorType, g.Status))
	}
	for _, s := range ds.Sources {
		out = append(out, insert(t.SourcePayors,
			[]string{"RECORD_ID", "SOURCE_SYSTEM", "PAYOR_NAME", "TAX_ID", "NPI", "ADDRESS_LINE1", "CITY", "STATE_CODE", "ZIP_CODE", "PHONE", "PAYOR_TYPE", "STATUS"},
			s.RecordID, s.SourceSystem, s.PayorName, s.TaxID, s.NPI, s.AddressLine1, s.City, s.StateCode, s.ZipCode, s.Phone, s.PayorType, s.Status))
		out = append(out, insert(t.Xref,
			[]string{"SOURCE_RECORD_ID", "MASTER_PAYOR_ID"},
			s.RecordID, s.MasterPayorID))
	}
	for _, c := range ds.Candidates {
		out = append(out, insert(t.MatchCandidates,
			[]string{"CANDIDATE_ID", "SOURCE_A_ID", "SOURCE_B_ID", "SOURCE_A_SYSTEM", "SOURCE_B_SYSTEM",
				"NAME_SCORE", "TAX_ID_SCORE", "NPI_SCORE", "ADDRESS_SCORE", "PHONE_SCORE", "COMPOSITE_SCORE", "FINAL_DECISION"},
			c.CandidateID, c.SourceA.RecordID, c.SourceB.RecordID, c.SourceA.SourceSystem, c.SourceB.SourceSystem,
			c.Scores[model.NameScore], c.Scores[model.TaxIDScore], c.Scores[model.NPIScore], c.Scores[model.AddressScore],
			c.Scores[model.PhoneScore], c.Scores[model.CompositeScore], string(c.FinalDecision)))
	}
	for _, e := range ds.Edges {
		var by, at interface{}
		if e.Confirmed {
			by, at = "sandbox", now
		}
		out = append(out, insert(t.Hierarchy,
			[]string{"PARENT_PAYOR_ID", "CHILD_PAYOR_ID", "RELATIONSHIP_TYPE", "STEWARD_CONFIRMED", "CONFIRMED_BY", "CONFIRMED_AT"},
			e.ParentID, e.ChildID, e.RelationshipType, e.Confirmed, by, at))
	}

	details, _ := json.Marshal(ds.Stats())
	out = append(out, insert(t.ChangeLog,
		[]string{"LOG_ID", "ENTITY_TYPE", "ENTITY_ID", "ACTION", "CHANGED_BY", "CHANGED_AT", "CHANGE_DETAILS"},
		uuid.New().String(), "sandbox", "seed", "sandbox_seeded", "system", now, string(details)))
	return out
}

func insert(table string, columns []string, values ...interface{}) driver.Statement {
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	return driver.Statement{
		SQL:  fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(columns, ", "), marks),
		Args: values,
	}
}

// Seed generates a dataset and loads it through the gateway in one batch.
func Seed(ctx context.Context, gw driver.Gateway, tables config.TablesConfig, seed uint64, log *logger.Logger) (*Stats, error) {
	if log == nil {
		log = logger.Nop()
	}
	ds := Generate(seed)
	if err := gw.ExecuteWriteBatch(ctx, ds.Statements(tables, time.Now().UTC())); err != nil {
		return nil, fmt.Errorf("failed to seed sandbox: %w", err)
	}
	st := ds.Stats()
	log.Info("sandbox seeded", "seed", seed, "golden", st.GoldenPayors, "sources", st.SourceRows, "candidates", st.Candidates, "edges", st.Edges)
	return &st, nil
}
