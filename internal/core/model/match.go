package model

import "time"

type Decision string

const (
	DecisionReview  Decision = "review"
	DecisionAuto    Decision = "auto_match"
	DecisionConfirm Decision = "match_confirmed"
	DecisionReject  Decision = "match_rejected"
)

// Steward reports whether a steward may record this decision.
func (d Decision) Steward() bool {
	return d == DecisionConfirm || d == DecisionReject
}

type ScoreField string

const (
	NameScore      ScoreField = "NAME_SCORE"
	TaxIDScore     ScoreField = "TAX_ID_SCORE"
	NPIScore       ScoreField = "NPI_SCORE"
	AddressScore   ScoreField = "ADDRESS_SCORE"
	PhoneScore     ScoreField = "PHONE_SCORE"
	CompositeScore ScoreField = "COMPOSITE_SCORE"
)

// ScoreFields lists the attribute scores in display order, composite last.
var ScoreFields = []ScoreField{NameScore, TaxIDScore, NPIScore, AddressScore, PhoneScore, CompositeScore}

type MatchCandidate struct {
	CandidateID     string                 `json:"candidate_id"`
	SourceAID       string                 `json:"source_a_id"`
	SourceBID       string                 `json:"source_b_id"`
	Scores          map[ScoreField]float64 `json:"scores"`
	FinalDecision   Decision               `json:"final_decision"`
	StewardDecision *Decision              `json:"steward_decision,omitempty"`
	ReviewedBy      *string                `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time             `json:"reviewed_at,omitempty"`
}

func (c MatchCandidate) Composite() float64 {
	return c.Scores[CompositeScore]
}

// SourceRecord is a raw record from one contributing system. Field names are
// upper-case warehouse column names.
type SourceRecord struct {
	RecordID     string            `json:"record_id"`
	SourceSystem string            `json:"source_system"`
	Fields       map[string]string `json:"fields"`
}

// Field returns nil when the attribute is absent or empty.
func (r *SourceRecord) Field(name string) *string {
	if r == nil {
		return nil
	}
	v, ok := r.Fields[name]
	if !ok || v == "" {
		return nil
	}
	return &v
}

// MatchCluster is a connected group of source records joined by accepted
// matches. Conflicts lists rejected pairs that fall inside the cluster.
type MatchCluster struct {
	ID        string      `json:"id"`
	RecordIDs []string    `json:"record_ids"`
	Conflicts [][2]string `json:"conflicts,omitempty"`
}
