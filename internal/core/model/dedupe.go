package model

type Verdict string

const (
	VerdictSame      Verdict = "same"
	VerdictDifferent Verdict = "different"
	VerdictUnsure    Verdict = "unsure"
)

// Assessment is an advisory opinion on a match candidate. It is never written
// back to the warehouse.
type Assessment struct {
	CandidateID string  `json:"candidate_id"`
	Verdict     Verdict `json:"verdict"`
	Confidence  float64 `json:"confidence"`
	Reasoning   string  `json:"reasoning"`
}
