package compare

import (
	"strings"

	"github.com/agenthands/steward/internal/core/model"
)

type Category string

const (
	BothNull    Category = "both_null"
	OneNull     Category = "one_null"
	ExactMatch  Category = "exact_match"
	PrefixMatch Category = "prefix_match"
	Mismatch    Category = "mismatch"
)

const prefixLen = 3

// Classify compares two attribute values for display. nil and "" both count
// as absent.
func Classify(a, b *string) Category {
	aNull := a == nil || *a == ""
	bNull := b == nil || *b == ""
	switch {
	case aNull && bNull:
		return BothNull
	case aNull || bNull:
		return OneNull
	case strings.EqualFold(*a, *b):
		return ExactMatch
	case strings.EqualFold(prefix(*a), prefix(*b)):
		return PrefixMatch
	default:
		return Mismatch
	}
}

func prefix(s string) string {
	r := []rune(s)
	if len(r) < prefixLen {
		return s
	}
	return string(r[:prefixLen])
}

// DisplayFields are the source-record attributes shown side by side on the
// review page.
var DisplayFields = []string{
	"PAYOR_NAME", "TAX_ID", "NPI", "ADDRESS_LINE1", "CITY",
	"STATE_CODE", "ZIP_CODE", "PHONE", "PAYOR_TYPE", "STATUS",
}

type FieldComparison struct {
	Field    string   `json:"field"`
	A        *string  `json:"a"`
	B        *string  `json:"b"`
	Category Category `json:"category"`
}

func CompareRecords(a, b *model.SourceRecord) []FieldComparison {
	out := make([]FieldComparison, 0, len(DisplayFields))
	for _, f := range DisplayFields {
		va, vb := a.Field(f), b.Field(f)
		out = append(out, FieldComparison{Field: f, A: va, B: vb, Category: Classify(va, vb)})
	}
	return out
}

type Band string

const (
	High   Band = "high"
	Medium Band = "medium"
	Low    Band = "low"
)

func ScoreBand(score float64) Band {
	switch {
	case score >= 0.8:
		return High
	case score >= 0.5:
		return Medium
	default:
		return Low
	}
}
