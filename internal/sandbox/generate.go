package sandbox

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/agenthands/steward/internal/core/model"
)

type sourceSystem struct {
	Name     string
	Prefix   string
	Presence float64
	NullRate float64
}

var sourceSystems = []sourceSystem{
	{Name: "CRM", Prefix: "CRM", Presence: 0.95, NullRate: 0.05},
	{Name: "CLAIMS", Prefix: "CLM", Presence: 0.85, NullRate: 0.15},
	{Name: "CREDENTIALING", Prefix: "CRD", Presence: 0.6, NullRate: 0.2},
	{Name: "CMS_REFERENCE", Prefix: "CMS", Presence: 0.4, NullRate: 0.1},
}

const (
	autoMatchThreshold = 0.9
	reviewThreshold    = 0.6
)

var compositeWeights = []struct {
	Field  model.ScoreField
	Weight float64
}{
	{model.NameScore, 0.40},
	{model.TaxIDScore, 0.25},
	{model.NPIScore, 0.10},
	{model.AddressScore, 0.15},
	{model.PhoneScore, 0.10},
}

type GoldenRow struct {
	MasterPayorID string
	Name          string
	TaxID         string
	NPI           string
	StateCode     string
	PayorType     string
	Status        string
}

type SourceRow struct {
	RecordID      string
	SourceSystem  string
	MasterPayorID string
	PayorName     *string
	TaxID         *string
	NPI           *string
	AddressLine1  *string
	City          *string
	StateCode     *string
	ZipCode       *string
	Phone         *string
	PayorType     *string
	Status        *string
}

type CandidateRow struct {
	CandidateID   string
	SourceA       *SourceRow
	SourceB       *SourceRow
	Scores        map[model.ScoreField]float64
	FinalDecision model.Decision
}

type EdgeRow struct {
	ParentID         string
	ChildID          string
	RelationshipType string
	Confirmed        bool
}

// Dataset is one generated sandbox warehouse.
type Dataset struct {
	Golden     []GoldenRow
	Sources    []SourceRow
	Candidates []CandidateRow
	Edges      []EdgeRow
}

// Generate builds a dataset from families. The same seed always yields the
// same dataset.
func Generate(seed uint64) *Dataset {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	ds := &Dataset{}
	counters := make(map[string]int)

	for _, f := range families {
		parentID := ds.addEntity(rng, counters, f.TaxID, f.Parent)
		for _, child := range f.Children {
			childID := ds.addEntity(rng, counters, f.TaxID, child)
			ds.Edges = append(ds.Edges, EdgeRow{
				ParentID:         parentID,
				ChildID:          childID,
				RelationshipType: child.Relationship,
				Confirmed:        rng.Float64() < 0.5,
			})
		}
	}

	ds.Candidates = scorePairs(ds.Sources)
	return ds
}

func (ds *Dataset) addEntity(rng *rand.Rand, counters map[string]int, taxID string, e entity) string {
	masterID := fmt.Sprintf("MP-%04d", len(ds.Golden)+1)
	npi := fmt.Sprintf("1%09d", rng.IntN(1_000_000_000))
	address := fmt.Sprintf("%d %s", 100+rng.IntN(9900), streets[rng.IntN(len(streets))])
	zip := fmt.Sprintf("%05d", 10000+rng.IntN(89999))
	phone := fmt.Sprintf("%d%03d%04d", 200+rng.IntN(800), rng.IntN(1000), rng.IntN(10000))

	ds.Golden = append(ds.Golden, GoldenRow{
		MasterPayorID: masterID,
		Name:          e.Name,
		TaxID:         taxID,
		NPI:           npi,
		StateCode:     e.State,
		PayorType:     e.PayorType,
		Status:        "active",
	})

	present := 0
	for i, src := range sourceSystems {
		// every entity keeps at least one source record
		last := i == len(sourceSystems)-1 && present == 0
		if !last && rng.Float64() >= src.Presence {
			continue
		}
		present++
		counters[src.Prefix]++
		m := &messer{rng: rng, nullRate: src.NullRate}
		name := m.name(e.Name)
		status := "active"
		if m.chance(0.05) {
			status = "inactive"
		}
		ds.Sources = append(ds.Sources, SourceRow{
			RecordID:      fmt.Sprintf("%s-%05d", src.Prefix, counters[src.Prefix]),
			SourceSystem:  src.Name,
			MasterPayorID: masterID,
			PayorName:     &name,
			TaxID:         m.nullable(m.taxID(taxID)),
			NPI:           m.nullable(npi),
			AddressLine1:  m.nullable(m.address(address)),
			City:          m.nullable(e.City),
			StateCode:     m.nullable(m.state(e.State)),
			ZipCode:       m.nullable(m.zip(zip)),
			Phone:         m.nullable(m.phone(phone)),
			PayorType:     m.nullable(e.PayorType),
			Status:        &status,
		})
	}
	return masterID
}

// scorePairs compares every cross-system pair and keeps those at or above
// the review threshold.
func scorePairs(sources []SourceRow) []CandidateRow {
	var out []CandidateRow
	for i := range sources {
		for j := i + 1; j < len(sources); j++ {
			a, b := &sources[i], &sources[j]
			if a.SourceSystem == b.SourceSystem {
				continue
			}
			scores := Score(a, b)
			composite := scores[model.CompositeScore]
			if composite < reviewThreshold {
				continue
			}
			decision := model.DecisionReview
			if composite >= autoMatchThreshold {
				decision = model.DecisionAuto
			}
			out = append(out, CandidateRow{
				CandidateID:   fmt.Sprintf("MC-%05d", len(out)+1),
				SourceA:       a,
				SourceB:       b,
				Scores:        scores,
				FinalDecision: decision,
			})
		}
	}
	return out
}

// Score computes per-attribute similarity in [0,1] and the weighted
// composite.
func Score(a, b *SourceRow) map[model.ScoreField]float64 {
	scores := map[model.ScoreField]float64{
		model.NameScore:    similarity(normalizeName(deref(a.PayorName)), normalizeName(deref(b.PayorName))),
		model.TaxIDScore:   digitsScore(deref(a.TaxID), deref(b.TaxID), 0.8),
		model.NPIScore:     digitsScore(deref(a.NPI), deref(b.NPI), 0),
		model.AddressScore: addressScore(a, b),
		model.PhoneScore:   digitsScore(lastDigits(deref(a.Phone), 10), lastDigits(deref(b.Phone), 10), 0),
	}
	var composite float64
	for _, w := range compositeWeights {
		composite += w.Weight * scores[w.Field]
	}
	scores[model.CompositeScore] = round3(composite)
	return scores
}

func addressScore(a, b *SourceRow) float64 {
	line := similarity(normalizeAddress(deref(a.AddressLine1)), normalizeAddress(deref(b.AddressLine1)))
	zipA, zipB := firstN(digitsOnly(deref(a.ZipCode)), 5), firstN(digitsOnly(deref(b.ZipCode)), 5)
	if zipA != "" && zipA == zipB {
		return round3(0.7*line + 0.3)
	}
	return round3(0.7 * line)
}

// digitsScore is 1 for an exact digit match, near for a single edit and 0
// otherwise. Missing values score 0.
func digitsScore(a, b string, near float64) float64 {
	a, b = digitsOnly(a), digitsOnly(b)
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	if near > 0 && len(a) == len(b) && fuzzy.LevenshteinDistance(a, b) <= 2 {
		return near
	}
	return 0
}

func similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	longest := max(len([]rune(a)), len([]rune(b)))
	d := fuzzy.LevenshteinDistance(a, b)
	return round3(1 - float64(d)/float64(longest))
}

var nameNoise = map[string]bool{"inc": true, "llc": true, "corp": true, "co": true, "the": true}

var nameAbbrev = strings.NewReplacer("bcbs", "blue cross blue shield", "&", "and")

func normalizeName(s string) string {
	s = nameAbbrev.Replace(strings.ToLower(s))
	var words []string
	for _, w := range strings.FieldsFunc(s, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) }) {
		if !nameNoise[w] {
			words = append(words, w)
		}
	}
	return strings.Join(words, " ")
}

var streetSuffixes = map[string]string{"st": "street", "ave": "avenue", "blvd": "boulevard", "dr": "drive", "rd": "road"}

func normalizeAddress(s string) string {
	words := strings.Fields(strings.ToLower(s))
	if n := len(words); n > 0 {
		if full, ok := streetSuffixes[strings.TrimSuffix(words[n-1], ".")]; ok {
			words[n-1] = full
		}
	}
	return strings.Join(words, " ")
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

func lastDigits(s string, n int) string {
	d := digitsOnly(s)
	if len(d) > n {
		return d[len(d)-n:]
	}
	return d
}

func firstN(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func round3(v float64) float64 {
	return float64(int(v*1000+0.5)) / 1000
}
