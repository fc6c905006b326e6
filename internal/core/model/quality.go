package model

type KPIs struct {
	GoldenCount    int64 `json:"golden_count"`
	SourceCount    int64 `json:"source_count"`
	PendingReview  int64 `json:"pending_review"`
	HierarchyCount int64 `json:"hierarchy_count"`
	DuplicatePairs int64 `json:"duplicate_pairs"`
}

// Bucket is one histogram bar covering [Low, High).
type Bucket struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int64   `json:"count"`
}

type SourceCount struct {
	SourceSystem string `json:"source_system"`
	Count        int64  `json:"count"`
}

type DashboardSummary struct {
	KPIs           KPIs            `json:"kpis"`
	ScoreHistogram []Bucket        `json:"score_histogram"`
	SourceMix      []SourceCount   `json:"source_mix"`
	RecentActivity []AuditLogEntry `json:"recent_activity"`
}

// Completeness gives the share of non-empty values per attribute, in percent.
type Completeness struct {
	SourceSystem string  `json:"source_system"`
	Total        int64   `json:"total"`
	NamePct      float64 `json:"name_pct"`
	TaxIDPct     float64 `json:"tax_id_pct"`
	NPIPct       float64 `json:"npi_pct"`
	AddressPct   float64 `json:"address_pct"`
	PhonePct     float64 `json:"phone_pct"`
}

type MatchRate struct {
	SourceASystem string  `json:"source_a_system"`
	SourceBSystem string  `json:"source_b_system"`
	Pairs         int64   `json:"pairs"`
	Matches       int64   `json:"matches"`
	Rate          float64 `json:"rate"`
}

type DataQuality struct {
	Completeness []Completeness `json:"completeness"`
	MatchRates   []MatchRate    `json:"match_rates"`
	Clusters     []MatchCluster `json:"clusters"`
}
