package model

import "time"

type GoldenRecord struct {
	MasterPayorID string `json:"master_payor_id"`
	Name          string `json:"payor_name"`
	TaxID         string `json:"tax_id,omitempty"`
	NPI           string `json:"npi,omitempty"`
	StateCode     string `json:"state_code,omitempty"`
	PayorType     string `json:"payor_type,omitempty"`
	Status        string `json:"status,omitempty"`
	SourceCount   int    `json:"source_count"`
}

type GoldenDetail struct {
	Record    GoldenRecord    `json:"record"`
	Sources   []SourceRecord  `json:"sources"`
	Hierarchy []HierarchyEdge `json:"hierarchy"`
}

type AuditLogEntry struct {
	LogID         string    `json:"log_id"`
	EntityType    string    `json:"entity_type"`
	EntityID      string    `json:"entity_id"`
	Action        string    `json:"action"`
	ChangedBy     string    `json:"changed_by"`
	ChangedAt     time.Time `json:"changed_at"`
	ChangeDetails string    `json:"change_details,omitempty"`
}

type AuditFilter struct {
	EntityType string `json:"entity_type,omitempty"`
	Action     string `json:"action,omitempty"`
}

type AuditPage struct {
	Entries  []AuditLogEntry `json:"entries"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
	HasMore  bool            `json:"has_more"`
}

type PayorSummary struct {
	MasterPayorID string `json:"master_payor_id"`
	Summary       string `json:"summary"`
}
