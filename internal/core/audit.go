package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agenthands/steward/internal/core/model"
)

// AuditTrail returns one page of the change log, newest first. One extra row
// is requested to tell whether another page exists.
func (s *Steward) AuditTrail(ctx context.Context, filter model.AuditFilter, page int) (*model.AuditPage, error) {
	if page < 0 {
		return nil, &ValidationError{Field: "page", Message: "must not be negative"}
	}
	filter.EntityType = strings.TrimSpace(filter.EntityType)
	filter.Action = strings.TrimSpace(filter.Action)

	var args []interface{}
	if filter.EntityType != "" {
		args = append(args, filter.EntityType)
	}
	if filter.Action != "" {
		args = append(args, filter.Action)
	}
	args = append(args, s.auditPageSize+1, page*s.auditPageSize)

	rows, err := s.read(ctx, auditPageQuery(filter.EntityType != "", filter.Action != ""), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load audit trail: %w", err)
	}

	result := &model.AuditPage{Page: page, PageSize: s.auditPageSize}
	if len(rows) > s.auditPageSize {
		result.HasMore = true
		rows = rows[:s.auditPageSize]
	}
	result.Entries = auditEntries(rows)
	return result, nil
}

// FormatDetails pretty-prints JSON change details and returns anything else
// verbatim.
func FormatDetails(details string) string {
	trimmed := strings.TrimSpace(details)
	if trimmed == "" {
		return "No details"
	}
	if !json.Valid([]byte(trimmed)) {
		return details
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(trimmed), "", "  "); err != nil {
		return details
	}
	return buf.String()
}
