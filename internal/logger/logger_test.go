package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeKVs(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"warehouse_dsn", "snowflake://user:pw@acct",
		"candidate_id", "C-1",
		"LLM_API_KEY", "sk-123",
		"dangling",
	})

	assert.Equal(t, []interface{}{
		"warehouse_dsn", "[REDACTED]",
		"candidate_id", "C-1",
		"LLM_API_KEY", "[REDACTED]",
		"dangling",
	}, out)
}

func TestNop(t *testing.T) {
	l := Nop().With("component", "test")
	assert.NotPanics(t, func() { l.Info("hello", "k", "v") })
}
