package sandbox

import (
	"strings"

	"github.com/agenthands/steward/internal/config"
)

// Schema returns the DDL for a local warehouse. Column names match the
// production MDM tables so the console queries run unchanged.
func Schema(t config.TablesConfig) []string {
	r := strings.NewReplacer(
		"{golden}", t.GoldenPayors,
		"{source}", t.SourcePayors,
		"{candidates}", t.MatchCandidates,
		"{hierarchy}", t.Hierarchy,
		"{xref}", t.Xref,
		"{changelog}", t.ChangeLog,
	)
	out := make([]string, 0, len(ddl))
	for _, stmt := range ddl {
		out = append(out, r.Replace(stmt))
	}
	return out
}

var ddl = []string{
	`CREATE TABLE IF NOT EXISTS {golden} (
		MASTER_PAYOR_ID   TEXT PRIMARY KEY,
		GOLDEN_PAYOR_NAME TEXT NOT NULL,
		GOLDEN_TAX_ID     TEXT,
		GOLDEN_NPI        TEXT,
		GOLDEN_STATE_CODE TEXT,
		GOLDEN_PAYOR_TYPE TEXT,
		GOLDEN_STATUS     TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS {source} (
		RECORD_ID     TEXT PRIMARY KEY,
		SOURCE_SYSTEM TEXT NOT NULL,
		PAYOR_NAME    TEXT,
		TAX_ID        TEXT,
		NPI           TEXT,
		ADDRESS_LINE1 TEXT,
		CITY          TEXT,
		STATE_CODE    TEXT,
		ZIP_CODE      TEXT,
		PHONE         TEXT,
		PAYOR_TYPE    TEXT,
		STATUS        TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS {xref} (
		SOURCE_RECORD_ID TEXT PRIMARY KEY,
		MASTER_PAYOR_ID  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS {candidates} (
		CANDIDATE_ID     TEXT PRIMARY KEY,
		SOURCE_A_ID      TEXT NOT NULL,
		SOURCE_B_ID      TEXT NOT NULL,
		SOURCE_A_SYSTEM  TEXT,
		SOURCE_B_SYSTEM  TEXT,
		NAME_SCORE       DOUBLE PRECISION,
		TAX_ID_SCORE     DOUBLE PRECISION,
		NPI_SCORE        DOUBLE PRECISION,
		ADDRESS_SCORE    DOUBLE PRECISION,
		PHONE_SCORE      DOUBLE PRECISION,
		COMPOSITE_SCORE  DOUBLE PRECISION,
		FINAL_DECISION   TEXT NOT NULL,
		STEWARD_DECISION TEXT,
		REVIEWED_BY      TEXT,
		REVIEWED_AT      TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS {hierarchy} (
		PARENT_PAYOR_ID   TEXT NOT NULL,
		CHILD_PAYOR_ID    TEXT NOT NULL,
		RELATIONSHIP_TYPE TEXT NOT NULL,
		STEWARD_CONFIRMED BOOLEAN NOT NULL DEFAULT FALSE,
		CONFIRMED_BY      TEXT,
		CONFIRMED_AT      TIMESTAMP,
		PRIMARY KEY (PARENT_PAYOR_ID, CHILD_PAYOR_ID)
	)`,
	`CREATE TABLE IF NOT EXISTS {changelog} (
		LOG_ID         TEXT PRIMARY KEY,
		ENTITY_TYPE    TEXT NOT NULL,
		ENTITY_ID      TEXT,
		ACTION         TEXT NOT NULL,
		CHANGED_BY     TEXT,
		CHANGED_AT     TIMESTAMP NOT NULL,
		CHANGE_DETAILS TEXT
	)`,
}
