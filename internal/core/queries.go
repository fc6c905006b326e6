package core

import (
	"fmt"
	"strings"

	"github.com/agenthands/steward/internal/config"
)

// Table names are substituted as identifiers through tableReplacer. Every
// value goes through a '?' placeholder.

func tableReplacer(t config.TablesConfig) *strings.Replacer {
	return strings.NewReplacer(
		"{golden}", t.GoldenPayors,
		"{source}", t.SourcePayors,
		"{candidates}", t.MatchCandidates,
		"{hierarchy}", t.Hierarchy,
		"{xref}", t.Xref,
		"{changelog}", t.ChangeLog,
	)
}

const (
	countGoldenQuery    = `SELECT COUNT(*) AS CNT FROM {golden}`
	countSourceQuery    = `SELECT COUNT(*) AS CNT FROM {source}`
	countPendingQuery   = `SELECT COUNT(*) AS CNT FROM {candidates} WHERE FINAL_DECISION = ?`
	countHierarchyQuery = `SELECT COUNT(*) AS CNT FROM {hierarchy}`
	countMatchedQuery   = `SELECT COUNT(*) AS CNT FROM {candidates} WHERE FINAL_DECISION IN (?, ?)`

	sourceMixQuery = `
		SELECT SOURCE_SYSTEM AS SOURCE_SYSTEM, COUNT(*) AS CNT
		FROM {source}
		GROUP BY SOURCE_SYSTEM
		ORDER BY SOURCE_SYSTEM
	`

	auditColumns = `
		SELECT LOG_ID AS LOG_ID, ENTITY_TYPE AS ENTITY_TYPE, ENTITY_ID AS ENTITY_ID,
			ACTION AS ACTION, CHANGED_BY AS CHANGED_BY, CHANGED_AT AS CHANGED_AT,
			CHANGE_DETAILS AS CHANGE_DETAILS
		FROM {changelog}
	`

	recentActivityQuery = auditColumns + `ORDER BY CHANGED_AT DESC, LOG_ID LIMIT 10`

	goldenColumns = `
		SELECT g.MASTER_PAYOR_ID AS MASTER_PAYOR_ID, g.GOLDEN_PAYOR_NAME AS GOLDEN_PAYOR_NAME,
			g.GOLDEN_TAX_ID AS GOLDEN_TAX_ID, g.GOLDEN_NPI AS GOLDEN_NPI,
			g.GOLDEN_STATE_CODE AS GOLDEN_STATE_CODE, g.GOLDEN_PAYOR_TYPE AS GOLDEN_PAYOR_TYPE,
			g.GOLDEN_STATUS AS GOLDEN_STATUS,
			(SELECT COUNT(*) FROM {xref} x WHERE x.MASTER_PAYOR_ID = g.MASTER_PAYOR_ID) AS SOURCE_COUNT
		FROM {golden} g
	`

	goldenListQuery = goldenColumns + `ORDER BY g.GOLDEN_PAYOR_NAME, g.MASTER_PAYOR_ID`
	goldenByIDQuery = goldenColumns + `WHERE g.MASTER_PAYOR_ID = ?`

	goldenIDsQuery = `SELECT MASTER_PAYOR_ID AS MASTER_PAYOR_ID FROM {golden} WHERE MASTER_PAYOR_ID IN (?, ?)`

	sourceColumns = `
		SELECT s.RECORD_ID AS RECORD_ID, s.SOURCE_SYSTEM AS SOURCE_SYSTEM,
			s.PAYOR_NAME AS PAYOR_NAME, s.TAX_ID AS TAX_ID, s.NPI AS NPI,
			s.ADDRESS_LINE1 AS ADDRESS_LINE1, s.CITY AS CITY, s.STATE_CODE AS STATE_CODE,
			s.ZIP_CODE AS ZIP_CODE, s.PHONE AS PHONE, s.PAYOR_TYPE AS PAYOR_TYPE,
			s.STATUS AS STATUS
	`

	sourceByIDQuery = sourceColumns + `FROM {source} s WHERE s.RECORD_ID = ?`

	goldenSourcesQuery = sourceColumns + `
		FROM {xref} x
		JOIN {source} s ON x.SOURCE_RECORD_ID = s.RECORD_ID
		WHERE x.MASTER_PAYOR_ID = ?
		ORDER BY s.SOURCE_SYSTEM, s.RECORD_ID
	`

	edgeColumns = `
		SELECT h.PARENT_PAYOR_ID AS PARENT_PAYOR_ID, h.CHILD_PAYOR_ID AS CHILD_PAYOR_ID,
			h.RELATIONSHIP_TYPE AS RELATIONSHIP_TYPE, h.STEWARD_CONFIRMED AS STEWARD_CONFIRMED,
			p.GOLDEN_PAYOR_NAME AS PARENT_NAME, c.GOLDEN_PAYOR_NAME AS CHILD_NAME
	`

	hierarchyEdgesQuery = edgeColumns + `
		FROM {hierarchy} h
		JOIN {golden} p ON h.PARENT_PAYOR_ID = p.MASTER_PAYOR_ID
		JOIN {golden} c ON h.CHILD_PAYOR_ID = c.MASTER_PAYOR_ID
		ORDER BY p.GOLDEN_PAYOR_NAME, c.GOLDEN_PAYOR_NAME
	`

	goldenHierarchyQuery = edgeColumns + `
		FROM {hierarchy} h
		LEFT JOIN {golden} p ON h.PARENT_PAYOR_ID = p.MASTER_PAYOR_ID
		LEFT JOIN {golden} c ON h.CHILD_PAYOR_ID = c.MASTER_PAYOR_ID
		WHERE h.PARENT_PAYOR_ID = ? OR h.CHILD_PAYOR_ID = ?
		ORDER BY h.PARENT_PAYOR_ID, h.CHILD_PAYOR_ID
	`

	rawEdgesQuery = `
		SELECT PARENT_PAYOR_ID AS PARENT_PAYOR_ID, CHILD_PAYOR_ID AS CHILD_PAYOR_ID
		FROM {hierarchy}
	`

	insertHierarchyQuery = `
		INSERT INTO {hierarchy}
			(PARENT_PAYOR_ID, CHILD_PAYOR_ID, RELATIONSHIP_TYPE, STEWARD_CONFIRMED, CONFIRMED_BY, CONFIRMED_AT)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	insertAuditQuery = `
		INSERT INTO {changelog}
			(LOG_ID, ENTITY_TYPE, ENTITY_ID, ACTION, CHANGED_BY, CHANGED_AT, CHANGE_DETAILS)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	candidateColumns = `
		SELECT CANDIDATE_ID AS CANDIDATE_ID, SOURCE_A_ID AS SOURCE_A_ID, SOURCE_B_ID AS SOURCE_B_ID,
			NAME_SCORE AS NAME_SCORE, TAX_ID_SCORE AS TAX_ID_SCORE, NPI_SCORE AS NPI_SCORE,
			ADDRESS_SCORE AS ADDRESS_SCORE, PHONE_SCORE AS PHONE_SCORE,
			COMPOSITE_SCORE AS COMPOSITE_SCORE, FINAL_DECISION AS FINAL_DECISION,
			STEWARD_DECISION AS STEWARD_DECISION, REVIEWED_BY AS REVIEWED_BY, REVIEWED_AT AS REVIEWED_AT
		FROM {candidates}
	`

	pendingCandidatesQuery = candidateColumns + `
		WHERE FINAL_DECISION = ?
		ORDER BY COMPOSITE_SCORE DESC, CANDIDATE_ID
	`

	candidateByIDQuery = candidateColumns + `WHERE CANDIDATE_ID = ?`

	updateDecisionQuery = `
		UPDATE {candidates}
		SET STEWARD_DECISION = ?, FINAL_DECISION = ?, REVIEWED_BY = ?, REVIEWED_AT = ?
		WHERE CANDIDATE_ID = ?
	`

	completenessQuery = `
		SELECT SOURCE_SYSTEM AS SOURCE_SYSTEM,
			COUNT(*) AS TOTAL,
			SUM(CASE WHEN PAYOR_NAME IS NOT NULL AND PAYOR_NAME <> '' THEN 1 ELSE 0 END) * 100.0 / COUNT(*) AS NAME_PCT,
			SUM(CASE WHEN TAX_ID IS NOT NULL AND TAX_ID <> '' THEN 1 ELSE 0 END) * 100.0 / COUNT(*) AS TAX_PCT,
			SUM(CASE WHEN NPI IS NOT NULL AND NPI <> '' THEN 1 ELSE 0 END) * 100.0 / COUNT(*) AS NPI_PCT,
			SUM(CASE WHEN ADDRESS_LINE1 IS NOT NULL AND ADDRESS_LINE1 <> '' THEN 1 ELSE 0 END) * 100.0 / COUNT(*) AS ADDR_PCT,
			SUM(CASE WHEN PHONE IS NOT NULL AND PHONE <> '' THEN 1 ELSE 0 END) * 100.0 / COUNT(*) AS PHONE_PCT
		FROM {source}
		GROUP BY SOURCE_SYSTEM
		ORDER BY SOURCE_SYSTEM
	`

	matchRateQuery = `
		SELECT SOURCE_A_SYSTEM AS SOURCE_A_SYSTEM, SOURCE_B_SYSTEM AS SOURCE_B_SYSTEM,
			COUNT(*) AS PAIRS,
			SUM(CASE WHEN FINAL_DECISION IN (?, ?) THEN 1 ELSE 0 END) AS MATCHES
		FROM {candidates}
		GROUP BY SOURCE_A_SYSTEM, SOURCE_B_SYSTEM
		ORDER BY SOURCE_A_SYSTEM, SOURCE_B_SYSTEM
	`

	decidedPairsQuery = `
		SELECT SOURCE_A_ID AS SOURCE_A_ID, SOURCE_B_ID AS SOURCE_B_ID, FINAL_DECISION AS FINAL_DECISION
		FROM {candidates}
		WHERE FINAL_DECISION IN (?, ?, ?)
		ORDER BY CANDIDATE_ID
	`
)

const histogramBuckets = 10

// scoreHistogramQuery buckets composite scores into tenths with a CASE
// ladder; WIDTH_BUCKET is not available everywhere. A score of exactly 1
// lands in the last bucket.
var scoreHistogramQuery = func() string {
	var sb strings.Builder
	sb.WriteString("SELECT CASE")
	for i := 1; i < histogramBuckets; i++ {
		fmt.Fprintf(&sb, " WHEN COMPOSITE_SCORE < %.1f THEN %d", float64(i)/histogramBuckets, i-1)
	}
	fmt.Fprintf(&sb, " ELSE %d END AS BUCKET, COUNT(*) AS CNT", histogramBuckets-1)
	sb.WriteString(" FROM {candidates} WHERE COMPOSITE_SCORE IS NOT NULL GROUP BY 1 ORDER BY 1")
	return sb.String()
}()

// auditPageQuery adds only fixed predicates; filter values are bound.
func auditPageQuery(entityType, action bool) string {
	var where []string
	if entityType {
		where = append(where, "ENTITY_TYPE = ?")
	}
	if action {
		where = append(where, "ACTION = ?")
	}
	q := auditColumns
	if len(where) > 0 {
		q += "WHERE " + strings.Join(where, " AND ") + " "
	}
	return q + "ORDER BY CHANGED_AT DESC, LOG_ID LIMIT ? OFFSET ?"
}
