package sandbox

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/steward/internal/config"
	"github.com/agenthands/steward/internal/core/model"
	"github.com/agenthands/steward/internal/driver"
)

func TestGenerate_Deterministic(t *testing.T) {
	a, b := Generate(7), Generate(7)
	assert.Equal(t, a.Stats(), b.Stats())
	require.Equal(t, len(a.Sources), len(b.Sources))
	for i := range a.Sources {
		assert.Equal(t, a.Sources[i].RecordID, b.Sources[i].RecordID)
		assert.Equal(t, a.Sources[i].PayorName, b.Sources[i].PayorName)
	}
}

func TestGenerate_Shape(t *testing.T) {
	ds := Generate(42)

	assert.Len(t, ds.Golden, 18)
	assert.Len(t, ds.Edges, 10)
	assert.GreaterOrEqual(t, len(ds.Sources), len(ds.Golden))

	masters := make(map[string]bool)
	for _, g := range ds.Golden {
		masters[g.MasterPayorID] = true
	}
	seen := make(map[string]bool)
	for _, s := range ds.Sources {
		assert.True(t, masters[s.MasterPayorID], s.RecordID)
		assert.False(t, seen[s.RecordID], "duplicate record id %s", s.RecordID)
		seen[s.RecordID] = true
		require.NotNil(t, s.PayorName)
	}

	for _, c := range ds.Candidates {
		composite := c.Scores[model.CompositeScore]
		assert.GreaterOrEqual(t, composite, reviewThreshold)
		assert.NotEqual(t, c.SourceA.SourceSystem, c.SourceB.SourceSystem)
		if composite >= autoMatchThreshold {
			assert.Equal(t, model.DecisionAuto, c.FinalDecision)
		} else {
			assert.Equal(t, model.DecisionReview, c.FinalDecision)
		}
	}
}

func TestScore(t *testing.T) {
	s := func(v string) *string { return &v }
	a := &SourceRow{
		PayorName: s("Aetna Inc."), TaxID: s("06-0876543"), NPI: s("1234567890"),
		AddressLine1: s("151 Farmington Avenue"), ZipCode: s("06156"), Phone: s("(860) 273-0123"),
	}
	b := &SourceRow{
		PayorName: s("AETNA"), TaxID: s("060876543"), NPI: s("1234567890"),
		AddressLine1: s("151 FARMINGTON AVE"), ZipCode: s("06156-1234"), Phone: s("860.273.0123"),
	}

	scores := Score(a, b)
	assert.Equal(t, 1.0, scores[model.NameScore])
	assert.Equal(t, 1.0, scores[model.TaxIDScore])
	assert.Equal(t, 1.0, scores[model.NPIScore])
	assert.Equal(t, 1.0, scores[model.AddressScore])
	assert.Equal(t, 1.0, scores[model.PhoneScore])
	assert.Equal(t, 1.0, scores[model.CompositeScore])

	b.TaxID = s("068076543")
	b.NPI = nil
	scores = Score(a, b)
	assert.Equal(t, 0.8, scores[model.TaxIDScore])
	assert.Equal(t, 0.0, scores[model.NPIScore])
	assert.InDelta(t, 0.85, scores[model.CompositeScore], 1e-9)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "blue cross blue shield of tennessee", normalizeName("BCBS of Tennessee, Inc."))
	assert.Equal(t, "texas medicaid and healthcare partnership", normalizeName("Texas Medicaid & Healthcare Partnership LLC"))
}

func TestSeed_SQLite(t *testing.T) {
	gw, err := driver.Open(config.WarehouseConfig{Driver: "sqlite", DSN: ":memory:", AtomicWrites: true}, nil)
	require.NoError(t, err)
	defer gw.Close()

	ctx := context.Background()
	tables := config.SandboxTables()

	st, err := Seed(ctx, gw, tables, 42, nil)
	require.NoError(t, err)

	rows, err := gw.ExecuteRead(ctx, "SELECT COUNT(*) AS CNT FROM GOLDEN_PAYORS")
	require.NoError(t, err)
	assert.Equal(t, int64(st.GoldenPayors), rows[0].Int("CNT"))

	rows, err = gw.ExecuteRead(ctx, "SELECT COUNT(*) AS CNT FROM MATCH_CANDIDATES")
	require.NoError(t, err)
	assert.Equal(t, int64(st.Candidates), rows[0].Int("CNT"))

	// reseeding replaces rather than appends
	_, err = Seed(ctx, gw, tables, 42, nil)
	require.NoError(t, err)
	rows, err = gw.ExecuteRead(ctx, "SELECT COUNT(*) AS CNT FROM XREF")
	require.NoError(t, err)
	assert.Equal(t, int64(st.SourceRows), rows[0].Int("CNT"))

	rows, err = gw.ExecuteRead(ctx, "SELECT ACTION FROM MDM_CHANGE_LOG")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "sandbox_seeded", rows[0].String("ACTION"))
}
