package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/steward/internal/config"
	"github.com/agenthands/steward/internal/core"
	"github.com/agenthands/steward/internal/core/hierarchy"
	"github.com/agenthands/steward/internal/core/review"
	"github.com/agenthands/steward/internal/driver"
	"github.com/agenthands/steward/internal/sandbox"
	"github.com/agenthands/steward/internal/transform"
)

var fixture = []driver.Statement{
	{SQL: "INSERT INTO GOLDEN_PAYORS VALUES (?, ?, ?, ?, ?, ?, ?)", Args: []interface{}{"MP-1", "Aetna Inc.", "060876543", "1111111111", "CT", "commercial", "active"}},
	{SQL: "INSERT INTO GOLDEN_PAYORS VALUES (?, ?, ?, ?, ?, ?, ?)", Args: []interface{}{"MP-2", "Aetna Better Health", "060876543", "2222222222", "IL", "medicaid", "active"}},
	{SQL: "INSERT INTO STG_PAYORS_UNIONED VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", Args: []interface{}{"CRM-1", "CRM", "Aetna Inc.", "060876543", "1111111111", "151 Farmington Ave", "Hartford", "CT", "06156", "8602730123", "commercial", "active"}},
	{SQL: "INSERT INTO STG_PAYORS_UNIONED VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", Args: []interface{}{"CLM-1", "CLAIMS", "AETNA", "06-0876543", nil, "151 FARMINGTON AVENUE", "Hartford", "CT", "06156-1234", "(860) 273-0123", "commercial", "active"}},
	{SQL: "INSERT INTO XREF VALUES (?, ?)", Args: []interface{}{"CRM-1", "MP-1"}},
	{SQL: "INSERT INTO XREF VALUES (?, ?)", Args: []interface{}{"CLM-1", "MP-1"}},
	{SQL: "INSERT INTO MATCH_CANDIDATES (CANDIDATE_ID, SOURCE_A_ID, SOURCE_B_ID, SOURCE_A_SYSTEM, SOURCE_B_SYSTEM, NAME_SCORE, TAX_ID_SCORE, NPI_SCORE, ADDRESS_SCORE, PHONE_SCORE, COMPOSITE_SCORE, FINAL_DECISION) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		Args: []interface{}{"MC-1", "CRM-1", "CLM-1", "CRM", "CLAIMS", 0.8, 1.0, 0.0, 0.9, 1.0, 0.82, "review"}},
	{SQL: "INSERT INTO MDM_CHANGE_LOG VALUES (?, ?, ?, ?, ?, ?, ?)", Args: []interface{}{"L-1", "sandbox", "seed", "sandbox_seeded", "system", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), `{"golden_payors":2}`}},
}

type testServer struct {
	srv    *Server
	router *gin.Engine
	gw     *driver.SQLGateway
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gw, err := driver.Open(config.WarehouseConfig{Driver: "sqlite", DSN: ":memory:", AtomicWrites: true}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = gw.Close() })

	cfg := config.Default()
	cfg.Warehouse.Tables = config.SandboxTables()
	cfg.Review.Steward = "steward"

	var stmts []driver.Statement
	for _, ddl := range sandbox.Schema(cfg.Warehouse.Tables) {
		stmts = append(stmts, driver.Statement{SQL: ddl})
	}
	require.NoError(t, gw.ExecuteWriteBatch(context.Background(), append(stmts, fixture...)))

	srv, err := NewServer(core.NewSteward(gw, cfg, nil), cfg, nil)
	require.NoError(t, err)
	return &testServer{srv: srv, router: srv.SetupRouter(), gw: gw}
}

type client struct {
	ts      *testServer
	cookies []*http.Cookie
	user    string
	tab     string
}

func (c *client) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.user != "" {
		req.Header.Set(stewardHeader, c.user)
	}
	if c.tab != "" {
		req.Header.Set(tabHeader, c.tab)
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.ts.router.ServeHTTP(rec, req)
	if got := rec.Result().Cookies(); len(got) > 0 {
		c.cookies = got
	}
	return rec
}

type auditResponse struct {
	Entries []auditEntryView `json:"entries"`
	HasMore bool             `json:"has_more"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthzAndMetrics(t *testing.T) {
	ts := newTestServer(t)
	c := &client{ts: ts}

	rec := c.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	c.do(t, http.MethodGet, "/api/status", nil)
	rec = c.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "steward_http_requests_total")
}

func TestSessionCookie(t *testing.T) {
	ts := newTestServer(t)
	c := &client{ts: ts}

	c.do(t, http.MethodGet, "/api/review", nil)
	require.Len(t, c.cookies, 1)
	assert.Equal(t, sessionCookie, c.cookies[0].Name)
	first := c.cookies[0].Value

	c.do(t, http.MethodGet, "/api/review", nil)
	assert.Equal(t, first, c.cookies[0].Value)

	forged := &client{ts: ts, cookies: []*http.Cookie{{Name: sessionCookie, Value: "not-a-uuid"}}}
	forged.do(t, http.MethodGet, "/api/review", nil)
	assert.NotEqual(t, "not-a-uuid", forged.cookies[0].Value)
}

func TestReviewFlow(t *testing.T) {
	ts := newTestServer(t)
	alice := &client{ts: ts, user: "alice"}

	rec := alice.do(t, http.MethodPost, "/api/review/load", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	snap := decode[review.Snapshot](t, rec)
	assert.Equal(t, review.Reviewing, snap.State)
	assert.Equal(t, "alice", snap.Steward)
	require.NotNil(t, snap.Candidate)
	assert.Equal(t, "MC-1", snap.Candidate.CandidateID)
	require.NotNil(t, snap.SourceB)
	assert.Equal(t, "CLM-1", snap.SourceB.RecordID)
	assert.Len(t, snap.Comparison, 10)

	// typing into the notes box must not trigger a decision
	rec = alice.do(t, http.MethodPost, "/api/review/key", keyRequest{Key: "y", InputFocused: true})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[keyResponse](t, rec).Handled)

	rec = alice.do(t, http.MethodPost, "/api/review/key", keyRequest{Key: "x"})
	assert.False(t, decode[keyResponse](t, rec).Handled)

	rec = alice.do(t, http.MethodPost, "/api/review/key", keyRequest{Key: "Y", Notes: "same org"})
	require.Equal(t, http.StatusOK, rec.Code)
	kr := decode[keyResponse](t, rec)
	assert.True(t, kr.Handled)
	assert.Equal(t, review.Empty, kr.Snapshot.State)
	assert.Equal(t, 1, kr.Snapshot.Progress.Resolved)
	assert.Equal(t, 1.0, kr.Snapshot.Progress.Fraction)

	rec = alice.do(t, http.MethodGet, "/api/audit?entity_type=match_candidate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	audit := decode[auditResponse](t, rec)
	require.Len(t, audit.Entries, 1)
	assert.Equal(t, "match_confirmed", audit.Entries[0].Action)
	assert.Equal(t, "alice", audit.Entries[0].ChangedBy)
	assert.Equal(t, "same org", audit.Entries[0].FormattedDetails)

	// another browser has its own session
	bob := &client{ts: ts, user: "bob"}
	rec = bob.do(t, http.MethodGet, "/api/review", nil)
	assert.Equal(t, review.Loading, decode[review.Snapshot](t, rec).State)
	assert.Equal(t, 2, ts.srv.Registry.Len())
}

func TestReviewSessionPerTab(t *testing.T) {
	ts := newTestServer(t)
	first := &client{ts: ts, tab: uuid.NewString()}
	first.do(t, http.MethodGet, "/api/review", nil)
	require.Len(t, first.cookies, 1)

	second := &client{ts: ts, cookies: first.cookies, tab: uuid.NewString()}

	rec := first.do(t, http.MethodPost, "/api/review/load", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, review.Reviewing, decode[review.Snapshot](t, rec).State)

	// same browser cookie, different tab
	rec = second.do(t, http.MethodGet, "/api/review", nil)
	assert.Equal(t, review.Loading, decode[review.Snapshot](t, rec).State)
	assert.Equal(t, 2, ts.srv.Registry.Len())

	malformed := &client{ts: ts, cookies: first.cookies, tab: "not-a-tab"}
	rec = malformed.do(t, http.MethodGet, "/api/review", nil)
	assert.Equal(t, review.Loading, decode[review.Snapshot](t, rec).State)
	assert.Equal(t, 3, ts.srv.Registry.Len())

	// the page finds the tab through the query string
	page := &client{ts: ts, cookies: first.cookies}
	rec = page.do(t, http.MethodGet, "/match-review?tab="+first.tab, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "MC-1")
	assert.Equal(t, 3, ts.srv.Registry.Len())
}

func TestReviewPageKeepsDecisionsAcrossVisits(t *testing.T) {
	ts := newTestServer(t)
	c := &client{ts: ts, tab: uuid.NewString()}

	rec := c.do(t, http.MethodGet, "/match-review?tab="+c.tab, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "MC-1")

	rec = c.do(t, http.MethodPost, "/api/review/decide", decideRequest{CandidateID: "MC-1", Decision: "match_rejected"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// the refresh after an action shows the session, it does not start over
	rec = c.do(t, http.MethodGet, "/match-review?tab="+c.tab, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "1 resolved this session")
}

func TestDecideReview_Errors(t *testing.T) {
	ts := newTestServer(t)
	c := &client{ts: ts}

	rec := c.do(t, http.MethodPost, "/api/review/decide", decideRequest{CandidateID: "MC-1", Decision: "auto_match"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, decode[ErrorResponse](t, rec).Retry)

	rec = c.do(t, http.MethodPost, "/api/review/decide", decideRequest{Decision: "match_rejected"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// the session has not loaded a queue yet
	rec = c.do(t, http.MethodPost, "/api/review/decide", decideRequest{CandidateID: "MC-1", Decision: "match_rejected"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = c.do(t, http.MethodPost, "/api/review/skip", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHierarchyEndpoints(t *testing.T) {
	ts := newTestServer(t)
	c := &client{ts: ts, user: "alice"}

	rec := c.do(t, http.MethodPost, "/api/hierarchy", core.RelationshipInput{ParentID: "MP-1", ChildID: "MP-2", RelationshipType: "subsidiary"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = c.do(t, http.MethodPost, "/api/hierarchy", core.RelationshipInput{ParentID: "MP-1", ChildID: "MP-2", RelationshipType: "subsidiary"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(t, http.MethodPost, "/api/hierarchy", core.RelationshipInput{ParentID: "MP-2", ChildID: "MP-1", RelationshipType: "brand"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Error, "MP-2 -> MP-1 -> MP-2")

	rec = c.do(t, http.MethodGet, "/api/hierarchy", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[core.HierarchyView](t, rec)
	assert.Equal(t, 1, view.EdgeCount)
	require.Len(t, view.Forest, 1)
	assert.Equal(t, "MP-1", view.Forest[0].ID)
	assert.Empty(t, view.Unassigned)
}

func TestGoldenEndpoints(t *testing.T) {
	ts := newTestServer(t)
	c := &client{ts: ts}

	rec := c.do(t, http.MethodGet, "/api/golden?search=better", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode[map[string]interface{}](t, rec)["count"])

	rec = c.do(t, http.MethodGet, "/api/golden/MP-1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = c.do(t, http.MethodGet, "/api/golden/MP-404", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOptionalFeaturesReportUnavailable(t *testing.T) {
	ts := newTestServer(t)
	c := &client{ts: ts}

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/review/candidates/MC-1/assessment"},
		{http.MethodGet, "/api/golden/MP-1/summary"},
		{http.MethodGet, "/api/hierarchy/suggestions"},
		{http.MethodPost, "/api/hierarchy/sync"},
		{http.MethodPost, "/api/transform/run"},
	} {
		rec := c.do(t, tc.method, tc.path, nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, tc.path)
	}
}

func TestWarehouseFailureIsRetryable(t *testing.T) {
	ts := newTestServer(t)
	c := &client{ts: ts}
	require.NoError(t, ts.gw.Close())

	rec := c.do(t, http.MethodGet, "/api/dashboard", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.True(t, decode[ErrorResponse](t, rec).Retry)

	rec = c.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Retry")
}

func TestPagesRender(t *testing.T) {
	ts := newTestServer(t)
	c := &client{ts: ts}

	pages := map[string]string{
		"/":                    "Pending review",
		"/match-review":        "MC-1",
		"/golden-records":      "Aetna Better Health",
		"/golden-records/MP-1": "CLM-1",
		"/hierarchy":           "Unassigned",
		"/audit":               "sandbox_seeded",
		"/data-quality":        "Completeness by source",
	}
	for path, want := range pages {
		rec := c.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), want, path)
	}

	rec := c.do(t, http.MethodGet, "/golden-records/MP-404", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/dashboard", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err    error
		status int
		retry  bool
	}{
		{&core.ValidationError{Field: "x", Message: "bad"}, http.StatusBadRequest, false},
		{fmt.Errorf("golden: %w", core.ErrNotFound), http.StatusNotFound, false},
		{review.ErrBusy, http.StatusConflict, true},
		{transform.ErrRunning, http.StatusConflict, true},
		{review.ErrInvalidState, http.StatusConflict, false},
		{&hierarchy.TreeCycleError{Path: []string{"a", "b", "a"}}, http.StatusUnprocessableEntity, false},
		{&driver.QueryError{SQL: "SELECT 1", Err: errors.New("down")}, http.StatusBadGateway, true},
		{fmt.Errorf("wrapped: %w", &driver.WriteError{FailedIndex: 1, Err: errors.New("denied")}), http.StatusBadGateway, true},
		{&transform.TransformError{Err: errors.New("exit status 2")}, http.StatusBadGateway, true},
		{context.DeadlineExceeded, http.StatusGatewayTimeout, true},
		{core.ErrGraphDisabled, http.StatusServiceUnavailable, false},
		{errors.New("boom"), http.StatusInternalServerError, false},
	}
	for _, tc := range cases {
		status, retry := classify(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.retry, retry, tc.err.Error())
	}
}

type fakePinger struct{ err error }

func (p *fakePinger) Ping(ctx context.Context) error { return p.err }

func TestStatusMonitor(t *testing.T) {
	p := &fakePinger{err: errors.New("connection refused")}
	m := NewStatusMonitor(p, time.Minute, nil)
	assert.Equal(t, Connecting, m.Status().State)

	st := m.Check(context.Background())
	assert.Equal(t, Disconnected, st.State)
	assert.Equal(t, "connection refused", st.Error)
	require.NotNil(t, st.CheckedAt)

	p.err = nil
	m.Check(context.Background())
	assert.Equal(t, Connected, m.Status().State)
	assert.Empty(t, m.Status().Error)
}
