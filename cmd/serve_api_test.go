//go:build !integration

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leads-cli/internal/config"
	"github.com/sells-group/leads-cli/internal/model"
	"github.com/sells-group/leads-cli/internal/store"
)

func apiLeads() []model.Lead {
	return []model.Lead{
		{EmployerName: "Acme Industries", EIN: 111000001, State: "MA", Participants: 6200, Segment: model.SegmentLarge, PlanName: "Acme Health Plan", Tier: model.Tier1, OutreachQuery: "find the benefits decision-maker for Acme Industries"},
		{EmployerName: "Bolt Manufacturing", EIN: 111000002, State: "TX", Participants: 3000, Segment: model.SegmentMid, PlanName: "Bolt Benefits", Tier: model.Tier2, OutreachQuery: "find the benefits decision-maker for Bolt Manufacturing"},
		{EmployerName: "Copper Freight", EIN: 111000003, State: "MA", Participants: 800, Segment: model.SegmentSmall, PlanName: "Copper Care", Tier: model.Tier3, OutreachQuery: "find the benefits decision-maker for Copper Freight"},
		{EmployerName: "Delta Logistics", EIN: 111000004, State: "NY", Participants: 5500, Segment: model.SegmentLarge, PlanName: "Delta Health", Tier: model.Tier1, OutreachQuery: "find the benefits decision-maker for Delta Logistics"},
		{EmployerName: "Ember Foods", EIN: 111000005, State: "TX", Participants: 1500, Segment: model.SegmentMid, PlanName: "Ember Plan", Tier: model.Tier2, OutreachQuery: "find the benefits decision-maker for Ember Foods"},
	}
}

// newTestRouter seeds a sqlite store with the given leads and returns the
// wired router. A nil slice leaves the store empty.
func newTestRouter(t *testing.T, leads []model.Lead) http.Handler {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := store.NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))

	if leads != nil {
		snap := &model.Snapshot{
			ID:          uuid.New().String(),
			Source:      "rosters/test.csv",
			Fingerprint: "fp-api",
			TierHash:    "th-api",
			LeadCount:   len(leads),
			LoadedAt:    time.Now().UTC(),
			Leads:       leads,
		}
		require.NoError(t, st.SaveSnapshot(context.Background(), snap))
	}

	api := &leadAPI{
		store: st,
		outreach: config.OutreachConfig{
			PageSize:      2,
			TopN:          2,
			HistogramBins: 4,
			TopStates:     5,
		},
	}
	return buildRouter(api, nil)
}

func doGet(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestServeAPI_Health(t *testing.T) {
	h := newTestRouter(t, apiLeads())

	rr := doGet(t, h, "/health")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestServeAPI_LeadsDefaults(t *testing.T) {
	h := newTestRouter(t, apiLeads())

	rr := doGet(t, h, "/leads")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp leadsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	assert.Equal(t, 5, resp.Total)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 2, resp.PageSize)
	assert.Equal(t, 3, resp.PageCount)
	require.Len(t, resp.Leads, 2)
	// Default order is roster order, not rank.
	assert.Equal(t, "Acme Industries", resp.Leads[0].EmployerName)
	assert.Equal(t, "Bolt Manufacturing", resp.Leads[1].EmployerName)
}

func TestServeAPI_LeadsFiltered(t *testing.T) {
	h := newTestRouter(t, apiLeads())

	rr := doGet(t, h, "/leads?states=TX&page_size=10")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp leadsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	assert.Equal(t, 2, resp.Total)
	require.Len(t, resp.Leads, 2)
	assert.Equal(t, "Bolt Manufacturing", resp.Leads[0].EmployerName)
	assert.Equal(t, "Ember Foods", resp.Leads[1].EmployerName)
}

func TestServeAPI_LeadsSortRank(t *testing.T) {
	h := newTestRouter(t, apiLeads())

	rr := doGet(t, h, "/leads?sort=rank&page_size=10")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp leadsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	require.Len(t, resp.Leads, 5)
	// Tier 1 by participants descending, then tier 2, then tier 3.
	assert.Equal(t, "Acme Industries", resp.Leads[0].EmployerName)
	assert.Equal(t, "Delta Logistics", resp.Leads[1].EmployerName)
	assert.Equal(t, "Bolt Manufacturing", resp.Leads[2].EmployerName)
	assert.Equal(t, "Ember Foods", resp.Leads[3].EmployerName)
	assert.Equal(t, "Copper Freight", resp.Leads[4].EmployerName)
}

func TestServeAPI_LeadsUnknownSort(t *testing.T) {
	h := newTestRouter(t, apiLeads())

	rr := doGet(t, h, "/leads?sort=name")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "unknown sort")
}

func TestServeAPI_LeadsBadPage(t *testing.T) {
	h := newTestRouter(t, apiLeads())

	rr := doGet(t, h, "/leads?page=abc")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "page must be an integer")
}

func TestServeAPI_LeadsBadMinParticipants(t *testing.T) {
	h := newTestRouter(t, apiLeads())

	rr := doGet(t, h, "/leads?min_participants=lots")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "min_participants must be an integer")
}

func TestServeAPI_LeadsBadTier(t *testing.T) {
	h := newTestRouter(t, apiLeads())

	rr := doGet(t, h, "/leads?tiers=9")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestServeAPI_LeadsPageSizeBounds(t *testing.T) {
	h := newTestRouter(t, apiLeads())

	rr := doGet(t, h, "/leads?page_size=0")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doGet(t, h, "/leads?page_size=501")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "page_size must be between 1 and 500")
}

func TestServeAPI_LeadsPageOutOfRange(t *testing.T) {
	// Past-the-end pages are empty, not an error.
	h := newTestRouter(t, apiLeads())

	rr := doGet(t, h, "/leads?page=99")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp leadsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.Total)
	assert.Equal(t, 99, resp.Page)
	assert.Empty(t, resp.Leads)
}

func TestServeAPI_LeadsNoSnapshot(t *testing.T) {
	h := newTestRouter(t, nil)

	rr := doGet(t, h, "/leads")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "no roster loaded")
}

func TestServeAPI_TopDefaultN(t *testing.T) {
	h := newTestRouter(t, apiLeads())

	rr := doGet(t, h, "/leads/top")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp topResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	assert.Equal(t, 2, resp.Count)
	require.Len(t, resp.Leads, 2)
	assert.Equal(t, "Acme Industries", resp.Leads[0].EmployerName)
	assert.Equal(t, "Delta Logistics", resp.Leads[1].EmployerName)
}

func TestServeAPI_TopExplicitN(t *testing.T) {
	h := newTestRouter(t, apiLeads())

	rr := doGet(t, h, "/leads/top?n=3&tiers=1,2")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp topResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	assert.Equal(t, 3, resp.Count)
	require.Len(t, resp.Leads, 3)
	assert.Equal(t, "Bolt Manufacturing", resp.Leads[2].EmployerName)
}

func TestServeAPI_TopBadN(t *testing.T) {
	h := newTestRouter(t, apiLeads())

	rr := doGet(t, h, "/leads/top?n=zero")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doGet(t, h, "/leads/top?n=-1")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "n must be positive")
}

func TestServeAPI_Stats(t *testing.T) {
	h := newTestRouter(t, apiLeads())

	rr := doGet(t, h, "/stats")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp rosterStats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	assert.Equal(t, 5, resp.Summary.Total)
	assert.Equal(t, 2, resp.Summary.TierCounts[model.Tier1])
	assert.Equal(t, 2, resp.Summary.TierCounts[model.Tier2])
	assert.Equal(t, 1, resp.Summary.TierCounts[model.Tier3])
	assert.Equal(t, 2, resp.Summary.LargeMarket)

	require.NotEmpty(t, resp.States)
	assert.Equal(t, "MA", resp.States[0].State)
	assert.Equal(t, 2, resp.States[0].Count)

	assert.NotEmpty(t, resp.Histogram)
}

func TestServeAPI_StatsFiltered(t *testing.T) {
	h := newTestRouter(t, apiLeads())

	rr := doGet(t, h, "/stats?tiers=1")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp rosterStats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	assert.Equal(t, 2, resp.Summary.Total)
	assert.Equal(t, 2, resp.Summary.TierCounts[model.Tier1])
	assert.Zero(t, resp.Summary.TierCounts[model.Tier3])
}

func TestResolvePort_FlagSet(t *testing.T) {
	assert.Equal(t, 9090, resolvePort(9090, 8080))
}

func TestResolvePort_FlagZero(t *testing.T) {
	assert.Equal(t, 8080, resolvePort(0, 8080))
}
