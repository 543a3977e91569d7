package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leads-cli/internal/config"
	"github.com/sells-group/leads-cli/internal/engine"
	"github.com/sells-group/leads-cli/internal/model"
	"github.com/sells-group/leads-cli/internal/store"
)

// leadAPI serves the read-only lead endpoints. Handlers fetch the latest
// snapshot per request so a concurrent load is picked up without restarts.
type leadAPI struct {
	store    store.Store
	outreach config.OutreachConfig
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (a *leadAPI) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// snapshot fetches the roster handlers operate on, writing the error
// response itself on failure.
func (a *leadAPI) snapshot(w http.ResponseWriter, r *http.Request) (*model.Snapshot, bool) {
	snap, err := a.store.LatestSnapshot(r.Context())
	if err != nil {
		zap.L().Error("api: latest snapshot", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "no roster loaded")
		return nil, false
	}
	return snap, true
}

type leadsResponse struct {
	Snapshot  string        `json:"snapshot"`
	Total     int           `json:"total"`
	Page      int           `json:"page"`
	PageSize  int           `json:"page_size"`
	PageCount int           `json:"page_count"`
	Leads     []*model.Lead `json:"leads"`
}

func (a *leadAPI) handleLeads(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	req, err := filterFromQuery(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	page, err := intParam(q, "page", 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	pageSize, err := intParam(q, "page_size", a.outreach.PageSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if pageSize < 1 || pageSize > 500 {
		writeError(w, http.StatusBadRequest, "page_size must be between 1 and 500")
		return
	}

	ranked := false
	switch q.Get("sort") {
	case "", "roster":
	case "rank":
		ranked = true
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown sort %q", q.Get("sort")))
		return
	}

	snap, ok := a.snapshot(w, r)
	if !ok {
		return
	}

	matched := engine.Filter(snap.View(), req)
	if ranked {
		matched = engine.Rank(matched)
	}

	writeJSON(w, http.StatusOK, leadsResponse{
		Snapshot:  snap.ID,
		Total:     len(matched),
		Page:      page,
		PageSize:  pageSize,
		PageCount: engine.PageCount(len(matched), pageSize),
		Leads:     engine.Paginate(matched, pageSize, page),
	})
}

type topResponse struct {
	Snapshot string        `json:"snapshot"`
	Count    int           `json:"count"`
	Leads    []*model.Lead `json:"leads"`
}

func (a *leadAPI) handleTop(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	req, err := filterFromQuery(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	n, err := intParam(q, "n", a.outreach.TopN)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if n < 1 {
		writeError(w, http.StatusBadRequest, "n must be positive")
		return
	}

	snap, ok := a.snapshot(w, r)
	if !ok {
		return
	}

	shortlist := engine.TopN(engine.Filter(snap.View(), req), n)
	writeJSON(w, http.StatusOK, topResponse{
		Snapshot: snap.ID,
		Count:    len(shortlist),
		Leads:    shortlist,
	})
}

func (a *leadAPI) handleStats(w http.ResponseWriter, r *http.Request) {
	req, err := filterFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, ok := a.snapshot(w, r)
	if !ok {
		return
	}

	leads := engine.Filter(snap.View(), req)
	writeJSON(w, http.StatusOK, rosterStats{
		Summary:   engine.Summarize(leads),
		States:    engine.StateDistribution(leads, a.outreach.TopStates),
		Histogram: engine.ParticipantHistogram(leads, a.outreach.HistogramBins),
	})
}

// filterFromQuery builds a FilterRequest from URL query parameters. List
// parameters take comma-separated values.
func filterFromQuery(q url.Values) (engine.FilterRequest, error) {
	var req engine.FilterRequest

	if v := q.Get("states"); v != "" {
		req.States = splitAndTrim(v)
	}
	if v := q.Get("tiers"); v != "" {
		for _, s := range splitAndTrim(v) {
			t, err := model.ParseTier(s)
			if err != nil {
				return req, err
			}
			req.Tiers = append(req.Tiers, t)
		}
	}
	if v := q.Get("segments"); v != "" {
		for _, s := range splitAndTrim(v) {
			seg, err := model.ParseMarketSegment(s)
			if err != nil {
				return req, err
			}
			req.Segments = append(req.Segments, seg)
		}
	}

	var err error
	if req.MinParticipants, err = intParam(q, "min_participants", 0); err != nil {
		return req, err
	}
	if req.MaxParticipants, err = intParam(q, "max_participants", 0); err != nil {
		return req, err
	}
	req.EmployerContains = q.Get("employer")
	req.EINContains = q.Get("ein")

	return req, nil
}

// intParam parses an optional integer query parameter.
func intParam(q url.Values, name string, def int) (int, error) {
	v := q.Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, eris.Errorf("%s must be an integer (got %q)", name, v)
	}
	return n, nil
}
