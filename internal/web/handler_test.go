package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/inaiurai/leaderboard/internal/demo"
	"github.com/inaiurai/leaderboard/internal/models"
	"github.com/inaiurai/leaderboard/internal/source"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

// failingSource fails every call with a fetch error.
type failingSource struct{}

func (failingSource) ListAgents(context.Context, source.Filter) ([]models.Agent, error) {
	return nil, &source.FetchError{Op: "list agents", StatusCode: http.StatusServiceUnavailable}
}

func (failingSource) GetAgent(context.Context, string) (models.Agent, error) {
	return models.Agent{}, &source.FetchError{Op: "get agent", Err: errors.New("connection reset")}
}

func (failingSource) Stats(context.Context) (models.AggregateStats, error) {
	return models.AggregateStats{}, &source.FetchError{Op: "stats", StatusCode: http.StatusServiceUnavailable}
}

// recordingSource serves the demo data and remembers the last filter.
type recordingSource struct {
	demo.Source
	last source.Filter
}

func (s *recordingSource) ListAgents(ctx context.Context, f source.Filter) ([]models.Agent, error) {
	s.last = f
	return s.Source.ListAgents(ctx, f)
}

func serve(t *testing.T, h *Handler, pattern, target string) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	switch pattern {
	case "GET /":
		mux.HandleFunc("GET /{$}", h.Leaderboard)
	case "GET /agents/{id}":
		mux.HandleFunc(pattern, h.Agent)
	case "GET /api/v1/leaderboard":
		mux.HandleFunc(pattern, h.LeaderboardJSON)
	case "GET /api/v1/agents":
		mux.HandleFunc(pattern, h.ListAgentsJSON)
	case "GET /api/v1/agents/{id}":
		mux.HandleFunc(pattern, h.GetAgentJSON)
	case "GET /api/v1/stats":
		mux.HandleFunc(pattern, h.StatsJSON)
	default:
		t.Fatalf("unknown pattern %q", pattern)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

// ---------------------------------------------------------------------------
// HTML
// ---------------------------------------------------------------------------

func TestLeaderboardPage(t *testing.T) {
	rec := serve(t, NewHandler(demo.Source{}, nil), "GET /", "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"Agent Leaderboard",
		"156",          // total agents
		"64%",          // average reputation
		"2,341",        // jobs completed
		"$45.0K",       // total distributed
		"🥇",            // podium
		"ClawdAssistant",
		"0x742d...0bEb",
		"🏆 Legendary",
		"$12.5K",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(body, emptyMessage) {
		t.Error("empty state shown with results")
	}
	if strings.Contains(body, "Page 1 of") {
		t.Error("pagination should be hidden for a single page")
	}
}

func TestLeaderboardPage_Empty(t *testing.T) {
	rec := serve(t, NewHandler(demo.Source{}, nil), "GET /", "/?q=nobody")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), emptyMessage) {
		t.Error("empty state message missing")
	}
}

func TestLeaderboardPage_PastTheEnd(t *testing.T) {
	rec := serve(t, NewHandler(demo.Source{}, nil), "GET /", "/?page=3")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, emptyMessage) {
		t.Error("empty state message missing")
	}
	if !strings.Contains(body, "Page 3 of 1") || !strings.Contains(body, `<a href="/">← Prev</a>`) {
		t.Errorf("expected a Prev link back to the first page:\n%s", body)
	}
}

func TestLeaderboardPage_ReputationFloorReachesSource(t *testing.T) {
	src := &recordingSource{}
	rec := serve(t, NewHandler(src, nil), "GET /", "/?min_reputation=93")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if src.last.MinReputation != 93 {
		t.Errorf("source filter = %+v", src.last)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "MoltbookCurator") || strings.Contains(body, "CodeReviewer") {
		t.Error("reputation floor not applied")
	}
}

func TestLeaderboardPage_FetchFailure(t *testing.T) {
	rec := serve(t, NewHandler(failingSource{}, nil), "GET /", "/?q=x")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, fetchFailedMessage) || !strings.Contains(body, "Retry") {
		t.Errorf("error panel missing: %s", body)
	}
}

func TestAgentPage(t *testing.T) {
	id := demo.Agents()[0].ID
	rec := serve(t, NewHandler(demo.Source{}, nil), "GET /agents/{id}", "/agents/"+id)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "ClawdAssistant") || !strings.Contains(body, id) {
		t.Error("detail page missing agent data")
	}
}

func TestAgentPage_NotFound(t *testing.T) {
	rec := serve(t, NewHandler(demo.Source{}, nil), "GET /agents/{id}", "/agents/0xnope")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

// ---------------------------------------------------------------------------
// JSON API
// ---------------------------------------------------------------------------

func TestLeaderboardJSON(t *testing.T) {
	rec := serve(t, NewHandler(demo.Source{}, nil), "GET /api/v1/leaderboard", "/api/v1/leaderboard?min_reputation=90&sort=name&order=asc")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Page     []models.Agent        `json:"page"`
		TopThree []models.Agent        `json:"top_three"`
		Total    int                   `json:"total"`
		Stats    models.AggregateStats `json:"stats"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 3 || len(resp.TopThree) != 3 {
		t.Fatalf("total=%d podium=%d", resp.Total, len(resp.TopThree))
	}
	if resp.Page[0].Name != "ClawdAssistant" || resp.Page[2].Name != "MoltbookCurator" {
		t.Errorf("unexpected order: %s, %s, %s", resp.Page[0].Name, resp.Page[1].Name, resp.Page[2].Name)
	}
	if resp.Stats.TotalAgents != 156 {
		t.Errorf("stats = %+v", resp.Stats)
	}
}

func TestLeaderboardJSON_FetchFailure(t *testing.T) {
	rec := serve(t, NewHandler(failingSource{}, nil), "GET /api/v1/leaderboard", "/api/v1/leaderboard")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	var body map[string]string
	_ = json.NewDecoder(rec.Body).Decode(&body)
	if body["error"] == "" {
		t.Error("expected an error message")
	}
}

func TestListAgentsJSON(t *testing.T) {
	src := &recordingSource{}
	rec := serve(t, NewHandler(src, nil), "GET /api/v1/agents", "/api/v1/agents?min_reputation=70&specialty=coding&available=true")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if src.last.MinReputation != 70 || src.last.Specialty != "coding" || src.last.Available == nil || !*src.last.Available {
		t.Errorf("filter not forwarded: %+v", src.last)
	}
}

func TestListAgentsJSON_BadParams(t *testing.T) {
	h := NewHandler(demo.Source{}, nil)
	for _, target := range []string{"/api/v1/agents?min_reputation=high", "/api/v1/agents?min_reputation=101", "/api/v1/agents?available=perhaps"} {
		if rec := serve(t, h, "GET /api/v1/agents", target); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}

func TestGetAgentJSON(t *testing.T) {
	h := NewHandler(demo.Source{}, nil)
	id := demo.Agents()[7].ID
	rec := serve(t, h, "GET /api/v1/agents/{id}", "/api/v1/agents/"+id)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var a models.Agent
	if err := json.NewDecoder(rec.Body).Decode(&a); err != nil || a.Name != "BugHunter" {
		t.Errorf("unexpected agent %+v (%v)", a, err)
	}

	if rec := serve(t, h, "GET /api/v1/agents/{id}", "/api/v1/agents/unknown"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown id: expected 404, got %d", rec.Code)
	}
	if rec := serve(t, NewHandler(failingSource{}, nil), "GET /api/v1/agents/{id}", "/api/v1/agents/"+id); rec.Code != http.StatusBadGateway {
		t.Errorf("failing source: expected 502, got %d", rec.Code)
	}
}

func TestStatsJSON(t *testing.T) {
	rec := serve(t, NewHandler(demo.Source{}, nil), "GET /api/v1/stats", "/api/v1/stats")
	var st models.AggregateStats
	if err := json.NewDecoder(rec.Body).Decode(&st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st != demo.Stats() {
		t.Errorf("stats = %+v", st)
	}
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHandler(demo.Source{}, nil).Health(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("unexpected health response %d %s", rec.Code, rec.Body.String())
	}
}
