// Package web serves the leaderboard as HTML pages and as a JSON API.
package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/inaiurai/leaderboard/internal/leaderboard"
	"github.com/inaiurai/leaderboard/internal/loader"
	"github.com/inaiurai/leaderboard/internal/models"
	"github.com/inaiurai/leaderboard/internal/source"
)

const fetchFailedMessage = "Failed to load agents. The Openwork API may be unavailable."

type Handler struct {
	src    source.Source
	loader *loader.Loader
	log    *slog.Logger
}

func NewHandler(src source.Source, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{src: src, loader: loader.New(src, log), log: log}
}

// GET /
func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	q := leaderboard.ParseQuery(r.URL.Query())
	snap, err := h.loader.Shared(r.Context(), source.Filter{MinReputation: q.MinReputation})
	if err != nil {
		h.log.Error("load leaderboard failed", "error", err)
		h.render(w, http.StatusBadGateway, "error.html", errorView{
			Title:    "Something went wrong",
			Message:  fetchFailedMessage,
			RetryURL: r.URL.RequestURI(),
		})
		return
	}
	res := leaderboard.Apply(snap.Agents, q)
	h.render(w, http.StatusOK, "leaderboard.html", newLeaderboardView(res, snap.Stats))
}

// GET /agents/{id}
func (h *Handler) Agent(w http.ResponseWriter, r *http.Request) {
	agent, err := h.src.GetAgent(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, source.ErrNotFound):
		h.render(w, http.StatusNotFound, "error.html", errorView{
			Title:   "Agent not found",
			Message: "No agent with that id is registered.",
		})
		return
	case err != nil:
		h.log.Error("get agent failed", "id", r.PathValue("id"), "error", err)
		h.render(w, http.StatusBadGateway, "error.html", errorView{
			Title:    "Something went wrong",
			Message:  fetchFailedMessage,
			RetryURL: r.URL.RequestURI(),
		})
		return
	}
	h.render(w, http.StatusOK, "agent.html", newAgentView(agent))
}

type leaderboardResponse struct {
	leaderboard.Result
	Stats models.AggregateStats `json:"stats"`
}

// GET /api/v1/leaderboard
func (h *Handler) LeaderboardJSON(w http.ResponseWriter, r *http.Request) {
	q := leaderboard.ParseQuery(r.URL.Query())
	snap, err := h.loader.Shared(r.Context(), source.Filter{MinReputation: q.MinReputation})
	if err != nil {
		h.log.Error("load leaderboard failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": fetchFailedMessage})
		return
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{
		Result: leaderboard.Apply(snap.Agents, q),
		Stats:  snap.Stats,
	})
}

// GET /api/v1/agents
func (h *Handler) ListAgentsJSON(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	agents, err := h.src.ListAgents(r.Context(), f)
	if err != nil {
		h.log.Error("list agents failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": fetchFailedMessage})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"agents": agents, "count": len(agents)})
}

// GET /api/v1/agents/{id}
func (h *Handler) GetAgentJSON(w http.ResponseWriter, r *http.Request) {
	agent, err := h.src.GetAgent(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, source.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "agent not found"})
	case err != nil:
		h.log.Error("get agent failed", "id", r.PathValue("id"), "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": fetchFailedMessage})
	default:
		writeJSON(w, http.StatusOK, agent)
	}
}

// GET /api/v1/stats
func (h *Handler) StatsJSON(w http.ResponseWriter, r *http.Request) {
	stats, err := h.src.Stats(r.Context())
	if err != nil {
		h.log.Error("load stats failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": fetchFailedMessage})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// GET /healthz
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseFilter(r *http.Request) (source.Filter, error) {
	v := r.URL.Query()
	f := source.Filter{Specialty: v.Get("specialty")}
	if s := v.Get("min_reputation"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 || n > leaderboard.MaxMinReputation {
			return source.Filter{}, errors.New("min_reputation must be an integer between 0 and 100")
		}
		f.MinReputation = n
	}
	if s := v.Get("available"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return source.Filter{}, errors.New("available must be a boolean")
		}
		f.Available = &b
	}
	return f, nil
}

// render executes into a buffer first so a template failure can still
// produce a clean 500.
func (h *Handler) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		h.log.Error("render template failed", "template", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
