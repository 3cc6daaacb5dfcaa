package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/fortuna/gridiron/internal/export"
	"github.com/fortuna/gridiron/internal/jobs"
	"github.com/fortuna/gridiron/internal/league"
	"github.com/fortuna/gridiron/internal/store"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Handler contains dependencies for HTTP handlers.
type Handler struct {
	deps Deps
	log  zerolog.Logger
}

// NewHandler creates a new handler.
func NewHandler(deps Deps, log zerolog.Logger) *Handler {
	if deps.Version == "" {
		deps.Version = "dev"
	}
	return &Handler{deps: deps, log: log}
}

// HealthCheck reports service health and the result of each dependency check.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status := "healthy"
	code := http.StatusOK
	checks := map[string]string{}
	for name, check := range h.deps.Checks {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	respondJSON(w, code, map[string]interface{}{
		"status":  status,
		"service": "gridiron",
		"version": h.deps.Version,
		"checks":  checks,
	})
}

type apiExportRequest struct {
	LeagueID          int64  `json:"league_id"`
	Season            int    `json:"season"`
	TeamID            int    `json:"team_id"`
	Week              int    `json:"week"`
	Variant           string `json:"variant"`
	FreeAgentPosition string `json:"free_agent_position"`
	FreeAgentSize     int    `json:"free_agent_size"`
	ActivityType      string `json:"activity_type"`
	ActivitySize      int    `json:"activity_size"`
}

// toJobRequest fills unset fields from the server defaults.
func (a apiExportRequest) toJobRequest(defaults jobs.Request) jobs.Request {
	req := defaults
	req.Source = jobs.SourceAPI
	if a.LeagueID != 0 {
		req.LeagueID = a.LeagueID
	}
	if a.Season != 0 {
		req.Season = a.Season
	}
	if a.TeamID != 0 {
		req.TeamID = a.TeamID
	}
	req.Week = a.Week
	if a.Variant != "" {
		req.Variant = export.Variant(a.Variant)
	}
	if a.FreeAgentPosition != "" {
		req.FreeAgents.Position = a.FreeAgentPosition
	}
	if a.FreeAgentSize != 0 {
		req.FreeAgents.Size = a.FreeAgentSize
	}
	if a.ActivityType != "" {
		req.Activity.Type = a.ActivityType
	}
	if a.ActivitySize != 0 {
		req.Activity.Size = a.ActivitySize
	}
	return req
}

// CreateExport handles POST /api/v1/exports.
func (h *Handler) CreateExport(w http.ResponseWriter, r *http.Request) {
	var body apiExportRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	job, err := h.deps.Exports.Enqueue(r.Context(), body.toJobRequest(h.deps.Defaults))
	switch {
	case errors.Is(err, league.ErrConfig), errors.Is(err, league.ErrInvalidWeek):
		respondError(w, http.StatusBadRequest, "Invalid export request", err)
		return
	case errors.Is(err, jobs.ErrQueueFull):
		respondError(w, http.StatusServiceUnavailable, "Export queue is full", err)
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, "Failed to queue export", err)
		return
	}

	respondJSON(w, http.StatusAccepted, job)
}

// GetExport handles GET /api/v1/exports/{id}. Live jobs are served from
// memory, older ones from history.
func (h *Handler) GetExport(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if job, err := h.deps.Exports.Get(id); err == nil {
		respondJSON(w, http.StatusOK, job)
		return
	}

	run, err := h.historyRun(r.Context(), id)
	if err != nil {
		h.respondLookupError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, run)
}

// ListExports handles GET /api/v1/exports?limit=N.
func (h *Handler) ListExports(w http.ResponseWriter, r *http.Request) {
	if h.deps.History == nil {
		respondError(w, http.StatusNotImplemented, "Export history is not configured", nil)
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			respondError(w, http.StatusBadRequest, "limit must be between 1 and 500", err)
			return
		}
		limit = n
	}

	runs, err := h.deps.History.ListRecent(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list exports", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"exports": runs,
		"count":   len(runs),
	})
}

// GetExportDocument handles GET /api/v1/exports/{id}/document and returns
// the written JSON file.
func (h *Handler) GetExportDocument(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var status, path string
	if job, err := h.deps.Exports.Get(id); err == nil {
		status, path = string(job.Status), job.FilePath
	} else {
		run, err := h.historyRun(r.Context(), id)
		if err != nil {
			h.respondLookupError(w, err)
			return
		}
		status, path = run.Status, run.FilePath
	}

	if path == "" {
		respondError(w, http.StatusConflict, "Export has no document (status "+status+")", nil)
		return
	}

	body, err := os.ReadFile(path)
	if err != nil {
		respondError(w, http.StatusGone, "Export file is no longer available", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *Handler) historyRun(ctx context.Context, id string) (*store.ExportRun, error) {
	if h.deps.History == nil {
		return nil, store.ErrNotFound
	}
	return h.deps.History.Get(ctx, id)
}

func (h *Handler) respondLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Export not found", err)
		return
	}
	respondError(w, http.StatusInternalServerError, "Failed to load export", err)
}

// respondJSON writes a JSON response.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response.
func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	respondJSON(w, status, response)
}
