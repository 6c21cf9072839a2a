package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/sgt-project/sgt-api/internal/api/shared"
	"github.com/sgt-project/sgt-api/internal/service/analytics"
)

// dateParamLayout is the format of the start/end query parameters.
const dateParamLayout = "2006-01-02"

// AnalyticsHandler serves per-board metric reports.
type AnalyticsHandler struct {
	analyticsService analytics.Service
}

// NewAnalyticsHandler creates a new AnalyticsHandler with the given dependencies.
func NewAnalyticsHandler(analyticsService analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// Overview handles GET /boards/{id}/analytics/overview.
func (h *AnalyticsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActorFromRequest(w, r)
	if !ok {
		return
	}

	boardID, err := getPathUUID(r, "id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	report, err := h.analyticsService.Overview(r.Context(), actor, boardID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, report)
}

// Productivity handles GET /boards/{id}/analytics/productivity. The
// optional window query parameter sets the lookback in days.
func (h *AnalyticsHandler) Productivity(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActorFromRequest(w, r)
	if !ok {
		return
	}

	boardID, err := getPathUUID(r, "id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	windowDays := 30
	if raw := r.URL.Query().Get("window"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid window parameter")
			return
		}
		windowDays = parsed
	}

	report, err := h.analyticsService.Productivity(r.Context(), actor, boardID, windowDays)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, report)
}

// Bottlenecks handles GET /boards/{id}/analytics/bottlenecks.
func (h *AnalyticsHandler) Bottlenecks(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActorFromRequest(w, r)
	if !ok {
		return
	}

	boardID, err := getPathUUID(r, "id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	entries, err := h.analyticsService.Bottlenecks(r.Context(), actor, boardID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, entries)
}

// Workload handles GET /boards/{id}/analytics/workload.
func (h *AnalyticsHandler) Workload(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActorFromRequest(w, r)
	if !ok {
		return
	}

	boardID, err := getPathUUID(r, "id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	entries, err := h.analyticsService.Workload(r.Context(), actor, boardID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, entries)
}

// TimeInStates handles GET /boards/{id}/analytics/time-in-states.
func (h *AnalyticsHandler) TimeInStates(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActorFromRequest(w, r)
	if !ok {
		return
	}

	boardID, err := getPathUUID(r, "id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	report, err := h.analyticsService.TimeInStates(r.Context(), actor, boardID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, report)
}

// DailyTrends handles GET /boards/{id}/analytics/trends. The optional
// days query parameter sets the number of daily buckets.
func (h *AnalyticsHandler) DailyTrends(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActorFromRequest(w, r)
	if !ok {
		return
	}

	boardID, err := getPathUUID(r, "id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid days parameter")
			return
		}
		days = parsed
	}

	entries, err := h.analyticsService.DailyTrends(r.Context(), actor, boardID, days)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, entries)
}

// TasksByState handles GET /boards/{id}/analytics/tasks-by-state. The
// optional start and end query parameters (YYYY-MM-DD) restrict the
// count to tasks created in that range, end inclusive.
func (h *AnalyticsHandler) TasksByState(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActorFromRequest(w, r)
	if !ok {
		return
	}

	boardID, err := getPathUUID(r, "id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	var start, end *time.Time
	if raw := r.URL.Query().Get("start"); raw != "" {
		parsed, err := time.Parse(dateParamLayout, raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid start date, expected YYYY-MM-DD")
			return
		}
		start = &parsed
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		parsed, err := time.Parse(dateParamLayout, raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid end date, expected YYYY-MM-DD")
			return
		}
		end = &parsed
	}

	entries, err := h.analyticsService.TasksByState(r.Context(), actor, boardID, start, end)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, entries)
}
