package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/feedbackflow/backend/services"
)

// AnalyticsHandler serves the admin dashboard widgets.
type AnalyticsHandler struct {
	analytics *services.AnalyticsService
	log       *zap.Logger
}

func NewAnalyticsHandler(analytics *services.AnalyticsService, log *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, log: log}
}

func (h *AnalyticsHandler) ResponseTrends(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 7)
	if days < 1 || days > 90 {
		days = 7
	}

	trends, err := h.analytics.ResponseTrends(days)
	if err != nil {
		h.log.Error("building response trends failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, trends)
}

func (h *AnalyticsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.analytics.DashboardOverview()
	if err != nil {
		h.log.Error("building dashboard overview failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (h *AnalyticsHandler) SurveyPerformance(w http.ResponseWriter, r *http.Request) {
	performance, err := h.analytics.SurveyPerformance()
	if err != nil {
		h.log.Error("building survey performance failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, performance)
}

func (h *AnalyticsHandler) RecentResponses(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10)
	if limit < 1 || limit > 100 {
		limit = 10
	}

	recent, err := h.analytics.RecentResponses(limit)
	if err != nil {
		h.log.Error("loading recent responses failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, recent)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
