package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/feedbackflow/backend/services"
)

// ResultsHandler serves the aggregated results view of a survey.
type ResultsHandler struct {
	results *services.SurveyService
	log     *zap.Logger
}

func NewResultsHandler(results *services.SurveyService, log *zap.Logger) *ResultsHandler {
	return &ResultsHandler{results: results, log: log}
}

func (h *ResultsHandler) GetSurveyResults(w http.ResponseWriter, r *http.Request) {
	id, ok := surveyID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid survey ID")
		return
	}

	results, err := h.results.GetSurveyResults(id)
	if err != nil {
		if errors.Is(err, services.ErrSurveyNotFound) {
			writeError(w, http.StatusNotFound, "Survey not found")
			return
		}
		h.log.Error("building survey results failed", zap.Uint("surveyID", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, results)
}
