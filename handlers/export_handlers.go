package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/feedbackflow/backend/services"
)

// ExportHandler streams the CSV analysis report as a download.
type ExportHandler struct {
	export *services.ExportService
	log    *zap.Logger
}

func NewExportHandler(export *services.ExportService, log *zap.Logger) *ExportHandler {
	return &ExportHandler{export: export, log: log}
}

func (h *ExportHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	id, ok := surveyID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid survey ID")
		return
	}

	options := services.DefaultExportOptions()
	query := r.URL.Query()
	if query.Get("questionAnalysis") == "false" {
		options.IncludeQuestionAnalysis = false
	}
	if query.Get("respondentData") == "false" {
		options.IncludeRespondentData = false
	}
	if query.Get("rawResponses") == "false" {
		options.IncludeRawResponses = false
	}

	data, err := h.export.ExportSurveyAnalysisCSV(id, options)
	if err != nil {
		if errors.Is(err, services.ErrSurveyNotFound) {
			writeError(w, http.StatusNotFound, "Survey not found")
			return
		}
		h.log.Error("exporting survey failed", zap.Uint("surveyID", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", services.ExportFilename(id)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
