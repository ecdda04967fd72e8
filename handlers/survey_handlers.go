package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/feedbackflow/backend/models"
	"github.com/feedbackflow/backend/services"
)

// SurveyHandler exposes the admin survey CRUD and lifecycle routes.
type SurveyHandler struct {
	admin *services.SurveyAdminService
	log   *zap.Logger
}

func NewSurveyHandler(admin *services.SurveyAdminService, log *zap.Logger) *SurveyHandler {
	return &SurveyHandler{admin: admin, log: log}
}

func (h *SurveyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateSurveyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	survey, err := h.admin.Create(req)
	if err != nil {
		h.writeServiceError(w, err, "creating survey failed")
		return
	}
	writeJSON(w, http.StatusCreated, survey)
}

func (h *SurveyHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.admin.ListWithStats()
	if err != nil {
		h.writeServiceError(w, err, "listing surveys failed")
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *SurveyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := surveyID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid survey ID")
		return
	}

	survey, err := h.admin.Get(id)
	if err != nil {
		h.writeServiceError(w, err, "loading survey failed")
		return
	}
	writeJSON(w, http.StatusOK, survey)
}

func (h *SurveyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := surveyID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid survey ID")
		return
	}

	var req services.UpdateSurveyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	survey, err := h.admin.Update(id, req)
	if err != nil {
		h.writeServiceError(w, err, "updating survey failed")
		return
	}
	writeJSON(w, http.StatusOK, survey)
}

func (h *SurveyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := surveyID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid survey ID")
		return
	}

	if err := h.admin.Delete(id); err != nil {
		h.writeServiceError(w, err, "deleting survey failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Survey deleted"})
}

func (h *SurveyHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, models.StatusActive)
}

func (h *SurveyHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, models.StatusInactive)
}

func (h *SurveyHandler) setStatus(w http.ResponseWriter, r *http.Request, status string) {
	id, ok := surveyID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid survey ID")
		return
	}

	survey, err := h.admin.SetStatus(id, status)
	if err != nil {
		h.writeServiceError(w, err, "changing survey status failed")
		return
	}
	writeJSON(w, http.StatusOK, survey)
}

func (h *SurveyHandler) writeServiceError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, services.ErrSurveyNotFound):
		writeError(w, http.StatusNotFound, "Survey not found")
	case errors.Is(err, services.ErrDuplicateTitle):
		writeError(w, http.StatusConflict, "A survey with this title already exists")
	case errors.Is(err, services.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error(logMsg, zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
