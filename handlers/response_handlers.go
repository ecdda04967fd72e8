package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/feedbackflow/backend/auth"
	"github.com/feedbackflow/backend/services"
)

// ResponseHandler accepts survey submissions from both authenticated
// and anonymous respondents.
type ResponseHandler struct {
	responses *services.ResponseService
	log       *zap.Logger
}

func NewResponseHandler(responses *services.ResponseService, log *zap.Logger) *ResponseHandler {
	return &ResponseHandler{responses: responses, log: log}
}

func (h *ResponseHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, ok := surveyID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid survey ID")
		return
	}

	var req services.SubmitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var userID *uint
	if id, authenticated := auth.UserIDFrom(r.Context()); authenticated {
		userID = &id
	}

	if err := h.responses.Submit(id, req, userID); err != nil {
		switch {
		case errors.Is(err, services.ErrSurveyNotFound):
			writeError(w, http.StatusNotFound, "Survey not found")
		case errors.Is(err, services.ErrSurveyClosed):
			writeError(w, http.StatusGone, "Survey is no longer accepting responses")
		case errors.Is(err, services.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.log.Error("submitting response failed", zap.Uint("surveyID", id), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "Response submitted"})
}
