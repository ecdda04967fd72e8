package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/feedbackflow/backend/auth"
	"github.com/feedbackflow/backend/services"
)

// UserHandler serves the participant dashboard and own-response views.
type UserHandler struct {
	users *services.UserService
	log   *zap.Logger
}

func NewUserHandler(users *services.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{users: users, log: log}
}

func (h *UserHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	dashboard, err := h.users.Dashboard(userID)
	if err != nil {
		h.log.Error("building user dashboard failed", zap.Uint("userID", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

func (h *UserHandler) MyResponse(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, ok := surveyID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid survey ID")
		return
	}

	response, err := h.users.MyResponse(userID, id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSurveyNotFound):
			writeError(w, http.StatusNotFound, "Survey not found")
		case errors.Is(err, services.ErrResponseNotFound):
			writeError(w, http.StatusNotFound, "No response found for this survey")
		default:
			h.log.Error("loading user response failed", zap.Uint("userID", userID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	writeJSON(w, http.StatusOK, response)
}
