package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/feedbackflow/backend/models"
	"github.com/feedbackflow/backend/services"
)

func newSubmitRouter(status string) (*mux.Router, *memAnswerRepo, *memResponseRepo) {
	question := models.Question{
		Model:        gorm.Model{ID: 10},
		SurveyID:     1,
		Type:         "RATING",
		QuestionText: "How satisfied are you?",
		OrderNumber:  intPtr(1),
		Required:     true,
	}
	surveys := &memSurveyRepo{surveys: []models.Survey{{
		Model:     gorm.Model{ID: 1},
		Title:     "Team Pulse",
		Status:    status,
		Questions: []models.Question{question},
	}}}
	answers := &memAnswerRepo{}
	responses := &memResponseRepo{}

	svc := services.NewResponseService(surveys, answers, responses, zap.NewNop())
	handler := NewResponseHandler(svc, zap.NewNop())

	router := mux.NewRouter()
	router.HandleFunc("/api/surveys/{id:[0-9]+}/responses", handler.Submit).Methods("POST")
	return router, answers, responses
}

func submitBody(t *testing.T, req services.SubmitRequest) *bytes.Reader {
	body, err := json.Marshal(req)
	require.NoError(t, err)
	return bytes.NewReader(body)
}

func TestSubmitEndpoint(t *testing.T) {
	t.Run("accepts anonymous submission", func(t *testing.T) {
		router, answers, responses := newSubmitRouter(models.StatusActive)

		req := httptest.NewRequest("POST", "/api/surveys/1/responses", submitBody(t, services.SubmitRequest{
			Answers: []services.SubmittedAnswer{{QuestionID: 10, RatingValue: intPtr(5)}},
		}))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		require.Len(t, answers.answers, 1)
		assert.Nil(t, answers.answers[0].UserID)
		assert.Len(t, responses.responses, 1)
	})

	t.Run("closed survey", func(t *testing.T) {
		router, _, _ := newSubmitRouter(models.StatusInactive)

		req := httptest.NewRequest("POST", "/api/surveys/1/responses", submitBody(t, services.SubmitRequest{
			Answers: []services.SubmittedAnswer{{QuestionID: 10, RatingValue: intPtr(5)}},
		}))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusGone, rr.Code)
	})

	t.Run("missing required answer", func(t *testing.T) {
		router, _, _ := newSubmitRouter(models.StatusActive)

		req := httptest.NewRequest("POST", "/api/surveys/1/responses", submitBody(t, services.SubmitRequest{}))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "required")
	})

	t.Run("unknown survey", func(t *testing.T) {
		router, _, _ := newSubmitRouter(models.StatusActive)

		req := httptest.NewRequest("POST", "/api/surveys/999/responses", submitBody(t, services.SubmitRequest{
			Answers: []services.SubmittedAnswer{{QuestionID: 10, RatingValue: intPtr(5)}},
		}))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		router, _, _ := newSubmitRouter(models.StatusActive)

		req := httptest.NewRequest("POST", "/api/surveys/1/responses", bytes.NewReader([]byte("{broken")))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
