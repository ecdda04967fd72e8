package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/feedbackflow/backend/models"
)

func newSubmitFixture(status string, endDate *time.Time) (*ResponseService, *stubAnswerRepo, *stubResponseRepo) {
	rating := newQuestion(10, "RATING", "How satisfied are you?", intPtr(1))
	rating.Required = true
	text := newQuestion(11, "TEXT", "Any comments?", intPtr(2))

	survey := &models.Survey{
		Model:     gorm.Model{ID: 1, CreatedAt: testBase},
		Title:     "Team Pulse",
		Status:    status,
		EndDate:   endDate,
		Questions: []models.Question{rating, text},
	}

	surveyRepo := &stubSurveyRepo{surveys: []models.Survey{*survey}}
	answerRepo := &stubAnswerRepo{}
	responseRepo := &stubResponseRepo{}
	svc := NewResponseService(surveyRepo, answerRepo, responseRepo, zap.NewNop())
	return svc, answerRepo, responseRepo
}

func TestSubmit(t *testing.T) {
	t.Run("stores answers and response metadata", func(t *testing.T) {
		svc, answers, responses := newSubmitFixture(models.StatusActive, nil)

		req := SubmitRequest{
			Answers: []SubmittedAnswer{
				{QuestionID: 10, RatingValue: intPtr(4)},
				{QuestionID: 11, AnswerValue: strPtr("  great sprint  ")},
			},
			CompletionTimeSeconds: intPtr(95),
		}

		err := svc.Submit(1, req, uintPtr(7))
		require.NoError(t, err)

		require.Len(t, responses.responses, 1)
		assert.Equal(t, uint(1), responses.responses[0].SurveyID)
		require.NotNil(t, responses.responses[0].UserID)
		assert.Equal(t, uint(7), *responses.responses[0].UserID)
		assert.Equal(t, 95, *responses.responses[0].CompletionTimeSeconds)

		require.Len(t, answers.answers, 2)

		ratingAnswer := answers.answers[0]
		assert.Equal(t, uint(10), ratingAnswer.QuestionID)
		require.NotNil(t, ratingAnswer.RatingValue)
		assert.Equal(t, 4, *ratingAnswer.RatingValue)
		require.NotNil(t, ratingAnswer.AnswerText)
		assert.Equal(t, "RATING:4", *ratingAnswer.AnswerText)

		textAnswer := answers.answers[1]
		require.NotNil(t, textAnswer.AnswerText)
		assert.Equal(t, "great sprint", *textAnswer.AnswerText)
		assert.Nil(t, textAnswer.RatingValue)
	})

	t.Run("anonymous submission has no user id", func(t *testing.T) {
		svc, answers, _ := newSubmitFixture(models.StatusActive, nil)

		req := SubmitRequest{Answers: []SubmittedAnswer{
			{QuestionID: 10, RatingValue: intPtr(5)},
		}}

		require.NoError(t, svc.Submit(1, req, nil))
		require.Len(t, answers.answers, 1)
		assert.Nil(t, answers.answers[0].UserID)
	})

	t.Run("unknown survey", func(t *testing.T) {
		svc, _, _ := newSubmitFixture(models.StatusActive, nil)

		err := svc.Submit(999, SubmitRequest{}, nil)
		assert.ErrorIs(t, err, ErrSurveyNotFound)
	})

	t.Run("rejects inactive survey", func(t *testing.T) {
		svc, _, _ := newSubmitFixture(models.StatusDraft, nil)

		err := svc.Submit(1, SubmitRequest{Answers: []SubmittedAnswer{
			{QuestionID: 10, RatingValue: intPtr(3)},
		}}, nil)
		assert.ErrorIs(t, err, ErrSurveyClosed)
	})

	t.Run("status comparison ignores case", func(t *testing.T) {
		svc, _, _ := newSubmitFixture("active", nil)

		err := svc.Submit(1, SubmitRequest{Answers: []SubmittedAnswer{
			{QuestionID: 10, RatingValue: intPtr(3)},
		}}, nil)
		assert.NoError(t, err)
	})

	t.Run("rejects expired survey", func(t *testing.T) {
		past := time.Now().Add(-time.Hour)
		svc, _, _ := newSubmitFixture(models.StatusActive, &past)

		err := svc.Submit(1, SubmitRequest{Answers: []SubmittedAnswer{
			{QuestionID: 10, RatingValue: intPtr(3)},
		}}, nil)
		assert.ErrorIs(t, err, ErrSurveyClosed)
	})

	t.Run("missing required question", func(t *testing.T) {
		svc, _, responses := newSubmitFixture(models.StatusActive, nil)

		err := svc.Submit(1, SubmitRequest{Answers: []SubmittedAnswer{
			{QuestionID: 11, AnswerValue: strPtr("only the optional one")},
		}}, nil)

		require.ErrorIs(t, err, ErrValidation)
		assert.Contains(t, err.Error(), "How satisfied are you?")
		assert.Empty(t, responses.responses)
	})

	t.Run("rating out of range", func(t *testing.T) {
		svc, _, _ := newSubmitFixture(models.StatusActive, nil)

		err := svc.Submit(1, SubmitRequest{Answers: []SubmittedAnswer{
			{QuestionID: 10, RatingValue: intPtr(6)},
		}}, nil)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("rejects answers for foreign questions", func(t *testing.T) {
		svc, _, _ := newSubmitFixture(models.StatusActive, nil)

		err := svc.Submit(1, SubmitRequest{Answers: []SubmittedAnswer{
			{QuestionID: 10, RatingValue: intPtr(3)},
			{QuestionID: 999, AnswerValue: strPtr("stray")},
		}}, nil)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("invalid optional rating persists nothing", func(t *testing.T) {
		rating := newQuestion(10, "RATING", "How satisfied are you?", intPtr(1))
		text := newQuestion(11, "TEXT", "Any comments?", intPtr(2))
		survey := models.Survey{
			Model:     gorm.Model{ID: 1},
			Title:     "Team Pulse",
			Status:    models.StatusActive,
			Questions: []models.Question{rating, text},
		}
		answerRepo := &stubAnswerRepo{}
		responseRepo := &stubResponseRepo{}
		svc := NewResponseService(&stubSurveyRepo{surveys: []models.Survey{survey}}, answerRepo, responseRepo, zap.NewNop())

		// The valid text answer comes first; the out-of-range rating on
		// a non-required question fails afterwards.
		err := svc.Submit(1, SubmitRequest{Answers: []SubmittedAnswer{
			{QuestionID: 11, AnswerValue: strPtr("fine")},
			{QuestionID: 10, RatingValue: intPtr(9)},
		}}, nil)

		require.ErrorIs(t, err, ErrValidation)
		assert.Empty(t, responseRepo.responses)
		assert.Empty(t, answerRepo.answers)
	})

	t.Run("unknown question late in the list persists nothing", func(t *testing.T) {
		svc, answers, responses := newSubmitFixture(models.StatusActive, nil)

		err := svc.Submit(1, SubmitRequest{Answers: []SubmittedAnswer{
			{QuestionID: 10, RatingValue: intPtr(3)},
			{QuestionID: 11, AnswerValue: strPtr("fine")},
			{QuestionID: 999, AnswerValue: strPtr("stray")},
		}}, nil)

		require.ErrorIs(t, err, ErrValidation)
		assert.Empty(t, responses.responses)
		assert.Empty(t, answers.answers)
	})

	t.Run("skips empty optional answers", func(t *testing.T) {
		svc, answers, _ := newSubmitFixture(models.StatusActive, nil)

		err := svc.Submit(1, SubmitRequest{Answers: []SubmittedAnswer{
			{QuestionID: 10, RatingValue: intPtr(2)},
			{QuestionID: 11, AnswerValue: strPtr("   ")},
		}}, nil)

		require.NoError(t, err)
		require.Len(t, answers.answers, 1)
		assert.Equal(t, uint(10), answers.answers[0].QuestionID)
	})
}
