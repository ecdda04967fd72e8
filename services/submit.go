package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/feedbackflow/backend/models"
	"github.com/feedbackflow/backend/repository"
	"go.uber.org/zap"
)

var (
	// ErrSurveyClosed reports a submission against a survey that is
	// not accepting responses (wrong status or past its end date).
	ErrSurveyClosed = errors.New("survey is not accepting responses")
	// ErrValidation wraps request-level submission problems.
	ErrValidation = errors.New("invalid submission")
)

type SubmittedAnswer struct {
	QuestionID  uint    `json:"questionId"`
	AnswerValue *string `json:"answerValue,omitempty"`
	RatingValue *int    `json:"ratingValue,omitempty"`
}

type SubmitRequest struct {
	Answers               []SubmittedAnswer `json:"answers"`
	CompletionTimeSeconds *int              `json:"completionTimeSeconds,omitempty"`
}

// ResponseService persists survey submissions: one Response metadata
// record per submission event plus one Answer row per answered question.
type ResponseService struct {
	surveys   repository.SurveyRepository
	answers   repository.AnswerRepository
	responses repository.ResponseRepository
	log       *zap.Logger
}

func NewResponseService(surveys repository.SurveyRepository, answers repository.AnswerRepository,
	responses repository.ResponseRepository, log *zap.Logger) *ResponseService {
	return &ResponseService{surveys: surveys, answers: answers, responses: responses, log: log}
}

// Submit validates and stores one submission. userID is nil for
// anonymous respondents.
func (s *ResponseService) Submit(surveyID uint, req SubmitRequest, userID *uint) error {
	survey, err := s.surveys.FindByIDWithQuestions(surveyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: id %d", ErrSurveyNotFound, surveyID)
		}
		return err
	}

	if !strings.EqualFold(survey.Status, models.StatusActive) {
		return ErrSurveyClosed
	}
	if survey.EndDate != nil && time.Now().After(*survey.EndDate) {
		return fmt.Errorf("%w: survey has expired", ErrSurveyClosed)
	}

	questionsByID := make(map[uint]models.Question, len(survey.Questions))
	for _, q := range survey.Questions {
		questionsByID[q.ID] = q
	}

	if err := validateRequiredQuestions(questionsByID, req.Answers); err != nil {
		return err
	}

	// Build every row before the first write so a bad answer late in
	// the list cannot leave a partial submission behind.
	rows := make([]*models.Answer, 0, len(req.Answers))
	for _, submitted := range req.Answers {
		question, ok := questionsByID[submitted.QuestionID]
		if !ok {
			return fmt.Errorf("%w: question %d is not part of survey %d",
				ErrValidation, submitted.QuestionID, surveyID)
		}

		answer, ok, err := buildAnswer(question, submitted, userID)
		if err != nil {
			return err
		}
		if !ok {
			continue // empty optional answer
		}
		rows = append(rows, answer)
	}

	if err := s.responses.Create(&models.Response{
		SurveyID:              surveyID,
		UserID:                userID,
		CompletionTimeSeconds: req.CompletionTimeSeconds,
	}); err != nil {
		return err
	}
	for _, answer := range rows {
		if err := s.answers.Create(answer); err != nil {
			return err
		}
	}

	s.log.Info("Survey response submitted",
		zap.Uint("surveyID", surveyID),
		zap.Int("answers", len(req.Answers)),
		zap.Bool("anonymous", userID == nil),
	)
	return nil
}

// buildAnswer converts one submitted value into an Answer row. The
// second return value is false when the answer is empty and skippable.
func buildAnswer(question models.Question, submitted SubmittedAnswer, userID *uint) (*models.Answer, bool, error) {
	isRating := strings.EqualFold(question.Type, "RATING")

	if isRating {
		if submitted.RatingValue == nil {
			if question.Required {
				return nil, false, fmt.Errorf("%w: answer is required for question: %s",
					ErrValidation, question.QuestionText)
			}
			return nil, false, nil
		}
		if *submitted.RatingValue < 0 || *submitted.RatingValue > 5 {
			return nil, false, fmt.Errorf("%w: rating value must be between 0 and 5 for question: %s",
				ErrValidation, question.QuestionText)
		}
		rating := *submitted.RatingValue
		// Placeholder text keeps rating rows readable in raw exports.
		text := "RATING:" + fmt.Sprint(rating)
		return &models.Answer{
			QuestionID:  question.ID,
			UserID:      userID,
			AnswerText:  &text,
			RatingValue: &rating,
		}, true, nil
	}

	if submitted.AnswerValue == nil || strings.TrimSpace(*submitted.AnswerValue) == "" {
		if question.Required {
			return nil, false, fmt.Errorf("%w: answer is required for question: %s",
				ErrValidation, question.QuestionText)
		}
		return nil, false, nil
	}
	text := strings.TrimSpace(*submitted.AnswerValue)
	return &models.Answer{
		QuestionID: question.ID,
		UserID:     userID,
		AnswerText: &text,
	}, true, nil
}

func validateRequiredQuestions(questionsByID map[uint]models.Question, answers []SubmittedAnswer) error {
	answered := make(map[uint]bool)
	for _, a := range answers {
		question, ok := questionsByID[a.QuestionID]
		if !ok {
			continue
		}
		if strings.EqualFold(question.Type, "RATING") {
			if a.RatingValue != nil && *a.RatingValue >= 0 && *a.RatingValue <= 5 {
				answered[a.QuestionID] = true
			}
		} else if a.AnswerValue != nil && strings.TrimSpace(*a.AnswerValue) != "" {
			answered[a.QuestionID] = true
		}
	}

	var missing []string
	for _, q := range questionsByID {
		if q.Required && !answered[q.ID] {
			missing = append(missing, q.QuestionText)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w: please answer all required questions: %s",
			ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}
