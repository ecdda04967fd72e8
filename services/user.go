package services

import (
	"errors"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/feedbackflow/backend/models"
	"github.com/feedbackflow/backend/repository"
)

var ErrResponseNotFound = errors.New("response not found")

type UserSurveyItem struct {
	SurveyID         uint       `json:"surveyId"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	QuestionCount    int        `json:"questionCount"`
	EstimatedMinutes int        `json:"estimatedMinutes"`
	EndDate          *time.Time `json:"endDate"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
}

type UserDashboard struct {
	PendingSurveys        []UserSurveyItem `json:"pendingSurveys"`
	CompletedSurveys      []UserSurveyItem `json:"completedSurveys"`
	TotalCompleted        int              `json:"totalCompleted"`
	AverageMinutesSpent   *float64         `json:"averageMinutesSpent"`
	TotalMinutesSpent     float64          `json:"totalMinutesSpent"`
	AverageMinutesDisplay string           `json:"averageMinutesDisplay"`
}

type MySurveyResponse struct {
	SurveyID              uint             `json:"surveyId"`
	SurveyTitle           string           `json:"surveyTitle"`
	SubmittedAt           time.Time        `json:"submittedAt"`
	CompletionTimeSeconds *int             `json:"completionTimeSeconds"`
	Answers               []ResponseDetail `json:"answers"`
}

// UserService builds the participant-facing dashboard: which active
// surveys are still open for the user and what they already answered.
type UserService struct {
	surveys   repository.SurveyRepository
	answers   repository.AnswerRepository
	responses repository.ResponseRepository
	log       *zap.Logger
}

func NewUserService(surveys repository.SurveyRepository, answers repository.AnswerRepository, responses repository.ResponseRepository, log *zap.Logger) *UserService {
	return &UserService{surveys: surveys, answers: answers, responses: responses, log: log}
}

func (s *UserService) Dashboard(userID uint) (*UserDashboard, error) {
	surveys, err := s.surveys.FindAll()
	if err != nil {
		return nil, err
	}

	answeredIDs, err := s.answers.SurveyIDsAnsweredByUser(userID)
	if err != nil {
		return nil, err
	}
	answered := make(map[uint]bool, len(answeredIDs))
	for _, id := range answeredIDs {
		answered[id] = true
	}

	dashboard := &UserDashboard{
		PendingSurveys:   []UserSurveyItem{},
		CompletedSurveys: []UserSurveyItem{},
	}

	now := time.Now()
	for _, survey := range surveys {
		if !strings.EqualFold(survey.Status, models.StatusActive) {
			continue
		}
		if survey.EndDate != nil && now.After(*survey.EndDate) {
			continue
		}

		item := UserSurveyItem{
			SurveyID:         survey.ID,
			Title:            survey.Title,
			Description:      survey.Description,
			QuestionCount:    len(survey.Questions),
			EstimatedMinutes: estimatedMinutes(len(survey.Questions)),
			EndDate:          survey.EndDate,
		}

		if answered[survey.ID] {
			if completedAt := s.completedAt(userID, survey.ID); completedAt != nil {
				item.CompletedAt = completedAt
			}
			dashboard.CompletedSurveys = append(dashboard.CompletedSurveys, item)
		} else {
			dashboard.PendingSurveys = append(dashboard.PendingSurveys, item)
		}
	}

	sort.SliceStable(dashboard.CompletedSurveys, func(i, j int) bool {
		a, b := dashboard.CompletedSurveys[i].CompletedAt, dashboard.CompletedSurveys[j].CompletedAt
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		return a.After(*b)
	})

	dashboard.TotalCompleted = len(dashboard.CompletedSurveys)
	s.fillTimeStats(userID, dashboard)
	return dashboard, nil
}

// MyResponse returns the user's own submission for one survey. Surveys
// answered before completion tracking existed have no response record,
// so submission time falls back to the earliest answer.
func (s *UserService) MyResponse(userID, surveyID uint) (*MySurveyResponse, error) {
	survey, err := s.surveys.FindByIDWithQuestions(surveyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSurveyNotFound
		}
		return nil, err
	}

	answers, err := s.answers.FindByUserAndSurvey(userID, surveyID)
	if err != nil {
		return nil, err
	}
	if len(answers) == 0 {
		return nil, ErrResponseNotFound
	}

	result := &MySurveyResponse{
		SurveyID:    survey.ID,
		SurveyTitle: survey.Title,
		Answers:     make([]ResponseDetail, 0, len(answers)),
	}

	submittedAt := answers[0].CreatedAt
	for _, a := range answers {
		if a.CreatedAt.Before(submittedAt) {
			submittedAt = a.CreatedAt
		}
		result.Answers = append(result.Answers, ResponseDetail{
			QuestionID:   a.QuestionID,
			QuestionText: a.Question.QuestionText,
			AnswerText:   a.AnswerText,
			RatingValue:  a.RatingValue,
			SubmittedAt:  a.CreatedAt,
		})
	}
	result.SubmittedAt = submittedAt

	if response, err := s.responses.FindByUserAndSurvey(userID, surveyID); err == nil {
		result.SubmittedAt = response.CreatedAt
		result.CompletionTimeSeconds = response.CompletionTimeSeconds
	}

	questionOrder := make(map[uint]*int, len(survey.Questions))
	for _, q := range survey.Questions {
		questionOrder[q.ID] = q.OrderNumber
	}
	sort.SliceStable(result.Answers, func(i, j int) bool {
		oi := orderValue(questionOrder[result.Answers[i].QuestionID])
		oj := orderValue(questionOrder[result.Answers[j].QuestionID])
		if oi != oj {
			return oi < oj
		}
		return result.Answers[i].QuestionID < result.Answers[j].QuestionID
	})

	return result, nil
}

func (s *UserService) fillTimeStats(userID uint, dashboard *UserDashboard) {
	responses, err := s.responses.FindByUserID(userID)
	if err != nil {
		s.log.Warn("loading completion times failed", zap.Uint("userID", userID), zap.Error(err))
		return
	}

	total := 0
	counted := 0
	for _, r := range responses {
		if r.CompletionTimeSeconds != nil {
			total += *r.CompletionTimeSeconds
			counted++
		}
	}
	if counted == 0 {
		dashboard.AverageMinutesDisplay = "N/A"
		return
	}

	dashboard.TotalMinutesSpent = float64(total) / 60
	avgSeconds := float64(total) / float64(counted)
	avgMinutes := avgSeconds / 60
	dashboard.AverageMinutesSpent = &avgMinutes
	dashboard.AverageMinutesDisplay = FormatCompletionTime(&avgSeconds)
}

func (s *UserService) completedAt(userID, surveyID uint) *time.Time {
	if response, err := s.responses.FindByUserAndSurvey(userID, surveyID); err == nil {
		t := response.CreatedAt
		return &t
	}

	answers, err := s.answers.FindByUserAndSurvey(userID, surveyID)
	if err != nil || len(answers) == 0 {
		return nil
	}
	earliest := answers[0].CreatedAt
	for _, a := range answers[1:] {
		if a.CreatedAt.Before(earliest) {
			earliest = a.CreatedAt
		}
	}
	return &earliest
}

// estimatedMinutes assumes roughly 30 seconds per question, one minute
// minimum.
func estimatedMinutes(questionCount int) int {
	if questionCount == 0 {
		return 1
	}
	minutes := (questionCount + 1) / 2
	if minutes < 1 {
		return 1
	}
	return minutes
}
