package handlers

import (
	"strings"
	"time"

	"github.com/feedbackflow/backend/models"
	"github.com/feedbackflow/backend/repository"
)

// Minimal in-memory repositories backing the handler tests.

type memSurveyRepo struct {
	surveys []models.Survey
	nextID  uint
}

func (r *memSurveyRepo) Create(survey *models.Survey) error {
	if survey.ID == 0 {
		r.nextID++
		survey.ID = r.nextID
	}
	if survey.CreatedAt.IsZero() {
		survey.CreatedAt = time.Now()
	}
	r.surveys = append(r.surveys, *survey)
	return nil
}

func (r *memSurveyRepo) FindAll() ([]models.Survey, error) {
	out := make([]models.Survey, len(r.surveys))
	copy(out, r.surveys)
	return out, nil
}

func (r *memSurveyRepo) FindByIDWithQuestions(id uint) (*models.Survey, error) {
	for i := range r.surveys {
		if r.surveys[i].ID == id {
			survey := r.surveys[i]
			return &survey, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memSurveyRepo) Save(survey *models.Survey) error {
	for i := range r.surveys {
		if r.surveys[i].ID == survey.ID {
			r.surveys[i] = *survey
			return nil
		}
	}
	r.surveys = append(r.surveys, *survey)
	return nil
}

func (r *memSurveyRepo) Delete(id uint) error {
	for i := range r.surveys {
		if r.surveys[i].ID == id {
			r.surveys = append(r.surveys[:i], r.surveys[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memSurveyRepo) ExistsByTitle(title string) (bool, error) {
	for i := range r.surveys {
		if strings.EqualFold(r.surveys[i].Title, title) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memSurveyRepo) CountCreatedAfter(t time.Time) (int64, error) {
	var count int64
	for i := range r.surveys {
		if r.surveys[i].CreatedAt.After(t) {
			count++
		}
	}
	return count, nil
}

type memAnswerRepo struct {
	answers []models.Answer
	nextID  uint
}

func (r *memAnswerRepo) Create(answer *models.Answer) error {
	if answer.ID == 0 {
		r.nextID++
		answer.ID = r.nextID
	}
	if answer.CreatedAt.IsZero() {
		answer.CreatedAt = time.Now()
	}
	r.answers = append(r.answers, *answer)
	return nil
}

func (r *memAnswerRepo) FindBySurveyID(surveyID uint) ([]models.Answer, error) {
	var out []models.Answer
	for _, a := range r.answers {
		if a.Question.SurveyID == surveyID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memAnswerRepo) FindByUserAndSurvey(userID, surveyID uint) ([]models.Answer, error) {
	var out []models.Answer
	for _, a := range r.answers {
		if a.UserID != nil && *a.UserID == userID && a.Question.SurveyID == surveyID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memAnswerRepo) SurveyIDsAnsweredByUser(userID uint) ([]uint, error) {
	seen := map[uint]bool{}
	var out []uint
	for _, a := range r.answers {
		if a.UserID != nil && *a.UserID == userID && !seen[a.Question.SurveyID] {
			seen[a.Question.SurveyID] = true
			out = append(out, a.Question.SurveyID)
		}
	}
	return out, nil
}

func (r *memAnswerRepo) Count() (int64, error) {
	return int64(len(r.answers)), nil
}

func (r *memAnswerRepo) CountCreatedBetween(from, to time.Time) (int64, error) {
	var count int64
	for _, a := range r.answers {
		if !a.CreatedAt.Before(from) && a.CreatedAt.Before(to) {
			count++
		}
	}
	return count, nil
}

func (r *memAnswerRepo) FindCreatedAfter(t time.Time) ([]models.Answer, error) {
	var out []models.Answer
	for _, a := range r.answers {
		if a.CreatedAt.After(t) {
			out = append(out, a)
		}
	}
	return out, nil
}

type memResponseRepo struct {
	responses []models.Response
	nextID    uint
}

func (r *memResponseRepo) Create(response *models.Response) error {
	if response.ID == 0 {
		r.nextID++
		response.ID = r.nextID
	}
	if response.CreatedAt.IsZero() {
		response.CreatedAt = time.Now()
	}
	r.responses = append(r.responses, *response)
	return nil
}

func (r *memResponseRepo) FindBySurveyID(surveyID uint) ([]models.Response, error) {
	var out []models.Response
	for _, resp := range r.responses {
		if resp.SurveyID == surveyID {
			out = append(out, resp)
		}
	}
	return out, nil
}

func (r *memResponseRepo) FindByUserID(userID uint) ([]models.Response, error) {
	var out []models.Response
	for _, resp := range r.responses {
		if resp.UserID != nil && *resp.UserID == userID {
			out = append(out, resp)
		}
	}
	return out, nil
}

func (r *memResponseRepo) FindByUserAndSurvey(userID, surveyID uint) (*models.Response, error) {
	for i := len(r.responses) - 1; i >= 0; i-- {
		resp := r.responses[i]
		if resp.UserID != nil && *resp.UserID == userID && resp.SurveyID == surveyID {
			return &resp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memResponseRepo) FindRecent(limit int) ([]models.Response, error) {
	n := len(r.responses)
	if limit > n {
		limit = n
	}
	out := make([]models.Response, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, r.responses[i])
	}
	return out, nil
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
