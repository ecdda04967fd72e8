package services

import (
	"strings"
	"time"

	"github.com/feedbackflow/backend/models"
	"github.com/feedbackflow/backend/repository"
)

// In-memory repository stubs shared by the service tests.

type stubSurveyRepo struct {
	surveys []models.Survey
	nextID  uint
}

func (r *stubSurveyRepo) Create(survey *models.Survey) error {
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

func (r *stubSurveyRepo) FindAll() ([]models.Survey, error) {
	out := make([]models.Survey, len(r.surveys))
	copy(out, r.surveys)
	return out, nil
}

func (r *stubSurveyRepo) FindByIDWithQuestions(id uint) (*models.Survey, error) {
	for i := range r.surveys {
		if r.surveys[i].ID == id {
			survey := r.surveys[i]
			return &survey, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubSurveyRepo) Save(survey *models.Survey) error {
	for i := range r.surveys {
		if r.surveys[i].ID == survey.ID {
			r.surveys[i] = *survey
			return nil
		}
	}
	r.surveys = append(r.surveys, *survey)
	return nil
}

func (r *stubSurveyRepo) Delete(id uint) error {
	for i := range r.surveys {
		if r.surveys[i].ID == id {
			r.surveys = append(r.surveys[:i], r.surveys[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *stubSurveyRepo) ExistsByTitle(title string) (bool, error) {
	for i := range r.surveys {
		if strings.EqualFold(r.surveys[i].Title, title) {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubSurveyRepo) CountCreatedAfter(t time.Time) (int64, error) {
	var count int64
	for i := range r.surveys {
		if r.surveys[i].CreatedAt.After(t) {
			count++
		}
	}
	return count, nil
}

type stubAnswerRepo struct {
	answers []models.Answer
	nextID  uint
}

func (r *stubAnswerRepo) Create(answer *models.Answer) error {
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

func (r *stubAnswerRepo) FindBySurveyID(surveyID uint) ([]models.Answer, error) {
	var out []models.Answer
	for _, a := range r.answers {
		if a.Question.SurveyID == surveyID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *stubAnswerRepo) FindByUserAndSurvey(userID, surveyID uint) ([]models.Answer, error) {
	var out []models.Answer
	for _, a := range r.answers {
		if a.UserID != nil && *a.UserID == userID && a.Question.SurveyID == surveyID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *stubAnswerRepo) SurveyIDsAnsweredByUser(userID uint) ([]uint, error) {
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

func (r *stubAnswerRepo) Count() (int64, error) {
	return int64(len(r.answers)), nil
}

func (r *stubAnswerRepo) CountCreatedBetween(from, to time.Time) (int64, error) {
	var count int64
	for _, a := range r.answers {
		if !a.CreatedAt.Before(from) && a.CreatedAt.Before(to) {
			count++
		}
	}
	return count, nil
}

func (r *stubAnswerRepo) FindCreatedAfter(t time.Time) ([]models.Answer, error) {
	var out []models.Answer
	for _, a := range r.answers {
		if a.CreatedAt.After(t) {
			out = append(out, a)
		}
	}
	return out, nil
}

type stubResponseRepo struct {
	responses []models.Response
	nextID    uint
}

func (r *stubResponseRepo) Create(response *models.Response) error {
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

func (r *stubResponseRepo) FindBySurveyID(surveyID uint) ([]models.Response, error) {
	var out []models.Response
	for _, resp := range r.responses {
		if resp.SurveyID == surveyID {
			out = append(out, resp)
		}
	}
	return out, nil
}

func (r *stubResponseRepo) FindByUserID(userID uint) ([]models.Response, error) {
	var out []models.Response
	for _, resp := range r.responses {
		if resp.UserID != nil && *resp.UserID == userID {
			out = append(out, resp)
		}
	}
	return out, nil
}

func (r *stubResponseRepo) FindByUserAndSurvey(userID, surveyID uint) (*models.Response, error) {
	for i := len(r.responses) - 1; i >= 0; i-- {
		resp := r.responses[i]
		if resp.UserID != nil && *resp.UserID == userID && resp.SurveyID == surveyID {
			return &resp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubResponseRepo) FindRecent(limit int) ([]models.Response, error) {
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

type stubUserRepo struct {
	users  []models.User
	nextID uint
}

func (r *stubUserRepo) Create(user *models.User) error {
	if user.ID == 0 {
		r.nextID++
		user.ID = r.nextID
	}
	r.users = append(r.users, *user)
	return nil
}

func (r *stubUserRepo) FindByID(id uint) (*models.User, error) {
	for i := range r.users {
		if r.users[i].ID == id {
			user := r.users[i]
			return &user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubUserRepo) FindByEmail(email string) (*models.User, error) {
	for i := range r.users {
		if strings.EqualFold(r.users[i].Email, email) {
			user := r.users[i]
			return &user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubUserRepo) FindByGoogleID(googleID string) (*models.User, error) {
	for i := range r.users {
		if r.users[i].GoogleID != nil && *r.users[i].GoogleID == googleID {
			user := r.users[i]
			return &user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubUserRepo) FindByResetToken(token string) (*models.User, error) {
	for i := range r.users {
		if r.users[i].ResetToken != nil && *r.users[i].ResetToken == token {
			user := r.users[i]
			return &user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubUserRepo) Save(user *models.User) error {
	for i := range r.users {
		if r.users[i].ID == user.ID {
			r.users[i] = *user
			return nil
		}
	}
	r.users = append(r.users, *user)
	return nil
}

type stubTokenRepo struct {
	tokens map[string]time.Time
}

func newStubTokenRepo() *stubTokenRepo {
	return &stubTokenRepo{tokens: make(map[string]time.Time)}
}

func (r *stubTokenRepo) Create(token *models.BlacklistedToken) error {
	r.tokens[token.TokenHash] = token.ExpiresAt
	return nil
}

func (r *stubTokenRepo) ExistsByHash(hash string) (bool, error) {
	_, ok := r.tokens[hash]
	return ok, nil
}

func (r *stubTokenRepo) DeleteExpired(before time.Time) (int64, error) {
	var removed int64
	for hash, expiresAt := range r.tokens {
		if expiresAt.Before(before) {
			delete(r.tokens, hash)
			removed++
		}
	}
	return removed, nil
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
func uintPtr(n uint) *uint    { return &n }
