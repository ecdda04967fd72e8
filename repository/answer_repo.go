package repository

import (
	"time"

	"github.com/feedbackflow/backend/models"
	"gorm.io/gorm"
)

type AnswerRepository interface {
	Create(answer *models.Answer) error
	// FindBySurveyID returns every answer for the survey with its
	// Question and (when present) User preloaded.
	FindBySurveyID(surveyID uint) ([]models.Answer, error)
	FindByUserAndSurvey(userID, surveyID uint) ([]models.Answer, error)
	SurveyIDsAnsweredByUser(userID uint) ([]uint, error)
	Count() (int64, error)
	CountCreatedBetween(from, to time.Time) (int64, error)
	FindCreatedAfter(t time.Time) ([]models.Answer, error)
}

type answerRepo struct {
	db *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepo{db: db}
}

func (r *answerRepo) Create(answer *models.Answer) error {
	return r.db.Create(answer).Error
}

func (r *answerRepo) FindBySurveyID(surveyID uint) ([]models.Answer, error) {
	var answers []models.Answer
	err := r.db.
		Joins("JOIN questions ON questions.id = answers.question_id").
		Where("questions.survey_id = ?", surveyID).
		Preload("Question").
		Preload("User").
		Find(&answers).Error
	return answers, err
}

func (r *answerRepo) FindByUserAndSurvey(userID, surveyID uint) ([]models.Answer, error) {
	var answers []models.Answer
	err := r.db.
		Joins("JOIN questions ON questions.id = answers.question_id").
		Where("questions.survey_id = ? AND answers.user_id = ?", surveyID, userID).
		Preload("Question").
		Find(&answers).Error
	return answers, err
}

func (r *answerRepo) SurveyIDsAnsweredByUser(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Answer{}).
		Joins("JOIN questions ON questions.id = answers.question_id").
		Where("answers.user_id = ?", userID).
		Distinct("questions.survey_id").
		Pluck("questions.survey_id", &ids).Error
	return ids, err
}

func (r *answerRepo) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Answer{}).Count(&count).Error
	return count, err
}

func (r *answerRepo) CountCreatedBetween(from, to time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Answer{}).
		Where("created_at > ? AND created_at <= ?", from, to).
		Count(&count).Error
	return count, err
}

func (r *answerRepo) FindCreatedAfter(t time.Time) ([]models.Answer, error) {
	var answers []models.Answer
	err := r.db.Where("created_at > ?", t).Find(&answers).Error
	return answers, err
}
