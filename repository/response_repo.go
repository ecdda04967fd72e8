package repository

import (
	"github.com/feedbackflow/backend/models"
	"gorm.io/gorm"
)

type ResponseRepository interface {
	Create(response *models.Response) error
	FindBySurveyID(surveyID uint) ([]models.Response, error)
	FindByUserID(userID uint) ([]models.Response, error)
	FindByUserAndSurvey(userID, surveyID uint) (*models.Response, error)
	FindRecent(limit int) ([]models.Response, error)
}

type responseRepo struct {
	db *gorm.DB
}

func NewResponseRepository(db *gorm.DB) ResponseRepository {
	return &responseRepo{db: db}
}

func (r *responseRepo) Create(response *models.Response) error {
	return r.db.Create(response).Error
}

func (r *responseRepo) FindBySurveyID(surveyID uint) ([]models.Response, error) {
	var responses []models.Response
	err := r.db.Where("survey_id = ?", surveyID).Find(&responses).Error
	return responses, err
}

func (r *responseRepo) FindByUserID(userID uint) ([]models.Response, error) {
	var responses []models.Response
	err := r.db.Where("user_id = ?", userID).Find(&responses).Error
	return responses, err
}

func (r *responseRepo) FindByUserAndSurvey(userID, surveyID uint) (*models.Response, error) {
	var response models.Response
	err := r.db.Where("user_id = ? AND survey_id = ?", userID, surveyID).
		Order("created_at DESC").First(&response).Error
	if err != nil {
		return nil, translate(err)
	}
	return &response, nil
}

func (r *responseRepo) FindRecent(limit int) ([]models.Response, error) {
	var responses []models.Response
	err := r.db.Order("created_at DESC").Limit(limit).Find(&responses).Error
	return responses, err
}
