package repository

import (
	"time"

	"github.com/feedbackflow/backend/models"
	"gorm.io/gorm"
)

type SurveyRepository interface {
	Create(survey *models.Survey) error
	FindAll() ([]models.Survey, error)
	FindByIDWithQuestions(id uint) (*models.Survey, error)
	Save(survey *models.Survey) error
	Delete(id uint) error
	ExistsByTitle(title string) (bool, error)
	CountCreatedAfter(t time.Time) (int64, error)
}

type surveyRepo struct {
	db *gorm.DB
}

func NewSurveyRepository(db *gorm.DB) SurveyRepository {
	return &surveyRepo{db: db}
}

func (r *surveyRepo) Create(survey *models.Survey) error {
	return r.db.Create(survey).Error
}

func (r *surveyRepo) FindAll() ([]models.Survey, error) {
	var surveys []models.Survey
	err := r.db.Preload("Questions").Order("created_at DESC").Find(&surveys).Error
	return surveys, err
}

func (r *surveyRepo) FindByIDWithQuestions(id uint) (*models.Survey, error) {
	var survey models.Survey
	if err := r.db.Preload("Questions").First(&survey, id).Error; err != nil {
		return nil, translate(err)
	}
	return &survey, nil
}

func (r *surveyRepo) Save(survey *models.Survey) error {
	return r.db.Save(survey).Error
}

func (r *surveyRepo) Delete(id uint) error {
	res := r.db.Delete(&models.Survey{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *surveyRepo) ExistsByTitle(title string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Survey{}).Where("LOWER(title) = LOWER(?)", title).Count(&count).Error
	return count > 0, err
}

func (r *surveyRepo) CountCreatedAfter(t time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Survey{}).Where("created_at > ?", t).Count(&count).Error
	return count, err
}
