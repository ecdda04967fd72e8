package repository

import (
	"time"

	"github.com/feedbackflow/backend/models"
	"gorm.io/gorm"
)

type TokenRepository interface {
	Create(token *models.BlacklistedToken) error
	ExistsByHash(hash string) (bool, error)
	DeleteExpired(before time.Time) (int64, error)
}

type tokenRepo struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepo{db: db}
}

func (r *tokenRepo) Create(token *models.BlacklistedToken) error {
	return r.db.Create(token).Error
}

func (r *tokenRepo) ExistsByHash(hash string) (bool, error) {
	var count int64
	err := r.db.Model(&models.BlacklistedToken{}).Where("token_hash = ?", hash).Count(&count).Error
	return count > 0, err
}

func (r *tokenRepo) DeleteExpired(before time.Time) (int64, error) {
	res := r.db.Unscoped().Where("expires_at < ?", before).Delete(&models.BlacklistedToken{})
	return res.RowsAffected, res.Error
}
