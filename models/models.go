package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Email               string     `gorm:"uniqueIndex" json:"email"`
	Name                string     `json:"name"`
	Role                string     `gorm:"default:USER" json:"role"`
	PasswordHash        string     `json:"-"`
	GoogleID            *string    `gorm:"uniqueIndex" json:"-"`
	Picture             string     `json:"picture,omitempty"`
	ResetToken          *string    `json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`
}

// Survey status values. Status checks are case-insensitive.
const (
	StatusDraft    = "DRAFT"
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
)

type Survey struct {
	gorm.Model
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `gorm:"default:DRAFT" json:"status"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	Questions   []Question `gorm:"constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

type Question struct {
	gorm.Model
	SurveyID     uint    `json:"surveyId"`
	Type         string  `json:"type"` // TEXT, LONG_TEXT, RATING, MULTIPLE_CHOICE, RADIO, DROPDOWN
	QuestionText string  `gorm:"size:1000" json:"questionText"`
	OptionsJSON  *string `gorm:"column:options" json:"optionsJson,omitempty"` // e.g. ["Poor","OK","Great"]
	OrderNumber  *int    `json:"orderNumber,omitempty"`
	Required     bool    `json:"required"`
}

// Answer holds one submitted value. Exactly one of AnswerText and
// RatingValue is meaningful depending on the question type, but neither
// is schema-enforced; readers must tolerate either being nil.
type Answer struct {
	gorm.Model
	QuestionID  uint     `json:"questionId"`
	Question    Question `gorm:"foreignKey:QuestionID" json:"-"`
	UserID      *uint    `json:"userId,omitempty"` // nil for anonymous submissions
	User        *User    `gorm:"foreignKey:UserID" json:"-"`
	AnswerText  *string  `gorm:"size:1000" json:"answerText,omitempty"`
	RatingValue *int     `json:"ratingValue,omitempty"`
}

// Response records one submission event for a survey, distinct from the
// Answer rows it produced. It carries completion duration, not content.
type Response struct {
	gorm.Model
	SurveyID              uint  `json:"surveyId"`
	UserID                *uint `json:"userId,omitempty"`
	CompletionTimeSeconds *int  `json:"completionTimeSeconds,omitempty"`
}

type BlacklistedToken struct {
	gorm.Model
	TokenHash string    `gorm:"uniqueIndex"`
	ExpiresAt time.Time
}
