package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/feedbackflow/backend/auth"
	"github.com/feedbackflow/backend/models"
	"github.com/feedbackflow/backend/repository"
)

var (
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      UserInfo  `json:"user"`
}

type UserInfo struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	Picture string `json:"picture,omitempty"`
}

// AuthService handles account signup, credential login, logout token
// blacklisting and the password reset flow.
type AuthService struct {
	users       repository.UserRepository
	tokens      repository.TokenRepository
	manager     *auth.Manager
	mailer      *Mailer
	resetTTL    time.Duration
	frontendURL string
	log         *zap.Logger
}

func NewAuthService(users repository.UserRepository, tokens repository.TokenRepository, manager *auth.Manager, mailer *Mailer, resetTTL time.Duration, frontendURL string, log *zap.Logger) *AuthService {
	return &AuthService{
		users:       users,
		tokens:      tokens,
		manager:     manager,
		mailer:      mailer,
		resetTTL:    resetTTL,
		frontendURL: frontendURL,
		log:         log,
	}
}

func (s *AuthService) Signup(req SignupRequest) (*AuthResult, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" || email == "" {
		return nil, fmt.Errorf("%w: name and email are required", ErrValidation)
	}
	if len(req.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}

	if _, err := s.users.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		Role:         "USER",
		PasswordHash: string(hash),
	}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}

	s.log.Info("user registered", zap.Uint("userID", user.ID), zap.String("email", user.Email))
	return s.issueFor(user)
}

func (s *AuthService) Login(req LoginRequest) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.PasswordHash == "" {
		// Google-only accounts have no password to check.
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueFor(user)
}

// Logout blacklists the presented token until its natural expiry.
func (s *AuthService) Logout(rawToken string) error {
	claims, err := s.manager.Parse(rawToken)
	if err != nil {
		// Already invalid tokens need no blacklist entry.
		return nil
	}

	expiresAt := time.Now().Add(24 * time.Hour)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	return s.tokens.Create(&models.BlacklistedToken{
		TokenHash: auth.HashToken(rawToken),
		ExpiresAt: expiresAt,
	})
}

// ForgotPassword stores a one-time reset token and emails its link.
// Unknown emails are not reported to the caller.
func (s *AuthService) ForgotPassword(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Debug("password reset requested for unknown email", zap.String("email", email))
			return nil
		}
		return err
	}

	token := uuid.NewString()
	expiresAt := time.Now().Add(s.resetTTL)
	user.ResetToken = &token
	user.ResetTokenExpiresAt = &expiresAt
	if err := s.users.Save(user); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.frontendURL, token)
	if err := s.mailer.SendPasswordReset(user.Email, resetURL); err != nil {
		s.log.Error("sending password reset email failed", zap.Error(err))
		return err
	}
	return nil
}

func (s *AuthService) ResetPassword(token, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}

	user, err := s.users.FindByResetToken(token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	if user.ResetTokenExpiresAt == nil || time.Now().After(*user.ResetTokenExpiresAt) {
		return ErrInvalidResetToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	user.PasswordHash = string(hash)
	user.ResetToken = nil
	user.ResetTokenExpiresAt = nil
	if err := s.users.Save(user); err != nil {
		return err
	}

	s.log.Info("password reset completed", zap.Uint("userID", user.ID))
	return nil
}

func (s *AuthService) Profile(userID uint) (*UserInfo, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return nil, err
	}
	info := userInfo(user)
	return &info, nil
}

func (s *AuthService) issueFor(user *models.User) (*AuthResult, error) {
	token, expiresAt, err := s.manager.Issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: userInfo(user)}, nil
}

func userInfo(user *models.User) UserInfo {
	return UserInfo{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		Role:    user.Role,
		Picture: user.Picture,
	}
}
