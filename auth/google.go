package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/feedbackflow/backend/models"
	"github.com/feedbackflow/backend/repository"
)

const stateCookieName = "oauthstate"

type googleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// GoogleAuth implements the Google OAuth login flow and hands back a
// signed JWT for users it resolves or creates.
type GoogleAuth struct {
	oauth       *oauth2.Config
	users       repository.UserRepository
	manager     *Manager
	frontendURL string
	log         *zap.Logger
}

func NewGoogleAuth(oauth *oauth2.Config, users repository.UserRepository, manager *Manager, frontendURL string, log *zap.Logger) *GoogleAuth {
	return &GoogleAuth{oauth: oauth, users: users, manager: manager, frontendURL: frontendURL, log: log}
}

// Login starts the OAuth flow with a random state nonce held in a
// short-lived cookie.
func (g *GoogleAuth) Login(w http.ResponseWriter, r *http.Request) {
	state, err := randomState()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Minute),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, g.oauth.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// Callback validates the state nonce, exchanges the code, upserts the
// user and redirects to the frontend with the issued token.
func (g *GoogleAuth) Callback(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(stateCookieName)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		http.Error(w, "Invalid OAuth state", http.StatusBadRequest)
		return
	}

	token, err := g.oauth.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		g.log.Warn("oauth code exchange failed", zap.Error(err))
		http.Error(w, "Authentication failed", http.StatusBadRequest)
		return
	}

	info, err := g.fetchUserInfo(r.Context(), token)
	if err != nil {
		g.log.Error("fetching google profile failed", zap.Error(err))
		http.Error(w, "Authentication failed", http.StatusBadGateway)
		return
	}

	user, err := g.resolveUser(info)
	if err != nil {
		g.log.Error("resolving google user failed", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	signed, _, err := g.manager.Issue(user)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	redirect := fmt.Sprintf("%s/auth/callback?token=%s", g.frontendURL, url.QueryEscape(signed))
	http.Redirect(w, r, redirect, http.StatusTemporaryRedirect)
}

func (g *GoogleAuth) fetchUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	resp, err := g.oauth.Client(ctx, token).Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo endpoint returned %d", resp.StatusCode)
	}

	info := &googleUserInfo{}
	if err := json.NewDecoder(resp.Body).Decode(info); err != nil {
		return nil, err
	}
	return info, nil
}

// resolveUser links the Google identity to an account: by Google ID
// first, then by email, creating a new user when neither matches.
func (g *GoogleAuth) resolveUser(info *googleUserInfo) (*models.User, error) {
	user, err := g.users.FindByGoogleID(info.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	user, err = g.users.FindByEmail(info.Email)
	if err == nil {
		user.GoogleID = &info.ID
		if user.Picture == "" {
			user.Picture = info.Picture
		}
		if err := g.users.Save(user); err != nil {
			return nil, err
		}
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	user = &models.User{
		Email:    info.Email,
		Name:     info.Name,
		Role:     "USER",
		GoogleID: &info.ID,
		Picture:  info.Picture,
	}
	if err := g.users.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

func randomState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
