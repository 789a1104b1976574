// Package identity is the sign-in side of the job board: the Keycloak
// client, the signed-in user, and the login form flow.
package identity

import (
	"context"
	"sync"

	apperrors "jobboard-workers/internal/common/errors"
	"jobboard-workers/internal/common/logger"
	"jobboard-workers/internal/models"
)

// Provider is the identity service behind Auth.
type Provider interface {
	Login(ctx context.Context, email, password string) (*TokenResponse, error)
	UserInfo(ctx context.Context, accessToken string) (*models.Profile, error)
	CreateUser(ctx context.Context, user *User) (*User, error)
	SendPasswordReset(ctx context.Context, email string) error
	Logout(ctx context.Context, refreshToken string) error
}

// Registration carries the sign-up form fields.
type Registration struct {
	FirstName string
	LastName  string
	Company   string
	Email     string
	Password  string
	Role      models.Role
}

// Auth holds the signed-in user of one browser session.
type Auth struct {
	provider Provider
	logger   logger.Logger

	mu      sync.RWMutex
	profile *models.Profile
	tokens  *TokenResponse
}

func NewAuth(provider Provider, log logger.Logger) *Auth {
	return &Auth{
		provider: provider,
		logger:   logger.ForComponent(log, "identity"),
	}
}

// SignIn authenticates with email and password and loads the profile.
func (a *Auth) SignIn(ctx context.Context, email, password string) error {
	tokens, err := a.provider.Login(ctx, email, password)
	if err != nil {
		return err
	}
	profile, err := a.provider.UserInfo(ctx, tokens.AccessToken)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.tokens = tokens
	a.profile = profile
	a.mu.Unlock()

	a.logger.Info("signed in", map[string]interface{}{
		"userId": profile.UserID,
		"role":   string(profile.Role),
	})
	return nil
}

// Register creates the account and signs it in.
func (a *Auth) Register(ctx context.Context, r Registration) error {
	role := r.Role
	if role == "" {
		role = models.RoleApplicant
	}

	attributes := map[string][]string{"role": {string(role)}}
	if r.Company != "" {
		attributes["company"] = []string{r.Company}
	}

	_, err := a.provider.CreateUser(ctx, &User{
		Email:      r.Email,
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Enabled:    true,
		Attributes: attributes,
		Credentials: []Credential{
			{Type: "password", Value: r.Password},
		},
	})
	if err != nil {
		return err
	}
	return a.SignIn(ctx, r.Email, r.Password)
}

// SignOut forgets the user. The refresh token is revoked best-effort.
func (a *Auth) SignOut(ctx context.Context) {
	a.mu.Lock()
	tokens := a.tokens
	a.tokens = nil
	a.profile = nil
	a.mu.Unlock()

	if tokens == nil || tokens.RefreshToken == "" {
		return
	}
	if err := a.provider.Logout(ctx, tokens.RefreshToken); err != nil {
		a.logger.Warn("logout failed", map[string]interface{}{"error": err.Error()})
	}
}

func (a *Auth) ResetPassword(ctx context.Context, email string) error {
	return a.provider.SendPasswordReset(ctx, email)
}

func (a *Auth) IsLoggedIn() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.profile != nil
}

// CurrentUserID returns the signed-in user id.
func (a *Auth) CurrentUserID() (string, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.profile == nil {
		return "", false
	}
	return a.profile.UserID, true
}

// Profile returns a copy of the signed-in profile.
func (a *Auth) Profile() (models.Profile, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.profile == nil {
		return models.Profile{}, false
	}
	return *a.profile, true
}

func (a *Auth) IsApplicant() bool {
	p, ok := a.Profile()
	return ok && p.Role == models.RoleApplicant
}

// message turns a provider error into text for the login form.
func message(err error) string {
	stdErr := apperrors.Normalize(err)
	switch stdErr.Code {
	case apperrors.ErrCodeAuthentication:
		return "Invalid email or password."
	case apperrors.ErrCodePreconditionFailed:
		return stdErr.Message
	default:
		return "Something went wrong. Please try again."
	}
}
