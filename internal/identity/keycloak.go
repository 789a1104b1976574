// internal/identity/keycloak.go
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	apperrors "jobboard-workers/internal/common/errors"
	"jobboard-workers/internal/models"
)

// KeycloakClient talks to a Keycloak realm: password sign-in, token
// introspection and admin user management.
type KeycloakClient struct {
	baseURL      string
	realm        string
	clientID     string
	clientSecret string
	httpClient   *http.Client

	mu          sync.Mutex
	adminToken  string
	tokenExpiry time.Time
}

// User is a Keycloak user representation.
type User struct {
	ID            string              `json:"id,omitempty"`
	Email         string              `json:"email"`
	FirstName     string              `json:"firstName"`
	LastName      string              `json:"lastName"`
	Username      string              `json:"username"`
	Enabled       bool                `json:"enabled"`
	EmailVerified bool                `json:"emailVerified"`
	Attributes    map[string][]string `json:"attributes,omitempty"`
	Credentials   []Credential        `json:"credentials,omitempty"`
}

type Credential struct {
	Type      string `json:"type"`
	Value     string `json:"value"`
	Temporary bool   `json:"temporary"`
}

// TokenResponse holds the response from Keycloak's token endpoint.
type TokenResponse struct {
	AccessToken      string `json:"access_token"`
	ExpiresIn        int    `json:"expires_in"`
	RefreshExpiresIn int    `json:"refresh_expires_in"`
	TokenType        string `json:"token_type"`
	RefreshToken     string `json:"refresh_token"`
	Scope            string `json:"scope"`
}

// TokenInfo is the introspection result. company and role are custom
// user-attribute claims mapped into the token.
type TokenInfo struct {
	Active      bool   `json:"active"`
	Sub         string `json:"sub,omitempty"`
	Username    string `json:"username,omitempty"`
	Email       string `json:"email,omitempty"`
	GivenName   string `json:"given_name,omitempty"`
	FamilyName  string `json:"family_name,omitempty"`
	Company     string `json:"company,omitempty"`
	Role        string `json:"role,omitempty"`
	Exp         int64  `json:"exp,omitempty"`
	RealmAccess struct {
		Roles []string `json:"roles"`
	} `json:"realm_access"`
}

func NewKeycloakClient(baseURL, realm, clientID, clientSecret string) *KeycloakClient {
	return &KeycloakClient{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		realm:        realm,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (k *KeycloakClient) tokenURL() string {
	return fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token", k.baseURL, k.realm)
}

func (k *KeycloakClient) adminURL(path string) string {
	return fmt.Sprintf("%s/admin/realms/%s%s", k.baseURL, k.realm, path)
}

// Login exchanges email and password for tokens (resource owner password grant).
func (k *KeycloakClient) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	data := url.Values{}
	data.Set("grant_type", "password")
	data.Set("client_id", k.clientID)
	data.Set("client_secret", k.clientSecret)
	data.Set("username", email)
	data.Set("password", password)
	data.Set("scope", "openid")

	var token TokenResponse
	status, body, err := k.postForm(ctx, k.tokenURL(), data, &token)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusOK:
		return &token, nil
	case status == http.StatusUnauthorized || status == http.StatusBadRequest:
		return nil, apperrors.NewAuthenticationError("invalid credentials")
	default:
		return nil, k.apiError("login", status, body)
	}
}

// Introspect validates an access token and returns its claims.
func (k *KeycloakClient) Introspect(ctx context.Context, token string) (*TokenInfo, error) {
	data := url.Values{}
	data.Set("token", token)
	data.Set("token_type_hint", "access_token")
	data.Set("client_id", k.clientID)
	data.Set("client_secret", k.clientSecret)

	var info TokenInfo
	status, body, err := k.postForm(ctx, k.tokenURL()+"/introspect", data, &info)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, k.apiError("introspect", status, body)
	}
	if !info.Active {
		return nil, apperrors.NewAuthenticationError("token is not active")
	}
	return &info, nil
}

// UserInfo resolves an access token to the signed-in profile.
func (k *KeycloakClient) UserInfo(ctx context.Context, accessToken string) (*models.Profile, error) {
	info, err := k.Introspect(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return &models.Profile{
		UserID:    info.Sub,
		Email:     info.Email,
		FirstName: info.GivenName,
		LastName:  info.FamilyName,
		Company:   info.Company,
		Role:      roleFromClaims(info),
	}, nil
}

func roleFromClaims(info *TokenInfo) models.Role {
	if info.Role != "" {
		return models.Role(info.Role)
	}
	for _, r := range []models.Role{models.RoleAdmin, models.RoleEmployer} {
		for _, have := range info.RealmAccess.Roles {
			if have == string(r) {
				return r
			}
		}
	}
	return models.RoleApplicant
}

// Logout revokes a refresh token.
func (k *KeycloakClient) Logout(ctx context.Context, refreshToken string) error {
	data := url.Values{}
	data.Set("client_id", k.clientID)
	data.Set("client_secret", k.clientSecret)
	data.Set("refresh_token", refreshToken)

	logoutURL := fmt.Sprintf("%s/realms/%s/protocol/openid-connect/logout", k.baseURL, k.realm)
	status, body, err := k.postForm(ctx, logoutURL, data, nil)
	if err != nil {
		return err
	}
	if status != http.StatusNoContent && status != http.StatusOK {
		return k.apiError("logout", status, body)
	}
	return nil
}

// CreateUser creates a user through the admin API and returns it with its id.
func (k *KeycloakClient) CreateUser(ctx context.Context, user *User) (*User, error) {
	if user.Username == "" {
		user.Username = user.Email
	}
	payload, err := json.Marshal(user)
	if err != nil {
		return nil, apperrors.NewExternalServiceError("keycloak", fmt.Errorf("marshal user: %w", err))
	}

	resp, body, err := k.adminDo(ctx, http.MethodPost, k.adminURL("/users"), payload)
	if err != nil {
		return nil, err
	}
	switch resp.StatusCode {
	case http.StatusCreated:
	case http.StatusConflict:
		return nil, apperrors.NewPreconditionFailedError("An account with this email already exists.", string(body))
	default:
		return nil, k.apiError("create user", resp.StatusCode, body)
	}

	// The new id is only reported through the Location header.
	if location := resp.Header.Get("Location"); location != "" {
		parts := strings.Split(location, "/")
		user.ID = parts[len(parts)-1]
	}
	user.Credentials = nil
	return user, nil
}

// GetUser retrieves a user by id.
func (k *KeycloakClient) GetUser(ctx context.Context, userID string) (*User, error) {
	resp, body, err := k.adminDo(ctx, http.MethodGet, k.adminURL("/users/"+url.PathEscape(userID)), nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, k.apiError("get user", resp.StatusCode, body)
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, apperrors.NewExternalServiceError("keycloak", fmt.Errorf("decode user: %w", err))
	}
	return &user, nil
}

// GetUserByEmail looks a user up by exact email.
func (k *KeycloakClient) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	searchURL := k.adminURL("/users?exact=true&email=" + url.QueryEscape(email))
	resp, body, err := k.adminDo(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, k.apiError("search user", resp.StatusCode, body)
	}

	var users []User
	if err := json.Unmarshal(body, &users); err != nil {
		return nil, apperrors.NewExternalServiceError("keycloak", fmt.Errorf("decode users: %w", err))
	}
	if len(users) == 0 {
		return nil, apperrors.NewPreconditionFailedError("User not found", "email: "+email)
	}
	return &users[0], nil
}

// SendPasswordReset e-mails the user an UPDATE_PASSWORD action link.
func (k *KeycloakClient) SendPasswordReset(ctx context.Context, email string) error {
	user, err := k.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	payload, _ := json.Marshal([]string{"UPDATE_PASSWORD"})
	resp, body, err := k.adminDo(ctx, http.MethodPut,
		k.adminURL("/users/"+url.PathEscape(user.ID)+"/execute-actions-email"), payload)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return k.apiError("password reset", resp.StatusCode, body)
	}
	return nil
}

// serviceToken returns a cached client-credentials token for the admin API.
func (k *KeycloakClient) serviceToken(ctx context.Context) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.adminToken != "" && k.tokenExpiry.After(time.Now()) {
		return k.adminToken, nil
	}

	data := url.Values{}
	data.Set("grant_type", "client_credentials")
	data.Set("client_id", k.clientID)
	data.Set("client_secret", k.clientSecret)

	var token TokenResponse
	status, body, err := k.postForm(ctx, k.tokenURL(), data, &token)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", k.apiError("service token", status, body)
	}

	k.adminToken = token.AccessToken
	// Treat the token as expired ten seconds early.
	k.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn)*time.Second - 10*time.Second)
	return k.adminToken, nil
}

func (k *KeycloakClient) adminDo(ctx context.Context, method, target string, payload []byte) (*http.Response, []byte, error) {
	token, err := k.serviceToken(ctx)
	if err != nil {
		return nil, nil, err
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, nil, apperrors.NewExternalServiceError("keycloak", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := k.httpClient.Do(req)
	if err != nil {
		return nil, nil, k.transportError(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, apperrors.NewExternalServiceError("keycloak", err)
	}
	return resp, body, nil
}

// postForm posts url-encoded data and decodes a 200 body into out.
func (k *KeycloakClient) postForm(ctx context.Context, target string, data url.Values, out interface{}) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(data.Encode()))
	if err != nil {
		return 0, nil, apperrors.NewExternalServiceError("keycloak", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := k.httpClient.Do(req)
	if err != nil {
		return 0, nil, k.transportError(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, apperrors.NewExternalServiceError("keycloak", err)
	}
	if resp.StatusCode == http.StatusOK && out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return resp.StatusCode, body, apperrors.NewExternalServiceError("keycloak", fmt.Errorf("decode response: %w", err))
		}
	}
	return resp.StatusCode, body, nil
}

func (k *KeycloakClient) transportError(ctx context.Context, err error) error {
	if ctx.Err() == context.DeadlineExceeded {
		return apperrors.NewTimeoutError("keycloak", err)
	}
	return apperrors.NewExternalServiceError("keycloak", err)
}

func (k *KeycloakClient) apiError(op string, status int, body []byte) error {
	err := fmt.Errorf("%s: status %d: %s", op, status, string(body))
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return apperrors.NewAuthenticationError(err.Error())
	}
	e := apperrors.NewExternalServiceError("keycloak", err)
	e.Retryable = isTransientHTTPError(status)
	return e
}

func isTransientHTTPError(statusCode int) bool {
	switch statusCode {
	case http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
