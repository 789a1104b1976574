package identity

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "jobboard-workers/internal/common/errors"
	"jobboard-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const realmPath = "/realms/jobboard/protocol/openid-connect"

type fakeKeycloak struct {
	t            *testing.T
	createdUsers []User
	resetFor     string
}

func (f *fakeKeycloak) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.URL.Path == realmPath+"/token":
		require.NoError(f.t, r.ParseForm())
		switch r.Form.Get("grant_type") {
		case "client_credentials":
			_, _ = io.WriteString(w, `{"access_token":"admin-token","expires_in":300}`)
		case "password":
			if r.Form.Get("password") != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = io.WriteString(w, `{"error":"invalid_grant"}`)
				return
			}
			_, _ = io.WriteString(w, `{"access_token":"user-token","refresh_token":"refresh","expires_in":300}`)
		}

	case r.URL.Path == realmPath+"/token/introspect":
		require.NoError(f.t, r.ParseForm())
		if r.Form.Get("token") != "user-token" {
			_, _ = io.WriteString(w, `{"active":false}`)
			return
		}
		_, _ = io.WriteString(w, `{
			"active": true, "sub": "user-1", "email": "ana@example.com",
			"given_name": "Ana", "family_name": "Cruz",
			"realm_access": {"roles": ["offline_access", "employer"]}
		}`)

	case r.URL.Path == realmPath+"/logout":
		w.WriteHeader(http.StatusNoContent)

	case r.URL.Path == "/admin/realms/jobboard/users" && r.Method == http.MethodPost:
		assert.Equal(f.t, "Bearer admin-token", r.Header.Get("Authorization"))
		var u User
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&u))
		if u.Email == "taken@example.com" {
			w.WriteHeader(http.StatusConflict)
			return
		}
		f.createdUsers = append(f.createdUsers, u)
		w.Header().Set("Location", "http://kc/admin/realms/jobboard/users/new-id")
		w.WriteHeader(http.StatusCreated)

	case r.URL.Path == "/admin/realms/jobboard/users" && r.Method == http.MethodGet:
		if r.URL.Query().Get("email") == "ana@example.com" {
			_, _ = io.WriteString(w, `[{"id":"user-1","email":"ana@example.com"}]`)
			return
		}
		_, _ = io.WriteString(w, `[]`)

	case r.URL.Path == "/admin/realms/jobboard/users/user-1/execute-actions-email":
		f.resetFor = "user-1"
		w.WriteHeader(http.StatusNoContent)

	case r.URL.Path == "/admin/realms/jobboard/users/emp-1":
		_, _ = io.WriteString(w, `{"id":"emp-1","email":"hr@acme.test","firstName":"Hiring"}`)

	default:
		w.WriteHeader(http.StatusServiceUnavailable)
	}
}

func newFakeKeycloak(t *testing.T) (*KeycloakClient, *fakeKeycloak) {
	fake := &fakeKeycloak{t: t}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return NewKeycloakClient(srv.URL+"/", "jobboard", "jobboard-app", "s3cr3t"), fake
}

func TestKeycloak_LoginAndUserInfo(t *testing.T) {
	kc, _ := newFakeKeycloak(t)
	ctx := context.Background()

	tokens, err := kc.Login(ctx, "ana@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "user-token", tokens.AccessToken)

	profile, err := kc.UserInfo(ctx, tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, &models.Profile{
		UserID:    "user-1",
		Email:     "ana@example.com",
		FirstName: "Ana",
		LastName:  "Cruz",
		Role:      models.RoleEmployer,
	}, profile)
}

func TestKeycloak_LoginRejected(t *testing.T) {
	kc, _ := newFakeKeycloak(t)

	_, err := kc.Login(context.Background(), "ana@example.com", "wrong")

	assert.Equal(t, apperrors.ErrCodeAuthentication, apperrors.Normalize(err).Code)
}

func TestKeycloak_InactiveToken(t *testing.T) {
	kc, _ := newFakeKeycloak(t)

	_, err := kc.UserInfo(context.Background(), "stale")

	assert.Equal(t, apperrors.ErrCodeAuthentication, apperrors.Normalize(err).Code)
}

func TestKeycloak_CreateUser(t *testing.T) {
	kc, fake := newFakeKeycloak(t)

	user, err := kc.CreateUser(context.Background(), &User{
		Email:       "new@example.com",
		Enabled:     true,
		Credentials: []Credential{{Type: "password", Value: "pw"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "new-id", user.ID)
	assert.Equal(t, "new@example.com", user.Username)
	assert.Nil(t, user.Credentials)
	require.Len(t, fake.createdUsers, 1)
	assert.Equal(t, "pw", fake.createdUsers[0].Credentials[0].Value)
}

func TestKeycloak_CreateUser_Conflict(t *testing.T) {
	kc, _ := newFakeKeycloak(t)

	_, err := kc.CreateUser(context.Background(), &User{Email: "taken@example.com"})

	stdErr := apperrors.Normalize(err)
	assert.Equal(t, apperrors.ErrCodePreconditionFailed, stdErr.Code)
	assert.True(t, strings.Contains(stdErr.Message, "already exists"))
}

func TestKeycloak_GetUser(t *testing.T) {
	kc, _ := newFakeKeycloak(t)

	user, err := kc.GetUser(context.Background(), "emp-1")

	require.NoError(t, err)
	assert.Equal(t, "hr@acme.test", user.Email)
}

func TestKeycloak_SendPasswordReset(t *testing.T) {
	kc, fake := newFakeKeycloak(t)

	require.NoError(t, kc.SendPasswordReset(context.Background(), "ana@example.com"))
	assert.Equal(t, "user-1", fake.resetFor)

	err := kc.SendPasswordReset(context.Background(), "ghost@example.com")
	assert.Equal(t, apperrors.ErrCodePreconditionFailed, apperrors.Normalize(err).Code)
}

func TestKeycloak_ServerErrorIsRetryable(t *testing.T) {
	kc, _ := newFakeKeycloak(t)

	err := kc.Logout(context.Background(), "refresh")
	require.NoError(t, err)

	_, err = kc.GetUser(context.Background(), "unknown-path/x")
	stdErr := apperrors.Normalize(err)
	assert.Equal(t, apperrors.ErrCodeExternalService, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}
