package handler_test

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cheftrack/cheftrack-backend/internal/auth/handler"
	"github.com/cheftrack/cheftrack-backend/internal/auth/jwt"
	"github.com/cheftrack/cheftrack-backend/internal/auth/repository"
	"github.com/cheftrack/cheftrack-backend/internal/auth/service"
	"github.com/cheftrack/cheftrack-backend/pkg/actor"
	"github.com/cheftrack/cheftrack-backend/pkg/config"
	"github.com/cheftrack/cheftrack-backend/pkg/logger"
	"github.com/cheftrack/cheftrack-backend/pkg/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessions struct {
	active bool
	err    error
}

func (f fakeSessions) SessionActive(context.Context, string) (bool, error) {
	return f.active, f.err
}

func testManager() *jwt.Manager {
	return jwt.NewManager(&config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: time.Hour,
	})
}

func protected(t *testing.T, sessions handler.SessionChecker) (http.Handler, *actor.Actor) {
	t.Helper()
	seen := &actor.Actor{}
	mw := handler.RequireAuth(testManager(), sessions, logger.Nop())
	return mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*seen = *actor.FromContext(r.Context())
		assert.Equal(t, "session-1", handler.SessionIDFromContext(r.Context()))
		w.WriteHeader(http.StatusNoContent)
	})), seen
}

func bearer(t *testing.T, m *jwt.Manager) string {
	t.Helper()
	pair, err := m.GenerateTokenPair(&jwt.UserInfo{ID: "user-1", Email: "chef@example.com", FirstName: "Ada"}, "session-1")
	require.NoError(t, err)
	return pair.AccessToken
}

func TestRequireAuth(t *testing.T) {
	h, seen := protected(t, fakeSessions{active: true})
	req := testutil.NewHTTPRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+bearer(t, testManager()))

	rr := testutil.ExecuteRequest(h, req)

	testutil.AssertStatus(t, rr, http.StatusNoContent)
	assert.Equal(t, "user-1", seen.ID)
	assert.Equal(t, "Ada", seen.FirstName)
}

func TestRequireAuth_Rejects(t *testing.T) {
	pair, err := testManager().GenerateTokenPair(&jwt.UserInfo{ID: "user-1"}, "session-1")
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   string
		sessions handler.SessionChecker
		status   int
		code     string
	}{
		{"missing header", "", nil, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"wrong scheme", "Basic abc", nil, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"garbage token", "Bearer not-a-jwt", nil, http.StatusUnauthorized, "TOKEN_INVALID"},
		{"refresh token", "Bearer " + pair.RefreshToken, nil, http.StatusUnauthorized, "TOKEN_INVALID"},
		{"revoked session", "Bearer " + pair.AccessToken, fakeSessions{active: false}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"session store down", "Bearer " + pair.AccessToken, fakeSessions{err: stderrors.New("db down")}, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := protected(t, tt.sessions)
			req := testutil.NewHTTPRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rr := testutil.ExecuteRequest(h, req)

			testutil.AssertStatus(t, rr, tt.status)
			env := testutil.ParseEnvelope(t, rr, nil)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func newRouter(t *testing.T) (http.Handler, *testutil.MockDB, *jwt.Manager) {
	t.Helper()
	mockDB := testutil.NewMockDB(t)
	manager := testManager()
	svc := service.NewAuthService(mockDB.DB,
		repository.NewUserRepository(mockDB.DB),
		repository.NewSessionRepository(mockDB.DB),
		manager, logger.Nop())

	r := chi.NewRouter()
	handler.Routes(r, svc, handler.RequireAuth(manager, nil, logger.Nop()), logger.Nop())
	return r, mockDB, manager
}

func TestRegisterEndpoint(t *testing.T) {
	router, mockDB, _ := newRouter(t)
	now := time.Now()

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("INSERT INTO users").
		WillReturnRows(sqlmock.NewRows([]string{"id", "is_superuser", "is_active", "created_at", "updated_at"}).
			AddRow("user-1", false, true, now, now))
	mockDB.ExpectExec("INSERT INTO sessions").WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectCommit()

	body := `{"full_name": "Ada Lovelace", "email": "ada@example.com", "password": "secret1"}`
	rr := testutil.ExecuteRequest(router, testutil.NewHTTPRequest(http.MethodPost, "/api/v1/users/register", body))

	testutil.AssertStatus(t, rr, http.StatusCreated)
	var data struct {
		AccessToken string          `json:"access_token"`
		User        json.RawMessage `json:"user"`
	}
	env := testutil.ParseEnvelope(t, rr, &data)
	assert.Equal(t, "Account created successfully!", env.Message)
	assert.NotEmpty(t, data.AccessToken)
	assert.NotContains(t, string(data.User), "password")
	mockDB.ExpectationsWereMet(t)
}

func TestLoginEndpoint_BadCredentials(t *testing.T) {
	router, mockDB, _ := newRouter(t)
	mockDB.ExpectQuery("FROM users WHERE email = $1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	body := `{"email": "nobody@example.com", "password": "secret1"}`
	rr := testutil.ExecuteRequest(router, testutil.NewHTTPRequest(http.MethodPost, "/api/v1/users/login", body))

	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	env := testutil.ParseEnvelope(t, rr, nil)
	assert.Equal(t, "invalid email or password", env.Message)
}

func TestLogoutEndpoint(t *testing.T) {
	router, mockDB, manager := newRouter(t)
	mockDB.ExpectExec("UPDATE sessions SET revoked_at = NOW()").
		WithArgs("session-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := testutil.NewHTTPRequest(http.MethodPost, "/api/v1/users/logout", nil)
	req.Header.Set("Authorization", "Bearer "+bearer(t, manager))
	rr := testutil.ExecuteRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusNoContent)
	mockDB.ExpectationsWereMet(t)
}

func TestProfileEndpoint_RequiresToken(t *testing.T) {
	router, _, _ := newRouter(t)

	rr := testutil.ExecuteRequest(router, testutil.NewHTTPRequest(http.MethodGet, "/api/v1/users/profile", nil))

	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
}
