package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkgAuth "github.com/couchproof/couchproof-backend/pkg/auth"
	"github.com/couchproof/couchproof-backend/pkg/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessionChecker struct {
	present bool
	err     error
}

func (f *fakeSessionChecker) HasSession(ctx context.Context, sessionID string) (bool, error) {
	return f.present, f.err
}

func jwtTestConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "unit-secret",
		Issuer:            "couchproof",
		ExpirationMinutes: 30,
	}
}

func authHandler(t *testing.T, cfg config.JWTConfig, checker SessionChecker) (http.Handler, *string) {
	t.Helper()
	var seenUserID string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUserID = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return Auth(cfg, checker, nil)(inner), &seenUserID
}

func TestAuthAcceptsValidToken(t *testing.T) {
	cfg := jwtTestConfig()
	userID := uuid.New()
	token, err := pkgAuth.MintAccessToken(cfg, time.Now(), userID, "a@b.c")
	require.NoError(t, err)

	handler, seen := authHandler(t, cfg, &fakeSessionChecker{present: true})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID.String(), *seen)
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	handler, _ := authHandler(t, jwtTestConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsGarbageToken(t *testing.T) {
	handler, _ := authHandler(t, jwtTestConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsRevokedSession(t *testing.T) {
	cfg := jwtTestConfig()
	token, err := pkgAuth.MintAccessToken(cfg, time.Now(), uuid.New(), "")
	require.NoError(t, err)

	handler, _ := authHandler(t, cfg, &fakeSessionChecker{present: false})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
