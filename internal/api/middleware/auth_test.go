package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func authTestHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestBearerAuth_ValidToken(t *testing.T) {
	handler := BearerAuth("secret-token")(authTestHandler())

	req := httptest.NewRequest(http.MethodGet, "/kb/latest", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBearerAuth_MissingHeader(t *testing.T) {
	handler := BearerAuth("secret-token")(authTestHandler())

	req := httptest.NewRequest(http.MethodGet, "/kb/latest", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing authorization header")
}

func TestBearerAuth_WrongScheme(t *testing.T) {
	handler := BearerAuth("secret-token")(authTestHandler())

	req := httptest.NewRequest(http.MethodGet, "/kb/latest", nil)
	req.Header.Set("Authorization", "Basic secret-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBearerAuth_WrongToken(t *testing.T) {
	handler := BearerAuth("secret-token")(authTestHandler())

	req := httptest.NewRequest(http.MethodGet, "/kb/latest", nil)
	req.Header.Set("Authorization", "Bearer other-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid api token")
}

func TestBearerAuth_EmptyTokenDisablesAuth(t *testing.T) {
	handler := BearerAuth("")(authTestHandler())

	req := httptest.NewRequest(http.MethodGet, "/kb/latest", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
