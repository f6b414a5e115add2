//go:build !integration

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/domain"
	"marketplace/pkg/utils"
)

type stubValidator map[string]string

func (s stubValidator) ValidateToken(_ context.Context, token string) (string, error) {
	id, ok := s[token]
	if !ok {
		return "", errors.New("session not found")
	}
	return id, nil
}

func serve(t *testing.T, mw []echo.MiddlewareFunc, header string) (*httptest.ResponseRecorder, domain.Actor) {
	t.Helper()
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler

	var seen domain.Actor
	e.GET("/private", func(c echo.Context) error {
		actor, ok := ActorFrom(c)
		require.True(t, ok)
		seen = actor
		return c.NoContent(http.StatusNoContent)
	}, mw...)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, seen
}

func TestAuthMiddleware(t *testing.T) {
	issuer := utils.NewTokenIssuer("mw-secret", time.Hour)
	token, err := issuer.GenerateJWT("user-1", "vendor")
	require.NoError(t, err)
	badRole, err := issuer.GenerateJWT("user-1", "root")
	require.NoError(t, err)

	auth := AuthMiddleware(issuer, nil)

	rec, _ := serve(t, []echo.MiddlewareFunc{auth}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = serve(t, []echo.MiddlewareFunc{auth}, "Token "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = serve(t, []echo.MiddlewareFunc{auth}, "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = serve(t, []echo.MiddlewareFunc{auth}, "Bearer "+badRole)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, actor := serve(t, []echo.MiddlewareFunc{auth}, "Bearer "+token)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, domain.Actor{UserID: "user-1", Role: domain.RoleVendor}, actor)
}

func TestAuthMiddleware_SessionAllowList(t *testing.T) {
	issuer := utils.NewTokenIssuer("mw-secret", time.Hour)
	token, err := issuer.GenerateJWT("user-1", "customer")
	require.NoError(t, err)

	rec, _ := serve(t, []echo.MiddlewareFunc{AuthMiddleware(issuer, stubValidator{})}, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = serve(t, []echo.MiddlewareFunc{AuthMiddleware(issuer, stubValidator{token: "someone-else"})}, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = serve(t, []echo.MiddlewareFunc{AuthMiddleware(issuer, stubValidator{token: "user-1"})}, "Bearer "+token)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireRoles(t *testing.T) {
	issuer := utils.NewTokenIssuer("mw-secret", time.Hour)
	customer, err := issuer.GenerateJWT("c-1", "customer")
	require.NoError(t, err)
	admin, err := issuer.GenerateJWT("a-1", "admin")
	require.NoError(t, err)

	auth := AuthMiddleware(issuer, nil)

	rec, _ := serve(t, []echo.MiddlewareFunc{auth, AdminOnly()}, "Bearer "+customer)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = serve(t, []echo.MiddlewareFunc{auth, AdminOnly()}, "Bearer "+admin)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = serve(t, []echo.MiddlewareFunc{auth, RequireRoles(domain.RoleCustomer, domain.RoleVendor)}, "Bearer "+customer)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestErrorHandler(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	e.GET("/conflict", func(c echo.Context) error {
		return domain.NewStateConflict("order is cancelled")
	})
	e.GET("/boom", func(c echo.Context) error {
		return errors.New("connection refused to 10.0.0.1")
	})

	cases := []struct {
		path   string
		status int
		body   string
	}{
		{"/conflict", http.StatusConflict, "order is cancelled"},
		{"/boom", http.StatusInternalServerError, "Internal Server Error"},
		{"/missing", http.StatusNotFound, "Not Found"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
		assert.Equal(t, tc.status, rec.Code, tc.path)
		assert.Contains(t, rec.Body.String(), tc.body, tc.path)
		assert.NotContains(t, rec.Body.String(), "10.0.0.1")
	}
}
