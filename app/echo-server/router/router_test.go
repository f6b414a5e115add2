//go:build !integration

package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/business/catalog"
	"marketplace/business/user"
	"marketplace/domain"
	"marketplace/internal/app"
	"marketplace/internal/repository/redis"
	"marketplace/internal/repository/snapshot"
	"marketplace/pkg/config"
)

type memorySessions struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newMemorySessions() *memorySessions {
	return &memorySessions{tokens: map[string]string{}}
}

func (s *memorySessions) StoreSession(_ context.Context, data redis.SessionData, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[data.Token] = data.UserID
	return nil
}

func (s *memorySessions) RevokeSession(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, id := range s.tokens {
		if id == userID {
			delete(s.tokens, token)
		}
	}
	return nil
}

func (s *memorySessions) ValidateToken(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.tokens[token]
	if !ok {
		return "", redis.ErrSessionNotFound
	}
	return id, nil
}

type server struct {
	app  *app.App
	echo *echo.Echo
}

func newServer(t *testing.T, sessions Sessions) *server {
	t.Helper()
	cfg := &config.Config{
		App: config.AppConfig{Environment: "test"},
		JWT: config.JWTConfig{SecretKey: "router-secret", TTL: time.Hour},
	}
	a := app.New(cfg, app.Options{Gateway: snapshot.NewFileGateway(filepath.Join(t.TempDir(), "snap.json"))})
	require.NoError(t, a.Start(context.Background()))
	return &server{app: a, echo: New(a, sessions, []string{"*"})}
}

func (s *server) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func (s *server) tokenFor(t *testing.T, u domain.User) string {
	t.Helper()
	token, err := s.app.Tokens.GenerateJWT(u.ID, string(u.Role))
	require.NoError(t, err)
	return token
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

type actors struct {
	admin, vendor, customer domain.User
	product                 domain.Product
}

func seedActors(t *testing.T, s *server) actors {
	t.Helper()
	ctx := context.Background()
	admin, err := s.app.Users.CreateAdmin(ctx, user.RegisterInput{Username: "root", Email: "root@example.com", Password: "secret1"})
	require.NoError(t, err)
	vendor, err := s.app.Users.Register(ctx, user.RegisterInput{Username: "vera", Email: "vera@example.com", Password: "secret1", Role: "vendor"})
	require.NoError(t, err)
	customer, err := s.app.Users.Register(ctx, user.RegisterInput{Username: "carl", Email: "carl@example.com", Password: "secret1"})
	require.NoError(t, err)
	product, err := s.app.Catalog.CreateProduct(ctx, vendor.Actor(), catalog.ProductInput{
		Name: "Compost Bin", Category: "garden", Price: decimal.RequireFromString("20.00"), Stock: 5,
	})
	require.NoError(t, err)
	return actors{admin: admin, vendor: vendor, customer: customer, product: product}
}

func TestHealthAndPublicCatalog(t *testing.T) {
	s := newServer(t, nil)
	seedActors(t, s)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/v1/products", "", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/v1/products/featured?limit=3", "", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/v1/products/categories", "", nil).Code)

	rec := s.do(t, http.MethodGet, "/api/v1/products/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, rec))
}

func TestAuthAndRoleGuards(t *testing.T) {
	s := newServer(t, nil)
	a := seedActors(t, s)

	rec := s.do(t, http.MethodGet, "/api/v1/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/cart", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/cart", s.tokenFor(t, a.vendor), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/admin/users", s.tokenFor(t, a.customer), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/admin/users", s.tokenFor(t, a.admin), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterAndLogin(t *testing.T) {
	s := newServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "dana", "email": "dana@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password_hash")

	rec = s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "dana2", "email": "dana@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "dana@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "dana@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "token")
}

func TestLogoutRevokesSession(t *testing.T) {
	sessions := newMemorySessions()
	s := newServer(t, sessions)
	a := seedActors(t, s)

	// A signed token that was never stored is rejected.
	rec := s.do(t, http.MethodGet, "/api/v1/auth/me", s.tokenFor(t, a.customer), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "carl@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var token string
	for tok := range sessions.tokens {
		token = tok
	}
	require.NotEmpty(t, token)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/v1/auth/me", token, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/v1/auth/me", token, nil).Code)
}

func TestOrderFlowOverHTTP(t *testing.T) {
	s := newServer(t, nil)
	a := seedActors(t, s)
	customer := s.tokenFor(t, a.customer)
	vendor := s.tokenFor(t, a.vendor)
	admin := s.tokenFor(t, a.admin)

	rec := s.do(t, http.MethodPost, "/api/v1/cart", customer, map[string]any{"product_id": a.product.ID, "quantity": 9})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "CAPACITY_EXCEEDED", errorCode(t, rec))

	rec = s.do(t, http.MethodPost, "/api/v1/cart", customer, map[string]any{"product_id": a.product.ID, "quantity": 2})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/v1/orders", customer, map[string]any{})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	orders, err := s.app.Orders.ListOrders(context.Background(), a.customer.Actor())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	path := "/api/v1/orders/" + orders[0].ID

	// Vendor cannot skip ahead of the customer's payment.
	rec = s.do(t, http.MethodPost, path+"/confirm-receipt", vendor, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "STATE_CONFLICT", errorCode(t, rec))

	steps := []struct {
		token, action string
	}{
		{customer, "/payment"},
		{vendor, "/confirm-receipt"},
		{admin, "/approve"},
		{customer, "/confirm-delivery"},
	}
	for _, step := range steps {
		rec = s.do(t, http.MethodPost, path+step.action, step.token, nil)
		require.Equal(t, http.StatusOK, rec.Code, step.action+": "+rec.Body.String())
	}

	order, err := s.app.Orders.GetOrder(context.Background(), a.admin.Actor(), orders[0].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, order.Status)

	rec = s.do(t, http.MethodPut, path+"/status", admin, map[string]string{"status": "shipped"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))

	rec = s.do(t, http.MethodPost, path+"/comments", customer, map[string]string{"message": "thanks"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	rec = s.do(t, http.MethodGet, path+"/comments", vendor, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "thanks")
}

func TestSpinOverHTTP(t *testing.T) {
	s := newServer(t, nil)
	a := seedActors(t, s)
	customer := s.tokenFor(t, a.customer)

	for i := 0; i < 3; i++ {
		rec := s.do(t, http.MethodPost, "/api/v1/spin", customer, nil)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	rec := s.do(t, http.MethodPost, "/api/v1/spin", customer, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/admin/spin/reset", s.tokenFor(t, a.admin), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodPost, "/api/v1/spin", customer, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestMemorySessionsSatisfiesSessions(t *testing.T) {
	var sessions Sessions = newMemorySessions()
	_, err := sessions.ValidateToken(context.Background(), "missing")
	assert.True(t, errors.Is(err, redis.ErrSessionNotFound))
}
