package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockIdempotencyStore struct {
	mock.Mock
}

func (m *mockIdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *mockIdempotencyStore) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

const scopedKey = "idempotency:POST:/transactions:abc-123"

func idempotentRouter(store portsrepo.IdempotencyStore, status int) (*gin.Engine, *int) {
	gin.SetMode(gin.TestMode)
	calls := 0
	r := gin.New()
	r.POST("/transactions", middleware.Idempotency(store, time.Hour), func(c *gin.Context) {
		calls++
		c.Status(status)
	})
	return r, &calls
}

func post(r http.Handler, key string) int {
	req := httptest.NewRequest(http.MethodPost, "/transactions", nil)
	if key != "" {
		req.Header.Set(middleware.IdempotencyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestIdempotency_FirstRequestPasses(t *testing.T) {
	store := new(mockIdempotencyStore)
	store.On("Reserve", mock.Anything, scopedKey, time.Hour).Return(true, nil).Once()
	r, calls := idempotentRouter(store, http.StatusCreated)

	assert.Equal(t, http.StatusCreated, post(r, "abc-123"))
	assert.Equal(t, 1, *calls)
	store.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
}

func TestIdempotency_RepeatedKeyConflicts(t *testing.T) {
	store := new(mockIdempotencyStore)
	store.On("Reserve", mock.Anything, scopedKey, time.Hour).Return(false, nil).Once()
	r, calls := idempotentRouter(store, http.StatusCreated)

	assert.Equal(t, http.StatusConflict, post(r, "abc-123"))
	assert.Equal(t, 0, *calls)
}

func TestIdempotency_FailedRequestReleasesKey(t *testing.T) {
	store := new(mockIdempotencyStore)
	store.On("Reserve", mock.Anything, scopedKey, time.Hour).Return(true, nil).Once()
	store.On("Release", mock.Anything, scopedKey).Return(nil).Once()
	r, _ := idempotentRouter(store, http.StatusBadRequest)

	assert.Equal(t, http.StatusBadRequest, post(r, "abc-123"))
	store.AssertExpectations(t)
}

func TestIdempotency_ReleaseSurvivesClientDisconnect(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := new(mockIdempotencyStore)
	store.On("Reserve", mock.Anything, scopedKey, time.Hour).Return(true, nil).Once()
	store.On("Release", mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil }), scopedKey).
		Return(nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := gin.New()
	r.POST("/transactions", middleware.Idempotency(store, time.Hour), func(c *gin.Context) {
		cancel()
		c.Status(http.StatusInternalServerError)
	})

	req := httptest.NewRequest(http.MethodPost, "/transactions", nil).WithContext(ctx)
	req.Header.Set(middleware.IdempotencyHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	store.AssertExpectations(t)
}

func TestIdempotency_StoreErrorFailsOpen(t *testing.T) {
	store := new(mockIdempotencyStore)
	store.On("Reserve", mock.Anything, scopedKey, time.Hour).Return(false, errors.New("redis down")).Once()
	r, calls := idempotentRouter(store, http.StatusCreated)

	assert.Equal(t, http.StatusCreated, post(r, "abc-123"))
	assert.Equal(t, 1, *calls)
}

func TestIdempotency_WithoutHeaderOrStore(t *testing.T) {
	store := new(mockIdempotencyStore)
	r, calls := idempotentRouter(store, http.StatusCreated)
	assert.Equal(t, http.StatusCreated, post(r, ""))
	store.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything, mock.Anything)

	r, calls = idempotentRouter(nil, http.StatusCreated)
	assert.Equal(t, http.StatusCreated, post(r, "abc-123"))
	assert.Equal(t, 1, *calls)
}
