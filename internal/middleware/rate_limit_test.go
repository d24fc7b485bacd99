package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (Decision, error) {
	return Decision{}, errors.New("redis down")
}

func TestLocalLimiter(t *testing.T) {
	l := NewLocalLimiter(RateLimitConfig{Window: time.Hour, Limit: 2})
	ctx := context.Background()

	d, err := l.Allow(ctx, "user:1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)

	d, _ = l.Allow(ctx, "user:1")
	assert.True(t, d.Allowed)
	d, _ = l.Allow(ctx, "user:1")
	assert.False(t, d.Allowed)

	d, _ = l.Allow(ctx, "user:2")
	assert.True(t, d.Allowed, "buckets are per key")
}

func TestRateLimitMiddleware(t *testing.T) {
	r := newTestRouter()
	r.POST("/recipes", AuthMiddleware(stubValidator{}), RateLimit(NewRecipeCreationLimiter(nil, 1)), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	send := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/recipes", nil)
		req.Header.Set("Authorization", "Bearer good")
		r.ServeHTTP(w, req)
		return w
	}

	first := send()
	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := send()
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Contains(t, second.Body.String(), `"code":"rate_limited"`)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
}

func TestRateLimitFailsOpen(t *testing.T) {
	r := newTestRouter()
	r.GET("/x", RateLimit(failingLimiter{}), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitDisabled(t *testing.T) {
	r := newTestRouter()
	r.GET("/x", RateLimit(nil), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
}

func TestRedisLimiter(t *testing.T) {
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed, skipping container-based test")
	}
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })

	l := NewRedisLimiter(client, RateLimitConfig{Window: time.Hour, Limit: 2, KeyPrefix: "test"})
	for i, want := range []bool{true, true, false} {
		d, err := l.Allow(ctx, "user:1")
		require.NoError(t, err)
		assert.Equal(t, want, d.Allowed, "request %d", i+1)
	}
	d, err := l.Allow(ctx, "user:2")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)
}
