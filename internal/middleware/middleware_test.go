package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/types"
)

type stubValidator struct{}

func (stubValidator) ValidateToken(token string) (*types.TokenClaims, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &types.TokenClaims{UserID: 7, Username: "cook"}, nil
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Logger(), Recovery())
	return r
}

func TestRequestIDIsPropagated(t *testing.T) {
	r := newTestRouter()
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, RequestIDFrom(c))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "abc-123", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)
}

func TestLoggerIsAvailableFromRequestContext(t *testing.T) {
	r := newTestRouter()
	var fromCtx *zerolog.Logger
	r.GET("/ping", func(c *gin.Context) {
		fromCtx = zerolog.Ctx(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.NotNil(t, fromCtx)
	assert.NotEqual(t, zerolog.Disabled, fromCtx.GetLevel())
}

func TestRecoveryReturnsJSON(t *testing.T) {
	r := newTestRouter()
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"internal_error"`)
}

func TestAuthMiddleware(t *testing.T) {
	r := newTestRouter()
	r.GET("/private", AuthMiddleware(stubValidator{}), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": CurrentUserID(c)})
	})
	r.GET("/public", OptionalAuth(stubValidator{}), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": CurrentUserID(c)})
	})

	tests := []struct {
		path   string
		header string
		status int
		body   string
	}{
		{"/private", "", http.StatusUnauthorized, `"code":"unauthorized"`},
		{"/private", "Token good", http.StatusUnauthorized, `"code":"unauthorized"`},
		{"/private", "Bearer bad", http.StatusUnauthorized, `"code":"unauthorized"`},
		{"/private", "Bearer good", http.StatusOK, `{"user_id":7}`},
		{"/public", "", http.StatusOK, `{"user_id":0}`},
		{"/public", "Bearer good", http.StatusOK, `{"user_id":7}`},
		{"/public", "Bearer bad", http.StatusUnauthorized, `"code":"unauthorized"`},
	}
	for _, tt := range tests {
		t.Run(tt.path+" "+tt.header, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
		})
	}
}

func TestMetricsCountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics())
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/items/:id", "200"))
	beforeMissing := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "unmatched", "404"))

	for _, path := range []string{"/items/1", "/items/2", "/nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, before+2, testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/items/:id", "200")))
	assert.Equal(t, beforeMissing+1, testutil.ToFloat64(httpReqs.WithLabelValues("GET", "unmatched", "404")))
	assert.Zero(t, testutil.ToFloat64(httpInflight))
}
