package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ArowuTest/hostboard-backend/internal/apperrors"
	"github.com/ArowuTest/hostboard-backend/internal/models"
	"github.com/ArowuTest/hostboard-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type stubIdentity struct {
	hostID primitive.ObjectID
}

func (s stubIdentity) Resolve(_ context.Context, identity models.Identity, actAs string) (models.CallerContext, error) {
	if actAs != "" && identity.Role != models.RoleAdmin {
		return models.CallerContext{}, apperrors.ErrForbidden
	}
	identity.HostID = s.hostID
	return models.CallerContext{Real: identity}, nil
}

func newAuthRouter(tokens *jwt.TokenService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWTAuthMiddleware(tokens, stubIdentity{hostID: primitive.NewObjectID()}, zap.NewNop()))
	r.GET("/me", func(c *gin.Context) {
		caller, _ := GetCaller(c)
		c.JSON(http.StatusOK, gin.H{"actor": caller.Actor(), "role": caller.Real.Role})
	})
	r.GET("/ops", RequireOperator(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func get(r http.Handler, path, token string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware(t *testing.T) {
	tokens := jwt.NewTokenService("secret", "hostboard", time.Hour)
	r := newAuthRouter(tokens)

	hostToken, err := tokens.Issue("auth|ada", "ada@example.com", models.RoleHost)
	require.NoError(t, err)
	opsToken, err := tokens.Issue("auth|ops", "ops@example.com", models.RoleOperator)
	require.NoError(t, err)

	t.Run("missing header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "").Code)
	})
	t.Run("bad token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "garbage").Code)
	})
	t.Run("foreign secret", func(t *testing.T) {
		other, err := jwt.NewTokenService("other", "hostboard", time.Hour).Issue("auth|x", "", models.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, get(r, "/me", other).Code)
	})
	t.Run("valid", func(t *testing.T) {
		w := get(r, "/me", hostToken)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "ada@example.com")
	})
	t.Run("host cannot act as", func(t *testing.T) {
		w := get(r, "/me", hostToken, ActAsHeader, primitive.NewObjectID().Hex())
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
	t.Run("operator only", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, get(r, "/ops", hostToken).Code)
		assert.Equal(t, http.StatusNoContent, get(r, "/ops", opsToken).Code)
	})
}

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewRateLimiter(rate.Limit(0.001), 2).Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, get(r, "/", "").Code)
	assert.Equal(t, http.StatusOK, get(r, "/", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "/", "").Code)
}

func TestRateLimiterEvictsIdleCallers(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(rate.Limit(1), 1)
	rl.now = func() time.Time { return now }
	rl.lastSweep = now

	rl.getLimiter("10.0.0.1")
	rl.getLimiter("10.0.0.2")
	require.Len(t, rl.limiters, 2)

	now = now.Add(limiterIdleTTL / 2)
	rl.getLimiter("10.0.0.2")

	now = now.Add(limiterIdleTTL / 2)
	rl.getLimiter("10.0.0.3")

	assert.Len(t, rl.limiters, 2)
	assert.NotContains(t, rl.limiters, "10.0.0.1")
	assert.Contains(t, rl.limiters, "10.0.0.2")
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware(), LoggerMiddleware(zap.NewNop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := get(r, "/", "")
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)

	w = get(r, "/", "", "X-Request-ID", "abc")
	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware([]string{"http://localhost:3000"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := get(r, "/", "", "Origin", "http://localhost:3000")
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	w = get(r, "/", "", "Origin", "http://evil.example.com")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
