package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ArowuTest/hostboard-backend/internal/apperrors"
	"github.com/ArowuTest/hostboard-backend/internal/models"
	"github.com/ArowuTest/hostboard-backend/internal/services"
	"github.com/ArowuTest/hostboard-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// CallerKey is the gin context key holding the models.CallerContext
	CallerKey = "caller"
	// ActAsHeader lets an admin view the app as another host
	ActAsHeader = "X-Act-As"
)

// JWTAuthMiddleware verifies the bearer token and stores the resolved caller in the context
func JWTAuthMiddleware(tokens *jwt.TokenService, identity services.IdentityService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const bearerSchema = "Bearer "
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}
		if !strings.HasPrefix(authHeader, bearerSchema) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must start with Bearer "})
			return
		}

		claims, err := tokens.Parse(strings.TrimPrefix(authHeader, bearerSchema))
		if err != nil {
			logger.Debug("Token rejected", zap.Error(err))
			if errors.Is(err, jwt.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has expired"})
			} else {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			}
			return
		}

		caller, err := identity.Resolve(c.Request.Context(), models.Identity{
			AuthID: claims.Subject,
			Email:  claims.Email,
			Role:   claims.Role,
		}, c.GetHeader(ActAsHeader))
		if err != nil {
			c.AbortWithStatusJSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error()})
			return
		}

		c.Set(CallerKey, caller)
		c.Next()
	}
}

// RequireOperator rejects callers that may not manage broadcasts
func RequireOperator() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := GetCaller(c)
		if !ok || !caller.IsOperator() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Operator role required"})
			return
		}
		c.Next()
	}
}

// GetCaller returns the caller stored by JWTAuthMiddleware
func GetCaller(c *gin.Context) (models.CallerContext, bool) {
	v, ok := c.Get(CallerKey)
	if !ok {
		return models.CallerContext{}, false
	}
	caller, ok := v.(models.CallerContext)
	return caller, ok
}
