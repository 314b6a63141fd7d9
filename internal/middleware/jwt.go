package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/leslesan/geniuz-api/internal/models"
	"github.com/leslesan/geniuz-api/internal/service"
	appErrors "github.com/leslesan/geniuz-api/pkg/errors"
	"github.com/leslesan/geniuz-api/pkg/response"
)

// ContextUserKey is the gin context key storing JWT claims.
const ContextUserKey = "currentUser"

func bearerToken(c *gin.Context) (string, *appErrors.Error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "missing authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header")
	}
	return parts[1], nil
}

// JWT protects routes by requiring a valid user access token.
func JWT(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, authErr := bearerToken(c)
		if authErr != nil {
			response.Error(c, authErr)
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

// AdminJWT protects routes by requiring a token carrying the admin role and
// admin identity, verified against the admin signing secret.
func AdminJWT(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, authErr := bearerToken(c)
		if authErr != nil {
			response.Error(c, authErr)
			c.Abort()
			return
		}

		claims, err := authService.ValidateAdminToken(token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

// CurrentClaims extracts the JWT claims previously attached by JWT/AdminJWT.
func CurrentClaims(c *gin.Context) (*models.JWTClaims, bool) {
	value, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	claims, ok := value.(*models.JWTClaims)
	return claims, ok
}
