package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"pacomprar/internal/authz"
	"pacomprar/internal/identity"
	"pacomprar/services/auction/helpers"
	"pacomprar/utils"
)

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	utils.Info("HTTP Request", map[string]any{
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"status":  c.Writer.Status(),
		"latency": time.Since(start).String(),
	})
}

// AuthMiddleware resolves the caller from an optional bearer access token.
// Requests without an Authorization header proceed anonymously; a header
// with an invalid token is rejected outright.
func AuthMiddleware(issuer *identity.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			utils.AbortJSONError(c, http.StatusUnauthorized, "detail", "malformed authorization header")
			return
		}
		claims, err := issuer.Verify(token, identity.TokenTypeAccess)
		if err != nil {
			utils.AbortJSONError(c, http.StatusUnauthorized, "detail", "invalid or expired token")
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			utils.AbortJSONError(c, http.StatusUnauthorized, "detail", "invalid or expired token")
			return
		}
		c.Set(helpers.CallerContextKey, authz.Caller{
			ID:            userID,
			Username:      claims.Username,
			IsAdmin:       claims.IsAdmin,
			Authenticated: true,
		})
		c.Next()
	}
}

// RequireAuth stops anonymous requests on caller-scoped routes.
func RequireAuth(c *gin.Context) {
	if !helpers.CallerFrom(c).Authenticated {
		utils.AbortJSONError(c, http.StatusUnauthorized, "detail", "authentication required")
		return
	}
	c.Next()
}
