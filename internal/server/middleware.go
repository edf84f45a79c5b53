package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"auction-hub/internal/auth"
	"auction-hub/internal/models"
	"auction-hub/utils"

	"github.com/gin-gonic/gin"
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

// AuthMiddleware verifies the bearer token and stores the immutable
// session context for downstream handlers.
func AuthMiddleware(tokenMaker *auth.TokenMaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := ""
		if strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimPrefix(header, "Bearer ")
		} else if q := c.Query("token"); q != "" {
			// Browsers cannot set websocket headers, so /ws may carry
			// the token as a query parameter.
			token = q
		}
		if token == "" {
			utils.JSONError(c, http.StatusUnauthorized, auth.ErrInvalidToken, "missing bearer token")
			c.Abort()
			return
		}

		sess, err := tokenMaker.VerifyToken(token)
		if err != nil {
			utils.JSONError(c, http.StatusUnauthorized, err, "invalid token")
			c.Abort()
			return
		}

		c.Set(auth.ContextKey, sess)
		c.Next()
	}
}

// RequireRole aborts with 403 unless the session role is one of the
// allowed roles.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	errForbidden := errors.New("insufficient role")
	allowed := make(map[models.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		sess, ok := auth.FromGin(c)
		if !ok || !allowed[sess.Role] {
			utils.JSONError(c, http.StatusForbidden, errForbidden, "insufficient role")
			c.Abort()
			return
		}
		c.Next()
	}
}
