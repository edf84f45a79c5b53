package auth

import "github.com/gin-gonic/gin"

// ContextKey is where the verified session context lives in a gin context.
const ContextKey = "session_context"

// FromGin returns the session context stored by the auth middleware.
func FromGin(c *gin.Context) (SessionContext, bool) {
	v, ok := c.Get(ContextKey)
	if !ok {
		return SessionContext{}, false
	}
	sess, ok := v.(SessionContext)
	return sess, ok
}
