package utils

import (
	"github.com/gin-gonic/gin"
)

// Every command ack shares one envelope: status, a single human-readable
// message, and either the resulting data or the error detail. Clients
// key off "message" for display and "data" for state.

// JSONResponse sends a success acknowledgment carrying the resulting data
func JSONResponse(c *gin.Context, status int, data any, message string) {
	c.JSON(status, gin.H{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

// JSONError sends a failure acknowledgment. The message is the single
// reason shown to the caller; err carries the wrapped detail.
func JSONError(c *gin.Context, status int, err error, message string) {
	c.JSON(status, gin.H{
		"status":  status,
		"message": message,
		"error":   err.Error(),
	})
}
