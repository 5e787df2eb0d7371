package utils

import (
	"github.com/gin-gonic/gin"
)

// JSONResponse sends a structured JSON response
func JSONResponse(c *gin.Context, status int, data any, message string) {
	c.JSON(status, gin.H{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

// JSONRedirect sends a structured JSON response that also names the page the client should go to next
func JSONRedirect(c *gin.Context, status int, data any, message, location string) {
	c.Header("Location", location)
	c.JSON(status, gin.H{
		"status":   status,
		"message":  message,
		"data":     data,
		"redirect": location,
	})
}

// JSONError sends a structured error response with a machine-checkable code
func JSONError(c *gin.Context, status int, err error, code, message string) {
	c.JSON(status, gin.H{
		"status":  status,
		"code":    code,
		"message": message,
		"error":   err.Error(),
	})
}
