package utils

import (
	"github.com/gin-gonic/gin"
)

// JSONError sends an error body mapping a field or error key to a
// human-readable message, e.g. {"cantidad": "bid must exceed ..."}.
func JSONError(c *gin.Context, status int, field, message string) {
	c.JSON(status, gin.H{field: message})
}

// AbortJSONError is JSONError for middleware paths that must stop the chain.
func AbortJSONError(c *gin.Context, status int, field, message string) {
	c.AbortWithStatusJSON(status, gin.H{field: message})
}
