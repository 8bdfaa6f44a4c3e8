package handlers

import (
	"github.com/gin-gonic/gin"
)

func userIDFromContext(c *gin.Context) string {
	if val, ok := c.Get("userID"); ok {
		if id, ok := val.(string); ok {
			return id
		}
	}
	return ""
}
