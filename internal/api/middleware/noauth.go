package middleware

import (
	"github.com/gin-gonic/gin"
)

// NoAuth lets every request through as "anonymous" (AUTH_MODE=none)
func NoAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id_str", "anonymous")
		c.Next()
	}
}

// Auth picks the middleware for the configured auth mode
func Auth(gatewayMode bool) gin.HandlerFunc {
	if gatewayMode {
		return GatewayAuth()
	}
	return NoAuth()
}
