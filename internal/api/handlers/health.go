package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	version   string
	transport string
}

func NewHealthHandler(version, transport string) *HealthHandler {
	return &HealthHandler{version: version, transport: transport}
}

// HealthCheck returns the health status of the API
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"version": h.version,
		"mcp_server": gin.H{
			"status":    "enabled",
			"transport": h.transport,
		},
	})
}
