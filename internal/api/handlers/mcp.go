package handlers

import (
	"net/http"

	"github.com/Conceptual-Machines/sfx-api/internal/mcpserver"
	"github.com/gin-gonic/gin"
)

type MCPHandler struct {
	transport string
	path      string
}

func NewMCPHandler(transport, path string) *MCPHandler {
	return &MCPHandler{transport: transport, path: path}
}

func (h *MCPHandler) MCPStatus(c *gin.Context) {
	response := gin.H{
		"enabled":   true,
		"name":      mcpserver.ServerName,
		"version":   mcpserver.ServerVersion,
		"transport": h.transport,
		"url":       "",
		"tools":     mcpserver.ToolNames(),
		"status":    "enabled",
	}
	if h.path != "" {
		scheme := "http"
		if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
			scheme = "https"
		}
		response["url"] = scheme + "://" + c.Request.Host + h.path
	}

	c.JSON(http.StatusOK, response)
}
