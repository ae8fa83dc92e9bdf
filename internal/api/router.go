package api

import (
	"github.com/Conceptual-Machines/sfx-api/internal/api/handlers"
	apimiddleware "github.com/Conceptual-Machines/sfx-api/internal/api/middleware"
	"github.com/Conceptual-Machines/sfx-api/internal/config"
	"github.com/Conceptual-Machines/sfx-api/internal/mcpserver"
	"github.com/Conceptual-Machines/sfx-api/internal/metrics"
	"github.com/gin-gonic/gin"
)

const mcpPath = "/mcp"

// SetupRouter builds the HTTP surface: REST endpoints, the MCP JSON-RPC
// endpoint and the operational routes.
func SetupRouter(
	cfg *config.Config,
	service handlers.SfxPipeline,
	mcpServer *mcpserver.Server,
	recorder *metrics.Recorder,
	version string,
) *gin.Engine {
	router := gin.New()

	// Recovery must be first
	router.Use(apimiddleware.RecoverWithSentry())
	router.Use(apimiddleware.SentryMiddleware())
	router.Use(apimiddleware.RequestTracking(recorder))

	healthHandler := handlers.NewHealthHandler(version, cfg.MCPTransport)
	router.GET("/health", healthHandler.HealthCheck)

	mcpHandler := handlers.NewMCPHandler(cfg.MCPTransport, mcpPath)
	router.GET("/mcp/status", mcpHandler.MCPStatus)

	metricsHandler := handlers.NewMetricsHandler(version, cfg.MCPTransport, recorder)
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	auth := apimiddleware.Auth(cfg.IsGatewayMode())

	router.POST(mcpPath, auth, gin.WrapH(mcpServer.Handler()))

	v1 := router.Group("/api/v1")
	v1.Use(auth)
	{
		sfxHandler := handlers.NewSfxHandler(service)
		v1.POST("/sfx/generations", sfxHandler.Generate)
		v1.POST("/sfx/variations", sfxHandler.CreateVariation)
		v1.POST("/sfx/batch", sfxHandler.GenerateBatch)
		v1.GET("/account/usage", sfxHandler.AccountUsage)
	}

	return router
}
