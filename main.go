package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Conceptual-Machines/sfx-api/internal/agents/sfx"
	"github.com/Conceptual-Machines/sfx-api/internal/api"
	"github.com/Conceptual-Machines/sfx-api/internal/config"
	"github.com/Conceptual-Machines/sfx-api/internal/llm"
	"github.com/Conceptual-Machines/sfx-api/internal/logger"
	"github.com/Conceptual-Machines/sfx-api/internal/mcpserver"
	"github.com/Conceptual-Machines/sfx-api/internal/metrics"
	"github.com/Conceptual-Machines/sfx-api/internal/observability"
	"github.com/Conceptual-Machines/sfx-api/internal/services"
	"github.com/Conceptual-Machines/sfx-api/internal/soundraw"
	"github.com/Conceptual-Machines/sfx-api/internal/storage"
	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const (
	sentryFlushTimeout = 2 * time.Second
	shutdownTimeout    = 30 * time.Second
)

// releaseVersion is set via ldflags during build
var releaseVersion = "dev"

// GetVersion returns the current release version
func GetVersion() string {
	return releaseVersion
}

func main() {
	os.Exit(run())
}

func run() int {
	envErr := godotenv.Load()

	cfg := config.Load()
	logger.Setup(cfg.LogLevel, !cfg.IsProduction())
	if envErr != nil {
		logger.Debug("No .env file found, using environment variables", nil)
	}

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", err, nil)
		return 1
	}

	sentryEnabled := initSentry(cfg)
	if sentryEnabled {
		defer sentry.Flush(sentryFlushTimeout)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recorder := metrics.NewRecorder(
		metrics.NewClient(ctx, cfg.Environment, cfg.CloudWatchEnabled),
		metrics.NewSentryMetrics(sentryEnabled),
	)

	langfuse := observability.NewLangfuseClient(context.Background(), cfg)
	defer langfuse.Flush()

	service, err := buildService(ctx, cfg, langfuse, recorder)
	if err != nil {
		sentry.CaptureException(err)
		logger.Error("Failed to initialize SFX service", err, nil)
		return 1
	}
	mcpServer := mcpserver.NewServer(service)

	if cfg.MCPTransport == config.TransportStdio {
		if err := mcpServer.Serve(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("MCP stdio server stopped", err, nil)
			return 1
		}
		return 0
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.SetupRouter(cfg, service, mcpServer, recorder, GetVersion())
	if err := serveHTTP(ctx, router, cfg.Port); err != nil {
		sentry.CaptureException(err)
		logger.Error("Failed to start server", err, nil)
		return 1
	}
	return 0
}

func buildService(
	ctx context.Context,
	cfg *config.Config,
	langfuse *observability.LangfuseClient,
	recorder *metrics.Recorder,
) (*services.SfxService, error) {
	provider, model, err := llm.NewProviderFactory(cfg).GetProvider(ctx, cfg.InferenceProvider)
	if err != nil {
		return nil, err
	}

	agent, err := sfx.NewAgent(provider, model, langfuse, recorder)
	if err != nil {
		return nil, err
	}

	composer := soundraw.NewClient(
		cfg.SoundrawAPIKey,
		cfg.SoundrawBaseURL,
		soundraw.DefaultPollInterval,
		soundraw.DefaultMaxAttempts,
		nil,
		recorder,
	)

	var archiver services.Archiver
	if cfg.ArchiveEnabled {
		s3Archiver, err := storage.NewArchiver(ctx, cfg)
		if err != nil {
			return nil, err
		}
		archiver = s3Archiver
	}

	return services.NewSfxService(agent, composer, archiver, recorder, cfg.BatchConcurrency), nil
}

func serveHTTP(ctx context.Context, handler http.Handler, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", logger.Fields{"port": port, "version": GetVersion()})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func initSentry(cfg *config.Config) bool {
	if cfg.SentryDSN == "" {
		logger.Warn("Sentry not configured (SENTRY_DSN not set)", nil)
		return false
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		Release:          "sfx-api@" + releaseVersion,
		EnableTracing:    true,
		TracesSampleRate: 1.0,
		Debug:            !cfg.IsProduction(),
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			if event.Request != nil {
				event.Request.Headers = filterSensitiveHeaders(event.Request.Headers)
			}
			return event
		},
	})
	if err != nil {
		logger.Warn("Failed to initialize Sentry", logger.Fields{"error": err.Error()})
		return false
	}

	logger.Info("Sentry initialized", logger.Fields{
		"environment": cfg.Environment,
		"release":     releaseVersion,
	})
	return true
}

func filterSensitiveHeaders(headers map[string]string) map[string]string {
	filtered := make(map[string]string, len(headers))
	sensitiveKeys := map[string]bool{
		"authorization": true,
		"cookie":        true,
		"x-api-key":     true,
	}

	for k, v := range headers {
		if sensitiveKeys[strings.ToLower(k)] {
			filtered[k] = "[REDACTED]"
		} else {
			filtered[k] = v
		}
	}
	return filtered
}
