package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	defaultDeepSeekBaseURL = "https://api.deepseek.com/v1"
	defaultDeepSeekModel   = "deepseek-chat"
	defaultGeminiModel     = "gemini-2.5-flash"
	defaultSoundrawBaseURL = "https://soundraw.io/api/v3"

	defaultBatchConcurrency = 3

	ProviderDeepSeek = "deepseek"
	ProviderGemini   = "gemini"

	TransportHTTP  = "http"
	TransportStdio = "stdio"
)

// Config holds the application configuration.
// It is read once at startup and passed down through constructors; nothing
// below main reads the environment directly.
type Config struct {
	// Environment
	Environment string
	Port        string
	LogLevel    string

	// MCP transport: "http" (POST /mcp on the gin router) or "stdio"
	MCPTransport string

	// Auth mode
	// - "none": No auth (self-hosted, local dev)
	// - "gateway": Trust X-User-* headers from an upstream gateway
	AuthMode string

	// Parameter inference ("deepseek" uses the OpenAI-compatible API)
	InferenceProvider string
	DeepSeekAPIKey    string
	DeepSeekBaseURL   string
	DeepSeekModel     string
	GeminiAPIKey      string
	GeminiModel       string

	// Soundraw
	SoundrawAPIKey  string
	SoundrawBaseURL string

	// Batch generation
	BatchConcurrency int

	// Observability
	SentryDSN         string // Sentry DSN for error tracking
	LangfusePublicKey string // Langfuse public key
	LangfuseSecretKey string // Langfuse secret key
	LangfuseHost      string // Langfuse host URL (cloud or self-hosted)
	LangfuseEnabled   bool   // Feature flag for Langfuse
	CloudWatchEnabled bool

	// Archive (S3-compatible) for generated audio
	ArchiveEnabled   bool
	ArchiveEndpoint  string
	ArchiveRegion    string
	ArchiveBucket    string
	ArchiveAccessKey string
	ArchiveSecretKey string
	ArchivePublicURL string
}

// ConfigurationError reports a missing or invalid setting. It is fatal at
// startup and never retried.
type ConfigurationError struct {
	Key     string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Key, e.Message)
	}
	return fmt.Sprintf("%s environment variable is required", e.Key)
}

func Load() *Config {
	return &Config{
		Environment:  getEnv("ENVIRONMENT", "development"),
		Port:         getEnv("PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		MCPTransport: strings.ToLower(getEnv("MCP_TRANSPORT", TransportHTTP)),
		AuthMode:     getEnv("AUTH_MODE", "none"), // Default to no auth for self-hosted

		InferenceProvider: strings.ToLower(getEnv("INFERENCE_PROVIDER", ProviderDeepSeek)),
		DeepSeekAPIKey:    getEnv("DEEPSEEK_API_KEY", ""),
		DeepSeekBaseURL:   getEnv("DEEPSEEK_BASE_URL", defaultDeepSeekBaseURL),
		DeepSeekModel:     getEnv("DEEPSEEK_MODEL", defaultDeepSeekModel),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModel:       getEnv("GEMINI_MODEL", defaultGeminiModel),

		SoundrawAPIKey:  getEnv("SOUNDRAW_API_KEY", ""),
		SoundrawBaseURL: strings.TrimRight(getEnv("SOUNDRAW_BASE_URL", defaultSoundrawBaseURL), "/"),

		BatchConcurrency: clampMin(getEnvInt("BATCH_CONCURRENCY", defaultBatchConcurrency), 1),

		SentryDSN:         getEnv("SENTRY_DSN", ""),
		LangfusePublicKey: getEnv("LANGFUSE_PUBLIC_KEY", ""),
		LangfuseSecretKey: getEnv("LANGFUSE_SECRET_KEY", ""),
		LangfuseHost:      getEnv("LANGFUSE_HOST", "https://cloud.langfuse.com"),
		LangfuseEnabled:   getEnvBool("LANGFUSE_ENABLED", false),
		CloudWatchEnabled: getEnvBool("CLOUDWATCH_ENABLED", false),

		ArchiveEnabled:   getEnvBool("ARCHIVE_ENABLED", false),
		ArchiveEndpoint:  getEnv("ARCHIVE_S3_ENDPOINT", ""),
		ArchiveRegion:    getEnv("ARCHIVE_S3_REGION", "us-east-1"),
		ArchiveBucket:    getEnv("ARCHIVE_S3_BUCKET", ""),
		ArchiveAccessKey: getEnv("ARCHIVE_S3_ACCESS_KEY", ""),
		ArchiveSecretKey: getEnv("ARCHIVE_S3_SECRET_KEY", ""),
		ArchivePublicURL: getEnv("ARCHIVE_S3_PUBLIC_URL", ""),
	}
}

// Validate checks that the credentials required by the selected backends
// are present.
func (c *Config) Validate() error {
	switch c.InferenceProvider {
	case ProviderDeepSeek:
		if c.DeepSeekAPIKey == "" {
			return &ConfigurationError{Key: "DEEPSEEK_API_KEY"}
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return &ConfigurationError{Key: "GEMINI_API_KEY"}
		}
	default:
		return &ConfigurationError{
			Key:     "INFERENCE_PROVIDER",
			Message: fmt.Sprintf("unknown provider %q (allowed: deepseek, gemini)", c.InferenceProvider),
		}
	}

	if c.SoundrawAPIKey == "" {
		return &ConfigurationError{Key: "SOUNDRAW_API_KEY"}
	}

	if c.MCPTransport != TransportHTTP && c.MCPTransport != TransportStdio {
		return &ConfigurationError{
			Key:     "MCP_TRANSPORT",
			Message: fmt.Sprintf("unknown transport %q (allowed: http, stdio)", c.MCPTransport),
		}
	}

	if c.ArchiveEnabled && c.ArchiveBucket == "" {
		return &ConfigurationError{Key: "ARCHIVE_S3_BUCKET", Message: "required when ARCHIVE_ENABLED=true"}
	}

	return nil
}

// IsGatewayMode returns true if running behind an auth gateway
func (c *Config) IsGatewayMode() bool {
	return c.AuthMode == "gateway"
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// clampMin returns v if v >= min, otherwise min.
func clampMin(v, min int) int {
	if v < min {
		return min
	}
	return v
}
