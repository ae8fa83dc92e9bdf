package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/sfx-api/internal/config"
)

// ProviderFactory creates providers based on the configured backend
type ProviderFactory struct {
	deepseekAPIKey  string
	deepseekBaseURL string
	deepseekModel   string
	geminiAPIKey    string
	geminiModel     string
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(cfg *config.Config) *ProviderFactory {
	return &ProviderFactory{
		deepseekAPIKey:  cfg.DeepSeekAPIKey,
		deepseekBaseURL: cfg.DeepSeekBaseURL,
		deepseekModel:   cfg.DeepSeekModel,
		geminiAPIKey:    cfg.GeminiAPIKey,
		geminiModel:     cfg.GeminiModel,
	}
}

// GetProvider returns the provider for the given name together with the
// model it should be called with.
func (f *ProviderFactory) GetProvider(ctx context.Context, providerName string) (Provider, string, error) {
	switch strings.ToLower(providerName) {
	case "", config.ProviderDeepSeek:
		if f.deepseekAPIKey == "" {
			return nil, "", &config.ConfigurationError{Key: "DEEPSEEK_API_KEY"}
		}
		return NewDeepSeekProvider(f.deepseekAPIKey, f.deepseekBaseURL), f.deepseekModel, nil

	case config.ProviderGemini:
		if f.geminiAPIKey == "" {
			return nil, "", &config.ConfigurationError{Key: "GEMINI_API_KEY"}
		}
		provider, err := NewGeminiProvider(ctx, f.geminiAPIKey)
		if err != nil {
			return nil, "", err
		}
		return provider, f.geminiModel, nil

	default:
		return nil, "", &config.ConfigurationError{
			Key:     "INFERENCE_PROVIDER",
			Message: fmt.Sprintf("unknown provider: %s (allowed: deepseek, gemini)", providerName),
		}
	}
}
