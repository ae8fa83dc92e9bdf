package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/Conceptual-Machines/sfx-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockProvider is a test implementation of the Provider interface
type MockProvider struct {
	name         string
	completeFunc func(ctx context.Context, request *CompletionRequest) (*CompletionResponse, error)
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) Complete(ctx context.Context, request *CompletionRequest) (*CompletionResponse, error) {
	if m.completeFunc != nil {
		return m.completeFunc(ctx, request)
	}
	return &CompletionResponse{}, nil
}

func TestProviderInterface(t *testing.T) {
	var p Provider = &MockProvider{name: "mock"}
	assert.Equal(t, "mock", p.Name())
}

func TestMockProviderComplete(t *testing.T) {
	callCount := 0
	mock := &MockProvider{
		name: "test",
		completeFunc: func(_ context.Context, request *CompletionRequest) (*CompletionResponse, error) {
			callCount++
			require.Equal(t, "test-model", request.Model)
			return &CompletionResponse{Content: `{"moods":["Epic"]}`, Usage: Usage{TotalTokens: 12}}, nil
		},
	}

	resp, err := mock.Complete(context.Background(), &CompletionRequest{Model: "test-model"})
	require.NoError(t, err)
	assert.Equal(t, 1, callCount)
	assert.Equal(t, 12, resp.Usage.TotalTokens)
}

func TestUsageAsMap(t *testing.T) {
	m := Usage{PromptTokens: 3, CompletionTokens: 4, TotalTokens: 7}.AsMap()
	assert.Equal(t, 3, m["input_tokens"])
	assert.Equal(t, 4, m["output_tokens"])
	assert.Equal(t, 7, m["total_tokens"])
}

func TestProviderFactory(t *testing.T) {
	cfg := &config.Config{
		DeepSeekAPIKey:  "ds-key",
		DeepSeekBaseURL: "https://api.deepseek.com/v1",
		DeepSeekModel:   "deepseek-chat",
	}
	factory := NewProviderFactory(cfg)

	provider, model, err := factory.GetProvider(context.Background(), "deepseek")
	require.NoError(t, err)
	assert.Equal(t, "deepseek", provider.Name())
	assert.Equal(t, "deepseek-chat", model)

	provider, _, err = factory.GetProvider(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "deepseek", provider.Name(), "deepseek is the default backend")
}

func TestProviderFactoryErrors(t *testing.T) {
	factory := NewProviderFactory(&config.Config{})

	tests := []struct {
		provider string
		wantKey  string
	}{
		{provider: "deepseek", wantKey: "DEEPSEEK_API_KEY"},
		{provider: "gemini", wantKey: "GEMINI_API_KEY"},
		{provider: "claude", wantKey: "INFERENCE_PROVIDER"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			_, _, err := factory.GetProvider(context.Background(), tt.provider)
			var cfgErr *config.ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.wantKey, cfgErr.Key)
		})
	}
}
