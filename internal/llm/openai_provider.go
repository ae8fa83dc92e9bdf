package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Conceptual-Machines/sfx-api/internal/logger"
	"github.com/getsentry/sentry-go"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	// Provider names
	providerNameOpenAI   = "openai"
	providerNameDeepSeek = "deepseek"

	maxErrorPreviewChars = 500
)

// OpenAIProvider implements the Provider interface using the Chat Completions
// API. Any OpenAI-compatible endpoint works, DeepSeek included.
type OpenAIProvider struct {
	client *openai.Client
	name   string
}

// NewOpenAIProvider creates a provider for an OpenAI-compatible endpoint.
// An empty baseURL targets api.openai.com.
func NewOpenAIProvider(name, apiKey, baseURL string) *OpenAIProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		// Inference is not retried; failures surface to the caller.
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if name == "" {
		name = providerNameOpenAI
	}

	client := openai.NewClient(opts...)
	return &OpenAIProvider{
		client: &client,
		name:   name,
	}
}

// NewDeepSeekProvider targets the DeepSeek chat API.
func NewDeepSeekProvider(apiKey, baseURL string) *OpenAIProvider {
	return NewOpenAIProvider(providerNameDeepSeek, apiKey, baseURL)
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return p.name
}

// Complete implements a single non-streaming chat completion
func (p *OpenAIProvider) Complete(ctx context.Context, request *CompletionRequest) (*CompletionResponse, error) {
	transaction := sentry.StartTransaction(ctx, p.name+".complete")
	defer transaction.Finish()

	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", p.name)

	params := p.buildRequestParams(request)

	span := transaction.StartChild(p.name + ".api_call")
	apiStartTime := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, params)
	apiDuration := time.Since(apiStartTime)
	span.Finish()

	if err != nil {
		logger.Error("Chat completion request failed", err, logger.Fields{
			"provider":    p.name,
			"model":       request.Model,
			"duration_ms": apiDuration.Milliseconds(),
		})
		transaction.SetTag("success", "false")
		return nil, fmt.Errorf("%s request failed: %w", p.name, err)
	}

	transaction.SetTag("success", "true")

	out := &CompletionResponse{
		Model: resp.Model,
		Usage: Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}
	if out.Model == "" {
		out.Model = request.Model
	}
	if len(resp.Choices) > 0 {
		out.Content = resp.Choices[0].Message.Content
	}

	logger.Debug("Chat completion received", logger.Fields{
		"provider":       p.name,
		"model":          out.Model,
		"duration_ms":    apiDuration.Milliseconds(),
		"output_length":  len(out.Content),
		"output_preview": truncateString(out.Content, maxErrorPreviewChars),
	})

	return out, nil
}

// buildRequestParams converts our request into chat completion params
func (p *OpenAIProvider) buildRequestParams(request *CompletionRequest) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(request.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(request.SystemPrompt),
			openai.UserMessage(request.UserPrompt),
		},
	}
	if request.Temperature > 0 {
		params.Temperature = openai.Float(request.Temperature)
	}
	if request.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(request.MaxTokens))
	}
	return params
}

func truncateString(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
