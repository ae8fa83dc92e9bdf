package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/Conceptual-Machines/sfx-api/internal/logger"
	"github.com/getsentry/sentry-go"
	"google.golang.org/genai"
)

const (
	providerNameGemini = "gemini"
	mimeTypeJSON       = "application/json"
)

// GeminiProvider implements the Provider interface using Google's Gemini API
type GeminiProvider struct {
	client *genai.Client
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
	}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return providerNameGemini
}

// Complete implements a single generation call using Gemini's API
func (p *GeminiProvider) Complete(ctx context.Context, request *CompletionRequest) (*CompletionResponse, error) {
	transaction := sentry.StartTransaction(ctx, "gemini.complete")
	defer transaction.Finish()

	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", providerNameGemini)

	span := transaction.StartChild("gemini.api_call")
	apiStartTime := time.Now()
	result, err := p.client.Models.GenerateContent(ctx, request.Model, genai.Text(request.UserPrompt), buildGeminiConfig(request))
	apiDuration := time.Since(apiStartTime)
	span.Finish()

	if err != nil {
		logger.Error("Gemini request failed", err, logger.Fields{
			"model":       request.Model,
			"duration_ms": apiDuration.Milliseconds(),
		})
		transaction.SetTag("success", "false")
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	transaction.SetTag("success", "true")
	return processGeminiResponse(result, request.Model), nil
}

// buildGeminiConfig maps our request onto a generation config
func buildGeminiConfig(request *CompletionRequest) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: request.SystemPrompt}},
		},
	}
	if request.Temperature > 0 {
		config.Temperature = genai.Ptr(float32(request.Temperature))
	}
	if request.MaxTokens > 0 {
		config.MaxOutputTokens = int32(request.MaxTokens)
	}
	if request.JSONOutput {
		config.ResponseMIMEType = mimeTypeJSON
	}
	return config
}

// processGeminiResponse converts Gemini response to our CompletionResponse.
// Empty output is returned as empty content; the caller decides if that is fatal.
func processGeminiResponse(result *genai.GenerateContentResponse, model string) *CompletionResponse {
	out := &CompletionResponse{
		Content: result.Text(),
		Model:   model,
	}
	if result.ModelVersion != "" {
		out.Model = result.ModelVersion
	}
	if result.UsageMetadata != nil {
		out.Usage = Usage{
			PromptTokens:     int(result.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(result.UsageMetadata.TotalTokenCount),
		}
	}
	return out
}
