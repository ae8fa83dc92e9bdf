package llm

import (
	"context"
)

// Provider defines the interface for chat-completion backends used for
// parameter inference.
type Provider interface {
	// Complete sends a system + user prompt pair and returns the raw text
	// content of the first choice.
	Complete(ctx context.Context, request *CompletionRequest) (*CompletionResponse, error)

	// Name returns the provider name (e.g., "deepseek", "gemini")
	Name() string
}

// CompletionRequest contains all parameters needed for a single completion
type CompletionRequest struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
	MaxTokens    int
	// JSONOutput asks the backend for a JSON response where it supports one.
	// Callers must still tolerate fenced or malformed output.
	JSONOutput bool
}

// Usage reports token accounting for one completion
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CompletionResponse contains the result from the LLM
type CompletionResponse struct {
	Content string `json:"content"`
	Model   string `json:"model"`
	Usage   Usage  `json:"usage"`
}

// AsMap returns usage in the shape used by logs and Langfuse.
func (u Usage) AsMap() map[string]interface{} {
	return map[string]interface{}{
		"input_tokens":  u.PromptTokens,
		"output_tokens": u.CompletionTokens,
		"total_tokens":  u.TotalTokens,
	}
}
