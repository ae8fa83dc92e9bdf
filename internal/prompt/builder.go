package prompt

import (
	"github.com/Conceptual-Machines/sfx-api/internal/models"
)

// Builder builds prompts for the SFX parameter agent. The system prompt is
// rendered once and reused for every request.
type Builder struct {
	loader       *Loader
	systemPrompt string
}

// NewPromptBuilder creates a new prompt builder
func NewPromptBuilder() (*Builder, error) {
	loader, err := NewPromptLoader()
	if err != nil {
		return nil, err
	}
	system, err := loader.GetSystemPrompt()
	if err != nil {
		return nil, err
	}
	return &Builder{loader: loader, systemPrompt: system}, nil
}

// SystemPrompt returns the cached system prompt
func (b *Builder) SystemPrompt() string {
	return b.systemPrompt
}

// BuildUserPrompt builds the user message for one description
func (b *Builder) BuildUserPrompt(description string, category models.Category, intensity models.Intensity) (string, error) {
	return b.loader.GetUserPrompt(description, category, intensity)
}
