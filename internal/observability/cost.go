package observability

import (
	"strconv"

	"github.com/Conceptual-Machines/sfx-api/internal/llm"
)

// Pricing constants
const (
	tokensPerKilo       = 1000.0
	costFormatPrecision = 6

	// DeepSeek pricing (cache-miss input)
	deepseekChatInputPrice      = 0.00027
	deepseekChatOutputPrice     = 0.0011
	deepseekReasonerInputPrice  = 0.00055
	deepseekReasonerOutputPrice = 0.00219

	// Gemini 2.5 Flash pricing
	geminiFlashInputPrice  = 0.0003
	geminiFlashOutputPrice = 0.0025

	// GPT-4o-mini pricing
	gpt4oMiniInputPrice  = 0.00015
	gpt4oMiniOutputPrice = 0.0006

	defaultPricingModel = "deepseek-chat"
)

// ModelPricing contains pricing information per 1K tokens
type ModelPricing struct {
	InputPricePer1K  float64 // Price per 1K input tokens in USD
	OutputPricePer1K float64 // Price per 1K output tokens in USD
}

// PricingTable contains pricing for all models
var PricingTable = map[string]ModelPricing{
	"deepseek-chat": {
		InputPricePer1K:  deepseekChatInputPrice,
		OutputPricePer1K: deepseekChatOutputPrice,
	},
	"deepseek-reasoner": {
		InputPricePer1K:  deepseekReasonerInputPrice,
		OutputPricePer1K: deepseekReasonerOutputPrice,
	},
	"gemini-2.5-flash": {
		InputPricePer1K:  geminiFlashInputPrice,
		OutputPricePer1K: geminiFlashOutputPrice,
	},
	"gpt-4o-mini": {
		InputPricePer1K:  gpt4oMiniInputPrice,
		OutputPricePer1K: gpt4oMiniOutputPrice,
	},
}

// CalculateCost calculates the cost in USD for one completion
func CalculateCost(model string, usage llm.Usage) float64 {
	pricing, exists := PricingTable[model]
	if !exists {
		// Default to deepseek-chat pricing if model not found
		pricing = PricingTable[defaultPricingModel]
	}

	inputCost := (float64(usage.PromptTokens) / tokensPerKilo) * pricing.InputPricePer1K
	outputCost := (float64(usage.CompletionTokens) / tokensPerKilo) * pricing.OutputPricePer1K

	return inputCost + outputCost
}

// FormatCost formats a cost value as a USD string
func FormatCost(cost float64) string {
	return "$" + strconv.FormatFloat(cost, 'f', costFormatPrecision, 64)
}
