package mcpserver

import (
	"github.com/Conceptual-Machines/sfx-api/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	toolGenerateSfx     = "generate_sfx"
	toolCreateVariation = "create_sfx_variation"
	toolGenerateBatch   = "generate_sfx_batch"
	toolAccountUsage    = "get_account_usage"
)

// ToolNames lists the registered tools in declaration order
func ToolNames() []string {
	return []string{toolGenerateSfx, toolCreateVariation, toolGenerateBatch, toolAccountUsage}
}

func durationOptions(description string) []mcp.PropertyOption {
	return []mcp.PropertyOption{
		mcp.Min(models.MinDurationSeconds),
		mcp.Max(models.MaxDurationSeconds),
		mcp.Description(description),
	}
}

func enumOptions(values []string, description string) []mcp.PropertyOption {
	return []mcp.PropertyOption{mcp.Enum(values...), mcp.Description(description)}
}

func generateSfxTool() mcp.Tool {
	return mcp.NewTool(toolGenerateSfx,
		mcp.WithDescription("Generate game sound effects based on description. Uses DeepSeek for parameter mapping and Soundraw for audio generation. Returns audio URL, share link, and optional game engine integration code."),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description(`Description of the sound effect (e.g., "sword swing whoosh", "ui button click")`),
		),
		mcp.WithString("category", enumOptions(models.Strings(models.Categories), "SFX category for better parameter mapping")...),
		mcp.WithNumber("duration_seconds", durationOptions("Duration in seconds (1-30, default: 5)")...),
		mcp.WithString("intensity", enumOptions(models.Strings(models.Intensities), "Intensity level")...),
		mcp.WithString("engine", enumOptions(models.Strings(models.Engines), "Game engine for integration code snippets")...),
		mcp.WithString("file_format", enumOptions(models.Strings(models.FileFormats), "Audio file format (default: m4a)")...),
	)
}

func createVariationTool() mcp.Tool {
	return mcp.NewTool(toolCreateVariation,
		mcp.WithDescription("Create a variation of a previously generated sound effect from its Soundraw share link. Returns an m4a audio URL and share link."),
		mcp.WithString("share_link", mcp.Required(), mcp.Description("Original SFX share_link")),
		mcp.WithString("variation_type",
			append(enumOptions(models.Strings(models.VariationTypes), "Type of variation"), mcp.Required())...,
		),
		mcp.WithNumber("duration_seconds", durationOptions("Duration in seconds")...),
	)
}

func generateBatchTool() mcp.Tool {
	return mcp.NewTool(toolGenerateBatch,
		mcp.WithDescription("Generate several game sound effects at once with shared category, duration, intensity and engine. Each description succeeds or fails independently."),
		mcp.WithArray("descriptions",
			mcp.Required(),
			mcp.WithStringItems(),
			mcp.MinItems(1),
			mcp.MaxItems(models.MaxBatchDescriptions),
			mcp.Description("Array of SFX descriptions to generate"),
		),
		mcp.WithString("category", enumOptions(models.Strings(models.Categories), "Common category for all SFX")...),
		mcp.WithNumber("duration_seconds", durationOptions("Duration for each SFX")...),
		mcp.WithString("intensity", enumOptions(models.Strings(models.Intensities), "Intensity for all SFX")...),
		mcp.WithString("engine", enumOptions(models.Strings(models.Engines), "Game engine for integration code")...),
	)
}

func accountUsageTool() mcp.Tool {
	return mcp.NewTool(toolAccountUsage,
		mcp.WithDescription("Get Soundraw account information and usage."),
	)
}
