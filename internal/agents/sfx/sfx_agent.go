package sfx

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Conceptual-Machines/sfx-api/internal/llm"
	"github.com/Conceptual-Machines/sfx-api/internal/logger"
	"github.com/Conceptual-Machines/sfx-api/internal/metrics"
	"github.com/Conceptual-Machines/sfx-api/internal/models"
	"github.com/Conceptual-Machines/sfx-api/internal/observability"
	"github.com/Conceptual-Machines/sfx-api/internal/prompt"
	"github.com/getsentry/sentry-go"
	lfmodel "github.com/henomis/langfuse-go/model"
)

const (
	inferenceTemperature = 0.7
	inferenceMaxTokens   = 400

	maxMoods  = 2
	maxGenres = 2
	maxThemes = 1
)

var (
	openingFence = regexp.MustCompile("^```(?:json|JSON)?[ \t]*\r?\n?")
	closingFence = regexp.MustCompile("\r?\n?```$")
)

// InferenceError is returned when the model call fails or its output cannot
// be used. Content holds the raw completion when there was one.
type InferenceError struct {
	Message string
	Content string
	Err     error
}

func (e *InferenceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *InferenceError) Unwrap() error { return e.Err }

// Agent maps free-text SFX descriptions onto the Soundraw vocabulary
type Agent struct {
	provider llm.Provider
	model    string
	prompts  *prompt.Builder
	langfuse *observability.LangfuseClient
	metrics  *metrics.Recorder
}

// NewAgent creates a parameter inference agent. langfuse and recorder may be nil.
func NewAgent(
	provider llm.Provider,
	model string,
	langfuse *observability.LangfuseClient,
	recorder *metrics.Recorder,
) (*Agent, error) {
	prompts, err := prompt.NewPromptBuilder()
	if err != nil {
		return nil, err
	}

	logger.Info("SFX agent initialized", logger.Fields{
		"provider": provider.Name(),
		"model":    model,
	})

	return &Agent{
		provider: provider,
		model:    model,
		prompts:  prompts,
		langfuse: langfuse,
		metrics:  recorder,
	}, nil
}

// rawParameters mirrors the JSON the model is asked to produce
type rawParameters struct {
	Moods         []string `json:"moods"`
	Genres        []string `json:"genres"`
	Themes        []string `json:"themes"`
	Tempo         string   `json:"tempo"`
	EnergyProfile string   `json:"energy_profile"`
	Reasoning     string   `json:"reasoning"`
}

// Infer translates a description (plus optional hints) into sanitized
// Soundraw parameters.
func (a *Agent) Infer(
	ctx context.Context,
	description string,
	category models.Category,
	intensity models.Intensity,
) (*models.InferredParameters, error) {
	startTime := time.Now()
	logger.Info("Analyzing SFX description", logger.Fields{
		"description": description,
		"category":    string(category),
		"intensity":   string(intensity),
	})

	transaction := sentry.StartTransaction(ctx, "sfx.infer")
	defer transaction.Finish()
	transaction.SetTag("model", a.model)
	transaction.SetTag("provider", a.provider.Name())

	userPrompt, err := a.prompts.BuildUserPrompt(description, category, intensity)
	if err != nil {
		return nil, &InferenceError{Message: "failed to build prompt", Err: err}
	}

	trace := a.langfuse.StartTrace(ctx, "sfx.infer", map[string]interface{}{
		"description": description,
		"category":    string(category),
		"intensity":   string(intensity),
	})
	defer trace.Finish()
	generation := trace.Generation(a.provider.Name()+".chat", nil)
	defer generation.Finish()

	resp, err := a.provider.Complete(transaction.Context(), &llm.CompletionRequest{
		Model:        a.model,
		SystemPrompt: a.prompts.SystemPrompt(),
		UserPrompt:   userPrompt,
		Temperature:  inferenceTemperature,
		MaxTokens:    inferenceMaxTokens,
		JSONOutput:   true,
	})
	generation.LogCompletion(a.model, a.prompts.SystemPrompt(), userPrompt, resp)
	if err != nil {
		generation.SetLevel(lfmodel.ObservationLevelError)
		transaction.SetTag("success", "false")
		return nil, &InferenceError{Message: "inference request failed", Err: err}
	}

	a.metrics.RecordTokenUsage(ctx, a.model, resp.Usage.TotalTokens, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	logger.LogInferenceRequest(ctx, a.model, time.Since(startTime), resp.Usage.AsMap(), logger.Fields{
		"provider": a.provider.Name(),
		"cost":     observability.FormatCost(observability.CalculateCost(a.model, resp.Usage)),
	})

	params, err := ParseParameters(resp.Content)
	if err != nil {
		generation.SetLevel(lfmodel.ObservationLevelError)
		transaction.SetTag("success", "false")
		logger.Error("Failed to parse inference response", err, logger.Fields{
			"model":   a.model,
			"content": resp.Content,
		})
		return nil, err
	}

	transaction.SetTag("success", "true")
	logger.Info("SFX analysis complete", logger.Fields{
		"moods":          models.Strings(params.Moods),
		"genres":         models.Strings(params.Genres),
		"themes":         models.Strings(params.Themes),
		"tempo":          string(params.Tempo),
		"energy_profile": string(params.EnergyProfile),
		"duration_ms":    time.Since(startTime).Milliseconds(),
	})

	return params, nil
}

// ParseParameters decodes a completion (optionally fenced) and sanitizes it.
func ParseParameters(content string) (*models.InferredParameters, error) {
	if strings.TrimSpace(content) == "" {
		return nil, &InferenceError{Message: "no response from inference model"}
	}

	body := StripCodeFence(content)
	if !strings.HasPrefix(body, "{") {
		return nil, &InferenceError{
			Message: fmt.Sprintf("failed to parse SFX parameters: %s", content),
			Content: content,
		}
	}

	var raw rawParameters
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, &InferenceError{
			Message: fmt.Sprintf("failed to parse SFX parameters: %s", content),
			Content: content,
			Err:     err,
		}
	}

	params := sanitize(raw)
	return &params, nil
}

// StripCodeFence trims the content and removes a surrounding ``` or ```json
// fence if present.
func StripCodeFence(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = openingFence.ReplaceAllString(s, "")
	s = closingFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// sanitize constrains raw model output to the vocabulary and never fails.
// Out-of-vocabulary values are dropped and sets are capped; empty sets get
// the fixed defaults.
func sanitize(raw rawParameters) models.InferredParameters {
	params := models.InferredParameters{
		Moods:         filterVocabulary(raw.Moods, models.Mood.Valid, maxMoods),
		Genres:        filterVocabulary(raw.Genres, models.Genre.Valid, maxGenres),
		Themes:        filterVocabulary(raw.Themes, models.Theme.Valid, maxThemes),
		Tempo:         models.Tempo(strings.ToLower(strings.TrimSpace(raw.Tempo))),
		EnergyProfile: models.EnergyProfile(strings.ToLower(strings.TrimSpace(raw.EnergyProfile))),
		Reasoning:     raw.Reasoning,
	}

	if len(params.Moods) == 0 {
		params.Moods = []models.Mood{models.DefaultMood}
	}
	if len(params.Genres) == 0 {
		params.Genres = []models.Genre{models.DefaultGenre}
	}
	if len(params.Themes) == 0 {
		params.Themes = []models.Theme{models.DefaultTheme}
	}
	if !params.Tempo.Valid() {
		params.Tempo = models.DefaultTempo
	}
	if !params.EnergyProfile.Valid() {
		params.EnergyProfile = models.DefaultEnergy
	}

	return params
}

// filterVocabulary keeps valid, distinct values in order, up to limit.
func filterVocabulary[T ~string](values []string, valid func(T) bool, limit int) []T {
	out := make([]T, 0, limit)
	seen := make(map[T]bool, len(values))
	for _, v := range values {
		item := T(v)
		if !valid(item) || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
		if len(out) == limit {
			break
		}
	}
	return out
}
