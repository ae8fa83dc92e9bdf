package observability

import (
	"context"
	"time"

	"github.com/Conceptual-Machines/sfx-api/internal/config"
	"github.com/Conceptual-Machines/sfx-api/internal/llm"
	"github.com/Conceptual-Machines/sfx-api/internal/logger"
	langfuse "github.com/henomis/langfuse-go"
	"github.com/henomis/langfuse-go/model"
)

// LangfuseClient wraps the Langfuse client with our configuration.
// The zero value and a nil pointer are both valid, disabled clients.
type LangfuseClient struct {
	client  *langfuse.Langfuse
	enabled bool
	ctx     context.Context
}

// NewLangfuseClient builds a client from config. The henomis SDK reads
// LANGFUSE_HOST, LANGFUSE_PUBLIC_KEY and LANGFUSE_SECRET_KEY itself.
func NewLangfuseClient(ctx context.Context, cfg *config.Config) *LangfuseClient {
	if !cfg.LangfuseEnabled || cfg.LangfuseSecretKey == "" || cfg.LangfusePublicKey == "" {
		logger.Info("Langfuse not configured", logger.Fields{"enabled": cfg.LangfuseEnabled})
		return &LangfuseClient{enabled: false, ctx: ctx}
	}

	lf := langfuse.New(ctx)
	logger.Info("Langfuse initialized", logger.Fields{"host": cfg.LangfuseHost})

	return &LangfuseClient{
		client:  lf,
		enabled: true,
		ctx:     ctx,
	}
}

// IsEnabled returns whether Langfuse is enabled
func (c *LangfuseClient) IsEnabled() bool {
	return c != nil && c.enabled && c.client != nil
}

// Flush sends queued events. Called on shutdown.
func (c *LangfuseClient) Flush() {
	if c.IsEnabled() {
		c.client.Flush(c.ctx)
	}
}

// StartTrace starts a new trace in Langfuse
func (c *LangfuseClient) StartTrace(ctx context.Context, name string, metadata map[string]interface{}) *Trace {
	if !c.IsEnabled() {
		return &Trace{enabled: false, ctx: ctx}
	}

	trace, err := c.client.Trace(&model.Trace{
		Name:     name,
		Metadata: metadata,
	})
	if err != nil {
		logger.Warn("Failed to create Langfuse trace", logger.Fields{"error": err.Error()})
		return &Trace{enabled: false, ctx: ctx}
	}

	return &Trace{
		trace:   trace,
		enabled: true,
		ctx:     ctx,
		client:  c.client,
	}
}

// Trace represents a Langfuse trace
type Trace struct {
	trace   *model.Trace
	enabled bool
	ctx     context.Context
	client  *langfuse.Langfuse
}

// Generation creates a new generation span within the trace
func (t *Trace) Generation(name string, metadata map[string]interface{}) *Generation {
	if !t.enabled {
		return &Generation{enabled: false}
	}

	now := time.Now()
	gen, err := t.client.Generation(&model.Generation{
		TraceID:   t.trace.ID,
		Name:      name,
		StartTime: &now,
		Metadata:  metadata,
	}, nil)
	if err != nil {
		logger.Warn("Failed to create Langfuse generation", logger.Fields{"error": err.Error()})
		return &Generation{enabled: false}
	}

	return &Generation{
		generation: gen,
		enabled:    true,
		client:     t.client,
	}
}

// Finish flushes the trace
func (t *Trace) Finish() {
	if t.enabled && t.client != nil {
		t.client.Flush(t.ctx)
	}
}

// Generation represents a Langfuse generation span
type Generation struct {
	generation *model.Generation
	enabled    bool
	client     *langfuse.Langfuse
}

// Metadata adds metadata to the generation
func (g *Generation) Metadata(metadata map[string]interface{}) {
	if !g.enabled || g.generation == nil {
		return
	}
	md, ok := g.generation.Metadata.(map[string]interface{})
	if !ok || md == nil {
		md = make(map[string]interface{}, len(metadata))
	}
	for k, v := range metadata {
		md[k] = v
	}
	g.generation.Metadata = md
}

// SetLevel sets the level of the generation
func (g *Generation) SetLevel(level model.ObservationLevel) {
	if g.enabled && g.generation != nil {
		g.generation.Level = level
	}
}

// LogCompletion records prompts, output, usage and cost of one completion.
func (g *Generation) LogCompletion(modelName, systemPrompt, userPrompt string, resp *llm.CompletionResponse) {
	if !g.enabled || g.generation == nil {
		return
	}

	g.generation.Model = modelName
	g.generation.Input = []map[string]interface{}{
		{"role": "system", "content": systemPrompt},
		{"role": "user", "content": userPrompt},
	}
	if resp == nil {
		return
	}

	cost := CalculateCost(modelName, resp.Usage)
	g.generation.Output = resp.Content
	g.generation.Usage = model.Usage{
		Input:     resp.Usage.PromptTokens,
		Output:    resp.Usage.CompletionTokens,
		Total:     resp.Usage.TotalTokens,
		Unit:      model.ModelUsageUnitTokens,
		TotalCost: cost,
	}
	g.Metadata(map[string]interface{}{
		"model":    modelName,
		"cost_usd": cost,
	})
}

// Finish completes the generation and queues it for sending
func (g *Generation) Finish() {
	if !g.enabled || g.generation == nil || g.client == nil {
		return
	}
	now := time.Now()
	g.generation.EndTime = &now
	if _, err := g.client.GenerationEnd(g.generation); err != nil {
		logger.Warn("Failed to end Langfuse generation", logger.Fields{"error": err.Error()})
	}
}
