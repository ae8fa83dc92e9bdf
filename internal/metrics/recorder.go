package metrics

import (
	"context"
	"sync/atomic"
	"time"
)

// Recorder fans metrics out to CloudWatch and Sentry and keeps in-process
// counters for the /api/metrics endpoint. A nil *Recorder is a valid no-op.
type Recorder struct {
	cloudwatch *Client
	sentry     *SentryMetrics

	generationsOK     atomic.Int64
	generationsFailed atomic.Int64
	pollAttempts      atomic.Int64
	tokensTotal       atomic.Int64
}

// NewRecorder combines the two sinks. Either may be nil.
func NewRecorder(cw *Client, sm *SentryMetrics) *Recorder {
	if cw == nil {
		cw = &Client{}
	}
	if sm == nil {
		sm = NewSentryMetrics(false)
	}
	return &Recorder{cloudwatch: cw, sentry: sm}
}

// Snapshot is a point-in-time copy of the in-process counters
type Snapshot struct {
	GenerationsSucceeded int64 `json:"generations_succeeded"`
	GenerationsFailed    int64 `json:"generations_failed"`
	PollAttempts         int64 `json:"poll_attempts"`
	InferenceTokens      int64 `json:"inference_tokens"`
}

func (r *Recorder) RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	if r == nil {
		return
	}
	r.cloudwatch.RecordAPIRequest(endpoint, statusCode, duration)
	r.sentry.RecordAPIRequest(ctx, endpoint, statusCode, duration)
}

func (r *Recorder) RecordTokenUsage(ctx context.Context, model string, totalTokens, inputTokens, outputTokens int) {
	if r == nil {
		return
	}
	r.tokensTotal.Add(int64(totalTokens))
	r.cloudwatch.RecordTokenUsage(model, totalTokens, inputTokens, outputTokens)
	r.sentry.RecordTokenUsage(ctx, model, totalTokens, inputTokens, outputTokens)
}

func (r *Recorder) RecordGeneration(ctx context.Context, kind string, duration time.Duration, success bool) {
	if r == nil {
		return
	}
	if success {
		r.generationsOK.Add(1)
	} else {
		r.generationsFailed.Add(1)
	}
	r.cloudwatch.RecordGeneration(kind, duration, success)
	r.sentry.RecordGeneration(ctx, kind, duration, success)
}

func (r *Recorder) RecordPollAttempts(ctx context.Context, attempts int, outcome string) {
	if r == nil {
		return
	}
	r.pollAttempts.Add(int64(attempts))
	r.cloudwatch.RecordPollAttempts(attempts, outcome)
	r.sentry.RecordPollAttempts(ctx, attempts, outcome)
}

func (r *Recorder) Snapshot() Snapshot {
	if r == nil {
		return Snapshot{}
	}
	return Snapshot{
		GenerationsSucceeded: r.generationsOK.Load(),
		GenerationsFailed:    r.generationsFailed.Load(),
		PollAttempts:         r.pollAttempts.Load(),
		InferenceTokens:      r.tokensTotal.Load(),
	}
}
