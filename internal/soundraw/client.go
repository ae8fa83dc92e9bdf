package soundraw

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Conceptual-Machines/sfx-api/internal/logger"
	"github.com/Conceptual-Machines/sfx-api/internal/metrics"
	"github.com/Conceptual-Machines/sfx-api/internal/models"
	"github.com/getsentry/sentry-go"
)

const (
	DefaultBaseURL      = "https://soundraw.io/api/v3"
	DefaultPollInterval = 2 * time.Second
	DefaultMaxAttempts  = 75

	requestTimeout = 30 * time.Second
)

// Client talks to the Soundraw v3 API
type Client struct {
	apiKey       string
	baseURL      string
	pollInterval time.Duration
	maxAttempts  int
	httpClient   *http.Client
	metrics      *metrics.Recorder
}

// NewClient creates a Soundraw client. Zero values for baseURL, pollInterval
// and maxAttempts fall back to the API defaults. httpClient and recorder may
// be nil.
func NewClient(
	apiKey string,
	baseURL string,
	pollInterval time.Duration,
	maxAttempts int,
	httpClient *http.Client,
	recorder *metrics.Recorder,
) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	return &Client{
		apiKey:       apiKey,
		baseURL:      strings.TrimRight(baseURL, "/"),
		pollInterval: pollInterval,
		maxAttempts:  maxAttempts,
		httpClient:   httpClient,
		metrics:      recorder,
	}
}

// ComposeParams are the inputs of a compose job
type ComposeParams struct {
	Moods      []models.Mood
	Genres     []models.Genre
	Themes     []models.Theme
	Length     float64
	Energy     models.EnergyProfile
	Tempo      models.Tempo
	FileFormat models.FileFormat
}

type composeBody struct {
	Moods      []models.Mood        `json:"moods"`
	Genres     []models.Genre       `json:"genres"`
	Themes     []models.Theme       `json:"themes"`
	Length     float64              `json:"length"`
	Energy     models.EnergyProfile `json:"energy"`
	Tempo      models.Tempo         `json:"tempo"`
	FileFormat []models.FileFormat  `json:"file_format"`
}

type variationBody struct {
	ShareLink     string               `json:"share_link"`
	VariationType models.VariationType `json:"variation_type"`
	Length        *float64             `json:"length,omitempty"`
}

type submitResponse struct {
	RequestID string `json:"request_id"`
}

// Compose submits a compose job and waits for it to finish. It returns the
// final result and the file format that was requested.
func (c *Client) Compose(ctx context.Context, params ComposeParams) (*ResultResponse, models.FileFormat, error) {
	body := composeBody{
		Moods:      params.Moods,
		Genres:     params.Genres,
		Themes:     params.Themes,
		Length:     params.Length,
		Energy:     params.Energy,
		Tempo:      params.Tempo,
		FileFormat: []models.FileFormat{params.FileFormat},
	}
	if body.Energy == "" {
		body.Energy = models.DefaultEnergy
	}
	if body.Tempo == "" {
		body.Tempo = models.DefaultTempo
	}
	if params.FileFormat == "" {
		body.FileFormat = []models.FileFormat{models.DefaultFileFormat}
	}
	format := body.FileFormat[0]

	logger.Info("Submitting Soundraw compose job", logger.Fields{
		"moods":  models.Strings(body.Moods),
		"genres": models.Strings(body.Genres),
		"themes": models.Strings(body.Themes),
		"length": body.Length,
		"format": string(format),
	})

	status, respBody, err := c.do(ctx, http.MethodPost, "/musics/compose", body)
	if err != nil {
		return nil, "", err
	}
	if !isSuccess(status) {
		return nil, "", &ComposeRequestError{Status: status, Body: string(respBody)}
	}

	var submitted submitResponse
	if err := json.Unmarshal(respBody, &submitted); err != nil {
		return nil, "", fmt.Errorf("failed to decode Soundraw compose response: %w", err)
	}

	result, err := c.WaitForResult(ctx, submitted.RequestID)
	if err != nil {
		return nil, "", err
	}
	return result, format, nil
}

// CreateVariation submits a variation job for an existing track. Variations
// are always delivered as m4a. A nil length lets Soundraw keep the source length.
func (c *Client) CreateVariation(
	ctx context.Context,
	shareLink string,
	variationType models.VariationType,
	length *float64,
) (*ResultResponse, models.FileFormat, error) {
	logger.Info("Submitting Soundraw variation job", logger.Fields{
		"share_link":     shareLink,
		"variation_type": string(variationType),
	})

	status, respBody, err := c.do(ctx, http.MethodPost, "/musics/similar", variationBody{
		ShareLink:     shareLink,
		VariationType: variationType,
		Length:        length,
	})
	if err != nil {
		return nil, "", err
	}
	if !isSuccess(status) {
		return nil, "", &VariationRequestError{Status: status, Body: string(respBody)}
	}

	var submitted submitResponse
	if err := json.Unmarshal(respBody, &submitted); err != nil {
		return nil, "", fmt.Errorf("failed to decode Soundraw variation response: %w", err)
	}

	result, err := c.WaitForResult(ctx, submitted.RequestID)
	if err != nil {
		return nil, "", err
	}
	return result, models.FormatM4A, nil
}

// WaitForResult polls a job until it is done, failed, or the attempt budget
// runs out. The request is issued exactly maxAttempts times at most and there
// is no sleep after the final attempt.
func (c *Client) WaitForResult(ctx context.Context, requestID string) (*ResultResponse, error) {
	span := sentry.StartSpan(ctx, "soundraw.poll")
	defer span.Finish()
	span.SetTag("request_id", requestID)

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		result, err := c.fetchResult(span.Context(), requestID)
		if err != nil {
			c.metrics.RecordPollAttempts(ctx, attempt, "error")
			return nil, err
		}

		switch {
		case result.Status == models.JobFailed:
			c.metrics.RecordPollAttempts(ctx, attempt, "failed")
			return nil, &GenerationFailedError{RequestID: requestID}
		case result.Status == models.JobDone && result.Result != nil:
			c.metrics.RecordPollAttempts(ctx, attempt, "done")
			logger.Debug("Soundraw job finished", logger.Fields{
				"request_id": requestID,
				"attempts":   attempt,
			})
			return result, nil
		}

		if attempt == c.maxAttempts {
			break
		}
		if err := sleepWithContext(ctx, c.pollInterval); err != nil {
			c.metrics.RecordPollAttempts(ctx, attempt, "cancelled")
			return nil, err
		}
	}

	c.metrics.RecordPollAttempts(ctx, c.maxAttempts, "timeout")
	logger.Warn("Timed out waiting for Soundraw result", logger.Fields{
		"request_id": requestID,
		"attempts":   c.maxAttempts,
	})
	return nil, &TimeoutError{RequestID: requestID}
}

func (c *Client) fetchResult(ctx context.Context, requestID string) (*ResultResponse, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/results/"+requestID, nil)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, &PollError{Status: status, Body: string(body)}
	}

	var result ResultResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode Soundraw result: %w", err)
	}
	return &result, nil
}

// AccountUsage returns the account information payload unchanged
func (c *Client) AccountUsage(ctx context.Context) (json.RawMessage, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/accounts", nil)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, &APIError{Status: status, Body: string(body)}
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("invalid JSON in Soundraw account response")
	}
	return json.RawMessage(body), nil
}

func (c *Client) do(ctx context.Context, method, path string, payload interface{}) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to encode Soundraw request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create Soundraw request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("soundraw request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read Soundraw response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func isSuccess(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
