package models

import (
	"fmt"
	"strings"
)

// Duration bounds for generated sound effects, in seconds.
const (
	MinDurationSeconds     = 1
	MaxDurationSeconds     = 30
	DefaultDurationSeconds = 5

	MaxBatchDescriptions = 10
)

// ValidationError reports bad caller input. Handlers map it to 400.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// SfxRequest is the caller's input to the generate_sfx pipeline.
type SfxRequest struct {
	Description     string     `json:"description"`
	Category        Category   `json:"category,omitempty"`
	DurationSeconds *float64   `json:"duration_seconds,omitempty"`
	Intensity       Intensity  `json:"intensity,omitempty"`
	Engine          Engine     `json:"engine,omitempty"`
	FileFormat      FileFormat `json:"file_format,omitempty"`
}

// Validate checks required fields and closed enumerations.
func (r SfxRequest) Validate() error {
	if strings.TrimSpace(r.Description) == "" {
		return &ValidationError{Field: "description", Message: "is required"}
	}
	if r.Category != "" && !r.Category.Valid() {
		return invalidEnum("category", r.Category, Categories)
	}
	if err := validateDuration(r.DurationSeconds); err != nil {
		return err
	}
	if r.Intensity != "" && !r.Intensity.Valid() {
		return invalidEnum("intensity", r.Intensity, Intensities)
	}
	if r.Engine != EngineNone && !r.Engine.Valid() {
		return invalidEnum("engine", r.Engine, Engines)
	}
	if r.FileFormat != "" && !r.FileFormat.Valid() {
		return invalidEnum("file_format", r.FileFormat, FileFormats)
	}
	return nil
}

// Duration returns the requested length or the default.
func (r SfxRequest) Duration() float64 {
	if r.DurationSeconds == nil {
		return DefaultDurationSeconds
	}
	return *r.DurationSeconds
}

// WithDefaults returns a copy with duration and file format filled in.
func (r SfxRequest) WithDefaults() SfxRequest {
	d := r.Duration()
	r.DurationSeconds = &d
	if r.FileFormat == "" {
		r.FileFormat = DefaultFileFormat
	}
	return r
}

func validateDuration(d *float64) error {
	if d == nil {
		return nil
	}
	if *d < MinDurationSeconds || *d > MaxDurationSeconds {
		return &ValidationError{
			Field:   "duration_seconds",
			Message: fmt.Sprintf("must be between %d and %d", MinDurationSeconds, MaxDurationSeconds),
		}
	}
	return nil
}

// InferredParameters is the sanitized output of parameter inference.
type InferredParameters struct {
	Moods         []Mood        `json:"moods"`
	Genres        []Genre       `json:"genres"`
	Themes        []Theme       `json:"themes"`
	Tempo         Tempo         `json:"tempo"`
	EnergyProfile EnergyProfile `json:"energy_profile"`
	Reasoning     string        `json:"reasoning"`
}

// SoundrawParams echoes the parameters that were sent to Soundraw.
type SoundrawParams struct {
	Moods         []Mood        `json:"moods"`
	Genres        []Genre       `json:"genres"`
	Themes        []Theme       `json:"themes"`
	Tempo         Tempo         `json:"tempo"`
	EnergyProfile EnergyProfile `json:"energy_profile"`
}

// Params projects the inferred values onto what Soundraw receives.
func (p InferredParameters) Params() SoundrawParams {
	return SoundrawParams{
		Moods:         p.Moods,
		Genres:        p.Genres,
		Themes:        p.Themes,
		Tempo:         p.Tempo,
		EnergyProfile: p.EnergyProfile,
	}
}

// CompositionJob tracks a submitted Soundraw job.
type CompositionJob struct {
	RequestID string    `json:"request_id"`
	Status    JobStatus `json:"status"`
}

// EnergySegment is one entry of the energy timeline.
type EnergySegment struct {
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
	Energy string  `json:"energy"`
}

// SfxResult is the final output of the generate_sfx pipeline.
type SfxResult struct {
	ShareLink       string          `json:"share_link"`
	AudioURL        string          `json:"audio_url"`
	RequestID       string          `json:"request_id"`
	DurationSeconds float64         `json:"duration_seconds"`
	BPM             int             `json:"bpm"`
	FileFormat      FileFormat      `json:"file_format"`
	IntegrationCode string          `json:"integration_code,omitempty"`
	Reasoning       string          `json:"deepseek_reasoning"`
	SoundrawParams  SoundrawParams  `json:"soundraw_params"`
	EnergyTimeline  []EnergySegment `json:"energy_timeline,omitempty"`
	ArchiveURL      string          `json:"archive_url,omitempty"`
}

// VariationRequest asks Soundraw for a variation of an existing track.
type VariationRequest struct {
	ShareLink       string        `json:"share_link"`
	VariationType   VariationType `json:"variation_type"`
	DurationSeconds *float64      `json:"duration_seconds,omitempty"`
}

func (r VariationRequest) Validate() error {
	if strings.TrimSpace(r.ShareLink) == "" {
		return &ValidationError{Field: "share_link", Message: "is required"}
	}
	if !r.VariationType.Valid() {
		return invalidEnum("variation_type", r.VariationType, VariationTypes)
	}
	return validateDuration(r.DurationSeconds)
}

// VariationResult is returned by create_sfx_variation.
type VariationResult struct {
	ShareLink       string          `json:"share_link"`
	AudioURL        string          `json:"audio_url"`
	RequestID       string          `json:"request_id"`
	DurationSeconds float64         `json:"duration_seconds"`
	BPM             int             `json:"bpm"`
	FileFormat      FileFormat      `json:"file_format"`
	VariationType   VariationType   `json:"variation_type"`
	SourceShareLink string          `json:"source_share_link"`
	EnergyTimeline  []EnergySegment `json:"energy_timeline,omitempty"`
	ArchiveURL      string          `json:"archive_url,omitempty"`
}

// BatchRequest generates several sound effects sharing the same hints.
type BatchRequest struct {
	Descriptions    []string  `json:"descriptions"`
	Category        Category  `json:"category,omitempty"`
	DurationSeconds *float64  `json:"duration_seconds,omitempty"`
	Intensity       Intensity `json:"intensity,omitempty"`
	Engine          Engine    `json:"engine,omitempty"`
}

func (r BatchRequest) Validate() error {
	if len(r.Descriptions) == 0 || len(r.Descriptions) > MaxBatchDescriptions {
		return &ValidationError{
			Field:   "descriptions",
			Message: fmt.Sprintf("must contain between 1 and %d items", MaxBatchDescriptions),
		}
	}
	for i, d := range r.Descriptions {
		if strings.TrimSpace(d) == "" {
			return &ValidationError{Field: fmt.Sprintf("descriptions[%d]", i), Message: "is required"}
		}
	}
	// Shared hints are checked through the per-item request.
	return r.Item(0).Validate()
}

// Item builds the single-effect request for description i.
func (r BatchRequest) Item(i int) SfxRequest {
	return SfxRequest{
		Description:     r.Descriptions[i],
		Category:        r.Category,
		DurationSeconds: r.DurationSeconds,
		Intensity:       r.Intensity,
		Engine:          r.Engine,
	}
}

// BatchItem is the outcome for one description. Exactly one of Result and
// Error is set.
type BatchItem struct {
	Description string     `json:"description"`
	Result      *SfxResult `json:"result,omitempty"`
	Error       string     `json:"error,omitempty"`
}

type BatchResult struct {
	Items     []BatchItem `json:"items"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}
