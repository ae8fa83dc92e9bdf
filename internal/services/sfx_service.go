package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/Conceptual-Machines/sfx-api/internal/integration"
	"github.com/Conceptual-Machines/sfx-api/internal/logger"
	"github.com/Conceptual-Machines/sfx-api/internal/metrics"
	"github.com/Conceptual-Machines/sfx-api/internal/models"
	"github.com/Conceptual-Machines/sfx-api/internal/soundraw"
	"github.com/Conceptual-Machines/sfx-api/internal/storage"
	"golang.org/x/sync/errgroup"
)

const maxAssetNameLength = 30

// ParameterInferrer maps a description onto Soundraw parameters
type ParameterInferrer interface {
	Infer(ctx context.Context, description string, category models.Category, intensity models.Intensity) (*models.InferredParameters, error)
}

// Composer renders audio with Soundraw
type Composer interface {
	Compose(ctx context.Context, params soundraw.ComposeParams) (*soundraw.ResultResponse, models.FileFormat, error)
	CreateVariation(ctx context.Context, shareLink string, variationType models.VariationType, length *float64) (*soundraw.ResultResponse, models.FileFormat, error)
	AccountUsage(ctx context.Context) (json.RawMessage, error)
}

// Archiver copies finished audio to long-term storage
type Archiver interface {
	Archive(ctx context.Context, sourceURL, key, contentType string) (string, error)
}

// ArchiveError means the audio was generated but could not be archived
type ArchiveError struct {
	RequestID string
	Err       error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("failed to archive audio for request %s: %v", e.RequestID, e.Err)
}

func (e *ArchiveError) Unwrap() error { return e.Err }

type SfxService struct {
	agent            ParameterInferrer
	composer         Composer
	archiver         Archiver
	metrics          *metrics.Recorder
	batchConcurrency int
}

// NewSfxService wires the pipeline. archiver and recorder may be nil.
func NewSfxService(
	agent ParameterInferrer,
	composer Composer,
	archiver Archiver,
	recorder *metrics.Recorder,
	batchConcurrency int,
) *SfxService {
	if batchConcurrency < 1 {
		batchConcurrency = 1
	}
	return &SfxService{
		agent:            agent,
		composer:         composer,
		archiver:         archiver,
		metrics:          recorder,
		batchConcurrency: batchConcurrency,
	}
}

// Generate runs inference, composition, extraction and snippet rendering for
// one description. Any failing step fails the whole call.
func (s *SfxService) Generate(ctx context.Context, req models.SfxRequest) (*models.SfxResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req = req.WithDefaults()

	startTime := time.Now()
	result, err := s.generate(ctx, req)
	s.metrics.RecordGeneration(ctx, "generate", time.Since(startTime), err == nil)
	if err != nil {
		logger.Error("SFX generation failed", err, logger.Fields{
			"description": req.Description,
			"category":    string(req.Category),
			"engine":      string(req.Engine),
		})
		return nil, err
	}

	logger.Info("SFX generated", logger.Fields{
		"request_id":  result.RequestID,
		"file_format": string(result.FileFormat),
		"duration_ms": time.Since(startTime).Milliseconds(),
	})
	return result, nil
}

func (s *SfxService) generate(ctx context.Context, req models.SfxRequest) (*models.SfxResult, error) {
	logger.Info("Generating SFX", logger.Fields{
		"description": req.Description,
		"category":    string(req.Category),
	})

	params, err := s.agent.Infer(ctx, req.Description, req.Category, req.Intensity)
	if err != nil {
		return nil, err
	}

	resp, format, err := s.composer.Compose(ctx, soundraw.ComposeParams{
		Moods:      params.Moods,
		Genres:     params.Genres,
		Themes:     params.Themes,
		Length:     req.Duration(),
		Energy:     params.EnergyProfile,
		Tempo:      params.Tempo,
		FileFormat: req.FileFormat,
	})
	if err != nil {
		return nil, err
	}

	extracted, err := soundraw.ExtractResult(resp, format)
	if err != nil {
		return nil, err
	}

	name := AssetName(req.Description)
	code, _ := integration.Render(req.Engine, extracted.AudioURL, name)

	archiveURL, err := s.archive(ctx, extracted, name, format)
	if err != nil {
		return nil, err
	}

	return &models.SfxResult{
		ShareLink:       extracted.ShareLink,
		AudioURL:        extracted.AudioURL,
		RequestID:       extracted.RequestID,
		DurationSeconds: extracted.Length,
		BPM:             extracted.BPM,
		FileFormat:      format,
		IntegrationCode: code,
		Reasoning:       params.Reasoning,
		SoundrawParams:  params.Params(),
		EnergyTimeline:  extracted.EnergyTimeline,
		ArchiveURL:      archiveURL,
	}, nil
}

// CreateVariation asks Soundraw for a variation of an existing track
func (s *SfxService) CreateVariation(ctx context.Context, req models.VariationRequest) (*models.VariationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	startTime := time.Now()
	result, err := s.createVariation(ctx, req)
	s.metrics.RecordGeneration(ctx, "variation", time.Since(startTime), err == nil)
	if err != nil {
		logger.Error("SFX variation failed", err, logger.Fields{
			"share_link":     req.ShareLink,
			"variation_type": string(req.VariationType),
		})
		return nil, err
	}
	return result, nil
}

func (s *SfxService) createVariation(ctx context.Context, req models.VariationRequest) (*models.VariationResult, error) {
	resp, format, err := s.composer.CreateVariation(ctx, req.ShareLink, req.VariationType, req.DurationSeconds)
	if err != nil {
		return nil, err
	}

	extracted, err := soundraw.ExtractResult(resp, format)
	if err != nil {
		return nil, err
	}

	archiveURL, err := s.archive(ctx, extracted, "variation_"+string(req.VariationType), format)
	if err != nil {
		return nil, err
	}

	return &models.VariationResult{
		ShareLink:       extracted.ShareLink,
		AudioURL:        extracted.AudioURL,
		RequestID:       extracted.RequestID,
		DurationSeconds: extracted.Length,
		BPM:             extracted.BPM,
		FileFormat:      format,
		VariationType:   req.VariationType,
		SourceShareLink: req.ShareLink,
		EnergyTimeline:  extracted.EnergyTimeline,
		ArchiveURL:      archiveURL,
	}, nil
}

// GenerateBatch runs one independent pipeline per description. Items fail
// individually; the call itself only fails on invalid input.
func (s *SfxService) GenerateBatch(ctx context.Context, req models.BatchRequest) (*models.BatchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	items := make([]models.BatchItem, len(req.Descriptions))
	g := new(errgroup.Group)
	g.SetLimit(s.batchConcurrency)

	for i := range req.Descriptions {
		g.Go(func() error {
			item := models.BatchItem{Description: req.Descriptions[i]}
			result, err := s.Generate(ctx, req.Item(i))
			if err != nil {
				item.Error = err.Error()
			} else {
				item.Result = result
			}
			items[i] = item
			return nil
		})
	}
	_ = g.Wait()

	out := &models.BatchResult{Items: items}
	for _, item := range items {
		if item.Error != "" {
			out.Failed++
		} else {
			out.Succeeded++
		}
	}

	logger.Info("SFX batch complete", logger.Fields{
		"total":     len(items),
		"succeeded": out.Succeeded,
		"failed":    out.Failed,
	})
	return out, nil
}

// AccountUsage returns the Soundraw account payload unchanged
func (s *SfxService) AccountUsage(ctx context.Context) (json.RawMessage, error) {
	info, err := s.composer.AccountUsage(ctx)
	if err != nil {
		logger.Error("Failed to fetch Soundraw account usage", err, nil)
		return nil, err
	}
	return info, nil
}

func (s *SfxService) archive(ctx context.Context, extracted soundraw.Extracted, name string, format models.FileFormat) (string, error) {
	if s.archiver == nil {
		return "", nil
	}
	key := storage.Key(extracted.RequestID, name, string(format))
	url, err := s.archiver.Archive(ctx, extracted.AudioURL, key, format.ContentType())
	if err != nil {
		return "", &ArchiveError{RequestID: extracted.RequestID, Err: err}
	}
	return url, nil
}

// AssetName derives the file and identifier stem from a description:
// lower-cased, every UTF-16 code unit outside [a-z0-9] replaced by '_', at
// most 30 bytes. Characters outside the BMP therefore become "__".
func AssetName(description string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(description) {
		if b.Len() >= maxAssetNameLength {
			break
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		units := utf16.RuneLen(r)
		if units < 1 {
			units = 1
		}
		b.WriteString(strings.Repeat("_", units))
	}
	name := b.String()
	if len(name) > maxAssetNameLength {
		name = name[:maxAssetNameLength]
	}
	return name
}
