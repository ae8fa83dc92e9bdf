package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Conceptual-Machines/sfx-api/internal/metrics"
	"github.com/Conceptual-Machines/sfx-api/internal/models"
	"github.com/Conceptual-Machines/sfx-api/internal/soundraw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInferrer struct {
	params *models.InferredParameters
	err    error
	fail   map[string]bool
	calls  atomic.Int32
}

func (f *fakeInferrer) Infer(_ context.Context, description string, _ models.Category, _ models.Intensity) (*models.InferredParameters, error) {
	f.calls.Add(1)
	if f.err != nil || f.fail[description] {
		return nil, errors.New("inference request failed: boom")
	}
	return f.params, nil
}

type fakeComposer struct {
	mu           sync.Mutex
	composeCalls []soundraw.ComposeParams
	variationLen *float64
	composeErr   error
	result       *soundraw.ResultResponse
	inFlight     atomic.Int32
	maxInFlight  atomic.Int32
	accountUsage json.RawMessage
	accountErr   error
}

func (f *fakeComposer) Compose(_ context.Context, params soundraw.ComposeParams) (*soundraw.ResultResponse, models.FileFormat, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxInFlight.Load()
		if n <= m || f.maxInFlight.CompareAndSwap(m, n) {
			break
		}
	}

	f.mu.Lock()
	f.composeCalls = append(f.composeCalls, params)
	f.mu.Unlock()

	if f.composeErr != nil {
		return nil, "", f.composeErr
	}
	format := params.FileFormat
	if format == "" {
		format = models.FormatM4A
	}
	return f.result, format, nil
}

func (f *fakeComposer) CreateVariation(_ context.Context, _ string, _ models.VariationType, length *float64) (*soundraw.ResultResponse, models.FileFormat, error) {
	f.variationLen = length
	if f.composeErr != nil {
		return nil, "", f.composeErr
	}
	return f.result, models.FormatM4A, nil
}

func (f *fakeComposer) AccountUsage(_ context.Context) (json.RawMessage, error) {
	return f.accountUsage, f.accountErr
}

type fakeArchiver struct {
	key         string
	contentType string
	err         error
}

func (f *fakeArchiver) Archive(_ context.Context, _ string, key, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.key = key
	f.contentType = contentType
	return "s3://bucket/" + key, nil
}

func defaultParams() *models.InferredParameters {
	return &models.InferredParameters{
		Moods:         []models.Mood{models.MoodEpic},
		Genres:        []models.Genre{models.GenreOrchestra},
		Themes:        []models.Theme{models.ThemeGaming},
		Tempo:         models.TempoHigh,
		EnergyProfile: models.EnergyClimax,
		Reasoning:     "combat needs punch",
	}
}

func doneResponse() *soundraw.ResultResponse {
	return &soundraw.ResultResponse{
		RequestID: "req-1",
		Status:    models.JobDone,
		Result: &soundraw.TrackResult{
			ShareLink: "https://soundraw.io/s/1",
			M4AURL:    "https://cdn/1.m4a",
			Length:    5,
			BPM:       "120",
		},
	}
}

func floatPtr(v float64) *float64 { return &v }

func TestAssetName(t *testing.T) {
	tests := map[string]string{
		"Sword Swing!! (loud)": "sword_swing___loud_",
		"laser":                "laser",
		"A very long description of an explosion in a cave": "a_very_long_description_of_an_",
		"Épée": "_p_e",
		"🔥 fire": "___fire",
	}
	for in, want := range tests {
		got := AssetName(in)
		assert.Equal(t, want, got, in)
		assert.LessOrEqual(t, len(got), 30)
	}
}

func TestGenerateGodotScenario(t *testing.T) {
	composer := &fakeComposer{result: doneResponse()}
	recorder := metrics.NewRecorder(nil, nil)
	service := NewSfxService(&fakeInferrer{params: defaultParams()}, composer, nil, recorder, 3)

	result, err := service.Generate(context.Background(), models.SfxRequest{
		Description: "sword swing",
		Category:    models.CategoryCombat,
		Engine:      models.EngineGodot,
	})
	require.NoError(t, err)

	require.Len(t, composer.composeCalls, 1)
	call := composer.composeCalls[0]
	assert.InDelta(t, 5.0, call.Length, 0)
	assert.Equal(t, models.TempoHigh, call.Tempo)
	assert.Equal(t, models.EnergyClimax, call.Energy)
	assert.Equal(t, models.FormatM4A, call.FileFormat)

	assert.Equal(t, "https://cdn/1.m4a", result.AudioURL)
	assert.Equal(t, "https://soundraw.io/s/1", result.ShareLink)
	assert.Equal(t, "req-1", result.RequestID)
	assert.Equal(t, 120, result.BPM)
	assert.InDelta(t, 5.0, result.DurationSeconds, 0)
	assert.Equal(t, models.FormatM4A, result.FileFormat)
	assert.Equal(t, "combat needs punch", result.Reasoning)
	assert.Equal(t, defaultParams().Params(), result.SoundrawParams)
	assert.Contains(t, result.IntegrationCode, "func play_sword_swing():")
	assert.Empty(t, result.ArchiveURL)

	assert.EqualValues(t, 1, recorder.Snapshot().GenerationsSucceeded)
}

func TestGenerateWithoutEngineOmitsCode(t *testing.T) {
	service := NewSfxService(&fakeInferrer{params: defaultParams()}, &fakeComposer{result: doneResponse()}, nil, nil, 1)

	result, err := service.Generate(context.Background(), models.SfxRequest{Description: "ui click", DurationSeconds: floatPtr(2)})
	require.NoError(t, err)
	assert.Empty(t, result.IntegrationCode)

	encoded, err := json.Marshal(result)
	require.NoError(t, err)
	assert.NotContains(t, string(encoded), "integration_code")
}

func TestGenerateValidation(t *testing.T) {
	inferrer := &fakeInferrer{params: defaultParams()}
	service := NewSfxService(inferrer, &fakeComposer{result: doneResponse()}, nil, nil, 1)

	_, err := service.Generate(context.Background(), models.SfxRequest{Description: "boom", DurationSeconds: floatPtr(31)})

	var validationErr *models.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "duration_seconds", validationErr.Field)
	assert.Zero(t, inferrer.calls.Load())
}

func TestGenerateFailuresAreAllOrNothing(t *testing.T) {
	composeErr := &soundraw.TimeoutError{RequestID: "req-9"}

	t.Run("inference error stops before compose", func(t *testing.T) {
		composer := &fakeComposer{result: doneResponse()}
		service := NewSfxService(&fakeInferrer{err: errors.New("x")}, composer, nil, nil, 1)

		result, err := service.Generate(context.Background(), models.SfxRequest{Description: "boom"})
		assert.Nil(t, result)
		assert.Error(t, err)
		assert.Empty(t, composer.composeCalls)
	})

	t.Run("compose error propagates unchanged", func(t *testing.T) {
		service := NewSfxService(&fakeInferrer{params: defaultParams()}, &fakeComposer{composeErr: composeErr}, nil, nil, 1)

		result, err := service.Generate(context.Background(), models.SfxRequest{Description: "boom"})
		assert.Nil(t, result)
		assert.Same(t, composeErr, err)
	})

	t.Run("missing result", func(t *testing.T) {
		composer := &fakeComposer{result: &soundraw.ResultResponse{RequestID: "req-1", Status: models.JobDone}}
		service := NewSfxService(&fakeInferrer{params: defaultParams()}, composer, nil, nil, 1)

		_, err := service.Generate(context.Background(), models.SfxRequest{Description: "boom"})
		var missing *soundraw.MissingResultError
		assert.True(t, errors.As(err, &missing))
	})

	t.Run("archive error", func(t *testing.T) {
		service := NewSfxService(&fakeInferrer{params: defaultParams()}, &fakeComposer{result: doneResponse()},
			&fakeArchiver{err: errors.New("denied")}, nil, 1)

		result, err := service.Generate(context.Background(), models.SfxRequest{Description: "boom"})
		assert.Nil(t, result)
		var archiveErr *ArchiveError
		require.True(t, errors.As(err, &archiveErr))
		assert.Equal(t, "req-1", archiveErr.RequestID)
	})
}

func TestGenerateArchives(t *testing.T) {
	archiver := &fakeArchiver{}
	service := NewSfxService(&fakeInferrer{params: defaultParams()}, &fakeComposer{result: doneResponse()}, archiver, nil, 1)

	result, err := service.Generate(context.Background(), models.SfxRequest{Description: "Big Boom", FileFormat: models.FormatM4A})
	require.NoError(t, err)

	assert.Equal(t, "sfx/req-1/big_boom.m4a", archiver.key)
	assert.Equal(t, "audio/mp4", archiver.contentType)
	assert.Equal(t, "s3://bucket/sfx/req-1/big_boom.m4a", result.ArchiveURL)
}

func TestCreateVariation(t *testing.T) {
	composer := &fakeComposer{result: doneResponse()}
	service := NewSfxService(&fakeInferrer{}, composer, nil, nil, 1)

	result, err := service.CreateVariation(context.Background(), models.VariationRequest{
		ShareLink:       "https://soundraw.io/s/0",
		VariationType:   models.VariationIntense,
		DurationSeconds: floatPtr(10),
	})
	require.NoError(t, err)

	assert.Equal(t, models.FormatM4A, result.FileFormat)
	assert.Equal(t, models.VariationIntense, result.VariationType)
	assert.Equal(t, "https://soundraw.io/s/0", result.SourceShareLink)
	assert.Equal(t, "https://cdn/1.m4a", result.AudioURL)
	require.NotNil(t, composer.variationLen)
	assert.InDelta(t, 10.0, *composer.variationLen, 0)

	_, err = service.CreateVariation(context.Background(), models.VariationRequest{ShareLink: "x", VariationType: "louder"})
	var validationErr *models.ValidationError
	assert.True(t, errors.As(err, &validationErr))
}

func TestGenerateBatch(t *testing.T) {
	composer := &fakeComposer{result: doneResponse()}
	inferrer := &fakeInferrer{params: defaultParams(), fail: map[string]bool{"broken": true}}
	service := NewSfxService(inferrer, composer, nil, nil, 2)

	descriptions := []string{"one", "broken", "three", "four", "five"}
	result, err := service.GenerateBatch(context.Background(), models.BatchRequest{
		Descriptions: descriptions,
		Engine:       models.EngineUnity,
	})
	require.NoError(t, err)

	require.Len(t, result.Items, len(descriptions))
	assert.Equal(t, 4, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	for i, item := range result.Items {
		assert.Equal(t, descriptions[i], item.Description)
		if item.Description == "broken" {
			assert.Nil(t, item.Result)
			assert.True(t, strings.Contains(item.Error, "boom"))
			continue
		}
		require.NotNil(t, item.Result)
		assert.Empty(t, item.Error)
		assert.Contains(t, item.Result.IntegrationCode, "SFXManager")
	}
	assert.LessOrEqual(t, composer.maxInFlight.Load(), int32(2))
}

func TestGenerateBatchValidation(t *testing.T) {
	service := NewSfxService(&fakeInferrer{}, &fakeComposer{}, nil, nil, 1)

	_, err := service.GenerateBatch(context.Background(), models.BatchRequest{})
	var validationErr *models.ValidationError
	assert.True(t, errors.As(err, &validationErr))
}

func TestAccountUsage(t *testing.T) {
	service := NewSfxService(&fakeInferrer{}, &fakeComposer{accountUsage: json.RawMessage(`{"message":"ok"}`)}, nil, nil, 1)

	info, err := service.AccountUsage(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"ok"}`, string(info))

	failing := NewSfxService(&fakeInferrer{}, &fakeComposer{accountErr: errors.New("401")}, nil, nil, 1)
	_, err = failing.AccountUsage(context.Background())
	assert.Error(t, err)
}
