package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Conceptual-Machines/sfx-api/internal/metrics"
	"github.com/Conceptual-Machines/sfx-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePipeline struct {
	err error
}

func (f *fakePipeline) Generate(_ context.Context, req models.SfxRequest) (*models.SfxResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return &models.SfxResult{RequestID: "req-1", AudioURL: "https://cdn/1.m4a", FileFormat: models.FormatM4A}, nil
}

func (f *fakePipeline) CreateVariation(_ context.Context, req models.VariationRequest) (*models.VariationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &models.VariationResult{RequestID: "req-2", VariationType: req.VariationType}, f.err
}

func (f *fakePipeline) GenerateBatch(_ context.Context, req models.BatchRequest) (*models.BatchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &models.BatchResult{Succeeded: len(req.Descriptions)}, nil
}

func (f *fakePipeline) AccountUsage(_ context.Context) (json.RawMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(`{"message":"ok"}`), nil
}

func setupSfxRouter(pipeline SfxPipeline) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("request_id", "test-request")
		c.Next()
	})
	h := NewSfxHandler(pipeline)
	router.POST("/sfx/generations", h.Generate)
	router.POST("/sfx/variations", h.CreateVariation)
	router.POST("/sfx/batch", h.GenerateBatch)
	router.GET("/account/usage", h.AccountUsage)
	return router
}

func perform(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSfxHandlerGenerate(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		body       string
		wantStatus int
		wantBody   map[string]interface{}
	}{
		{
			name:       "success",
			body:       `{"description":"sword swing","engine":"godot"}`,
			wantStatus: http.StatusOK,
			wantBody:   map[string]interface{}{"request_id": "req-1"},
		},
		{
			name:       "malformed json",
			body:       `{"description":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "validation error",
			body:       `{"description":"boom","category":"music"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   map[string]interface{}{"field": "category"},
		},
		{
			name:       "upstream failure",
			err:        errors.New("Soundraw API error: 500 - down"),
			body:       `{"description":"boom"}`,
			wantStatus: http.StatusBadGateway,
			wantBody: map[string]interface{}{
				"error":      "Soundraw API error: 500 - down",
				"request_id": "test-request",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(setupSfxRouter(&fakePipeline{err: tt.err}), http.MethodPost, "/sfx/generations", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			for k, v := range tt.wantBody {
				assert.Equal(t, v, body[k], k)
			}
		})
	}
}

func TestSfxHandlerOtherEndpoints(t *testing.T) {
	router := setupSfxRouter(&fakePipeline{})

	w := perform(router, http.MethodPost, "/sfx/variations", `{"share_link":"https://soundraw.io/s/1","variation_type":"reverse"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"variation_type":"reverse"`)

	w = perform(router, http.MethodPost, "/sfx/variations", `{"share_link":"https://soundraw.io/s/1","variation_type":"louder"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(router, http.MethodPost, "/sfx/batch", `{"descriptions":["a","b"]}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"succeeded":2`)

	w = perform(router, http.MethodPost, "/sfx/batch", `{"descriptions":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(router, http.MethodGet, "/account/usage", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"ok"}`, w.Body.String())

	w = perform(setupSfxRouter(&fakePipeline{err: errors.New("401")}), http.MethodGet, "/account/usage", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	recorder := metrics.NewRecorder(nil, nil)
	recorder.RecordGeneration(context.Background(), "generate", 0, true)

	router.GET("/health", NewHealthHandler("1.2.3", "http").HealthCheck)
	router.GET("/api/metrics", NewMetricsHandler("1.2.3", "http", recorder).GetMetrics)
	router.GET("/mcp/status", NewMCPHandler("http", "/mcp").MCPStatus)

	w := perform(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)

	w = perform(router, http.MethodGet, "/api/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp MetricsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "1.2.3", resp.Version)
	assert.EqualValues(t, 1, resp.SFX.GenerationsSucceeded)

	w = perform(router, http.MethodGet, "/mcp/status", "")
	assert.Equal(t, http.StatusOK, w.Code)
	var status map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "soundraw-sfx-generator", status["name"])
	assert.Equal(t, "http://example.com/mcp", status["url"])
	assert.Len(t, status["tools"], 4)
}

func TestFormatUptime(t *testing.T) {
	assert.Equal(t, "5.00s", formatUptime(5e9))
	assert.Equal(t, "2m3.00s", formatUptime(123e9))
	assert.Equal(t, "1h0m1.00s", formatUptime(3601e9))
}
