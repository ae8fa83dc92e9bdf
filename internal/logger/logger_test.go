package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf, false)
	prev := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })
	return &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	return entry
}

func TestInfoWritesStructuredFields(t *testing.T) {
	buf := captureOutput(t)

	Info("Composing SFX", Fields{"length": 5, "request_id": "req-1"})

	entry := decodeLine(t, buf)
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "Composing SFX", entry["message"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.EqualValues(t, 5, entry["length"])
}

func TestErrorIncludesError(t *testing.T) {
	buf := captureOutput(t)

	Error("Soundraw compose API error", errors.New("boom"), Fields{"status": 500})

	entry := decodeLine(t, buf)
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "boom", entry["error"])
	assert.EqualValues(t, 500, entry["status"])
}

func TestDebugSuppressedAboveLevel(t *testing.T) {
	buf := captureOutput(t)
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	Debug("hidden", nil)

	assert.Empty(t, buf.String())
}

func TestSetupFallsBackToInfo(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	Setup("not-a-level", false)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	Setup("debug", false)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestWithContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/sfx/generations", nil)
	c.Set("request_id", "abc")
	c.Set("user_id_str", "u-1")

	fields := WithContext(c)

	assert.Equal(t, "abc", fields["request_id"])
	assert.Equal(t, http.MethodPost, fields["method"])
	assert.Equal(t, "/api/v1/sfx/generations", fields["path"])
	assert.Equal(t, "u-1", fields["user_id"])
}
