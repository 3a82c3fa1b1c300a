package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soundblast/internal/logging"
)

func TestRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())

	app.Get("/test", func(c *fiber.Ctx) error {
		rid := c.Locals(RequestIDLocalKey)
		return c.SendString(rid.(string) + "|" + logging.RequestIDFrom(c.UserContext()))
	})

	t.Run("generates an id when absent", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		ridHeader := resp.Header.Get(RequestIDHeader)
		assert.NotEmpty(t, ridHeader)

		// locals and user context hold the same id as the header
		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		assert.Equal(t, ridHeader+"|"+ridHeader, buf.String())
	})

	t.Run("preserves an incoming id", func(t *testing.T) {
		existingID := "test-id-123"
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(RequestIDHeader, existingID)

		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, existingID, resp.Header.Get(RequestIDHeader))

		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		assert.Equal(t, existingID+"|"+existingID, buf.String())
	})
}

func TestRequestIDReachesServiceLogs(t *testing.T) {
	var buf bytes.Buffer
	svcLog := zerolog.New(&buf).With().Str("component", "transcription").Logger()

	app := fiber.New()
	app.Use(RequestID())
	app.Post("/api/transcribe", func(c *fiber.Ctx) error {
		// stands in for a service call that only sees the context
		logRequestScoped(c.UserContext(), svcLog)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("POST", "/api/transcribe", nil)
	req.Header.Set(RequestIDHeader, "rid-abc")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "rid-abc", entry["request_id"])
	assert.Equal(t, "transcription", entry["component"])
	assert.Equal(t, "transcription failed", entry["message"])
}

func logRequestScoped(ctx context.Context, base zerolog.Logger) {
	lg := logging.Ctx(ctx, base)
	lg.Error().Msg("transcription failed")
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()
	loc := time.UTC

	// Logger usually depends on RequestID for request_id field
	app.Use(RequestID())
	app.Use(LoggerWithWriter(&buf, loc))

	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusAccepted)
	})

	req := httptest.NewRequest("GET", "/test", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	// Verify log output
	var logData map[string]any
	err := json.Unmarshal(buf.Bytes(), &logData)
	assert.NoError(t, err)

	assert.NotEmpty(t, logData["request_id"])
	assert.Equal(t, "GET", logData["method"])
	assert.Equal(t, "/test", logData["path"])
	assert.Equal(t, float64(fiber.StatusAccepted), logData["status"])
	assert.NotNil(t, logData["latency"])
	assert.NotEmpty(t, logData["ts"])
	assert.Equal(t, "info", logData["level"])
}

func TestLoggerLevelByStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		level  string
	}{
		{"success", fiber.StatusCreated, "info"},
		{"client error", fiber.StatusNotFound, "warn"},
		{"server error", fiber.StatusInternalServerError, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			app := fiber.New()
			app.Use(RequestID())
			app.Use(Logger(zerolog.New(&buf), time.UTC))
			app.Get("/api/files/download/:id", func(c *fiber.Ctx) error {
				return c.SendStatus(tt.status)
			})

			req := httptest.NewRequest("GET", "/api/files/download/abc", nil)
			req.Header.Set(RequestIDHeader, "rid-1")
			_, err := app.Test(req)
			require.NoError(t, err)

			var logData map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &logData))
			assert.Equal(t, tt.level, logData["level"])
			assert.Equal(t, "rid-1", logData["request_id"])
			assert.Equal(t, "/api/files/download/abc", logData["path"])
			assert.Equal(t, "http", logData["component"])
			assert.Equal(t, float64(tt.status), logData["status"])
		})
	}
}

func TestLoggerFiberError(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()
	app.Use(LoggerWithWriter(&buf, nil))
	app.Get("/too-large", func(c *fiber.Ctx) error {
		return fiber.ErrRequestEntityTooLarge
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/too-large", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusRequestEntityTooLarge, resp.StatusCode)

	var logData map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logData))
	assert.Equal(t, float64(fiber.StatusRequestEntityTooLarge), logData["status"])
	assert.Equal(t, "warn", logData["level"])
	assert.NotEmpty(t, logData["error"])
}
