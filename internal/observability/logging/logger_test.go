package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microsite-gateway/internal/correlation"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
	}{
		{name: "default log level (info)", logLevel: ""},
		{name: "debug log level", logLevel: "debug"},
		{name: "invalid log level defaults to info", logLevel: "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.logLevel != "" {
				t.Setenv("LOG_LEVEL", tt.logLevel)
			}
			assert.NotNil(t, NewLogger())
		})
	}
}

func TestNewTextLogger(t *testing.T) {
	assert.NotNil(t, NewTextLogger())

	t.Setenv("LOG_LEVEL", "debug")
	assert.NotNil(t, NewTextLogger())
}

func TestLogger_DebugLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	logger := slog.New(handler)

	logger.Debug("this should not appear")
	logger.Info("this should appear")

	output := buf.String()
	assert.NotContains(t, output, "this should not appear", "debug message should be filtered")
	assert.Contains(t, output, "this should appear", "info message should be logged")
}

func TestWithCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	baseLogger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx := correlation.WithCorrelationID(context.Background(), "550e8400-e29b-41d4-a716-446655440000")

	logger := WithCorrelationID(ctx, baseLogger)
	logger.Info("test message")

	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", logEntry["correlation_id"])
}

func TestWithCorrelationID_EmptyContext(t *testing.T) {
	var buf bytes.Buffer
	baseLogger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	logger := WithCorrelationID(context.Background(), baseLogger)
	logger.Info("test message")

	output := buf.String()
	assert.Contains(t, output, "test message")
	assert.NotContains(t, output, "correlation_id", "should not contain correlation_id field")
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	baseLogger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	logger := WithFields(baseLogger, map[string]interface{}{
		"user_id":  "user-456",
		"path":     "/dashboard",
		"attempts": 3,
		"allowed":  true,
	})
	logger.Info("test message")

	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	assert.Equal(t, "user-456", logEntry["user_id"])
	assert.Equal(t, "/dashboard", logEntry["path"])
	assert.Equal(t, float64(3), logEntry["attempts"])
	assert.Equal(t, true, logEntry["allowed"])
}

func TestFromContext(t *testing.T) {
	t.Run("with logger in context", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))
		ctx := WithLogger(context.Background(), logger)

		retrieved := FromContext(ctx)
		retrieved.Info("test message")
		assert.Contains(t, buf.String(), "test message", "should use the stored logger")
	})

	t.Run("without logger in context", func(t *testing.T) {
		assert.Equal(t, slog.Default(), FromContext(context.Background()))
	})

	t.Run("with invalid value in context", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), loggerContextKey, "not a logger")
		assert.Equal(t, slog.Default(), FromContext(ctx))
	})
}

func TestLogger_JSONStructure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	logger.Info("test message",
		"user_id", "user-123",
		"path", "/api/brands",
	)

	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	assert.Equal(t, "test message", logEntry["msg"])
	assert.Equal(t, "INFO", logEntry["level"])
	assert.NotEmpty(t, logEntry["time"])
	assert.Equal(t, "user-123", logEntry["user_id"])
	assert.Equal(t, "/api/brands", logEntry["path"])
}

func TestLogger_MultipleLogEntries(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	logger.Info("first message")
	logger.Warn("second message")
	logger.Error("third message")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	for i, line := range lines {
		var logEntry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &logEntry), "line %d should be valid JSON", i+1)
		assert.NotEmpty(t, logEntry["msg"])
		assert.NotEmpty(t, logEntry["level"])
	}
}
