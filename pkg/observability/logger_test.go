package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/envboard/envboard/pkg/contextkeys"
)

func TestLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)

	logger.WithField("environment_id", 10).Info("environment created")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "environment created", entry["msg"])
	assert.Equal(t, float64(10), entry["environment_id"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(WarnLevel, &buf)

	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Warnf("shown %d", 1)
	assert.Contains(t, buf.String(), "shown 1")
}

func TestLogger_WithError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)

	logger.WithError(errors.New("boom")).Error("operation failed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "boom", entry["error"])

	// Nil error leaves the logger unchanged.
	assert.Same(t, logger, logger.WithError(nil))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLogLevel("debug"))
	assert.Equal(t, ErrorLevel, ParseLogLevel("ERROR"))
	assert.Equal(t, InfoLevel, ParseLogLevel("bogus"))
}

func TestFromContext_EnrichesWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)

	ctx := WithLogger(context.Background(), logger)
	ctx = context.WithValue(ctx, contextkeys.RequestIDKey, "req-42")

	FromContext(ctx).Info("handled")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-42", entry["request_id"])
}
