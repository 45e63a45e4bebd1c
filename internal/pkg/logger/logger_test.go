package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reqctx "github.com/baechuer/church-service/internal/pkg/context"
)

func TestInitWithWriter_JSON(t *testing.T) {
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "warn")

	var buf bytes.Buffer
	InitWithWriter(&buf)

	Logger.Info().Msg("dropped")
	Logger.Warn().Msg("kept")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var m map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &m))
	assert.Equal(t, "kept", m["message"])
	assert.Equal(t, "church-service", m["service"])
}

func TestWithCtx_AddsRequestID(t *testing.T) {
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "info")

	var buf bytes.Buffer
	InitWithWriter(&buf)

	ctx := reqctx.WithRequestID(context.Background(), "req-42")
	WithCtx(ctx).Info().Msg("hello")

	var m map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &m))
	assert.Equal(t, "req-42", m["request_id"])
}
