package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	l := Build(Config{Level: "debug", Component: "server"}, &buf)

	l.Debug().Str("k", "v").Msg("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "debug", line["level"])
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "server", line["component"])
	assert.Equal(t, "v", line["k"])
	assert.Contains(t, line, "timestamp")
}

func TestBuild_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := Build(Config{Level: "warn"}, &buf)

	l.Info().Msg("dropped")
	assert.Zero(t, buf.Len())

	l.Warn().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel(" DEBUG "))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
}

func TestRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc")
	assert.Equal(t, "abc", RequestID(ctx))

	generated := RequestID(WithRequestID(context.Background(), ""))
	id, err := uuid.Parse(generated)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())

	assert.Equal(t, "", RequestID(context.Background()))
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	parent := Build(Config{Level: "info"}, &buf)

	l := FromContext(WithRequestID(context.Background(), "req-1"), &parent)
	l.Info().Msg("x")
	assert.Contains(t, buf.String(), `"request_id":"req-1"`)

	assert.NotPanics(t, func() {
		FromContext(context.Background(), nil).Info().Msg("discarded")
	})
}
