package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("inventory-service", "production", &buf)

	log.WithComponent("ingest").WithRequestID("req-1").Info().Msg("batch created")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "inventory-service", entry["service"])
	assert.Equal(t, "ingest", entry["component"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "batch created", entry["message"])
}

func TestWithLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("test", "production", &buf).WithLevel("warn")

	log.Info().Msg("dropped")
	assert.Zero(t, buf.Len())

	log.Warn().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestWithLevel_UnknownKeepsLogger(t *testing.T) {
	log := Nop()
	assert.Same(t, log, log.WithLevel("loud"))
}
