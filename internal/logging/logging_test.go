package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/terrain-api/internal/config"
)

func TestNewHandlerJSON(t *testing.T) {
	var buf bytes.Buffer
	h, err := NewHandler(&buf, config.LogConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)

	log := slog.New(h)
	log.Info("dropped")
	log.Warn("kept", "radius_m", 500)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "kept", rec["msg"])
	assert.Equal(t, 500.0, rec["radius_m"])
}

func TestNewHandlerText(t *testing.T) {
	var buf bytes.Buffer
	h, err := NewHandler(&buf, config.LogConfig{Level: "DEBUG"})
	require.NoError(t, err)
	slog.New(h).Debug("sampled", "rows", 3)
	assert.Contains(t, buf.String(), "rows=3")
}

func TestNewHandlerErrors(t *testing.T) {
	_, err := NewHandler(&bytes.Buffer{}, config.LogConfig{Level: "loud"})
	assert.Error(t, err)
	_, err = NewHandler(&bytes.Buffer{}, config.LogConfig{Format: "xml"})
	assert.Error(t, err)
}
