package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewJSONWritesNamedEntries(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "info", Format: "json", Output: &buf})
	require.NoError(t, err)

	log.Named("launches").Info("dataset loaded", Int("records", 56), String("source", "csv"))
	log.Debug("dropped below level")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	require.Equal(t, "info", entry["level"])
	require.Equal(t, "launches", entry["logger"])
	require.Equal(t, "dataset loaded", entry["msg"])
	require.Equal(t, float64(56), entry["records"])
	require.NotContains(t, entry, "caller")
}

func TestNewDebugAddsCaller(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "debug", Format: "json", Output: &buf})
	require.NoError(t, err)

	log.Debug("query")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	require.Contains(t, entry, "caller")
}

func TestNewRejectsUnknownSettings(t *testing.T) {
	_, err := New(Config{Level: "verbose", Format: "json"})
	require.Error(t, err)

	_, err = New(Config{Level: "info", Format: "xml"})
	require.Error(t, err)
}

func TestPadName(t *testing.T) {
	require.Len(t, padName("api"), nameWidth)
	require.Equal(t, "launches-service-c", padName("launches-service-cache"))
}
