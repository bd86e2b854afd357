package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "launchboard.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Equal(t, "0.0.0.0:8050", cfg.Server.Addr())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[server]
port = 9000
cors_allowed_origins = ["http://localhost:3000"]
shutdown_timeout_seconds = 3

[dataset]
source = "http"
url = "https://example.com/spacex_launch_dash.csv"
malformed_rows = "skip"
use_observed_bounds = true

[cache]
size = 0

[logging]
level = "debug"
format = "json"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9000, cfg.Server.Port)
	require.Equal(t, DefaultHost, cfg.Server.Host)
	require.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSAllowedOrigins)
	require.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout())
	require.Equal(t, SourceHTTP, cfg.Dataset.Source)
	require.Equal(t, "skip", cfg.Dataset.MalformedRows)
	require.True(t, cfg.Dataset.UseObservedBounds)
	require.Equal(t, 3, cfg.Dataset.FetchMaxRetries)
	require.Equal(t, 0, cfg.Cache.Size)
	require.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"port out of range", "[server]\nport = 70000\n"},
		{"unknown source", "[dataset]\nsource = \"s3\"\n"},
		{"http without url", "[dataset]\nsource = \"http\"\n"},
		{"unknown malformed policy", "[dataset]\nmalformed_rows = \"ignore\"\n"},
		{"negative cache", "[cache]\nsize = -1\n"},
		{"unknown log format", "[logging]\nformat = \"xml\"\n"},
		{"bad toml", "[server\nport = 1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
		})
	}
}
