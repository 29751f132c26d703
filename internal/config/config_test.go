package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allConfigKeys lists every JENKINSINSIGHTS_ env var that Load() reads.
var allConfigKeys = []string{
	"JENKINSINSIGHTS_LISTEN_ADDR",
	"JENKINSINSIGHTS_DB_PATH",
	"JENKINSINSIGHTS_REQUEST_TIMEOUT",
	"JENKINSINSIGHTS_PATTERNS_FILE",
}

// isolateConfigEnv saves and unsets all JENKINSINSIGHTS_ env vars so tests
// don't inherit values from the host environment. t.Cleanup restores original
// values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr)
	assert.Equal(t, "jenkinsinsights.db", cfg.DBPath)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Empty(t, cfg.PatternsFile)
}

func TestLoad_Overrides(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("JENKINSINSIGHTS_LISTEN_ADDR", "0.0.0.0:9090")
	t.Setenv("JENKINSINSIGHTS_DB_PATH", "/tmp/test.db")
	t.Setenv("JENKINSINSIGHTS_REQUEST_TIMEOUT", "45s")
	t.Setenv("JENKINSINSIGHTS_PATTERNS_FILE", "/etc/jenkinsinsights/patterns.yaml")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddr)
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.Equal(t, 45*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "/etc/jenkinsinsights/patterns.yaml", cfg.PatternsFile)
}

func TestLoad_InvalidTimeout(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("JENKINSINSIGHTS_REQUEST_TIMEOUT", "not-a-duration")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "JENKINSINSIGHTS_REQUEST_TIMEOUT")
}
