package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/settleng/goledgerd/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, 16384, cfg.Storage.CacheSize)
	assert.Equal(t, 24*time.Hour, cfg.Engine.TimelockMinDelay)
	assert.Equal(t, 30*24*time.Hour, cfg.Engine.TimelockMaxDelay)
	assert.False(t, cfg.Events.Journal)
	assert.Equal(t, "sqlite", cfg.Events.Driver)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledgerd.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[log]
level = "debug"
pretty = true

[storage]
backend = "bbolt"
path = "/var/lib/ledgerd"

[engine]
timelock_min_delay = "1h"
timelock_max_delay = "48h"
`), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Pretty)
	assert.Equal(t, "bbolt", cfg.Storage.Backend)
	assert.Equal(t, "/var/lib/ledgerd", cfg.Storage.Path)
	assert.Equal(t, time.Hour, cfg.Engine.TimelockMinDelay)
	assert.Equal(t, 48*time.Hour, cfg.Engine.TimelockMaxDelay)
	// Untouched sections keep their defaults.
	assert.Equal(t, "sqlite", cfg.Events.Driver)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("LEDGERD_STORAGE_BACKEND", "pebble")
	t.Setenv("LEDGERD_LOG_LEVEL", "warn")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "pebble", cfg.Storage.Backend)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown backend", map[string]string{"LEDGERD_STORAGE_BACKEND": "redis"}},
		{"unknown driver", map[string]string{"LEDGERD_EVENTS_DRIVER": "mysql"}},
		{"inverted delays", map[string]string{
			"LEDGERD_ENGINE_TIMELOCK_MIN_DELAY": "48h",
			"LEDGERD_ENGINE_TIMELOCK_MAX_DELAY": "1h",
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := config.Load("")
			assert.Error(t, err)
		})
	}
}
