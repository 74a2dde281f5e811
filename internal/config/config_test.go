package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"LEETGRADE_DB", "LEETGRADE_ADDR", "LEETGRADE_MODEL", "LEETGRADE_RUBRIC",
		"LEETGRADE_TIMEOUT", "LEETGRADE_LOG_LEVEL", "LEETGRADE_DEBUG",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "", cfg.DBPath)
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr)
	assert.Equal(t, "general", cfg.Rubric)
	assert.Equal(t, 60*time.Second, cfg.Timeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Debug)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LEETGRADE_DB", "/tmp/lg.db")
	t.Setenv("LEETGRADE_ADDR", ":9090")
	t.Setenv("LEETGRADE_MODEL", "gpt-4o-mini")
	t.Setenv("LEETGRADE_RUBRIC", "strict")
	t.Setenv("LEETGRADE_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/lg.db", cfg.DBPath)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, "strict", cfg.Rubric)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
}

func TestLoad_DebugForcesDebugLevel(t *testing.T) {
	clearEnv(t)
	t.Setenv("LEETGRADE_DEBUG", "true")
	t.Setenv("LEETGRADE_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_InvalidValue(t *testing.T) {
	clearEnv(t)
	t.Setenv("LEETGRADE_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}
