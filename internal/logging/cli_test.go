package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLIHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCLIHandler(&buf, slog.LevelDebug, false))

	log.Debug("calling LLM", "provider", "openai", "bytes", 42)
	assert.Equal(t, "calling LLM: provider=openai bytes=42\n", buf.String())
}

func TestCLIHandler_QuotesSpaces(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCLIHandler(&buf, slog.LevelInfo, false))

	log.Info("loaded", "path", "my answer.py")
	assert.Equal(t, "loaded: path=\"my answer.py\"\n", buf.String())
}

func TestCLIHandler_Level(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCLIHandler(&buf, slog.LevelInfo, false))

	log.Debug("hidden")
	assert.Empty(t, buf.String())

	log.Warn("shown")
	assert.Equal(t, "shown\n", buf.String())
}

func TestCLIHandler_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCLIHandler(&buf, slog.LevelInfo, false)).
		WithGroup("server").
		With("addr", "127.0.0.1:8080")

	log.Info("listening")
	assert.Equal(t, "[server] listening: addr=127.0.0.1:8080\n", buf.String())
}

func TestCLIHandler_Color(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCLIHandler(&buf, slog.LevelInfo, true))

	log.Error("boom")
	assert.Equal(t, colorRed+"boom"+colorReset+"\n", buf.String())

	buf.Reset()
	log.Info("plain")
	assert.Equal(t, "plain\n", buf.String())
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" DEBUG ": slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLogLevel(in), "level %q", in)
	}
}

func TestIsTerminal_RegularFile(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "log.txt"))
	require.NoError(t, err)
	defer f.Close()

	assert.False(t, isTerminal(f))
}

func TestSetDefaultCLILogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	l := SetDefaultCLILogger("warn")
	assert.Same(t, l, slog.Default())
	assert.IsType(t, &CLIHandler{}, l.Handler())
	assert.False(t, l.Enabled(t.Context(), slog.LevelInfo))
	assert.True(t, l.Enabled(t.Context(), slog.LevelWarn))
}
