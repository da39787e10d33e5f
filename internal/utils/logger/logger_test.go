package logger

import (
	"bytes"
	"context"
	"testing"

	"golang.org/x/exp/slog"

	"ankifield/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name          string
		env           string
		expectedLevel slog.Level
	}{
		{
			name:          "local environment",
			env:           config.EnvLocal,
			expectedLevel: slog.LevelDebug,
		},
		{
			name:          "dev environment",
			env:           config.EnvDev,
			expectedLevel: slog.LevelDebug,
		},
		{
			name:          "prod environment",
			env:           config.EnvProd,
			expectedLevel: slog.LevelInfo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.env, "")
			require.NotNil(t, logger)
			ctx := context.Background()
			assert.Equal(t, tt.expectedLevel <= slog.LevelDebug, logger.Enabled(ctx, slog.LevelDebug))
			assert.Equal(t, tt.expectedLevel <= slog.LevelInfo, logger.Enabled(ctx, slog.LevelInfo))
		})
	}
}

func TestSetupPrettySlog(t *testing.T) {
	var buf bytes.Buffer
	logger := setupPrettySlog(&buf, slog.LevelDebug)
	require.NotNil(t, logger)

	ctx := context.Background()
	assert.True(t, logger.Enabled(ctx, slog.LevelDebug))

	logger.With("component", "test").Info("notes updated", "count", 3)
	assert.Contains(t, buf.String(), "notes updated")
	assert.Contains(t, buf.String(), `"count": 3`)
	assert.Contains(t, buf.String(), `"component": "test"`)
}

func TestNew_LevelOverride(t *testing.T) {
	ctx := context.Background()

	// Prod с явным debug
	prodDebug := New(config.EnvProd, "debug")
	assert.True(t, prodDebug.Enabled(ctx, slog.LevelDebug))

	// Local с явным warn
	localWarn := New(config.EnvLocal, "WARN")
	assert.False(t, localWarn.Enabled(ctx, slog.LevelInfo))
	assert.True(t, localWarn.Enabled(ctx, slog.LevelWarn))

	// Неизвестный уровень - уровень окружения
	prodUnknown := New(config.EnvProd, "verbose")
	assert.False(t, prodUnknown.Enabled(ctx, slog.LevelDebug))
	assert.True(t, prodUnknown.Enabled(ctx, slog.LevelInfo))
}

func TestNewLogger_NonTerminalLocal(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.EnvLocal, "", false)

	logger.Warn("template not found in model", "template", "Word")

	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "template=Word")
}

func TestSetupPrettySlog_GroupPrefix(t *testing.T) {
	var buf bytes.Buffer
	logger := setupPrettySlog(&buf, slog.LevelDebug)

	logger.With("component", "updater").
		WithGroup("anki").
		With("action", "findNotes").
		WithGroup("result").
		Info("notes found", "count", 2)

	out := buf.String()
	assert.Contains(t, out, `"component": "updater"`)
	assert.Contains(t, out, `"anki.action": "findNotes"`)
	assert.Contains(t, out, `"anki.result.count": 2`)
}
