package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_WritesRotatingFiles(t *testing.T) {
	dir := t.TempDir()
	l := New(Config{App: "mis", Level: "debug", Dir: dir, File: true})

	l.Info("📦 order stored")
	l.Error("❌ order failed")
	require.NoError(t, l.Sync())

	info, err := os.ReadFile(filepath.Join(dir, "mis.log"))
	require.NoError(t, err)
	assert.Contains(t, string(info), "order stored")
	assert.Contains(t, string(info), "order failed")

	errs, err := os.ReadFile(filepath.Join(dir, "mis_error.log"))
	require.NoError(t, err)
	assert.NotContains(t, string(errs), "order stored")
	assert.Contains(t, string(errs), "order failed")
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	l := New(Config{Level: "loud"})
	assert.True(t, l.Core().Enabled(zap.InfoLevel))
	assert.False(t, l.Core().Enabled(zap.DebugLevel))
}

func TestInit_ReplacesGlobals(t *testing.T) {
	restore := Init(Config{App: "mis", Level: "warn"})
	assert.False(t, zap.L().Core().Enabled(zap.InfoLevel))
	restore()
	assert.False(t, zap.L().Core().Enabled(zap.ErrorLevel), "globals restored to no-op")
}
