package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewWritesToFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "engine.log")
	log, err := New(Config{Level: "debug", Format: "json", OutputFile: logFile})
	require.NoError(t, err)

	log.Info("page cache initialized")
	require.NoError(t, log.Sync())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	require.Contains(t, string(content), "page cache initialized")
	require.Contains(t, string(content), `"service":"mvstore"`)
}

func TestNewDefaultsOnBadLevel(t *testing.T) {
	log, err := New(Config{Level: "not-a-level", Format: "console"})
	require.NoError(t, err)
	require.False(t, log.Core().Enabled(-1)) // debug stays off
	require.True(t, log.Core().Enabled(0))   // info is on
}
