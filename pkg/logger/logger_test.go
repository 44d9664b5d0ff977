package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func resetGlobal(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		global.Store(zap.NewNop())
	})
}

func TestInitInstallsLeveledLogger(t *testing.T) {
	resetGlobal(t)

	require.NoError(t, Init("debug"))
	require.True(t, Logger().Core().Enabled(zap.DebugLevel))

	// Garbage levels degrade to info rather than failing startup.
	require.NoError(t, Init("chatty"))
	require.False(t, Logger().Core().Enabled(zap.DebugLevel))
	require.True(t, Logger().Core().Enabled(zap.InfoLevel))
}

func TestWithModuleTagsEntries(t *testing.T) {
	resetGlobal(t)

	core, recorded := observer.New(zap.InfoLevel)
	global.Store(zap.New(core))

	WithModule("orders").Info("checkout complete")

	entries := recorded.All()
	require.Len(t, entries, 1)
	require.Equal(t, "checkout complete", entries[0].Message)
	require.Equal(t, "orders", entries[0].ContextMap()["module"])
}
