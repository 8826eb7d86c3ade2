package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, dev bool) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	Set(zap.New(core), dev)
	t.Cleanup(func() { Set(zap.NewNop(), false) })
	return logs
}

func TestPrintfHelpers(t *testing.T) {
	logs := observe(t, false)

	Info("session %s started", "t1")
	Warn("slow client %d", 7)
	Error("poll failed: %v", "offline")

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "session t1 started", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "poll failed: offline", entries[2].Message)
}

func TestDebugOnlyInDevelopment(t *testing.T) {
	logs := observe(t, false)
	Debug("hidden")
	assert.Zero(t, logs.Len())

	logs = observe(t, true)
	Debug("shown %d", 1)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "shown 1", logs.All()[0].Message)
}

func TestWithCarriesFields(t *testing.T) {
	logs := observe(t, false)

	With("task_id", "t1", "outcome", "confirmed").Info("done")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "t1", fields["task_id"])
	assert.Equal(t, "confirmed", fields["outcome"])
}
