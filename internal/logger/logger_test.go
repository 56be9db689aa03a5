package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoopDiscards(t *testing.T) {
	l := Noop()
	// Should not panic or produce output.
	l.Debug("debug %d", 1)
	l.Info("info")
	l.Warn("warn")
	l.Error("error")
}

func TestBufferLoggerCaptures(t *testing.T) {
	l := NewBufferLogger()
	l.Debug("fetching %s", "gpu1")
	l.Warn("activity query failed on %s", "gpu2")

	assert.Len(t, l.Messages, 2)
	assert.Equal(t, "debug", l.Messages[0].Level)
	assert.Equal(t, "fetching gpu1", l.Messages[0].Message)
	assert.True(t, l.HasLevel("warn"))
	assert.False(t, l.HasLevel("error"))
}

func TestBufferLoggerClear(t *testing.T) {
	l := NewBufferLogger()
	l.Info("hello")
	l.Clear()
	assert.Empty(t, l.Messages)
}
