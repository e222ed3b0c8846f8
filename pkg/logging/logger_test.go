package logging

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesComponentAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutput("channel", &buf)

	logger.Infof("read %d bytes", 42)

	line := buf.String()
	assert.Contains(t, line, "[channel]")
	assert.Contains(t, line, "[INFO]")
	assert.Contains(t, line, "read 42 bytes")
	assert.True(t, strings.HasSuffix(line, "\n"))
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutput("server", &buf)
	logger.SetLevel(LevelWarn)

	logger.Debugf("dropped")
	logger.Infof("dropped")
	logger.Warnf("kept warn")
	logger.Errorf("kept error")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "kept warn")
	assert.Contains(t, out, "kept error")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want Level
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"ERROR", LevelError},
		{"nonsense", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.name), "level %q", tt.name)
	}
}

func TestSessionIDStableAcrossLoggers(t *testing.T) {
	a := NewWithOutput("a", &bytes.Buffer{})
	b := NewWithOutput("b", &bytes.Buffer{})

	require.NotEmpty(t, a.SessionID())
	assert.Equal(t, a.SessionID(), b.SessionID())
	assert.Equal(t, GetSessionID(), a.SessionID())
}

func TestLoggerConcurrentWrites(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutput("bridge", &buf)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			logger.Infof("entry %d", n)
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 20)
	for _, line := range lines {
		assert.Contains(t, line, "[bridge]")
	}
}
