package core

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockTick(t *testing.T) {
	now := time.Unix(100, 0)
	c := NewClockWithSource(func() time.Time { return now })

	assert.Zero(t, c.Tick(), "stopped clock reports zero")

	c.Start()
	now = now.Add(16 * time.Millisecond)
	assert.Equal(t, 16*time.Millisecond, c.Tick())

	now = now.Add(4 * time.Millisecond)
	assert.Equal(t, 4*time.Millisecond, c.Tick())
	assert.Equal(t, 20*time.Millisecond, c.Elapsed())

	c.Stop()
	assert.False(t, c.Running())
	now = now.Add(time.Second)
	c.Update()
	assert.Equal(t, 20*time.Millisecond, c.Elapsed(), "stop keeps elapsed time")
}

func TestMetricsFPS(t *testing.T) {
	m := NewMetrics()

	refreshed := false
	for i := 0; i < 100; i++ {
		refreshed = m.Update(10 * time.Millisecond)
	}
	assert.True(t, refreshed)
	assert.Equal(t, float64(100), m.FPS)
	assert.InDelta(t, 10.0, m.FrameTime(), 1e-9)
}

func TestKeyCodeString(t *testing.T) {
	assert.Equal(t, "KeyW", KEY_W.String())
	assert.Equal(t, "Digit7", KEY_7.String())
	assert.Equal(t, "F11", KEY_F11.String())
	assert.Equal(t, "Escape", KEY_ESCAPE.String())
	assert.Equal(t, "Unknown(0xE0)", KeyCode(0xE0).String())
}

func TestElementState(t *testing.T) {
	assert.True(t, Pressed.IsPressed())
	assert.False(t, Released.IsPressed())
}

func TestParseLogLevel(t *testing.T) {
	lvl, err := ParseLogLevel("")
	require.NoError(t, err)
	assert.Equal(t, LogLevelInfo, lvl)

	lvl, err = ParseLogLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, LogLevelDebug, lvl)

	_, err = ParseLogLevel("loud")
	assert.Error(t, err)
}

func TestLogOutput(t *testing.T) {
	var buf bytes.Buffer
	SetLogOutput(&buf)
	SetLogLevel(LogLevelWarn)
	t.Cleanup(func() {
		SetLogLevel(LogLevelInfo)
	})

	LogInfo("hidden %d", 1)
	LogWarn("shown %d", 2)

	assert.NotContains(t, buf.String(), "hidden 1")
	assert.Contains(t, buf.String(), "shown 2")
}
