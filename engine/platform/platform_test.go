package platform

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spaghettifunk/showcase/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedEvent struct {
	window WindowID
	event  any
}

type recordingHandler struct {
	events  []recordedEvent
	onEvent func(el ActiveEventLoop, event any)
}

func (h *recordingHandler) Resumed(ActiveEventLoop) {}

func (h *recordingHandler) WindowEvent(el ActiveEventLoop, id WindowID, event WindowEvent) {
	h.events = append(h.events, recordedEvent{window: id, event: event})
	if h.onEvent != nil {
		h.onEvent(el, event)
	}
}

func (h *recordingHandler) DeviceEvent(el ActiveEventLoop, _ DeviceID, event DeviceEvent) {
	h.events = append(h.events, recordedEvent{event: event})
	if h.onEvent != nil {
		h.onEvent(el, event)
	}
}

func (h *recordingHandler) LoopExiting(ActiveEventLoop) {}

type stubLoop struct {
	exiting bool
}

func (l *stubLoop) CreateWindow(WindowAttributes) (Window, error) { return nil, nil }
func (l *stubLoop) Exit()                                         { l.exiting = true }
func (l *stubLoop) Exiting() bool                                 { return l.exiting }

func TestTranslateKey(t *testing.T) {
	cases := map[glfw.Key]core.KeyCode{
		glfw.KeyW:         core.KEY_W,
		glfw.KeyA:         core.KEY_A,
		glfw.KeyZ:         core.KEY_Z,
		glfw.Key7:         core.KEY_7,
		glfw.KeyF11:       core.KEY_F11,
		glfw.KeyEscape:    core.KEY_ESCAPE,
		glfw.KeySpace:     core.KEY_SPACE,
		glfw.KeyLeftShift: core.KEY_LSHIFT,
		glfw.KeyUp:        core.KEY_UP,
		glfw.KeyKPEnter:   core.KEY_UNKNOWN,
	}
	for key, expected := range cases {
		assert.Equal(t, expected, translateKey(key), "glfw key %d", key)
	}
}

func TestTranslateAction(t *testing.T) {
	state, repeat := translateAction(glfw.Press)
	assert.Equal(t, core.Pressed, state)
	assert.False(t, repeat)

	state, repeat = translateAction(glfw.Repeat)
	assert.Equal(t, core.Pressed, state)
	assert.True(t, repeat)

	state, _ = translateAction(glfw.Release)
	assert.Equal(t, core.Released, state)
}

func TestCursorTracker(t *testing.T) {
	var c cursorTracker

	_, _, ok := c.move(10, 10)
	assert.False(t, ok, "first position has no delta")

	dx, dy, ok := c.move(15, 7)
	require.True(t, ok)
	assert.Equal(t, 5.0, dx)
	assert.Equal(t, -3.0, dy)

	c.reset()
	_, _, ok = c.move(100, 100)
	assert.False(t, ok)
}

func TestPumpPreservesOrderAndCoalescesMotion(t *testing.T) {
	p := newEventPump()
	id := NewWindowID()

	p.pushWindow(id, Resized{Width: 800, Height: 600})
	p.pushMotion(1, 2)
	p.pushMotion(3, -1)
	p.pushWindow(id, KeyboardInput{Key: core.KEY_W, State: core.Pressed})
	p.pushMotion(0.5, 0.5)

	h := &recordingHandler{}
	p.drain(&stubLoop{}, h)

	require.Len(t, h.events, 4)
	assert.Equal(t, Resized{Width: 800, Height: 600}, h.events[0].event)
	assert.Equal(t, id, h.events[0].window)
	assert.Equal(t, MouseMotion{DX: 4, DY: 1}, h.events[1].event)
	assert.Equal(t, KeyboardInput{Key: core.KEY_W, State: core.Pressed}, h.events[2].event)
	assert.Equal(t, MouseMotion{DX: 0.5, DY: 0.5}, h.events[3].event)
	assert.True(t, p.queue.IsEmpty())
}

func TestPumpStopsWhenExiting(t *testing.T) {
	p := newEventPump()
	id := NewWindowID()
	p.pushWindow(id, CloseRequested{})
	p.pushWindow(id, RedrawRequested{})
	p.pushWindow(id, RedrawRequested{})

	h := &recordingHandler{
		onEvent: func(el ActiveEventLoop, event any) {
			if _, ok := event.(CloseRequested); ok {
				el.Exit()
			}
		},
	}
	p.drain(&stubLoop{}, h)

	require.Len(t, h.events, 1)
	assert.True(t, p.queue.IsEmpty())
}

func TestWindowIDsAreUnique(t *testing.T) {
	a, b := NewWindowID(), NewWindowID()
	assert.NotEqual(t, a, b)
	assert.Len(t, a.String(), 36)
}

func TestInterruptQueuesCloseForEveryWindow(t *testing.T) {
	first, second := &glfwWindow{id: NewWindowID()}, &glfwWindow{id: NewWindowID()}
	el := &EventLoop{windows: []*glfwWindow{first, second}, pump: newEventPump()}

	el.takeInterrupt()
	assert.True(t, el.pump.queue.IsEmpty(), "nothing queued without an interrupt")

	el.interrupted.Store(true)
	el.takeInterrupt()
	el.takeInterrupt()

	h := &recordingHandler{}
	el.pump.drain(&stubLoop{}, h)
	require.Len(t, h.events, 2)
	assert.Equal(t, recordedEvent{window: first.id, event: CloseRequested{}}, h.events[0])
	assert.Equal(t, recordedEvent{window: second.id, event: CloseRequested{}}, h.events[1])
}
