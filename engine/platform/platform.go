package platform

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spaghettifunk/showcase/engine/core"
)

// idleWait bounds how long the loop sleeps when no window wants a redraw.
const idleWait = 0.1

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

/**
 * @brief The windowing event loop. Owns glfw, the windows it created
 * and the queue of pending input. Must be created and run on the main
 * thread.
 */
type EventLoop struct {
	windows []*glfwWindow
	pump    *eventPump
	cursor  cursorTracker
	exiting bool

	interrupted atomic.Bool
}

func NewEventLoop() (*EventLoop, error) {
	if err := glfw.Init(); err != nil {
		err = fmt.Errorf("failed to initialize glfw: %w", err)
		core.LogError(err.Error())
		return nil, err
	}
	return &EventLoop{
		windows: []*glfwWindow{},
		pump:    newEventPump(),
	}, nil
}

func (el *EventLoop) CreateWindow(attrs WindowAttributes) (Window, error) {
	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	if attrs.Resizable {
		glfw.WindowHint(glfw.Resizable, glfw.True)
	} else {
		glfw.WindowHint(glfw.Resizable, glfw.False)
	}

	handle, err := glfw.CreateWindow(int(attrs.Width), int(attrs.Height), attrs.Title, nil, nil)
	if err != nil {
		err = fmt.Errorf("failed to create window: %w", err)
		core.LogError(err.Error())
		return nil, err
	}

	w := &glfwWindow{
		id:     NewWindowID(),
		title:  attrs.Title,
		handle: handle,
	}
	el.installCallbacks(w)

	if glfw.RawMouseMotionSupported() {
		handle.SetInputMode(glfw.RawMouseMotion, glfw.True)
	}
	handle.SetPos(attrs.X, attrs.Y)
	handle.Show()

	el.windows = append(el.windows, w)

	// glfw does not report the initial size, surfaces are configured from this event.
	width, height := w.InnerSize()
	el.pump.pushWindow(w.id, Resized{Width: width, Height: height})

	core.LogInfo("created window '%s' (%dx%d) id=%s", attrs.Title, width, height, w.id)
	return w, nil
}

func (el *EventLoop) installCallbacks(w *glfwWindow) {
	w.handle.SetCloseCallback(func(gw *glfw.Window) {
		// the application decides whether to close
		gw.SetShouldClose(false)
		el.pump.pushWindow(w.id, CloseRequested{})
	})
	w.handle.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		state, repeat := translateAction(action)
		el.pump.pushWindow(w.id, KeyboardInput{Key: translateKey(key), State: state, Repeat: repeat})
	})
	w.handle.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		el.pump.pushWindow(w.id, Resized{Width: uint32(max(width, 0)), Height: uint32(max(height, 0))})
	})
	w.handle.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		if dx, dy, ok := el.cursor.move(x, y); ok {
			el.pump.pushMotion(dx, dy)
		}
	})
	w.handle.SetCursorEnterCallback(func(_ *glfw.Window, entered bool) {
		if !entered {
			el.cursor.reset()
		}
	})
}

func (el *EventLoop) Exit() {
	el.exiting = true
}

func (el *EventLoop) Exiting() bool {
	return el.exiting
}

// Interrupt asks every window to close as if the user had requested it.
// Safe to call from any goroutine.
func (el *EventLoop) Interrupt() {
	el.interrupted.Store(true)
	glfw.PostEmptyEvent()
}

func (el *EventLoop) takeInterrupt() {
	if !el.interrupted.Swap(false) {
		return
	}
	core.LogInfo("interrupt received, closing windows")
	for _, w := range el.windows {
		el.pump.pushWindow(w.id, CloseRequested{})
	}
}

// RunApp drives handler until Exit is called. It blocks the calling
// (main) thread and terminates glfw before returning.
func (el *EventLoop) RunApp(handler ApplicationHandler) error {
	defer el.shutdown()

	handler.Resumed(el)

	for !el.exiting {
		el.takeInterrupt()
		el.pump.drain(el, handler)

		redrawn := false
		for _, w := range el.windows {
			if el.exiting {
				break
			}
			if w.takeRedraw() {
				redrawn = true
				handler.WindowEvent(el, w.id, RedrawRequested{})
			}
		}
		if el.exiting {
			break
		}

		if redrawn {
			glfw.PollEvents()
		} else {
			glfw.WaitEventsTimeout(idleWait)
		}
	}

	handler.LoopExiting(el)
	return nil
}

func (el *EventLoop) shutdown() {
	for _, w := range el.windows {
		w.handle.Destroy()
	}
	el.windows = nil
	glfw.Terminate()
	core.LogDebug("event loop terminated")
}
