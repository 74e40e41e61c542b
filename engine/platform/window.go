package platform

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

/** @brief Creation parameters for a window. */
type WindowAttributes struct {
	Title     string
	X         int
	Y         int
	Width     uint32
	Height    uint32
	Resizable bool
}

func DefaultWindowAttributes() WindowAttributes {
	return WindowAttributes{
		Title:     "Showcase",
		X:         100,
		Y:         100,
		Width:     1280,
		Height:    720,
		Resizable: true,
	}
}

// Window is an OS window that a GPU surface can be created for.
type Window interface {
	ID() WindowID
	Title() string
	// InnerSize is the framebuffer size in physical pixels.
	InnerSize() (width, height uint32)
	// RequestRedraw schedules a RedrawRequested event for the next loop iteration.
	RequestRedraw()
	// Handle is the native glfw window, nil for headless windows.
	Handle() *glfw.Window
}

type glfwWindow struct {
	id              WindowID
	title           string
	handle          *glfw.Window
	redrawRequested bool
}

func (w *glfwWindow) ID() WindowID {
	return w.id
}

func (w *glfwWindow) Title() string {
	return w.title
}

func (w *glfwWindow) InnerSize() (uint32, uint32) {
	width, height := w.handle.GetFramebufferSize()
	return uint32(max(width, 0)), uint32(max(height, 0))
}

func (w *glfwWindow) RequestRedraw() {
	w.redrawRequested = true
}

func (w *glfwWindow) Handle() *glfw.Window {
	return w.handle
}

func (w *glfwWindow) takeRedraw() bool {
	requested := w.redrawRequested
	w.redrawRequested = false
	return requested
}
