// Package platformtest provides in-memory windows and event loops for
// exercising ApplicationHandlers without a display server.
package platformtest

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spaghettifunk/showcase/engine/platform"
)

type Window struct {
	id     platform.WindowID
	title  string
	Width  uint32
	Height uint32
	// Redraws counts RequestRedraw calls.
	Redraws int
}

func NewWindow(title string, width, height uint32) *Window {
	return &Window{
		id:     platform.NewWindowID(),
		title:  title,
		Width:  width,
		Height: height,
	}
}

func (w *Window) ID() platform.WindowID       { return w.id }
func (w *Window) Title() string               { return w.title }
func (w *Window) InnerSize() (uint32, uint32) { return w.Width, w.Height }
func (w *Window) RequestRedraw()              { w.Redraws++ }
func (w *Window) Handle() *glfw.Window        { return nil }

type EventLoop struct {
	Windows []*Window
	// CreateErr is returned by CreateWindow when set.
	CreateErr error

	Attributes []platform.WindowAttributes
	exiting    bool
}

func NewEventLoop() *EventLoop {
	return &EventLoop{}
}

func (el *EventLoop) CreateWindow(attrs platform.WindowAttributes) (platform.Window, error) {
	el.Attributes = append(el.Attributes, attrs)
	if el.CreateErr != nil {
		return nil, el.CreateErr
	}
	w := NewWindow(attrs.Title, attrs.Width, attrs.Height)
	el.Windows = append(el.Windows, w)
	return w, nil
}

func (el *EventLoop) Exit() {
	el.exiting = true
}

func (el *EventLoop) Exiting() bool {
	return el.exiting
}
