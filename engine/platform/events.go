package platform

import (
	"github.com/google/uuid"
	"github.com/spaghettifunk/showcase/engine/core"
)

// WindowID identifies a window created by the event loop.
type WindowID uuid.UUID

func NewWindowID() WindowID {
	return WindowID(uuid.New())
}

func (id WindowID) String() string {
	return uuid.UUID(id).String()
}

// DeviceID identifies the input device a DeviceEvent originated from.
type DeviceID uuid.UUID

func NewDeviceID() DeviceID {
	return DeviceID(uuid.New())
}

func (id DeviceID) String() string {
	return uuid.UUID(id).String()
}

// WindowEvent is any event scoped to a single window.
type WindowEvent interface {
	isWindowEvent()
}

// CloseRequested is sent when the user asks to close the window.
type CloseRequested struct{}

// KeyboardInput carries a physical key transition. Repeat is set for
// auto-repeat presses generated while the key is held down.
type KeyboardInput struct {
	Key    core.KeyCode
	State  core.ElementState
	Repeat bool
}

// Resized carries the new framebuffer size in physical pixels.
type Resized struct {
	Width  uint32
	Height uint32
}

// RedrawRequested is delivered once per loop iteration to windows
// that called RequestRedraw.
type RedrawRequested struct{}

func (CloseRequested) isWindowEvent()  {}
func (KeyboardInput) isWindowEvent()   {}
func (Resized) isWindowEvent()         {}
func (RedrawRequested) isWindowEvent() {}

// DeviceEvent is raw input that is not tied to a window.
type DeviceEvent interface {
	isDeviceEvent()
}

// MouseMotion is a relative pointer movement.
type MouseMotion struct {
	DX float64
	DY float64
}

func (MouseMotion) isDeviceEvent() {}

// ActiveEventLoop is the view of the running loop handed to an ApplicationHandler.
type ActiveEventLoop interface {
	CreateWindow(attrs WindowAttributes) (Window, error)
	Exit()
	Exiting() bool
}

// ApplicationHandler receives the lifecycle and input signals of the loop.
type ApplicationHandler interface {
	Resumed(el ActiveEventLoop)
	WindowEvent(el ActiveEventLoop, id WindowID, event WindowEvent)
	DeviceEvent(el ActiveEventLoop, id DeviceID, event DeviceEvent)
	// LoopExiting runs once after Exit, before windows are destroyed.
	LoopExiting(el ActiveEventLoop)
}
