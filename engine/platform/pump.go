package platform

import (
	"github.com/spaghettifunk/showcase/engine/containers"
	"github.com/spaghettifunk/showcase/engine/core"
)

const eventQueueSize = 1024

type queuedEvent struct {
	window      WindowID
	windowEvent WindowEvent
	device      DeviceID
	deviceEvent DeviceEvent
}

/**
 * @brief Buffers the events produced by the glfw callbacks until the
 * loop drains them into the ApplicationHandler. Consecutive mouse
 * motion is coalesced into a single event so ordering relative to
 * window events is preserved without flooding the queue.
 */
type eventPump struct {
	queue  *containers.RingQueue[queuedEvent]
	device DeviceID

	motionDX      float64
	motionDY      float64
	motionPending bool
}

func newEventPump() *eventPump {
	return &eventPump{
		queue:  containers.NewRingQueue[queuedEvent](eventQueueSize),
		device: NewDeviceID(),
	}
}

func (p *eventPump) pushWindow(id WindowID, event WindowEvent) {
	p.flushMotion()
	p.enqueue(queuedEvent{window: id, windowEvent: event})
}

func (p *eventPump) pushMotion(dx, dy float64) {
	p.motionDX += dx
	p.motionDY += dy
	p.motionPending = true
}

func (p *eventPump) flushMotion() {
	if !p.motionPending {
		return
	}
	ev := queuedEvent{device: p.device, deviceEvent: MouseMotion{DX: p.motionDX, DY: p.motionDY}}
	p.motionDX, p.motionDY, p.motionPending = 0, 0, false
	p.enqueue(ev)
}

func (p *eventPump) enqueue(ev queuedEvent) {
	if err := p.queue.Enqueue(ev); err != nil {
		core.LogWarn("event queue: %s, dropping %T", err, ev.windowEvent)
	}
}

// drain delivers every buffered event in arrival order. It stops early
// once the loop starts exiting.
func (p *eventPump) drain(el ActiveEventLoop, handler ApplicationHandler) {
	p.flushMotion()
	for !p.queue.IsEmpty() {
		if el.Exiting() {
			p.queue.Clear()
			return
		}
		ev, err := p.queue.Dequeue()
		if err != nil {
			return
		}
		if ev.deviceEvent != nil {
			handler.DeviceEvent(el, ev.device, ev.deviceEvent)
			continue
		}
		handler.WindowEvent(el, ev.window, ev.windowEvent)
	}
}

/** @brief Turns absolute cursor positions into relative motion. */
type cursorTracker struct {
	x, y  float64
	valid bool
}

func (c *cursorTracker) move(x, y float64) (dx, dy float64, ok bool) {
	if c.valid {
		dx, dy, ok = x-c.x, y-c.y, true
	}
	c.x, c.y, c.valid = x, y, true
	return dx, dy, ok
}

func (c *cursorTracker) reset() {
	c.valid = false
}
