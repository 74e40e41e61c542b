package engine

import (
	"time"

	"github.com/spaghettifunk/showcase/engine/core"
	"github.com/spaghettifunk/showcase/engine/renderer"
)

/**
 * @brief A demo driven by the App. The per-frame hooks have no error
 * return; a demo handles its own failures or aborts.
 */
type Demo interface {
	// ProcessMouse receives raw pointer motion deltas.
	ProcessMouse(dx, dy float64)
	// ProcessKeyboard receives physical key transitions.
	ProcessKeyboard(key core.KeyCode, pressed bool)
	// Resize runs after the display has been reconfigured.
	Resize(display *renderer.Display)
	Update(display *renderer.Display, dt time.Duration)
	Render(display *renderer.Display)
}

// InitFunc builds the demo once the display is live.
type InitFunc func(display *renderer.Display) (Demo, error)

// Releaser is implemented by demos owning GPU resources that must be
// freed before the display goes away.
type Releaser interface {
	Release()
}
