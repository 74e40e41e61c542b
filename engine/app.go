package engine

import (
	"context"
	"fmt"

	"github.com/spaghettifunk/showcase/engine/core"
	"github.com/spaghettifunk/showcase/engine/platform"
	"github.com/spaghettifunk/showcase/engine/renderer"
)

// appState is either uninitialized or initialized, nothing else.
type appState interface {
	isAppState()
}

type uninitialized struct{}

type initialized struct {
	display *renderer.Display
	demo    Demo
}

func (uninitialized) isAppState() {}
func (initialized) isAppState()   {}

type AppOption func(*App)

func logFatal(err error) {
	core.LogFatal("%s", err)
}

// WithFatalHandler replaces the handler called when startup fails. The
// default logs at fatal level, which exits the process.
func WithFatalHandler(fn func(err error)) AppOption {
	return func(a *App) {
		a.fatal = fn
	}
}

func WithClock(clock *core.Clock) AppOption {
	return func(a *App) {
		a.clock = clock
	}
}

/**
 * @brief Hosts one demo in one window. Implements
 * platform.ApplicationHandler: the first Resumed creates the window, the
 * display and the demo, and every later event is dispatched to them.
 */
type App struct {
	config  *ApplicationConfig
	backend renderer.Backend
	init    InitFunc
	state   appState

	clock   *core.Clock
	metrics *core.Metrics
	fatal   func(err error)
}

func NewApp(config *ApplicationConfig, backend renderer.Backend, init InitFunc, opts ...AppOption) *App {
	a := &App{
		config:  config,
		backend: backend,
		init:    init,
		state:   uninitialized{},
		clock:   core.NewClock(),
		metrics: core.NewMetrics(),
		fatal:   logFatal,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Initialized reports whether the display and demo are live.
func (a *App) Initialized() bool {
	_, ok := a.state.(initialized)
	return ok
}

// Display returns the live display, or nil before initialization.
func (a *App) Display() *renderer.Display {
	if st, ok := a.state.(initialized); ok {
		return st.display
	}
	return nil
}

func (a *App) Resumed(el platform.ActiveEventLoop) {
	if _, ok := a.state.(initialized); ok {
		core.LogWarn("%s, ignoring resume", core.ErrAlreadyInitialized)
		return
	}

	st, err := a.start(el)
	if err != nil {
		a.fatal(err)
		el.Exit()
		return
	}
	a.state = st
	a.clock.Start()
	core.LogInfo("%s initialized", a.config.Name)
}

func (a *App) start(el platform.ActiveEventLoop) (initialized, error) {
	window, err := el.CreateWindow(a.config.WindowAttributes())
	if err != nil {
		return initialized{}, fmt.Errorf("failed to create window: %w", err)
	}
	window.RequestRedraw()

	// the only place device acquisition blocks
	display, err := renderer.NewDisplay(context.Background(), a.backend, window, a.config.DisplayOptions())
	if err != nil {
		return initialized{}, fmt.Errorf("failed to create display: %w", err)
	}

	demo, err := a.init(display)
	if err != nil {
		display.Release()
		err = fmt.Errorf("failed to initialize demo: %w", err)
		core.LogError(err.Error())
		return initialized{}, err
	}
	return initialized{display: display, demo: demo}, nil
}

func (a *App) WindowEvent(el platform.ActiveEventLoop, id platform.WindowID, event platform.WindowEvent) {
	st, ok := a.state.(initialized)
	if !ok || el.Exiting() {
		return
	}
	if st.display.Window().ID() != id {
		return
	}

	switch ev := event.(type) {
	case platform.CloseRequested:
		core.LogInfo("close requested")
		el.Exit()
	case platform.KeyboardInput:
		if ev.Key == core.KEY_ESCAPE && ev.State.IsPressed() {
			core.LogInfo("escape pressed")
			el.Exit()
			return
		}
		st.demo.ProcessKeyboard(ev.Key, ev.State.IsPressed())
	case platform.Resized:
		core.LogInfo("window resized to %dx%d", ev.Width, ev.Height)
		if err := st.display.Resize(ev.Width, ev.Height); err != nil {
			core.LogError("resize failed: %s", err)
		}
		st.demo.Resize(st.display)
	case platform.RedrawRequested:
		st.display.Window().RequestRedraw()
		dt := a.clock.Tick()
		st.demo.Update(st.display, dt)
		st.demo.Render(st.display)
		if a.metrics.Update(dt) {
			fps, ms := a.metrics.Frame()
			core.LogDebug("%.0f fps, %.2f ms/frame", fps, ms)
		}
	}
}

func (a *App) DeviceEvent(el platform.ActiveEventLoop, _ platform.DeviceID, event platform.DeviceEvent) {
	st, ok := a.state.(initialized)
	if !ok || el.Exiting() {
		return
	}
	if motion, ok := event.(platform.MouseMotion); ok {
		st.demo.ProcessMouse(motion.DX, motion.DY)
	}
}

// LoopExiting releases the demo before the display it was built on.
func (a *App) LoopExiting(platform.ActiveEventLoop) {
	st, ok := a.state.(initialized)
	if !ok {
		return
	}
	if r, ok := st.demo.(Releaser); ok {
		r.Release()
	}
	st.display.Release()
	a.clock.Stop()
	core.LogInfo("%s shut down after %s", a.config.Name, a.clock.Elapsed())
}
