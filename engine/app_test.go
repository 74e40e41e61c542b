package engine_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/spaghettifunk/showcase/engine"
	"github.com/spaghettifunk/showcase/engine/core"
	"github.com/spaghettifunk/showcase/engine/platform"
	"github.com/spaghettifunk/showcase/engine/platform/platformtest"
	"github.com/spaghettifunk/showcase/engine/renderer"
	"github.com/spaghettifunk/showcase/engine/renderer/gputest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type keyPress struct {
	key     core.KeyCode
	pressed bool
}

type fakeDemo struct {
	rec      *gputest.Recorder
	mouse    [][2]float64
	keys     []keyPress
	dts      []time.Duration
	released bool
}

func (d *fakeDemo) ProcessMouse(dx, dy float64) {
	d.mouse = append(d.mouse, [2]float64{dx, dy})
}

func (d *fakeDemo) ProcessKeyboard(key core.KeyCode, pressed bool) {
	d.keys = append(d.keys, keyPress{key, pressed})
}

func (d *fakeDemo) Resize(display *renderer.Display) {
	cfg := display.Config()
	d.rec.Calls = append(d.rec.Calls, fmt.Sprintf("demo.resize %dx%d", cfg.Width, cfg.Height))
}

func (d *fakeDemo) Update(_ *renderer.Display, dt time.Duration) {
	d.dts = append(d.dts, dt)
	d.rec.Calls = append(d.rec.Calls, "demo.update")
}

func (d *fakeDemo) Render(*renderer.Display) {
	d.rec.Calls = append(d.rec.Calls, "demo.render")
}

func (d *fakeDemo) Release() {
	d.released = true
	d.rec.Calls = append(d.rec.Calls, "demo.release")
}

type fixture struct {
	app     *engine.App
	loop    *platformtest.EventLoop
	backend *gputest.Backend
	demo    *fakeDemo
	inits   int
	fatals  []error
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		loop:    platformtest.NewEventLoop(),
		backend: gputest.NewBackend(),
		now:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	f.demo = &fakeDemo{rec: f.backend.Recorder()}

	cfg := engine.DefaultConfig()
	cfg.Name = "Fixture"
	cfg.StartWidth = 800
	cfg.StartHeight = 600

	init := func(*renderer.Display) (engine.Demo, error) {
		f.inits++
		return f.demo, nil
	}
	f.app = engine.NewApp(cfg, f.backend, init,
		engine.WithFatalHandler(func(err error) { f.fatals = append(f.fatals, err) }),
		engine.WithClock(core.NewClockWithSource(func() time.Time { return f.now })),
	)
	return f
}

func (f *fixture) resume(t *testing.T) *platformtest.Window {
	t.Helper()
	f.app.Resumed(f.loop)
	require.True(t, f.app.Initialized())
	require.Len(t, f.loop.Windows, 1)
	return f.loop.Windows[0]
}

func TestResumedInitializesOnce(t *testing.T) {
	f := newFixture(t)
	window := f.resume(t)

	assert.Equal(t, 1, f.inits)
	assert.Equal(t, "Fixture", window.Title())
	assert.Equal(t, uint32(800), f.loop.Attributes[0].Width)
	assert.Equal(t, uint32(600), f.loop.Attributes[0].Height)
	assert.Equal(t, 1, window.Redraws)
	assert.Empty(t, f.fatals)

	f.app.Resumed(f.loop)
	assert.Equal(t, 1, f.inits)
	assert.Len(t, f.loop.Windows, 1)
	assert.Len(t, f.backend.Windows, 1)
	assert.False(t, f.loop.Exiting())
}

func TestResumedWithoutAdapterIsFatal(t *testing.T) {
	f := newFixture(t)
	f.backend.Instance.AdapterErr = errors.New("no vulkan driver")

	f.app.Resumed(f.loop)

	require.Len(t, f.fatals, 1)
	assert.ErrorIs(t, f.fatals[0], core.ErrNoAdapter)
	assert.True(t, f.loop.Exiting())
	assert.False(t, f.app.Initialized())
	assert.Zero(t, f.inits)
}

func TestResumedWithFailingDemoReleasesDisplay(t *testing.T) {
	f := newFixture(t)
	demoErr := errors.New("shader compile failed")
	f.app = engine.NewApp(engine.DefaultConfig(), f.backend,
		func(*renderer.Display) (engine.Demo, error) { return nil, demoErr },
		engine.WithFatalHandler(func(err error) { f.fatals = append(f.fatals, err) }),
	)

	f.app.Resumed(f.loop)

	require.Len(t, f.fatals, 1)
	assert.ErrorIs(t, f.fatals[0], demoErr)
	assert.True(t, f.loop.Exiting())
	assert.True(t, f.backend.Surface().Released)
	assert.True(t, f.backend.Device().Released)
	assert.True(t, f.backend.Instance.Released)
}

func TestCloseRequestedExits(t *testing.T) {
	f := newFixture(t)
	window := f.resume(t)

	f.app.WindowEvent(f.loop, window.ID(), platform.CloseRequested{})
	assert.True(t, f.loop.Exiting())

	f.app.WindowEvent(f.loop, window.ID(), platform.KeyboardInput{Key: core.KEY_W, State: core.Pressed})
	f.app.DeviceEvent(f.loop, platform.NewDeviceID(), platform.MouseMotion{DX: 1, DY: 1})
	assert.Empty(t, f.demo.keys)
	assert.Empty(t, f.demo.mouse)
}

func TestEscapeExitsOnPressOnly(t *testing.T) {
	f := newFixture(t)
	window := f.resume(t)

	f.app.WindowEvent(f.loop, window.ID(), platform.KeyboardInput{Key: core.KEY_ESCAPE, State: core.Released})
	assert.False(t, f.loop.Exiting())
	assert.Equal(t, []keyPress{{core.KEY_ESCAPE, false}}, f.demo.keys)

	f.app.WindowEvent(f.loop, window.ID(), platform.KeyboardInput{Key: core.KEY_ESCAPE, State: core.Pressed})
	assert.True(t, f.loop.Exiting())
	assert.Len(t, f.demo.keys, 1)
}

func TestKeyboardForwarded(t *testing.T) {
	f := newFixture(t)
	window := f.resume(t)

	f.app.WindowEvent(f.loop, window.ID(), platform.KeyboardInput{Key: core.KEY_W, State: core.Pressed})
	f.app.WindowEvent(f.loop, window.ID(), platform.KeyboardInput{Key: core.KEY_W, State: core.Pressed, Repeat: true})
	f.app.WindowEvent(f.loop, window.ID(), platform.KeyboardInput{Key: core.KEY_W, State: core.Released})

	assert.Equal(t, []keyPress{
		{core.KEY_W, true},
		{core.KEY_W, true},
		{core.KEY_W, false},
	}, f.demo.keys)
}

func TestEventsForOtherWindowsDropped(t *testing.T) {
	f := newFixture(t)
	f.resume(t)
	other := platform.NewWindowID()
	calls := len(f.backend.Recorder().Calls)

	f.app.WindowEvent(f.loop, other, platform.CloseRequested{})
	f.app.WindowEvent(f.loop, other, platform.KeyboardInput{Key: core.KEY_ESCAPE, State: core.Pressed})
	f.app.WindowEvent(f.loop, other, platform.Resized{Width: 10, Height: 10})
	f.app.WindowEvent(f.loop, other, platform.RedrawRequested{})

	assert.False(t, f.loop.Exiting())
	assert.Empty(t, f.demo.keys)
	assert.Len(t, f.backend.Recorder().Calls, calls)
}

func TestResizeReconfiguresBeforeRedraw(t *testing.T) {
	f := newFixture(t)
	window := f.resume(t)
	f.backend.Recorder().Calls = nil

	f.app.WindowEvent(f.loop, window.ID(), platform.Resized{Width: 1024, Height: 768})
	f.app.WindowEvent(f.loop, window.ID(), platform.RedrawRequested{})

	assert.Equal(t, []string{
		"surface.configure 1024x768",
		"demo.resize 1024x768",
		"demo.update",
		"demo.render",
	}, f.backend.Recorder().Calls)

	cfg, ok := f.backend.Surface().LastConfig()
	require.True(t, ok)
	assert.Equal(t, uint32(1024), cfg.Width)
	assert.Equal(t, uint32(768), cfg.Height)
}

func TestResizeFailureIsLogged(t *testing.T) {
	f := newFixture(t)
	window := f.resume(t)
	f.backend.Surface().ConfigureErr = errors.New("device lost")

	f.app.WindowEvent(f.loop, window.ID(), platform.Resized{Width: 640, Height: 480})

	assert.False(t, f.loop.Exiting())
	assert.Equal(t, uint32(640), f.app.Display().Config().Width)
	assert.Contains(t, f.backend.Recorder().Calls, "demo.resize 640x480")
}

func TestRedrawUpdatesThenRenders(t *testing.T) {
	f := newFixture(t)
	window := f.resume(t)
	f.backend.Recorder().Calls = nil

	f.now = f.now.Add(16 * time.Millisecond)
	f.app.WindowEvent(f.loop, window.ID(), platform.RedrawRequested{})
	f.now = f.now.Add(20 * time.Millisecond)
	f.app.WindowEvent(f.loop, window.ID(), platform.RedrawRequested{})

	assert.Equal(t, []string{"demo.update", "demo.render", "demo.update", "demo.render"}, f.backend.Recorder().Calls)
	assert.Equal(t, []time.Duration{16 * time.Millisecond, 20 * time.Millisecond}, f.demo.dts)
	// one from startup, one per redraw
	assert.Equal(t, 3, window.Redraws)
}

func TestMouseMotionForwardedOnceInitialized(t *testing.T) {
	f := newFixture(t)
	device := platform.NewDeviceID()

	f.app.DeviceEvent(f.loop, device, platform.MouseMotion{DX: 3, DY: 4})
	assert.Empty(t, f.demo.mouse)
	assert.Zero(t, f.inits)

	f.resume(t)
	f.app.DeviceEvent(f.loop, device, platform.MouseMotion{DX: -1.5, DY: 2})
	assert.Equal(t, [][2]float64{{-1.5, 2}}, f.demo.mouse)
}

func TestWindowEventsBeforeInitDropped(t *testing.T) {
	f := newFixture(t)

	f.app.WindowEvent(f.loop, platform.NewWindowID(), platform.CloseRequested{})
	assert.False(t, f.loop.Exiting())
}

func TestLoopExitingReleasesDemoThenDisplay(t *testing.T) {
	f := newFixture(t)
	f.resume(t)
	f.backend.Recorder().Calls = nil

	f.app.LoopExiting(f.loop)

	assert.True(t, f.demo.released)
	calls := f.backend.Recorder().Calls
	require.NotEmpty(t, calls)
	assert.Equal(t, "demo.release", calls[0])
	assert.Contains(t, calls, "surface.release")
	assert.Contains(t, calls, "device.release")
	assert.Contains(t, calls, "instance.release")
}

func TestLoopExitingBeforeInitIsNoop(t *testing.T) {
	f := newFixture(t)

	f.app.LoopExiting(f.loop)

	assert.False(t, f.demo.released)
	assert.Empty(t, f.backend.Recorder().Calls)
}
