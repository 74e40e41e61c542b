package renderer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/spaghettifunk/showcase/engine/core"
	"github.com/spaghettifunk/showcase/engine/platform/platformtest"
	"github.com/spaghettifunk/showcase/engine/renderer"
	"github.com/spaghettifunk/showcase/engine/renderer/gputest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDisplay(t *testing.T, width, height uint32) (*renderer.Display, *gputest.Backend) {
	t.Helper()
	backend := gputest.NewBackend()
	window := platformtest.NewWindow("test", width, height)
	d, err := renderer.NewDisplay(context.Background(), backend, window, renderer.DefaultDisplayOptions())
	require.NoError(t, err)
	return d, backend
}

func TestNewDisplayAcquiresResourcesInOrder(t *testing.T) {
	_, backend := newDisplay(t, 800, 600)

	assert.Equal(t, []string{
		"instance.create",
		"instance.create_surface",
		"instance.request_adapter",
		"adapter.request_device",
		"surface.capabilities",
		"surface.configure 800x600",
	}, backend.Recorder().Calls)
	assert.Same(t, backend.Surface(), backend.Instance.AdapterOptions.CompatibleSurface)
}

func TestNewDisplayConfiguration(t *testing.T) {
	d, backend := newDisplay(t, 800, 600)

	cfg := d.Config()
	assert.Equal(t, "Bgra8UnormSrgb", cfg.Format.Name)
	assert.Equal(t, renderer.TextureUsageRenderAttachment, cfg.Usage)
	assert.Equal(t, renderer.PresentModeFifo, cfg.PresentMode)
	assert.Equal(t, renderer.AlphaModeOpaque, cfg.AlphaMode)
	assert.Empty(t, cfg.ViewFormats)
	assert.Equal(t, uint32(2), cfg.DesiredMaximumFrameLatency)
	assert.Equal(t, uint32(800), cfg.Width)
	assert.Equal(t, uint32(600), cfg.Height)

	assert.Same(t, backend.Device(), d.Device())
	assert.Same(t, backend.Queue(), d.Queue())
	assert.Same(t, backend.Surface(), d.Surface())
	assert.Equal(t, "test", d.Window().Title())
}

func TestPreferredFormatFallsBackToFirst(t *testing.T) {
	formats := []renderer.SurfaceFormat{{Code: 1, Name: "Rgba16Float"}, {Code: 2, Name: "Rgb10a2Unorm"}}
	assert.Equal(t, "Rgba16Float", renderer.PreferredFormat(formats).Name)

	formats = append(formats, renderer.SurfaceFormat{Code: 3, Srgb: true, Name: "Rgba8UnormSrgb"})
	assert.Equal(t, "Rgba8UnormSrgb", renderer.PreferredFormat(formats).Name)
}

func TestNewDisplayWithoutAdapter(t *testing.T) {
	backend := gputest.NewBackend()
	backend.Instance.AdapterErr = errors.New("no vulkan capable gpu")

	d, err := renderer.NewDisplay(context.Background(), backend, platformtest.NewWindow("test", 640, 480), renderer.DefaultDisplayOptions())
	assert.Nil(t, d)
	assert.ErrorIs(t, err, core.ErrNoAdapter)
	assert.True(t, backend.Surface().Released)
	assert.True(t, backend.Instance.Released)
}

func TestNewDisplayWithoutDevice(t *testing.T) {
	backend := gputest.NewBackend()
	backend.Instance.Adapter.DeviceErr = errors.New("out of memory")

	_, err := renderer.NewDisplay(context.Background(), backend, platformtest.NewWindow("test", 640, 480), renderer.DefaultDisplayOptions())
	assert.ErrorIs(t, err, core.ErrNoDevice)
	assert.True(t, backend.Instance.Adapter.Released)
}

func TestNewDisplayMinimizedDefersConfigure(t *testing.T) {
	d, backend := newDisplay(t, 0, 0)
	assert.Empty(t, backend.Surface().Configs)

	_, err := d.AcquireFrame()
	assert.ErrorIs(t, err, core.ErrSurfaceUnavailable)
}

func TestDisplayResize(t *testing.T) {
	d, backend := newDisplay(t, 800, 600)

	require.NoError(t, d.Resize(1024, 768))
	assert.Equal(t, uint32(1024), d.Config().Width)
	assert.Equal(t, uint32(768), d.Config().Height)

	last, ok := backend.Surface().LastConfig()
	require.True(t, ok)
	assert.Equal(t, uint32(1024), last.Width)
	assert.Equal(t, uint32(768), last.Height)
}

func TestDisplayResizeToZero(t *testing.T) {
	d, backend := newDisplay(t, 800, 600)

	require.NoError(t, d.Resize(0, 600))
	assert.Equal(t, uint32(0), d.Config().Width)
	assert.Len(t, backend.Surface().Configs, 1, "no reconfigure without an area")

	require.NoError(t, d.Resize(300, 200))
	assert.Len(t, backend.Surface().Configs, 2)
}

func TestDisplayResizeError(t *testing.T) {
	d, backend := newDisplay(t, 800, 600)
	backend.Surface().ConfigureErr = errors.New("device lost")

	err := d.Resize(1024, 768)
	assert.Error(t, err)
	assert.Equal(t, uint32(1024), d.Config().Width, "size is stored even when reconfigure fails")
}

func TestAcquireFrameRetriesOutdatedSurface(t *testing.T) {
	d, backend := newDisplay(t, 800, 600)
	backend.Surface().AcquireErrs = []error{core.ErrSurfaceOutdated}

	frame, err := d.AcquireFrame()
	require.NoError(t, err)
	assert.NotNil(t, frame)
	assert.Len(t, backend.Surface().Configs, 2)
}

func TestAcquireFrameGivesUpAfterOneRetry(t *testing.T) {
	d, backend := newDisplay(t, 800, 600)
	backend.Surface().AcquireErrs = []error{core.ErrSurfaceLost, core.ErrSurfaceLost}

	_, err := d.AcquireFrame()
	assert.ErrorIs(t, err, core.ErrSurfaceLost)
}

func TestAcquireFrameTimeoutIsNotRetried(t *testing.T) {
	d, backend := newDisplay(t, 800, 600)
	backend.Surface().AcquireErrs = []error{core.ErrSurfaceTimeout}

	_, err := d.AcquireFrame()
	assert.ErrorIs(t, err, core.ErrSurfaceTimeout)
	assert.Len(t, backend.Surface().Configs, 1)
}

func TestDisplayRelease(t *testing.T) {
	d, backend := newDisplay(t, 800, 600)
	rec := backend.Recorder()
	rec.Calls = nil

	d.Release()
	assert.Equal(t, []string{"surface.release", "device.release", "adapter.release", "instance.release"}, rec.Calls)

	d.Release()
	assert.Len(t, rec.Calls, 4, "release is idempotent")
}
