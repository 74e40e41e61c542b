package testbed

import (
	"context"
	"testing"
	"time"

	"github.com/spaghettifunk/showcase/engine/core"
	"github.com/spaghettifunk/showcase/engine/platform/platformtest"
	"github.com/spaghettifunk/showcase/engine/renderer"
	"github.com/spaghettifunk/showcase/engine/renderer/gputest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDemo(t *testing.T) (*CameraDemo, *renderer.Display, *gputest.Backend) {
	t.Helper()
	backend := gputest.NewBackend()
	window := platformtest.NewWindow("testbed", 800, 600)
	display, err := renderer.NewDisplay(context.Background(), backend, window, renderer.DefaultDisplayOptions())
	require.NoError(t, err)

	demo, err := New(display)
	require.NoError(t, err)
	return demo.(*CameraDemo), display, backend
}

func TestNewCreatesUniformAndBinding(t *testing.T) {
	demo, _, backend := newDemo(t)

	device := backend.Device()
	require.Len(t, device.Buffers, 1)
	assert.Equal(t, "Camera Buffer", device.Buffers[0].Label)
	assert.Len(t, device.Layouts, 1)
	assert.Len(t, device.BindGroups, 1)
	assert.Same(t, device.Buffers[0], device.BindGroups[0].Desc.Entries[0].Buffer)
	assert.InDelta(t, float32(800)/600, demo.projection.Aspect, 1e-6)
}

func TestRenderRecordsCopyBeforePass(t *testing.T) {
	demo, display, backend := newDemo(t)

	demo.Render(display)

	device := backend.Device()
	require.Len(t, device.Encoders, 1)
	encoder := device.Encoders[0]
	assert.Equal(t, []gputest.CommandKind{
		gputest.CommandCopyBufferToBuffer,
		gputest.CommandBeginRenderPass,
		gputest.CommandEndRenderPass,
	}, encoder.Kinds())

	upload := encoder.Commands[0]
	assert.Equal(t, uint64(renderer.CameraUniformSize), upload.Size)
	assert.Equal(t, uint64(0), upload.DstOffset)
	assert.Same(t, device.Buffers[0], upload.Dst)

	pass := encoder.Commands[1].Pass
	require.Len(t, pass.ColorAttachments, 1)
	assert.Equal(t, renderer.LoadOpClear, pass.ColorAttachments[0].LoadOp)
	assert.Equal(t, ClearColor, pass.ColorAttachments[0].ClearValue)

	assert.True(t, encoder.Released)
	require.Len(t, backend.Queue().Submitted, 1)
	require.Len(t, backend.Surface().Textures, 1)
	texture := backend.Surface().Textures[0]
	assert.True(t, texture.Presented)
	assert.True(t, texture.Released)
}

func TestRenderSkipsMinimizedWindow(t *testing.T) {
	demo, display, backend := newDemo(t)
	require.NoError(t, display.Resize(0, 0))

	demo.Render(display)

	assert.Empty(t, backend.Device().Encoders)
	assert.Empty(t, backend.Queue().Submitted)
}

func TestRenderRetriesOutdatedSurface(t *testing.T) {
	demo, display, backend := newDemo(t)
	backend.Surface().AcquireErrs = []error{core.ErrSurfaceOutdated}

	demo.Render(display)

	assert.Len(t, backend.Surface().Configs, 2)
	assert.Len(t, backend.Queue().Submitted, 1)
}

func TestRenderRebindsAfterReallocate(t *testing.T) {
	demo, display, backend := newDemo(t)
	require.NoError(t, demo.uniform.Reallocate(display.Device()))

	demo.Render(display)

	device := backend.Device()
	require.Len(t, device.BindGroups, 2)
	assert.True(t, device.BindGroups[0].Released)
	assert.Same(t, demo.uniform.Buffer(), device.BindGroups[1].Desc.Entries[0].Buffer)
}

func TestInputMovesCamera(t *testing.T) {
	demo, display, _ := newDemo(t)
	start := demo.camera.Position
	yaw := demo.camera.Yaw

	demo.ProcessKeyboard(core.KEY_W, true)
	demo.ProcessMouse(10, 0)
	demo.Update(display, 500*time.Millisecond)

	assert.NotEqual(t, start, demo.camera.Position)
	assert.Greater(t, demo.camera.Yaw, yaw)
	assert.Equal(t, demo.camera.Position.ToVec4(1.0), demo.uniform.ViewPosition)

	demo.ProcessKeyboard(core.KEY_W, false)
	moved := demo.camera.Position
	demo.Update(display, 500*time.Millisecond)
	assert.Equal(t, moved, demo.camera.Position)
}

func TestResizeFollowsDisplay(t *testing.T) {
	demo, display, _ := newDemo(t)
	require.NoError(t, display.Resize(1000, 500))

	demo.Resize(display)

	assert.InDelta(t, 2.0, demo.projection.Aspect, 1e-6)
}

func TestReleaseFreesGPUResources(t *testing.T) {
	demo, _, backend := newDemo(t)

	demo.Release()
	demo.Release()

	device := backend.Device()
	assert.True(t, device.Buffers[0].Released)
	assert.True(t, device.Layouts[0].Released)
	assert.True(t, device.BindGroups[0].Released)
}
