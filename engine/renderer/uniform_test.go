package renderer_test

import (
	"encoding/binary"
	"testing"

	"github.com/chewxy/math32"
	"github.com/spaghettifunk/showcase/engine/math"
	"github.com/spaghettifunk/showcase/engine/renderer"
	"github.com/spaghettifunk/showcase/engine/renderer/components"
	"github.com/spaghettifunk/showcase/engine/renderer/gputest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatAt(b []byte, index int) float32 {
	return math32.Float32frombits(binary.LittleEndian.Uint32(b[index*4:]))
}

func TestNewCameraUniform(t *testing.T) {
	device := gputest.NewBackend().Device()

	cu, err := renderer.NewCameraUniform(device)
	require.NoError(t, err)

	assert.Equal(t, math.NewVec4Zero(), cu.ViewPosition)
	assert.Equal(t, math.NewMat4Identity(), cu.ViewProj)

	require.Len(t, device.Buffers, 1)
	buf := device.Buffers[0]
	assert.Same(t, buf, cu.Buffer())
	assert.Equal(t, uint64(renderer.CameraUniformSize), buf.Size())
	assert.Equal(t, renderer.BufferUsageUniform|renderer.BufferUsageCopyDst, buf.Usage())
	assert.Equal(t, 80, renderer.CameraUniformSize)
}

func TestUpdateViewProjOrder(t *testing.T) {
	cu, err := renderer.NewCameraUniform(gputest.NewBackend().Device())
	require.NoError(t, err)

	camera := components.NewCamera(math.NewVec3(0, 5, 10), -math.K_HALF_PI, math.DegToRad(-20))
	projection := components.NewProjection(800, 600, math.DegToRad(45), 0.1, 100)

	cu.UpdateViewProj(camera, projection)

	assert.Equal(t, math.NewVec4(0, 5, 10, 1), cu.ViewPosition)
	expected := projection.CalcMatrix().Mul(camera.CalcMatrix())
	assert.Equal(t, expected, cu.ViewProj)

	reversed := camera.CalcMatrix().Mul(projection.CalcMatrix())
	assert.False(t, reversed.Compare(cu.ViewProj, 1e-4), "view · projection must not be used")
}

func TestCameraUniformBytes(t *testing.T) {
	cu, err := renderer.NewCameraUniform(gputest.NewBackend().Device())
	require.NoError(t, err)
	cu.ViewPosition = math.NewVec4(1, 2, 3, 1)
	cu.ViewProj = math.NewMat4Translation(math.NewVec3(7, 8, 9))

	b := cu.Bytes()
	require.Len(t, b, renderer.CameraUniformSize)
	assert.Equal(t, float32(1), floatAt(b, 0))
	assert.Equal(t, float32(3), floatAt(b, 2))
	assert.Equal(t, float32(1), floatAt(b, 3))
	// column-major: the translation sits in the fourth column
	assert.Equal(t, float32(1), floatAt(b, 4))
	assert.Equal(t, float32(7), floatAt(b, 4+12))
	assert.Equal(t, float32(8), floatAt(b, 4+13))
	assert.Equal(t, float32(9), floatAt(b, 4+14))
}

func TestUpdateBufferRecordsSingleCopyBeforeRenderPass(t *testing.T) {
	backend := gputest.NewBackend()
	device := backend.Device()
	cu, err := renderer.NewCameraUniform(device)
	require.NoError(t, err)
	cu.ViewPosition = math.NewVec4(4, 5, 6, 1)

	encoder, err := device.CreateCommandEncoder("frame")
	require.NoError(t, err)
	require.NoError(t, cu.UpdateBuffer(device, encoder))
	pass, err := encoder.BeginRenderPass(&renderer.RenderPassDescriptor{})
	require.NoError(t, err)
	require.NoError(t, pass.End())

	enc := device.Encoders[0]
	assert.Equal(t, []gputest.CommandKind{
		gputest.CommandCopyBufferToBuffer,
		gputest.CommandBeginRenderPass,
		gputest.CommandEndRenderPass,
	}, enc.Kinds())

	cp := enc.Commands[0]
	assert.Equal(t, uint64(renderer.CameraUniformSize), cp.Size)
	assert.Equal(t, uint64(0), cp.SrcOffset)
	assert.Equal(t, uint64(0), cp.DstOffset)
	assert.Same(t, cu.Buffer(), cp.Dst)

	staging := cp.Src
	assert.Equal(t, renderer.BufferUsageCopySrc, staging.Usage())
	assert.Equal(t, cu.Bytes(), staging.Contents)
	assert.True(t, staging.Released)
	assert.False(t, cp.Dst.Released)
}

func TestReallocateBumpsGeneration(t *testing.T) {
	device := gputest.NewBackend().Device()
	cu, err := renderer.NewCameraUniform(device)
	require.NoError(t, err)
	first := cu.Buffer()
	gen := cu.Generation()

	require.NoError(t, cu.Reallocate(device))
	assert.NotSame(t, first, cu.Buffer())
	assert.Equal(t, gen+1, cu.Generation())
	assert.True(t, device.Buffers[0].Released)
}

func TestUniformBindingLayout(t *testing.T) {
	device := gputest.NewBackend().Device()
	cu, err := renderer.NewCameraUniform(device)
	require.NoError(t, err)

	ub, err := renderer.NewUniformBinding(device, cu)
	require.NoError(t, err)
	assert.False(t, ub.Stale(cu))

	require.Len(t, device.Layouts, 1)
	entries := device.Layouts[0].Desc.Entries
	require.Len(t, entries, 1)
	assert.Equal(t, uint32(0), entries[0].Binding)
	assert.Equal(t, renderer.ShaderStageVertex|renderer.ShaderStageFragment, entries[0].Visibility)
	assert.Equal(t, renderer.BufferBindingTypeUniform, entries[0].Buffer.Type)
	assert.False(t, entries[0].Buffer.HasDynamicOffset)

	require.Len(t, device.BindGroups, 1)
	group := device.BindGroups[0].Desc
	assert.Same(t, device.Layouts[0], group.Layout)
	require.Len(t, group.Entries, 1)
	assert.Same(t, cu.Buffer(), group.Entries[0].Buffer)
	assert.Equal(t, renderer.WholeSize, group.Entries[0].Size)
}

func TestUniformBindingRebind(t *testing.T) {
	device := gputest.NewBackend().Device()
	cu, err := renderer.NewCameraUniform(device)
	require.NoError(t, err)
	ub, err := renderer.NewUniformBinding(device, cu)
	require.NoError(t, err)
	layout := ub.Layout

	require.NoError(t, cu.Reallocate(device))
	assert.True(t, ub.Stale(cu))

	require.NoError(t, ub.Rebind(device, cu))
	assert.False(t, ub.Stale(cu))
	assert.Same(t, layout, ub.Layout, "layout is reused")
	assert.Len(t, device.Layouts, 1)
	require.Len(t, device.BindGroups, 2)
	assert.True(t, device.BindGroups[0].Released)
	assert.Same(t, cu.Buffer(), device.BindGroups[1].Desc.Entries[0].Buffer)
}
