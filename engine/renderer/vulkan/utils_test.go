package vulkan

import (
	"errors"
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/showcase/engine/core"
	"github.com/spaghettifunk/showcase/engine/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultError(t *testing.T) {
	assert.True(t, errors.Is(resultError("acquire", vk.ErrorOutOfDate), core.ErrSurfaceOutdated))
	assert.True(t, errors.Is(resultError("acquire", vk.ErrorSurfaceLost), core.ErrSurfaceLost))
	assert.True(t, errors.Is(resultError("acquire", vk.Timeout), core.ErrSurfaceTimeout))

	err := resultError("vkCreateBuffer", vk.ErrorOutOfDeviceMemory)
	assert.EqualError(t, err, "vkCreateBuffer failed with VK_ERROR_OUT_OF_DEVICE_MEMORY")
	assert.Equal(t, "VkResult(-12345)", VulkanResultString(vk.Result(-12345)))
}

func TestVulkanResultIsSuccess(t *testing.T) {
	assert.True(t, VulkanResultIsSuccess(vk.Success))
	assert.True(t, VulkanResultIsSuccess(vk.Suboptimal))
	assert.False(t, VulkanResultIsSuccess(vk.ErrorDeviceLost))
}

func TestVulkanSafeStrings(t *testing.T) {
	assert.Equal(t, "\x00", VulkanSafeString(""))
	assert.Equal(t, "abc\x00", VulkanSafeString("abc"))
	assert.Equal(t, "abc\x00", VulkanSafeString("abc\x00"))

	in := []string{"a", "b"}
	out := VulkanSafeStrings(in)
	assert.Equal(t, []string{"a\x00", "b\x00"}, out)
	assert.Equal(t, []string{"a", "b"}, in)
}

func TestCString(t *testing.T) {
	var arr [16]byte
	copy(arr[:], "llvmpipe")
	assert.Equal(t, "llvmpipe", cString(arr[:]))
	assert.Equal(t, "full", cString([]byte("full")))
}

func TestSurfaceFormatRoundTrip(t *testing.T) {
	f := toSurfaceFormat(vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear})
	assert.True(t, f.Srgb)
	assert.Equal(t, "Bgra8UnormSrgb", f.Name)

	back := fromSurfaceFormat(f)
	assert.Equal(t, vk.FormatB8g8r8a8Srgb, back.Format)
	assert.Equal(t, vk.ColorSpaceSrgbNonlinear, back.ColorSpace)

	linear := toSurfaceFormat(vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Unorm})
	assert.False(t, linear.Srgb)
}

func TestPresentModes(t *testing.T) {
	for _, mode := range []renderer.PresentMode{
		renderer.PresentModeFifo,
		renderer.PresentModeFifoRelaxed,
		renderer.PresentModeImmediate,
		renderer.PresentModeMailbox,
	} {
		got, ok := toPresentMode(fromPresentMode(mode))
		require.True(t, ok)
		assert.Equal(t, mode, got)
	}
	_, ok := toPresentMode(vk.PresentMode(1000111000))
	assert.False(t, ok)
}

func TestAlphaModes(t *testing.T) {
	flags := vk.CompositeAlphaFlags(vk.CompositeAlphaInheritBit | vk.CompositeAlphaOpaqueBit)
	assert.Equal(t, []renderer.AlphaMode{renderer.AlphaModeOpaque, renderer.AlphaModeInherit}, toAlphaModes(flags))
	assert.Empty(t, toAlphaModes(0))
	assert.Equal(t, vk.CompositeAlphaOpaqueBit, fromAlphaMode(renderer.AlphaModeAuto))
	assert.Equal(t, vk.CompositeAlphaPreMultipliedBit, fromAlphaMode(renderer.AlphaModePreMultiplied))
}

func TestBufferUsage(t *testing.T) {
	flags := fromBufferUsage(renderer.BufferUsageUniform | renderer.BufferUsageCopyDst)
	assert.NotZero(t, flags&vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit))
	assert.NotZero(t, flags&vk.BufferUsageFlags(vk.BufferUsageTransferDstBit))
	assert.Zero(t, flags&vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit))

	assert.True(t, hostVisible(renderer.BufferUsageCopySrc))
	assert.False(t, hostVisible(renderer.BufferUsageUniform|renderer.BufferUsageCopyDst))
}

func TestShaderStageAndBindingType(t *testing.T) {
	stages := fromShaderStage(renderer.ShaderStageVertex | renderer.ShaderStageFragment)
	assert.Equal(t, vk.ShaderStageFlags(vk.ShaderStageVertexBit|vk.ShaderStageFragmentBit), stages)

	assert.Equal(t, vk.DescriptorTypeUniformBuffer, fromBindingType(renderer.BufferBindingLayout{Type: renderer.BufferBindingTypeUniform}))
	assert.Equal(t, vk.DescriptorTypeUniformBufferDynamic, fromBindingType(renderer.BufferBindingLayout{Type: renderer.BufferBindingTypeUniform, HasDynamicOffset: true}))
	assert.Equal(t, vk.DescriptorTypeStorageBuffer, fromBindingType(renderer.BufferBindingLayout{Type: renderer.BufferBindingTypeReadOnlyStorage}))
}

func TestDeviceTypeRank(t *testing.T) {
	discrete := vk.PhysicalDeviceTypeDiscreteGpu
	integrated := vk.PhysicalDeviceTypeIntegratedGpu

	assert.Less(t, deviceTypeRank(discrete, renderer.PowerPreferenceHighPerformance), deviceTypeRank(integrated, renderer.PowerPreferenceHighPerformance))
	assert.Less(t, deviceTypeRank(integrated, renderer.PowerPreferenceLowPower), deviceTypeRank(discrete, renderer.PowerPreferenceLowPower))
	assert.Equal(t, 4, deviceTypeRank(vk.PhysicalDeviceTypeOther, renderer.PowerPreferenceDefault))
}

func TestRetiredDestructors(t *testing.T) {
	vc := &VulkanContext{}
	calls := []int{}
	vc.retire(func() { calls = append(calls, 1) })
	vc.retire(func() { calls = append(calls, 2) })

	list := vc.takeRetired()
	assert.Empty(t, vc.takeRetired())
	assert.Empty(t, calls)

	runRetired(list)
	assert.Equal(t, []int{1, 2}, calls)
}

func TestLockPool(t *testing.T) {
	pool := NewVulkanLockPool()
	ran := false
	err := pool.SafeQueueCall(3, func() error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)

	boom := errors.New("boom")
	assert.ErrorIs(t, pool.SafeCall(CommandPoolManagement, func() error { return boom }), boom)
	// The mutex is released after an error.
	assert.NoError(t, pool.SafeCall(CommandPoolManagement, func() error { return nil }))
}
