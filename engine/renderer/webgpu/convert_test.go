package webgpu

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/spaghettifunk/showcase/engine/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSurfaceFormat(t *testing.T) {
	srgb := toSurfaceFormat(wgpu.TextureFormatBGRA8UnormSrgb)
	assert.True(t, srgb.Srgb)
	assert.Equal(t, wgpu.TextureFormatBGRA8UnormSrgb, fromSurfaceFormat(srgb))

	linear := toSurfaceFormat(wgpu.TextureFormatBGRA8Unorm)
	assert.False(t, linear.Srgb)
	assert.NotEqual(t, srgb.Code, linear.Code)
}

func TestPresentModeRoundTrip(t *testing.T) {
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
}

func TestAlphaModeRoundTrip(t *testing.T) {
	for _, mode := range []renderer.AlphaMode{
		renderer.AlphaModeAuto,
		renderer.AlphaModeOpaque,
		renderer.AlphaModePreMultiplied,
		renderer.AlphaModePostMultiplied,
		renderer.AlphaModeInherit,
	} {
		assert.Equal(t, mode, toAlphaMode(fromAlphaMode(mode)))
	}
}

func TestUsageFlags(t *testing.T) {
	assert.Equal(t, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst,
		fromBufferUsage(renderer.BufferUsageUniform|renderer.BufferUsageCopyDst))
	assert.Equal(t, wgpu.BufferUsageCopySrc, fromBufferUsage(renderer.BufferUsageCopySrc))
	assert.Equal(t, wgpu.TextureUsageRenderAttachment, fromTextureUsage(renderer.TextureUsageRenderAttachment))
}

func TestBindingConversions(t *testing.T) {
	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment,
		fromShaderStage(renderer.ShaderStageVertex|renderer.ShaderStageFragment))
	assert.Equal(t, wgpu.BufferBindingTypeUniform, fromBindingType(renderer.BufferBindingTypeUniform))
	assert.Equal(t, wgpu.BufferBindingTypeReadOnlyStorage, fromBindingType(renderer.BufferBindingTypeReadOnlyStorage))
}

func TestPassOps(t *testing.T) {
	assert.Equal(t, wgpu.LoadOpClear, fromLoadOp(renderer.LoadOpClear))
	assert.Equal(t, wgpu.LoadOpLoad, fromLoadOp(renderer.LoadOpLoad))
	assert.Equal(t, wgpu.StoreOpStore, fromStoreOp(renderer.StoreOpStore))
	assert.Equal(t, wgpu.StoreOpDiscard, fromStoreOp(renderer.StoreOpDiscard))
	assert.Equal(t, wgpu.PowerPreferenceHighPerformance, fromPowerPreference(renderer.PowerPreferenceHighPerformance))
}
