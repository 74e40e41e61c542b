package webgpu

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/spaghettifunk/showcase/engine/renderer"
)

func isSrgbFormat(format wgpu.TextureFormat) bool {
	switch format {
	case wgpu.TextureFormatBGRA8UnormSrgb, wgpu.TextureFormatRGBA8UnormSrgb:
		return true
	}
	return false
}

func toSurfaceFormat(format wgpu.TextureFormat) renderer.SurfaceFormat {
	return renderer.SurfaceFormat{
		Code: uint32(format),
		Srgb: isSrgbFormat(format),
		Name: format.String(),
	}
}

func fromSurfaceFormat(format renderer.SurfaceFormat) wgpu.TextureFormat {
	return wgpu.TextureFormat(format.Code)
}

func toPresentMode(mode wgpu.PresentMode) (renderer.PresentMode, bool) {
	switch mode {
	case wgpu.PresentModeFifo:
		return renderer.PresentModeFifo, true
	case wgpu.PresentModeFifoRelaxed:
		return renderer.PresentModeFifoRelaxed, true
	case wgpu.PresentModeImmediate:
		return renderer.PresentModeImmediate, true
	case wgpu.PresentModeMailbox:
		return renderer.PresentModeMailbox, true
	}
	return renderer.PresentModeFifo, false
}

func fromPresentMode(mode renderer.PresentMode) wgpu.PresentMode {
	switch mode {
	case renderer.PresentModeFifoRelaxed:
		return wgpu.PresentModeFifoRelaxed
	case renderer.PresentModeImmediate:
		return wgpu.PresentModeImmediate
	case renderer.PresentModeMailbox:
		return wgpu.PresentModeMailbox
	}
	return wgpu.PresentModeFifo
}

func toAlphaMode(mode wgpu.CompositeAlphaMode) renderer.AlphaMode {
	switch mode {
	case wgpu.CompositeAlphaModeOpaque:
		return renderer.AlphaModeOpaque
	case wgpu.CompositeAlphaModePremultiplied:
		return renderer.AlphaModePreMultiplied
	case wgpu.CompositeAlphaModeUnpremultiplied:
		return renderer.AlphaModePostMultiplied
	case wgpu.CompositeAlphaModeInherit:
		return renderer.AlphaModeInherit
	}
	return renderer.AlphaModeAuto
}

func fromAlphaMode(mode renderer.AlphaMode) wgpu.CompositeAlphaMode {
	switch mode {
	case renderer.AlphaModeOpaque:
		return wgpu.CompositeAlphaModeOpaque
	case renderer.AlphaModePreMultiplied:
		return wgpu.CompositeAlphaModePremultiplied
	case renderer.AlphaModePostMultiplied:
		return wgpu.CompositeAlphaModeUnpremultiplied
	case renderer.AlphaModeInherit:
		return wgpu.CompositeAlphaModeInherit
	}
	return wgpu.CompositeAlphaModeAuto
}

func fromPowerPreference(pref renderer.PowerPreference) wgpu.PowerPreference {
	switch pref {
	case renderer.PowerPreferenceLowPower:
		return wgpu.PowerPreferenceLowPower
	case renderer.PowerPreferenceHighPerformance:
		return wgpu.PowerPreferenceHighPerformance
	}
	return wgpu.PowerPreferenceUndefined
}

var textureUsages = []struct {
	from renderer.TextureUsage
	to   wgpu.TextureUsage
}{
	{renderer.TextureUsageCopySrc, wgpu.TextureUsageCopySrc},
	{renderer.TextureUsageCopyDst, wgpu.TextureUsageCopyDst},
	{renderer.TextureUsageTextureBinding, wgpu.TextureUsageTextureBinding},
	{renderer.TextureUsageStorageBinding, wgpu.TextureUsageStorageBinding},
	{renderer.TextureUsageRenderAttachment, wgpu.TextureUsageRenderAttachment},
}

func fromTextureUsage(usage renderer.TextureUsage) wgpu.TextureUsage {
	var out wgpu.TextureUsage
	for _, u := range textureUsages {
		if usage&u.from != 0 {
			out |= u.to
		}
	}
	return out
}

var bufferUsages = []struct {
	from renderer.BufferUsage
	to   wgpu.BufferUsage
}{
	{renderer.BufferUsageMapRead, wgpu.BufferUsageMapRead},
	{renderer.BufferUsageMapWrite, wgpu.BufferUsageMapWrite},
	{renderer.BufferUsageCopySrc, wgpu.BufferUsageCopySrc},
	{renderer.BufferUsageCopyDst, wgpu.BufferUsageCopyDst},
	{renderer.BufferUsageIndex, wgpu.BufferUsageIndex},
	{renderer.BufferUsageVertex, wgpu.BufferUsageVertex},
	{renderer.BufferUsageUniform, wgpu.BufferUsageUniform},
	{renderer.BufferUsageStorage, wgpu.BufferUsageStorage},
}

func fromBufferUsage(usage renderer.BufferUsage) wgpu.BufferUsage {
	var out wgpu.BufferUsage
	for _, u := range bufferUsages {
		if usage.Has(u.from) {
			out |= u.to
		}
	}
	return out
}

func fromShaderStage(stage renderer.ShaderStage) wgpu.ShaderStage {
	var out wgpu.ShaderStage
	if stage&renderer.ShaderStageVertex != 0 {
		out |= wgpu.ShaderStageVertex
	}
	if stage&renderer.ShaderStageFragment != 0 {
		out |= wgpu.ShaderStageFragment
	}
	if stage&renderer.ShaderStageCompute != 0 {
		out |= wgpu.ShaderStageCompute
	}
	return out
}

func fromBindingType(t renderer.BufferBindingType) wgpu.BufferBindingType {
	switch t {
	case renderer.BufferBindingTypeStorage:
		return wgpu.BufferBindingTypeStorage
	case renderer.BufferBindingTypeReadOnlyStorage:
		return wgpu.BufferBindingTypeReadOnlyStorage
	}
	return wgpu.BufferBindingTypeUniform
}

func fromLoadOp(op renderer.LoadOp) wgpu.LoadOp {
	if op == renderer.LoadOpLoad {
		return wgpu.LoadOpLoad
	}
	return wgpu.LoadOpClear
}

func fromStoreOp(op renderer.StoreOp) wgpu.StoreOp {
	if op == renderer.StoreOpDiscard {
		return wgpu.StoreOpDiscard
	}
	return wgpu.StoreOpStore
}
