package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/showcase/engine/core"
	"github.com/spaghettifunk/showcase/engine/renderer"
)

var resultNames = map[vk.Result]string{
	vk.Success:                   "VK_SUCCESS",
	vk.NotReady:                  "VK_NOT_READY",
	vk.Timeout:                   "VK_TIMEOUT",
	vk.EventSet:                  "VK_EVENT_SET",
	vk.EventReset:                "VK_EVENT_RESET",
	vk.Incomplete:                "VK_INCOMPLETE",
	vk.Suboptimal:                "VK_SUBOPTIMAL_KHR",
	vk.ErrorOutOfHostMemory:      "VK_ERROR_OUT_OF_HOST_MEMORY",
	vk.ErrorOutOfDeviceMemory:    "VK_ERROR_OUT_OF_DEVICE_MEMORY",
	vk.ErrorInitializationFailed: "VK_ERROR_INITIALIZATION_FAILED",
	vk.ErrorDeviceLost:           "VK_ERROR_DEVICE_LOST",
	vk.ErrorMemoryMapFailed:      "VK_ERROR_MEMORY_MAP_FAILED",
	vk.ErrorLayerNotPresent:      "VK_ERROR_LAYER_NOT_PRESENT",
	vk.ErrorExtensionNotPresent:  "VK_ERROR_EXTENSION_NOT_PRESENT",
	vk.ErrorFeatureNotPresent:    "VK_ERROR_FEATURE_NOT_PRESENT",
	vk.ErrorIncompatibleDriver:   "VK_ERROR_INCOMPATIBLE_DRIVER",
	vk.ErrorTooManyObjects:       "VK_ERROR_TOO_MANY_OBJECTS",
	vk.ErrorFormatNotSupported:   "VK_ERROR_FORMAT_NOT_SUPPORTED",
	vk.ErrorFragmentedPool:       "VK_ERROR_FRAGMENTED_POOL",
	vk.ErrorSurfaceLost:          "VK_ERROR_SURFACE_LOST_KHR",
	vk.ErrorNativeWindowInUse:    "VK_ERROR_NATIVE_WINDOW_IN_USE_KHR",
	vk.ErrorOutOfDate:            "VK_ERROR_OUT_OF_DATE_KHR",
	vk.ErrorIncompatibleDisplay:  "VK_ERROR_INCOMPATIBLE_DISPLAY_KHR",
	vk.ErrorOutOfPoolMemory:      "VK_ERROR_OUT_OF_POOL_MEMORY",
	vk.ErrorUnknown:              "VK_ERROR_UNKNOWN",
}

func VulkanResultString(result vk.Result) string {
	if name, ok := resultNames[result]; ok {
		return name
	}
	return fmt.Sprintf("VkResult(%d)", int32(result))
}

// VulkanResultIsSuccess reports whether result is one of the non-error codes.
func VulkanResultIsSuccess(result vk.Result) bool {
	return result >= 0
}

// resultError converts a failed vk.Result into an error, mapping the
// surface related codes onto the engine sentinels.
func resultError(op string, result vk.Result) error {
	switch result {
	case vk.ErrorOutOfDate:
		return fmt.Errorf("%s: %w", op, core.ErrSurfaceOutdated)
	case vk.ErrorSurfaceLost:
		return fmt.Errorf("%s: %w", op, core.ErrSurfaceLost)
	case vk.Timeout, vk.NotReady:
		return fmt.Errorf("%s: %w", op, core.ErrSurfaceTimeout)
	}
	return fmt.Errorf("%s failed with %s", op, VulkanResultString(result))
}

var end = "\x00"
var endChar byte = '\x00'

func VulkanSafeString(s string) string {
	if len(s) == 0 {
		return end
	}
	if s[len(s)-1] != endChar {
		return s + end
	}
	return s
}

func VulkanSafeStrings(list []string) []string {
	out := make([]string, len(list))
	for i := range list {
		out[i] = VulkanSafeString(list[i])
	}
	return out
}

// cString trims a fixed size, zero terminated byte array.
func cString(arr []byte) string {
	for i, b := range arr {
		if b == 0 {
			return string(arr[:i])
		}
	}
	return string(arr)
}

var formatNames = map[vk.Format]string{
	vk.FormatB8g8r8a8Unorm:          "Bgra8Unorm",
	vk.FormatB8g8r8a8Srgb:           "Bgra8UnormSrgb",
	vk.FormatR8g8b8a8Unorm:          "Rgba8Unorm",
	vk.FormatR8g8b8a8Srgb:           "Rgba8UnormSrgb",
	vk.FormatA2b10g10r10UnormPack32: "Rgb10a2Unorm",
	vk.FormatR16g16b16a16Sfloat:     "Rgba16Float",
}

func isSrgbFormat(format vk.Format) bool {
	switch format {
	case vk.FormatB8g8r8a8Srgb, vk.FormatR8g8b8a8Srgb, vk.FormatA8b8g8r8SrgbPack32,
		vk.FormatR8g8b8Srgb, vk.FormatB8g8r8Srgb:
		return true
	}
	return false
}

func toSurfaceFormat(f vk.SurfaceFormat) renderer.SurfaceFormat {
	name, ok := formatNames[f.Format]
	if !ok {
		name = fmt.Sprintf("VkFormat(%d)", int32(f.Format))
	}
	return renderer.SurfaceFormat{
		Code:       uint32(f.Format),
		ColorSpace: uint32(f.ColorSpace),
		Srgb:       isSrgbFormat(f.Format),
		Name:       name,
	}
}

func fromSurfaceFormat(f renderer.SurfaceFormat) vk.SurfaceFormat {
	return vk.SurfaceFormat{
		Format:     vk.Format(f.Code),
		ColorSpace: vk.ColorSpace(f.ColorSpace),
	}
}

func toPresentMode(mode vk.PresentMode) (renderer.PresentMode, bool) {
	switch mode {
	case vk.PresentModeFifo:
		return renderer.PresentModeFifo, true
	case vk.PresentModeFifoRelaxed:
		return renderer.PresentModeFifoRelaxed, true
	case vk.PresentModeImmediate:
		return renderer.PresentModeImmediate, true
	case vk.PresentModeMailbox:
		return renderer.PresentModeMailbox, true
	}
	return renderer.PresentModeFifo, false
}

func fromPresentMode(mode renderer.PresentMode) vk.PresentMode {
	switch mode {
	case renderer.PresentModeFifoRelaxed:
		return vk.PresentModeFifoRelaxed
	case renderer.PresentModeImmediate:
		return vk.PresentModeImmediate
	case renderer.PresentModeMailbox:
		return vk.PresentModeMailbox
	}
	return vk.PresentModeFifo
}

// toAlphaModes lists the supported composite alpha modes, opaque first.
func toAlphaModes(flags vk.CompositeAlphaFlags) []renderer.AlphaMode {
	modes := []renderer.AlphaMode{}
	bits := []struct {
		bit  vk.CompositeAlphaFlagBits
		mode renderer.AlphaMode
	}{
		{vk.CompositeAlphaOpaqueBit, renderer.AlphaModeOpaque},
		{vk.CompositeAlphaPreMultipliedBit, renderer.AlphaModePreMultiplied},
		{vk.CompositeAlphaPostMultipliedBit, renderer.AlphaModePostMultiplied},
		{vk.CompositeAlphaInheritBit, renderer.AlphaModeInherit},
	}
	for _, b := range bits {
		if flags&vk.CompositeAlphaFlags(b.bit) != 0 {
			modes = append(modes, b.mode)
		}
	}
	return modes
}

func fromAlphaMode(mode renderer.AlphaMode) vk.CompositeAlphaFlagBits {
	switch mode {
	case renderer.AlphaModePreMultiplied:
		return vk.CompositeAlphaPreMultipliedBit
	case renderer.AlphaModePostMultiplied:
		return vk.CompositeAlphaPostMultipliedBit
	case renderer.AlphaModeInherit:
		return vk.CompositeAlphaInheritBit
	}
	return vk.CompositeAlphaOpaqueBit
}

func fromBufferUsage(usage renderer.BufferUsage) vk.BufferUsageFlags {
	var flags vk.BufferUsageFlagBits
	if usage.Has(renderer.BufferUsageCopySrc) || usage.Has(renderer.BufferUsageMapWrite) {
		flags |= vk.BufferUsageTransferSrcBit
	}
	if usage.Has(renderer.BufferUsageCopyDst) || usage.Has(renderer.BufferUsageMapRead) {
		flags |= vk.BufferUsageTransferDstBit
	}
	if usage.Has(renderer.BufferUsageUniform) {
		flags |= vk.BufferUsageUniformBufferBit
	}
	if usage.Has(renderer.BufferUsageStorage) {
		flags |= vk.BufferUsageStorageBufferBit
	}
	if usage.Has(renderer.BufferUsageVertex) {
		flags |= vk.BufferUsageVertexBufferBit
	}
	if usage.Has(renderer.BufferUsageIndex) {
		flags |= vk.BufferUsageIndexBufferBit
	}
	return vk.BufferUsageFlags(flags)
}

// hostVisible reports whether a buffer with usage is written from the CPU.
func hostVisible(usage renderer.BufferUsage) bool {
	return usage.Has(renderer.BufferUsageCopySrc) || usage.Has(renderer.BufferUsageMapWrite) || usage.Has(renderer.BufferUsageMapRead)
}

func fromShaderStage(stage renderer.ShaderStage) vk.ShaderStageFlags {
	var flags vk.ShaderStageFlagBits
	if stage&renderer.ShaderStageVertex != 0 {
		flags |= vk.ShaderStageVertexBit
	}
	if stage&renderer.ShaderStageFragment != 0 {
		flags |= vk.ShaderStageFragmentBit
	}
	if stage&renderer.ShaderStageCompute != 0 {
		flags |= vk.ShaderStageComputeBit
	}
	return vk.ShaderStageFlags(flags)
}

func fromBindingType(layout renderer.BufferBindingLayout) vk.DescriptorType {
	switch layout.Type {
	case renderer.BufferBindingTypeStorage, renderer.BufferBindingTypeReadOnlyStorage:
		if layout.HasDynamicOffset {
			return vk.DescriptorTypeStorageBufferDynamic
		}
		return vk.DescriptorTypeStorageBuffer
	}
	if layout.HasDynamicOffset {
		return vk.DescriptorTypeUniformBufferDynamic
	}
	return vk.DescriptorTypeUniformBuffer
}

func deviceTypeString(t vk.PhysicalDeviceType) string {
	switch t {
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return "integrated"
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return "discrete"
	case vk.PhysicalDeviceTypeVirtualGpu:
		return "virtual"
	case vk.PhysicalDeviceTypeCpu:
		return "cpu"
	}
	return "unknown"
}
