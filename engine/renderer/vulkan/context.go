package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/showcase/engine/core"
)

/**
 * @brief State shared by every object created from one instance: the
 * instance itself, the logical device once requested, and the list of
 * resources waiting for the GPU to finish with them.
 */
type VulkanContext struct {
	Instance  vk.Instance
	Allocator *vk.AllocationCallbacks

	debugMessenger vk.DebugReportCallback

	Device *VulkanDevice

	locks *VulkanLockPool

	// The frame acquired from the surface and not yet presented.
	currentFrame *frameSync

	// Destructors for released resources. They run once the next
	// submission has completed on the GPU.
	retired []func()
}

func (vc *VulkanContext) FindMemoryIndex(typeFilter uint32, propertyFlags vk.MemoryPropertyFlags) int32 {
	memoryProperties := vc.Device.Memory

	for i := uint32(0); i < memoryProperties.MemoryTypeCount; i++ {
		// Check each memory type to see if its bit is set to 1.
		memoryProperties.MemoryTypes[i].Deref()
		if (typeFilter&(1<<i)) != 0 && (memoryProperties.MemoryTypes[i].PropertyFlags&propertyFlags) == propertyFlags {
			return int32(i)
		}
	}
	core.LogWarn("Unable to find suitable memory type!")
	return -1
}

// retire defers destroy until the GPU is done with the resource.
func (vc *VulkanContext) retire(destroy func()) {
	vc.retired = append(vc.retired, destroy)
}

// takeRetired hands the pending destructors to the submission that
// will guard them with its fence.
func (vc *VulkanContext) takeRetired() []func() {
	retired := vc.retired
	vc.retired = nil
	return retired
}

func runRetired(list []func()) {
	for _, destroy := range list {
		destroy()
	}
}
