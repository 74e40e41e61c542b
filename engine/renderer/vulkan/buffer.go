package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/showcase/engine/core"
	"github.com/spaghettifunk/showcase/engine/renderer"
)

type VulkanBuffer struct {
	Handle vk.Buffer
	Memory vk.DeviceMemory
	Size   vk.DeviceSize
}

// VulkanBufferCreate allocates a buffer and binds it to memory with
// the given properties.
func VulkanBufferCreate(vc *VulkanContext, size uint64, usage vk.BufferUsageFlags, memoryFlags vk.MemoryPropertyFlags) (*VulkanBuffer, error) {
	outBuffer := &VulkanBuffer{Size: vk.DeviceSize(size)}

	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive, // NOTE: Only used in one queue.
	}
	if res := vk.CreateBuffer(vc.Device.LogicalDevice, &bufferInfo, vc.Allocator, &outBuffer.Handle); res != vk.Success {
		return nil, resultError("vkCreateBuffer", res)
	}

	// Gather memory requirements.
	var requirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(vc.Device.LogicalDevice, outBuffer.Handle, &requirements)
	requirements.Deref()

	memoryIndex := vc.FindMemoryIndex(requirements.MemoryTypeBits, memoryFlags)
	if memoryIndex == -1 {
		vk.DestroyBuffer(vc.Device.LogicalDevice, outBuffer.Handle, vc.Allocator)
		return nil, fmt.Errorf("unable to create vulkan buffer because the required memory type index was not found")
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: uint32(memoryIndex),
	}
	if res := vk.AllocateMemory(vc.Device.LogicalDevice, &allocateInfo, vc.Allocator, &outBuffer.Memory); res != vk.Success {
		vk.DestroyBuffer(vc.Device.LogicalDevice, outBuffer.Handle, vc.Allocator)
		return nil, fmt.Errorf("unable to create vulkan buffer because the required memory allocation failed: %w", resultError("vkAllocateMemory", res))
	}

	if res := vk.BindBufferMemory(vc.Device.LogicalDevice, outBuffer.Handle, outBuffer.Memory, 0); res != vk.Success {
		outBuffer.Destroy(vc)
		return nil, resultError("vkBindBufferMemory", res)
	}
	return outBuffer, nil
}

// LoadData copies data into host visible memory at offset.
func (vb *VulkanBuffer) LoadData(vc *VulkanContext, offset uint64, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	var ptr unsafe.Pointer
	if res := vk.MapMemory(vc.Device.LogicalDevice, vb.Memory, vk.DeviceSize(offset), vk.DeviceSize(len(data)), 0, &ptr); res != vk.Success {
		return resultError("vkMapMemory", res)
	}
	vk.Memcopy(ptr, data)
	vk.UnmapMemory(vc.Device.LogicalDevice, vb.Memory)
	return nil
}

// CopyTo records and runs a one-off copy into dest and waits for it.
func (vb *VulkanBuffer) CopyTo(vc *VulkanContext, dest *VulkanBuffer, size uint64) error {
	cb, err := AllocateAndBeginSingleUse(vc, vc.Device.GraphicsCommandPool)
	if err != nil {
		return err
	}
	region := vk.BufferCopy{Size: vk.DeviceSize(size)}
	vk.CmdCopyBuffer(cb.Handle, vb.Handle, dest.Handle, 1, []vk.BufferCopy{region})
	return cb.EndSingleUse(vc, vc.Device.GraphicsCommandPool)
}

func (vb *VulkanBuffer) Destroy(vc *VulkanContext) {
	if vb.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(vc.Device.LogicalDevice, vb.Memory, vc.Allocator)
		vb.Memory = vk.NullDeviceMemory
	}
	if vb.Handle != vk.NullBuffer {
		vk.DestroyBuffer(vc.Device.LogicalDevice, vb.Handle, vc.Allocator)
		vb.Handle = vk.NullBuffer
	}
	vb.Size = 0
}

/** @brief A GPU buffer created with its initial contents. */
type Buffer struct {
	context  *VulkanContext
	buffer   *VulkanBuffer
	handle   vk.Buffer
	label    string
	size     uint64
	usage    renderer.BufferUsage
	released bool
}

func createBufferInit(vc *VulkanContext, desc *renderer.BufferInitDescriptor) (*Buffer, error) {
	size := uint64(len(desc.Contents))
	if size == 0 {
		err := fmt.Errorf("buffer '%s' has no contents", desc.Label)
		core.LogError(err.Error())
		return nil, err
	}

	usage := fromBufferUsage(desc.Usage)
	var vb *VulkanBuffer
	var err error
	if hostVisible(desc.Usage) {
		vb, err = VulkanBufferCreate(vc, size, usage,
			vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
		if err == nil {
			err = vb.LoadData(vc, 0, desc.Contents)
		}
	} else {
		vb, err = VulkanBufferCreate(vc, size, usage|vk.BufferUsageFlags(vk.BufferUsageTransferDstBit),
			vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
		if err == nil {
			err = uploadDeviceLocal(vc, vb, desc.Contents)
		}
	}
	if err != nil {
		if vb != nil {
			vb.Destroy(vc)
		}
		err = fmt.Errorf("failed to create buffer '%s': %w", desc.Label, err)
		core.LogError(err.Error())
		return nil, err
	}

	return &Buffer{
		context: vc,
		buffer:  vb,
		handle:  vb.Handle,
		label:   desc.Label,
		size:    size,
		usage:   desc.Usage,
	}, nil
}

// uploadDeviceLocal fills a device local buffer through a temporary
// host visible staging buffer.
func uploadDeviceLocal(vc *VulkanContext, dest *VulkanBuffer, contents []byte) error {
	staging, err := VulkanBufferCreate(vc, uint64(len(contents)),
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return err
	}
	defer staging.Destroy(vc)
	if err := staging.LoadData(vc, 0, contents); err != nil {
		return err
	}
	return staging.CopyTo(vc, dest, uint64(len(contents)))
}

func (b *Buffer) Size() uint64 {
	return b.size
}

func (b *Buffer) Usage() renderer.BufferUsage {
	return b.usage
}

// Release destroys the buffer once the GPU has finished the work
// submitted after this call.
func (b *Buffer) Release() {
	if b.released {
		return
	}
	b.released = true
	vc := b.context
	vb := b.buffer
	vc.retire(func() { vb.Destroy(vc) })
}
