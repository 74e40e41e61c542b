package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/showcase/engine/core"
	"github.com/spaghettifunk/showcase/engine/renderer"
)

type VulkanCommandBufferState int

const (
	COMMAND_BUFFER_STATE_READY VulkanCommandBufferState = iota
	COMMAND_BUFFER_STATE_RECORDING
	COMMAND_BUFFER_STATE_IN_RENDER_PASS
	COMMAND_BUFFER_STATE_RECORDING_ENDED
	COMMAND_BUFFER_STATE_SUBMITTED
	COMMAND_BUFFER_STATE_NOT_ALLOCATED
)

type VulkanCommandBuffer struct {
	Handle vk.CommandBuffer
	// Command buffer state.
	State VulkanCommandBufferState
}

func NewVulkanCommandBuffer(vc *VulkanContext, pool vk.CommandPool) (*VulkanCommandBuffer, error) {
	allocateInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		CommandBufferCount: 1,
		Level:              vk.CommandBufferLevelPrimary,
	}

	handles := make([]vk.CommandBuffer, 1)
	err := vc.locks.SafeCall(CommandPoolManagement, func() error {
		if res := vk.AllocateCommandBuffers(vc.Device.LogicalDevice, &allocateInfo, handles); res != vk.Success {
			return resultError("vkAllocateCommandBuffers", res)
		}
		return nil
	})
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	return &VulkanCommandBuffer{
		Handle: handles[0],
		State:  COMMAND_BUFFER_STATE_READY,
	}, nil
}

func (v *VulkanCommandBuffer) Free(vc *VulkanContext, pool vk.CommandPool) {
	if v.Handle == nil {
		return
	}
	vc.locks.SafeCall(CommandPoolManagement, func() error {
		vk.FreeCommandBuffers(vc.Device.LogicalDevice, pool, 1, []vk.CommandBuffer{v.Handle})
		return nil
	})
	v.Handle = nil
	v.State = COMMAND_BUFFER_STATE_NOT_ALLOCATED
}

func (v *VulkanCommandBuffer) Begin(singleUse bool) error {
	beginInfo := &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
	}
	if singleUse {
		beginInfo.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit)
	}
	if res := vk.BeginCommandBuffer(v.Handle, beginInfo); res != vk.Success {
		err := fmt.Errorf("failed to begin command buffer: %w", resultError("vkBeginCommandBuffer", res))
		core.LogError(err.Error())
		return err
	}
	v.State = COMMAND_BUFFER_STATE_RECORDING
	return nil
}

func (v *VulkanCommandBuffer) End() error {
	if res := vk.EndCommandBuffer(v.Handle); res != vk.Success {
		err := fmt.Errorf("failed to end command buffer: %w", resultError("vkEndCommandBuffer", res))
		core.LogError(err.Error())
		return err
	}
	v.State = COMMAND_BUFFER_STATE_RECORDING_ENDED
	return nil
}

func (v *VulkanCommandBuffer) UpdateSubmitted() {
	v.State = COMMAND_BUFFER_STATE_SUBMITTED
}

/**
 * Allocates and begins recording a command buffer which is submitted once.
 */
func AllocateAndBeginSingleUse(vc *VulkanContext, pool vk.CommandPool) (*VulkanCommandBuffer, error) {
	cb, err := NewVulkanCommandBuffer(vc, pool)
	if err != nil {
		return nil, err
	}
	if err := cb.Begin(true); err != nil {
		cb.Free(vc, pool)
		return nil, err
	}
	return cb, nil
}

/**
 * Ends recording, submits and waits for the queue, then frees the command buffer.
 */
func (v *VulkanCommandBuffer) EndSingleUse(vc *VulkanContext, pool vk.CommandPool) error {
	defer v.Free(vc, pool)
	if err := v.End(); err != nil {
		return err
	}
	v.UpdateSubmitted()
	return submitAndWait(vc, []vk.CommandBuffer{v.Handle})
}

/** @brief Records copies and render passes into one primary command buffer. */
type CommandEncoder struct {
	context  *VulkanContext
	buffer   *VulkanCommandBuffer
	label    string
	finished bool
}

func newCommandEncoder(vc *VulkanContext, label string) (*CommandEncoder, error) {
	cb, err := NewVulkanCommandBuffer(vc, vc.Device.GraphicsCommandPool)
	if err != nil {
		return nil, fmt.Errorf("failed to create command encoder '%s': %w", label, err)
	}
	if err := cb.Begin(true); err != nil {
		cb.Free(vc, vc.Device.GraphicsCommandPool)
		return nil, err
	}
	return &CommandEncoder{context: vc, buffer: cb, label: label}, nil
}

func (e *CommandEncoder) CopyBufferToBuffer(src renderer.Buffer, srcOffset uint64, dst renderer.Buffer, dstOffset uint64, size uint64) error {
	s, ok := src.(*Buffer)
	if !ok {
		return fmt.Errorf("%w: source buffer %T does not belong to the vulkan backend", core.ErrUnknown, src)
	}
	d, ok := dst.(*Buffer)
	if !ok {
		return fmt.Errorf("%w: destination buffer %T does not belong to the vulkan backend", core.ErrUnknown, dst)
	}
	if srcOffset+size > s.size || dstOffset+size > d.size {
		return fmt.Errorf("copy of %d bytes is out of bounds ('%s' -> '%s')", size, s.label, d.label)
	}
	if e.buffer.State == COMMAND_BUFFER_STATE_IN_RENDER_PASS {
		return fmt.Errorf("'%s': buffer copies are not allowed inside a render pass", e.label)
	}
	region := vk.BufferCopy{
		SrcOffset: vk.DeviceSize(srcOffset),
		DstOffset: vk.DeviceSize(dstOffset),
		Size:      vk.DeviceSize(size),
	}
	vk.CmdCopyBuffer(e.buffer.Handle, s.handle, d.handle, 1, []vk.BufferCopy{region})

	// Make the copy visible to shader reads later in the same buffer.
	barrier := vk.BufferMemoryBarrier{
		SType:               vk.StructureTypeBufferMemoryBarrier,
		SrcAccessMask:       vk.AccessFlags(vk.AccessTransferWriteBit),
		DstAccessMask:       vk.AccessFlags(vk.AccessUniformReadBit | vk.AccessShaderReadBit),
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Buffer:              d.handle,
		Offset:              vk.DeviceSize(dstOffset),
		Size:                vk.DeviceSize(size),
	}
	vk.CmdPipelineBarrier(e.buffer.Handle,
		vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		vk.PipelineStageFlags(vk.PipelineStageVertexShaderBit|vk.PipelineStageFragmentShaderBit),
		0, 0, nil, 1, []vk.BufferMemoryBarrier{barrier}, 0, nil)
	return nil
}

func (e *CommandEncoder) BeginRenderPass(desc *renderer.RenderPassDescriptor) (renderer.RenderPass, error) {
	if len(desc.ColorAttachments) != 1 {
		return nil, fmt.Errorf("'%s': exactly one color attachment is supported, got %d", desc.Label, len(desc.ColorAttachments))
	}
	attachment := desc.ColorAttachments[0]
	view, ok := attachment.View.(*TextureView)
	if !ok {
		return nil, fmt.Errorf("%w: texture view %T does not belong to the vulkan backend", core.ErrUnknown, attachment.View)
	}
	if e.buffer.State == COMMAND_BUFFER_STATE_IN_RENDER_PASS {
		return nil, fmt.Errorf("'%s': a render pass is already open", e.label)
	}

	pass := view.swapchain.renderpass(attachment.LoadOp)
	c := attachment.ClearValue
	pass.RenderpassBegin(e.buffer, view.framebuffer(), view.swapchain.Extent,
		[]float32{float32(c.R), float32(c.G), float32(c.B), float32(c.A)})
	return &RenderPass{encoder: e, pass: pass}, nil
}

func (e *CommandEncoder) Finish() (renderer.CommandBuffer, error) {
	if e.finished {
		return nil, fmt.Errorf("'%s': encoder already finished", e.label)
	}
	if e.buffer.State == COMMAND_BUFFER_STATE_IN_RENDER_PASS {
		return nil, fmt.Errorf("'%s': render pass was not ended", e.label)
	}
	if err := e.buffer.End(); err != nil {
		return nil, err
	}
	e.finished = true
	return &CommandBuffer{context: e.context, buffer: e.buffer}, nil
}

func (e *CommandEncoder) Release() {
	if e.finished {
		// Ownership moved to the command buffer.
		return
	}
	vc := e.context
	cb := e.buffer
	vc.retire(func() { cb.Free(vc, vc.Device.GraphicsCommandPool) })
	e.finished = true
}

/** @brief A recorded command buffer ready for submission. */
type CommandBuffer struct {
	context  *VulkanContext
	buffer   *VulkanCommandBuffer
	released bool
}

func (c *CommandBuffer) Release() {
	if c.released {
		return
	}
	c.released = true
	vc := c.context
	cb := c.buffer
	vc.retire(func() { cb.Free(vc, vc.Device.GraphicsCommandPool) })
}

type RenderPass struct {
	encoder *CommandEncoder
	pass    *VulkanRenderpass
	ended   bool
}

func (p *RenderPass) End() error {
	if p.ended {
		return fmt.Errorf("'%s': render pass already ended", p.encoder.label)
	}
	p.pass.RenderpassEnd(p.encoder.buffer)
	p.ended = true
	return nil
}
