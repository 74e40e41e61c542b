package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/showcase/engine/core"
	"github.com/spaghettifunk/showcase/engine/renderer"
)

/**
 * @brief A descriptor set layout describing the buffers a bind group
 * exposes to shaders.
 */
type BindGroupLayout struct {
	context  *VulkanContext
	handle   vk.DescriptorSetLayout
	label    string
	entries  []renderer.BindGroupLayoutEntry
	released bool
}

func createBindGroupLayout(vc *VulkanContext, desc *renderer.BindGroupLayoutDescriptor) (*BindGroupLayout, error) {
	bindings := make([]vk.DescriptorSetLayoutBinding, len(desc.Entries))
	for i, entry := range desc.Entries {
		bindings[i] = vk.DescriptorSetLayoutBinding{
			Binding:         entry.Binding,
			DescriptorType:  fromBindingType(entry.Buffer),
			DescriptorCount: 1,
			StageFlags:      fromShaderStage(entry.Visibility),
		}
	}

	layoutInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}
	layout := &BindGroupLayout{
		context: vc,
		label:   desc.Label,
		entries: append([]renderer.BindGroupLayoutEntry(nil), desc.Entries...),
	}
	if res := vk.CreateDescriptorSetLayout(vc.Device.LogicalDevice, &layoutInfo, vc.Allocator, &layout.handle); res != vk.Success {
		err := fmt.Errorf("failed to create bind group layout '%s': %w", desc.Label, resultError("vkCreateDescriptorSetLayout", res))
		core.LogError(err.Error())
		return nil, err
	}
	return layout, nil
}

func (l *BindGroupLayout) entry(binding uint32) (renderer.BindGroupLayoutEntry, bool) {
	for _, e := range l.entries {
		if e.Binding == binding {
			return e, true
		}
	}
	return renderer.BindGroupLayoutEntry{}, false
}

func (l *BindGroupLayout) Release() {
	if l.released {
		return
	}
	l.released = true
	vc := l.context
	handle := l.handle
	vc.retire(func() {
		vk.DestroyDescriptorSetLayout(vc.Device.LogicalDevice, handle, vc.Allocator)
	})
}

/** @brief A descriptor set allocated from the device pool. */
type BindGroup struct {
	context  *VulkanContext
	handle   vk.DescriptorSet
	label    string
	released bool
}

func createBindGroup(vc *VulkanContext, desc *renderer.BindGroupDescriptor) (*BindGroup, error) {
	layout, ok := desc.Layout.(*BindGroupLayout)
	if !ok {
		return nil, fmt.Errorf("%w: bind group layout %T does not belong to the vulkan backend", core.ErrUnknown, desc.Layout)
	}

	allocateInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     vc.Device.DescriptorPool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{layout.handle},
	}
	sets := make([]vk.DescriptorSet, 1)
	err := vc.locks.SafeCall(DescriptorPoolManagement, func() error {
		if res := vk.AllocateDescriptorSets(vc.Device.LogicalDevice, &allocateInfo, sets); res != vk.Success {
			return fmt.Errorf("failed to allocate bind group '%s': %w", desc.Label, resultError("vkAllocateDescriptorSets", res))
		}
		return nil
	})
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	group := &BindGroup{context: vc, handle: sets[0], label: desc.Label}

	writes := make([]vk.WriteDescriptorSet, 0, len(desc.Entries))
	for _, entry := range desc.Entries {
		layoutEntry, ok := layout.entry(entry.Binding)
		if !ok {
			group.free()
			err := fmt.Errorf("bind group '%s': binding %d is not in layout '%s'", desc.Label, entry.Binding, layout.label)
			core.LogError(err.Error())
			return nil, err
		}
		buffer, ok := entry.Buffer.(*Buffer)
		if !ok {
			group.free()
			return nil, fmt.Errorf("%w: buffer %T does not belong to the vulkan backend", core.ErrUnknown, entry.Buffer)
		}
		size := vk.DeviceSize(entry.Size)
		if entry.Size == renderer.WholeSize {
			size = vk.DeviceSize(vk.WholeSize)
		}
		writes = append(writes, vk.WriteDescriptorSet{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          group.handle,
			DstBinding:      entry.Binding,
			DstArrayElement: 0,
			DescriptorCount: 1,
			DescriptorType:  fromBindingType(layoutEntry.Buffer),
			PBufferInfo: []vk.DescriptorBufferInfo{{
				Buffer: buffer.handle,
				Offset: vk.DeviceSize(entry.Offset),
				Range:  size,
			}},
		})
	}
	vk.UpdateDescriptorSets(vc.Device.LogicalDevice, uint32(len(writes)), writes, 0, nil)
	return group, nil
}

func (g *BindGroup) free() {
	vc := g.context
	vc.locks.SafeCall(DescriptorPoolManagement, func() error {
		vk.FreeDescriptorSets(vc.Device.LogicalDevice, vc.Device.DescriptorPool, 1, []vk.DescriptorSet{g.handle})
		return nil
	})
}

func (g *BindGroup) Release() {
	if g.released {
		return
	}
	g.released = true
	g.context.retire(g.free)
}
