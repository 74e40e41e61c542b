package vulkan

import (
	"context"
	"fmt"
	"runtime"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/showcase/engine/core"
	"github.com/spaghettifunk/showcase/engine/renderer"
)

// Descriptor sets available to bind groups created on one device.
const maxDescriptorSets uint32 = 64

type VulkanDevice struct {
	PhysicalDevice     vk.PhysicalDevice
	LogicalDevice      vk.Device
	GraphicsQueueIndex uint32
	PresentQueueIndex  uint32

	GraphicsQueue vk.Queue
	PresentQueue  vk.Queue

	GraphicsCommandPool vk.CommandPool
	DescriptorPool      vk.DescriptorPool

	Properties vk.PhysicalDeviceProperties
	Memory     vk.PhysicalDeviceMemoryProperties

	portabilitySubset bool
}

type VulkanPhysicalDeviceQueueFamilyInfo struct {
	GraphicsFamilyIndex int32
	PresentFamilyIndex  int32
}

func (q VulkanPhysicalDeviceQueueFamilyInfo) complete() bool {
	return q.GraphicsFamilyIndex >= 0 && q.PresentFamilyIndex >= 0
}

type adapterCandidate struct {
	physical   vk.PhysicalDevice
	properties vk.PhysicalDeviceProperties
	queues     VulkanPhysicalDeviceQueueFamilyInfo
	extensions []string
}

// deviceTypeRank orders device types for a power preference, lower is better.
func deviceTypeRank(t vk.PhysicalDeviceType, pref renderer.PowerPreference) int {
	order := []vk.PhysicalDeviceType{
		vk.PhysicalDeviceTypeDiscreteGpu,
		vk.PhysicalDeviceTypeIntegratedGpu,
		vk.PhysicalDeviceTypeVirtualGpu,
		vk.PhysicalDeviceTypeCpu,
	}
	if pref == renderer.PowerPreferenceLowPower {
		order[0], order[1] = order[1], order[0]
	}
	for i, candidate := range order {
		if candidate == t {
			return i
		}
	}
	return len(order)
}

// SelectPhysicalDevice picks the best physical device able to render
// and present to surface.
func SelectPhysicalDevice(vc *VulkanContext, surface vk.Surface, pref renderer.PowerPreference) (*Adapter, error) {
	var physicalDeviceCount uint32 = 0
	if res := vk.EnumeratePhysicalDevices(vc.Instance, &physicalDeviceCount, nil); res != vk.Success {
		return nil, fmt.Errorf("%w: %s", core.ErrNoAdapter, resultError("vkEnumeratePhysicalDevices", res))
	}
	if physicalDeviceCount == 0 {
		return nil, fmt.Errorf("%w: no devices which support Vulkan were found", core.ErrNoAdapter)
	}
	physicalDevices := make([]vk.PhysicalDevice, physicalDeviceCount)
	if res := vk.EnumeratePhysicalDevices(vc.Instance, &physicalDeviceCount, physicalDevices); res != vk.Success {
		return nil, fmt.Errorf("%w: %s", core.ErrNoAdapter, resultError("vkEnumeratePhysicalDevices", res))
	}

	var best *adapterCandidate
	for _, physical := range physicalDevices {
		candidate, ok := physicalDeviceMeetsRequirements(physical, surface)
		if !ok {
			continue
		}
		if best == nil || deviceTypeRank(candidate.properties.DeviceType, pref) < deviceTypeRank(best.properties.DeviceType, pref) {
			best = candidate
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: no physical devices were found which meet the requirements", core.ErrNoAdapter)
	}

	var memory vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(best.physical, &memory)
	memory.Deref()

	adapter := &Adapter{
		context:    vc,
		physical:   best.physical,
		properties: best.properties,
		memory:     memory,
		queues:     best.queues,
		extensions: best.extensions,
	}
	info := adapter.Info()
	core.LogInfo("Selected device: '%s' (%s).", info.Name, info.DeviceType)
	core.LogInfo(
		"Vulkan API version: %d.%d.%d",
		vk.Version(best.properties.ApiVersion).Major(),
		vk.Version(best.properties.ApiVersion).Minor(),
		vk.Version(best.properties.ApiVersion).Patch(),
	)
	return adapter, nil
}

func physicalDeviceMeetsRequirements(device vk.PhysicalDevice, surface vk.Surface) (*adapterCandidate, bool) {
	var properties vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(device, &properties)
	properties.Deref()
	name := cString(properties.DeviceName[:])

	candidate := &adapterCandidate{
		physical:   device,
		properties: properties,
		queues:     VulkanPhysicalDeviceQueueFamilyInfo{GraphicsFamilyIndex: -1, PresentFamilyIndex: -1},
	}

	var queueFamilyCount uint32 = 0
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, nil)
	queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, queueFamilies)

	for i := range queueFamilies {
		queueFamilies[i].Deref()
		graphics := vk.QueueFlagBits(queueFamilies[i].QueueFlags)&vk.QueueGraphicsBit != 0

		present := true
		if surface != vk.NullSurface {
			var supportsPresent vk.Bool32 = vk.False
			if res := vk.GetPhysicalDeviceSurfaceSupport(device, uint32(i), surface, &supportsPresent); res != vk.Success {
				return nil, false
			}
			present = supportsPresent == vk.True
		}

		// Prefer a single family that can do both.
		if graphics && present {
			candidate.queues.GraphicsFamilyIndex = int32(i)
			candidate.queues.PresentFamilyIndex = int32(i)
			break
		}
		if graphics && candidate.queues.GraphicsFamilyIndex < 0 {
			candidate.queues.GraphicsFamilyIndex = int32(i)
		}
		if present && candidate.queues.PresentFamilyIndex < 0 {
			candidate.queues.PresentFamilyIndex = int32(i)
		}
	}
	if !candidate.queues.complete() {
		core.LogInfo("Device '%s' does not meet queue requirements, skipping.", name)
		return nil, false
	}

	available := deviceExtensions(device)
	if !available[vk.KhrSwapchainExtensionName] {
		core.LogInfo("Required extension not found: '%s', skipping device '%s'.", vk.KhrSwapchainExtensionName, name)
		return nil, false
	}
	candidate.extensions = []string{vk.KhrSwapchainExtensionName}
	if available["VK_KHR_portability_subset"] {
		core.LogInfo("Adding required extension 'VK_KHR_portability_subset'.")
		candidate.extensions = append(candidate.extensions, "VK_KHR_portability_subset")
	}

	if surface != vk.NullSurface {
		support, err := DeviceQuerySwapchainSupport(device, surface)
		if err != nil || len(support.Formats) == 0 || len(support.PresentModes) == 0 {
			core.LogInfo("Required swapchain support not present, skipping device '%s'.", name)
			return nil, false
		}
	}
	return candidate, true
}

func deviceExtensions(device vk.PhysicalDevice) map[string]bool {
	names := map[string]bool{}
	var count uint32
	if res := vk.EnumerateDeviceExtensionProperties(device, "", &count, nil); res != vk.Success || count == 0 {
		return names
	}
	extensions := make([]vk.ExtensionProperties, count)
	if res := vk.EnumerateDeviceExtensionProperties(device, "", &count, extensions); res != vk.Success {
		return names
	}
	for i := range extensions {
		extensions[i].Deref()
		names[cString(extensions[i].ExtensionName[:])] = true
	}
	return names
}

/** @brief A physical device selected for rendering. */
type Adapter struct {
	context    *VulkanContext
	physical   vk.PhysicalDevice
	properties vk.PhysicalDeviceProperties
	memory     vk.PhysicalDeviceMemoryProperties
	queues     VulkanPhysicalDeviceQueueFamilyInfo
	extensions []string
}

func (a *Adapter) Info() renderer.AdapterInfo {
	return renderer.AdapterInfo{
		Name:       cString(a.properties.DeviceName[:]),
		Vendor:     fmt.Sprintf("0x%04X", a.properties.VendorID),
		DeviceType: deviceTypeString(a.properties.DeviceType),
		Backend:    "vulkan",
	}
}

func (a *Adapter) RequestDevice(_ context.Context, desc *renderer.DeviceDescriptor) (renderer.Device, renderer.Queue, error) {
	vc := a.context
	core.LogInfo("Creating logical device...")

	// Do not create additional queues for shared indices.
	indices := []uint32{uint32(a.queues.GraphicsFamilyIndex)}
	if a.queues.PresentFamilyIndex != a.queues.GraphicsFamilyIndex {
		indices = append(indices, uint32(a.queues.PresentFamilyIndex))
	}

	queueCreateInfos := make([]vk.DeviceQueueCreateInfo, len(indices))
	for i, index := range indices {
		queueCreateInfos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: index,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueCreateInfos)),
		PQueueCreateInfos:       queueCreateInfos,
		EnabledExtensionCount:   uint32(len(a.extensions)),
		PpEnabledExtensionNames: VulkanSafeStrings(a.extensions),
	}

	device := &VulkanDevice{
		PhysicalDevice:     a.physical,
		GraphicsQueueIndex: uint32(a.queues.GraphicsFamilyIndex),
		PresentQueueIndex:  uint32(a.queues.PresentFamilyIndex),
		Properties:         a.properties,
		Memory:             a.memory,
		portabilitySubset:  len(a.extensions) > 1,
	}
	if res := vk.CreateDevice(a.physical, &deviceCreateInfo, vc.Allocator, &device.LogicalDevice); res != vk.Success {
		err := fmt.Errorf("%w: %s", core.ErrNoDevice, resultError("vkCreateDevice", res))
		core.LogError(err.Error())
		return nil, nil, err
	}
	core.LogInfo("Logical device '%s' created.", desc.Label)

	vk.GetDeviceQueue(device.LogicalDevice, device.GraphicsQueueIndex, 0, &device.GraphicsQueue)
	vk.GetDeviceQueue(device.LogicalDevice, device.PresentQueueIndex, 0, &device.PresentQueue)
	for _, index := range indices {
		vc.locks.SetQueueFamily(index)
	}

	// Create command pool for graphics queue.
	poolCreateInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: device.GraphicsQueueIndex,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}
	if res := vk.CreateCommandPool(device.LogicalDevice, &poolCreateInfo, vc.Allocator, &device.GraphicsCommandPool); res != vk.Success {
		vk.DestroyDevice(device.LogicalDevice, vc.Allocator)
		err := fmt.Errorf("%w: %s", core.ErrNoDevice, resultError("vkCreateCommandPool", res))
		core.LogError(err.Error())
		return nil, nil, err
	}

	descriptorPoolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		Flags:         vk.DescriptorPoolCreateFlags(vk.DescriptorPoolCreateFreeDescriptorSetBit),
		MaxSets:       maxDescriptorSets,
		PoolSizeCount: 2,
		PPoolSizes: []vk.DescriptorPoolSize{
			{Type: vk.DescriptorTypeUniformBuffer, DescriptorCount: maxDescriptorSets},
			{Type: vk.DescriptorTypeStorageBuffer, DescriptorCount: maxDescriptorSets},
		},
	}
	if res := vk.CreateDescriptorPool(device.LogicalDevice, &descriptorPoolInfo, vc.Allocator, &device.DescriptorPool); res != vk.Success {
		vk.DestroyCommandPool(device.LogicalDevice, device.GraphicsCommandPool, vc.Allocator)
		vk.DestroyDevice(device.LogicalDevice, vc.Allocator)
		err := fmt.Errorf("%w: %s", core.ErrNoDevice, resultError("vkCreateDescriptorPool", res))
		core.LogError(err.Error())
		return nil, nil, err
	}

	vc.Device = device
	d := &Device{context: vc}
	return d, &Queue{context: vc}, nil
}

func (a *Adapter) Release() {}

/** @brief The logical device and the pools objects are allocated from. */
type Device struct {
	context *VulkanContext
}

func (d *Device) CreateBufferInit(desc *renderer.BufferInitDescriptor) (renderer.Buffer, error) {
	return createBufferInit(d.context, desc)
}

func (d *Device) CreateBindGroupLayout(desc *renderer.BindGroupLayoutDescriptor) (renderer.BindGroupLayout, error) {
	return createBindGroupLayout(d.context, desc)
}

func (d *Device) CreateBindGroup(desc *renderer.BindGroupDescriptor) (renderer.BindGroup, error) {
	return createBindGroup(d.context, desc)
}

func (d *Device) CreateCommandEncoder(label string) (renderer.CommandEncoder, error) {
	return newCommandEncoder(d.context, label)
}

// Release waits for the GPU to go idle, runs pending destructors and
// destroys the pools and the logical device.
func (d *Device) Release() {
	vc := d.context
	if vc.Device == nil || vc.Device.LogicalDevice == nil {
		return
	}
	device := vc.Device
	vk.DeviceWaitIdle(device.LogicalDevice)
	runRetired(vc.takeRetired())

	core.LogInfo("Destroying pools...")
	vk.DestroyDescriptorPool(device.LogicalDevice, device.DescriptorPool, vc.Allocator)
	vk.DestroyCommandPool(device.LogicalDevice, device.GraphicsCommandPool, vc.Allocator)

	core.LogInfo("Destroying logical device...")
	vk.DestroyDevice(device.LogicalDevice, vc.Allocator)
	device.LogicalDevice = nil
	device.GraphicsQueue = nil
	device.PresentQueue = nil
	vc.Device = nil
}

type VulkanSwapchainSupportInfo struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

func DeviceQuerySwapchainSupport(physicalDevice vk.PhysicalDevice, surface vk.Surface) (*VulkanSwapchainSupportInfo, error) {
	supportInfo := &VulkanSwapchainSupportInfo{}

	// Surface capabilities
	if res := vk.GetPhysicalDeviceSurfaceCapabilities(physicalDevice, surface, &supportInfo.Capabilities); res != vk.Success {
		return nil, resultError("vkGetPhysicalDeviceSurfaceCapabilitiesKHR", res)
	}
	supportInfo.Capabilities.Deref()
	supportInfo.Capabilities.CurrentExtent.Deref()
	supportInfo.Capabilities.MinImageExtent.Deref()
	supportInfo.Capabilities.MaxImageExtent.Deref()

	// Surface formats
	var formatCount uint32
	if res := vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &formatCount, nil); res != vk.Success {
		return nil, resultError("vkGetPhysicalDeviceSurfaceFormatsKHR", res)
	}
	if formatCount != 0 {
		supportInfo.Formats = make([]vk.SurfaceFormat, formatCount)
		if res := vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &formatCount, supportInfo.Formats); res != vk.Success {
			return nil, resultError("vkGetPhysicalDeviceSurfaceFormatsKHR", res)
		}
		for i := range supportInfo.Formats {
			supportInfo.Formats[i].Deref()
		}
	}

	// Present modes
	var presentModeCount uint32
	if res := vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &presentModeCount, nil); res != vk.Success {
		return nil, resultError("vkGetPhysicalDeviceSurfacePresentModesKHR", res)
	}
	if presentModeCount != 0 {
		supportInfo.PresentModes = make([]vk.PresentMode, presentModeCount)
		if res := vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &presentModeCount, supportInfo.PresentModes); res != vk.Success {
			return nil, resultError("vkGetPhysicalDeviceSurfacePresentModesKHR", res)
		}
	}
	return supportInfo, nil
}

/** @brief The graphics queue. Submissions are fenced per frame. */
type Queue struct {
	context *VulkanContext
}

func (q *Queue) Submit(buffers ...renderer.CommandBuffer) error {
	vc := q.context
	handles := make([]vk.CommandBuffer, 0, len(buffers))
	for _, b := range buffers {
		cb, ok := b.(*CommandBuffer)
		if !ok {
			return fmt.Errorf("%w: command buffer %T does not belong to the vulkan backend", core.ErrUnknown, b)
		}
		handles = append(handles, cb.buffer.Handle)
		cb.buffer.UpdateSubmitted()
	}

	frame := vc.currentFrame
	if frame == nil || frame.submitted {
		return submitAndWait(vc, handles)
	}
	return frame.submit(vc, handles)
}

// submitAndWait runs work outside of a frame and blocks until it is done.
// Retired resources stay queued since commands still being recorded may
// reference them.
func submitAndWait(vc *VulkanContext, handles []vk.CommandBuffer) error {
	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: uint32(len(handles)),
		PCommandBuffers:    handles,
	}
	return vc.locks.SafeQueueCall(vc.Device.GraphicsQueueIndex, func() error {
		if res := vk.QueueSubmit(vc.Device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, vk.NullFence); res != vk.Success {
			err := resultError("vkQueueSubmit", res)
			core.LogError(err.Error())
			return err
		}
		if res := vk.QueueWaitIdle(vc.Device.GraphicsQueue); res != vk.Success {
			err := resultError("vkQueueWaitIdle", res)
			core.LogError(err.Error())
			return err
		}
		return nil
	})
}
