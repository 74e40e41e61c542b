package vulkan

import (
	"fmt"
	"math"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/showcase/engine/core"
	emath "github.com/spaghettifunk/showcase/engine/math"
	"github.com/spaghettifunk/showcase/engine/renderer"
)

type VulkanSwapchain struct {
	Handle      vk.Swapchain
	ImageFormat vk.SurfaceFormat
	Extent      vk.Extent2D
	Images      []vk.Image
	Views       []vk.ImageView

	// Render passes for LoadOpClear and LoadOpLoad. Both are compatible
	// with the framebuffers.
	ClearRenderpass *VulkanRenderpass
	LoadRenderpass  *VulkanRenderpass

	// framebuffers used for on-screen rendering.
	Framebuffers []*VulkanFramebuffer

	// Holds pointers to fences which exist and are owned by the frames.
	ImagesInFlight []*VulkanFence
}

/** @brief Synchronisation objects for one frame in flight. */
type frameSync struct {
	imageAvailable vk.Semaphore
	renderFinished vk.Semaphore
	inFlight       *VulkanFence

	imageIndex uint32
	submitted  bool
	retired    []func()
}

func newFrameSync(vc *VulkanContext) (*frameSync, error) {
	semaphoreCreateInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	f := &frameSync{}
	if res := vk.CreateSemaphore(vc.Device.LogicalDevice, &semaphoreCreateInfo, vc.Allocator, &f.imageAvailable); res != vk.Success {
		err := fmt.Errorf("failed to create semaphore on image available")
		core.LogError(err.Error())
		return nil, err
	}
	if res := vk.CreateSemaphore(vc.Device.LogicalDevice, &semaphoreCreateInfo, vc.Allocator, &f.renderFinished); res != vk.Success {
		vk.DestroySemaphore(vc.Device.LogicalDevice, f.imageAvailable, vc.Allocator)
		err := fmt.Errorf("failed to create semaphore on queue complete")
		core.LogError(err.Error())
		return nil, err
	}
	// Created signaled so the first wait on this frame does not block.
	fence, err := NewFence(vc, true)
	if err != nil {
		vk.DestroySemaphore(vc.Device.LogicalDevice, f.imageAvailable, vc.Allocator)
		vk.DestroySemaphore(vc.Device.LogicalDevice, f.renderFinished, vc.Allocator)
		return nil, err
	}
	f.inFlight = fence
	return f, nil
}

// submit runs the frame's work after the image is available and
// signals presentation and the in-flight fence when done.
func (f *frameSync) submit(vc *VulkanContext, handles []vk.CommandBuffer) error {
	if err := f.inFlight.FenceReset(vc); err != nil {
		return err
	}
	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{f.imageAvailable},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageTransferBit)},
		CommandBufferCount:   uint32(len(handles)),
		PCommandBuffers:      handles,
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{f.renderFinished},
	}
	err := vc.locks.SafeQueueCall(vc.Device.GraphicsQueueIndex, func() error {
		if res := vk.QueueSubmit(vc.Device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, f.inFlight.Handle); res != vk.Success {
			err := resultError("vkQueueSubmit", res)
			core.LogError(err.Error())
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	f.submitted = true
	f.retired = append(f.retired, vc.takeRetired()...)
	return nil
}

// wait blocks until the frame's previous submission is done and runs
// the destructors that were waiting on it.
func (f *frameSync) wait(vc *VulkanContext) error {
	if !f.inFlight.FenceWait(vc, math.MaxUint64) {
		return fmt.Errorf("in-flight fence wait failure: %w", core.ErrSurfaceTimeout)
	}
	runRetired(f.retired)
	f.retired = nil
	return nil
}

func (f *frameSync) destroy(vc *VulkanContext) {
	runRetired(f.retired)
	f.retired = nil
	vk.DestroySemaphore(vc.Device.LogicalDevice, f.imageAvailable, vc.Allocator)
	vk.DestroySemaphore(vc.Device.LogicalDevice, f.renderFinished, vc.Allocator)
	f.inFlight.FenceDestroy(vc)
}

/** @brief A window surface and the swapchain presenting to it. */
type Surface struct {
	context   *VulkanContext
	handle    vk.Surface
	swapchain *VulkanSwapchain

	frames     []*frameSync
	frameIndex int
	outdated   bool
}

func (s *Surface) Capabilities(adapter renderer.Adapter) renderer.SurfaceCapabilities {
	caps := renderer.SurfaceCapabilities{}
	a, ok := adapter.(*Adapter)
	if !ok {
		return caps
	}
	support, err := DeviceQuerySwapchainSupport(a.physical, s.handle)
	if err != nil {
		core.LogError("failed to query surface capabilities: %s", err)
		return caps
	}
	for _, f := range support.Formats {
		caps.Formats = append(caps.Formats, toSurfaceFormat(f))
	}
	// FIFO is always supported and is listed first so it is the default.
	caps.PresentModes = []renderer.PresentMode{renderer.PresentModeFifo}
	for _, m := range support.PresentModes {
		if mode, ok := toPresentMode(m); ok && mode != renderer.PresentModeFifo {
			caps.PresentModes = append(caps.PresentModes, mode)
		}
	}
	caps.AlphaModes = toAlphaModes(support.Capabilities.SupportedCompositeAlpha)
	return caps
}

func (s *Surface) Configure(adapter renderer.Adapter, device renderer.Device, config *renderer.SurfaceConfiguration) error {
	vc := s.context
	if vc.Device == nil {
		return fmt.Errorf("surface configured before a device was requested")
	}
	vk.DeviceWaitIdle(vc.Device.LogicalDevice)

	support, err := DeviceQuerySwapchainSupport(vc.Device.PhysicalDevice, s.handle)
	if err != nil {
		core.LogError(err.Error())
		return err
	}

	old := s.swapchain
	sc, err := createSwapchain(vc, s.handle, support, config, old)
	if old != nil {
		old.destroy(vc)
	}
	s.swapchain = nil
	if err != nil {
		return err
	}
	s.swapchain = sc

	latency := int(max(config.DesiredMaximumFrameLatency, 1))
	if len(s.frames) != latency {
		s.destroyFrames()
		for i := 0; i < latency; i++ {
			f, err := newFrameSync(vc)
			if err != nil {
				return err
			}
			s.frames = append(s.frames, f)
		}
		s.frameIndex = 0
	}
	s.outdated = false

	core.LogInfo("Swapchain configured: %dx%d, %s, %d images, %d frames in flight.",
		sc.Extent.Width, sc.Extent.Height, toSurfaceFormat(sc.ImageFormat), len(sc.Images), latency)
	return nil
}

func (s *Surface) AcquireTexture() (renderer.SurfaceTexture, error) {
	vc := s.context
	if s.swapchain == nil || len(s.frames) == 0 {
		return nil, core.ErrSurfaceUnavailable
	}
	if s.outdated {
		return nil, core.ErrSurfaceOutdated
	}

	frame := s.frames[s.frameIndex]
	if err := frame.wait(vc); err != nil {
		core.LogWarn(err.Error())
		return nil, err
	}

	var imageIndex uint32
	res := vk.AcquireNextImage(vc.Device.LogicalDevice, s.swapchain.Handle, math.MaxUint64, frame.imageAvailable, vk.NullFence, &imageIndex)
	if res != vk.Success && res != vk.Suboptimal {
		if res == vk.ErrorOutOfDate {
			s.outdated = true
		}
		return nil, resultError("vkAcquireNextImageKHR", res)
	}

	// Make sure a previous frame is not still rendering to this image.
	if inFlight := s.swapchain.ImagesInFlight[imageIndex]; inFlight != nil && inFlight != frame.inFlight {
		inFlight.FenceWait(vc, math.MaxUint64)
	}
	s.swapchain.ImagesInFlight[imageIndex] = frame.inFlight

	frame.imageIndex = imageIndex
	frame.submitted = false
	vc.currentFrame = frame

	return &SurfaceTexture{
		surface: s,
		frame:   frame,
		view: &TextureView{
			swapchain:  s.swapchain,
			imageIndex: imageIndex,
		},
	}, nil
}

func (s *Surface) destroyFrames() {
	for _, f := range s.frames {
		f.destroy(s.context)
	}
	s.frames = nil
}

func (s *Surface) Release() {
	vc := s.context
	if vc.Device != nil && vc.Device.LogicalDevice != nil {
		vk.DeviceWaitIdle(vc.Device.LogicalDevice)
		if s.swapchain != nil {
			s.swapchain.destroy(vc)
			s.swapchain = nil
		}
		s.destroyFrames()
	}
	vc.currentFrame = nil
	if s.handle != vk.NullSurface && vc.Instance != nil {
		core.LogDebug("Destroying Vulkan surface...")
		vk.DestroySurface(vc.Instance, s.handle, vc.Allocator)
		s.handle = vk.NullSurface
	}
}

/** @brief A swapchain image acquired for one frame. */
type SurfaceTexture struct {
	surface   *Surface
	frame     *frameSync
	view      *TextureView
	presented bool
}

func (t *SurfaceTexture) View() renderer.TextureView {
	return t.view
}

// Present queues the image for display once the frame's submission has
// finished. A frame without any submission still signals its semaphores.
func (t *SurfaceTexture) Present() error {
	s := t.surface
	vc := s.context
	if t.presented {
		return nil
	}
	if !t.frame.submitted {
		if err := t.frame.submit(vc, nil); err != nil {
			return err
		}
	}

	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{t.frame.renderFinished},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{s.swapchain.Handle},
		PImageIndices:      []uint32{t.frame.imageIndex},
	}
	var res vk.Result
	vc.locks.SafeQueueCall(vc.Device.PresentQueueIndex, func() error {
		res = vk.QueuePresent(vc.Device.PresentQueue, &presentInfo)
		return nil
	})

	t.presented = true
	vc.currentFrame = nil
	s.frameIndex = (s.frameIndex + 1) % len(s.frames)

	switch res {
	case vk.Success:
		return nil
	case vk.Suboptimal, vk.ErrorOutOfDate:
		// Swapchain no longer matches the window, the next acquire reports it.
		s.outdated = true
		return nil
	}
	err := resultError("vkQueuePresentKHR", res)
	core.LogError(err.Error())
	return err
}

func (t *SurfaceTexture) Release() {
	if !t.presented {
		core.LogDebug("surface texture %d released without being presented", t.frame.imageIndex)
	}
}

/** @brief The view of one swapchain image, with its framebuffer. */
type TextureView struct {
	swapchain  *VulkanSwapchain
	imageIndex uint32
}

func (v *TextureView) framebuffer() *VulkanFramebuffer {
	return v.swapchain.Framebuffers[v.imageIndex]
}

func (v *TextureView) Release() {}

func createSwapchain(vc *VulkanContext, surface vk.Surface, support *VulkanSwapchainSupportInfo, config *renderer.SurfaceConfiguration, old *VulkanSwapchain) (*VulkanSwapchain, error) {
	swapchain := &VulkanSwapchain{
		ImageFormat: fromSurfaceFormat(config.Format),
	}
	capabilities := support.Capabilities

	// Swapchain extent
	swapchainExtent := vk.Extent2D{Width: config.Width, Height: config.Height}
	if capabilities.CurrentExtent.Width != math.MaxUint32 {
		swapchainExtent = capabilities.CurrentExtent
	}
	// Clamp to the value allowed by the GPU.
	swapchainExtent.Width = emath.Clamp(swapchainExtent.Width, capabilities.MinImageExtent.Width, capabilities.MaxImageExtent.Width)
	swapchainExtent.Height = emath.Clamp(swapchainExtent.Height, capabilities.MinImageExtent.Height, capabilities.MaxImageExtent.Height)
	swapchain.Extent = swapchainExtent

	imageCount := capabilities.MinImageCount + 1
	if capabilities.MaxImageCount > 0 && imageCount > capabilities.MaxImageCount {
		imageCount = capabilities.MaxImageCount
	}

	swapchainCreateInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          surface,
		MinImageCount:    imageCount,
		ImageFormat:      swapchain.ImageFormat.Format,
		ImageColorSpace:  swapchain.ImageFormat.ColorSpace,
		ImageExtent:      swapchainExtent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     capabilities.CurrentTransform,
		CompositeAlpha:   fromAlphaMode(config.AlphaMode),
		PresentMode:      fromPresentMode(config.PresentMode),
		Clipped:          vk.True,
	}
	if old != nil {
		swapchainCreateInfo.OldSwapchain = old.Handle
	}

	// Setup the queue family indices
	if vc.Device.GraphicsQueueIndex != vc.Device.PresentQueueIndex {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeConcurrent
		swapchainCreateInfo.QueueFamilyIndexCount = 2
		swapchainCreateInfo.PQueueFamilyIndices = []uint32{vc.Device.GraphicsQueueIndex, vc.Device.PresentQueueIndex}
	} else {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	if res := vk.CreateSwapchain(vc.Device.LogicalDevice, &swapchainCreateInfo, vc.Allocator, &swapchain.Handle); res != vk.Success {
		err := resultError("vkCreateSwapchainKHR", res)
		core.LogError(err.Error())
		return nil, err
	}

	// Images
	var count uint32
	if res := vk.GetSwapchainImages(vc.Device.LogicalDevice, swapchain.Handle, &count, nil); res != vk.Success {
		swapchain.destroy(vc)
		err := resultError("vkGetSwapchainImagesKHR", res)
		core.LogError(err.Error())
		return nil, err
	}
	swapchain.Images = make([]vk.Image, count)
	if res := vk.GetSwapchainImages(vc.Device.LogicalDevice, swapchain.Handle, &count, swapchain.Images); res != vk.Success {
		swapchain.destroy(vc)
		err := resultError("vkGetSwapchainImagesKHR", res)
		core.LogError(err.Error())
		return nil, err
	}
	swapchain.ImagesInFlight = make([]*VulkanFence, count)

	// Views
	for _, image := range swapchain.Images {
		viewInfo := vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    image,
			ViewType: vk.ImageViewType2d,
			Format:   swapchain.ImageFormat.Format,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
		}
		var view vk.ImageView
		if res := vk.CreateImageView(vc.Device.LogicalDevice, &viewInfo, vc.Allocator, &view); res != vk.Success {
			swapchain.destroy(vc)
			err := resultError("vkCreateImageView", res)
			core.LogError(err.Error())
			return nil, err
		}
		swapchain.Views = append(swapchain.Views, view)
	}

	var err error
	if swapchain.ClearRenderpass, err = RenderpassCreate(vc, swapchain.ImageFormat.Format, renderer.LoadOpClear); err != nil {
		swapchain.destroy(vc)
		return nil, err
	}
	if swapchain.LoadRenderpass, err = RenderpassCreate(vc, swapchain.ImageFormat.Format, renderer.LoadOpLoad); err != nil {
		swapchain.destroy(vc)
		return nil, err
	}

	for _, view := range swapchain.Views {
		fb, err := FramebufferCreate(vc, swapchain.ClearRenderpass, swapchainExtent.Width, swapchainExtent.Height, []vk.ImageView{view})
		if err != nil {
			swapchain.destroy(vc)
			return nil, err
		}
		swapchain.Framebuffers = append(swapchain.Framebuffers, fb)
	}

	core.LogDebug("Swapchain created successfully.")
	return swapchain, nil
}

func (vs *VulkanSwapchain) renderpass(op renderer.LoadOp) *VulkanRenderpass {
	if op == renderer.LoadOpLoad {
		return vs.LoadRenderpass
	}
	return vs.ClearRenderpass
}

func (vs *VulkanSwapchain) destroy(vc *VulkanContext) {
	for _, fb := range vs.Framebuffers {
		fb.Destroy(vc)
	}
	vs.Framebuffers = nil
	if vs.ClearRenderpass != nil {
		vs.ClearRenderpass.RenderpassDestroy(vc)
	}
	if vs.LoadRenderpass != nil {
		vs.LoadRenderpass.RenderpassDestroy(vc)
	}

	// Only destroy the views, not the images, since those are owned by the swapchain and are thus
	// destroyed when it is.
	for _, view := range vs.Views {
		vk.DestroyImageView(vc.Device.LogicalDevice, view, vc.Allocator)
	}
	vs.Views = nil

	if vs.Handle != vk.NullSwapchain {
		vk.DestroySwapchain(vc.Device.LogicalDevice, vs.Handle, vc.Allocator)
		vs.Handle = vk.NullSwapchain
	}
}
