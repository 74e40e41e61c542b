package vulkan

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/showcase/engine/core"
	"github.com/spaghettifunk/showcase/engine/platform"
	"github.com/spaghettifunk/showcase/engine/renderer"
)

const validationLayer = "VK_LAYER_KHRONOS_validation"

var loaderOnce sync.Once
var loaderErr error

/** @brief Creates Vulkan instances for glfw windows. */
type Backend struct {
	ApplicationName string
	// Validation enables the Khronos validation layer and routes its
	// reports into the engine logger.
	Validation bool
}

func New(applicationName string, validation bool) *Backend {
	return &Backend{
		ApplicationName: applicationName,
		Validation:      validation,
	}
}

func (b *Backend) Type() renderer.BackendType {
	return renderer.BackendVulkan
}

func (b *Backend) CreateInstance(window platform.Window) (renderer.Instance, error) {
	handle := window.Handle()
	if handle == nil {
		err := fmt.Errorf("window '%s' has no native handle", window.Title())
		core.LogError(err.Error())
		return nil, err
	}

	loaderOnce.Do(func() {
		procAddr := glfw.GetVulkanGetInstanceProcAddress()
		if procAddr == nil {
			loaderErr = fmt.Errorf("GetInstanceProcAddress is nil")
			return
		}
		vk.SetGetInstanceProcAddr(procAddr)
		loaderErr = vk.Init()
	})
	if loaderErr != nil {
		err := fmt.Errorf("failed to initialize vk: %w", loaderErr)
		core.LogError(err.Error())
		return nil, err
	}

	vc := &VulkanContext{
		// TODO: custom allocator.
		Allocator: nil,
		locks:     NewVulkanLockPool(),
	}

	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 1, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(b.ApplicationName),
		PEngineName:        VulkanSafeString("Showcase"),
	}

	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	// Obtain a list of required extensions
	requiredExtensions := handle.GetRequiredInstanceExtensions()
	if runtime.GOOS == "darwin" {
		requiredExtensions = append(requiredExtensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
		// VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
		createInfo.Flags |= 1
	}

	requiredLayers := []string{}
	if b.Validation {
		requiredExtensions = append(requiredExtensions, vk.ExtDebugReportExtensionName)
		if hasInstanceLayer(validationLayer) {
			requiredLayers = append(requiredLayers, validationLayer)
		} else {
			core.LogWarn("Validation layer %s is not installed, continuing without it.", validationLayer)
		}
	}
	for _, ext := range requiredExtensions {
		core.LogDebug("Required extension: %s", ext)
	}

	createInfo.EnabledExtensionCount = uint32(len(requiredExtensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(requiredExtensions)
	createInfo.EnabledLayerCount = uint32(len(requiredLayers))
	createInfo.PpEnabledLayerNames = VulkanSafeStrings(requiredLayers)

	if res := vk.CreateInstance(&createInfo, vc.Allocator, &vc.Instance); res != vk.Success {
		err := fmt.Errorf("failed in creating the Vulkan Instance with error `%s`", VulkanResultString(res))
		core.LogError(err.Error())
		return nil, err
	}
	if err := vk.InitInstance(vc.Instance); err != nil {
		vk.DestroyInstance(vc.Instance, vc.Allocator)
		core.LogError(err.Error())
		return nil, err
	}
	core.LogInfo("Vulkan Instance created.")

	if b.Validation {
		debugCreateInfo := vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
			PfnCallback: dbgCallbackFunc,
		}
		var dbg vk.DebugReportCallback
		if err := vk.Error(vk.CreateDebugReportCallback(vc.Instance, &debugCreateInfo, vc.Allocator, &dbg)); err != nil {
			core.LogWarn("vk.CreateDebugReportCallback failed with %s", err)
		} else {
			vc.debugMessenger = dbg
			core.LogDebug("Vulkan debugger created.")
		}
	}

	return &Instance{context: vc}, nil
}

func hasInstanceLayer(name string) bool {
	var count uint32
	if res := vk.EnumerateInstanceLayerProperties(&count, nil); res != vk.Success {
		return false
	}
	layers := make([]vk.LayerProperties, count)
	if res := vk.EnumerateInstanceLayerProperties(&count, layers); res != vk.Success {
		return false
	}
	for i := range layers {
		layers[i].Deref()
		if cString(layers[i].LayerName[:]) == name {
			return true
		}
	}
	return false
}

/** @brief A Vulkan instance plus its debug messenger. */
type Instance struct {
	context *VulkanContext
}

func (i *Instance) CreateSurface(window platform.Window) (renderer.Surface, error) {
	core.LogDebug("Creating Vulkan surface...")
	ptr, err := window.Handle().CreateWindowSurface(i.context.Instance, nil)
	if err != nil {
		err = fmt.Errorf("vulkan surface creation failed: %w", err)
		core.LogError(err.Error())
		return nil, err
	}
	core.LogDebug("Vulkan surface created.")
	return &Surface{
		context: i.context,
		handle:  vk.SurfaceFromPointer(ptr),
	}, nil
}

func (i *Instance) RequestAdapter(_ context.Context, opts *renderer.AdapterOptions) (renderer.Adapter, error) {
	var surface vk.Surface = vk.NullSurface
	if opts != nil && opts.CompatibleSurface != nil {
		s, ok := opts.CompatibleSurface.(*Surface)
		if !ok {
			return nil, fmt.Errorf("%w: surface %T does not belong to the vulkan backend", core.ErrNoAdapter, opts.CompatibleSurface)
		}
		surface = s.handle
	}
	pref := renderer.PowerPreferenceDefault
	if opts != nil {
		pref = opts.PowerPreference
	}
	return SelectPhysicalDevice(i.context, surface, pref)
}

func (i *Instance) Release() {
	vc := i.context
	if vc.Instance == nil {
		return
	}
	if vc.debugMessenger != vk.NullDebugReportCallback {
		core.LogDebug("Destroying Vulkan debugger...")
		vk.DestroyDebugReportCallback(vc.Instance, vc.debugMessenger, vc.Allocator)
		vc.debugMessenger = vk.NullDebugReportCallback
	}
	core.LogDebug("Destroying Vulkan instance...")
	vk.DestroyInstance(vc.Instance, vc.Allocator)
	vc.Instance = nil
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("ERROR: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		core.LogWarn("PERFORMANCE WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	default:
		core.LogDebug("INFORMATION: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}
