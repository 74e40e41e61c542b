package webgpu

import (
	"context"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/spaghettifunk/showcase/engine/core"
	"github.com/spaghettifunk/showcase/engine/platform"
	"github.com/spaghettifunk/showcase/engine/renderer"
)

/** @brief Creates WebGPU instances through wgpu-native. */
type Backend struct{}

func New() *Backend {
	return &Backend{}
}

func (b *Backend) Type() renderer.BackendType {
	return renderer.BackendWebGPU
}

func (b *Backend) CreateInstance(window platform.Window) (renderer.Instance, error) {
	instance := wgpu.CreateInstance(nil)
	if instance == nil {
		err := fmt.Errorf("failed to create the WebGPU instance")
		core.LogError(err.Error())
		return nil, err
	}
	core.LogInfo("WebGPU instance created.")
	return &Instance{instance: instance}, nil
}

type Instance struct {
	instance *wgpu.Instance
}

func (i *Instance) CreateSurface(window platform.Window) (renderer.Surface, error) {
	handle := window.Handle()
	if handle == nil {
		err := fmt.Errorf("window '%s' has no native handle", window.Title())
		core.LogError(err.Error())
		return nil, err
	}
	surface := i.instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(handle))
	if surface == nil {
		err := fmt.Errorf("failed to create a WebGPU surface for window '%s'", window.Title())
		core.LogError(err.Error())
		return nil, err
	}
	return &Surface{surface: surface}, nil
}

func (i *Instance) RequestAdapter(_ context.Context, opts *renderer.AdapterOptions) (renderer.Adapter, error) {
	options := &wgpu.RequestAdapterOptions{}
	if opts != nil {
		options.PowerPreference = fromPowerPreference(opts.PowerPreference)
		options.ForceFallbackAdapter = opts.ForceFallbackAdapter
		if opts.CompatibleSurface != nil {
			s, ok := opts.CompatibleSurface.(*Surface)
			if !ok {
				return nil, fmt.Errorf("%w: surface %T does not belong to the webgpu backend", core.ErrNoAdapter, opts.CompatibleSurface)
			}
			options.CompatibleSurface = s.surface
		}
	}
	adapter, err := i.instance.RequestAdapter(options)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrNoAdapter, err)
	}
	a := &Adapter{adapter: adapter}
	info := a.Info()
	core.LogInfo("Selected adapter: '%s' (%s, %s).", info.Name, info.DeviceType, info.Backend)
	return a, nil
}

func (i *Instance) Release() {
	if i.instance != nil {
		i.instance.Release()
		i.instance = nil
	}
}

type Adapter struct {
	adapter *wgpu.Adapter
}

func (a *Adapter) Info() renderer.AdapterInfo {
	info := a.adapter.GetInfo()
	return renderer.AdapterInfo{
		Name:       info.Name,
		Vendor:     info.VendorName,
		DeviceType: info.AdapterType.String(),
		Backend:    info.BackendType.String(),
	}
}

func (a *Adapter) RequestDevice(_ context.Context, desc *renderer.DeviceDescriptor) (renderer.Device, renderer.Queue, error) {
	device, err := a.adapter.RequestDevice(&wgpu.DeviceDescriptor{Label: desc.Label})
	if err != nil {
		err = fmt.Errorf("%w: %w", core.ErrNoDevice, err)
		core.LogError(err.Error())
		return nil, nil, err
	}
	queue := device.GetQueue()
	core.LogInfo("Device '%s' created.", desc.Label)
	return &Device{device: device, queue: queue}, &Queue{queue: queue}, nil
}

func (a *Adapter) Release() {
	if a.adapter != nil {
		a.adapter.Release()
		a.adapter = nil
	}
}
