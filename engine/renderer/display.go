package renderer

import (
	"context"
	"errors"
	"fmt"

	"github.com/spaghettifunk/showcase/engine/core"
	"github.com/spaghettifunk/showcase/engine/platform"
)

/** @brief Options used when the Display acquires its GPU resources. */
type DisplayOptions struct {
	PowerPreference      PowerPreference
	ForceFallbackAdapter bool
	/** @brief Maximum frames in flight, defaults to 2. */
	FrameLatency uint32
}

func DefaultDisplayOptions() DisplayOptions {
	return DisplayOptions{
		PowerPreference: PowerPreferenceDefault,
		FrameLatency:    2,
	}
}

/**
 * @brief Owns the GPU device, its queue and the presentation surface
 * bound to a window, together with the surface configuration.
 */
type Display struct {
	window   platform.Window
	instance Instance
	surface  Surface
	adapter  Adapter
	device   Device
	queue    Queue
	config   SurfaceConfiguration
}

// NewDisplay acquires an instance, surface, adapter and device for window
// and configures the surface for the window's current size. It blocks
// until the device is ready.
func NewDisplay(ctx context.Context, backend Backend, window platform.Window, opts DisplayOptions) (*Display, error) {
	if opts.FrameLatency == 0 {
		opts.FrameLatency = 2
	}

	instance, err := backend.CreateInstance(window)
	if err != nil {
		err = fmt.Errorf("failed to create %s instance: %w", backend.Type(), err)
		core.LogError(err.Error())
		return nil, err
	}

	surface, err := instance.CreateSurface(window)
	if err != nil {
		instance.Release()
		err = fmt.Errorf("failed to create surface: %w", err)
		core.LogError(err.Error())
		return nil, err
	}

	adapter, err := instance.RequestAdapter(ctx, &AdapterOptions{
		CompatibleSurface:    surface,
		PowerPreference:      opts.PowerPreference,
		ForceFallbackAdapter: opts.ForceFallbackAdapter,
	})
	if err != nil {
		surface.Release()
		instance.Release()
		if !errors.Is(err, core.ErrNoAdapter) {
			err = fmt.Errorf("%w: %w", core.ErrNoAdapter, err)
		}
		core.LogError(err.Error())
		return nil, err
	}
	info := adapter.Info()
	core.LogInfo("using adapter '%s' (%s, %s)", info.Name, info.DeviceType, info.Backend)

	device, queue, err := adapter.RequestDevice(ctx, &DeviceDescriptor{Label: "Display Device"})
	if err != nil {
		adapter.Release()
		surface.Release()
		instance.Release()
		if !errors.Is(err, core.ErrNoDevice) {
			err = fmt.Errorf("%w: %w", core.ErrNoDevice, err)
		}
		core.LogError(err.Error())
		return nil, err
	}

	caps := surface.Capabilities(adapter)
	if len(caps.Formats) == 0 || len(caps.PresentModes) == 0 || len(caps.AlphaModes) == 0 {
		device.Release()
		adapter.Release()
		surface.Release()
		instance.Release()
		err := fmt.Errorf("surface is not supported by adapter '%s'", info.Name)
		core.LogError(err.Error())
		return nil, err
	}

	width, height := window.InnerSize()
	d := &Display{
		window:   window,
		instance: instance,
		surface:  surface,
		adapter:  adapter,
		device:   device,
		queue:    queue,
		config: SurfaceConfiguration{
			Usage:                      TextureUsageRenderAttachment,
			Format:                     PreferredFormat(caps.Formats),
			Width:                      width,
			Height:                     height,
			PresentMode:                caps.PresentModes[0],
			AlphaMode:                  caps.AlphaModes[0],
			ViewFormats:                []SurfaceFormat{},
			DesiredMaximumFrameLatency: opts.FrameLatency,
		},
	}
	core.LogDebug("surface format %s, present mode %s, alpha mode %s", d.config.Format, d.config.PresentMode, d.config.AlphaMode)

	if d.hasArea() {
		if err := d.configure(); err != nil {
			d.Release()
			return nil, err
		}
	}
	return d, nil
}

// PreferredFormat picks the first sRGB format, or the first format when
// none is sRGB.
func PreferredFormat(formats []SurfaceFormat) SurfaceFormat {
	for _, f := range formats {
		if f.Srgb {
			return f
		}
	}
	return formats[0]
}

// Resize stores the new size and reconfigures the surface. A zero sized
// window (minimized) keeps the size but leaves the surface alone until it
// has an area again.
func (d *Display) Resize(width, height uint32) error {
	d.config.Width = width
	d.config.Height = height
	if !d.hasArea() {
		core.LogDebug("window has no area, surface configuration deferred")
		return nil
	}
	return d.configure()
}

// AcquireFrame returns the next surface texture to render into. An
// outdated or lost surface is reconfigured and acquired once more.
func (d *Display) AcquireFrame() (SurfaceTexture, error) {
	if !d.hasArea() {
		return nil, core.ErrSurfaceUnavailable
	}

	texture, err := d.surface.AcquireTexture()
	if errors.Is(err, core.ErrSurfaceOutdated) || errors.Is(err, core.ErrSurfaceLost) {
		core.LogWarn("%s, reconfiguring surface", err)
		if err := d.configure(); err != nil {
			return nil, err
		}
		texture, err = d.surface.AcquireTexture()
	}
	if err != nil {
		err = fmt.Errorf("failed to acquire surface texture: %w", err)
		core.LogError(err.Error())
		return nil, err
	}
	return texture, nil
}

func (d *Display) configure() error {
	if err := d.surface.Configure(d.adapter, d.device, &d.config); err != nil {
		err = fmt.Errorf("failed to configure surface (%dx%d): %w", d.config.Width, d.config.Height, err)
		core.LogError(err.Error())
		return err
	}
	return nil
}

func (d *Display) hasArea() bool {
	return d.config.Width > 0 && d.config.Height > 0
}

func (d *Display) Window() platform.Window {
	return d.window
}

func (d *Display) Surface() Surface {
	return d.surface
}

// Config returns a copy of the current surface configuration.
func (d *Display) Config() SurfaceConfiguration {
	return d.config
}

func (d *Display) Device() Device {
	return d.device
}

func (d *Display) Queue() Queue {
	return d.queue
}

// Release destroys the surface, device and instance. The Display must
// not be used afterwards.
func (d *Display) Release() {
	if d.surface != nil {
		d.surface.Release()
		d.surface = nil
	}
	if d.device != nil {
		d.device.Release()
		d.device = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
}
