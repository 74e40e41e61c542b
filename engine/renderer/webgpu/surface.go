package webgpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/spaghettifunk/showcase/engine/core"
	"github.com/spaghettifunk/showcase/engine/renderer"
)

type Surface struct {
	surface    *wgpu.Surface
	configured bool
}

func (s *Surface) Capabilities(adapter renderer.Adapter) renderer.SurfaceCapabilities {
	caps := renderer.SurfaceCapabilities{}
	a, ok := adapter.(*Adapter)
	if !ok {
		return caps
	}
	native := s.surface.GetCapabilities(a.adapter)
	for _, f := range native.Formats {
		caps.Formats = append(caps.Formats, toSurfaceFormat(f))
	}
	for _, m := range native.PresentModes {
		if mode, ok := toPresentMode(m); ok {
			caps.PresentModes = append(caps.PresentModes, mode)
		}
	}
	for _, m := range native.AlphaModes {
		caps.AlphaModes = append(caps.AlphaModes, toAlphaMode(m))
	}
	return caps
}

func (s *Surface) Configure(adapter renderer.Adapter, device renderer.Device, config *renderer.SurfaceConfiguration) error {
	a, ok := adapter.(*Adapter)
	if !ok {
		return fmt.Errorf("%w: adapter %T does not belong to the webgpu backend", core.ErrUnknown, adapter)
	}
	d, ok := device.(*Device)
	if !ok {
		return fmt.Errorf("%w: device %T does not belong to the webgpu backend", core.ErrUnknown, device)
	}
	viewFormats := make([]wgpu.TextureFormat, len(config.ViewFormats))
	for i, f := range config.ViewFormats {
		viewFormats[i] = fromSurfaceFormat(f)
	}
	// Frame latency is left to wgpu-native, the binding does not expose it.
	s.surface.Configure(a.adapter, d.device, &wgpu.SurfaceConfiguration{
		Usage:       fromTextureUsage(config.Usage),
		Format:      fromSurfaceFormat(config.Format),
		Width:       config.Width,
		Height:      config.Height,
		PresentMode: fromPresentMode(config.PresentMode),
		AlphaMode:   fromAlphaMode(config.AlphaMode),
		ViewFormats: viewFormats,
	})
	s.configured = true
	core.LogDebug("Surface configured: %dx%d, %s, %s.", config.Width, config.Height, config.Format, config.PresentMode)
	return nil
}

// AcquireTexture reports every acquire failure as outdated since the
// binding does not expose the status. The caller reconfigures and
// retries once.
func (s *Surface) AcquireTexture() (renderer.SurfaceTexture, error) {
	if !s.configured {
		return nil, core.ErrSurfaceUnavailable
	}
	texture, err := s.surface.GetCurrentTexture()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrSurfaceOutdated, err)
	}
	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return nil, fmt.Errorf("failed to create a view of the surface texture: %w", err)
	}
	return &SurfaceTexture{surface: s, texture: texture, view: &TextureView{view: view}}, nil
}

func (s *Surface) Release() {
	if s.surface != nil {
		s.surface.Release()
		s.surface = nil
	}
	s.configured = false
}

type SurfaceTexture struct {
	surface   *Surface
	texture   *wgpu.Texture
	view      *TextureView
	presented bool
}

func (t *SurfaceTexture) View() renderer.TextureView {
	return t.view
}

func (t *SurfaceTexture) Present() error {
	if t.presented {
		return nil
	}
	t.surface.surface.Present()
	t.presented = true
	return nil
}

func (t *SurfaceTexture) Release() {
	t.view.Release()
	if t.texture != nil {
		t.texture.Release()
		t.texture = nil
	}
}

type TextureView struct {
	view *wgpu.TextureView
}

func (v *TextureView) Release() {
	if v.view != nil {
		v.view.Release()
		v.view = nil
	}
}
