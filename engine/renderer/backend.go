package renderer

import (
	"context"

	"github.com/spaghettifunk/showcase/engine/platform"
)

type BackendType uint8

const (
	BackendVulkan BackendType = iota
	BackendWebGPU
)

func (b BackendType) String() string {
	switch b {
	case BackendVulkan:
		return "vulkan"
	case BackendWebGPU:
		return "webgpu"
	}
	return "unknown"
}

// Backend creates GPU instances. Instances are created per window
// because some APIs need the window to know which extensions to enable.
type Backend interface {
	Type() BackendType
	CreateInstance(window platform.Window) (Instance, error)
}

type Instance interface {
	CreateSurface(window platform.Window) (Surface, error)
	// RequestAdapter returns core.ErrNoAdapter when nothing matches.
	RequestAdapter(ctx context.Context, opts *AdapterOptions) (Adapter, error)
	Release()
}

type Adapter interface {
	Info() AdapterInfo
	// RequestDevice returns core.ErrNoDevice when the device cannot be opened.
	RequestDevice(ctx context.Context, desc *DeviceDescriptor) (Device, Queue, error)
	Release()
}

type Surface interface {
	Capabilities(adapter Adapter) SurfaceCapabilities
	Configure(adapter Adapter, device Device, config *SurfaceConfiguration) error
	// AcquireTexture returns one of the core.ErrSurface* errors when no
	// frame is available.
	AcquireTexture() (SurfaceTexture, error)
	Release()
}

type SurfaceTexture interface {
	View() TextureView
	Present() error
	Release()
}

type Device interface {
	CreateBufferInit(desc *BufferInitDescriptor) (Buffer, error)
	CreateBindGroupLayout(desc *BindGroupLayoutDescriptor) (BindGroupLayout, error)
	CreateBindGroup(desc *BindGroupDescriptor) (BindGroup, error)
	CreateCommandEncoder(label string) (CommandEncoder, error)
	Release()
}

type Queue interface {
	Submit(buffers ...CommandBuffer) error
}

type CommandEncoder interface {
	CopyBufferToBuffer(src Buffer, srcOffset uint64, dst Buffer, dstOffset uint64, size uint64) error
	BeginRenderPass(desc *RenderPassDescriptor) (RenderPass, error)
	Finish() (CommandBuffer, error)
	Release()
}

type RenderPass interface {
	End() error
}

type Buffer interface {
	Size() uint64
	Usage() BufferUsage
	Release()
}

type BindGroupLayout interface {
	Release()
}

type BindGroup interface {
	Release()
}

type CommandBuffer interface {
	Release()
}

type TextureView interface {
	Release()
}
