package renderer

import "fmt"

// WholeSize binds a buffer from its offset to the end.
const WholeSize = ^uint64(0)

/** @brief A texture format a surface can present. */
type SurfaceFormat struct {
	/** @brief Backend specific format code. */
	Code uint32
	/** @brief Backend specific color space code. */
	ColorSpace uint32
	/** @brief True when the format stores sRGB encoded color. */
	Srgb bool
	Name string
}

func (f SurfaceFormat) String() string {
	if f.Name != "" {
		return f.Name
	}
	return fmt.Sprintf("Format(%d)", f.Code)
}

type PresentMode uint8

const (
	PresentModeFifo PresentMode = iota
	PresentModeFifoRelaxed
	PresentModeImmediate
	PresentModeMailbox
)

func (m PresentMode) String() string {
	switch m {
	case PresentModeFifo:
		return "Fifo"
	case PresentModeFifoRelaxed:
		return "FifoRelaxed"
	case PresentModeImmediate:
		return "Immediate"
	case PresentModeMailbox:
		return "Mailbox"
	}
	return fmt.Sprintf("PresentMode(%d)", uint8(m))
}

type AlphaMode uint8

const (
	AlphaModeAuto AlphaMode = iota
	AlphaModeOpaque
	AlphaModePreMultiplied
	AlphaModePostMultiplied
	AlphaModeInherit
)

func (m AlphaMode) String() string {
	switch m {
	case AlphaModeAuto:
		return "Auto"
	case AlphaModeOpaque:
		return "Opaque"
	case AlphaModePreMultiplied:
		return "PreMultiplied"
	case AlphaModePostMultiplied:
		return "PostMultiplied"
	case AlphaModeInherit:
		return "Inherit"
	}
	return fmt.Sprintf("AlphaMode(%d)", uint8(m))
}

type PowerPreference uint8

const (
	PowerPreferenceDefault PowerPreference = iota
	PowerPreferenceLowPower
	PowerPreferenceHighPerformance
)

type TextureUsage uint32

const (
	TextureUsageCopySrc TextureUsage = 1 << iota
	TextureUsageCopyDst
	TextureUsageTextureBinding
	TextureUsageStorageBinding
	TextureUsageRenderAttachment
)

type BufferUsage uint32

const (
	BufferUsageMapRead BufferUsage = 1 << iota
	BufferUsageMapWrite
	BufferUsageCopySrc
	BufferUsageCopyDst
	BufferUsageIndex
	BufferUsageVertex
	BufferUsageUniform
	BufferUsageStorage
)

func (u BufferUsage) Has(flag BufferUsage) bool {
	return u&flag == flag
}

type ShaderStage uint32

const (
	ShaderStageVertex ShaderStage = 1 << iota
	ShaderStageFragment
	ShaderStageCompute
)

type BufferBindingType uint8

const (
	BufferBindingTypeUniform BufferBindingType = iota
	BufferBindingTypeStorage
	BufferBindingTypeReadOnlyStorage
)

/** @brief What a surface supports on a given adapter. */
type SurfaceCapabilities struct {
	Formats      []SurfaceFormat
	PresentModes []PresentMode
	AlphaModes   []AlphaMode
}

/** @brief How a surface presents its frames. */
type SurfaceConfiguration struct {
	Usage       TextureUsage
	Format      SurfaceFormat
	Width       uint32
	Height      uint32
	PresentMode PresentMode
	AlphaMode   AlphaMode
	ViewFormats []SurfaceFormat
	/** @brief How many frames may be queued ahead of presentation. */
	DesiredMaximumFrameLatency uint32
}

type AdapterOptions struct {
	CompatibleSurface    Surface
	PowerPreference      PowerPreference
	ForceFallbackAdapter bool
}

type AdapterInfo struct {
	Name       string
	Vendor     string
	DeviceType string
	Backend    string
}

type DeviceDescriptor struct {
	Label string
}

type BufferInitDescriptor struct {
	Label    string
	Contents []byte
	Usage    BufferUsage
}

type BufferBindingLayout struct {
	Type             BufferBindingType
	HasDynamicOffset bool
	MinBindingSize   uint64
}

type BindGroupLayoutEntry struct {
	Binding    uint32
	Visibility ShaderStage
	Buffer     BufferBindingLayout
}

type BindGroupLayoutDescriptor struct {
	Label   string
	Entries []BindGroupLayoutEntry
}

type BindGroupEntry struct {
	Binding uint32
	Buffer  Buffer
	Offset  uint64
	Size    uint64
}

type BindGroupDescriptor struct {
	Label   string
	Layout  BindGroupLayout
	Entries []BindGroupEntry
}

type LoadOp uint8

const (
	LoadOpClear LoadOp = iota
	LoadOpLoad
)

func (op LoadOp) String() string {
	if op == LoadOpLoad {
		return "load"
	}
	return "clear"
}

type StoreOp uint8

const (
	StoreOpStore StoreOp = iota
	StoreOpDiscard
)

type Color struct {
	R, G, B, A float64
}

type RenderPassColorAttachment struct {
	View       TextureView
	LoadOp     LoadOp
	StoreOp    StoreOp
	ClearValue Color
}

type RenderPassDescriptor struct {
	Label            string
	ColorAttachments []RenderPassColorAttachment
}
