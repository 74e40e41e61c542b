// Package gputest provides recording implementations of the renderer
// backend interfaces. Every call is appended to a shared Recorder so
// tests can assert the order GPU work was issued in.
package gputest

import (
	"context"
	"fmt"

	"github.com/spaghettifunk/showcase/engine/core"
	"github.com/spaghettifunk/showcase/engine/platform"
	"github.com/spaghettifunk/showcase/engine/renderer"
)

type Recorder struct {
	Calls []string
}

func (r *Recorder) record(format string, args ...any) {
	r.Calls = append(r.Calls, fmt.Sprintf(format, args...))
}

// Backend hands out a single preconfigured Instance.
type Backend struct {
	Instance  *Instance
	CreateErr error
	Windows   []platform.Window
}

// NewBackend wires a complete fake stack that supports one sRGB format.
func NewBackend() *Backend {
	rec := &Recorder{}
	device := &Device{Recorder: rec}
	return &Backend{
		Instance: &Instance{
			Recorder: rec,
			Surface: &Surface{
				Recorder: rec,
				Caps: renderer.SurfaceCapabilities{
					Formats: []renderer.SurfaceFormat{
						{Code: 23, Name: "Bgra8Unorm"},
						{Code: 24, Srgb: true, Name: "Bgra8UnormSrgb"},
					},
					PresentModes: []renderer.PresentMode{renderer.PresentModeFifo, renderer.PresentModeMailbox},
					AlphaModes:   []renderer.AlphaMode{renderer.AlphaModeOpaque, renderer.AlphaModePreMultiplied},
				},
			},
			Adapter: &Adapter{
				Recorder: rec,
				Device:   device,
				Queue:    &Queue{Recorder: rec},
			},
		},
	}
}

func (b *Backend) Recorder() *Recorder {
	return b.Instance.Recorder
}

func (b *Backend) Device() *Device {
	return b.Instance.Adapter.Device
}

func (b *Backend) Surface() *Surface {
	return b.Instance.Surface
}

func (b *Backend) Queue() *Queue {
	return b.Instance.Adapter.Queue
}

func (b *Backend) Type() renderer.BackendType {
	return renderer.BackendVulkan
}

func (b *Backend) CreateInstance(window platform.Window) (renderer.Instance, error) {
	b.Windows = append(b.Windows, window)
	if b.CreateErr != nil {
		return nil, b.CreateErr
	}
	b.Instance.record("instance.create")
	return b.Instance, nil
}

type Instance struct {
	*Recorder
	Surface    *Surface
	Adapter    *Adapter
	SurfaceErr error
	// AdapterErr simulates a machine without a compatible adapter.
	AdapterErr     error
	AdapterOptions *renderer.AdapterOptions
	Released       bool
}

func (i *Instance) CreateSurface(window platform.Window) (renderer.Surface, error) {
	i.record("instance.create_surface")
	if i.SurfaceErr != nil {
		return nil, i.SurfaceErr
	}
	i.Surface.Window = window
	return i.Surface, nil
}

func (i *Instance) RequestAdapter(_ context.Context, opts *renderer.AdapterOptions) (renderer.Adapter, error) {
	i.record("instance.request_adapter")
	i.AdapterOptions = opts
	if i.AdapterErr != nil {
		return nil, i.AdapterErr
	}
	return i.Adapter, nil
}

func (i *Instance) Release() {
	i.record("instance.release")
	i.Released = true
}

type Adapter struct {
	*Recorder
	Device    *Device
	Queue     *Queue
	DeviceErr error
	Released  bool
}

func (a *Adapter) Info() renderer.AdapterInfo {
	return renderer.AdapterInfo{Name: "Fake GPU", Vendor: "gputest", DeviceType: "virtual", Backend: "fake"}
}

func (a *Adapter) RequestDevice(_ context.Context, desc *renderer.DeviceDescriptor) (renderer.Device, renderer.Queue, error) {
	a.record("adapter.request_device")
	if a.DeviceErr != nil {
		return nil, nil, a.DeviceErr
	}
	return a.Device, a.Queue, nil
}

func (a *Adapter) Release() {
	a.record("adapter.release")
	a.Released = true
}

type Surface struct {
	*Recorder
	Window  platform.Window
	Caps    renderer.SurfaceCapabilities
	Configs []renderer.SurfaceConfiguration
	// ConfigureErr is returned by every Configure call when set.
	ConfigureErr error
	// AcquireErrs are returned, in order, before textures are handed out.
	AcquireErrs []error
	Textures    []*SurfaceTexture
	Released    bool
}

func (s *Surface) Capabilities(renderer.Adapter) renderer.SurfaceCapabilities {
	s.record("surface.capabilities")
	return s.Caps
}

func (s *Surface) Configure(_ renderer.Adapter, _ renderer.Device, config *renderer.SurfaceConfiguration) error {
	s.record("surface.configure %dx%d", config.Width, config.Height)
	if s.ConfigureErr != nil {
		return s.ConfigureErr
	}
	s.Configs = append(s.Configs, *config)
	return nil
}

// LastConfig is the configuration most recently applied.
func (s *Surface) LastConfig() (renderer.SurfaceConfiguration, bool) {
	if len(s.Configs) == 0 {
		return renderer.SurfaceConfiguration{}, false
	}
	return s.Configs[len(s.Configs)-1], true
}

func (s *Surface) AcquireTexture() (renderer.SurfaceTexture, error) {
	s.record("surface.acquire")
	if len(s.AcquireErrs) > 0 {
		err := s.AcquireErrs[0]
		s.AcquireErrs = s.AcquireErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	t := &SurfaceTexture{Recorder: s.Recorder, view: &TextureView{}}
	s.Textures = append(s.Textures, t)
	return t, nil
}

func (s *Surface) Release() {
	s.record("surface.release")
	s.Released = true
}

type SurfaceTexture struct {
	*Recorder
	view      *TextureView
	Presented bool
	Released  bool
}

func (t *SurfaceTexture) View() renderer.TextureView {
	return t.view
}

func (t *SurfaceTexture) Present() error {
	t.record("texture.present")
	t.Presented = true
	return nil
}

func (t *SurfaceTexture) Release() {
	t.Released = true
}

type TextureView struct {
	Released bool
}

func (v *TextureView) Release() {
	v.Released = true
}

type Device struct {
	*Recorder
	Buffers    []*Buffer
	Layouts    []*BindGroupLayout
	BindGroups []*BindGroup
	Encoders   []*CommandEncoder
	// BufferErr fails every buffer creation when set.
	BufferErr error
	Released  bool
}

func (d *Device) CreateBufferInit(desc *renderer.BufferInitDescriptor) (renderer.Buffer, error) {
	d.record("device.create_buffer %s", desc.Label)
	if d.BufferErr != nil {
		return nil, d.BufferErr
	}
	b := &Buffer{
		Label:    desc.Label,
		Contents: append([]byte(nil), desc.Contents...),
		usage:    desc.Usage,
	}
	d.Buffers = append(d.Buffers, b)
	return b, nil
}

func (d *Device) CreateBindGroupLayout(desc *renderer.BindGroupLayoutDescriptor) (renderer.BindGroupLayout, error) {
	d.record("device.create_bind_group_layout %s", desc.Label)
	l := &BindGroupLayout{Desc: *desc}
	d.Layouts = append(d.Layouts, l)
	return l, nil
}

func (d *Device) CreateBindGroup(desc *renderer.BindGroupDescriptor) (renderer.BindGroup, error) {
	d.record("device.create_bind_group %s", desc.Label)
	g := &BindGroup{Desc: *desc}
	d.BindGroups = append(d.BindGroups, g)
	return g, nil
}

func (d *Device) CreateCommandEncoder(label string) (renderer.CommandEncoder, error) {
	d.record("device.create_command_encoder %s", label)
	e := &CommandEncoder{Recorder: d.Recorder, Label: label}
	d.Encoders = append(d.Encoders, e)
	return e, nil
}

func (d *Device) Release() {
	d.record("device.release")
	d.Released = true
}

type Queue struct {
	*Recorder
	Submitted []*CommandBuffer
}

func (q *Queue) Submit(buffers ...renderer.CommandBuffer) error {
	for _, b := range buffers {
		cb, ok := b.(*CommandBuffer)
		if !ok {
			return fmt.Errorf("%w: foreign command buffer %T", core.ErrUnknown, b)
		}
		q.Submitted = append(q.Submitted, cb)
	}
	q.record("queue.submit %d", len(buffers))
	return nil
}

type Buffer struct {
	Label    string
	Contents []byte
	usage    renderer.BufferUsage
	Released bool
}

func (b *Buffer) Size() uint64                { return uint64(len(b.Contents)) }
func (b *Buffer) Usage() renderer.BufferUsage { return b.usage }
func (b *Buffer) Release()                    { b.Released = true }

type BindGroupLayout struct {
	Desc     renderer.BindGroupLayoutDescriptor
	Released bool
}

func (l *BindGroupLayout) Release() { l.Released = true }

type BindGroup struct {
	Desc     renderer.BindGroupDescriptor
	Released bool
}

func (g *BindGroup) Release() { g.Released = true }

type CommandKind uint8

const (
	CommandCopyBufferToBuffer CommandKind = iota
	CommandBeginRenderPass
	CommandEndRenderPass
)

func (k CommandKind) String() string {
	switch k {
	case CommandCopyBufferToBuffer:
		return "copy_buffer_to_buffer"
	case CommandBeginRenderPass:
		return "begin_render_pass"
	case CommandEndRenderPass:
		return "end_render_pass"
	}
	return "unknown"
}

type Command struct {
	Kind      CommandKind
	Src       *Buffer
	SrcOffset uint64
	Dst       *Buffer
	DstOffset uint64
	Size      uint64
	Pass      *renderer.RenderPassDescriptor
}

type CommandEncoder struct {
	*Recorder
	Label    string
	Commands []Command
	Finished bool
	Released bool
}

func (e *CommandEncoder) CopyBufferToBuffer(src renderer.Buffer, srcOffset uint64, dst renderer.Buffer, dstOffset uint64, size uint64) error {
	s, ok := src.(*Buffer)
	if !ok {
		return fmt.Errorf("%w: foreign buffer %T", core.ErrUnknown, src)
	}
	d, ok := dst.(*Buffer)
	if !ok {
		return fmt.Errorf("%w: foreign buffer %T", core.ErrUnknown, dst)
	}
	e.record("encoder.copy %s -> %s (%d bytes)", s.Label, d.Label, size)
	e.Commands = append(e.Commands, Command{
		Kind:      CommandCopyBufferToBuffer,
		Src:       s,
		SrcOffset: srcOffset,
		Dst:       d,
		DstOffset: dstOffset,
		Size:      size,
	})
	return nil
}

func (e *CommandEncoder) BeginRenderPass(desc *renderer.RenderPassDescriptor) (renderer.RenderPass, error) {
	e.record("encoder.begin_render_pass")
	e.Commands = append(e.Commands, Command{Kind: CommandBeginRenderPass, Pass: desc})
	return &RenderPass{encoder: e}, nil
}

func (e *CommandEncoder) Finish() (renderer.CommandBuffer, error) {
	e.record("encoder.finish")
	e.Finished = true
	return &CommandBuffer{Commands: append([]Command(nil), e.Commands...)}, nil
}

func (e *CommandEncoder) Release() {
	e.Released = true
}

// Kinds lists the recorded command kinds in order.
func (e *CommandEncoder) Kinds() []CommandKind {
	kinds := make([]CommandKind, 0, len(e.Commands))
	for _, c := range e.Commands {
		kinds = append(kinds, c.Kind)
	}
	return kinds
}

type RenderPass struct {
	encoder *CommandEncoder
}

func (p *RenderPass) End() error {
	p.encoder.record("encoder.end_render_pass")
	p.encoder.Commands = append(p.encoder.Commands, Command{Kind: CommandEndRenderPass})
	return nil
}

type CommandBuffer struct {
	Commands []Command
	Released bool
}

func (c *CommandBuffer) Release() {
	c.Released = true
}
