package webgpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/spaghettifunk/showcase/engine/core"
	"github.com/spaghettifunk/showcase/engine/renderer"
)

type Device struct {
	device *wgpu.Device
	queue  *wgpu.Queue
}

func (d *Device) CreateBufferInit(desc *renderer.BufferInitDescriptor) (renderer.Buffer, error) {
	buffer, err := d.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    desc.Label,
		Contents: desc.Contents,
		Usage:    fromBufferUsage(desc.Usage),
	})
	if err != nil {
		err = fmt.Errorf("failed to create buffer '%s': %w", desc.Label, err)
		core.LogError(err.Error())
		return nil, err
	}
	return &Buffer{buffer: buffer, size: uint64(len(desc.Contents)), usage: desc.Usage}, nil
}

func (d *Device) CreateBindGroupLayout(desc *renderer.BindGroupLayoutDescriptor) (renderer.BindGroupLayout, error) {
	entries := make([]wgpu.BindGroupLayoutEntry, len(desc.Entries))
	for i, e := range desc.Entries {
		entries[i] = wgpu.BindGroupLayoutEntry{
			Binding:    e.Binding,
			Visibility: fromShaderStage(e.Visibility),
			Buffer: wgpu.BufferBindingLayout{
				Type:             fromBindingType(e.Buffer.Type),
				HasDynamicOffset: e.Buffer.HasDynamicOffset,
				MinBindingSize:   e.Buffer.MinBindingSize,
			},
		}
	}
	layout, err := d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   desc.Label,
		Entries: entries,
	})
	if err != nil {
		err = fmt.Errorf("failed to create bind group layout '%s': %w", desc.Label, err)
		core.LogError(err.Error())
		return nil, err
	}
	return &BindGroupLayout{layout: layout}, nil
}

func (d *Device) CreateBindGroup(desc *renderer.BindGroupDescriptor) (renderer.BindGroup, error) {
	layout, ok := desc.Layout.(*BindGroupLayout)
	if !ok {
		return nil, fmt.Errorf("%w: bind group layout %T does not belong to the webgpu backend", core.ErrUnknown, desc.Layout)
	}
	entries := make([]wgpu.BindGroupEntry, len(desc.Entries))
	for i, e := range desc.Entries {
		buffer, ok := e.Buffer.(*Buffer)
		if !ok {
			return nil, fmt.Errorf("%w: buffer %T does not belong to the webgpu backend", core.ErrUnknown, e.Buffer)
		}
		size := e.Size
		if size == renderer.WholeSize {
			size = wgpu.WholeSize
		}
		entries[i] = wgpu.BindGroupEntry{
			Binding: e.Binding,
			Buffer:  buffer.buffer,
			Offset:  e.Offset,
			Size:    size,
		}
	}
	group, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  layout.layout,
		Entries: entries,
	})
	if err != nil {
		err = fmt.Errorf("failed to create bind group '%s': %w", desc.Label, err)
		core.LogError(err.Error())
		return nil, err
	}
	return &BindGroup{group: group}, nil
}

func (d *Device) CreateCommandEncoder(label string) (renderer.CommandEncoder, error) {
	encoder, err := d.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: label})
	if err != nil {
		err = fmt.Errorf("failed to create command encoder '%s': %w", label, err)
		core.LogError(err.Error())
		return nil, err
	}
	return &CommandEncoder{encoder: encoder, label: label}, nil
}

func (d *Device) Release() {
	if d.queue != nil {
		d.queue.Release()
		d.queue = nil
	}
	if d.device != nil {
		d.device.Release()
		d.device = nil
	}
}

type Queue struct {
	queue *wgpu.Queue
}

func (q *Queue) Submit(buffers ...renderer.CommandBuffer) error {
	native := make([]*wgpu.CommandBuffer, 0, len(buffers))
	for _, b := range buffers {
		cb, ok := b.(*CommandBuffer)
		if !ok {
			return fmt.Errorf("%w: command buffer %T does not belong to the webgpu backend", core.ErrUnknown, b)
		}
		native = append(native, cb.buffer)
	}
	q.queue.Submit(native...)
	return nil
}

type Buffer struct {
	buffer *wgpu.Buffer
	size   uint64
	usage  renderer.BufferUsage
}

func (b *Buffer) Size() uint64 {
	return b.size
}

func (b *Buffer) Usage() renderer.BufferUsage {
	return b.usage
}

func (b *Buffer) Release() {
	if b.buffer != nil {
		b.buffer.Release()
		b.buffer = nil
	}
}

type BindGroupLayout struct {
	layout *wgpu.BindGroupLayout
}

func (l *BindGroupLayout) Release() {
	if l.layout != nil {
		l.layout.Release()
		l.layout = nil
	}
}

type BindGroup struct {
	group *wgpu.BindGroup
}

func (g *BindGroup) Release() {
	if g.group != nil {
		g.group.Release()
		g.group = nil
	}
}

type CommandEncoder struct {
	encoder *wgpu.CommandEncoder
	label   string
}

func (e *CommandEncoder) CopyBufferToBuffer(src renderer.Buffer, srcOffset uint64, dst renderer.Buffer, dstOffset uint64, size uint64) error {
	s, ok := src.(*Buffer)
	if !ok {
		return fmt.Errorf("%w: source buffer %T does not belong to the webgpu backend", core.ErrUnknown, src)
	}
	d, ok := dst.(*Buffer)
	if !ok {
		return fmt.Errorf("%w: destination buffer %T does not belong to the webgpu backend", core.ErrUnknown, dst)
	}
	return e.encoder.CopyBufferToBuffer(s.buffer, srcOffset, d.buffer, dstOffset, size)
}

func (e *CommandEncoder) BeginRenderPass(desc *renderer.RenderPassDescriptor) (renderer.RenderPass, error) {
	attachments := make([]wgpu.RenderPassColorAttachment, len(desc.ColorAttachments))
	for i, a := range desc.ColorAttachments {
		view, ok := a.View.(*TextureView)
		if !ok {
			return nil, fmt.Errorf("%w: texture view %T does not belong to the webgpu backend", core.ErrUnknown, a.View)
		}
		attachments[i] = wgpu.RenderPassColorAttachment{
			View:    view.view,
			LoadOp:  fromLoadOp(a.LoadOp),
			StoreOp: fromStoreOp(a.StoreOp),
			ClearValue: wgpu.Color{
				R: a.ClearValue.R,
				G: a.ClearValue.G,
				B: a.ClearValue.B,
				A: a.ClearValue.A,
			},
		}
	}
	pass := e.encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label:            desc.Label,
		ColorAttachments: attachments,
	})
	return &RenderPass{pass: pass}, nil
}

func (e *CommandEncoder) Finish() (renderer.CommandBuffer, error) {
	buffer, err := e.encoder.Finish(&wgpu.CommandBufferDescriptor{Label: e.label})
	if err != nil {
		err = fmt.Errorf("failed to finish command encoder '%s': %w", e.label, err)
		core.LogError(err.Error())
		return nil, err
	}
	return &CommandBuffer{buffer: buffer}, nil
}

func (e *CommandEncoder) Release() {
	if e.encoder != nil {
		e.encoder.Release()
		e.encoder = nil
	}
}

type RenderPass struct {
	pass *wgpu.RenderPassEncoder
}

// End closes the pass and releases it, which wgpu requires before the
// encoder is finished.
func (p *RenderPass) End() error {
	if p.pass == nil {
		return fmt.Errorf("render pass already ended")
	}
	err := p.pass.End()
	p.pass.Release()
	p.pass = nil
	return err
}

type CommandBuffer struct {
	buffer *wgpu.CommandBuffer
}

func (c *CommandBuffer) Release() {
	if c.buffer != nil {
		c.buffer.Release()
		c.buffer = nil
	}
}
