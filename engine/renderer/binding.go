package renderer

import (
	"fmt"

	"github.com/spaghettifunk/showcase/engine/core"
)

/**
 * @brief The bind group layout and bind group exposing a CameraUniform
 * buffer at binding 0 to the vertex and fragment stages.
 */
type UniformBinding struct {
	Layout    BindGroupLayout
	BindGroup BindGroup

	generation uint64
}

func NewUniformBinding(device Device, cu *CameraUniform) (*UniformBinding, error) {
	layout, err := device.CreateBindGroupLayout(&BindGroupLayoutDescriptor{
		Label: "Camera Bind Group Layout",
		Entries: []BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: ShaderStageVertex | ShaderStageFragment,
				Buffer: BufferBindingLayout{
					Type:             BufferBindingTypeUniform,
					HasDynamicOffset: false,
					MinBindingSize:   0,
				},
			},
		},
	})
	if err != nil {
		err = fmt.Errorf("failed to create camera bind group layout: %w", err)
		core.LogError(err.Error())
		return nil, err
	}

	ub := &UniformBinding{Layout: layout}
	if err := ub.Rebind(device, cu); err != nil {
		layout.Release()
		return nil, err
	}
	return ub, nil
}

// Rebind rebuilds the bind group against the uniform's current buffer,
// reusing the layout.
func (ub *UniformBinding) Rebind(device Device, cu *CameraUniform) error {
	group, err := device.CreateBindGroup(&BindGroupDescriptor{
		Label:  "Camera Bind Group",
		Layout: ub.Layout,
		Entries: []BindGroupEntry{
			{
				Binding: 0,
				Buffer:  cu.Buffer(),
				Offset:  0,
				Size:    WholeSize,
			},
		},
	})
	if err != nil {
		err = fmt.Errorf("failed to create camera bind group: %w", err)
		core.LogError(err.Error())
		return err
	}
	if ub.BindGroup != nil {
		ub.BindGroup.Release()
	}
	ub.BindGroup = group
	ub.generation = cu.Generation()
	return nil
}

// Stale reports whether cu replaced its buffer since the last bind.
func (ub *UniformBinding) Stale(cu *CameraUniform) bool {
	return ub.generation != cu.Generation()
}

func (ub *UniformBinding) Release() {
	if ub.BindGroup != nil {
		ub.BindGroup.Release()
		ub.BindGroup = nil
	}
	if ub.Layout != nil {
		ub.Layout.Release()
		ub.Layout = nil
	}
}
