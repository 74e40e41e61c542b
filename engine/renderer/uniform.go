package renderer

import (
	"encoding/binary"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/spaghettifunk/showcase/engine/core"
	"github.com/spaghettifunk/showcase/engine/math"
	"github.com/spaghettifunk/showcase/engine/renderer/components"
)

// CameraUniformSize is the byte size of the uniform block: a vec4
// followed by a column-major mat4, tightly packed.
const CameraUniformSize = 4*4 + 16*4

/**
 * @brief Per-frame camera data shared with the shaders, together with
 * the GPU buffer that holds it.
 */
type CameraUniform struct {
	ViewPosition math.Vec4
	ViewProj     math.Mat4

	buffer     Buffer
	generation uint64
}

// NewCameraUniform starts from the origin and an identity view-projection.
func NewCameraUniform(device Device) (*CameraUniform, error) {
	cu := &CameraUniform{
		ViewPosition: math.NewVec4Zero(),
		ViewProj:     math.NewMat4Identity(),
	}
	if err := cu.Reallocate(device); err != nil {
		return nil, err
	}
	return cu, nil
}

// UpdateViewProj recomputes the uniform as projection · view.
func (cu *CameraUniform) UpdateViewProj(camera *components.Camera, projection *components.Projection) {
	cu.ViewPosition = camera.Position.ToVec4(1.0)
	cu.ViewProj = projection.CalcMatrix().Mul(camera.CalcMatrix())
}

// UpdateBuffer records a copy of the current data into the uniform
// buffer. The copy goes through a staging buffer on encoder, so the
// render pass recorded afterwards on the same encoder reads the new data.
func (cu *CameraUniform) UpdateBuffer(device Device, encoder CommandEncoder) error {
	staging, err := device.CreateBufferInit(&BufferInitDescriptor{
		Label:    "Camera Staging Buffer",
		Contents: cu.Bytes(),
		Usage:    BufferUsageCopySrc,
	})
	if err != nil {
		err = fmt.Errorf("failed to create camera staging buffer: %w", err)
		core.LogError(err.Error())
		return err
	}
	// the backend keeps the staging memory alive until the copy has executed
	defer staging.Release()

	if err := encoder.CopyBufferToBuffer(staging, 0, cu.buffer, 0, CameraUniformSize); err != nil {
		err = fmt.Errorf("failed to record camera uniform copy: %w", err)
		core.LogError(err.Error())
		return err
	}
	return nil
}

// Reallocate replaces the backing buffer, for instance after a device
// loss. Bindings created against the previous buffer become stale.
func (cu *CameraUniform) Reallocate(device Device) error {
	buffer, err := device.CreateBufferInit(&BufferInitDescriptor{
		Label:    "Camera Buffer",
		Contents: cu.Bytes(),
		Usage:    BufferUsageUniform | BufferUsageCopyDst,
	})
	if err != nil {
		err = fmt.Errorf("failed to create camera buffer: %w", err)
		core.LogError(err.Error())
		return err
	}
	if cu.buffer != nil {
		cu.buffer.Release()
	}
	cu.buffer = buffer
	cu.generation++
	return nil
}

func (cu *CameraUniform) Buffer() Buffer {
	return cu.buffer
}

// Generation changes every time the backing buffer is replaced.
func (cu *CameraUniform) Generation() uint64 {
	return cu.generation
}

// Bytes encodes the uniform in the layout the shaders expect.
func (cu *CameraUniform) Bytes() []byte {
	out := make([]byte, CameraUniformSize)
	values := [4]float32{cu.ViewPosition.X, cu.ViewPosition.Y, cu.ViewPosition.Z, cu.ViewPosition.W}
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], math32.Float32bits(v))
	}
	for i, v := range cu.ViewProj.Data {
		binary.LittleEndian.PutUint32(out[16+i*4:], math32.Float32bits(v))
	}
	return out
}

func (cu *CameraUniform) Release() {
	if cu.buffer != nil {
		cu.buffer.Release()
		cu.buffer = nil
	}
}
