package testbed

import (
	"errors"
	"fmt"
	"time"

	"github.com/spaghettifunk/showcase/engine"
	"github.com/spaghettifunk/showcase/engine/core"
	"github.com/spaghettifunk/showcase/engine/math"
	"github.com/spaghettifunk/showcase/engine/renderer"
	"github.com/spaghettifunk/showcase/engine/renderer/components"
)

var ClearColor = renderer.Color{R: 0.1, G: 0.2, B: 0.3, A: 1.0}

// CameraDemo flies a camera around an empty scene and clears the screen
// every frame, uploading the camera uniform first.
type CameraDemo struct {
	camera     *components.Camera
	projection *components.Projection
	controller *components.CameraController
	uniform    *renderer.CameraUniform
	binding    *renderer.UniformBinding
}

// New is an engine.InitFunc.
func New(display *renderer.Display) (engine.Demo, error) {
	core.LogDebug("initializing camera demo...")

	cfg := display.Config()
	d := &CameraDemo{
		camera:     components.NewCamera(math.NewVec3(0.0, 5.0, 10.0), math.DegToRad(-90.0), math.DegToRad(-20.0)),
		projection: components.NewProjection(cfg.Width, cfg.Height, math.DegToRad(45.0), 0.1, 100.0),
		controller: components.NewCameraController(4.0, 0.4),
	}

	uniform, err := renderer.NewCameraUniform(display.Device())
	if err != nil {
		return nil, err
	}
	uniform.UpdateViewProj(d.camera, d.projection)
	d.uniform = uniform

	binding, err := renderer.NewUniformBinding(display.Device(), uniform)
	if err != nil {
		uniform.Release()
		return nil, err
	}
	d.binding = binding
	return d, nil
}

func (d *CameraDemo) ProcessMouse(dx, dy float64) {
	d.controller.ProcessMouse(dx, dy)
}

func (d *CameraDemo) ProcessKeyboard(key core.KeyCode, pressed bool) {
	d.controller.ProcessKeyboard(key, pressed)
}

func (d *CameraDemo) Resize(display *renderer.Display) {
	cfg := display.Config()
	d.projection.Resize(cfg.Width, cfg.Height)
}

func (d *CameraDemo) Update(_ *renderer.Display, dt time.Duration) {
	d.controller.UpdateCamera(d.camera, dt)
	d.uniform.UpdateViewProj(d.camera, d.projection)
}

func (d *CameraDemo) Render(display *renderer.Display) {
	if err := d.render(display); err != nil {
		core.LogError("frame dropped: %s", err)
	}
}

func (d *CameraDemo) render(display *renderer.Display) error {
	device := display.Device()
	if d.binding.Stale(d.uniform) {
		if err := d.binding.Rebind(device, d.uniform); err != nil {
			return err
		}
	}

	frame, err := display.AcquireFrame()
	if errors.Is(err, core.ErrSurfaceUnavailable) {
		// minimized
		return nil
	}
	if err != nil {
		return err
	}
	defer frame.Release()

	encoder, err := device.CreateCommandEncoder("Render Encoder")
	if err != nil {
		return err
	}
	defer encoder.Release()

	// the uniform copy must be recorded before the pass that reads it
	if err := d.uniform.UpdateBuffer(device, encoder); err != nil {
		return err
	}

	pass, err := encoder.BeginRenderPass(&renderer.RenderPassDescriptor{
		Label: "Render Pass",
		ColorAttachments: []renderer.RenderPassColorAttachment{
			{
				View:       frame.View(),
				LoadOp:     renderer.LoadOpClear,
				StoreOp:    renderer.StoreOpStore,
				ClearValue: ClearColor,
			},
		},
	})
	if err != nil {
		return err
	}
	if err := pass.End(); err != nil {
		return fmt.Errorf("failed to end render pass: %w", err)
	}

	commands, err := encoder.Finish()
	if err != nil {
		return err
	}
	defer commands.Release()

	if err := display.Queue().Submit(commands); err != nil {
		return fmt.Errorf("failed to submit frame: %w", err)
	}
	return frame.Present()
}

func (d *CameraDemo) Release() {
	if d.binding != nil {
		d.binding.Release()
		d.binding = nil
	}
	if d.uniform != nil {
		d.uniform.Release()
		d.uniform = nil
	}
}
