package components

import (
	"testing"
	"time"

	"github.com/spaghettifunk/showcase/engine/core"
	"github.com/spaghettifunk/showcase/engine/math"
	"github.com/stretchr/testify/assert"
)

func TestCameraForward(t *testing.T) {
	c := NewCamera(math.NewVec3Zero(), 0, 0)
	assert.True(t, c.Forward().Compare(math.NewVec3(1, 0, 0), 1e-6))

	c.Yaw = -math.K_HALF_PI
	assert.True(t, c.Forward().Compare(math.NewVec3(0, 0, -1), 1e-6))
}

func TestCameraMatrixPlacesEyeAtOrigin(t *testing.T) {
	c := NewCamera(math.NewVec3(0, 5, 10), -math.K_HALF_PI, math.DegToRad(-20))
	p := c.CalcMatrix().MulVec4(c.Position.ToVec4(1))
	assert.True(t, p.Compare(math.NewVec4(0, 0, 0, 1), 1e-5), "got %+v", p)
}

func TestProjectionResize(t *testing.T) {
	p := NewProjection(800, 600, math.DegToRad(45), 0.1, 100)
	assert.InDelta(t, 800.0/600.0, p.Aspect, 1e-6)

	p.Resize(1000, 0)
	assert.InDelta(t, 800.0/600.0, p.Aspect, 1e-6, "zero height keeps the previous ratio")

	p.Resize(1920, 1080)
	assert.InDelta(t, 1920.0/1080.0, p.Aspect, 1e-6)
}

func TestControllerKeyboard(t *testing.T) {
	cc := NewCameraController(4, 0.4)
	c := NewCamera(math.NewVec3Zero(), 0, 0)

	assert.True(t, cc.ProcessKeyboard(core.KEY_W, true))
	assert.False(t, cc.ProcessKeyboard(core.KEY_Q, true))

	cc.UpdateCamera(c, 500*time.Millisecond)
	assert.True(t, c.Position.Compare(math.NewVec3(2, 0, 0), 1e-5), "got %+v", c.Position)

	cc.ProcessKeyboard(core.KEY_W, false)
	cc.ProcessKeyboard(core.KEY_SPACE, true)
	cc.UpdateCamera(c, time.Second)
	assert.True(t, c.Position.Compare(math.NewVec3(2, 4, 0), 1e-5), "got %+v", c.Position)
}

func TestControllerMouseClampsPitch(t *testing.T) {
	cc := NewCameraController(1, 1)
	c := NewCamera(math.NewVec3Zero(), 0, 0)

	cc.ProcessMouse(0, -1000)
	cc.UpdateCamera(c, time.Second)
	assert.Equal(t, PITCH_LIMIT, c.Pitch)

	// deltas are consumed by the update
	cc.UpdateCamera(c, time.Second)
	assert.Equal(t, PITCH_LIMIT, c.Pitch)
	assert.Equal(t, float32(0), c.Yaw)
}
