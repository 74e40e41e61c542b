package components

import (
	"time"

	"github.com/chewxy/math32"
	"github.com/spaghettifunk/showcase/engine/core"
	"github.com/spaghettifunk/showcase/engine/math"
)

/** @brief Pitch limit used to avoid gimbal lock, 89 degrees in radians. */
const PITCH_LIMIT float32 = 1.55334306

/**
 * @brief A first person camera described by a position and
 * yaw/pitch angles in radians.
 */
type Camera struct {
	/** @brief The position of this camera. */
	Position math.Vec3
	/** @brief Rotation around the Y axis. Zero looks down +X. */
	Yaw float32
	/** @brief Rotation around the camera's right axis. */
	Pitch float32
}

func NewCamera(position math.Vec3, yaw, pitch float32) *Camera {
	return &Camera{
		Position: position,
		Yaw:      yaw,
		Pitch:    pitch,
	}
}

// Forward is the unit direction the camera is looking at.
func (c *Camera) Forward() math.Vec3 {
	sinPitch, cosPitch := math32.Sin(c.Pitch), math32.Cos(c.Pitch)
	sinYaw, cosYaw := math32.Sin(c.Yaw), math32.Cos(c.Yaw)
	return math.NewVec3(cosPitch*cosYaw, sinPitch, cosPitch*sinYaw).Normalized()
}

// CalcMatrix returns the view matrix.
func (c *Camera) CalcMatrix() math.Mat4 {
	return math.NewMat4LookTo(c.Position, c.Forward(), math.NewVec3Up())
}

/** @brief A perspective projection that follows the surface aspect ratio. */
type Projection struct {
	Aspect float32
	FovY   float32
	ZNear  float32
	ZFar   float32
}

func NewProjection(width, height uint32, fovY, zNear, zFar float32) *Projection {
	p := &Projection{
		FovY:  fovY,
		ZNear: zNear,
		ZFar:  zFar,
	}
	p.Resize(width, height)
	return p
}

// Resize updates the aspect ratio. A zero height keeps the previous ratio.
func (p *Projection) Resize(width, height uint32) {
	if height == 0 {
		return
	}
	p.Aspect = float32(width) / float32(height)
}

func (p *Projection) CalcMatrix() math.Mat4 {
	return math.NewMat4Perspective(p.FovY, p.Aspect, p.ZNear, p.ZFar)
}

/**
 * @brief Accumulates keyboard and mouse input and applies it to a
 * Camera once per frame.
 */
type CameraController struct {
	amountLeft     float32
	amountRight    float32
	amountForward  float32
	amountBackward float32
	amountUp       float32
	amountDown     float32

	rotateHorizontal float32
	rotateVertical   float32

	Speed       float32
	Sensitivity float32
}

func NewCameraController(speed, sensitivity float32) *CameraController {
	return &CameraController{
		Speed:       speed,
		Sensitivity: sensitivity,
	}
}

// ProcessKeyboard reports whether the key is one the controller reacts to.
func (cc *CameraController) ProcessKeyboard(key core.KeyCode, pressed bool) bool {
	var amount float32
	if pressed {
		amount = 1.0
	}
	switch key {
	case core.KEY_W, core.KEY_UP:
		cc.amountForward = amount
	case core.KEY_S, core.KEY_DOWN:
		cc.amountBackward = amount
	case core.KEY_A, core.KEY_LEFT:
		cc.amountLeft = amount
	case core.KEY_D, core.KEY_RIGHT:
		cc.amountRight = amount
	case core.KEY_SPACE:
		cc.amountUp = amount
	case core.KEY_LSHIFT:
		cc.amountDown = amount
	default:
		return false
	}
	return true
}

func (cc *CameraController) ProcessMouse(dx, dy float64) {
	cc.rotateHorizontal = float32(dx)
	cc.rotateVertical = float32(dy)
}

func (cc *CameraController) UpdateCamera(camera *Camera, dt time.Duration) {
	secs := float32(dt.Seconds())

	// Move forward/backward and left/right on the horizontal plane.
	sinYaw, cosYaw := math32.Sin(camera.Yaw), math32.Cos(camera.Yaw)
	forward := math.NewVec3(cosYaw, 0.0, sinYaw).Normalized()
	right := math.NewVec3(-sinYaw, 0.0, cosYaw).Normalized()
	camera.Position = camera.Position.Add(forward.MulScalar((cc.amountForward - cc.amountBackward) * cc.Speed * secs))
	camera.Position = camera.Position.Add(right.MulScalar((cc.amountRight - cc.amountLeft) * cc.Speed * secs))

	camera.Position.Y += (cc.amountUp - cc.amountDown) * cc.Speed * secs

	camera.Yaw += cc.rotateHorizontal * cc.Sensitivity * secs
	camera.Pitch += -cc.rotateVertical * cc.Sensitivity * secs

	// Mouse deltas are consumed once; without new motion the camera stops rotating.
	cc.rotateHorizontal = 0
	cc.rotateVertical = 0

	camera.Pitch = math.Clamp(camera.Pitch, -PITCH_LIMIT, PITCH_LIMIT)
}
