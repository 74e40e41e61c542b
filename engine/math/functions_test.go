package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const tolerance = 1e-5

func TestMat4MulOrder(t *testing.T) {
	translate := NewMat4Translation(NewVec3(1, 2, 3))
	scale := NewMat4Identity()
	scale.Data[0], scale.Data[5], scale.Data[10] = 2, 2, 2

	// scale · translate: translate first, then scale.
	p := scale.Mul(translate).MulVec4(NewVec4(0, 0, 0, 1))
	assert.True(t, p.Compare(NewVec4(2, 4, 6, 1), tolerance), "got %+v", p)

	// translate · scale: scale first, then translate.
	p = translate.Mul(scale).MulVec4(NewVec4(1, 1, 1, 1))
	assert.True(t, p.Compare(NewVec4(3, 4, 5, 1), tolerance), "got %+v", p)
}

func TestMat4MulIdentity(t *testing.T) {
	m := NewMat4LookTo(NewVec3(1, 2, 3), NewVec3(0, 0, -1), NewVec3Up())
	assert.Equal(t, m, NewMat4Identity().Mul(m))
	assert.Equal(t, m, m.Mul(NewMat4Identity()))
}

func TestMat4At(t *testing.T) {
	m := NewMat4Translation(NewVec3(7, 8, 9))
	assert.Equal(t, float32(7), m.At(0, 3))
	assert.Equal(t, float32(8), m.At(1, 3))
	assert.Equal(t, float32(9), m.At(2, 3))
	assert.Equal(t, float32(7), m.Transposed().At(3, 0))
}

func TestLookToMovesEyeToOrigin(t *testing.T) {
	eye := NewVec3(4, 5, 6)
	view := NewMat4LookTo(eye, NewVec3(0, 0, -1), NewVec3Up())

	p := view.MulVec4(eye.ToVec4(1))
	assert.True(t, p.Compare(NewVec4(0, 0, 0, 1), tolerance), "got %+v", p)

	// a point straight ahead ends up on -Z in view space
	ahead := view.MulVec4(NewVec4(4, 5, 1, 1))
	assert.True(t, ahead.Compare(NewVec4(0, 0, -5, 1), tolerance), "got %+v", ahead)
}

func TestPerspectiveDepthRange(t *testing.T) {
	proj := NewMat4Perspective(DegToRad(45), 1.5, 0.1, 100)

	near := proj.MulVec4(NewVec4(0, 0, -0.1, 1))
	assert.InDelta(t, 0.0, near.Z/near.W, tolerance)

	far := proj.MulVec4(NewVec4(0, 0, -100, 1))
	assert.InDelta(t, 1.0, far.Z/far.W, tolerance)
}

func TestVec3(t *testing.T) {
	a := NewVec3(1, 0, 0)
	b := NewVec3(0, 1, 0)
	assert.Equal(t, NewVec3(0, 0, 1), a.Cross(b))
	assert.Equal(t, float32(0), a.Dot(b))
	assert.InDelta(t, 1.0, NewVec3(3, 4, 0).Normalized().Length(), tolerance)
	assert.Equal(t, NewVec3Zero(), NewVec3Zero().Normalized())
	assert.Equal(t, Vec4{1, 2, 3, 1}, NewVec3(1, 2, 3).ToVec4(1))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 5, Clamp(7, 0, 5))
	assert.Equal(t, float32(-1), Clamp(float32(-3), -1, 1))
	assert.Equal(t, uint32(3), Clamp(uint32(3), 1, 4))
}
