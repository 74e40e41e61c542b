package math

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 represents a 4D vector
type Vec4 struct {
	X, Y, Z, W float32
}

/**
 * @brief a 4x4 matrix stored column-major, the layout shaders
 * expect for a mat4x4<f32> uniform. Element (row, col) lives at
 * Data[col*4+row].
 */
type Mat4 struct {
	/** @brief The matrix elements */
	Data [16]float32
}
