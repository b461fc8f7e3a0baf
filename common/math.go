package common

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// Identity4 returns a fresh 4x4 identity matrix.
// Matrices are stored in column-major order (OpenGL/WebGPU convention).
//
// Returns:
//   - mgl32.Mat4: the identity matrix
func Identity4() mgl32.Mat4 {
	return mgl32.Ident4()
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// StructToBytes reinterprets a pointer to a struct as a raw byte slice using unsafe.
// The returned slice has length equal to the struct's size in memory.
//
// Parameters:
//   - v: pointer to the struct to reinterpret
//
// Returns:
//   - []byte: byte slice view of the struct's memory
func StructToBytes[T any](v *T) []byte {
	size := unsafe.Sizeof(*v)
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), int(size))
}

// LerpVec3 linearly interpolates between two vectors component-wise.
// The result is exactly a when f is 0.
//
// Parameters:
//   - a: the start vector
//   - b: the end vector
//   - f: the interpolation factor, typically in [0, 1]
//
// Returns:
//   - mgl32.Vec3: a + (b - a) * f
func LerpVec3(a, b mgl32.Vec3, f float32) mgl32.Vec3 {
	return mgl32.Vec3{
		a[0] + (b[0]-a[0])*f,
		a[1] + (b[1]-a[1])*f,
		a[2] + (b[2]-a[2])*f,
	}
}

// SlerpQuat spherically interpolates between two rotations along the shortest arc.
// Both inputs are normalized first. mgl32.QuatSlerp does not flip hemispheres, so b is
// negated when the two quaternions point away from each other (q and -q are the same rotation).
// Factors at or outside the ends of [0, 1] return the matching endpoint unchanged.
//
// Parameters:
//   - a: the start rotation
//   - b: the end rotation
//   - f: the interpolation factor in [0, 1]
//
// Returns:
//   - mgl32.Quat: the normalized interpolated rotation
func SlerpQuat(a, b mgl32.Quat, f float32) mgl32.Quat {
	a, b = a.Normalize(), b.Normalize()
	if f <= 0 {
		return a
	}
	if f >= 1 {
		return b
	}
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return mgl32.QuatSlerp(a, b, f).Normalize()
}

// ComposeTRS builds a local transform matrix from translation, rotation and scale.
// Result: Translate(t) * Rotate(r) * Scale(s), i.e. scale first, then rotate about the origin, then translate.
//
// Parameters:
//   - t: the translation
//   - r: the rotation quaternion (expected normalized)
//   - s: the per-axis scale
//
// Returns:
//   - mgl32.Mat4: the composed column-major matrix
func ComposeTRS(t mgl32.Vec3, r mgl32.Quat, s mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(t[0], t[1], t[2]).
		Mul4(r.Mat4()).
		Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
}

// Translation extracts the translation column of an affine matrix.
//
// Parameters:
//   - m: the matrix
//
// Returns:
//   - mgl32.Vec3: the translation component (column 3)
func Translation(m mgl32.Mat4) mgl32.Vec3 {
	return mgl32.Vec3{m[12], m[13], m[14]}
}

// DecomposeTRS splits an affine matrix without shear into translation, rotation and scale,
// the inverse of ComposeTRS. A negative determinant is folded into the x scale.
//
// Parameters:
//   - m: the matrix
//
// Returns:
//   - mgl32.Vec3: the translation
//   - mgl32.Quat: the normalized rotation
//   - mgl32.Vec3: the per-axis scale
func DecomposeTRS(m mgl32.Mat4) (mgl32.Vec3, mgl32.Quat, mgl32.Vec3) {
	t := Translation(m)
	s := mgl32.Vec3{m.Col(0).Vec3().Len(), m.Col(1).Vec3().Len(), m.Col(2).Vec3().Len()}
	if m.Mat3().Det() < 0 {
		s[0] = -s[0]
	}

	var rot mgl32.Mat4
	for c := range 3 {
		axis := m.Col(c).Vec3()
		if s[c] != 0 {
			axis = axis.Mul(1 / s[c])
		}
		rot.SetCol(c, axis.Vec4(0))
	}
	rot.SetCol(3, mgl32.Vec4{0, 0, 0, 1})

	return t, mgl32.Mat4ToQuat(rot).Normalize(), s
}

// NearVec3 reports whether every component of a and b differs by at most epsilon.
// Unlike mgl32's ApproxEqualThreshold the tolerance is absolute, including near zero.
func NearVec3(a, b mgl32.Vec3, epsilon float32) bool {
	for i := range a {
		if mgl32.Abs(a[i]-b[i]) > epsilon {
			return false
		}
	}
	return true
}

// NearQuat reports whether every component of a and b differs by at most epsilon.
func NearQuat(a, b mgl32.Quat, epsilon float32) bool {
	return mgl32.Abs(a.W-b.W) <= epsilon && NearVec3(a.V, b.V, epsilon)
}

// NearMat4 reports whether every element of a and b differs by at most epsilon.
func NearMat4(a, b mgl32.Mat4, epsilon float32) bool {
	for i := range a {
		if mgl32.Abs(a[i]-b[i]) > epsilon {
			return false
		}
	}
	return true
}
