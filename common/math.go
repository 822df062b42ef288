package common

import (
	"math"
	"unsafe"
)

// Vector2 is a two component float vector used for UVs and 2D screen positions.
type Vector2 struct {
	X, Y float32
}

// Vector3 is a three component float vector used for positions, directions and euler rotations.
type Vector3 struct {
	X, Y, Z float32
}

// Vector4 is a four component float vector, most commonly an RGBA color with channels in [0, 1].
type Vector4 struct {
	X, Y, Z, W float32
}

// Matrix4 is a 4x4 float matrix stored row-major, indexed as m[row][col].
// Vectors are treated as columns, so the translation lives in m[0][3], m[1][3] and m[2][3].
type Matrix4 [4][4]float32

// Add returns the component-wise sum of v and o.
func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns the component-wise difference v - o.
func (v Vector3) Sub(o Vector3) Vector3 {
	return Vector3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale returns v multiplied by the scalar s.
func (v Vector3) Scale(s float32) Vector3 {
	return Vector3{v.X * s, v.Y * s, v.Z * s}
}

// Dot returns the dot product of v and o.
func (v Vector3) Dot(o Vector3) float32 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Cross returns the cross product v × o.
func (v Vector3) Cross(o Vector3) Vector3 {
	return Vector3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// Length returns the euclidean length of v.
func (v Vector3) Length() float32 {
	return float32(math.Sqrt(float64(v.Dot(v))))
}

// NormalizeOrZero returns v scaled to unit length, or the zero vector when v has no length.
//
// Returns:
//   - Vector3: the unit vector, or Vector3{} if v is zero
func (v Vector3) NormalizeOrZero() Vector3 {
	l := v.Length()
	if l == 0 {
		return Vector3{}
	}
	return v.Scale(1 / l)
}

// DegreesToRadians converts an angle in degrees to radians.
func DegreesToRadians(deg float32) float32 {
	return deg * (math.Pi / 180)
}

// Identity4 returns the 4x4 identity matrix.
func Identity4() Matrix4 {
	return Matrix4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Mul returns the standard row-by-column product m * o.
//
// Parameters:
//   - o: the right-hand matrix
//
// Returns:
//   - Matrix4: the product m * o
func (m Matrix4) Mul(o Matrix4) Matrix4 {
	var out Matrix4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[row][k] * o[k][col]
			}
			out[row][col] = sum
		}
	}
	return out
}

// Transpose returns m with rows and columns swapped.
func (m Matrix4) Transpose() Matrix4 {
	var out Matrix4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			out[col][row] = m[row][col]
		}
	}
	return out
}

// MulVector3 transforms the point p (w = 1) by m and returns the result after the perspective divide.
// A zero w leaves the undivided xyz.
func (m Matrix4) MulVector3(p Vector3) Vector3 {
	x := m[0][0]*p.X + m[0][1]*p.Y + m[0][2]*p.Z + m[0][3]
	y := m[1][0]*p.X + m[1][1]*p.Y + m[1][2]*p.Z + m[1][3]
	z := m[2][0]*p.X + m[2][1]*p.Y + m[2][2]*p.Z + m[2][3]
	w := m[3][0]*p.X + m[3][1]*p.Y + m[3][2]*p.Z + m[3][3]
	if w == 0 || w == 1 {
		return Vector3{x, y, z}
	}
	return Vector3{x / w, y / w, z / w}
}

// Perspective builds a right-handed perspective projection mapping view-space depth into the
// WebGPU clip range [0, 1]. The camera looks down -Z.
//
// Parameters:
//   - aspect: viewport width divided by height
//   - fovY: vertical field of view in radians
//   - near: near clip distance (> 0)
//   - far: far clip distance (> near)
//
// Returns:
//   - Matrix4: the projection matrix
func Perspective(aspect, fovY, near, far float32) Matrix4 {
	f := float32(1 / math.Tan(float64(fovY)/2))
	var m Matrix4
	m[0][0] = f / aspect
	m[1][1] = f
	m[2][2] = far / (near - far)
	m[2][3] = near * far / (near - far)
	m[3][2] = -1
	return m
}

// Orthographic2D builds the pixel-space projection used for 2D drawing: (0, 0) maps to the
// bottom-left corner and (width, height) to the top-right. Dimensions below 1 are treated as 1.
func Orthographic2D(width, height float32) Matrix4 {
	width = max(width, 1)
	height = max(height, 1)
	m := Identity4()
	m[0][0] = 2 / width
	m[1][1] = 2 / height
	m[0][3] = -1
	m[1][3] = -1
	return m
}

// RotationX returns a rotation of theta radians about the X axis.
func RotationX(theta float32) Matrix4 {
	s, c := math.Sincos(float64(theta))
	m := Identity4()
	m[1][1] = float32(c)
	m[1][2] = float32(-s)
	m[2][1] = float32(s)
	m[2][2] = float32(c)
	return m
}

// RotationY returns a rotation of theta radians about the Y axis.
func RotationY(theta float32) Matrix4 {
	s, c := math.Sincos(float64(theta))
	m := Identity4()
	m[0][0] = float32(c)
	m[2][0] = float32(-s)
	m[0][2] = float32(s)
	m[2][2] = float32(c)
	return m
}

// RotationZ returns a rotation of theta radians about the Z axis.
func RotationZ(theta float32) Matrix4 {
	s, c := math.Sincos(float64(theta))
	m := Identity4()
	m[0][0] = float32(c)
	m[0][1] = float32(-s)
	m[1][0] = float32(s)
	m[1][1] = float32(c)
	return m
}

// TranslationScale returns a matrix that scales uniformly by scale and then translates by position.
func TranslationScale(position Vector3, scale float32) Matrix4 {
	m := Identity4()
	m[0][0] = scale
	m[1][1] = scale
	m[2][2] = scale
	m[0][3] = position.X
	m[1][3] = position.Y
	m[2][3] = position.Z
	return m
}

// ObjectToWorld composes the placement matrix of a mesh as TranslationScale(position, scale) * Rx * Ry * Rz.
// Rotation angles are given in degrees.
//
// Parameters:
//   - position: world position
//   - rotation: euler angles in degrees
//   - scale: uniform scale factor
//
// Returns:
//   - Matrix4: the object to world transform
func ObjectToWorld(position, rotation Vector3, scale float32) Matrix4 {
	r := RotationX(DegreesToRadians(rotation.X)).
		Mul(RotationY(DegreesToRadians(rotation.Y))).
		Mul(RotationZ(DegreesToRadians(rotation.Z)))
	return TranslationScale(position, scale).Mul(r)
}

// LookAt builds a right-handed world to view matrix for an eye looking at target.
//
// Parameters:
//   - eye: camera position in world space
//   - target: point the camera looks at
//   - up: the world up direction (typically 0, 1, 0)
//
// Returns:
//   - Matrix4: the view matrix
func LookAt(eye, target, up Vector3) Matrix4 {
	z := eye.Sub(target).NormalizeOrZero()
	if z == (Vector3{}) {
		z = Vector3{0, 0, 1}
	}
	x := up.Cross(z).NormalizeOrZero()
	y := z.Cross(x)
	return Matrix4{
		{x.X, x.Y, x.Z, -x.Dot(eye)},
		{y.X, y.Y, y.Z, -y.Dot(eye)},
		{z.X, z.Y, z.Z, -z.Dot(eye)},
		{0, 0, 0, 1},
	}
}

// Barycentric interpolates the Y values of the triangle p1, p2, p3 at the XZ position pos,
// where pos.X is matched against the X components and pos.Y against the Z components.
//
// Parameters:
//   - p1, p2, p3: triangle corners with the value to interpolate stored in Y
//   - pos: query position in the triangle's XZ plane
//
// Returns:
//   - float32: the interpolated value, or p1.Y for a degenerate triangle
func Barycentric(p1, p2, p3 Vector3, pos Vector2) float32 {
	det := (p2.Z-p3.Z)*(p1.X-p3.X) + (p3.X-p2.X)*(p1.Z-p3.Z)
	if det == 0 {
		return p1.Y
	}
	l1 := ((p2.Z-p3.Z)*(pos.X-p3.X) + (p3.X-p2.X)*(pos.Y-p3.Z)) / det
	l2 := ((p3.Z-p1.Z)*(pos.X-p3.X) + (p1.X-p3.X)*(pos.Y-p3.Z)) / det
	l3 := 1 - l1 - l2
	return l1*p1.Y + l2*p2.Y + l3*p3.Y
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
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), int(size)*len(data))
}
