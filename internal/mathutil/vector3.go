// Package mathutil provides the pure-function vector, box, and raycast
// primitives shared by the physics engine, the combat resolver, and the
// client predictor.
package mathutil

import "math"

// Vector3 is a 64-bit float 3-vector used for positions, directions, and
// velocities throughout the simulation.
type Vector3 struct {
	X, Y, Z float64
}

// Vec3 is a convenience constructor.
func Vec3(x, y, z float64) Vector3 {
	return Vector3{X: x, Y: y, Z: z}
}

func (a Vector3) Add(b Vector3) Vector3 {
	return Vector3{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

func (a Vector3) Sub(b Vector3) Vector3 {
	return Vector3{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

func (a Vector3) Scale(s float64) Vector3 {
	return Vector3{a.X * s, a.Y * s, a.Z * s}
}

func (a Vector3) Dot(b Vector3) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

func (a Vector3) Cross(b Vector3) Vector3 {
	return Vector3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

func (a Vector3) LengthSq() float64 {
	return a.Dot(a)
}

func (a Vector3) Length() float64 {
	return math.Sqrt(a.LengthSq())
}

// Normalize returns the unit vector, or the zero vector if a is (near) zero length.
func (a Vector3) Normalize() Vector3 {
	l := a.Length()
	if l < 1e-9 {
		return Vector3{}
	}
	return a.Scale(1 / l)
}

// WithY returns a copy of a with Y replaced.
func (a Vector3) WithY(y float64) Vector3 {
	a.Y = y
	return a
}

// XZ zeroes the Y component, useful for ground-plane direction math.
func (a Vector3) XZ() Vector3 {
	return Vector3{X: a.X, Z: a.Z}
}

// Lerp linearly interpolates between a and b by t in [0, 1].
func Lerp(a, b Vector3, t float64) Vector3 {
	return Vector3{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		Z: a.Z + (b.Z-a.Z)*t,
	}
}

// LerpScalar linearly interpolates between two scalars.
func LerpScalar(a, b, t float64) float64 {
	return a + (b-a)*t
}

// RotateY rotates v about the Y axis by yaw radians. Used to orient hitbox
// segment offsets and camera-relative input to world-space direction.
func RotateY(v Vector3, yaw float64) Vector3 {
	sin, cos := math.Sin(yaw), math.Cos(yaw)
	return Vector3{
		X: v.X*cos + v.Z*sin,
		Y: v.Y,
		Z: -v.X*sin + v.Z*cos,
	}
}

// ForwardRight returns the forward and right basis vectors (projected to
// the XZ plane) for a given look yaw, used to turn camera-relative input
// into a world-space movement direction.
func ForwardRight(yaw float64) (forward, right Vector3) {
	sin, cos := math.Sin(yaw), math.Cos(yaw)
	forward = Vector3{X: -sin, Z: -cos}
	right = Vector3{X: cos, Z: -sin}
	return forward, right
}

// ForwardFromYawPitch returns the full 3D unit aim direction for a given
// look yaw/pitch, consistent with ForwardRight's XZ convention (pitch
// tilts that same forward vector up/down).
func ForwardFromYawPitch(yaw, pitch float64) Vector3 {
	flatForward, _ := ForwardRight(yaw)
	cosPitch := math.Cos(pitch)
	return Vector3{
		X: flatForward.X * cosPitch,
		Y: math.Sin(pitch),
		Z: flatForward.Z * cosPitch,
	}
}
