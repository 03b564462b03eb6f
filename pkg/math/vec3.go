// Package math provides the float32 vector, matrix and quaternion types
// uploaded to the GPU. Geometry is computed in float64 with gonum's r3 and
// converted here at the boundary.
package math

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 is a float32 point or direction in model, view or clip space.
type Vec3 struct {
	X, Y, Z float32
}

func FromR3(v r3.Vec) Vec3 {
	return Vec3{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}

func (v Vec3) R3() r3.Vec {
	return r3.Vec{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{X: v.X + w.X, Y: v.Y + w.Y, Z: v.Z + w.Z}
}

func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{X: v.X - w.X, Y: v.Y - w.Y, Z: v.Z - w.Z}
}

func (v Vec3) Scale(f float32) Vec3 {
	return Vec3{X: f * v.X, Y: f * v.Y, Z: f * v.Z}
}

func (v Vec3) Dot(w Vec3) float32 {
	return v.X*w.X + v.Y*w.Y + v.Z*w.Z
}

// Cross and the metric operations below compute in float64 through r3.
func (v Vec3) Cross(w Vec3) Vec3 {
	return FromR3(r3.Cross(v.R3(), w.R3()))
}

func (v Vec3) Length() float32 {
	return float32(r3.Norm(v.R3()))
}

// Normalize returns v scaled to unit length. The zero vector stays zero.
func (v Vec3) Normalize() Vec3 {
	if v == (Vec3{}) {
		return v
	}
	return FromR3(r3.Unit(v.R3()))
}

// Array is the vertex buffer layout of v.
func (v Vec3) Array() [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}
