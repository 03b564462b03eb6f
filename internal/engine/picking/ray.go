// Package picking casts rays from the cursor into the scene to find the
// atom under it.
package picking

import (
	gomath "math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/smolview/internal/scene"
	"github.com/Faultbox/smolview/pkg/math"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    r3.Vec
	Direction r3.Vec // Normalized direction
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) r3.Vec {
	return r3.Add(r.Origin, r3.Scale(t, r.Direction))
}

// ScreenToRay converts screen coordinates to a world-space ray.
// screenX, screenY are pixel coordinates, viewportW/H are viewport dimensions.
// invViewProj is the inverse of the view-projection matrix.
func ScreenToRay(screenX, screenY, viewportW, viewportH float32, invViewProj math.Mat4) Ray {
	ndcX := 2*screenX/viewportW - 1
	ndcY := 1 - 2*screenY/viewportH // Flip Y

	nearWorld := invViewProj.TransformPoint(math.Vec3{X: ndcX, Y: ndcY, Z: -1})
	farWorld := invViewProj.TransformPoint(math.Vec3{X: ndcX, Y: ndcY, Z: 1})

	origin := nearWorld.R3()
	dir := r3.Sub(farWorld.R3(), origin)
	if n := r3.Norm(dir); n > 0 {
		dir = r3.Scale(1/n, dir)
	}
	return Ray{Origin: origin, Direction: dir}
}

// IntersectSphere returns the distance to the first intersection with a
// sphere. A ray starting inside the sphere reports the exit distance.
func (r Ray) IntersectSphere(center r3.Vec, radius float64) (t float64, hit bool) {
	oc := r3.Sub(r.Origin, center)
	b := r3.Dot(oc, r.Direction)
	c := r3.Dot(oc, oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := gomath.Sqrt(disc)
	t = -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}

// PickSphere returns the index of the nearest sphere hit by the ray.
func PickSphere(r Ray, spheres []scene.Sphere) (idx int, t float64, hit bool) {
	idx = -1
	best := gomath.Inf(1)
	for i := range spheres {
		sp := &spheres[i]
		if d, ok := r.IntersectSphere(sp.Center, sp.Radius); ok && d < best {
			best, idx = d, i
		}
	}
	if idx < 0 {
		return -1, 0, false
	}
	return idx, best, true
}
