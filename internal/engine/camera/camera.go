// Package camera provides the trackball camera used by the viewer.
package camera

import (
	gomath "math"

	"github.com/Faultbox/smolview/pkg/math"
)

// Trackball is an orthographic camera looking down -Z at the origin.
// Dragging rotates the scene about the origin as if it sat inside a ball
// under the cursor; the wheel zooms by shrinking the view volume.
type Trackball struct {
	// Rotation applied to the scene.
	Rotation math.Quat

	// HalfExtent is half the visible height at zoom 1.
	HalfExtent float32
	Zoom       float32
	Distance   float32
	Near       float32
	Far        float32

	// Constraints
	MinZoom float32
	MaxZoom float32

	// Sensitivity
	RotateSpeed     float32
	ZoomSensitivity float32

	width, height int
}

// NewTrackball creates a camera that shows the projection cube with a
// margin: half extent 0.7, eye at z=100.
func NewTrackball() *Trackball {
	return &Trackball{
		Rotation:        math.QuatIdentity(),
		HalfExtent:      0.7,
		Zoom:            1,
		Distance:        100,
		Near:            0.1,
		Far:             1000,
		MinZoom:         0.1,
		MaxZoom:         50,
		RotateSpeed:     1,
		ZoomSensitivity: 0.1,
		width:           1,
		height:          1,
	}
}

// SetViewport records the viewport size in screen coordinates.
func (c *Trackball) SetViewport(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	c.width, c.height = width, height
}

// Viewport returns the size set by SetViewport.
func (c *Trackball) Viewport() (int, int) {
	return c.width, c.height
}

// Position returns the eye position.
func (c *Trackball) Position() math.Vec3 {
	return math.Vec3{Z: c.Distance}
}

// ProjectionMatrix returns the orthographic projection. The shorter
// viewport side spans [-HalfExtent, HalfExtent] divided by zoom.
func (c *Trackball) ProjectionMatrix() math.Mat4 {
	h := c.HalfExtent / c.Zoom
	w := h
	aspect := float32(c.width) / float32(c.height)
	if aspect >= 1 {
		w = h * aspect
	} else {
		h = w / aspect
	}
	return math.Ortho(-w, w, -h, h, c.Near, c.Far)
}

// ViewMatrix returns the eye transform followed by the scene rotation.
func (c *Trackball) ViewMatrix() math.Mat4 {
	eye := math.LookAt(c.Position(), math.Vec3{}, math.Vec3{Y: 1})
	return eye.Mul(c.Rotation.ToMat4())
}

// ViewProjection returns projection * view.
func (c *Trackball) ViewProjection() math.Mat4 {
	return c.ProjectionMatrix().Mul(c.ViewMatrix())
}

// ballPoint maps a screen position onto the unit trackball. Points
// outside the ball land on its rim.
func (c *Trackball) ballPoint(x, y int) math.Vec3 {
	size := float32(min(c.width, c.height))
	p := math.Vec3{
		X: (2*float32(x) - float32(c.width)) / size,
		Y: (float32(c.height) - 2*float32(y)) / size,
	}
	d := p.X*p.X + p.Y*p.Y
	if d > 1 {
		return p.Normalize()
	}
	p.Z = float32(gomath.Sqrt(float64(1 - d)))
	return p
}

// HandleDrag rotates the scene for a cursor move from (x0, y0) to (x1, y1).
func (c *Trackball) HandleDrag(x0, y0, x1, y1 int) {
	if x0 == x1 && y0 == y1 {
		return
	}
	from := c.ballPoint(x0, y0)
	to := c.ballPoint(x1, y1)

	axis := from.Cross(to)
	if axis.Length() < 1e-6 {
		return
	}
	dot := gomath.Max(-1, gomath.Min(1, float64(from.Dot(to))))
	angle := float32(gomath.Acos(dot)) * c.RotateSpeed

	c.Rotation = math.QuatFromAxisAngle(axis, angle).Mul(c.Rotation).Normalize()
}

// HandleZoom zooms in for positive wheel deltas.
func (c *Trackball) HandleZoom(delta float32) {
	c.Zoom *= 1 + delta*c.ZoomSensitivity
	if c.Zoom < c.MinZoom {
		c.Zoom = c.MinZoom
	}
	if c.Zoom > c.MaxZoom {
		c.Zoom = c.MaxZoom
	}
}

// FitRadius sets the half extent so a sphere of radius r around the
// origin stays in view, never going below the default.
func (c *Trackball) FitRadius(r float32) {
	c.HalfExtent = 0.7
	if r*1.1 > c.HalfExtent {
		c.HalfExtent = r * 1.1
	}
}

// Reset restores the initial orientation and zoom.
func (c *Trackball) Reset() {
	c.Rotation = math.QuatIdentity()
	c.Zoom = 1
}
