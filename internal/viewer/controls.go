package viewer

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/smolview/internal/engine/camera"
	"github.com/Faultbox/smolview/internal/engine/debug"
	"github.com/Faultbox/smolview/internal/engine/input"
	"github.com/Faultbox/smolview/internal/engine/picking"
	"github.com/Faultbox/smolview/internal/logger"
	"github.com/Faultbox/smolview/internal/scene"
)

// Frame reports what the controls changed during one frame.
type Frame struct {
	Screenshot       bool
	OverlayChanged   bool
	SelectionChanged bool
	ToggleBonds      bool
}

// Controls maps input to camera motion, picking and viewer commands.
// It holds no GL state.
type Controls struct {
	Camera     *camera.Trackball
	Scene      *scene.Scene
	Selected   int // index into Scene.Spheres, -1 for none
	ShowBounds bool
	LogLevel   string // restored when debug logging is toggled off

	rotating bool
}

// NewControls creates controls for s, with the camera fitted to it.
func NewControls(cam *camera.Trackball, s *scene.Scene) *Controls {
	c := &Controls{Camera: cam, Scene: s, Selected: -1}
	c.fit()
	return c
}

// SetScene swaps in a rebuilt scene. The selection survives when the
// new scene still has that sphere.
func (c *Controls) SetScene(s *scene.Scene) {
	c.Scene = s
	if c.Selected >= len(s.Spheres) {
		c.Selected = -1
	}
}

// fit keeps the default framing for anything inside the projection cube
// and widens it for spheres poking out.
func (c *Controls) fit() {
	b := c.Scene.Bounds
	r := max(-b.Min.X, -b.Min.Y, -b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z)
	c.Camera.FitRadius(float32(r))
}

// Handle applies one frame of events.
func (c *Controls) Handle(events []input.Event, drag *input.Drag) Frame {
	var f Frame
	for _, e := range events {
		switch e.Type {
		case input.EventMouseDown:
			if e.Button == sdl.BUTTON_LEFT {
				c.rotating = true
			}
		case input.EventMouseUp:
			if e.Button == sdl.BUTTON_LEFT {
				c.rotating = false
			}
		case input.EventMouseMove:
			if c.rotating && (e.DX != 0 || e.DY != 0) {
				c.Camera.HandleDrag(e.MouseX-e.DX, e.MouseY-e.DY, e.MouseX, e.MouseY)
			}
		case input.EventWheel:
			c.Camera.HandleZoom(e.Wheel)
		case input.EventKeyDown:
			switch e.Key {
			case sdl.SCANCODE_F12:
				f.Screenshot = true
			case sdl.SCANCODE_R:
				c.Camera.Reset()
				c.fit()
			case sdl.SCANCODE_B:
				c.ShowBounds = !c.ShowBounds
				f.OverlayChanged = true
			case sdl.SCANCODE_C:
				f.ToggleBonds = true
			case sdl.SCANCODE_D:
				c.toggleDebugLog()
			}
		}
	}

	if x, y, ok := drag.Click(); ok {
		prev := c.Selected
		c.Selected = c.Pick(x, y)
		if c.Selected >= 0 {
			sp := c.Scene.Spheres[c.Selected]
			logger.Info("atom picked",
				zap.Int("aix", sp.Aix),
				zap.String("sym", sp.Sym),
				zap.Float64("x", sp.Center.X),
				zap.Float64("y", sp.Center.Y),
				zap.Float64("z", sp.Center.Z),
			)
		}
		if prev != c.Selected {
			f.OverlayChanged = true
			f.SelectionChanged = true
		}
	}
	return f
}

// Selection describes the selected atom, or returns "" when none is.
func (c *Controls) Selection() string {
	if c.Selected < 0 || c.Selected >= len(c.Scene.Spheres) {
		return ""
	}
	sp := c.Scene.Spheres[c.Selected]
	return fmt.Sprintf("%s #%d", sp.Sym, sp.Aix)
}

func (c *Controls) toggleDebugLog() {
	next := "debug"
	if logger.Level() == "debug" {
		next = c.LogLevel
		if next == "" || next == "debug" {
			next = "info"
		}
	}
	logger.SetLevel(next)
	logger.Info("log level changed", zap.String("level", next))
}

// Pick returns the index of the sphere under screen point (x, y), or -1.
func (c *Controls) Pick(x, y int) int {
	w, h := c.Camera.Viewport()
	ray := picking.ScreenToRay(float32(x), float32(y), float32(w), float32(h), c.Camera.ViewProjection().Inverse())
	idx, _, hit := picking.PickSphere(ray, c.Scene.Spheres)
	if !hit {
		return -1
	}
	return idx
}

// Overlay returns the lines drawn over the scene.
func (c *Controls) Overlay() []scene.Line {
	var lines []scene.Line
	if c.Selected >= 0 && c.Selected < len(c.Scene.Spheres) {
		lines = append(lines, debug.SelectionBox(c.Scene.Spheres[c.Selected])...)
	}
	if c.ShowBounds {
		lines = append(lines, debug.BoundsBox(c.Scene)...)
	}
	return lines
}
