package input

import "github.com/veandco/go-sdl2/sdl"

// ClickSlop is how far, in screen pixels, the pointer may move between
// press and release and still count as a click.
const ClickSlop = 3

// Drag tracks the left mouse button. Motion while held accumulates as a
// drag; a release close to the press point is reported as a click.
type Drag struct {
	Active bool
	StartX int
	StartY int
	X      int
	Y      int

	// Set for one frame.
	clicked bool
	clickX  int
	clickY  int
}

// Handle updates the state from one event.
func (d *Drag) Handle(e Event) {
	switch e.Type {
	case EventMouseDown:
		if e.Button != sdl.BUTTON_LEFT {
			return
		}
		d.Active = true
		d.StartX, d.StartY = e.MouseX, e.MouseY
		d.X, d.Y = e.MouseX, e.MouseY
		d.clicked = false
	case EventMouseMove:
		if d.Active {
			d.X, d.Y = e.MouseX, e.MouseY
		}
	case EventMouseUp:
		if e.Button != sdl.BUTTON_LEFT || !d.Active {
			return
		}
		d.Active = false
		if abs(e.MouseX-d.StartX) <= ClickSlop && abs(e.MouseY-d.StartY) <= ClickSlop {
			d.clicked = true
			d.clickX, d.clickY = e.MouseX, e.MouseY
		}
	}
}

// Click reports a click and its position, and clears it.
func (d *Drag) Click() (x, y int, ok bool) {
	if !d.clicked {
		return 0, 0, false
	}
	d.clicked = false
	return d.clickX, d.clickY, true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
