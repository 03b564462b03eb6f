// Package input turns SDL2 events into viewer events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType identifies an Event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventWheel
)

// Event is one input event. Positions are in window coordinates.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Width  int
	Height int
	MouseX int
	MouseY int
	DX     int
	DY     int
	Wheel  float32 // positive away from the user
	Button uint8
}

// Quits reports whether e ends the viewer.
func (e Event) Quits() bool {
	return e.Type == EventQuit || (e.Type == EventKeyDown && e.Key == sdl.SCANCODE_ESCAPE)
}

// Translate converts an SDL event. It returns false for events the viewer
// does not use, including key releases and auto-repeat.
func Translate(ev sdl.Event) (Event, bool) {
	switch e := ev.(type) {
	case *sdl.QuitEvent:
		return Event{Type: EventQuit}, true

	case *sdl.WindowEvent:
		if e.Event != sdl.WINDOWEVENT_RESIZED && e.Event != sdl.WINDOWEVENT_SIZE_CHANGED {
			return Event{}, false
		}
		return Event{Type: EventWindowResize, Width: int(e.Data1), Height: int(e.Data2)}, true

	case *sdl.KeyboardEvent:
		if e.Type != sdl.KEYDOWN || e.Repeat != 0 {
			return Event{}, false
		}
		return Event{Type: EventKeyDown, Key: e.Keysym.Scancode}, true

	case *sdl.MouseMotionEvent:
		return Event{
			Type:   EventMouseMove,
			MouseX: int(e.X),
			MouseY: int(e.Y),
			DX:     int(e.XRel),
			DY:     int(e.YRel),
		}, true

	case *sdl.MouseButtonEvent:
		t := EventMouseUp
		if e.Type == sdl.MOUSEBUTTONDOWN {
			t = EventMouseDown
		}
		return Event{Type: t, MouseX: int(e.X), MouseY: int(e.Y), Button: e.Button}, true

	case *sdl.MouseWheelEvent:
		w := float32(e.Y)
		if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
			w = -w
		}
		return Event{Type: EventWheel, Wheel: w}, true
	}
	return Event{}, false
}

// Input collects one frame of events and tracks the left-button drag.
type Input struct {
	events []Event
	drag   Drag
}

func New() *Input {
	return &Input{events: make([]Event, 0, 16)}
}

// Update drains the SDL queue and reports whether the viewer should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0]
	quit := false
	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		e, ok := Translate(ev)
		if !ok {
			continue
		}
		i.events = append(i.events, e)
		i.drag.Handle(e)
		quit = quit || e.Quits()
	}
	return quit
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// Drag returns the left-button drag state.
func (i *Input) Drag() *Drag {
	return &i.drag
}
