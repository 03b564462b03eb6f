// Package debug provides the viewer's overlays and screenshot capture.
package debug

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/smolview/internal/scene"
	"github.com/Faultbox/smolview/pkg/molecule"
)

// Overlay colors.
const (
	SelectionColor molecule.Color = 0xffff00
	BoundsColor    molecule.Color = 0x00ffff
)

// SelectionPadding is the gap between a picked sphere and its box.
const SelectionPadding = 0.01

// SelectionBox returns the wireframe drawn around a picked atom.
func SelectionBox(sp scene.Sphere) []scene.Line {
	r := r3.Vec{X: sp.Radius, Y: sp.Radius, Z: sp.Radius}
	b := r3.Box{Min: r3.Sub(sp.Center, r), Max: r3.Add(sp.Center, r)}
	return scene.BBoxEdges(b, SelectionPadding, SelectionColor)
}

// BoundsBox returns the wireframe around everything in s.
func BoundsBox(s *scene.Scene) []scene.Line {
	if s == nil {
		return nil
	}
	return scene.BBoxEdges(s.Bounds, 0, BoundsColor)
}
