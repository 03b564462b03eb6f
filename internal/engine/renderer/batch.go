package renderer

import (
	"github.com/Faultbox/smolview/internal/scene"
	"github.com/Faultbox/smolview/pkg/math"
	"github.com/Faultbox/smolview/pkg/molecule"
)

// SphereRepeat is how often an element texture wraps around a sphere,
// horizontally then vertically.
var SphereRepeat = [2]float32{4, 1}

// SphereDraw is one atom: a unit sphere placed by Model.
type SphereDraw struct {
	Aix     int
	Model   math.Mat4
	Color   [3]float32
	Texture string
}

// LabelDraw is one axis label.
type LabelDraw struct {
	Text   string
	Anchor [3]float32
	Color  molecule.Color
}

// Batch is a scene flattened into what the renderer uploads: one line
// list, merged solid meshes and per-sphere transforms.
type Batch struct {
	LinePositions [][3]float32
	LineColors    [][3]float32

	Cylinders      scene.Mesh
	CylinderColor  [3]float32
	ArrowHeads     scene.Mesh
	ArrowHeadColor [3]float32

	Spheres []SphereDraw
	Labels  []LabelDraw
}

// NewBatch flattens s. Cylinders and arrow heads share one color each,
// as the scene builder assigns them.
func NewBatch(s *scene.Scene, segments int) *Batch {
	b := &Batch{
		CylinderColor:  scene.CylinderColor.RGB(),
		ArrowHeadColor: scene.ArrowColor.RGB(),
	}

	lines := make([]scene.Line, 0, len(s.CellEdges)+len(s.BondLines)+len(s.Arrows))
	lines = append(lines, s.CellEdges...)
	lines = append(lines, s.BondLines...)
	lines = append(lines, scene.ArrowLines(s.Arrows)...)
	b.LinePositions, b.LineColors = scene.LineVertices(lines)

	for _, c := range s.Cylinders {
		b.Cylinders.Append(scene.CylinderMesh(c.From, c.To, c.Radius, segments))
		b.CylinderColor = c.Color.RGB()
	}
	for _, a := range s.Arrows {
		b.ArrowHeads.Append(scene.ArrowHeadMesh(a, segments))
		b.ArrowHeadColor = a.Color.RGB()
		b.Labels = append(b.Labels, LabelDraw{
			Text:   a.Label,
			Anchor: math.FromR3(a.LabelPos).Array(),
			Color:  a.Color,
		})
	}

	b.Spheres = make([]SphereDraw, len(s.Spheres))
	for i, sp := range s.Spheres {
		b.Spheres[i] = SphereDraw{
			Aix:     sp.Aix,
			Model:   math.Translate(math.FromR3(sp.Center)).Mul(math.Scale(float32(sp.Radius))),
			Color:   sp.Color.RGB(),
			Texture: sp.Texture,
		}
	}
	return b
}
