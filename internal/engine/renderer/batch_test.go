package renderer

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/smolview/internal/scene"
	"github.com/Faultbox/smolview/pkg/math"
)

func testScene() *scene.Scene {
	return &scene.Scene{
		CellEdges: []scene.Line{
			{From: r3.Vec{}, To: r3.Vec{X: 1}, Color: scene.CellColor},
		},
		BondLines: []scene.Line{
			{From: r3.Vec{}, To: r3.Vec{Y: 1}, Color: scene.BondLineColor},
		},
		Cylinders: []scene.Cylinder{
			{From: r3.Vec{}, To: r3.Vec{Z: 1}, Radius: 0.02, Color: scene.CylinderColor},
		},
		Spheres: []scene.Sphere{
			{Aix: 3, Sym: "C", Center: r3.Vec{X: 0.1, Y: 0.2, Z: 0.3}, Radius: 0.5, Color: 0x909090, Texture: "element.C.png"},
		},
		Arrows: []scene.Arrow{
			{Label: "x", Origin: r3.Vec{}, Dir: r3.Vec{X: 1}, Length: 0.5, Color: scene.ArrowColor, LabelPos: r3.Vec{X: 0.45, Y: -0.05, Z: -0.05}},
		},
	}
}

func TestNewBatch(t *testing.T) {
	b := NewBatch(testScene(), 8)

	// edge + bond + arrow shaft
	if len(b.LinePositions) != 6 || len(b.LineColors) != 6 {
		t.Fatalf("expected 6 line vertices, got %d/%d", len(b.LinePositions), len(b.LineColors))
	}
	if b.LineColors[0] != scene.CellColor.RGB() || b.LineColors[2] != scene.BondLineColor.RGB() {
		t.Errorf("unexpected line colors %v", b.LineColors)
	}
	if shaftEnd := b.LinePositions[5]; shaftEnd[0] != 0.4 {
		t.Errorf("arrow shaft should stop at the head base, got %v", shaftEnd)
	}

	if b.Cylinders.VertexCount() == 0 || b.ArrowHeads.VertexCount() == 0 {
		t.Error("expected cylinder and arrow head meshes")
	}
	if b.CylinderColor != scene.CylinderColor.RGB() {
		t.Errorf("cylinder color = %v", b.CylinderColor)
	}

	if len(b.Labels) != 1 || b.Labels[0].Text != "x" {
		t.Fatalf("unexpected labels %v", b.Labels)
	}
	if b.Labels[0].Anchor != [3]float32{0.45, -0.05, -0.05} {
		t.Errorf("label anchor = %v", b.Labels[0].Anchor)
	}
}

func TestNewBatch_SphereModel(t *testing.T) {
	b := NewBatch(testScene(), 8)
	if len(b.Spheres) != 1 {
		t.Fatalf("expected 1 sphere, got %d", len(b.Spheres))
	}
	sp := b.Spheres[0]
	if sp.Aix != 3 || sp.Texture != "element.C.png" {
		t.Errorf("unexpected sphere %+v", sp)
	}

	// unit sphere point (1,0,0) lands at center + radius along X
	got := sp.Model.TransformPoint(math.Vec3{X: 1})
	want := math.Vec3{X: 0.6, Y: 0.2, Z: 0.3}
	if d := got.Sub(want).Length(); d > 1e-6 {
		t.Errorf("model maps (1,0,0) to %v, want %v", got, want)
	}
}

func TestNewBatch_Empty(t *testing.T) {
	b := NewBatch(&scene.Scene{}, 8)
	if len(b.LinePositions) != 0 || len(b.Spheres) != 0 || b.Cylinders.VertexCount() != 0 {
		t.Errorf("expected empty batch, got %+v", b)
	}
}
