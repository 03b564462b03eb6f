package scene

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func checkIndices(t *testing.T, m Mesh) {
	t.Helper()
	if len(m.Indices)%3 != 0 {
		t.Errorf("index count %d is not a multiple of 3", len(m.Indices))
	}
	if len(m.Normals) != len(m.Positions) || len(m.UVs) != len(m.Positions) {
		t.Errorf("attribute lengths differ: %d positions, %d normals, %d uvs",
			len(m.Positions), len(m.Normals), len(m.UVs))
	}
	for _, i := range m.Indices {
		if int(i) >= len(m.Positions) {
			t.Fatalf("index %d out of range (%d vertices)", i, len(m.Positions))
		}
	}
}

func dist(p [3]float32, c r3.Vec) float64 {
	return r3.Norm(r3.Sub(r3.Vec{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}, c))
}

func TestSphereMesh(t *testing.T) {
	center := r3.Vec{X: 0.1, Y: -0.2, Z: 0.3}
	m := SphereMesh(center, 0.07, 16)
	checkIndices(t, m)

	if m.VertexCount() != 17*17 {
		t.Errorf("expected %d vertices, got %d", 17*17, m.VertexCount())
	}
	// Poles contribute one triangle per segment, other rows two.
	if want := 3 * (2*16*16 - 2*16); len(m.Indices) != want {
		t.Errorf("expected %d indices, got %d", want, len(m.Indices))
	}
	for i, p := range m.Positions {
		if d := dist(p, center); math.Abs(d-0.07) > 1e-6 {
			t.Fatalf("vertex %d at distance %f from center", i, d)
		}
	}
}

func TestCylinderMesh(t *testing.T) {
	from := r3.Vec{X: -0.2}
	to := r3.Vec{X: 0.3, Y: 0.1}
	m := CylinderMesh(from, to, 0.02, 12)
	checkIndices(t, m)

	axis := r3.Unit(r3.Sub(to, from))
	for i, p := range m.Positions[:2*13] {
		v := r3.Sub(r3.Vec{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}, from)
		radial := r3.Sub(v, r3.Scale(r3.Dot(v, axis), axis))
		if math.Abs(r3.Norm(radial)-0.02) > 1e-6 {
			t.Fatalf("side vertex %d at radius %f", i, r3.Norm(radial))
		}
	}

	if empty := CylinderMesh(from, from, 0.02, 12); empty.VertexCount() != 0 {
		t.Errorf("zero-length cylinder has %d vertices", empty.VertexCount())
	}
}

func TestConeMesh(t *testing.T) {
	m := ConeMesh(r3.Vec{}, r3.Vec{Z: 1}, 0.1, 8)
	checkIndices(t, m)

	// Side vertices alternate base and apex.
	for i := 1; i < 18; i += 2 {
		if p := m.Positions[i]; p != [3]float32{0, 0, 1} {
			t.Fatalf("apex vertex %d at %v", i, p)
		}
	}
}

func TestMeshAppend(t *testing.T) {
	a := SphereMesh(r3.Vec{}, 1, 4)
	b := SphereMesh(r3.Vec{X: 3}, 1, 4)
	n := a.VertexCount()

	a.Append(b)
	checkIndices(t, a)
	if a.VertexCount() != 2*n {
		t.Errorf("expected %d vertices, got %d", 2*n, a.VertexCount())
	}
	if a.Indices[len(a.Indices)-1] < uint32(n) {
		t.Error("appended indices were not shifted")
	}
}

func TestLineVertices(t *testing.T) {
	lines := []Line{
		{From: r3.Vec{}, To: r3.Vec{X: 1}, Color: 0xff0000},
		{From: r3.Vec{Y: 1}, To: r3.Vec{Z: 1}, Color: 0x0000ff},
	}
	pos, col := LineVertices(lines)
	if len(pos) != 4 || len(col) != 4 {
		t.Fatalf("expected 4 vertices, got %d positions and %d colors", len(pos), len(col))
	}
	if pos[1] != [3]float32{1, 0, 0} || col[3] != [3]float32{0, 0, 1} {
		t.Errorf("unexpected vertices %v %v", pos, col)
	}
}

func TestArrowGeometry(t *testing.T) {
	a := Arrow{Origin: r3.Vec{}, Dir: r3.Vec{Y: 1}, Length: 1}
	shaft := ArrowLines([]Arrow{a})[0]
	if shaft.To != (r3.Vec{Y: 0.8}) {
		t.Errorf("shaft ends at %v, want (0, 0.8, 0)", shaft.To)
	}
	head := ArrowHeadMesh(a, 8)
	checkIndices(t, head)
	if head.VertexCount() == 0 {
		t.Error("expected arrow head vertices")
	}
}

func TestBBoxEdges(t *testing.T) {
	b := r3.Box{Min: r3.Vec{X: 0, Y: 0, Z: 0}, Max: r3.Vec{X: 1, Y: 2, Z: 3}}
	lines := BBoxEdges(b, 0.5, 0x00ff00)
	if len(lines) != 12 {
		t.Fatalf("expected 12 edges, got %d", len(lines))
	}

	lengths := map[float64]int{}
	for _, l := range lines {
		if l.Color != 0x00ff00 {
			t.Errorf("edge color = %s", l.Color.Hex())
		}
		lengths[r3.Norm(r3.Sub(l.To, l.From))]++
		for _, v := range []r3.Vec{l.From, l.To} {
			if v.X < -0.5 || v.X > 1.5 || v.Y < -0.5 || v.Y > 2.5 || v.Z < -0.5 || v.Z > 3.5 {
				t.Errorf("corner %v outside padded box", v)
			}
		}
	}
	// padded extents are 2, 3 and 4, four edges each
	for _, want := range []float64{2, 3, 4} {
		if lengths[want] != 4 {
			t.Errorf("expected 4 edges of length %v, got %d", want, lengths[want])
		}
	}
}
