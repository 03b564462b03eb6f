package scene

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/smolview/pkg/molecule"
)

// Mesh is an indexed triangle list in the layout vertex buffers and glTF
// accessors take directly.
type Mesh struct {
	Positions [][3]float32
	Normals   [][3]float32
	UVs       [][2]float32
	Indices   []uint32
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// Append adds other to m, shifting its indices.
func (m *Mesh) Append(other Mesh) {
	base := uint32(len(m.Positions))
	m.Positions = append(m.Positions, other.Positions...)
	m.Normals = append(m.Normals, other.Normals...)
	m.UVs = append(m.UVs, other.UVs...)
	for _, i := range other.Indices {
		m.Indices = append(m.Indices, base+i)
	}
}

func (m *Mesh) add(p, n r3.Vec, u, v float64) {
	m.Positions = append(m.Positions, vec32(p))
	m.Normals = append(m.Normals, vec32(n))
	m.UVs = append(m.UVs, [2]float32{float32(u), float32(v)})
}

func vec32(v r3.Vec) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}

// SphereMesh tessellates a UV sphere with the given number of width and
// height segments. U runs around the equator, V from pole to pole.
func SphereMesh(center r3.Vec, radius float64, segments int) Mesh {
	if segments < 3 {
		segments = 3
	}
	w, h := segments, segments

	var m Mesh
	for y := 0; y <= h; y++ {
		v := float64(y) / float64(h)
		theta := v * math.Pi
		for x := 0; x <= w; x++ {
			u := float64(x) / float64(w)
			phi := u * 2 * math.Pi
			n := r3.Vec{
				X: -math.Cos(phi) * math.Sin(theta),
				Y: math.Cos(theta),
				Z: math.Sin(phi) * math.Sin(theta),
			}
			m.add(r3.Add(center, r3.Scale(radius, n)), n, u, 1-v)
		}
	}

	row := uint32(w + 1)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := uint32(y)*row + uint32(x)
			b := a + row
			if y != 0 {
				m.Indices = append(m.Indices, a, b, a+1)
			}
			if y != h-1 {
				m.Indices = append(m.Indices, a+1, b, b+1)
			}
		}
	}
	return m
}

// frame returns two unit vectors perpendicular to axis and each other.
func frame(axis r3.Vec) (r3.Vec, r3.Vec) {
	ref := r3.Vec{Y: 1}
	if math.Abs(axis.Y) > 0.9 {
		ref = r3.Vec{X: 1}
	}
	u := r3.Unit(r3.Cross(axis, ref))
	v := r3.Cross(axis, u)
	return u, v
}

// CylinderMesh tessellates a capped cylinder between from and to.
// A zero-length cylinder yields an empty mesh.
func CylinderMesh(from, to r3.Vec, radius float64, segments int) Mesh {
	return taper(from, to, radius, radius, segments)
}

// ConeMesh tessellates a capped cone with its base at base and apex at tip.
func ConeMesh(base, tip r3.Vec, radius float64, segments int) Mesh {
	return taper(base, tip, radius, 0, segments)
}

func taper(from, to r3.Vec, r0, r1 float64, segments int) Mesh {
	var m Mesh
	d := r3.Sub(to, from)
	length := r3.Norm(d)
	if length == 0 {
		return m
	}
	if segments < 3 {
		segments = 3
	}
	axis := r3.Scale(1/length, d)
	u, v := frame(axis)
	slope := (r0 - r1) / length

	ring := func(i int) r3.Vec {
		a := 2 * math.Pi * float64(i) / float64(segments)
		return r3.Add(r3.Scale(math.Cos(a), u), r3.Scale(math.Sin(a), v))
	}

	// Side.
	for i := 0; i <= segments; i++ {
		dir := ring(i)
		n := r3.Unit(r3.Add(dir, r3.Scale(slope, axis)))
		s := float64(i) / float64(segments)
		m.add(r3.Add(from, r3.Scale(r0, dir)), n, s, 0)
		m.add(r3.Add(to, r3.Scale(r1, dir)), n, s, 1)
	}
	for i := 0; i < segments; i++ {
		a := uint32(2 * i)
		m.Indices = append(m.Indices, a, a+2, a+1, a+1, a+2, a+3)
	}

	// Caps.
	addCap := func(center r3.Vec, r float64, n r3.Vec, flip bool) {
		if r == 0 {
			return
		}
		c := uint32(len(m.Positions))
		m.add(center, n, 0.5, 0.5)
		for i := 0; i < segments; i++ {
			dir := ring(i)
			m.add(r3.Add(center, r3.Scale(r, dir)), n, 0.5+0.5*dir.X, 0.5+0.5*dir.Y)
		}
		for i := 0; i < segments; i++ {
			a := c + 1 + uint32(i)
			b := c + 1 + uint32((i+1)%segments)
			if flip {
				m.Indices = append(m.Indices, c, b, a)
			} else {
				m.Indices = append(m.Indices, c, a, b)
			}
		}
	}
	addCap(from, r0, r3.Scale(-1, axis), true)
	addCap(to, r1, axis, false)
	return m
}

// LineVertices flattens lines into endpoint positions and per-vertex
// colors for a GL_LINES draw.
func LineVertices(lines []Line) (positions, colors [][3]float32) {
	positions = make([][3]float32, 0, 2*len(lines))
	colors = make([][3]float32, 0, 2*len(lines))
	for _, l := range lines {
		c := l.Color.RGB()
		positions = append(positions, vec32(l.From), vec32(l.To))
		colors = append(colors, c, c)
	}
	return positions, colors
}

// ArrowLines returns each arrow's shaft, up to the base of its head, as a line.
func ArrowLines(arrows []Arrow) []Line {
	lines := make([]Line, 0, len(arrows))
	for _, a := range arrows {
		base := r3.Add(a.Origin, r3.Scale(a.Length-a.HeadLength(), a.Dir))
		lines = append(lines, Line{From: a.Origin, To: base, Color: a.Color})
	}
	return lines
}

// ArrowHeadMesh returns the cone for the head of a.
func ArrowHeadMesh(a Arrow, segments int) Mesh {
	base := r3.Add(a.Origin, r3.Scale(a.Length-a.HeadLength(), a.Dir))
	return ConeMesh(base, a.Tip(), a.HeadWidth(), segments)
}

// BBoxEdges returns the 12 edges of b grown by pad on every side.
func BBoxEdges(b r3.Box, pad float64, color molecule.Color) []Line {
	p := r3.Vec{X: pad, Y: pad, Z: pad}
	lo, hi := r3.Sub(b.Min, p), r3.Add(b.Max, p)
	corner := func(x, y, z bool) r3.Vec {
		v := lo
		if x {
			v.X = hi.X
		}
		if y {
			v.Y = hi.Y
		}
		if z {
			v.Z = hi.Z
		}
		return v
	}

	edges := [12][2][3]bool{
		// bottom
		{{false, false, false}, {true, false, false}},
		{{true, false, false}, {true, false, true}},
		{{true, false, true}, {false, false, true}},
		{{false, false, true}, {false, false, false}},
		// top
		{{false, true, false}, {true, true, false}},
		{{true, true, false}, {true, true, true}},
		{{true, true, true}, {false, true, true}},
		{{false, true, true}, {false, true, false}},
		// verticals
		{{false, false, false}, {false, true, false}},
		{{true, false, false}, {true, true, false}},
		{{true, false, true}, {true, true, true}},
		{{false, false, true}, {false, true, true}},
	}
	lines := make([]Line, len(edges))
	for i, e := range edges {
		lines[i] = Line{
			From:  corner(e[0][0], e[0][1], e[0][2]),
			To:    corner(e[1][0], e[1][1], e[1][2]),
			Color: color,
		}
	}
	return lines
}
