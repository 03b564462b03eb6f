// Package scene turns a transformed molecule into draw primitives: cell
// edges, bonds, atom spheres and axis arrows. It has no rendering
// dependency; the GL viewer, the glTF exporter and the web page all draw
// from the same Scene.
package scene

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/smolview/pkg/molecule"
	"github.com/Faultbox/smolview/pkg/transform"
)

// Colors used by the builder.
const (
	CellColor     molecule.Color = 0xff0000
	BondLineColor molecule.Color = 0x606060
	CylinderColor molecule.Color = 0x808080
	ArrowColor    molecule.Color = 0xff0000
)

// Geometry constants, in projection-cube units.
const (
	DefaultFixedRadius = 0.07
	// ElementRadiusScale converts eradiusAtomic_pm to cube units.
	ElementRadiusScale = 0.0007
	CylinderRadius     = 0.02
	LabelSize          = 0.05
	LabelInset         = 0.05
)

// BondStyle selects how bonds are drawn.
type BondStyle string

// Bond styles.
const (
	BondLines     BondStyle = "line"
	BondCylinders BondStyle = "cylinder"
)

// RadiusMode selects how sphere radii are chosen.
type RadiusMode string

// Radius modes.
const (
	RadiusFixed   RadiusMode = "fixed"
	RadiusElement RadiusMode = "element"
)

// Options control the builder.
type Options struct {
	BondStyle      BondStyle
	RadiusMode     RadiusMode
	FixedRadius    float64
	SphereSegments int
}

// DefaultOptions returns line bonds and fixed-size spheres.
func DefaultOptions() Options {
	return Options{
		BondStyle:      BondLines,
		RadiusMode:     RadiusFixed,
		FixedRadius:    DefaultFixedRadius,
		SphereSegments: 16,
	}
}

// Line is a colored segment.
type Line struct {
	From  r3.Vec         `json:"from"`
	To    r3.Vec         `json:"to"`
	Color molecule.Color `json:"color"`
}

// Cylinder is a solid bond.
type Cylinder struct {
	From   r3.Vec         `json:"from"`
	To     r3.Vec         `json:"to"`
	Radius float64        `json:"radius"`
	Color  molecule.Color `json:"color"`
}

// Sphere is one atom.
type Sphere struct {
	Aix     int            `json:"aix"`
	Sym     string         `json:"sym"`
	Center  r3.Vec         `json:"center"`
	Radius  float64        `json:"radius"`
	Color   molecule.Color `json:"color"`
	Texture string         `json:"texture"`
}

// Arrow marks a cell axis. The shaft starts at Origin and runs Length
// along the unit vector Dir; the label sits at LabelPos.
type Arrow struct {
	Label    string         `json:"label"`
	Origin   r3.Vec         `json:"origin"`
	Dir      r3.Vec         `json:"dir"`
	Length   float64        `json:"length"`
	Color    molecule.Color `json:"color"`
	LabelPos r3.Vec         `json:"labelPos"`
}

// Tip returns the end of the arrow.
func (a Arrow) Tip() r3.Vec {
	return r3.Add(a.Origin, r3.Scale(a.Length, a.Dir))
}

// HeadLength returns the length of the arrow head.
func (a Arrow) HeadLength() float64 {
	return 0.2 * a.Length
}

// HeadWidth returns the radius of the arrow head base.
func (a Arrow) HeadWidth() float64 {
	return 0.2 * a.HeadLength()
}

// Scene is the full set of primitives for one molecule.
type Scene struct {
	Description string     `json:"description"`
	Formula     string     `json:"formula"`
	CellEdges   []Line     `json:"cellEdges"`
	BondLines   []Line     `json:"bondLines"`
	Cylinders   []Cylinder `json:"cylinders"`
	Spheres     []Sphere   `json:"spheres"`
	Arrows      []Arrow    `json:"arrows"`
	// Bounds encloses every primitive including sphere radii.
	Bounds r3.Box `json:"bounds"`
}

// TextureName returns the texture file name for an element symbol.
func TextureName(sym string) string {
	return "element." + sym + ".png"
}

// Build creates the scene for a molecule that has been through
// transform.Apply.
func Build(m *molecule.Molecule, res *transform.Result, opts Options) (*Scene, error) {
	if opts.FixedRadius <= 0 {
		opts.FixedRadius = DefaultFixedRadius
	}

	s := &Scene{
		Description: m.Description,
		Formula:     m.Formula(),
		CellEdges:   []Line{},
		BondLines:   []Line{},
		Cylinders:   []Cylinder{},
		Spheres:     make([]Sphere, 0, len(m.Atoms)),
		Arrows:      []Arrow{},
	}

	if res != nil && res.Corners != nil {
		s.CellEdges = CellEdges(res.Corners, CellColor)
		s.Arrows = AxisArrows(res.Corners, ArrowColor)
	}

	for i, b := range m.Bonds {
		a, err := m.Atom(b[0])
		if err != nil {
			return nil, fmt.Errorf("bond %d: %w", i, err)
		}
		c, err := m.Atom(b[1])
		if err != nil {
			return nil, fmt.Errorf("bond %d: %w", i, err)
		}
		switch opts.BondStyle {
		case BondCylinders:
			s.Cylinders = append(s.Cylinders, Cylinder{From: a.Proj, To: c.Proj, Radius: CylinderRadius, Color: CylinderColor})
		case BondLines, "":
			s.BondLines = append(s.BondLines, Line{From: a.Proj, To: c.Proj, Color: BondLineColor})
		default:
			return nil, fmt.Errorf("unknown bond style %q", opts.BondStyle)
		}
	}

	for i := range m.Atoms {
		a := &m.Atoms[i]
		e, err := m.Element(a.Sym)
		if err != nil {
			return nil, fmt.Errorf("atom %s: %w", a, err)
		}
		s.Spheres = append(s.Spheres, Sphere{
			Aix:     a.Aix,
			Sym:     a.Sym,
			Center:  a.Proj,
			Radius:  sphereRadius(e, opts),
			Color:   e.Color,
			Texture: TextureName(a.Sym),
		})
	}

	s.Bounds = s.bounds()
	return s, nil
}

func sphereRadius(e molecule.Element, opts Options) float64 {
	if opts.RadiusMode == RadiusElement && e.RadiusAtomicPM > 0 {
		return ElementRadiusScale * e.RadiusAtomicPM
	}
	return opts.FixedRadius
}

// CellEdges returns the 12 edges of the cell: bottom face, top face, then
// the verticals.
func CellEdges(c *transform.Corners, color molecule.Color) []Line {
	edge := func(a, b r3.Vec) Line { return Line{From: a, To: b, Color: color} }
	return []Line{
		edge(c[0][0][0], c[1][0][0]),
		edge(c[1][0][0], c[1][1][0]),
		edge(c[1][1][0], c[0][1][0]),
		edge(c[0][1][0], c[0][0][0]),

		edge(c[0][0][1], c[1][0][1]),
		edge(c[1][0][1], c[1][1][1]),
		edge(c[1][1][1], c[0][1][1]),
		edge(c[0][1][1], c[0][0][1]),

		edge(c[0][0][0], c[0][0][1]),
		edge(c[1][0][0], c[1][0][1]),
		edge(c[0][1][0], c[0][1][1]),
		edge(c[1][1][0], c[1][1][1]),
	}
}

// AxisArrows returns the x, y and z arrows along the cell edges leaving
// corner (0,0,0). Each covers half its edge.
func AxisArrows(c *transform.Corners, color molecule.Color) []Arrow {
	o := c[0][0][0]
	ends := []struct {
		label string
		to    r3.Vec
	}{
		{"x", c[1][0][0]},
		{"y", c[0][1][0]},
		{"z", c[0][0][1]},
	}

	arrows := make([]Arrow, 0, len(ends))
	inset := r3.Vec{X: LabelInset, Y: LabelInset, Z: LabelInset}
	for _, e := range ends {
		d := r3.Sub(e.to, o)
		n := r3.Norm(d)
		var dir r3.Vec
		if n > 0 {
			dir = r3.Scale(1/n, d)
		}
		arrows = append(arrows, Arrow{
			Label:    e.label,
			Origin:   o,
			Dir:      dir,
			Length:   0.5 * n,
			Color:    color,
			LabelPos: r3.Sub(r3.Scale(0.5, r3.Add(o, e.to)), inset),
		})
	}
	return arrows
}

func (s *Scene) bounds() r3.Box {
	var b r3.Box
	first := true
	grow := func(v r3.Vec, pad float64) {
		lo := r3.Sub(v, r3.Vec{X: pad, Y: pad, Z: pad})
		hi := r3.Add(v, r3.Vec{X: pad, Y: pad, Z: pad})
		if first {
			b = r3.Box{Min: lo, Max: hi}
			first = false
			return
		}
		b.Min = r3.Vec{X: min(b.Min.X, lo.X), Y: min(b.Min.Y, lo.Y), Z: min(b.Min.Z, lo.Z)}
		b.Max = r3.Vec{X: max(b.Max.X, hi.X), Y: max(b.Max.Y, hi.Y), Z: max(b.Max.Z, hi.Z)}
	}

	for _, l := range s.CellEdges {
		grow(l.From, 0)
		grow(l.To, 0)
	}
	for _, sp := range s.Spheres {
		grow(sp.Center, sp.Radius)
	}
	for _, c := range s.Cylinders {
		grow(c.From, c.Radius)
		grow(c.To, c.Radius)
	}
	return b
}

// SphereAt returns the sphere for atom aix.
func (s *Scene) SphereAt(aix int) (*Sphere, error) {
	for i := range s.Spheres {
		if s.Spheres[i].Aix == aix {
			return &s.Spheres[i], nil
		}
	}
	return nil, fmt.Errorf("%w: no sphere for index %d", molecule.ErrAtomNotFound, aix)
}

// Counts summarizes the scene for logs.
func (s *Scene) Counts() map[string]int {
	return map[string]int{
		"edges":  len(s.CellEdges),
		"bonds":  len(s.BondLines) + len(s.Cylinders),
		"atoms":  len(s.Spheres),
		"arrows": len(s.Arrows),
	}
}
