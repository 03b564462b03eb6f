package scene

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/smolview/pkg/molecule"
	"github.com/Faultbox/smolview/pkg/transform"
)

func water(t *testing.T, coordType molecule.CoordType) (*molecule.Molecule, *transform.Result) {
	t.Helper()
	m := &molecule.Molecule{
		Description: "water",
		Atoms: []molecule.Atom{
			{Aix: 0, Sym: "O", Direct: [3]float64{0.5, 0.5, 0.5}},
			{Aix: 1, Sym: "H", Direct: [3]float64{0.6, 0.55, 0.5}},
			{Aix: 2, Sym: "H", Direct: [3]float64{0.4, 0.55, 0.5}},
		},
		Bonds:     []molecule.Bond{{0, 1}, {0, 2}},
		CoordType: coordType,
		Elements: map[string]molecule.Element{
			"O": {Sym: "O", Color: 0xff0d0d, RadiusAtomicPM: 60},
			"H": {Sym: "H", Color: 0xffffff, RadiusAtomicPM: 25},
		},
		PosScale: 1,
	}
	res, err := transform.Apply(m, transform.DefaultOptions())
	if err != nil {
		t.Fatalf("transform failed: %v", err)
	}
	return m, res
}

func TestBuild_Direct(t *testing.T) {
	m, res := water(t, molecule.CoordDirect)

	s, err := Build(m, res, DefaultOptions())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(s.CellEdges) != 12 {
		t.Errorf("expected 12 cell edges, got %d", len(s.CellEdges))
	}
	for _, e := range s.CellEdges {
		if e.Color != CellColor {
			t.Errorf("cell edge color %s, want %s", e.Color.Hex(), CellColor.Hex())
		}
	}
	if len(s.BondLines) != 2 || len(s.Cylinders) != 0 {
		t.Errorf("expected 2 bond lines, got %d lines and %d cylinders", len(s.BondLines), len(s.Cylinders))
	}
	if s.BondLines[0].From != m.Atoms[0].Proj || s.BondLines[0].To != m.Atoms[1].Proj {
		t.Errorf("bond 0 does not join atoms 0 and 1: %+v", s.BondLines[0])
	}
	if s.BondLines[0].Color != BondLineColor {
		t.Errorf("bond color %s, want %s", s.BondLines[0].Color.Hex(), BondLineColor.Hex())
	}

	if len(s.Spheres) != 3 {
		t.Fatalf("expected 3 spheres, got %d", len(s.Spheres))
	}
	o := s.Spheres[0]
	if o.Radius != DefaultFixedRadius || o.Color != 0xff0d0d || o.Texture != "element.O.png" {
		t.Errorf("unexpected oxygen sphere %+v", o)
	}

	if len(s.Arrows) != 3 {
		t.Fatalf("expected 3 arrows, got %d", len(s.Arrows))
	}
	if s.Formula != "H2O" || s.Description != "water" {
		t.Errorf("unexpected header %q %q", s.Description, s.Formula)
	}
}

func TestBuild_CartesianHasNoCell(t *testing.T) {
	m, res := water(t, molecule.CoordCartesian)

	s, err := Build(m, res, DefaultOptions())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(s.CellEdges) != 0 || len(s.Arrows) != 0 {
		t.Errorf("expected no cell or arrows, got %d edges and %d arrows", len(s.CellEdges), len(s.Arrows))
	}
	if len(s.Spheres) != 3 {
		t.Errorf("expected 3 spheres, got %d", len(s.Spheres))
	}
}

func TestBuild_CylindersAndElementRadii(t *testing.T) {
	m, res := water(t, molecule.CoordDirect)

	opts := DefaultOptions()
	opts.BondStyle = BondCylinders
	opts.RadiusMode = RadiusElement
	s, err := Build(m, res, opts)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(s.Cylinders) != 2 || len(s.BondLines) != 0 {
		t.Fatalf("expected 2 cylinders, got %d cylinders and %d lines", len(s.Cylinders), len(s.BondLines))
	}
	if c := s.Cylinders[1]; c.Radius != CylinderRadius || c.Color != CylinderColor {
		t.Errorf("unexpected cylinder %+v", c)
	}
	if got, want := s.Spheres[0].Radius, ElementRadiusScale*60; math.Abs(got-want) > 1e-12 {
		t.Errorf("oxygen radius = %f, want %f", got, want)
	}
}

func TestBuild_BondOutOfRange(t *testing.T) {
	m, res := water(t, molecule.CoordDirect)
	m.Bonds = append(m.Bonds, molecule.Bond{1, 7})

	_, err := Build(m, res, DefaultOptions())
	if !errors.Is(err, molecule.ErrAtomNotFound) {
		t.Errorf("expected ErrAtomNotFound, got %v", err)
	}
}

func TestBuild_UnknownBondStyle(t *testing.T) {
	m, res := water(t, molecule.CoordDirect)
	opts := DefaultOptions()
	opts.BondStyle = "ribbon"
	if _, err := Build(m, res, opts); err == nil {
		t.Error("expected error for unknown bond style")
	}
}

func TestCellEdgesTopology(t *testing.T) {
	edges := CellEdges(transform.UnitCorners(), CellColor)

	// Every edge of a cube joins corners differing in exactly one axis,
	// and each corner touches three edges.
	degree := make(map[r3.Vec]int)
	for i, e := range edges {
		d := r3.Sub(e.To, e.From)
		changed := 0
		for _, c := range []float64{d.X, d.Y, d.Z} {
			if c != 0 {
				changed++
			}
		}
		if changed != 1 {
			t.Errorf("edge %d (%v -> %v) is not axis aligned", i, e.From, e.To)
		}
		degree[e.From]++
		degree[e.To]++
	}
	if len(degree) != 8 {
		t.Errorf("expected 8 corners, got %d", len(degree))
	}
	for c, n := range degree {
		if n != 3 {
			t.Errorf("corner %v has %d edges, want 3", c, n)
		}
	}
}

func TestAxisArrows(t *testing.T) {
	c := transform.UnitCorners()
	arrows := AxisArrows(c, ArrowColor)

	want := []struct {
		label string
		dir   r3.Vec
	}{
		{"x", r3.Vec{X: 1}},
		{"y", r3.Vec{Y: 1}},
		{"z", r3.Vec{Z: 1}},
	}
	for i, w := range want {
		a := arrows[i]
		if a.Label != w.label || a.Dir != w.dir {
			t.Errorf("arrow %d = %s %v, want %s %v", i, a.Label, a.Dir, w.label, w.dir)
		}
		if a.Length != 0.5 {
			t.Errorf("arrow %s length = %f, want 0.5", a.Label, a.Length)
		}
		if tip := a.Tip(); tip != r3.Scale(0.5, w.dir) {
			t.Errorf("arrow %s tip = %v", a.Label, tip)
		}
	}

	// Label at the edge midpoint pulled back by the inset.
	if got, want := arrows[0].LabelPos, (r3.Vec{X: 0.45, Y: -0.05, Z: -0.05}); r3.Norm(r3.Sub(got, want)) > 1e-12 {
		t.Errorf("x label at %v, want %v", got, want)
	}
}

func TestBounds(t *testing.T) {
	m, res := water(t, molecule.CoordDirect)
	s, err := Build(m, res, DefaultOptions())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// The cell spans the cube, so bounds are at least [-0.5, 0.5].
	if s.Bounds.Min.X > -0.5 || s.Bounds.Max.Y < 0.5 {
		t.Errorf("bounds %v do not enclose the cell", s.Bounds)
	}
	for _, sp := range s.Spheres {
		if sp.Center.X-sp.Radius < s.Bounds.Min.X || sp.Center.X+sp.Radius > s.Bounds.Max.X {
			t.Errorf("sphere %d outside bounds", sp.Aix)
		}
	}
}

func TestSphereAt(t *testing.T) {
	m, res := water(t, molecule.CoordDirect)
	s, err := Build(m, res, DefaultOptions())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	sp, err := s.SphereAt(2)
	if err != nil || sp.Sym != "H" {
		t.Errorf("SphereAt(2) = %+v, %v", sp, err)
	}
	if _, err := s.SphereAt(3); !errors.Is(err, molecule.ErrAtomNotFound) {
		t.Errorf("expected ErrAtomNotFound, got %v", err)
	}
}
