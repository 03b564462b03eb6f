// Package molecule defines the structure record shared by the parsers,
// the coordinate transform and the scene builder.
package molecule

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// Lookup errors.
var (
	ErrAtomNotFound   = errors.New("atom not found")
	ErrUnknownElement = errors.New("unknown element")
)

// CoordType tells how atom coordinates relate to the unit cell.
type CoordType string

// Coordinate types.
const (
	CoordDirect    CoordType = "direct"
	CoordCartesian CoordType = "cartesian"
)

// Valid reports whether t is one of the known coordinate types.
func (t CoordType) Valid() bool {
	return t == CoordDirect || t == CoordCartesian
}

// Atom is a single atom of a structure.
// Cart and Proj are zero until the transform has run.
type Atom struct {
	Aix          int
	Sym          string
	Direct       [3]float64
	Cart         r3.Vec
	Proj         r3.Vec
	IsReflection bool
}

// DirectVec returns the direct coordinates as a vector.
func (a *Atom) DirectVec() r3.Vec {
	return r3.Vec{X: a.Direct[0], Y: a.Direct[1], Z: a.Direct[2]}
}

// String returns a short description used in logs and errors.
func (a *Atom) String() string {
	return fmt.Sprintf("%s#%d(%g, %g, %g)", a.Sym, a.Aix, a.Direct[0], a.Direct[1], a.Direct[2])
}

// Bond joins two atoms by index. Order carries no meaning.
type Bond [2]int

// Basis is a 3x3 lattice matrix in row-major order, one lattice vector per row.
type Basis [3][3]float64

// IdentityBasis returns the identity basis.
func IdentityBasis() *Basis {
	return &Basis{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
}

// Mat returns the basis as a gonum matrix.
func (b *Basis) Mat() *r3.Mat {
	return r3.NewMat([]float64{
		b[0][0], b[0][1], b[0][2],
		b[1][0], b[1][1], b[1][2],
		b[2][0], b[2][1], b[2][2],
	})
}

// Volume returns the cell volume for the given position scale.
func (b *Basis) Volume(posScale float64) float64 {
	det := b.Mat().Det()
	if det < 0 {
		det = -det
	}
	return det * posScale * posScale * posScale
}

// Molecule is the parsed structure: atoms, bonds, optional lattice and the
// element descriptors needed to draw it.
type Molecule struct {
	Description string
	Atoms       []Atom
	Bonds       []Bond
	Basis       *Basis // nil means identity
	CoordType   CoordType
	Elements    map[string]Element
	PosScale    float64
}

// Atom returns the atom with the given index.
func (m *Molecule) Atom(aix int) (*Atom, error) {
	if aix < 0 || aix >= len(m.Atoms) {
		return nil, fmt.Errorf("%w: index %d (have %d atoms)", ErrAtomNotFound, aix, len(m.Atoms))
	}
	return &m.Atoms[aix], nil
}

// Element returns the descriptor for symbol sym.
func (m *Molecule) Element(sym string) (Element, error) {
	e, ok := m.Elements[sym]
	if !ok {
		return Element{}, fmt.Errorf("%w: %q", ErrUnknownElement, sym)
	}
	return e, nil
}

// BasisOrIdentity returns the basis, substituting the identity when absent.
func (m *Molecule) BasisOrIdentity() *Basis {
	if m.Basis == nil {
		return IdentityBasis()
	}
	return m.Basis
}

// Symbols returns the distinct element symbols in sorted order.
func (m *Molecule) Symbols() []string {
	seen := make(map[string]bool)
	var syms []string
	for _, a := range m.Atoms {
		if !seen[a.Sym] {
			seen[a.Sym] = true
			syms = append(syms, a.Sym)
		}
	}
	sort.Strings(syms)
	return syms
}

// Formula returns a Hill-ordered count summary such as "C2H6O".
// Reflection images are not counted.
func (m *Molecule) Formula() string {
	counts := make(map[string]int)
	for _, a := range m.Atoms {
		if !a.IsReflection {
			counts[a.Sym]++
		}
	}

	var syms []string
	for s := range counts {
		syms = append(syms, s)
	}
	_, hasC := counts["C"]
	sort.Slice(syms, func(i, j int) bool {
		if hasC {
			rank := func(s string) int {
				switch s {
				case "C":
					return 0
				case "H":
					return 1
				}
				return 2
			}
			ri, rj := rank(syms[i]), rank(syms[j])
			if ri != rj {
				return ri < rj
			}
		}
		return syms[i] < syms[j]
	})

	var out string
	for _, s := range syms {
		out += s
		if counts[s] > 1 {
			out += fmt.Sprintf("%d", counts[s])
		}
	}
	return out
}
