// Package transform maps atom coordinates from direct (fractional) space to
// cartesian space and then into the projection cube used for display.
//
// The projection cube is the unit cube shifted by Offset, so with the
// default offset every projected coordinate lies in [-0.5, 0.5].
package transform

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/smolview/pkg/molecule"
)

// Tolerance is how far outside [0, 1] a direct coordinate may lie.
const Tolerance = 0.01

// DefaultOffset centers the unit cube on the origin.
const DefaultOffset = 0.5

// Transform errors.
var (
	ErrInvalidCoordinate = errors.New("direct coordinate outside unit cell")
	ErrNonFinite         = errors.New("non-finite coordinate")
)

// Options control the projection.
type Options struct {
	Offset float64
}

// DefaultOptions returns options with the default offset.
func DefaultOptions() Options {
	return Options{Offset: DefaultOffset}
}

// Corners holds the 8 unit-cell corners indexed by (i, j, k) in {0, 1}.
type Corners [2][2][2]r3.Vec

// UnitCorners returns the corners of the unit cell in direct space.
func UnitCorners() *Corners {
	var c Corners
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			for k := 0; k < 2; k++ {
				c[i][j][k] = r3.Vec{X: float64(i), Y: float64(j), Z: float64(k)}
			}
		}
	}
	return &c
}

// Each calls fn for every corner in (i, j, k) order.
func (c *Corners) Each(fn func(i, j, k int, v *r3.Vec)) {
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			for k := 0; k < 2; k++ {
				fn(i, j, k, &c[i][j][k])
			}
		}
	}
}

// Result describes the projection applied to a molecule.
type Result struct {
	// Corners are the projected unit-cell corners, nil for cartesian input.
	Corners *Corners
	Min     r3.Vec
	Max     r3.Vec
	Range   r3.Vec
}

// Box returns the cartesian bounding box.
func (r *Result) Box() r3.Box {
	return r3.Box{Min: r.Min, Max: r.Max}
}

// DirectToCartesian returns s * (Bᵗ * c). A nil basis is the identity.
func DirectToCartesian(s float64, basis *molecule.Basis, c r3.Vec) (r3.Vec, error) {
	if !inUnitRange(c.X) || !inUnitRange(c.Y) || !inUnitRange(c.Z) {
		return r3.Vec{}, fmt.Errorf("%w: (%g, %g, %g)", ErrInvalidCoordinate, c.X, c.Y, c.Z)
	}
	if basis == nil {
		return r3.Scale(s, c), nil
	}
	return r3.Scale(s, basis.Mat().MulVecTrans(c)), nil
}

func inUnitRange(v float64) bool {
	return v >= -Tolerance && v <= 1+Tolerance
}

// CartesianToProjection returns (c - lo) / rng - offset per component.
// A zero-range axis maps to the middle of the cube.
func CartesianToProjection(offset float64, lo, rng, c r3.Vec) r3.Vec {
	return r3.Vec{
		X: project(c.X, lo.X, rng.X) - offset,
		Y: project(c.Y, lo.Y, rng.Y) - offset,
		Z: project(c.Z, lo.Z, rng.Z) - offset,
	}
}

func project(v, lo, rng float64) float64 {
	if rng == 0 {
		return 0.5
	}
	return (v - lo) / rng
}

// Apply fills Cart and Proj of every atom in m and returns the projection
// used. The molecule is expected to have passed molecule.Validate.
//
// The bounding box starts from the cell corners (direct input only) and is
// widened by the atoms, so the corners share the atoms' projection space.
// A lone atom sits at the origin and leaves the box to the corners.
func Apply(m *molecule.Molecule, opts Options) (*Result, error) {
	if len(m.Atoms) == 0 {
		return nil, molecule.Invalid("atoms", 0, "must not be empty")
	}

	res := &Result{
		Min: r3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)},
		Max: r3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)},
	}

	if m.CoordType == molecule.CoordDirect {
		corners := UnitCorners()
		var err error
		corners.Each(func(i, j, k int, v *r3.Vec) {
			if err != nil {
				return
			}
			var cart r3.Vec
			cart, err = DirectToCartesian(m.PosScale, m.Basis, *v)
			*v = cart
			res.include(cart)
		})
		if err != nil {
			return nil, fmt.Errorf("corner: %w", err)
		}
		res.Corners = corners
	}

	for i := range m.Atoms {
		a := &m.Atoms[i]
		cart, err := DirectToCartesian(m.PosScale, m.Basis, a.DirectVec())
		if err != nil {
			return nil, fmt.Errorf("atom %s: %w", a, err)
		}
		a.Cart = cart
	}

	if len(m.Atoms) == 1 {
		m.Atoms[0].Proj = r3.Vec{}
		if res.Corners == nil {
			res.include(m.Atoms[0].Cart)
		}
	} else {
		for i := range m.Atoms {
			res.include(m.Atoms[i].Cart)
		}
	}
	res.Range = r3.Sub(res.Max, res.Min)

	if len(m.Atoms) > 1 {
		for i := range m.Atoms {
			a := &m.Atoms[i]
			a.Proj = CartesianToProjection(opts.Offset, res.Min, res.Range, a.Cart)
		}
	}
	if res.Corners != nil {
		res.Corners.Each(func(i, j, k int, v *r3.Vec) {
			*v = CartesianToProjection(opts.Offset, res.Min, res.Range, *v)
		})
	}

	return res, checkFinite(m, res)
}

func (r *Result) include(v r3.Vec) {
	r.Min = r3.Vec{X: math.Min(r.Min.X, v.X), Y: math.Min(r.Min.Y, v.Y), Z: math.Min(r.Min.Z, v.Z)}
	r.Max = r3.Vec{X: math.Max(r.Max.X, v.X), Y: math.Max(r.Max.Y, v.Y), Z: math.Max(r.Max.Z, v.Z)}
}

func checkFinite(m *molecule.Molecule, res *Result) error {
	for i := range m.Atoms {
		a := &m.Atoms[i]
		if !finite(a.Cart) || !finite(a.Proj) {
			return fmt.Errorf("%w: atom %s cart=%v proj=%v", ErrNonFinite, a, a.Cart, a.Proj)
		}
	}
	if res.Corners != nil {
		var bad error
		res.Corners.Each(func(i, j, k int, v *r3.Vec) {
			if bad == nil && !finite(*v) {
				bad = fmt.Errorf("%w: corner (%d, %d, %d) = %v", ErrNonFinite, i, j, k, *v)
			}
		})
		return bad
	}
	return nil
}

func finite(v r3.Vec) bool {
	for _, f := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
