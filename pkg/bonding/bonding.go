// Package bonding adds periodic images and infers bonds for structures that
// arrive without them, such as XYZ files.
package bonding

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/smolview/pkg/molecule"
	"github.com/Faultbox/smolview/pkg/transform"
)

// ReflectionTolerance is how close to a cell face an atom must be to get
// an image on the opposite face.
const ReflectionTolerance = 0.02

// DistanceMode selects how the distance between two atoms is measured.
type DistanceMode string

// Distance modes.
const (
	// Center measures between atom centers.
	Center DistanceMode = "center"
	// Shell subtracts both atomic radii, floored at zero.
	Shell DistanceMode = "shell"
)

// ParseDistanceMode converts a name to a DistanceMode.
func ParseDistanceMode(s string) (DistanceMode, error) {
	switch DistanceMode(s) {
	case Center, Shell:
		return DistanceMode(s), nil
	}
	return "", fmt.Errorf("unknown distance mode %q (want center or shell)", s)
}

// AddReflections appends an image for every atom lying on a cell face, on
// the opposite face. Images of images are added for atoms on edges and
// corners. The returned slice maps every atom to the index of the original
// atom it was derived from.
func AddReflections(m *molecule.Molecule) []int {
	origins := make([]int, len(m.Atoms))
	for i := range origins {
		origins[i] = i
	}

	n := len(m.Atoms)
	for i := 0; i < n; i++ {
		origins = reflect(m, origins, i, 0)
	}
	return origins
}

func reflect(m *molecule.Molecule, origins []int, idx, axis int) []int {
	if axis < 2 {
		origins = reflect(m, origins, idx, axis+1)
	}

	src := m.Atoms[idx]
	v := src.Direct[axis]
	var incr float64
	switch {
	case math.Abs(v) < ReflectionTolerance:
		incr = 1
	case math.Abs(1-v) < ReflectionTolerance:
		incr = -1
	default:
		return origins
	}

	coords := src.Direct
	coords[axis] = math.Max(0, math.Min(1, coords[axis]+incr))
	img := len(m.Atoms)
	m.Atoms = append(m.Atoms, molecule.Atom{
		Aix:          img,
		Sym:          src.Sym,
		Direct:       coords,
		IsReflection: true,
	})
	origins = append(origins, origins[idx])

	if axis < 2 {
		origins = reflect(m, origins, img, axis+1)
	}
	return origins
}

type pair struct {
	a, b int
	dist float64
}

// InferBonds links the atoms of m into a spanning forest of shortest
// distances. Pairs are visited in order of increasing distance and a bond is
// recorded whenever it joins two groups that were not yet connected. Every
// atom starts in the group of its origin, so images never bond to the atom
// they were derived from. A nil origins slice treats every atom as original.
func InferBonds(m *molecule.Molecule, origins []int, mode DistanceMode) ([]molecule.Bond, error) {
	bonds := []molecule.Bond{}
	n := len(m.Atoms)
	if n < 2 {
		return bonds, nil
	}
	if origins != nil && len(origins) != n {
		return nil, fmt.Errorf("origins has %d entries for %d atoms", len(origins), n)
	}

	cart := make([]r3.Vec, n)
	radius := make([]float64, n)
	for i := range m.Atoms {
		a := &m.Atoms[i]
		c, err := transform.DirectToCartesian(m.PosScale, m.Basis, a.DirectVec())
		if err != nil {
			return nil, fmt.Errorf("atom %s: %w", a, err)
		}
		cart[i] = c
		if mode == Shell {
			e, err := m.Element(a.Sym)
			if err != nil {
				return nil, err
			}
			// pm to Angstrom
			radius[i] = 0.01 * e.RadiusAtomicPM
		}
	}

	pairs := make([]pair, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := r3.Norm(r3.Sub(cart[i], cart[j]))
			switch mode {
			case Center:
			case Shell:
				d = math.Max(0, d-radius[i]-radius[j])
			default:
				return nil, fmt.Errorf("unknown distance mode %q", mode)
			}
			pairs = append(pairs, pair{a: i, b: j, dist: d})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].dist < pairs[j].dist
	})

	groups := newForest(n)
	for i, o := range origins {
		groups.union(o, i)
	}

	for _, p := range pairs {
		if groups.union(p.a, p.b) {
			bonds = append(bonds, molecule.Bond{p.a, p.b})
		}
	}
	return bonds, nil
}

// Augment prepares a structure read without bonds: it adds reflections and
// replaces the bonds with inferred ones.
func Augment(m *molecule.Molecule, mode DistanceMode) error {
	origins := AddReflections(m)
	bonds, err := InferBonds(m, origins, mode)
	if err != nil {
		return err
	}
	m.Bonds = bonds
	return nil
}

// forest is a disjoint-set over atom indices.
type forest struct {
	parent []int
	rank   []int
}

func newForest(n int) *forest {
	f := &forest{parent: make([]int, n), rank: make([]int, n)}
	for i := range f.parent {
		f.parent[i] = i
	}
	return f
}

func (f *forest) find(i int) int {
	for f.parent[i] != i {
		f.parent[i] = f.parent[f.parent[i]]
		i = f.parent[i]
	}
	return i
}

// union joins the groups of a and b, reporting whether they were separate.
func (f *forest) union(a, b int) bool {
	ra, rb := f.find(a), f.find(b)
	if ra == rb {
		return false
	}
	switch {
	case f.rank[ra] < f.rank[rb]:
		f.parent[ra] = rb
	case f.rank[ra] > f.rank[rb]:
		f.parent[rb] = ra
	default:
		f.parent[rb] = ra
		f.rank[ra]++
	}
	return true
}
