package bonding

import (
	"testing"

	"github.com/Faultbox/smolview/pkg/molecule"
)

func newMolecule(coords ...[3]float64) *molecule.Molecule {
	m := &molecule.Molecule{
		Description: "test",
		CoordType:   molecule.CoordCartesian,
		PosScale:    1,
		Elements:    map[string]molecule.Element{"H": {Sym: "H", RadiusAtomicPM: 25}},
	}
	for i, c := range coords {
		m.Atoms = append(m.Atoms, molecule.Atom{Aix: i, Sym: "H", Direct: c})
	}
	return m
}

func equalBonds(a, b []molecule.Bond) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAddReflections(t *testing.T) {
	tests := []struct {
		name   string
		coords [3]float64
		want   [][3]float64
	}{
		{"interior", [3]float64{0.5, 0.5, 0.5}, nil},
		{"low face", [3]float64{0, 0.5, 0.5}, [][3]float64{{1, 0.5, 0.5}}},
		{"high face", [3]float64{0.5, 0.995, 0.5}, [][3]float64{{0.5, 0, 0.5}}},
		{"edge", [3]float64{0, 0, 0.5}, [][3]float64{{0, 1, 0.5}, {1, 0, 0.5}, {1, 1, 0.5}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMolecule(tt.coords)
			origins := AddReflections(m)

			if len(m.Atoms) != 1+len(tt.want) {
				t.Fatalf("expected %d atoms, got %d", 1+len(tt.want), len(m.Atoms))
			}
			if len(origins) != len(m.Atoms) {
				t.Fatalf("origins has %d entries for %d atoms", len(origins), len(m.Atoms))
			}
			for i, w := range tt.want {
				a := m.Atoms[i+1]
				if a.Direct != w {
					t.Errorf("image %d at %v, want %v", i, a.Direct, w)
				}
				if !a.IsReflection || a.Aix != i+1 || origins[i+1] != 0 {
					t.Errorf("image %d: reflection=%v aix=%d origin=%d", i, a.IsReflection, a.Aix, origins[i+1])
				}
			}
			if err := molecule.Validate(m); err != nil {
				t.Errorf("augmented molecule should validate: %v", err)
			}
		})
	}
}

func TestAddReflections_Corner(t *testing.T) {
	m := newMolecule([3]float64{0, 0, 0}, [3]float64{0.5, 0.5, 0.5})
	origins := AddReflections(m)

	if len(m.Atoms) != 9 {
		t.Fatalf("expected 9 atoms, got %d", len(m.Atoms))
	}
	seen := make(map[[3]float64]bool)
	for i, a := range m.Atoms {
		if a.Sym == "H" && a.Direct != [3]float64{0.5, 0.5, 0.5} {
			seen[a.Direct] = true
			if origins[i] != 0 {
				t.Errorf("corner image %d has origin %d", i, origins[i])
			}
		}
	}
	if len(seen) != 8 {
		t.Errorf("expected all 8 corners, got %d", len(seen))
	}
}

func TestInferBonds_Center(t *testing.T) {
	m := newMolecule(
		[3]float64{0.1, 0.5, 0.5},
		[3]float64{0.25, 0.5, 0.5},
		[3]float64{0.7, 0.5, 0.5},
	)

	bonds, err := InferBonds(m, nil, Center)
	if err != nil {
		t.Fatalf("InferBonds failed: %v", err)
	}
	want := []molecule.Bond{{0, 1}, {1, 2}}
	if !equalBonds(bonds, want) {
		t.Errorf("bonds = %v, want %v", bonds, want)
	}
}

func TestInferBonds_Shell(t *testing.T) {
	// Radii of 0.25 swallow every gap, so all distances tie at zero and
	// pairs are taken in index order.
	m := newMolecule(
		[3]float64{0.1, 0.5, 0.5},
		[3]float64{0.2, 0.5, 0.5},
		[3]float64{0.3, 0.5, 0.5},
	)

	bonds, err := InferBonds(m, nil, Shell)
	if err != nil {
		t.Fatalf("InferBonds failed: %v", err)
	}
	want := []molecule.Bond{{0, 1}, {0, 2}}
	if !equalBonds(bonds, want) {
		t.Errorf("bonds = %v, want %v", bonds, want)
	}
}

func TestInferBonds_ReflectionsShareOrigin(t *testing.T) {
	m := newMolecule([3]float64{0, 0.5, 0.5}, [3]float64{0.3, 0.5, 0.5})
	origins := AddReflections(m)

	bonds, err := InferBonds(m, origins, Center)
	if err != nil {
		t.Fatalf("InferBonds failed: %v", err)
	}
	want := []molecule.Bond{{0, 1}}
	if !equalBonds(bonds, want) {
		t.Errorf("bonds = %v, want %v", bonds, want)
	}
}

func TestInferBonds_SpanningForest(t *testing.T) {
	m := newMolecule(
		[3]float64{0.1, 0.1, 0.1},
		[3]float64{0.9, 0.2, 0.4},
		[3]float64{0.3, 0.8, 0.6},
		[3]float64{0.5, 0.5, 0.9},
		[3]float64{0.7, 0.3, 0.2},
	)

	bonds, err := InferBonds(m, nil, Center)
	if err != nil {
		t.Fatalf("InferBonds failed: %v", err)
	}
	if len(bonds) != len(m.Atoms)-1 {
		t.Errorf("expected %d bonds, got %d", len(m.Atoms)-1, len(bonds))
	}
	m.Bonds = bonds
	if err := molecule.Validate(m); err != nil {
		t.Errorf("bonds should reference valid atoms: %v", err)
	}
}

func TestInferBonds_Errors(t *testing.T) {
	single := newMolecule([3]float64{0.5, 0.5, 0.5})
	bonds, err := InferBonds(single, nil, Center)
	if err != nil || bonds == nil || len(bonds) != 0 {
		t.Errorf("single atom: bonds=%v err=%v, want empty slice", bonds, err)
	}

	m := newMolecule([3]float64{0.1, 0.5, 0.5}, [3]float64{0.2, 0.5, 0.5})
	if _, err := InferBonds(m, nil, DistanceMode("edge")); err == nil {
		t.Error("expected error for unknown mode")
	}
	if _, err := InferBonds(m, []int{0}, Center); err == nil {
		t.Error("expected error for short origins")
	}

	m.Atoms[1].Sym = "Xx"
	if _, err := InferBonds(m, nil, Shell); err == nil {
		t.Error("expected error for missing element radius")
	}
}

func TestParseDistanceMode(t *testing.T) {
	for _, s := range []string{"center", "shell"} {
		if got, err := ParseDistanceMode(s); err != nil || string(got) != s {
			t.Errorf("ParseDistanceMode(%q) = %q, %v", s, got, err)
		}
	}
	if _, err := ParseDistanceMode("nearest"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestAugment(t *testing.T) {
	m := newMolecule([3]float64{0, 0.5, 0.5}, [3]float64{0.4, 0.5, 0.5})
	if err := Augment(m, Center); err != nil {
		t.Fatalf("Augment failed: %v", err)
	}
	if len(m.Atoms) != 3 {
		t.Errorf("expected 3 atoms after reflection, got %d", len(m.Atoms))
	}
	if len(m.Bonds) != 1 {
		t.Errorf("expected 1 bond, got %v", m.Bonds)
	}
}
