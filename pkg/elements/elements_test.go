package elements

import (
	"errors"
	"testing"

	"github.com/Faultbox/smolview/pkg/molecule"
)

func TestAll(t *testing.T) {
	all, err := All()
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(all) != 118 {
		t.Errorf("expected 118 elements, got %d", len(all))
	}
	for i, e := range all {
		if e.Number != i+1 {
			t.Errorf("element %d (%s) has number %d", i, e.Sym, e.Number)
		}
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		sym       string
		wantName  string
		wantColor molecule.Color
		wantPM    float64
	}{
		{"H", "Hydrogen", 0xFFFFFF, 25},
		{"C", "Carbon", 0x909090, 70},
		{"O", "Oxygen", 0xFF0D0D, 60},
		{"si", "Silicon", 0xF0C8A0, 110},
		{"FE", "Iron", 0xE06633, 140},
	}

	for _, tt := range tests {
		t.Run(tt.sym, func(t *testing.T) {
			e, ok := Lookup(tt.sym)
			if !ok {
				t.Fatalf("Lookup(%q) not found", tt.sym)
			}
			if e.Name != tt.wantName {
				t.Errorf("name = %s, want %s", e.Name, tt.wantName)
			}
			if e.Color != tt.wantColor {
				t.Errorf("color = %s, want %s", e.Color.Hex(), tt.wantColor.Hex())
			}
			if e.RadiusAtomicPM != tt.wantPM {
				t.Errorf("radius = %f, want %f", e.RadiusAtomicPM, tt.wantPM)
			}
		})
	}

	if _, ok := Lookup("Qq"); ok {
		t.Error("expected Qq to be unknown")
	}
}

func TestNormalizeSymbol(t *testing.T) {
	tests := map[string]string{
		"h":   "H",
		"SI":  "Si",
		" cl": "Cl",
		"Uut": "Uut",
		"":    "",
	}
	for in, want := range tests {
		if got := NormalizeSymbol(in); got != want {
			t.Errorf("NormalizeSymbol(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMapFor(t *testing.T) {
	m, err := MapFor([]string{"H", "O"})
	if err != nil {
		t.Fatalf("MapFor failed: %v", err)
	}
	if len(m) != 2 {
		t.Errorf("expected 2 entries, got %d", len(m))
	}
	if m["O"].Number != 8 {
		t.Errorf("expected oxygen number 8, got %d", m["O"].Number)
	}

	_, err = MapFor([]string{"H", "Zz"})
	if !errors.Is(err, molecule.ErrUnknownElement) {
		t.Errorf("expected ErrUnknownElement, got %v", err)
	}
}
