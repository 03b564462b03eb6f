package formats

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/Faultbox/smolview/pkg/molecule"
)

const minimalSmol = `{
  "atoms": [
    {"aix": 0, "asym": "Si", "directCoords": [0, 0, 0]},
    {"aix": 1, "asym": "Si", "directCoords": [0.25, 0.25, 0.25], "isReflection": false}
  ],
  "basisMat": [[0, 2.7, 2.7], [2.7, 0, 2.7], [2.7, 2.7, 0]],
  "bonds": [[0, 1]],
  "coordType": "direct",
  "description": "silicon",
  "elementMap": {
    "Si": {"esym": "Si", "ecolorHex": 15780000, "eradiusAtomic_pm": 110}
  },
  "posScale": 1.5
}`

func TestParseSmol_Valid(t *testing.T) {
	m, err := ParseSmol([]byte(minimalSmol))
	if err != nil {
		t.Fatalf("ParseSmol failed: %v", err)
	}

	if m.Description != "silicon" {
		t.Errorf("expected description 'silicon', got %q", m.Description)
	}
	if m.CoordType != molecule.CoordDirect {
		t.Errorf("expected direct coords, got %s", m.CoordType)
	}
	if m.PosScale != 1.5 {
		t.Errorf("expected pos scale 1.5, got %f", m.PosScale)
	}
	if m.Basis == nil || m.Basis[0][1] != 2.7 || m.Basis[2][2] != 0 {
		t.Errorf("unexpected basis %v", m.Basis)
	}
	if len(m.Bonds) != 1 || m.Bonds[0] != (molecule.Bond{0, 1}) {
		t.Errorf("unexpected bonds %v", m.Bonds)
	}
	si := m.Elements["Si"]
	if si.Color != 0xF0C8A0 {
		t.Errorf("expected Si color #f0c8a0, got %s", si.Color.Hex())
	}
	if si.RadiusAtomicPM != 110 {
		t.Errorf("expected Si radius 110, got %f", si.RadiusAtomicPM)
	}
	if err := molecule.Validate(m); err != nil {
		t.Errorf("parsed molecule should validate: %v", err)
	}
}

func TestParseSmol_Errors(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		wantField string
	}{
		{
			name:      "missing description",
			data:      `{"atoms": [], "bonds": [], "posScale": 1}`,
			wantField: "description",
		},
		{
			name:      "missing pos scale",
			data:      `{"atoms": [], "bonds": [], "description": ""}`,
			wantField: "posScale",
		},
		{
			name:      "missing aix",
			data:      `{"atoms": [{"asym": "H", "directCoords": [0,0,0]}], "bonds": [], "description": "", "posScale": 1}`,
			wantField: "atoms[0].aix",
		},
		{
			name:      "short coordinates",
			data:      `{"atoms": [{"aix": 0, "asym": "H", "directCoords": [0,0]}], "bonds": [], "description": "", "posScale": 1}`,
			wantField: "atoms[0].directCoords",
		},
		{
			name:      "two row basis",
			data:      `{"atoms": [], "basisMat": [[1,0,0],[0,1,0]], "bonds": [], "description": "", "posScale": 1}`,
			wantField: "basisMat",
		},
		{
			name:      "short basis row",
			data:      `{"atoms": [], "basisMat": [[1,0,0],[0,1],[0,0,1]], "bonds": [], "description": "", "posScale": 1}`,
			wantField: "basisMat[1]",
		},
		{
			name:      "missing bonds",
			data:      `{"atoms": [], "description": "", "posScale": 1}`,
			wantField: "bonds",
		},
		{
			name:      "null coordinate",
			data:      `{"atoms": [{"aix": 0, "asym": "H", "directCoords": [null, 0.5, 0.5]}], "bonds": [], "description": "", "posScale": 1}`,
			wantField: "atoms[0].directCoords[0]",
		},
		{
			name:      "null basis entry",
			data:      `{"atoms": [], "basisMat": [[1,0,0],[0,null,0],[0,0,1]], "bonds": [], "description": "", "posScale": 1}`,
			wantField: "basisMat[1][1]",
		},
		{
			name:      "null bond index",
			data:      `{"atoms": [], "bonds": [[0, null]], "description": "", "posScale": 1}`,
			wantField: "bonds[0][1]",
		},
		{
			name:      "triple bond entry",
			data:      `{"atoms": [], "bonds": [[0, 1, 2]], "description": "", "posScale": 1}`,
			wantField: "bonds[0]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSmol([]byte(tt.data))
			var verr *molecule.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("expected field %q, got %q", tt.wantField, verr.Field)
			}
		})
	}
}

func TestParseSmol_BadJSON(t *testing.T) {
	tests := []string{
		`not json`,
		`{"atoms": "many"}`,
		`{"posScale": "big"}`,
	}
	for _, data := range tests {
		if _, err := ParseSmol([]byte(data)); !errors.Is(err, ErrInvalidSmol) {
			t.Errorf("ParseSmol(%s): expected ErrInvalidSmol, got %v", data, err)
		}
	}
}

func TestWriteSmol_RoundTrip(t *testing.T) {
	m, err := ParseSmol([]byte(minimalSmol))
	if err != nil {
		t.Fatalf("ParseSmol failed: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteSmol(&buf, m); err != nil {
		t.Fatalf("WriteSmol failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"coordType": "direct"`) {
		t.Errorf("expected indented coordType field, got:\n%s", buf.String())
	}

	again, err := ParseSmol(buf.Bytes())
	if err != nil {
		t.Fatalf("re-parse failed: %v", err)
	}
	if len(again.Atoms) != len(m.Atoms) || again.Atoms[1].Direct != m.Atoms[1].Direct {
		t.Errorf("atoms changed across write/parse: %v vs %v", again.Atoms, m.Atoms)
	}
	if *again.Basis != *m.Basis {
		t.Errorf("basis changed across write/parse: %v vs %v", again.Basis, m.Basis)
	}

	var second bytes.Buffer
	if err := WriteSmol(&second, again); err != nil {
		t.Fatalf("second WriteSmol failed: %v", err)
	}
	if second.String() != buf.String() {
		t.Error("expected byte-identical output for equal molecules")
	}
}
