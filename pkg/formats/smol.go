package formats

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/Faultbox/smolview/pkg/molecule"
)

// ErrInvalidSmol wraps JSON decoding failures.
var ErrInvalidSmol = errors.New("invalid smol document")

// smolDoc mirrors the smol JSON layout. Shapes are kept loose so that
// wrong lengths reach validation instead of failing inside the decoder,
// and numbers are pointers so that a null is told apart from zero.
type smolDoc struct {
	Atoms       []smolAtom                  `json:"atoms"`
	BasisMat    [][]*float64                `json:"basisMat"`
	Bonds       [][]*int                    `json:"bonds"`
	CoordType   string                      `json:"coordType"`
	Description *string                     `json:"description"`
	ElementMap  map[string]molecule.Element `json:"elementMap"`
	PosScale    *float64                    `json:"posScale"`
}

type smolAtom struct {
	Aix          *int       `json:"aix"`
	Asym         string     `json:"asym"`
	DirectCoords []*float64 `json:"directCoords"`
	IsReflection bool       `json:"isReflection,omitempty"`
}

// ParseSmol decodes a smol JSON document. No structure is inferred: the
// shapes are checked here and the values by molecule.Validate.
func ParseSmol(data []byte) (*molecule.Molecule, error) {
	var doc smolDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSmol, err)
	}

	m := &molecule.Molecule{
		CoordType: molecule.CoordType(doc.CoordType),
		Elements:  doc.ElementMap,
	}

	if doc.Description == nil {
		return nil, molecule.Invalid("description", nil, "missing")
	}
	m.Description = *doc.Description

	if doc.PosScale == nil {
		return nil, molecule.Invalid("posScale", nil, "missing")
	}
	m.PosScale = *doc.PosScale

	m.Atoms = make([]molecule.Atom, len(doc.Atoms))
	for i, a := range doc.Atoms {
		field := fmt.Sprintf("atoms[%d]", i)
		if a.Aix == nil {
			return nil, molecule.Invalid(field+".aix", nil, "missing")
		}
		if len(a.DirectCoords) != 3 {
			return nil, molecule.Invalid(field+".directCoords", len(a.DirectCoords), "must have exactly 3 components")
		}
		atom := molecule.Atom{Aix: *a.Aix, Sym: a.Asym, IsReflection: a.IsReflection}
		if err := numbers(atom.Direct[:], a.DirectCoords, field+".directCoords"); err != nil {
			return nil, err
		}
		m.Atoms[i] = atom
	}

	if doc.BasisMat != nil {
		if len(doc.BasisMat) != 3 {
			return nil, molecule.Invalid("basisMat", len(doc.BasisMat), "must have 3 rows")
		}
		var b molecule.Basis
		for r, row := range doc.BasisMat {
			if len(row) != 3 {
				return nil, molecule.Invalid(fmt.Sprintf("basisMat[%d]", r), len(row), "must have 3 columns")
			}
			if err := numbers(b[r][:], row, fmt.Sprintf("basisMat[%d]", r)); err != nil {
				return nil, err
			}
		}
		m.Basis = &b
	}

	if doc.Bonds == nil {
		return nil, molecule.Invalid("bonds", nil, "missing")
	}
	m.Bonds = make([]molecule.Bond, len(doc.Bonds))
	for i, b := range doc.Bonds {
		if len(b) != 2 {
			return nil, molecule.Invalid(fmt.Sprintf("bonds[%d]", i), len(b), "must be a pair of atom indices")
		}
		var bond molecule.Bond
		if err := numbers(bond[:], b, fmt.Sprintf("bonds[%d]", i)); err != nil {
			return nil, err
		}
		m.Bonds[i] = bond
	}

	return m, nil
}

// numbers copies src into dst, rejecting JSON nulls. field names the array
// in errors.
func numbers[T int | float64](dst []T, src []*T, field string) error {
	for j, v := range src {
		if v == nil {
			return molecule.Invalid(fmt.Sprintf("%s[%d]", field, j), nil, "not a number")
		}
		dst[j] = *v
	}
	return nil
}

func pointers[T int | float64](src []T) []*T {
	out := make([]*T, len(src))
	for i := range src {
		out[i] = &src[i]
	}
	return out
}

// WriteSmol encodes m as an indented smol JSON document. Element map keys
// come out sorted, so equal molecules produce identical output.
func WriteSmol(w io.Writer, m *molecule.Molecule) error {
	doc := smolDoc{
		Atoms:      make([]smolAtom, len(m.Atoms)),
		Bonds:      make([][]*int, len(m.Bonds)),
		CoordType:  string(m.CoordType),
		ElementMap: m.Elements,
	}
	doc.Description = &m.Description
	doc.PosScale = &m.PosScale

	for i := range m.Atoms {
		a := &m.Atoms[i]
		aix := a.Aix
		doc.Atoms[i] = smolAtom{
			Aix:          &aix,
			Asym:         a.Sym,
			DirectCoords: pointers(a.Direct[:]),
			IsReflection: a.IsReflection,
		}
	}
	b := m.BasisOrIdentity()
	doc.BasisMat = [][]*float64{pointers(b[0][:]), pointers(b[1][:]), pointers(b[2][:])}
	for i := range m.Bonds {
		doc.Bonds[i] = pointers(m.Bonds[i][:])
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding smol: %w", err)
	}
	return nil
}
