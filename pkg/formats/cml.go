package formats

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/Faultbox/smolview/pkg/elements"
	"github.com/Faultbox/smolview/pkg/molecule"
)

// CML format errors.
var (
	ErrInvalidCML    = errors.New("invalid CML document")
	ErrNoMolecule    = errors.New("CML document has no molecule element")
	ErrCMLCoordinate = errors.New("invalid CML atom coordinate")
	ErrCMLBondRefs   = errors.New("invalid CML bond atomRefs2")
)

// XPath expressions. local-name() keeps them working whether or not the
// document declares the CML namespace.
const (
	cmlMoleculePath = "/*[local-name()='molecule']"
	cmlAtomPath     = cmlMoleculePath + "/*[local-name()='atomArray']/*[local-name()='atom']"
	cmlBondPath     = cmlMoleculePath + "/*[local-name()='bondArray']/*[local-name()='bond']"
)

// ParseCML parses a Chemical Markup Language document.
// The molecule id becomes the description; atoms are read from
// atomArray/atom (elementType, x3, y3, z3) and bonds from bondArray/bond.
func ParseCML(data []byte) (*molecule.Molecule, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCML, err)
	}

	mol, err := xmlquery.Query(doc, cmlMoleculePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCML, err)
	}
	if mol == nil {
		return nil, ErrNoMolecule
	}

	m := &molecule.Molecule{
		Description: mol.SelectAttr("id"),
		Bonds:       []molecule.Bond{},
	}

	atomNodes, err := xmlquery.QueryAll(doc, cmlAtomPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCML, err)
	}

	ids := make(map[string]int, len(atomNodes))
	for aix, node := range atomNodes {
		atom := molecule.Atom{Aix: aix, Sym: elements.NormalizeSymbol(node.SelectAttr("elementType"))}
		for j, attr := range []string{"x3", "y3", "z3"} {
			raw := node.SelectAttr(attr)
			v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: atom %d %s=%q", ErrCMLCoordinate, aix, attr, raw)
			}
			atom.Direct[j] = v
		}
		if id := node.SelectAttr("id"); id != "" {
			ids[id] = aix
		}
		m.Atoms = append(m.Atoms, atom)
	}

	bondNodes, err := xmlquery.QueryAll(doc, cmlBondPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCML, err)
	}
	for i, node := range bondNodes {
		raw := node.SelectAttr("atomRefs2")
		refs := strings.Fields(raw)
		if len(refs) != 2 {
			return nil, fmt.Errorf("%w: bond %d: %q", ErrCMLBondRefs, i, raw)
		}
		var b molecule.Bond
		for j, ref := range refs {
			aix, err := resolveAtomRef(ref, ids)
			if err != nil {
				return nil, fmt.Errorf("%w: bond %d: %v", ErrCMLBondRefs, i, err)
			}
			b[j] = aix
		}
		m.Bonds = append(m.Bonds, b)
	}

	return withDefaults(m)
}

// resolveAtomRef maps a bond reference to an atom index. A reference that
// names an atom id wins; otherwise its trailing digits are the index.
func resolveAtomRef(ref string, ids map[string]int) (int, error) {
	if aix, ok := ids[ref]; ok {
		return aix, nil
	}
	digits := strings.TrimLeftFunc(ref, func(r rune) bool {
		return r < '0' || r > '9'
	})
	if digits == "" {
		return 0, fmt.Errorf("reference %q has no index", ref)
	}
	aix, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("reference %q: %w", ref, err)
	}
	return aix, nil
}
