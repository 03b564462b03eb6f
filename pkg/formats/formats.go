// Package formats provides parsers for molecular structure files.
package formats

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Faultbox/smolview/pkg/elements"
	"github.com/Faultbox/smolview/pkg/molecule"
)

// ErrUnknownKind is returned when a format cannot be determined.
var ErrUnknownKind = errors.New("unknown input format")

// Kind identifies an input format.
type Kind int

// Supported input formats.
const (
	KindUnknown Kind = iota
	KindXYZ
	KindCML
	KindSmol
)

// String returns the format name.
func (k Kind) String() string {
	switch k {
	case KindXYZ:
		return "xyz"
	case KindCML:
		return "cml"
	case KindSmol:
		return "smol"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// ParseKind converts a format name ("xyz", "cml", "smol") to a Kind.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "xyz":
		return KindXYZ, nil
	case "cml", "xml":
		return KindCML, nil
	case "smol", "json":
		return KindSmol, nil
	}
	return KindUnknown, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// KindFromPath picks a format from a file name or URL path extension.
func KindFromPath(path string) (Kind, error) {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return KindUnknown, fmt.Errorf("%w: no extension in %q", ErrUnknownKind, path)
	}
	return ParseKind(ext)
}

// Parse decodes data in the given format.
func Parse(kind Kind, data []byte) (*molecule.Molecule, error) {
	switch kind {
	case KindXYZ:
		return ParseXYZ(data)
	case KindCML:
		return ParseCML(data)
	case KindSmol:
		return ParseSmol(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
}

// withDefaults fills the fields XYZ and CML do not carry: coordinates are
// taken as direct in an identity cell at scale 1, and element descriptors
// come from the built-in table.
func withDefaults(m *molecule.Molecule) (*molecule.Molecule, error) {
	m.CoordType = molecule.CoordDirect
	m.Basis = molecule.IdentityBasis()
	m.PosScale = 1
	var syms []string
	for _, sym := range m.Symbols() {
		// Empty symbols are left for Validate, which names the atom.
		if sym != "" {
			syms = append(syms, sym)
		}
	}
	elems, err := elements.MapFor(syms)
	if err != nil {
		return nil, err
	}
	m.Elements = elems
	return m, nil
}
