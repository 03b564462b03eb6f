package formats

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Faultbox/smolview/pkg/elements"
	"github.com/Faultbox/smolview/pkg/molecule"
)

// XYZ format errors.
var (
	ErrTruncatedXYZ     = errors.New("truncated XYZ data: need count, description and atoms")
	ErrInvalidXYZCount  = errors.New("invalid XYZ atom count")
	ErrXYZCountMismatch = errors.New("XYZ atom count mismatch")
	ErrXYZTokenCount    = errors.New("XYZ atom line must have 4 tokens")
	ErrXYZCoordinate    = errors.New("invalid XYZ coordinate")
)

// ParseXYZ parses XYZ text:
//
//	N
//	description
//	sym x y z   (N lines)
//
// Surrounding whitespace is trimmed first and the remaining line count
// must be exactly N+2.
func ParseXYZ(data []byte) (*molecule.Molecule, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) < 3 {
		return nil, fmt.Errorf("%w: got %d lines", ErrTruncatedXYZ, len(lines))
	}

	count, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil || count < 1 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidXYZCount, lines[0])
	}
	if len(lines) != count+2 {
		return nil, fmt.Errorf("%w: declared %d atoms, found %d lines", ErrXYZCountMismatch, count, len(lines)-2)
	}

	m := &molecule.Molecule{
		Description: strings.TrimSpace(lines[1]),
		Atoms:       make([]molecule.Atom, 0, count),
		Bonds:       []molecule.Bond{},
	}

	for i := 0; i < count; i++ {
		lineNo := i + 3
		toks := strings.Fields(lines[i+2])
		if len(toks) != 4 {
			return nil, fmt.Errorf("%w: line %d has %d", ErrXYZTokenCount, lineNo, len(toks))
		}
		atom := molecule.Atom{Aix: i, Sym: elements.NormalizeSymbol(toks[0])}
		for j := 0; j < 3; j++ {
			v, err := strconv.ParseFloat(toks[j+1], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %q", ErrXYZCoordinate, lineNo, toks[j+1])
			}
			atom.Direct[j] = v
		}
		m.Atoms = append(m.Atoms, atom)
	}

	return withDefaults(m)
}

// FormatXYZ writes m as XYZ text using the direct coordinates.
func FormatXYZ(m *molecule.Molecule) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d\n%s\n", len(m.Atoms), m.Description)
	for _, a := range m.Atoms {
		fmt.Fprintf(&sb, "%s %g %g %g\n", a.Sym, a.Direct[0], a.Direct[1], a.Direct[2])
	}
	return []byte(sb.String())
}
