package molecule

import (
	"errors"
	"fmt"
	"math"
)

// Position scale bounds.
const (
	MinPosScale = 0.001
	MaxPosScale = 1000
)

// ErrInvalid is wrapped by every ValidationError.
var ErrInvalid = errors.New("invalid molecule")

// ValidationError names the offending field and value.
type ValidationError struct {
	Field  string
	Value  interface{}
	Reason string
	Cause  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s: %s (got %v)", ErrInvalid, e.Field, e.Reason, e.Value)
}

func (e *ValidationError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrInvalid, e.Cause}
	}
	return []error{ErrInvalid}
}

// Invalid builds a ValidationError.
func Invalid(field string, value interface{}, reason string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

// Validate checks m before it is transformed and stops at the first problem.
func Validate(m *Molecule) error {
	if m == nil {
		return Invalid("molecule", nil, "missing")
	}
	if len(m.Atoms) == 0 {
		return Invalid("atoms", 0, "at least one atom required")
	}
	for i := range m.Atoms {
		a := &m.Atoms[i]
		field := fmt.Sprintf("atoms[%d]", i)
		if a.Aix != i {
			return Invalid(field+".aix", a.Aix, fmt.Sprintf("must equal position %d", i))
		}
		if a.Sym == "" {
			return Invalid(field+".asym", a.Sym, "empty symbol")
		}
		for j, v := range a.Direct {
			if !finite(v) {
				return Invalid(fmt.Sprintf("%s.directCoords[%d]", field, j), v, "not a finite number")
			}
		}
	}

	if m.Basis != nil {
		for r, row := range m.Basis {
			for c, v := range row {
				if !finite(v) {
					return Invalid(fmt.Sprintf("basisMat[%d][%d]", r, c), v, "not a finite number")
				}
			}
		}
	}

	for i, b := range m.Bonds {
		for j, aix := range b {
			if aix < 0 || aix >= len(m.Atoms) {
				return &ValidationError{
					Field:  fmt.Sprintf("bonds[%d][%d]", i, j),
					Value:  aix,
					Reason: fmt.Sprintf("index out of range [0, %d)", len(m.Atoms)),
					Cause:  ErrAtomNotFound,
				}
			}
		}
	}

	if !m.CoordType.Valid() {
		return Invalid("coordType", string(m.CoordType), "must be \"direct\" or \"cartesian\"")
	}

	if len(m.Elements) == 0 {
		return Invalid("elementMap", 0, "at least one element required")
	}
	for i := range m.Atoms {
		if _, ok := m.Elements[m.Atoms[i].Sym]; !ok {
			return &ValidationError{
				Field:  fmt.Sprintf("atoms[%d].asym", i),
				Value:  m.Atoms[i].Sym,
				Reason: "no entry in elementMap",
				Cause:  ErrUnknownElement,
			}
		}
	}

	if !finite(m.PosScale) || m.PosScale < MinPosScale || m.PosScale > MaxPosScale {
		return Invalid("posScale", m.PosScale,
			fmt.Sprintf("must be within [%g, %g]", float64(MinPosScale), float64(MaxPosScale)))
	}

	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
