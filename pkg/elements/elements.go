// Package elements provides the built-in periodic table used when an input
// format carries no element descriptors of its own.
package elements

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/smolview/pkg/molecule"
)

//go:embed elements.yaml
var tableYAML []byte

var (
	loadOnce sync.Once
	table    map[string]molecule.Element
	ordered  []molecule.Element
	loadErr  error
)

func load() {
	loadOnce.Do(func() {
		var list []molecule.Element
		if err := yaml.Unmarshal(tableYAML, &list); err != nil {
			loadErr = fmt.Errorf("decoding element table: %w", err)
			return
		}
		table = make(map[string]molecule.Element, len(list))
		for _, e := range list {
			table[e.Sym] = e
		}
		ordered = list
	})
}

// All returns every element ordered by atomic number.
func All() ([]molecule.Element, error) {
	load()
	if loadErr != nil {
		return nil, loadErr
	}
	out := make([]molecule.Element, len(ordered))
	copy(out, ordered)
	return out, nil
}

// Lookup returns the element for a symbol. The symbol is normalized first,
// so "si" and "SI" both find silicon.
func Lookup(sym string) (molecule.Element, bool) {
	load()
	if loadErr != nil {
		return molecule.Element{}, false
	}
	e, ok := table[NormalizeSymbol(sym)]
	return e, ok
}

// NormalizeSymbol upper-cases the first letter and lower-cases the rest.
func NormalizeSymbol(sym string) string {
	sym = strings.TrimSpace(sym)
	if sym == "" {
		return sym
	}
	runes := []rune(strings.ToLower(sym))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// MapFor builds an element map containing exactly the given symbols.
func MapFor(syms []string) (map[string]molecule.Element, error) {
	load()
	if loadErr != nil {
		return nil, loadErr
	}
	m := make(map[string]molecule.Element, len(syms))
	for _, s := range syms {
		e, ok := table[NormalizeSymbol(s)]
		if !ok {
			return nil, fmt.Errorf("%w: %q", molecule.ErrUnknownElement, s)
		}
		m[s] = e
	}
	return m, nil
}
