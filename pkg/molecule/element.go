package molecule

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Color is a packed 0xRRGGBB value.
type Color uint32

// RGB returns the color as normalized float components.
func (c Color) RGB() [3]float32 {
	return [3]float32{
		float32((c>>16)&0xff) / 255,
		float32((c>>8)&0xff) / 255,
		float32(c&0xff) / 255,
	}
}

// RGBA returns the color with full opacity as normalized float components.
func (c Color) RGBA() [4]float32 {
	rgb := c.RGB()
	return [4]float32{rgb[0], rgb[1], rgb[2], 1}
}

// Hex returns the color as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%06x", uint32(c)&0xffffff)
}

// ParseColor accepts "#rrggbb", "0xrrggbb" or a plain decimal integer.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	base := 10
	switch {
	case strings.HasPrefix(s, "#"):
		s, base = s[1:], 16
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		s, base = s[2:], 16
	}
	v, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	if v > 0xffffff {
		return 0, fmt.Errorf("color %#x out of range", v)
	}
	return Color(v), nil
}

// UnmarshalYAML decodes a color written as a hex string or an integer.
func (c *Color) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseColor(node.Value)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MarshalYAML encodes the color as "#rrggbb".
func (c Color) MarshalYAML() (interface{}, error) {
	return c.Hex(), nil
}

// Element describes a chemical element. Only Color and RadiusAtomicPM
// are needed for drawing; the rest is carried through for tools.
// JSON names follow the smol element map.
type Element struct {
	Number            int     `yaml:"number" json:"enum,omitempty"`
	Sym               string  `yaml:"symbol" json:"esym,omitempty"`
	Name              string  `yaml:"name" json:"ename,omitempty"`
	Group             int     `yaml:"group,omitempty" json:"egroup,omitempty"`
	Period            int     `yaml:"period,omitempty" json:"eperiod,omitempty"`
	Weight            float64 `yaml:"weight,omitempty" json:"eweighta,omitempty"`
	Electronegativity float64 `yaml:"electronegativity,omitempty" json:"eelectroNega,omitempty"`
	RadiusAtomicPM    float64 `yaml:"radius_atomic_pm,omitempty" json:"eradiusAtomic_pm"`
	RadiusVdwPM       float64 `yaml:"radius_vdw_pm,omitempty" json:"erasiusVdw_pm,omitempty"`
	RadiusCovalentPM  float64 `yaml:"radius_covalent_pm,omitempty" json:"eradiusCov_pm,omitempty"`
	Valence           int     `yaml:"valence,omitempty" json:"enumValence,omitempty"`
	Color             Color   `yaml:"color" json:"ecolorHex"`
}
