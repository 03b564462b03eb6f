// Package lighting describes the lights the mesh shader applies: one
// ambient term and one directional light.
package lighting

import (
	"math"

	"github.com/Faultbox/smolview/internal/config"
	"github.com/Faultbox/smolview/pkg/molecule"
)

// Ambient is light arriving equally from every direction.
type Ambient struct {
	Color     [3]float32
	Intensity float32
}

// Directional is a light infinitely far away. Direction points towards
// the light and is normalized by NewDirectional.
type Directional struct {
	Direction [3]float32
	Color     [3]float32
	Intensity float32
}

// Rig is the complete light setup.
type Rig struct {
	Ambient Ambient
	Key     Directional
}

// NewDirectional returns a directional light of the given color.
func NewDirectional(dir [3]float32, c molecule.Color, intensity float32) Directional {
	return Directional{Direction: normalize(dir), Color: c.RGB(), Intensity: intensity}
}

// DefaultRig is white ambient plus a white light from straight above.
func DefaultRig() Rig {
	return Rig{
		Ambient: Ambient{Color: molecule.Color(0xffffff).RGB(), Intensity: 0.35},
		Key:     NewDirectional([3]float32{0, 1, 0}, 0xffffff, 1),
	}
}

// FromConfig builds the rig for the render light settings.
func FromConfig(cfg config.LightConfig) Rig {
	rig := DefaultRig()
	rig.Ambient.Intensity = cfg.Ambient
	rig.Key = NewDirectional(DirectionFromAngles(cfg.Azimuth, cfg.Elevation), 0xffffff, cfg.Intensity)
	return rig
}

// DirectionFromAngles converts an azimuth around Y (0-360 degrees) and an
// elevation above the XZ plane (0-90 degrees) to a unit vector pointing
// towards the light.
func DirectionFromAngles(azimuth, elevation float32) [3]float32 {
	az := float64(azimuth) * math.Pi / 180
	el := float64(elevation) * math.Pi / 180

	return [3]float32{
		float32(math.Cos(el) * math.Sin(az)),
		float32(math.Sin(el)),
		float32(math.Cos(el) * math.Cos(az)),
	}
}

// Shade evaluates the Lambert term the fragment shader computes, for a
// surface with the given unit normal and base color. Results are clamped
// to [0, 1].
func (r Rig) Shade(normal, base [3]float32) [3]float32 {
	n := normalize(normal)
	d := r.Key.Direction
	lambert := n[0]*d[0] + n[1]*d[1] + n[2]*d[2]
	if lambert < 0 {
		lambert = 0
	}

	var out [3]float32
	for i := range out {
		light := r.Ambient.Color[i]*r.Ambient.Intensity + r.Key.Color[i]*r.Key.Intensity*lambert
		out[i] = min(1, base[i]*light)
	}
	return out
}

func normalize(v [3]float32) [3]float32 {
	l := float32(math.Sqrt(float64(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])))
	if l == 0 {
		return v
	}
	return [3]float32{v[0] / l, v[1] / l, v[2] / l}
}
