// Booster and Factory (§3).
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package aztype

import "github.com/azraelhq/azrael/cmn/cos"

// Booster is a named force generator attached to a template (§3).
// Direction is normalised on construction; a near-zero direction is
// rejected (§4.1, §8: "Booster.direction ... satisfy ‖d‖=1 after
// construction; rejection otherwise").
type Booster struct {
	Pos       Vec3    `json:"pos"`
	Direction Vec3    `json:"direction"`
	MinVal    float64 `json:"minval"`
	MaxVal    float64 `json:"maxval"`
	Force     float64 `json:"force"`
}

func NewBooster(pos, direction Vec3, minval, maxval, force float64) (Booster, error) {
	b := Booster{Pos: pos, Direction: direction, MinVal: minval, MaxVal: maxval, Force: force}
	if err := b.Normalize(); err != nil {
		return Booster{}, err
	}
	return b, nil
}

// Normalize replaces b.Direction with its unit vector in place,
// rejecting a direction too close to zero to normalise (§4.1, §8:
// "Booster.direction ... satisfy ‖d‖=1 after construction; rejection
// otherwise"). Called both by NewBooster and by validateTemplate, since
// a booster can also arrive already-built via add_templates decoding.
func (b *Booster) Normalize() error {
	unit, ok := b.Direction.Normalize()
	if !ok {
		return cos.NewErrValidation("booster direction %v is too close to zero to normalise", b.Direction)
	}
	b.Direction = unit
	return nil
}

// Clamp returns force clamped to [MinVal, MaxVal].
func (b Booster) Clamp(force float64) float64 {
	if force < b.MinVal {
		return b.MinVal
	}
	if force > b.MaxVal {
		return b.MaxVal
	}
	return force
}

// Factory is a named spawner attached to a template (§3).
type Factory struct {
	Pos        Vec3    `json:"pos"`
	Direction  Vec3    `json:"direction"`
	TemplateID AID     `json:"template_id"`
	ExitMin    float64 `json:"exit_speed_min"`
	ExitMax    float64 `json:"exit_speed_max"`
}

func NewFactory(pos, direction Vec3, templateID AID, exitMin, exitMax float64) (Factory, error) {
	f := Factory{Pos: pos, Direction: direction, TemplateID: templateID, ExitMin: exitMin, ExitMax: exitMax}
	if err := f.Normalize(); err != nil {
		return Factory{}, err
	}
	return f, nil
}

// Normalize replaces f.Direction with its unit vector in place and
// rejects an inverted exit-speed range, the same checks NewFactory
// performs - called again by validateTemplate since a factory can also
// arrive already-built via add_templates decoding.
func (f *Factory) Normalize() error {
	unit, ok := f.Direction.Normalize()
	if !ok {
		return cos.NewErrValidation("factory direction %v is too close to zero to normalise", f.Direction)
	}
	if f.ExitMin > f.ExitMax {
		return cos.NewErrValidation("factory exit speed range [%v,%v] is inverted", f.ExitMin, f.ExitMax)
	}
	f.Direction = unit
	return nil
}
