package physics

import "github.com/san-kum/inksim/internal/grid"

// Params are the user-facing physical controls, all in 0..100 slider units.
type Params struct {
	DryingSpeed float32 `json:"drying_speed" yaml:"drying_speed" toml:"drying_speed"`
	Viscosity   float32 `json:"viscosity" yaml:"viscosity" toml:"viscosity"`
	PaperResist float32 `json:"paper_resist" yaml:"paper_resist" toml:"paper_resist"`
	InkWeight   float32 `json:"ink_weight" yaml:"ink_weight" toml:"ink_weight"`
}

const (
	DefaultDryingSpeed = 25
	DefaultViscosity   = 30
	DefaultPaperResist = 40
	DefaultInkWeight   = 20
)

func DefaultParams() Params {
	return Params{
		DryingSpeed: DefaultDryingSpeed,
		Viscosity:   DefaultViscosity,
		PaperResist: DefaultPaperResist,
		InkWeight:   DefaultInkWeight,
	}
}

// Clamp returns p with every field forced into [0, 100]. Non-finite values
// fall back to the defaults.
func (p Params) Clamp() Params {
	d := DefaultParams()
	return Params{
		DryingSpeed: clampSlider(p.DryingSpeed, d.DryingSpeed),
		Viscosity:   clampSlider(p.Viscosity, d.Viscosity),
		PaperResist: clampSlider(p.PaperResist, d.PaperResist),
		InkWeight:   clampSlider(p.InkWeight, d.InkWeight),
	}
}

func clampSlider(v, fallback float32) float32 {
	if !grid.Finite(v) {
		return fallback
	}
	return clamp(v, 0, 100)
}

// Omega is the BGK relaxation rate 1/tau. Kinematic viscosity grows with the
// slider, so higher viscosity relaxes more slowly.
func (p Params) Omega() float32 {
	nu := 0.02 + 0.28*p.Viscosity/100
	return 1 / (3*nu + 0.5)
}

// DryRate is the per-tick fraction of excess water that evaporates.
func (p Params) DryRate() float32 {
	return 0.002 + 0.03*p.DryingSpeed/100
}

// fixBase is the per-tick pigment fixation rate before paper modulation.
func (p Params) fixBase() float32 {
	return 0.002 + 0.02*p.DryingSpeed/100
}

// dragCoeff scales how strongly floating pigment damps the flow.
func (p Params) dragCoeff() float32 {
	return 2 * p.InkWeight / 100
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
