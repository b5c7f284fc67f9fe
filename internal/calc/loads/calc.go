// Package loads builds the load case of a preloaded joint: preload bounds,
// joint stiffness, thermal preload and the applied loads each failure mode
// combines with them.
package loads

import (
	"math"

	"Fastener/internal/calc/calcerr"
)

// Bound selects the preload a failure mode is checked against.
type Bound int

const (
	BoundNone Bound = iota
	BoundMax
	// BoundMin uses eq 4 (separation-critical joints).
	BoundMin
	// BoundMinStatistical uses eq 5 (slip, non-critical separation).
	BoundMinStatistical
)

type Bolt struct {
	Diameter float64 // mm
	Modulus  float64 // MPa
	CTE      float64 // 1/°C
}

type Input struct {
	Tension float64 // N
	Shear   float64 // N
	DeltaT  float64 // °C
	Preload PreloadInput
	Bolt    Bolt
	Layers  []Layer
	// Engaged is the threaded length of the tapped part (parent or insert
	// host); nil for a through bolt with a nut.
	Engaged *Layer
	// optional overrides
	LoadIntroduction *float64
	StiffnessFactor  *float64
}

// LoadCase is immutable once built.
type LoadCase struct {
	Tension   float64         `json:"tension_N"`
	Shear     float64         `json:"shear_N"`
	DeltaT    float64         `json:"temperature_delta_C"`
	Thermal   float64         `json:"thermal_preload_N"`
	Preload   PreloadEstimate `json:"preload"`
	Stiffness Stiffness       `json:"stiffness"`
}

func Build(in Input, defs Defaults) (LoadCase, error) {
	if !finite(in.Tension, in.Shear, in.DeltaT) {
		return LoadCase{}, calcerr.New(calcerr.CodeMalformedLoadCase, "loads must be finite")
	}
	if in.Tension < 0 || in.Shear < 0 {
		return LoadCase{}, calcerr.New(calcerr.CodeMalformedLoadCase, "tension and shear are magnitudes and must not be negative")
	}
	if !(in.Bolt.Diameter > 0) || !(in.Bolt.Modulus > 0) {
		return LoadCase{}, calcerr.New(calcerr.CodeMalformedLoadCase, "fastener diameter and modulus must be positive")
	}

	stiff, err := JointStiffness(in.Bolt.Diameter, in.Bolt.Modulus, in.Layers, in.Engaged, in.LoadIntroduction, in.StiffnessFactor)
	if err != nil {
		return LoadCase{}, err
	}
	thermal := ThermalLoad(stiff, Members(in.Layers, in.Engaged), in.Bolt.CTE, in.DeltaT)
	pre, err := EstimatePreload(in.Preload, in.Bolt.Diameter, thermal, defs)
	if err != nil {
		return LoadCase{}, err
	}
	return LoadCase{
		Tension:   in.Tension,
		Shear:     in.Shear,
		DeltaT:    in.DeltaT,
		Thermal:   thermal,
		Preload:   pre,
		Stiffness: stiff,
	}, nil
}

// PreloadAt returns the service preload for a bound, never below zero.
func (lc LoadCase) PreloadAt(b Bound) float64 {
	switch b {
	case BoundMax:
		return lc.Preload.Max
	case BoundMin:
		return math.Max(lc.Preload.Min, 0)
	case BoundMinStatistical:
		return math.Max(lc.Preload.MinStatistical, 0)
	default:
		return 0
	}
}

func (lc LoadCase) NPhi() float64 { return lc.Stiffness.NPhi() }

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
