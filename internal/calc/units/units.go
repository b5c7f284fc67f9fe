// Package units converts request quantities into the internal unit system
// (N, mm, MPa, °C) and rejects values given in two systems at once.
package units

import (
	"math"

	"Fastener/internal/calc/calcerr"
)

const (
	MillimetersPerInch = 25.4
	NewtonsPerLbf      = 4.4482216152605
	NmmPerInLbf        = NewtonsPerLbf * MillimetersPerInch
	// FahrenheitPerCelsius applies to temperature differences only.
	FahrenheitPerCelsius = 1.8
)

// pick resolves a quantity that may be supplied in SI or US units. It reports
// whether the quantity was present at all.
func pick(field string, si, us *float64, usToSI float64) (float64, bool, error) {
	switch {
	case si != nil && us != nil:
		return 0, false, calcerr.Newf(calcerr.CodeInconsistentUnits, "%s given in both SI and US units", field)
	case si != nil:
		return finite(field, *si)
	case us != nil:
		return finite(field, *us*usToSI)
	}
	return 0, false, nil
}

func finite(field string, v float64) (float64, bool, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false, calcerr.Newf(calcerr.CodeMalformedLoadCase, "%s is not a finite number", field)
	}
	return v, true, nil
}

// Length returns millimetres.
func Length(field string, mm, in *float64) (float64, bool, error) {
	return pick(field, mm, in, MillimetersPerInch)
}

// Force returns newtons.
func Force(field string, n, lbf *float64) (float64, bool, error) {
	return pick(field, n, lbf, NewtonsPerLbf)
}

// Torque returns N·mm.
func Torque(field string, nmm, inlbf *float64) (float64, bool, error) {
	return pick(field, nmm, inlbf, NmmPerInLbf)
}

// TemperatureDelta returns a difference in °C.
func TemperatureDelta(field string, c, f *float64) (float64, bool, error) {
	return pick(field, c, f, 1/FahrenheitPerCelsius)
}

// Scalar validates a dimensionless optional value.
func Scalar(field string, v *float64) (float64, bool, error) {
	if v == nil {
		return 0, false, nil
	}
	return finite(field, *v)
}

// Positive rejects zero and negative values of a present quantity.
func Positive(field string, v float64) error {
	if v <= 0 {
		return calcerr.Newf(calcerr.CodeMalformedLoadCase, "%s must be positive, got %g", field, v)
	}
	return nil
}

// NonNegative rejects negative values of a present quantity.
func NonNegative(field string, v float64) error {
	if v < 0 {
		return calcerr.Newf(calcerr.CodeMalformedLoadCase, "%s must not be negative, got %g", field, v)
	}
	return nil
}

// Fraction rejects values outside [0, 1), NaN included.
func Fraction(field string, v float64) error {
	if !(v >= 0 && v < 1) {
		return calcerr.Newf(calcerr.CodeMalformedLoadCase, "%s must be in [0, 1), got %g", field, v)
	}
	return nil
}
