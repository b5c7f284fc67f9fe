package loads

import (
	"math"
	"strings"

	"Fastener/internal/calc/calcerr"
	"Fastener/internal/calc/units"
)

// Method is the preload installation method.
type Method string

const (
	MethodTorque           Method = "torque"
	MethodTurnOfNut        Method = "turn_of_nut"
	MethodElongation       Method = "elongation"
	MethodUltrasonic       Method = "ultrasonic"
	MethodIndicatingWasher Method = "indicating_washer"
)

func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return MethodTorque, nil
	case MethodTorque, MethodTurnOfNut, MethodElongation, MethodUltrasonic, MethodIndicatingWasher:
		return m, nil
	}
	return "", calcerr.Newf(calcerr.CodeMalformedLoadCase, "unknown preload method %q", s)
}

// Defaults are the preload constants of a standard.
type Defaults struct {
	TorqueLubricated float64 `yaml:"torque_lubricated"`
	TorqueDry        float64 `yaml:"torque_dry"`
	TurnOfNut        float64 `yaml:"turn_of_nut"`
	Elongation       float64 `yaml:"elongation"`
	Ultrasonic       float64 `yaml:"ultrasonic"`
	IndicatingWasher float64 `yaml:"indicating_washer"`
	// Relaxation is a fraction of the initial minimum preload.
	Relaxation float64 `yaml:"relaxation"`
	NutFactor  float64 `yaml:"nut_factor"`
}

// Validate checks that every uncertainty and the relaxation are fractions
// and that the nut factor is positive.
func (d Defaults) Validate() error {
	for _, c := range []struct {
		field string
		v     float64
	}{
		{"torque_lubricated", d.TorqueLubricated},
		{"torque_dry", d.TorqueDry},
		{"turn_of_nut", d.TurnOfNut},
		{"elongation", d.Elongation},
		{"ultrasonic", d.Ultrasonic},
		{"indicating_washer", d.IndicatingWasher},
		{"relaxation", d.Relaxation},
	} {
		if err := units.Fraction(c.field, c.v); err != nil {
			return err
		}
	}
	if !(d.NutFactor > 0) || math.IsInf(d.NutFactor, 0) {
		return calcerr.Newf(calcerr.CodeMalformedLoadCase, "nut_factor must be positive, got %g", d.NutFactor)
	}
	return nil
}

// variation returns the preload uncertainty γ for a method.
func (d Defaults) variation(method Method, lubricated bool) float64 {
	switch method {
	case MethodTurnOfNut:
		return d.TurnOfNut
	case MethodElongation:
		return d.Elongation
	case MethodUltrasonic:
		return d.Ultrasonic
	case MethodIndicatingWasher:
		return d.IndicatingWasher
	default:
		if lubricated {
			return d.TorqueLubricated
		}
		return d.TorqueDry
	}
}

// PreloadInput is the normalized preload description. Forces are N, torque
// N·mm, fractions dimensionless.
type PreloadInput struct {
	Method     Method
	Lubricated bool
	Nominal    float64
	Torque     float64
	// TorqueTolerance is the ± fraction of the torque specification.
	TorqueTolerance float64
	NutFactor       float64
	Uncertainty     *float64
	Min, Max        *float64
	Relaxation      *float64
	Creep           float64
	FastenerCount   int
}

// PreloadEstimate carries the preload bounds of one joint. Initial values
// are at installation, service values include relaxation, creep and
// thermal change.
type PreloadEstimate struct {
	Method                Method  `json:"method"`
	Nominal               float64 `json:"nominal_N"`
	Uncertainty           float64 `json:"uncertainty"`
	CMin                  float64 `json:"c_min"`
	CMax                  float64 `json:"c_max"`
	InitialMax            float64 `json:"initial_max_N"`
	InitialMin            float64 `json:"initial_min_N"`
	InitialMinStatistical float64 `json:"initial_min_statistical_N"`
	Relaxation            float64 `json:"relaxation_N"`
	Creep                 float64 `json:"creep_N"`
	ThermalIncrease       float64 `json:"thermal_increase_N"`
	ThermalDecrease       float64 `json:"thermal_decrease_N"`
	Max                   float64 `json:"max_N"`
	Min                   float64 `json:"min_N"`
	MinStatistical        float64 `json:"min_statistical_N"`
}

// EstimatePreload applies NASA-STD-5020B eq 1-5. diameter is the nominal
// fastener diameter for the torque relation, thermal the signed thermally
// induced change of preload.
func EstimatePreload(in PreloadInput, diameter, thermal float64, defs Defaults) (PreloadEstimate, error) {
	est := PreloadEstimate{Method: in.Method, CMin: 1, CMax: 1}

	if err := units.Fraction("torque tolerance", in.TorqueTolerance); err != nil {
		return est, err
	}
	if in.TorqueTolerance > 0 {
		est.CMin, est.CMax = 1-in.TorqueTolerance, 1+in.TorqueTolerance
	}

	nominal := in.Nominal
	if nominal == 0 && in.Torque > 0 {
		k := in.NutFactor
		if k == 0 {
			k = defs.NutFactor
		}
		if !(k > 0) {
			return est, calcerr.New(calcerr.CodeMalformedLoadCase, "nut factor must be positive")
		}
		nominal = in.Torque / (k * diameter)
	}
	if nominal == 0 && in.Min != nil && in.Max != nil {
		nominal = (*in.Min + *in.Max) / 2
	}
	if !(nominal > 0) {
		return est, calcerr.New(calcerr.CodeMalformedLoadCase, "preload requires a positive nominal preload or installation torque")
	}
	est.Nominal = nominal

	n := in.FastenerCount
	if n == 0 {
		n = 1
	}
	if n < 0 {
		return est, calcerr.New(calcerr.CodeMalformedLoadCase, "fastener count must be positive")
	}

	switch {
	case in.Min != nil || in.Max != nil:
		if in.Min == nil || in.Max == nil {
			return est, calcerr.New(calcerr.CodeMalformedLoadCase, "preload band needs both min and max")
		}
		lo, hi := *in.Min, *in.Max
		if lo < 0 || !(lo <= nominal && nominal <= hi) {
			return est, calcerr.Newf(calcerr.CodeMalformedLoadCase, "preload band must satisfy 0 <= min <= nominal <= max, got %g <= %g <= %g", lo, nominal, hi)
		}
		est.InitialMax, est.InitialMin, est.InitialMinStatistical = hi, lo, lo
		est.Uncertainty = (hi - lo) / (2 * nominal)
	default:
		gamma := defs.variation(in.Method, in.Lubricated)
		if in.Uncertainty != nil {
			gamma = *in.Uncertainty
		}
		if err := units.Fraction("preload uncertainty", gamma); err != nil {
			return est, err
		}
		est.Uncertainty = gamma
		est.InitialMax = est.CMax * (1 + gamma) * nominal
		est.InitialMin = est.CMin * (1 - gamma) * nominal
		est.InitialMinStatistical = est.CMin * (1 - gamma/math.Sqrt(float64(n))) * nominal
	}

	relax := defs.Relaxation
	if in.Relaxation != nil {
		relax = *in.Relaxation
	}
	if err := units.Fraction("relaxation", relax); err != nil {
		return est, err
	}
	if in.Creep < 0 {
		return est, calcerr.New(calcerr.CodeMalformedLoadCase, "creep loss must not be negative")
	}
	est.Relaxation = relax * est.InitialMin
	est.Creep = in.Creep
	est.ThermalIncrease = math.Max(thermal, 0)
	est.ThermalDecrease = math.Max(-thermal, 0)

	est.Max = est.InitialMax + est.ThermalIncrease
	est.Min = est.InitialMin - est.Relaxation - est.Creep - est.ThermalDecrease
	est.MinStatistical = est.InitialMinStatistical - relax*est.InitialMinStatistical - est.Creep - est.ThermalDecrease
	return est, nil
}
