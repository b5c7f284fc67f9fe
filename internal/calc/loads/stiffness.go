package loads

import (
	"math"

	"Fastener/internal/calc/calcerr"
)

// Layer is one clamped member (part or washer) in the grip.
type Layer struct {
	Thickness float64 // mm
	Modulus   float64 // MPa
	CTE       float64 // 1/°C
}

// Stiffness holds the joint constants of NASA-TM-106943. Stiffness in N/mm.
type Stiffness struct {
	Grip             float64 `json:"grip_mm"`
	Bolt             float64 `json:"bolt_N_per_mm"`
	Joint            float64 `json:"joint_N_per_mm"`
	Phi              float64 `json:"phi"`
	LoadIntroduction float64 `json:"load_introduction"`
}

// NPhi is the fraction of external tension that reaches the fastener.
func (s Stiffness) NPhi() float64 { return s.LoadIntroduction * s.Phi }

// JointStiffness computes kb, kc, φ and n. engaged is the threaded length
// of the tapped part for fasteners threaded into the final part, nil for
// through bolts. n and phi override the computed values when non-nil.
func JointStiffness(diameter, boltModulus float64, layers []Layer, engaged *Layer, n, phi *float64) (Stiffness, error) {
	if len(layers) == 0 {
		return Stiffness{}, calcerr.New(calcerr.CodeMalformedLoadCase, "joint has no clamped parts")
	}
	for _, l := range layers {
		if !(l.Thickness > 0) || !(l.Modulus > 0) {
			return Stiffness{}, calcerr.New(calcerr.CodeMalformedLoadCase, "clamped layers need positive thickness and modulus")
		}
	}
	if engaged != nil && (!(engaged.Thickness > 0) || !(engaged.Modulus > 0)) {
		return Stiffness{}, calcerr.New(calcerr.CodeMalformedLoadCase, "tapped part needs positive engagement and modulus")
	}

	var grip, compliance float64
	for _, l := range Members(layers, engaged) {
		grip += l.Thickness
		compliance += l.Thickness / l.Modulus
	}
	ej := grip / compliance

	s := Stiffness{Grip: grip}
	s.Bolt = boltModulus * math.Pi * diameter * diameter / 4 / grip
	if engaged == nil {
		// TM-106943 eq 33
		s.Joint = math.Pi * ej * diameter / (2 * math.Log(5*(grip+0.5*diameter)/(grip+2.5*diameter)))
		s.LoadIntroduction = loadingPlane(layers)
	} else {
		// TM-106943 eq 44, single frustum into the tapped part
		s.Joint = math.Pi * ej * diameter / math.Log(5*(2*grip+0.5*diameter)/(2*grip+2.5*diameter))
		s.LoadIntroduction = tappedLoadingPlane(layers, engaged.Thickness)
	}
	s.Phi = s.Bolt / (s.Bolt + s.Joint)
	if phi != nil {
		if !(*phi > 0 && *phi < 1) {
			return Stiffness{}, calcerr.Newf(calcerr.CodeMalformedLoadCase, "stiffness factor must be in (0, 1), got %g", *phi)
		}
		s.Phi = *phi
	}
	if n != nil {
		if !(*n >= 0 && *n <= 1) {
			return Stiffness{}, calcerr.Newf(calcerr.CodeMalformedLoadCase, "load introduction factor must be in [0, 1], got %g", *n)
		}
		s.LoadIntroduction = *n
	}
	return s, nil
}

// Members is the grip as the fastener sees it: the clamped layers plus,
// for a tapped joint, half the engaged length of the tapped part
// (TM-106943 eq 42 and 45).
func Members(layers []Layer, engaged *Layer) []Layer {
	if engaged == nil {
		return layers
	}
	half := *engaged
	half.Thickness = engaged.Thickness / 2
	return append(append(make([]Layer, 0, len(layers)+1), layers...), half)
}

// loadingPlane places the loading planes at the mid-thickness of the outer
// members (TM-106943 eq 35).
func loadingPlane(layers []Layer) float64 {
	if len(layers) == 1 {
		return 0.5
	}
	var grip, inner float64
	for i, l := range layers {
		grip += l.Thickness
		if i == 0 || i == len(layers)-1 {
			inner += l.Thickness / 2
		} else {
			inner += l.Thickness
		}
	}
	return inner / grip
}

// tappedLoadingPlane is TM-106943 eq 46: the head-side plane at the middle
// of the first part, the other at the middle of the engaged length.
func tappedLoadingPlane(layers []Layer, engagement float64) float64 {
	var total, inner float64
	for i, l := range layers {
		total += l.Thickness
		if i == 0 {
			inner += l.Thickness / 2
		} else {
			inner += l.Thickness
		}
	}
	return (inner + engagement/2) / (total + engagement)
}

// ThermalLoad is the preload change for a uniform temperature change deltaT
// (TM-106943 eq 10). Positive values raise preload.
func ThermalLoad(s Stiffness, layers []Layer, boltCTE, deltaT float64) float64 {
	if deltaT == 0 {
		return 0
	}
	var weighted float64
	for _, l := range layers {
		weighted += l.Thickness * l.CTE
	}
	alphaJ := weighted / s.Grip
	series := s.Bolt * s.Joint / (s.Bolt + s.Joint)
	return series * s.Grip * deltaT * (alphaJ - boltCTE)
}
