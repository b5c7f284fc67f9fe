// Package thread computes screw-thread geometry, stress areas and thread
// shear areas for unified (UN, UNR, UNJ) and metric (M, MJ) threads.
package thread

import (
	"math"

	"Fastener/internal/calc/calcerr"
)

// Basic profile constants, multiples of the pitch subtracted from the basic
// major diameter.
type profile struct {
	pitchDia      float64
	internalMinor float64
	externalMinor float64
	stressArea    float64
}

var profiles = map[Series]profile{
	SeriesUN:  {0.649519, 1.082532, 1.299038, 0.9743},
	SeriesUNR: {0.649519, 1.082532, 1.190748, 0.9743},
	SeriesUNJ: {0.649519, 0.974279, 1.149519, 0.9743},
	SeriesM:   {0.649519, 1.082532, 1.226869, 0.9382},
	SeriesMJ:  {0.649519, 0.974279, 1.149519, 0.9382},
}

// insertMajorFactor sizes the tapped hole of a helical-coil insert: the STI
// basic major diameter is d + 1.299038P.
const insertMajorFactor = 1.299038

// Range is a toleranced diameter in mm.
type Range struct {
	Min   float64 `json:"min"`
	Basic float64 `json:"basic"`
	Max   float64 `json:"max"`
}

type Diameters struct {
	Major Range `json:"major"`
	Pitch Range `json:"pitch"`
	Minor Range `json:"minor"`
}

// Geometry is derived from a Designation and never modified afterwards.
// Lengths are mm, areas mm².
type Geometry struct {
	Designation       Designation `json:"designation"`
	External          Diameters   `json:"external"`
	Internal          Diameters   `json:"internal"`
	TensileStressArea float64     `json:"tensile_stress_area_mm2"`
	// MinorArea uses the minimum external minor diameter.
	MinorArea         float64 `json:"minor_area_mm2"`
	EngagementLength  float64 `json:"engagement_length_mm"`
	ExternalShearArea float64 `json:"external_shear_area_mm2"`
	InternalShearArea float64 `json:"internal_shear_area_mm2"`
}

// Compute returns the geometry of a tabulated size. engagement may be zero,
// in which case no shear areas are computed.
func Compute(d Designation, engagement float64) (Geometry, error) {
	if _, err := FindSize(d); err != nil {
		return Geometry{}, err
	}
	return compute(d, engagement)
}

// InsertOuter returns the geometry of the tapped-hole thread that receives a
// helical-coil insert for the fastener designation d.
func InsertOuter(d Designation, engagement float64) (Geometry, error) {
	outer := d
	outer.DiameterMM = d.DiameterMM + insertMajorFactor*d.PitchMM
	return compute(outer, engagement)
}

func compute(d Designation, engagement float64) (Geometry, error) {
	prof, ok := profiles[d.Series]
	if !ok {
		return Geometry{}, calcerr.Newf(calcerr.CodeInvalidThreadDesignation, "unknown thread series %q", d.Series)
	}
	if engagement < 0 || math.IsNaN(engagement) {
		return Geometry{}, calcerr.New(calcerr.CodeMalformedLoadCase, "length of engagement must not be negative")
	}

	// work in native units, convert once at the end
	scale := 1.0
	if !d.Series.Metric() {
		scale = mmPerInch
	}
	dn, pn := d.DiameterMM/scale, d.PitchMM/scale

	var dv deviations
	if d.Series.Metric() {
		dv = metricDeviations(dn, pn, d.External, d.Internal)
	} else {
		dv = unifiedDeviations(dn, pn, d.External, d.Internal)
	}

	d2 := dn - prof.pitchDia*pn
	d1 := dn - prof.internalMinor*pn
	d3 := dn - prof.externalMinor*pn

	ext := Diameters{
		Major: Range{Basic: dn, Max: dn - dv.es, Min: dn - dv.es - dv.td},
		Pitch: Range{Basic: d2, Max: d2 - dv.es, Min: d2 - dv.es - dv.td2},
		Minor: Range{Basic: d3, Max: d3 - dv.es, Min: d3 - dv.es - dv.td2},
	}
	in := Diameters{
		// internal major is not toleranced at the maximum
		Major: Range{Basic: dn, Min: dn + dv.ei, Max: dn + dv.ei},
		Pitch: Range{Basic: d2, Min: d2 + dv.ei, Max: d2 + dv.ei + dv.tD2},
		Minor: Range{Basic: d1, Min: d1 + dv.ei, Max: d1 + dv.ei + dv.tD1},
	}

	g := Geometry{
		Designation: d,
		External:    ext.scaled(scale),
		Internal:    in.scaled(scale),
	}
	if err := g.check(); err != nil {
		return Geometry{}, err
	}

	stress := dn - prof.stressArea*pn
	g.TensileStressArea = math.Pi / 4 * stress * stress * scale * scale
	g.MinorArea = math.Pi / 4 * g.External.Minor.Min * g.External.Minor.Min
	if engagement > 0 {
		g = g.withEngagement(engagement)
		if !(g.ExternalShearArea > 0) || !(g.InternalShearArea > 0) {
			return Geometry{}, calcerr.Newf(calcerr.CodeUnsupportedThreadSize, "tolerances of %s leave no thread shear area", d)
		}
	}
	return g, nil
}

// withEngagement applies the FED-STD-H28 thread shear area formulas.
func (g Geometry) withEngagement(le float64) Geometry {
	p := g.Designation.PitchMM
	turns := le / p
	const tan30 = 0.57735

	d1max := g.Internal.Minor.Max
	d2min := g.External.Pitch.Min
	g.ExternalShearArea = math.Pi * turns * d1max * (p/2 + tan30*(d2min-d1max))

	dmin := g.External.Major.Min
	D2max := g.Internal.Pitch.Max
	g.InternalShearArea = math.Pi * turns * dmin * (p/2 + tan30*(dmin-D2max))

	g.EngagementLength = le
	return g
}

func (ds Diameters) scaled(s float64) Diameters {
	return Diameters{Major: ds.Major.scaled(s), Pitch: ds.Pitch.scaled(s), Minor: ds.Minor.scaled(s)}
}

func (r Range) scaled(s float64) Range {
	return Range{Min: r.Min * s, Basic: r.Basic * s, Max: r.Max * s}
}

func (g Geometry) check() error {
	for _, ds := range []Diameters{g.External, g.Internal} {
		if !(ds.Minor.Basic < ds.Pitch.Basic && ds.Pitch.Basic < ds.Major.Basic) {
			return calcerr.Newf(calcerr.CodeUnsupportedThreadSize, "%s: minor < pitch < major violated", g.Designation)
		}
		for _, r := range []Range{ds.Major, ds.Pitch, ds.Minor} {
			if !(r.Min > 0) || r.Min > r.Max {
				return calcerr.Newf(calcerr.CodeUnsupportedThreadSize, "%s: tolerance band exceeds size", g.Designation)
			}
		}
	}
	return nil
}

func round(v float64, digits int) float64 {
	p := math.Pow(10, float64(digits))
	return math.Round(v*p) / p
}
