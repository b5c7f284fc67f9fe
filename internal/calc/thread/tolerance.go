package thread

import "math"

// deviations holds fundamental deviations and tolerances in native units.
// es and ei are magnitudes: es moves external diameters down, ei moves
// internal diameters up.
type deviations struct {
	es, td, td2  float64
	ei, tD2, tD1 float64
}

// ASME B1.1 tolerances for unified threads, all in inches.
func unifiedDeviations(d, p float64, ext, in Class) deviations {
	le := 9 * p
	base := 0.0015*math.Cbrt(d) + 0.0015*math.Sqrt(le) + 0.015*math.Pow(p, 2.0/3.0)

	var dv deviations
	switch ext.Grade {
	case 1:
		dv.td2, dv.es, dv.td = 1.5*base, 0.3*base, 0.090*math.Pow(p, 2.0/3.0)
	case 2:
		dv.td2, dv.es, dv.td = base, 0.3*base, 0.060*math.Pow(p, 2.0/3.0)
	default:
		dv.td2, dv.es, dv.td = 0.75*base, 0, 0.060*math.Pow(p, 2.0/3.0)
	}
	switch in.Grade {
	case 1:
		dv.tD2 = 1.95 * base
	case 2:
		dv.tD2 = 1.3 * base
	default:
		dv.tD2 = 0.975 * base
	}
	if d >= 0.25 {
		dv.tD1 = 0.25*p - 0.40*p*p
	} else {
		dv.tD1 = 0.05*math.Pow(p, 2.0/3.0) + 0.03*p/d - 0.002
	}
	dv.tD1 = math.Min(dv.tD1, 0.394*p)
	return dv
}

// ISO 965-1 grade multipliers relative to grade 6.
var gradeFactor = map[int]float64{3: 0.5, 4: 0.63, 5: 0.8, 6: 1.0, 7: 1.25, 8: 1.6, 9: 2.0}

// ISO 965-1 tolerances for metric threads. Inputs in mm, results in mm.
func metricDeviations(d, p float64, ext, in Class) deviations {
	const um = 1e-3
	var dv deviations
	switch ext.Position {
	case 'e':
		dv.es = (50 + 11*p) * um
	case 'f':
		dv.es = (30 + 11*p) * um
	case 'g':
		dv.es = (15 + 11*p) * um
	}
	if in.Position == 'G' {
		dv.ei = (15 + 11*p) * um
	}

	td2Six := 90 * math.Pow(p, 0.4) * math.Pow(d, 0.1)
	dv.td2 = td2Six * gradeFactor[ext.Grade] * um
	dv.td = (180*math.Pow(p, 2.0/3.0) - 3.15/math.Sqrt(p)) * gradeFactor[ext.CrestGrade] * um
	dv.tD2 = 1.32 * td2Six * gradeFactor[in.Grade] * um

	var tD1Six float64
	if p < 1 {
		tD1Six = 433*p - 190*math.Pow(p, 1.22)
	} else {
		tD1Six = 230 * math.Pow(p, 0.7)
	}
	dv.tD1 = tD1Six * gradeFactor[in.CrestGrade] * um
	return dv
}
