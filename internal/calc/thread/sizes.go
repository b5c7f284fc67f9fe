package thread

import (
	"math"
	"sort"

	"Fastener/internal/calc/calcerr"
)

const mmPerInch = 25.4

// Size is one tabulated diameter/pitch pair in the native units of its
// series: inches and threads per inch for UN, millimetres for metric.
type Size struct {
	Label    string  `json:"label"`
	Diameter float64 `json:"diameter"`
	// TPI is set for inch sizes, Pitch for metric sizes.
	TPI   float64 `json:"tpi,omitempty"`
	Pitch float64 `json:"pitch,omitempty"`
	Group string  `json:"group"`
}

// ASME B1.1 / Machinery's Handbook unified sizes.
var unifiedSizes = []Size{
	{"No. 0", 0.0600, 80, 0, "UNF"},
	{"No. 1", 0.0730, 64, 0, "UNC"},
	{"No. 1", 0.0730, 72, 0, "UNF"},
	{"No. 2", 0.0860, 56, 0, "UNC"},
	{"No. 2", 0.0860, 64, 0, "UNF"},
	{"No. 3", 0.0990, 48, 0, "UNC"},
	{"No. 3", 0.0990, 56, 0, "UNF"},
	{"No. 4", 0.1120, 40, 0, "UNC"},
	{"No. 4", 0.1120, 48, 0, "UNF"},
	{"No. 5", 0.1250, 40, 0, "UNC"},
	{"No. 5", 0.1250, 44, 0, "UNF"},
	{"No. 6", 0.1380, 32, 0, "UNC"},
	{"No. 6", 0.1380, 40, 0, "UNF"},
	{"No. 8", 0.1640, 32, 0, "UNC"},
	{"No. 8", 0.1640, 36, 0, "UNF"},
	{"No. 10", 0.1900, 24, 0, "UNC"},
	{"No. 10", 0.1900, 32, 0, "UNF"},
	{"No. 12", 0.2160, 24, 0, "UNC"},
	{"No. 12", 0.2160, 28, 0, "UNF"},
	{"No. 12", 0.2160, 32, 0, "UNEF"},
	{"1/4", 0.2500, 20, 0, "UNC"},
	{"1/4", 0.2500, 28, 0, "UNF"},
	{"1/4", 0.2500, 32, 0, "UNEF"},
	{"5/16", 0.3125, 18, 0, "UNC"},
	{"5/16", 0.3125, 24, 0, "UNF"},
	{"5/16", 0.3125, 32, 0, "UNEF"},
	{"3/8", 0.3750, 16, 0, "UNC"},
	{"3/8", 0.3750, 24, 0, "UNF"},
	{"3/8", 0.3750, 32, 0, "UNEF"},
	{"7/16", 0.4375, 14, 0, "UNC"},
	{"7/16", 0.4375, 20, 0, "UNF"},
	{"7/16", 0.4375, 28, 0, "UNEF"},
	{"1/2", 0.5000, 13, 0, "UNC"},
	{"1/2", 0.5000, 20, 0, "UNF"},
	{"1/2", 0.5000, 28, 0, "UNEF"},
	{"9/16", 0.5625, 12, 0, "UNC"},
	{"9/16", 0.5625, 18, 0, "UNF"},
	{"9/16", 0.5625, 24, 0, "UNEF"},
	{"5/8", 0.6250, 11, 0, "UNC"},
	{"5/8", 0.6250, 18, 0, "UNF"},
	{"5/8", 0.6250, 24, 0, "UNEF"},
	{"11/16", 0.6875, 24, 0, "UNEF"},
	{"3/4", 0.7500, 10, 0, "UNC"},
	{"3/4", 0.7500, 16, 0, "UNF"},
	{"3/4", 0.7500, 20, 0, "UNEF"},
	{"13/16", 0.8125, 20, 0, "UNEF"},
	{"7/8", 0.8750, 9, 0, "UNC"},
	{"7/8", 0.8750, 14, 0, "UNF"},
	{"7/8", 0.8750, 20, 0, "UNEF"},
	{"15/16", 0.9375, 20, 0, "UNEF"},
	{"1", 1.0000, 8, 0, "UNC"},
	{"1", 1.0000, 12, 0, "UNF"},
	{"1", 1.0000, 20, 0, "UNEF"},
	{"1-1/8", 1.1250, 7, 0, "UNC"},
	{"1-1/8", 1.1250, 12, 0, "UNF"},
	{"1-1/4", 1.2500, 7, 0, "UNC"},
	{"1-1/4", 1.2500, 12, 0, "UNF"},
	{"1-3/8", 1.3750, 6, 0, "UNC"},
	{"1-3/8", 1.3750, 12, 0, "UNF"},
	{"1-1/2", 1.5000, 6, 0, "UNC"},
	{"1-1/2", 1.5000, 12, 0, "UNF"},
}

// ISO 261/724 metric sizes, first and second choice.
var metricSizes = []Size{
	{"M1", 1, 0, 0.25, "coarse"},
	{"M1.2", 1.2, 0, 0.25, "coarse"},
	{"M1.6", 1.6, 0, 0.35, "coarse"},
	{"M1.6", 1.6, 0, 0.2, "fine"},
	{"M2", 2, 0, 0.4, "coarse"},
	{"M2", 2, 0, 0.25, "fine"},
	{"M2.5", 2.5, 0, 0.45, "coarse"},
	{"M2.5", 2.5, 0, 0.35, "fine"},
	{"M3", 3, 0, 0.5, "coarse"},
	{"M3", 3, 0, 0.35, "fine"},
	{"M3.5", 3.5, 0, 0.6, "coarse"},
	{"M4", 4, 0, 0.7, "coarse"},
	{"M4", 4, 0, 0.5, "fine"},
	{"M5", 5, 0, 0.8, "coarse"},
	{"M5", 5, 0, 0.5, "fine"},
	{"M6", 6, 0, 1, "coarse"},
	{"M6", 6, 0, 0.75, "fine"},
	{"M8", 8, 0, 1.25, "coarse"},
	{"M8", 8, 0, 1, "fine"},
	{"M8", 8, 0, 0.75, "fine"},
	{"M10", 10, 0, 1.5, "coarse"},
	{"M10", 10, 0, 1.25, "fine"},
	{"M10", 10, 0, 1, "fine"},
	{"M12", 12, 0, 1.75, "coarse"},
	{"M12", 12, 0, 1.5, "fine"},
	{"M12", 12, 0, 1.25, "fine"},
	{"M14", 14, 0, 2, "coarse"},
	{"M14", 14, 0, 1.5, "fine"},
	{"M16", 16, 0, 2, "coarse"},
	{"M16", 16, 0, 1.5, "fine"},
	{"M18", 18, 0, 2.5, "coarse"},
	{"M18", 18, 0, 2, "fine"},
	{"M18", 18, 0, 1.5, "fine"},
	{"M20", 20, 0, 2.5, "coarse"},
	{"M20", 20, 0, 2, "fine"},
	{"M20", 20, 0, 1.5, "fine"},
	{"M22", 22, 0, 2.5, "coarse"},
	{"M22", 22, 0, 2, "fine"},
	{"M22", 22, 0, 1.5, "fine"},
	{"M24", 24, 0, 3, "coarse"},
	{"M24", 24, 0, 2, "fine"},
}

// Sizes returns the tabulated sizes of a series, sorted by diameter.
func Sizes(series Series) []Size {
	src := unifiedSizes
	if series.Metric() {
		src = metricSizes
	}
	out := append([]Size(nil), src...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Diameter < out[j].Diameter })
	return out
}

// FindSize looks up the tabulated size matching d.
func FindSize(d Designation) (Size, error) {
	if d.Series.Metric() {
		for _, s := range metricSizes {
			if math.Abs(s.Diameter-d.DiameterMM) < 1e-3 && math.Abs(s.Pitch-d.PitchMM) < 1e-4 {
				return s, nil
			}
		}
	} else {
		dia := d.DiameterMM / mmPerInch
		tpi := mmPerInch / d.PitchMM
		for _, s := range unifiedSizes {
			if math.Abs(s.Diameter-dia) < 5e-4 && math.Abs(s.TPI-tpi) < 1e-2 {
				return s, nil
			}
		}
	}
	return Size{}, calcerr.Newf(calcerr.CodeUnsupportedThreadSize, "no tabulated %s size for %s", d.Series, d)
}

// Designation builds the designation of size s in the given series with the
// series default class.
func (s Size) Designation(series Series) (Designation, error) {
	if series.Metric() {
		return NewDesignation(series, s.Diameter, s.Pitch, "", "", 1)
	}
	return NewDesignation(series, s.Diameter*mmPerInch, mmPerInch/s.TPI, "", "", 1)
}
