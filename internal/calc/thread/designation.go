package thread

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"Fastener/internal/calc/calcerr"
)

type Series string

const (
	SeriesUN  Series = "UN"
	SeriesUNR Series = "UNR"
	SeriesUNJ Series = "UNJ"
	SeriesM   Series = "M"
	SeriesMJ  Series = "MJ"
)

func ParseSeries(s string) (Series, error) {
	switch Series(strings.ToUpper(strings.TrimSpace(s))) {
	case SeriesUN, "UNC", "UNF", "UNEF":
		return SeriesUN, nil
	case SeriesUNR, "UNRC", "UNRF", "UNREF":
		return SeriesUNR, nil
	case SeriesUNJ, "UNJC", "UNJF", "UNJEF":
		return SeriesUNJ, nil
	case SeriesM:
		return SeriesM, nil
	case SeriesMJ:
		return SeriesMJ, nil
	}
	return "", calcerr.Newf(calcerr.CodeInvalidThreadDesignation, "unknown thread series %q", s)
}

// Metric reports whether sizes of the series are tabulated in millimetres.
func (s Series) Metric() bool { return s == SeriesM || s == SeriesMJ }

type Hand string

const (
	RightHand Hand = "RH"
	LeftHand  Hand = "LH"
)

// Class is one tolerance class of an external or internal thread.
// Inch classes use Grade 1-3 and Position 'A' or 'B'. Metric classes carry
// the pitch-diameter grade, the crest-diameter grade and the fundamental
// deviation letter.
type Class struct {
	Grade      int
	CrestGrade int
	Position   byte
	Metric     bool
}

// Internal reports whether c toleranced a nut or tapped-hole thread.
func (c Class) Internal() bool {
	if c.Metric {
		return c.Position >= 'A' && c.Position <= 'Z'
	}
	return c.Position == 'B'
}

func (c Class) String() string {
	if !c.Metric {
		return fmt.Sprintf("%d%c", c.Grade, c.Position)
	}
	if c.CrestGrade == c.Grade {
		return fmt.Sprintf("%d%c", c.Grade, c.Position)
	}
	return fmt.Sprintf("%d%c%d%c", c.Grade, c.Position, c.CrestGrade, c.Position)
}

var (
	inchClassRe   = regexp.MustCompile(`^([123])([AB])$`)
	metricClassRe = regexp.MustCompile(`^([3-9])([efghGH])(?:([3-9])([efghGH]))?$`)
)

// closed sets of accepted classes per series
var allowedClasses = map[Series]map[string]bool{
	SeriesUN:  {"1A": true, "2A": true, "3A": true, "1B": true, "2B": true, "3B": true},
	SeriesUNR: {"1A": true, "2A": true, "3A": true, "1B": true, "2B": true, "3B": true},
	SeriesUNJ: {"3A": true, "3B": true},
	SeriesM:   {"4g6g": true, "6g": true, "6e": true, "6f": true, "6h": true, "4h6h": true, "6H": true, "5H": true},
	SeriesMJ:  {"4h6h": true, "4g6g": true, "4H5H": true, "5H": true},
}

func parseClass(series Series, tok string) (Class, error) {
	tok = strings.TrimSpace(tok)
	if series.Metric() {
		m := metricClassRe.FindStringSubmatch(tok)
		if m == nil {
			return Class{}, calcerr.Newf(calcerr.CodeInvalidThreadDesignation, "bad metric tolerance class %q", tok)
		}
		if m[4] != "" && isUpper(m[2]) != isUpper(m[4]) {
			return Class{}, calcerr.Newf(calcerr.CodeInvalidThreadDesignation, "mixed internal/external class %q", tok)
		}
		g, _ := strconv.Atoi(m[1])
		c := Class{Grade: g, CrestGrade: g, Position: m[2][0], Metric: true}
		if m[3] != "" {
			c.CrestGrade, _ = strconv.Atoi(m[3])
		}
		if !allowedClasses[series][tok] {
			return Class{}, calcerr.Newf(calcerr.CodeInvalidThreadDesignation, "class %s not accepted for %s threads", tok, series)
		}
		return c, nil
	}
	m := inchClassRe.FindStringSubmatch(strings.ToUpper(tok))
	if m == nil {
		return Class{}, calcerr.Newf(calcerr.CodeInvalidThreadDesignation, "bad inch tolerance class %q", tok)
	}
	g, _ := strconv.Atoi(m[1])
	c := Class{Grade: g, CrestGrade: g, Position: m[2][0]}
	if !allowedClasses[series][c.String()] {
		return Class{}, calcerr.Newf(calcerr.CodeInvalidThreadDesignation, "class %s not accepted for %s threads", c, series)
	}
	return c, nil
}

func isUpper(s string) bool { return strings.ToUpper(s) == s }

// mate returns the customary mating class for c.
func mate(series Series, c Class) Class {
	if !c.Metric {
		if c.Position == 'A' {
			return Class{Grade: c.Grade, CrestGrade: c.Grade, Position: 'B'}
		}
		return Class{Grade: c.Grade, CrestGrade: c.Grade, Position: 'A'}
	}
	internal := c.Internal()
	switch {
	case series == SeriesMJ && !internal:
		return Class{Grade: 4, CrestGrade: 5, Position: 'H', Metric: true}
	case series == SeriesMJ:
		return Class{Grade: 4, CrestGrade: 6, Position: 'h', Metric: true}
	case !internal:
		return Class{Grade: 6, CrestGrade: 6, Position: 'H', Metric: true}
	}
	return Class{Grade: 6, CrestGrade: 6, Position: 'g', Metric: true}
}

func defaultClass(series Series) string {
	switch series {
	case SeriesUNJ:
		return "3A"
	case SeriesM:
		return "6g"
	case SeriesMJ:
		return "4h6h"
	}
	return "2A"
}

// Designation identifies a thread. Diameter and pitch are in millimetres.
type Designation struct {
	Series     Series  `json:"series"`
	DiameterMM float64 `json:"diameter_mm"`
	PitchMM    float64 `json:"pitch_mm"`
	External   Class   `json:"-"`
	Internal   Class   `json:"-"`
	Hand       Hand    `json:"hand"`
	Starts     int     `json:"starts"`
}

// NewDesignation validates and assembles a designation. classSpec is an
// external class, an internal class, or both separated by '/'; an empty
// spec selects the series default.
func NewDesignation(series Series, diameterMM, pitchMM float64, classSpec, hand string, starts int) (Designation, error) {
	if _, ok := allowedClasses[series]; !ok {
		return Designation{}, calcerr.Newf(calcerr.CodeInvalidThreadDesignation, "unknown thread series %q", series)
	}
	if !(diameterMM > 0) {
		return Designation{}, calcerr.New(calcerr.CodeInvalidThreadDesignation, "thread diameter must be positive")
	}
	if !(pitchMM > 0) {
		return Designation{}, calcerr.New(calcerr.CodeInvalidThreadDesignation, "thread pitch must be positive")
	}
	d := Designation{Series: series, DiameterMM: diameterMM, PitchMM: pitchMM, Starts: starts}

	switch strings.ToUpper(strings.TrimSpace(hand)) {
	case "", "RH":
		d.Hand = RightHand
	case "LH":
		d.Hand = LeftHand
	default:
		return Designation{}, calcerr.Newf(calcerr.CodeInvalidThreadDesignation, "handedness must be RH or LH, got %q", hand)
	}
	if d.Starts == 0 {
		d.Starts = 1
	}
	if d.Starts < 1 || d.Starts > 4 {
		return Designation{}, calcerr.Newf(calcerr.CodeInvalidThreadDesignation, "number of starts %d out of range", starts)
	}

	if strings.TrimSpace(classSpec) == "" {
		classSpec = defaultClass(series)
	}
	parts := strings.Split(classSpec, "/")
	if len(parts) > 2 {
		return Designation{}, calcerr.Newf(calcerr.CodeInvalidThreadDesignation, "bad tolerance class %q", classSpec)
	}
	var ext, in *Class
	for _, p := range parts {
		c, err := parseClass(series, p)
		if err != nil {
			return Designation{}, err
		}
		if c.Internal() {
			if in != nil {
				return Designation{}, calcerr.Newf(calcerr.CodeInvalidThreadDesignation, "two internal classes in %q", classSpec)
			}
			in = &c
		} else {
			if ext != nil {
				return Designation{}, calcerr.Newf(calcerr.CodeInvalidThreadDesignation, "two external classes in %q", classSpec)
			}
			ext = &c
		}
	}
	if ext == nil {
		m := mate(series, *in)
		ext = &m
	}
	if in == nil {
		m := mate(series, *ext)
		in = &m
	}
	d.External, d.Internal = *ext, *in
	return d, nil
}

// Lead is the axial advance per revolution.
func (d Designation) Lead() float64 { return d.PitchMM * float64(d.Starts) }

// ClassString is the "external/internal" tolerance pair.
func (d Designation) ClassString() string {
	return d.External.String() + "/" + d.Internal.String()
}

func (d Designation) String() string {
	var s string
	if d.Series.Metric() {
		s = fmt.Sprintf("%s%gx%g-%s", d.Series, round(d.DiameterMM, 3), round(d.PitchMM, 4), d.ClassString())
	} else {
		s = fmt.Sprintf("%.4f-%g %s-%s", d.DiameterMM/mmPerInch, round(mmPerInch/d.PitchMM, 2), d.Series, d.ClassString())
	}
	if d.Hand == LeftHand {
		s += "-LH"
	}
	return s
}
