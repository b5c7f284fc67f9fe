package failure

import (
	"math"

	"Fastener/internal/calc/calcerr"
	"Fastener/internal/calc/loads"
	"Fastener/internal/calc/material"
	"Fastener/internal/calc/thread"
)

// Part is one clamped part. EdgeDistance is zero when not given.
type Part struct {
	Material     material.Material
	Thickness    float64
	EdgeDistance float64
}

// Joint is the validated joint in internal units (N, mm, MPa).
type Joint struct {
	Configuration Configuration
	Fastener      material.Material
	// Thread is the fastener thread at the length of engagement.
	Thread thread.Geometry
	// InsertOuter is the tapped-hole thread receiving the insert.
	InsertOuter *thread.Geometry
	Nut         *material.Material
	Insert      *material.Material
	// Parent is the tapped part for ConfigTapped and ConfigInsert.
	Parent *material.Material
	Parts  []Part

	HeadBearingDiameter float64
	NutBearingDiameter  float64
	HoleDiameter        float64
	// RatedUltimateLoad replaces Ftu·At when positive.
	RatedUltimateLoad   float64
	ThreadsInShearPlane bool
	Friction            float64
	SeparationCritical  bool
}

func (j Joint) diameter() float64 { return j.Thread.Designation.DiameterMM }

// Evaluation is the outcome of one evaluator. Part is the 1-based index of
// the clamped part for per-part modes, zero otherwise.
type Evaluation struct {
	Mode        Mode
	Part        int
	Basis       string
	Capability  float64
	Requirement float64
	// Interaction is set for ModeCombined; Requirement is then its
	// unfactored value against a Capability of 1.
	Interaction *Interaction
}

// Interaction is a tension-shear interaction curve, NASA-STD-5020B
// eq 20 and 22 without bending. Ratios are unfactored load over allowable.
type Interaction struct {
	ShearRatio      float64 `json:"shear_ratio"`
	TensionRatio    float64 `json:"tension_ratio"`
	ShearExponent   float64 `json:"shear_exponent"`
	TensionExponent float64 `json:"tension_exponent"`
}

// Value evaluates the curve with both loads scaled by factor.
func (in Interaction) Value(factor float64) float64 {
	return math.Pow(factor*in.ShearRatio, in.ShearExponent) + math.Pow(factor*in.TensionRatio, in.TensionExponent)
}

const (
	basisSeparationFirst = "separation_before_rupture"
	basisPreloadIncluded = "rupture_before_separation"
)

// Evaluate runs every mode that applies to the joint in Modes order.
func Evaluate(j Joint, lc loads.LoadCase) ([]Evaluation, error) {
	_, yield := tensileAllowables(j)
	if pmax := lc.PreloadAt(loads.BoundMax); pmax >= yield {
		return nil, calcerr.Newf(calcerr.CodeMalformedLoadCase,
			"maximum preload %g N reaches the fastener yield allowable %g N", pmax, yield)
	}

	var out []Evaluation
	add := func(evs ...Evaluation) {
		out = append(out, evs...)
	}

	ultimate := tensile(ModeUltimate, j, lc)
	add(tensile(ModeYield, j, lc), ultimate, separation(j, lc))
	for _, m := range threadShearModes(j.Configuration) {
		ev, err := threadShear(m, j, lc)
		if err != nil {
			return nil, err
		}
		add(ev)
	}
	evs, err := jointBearing(j, lc)
	if err != nil {
		return nil, err
	}
	add(evs...)
	add(boltBearing(j, lc)...)
	evs, err = tearOut(j, lc)
	if err != nil {
		return nil, err
	}
	add(evs...)
	shear := fastenerShear(j, lc)
	add(slip(j, lc), shear, combined(j, lc, ultimate, shear))

	for _, ev := range out {
		if math.IsNaN(ev.Capability) || math.IsInf(ev.Capability, 0) {
			return nil, calcerr.Newf(calcerr.CodeUndefinedResult, "%s capability is not a finite number", ev.Mode)
		}
	}
	return out, nil
}

// preloaded returns the external tension capability of an axial allowable
// that also carries preload (NASA-STD-5020B eq 6-11). When the joint
// separates before the allowable is reached the full allowable is available.
func preloaded(allowable, preload, nphi float64) (float64, string) {
	if nphi <= 0 {
		return allowable, basisSeparationFirst
	}
	prime := (allowable - preload) / nphi
	sep := preload / (1 - nphi)
	if sep <= prime {
		return allowable, basisSeparationFirst
	}
	return math.Max(prime, 0), basisPreloadIncluded
}

func tensileAllowables(j Joint) (ultimate, yield float64) {
	if j.RatedUltimateLoad > 0 {
		// eq 18
		return j.RatedUltimateLoad, j.Fastener.FtyMPa / j.Fastener.FtuMPa * j.RatedUltimateLoad
	}
	at := j.Thread.TensileStressArea
	return j.Fastener.FtuMPa * at, j.Fastener.FtyMPa * at
}

func tensile(m Mode, j Joint, lc loads.LoadCase) Evaluation {
	ultimate, yield := tensileAllowables(j)
	allow := ultimate
	if m == ModeYield {
		allow = yield
	}
	capability, basis := preloaded(allow, lc.PreloadAt(m.Bound(j.SeparationCritical)), lc.NPhi())
	return Evaluation{Mode: m, Basis: basis, Capability: capability, Requirement: lc.Tension}
}

func separation(j Joint, lc loads.LoadCase) Evaluation {
	basis := "statistical_minimum_preload"
	if j.SeparationCritical {
		basis = "minimum_preload"
	}
	return Evaluation{
		Mode:        ModeSeparation,
		Basis:       basis,
		Capability:  lc.PreloadAt(ModeSeparation.Bound(j.SeparationCritical)),
		Requirement: lc.Tension,
	}
}

func threadShear(m Mode, j Joint, lc loads.LoadCase) (Evaluation, error) {
	var strength, area float64
	switch m {
	case ModeThreadShearFastener:
		strength, area = j.Fastener.FsuMPa, j.Thread.ExternalShearArea
	case ModeThreadShearNut:
		if j.Nut == nil {
			return Evaluation{}, calcerr.New(calcerr.CodeMalformedLoadCase, "nut configuration without nut material")
		}
		strength, area = j.Nut.FsuMPa, j.Thread.InternalShearArea
	case ModeThreadShearInsertInternal:
		if j.Insert == nil {
			return Evaluation{}, calcerr.New(calcerr.CodeMalformedLoadCase, "insert configuration without insert material")
		}
		strength, area = j.Insert.FsuMPa, j.Thread.InternalShearArea
	case ModeThreadShearInsertExternal:
		if j.Insert == nil || j.InsertOuter == nil {
			return Evaluation{}, calcerr.New(calcerr.CodeMalformedLoadCase, "insert configuration without insert geometry")
		}
		strength, area = j.Insert.FsuMPa, j.InsertOuter.ExternalShearArea
	case ModeThreadShearParent:
		if j.Parent == nil {
			return Evaluation{}, calcerr.New(calcerr.CodeMalformedLoadCase, "tapped configuration without parent material")
		}
		strength, area = j.Parent.FsuMPa, j.Thread.InternalShearArea
		if j.InsertOuter != nil {
			area = j.InsertOuter.InternalShearArea
		}
	}
	if !(area > 0) {
		return Evaluation{}, calcerr.Newf(calcerr.CodeMalformedLoadCase, "%s needs a positive length of engagement", m)
	}
	capability, basis := preloaded(strength*area, lc.PreloadAt(m.Bound(j.SeparationCritical)), lc.NPhi())
	return Evaluation{Mode: m, Basis: basis, Capability: capability, Requirement: lc.Tension}, nil
}

// jointBearing checks the clamped part under the head and, for through
// bolts, under the nut.
func jointBearing(j Joint, lc loads.LoadCase) ([]Evaluation, error) {
	hole := j.HoleDiameter
	if hole == 0 {
		hole = j.diameter()
	}
	preload := lc.PreloadAt(ModeJointBearing.Bound(j.SeparationCritical))

	side := func(part int, dia float64, basis string) (Evaluation, error) {
		if dia <= hole {
			return Evaluation{}, calcerr.Newf(calcerr.CodeMalformedLoadCase, "bearing diameter %g mm must exceed hole diameter %g mm", dia, hole)
		}
		area := math.Pi / 4 * (dia*dia - hole*hole)
		capability, _ := preloaded(j.Parts[part-1].Material.FbruMPa*area, preload, lc.NPhi())
		return Evaluation{Mode: ModeJointBearing, Part: part, Basis: basis, Capability: capability, Requirement: lc.Tension}, nil
	}

	var out []Evaluation
	if j.HeadBearingDiameter > 0 {
		ev, err := side(1, j.HeadBearingDiameter, "under_head")
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	if j.NutBearingDiameter > 0 && j.Configuration == ConfigNut {
		ev, err := side(len(j.Parts), j.NutBearingDiameter, "under_nut")
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}

func boltBearing(j Joint, lc loads.LoadCase) []Evaluation {
	out := make([]Evaluation, 0, len(j.Parts))
	for i, p := range j.Parts {
		fbr := math.Min(p.Material.FbruMPa, j.Fastener.FbruMPa)
		out = append(out, Evaluation{
			Mode:        ModeBoltBearing,
			Part:        i + 1,
			Capability:  fbr * j.diameter() * p.Thickness,
			Requirement: lc.Shear,
		})
	}
	return out
}

// tearOut uses the two shear planes of TM-106943 eq 70.
func tearOut(j Joint, lc loads.LoadCase) ([]Evaluation, error) {
	var out []Evaluation
	d := j.diameter()
	for i, p := range j.Parts {
		if p.EdgeDistance == 0 {
			continue
		}
		if p.EdgeDistance <= d/2 {
			return nil, calcerr.Newf(calcerr.CodeMalformedLoadCase, "part %d edge distance %g mm is inside the hole", i+1, p.EdgeDistance)
		}
		out = append(out, Evaluation{
			Mode:        ModeShearTearOut,
			Part:        i + 1,
			Capability:  p.Material.FsuMPa * 2 * p.Thickness * (p.EdgeDistance - d/2),
			Requirement: lc.Shear,
		})
	}
	return out, nil
}

// slip reduces the clamp force by the share of tension the joint unloads.
func slip(j Joint, lc loads.LoadCase) Evaluation {
	clamp := lc.PreloadAt(ModeJointSlip.Bound(j.SeparationCritical)) - (1-lc.NPhi())*lc.Tension
	return Evaluation{
		Mode:        ModeJointSlip,
		Capability:  j.Friction * math.Max(clamp, 0),
		Requirement: lc.Shear,
	}
}

func fastenerShear(j Joint, lc loads.LoadCase) Evaluation {
	d := j.diameter()
	area, basis := math.Pi/4*d*d, "shank_in_shear_plane"
	if j.ThreadsInShearPlane {
		area, basis = j.Thread.MinorArea, "threads_in_shear_plane"
	}
	return Evaluation{
		Mode:        ModeFastenerShear,
		Basis:       basis,
		Capability:  j.Fastener.FsuMPa * area,
		Requirement: lc.Shear,
	}
}

// combined checks simultaneous tension and shear against the ultimate
// tensile and fastener shear capabilities. It is not applicable unless both
// loads are present.
func combined(j Joint, lc loads.LoadCase, tension, shear Evaluation) Evaluation {
	ev := Evaluation{Mode: ModeCombined, Basis: shear.Basis, Capability: 1}
	if lc.Tension == 0 || lc.Shear == 0 {
		return ev
	}
	in := Interaction{
		ShearRatio:      lc.Shear / shear.Capability,
		TensionRatio:    lc.Tension / tension.Capability,
		ShearExponent:   2.5,
		TensionExponent: 1.5,
	}
	if j.ThreadsInShearPlane {
		// eq 22
		in.ShearExponent, in.TensionExponent = 1.2, 2
	}
	ev.Interaction = &in
	ev.Requirement = in.Value(1)
	return ev
}
