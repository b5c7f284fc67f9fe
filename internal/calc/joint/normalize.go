package joint

import (
	"fmt"

	"Fastener/internal/calc/calcerr"
	"Fastener/internal/calc/failure"
	"Fastener/internal/calc/loads"
	"Fastener/internal/calc/material"
	"Fastener/internal/calc/policy"
	"Fastener/internal/calc/thread"
	"Fastener/internal/calc/units"
)

// normalized is a request converted to internal units and checked against
// the reference tables.
type normalized struct {
	joint failure.Joint
	loads loads.Input
}

func designation(in ThreadInput) (thread.Designation, error) {
	series, err := thread.ParseSeries(in.Series)
	if err != nil {
		return thread.Designation{}, err
	}
	if series.Metric() && (in.DiameterIn != nil || in.ThreadsPerInch != nil) {
		return thread.Designation{}, calcerr.Newf(calcerr.CodeInconsistentUnits, "%s threads are specified in millimetres", series)
	}
	if !series.Metric() && (in.DiameterMM != nil || in.PitchMM != nil) {
		return thread.Designation{}, calcerr.Newf(calcerr.CodeInconsistentUnits, "%s threads are specified in inches and threads per inch", series)
	}

	dia, ok, err := units.Length("thread.diameter", in.DiameterMM, in.DiameterIn)
	if err != nil {
		return thread.Designation{}, err
	}
	if !ok {
		return thread.Designation{}, calcerr.New(calcerr.CodeInvalidThreadDesignation, "thread diameter is required")
	}

	var pitch float64
	switch {
	case in.PitchMM != nil:
		pitch = *in.PitchMM
	case in.ThreadsPerInch != nil:
		if !(*in.ThreadsPerInch > 0) {
			return thread.Designation{}, calcerr.New(calcerr.CodeInvalidThreadDesignation, "threads per inch must be positive")
		}
		pitch = units.MillimetersPerInch / *in.ThreadsPerInch
	default:
		return thread.Designation{}, calcerr.New(calcerr.CodeInvalidThreadDesignation, "thread pitch is required")
	}
	return thread.NewDesignation(series, dia, pitch, in.Class, in.Hand, in.Starts)
}

func lookup(tbl *material.Table, role, id string) (material.Material, error) {
	if id == "" {
		return material.Material{}, calcerr.Newf(calcerr.CodeUnknownMaterial, "%s material is required", role)
	}
	m, err := tbl.Lookup(id)
	if err != nil {
		return material.Material{}, fmt.Errorf("%s: %w", role, err)
	}
	return m, nil
}

// optionalLength returns zero for an absent value and rejects non-positive
// present values.
func optionalLength(field string, mm, in *float64) (float64, error) {
	v, ok, err := units.Length(field, mm, in)
	if err != nil || !ok {
		return 0, err
	}
	return v, units.Positive(field, v)
}

func normalize(req Request, tbl *material.Table, std *policy.Standard) (normalized, error) {
	var n normalized
	j := &n.joint

	cfg, err := failure.ParseConfiguration(req.Configuration)
	if err != nil {
		return n, err
	}
	j.Configuration = cfg

	d, err := designation(req.Thread)
	if err != nil {
		return n, err
	}

	// materials
	if j.Fastener, err = lookup(tbl, "fastener", req.Fastener.Material); err != nil {
		return n, err
	}
	switch cfg {
	case failure.ConfigNut:
		if req.Nut == nil {
			return n, calcerr.New(calcerr.CodeMalformedLoadCase, "nut configuration requires a nut")
		}
		m, err := lookup(tbl, "nut", req.Nut.Material)
		if err != nil {
			return n, err
		}
		j.Nut = &m
	case failure.ConfigInsert:
		if req.Insert == nil {
			return n, calcerr.New(calcerr.CodeMalformedLoadCase, "insert configuration requires an insert")
		}
		m, err := lookup(tbl, "insert", req.Insert.Material)
		if err != nil {
			return n, err
		}
		j.Insert = &m
	}
	if cfg != failure.ConfigNut {
		if req.Parent == nil {
			return n, calcerr.Newf(calcerr.CodeMalformedLoadCase, "%s configuration requires the tapped parent part", cfg)
		}
		m, err := lookup(tbl, "parent", req.Parent.Material)
		if err != nil {
			return n, err
		}
		j.Parent = &m
	}

	// clamped stack
	if len(req.Parts) == 0 {
		return n, calcerr.New(calcerr.CodeMalformedLoadCase, "joint needs at least one clamped part")
	}
	var layers []loads.Layer
	for i, p := range req.Parts {
		field := fmt.Sprintf("parts[%d]", i)
		m, err := lookup(tbl, field, p.Material)
		if err != nil {
			return n, err
		}
		t, ok, err := units.Length(field+".thickness", p.ThicknessMM, p.ThicknessIn)
		if err != nil {
			return n, err
		}
		if !ok {
			return n, calcerr.Newf(calcerr.CodeMalformedLoadCase, "%s thickness is required", field)
		}
		if err := units.Positive(field+".thickness", t); err != nil {
			return n, err
		}
		e, err := optionalLength(field+".edge_distance", p.EdgeDistanceMM, p.EdgeDistanceIn)
		if err != nil {
			return n, err
		}
		if e > 0 && e <= d.DiameterMM/2 {
			return n, calcerr.Newf(calcerr.CodeMalformedLoadCase, "%s edge distance %g mm does not clear the hole", field, e)
		}
		j.Parts = append(j.Parts, failure.Part{Material: m, Thickness: t, EdgeDistance: e})
		layers = append(layers, loads.Layer{Thickness: t, Modulus: m.ModulusMPa, CTE: m.CTEPerC})
	}
	for i, w := range req.Washers {
		field := fmt.Sprintf("washers[%d]", i)
		m, err := lookup(tbl, field, w.Material)
		if err != nil {
			return n, err
		}
		t, ok, err := units.Length(field+".thickness", w.ThicknessMM, w.ThicknessIn)
		if err != nil {
			return n, err
		}
		if !ok {
			return n, calcerr.Newf(calcerr.CodeMalformedLoadCase, "%s thickness is required", field)
		}
		if err := units.Positive(field+".thickness", t); err != nil {
			return n, err
		}
		layers = append(layers, loads.Layer{Thickness: t, Modulus: m.ModulusMPa, CTE: m.CTEPerC})
	}
	var grip float64
	for _, l := range layers {
		grip += l.Thickness
	}

	// engagement and fit
	engagement, err := optionalLength("thread.engagement", req.Thread.EngagementMM, req.Thread.EngagementIn)
	if err != nil {
		return n, err
	}
	if cfg == failure.ConfigInsert {
		insertLen, err := optionalLength("insert.length", req.Insert.LengthMM, req.Insert.LengthIn)
		if err != nil {
			return n, err
		}
		switch {
		case engagement == 0:
			engagement = insertLen
		case insertLen > 0 && engagement > insertLen:
			return n, calcerr.Newf(calcerr.CodeMalformedLoadCase, "engagement %g mm exceeds insert length %g mm", engagement, insertLen)
		}
	}
	if engagement == 0 {
		return n, calcerr.New(calcerr.CodeMalformedLoadCase, "length of thread engagement is required")
	}
	length, err := optionalLength("fastener.length", req.Fastener.LengthMM, req.Fastener.LengthIn)
	if err != nil {
		return n, err
	}
	if length > 0 && length < grip+engagement {
		return n, calcerr.Newf(calcerr.CodeMalformedLoadCase,
			"fastener length %g mm is shorter than grip %g mm plus engagement %g mm", length, grip, engagement)
	}

	if j.Thread, err = thread.Compute(d, engagement); err != nil {
		return n, err
	}
	if cfg == failure.ConfigInsert {
		outer, err := thread.InsertOuter(d, engagement)
		if err != nil {
			return n, err
		}
		j.InsertOuter = &outer
	}

	// bearing geometry
	if j.HeadBearingDiameter, err = optionalLength("fastener.head_bearing_diameter", req.Fastener.HeadDiameterMM, req.Fastener.HeadDiameterIn); err != nil {
		return n, err
	}
	if j.HoleDiameter, err = optionalLength("fastener.hole_diameter", req.Fastener.HoleDiameterMM, req.Fastener.HoleDiameterIn); err != nil {
		return n, err
	}
	if j.HoleDiameter > 0 && j.HoleDiameter < d.DiameterMM {
		return n, calcerr.Newf(calcerr.CodeMalformedLoadCase, "hole diameter %g mm is smaller than the fastener", j.HoleDiameter)
	}
	if req.Nut != nil {
		if j.NutBearingDiameter, err = optionalLength("nut.bearing_diameter", req.Nut.BearingDiameterMM, req.Nut.BearingDiameterIn); err != nil {
			return n, err
		}
	}
	rated, ok, err := units.Force("fastener.ultimate_load", req.Fastener.UltimateLoadN, req.Fastener.UltimateLoadLbf)
	if err != nil {
		return n, err
	}
	if ok {
		if err := units.Positive("fastener.ultimate_load", rated); err != nil {
			return n, err
		}
		j.RatedUltimateLoad = rated
	}
	j.ThreadsInShearPlane = req.Fastener.ThreadsInShearPlane
	j.SeparationCritical = req.Preload.SeparationCritical

	// loads
	li, err := loadInput(req.Loads)
	if err != nil {
		return n, err
	}
	j.Friction = std.Friction()
	if req.Loads.Friction != nil {
		mu := *req.Loads.Friction
		if !(mu > 0 && mu <= 1) {
			return n, calcerr.Newf(calcerr.CodeMalformedLoadCase, "friction coefficient must be in (0, 1], got %g", mu)
		}
		j.Friction = mu
	}
	pre, err := preloadInput(req.Preload)
	if err != nil {
		return n, err
	}
	li.Preload = pre
	li.Bolt = loads.Bolt{Diameter: d.DiameterMM, Modulus: j.Fastener.ModulusMPa, CTE: j.Fastener.CTEPerC}
	li.Layers = layers
	if j.Parent != nil {
		li.Engaged = &loads.Layer{Thickness: engagement, Modulus: j.Parent.ModulusMPa, CTE: j.Parent.CTEPerC}
	}
	n.loads = li
	return n, nil
}

func loadInput(in LoadInput) (loads.Input, error) {
	var li loads.Input
	var err error
	if li.Tension, _, err = units.Force("loads.tension", in.TensionN, in.TensionLbf); err != nil {
		return li, err
	}
	if err := units.NonNegative("loads.tension", li.Tension); err != nil {
		return li, err
	}
	if li.Shear, _, err = units.Force("loads.shear", in.ShearN, in.ShearLbf); err != nil {
		return li, err
	}
	if err := units.NonNegative("loads.shear", li.Shear); err != nil {
		return li, err
	}
	if li.DeltaT, _, err = units.TemperatureDelta("loads.temperature_delta", in.TemperatureDeltaC, in.TemperatureDeltaF); err != nil {
		return li, err
	}
	if _, ok, err := units.Scalar("loads.load_introduction_factor", in.LoadIntroduction); err != nil {
		return li, err
	} else if ok {
		li.LoadIntroduction = in.LoadIntroduction
	}
	if _, ok, err := units.Scalar("loads.stiffness_factor", in.StiffnessFactor); err != nil {
		return li, err
	} else if ok {
		li.StiffnessFactor = in.StiffnessFactor
	}
	return li, nil
}

func pct(field string, v *float64) (*float64, error) {
	f, ok, err := units.Scalar(field, v)
	if err != nil || !ok {
		return nil, err
	}
	f /= 100
	return &f, nil
}

func preloadInput(in PreloadInput) (loads.PreloadInput, error) {
	var out loads.PreloadInput
	var err error
	if out.Method, err = loads.ParseMethod(in.Method); err != nil {
		return out, err
	}
	out.Lubricated = in.Lubricated
	out.FastenerCount = in.FastenerCount

	nominal, ok, err := units.Force("preload", in.PreloadN, in.PreloadLbf)
	if err != nil {
		return out, err
	}
	if ok {
		if err := units.Positive("preload", nominal); err != nil {
			return out, err
		}
		out.Nominal = nominal
	}
	if v, ok, err := units.Force("preload.min", in.MinN, in.MinLbf); err != nil {
		return out, err
	} else if ok {
		out.Min = &v
	}
	if v, ok, err := units.Force("preload.max", in.MaxN, in.MaxLbf); err != nil {
		return out, err
	} else if ok {
		out.Max = &v
	}
	torque, ok, err := units.Torque("preload.torque", in.TorqueNmm, in.TorqueInLbf)
	if err != nil {
		return out, err
	}
	if ok {
		if err := units.Positive("preload.torque", torque); err != nil {
			return out, err
		}
		out.Torque = torque
	}
	if out.Uncertainty, err = pct("preload.uncertainty_pct", in.UncertaintyPct); err != nil {
		return out, err
	}
	tol, err := pct("preload.torque_tolerance_pct", in.TorqueTolerancePct)
	if err != nil {
		return out, err
	}
	if tol != nil {
		out.TorqueTolerance = *tol
	}
	if out.Relaxation, err = pct("preload.relaxation_pct", in.RelaxationPct); err != nil {
		return out, err
	}
	if k, ok, err := units.Scalar("preload.nut_factor", in.NutFactor); err != nil {
		return out, err
	} else if ok {
		if err := units.Positive("preload.nut_factor", k); err != nil {
			return out, err
		}
		out.NutFactor = k
	}
	if out.Creep, _, err = units.Force("preload.creep_loss", in.CreepN, in.CreepLbf); err != nil {
		return out, err
	}
	return out, nil
}
