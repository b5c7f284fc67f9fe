// Package margin turns failure-mode evaluations into margins of safety and
// reduces them to the governing result of a joint.
package margin

import (
	"math"

	"Fastener/internal/calc/calcerr"
	"Fastener/internal/calc/failure"
	"Fastener/internal/calc/loads"
	"Fastener/internal/calc/policy"
)

type Status string

const (
	StatusPass          Status = "pass"
	StatusFail          Status = "fail"
	StatusNotApplicable Status = "not_applicable"
)

// tieTolerance is the relative spread within which margins count as tied.
const tieTolerance = 1e-9

// Result is one failure mode of one joint. Requirement includes the applied
// factor. Margin is nil when the requirement is zero.
type Result struct {
	Mode                 failure.Mode `json:"mode"`
	Part                 int          `json:"part,omitempty"`
	Basis                string       `json:"basis,omitempty"`
	Capability           float64      `json:"capability_N"`
	Requirement          float64      `json:"requirement_N"`
	FactorApplied        float64      `json:"factor_applied"`
	FittingFactorApplied bool         `json:"fitting_factor_applied"`
	Margin               *float64     `json:"margin"`
	Status               Status       `json:"status"`
	// Interaction carries the unfactored ratios of a combined mode.
	Interaction *failure.Interaction `json:"interaction,omitempty"`
}

// Ref names a result in the governing set.
type Ref struct {
	Mode  failure.Mode `json:"mode"`
	Part  int          `json:"part,omitempty"`
	Basis string       `json:"basis,omitempty"`
}

type JointAnalysisResult struct {
	JointID         string         `json:"joint_id"`
	Standard        string         `json:"standard"`
	Thread          string         `json:"thread"`
	LoadCase        loads.LoadCase `json:"load_case"`
	Results         []Result       `json:"results"`
	Governing       []Ref          `json:"governing"`
	GoverningMargin *float64       `json:"governing_margin"`
	Pass            bool           `json:"pass"`
}

// Compute returns capability/requirement - 1, or nil for a zero
// requirement.
func Compute(capability, requirement float64) (*float64, error) {
	if math.IsNaN(capability) || math.IsInf(capability, 0) {
		return nil, calcerr.New(calcerr.CodeUndefinedResult, "capability is not a finite number")
	}
	if math.IsNaN(requirement) || math.IsInf(requirement, 0) || requirement < 0 {
		return nil, calcerr.New(calcerr.CodeUndefinedResult, "requirement is not a finite non-negative number")
	}
	if requirement == 0 {
		return nil, nil
	}
	m := capability/requirement - 1
	return &m, nil
}

// Apply factors one evaluation under a policy. An interaction scales both
// of its loads by the factor, so its margin is 1/value - 1.
func Apply(ev failure.Evaluation, p policy.Policy) (Result, error) {
	factor, fitting := p.Factor(ev.Mode)
	req := ev.Requirement * factor
	if ev.Interaction != nil {
		req = ev.Interaction.Value(factor)
	}
	m, err := Compute(ev.Capability, req)
	if err != nil {
		return Result{}, calcerr.Wrap(err, calcerr.CodeUndefinedResult, string(ev.Mode))
	}
	r := Result{
		Mode:                 ev.Mode,
		Part:                 ev.Part,
		Basis:                ev.Basis,
		Capability:           ev.Capability,
		Requirement:          req,
		FactorApplied:        factor,
		FittingFactorApplied: fitting,
		Margin:               m,
		Interaction:          ev.Interaction,
	}
	switch {
	case m == nil:
		r.Status = StatusNotApplicable
	case *m >= 0:
		r.Status = StatusPass
	default:
		r.Status = StatusFail
	}
	return r, nil
}

// Aggregate finds the governing margin. Results keep their input order; a
// joint with no applicable result passes with a nil governing margin.
func Aggregate(jointID, standard string, results []Result) JointAnalysisResult {
	out := JointAnalysisResult{
		JointID:   jointID,
		Standard:  standard,
		Results:   results,
		Governing: []Ref{},
		Pass:      true,
	}
	var lowest *float64
	for _, r := range results {
		if r.Margin == nil {
			continue
		}
		if lowest == nil || *r.Margin < *lowest {
			v := *r.Margin
			lowest = &v
		}
	}
	if lowest == nil {
		return out
	}
	tol := tieTolerance * math.Max(1, math.Abs(*lowest))
	for _, r := range results {
		if r.Margin != nil && *r.Margin-*lowest <= tol {
			out.Governing = append(out.Governing, Ref{Mode: r.Mode, Part: r.Part, Basis: r.Basis})
		}
	}
	out.GoverningMargin = lowest
	out.Pass = *lowest >= 0
	return out
}

// Failed lists the results with a negative margin.
func (r JointAnalysisResult) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Status == StatusFail {
			out = append(out, res)
		}
	}
	return out
}
