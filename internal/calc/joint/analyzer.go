// Package joint analyses one threaded joint: it validates a Request against
// the reference tables, builds the load case, runs every applicable failure
// mode and reduces the margins to a governing result.
package joint

import (
	"fmt"
	"log/slog"
	"time"

	"Fastener/internal/calc/calcerr"
	"Fastener/internal/calc/failure"
	"Fastener/internal/calc/loads"
	"Fastener/internal/calc/margin"
	"Fastener/internal/calc/material"
	"Fastener/internal/calc/policy"
	"Fastener/internal/metrics"
)

// Analyzer is safe for concurrent use once built.
type Analyzer struct {
	materials *material.Table
	standards *policy.Registry
	logger    *slog.Logger
	metrics   *metrics.Metrics
	// standard used when a request names none
	standard string
}

type Option func(*Analyzer)

func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) { a.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Analyzer) { a.metrics = m }
}

func WithDefaultStandard(name string) Option {
	return func(a *Analyzer) { a.standard = name }
}

func NewAnalyzer(materials *material.Table, standards *policy.Registry, opts ...Option) *Analyzer {
	a := &Analyzer{materials: materials, standards: standards, logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Analyzer) Materials() *material.Table  { return a.materials }
func (a *Analyzer) Standards() *policy.Registry { return a.standards }

// Analyze evaluates one joint. Input errors carry a calcerr code; a
// negative margin is a result, not an error.
func (a *Analyzer) Analyze(req Request) (margin.JointAnalysisResult, error) {
	start := time.Now()
	res, err := a.analyze(req)
	if err != nil {
		code := calcerr.CodeOf(err)
		a.metrics.ObserveAnalysis(string(code), nil, time.Since(start))
		a.logger.Debug("joint rejected", "joint_id", req.JointID, "code", code, "error", err)
		return margin.JointAnalysisResult{}, fmt.Errorf("joint %q: %w", req.JointID, err)
	}

	outcome := "pass"
	if !res.Pass {
		outcome = "fail"
	}
	a.metrics.ObserveAnalysis(outcome, res.GoverningMargin, time.Since(start))
	for _, r := range res.Results {
		a.metrics.IncrementMode(string(r.Mode), string(r.Status))
	}
	a.logger.Debug("joint analysed", "joint_id", req.JointID, "pass", res.Pass, "results", len(res.Results))
	return res, nil
}

func (a *Analyzer) analyze(req Request) (margin.JointAnalysisResult, error) {
	name := req.Standard
	if name == "" {
		name = a.standard
	}
	std, err := a.standards.Lookup(name)
	if err != nil {
		return margin.JointAnalysisResult{}, err
	}
	pol, err := std.Resolve(req.SafetyFactors)
	if err != nil {
		return margin.JointAnalysisResult{}, err
	}
	n, err := normalize(req, a.materials, std)
	if err != nil {
		return margin.JointAnalysisResult{}, err
	}
	lc, err := loads.Build(n.loads, std.PreloadDefaults())
	if err != nil {
		return margin.JointAnalysisResult{}, err
	}
	evs, err := failure.Evaluate(n.joint, lc)
	if err != nil {
		return margin.JointAnalysisResult{}, err
	}

	results := make([]margin.Result, 0, len(evs))
	for _, ev := range evs {
		r, err := margin.Apply(ev, pol)
		if err != nil {
			return margin.JointAnalysisResult{}, err
		}
		results = append(results, r)
	}
	out := margin.Aggregate(req.JointID, std.Label(), results)
	out.Thread = n.joint.Thread.Designation.String()
	out.LoadCase = lc
	return out, nil
}
