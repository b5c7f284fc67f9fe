package margin

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Fastener/internal/calc/calcerr"
	"Fastener/internal/calc/failure"
	"Fastener/internal/calc/policy"
)

func defaultPolicy(t *testing.T) policy.Policy {
	t.Helper()
	s, err := policy.NewRegistry().Lookup("")
	require.NoError(t, err)
	p, err := s.Resolve(nil)
	require.NoError(t, err)
	return p
}

func TestCompute(t *testing.T) {
	m, err := Compute(150, 100)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.InDelta(t, 0.5, *m, 1e-12)

	m, err = Compute(100, 100)
	require.NoError(t, err)
	assert.Equal(t, 0.0, *m, "boundary margin is exactly zero")

	m, err = Compute(100, 0)
	require.NoError(t, err)
	assert.Nil(t, m, "zero requirement is not applicable")

	_, err = Compute(math.NaN(), 10)
	assert.True(t, calcerr.HasCode(err, calcerr.CodeUndefinedResult))
	_, err = Compute(math.Inf(1), 10)
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	p := defaultPolicy(t)

	r, err := Apply(failure.Evaluation{Mode: failure.ModeUltimate, Capability: 1610, Requirement: 1000}, p)
	require.NoError(t, err)
	assert.InDelta(t, 1.4*1.15, r.FactorApplied, 1e-12)
	assert.True(t, r.FittingFactorApplied)
	assert.InDelta(t, 1610, r.Requirement, 1e-9)
	assert.InDelta(t, 0, *r.Margin, 1e-12)
	assert.Equal(t, StatusPass, r.Status)

	r, err = Apply(failure.Evaluation{Mode: failure.ModeSeparation, Capability: 500, Requirement: 500}, p)
	require.NoError(t, err)
	assert.True(t, r.FittingFactorApplied)
	assert.InDelta(t, 500/(500*1.2*1.15)-1, *r.Margin, 1e-12)
	assert.Equal(t, StatusFail, r.Status)

	r, err = Apply(failure.Evaluation{Mode: failure.ModeJointSlip, Capability: 10}, p)
	require.NoError(t, err)
	assert.Equal(t, StatusNotApplicable, r.Status)
	assert.Nil(t, r.Margin)
}

func TestApplyInteraction(t *testing.T) {
	p := defaultPolicy(t)
	in := &failure.Interaction{ShearRatio: 0.2, TensionRatio: 0.3, ShearExponent: 2.5, TensionExponent: 1.5}
	ev := failure.Evaluation{Mode: failure.ModeCombined, Capability: 1, Requirement: in.Value(1), Interaction: in}

	r, err := Apply(ev, p)
	require.NoError(t, err)
	f := 1.4 * 1.15
	want := math.Pow(f*0.2, 2.5) + math.Pow(f*0.3, 1.5)
	assert.InDelta(t, f, r.FactorApplied, 1e-12)
	assert.InDelta(t, want, r.Requirement, 1e-12)
	assert.InDelta(t, 1/want-1, *r.Margin, 1e-12)
	assert.Equal(t, StatusPass, r.Status)
	assert.Same(t, in, r.Interaction)

	r, err = Apply(failure.Evaluation{Mode: failure.ModeCombined, Capability: 1}, p)
	require.NoError(t, err)
	assert.Equal(t, StatusNotApplicable, r.Status)
}

// Raising any factor never raises a margin.
func TestMarginMonotonicInFactors(t *testing.T) {
	s, err := policy.NewRegistry().Lookup("")
	require.NoError(t, err)
	ev := failure.Evaluation{Mode: failure.ModeUltimate, Capability: 5000, Requirement: 1000}

	prev := math.Inf(1)
	for _, fs := range []float64{1.0, 1.2, 1.4, 1.6, 2.0} {
		p, err := s.Resolve(&policy.Override{Ultimate: &fs})
		require.NoError(t, err)
		r, err := Apply(ev, p)
		require.NoError(t, err)
		assert.Less(t, *r.Margin, prev)
		prev = *r.Margin
	}
}

func ptr(v float64) *float64 { return &v }

func TestAggregate(t *testing.T) {
	t.Run("minimum governs", func(t *testing.T) {
		res := Aggregate("j1", "std", []Result{
			{Mode: failure.ModeYield, Margin: ptr(0.4)},
			{Mode: failure.ModeSeparation, Margin: ptr(0.1)},
			{Mode: failure.ModeJointSlip},
		})
		require.NotNil(t, res.GoverningMargin)
		assert.InDelta(t, 0.1, *res.GoverningMargin, 0)
		assert.Equal(t, []Ref{{Mode: failure.ModeSeparation}}, res.Governing)
		assert.True(t, res.Pass)
	})

	t.Run("ties are all reported", func(t *testing.T) {
		res := Aggregate("j1", "std", []Result{
			{Mode: failure.ModeBoltBearing, Part: 1, Margin: ptr(-0.2)},
			{Mode: failure.ModeYield, Margin: ptr(1)},
			{Mode: failure.ModeBoltBearing, Part: 2, Margin: ptr(-0.2)},
		})
		assert.Len(t, res.Governing, 2)
		assert.Equal(t, 2, res.Governing[1].Part)
		assert.False(t, res.Pass)
	})

	t.Run("zero margin passes", func(t *testing.T) {
		res := Aggregate("j1", "std", []Result{{Mode: failure.ModeUltimate, Margin: ptr(0)}})
		assert.True(t, res.Pass)
	})

	t.Run("nothing applicable", func(t *testing.T) {
		res := Aggregate("j1", "std", []Result{{Mode: failure.ModeYield}})
		assert.Nil(t, res.GoverningMargin)
		assert.Empty(t, res.Governing)
		assert.True(t, res.Pass)
	})
}

func TestFailed(t *testing.T) {
	res := JointAnalysisResult{Results: []Result{
		{Mode: failure.ModeYield, Status: StatusFail},
		{Mode: failure.ModeUltimate, Status: StatusPass},
	}}
	require.Len(t, res.Failed(), 1)
	assert.Equal(t, failure.ModeYield, res.Failed()[0].Mode)
}
