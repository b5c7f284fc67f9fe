package failure

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Fastener/internal/calc/calcerr"
	"Fastener/internal/calc/loads"
	"Fastener/internal/calc/material"
	"Fastener/internal/calc/thread"
)

var (
	steel = material.Material{ID: "S", ModulusMPa: 200000, CTEPerC: 16e-6, FtyMPa: 900, FtuMPa: 1100, FsuMPa: 650, FbruMPa: 1600}
	alum  = material.Material{ID: "A", ModulusMPa: 70000, CTEPerC: 23e-6, FtyMPa: 240, FtuMPa: 290, FsuMPa: 186, FbruMPa: 600}
)

func fixture(t *testing.T, cfg Configuration) (Joint, loads.LoadCase) {
	t.Helper()
	d, err := thread.NewDesignation(thread.SeriesM, 6, 1, "", "", 1)
	require.NoError(t, err)
	g, err := thread.Compute(d, 9)
	require.NoError(t, err)

	j := Joint{
		Configuration: cfg,
		Fastener:      steel,
		Thread:        g,
		Parts:         []Part{{Material: alum, Thickness: 8}, {Material: alum, Thickness: 8}},
		Friction:      0.1,
	}
	switch cfg {
	case ConfigNut:
		j.Nut = &steel
	case ConfigTapped:
		j.Parent = &alum
	case ConfigInsert:
		j.Insert = &steel
		j.Parent = &alum
		outer, err := thread.InsertOuter(d, 9)
		require.NoError(t, err)
		j.InsertOuter = &outer
	}
	lc := loads.LoadCase{
		Tension: 3000,
		Shear:   1000,
		Preload: loads.PreloadEstimate{Max: 10000, Min: 5000, MinStatistical: 6000},
		Stiffness: loads.Stiffness{
			Phi:              0.2,
			LoadIntroduction: 0.5,
		},
	}
	return j, lc
}

func modesOf(evs []Evaluation) []Mode {
	out := make([]Mode, 0, len(evs))
	for _, ev := range evs {
		out = append(out, ev.Mode)
	}
	return out
}

func TestPreloaded(t *testing.T) {
	// separation at 10000/0.9 = 11111 before rupture at (20000-10000)/0.1
	c, basis := preloaded(20000, 10000, 0.1)
	assert.Equal(t, 20000.0, c)
	assert.Equal(t, basisSeparationFirst, basis)

	// rupture at (12000-10000)/0.5 = 4000 before separation at 20000
	c, basis = preloaded(12000, 10000, 0.5)
	assert.InDelta(t, 4000, c, 1e-9)
	assert.Equal(t, basisPreloadIncluded, basis)

	c, _ = preloaded(8000, 10000, 0.5)
	assert.Zero(t, c, "preload alone exceeds the allowable")

	c, basis = preloaded(8000, 10000, 0)
	assert.Equal(t, 8000.0, c)
	assert.Equal(t, basisSeparationFirst, basis)
}

func TestEvaluateModesPerConfiguration(t *testing.T) {
	tests := []struct {
		cfg  Configuration
		want []Mode
	}{
		{ConfigNut, []Mode{ModeThreadShearFastener, ModeThreadShearNut}},
		{ConfigTapped, []Mode{ModeThreadShearFastener, ModeThreadShearParent}},
		{ConfigInsert, []Mode{ModeThreadShearFastener, ModeThreadShearInsertInternal, ModeThreadShearInsertExternal, ModeThreadShearParent}},
	}
	for _, tt := range tests {
		t.Run(string(tt.cfg), func(t *testing.T) {
			j, lc := fixture(t, tt.cfg)
			evs, err := Evaluate(j, lc)
			require.NoError(t, err)

			want := append([]Mode{ModeYield, ModeUltimate, ModeSeparation}, tt.want...)
			want = append(want, ModeBoltBearing, ModeBoltBearing, ModeJointSlip, ModeFastenerShear, ModeCombined)
			assert.Equal(t, want, modesOf(evs))
			for _, ev := range evs {
				assert.GreaterOrEqual(t, ev.Capability, 0.0, ev.Mode)
			}
		})
	}
}

func TestEvaluateValues(t *testing.T) {
	j, lc := fixture(t, ConfigNut)
	evs, err := Evaluate(j, lc)
	require.NoError(t, err)
	byMode := map[Mode]Evaluation{}
	for _, ev := range evs {
		if _, seen := byMode[ev.Mode]; !seen {
			byMode[ev.Mode] = ev
		}
	}

	at := j.Thread.TensileStressArea
	assert.InDelta(t, 1100*at, byMode[ModeUltimate].Capability, 1e-9)
	assert.Equal(t, basisSeparationFirst, byMode[ModeUltimate].Basis)
	assert.InDelta(t, 3000, byMode[ModeUltimate].Requirement, 0)

	assert.InDelta(t, 6000, byMode[ModeSeparation].Capability, 0, "non-critical joints use eq 5")
	assert.InDelta(t, 0.1*(6000-0.9*3000), byMode[ModeJointSlip].Capability, 1e-9)
	assert.InDelta(t, 1000, byMode[ModeJointSlip].Requirement, 0)
	assert.InDelta(t, 600*6*8, byMode[ModeBoltBearing].Capability, 1e-9)
	assert.InDelta(t, 650*math.Pi*9, byMode[ModeFastenerShear].Capability, 1e-9)

	comb := byMode[ModeCombined]
	require.NotNil(t, comb.Interaction)
	assert.InDelta(t, 1000/(650*math.Pi*9), comb.Interaction.ShearRatio, 1e-12)
	assert.InDelta(t, 3000/(1100*at), comb.Interaction.TensionRatio, 1e-12)
	assert.Equal(t, 2.5, comb.Interaction.ShearExponent)
	assert.Equal(t, 1.5, comb.Interaction.TensionExponent)
	assert.InDelta(t, math.Pow(comb.Interaction.ShearRatio, 2.5)+math.Pow(comb.Interaction.TensionRatio, 1.5), comb.Requirement, 1e-12)

	j.SeparationCritical = true
	evs, err = Evaluate(j, lc)
	require.NoError(t, err)
	assert.InDelta(t, 5000, evs[2].Capability, 0)
}

func TestEvaluateOptionalModes(t *testing.T) {
	j, lc := fixture(t, ConfigNut)
	j.HeadBearingDiameter = 10
	j.NutBearingDiameter = 10
	j.HoleDiameter = 6.4
	j.Parts[1].EdgeDistance = 12
	j.ThreadsInShearPlane = true
	j.RatedUltimateLoad = 20000

	evs, err := Evaluate(j, lc)
	require.NoError(t, err)

	var bearing, tear []Evaluation
	for _, ev := range evs {
		switch ev.Mode {
		case ModeJointBearing:
			bearing = append(bearing, ev)
		case ModeShearTearOut:
			tear = append(tear, ev)
		case ModeFastenerShear:
			assert.InDelta(t, 650*j.Thread.MinorArea, ev.Capability, 1e-9)
		case ModeUltimate:
			assert.InDelta(t, 20000, ev.Capability, 1e-9)
		case ModeYield:
			assert.InDelta(t, 900.0/1100*20000, ev.Capability, 1e-9)
		}
	}
	require.Len(t, bearing, 2)
	assert.Equal(t, 1, bearing[0].Part)
	assert.Equal(t, 2, bearing[1].Part)
	assert.Equal(t, "under_nut", bearing[1].Basis)
	require.Len(t, tear, 1)
	assert.Equal(t, 2, tear[0].Part)
	assert.InDelta(t, 186*2*8*(12-3), tear[0].Capability, 1e-9)
}

func TestEvaluateCombined(t *testing.T) {
	combinedOf := func(evs []Evaluation) Evaluation {
		return evs[len(evs)-1]
	}

	t.Run("threads in shear plane", func(t *testing.T) {
		j, lc := fixture(t, ConfigNut)
		j.ThreadsInShearPlane = true
		evs, err := Evaluate(j, lc)
		require.NoError(t, err)
		ev := combinedOf(evs)
		require.Equal(t, ModeCombined, ev.Mode)
		assert.Equal(t, "threads_in_shear_plane", ev.Basis)
		assert.Equal(t, 1.2, ev.Interaction.ShearExponent)
		assert.Equal(t, 2.0, ev.Interaction.TensionExponent)
		assert.InDelta(t, 1000/(650*j.Thread.MinorArea), ev.Interaction.ShearRatio, 1e-12)
	})

	for _, zero := range []string{"tension", "shear"} {
		t.Run("no "+zero, func(t *testing.T) {
			j, lc := fixture(t, ConfigNut)
			if zero == "tension" {
				lc.Tension = 0
			} else {
				lc.Shear = 0
			}
			evs, err := Evaluate(j, lc)
			require.NoError(t, err)
			ev := combinedOf(evs)
			assert.Nil(t, ev.Interaction)
			assert.Zero(t, ev.Requirement)
		})
	}

	t.Run("value scales both loads", func(t *testing.T) {
		in := Interaction{ShearRatio: 0.5, TensionRatio: 0.4, ShearExponent: 1.2, TensionExponent: 2}
		assert.InDelta(t, math.Pow(0.75, 1.2)+math.Pow(0.6, 2), in.Value(1.5), 1e-12)
	})
}

func TestEvaluateRejectsPreloadAtYield(t *testing.T) {
	j, lc := fixture(t, ConfigNut)
	_, yield := tensileAllowables(j)
	lc.Tension = 0
	lc.Preload.Max = yield

	_, err := Evaluate(j, lc)
	require.Error(t, err)
	assert.True(t, calcerr.HasCode(err, calcerr.CodeMalformedLoadCase))
	assert.Contains(t, err.Error(), "yield allowable")

	lc.Preload.Max = yield * 0.99
	_, err = Evaluate(j, lc)
	assert.NoError(t, err)
}

func TestEvaluateRejects(t *testing.T) {
	t.Run("edge distance inside hole", func(t *testing.T) {
		j, lc := fixture(t, ConfigNut)
		j.Parts[0].EdgeDistance = 3
		_, err := Evaluate(j, lc)
		assert.True(t, calcerr.HasCode(err, calcerr.CodeMalformedLoadCase))
	})

	t.Run("bearing diameter under hole", func(t *testing.T) {
		j, lc := fixture(t, ConfigNut)
		j.HeadBearingDiameter = 5
		_, err := Evaluate(j, lc)
		assert.True(t, calcerr.HasCode(err, calcerr.CodeMalformedLoadCase))
	})

	t.Run("nan capability", func(t *testing.T) {
		j, lc := fixture(t, ConfigNut)
		j.Fastener.FtuMPa = math.NaN()
		_, err := Evaluate(j, lc)
		assert.True(t, calcerr.HasCode(err, calcerr.CodeUndefinedResult))
	})

	t.Run("missing nut", func(t *testing.T) {
		j, lc := fixture(t, ConfigNut)
		j.Nut = nil
		_, err := Evaluate(j, lc)
		assert.Error(t, err)
	})
}

func TestModeBounds(t *testing.T) {
	assert.Equal(t, loads.BoundMax, ModeYield.Bound(false))
	assert.Equal(t, loads.BoundMin, ModeSeparation.Bound(true))
	assert.Equal(t, loads.BoundMinStatistical, ModeSeparation.Bound(false))
	assert.Equal(t, loads.BoundNone, ModeBoltBearing.Bound(true))
}

func TestParsers(t *testing.T) {
	m, err := ParseMode("Joint_Slip")
	require.NoError(t, err)
	assert.Equal(t, ModeJointSlip, m)
	_, err = ParseMode("buckling")
	assert.True(t, calcerr.HasCode(err, calcerr.CodeConfiguration))

	c, err := ParseConfiguration("")
	require.NoError(t, err)
	assert.Equal(t, ConfigNut, c)
	_, err = ParseConfiguration("weld")
	assert.Error(t, err)
}
