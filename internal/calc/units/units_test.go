package units

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Fastener/internal/calc/calcerr"
)

func ptr(v float64) *float64 { return &v }

func TestLength(t *testing.T) {
	tests := []struct {
		name    string
		mm, in  *float64
		want    float64
		present bool
		code    calcerr.Code
	}{
		{name: "mm", mm: ptr(6.35), want: 6.35, present: true},
		{name: "inch", in: ptr(0.25), want: 6.35, present: true},
		{name: "absent"},
		{name: "both", mm: ptr(6.35), in: ptr(0.25), code: calcerr.CodeInconsistentUnits},
		{name: "nan", in: ptr(math.NaN()), code: calcerr.CodeMalformedLoadCase},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, present, err := Length("diameter", tt.mm, tt.in)
			if tt.code != "" {
				require.Error(t, err)
				assert.True(t, calcerr.HasCode(err, tt.code))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.present, present)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestForceAndTemperature(t *testing.T) {
	n, ok, err := Force("tension", nil, ptr(500))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 2224.11, n, 0.01)
	assert.InDelta(t, 500, n/NewtonsPerLbf, 1e-9)

	dc, ok, err := TemperatureDelta("temperature_delta", nil, ptr(90))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 50, dc, 1e-12)

	nmm, _, err := Torque("torque", nil, ptr(100))
	require.NoError(t, err)
	assert.InDelta(t, 11298.48, nmm, 0.01)
}

func TestRangeChecks(t *testing.T) {
	assert.NoError(t, Positive("thickness", 1))
	assert.True(t, calcerr.HasCode(Positive("thickness", 0), calcerr.CodeMalformedLoadCase))
	assert.NoError(t, NonNegative("shear", 0))
	assert.Error(t, NonNegative("shear", -1))
	assert.NoError(t, Fraction("relaxation", 0.05))
	assert.Error(t, Fraction("relaxation", 1))
	assert.Error(t, Fraction("relaxation", -0.01))
	assert.True(t, calcerr.HasCode(Fraction("relaxation", math.NaN()), calcerr.CodeMalformedLoadCase))
}
