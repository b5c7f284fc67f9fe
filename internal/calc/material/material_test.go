package material

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Fastener/internal/calc/calcerr"
)

func TestDefaultTable(t *testing.T) {
	tbl, err := Default()
	require.NoError(t, err)
	assert.NotEmpty(t, tbl.Version())

	all := tbl.All()
	require.NotEmpty(t, all)
	for i, m := range all {
		assert.Greater(t, m.FtyMPa, 0.0, m.ID)
		assert.LessOrEqual(t, m.FtyMPa, m.FtuMPa, m.ID)
		assert.Greater(t, m.FsuMPa, 0.0, m.ID)
		assert.Greater(t, m.FbruMPa, 0.0, m.ID)
		if i > 0 {
			assert.Less(t, all[i-1].ID, m.ID)
		}
	}
}

func TestLookup(t *testing.T) {
	tbl, err := Default()
	require.NoError(t, err)

	t.Run("case insensitive", func(t *testing.T) {
		m, err := tbl.Lookup("a286")
		require.NoError(t, err)
		assert.Equal(t, "A286", m.ID)
		assert.InDelta(t, 965, m.FtyMPa, 1e-9)
	})

	t.Run("unknown is never defaulted", func(t *testing.T) {
		_, err := tbl.Lookup("unobtainium")
		require.Error(t, err)
		assert.True(t, calcerr.HasCode(err, calcerr.CodeUnknownMaterial))
	})
}

func TestLoadRejectsBadTables(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"zero strength", `
materials:
  - {id: X, elastic_modulus_mpa: 1, fty_mpa: 0, ftu_mpa: 1, fsu_mpa: 1, fbru_mpa: 1}
`},
		{"duplicate", `
materials:
  - {id: X, elastic_modulus_mpa: 1, fty_mpa: 1, ftu_mpa: 1, fsu_mpa: 1, fbru_mpa: 1}
  - {id: x, elastic_modulus_mpa: 1, fty_mpa: 1, ftu_mpa: 1, fsu_mpa: 1, fbru_mpa: 1}
`},
		{"yield above ultimate", `
materials:
  - {id: X, elastic_modulus_mpa: 1, fty_mpa: 2, ftu_mpa: 1, fsu_mpa: 1, fbru_mpa: 1}
`},
		{"not yaml", "materials: [:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.True(t, calcerr.HasCode(err, calcerr.CodeConfiguration))
		})
	}
}

func TestMergeSiteFile(t *testing.T) {
	base, err := Default()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
version: site-1
materials:
  - id: A286
    elastic_modulus_mpa: 201000
    cte_per_c: 16.5e-6
    fty_mpa: 900
    ftu_mpa: 1000
    fsu_mpa: 600
    fbru_mpa: 1500
  - id: CUSTOM
    elastic_modulus_mpa: 100000
    cte_per_c: 1.0e-5
    fty_mpa: 100
    ftu_mpa: 200
    fsu_mpa: 100
    fbru_mpa: 300
`), 0o600))

	site, err := LoadFile(path)
	require.NoError(t, err)
	merged := base.Merge(site)

	m, err := merged.Lookup("A286")
	require.NoError(t, err)
	assert.InDelta(t, 900, m.FtyMPa, 1e-9)
	_, err = merged.Lookup("custom")
	assert.NoError(t, err)

	orig, err := base.Lookup("A286")
	require.NoError(t, err)
	assert.InDelta(t, 965, orig.FtyMPa, 1e-9, "base table must not change")
	assert.Contains(t, merged.Version(), "site-1")
}
