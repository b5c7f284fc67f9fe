package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Fastener/internal/calc/batch"
)

const jointYAML = `
joint_id: J-1
thread:
  series: UN
  diameter_in: 0.25
  threads_per_inch: 28
  engagement_in: 0.25
fastener:
  material: A286
nut:
  material: A286
parts:
  - material: AL7075-T6
    thickness_in: 0.25
  - material: AL7075-T6
    thickness_in: 0.25
preload:
  preload_lbf: 2000
loads:
  tension_lbf: 500
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestAnalyzeCommand(t *testing.T) {
	path := writeTemp(t, "joint.yaml", jointYAML)

	out, err := execute(t, "analyze", path)
	require.NoError(t, err)
	assert.Contains(t, out, "J-1")
	assert.Contains(t, out, "PASS")
	assert.Contains(t, out, "separation")

	out, err = execute(t, "analyze", "--format", "json", path)
	require.NoError(t, err)
	var res batch.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Items, 1)
	assert.True(t, res.Items[0].Result.Pass)
}

func TestAnalyzeCommandWritesFiles(t *testing.T) {
	path := writeTemp(t, "joint.yaml", jointYAML)
	dir := t.TempDir()
	xlsx := filepath.Join(dir, "out.xlsx")
	pdf := filepath.Join(dir, "out.pdf")

	_, err := execute(t, "analyze", "--xlsx", xlsx, "--pdf", pdf, path)
	require.NoError(t, err)
	for _, p := range []string{xlsx, pdf} {
		st, err := os.Stat(p)
		require.NoError(t, err)
		assert.Greater(t, st.Size(), int64(0))
	}
}

func TestBatchCommandStrict(t *testing.T) {
	good := `{"joint_id":"J-1","thread":{"series":"M","diameter_mm":6,"pitch_mm":1,"engagement_mm":6},` +
		`"fastener":{"material":"STEEL-12.9"},"nut":{"material":"STEEL-12.9"},` +
		`"parts":[{"material":"AL6061-T6","thickness_mm":10}],"preload":{"preload_N":9000},"loads":{"tension_N":2000}}`
	bad := `{"joint_id":"J-2","thread":{"series":"M","diameter_mm":6,"pitch_mm":1,"engagement_mm":6},` +
		`"fastener":{"material":"UNOBTAINIUM"},"nut":{"material":"STEEL-12.9"},` +
		`"parts":[{"material":"AL6061-T6","thickness_mm":10}],"loads":{"tension_N":2000}}`
	path := writeTemp(t, "joints.json", `{"items":[`+good+`,`+bad+`]}`)

	out, err := execute(t, "batch", path)
	require.NoError(t, err)
	assert.Contains(t, out, "REJECTED")
	assert.Contains(t, out, "unknown_material")

	_, err = execute(t, "batch", "--strict", path)
	var code exitError
	require.True(t, errors.As(err, &code))
	assert.Equal(t, exitError(2), code)

	list := writeTemp(t, "list.json", `[`+good+`]`)
	_, err = execute(t, "batch", "--strict", list)
	assert.NoError(t, err)
}

func TestTablesCommands(t *testing.T) {
	out, err := execute(t, "materials")
	require.NoError(t, err)
	assert.Contains(t, out, "A286")

	out, err = execute(t, "threads", "--series", "M")
	require.NoError(t, err)
	assert.Contains(t, out, "M6")

	out, err = execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, Version)
}

func TestTokenCommand(t *testing.T) {
	cfg := writeTemp(t, "fastener.yaml", "auth:\n  token_key: abc\n")
	t.Setenv("TOKEN_KEY", "abc")

	out, err := execute(t, "--config", cfg, "token", "--subject", "ci")
	require.NoError(t, err)
	assert.Regexp(t, `^[\w-]+\.[\w-]+\.[\w-]+\n$`, out)
}
