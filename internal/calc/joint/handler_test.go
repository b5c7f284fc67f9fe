package joint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Fastener/internal/calc/margin"
	"Fastener/internal/httputil"
)

type fakeRecorder struct {
	saved []string
	err   error
}

func (r *fakeRecorder) Save(_ context.Context, req Request, _ margin.JointAnalysisResult) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.saved = append(r.saved, req.JointID)
	return "rec-1", nil
}

func post(t *testing.T, h http.HandlerFunc, v any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewReader(body)))
	return w
}

func TestHandlerAnalyze(t *testing.T) {
	store := &fakeRecorder{}
	h := &Handler{Analyzer: newAnalyzer(t), Store: store}

	w := post(t, h.Analyze, quarterInchJoint())
	require.Equal(t, http.StatusOK, w.Code)
	var resp Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "rec-1", resp.ID)
	assert.Equal(t, "J-1", resp.JointID)
	assert.True(t, resp.Pass)
	assert.Equal(t, []string{"J-1"}, store.saved)
}

func TestHandlerAnalyzeErrors(t *testing.T) {
	h := &Handler{Analyzer: newAnalyzer(t)}

	t.Run("bad json", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.Analyze(w, httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader("{")))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown material", func(t *testing.T) {
		req := quarterInchJoint()
		req.Fastener.Material = "UNOBTAINIUM"
		w := post(t, h.Analyze, req)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		var body httputil.ErrorBody
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "unknown_material", string(body.Code))
	})

	t.Run("store failure", func(t *testing.T) {
		hs := &Handler{Analyzer: newAnalyzer(t), Store: &fakeRecorder{err: errors.New("disk full")}}
		w := post(t, hs.Analyze, quarterInchJoint())
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHandlerListings(t *testing.T) {
	h := &Handler{Analyzer: newAnalyzer(t)}

	w := httptest.NewRecorder()
	h.Materials(w, httptest.NewRequest(http.MethodGet, "/api/v1/materials", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"A286"`)

	w = httptest.NewRecorder()
	h.Threads(w, httptest.NewRequest(http.MethodGet, "/api/v1/threads?series=M", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"M6"`)

	w = httptest.NewRecorder()
	h.Threads(w, httptest.NewRequest(http.MethodGet, "/api/v1/threads?series=BSW", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestTables(t *testing.T) {
	dir := t.TempDir()
	stdFile := filepath.Join(dir, "program.yaml")
	require.NoError(t, os.WriteFile(stdFile, []byte(`
name: PROGRAM-X
version: "1"
base: NASA-STD-5020B
factors:
  ultimate: 1.5
  yield: 1.25
  separation: 1.3
  fitting: 1.15
`), 0o644))

	tbl, reg, err := Tables("", []string{stdFile})
	require.NoError(t, err)
	_, err = tbl.Lookup("A286")
	require.NoError(t, err)
	std, err := reg.Lookup("program-x")
	require.NoError(t, err)
	assert.Equal(t, 1.5, std.Factors().Ultimate)

	a := NewAnalyzer(tbl, reg, WithDefaultStandard("PROGRAM-X"))
	res, err := a.Analyze(quarterInchJoint())
	require.NoError(t, err)
	assert.Contains(t, res.Standard, "PROGRAM-X")

	_, _, err = Tables(filepath.Join(dir, "missing.yaml"), nil)
	assert.Error(t, err)
}
