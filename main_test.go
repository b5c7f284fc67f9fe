package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "Fastener/internal/auth"
	"Fastener/internal/calc/joint"
	"Fastener/internal/config"
	"Fastener/internal/metrics"
	repo "Fastener/internal/repo"
)

func f(v float64) *float64 { return &v }

func testServer(t *testing.T, tokenKey string) *httptest.Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Auth.TokenKey = tokenKey
	cfg.Auth.Burst = 100

	tbl, reg, err := joint.Tables("", nil)
	require.NoError(t, err)
	store, err := repo.Open(context.Background(), repo.DriverSQLite, filepath.Join(t.TempDir(), "f.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	promReg := prometheus.NewRegistry()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	d := deps{
		cfg:      cfg,
		analyzer: joint.NewAnalyzer(tbl, reg),
		store:    store,
		metrics:  metrics.New(promReg),
		registry: promReg,
		logger:   logger,
	}
	router := mux.NewRouter()
	HandleList(router, d)
	srv := httptest.NewServer(CORS(router))
	t.Cleanup(srv.Close)
	return srv
}

func request() joint.Request {
	return joint.Request{
		JointID:  "J-1",
		Thread:   joint.ThreadInput{Series: "UN", DiameterIn: f(0.25), ThreadsPerInch: f(28), EngagementIn: f(0.25)},
		Fastener: joint.FastenerInput{Material: "A286"},
		Nut:      &joint.NutInput{Material: "A286"},
		Parts:    []joint.PartInput{{Material: "AL7075-T6", ThicknessIn: f(0.5)}},
		Preload:  joint.PreloadInput{PreloadLbf: f(2000)},
		Loads:    joint.LoadInput{TensionLbf: f(500)},
	}
}

func do(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestAnalyzeStoreAndFetch(t *testing.T) {
	srv := testServer(t, "")

	resp := do(t, http.MethodPost, srv.URL+"/api/v1/analyze", "", request())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out joint.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.ID)

	resp = do(t, http.MethodGet, srv.URL+"/api/v1/results/"+out.ID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rec repo.Record
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rec))
	assert.Equal(t, "J-1", rec.JointID)
	assert.Equal(t, out.GoverningMargin, rec.Result.GoverningMargin)

	resp = do(t, http.MethodGet, srv.URL+"/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(b), `fastener_http_requests_total{code="200",route="/api/v1/analyze"} 1`)
}

func TestTokenRequired(t *testing.T) {
	srv := testServer(t, "k")

	resp := do(t, http.MethodPost, srv.URL+"/api/v1/analyze", "", request())
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token, err := auth.IssueToken([]byte("k"), "test", time.Minute)
	require.NoError(t, err)
	resp = do(t, http.MethodPost, srv.URL+"/api/v1/analyze", token, request())
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	srv := testServer(t, "k")
	resp := do(t, http.MethodOptions, srv.URL+"/api/v1/analyze", "", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
