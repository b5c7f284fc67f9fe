package report

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Fastener/internal/calc/failure"
	"Fastener/internal/calc/joint"
	"Fastener/internal/calc/margin"
	"Fastener/internal/calc/material"
	"Fastener/internal/calc/policy"
)

func f(v float64) *float64 { return &v }

func TestRender(t *testing.T) {
	results := []margin.JointAnalysisResult{
		{
			JointID:  "J-1",
			Standard: "NASA-STD-5020B (2021-09)",
			Thread:   "1/4-28 UN-2A",
			Results: []margin.Result{
				{Mode: failure.ModeYield, Capability: 22000, Requirement: 3000, FactorApplied: 1.38, Margin: f(6.3), Status: margin.StatusPass},
				{Mode: failure.ModeSeparation, Capability: 2000, Requirement: 2700, FactorApplied: 1.2, Margin: f(-0.26), Status: margin.StatusFail},
				{Mode: failure.ModeJointSlip, Status: margin.StatusNotApplicable},
			},
			Governing:       []margin.Ref{{Mode: failure.ModeSeparation}},
			GoverningMargin: f(-0.26),
		},
	}

	var buf bytes.Buffer
	err := Render(&buf, Meta{Project: "Bracket", Author: "QA", Date: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)}, results)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 1000)
}

func TestRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Meta{}, nil))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestGenerateHandler(t *testing.T) {
	tbl, err := material.Default()
	require.NoError(t, err)
	h := &Handler{Analyzer: joint.NewAnalyzer(tbl, policy.NewRegistry())}

	in := Input{
		Meta: Meta{Project: "Bracket", Title: "Bracket joints"},
		Items: []joint.Request{{
			JointID: "J-1",
			Thread: joint.ThreadInput{
				Series:       "M",
				DiameterMM:   f(6),
				PitchMM:      f(1),
				EngagementMM: f(6),
			},
			Fastener: joint.FastenerInput{Material: "STEEL-12.9"},
			Nut:      &joint.NutInput{Material: "STEEL-12.9"},
			Parts:    []joint.PartInput{{Material: "AL6061-T6", ThicknessMM: f(10)}},
			Preload:  joint.PreloadInput{TorqueNmm: f(10000)},
			Loads:    joint.LoadInput{TensionN: f(2000), ShearN: f(500)},
		}},
	}
	body, err := json.Marshal(in)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	h.Generate(w, httptest.NewRequest(http.MethodPost, "/api/v1/report/pdf", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
}
