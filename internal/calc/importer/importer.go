// Package importer reads joint definitions from xlsx workbooks and writes
// analysis results back as xlsx.
//
// The joints sheet has one header row. Columns are matched by header name,
// case-insensitively, in any order:
//
//	joint_id, standard, configuration, series, units, diameter, pitch,
//	class, engagement, length, fastener, nut, insert, insert_length,
//	parent, parts, method, lubricated, preload, torque, tension, shear,
//	delta_t, separation_critical
//
// units is "si" (mm, N, N·mm, °C) or "us" (in, TPI, lbf, in·lbf, °F) and
// applies to every dimensional column of the row. pitch is millimetres for
// si rows and threads per inch for us rows. parts lists the clamped stack
// as material:thickness pairs separated by ";".
package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"Fastener/internal/calc/calcerr"
	"Fastener/internal/calc/joint"
)

const JointsSheet = "joints"

// RowError reports a row that could not be turned into a request.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type Sheet struct {
	Requests []joint.Request `json:"requests"`
	// Rows holds the 1-based sheet row of each request.
	Rows   []int      `json:"rows"`
	Errors []RowError `json:"errors,omitempty"`
}

// Read parses the joints sheet, or the first sheet when none is named
// "joints".
func Read(r io.Reader) (Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Sheet{}, calcerr.Wrap(err, calcerr.CodeMalformedLoadCase, "invalid workbook")
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	for _, name := range f.GetSheetList() {
		if strings.EqualFold(name, JointsSheet) {
			sheet = name
			break
		}
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return Sheet{}, calcerr.Wrap(err, calcerr.CodeMalformedLoadCase, "read sheet")
	}
	if len(rows) < 2 {
		return Sheet{}, calcerr.Newf(calcerr.CodeMalformedLoadCase, "sheet %q has no joint rows", sheet)
	}

	cols := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["series"]; !ok {
		return Sheet{}, calcerr.New(calcerr.CodeMalformedLoadCase, "header row must name a series column")
	}

	var out Sheet
	for i := 1; i < len(rows); i++ {
		rec := record{cols: cols, row: rows[i]}
		if rec.blank() {
			continue
		}
		req, err := rec.request()
		if err != nil {
			out.Errors = append(out.Errors, RowError{Row: i + 1, Message: err.Error()})
			continue
		}
		if req.JointID == "" {
			req.JointID = fmt.Sprintf("row-%d", i+1)
		}
		out.Requests = append(out.Requests, req)
		out.Rows = append(out.Rows, i+1)
	}
	return out, nil
}

type record struct {
	cols map[string]int
	row  []string
}

func (r record) get(name string) string {
	i, ok := r.cols[name]
	if !ok || i >= len(r.row) {
		return ""
	}
	return strings.TrimSpace(r.row[i])
}

func (r record) blank() bool {
	for _, c := range r.row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func (r record) num(name string) (*float64, error) {
	s := r.get(name)
	if s == "" {
		return nil, nil
	}
	v, err := toFloat(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %q is not a number", name, s)
	}
	return &v, nil
}

func (r record) flag(name string) (bool, error) {
	s := r.get(name)
	if s == "" {
		return false, nil
	}
	switch strings.ToLower(s) {
	case "1", "y", "yes", "true", "x":
		return true, nil
	case "0", "n", "no", "false":
		return false, nil
	}
	return false, fmt.Errorf("%s: %q is not a yes/no value", name, s)
}

// pick assigns v to si or us depending on the row's unit system.
func pick(us bool, v *float64, si, usDst **float64) {
	if us {
		*usDst = v
	} else {
		*si = v
	}
}

func (r record) request() (joint.Request, error) {
	req := joint.Request{
		JointID:       r.get("joint_id"),
		Standard:      r.get("standard"),
		Configuration: r.get("configuration"),
		Thread: joint.ThreadInput{
			Series: r.get("series"),
			Class:  r.get("class"),
		},
		Fastener: joint.FastenerInput{Material: r.get("fastener")},
		Preload:  joint.PreloadInput{Method: r.get("method")},
	}

	var us bool
	switch strings.ToLower(r.get("units")) {
	case "", "si", "metric":
	case "us", "inch", "imperial":
		us = true
	default:
		return req, fmt.Errorf("units: %q is neither si nor us", r.get("units"))
	}

	nums := map[string]*float64{}
	for _, name := range []string{"diameter", "pitch", "engagement", "length", "insert_length", "preload", "torque", "tension", "shear", "delta_t"} {
		v, err := r.num(name)
		if err != nil {
			return req, err
		}
		nums[name] = v
	}
	t := &req.Thread
	pick(us, nums["diameter"], &t.DiameterMM, &t.DiameterIn)
	pick(us, nums["pitch"], &t.PitchMM, &t.ThreadsPerInch)
	pick(us, nums["engagement"], &t.EngagementMM, &t.EngagementIn)
	pick(us, nums["length"], &req.Fastener.LengthMM, &req.Fastener.LengthIn)
	pick(us, nums["preload"], &req.Preload.PreloadN, &req.Preload.PreloadLbf)
	pick(us, nums["torque"], &req.Preload.TorqueNmm, &req.Preload.TorqueInLbf)
	pick(us, nums["tension"], &req.Loads.TensionN, &req.Loads.TensionLbf)
	pick(us, nums["shear"], &req.Loads.ShearN, &req.Loads.ShearLbf)
	pick(us, nums["delta_t"], &req.Loads.TemperatureDeltaC, &req.Loads.TemperatureDeltaF)

	var err error
	if req.Preload.Lubricated, err = r.flag("lubricated"); err != nil {
		return req, err
	}
	if req.Preload.SeparationCritical, err = r.flag("separation_critical"); err != nil {
		return req, err
	}

	if m := r.get("nut"); m != "" {
		req.Nut = &joint.NutInput{Material: m}
	}
	if m := r.get("insert"); m != "" {
		req.Insert = &joint.InsertInput{Material: m}
		pick(us, nums["insert_length"], &req.Insert.LengthMM, &req.Insert.LengthIn)
	}
	if m := r.get("parent"); m != "" {
		req.Parent = &joint.ParentInput{Material: m}
	}

	for _, spec := range strings.Split(r.get("parts"), ";") {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}
		mat, thick, ok := strings.Cut(spec, ":")
		if !ok {
			return req, fmt.Errorf("parts: %q is not material:thickness", spec)
		}
		v, err := toFloat(strings.TrimSpace(thick))
		if err != nil {
			return req, fmt.Errorf("parts: thickness %q is not a number", thick)
		}
		p := joint.PartInput{Material: strings.TrimSpace(mat)}
		pick(us, &v, &p.ThicknessMM, &p.ThicknessIn)
		req.Parts = append(req.Parts, p)
	}
	return req, nil
}

func toFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
}
