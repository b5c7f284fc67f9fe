// Package report renders joint analysis results as a PDF margin summary.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"Fastener/internal/calc/margin"
)

type Meta struct {
	Project string    `json:"project"`
	Author  string    `json:"author"`
	Title   string    `json:"title"`
	Notes   string    `json:"notes"`
	Date    time.Time `json:"-"`
}

var columns = []struct {
	head  string
	width float64
}{
	{"Mode", 52},
	{"Part", 12},
	{"Capability, N", 30},
	{"Required, N", 30},
	{"Factor", 18},
	{"MoS", 20},
	{"Status", 28},
}

// Render writes one section per joint with its margin table. Failing rows
// are printed in red and governing rows in bold.
func Render(w io.Writer, meta Meta, results []margin.JointAnalysisResult) error {
	if meta.Title == "" {
		meta.Title = "Fastener Joint Analysis"
	}
	if meta.Date.IsZero() {
		meta.Date = time.Now()
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(meta.Title, true)
	pdf.SetAuthor(meta.Author, true)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, meta.Title)
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Project: %s", meta.Project))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Author: %s", meta.Author))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", meta.Date.Format("2006-01-02")))
	pdf.Ln(8)
	if meta.Notes != "" {
		pdf.MultiCell(0, 6, meta.Notes, "", "L", false)
		pdf.Ln(4)
	}

	summary(pdf, results)
	for _, res := range results {
		section(pdf, res)
	}
	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

func summary(pdf *gofpdf.Fpdf, results []margin.JointAnalysisResult) {
	var failed []string
	for _, r := range results {
		if !r.Pass {
			failed = append(failed, r.JointID)
		}
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Joints analysed: %d, failing: %d", len(results), len(failed)))
	pdf.Ln(6)
	if len(failed) > 0 {
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, "Failing joints: "+strings.Join(failed, ", "), "", "L", false)
	}
	pdf.Ln(4)
}

func section(pdf *gofpdf.Fpdf, res margin.JointAnalysisResult) {
	if pdf.GetY() > 240 {
		pdf.AddPage()
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, fmt.Sprintf("Joint %s  %s", res.JointID, res.Thread))
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 9)
	p := res.LoadCase.Preload
	pdf.Cell(0, 5, fmt.Sprintf("%s; preload %s, max %.0f N, min %.0f N; tension %.0f N, shear %.0f N",
		res.Standard, p.Method, p.Max, p.Min, res.LoadCase.Tension, res.LoadCase.Shear))
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range columns {
		pdf.CellFormat(c.width, 6, c.head, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	governing := make(map[margin.Ref]bool, len(res.Governing))
	for _, g := range res.Governing {
		governing[g] = true
	}
	for _, r := range res.Results {
		style := ""
		if governing[margin.Ref{Mode: r.Mode, Part: r.Part, Basis: r.Basis}] {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 9)
		if r.Status == margin.StatusFail {
			pdf.SetTextColor(200, 0, 0)
		}
		cells := []string{
			string(r.Mode),
			part(r.Part),
			fmt.Sprintf("%.0f", r.Capability),
			fmt.Sprintf("%.0f", r.Requirement),
			fmt.Sprintf("%.3f", r.FactorApplied),
			mos(r.Margin),
			string(r.Status),
		}
		for i, c := range columns {
			align := "R"
			if i == 0 || i == len(columns)-1 {
				align = "L"
			}
			pdf.CellFormat(c.width, 5, cells[i], "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetTextColor(0, 0, 0)
	}

	pdf.SetFont("Helvetica", "B", 10)
	verdict := "PASS"
	if !res.Pass {
		verdict = "FAIL"
	}
	pdf.Cell(0, 7, fmt.Sprintf("Governing margin: %s  %s", mos(res.GoverningMargin), verdict))
	pdf.Ln(10)
}

func part(n int) string {
	if n == 0 {
		return "-"
	}
	return fmt.Sprint(n)
}

func mos(m *float64) string {
	if m == nil {
		return "n/a"
	}
	return fmt.Sprintf("%+.3f", *m)
}
