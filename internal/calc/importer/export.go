package importer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"Fastener/internal/calc/batch"
	"Fastener/internal/calc/margin"
)

const (
	SummarySheet = "summary"
	MarginsSheet = "margins"
)

var (
	summaryHeader = []any{"index", "joint_id", "thread", "standard", "governing_mode", "governing_margin", "pass", "error_code", "error"}
	marginsHeader = []any{"joint_id", "mode", "part", "basis", "capability_N", "requirement_N", "factor", "fitting_factor", "margin", "status"}
)

// Write stores batch items as a workbook with a summary sheet, one row per
// joint, and a margins sheet, one row per failure mode.
func Write(w io.Writer, items []batch.Item) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SummarySheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(MarginsSheet); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	for sheet, header := range map[string][]any{SummarySheet: summaryHeader, MarginsSheet: marginsHeader} {
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return err
		}
		if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
			return err
		}
	}

	mrow := 2
	for i, it := range items {
		row := summaryRow(it)
		if err := setRow(f, SummarySheet, i+2, row); err != nil {
			return err
		}
		if it.Result == nil {
			continue
		}
		for _, r := range it.Result.Results {
			if err := setRow(f, MarginsSheet, mrow, marginRow(it.JointID, r)); err != nil {
				return err
			}
			mrow++
		}
	}
	return f.Write(w)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func summaryRow(it batch.Item) []any {
	row := []any{it.Index, it.JointID, "", "", "", "", "", "", ""}
	if it.Error != nil {
		row[7] = string(it.Error.Code)
		row[8] = it.Error.Message
		return row
	}
	res := it.Result
	row[2] = res.Thread
	row[3] = res.Standard
	if len(res.Governing) > 0 {
		g := res.Governing[0]
		row[4] = string(g.Mode)
		if g.Part > 0 {
			row[4] = fmt.Sprintf("%s (part %d)", g.Mode, g.Part)
		}
	}
	if res.GoverningMargin != nil {
		row[5] = *res.GoverningMargin
	}
	row[6] = res.Pass
	return row
}

func marginRow(jointID string, r margin.Result) []any {
	var m any = ""
	if r.Margin != nil {
		m = *r.Margin
	}
	return []any{jointID, string(r.Mode), r.Part, r.Basis, r.Capability, r.Requirement, r.FactorApplied, r.FittingFactorApplied, m, string(r.Status)}
}
