package excel

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"tolninja/domain/stackup"
	"tolninja/internal/errors"
	"tolninja/ports"
)

// ReportWriter renders an analysis result into an xlsx workbook with a
// Summary sheet and a Steps sheet.
type ReportWriter struct{}

func NewReportWriter() ports.ReportWriter {
	return &ReportWriter{}
}

func (w *ReportWriter) Write(_ context.Context, result *stackup.AnalysisResult, path string) error {
	if result == nil || result.Summary == nil {
		return errors.New(errors.CodeReportFailed, "nothing to report: no summary")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "creating report directory")
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := w.writeSummarySheet(f, result); err != nil {
		return err
	}
	if err := w.writeStepsSheet(f, result); err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return errors.Wrap(err, "saving report workbook")
	}
	return nil
}

func (w *ReportWriter) writeSummarySheet(f *excelize.File, result *stackup.AnalysisResult) error {
	const sheet = "Summary"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return errors.Wrap(err, "renaming summary sheet")
	}

	s := result.Summary
	rows := [][2]interface{}{
		{"Stackup", result.Name},
		{"Revision", result.Revision},
		{"Orientation", string(result.Orientation)},
		{"Samples", s.Samples},
		{"Mean", s.Mean},
		{"Median", s.Median},
		{"Min", s.Min},
		{"Max", s.Max},
		{"Std", s.Std},
		{"Lower spec limit", limitCell(s.TargetLimits.Lower)},
		{"Upper spec limit", limitCell(s.TargetLimits.Upper)},
		{"% below LSL", percentCell(s.PercentBelowLSL)},
		{"% above USL", percentCell(s.PercentAboveUSL)},
		{"% in spec", percentCell(s.PercentOK)},
		{"% out of spec", percentCell(s.PercentNOK)},
		{"Estimated % out of spec", percentCell(s.EstimatedPercentNOK)},
		{"Cpk", cpkCell(s.Cpk)},
	}
	if result.AbsoluteLimits != nil {
		rows = append(rows,
			[2]interface{}{"Absolute minimum", *result.AbsoluteLimits.Lower},
			[2]interface{}{"Absolute maximum", *result.AbsoluteLimits.Upper},
		)
	}
	if s.CustomLimits != nil {
		rows = append(rows,
			[2]interface{}{"Custom lower limit", limitCell(s.CustomLimits.Lower)},
			[2]interface{}{"Custom upper limit", limitCell(s.CustomLimits.Upper)},
			[2]interface{}{"% below custom LSL", percentCell(s.PercentBelowCustLSL)},
			[2]interface{}{"% above custom USL", percentCell(s.PercentAboveCustUSL)},
			[2]interface{}{"% in custom limits", percentCell(s.PercentCustOK)},
			[2]interface{}{"% out of custom limits", percentCell(s.PercentCustNOK)},
			[2]interface{}{"Custom Cpk", cpkCell(s.CustCpk)},
		)
	}

	for i, row := range rows {
		if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", i+1), row[0]); err != nil {
			return errors.Wrap(err, "writing summary sheet")
		}
		if err := f.SetCellValue(sheet, fmt.Sprintf("B%d", i+1), row[1]); err != nil {
			return errors.Wrap(err, "writing summary sheet")
		}
	}
	return nil
}

func (w *ReportWriter) writeStepsSheet(f *excelize.File, result *stackup.AnalysisResult) error {
	const sheet = "Steps"
	if _, err := f.NewSheet(sheet); err != nil {
		return errors.Wrap(err, "creating steps sheet")
	}

	headers := []string{"Part", "Description", "Interface", "Nominal", "Abs Min", "Abs Max", "Mean", "Std", "Samples"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return errors.Wrap(err, "writing steps header")
		}
	}

	for i, step := range result.Steps {
		values := []interface{}{
			step.PartName,
			step.Description,
			step.IsInterface,
			step.Nominal,
			limitCell(step.AbsMin),
			limitCell(step.AbsMax),
			step.Mean,
			step.Std,
			step.Samples,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return errors.Wrap(err, "writing steps sheet")
			}
		}
	}
	return nil
}

func limitCell(v *float64) interface{} {
	if v == nil {
		return "-"
	}
	return *v
}

func percentCell(v *float64) interface{} {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.4f%%", *v)
}

func cpkCell(c *stackup.Capability) interface{} {
	if c == nil {
		return "-"
	}
	f := float64(*c)
	if math.IsInf(f, 1) {
		return "+Inf"
	}
	if math.IsInf(f, -1) {
		return "-Inf"
	}
	return f
}
