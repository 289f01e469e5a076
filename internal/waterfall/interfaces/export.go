package interfaces

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"waterfall-engine/internal/waterfall/application"
)

// BuildRunPDF renders a distribution report for a stored run.
func BuildRunPDF(run *application.CalculationRun) ([]byte, error) {
	result := run.Result
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Fund Distribution Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Target: %s", run.Params.InvestmentTarget))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Mode: %s", result.ModeLabel))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Investment: %.2f over %d years", run.Params.InvestmentAmount, run.Params.InvestmentPeriod))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Hurdle Rate: %.2f%%  Carry: %.2f%%", run.Params.HurdleRate, run.Params.ManagementCarry))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", run.CreatedAt.Format(time.RFC3339)))
	pdf.Ln(8)

	irrLine := fmt.Sprintf("IRR: %.2f%%", result.Metrics.IRR)
	if !result.Metrics.IRRConverged {
		irrLine += " (not converged)"
	}
	pdf.Cell(0, 6, irrLine)
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("DPI: %.2f", result.Metrics.DPI))
	pdf.Ln(5)
	pdf.Cell(0, 6, "Static Payback: "+paybackText(result.Metrics.StaticPaybackYears))
	pdf.Ln(5)
	pdf.Cell(0, 6, "Dynamic Payback: "+paybackText(result.Metrics.DynamicPaybackYears))
	pdf.Ln(8)

	// Ledger table, one column per schema entry plus the period column.
	width := 260.0 / float64(len(result.Schema)+1)
	pdf.SetFont("Arial", "B", 8)
	pdf.CellFormat(width, 6, "Year", "1", 0, "C", false, 0, "")
	for _, column := range result.Schema {
		pdf.CellFormat(width, 6, column.Label, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 8)
	for _, row := range result.Ledger {
		pdf.CellFormat(width, 6, fmt.Sprintf("%d", row.Period), "1", 0, "C", false, 0, "")
		for _, column := range result.Schema {
			pdf.CellFormat(width, 6, fmt.Sprintf("%.2f", row.Cell(column.Key)), "1", 0, "R", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.SetFont("Arial", "B", 8)
	pdf.CellFormat(width, 6, "Total", "1", 0, "C", false, 0, "")
	for _, column := range result.Schema {
		text := ""
		if column.Additive {
			text = fmt.Sprintf("%.2f", result.Totals[column.Key])
		}
		pdf.CellFormat(width, 6, text, "1", 0, "R", false, 0, "")
	}
	pdf.Ln(-1)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildRunXLSX renders a workbook for a stored run: a summary sheet with the
// inputs and headline metrics, and a distribution sheet with the full ledger.
func BuildRunXLSX(run *application.CalculationRun) ([]byte, error) {
	result := run.Result
	f := excelize.NewFile()
	summarySheet := "summary"
	ledgerSheet := "distribution"
	f.SetSheetName("Sheet1", summarySheet)
	if _, err := f.NewSheet(ledgerSheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(summarySheet, "A1", "Fund Distribution Report")
	_ = f.SetCellValue(summarySheet, "A3", "Target")
	_ = f.SetCellValue(summarySheet, "B3", run.Params.InvestmentTarget)
	_ = f.SetCellValue(summarySheet, "A4", "Mode")
	_ = f.SetCellValue(summarySheet, "B4", result.ModeLabel)
	_ = f.SetCellValue(summarySheet, "A5", "Investment Amount")
	_ = f.SetCellValue(summarySheet, "B5", run.Params.InvestmentAmount)
	_ = f.SetCellValue(summarySheet, "A6", "Investment Period (years)")
	_ = f.SetCellValue(summarySheet, "B6", run.Params.InvestmentPeriod)
	_ = f.SetCellValue(summarySheet, "A7", "Hurdle Rate (%)")
	_ = f.SetCellValue(summarySheet, "B7", run.Params.HurdleRate)
	_ = f.SetCellValue(summarySheet, "A8", "Management Carry (%)")
	_ = f.SetCellValue(summarySheet, "B8", run.Params.ManagementCarry)
	_ = f.SetCellValue(summarySheet, "A10", "IRR (%)")
	_ = f.SetCellValue(summarySheet, "B10", result.Metrics.IRR)
	if !result.Metrics.IRRConverged {
		_ = f.SetCellValue(summarySheet, "C10", "not converged")
	}
	_ = f.SetCellValue(summarySheet, "A11", "DPI")
	_ = f.SetCellValue(summarySheet, "B11", result.Metrics.DPI)
	_ = f.SetCellValue(summarySheet, "A12", "Static Payback (years)")
	_ = f.SetCellValue(summarySheet, "B12", paybackText(result.Metrics.StaticPaybackYears))
	_ = f.SetCellValue(summarySheet, "A13", "Dynamic Payback (years)")
	_ = f.SetCellValue(summarySheet, "B13", paybackText(result.Metrics.DynamicPaybackYears))
	if result.Structure != nil {
		_ = f.SetCellValue(summarySheet, "A15", "Senior Principal")
		_ = f.SetCellValue(summarySheet, "B15", result.Structure.SeniorAmount)
		row := 16
		if result.Structure.MezzanineAmount > 0 {
			_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), "Mezzanine Principal")
			_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), result.Structure.MezzanineAmount)
			row++
		}
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), "Subordinate Principal")
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), result.Structure.SubordinateAmount)
	}

	_ = f.SetCellValue(ledgerSheet, "A1", "Year")
	for i, column := range result.Schema {
		cell, err := excelize.CoordinatesToCellName(i+2, 1)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(ledgerSheet, cell, column.Label)
	}
	for rowIdx, ledgerRow := range result.Ledger {
		_ = f.SetCellValue(ledgerSheet, fmt.Sprintf("A%d", rowIdx+2), ledgerRow.Period)
		for colIdx, column := range result.Schema {
			cell, err := excelize.CoordinatesToCellName(colIdx+2, rowIdx+2)
			if err != nil {
				return nil, err
			}
			_ = f.SetCellValue(ledgerSheet, cell, ledgerRow.Cell(column.Key))
		}
	}
	totalRow := len(result.Ledger) + 2
	_ = f.SetCellValue(ledgerSheet, fmt.Sprintf("A%d", totalRow), "Total")
	for colIdx, column := range result.Schema {
		if !column.Additive {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(colIdx+2, totalRow)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(ledgerSheet, cell, result.Totals[column.Key])
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func paybackText(years *float64) string {
	if years == nil {
		return "not recovered"
	}
	return fmt.Sprintf("%.2f", *years)
}
