package interfaces

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"waterfall-engine/internal/waterfall/application"
	waterfall "waterfall-engine/internal/waterfall/domain"
)

const (
	inputsSheet    = "inputs"
	cashFlowsSheet = "cash_flows"
)

// Input workbook labels. The import parser matches on these, so the template
// and the parser must stay in sync.
const (
	labelTarget          = "Investment Target"
	labelAmount          = "Investment Amount"
	labelPeriod          = "Investment Period (years)"
	labelHurdleRate      = "Hurdle Rate (%)"
	labelCarry           = "Management Carry (%)"
	labelMode            = "Mode"
	labelPeriodicRate    = "Periodic Rate (%)"
	labelSeniorRatio     = "Senior Ratio (%)"
	labelMezzanineRatio  = "Mezzanine Ratio (%)"
	labelMezzanineRate   = "Mezzanine Rate (%)"
	labelSubordinateRate = "Subordinate Rate (%)"
)

// BuildInputTemplateXLSX renders the blank input workbook users fill in and
// upload to /api/v1/calculations/import.
func BuildInputTemplateXLSX() ([]byte, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", inputsSheet)
	if _, err := f.NewSheet(cashFlowsSheet); err != nil {
		return nil, err
	}

	labels := []string{
		labelTarget,
		labelAmount,
		labelPeriod,
		labelHurdleRate,
		labelCarry,
		labelMode,
		labelPeriodicRate,
		labelSeniorRatio,
		labelMezzanineRatio,
		labelMezzanineRate,
		labelSubordinateRate,
	}
	for i, label := range labels {
		_ = f.SetCellValue(inputsSheet, fmt.Sprintf("A%d", i+1), label)
	}
	modes := make([]string, 0, len(waterfall.Modes()))
	for _, mode := range waterfall.Modes() {
		modes = append(modes, string(mode))
	}
	_ = f.SetCellValue(inputsSheet, "C6", "one of: "+strings.Join(modes, ", "))

	_ = f.SetCellValue(cashFlowsSheet, "A1", "Year")
	_ = f.SetCellValue(cashFlowsSheet, "B1", "Net Cash Flow")

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseInputWorkbook reads an uploaded input workbook into a calculation
// request. Validation of the parsed values is left to the engine.
func ParseInputWorkbook(reader io.Reader) (application.CalculationRequest, error) {
	var req application.CalculationRequest
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return req, errors.New("workbook: cannot open file")
	}
	defer f.Close()

	rows, err := f.GetRows(inputsSheet)
	if err != nil {
		return req, fmt.Errorf("workbook: missing %q sheet", inputsSheet)
	}
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		label := strings.TrimSpace(row[0])
		value := strings.TrimSpace(row[1])
		if label == "" || value == "" {
			continue
		}
		switch label {
		case labelTarget:
			req.Params.InvestmentTarget = value
		case labelAmount:
			req.Params.InvestmentAmount, err = parseNumber(label, value)
		case labelPeriod:
			var period float64
			period, err = parseNumber(label, value)
			req.Params.InvestmentPeriod = int(period)
		case labelHurdleRate:
			req.Params.HurdleRate, err = parseNumber(label, value)
		case labelCarry:
			req.Params.ManagementCarry, err = parseNumber(label, value)
		case labelMode:
			req.Mode = value
		case labelPeriodicRate:
			req.ModeParams.PeriodicRate, err = parseNumber(label, value)
		case labelSeniorRatio:
			req.ModeParams.SeniorRatio, err = parseNumber(label, value)
		case labelMezzanineRatio:
			req.ModeParams.MezzanineRatio, err = parseNumber(label, value)
		case labelMezzanineRate:
			req.ModeParams.MezzanineRate, err = parseNumber(label, value)
		case labelSubordinateRate:
			req.ModeParams.SubordinateRate, err = parseNumber(label, value)
		}
		if err != nil {
			return application.CalculationRequest{}, err
		}
	}

	flowRows, err := f.GetRows(cashFlowsSheet)
	if err != nil {
		return application.CalculationRequest{}, fmt.Errorf("workbook: missing %q sheet", cashFlowsSheet)
	}
	for i, row := range flowRows {
		if i == 0 || len(row) < 2 {
			continue
		}
		value := strings.TrimSpace(row[1])
		if value == "" {
			continue
		}
		flow, err := parseNumber(fmt.Sprintf("cash flow row %d", i+1), value)
		if err != nil {
			return application.CalculationRequest{}, err
		}
		req.CashFlows = append(req.CashFlows, flow)
	}
	return req, nil
}

func parseNumber(label, value string) (float64, error) {
	cleaned := strings.ReplaceAll(value, ",", "")
	number, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("workbook: %s is not a number: %q", label, value)
	}
	return number, nil
}
