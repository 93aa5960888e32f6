package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"energyplus/onboarding-portal/internal/kpi"
)

const (
	baselineSheet = "Baseline"
	historySheet  = "Weekly History"
)

// ExcelExporter writes a client's KPI profile as an Excel workbook, one
// sheet for the baseline and one for the weekly history.
type ExcelExporter struct {
	tracker *kpi.Tracker
	logger  *zap.Logger
}

func NewExcelExporter(tracker *kpi.Tracker, logger *zap.Logger) *ExcelExporter {
	return &ExcelExporter{tracker: tracker, logger: logger}
}

// Export builds the workbook. It errors when the client has no KPI
// profile yet.
func (e *ExcelExporter) Export(clientID string) ([]byte, error) {
	profile := e.tracker.Profile(clientID)
	if profile == nil {
		return nil, fmt.Errorf("no KPI data recorded for client %s", clientID)
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	f.SetSheetName("Sheet1", baselineSheet)
	if err := e.writeBaseline(f, profile, headerStyle); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(historySheet); err != nil {
		return nil, fmt.Errorf("failed to create history sheet: %w", err)
	}
	if err := e.writeHistory(f, clientID, headerStyle); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Info("KPI workbook exported",
		zap.String("client_id", clientID),
		zap.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

func (e *ExcelExporter) writeBaseline(f *excelize.File, profile *kpi.Profile, headerStyle int) error {
	headers := []string{"Metric", "Baseline"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(baselineSheet, cell, h)
		f.SetCellStyle(baselineSheet, cell, cell, headerStyle)
	}

	for i, def := range kpi.MetricDefs {
		row := i + 2
		labelCell, _ := excelize.CoordinatesToCellName(1, row)
		valueCell, _ := excelize.CoordinatesToCellName(2, row)
		f.SetCellValue(baselineSheet, labelCell, def.Label)
		f.SetCellValue(baselineSheet, valueCell, displayValue(profile.Baseline[def.Name]))
	}

	f.SetColWidth(baselineSheet, "A", "A", 30)
	f.SetColWidth(baselineSheet, "B", "B", 18)
	return nil
}

func (e *ExcelExporter) writeHistory(f *excelize.File, clientID string, headerStyle int) error {
	headers := []string{"Period", "Updated"}
	for _, def := range kpi.MetricDefs {
		headers = append(headers, def.Label)
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(historySheet, cell, h)
		f.SetCellStyle(historySheet, cell, cell, headerStyle)
	}

	for i, entry := range e.tracker.History(clientID) {
		row := i + 2
		periodCell, _ := excelize.CoordinatesToCellName(1, row)
		updatedCell, _ := excelize.CoordinatesToCellName(2, row)
		f.SetCellValue(historySheet, periodCell, entry.Period)
		f.SetCellValue(historySheet, updatedCell, entry.UpdatedAt.Format("2006-01-02 15:04"))
		for j, def := range kpi.MetricDefs {
			cell, _ := excelize.CoordinatesToCellName(j+3, row)
			f.SetCellValue(historySheet, cell, displayValue(entry.Metrics[def.Name]))
		}
	}

	f.SetColWidth(historySheet, "A", "B", 18)
	return nil
}

func displayValue(v string) string {
	if v == "" {
		return "Not set"
	}
	return v
}
