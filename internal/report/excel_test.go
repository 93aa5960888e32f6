package report

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"energyplus/onboarding-portal/internal/kpi"
	"energyplus/onboarding-portal/internal/store"
)

func newExporter(t *testing.T) (*ExcelExporter, *kpi.Tracker) {
	t.Helper()
	st := store.New(afero.NewMemMapFs(), "/data", zap.NewNop())
	tracker := kpi.NewTracker(st, zap.NewNop())
	return NewExcelExporter(tracker, zap.NewNop()), tracker
}

func TestExportUnknownClient(t *testing.T) {
	exporter, _ := newExporter(t)

	_, err := exporter.Export("ghost@example.com")
	assert.ErrorContains(t, err, "no KPI data")
}

func TestExportWorkbook(t *testing.T) {
	exporter, tracker := newExporter(t)
	tracker.InitializeBaseline("jordan@acme.com", map[string]string{
		"cac":         "$1,500",
		"closingRate": "25%",
	})
	_, err := tracker.RecordWeekly("jordan@acme.com", "2026-08", 2, map[string]string{
		"cac": "$1,200",
	})
	require.NoError(t, err)

	data, err := exporter.Export("jordan@acme.com")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{baselineSheet, historySheet}, f.GetSheetList())

	label, err := f.GetCellValue(baselineSheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, kpi.MetricDefs[0].Label, label)

	period, err := f.GetCellValue(historySheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "2026-08_week2", period)
}

func TestExportBaselineValues(t *testing.T) {
	exporter, tracker := newExporter(t)
	tracker.InitializeBaseline("jordan@acme.com", map[string]string{"cac": "$900"})

	data, err := exporter.Export("jordan@acme.com")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	found := map[string]string{}
	rows, err := f.GetRows(baselineSheet)
	require.NoError(t, err)
	for _, row := range rows[1:] {
		require.Len(t, row, 2)
		found[row[0]] = row[1]
	}

	for _, def := range kpi.MetricDefs {
		want := "Not set"
		if def.Name == "cac" {
			want = "$900"
		}
		assert.Equal(t, want, found[def.Label], def.Name)
	}
}
