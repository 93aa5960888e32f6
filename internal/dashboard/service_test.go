package dashboard

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"energyplus/onboarding-portal/internal/kpi"
	"energyplus/onboarding-portal/internal/onboarding"
	"energyplus/onboarding-portal/internal/store"
)

func newTestService() (*Service, *kpi.Tracker) {
	st := store.New(afero.NewMemMapFs(), "data", zap.NewNop())
	tracker := kpi.NewTracker(st, zap.NewNop())
	return NewService(st, tracker, zap.NewNop()), tracker
}

func TestDefaultAreas(t *testing.T) {
	areas := DefaultAreas()
	require.Len(t, areas, 6)
	assert.Equal(t, "Offer & Economics", areas[0].Name)
	assert.Equal(t, "Systems & Access", areas[5].Name)
	for _, a := range areas {
		assert.Equal(t, 0, a.Progress)
		assert.Equal(t, StatusAwaitingReview, a.Status)
	}
}

func TestStatusForProgress(t *testing.T) {
	tests := []struct {
		progress int
		status   string
	}{
		{0, "Awaiting team review..."},
		{1, "Initial analysis in progress..."},
		{24, "Initial analysis in progress..."},
		{25, "Implementation underway..."},
		{49, "Implementation underway..."},
		{50, "Active optimization..."},
		{74, "Active optimization..."},
		{75, "Finalizing..."},
		{99, "Finalizing..."},
		{100, "Complete!"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, StatusForProgress(tt.progress), "progress=%d", tt.progress)
	}
}

func TestAreasDefaultWhenUnstored(t *testing.T) {
	s, _ := newTestService()
	assert.Equal(t, DefaultAreas(), s.Areas())
}

func TestUpdateAreaDerivesStatus(t *testing.T) {
	s, _ := newTestService()
	s.InitializeAreas()

	require.NoError(t, s.UpdateArea(3, 60))

	areas := s.Areas()
	assert.Equal(t, 60, areas[2].Progress)
	assert.Equal(t, "Active optimization...", areas[2].Status)

	// other areas untouched
	assert.Equal(t, 0, areas[0].Progress)
}

func TestUpdateAreaValidation(t *testing.T) {
	s, _ := newTestService()

	assert.Error(t, s.UpdateArea(0, 50))
	assert.Error(t, s.UpdateArea(7, 50))
	assert.Error(t, s.UpdateArea(1, -1))
	assert.Error(t, s.UpdateArea(1, 101))
}

func TestOverallProgressMean(t *testing.T) {
	s, _ := newTestService()
	s.InitializeAreas()

	for id, progress := range map[int]int{1: 0, 2: 100, 3: 100, 4: 0, 5: 100, 6: 0} {
		require.NoError(t, s.UpdateArea(id, progress))
	}
	assert.Equal(t, 50, s.OverallProgress())

	for id, progress := range map[int]int{1: 10, 2: 20, 3: 30, 4: 0, 5: 0, 6: 0} {
		require.NoError(t, s.UpdateArea(id, progress))
	}
	assert.Equal(t, 10, s.OverallProgress())
}

func TestInitializeAreasResets(t *testing.T) {
	s, _ := newTestService()
	s.InitializeAreas()
	require.NoError(t, s.UpdateArea(1, 80))

	s.InitializeAreas()
	assert.Equal(t, 0, s.OverallProgress())
}

func TestSummary(t *testing.T) {
	s, tracker := newTestService()
	s.InitializeAreas()
	require.NoError(t, s.UpdateArea(2, 40))

	rec := onboarding.DefaultRecord()
	rec.OfferAndEconomics["clientName"] = "Jordan Lee"
	rec.OfferAndEconomics["clientEmail"] = "jordan@acme.com"
	rec.OfferAndEconomics["companyName"] = "Acme Solar"

	tracker.InitializeBaseline("jordan@acme.com", map[string]string{kpi.MetricCAC: "$100"})
	_, err := tracker.RecordWeekly("jordan@acme.com", "2026-08", 1, map[string]string{kpi.MetricCAC: "$80"})
	require.NoError(t, err)

	sum := s.Summary(rec, "2026-08", 1)
	assert.Equal(t, "jordan@acme.com", sum.ClientID)
	assert.Equal(t, "Acme Solar", sum.Company)
	assert.Equal(t, "Jordan Lee", sum.Contact)
	assert.Equal(t, 7, sum.OverallProgress)
	require.Len(t, sum.KPIs, len(kpi.MetricDefs))
}

func TestSummaryFallbacks(t *testing.T) {
	s, _ := newTestService()

	sum := s.Summary(onboarding.DefaultRecord(), "2026-08", 1)
	assert.Equal(t, "demo-client", sum.ClientID)
	assert.Equal(t, "Not provided", sum.Company)
	assert.Equal(t, "Not provided", sum.Email)
}

func TestSimulationEvents(t *testing.T) {
	events := SimulationEvents()
	require.NotEmpty(t, events)

	final := map[int]int{}
	for i, ev := range events {
		assert.Equal(t, time.Duration(i+1)*2*time.Second, ev.At)
		assert.GreaterOrEqual(t, ev.AreaID, 1)
		assert.LessOrEqual(t, ev.AreaID, 6)
		final[ev.AreaID] = ev.Progress
	}

	for id := 1; id <= 6; id++ {
		assert.Equal(t, 100, final[id], "area %d ends complete", id)
	}
}
