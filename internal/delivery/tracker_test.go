package delivery

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"energyplus/onboarding-portal/internal/dashboard"
	"energyplus/onboarding-portal/internal/kpi"
	"energyplus/onboarding-portal/internal/onboarding"
	"energyplus/onboarding-portal/internal/store"
)

func newTestTracker() (*Tracker, *dashboard.Service, *store.Store) {
	st := store.New(afero.NewMemMapFs(), "data", zap.NewNop())
	dash := dashboard.NewService(st, kpi.NewTracker(st, zap.NewNop()), zap.NewNop())
	return NewTracker(st, dash, zap.NewNop()), dash, st
}

func validRequest() UpdateRequest {
	return UpdateRequest{
		ClientID:    "jordan@acme.com",
		Month:       "2026-08",
		Week:        2,
		AreaID:      3,
		Description: "Booking automation configured",
		AddedBy:     "Sam",
		Progress:    45,
	}
}

func TestRecordUpdateAppendOnly(t *testing.T) {
	tr, _, _ := newTestTracker()

	first, err := tr.RecordUpdate(validRequest())
	require.NoError(t, err)

	req := validRequest()
	req.Description = "Calendar synced"
	req.Progress = 60
	second, err := tr.RecordUpdate(req)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)

	updates, err := tr.ListUpdates("jordan@acme.com", "2026-08", 2, 3)
	require.NoError(t, err)
	require.Len(t, updates, 2, "recording never replaces earlier updates")

	week := tr.Week("jordan@acme.com", "2026-08", 2)
	assert.Equal(t, 60, week["area3"].Progress, "progress is last write wins")
}

func TestRecordUpdateValidation(t *testing.T) {
	tr, _, _ := newTestTracker()

	req := validRequest()
	req.Description = "   "
	_, err := tr.RecordUpdate(req)
	assert.Error(t, err)

	req = validRequest()
	req.AreaID = 0
	_, err = tr.RecordUpdate(req)
	assert.Error(t, err)

	req = validRequest()
	req.AreaID = 7
	_, err = tr.RecordUpdate(req)
	assert.Error(t, err)

	req = validRequest()
	req.Progress = 101
	_, err = tr.RecordUpdate(req)
	assert.Error(t, err)

	req = validRequest()
	req.Month = "August 2026"
	_, err = tr.RecordUpdate(req)
	assert.Error(t, err)

	req = validRequest()
	req.Week = 6
	_, err = tr.RecordUpdate(req)
	assert.Error(t, err)
}

func TestRecordUpdateDefaultsAuthor(t *testing.T) {
	tr, _, _ := newTestTracker()

	req := validRequest()
	req.AddedBy = ""
	update, err := tr.RecordUpdate(req)
	require.NoError(t, err)
	assert.Equal(t, "Admin", update.AddedBy)
}

func TestRecordUpdatePushesDashboardProgress(t *testing.T) {
	tr, dash, _ := newTestTracker()
	dash.InitializeAreas()

	_, err := tr.RecordUpdate(validRequest())
	require.NoError(t, err)

	areas := dash.Areas()
	assert.Equal(t, 45, areas[2].Progress)
	assert.Equal(t, "Implementation underway...", areas[2].Status)
}

func TestListUpdatesNewestFirst(t *testing.T) {
	tr, _, _ := newTestTracker()

	base := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	for i, desc := range []string{"first", "second", "third"} {
		req := validRequest()
		req.Description = desc
		req.Timestamp = base.Add(time.Duration(i) * time.Hour)
		_, err := tr.RecordUpdate(req)
		require.NoError(t, err)
	}

	updates, err := tr.ListUpdates("jordan@acme.com", "2026-08", 2, 3)
	require.NoError(t, err)
	require.Len(t, updates, 3)
	assert.Equal(t, "third", updates[0].Description)
	assert.Equal(t, "first", updates[2].Description)
}

func TestWeekIsolation(t *testing.T) {
	tr, _, _ := newTestTracker()

	_, err := tr.RecordUpdate(validRequest())
	require.NoError(t, err)

	other := validRequest()
	other.Week = 3
	_, err = tr.RecordUpdate(other)
	require.NoError(t, err)

	week2 := tr.Week("jordan@acme.com", "2026-08", 2)
	week3 := tr.Week("jordan@acme.com", "2026-08", 3)
	assert.Len(t, week2["area3"].Updates, 1)
	assert.Len(t, week3["area3"].Updates, 1)

	empty := tr.Week("jordan@acme.com", "2026-09", 1)
	for id := 1; id <= 6; id++ {
		area := empty[areaKey(id)]
		assert.Empty(t, area.Updates)
		assert.Equal(t, 0, area.Progress)
	}
}

func TestClients(t *testing.T) {
	tr, _, st := newTestTracker()
	assert.Empty(t, tr.Clients())

	rec := onboarding.DefaultRecord()
	rec.OfferAndEconomics["clientEmail"] = "jordan@acme.com"
	rec.OfferAndEconomics["companyName"] = "Acme Solar"
	require.True(t, st.Set(onboarding.StorageKey, rec))

	clients := tr.Clients()
	require.Len(t, clients, 1)
	assert.Equal(t, "jordan@acme.com", clients[0].ID)
	assert.Equal(t, "Acme Solar", clients[0].Name)
}

func TestClientsSkipsRecordsWithoutEmail(t *testing.T) {
	tr, _, st := newTestTracker()

	require.True(t, st.Set(onboarding.StorageKey, onboarding.DefaultRecord()))
	assert.Empty(t, tr.Clients())
}
