package wizard

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"energyplus/onboarding-portal/internal/dashboard"
	"energyplus/onboarding-portal/internal/kpi"
	"energyplus/onboarding-portal/internal/notify"
	"energyplus/onboarding-portal/internal/onboarding"
	"energyplus/onboarding-portal/internal/store"
)

type MockReportGenerator struct {
	mock.Mock
}

func (m *MockReportGenerator) Generate(ctx context.Context, rec *onboarding.Record) ([]byte, error) {
	args := m.Called(ctx, rec)
	pdf, _ := args.Get(0).([]byte)
	return pdf, args.Error(1)
}

type MockSender struct {
	mock.Mock
}

func (m *MockSender) IsConfigured() bool {
	return m.Called().Bool(0)
}

func (m *MockSender) Send(ctx context.Context, rec *onboarding.Record, pdf []byte) notify.Result {
	args := m.Called(ctx, rec, pdf)
	return args.Get(0).(notify.Result)
}

type fixture struct {
	controller *Controller
	manager    *onboarding.Manager
	dashboard  *dashboard.Service
	kpis       *kpi.Tracker
	reports    *MockReportGenerator
	sender     *MockSender
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := store.New(afero.NewMemMapFs(), "data", zap.NewNop())
	manager := onboarding.NewManager(st, zap.NewNop())
	kpis := kpi.NewTracker(st, zap.NewNop())
	dash := dashboard.NewService(st, kpis, zap.NewNop())
	reports := new(MockReportGenerator)
	sender := new(MockSender)

	return &fixture{
		controller: NewController(manager, dash, kpis, reports, sender, zap.NewNop()),
		manager:    manager,
		dashboard:  dash,
		kpis:       kpis,
		reports:    reports,
		sender:     sender,
	}
}

func stepOneSnapshot() Snapshot {
	return Snapshot{Values: map[string][]string{
		"clientName":  {"Jordan Lee"},
		"clientEmail": {"jordan@acme.com"},
		"companyName": {"Acme Solar"},
		"offers":      {"Solar installs"},
	}}
}

func TestAdvanceSavesAndMovesForward(t *testing.T) {
	f := newFixture(t)

	result, err := f.controller.Advance(context.Background(), stepOneSnapshot())
	require.NoError(t, err)

	assert.True(t, result.Validation.Valid)
	assert.Equal(t, 2, result.Step)
	assert.False(t, result.Finished)

	assert.Equal(t, 2, f.manager.CurrentStep())
	assert.True(t, f.manager.IsStepCompleted(1))

	sec, err := f.manager.GetSection(onboarding.SectionOfferAndEconomics)
	require.NoError(t, err)
	assert.Equal(t, "Jordan Lee", sec["clientName"])
	assert.Equal(t, "Solar installs", sec["offers"])
}

func TestAdvanceBlockedLeavesStateUntouched(t *testing.T) {
	f := newFixture(t)

	result, err := f.controller.Advance(context.Background(), Snapshot{Values: map[string][]string{
		"clientName": {"Jordan Lee"},
		"offers":     {"Solar installs"},
	}})
	require.NoError(t, err)

	assert.False(t, result.Validation.Valid)
	assert.Equal(t, []string{"clientEmail", "companyName"}, result.Validation.Missing)
	assert.Equal(t, 1, result.Step)

	assert.Equal(t, 1, f.manager.CurrentStep())
	assert.False(t, f.manager.IsStepCompleted(1))

	sec, err := f.manager.GetSection(onboarding.SectionOfferAndEconomics)
	require.NoError(t, err)
	assert.Equal(t, "", sec["offers"], "nothing is saved on a blocked advance")
}

func TestRetreat(t *testing.T) {
	f := newFixture(t)

	_, err := f.controller.Advance(context.Background(), stepOneSnapshot())
	require.NoError(t, err)

	assert.Equal(t, 1, f.controller.Retreat())
	assert.Equal(t, 1, f.controller.Retreat(), "retreat on the first step stays put")
	assert.True(t, f.manager.IsStepCompleted(1), "going back keeps completion state")
}

func TestFieldChangedDebounces(t *testing.T) {
	f := newFixture(t)
	f.controller.debounce = 5 * time.Millisecond

	f.controller.FieldChanged(Snapshot{Values: map[string][]string{"clientName": {"J"}}})
	f.controller.FieldChanged(Snapshot{Values: map[string][]string{"clientName": {"Jordan"}}})

	assert.Eventually(t, func() bool {
		sec, err := f.manager.GetSection(onboarding.SectionOfferAndEconomics)
		require.NoError(t, err)
		return sec["clientName"] == "Jordan"
	}, time.Second, 10*time.Millisecond, "only the latest snapshot is saved")
}

func TestFlushIsImmediateAndIdempotent(t *testing.T) {
	f := newFixture(t)

	f.controller.FieldChanged(Snapshot{Values: map[string][]string{"clientName": {"Jordan"}}})
	f.controller.Flush()

	sec, err := f.manager.GetSection(onboarding.SectionOfferAndEconomics)
	require.NoError(t, err)
	assert.Equal(t, "Jordan", sec["clientName"])

	// nothing pending
	f.controller.Flush()
}

func TestAutoSaveNeverAdvances(t *testing.T) {
	f := newFixture(t)

	f.controller.FieldChanged(Snapshot{Values: map[string][]string{"clientName": {"Jordan"}}})
	f.controller.Flush()

	assert.Equal(t, 1, f.manager.CurrentStep())
	assert.False(t, f.manager.IsStepCompleted(1))
}

func advanceToLastStep(t *testing.T, f *fixture) {
	t.Helper()
	_, err := f.controller.Advance(context.Background(), stepOneSnapshot())
	require.NoError(t, err)
	for step := 2; step < onboarding.StepCount; step++ {
		result, err := f.controller.Advance(context.Background(), Snapshot{})
		require.NoError(t, err)
		require.True(t, result.Validation.Valid)
	}
	require.Equal(t, onboarding.StepCount, f.manager.CurrentStep())
}

func TestCompletionSequence(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.manager.UpdateSection(onboarding.SectionKPITracking, onboarding.Section{
		"kpi_cac": "$1,500",
	}))
	advanceToLastStep(t, f)

	pdf := []byte("%PDF-1.4 report")
	f.reports.On("Generate", mock.Anything, mock.Anything).Return(pdf, nil)
	f.sender.On("IsConfigured").Return(true)
	f.sender.On("Send", mock.Anything, mock.Anything, pdf).
		Return(notify.Result{Success: true, Message: "emails sent successfully"})

	result, err := f.controller.Advance(context.Background(), Snapshot{})
	require.NoError(t, err)

	assert.True(t, result.Finished)
	require.NotNil(t, result.Completion)
	assert.True(t, result.Completion.EmailSent)
	assert.Equal(t, "jordan@acme.com", result.Completion.ClientID)
	assert.Equal(t, "Acme-Solar-Onboarding.pdf", result.Completion.PDFName)
	assert.Equal(t, pdf, result.Completion.PDF)

	// delivery phase opened
	assert.Equal(t, 0, f.dashboard.OverallProgress())
	profile := f.kpis.Profile("jordan@acme.com")
	require.NotNil(t, profile)
	assert.Equal(t, "$1,500", profile.Baseline[kpi.MetricCAC])

	f.reports.AssertExpectations(t)
	f.sender.AssertExpectations(t)
}

func TestCompletionPDFFailureSkipsEmail(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.manager.UpdateSection(onboarding.SectionKPITracking, onboarding.Section{
		"kpi_cost_per_lead": "$40",
	}))
	advanceToLastStep(t, f)

	f.reports.On("Generate", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	_, err := f.controller.Advance(context.Background(), Snapshot{})
	require.Error(t, err)

	f.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)

	// the delivery phase still opens
	profile := f.kpis.Profile("jordan@acme.com")
	require.NotNil(t, profile)
	assert.Equal(t, "$40", profile.Baseline[kpi.MetricCostPerLead])
}

func TestCompletionDownloadFallback(t *testing.T) {
	f := newFixture(t)
	advanceToLastStep(t, f)

	f.reports.On("Generate", mock.Anything, mock.Anything).Return([]byte("pdf"), nil)
	f.sender.On("IsConfigured").Return(false)

	result, err := f.controller.Advance(context.Background(), Snapshot{})
	require.NoError(t, err)

	assert.True(t, result.Completion.DownloadFallback)
	assert.False(t, result.Completion.EmailSent)
	f.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestCompletionSkipsBaselineWithoutKPIData(t *testing.T) {
	f := newFixture(t)
	advanceToLastStep(t, f)

	f.reports.On("Generate", mock.Anything, mock.Anything).Return([]byte("pdf"), nil)
	f.sender.On("IsConfigured").Return(false)

	_, err := f.controller.Advance(context.Background(), Snapshot{})
	require.NoError(t, err)

	assert.Nil(t, f.kpis.Profile("jordan@acme.com"))
}

func TestCompletionGuardRejectsConcurrentRuns(t *testing.T) {
	f := newFixture(t)

	f.controller.mu.Lock()
	f.controller.completing = true
	f.controller.mu.Unlock()

	_, err := f.controller.Complete(context.Background())
	assert.ErrorIs(t, err, ErrCompletionInProgress)
}

func TestStateReflectsProgress(t *testing.T) {
	f := newFixture(t)

	state := f.controller.State()
	assert.Equal(t, 1, state.CurrentStep)
	assert.Equal(t, onboarding.StepCount, state.TotalSteps)
	assert.Equal(t, 0, state.Percentage)
	assert.Equal(t, onboarding.SectionOfferAndEconomics, state.Definition.Section)

	_, err := f.controller.Advance(context.Background(), stepOneSnapshot())
	require.NoError(t, err)

	state = f.controller.State()
	assert.Equal(t, 2, state.CurrentStep)
	assert.Equal(t, []int{1}, state.CompletedSteps)
	assert.Equal(t, 17, state.Percentage)
}
