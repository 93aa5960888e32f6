package wizard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"energyplus/onboarding-portal/internal/dashboard"
	"energyplus/onboarding-portal/internal/kpi"
	"energyplus/onboarding-portal/internal/notify"
	"energyplus/onboarding-portal/internal/onboarding"
)

// DefaultDebounce is how long field changes accumulate before an
// auto-save fires.
const DefaultDebounce = 500 * time.Millisecond

// ReportGenerator renders the completed intake as a PDF.
type ReportGenerator interface {
	Generate(ctx context.Context, rec *onboarding.Record) ([]byte, error)
}

// ErrCompletionInProgress is returned when Complete is called while a
// previous completion is still running.
var ErrCompletionInProgress = fmt.Errorf("completion already in progress")

// Controller drives the intake wizard: step transitions, validation,
// debounced auto-save, and the completion sequence.
type Controller struct {
	manager   *onboarding.Manager
	dashboard *dashboard.Service
	kpis      *kpi.Tracker
	reports   ReportGenerator
	notifier  notify.Sender
	logger    *zap.Logger
	debounce  time.Duration

	mu         sync.Mutex
	timer      *time.Timer
	pending    *pendingSave
	completing bool
}

type pendingSave struct {
	step int
	snap Snapshot
}

func NewController(
	manager *onboarding.Manager,
	dash *dashboard.Service,
	kpis *kpi.Tracker,
	reports ReportGenerator,
	notifier notify.Sender,
	logger *zap.Logger,
) *Controller {
	return &Controller{
		manager:   manager,
		dashboard: dash,
		kpis:      kpis,
		reports:   reports,
		notifier:  notifier,
		logger:    logger,
		debounce:  DefaultDebounce,
	}
}

// State describes the wizard's current position.
type State struct {
	CurrentStep    int            `json:"currentStep"`
	TotalSteps     int            `json:"totalSteps"`
	CompletedSteps []int          `json:"completedSteps"`
	Percentage     int            `json:"percentage"`
	Definition     StepDefinition `json:"definition"`
}

func (c *Controller) State() State {
	rec := c.manager.Snapshot()
	def, _ := StepFor(rec.CurrentStep)
	return State{
		CurrentStep:    rec.CurrentStep,
		TotalSteps:     onboarding.StepCount,
		CompletedSteps: rec.CompletedSteps,
		Percentage:     c.manager.CompletionPercentage(),
		Definition:     def,
	}
}

// ValidationResult lists the required fields an advance attempt left
// blank.
type ValidationResult struct {
	Valid   bool     `json:"valid"`
	Missing []string `json:"missing,omitempty"`
}

// AdvanceResult reports what an advance attempt did.
type AdvanceResult struct {
	Validation ValidationResult  `json:"validation"`
	Step       int               `json:"step"`
	Finished   bool              `json:"finished"`
	Completion *CompletionResult `json:"completion,omitempty"`
}

// Advance validates the current step against the snapshot and, when
// valid, saves it, marks it completed and moves forward. A failed
// validation changes nothing. Advancing past the last step runs the
// completion sequence.
func (c *Controller) Advance(ctx context.Context, snap Snapshot) (*AdvanceResult, error) {
	c.Flush()

	step := c.manager.CurrentStep()
	def, ok := StepFor(step)
	if !ok {
		return nil, fmt.Errorf("no definition for step %d", step)
	}

	if missing := MissingRequired(def, snap); len(missing) > 0 {
		return &AdvanceResult{
			Validation: ValidationResult{Valid: false, Missing: missing},
			Step:       step,
		}, nil
	}

	if err := c.manager.UpdateSection(def.Section, Collect(def, snap)); err != nil {
		return nil, err
	}
	c.manager.CompleteStep(step)

	if step < onboarding.StepCount {
		if err := c.manager.SetCurrentStep(step + 1); err != nil {
			return nil, err
		}
		return &AdvanceResult{
			Validation: ValidationResult{Valid: true},
			Step:       step + 1,
		}, nil
	}

	completion, err := c.Complete(ctx)
	if err != nil {
		return nil, err
	}
	return &AdvanceResult{
		Validation: ValidationResult{Valid: true},
		Step:       step,
		Finished:   true,
		Completion: completion,
	}, nil
}

// Retreat moves back one step. On the first step it stays put.
func (c *Controller) Retreat() int {
	step := c.manager.CurrentStep()
	if step > 1 {
		step--
		if err := c.manager.SetCurrentStep(step); err != nil {
			c.logger.Warn("Failed to move back", zap.Error(err))
		}
	}
	return step
}

// FieldChanged schedules a debounced auto-save of the current step. A
// burst of changes results in one save carrying the latest snapshot.
func (c *Controller) FieldChanged(snap Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending = &pendingSave{step: c.manager.CurrentStep(), snap: snap}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, c.Flush)
}

// Flush runs any pending auto-save immediately. Auto-save skips
// validation and never changes the step.
func (c *Controller) Flush() {
	c.mu.Lock()
	pending := c.pending
	c.pending = nil
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()

	if pending == nil {
		return
	}

	def, ok := StepFor(pending.step)
	if !ok {
		return
	}
	if err := c.manager.UpdateSection(def.Section, Collect(def, pending.snap)); err != nil {
		c.logger.Warn("Auto-save failed", zap.Error(err))
	}
}

// CompletionResult describes the outcome of the completion sequence.
type CompletionResult struct {
	ClientID         string `json:"clientId"`
	PDFName          string `json:"pdfName"`
	PDF              []byte `json:"-"`
	EmailSent        bool   `json:"emailSent"`
	EmailMessage     string `json:"emailMessage,omitempty"`
	DownloadFallback bool   `json:"downloadFallback"`
}

// Complete runs the completion sequence: generate the intake report,
// notify the team, then open the delivery phase by resetting the
// progress areas and seeding the KPI baseline. Only one completion runs
// at a time.
func (c *Controller) Complete(ctx context.Context) (*CompletionResult, error) {
	c.mu.Lock()
	if c.completing {
		c.mu.Unlock()
		return nil, ErrCompletionInProgress
	}
	c.completing = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.completing = false
		c.mu.Unlock()
	}()

	c.Flush()
	rec := c.manager.Snapshot()

	companyName, _ := rec.OfferAndEconomics["companyName"].(string)
	result := &CompletionResult{
		ClientID: rec.ClientID(),
		PDFName:  notify.ReportFileName(companyName),
	}

	pdf, err := c.reports.Generate(ctx, rec)
	if err != nil {
		// The delivery phase still opens so the team can work the
		// account while the report issue is sorted out.
		c.openDeliveryPhase(rec)
		return nil, fmt.Errorf("failed to generate report: %w", err)
	}
	result.PDF = pdf

	if c.notifier.IsConfigured() {
		sent := c.notifier.Send(ctx, rec, pdf)
		result.EmailSent = sent.Success
		result.EmailMessage = sent.Message
		if !sent.Success {
			c.logger.Warn("Completion email failed", zap.String("message", sent.Message))
		}
	} else {
		c.logger.Info("Email not configured, report available for download")
		result.DownloadFallback = true
	}

	c.openDeliveryPhase(rec)
	return result, nil
}

// openDeliveryPhase resets the progress areas and captures the KPI
// baseline from the intake answers.
func (c *Controller) openDeliveryPhase(rec *onboarding.Record) {
	c.dashboard.InitializeAreas()

	baseline := baselineFromSection(rec.KPITracking)
	if baseline[kpi.MetricCAC] == "" && baseline[kpi.MetricCostPerLead] == "" {
		return
	}
	c.kpis.InitializeBaseline(rec.ClientID(), baseline)
}

// baselineFromSection maps the intake's kpi_* answers onto the tracker's
// metric names.
func baselineFromSection(sec onboarding.Section) map[string]string {
	get := func(key string) string {
		v, _ := sec[key].(string)
		return v
	}
	return map[string]string{
		kpi.MetricCAC:                get("kpi_cac"),
		kpi.MetricCostPerLead:        get("kpi_cost_per_lead"),
		kpi.MetricSpeedToLead:        get("kpi_speed_to_lead"),
		kpi.MetricLeadToAppointment:  get("kpi_lead_to_appointment"),
		kpi.MetricClosingRate:        get("kpi_closing_rate"),
		kpi.MetricFollowupCompletion: get("kpi_followup_completion"),
	}
}
