package onboarding

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"energyplus/onboarding-portal/internal/store"
)

// StorageKey is the store entry holding the onboarding record.
const StorageKey = "energyplus_onboarding_data"

// Manager owns the onboarding record: it loads it once, serves reads and
// writes from memory, and persists after every mutation. When the store is
// unavailable the manager keeps working on the in-memory copy, so a failed
// write loses durability but never the session.
type Manager struct {
	mu     sync.Mutex
	store  *store.Store
	logger *zap.Logger
	record *Record
}

// NewManager loads the stored record, seeding a default one when the store
// is empty or the stored entry is unreadable.
func NewManager(st *store.Store, logger *zap.Logger) *Manager {
	m := &Manager{
		store:  st,
		logger: logger,
	}

	var rec Record
	if st.Get(StorageKey, &rec) {
		normalize(&rec)
		m.record = &rec
	} else {
		m.record = DefaultRecord()
		m.persist()
	}

	return m
}

// normalize backfills fields a hand-edited or older record may be missing.
func normalize(rec *Record) {
	if rec.CurrentStep < 1 {
		rec.CurrentStep = 1
	}
	if rec.CurrentStep > StepCount {
		rec.CurrentStep = StepCount
	}
	if rec.CompletedSteps == nil {
		rec.CompletedSteps = []int{}
	}

	defaults := DefaultRecord()
	for _, name := range SectionNames {
		sec := rec.section(name)
		if *sec == nil {
			*sec = Section{}
		}
		for field, empty := range *defaults.section(name) {
			if _, ok := (*sec)[field]; !ok {
				(*sec)[field] = empty
			}
		}
	}
}

// persist writes the current record; callers hold the lock.
func (m *Manager) persist() bool {
	m.record.LastUpdated = time.Now().UTC()
	if !m.store.Set(StorageKey, m.record) {
		m.logger.Warn("Onboarding record not persisted, continuing in memory")
		return false
	}
	return true
}

// Snapshot returns a deep copy of the current record.
func (m *Manager) Snapshot() *Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.copyRecord()
}

func (m *Manager) copyRecord() *Record {
	cp := *m.record
	cp.CompletedSteps = slices.Clone(m.record.CompletedSteps)
	for _, name := range SectionNames {
		src := *m.record.section(name)
		dst := make(Section, len(src))
		for k, v := range src {
			dst[k] = v
		}
		*cp.section(name) = dst
	}
	return &cp
}

// GetSection returns a copy of the named section.
func (m *Manager) GetSection(name string) (Section, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sec := m.record.section(name)
	if sec == nil {
		return nil, fmt.Errorf("unknown section %q", name)
	}

	cp := make(Section, len(*sec))
	for k, v := range *sec {
		cp[k] = v
	}
	return cp, nil
}

// UpdateSection merges the given fields into the named section. Fields not
// present in the patch keep their current values.
func (m *Manager) UpdateSection(name string, patch Section) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sec := m.record.section(name)
	if sec == nil {
		return fmt.Errorf("unknown section %q", name)
	}

	for k, v := range patch {
		(*sec)[k] = v
	}
	m.persist()
	return nil
}

// CurrentStep returns the step the wizard is on, 1-based.
func (m *Manager) CurrentStep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.record.CurrentStep
}

// SetCurrentStep moves the wizard position without touching completion state.
func (m *Manager) SetCurrentStep(step int) error {
	if step < 1 || step > StepCount {
		return fmt.Errorf("step %d out of range 1..%d", step, StepCount)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.record.CurrentStep = step
	m.persist()
	return nil
}

// CompleteStep marks a step completed. Completing an already completed step
// is a no-op.
func (m *Manager) CompleteStep(step int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if slices.Contains(m.record.CompletedSteps, step) {
		return
	}
	m.record.CompletedSteps = append(m.record.CompletedSteps, step)
	m.persist()
}

// IsStepCompleted reports whether the step has been marked completed.
func (m *Manager) IsStepCompleted(step int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Contains(m.record.CompletedSteps, step)
}

// CompletionPercentage returns the rounded completion percentage.
// Completion is measured against 6 steps.
func (m *Manager) CompletionPercentage() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int(math.Round(float64(len(m.record.CompletedSteps)) / 6 * 100))
}

// Reset discards all answers and starts over from a fresh default record.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.store.Delete(StorageKey)
	m.record = DefaultRecord()
	m.persist()
}

// ExportJSON renders the record as indented JSON together with a
// timestamped download filename.
func (m *Manager) ExportJSON() ([]byte, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.MarshalIndent(m.record, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("failed to export onboarding record: %w", err)
	}

	filename := fmt.Sprintf("energyplus-onboarding-%d.json", time.Now().UnixMilli())
	return data, filename, nil
}

// ImportJSON replaces the current record with a previously exported one.
func (m *Manager) ImportJSON(data []byte) error {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("failed to parse onboarding record: %w", err)
	}
	normalize(&rec)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.record = &rec
	m.persist()
	return nil
}
