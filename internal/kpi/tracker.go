package kpi

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"energyplus/onboarding-portal/internal/store"
)

const storagePrefix = "kpi_"

// Tracker records baseline and weekly KPI figures per client.
type Tracker struct {
	mu     sync.Mutex
	store  *store.Store
	logger *zap.Logger
}

func NewTracker(st *store.Store, logger *zap.Logger) *Tracker {
	return &Tracker{
		store:  st,
		logger: logger,
	}
}

func (t *Tracker) key(clientID string) string {
	return storagePrefix + clientID
}

func (t *Tracker) load(clientID string) *Profile {
	var p Profile
	if !t.store.Get(t.key(clientID), &p) {
		return nil
	}
	if p.Baseline == nil {
		p.Baseline = map[string]string{}
	}
	if p.Weekly == nil {
		p.Weekly = map[string]WeeklySnapshot{}
	}
	return &p
}

// Profile returns the stored profile for a client, or nil when the client
// has never been tracked.
func (t *Tracker) Profile(clientID string) *Profile {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.load(clientID)
}

// InitializeBaseline captures the baseline metrics for a client. The first
// recorded baseline is permanent; later calls leave it untouched and
// return the existing profile.
func (t *Tracker) InitializeBaseline(clientID string, metrics map[string]string) *Profile {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := t.load(clientID)
	if p != nil && len(p.Baseline) > 0 {
		t.logger.Debug("Baseline already set", zap.String("clientId", clientID))
		return p
	}
	if p == nil {
		p = &Profile{
			ClientID: clientID,
			Baseline: map[string]string{},
			Weekly:   map[string]WeeklySnapshot{},
		}
	}
	for _, name := range MetricNames {
		p.Baseline[name] = metrics[name]
	}

	t.store.Set(t.key(clientID), p)
	return p
}

// RecordWeekly upserts one week's metrics. Re-reporting the same period
// replaces that period's snapshot, other periods and the baseline are
// untouched.
func (t *Tracker) RecordWeekly(clientID, month string, week int, metrics map[string]string) (*Profile, error) {
	if err := validatePeriod(month, week); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	p := t.load(clientID)
	if p == nil {
		p = &Profile{
			ClientID: clientID,
			Baseline: map[string]string{},
			Weekly:   map[string]WeeklySnapshot{},
		}
	}

	snap := WeeklySnapshot{
		Metrics:   map[string]string{},
		UpdatedAt: time.Now().UTC(),
	}
	for _, name := range MetricNames {
		if v, ok := metrics[name]; ok {
			snap.Metrics[name] = v
		}
	}

	p.Weekly[PeriodKey(month, week)] = snap
	t.store.Set(t.key(clientID), p)
	return p, nil
}

// GetWeekly returns one period's snapshot.
func (t *Tracker) GetWeekly(clientID, month string, week int) (WeeklySnapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := t.load(clientID)
	if p == nil {
		return WeeklySnapshot{}, false
	}
	snap, ok := p.Weekly[PeriodKey(month, week)]
	return snap, ok
}

// HistoryEntry is one weekly snapshot labeled with its period key.
type HistoryEntry struct {
	Period    string            `json:"period"`
	Metrics   map[string]string `json:"metrics"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// History returns all weekly snapshots for a client ordered by when they
// were reported, oldest first.
func (t *Tracker) History(clientID string) []HistoryEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := t.load(clientID)
	if p == nil {
		return []HistoryEntry{}
	}

	entries := make([]HistoryEntry, 0, len(p.Weekly))
	for period, snap := range p.Weekly {
		entries = append(entries, HistoryEntry{
			Period:    period,
			Metrics:   snap.Metrics,
			UpdatedAt: snap.UpdatedAt,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].UpdatedAt.Equal(entries[j].UpdatedAt) {
			return entries[i].Period < entries[j].Period
		}
		return entries[i].UpdatedAt.Before(entries[j].UpdatedAt)
	})
	return entries
}

// ComparisonRow pairs one metric's baseline and current values with its
// improvement indicator for the client dashboard.
type ComparisonRow struct {
	Name          string     `json:"name"`
	Label         string     `json:"label"`
	Baseline      string     `json:"baseline"`
	Current       string     `json:"current"`
	LowerIsBetter bool       `json:"lowerIsBetter"`
	Indicator     *Indicator `json:"indicator,omitempty"`
}

// Comparison builds the metric table for one period. The current value
// falls back to the baseline when the week has no entry for a metric.
func (t *Tracker) Comparison(clientID, month string, week int) []ComparisonRow {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := t.load(clientID)
	if p == nil {
		return []ComparisonRow{}
	}
	snap := p.Weekly[PeriodKey(month, week)]

	rows := make([]ComparisonRow, 0, len(MetricDefs))
	for _, def := range MetricDefs {
		row := ComparisonRow{
			Name:          def.Name,
			Label:         def.Label,
			Baseline:      p.Baseline[def.Name],
			Current:       snap.Metrics[def.Name],
			LowerIsBetter: def.LowerIsBetter,
		}
		if row.Current == "" {
			row.Current = row.Baseline
		} else if ind, ok := Improvement(row.Baseline, row.Current, def.LowerIsBetter); ok {
			row.Indicator = &ind
		}
		rows = append(rows, row)
	}
	return rows
}

// Clients lists every client with a KPI profile.
func (t *Tracker) Clients() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	keys := t.store.Keys(storagePrefix)
	clients := make([]string, 0, len(keys))
	for _, k := range keys {
		clients = append(clients, strings.TrimPrefix(k, storagePrefix))
	}
	return clients
}

func validatePeriod(month string, week int) error {
	if _, err := time.Parse("2006-01", month); err != nil {
		return fmt.Errorf("invalid month %q, expected YYYY-MM", month)
	}
	if week < 1 || week > 5 {
		return fmt.Errorf("week %d out of range 1..5", week)
	}
	return nil
}
