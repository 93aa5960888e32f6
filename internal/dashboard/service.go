package dashboard

import (
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"energyplus/onboarding-portal/internal/kpi"
	"energyplus/onboarding-portal/internal/onboarding"
	"energyplus/onboarding-portal/internal/store"
)

// StorageKey is the store entry holding the progress areas.
const StorageKey = "clientProgress"

// Service tracks per-area delivery progress and assembles the client
// dashboard view.
type Service struct {
	mu      sync.Mutex
	store   *store.Store
	tracker *kpi.Tracker
	logger  *zap.Logger
}

func NewService(st *store.Store, tracker *kpi.Tracker, logger *zap.Logger) *Service {
	return &Service{
		store:   st,
		tracker: tracker,
		logger:  logger,
	}
}

// InitializeAreas resets every area to zero progress. Called when an
// onboarding completes and the delivery phase starts fresh.
func (s *Service) InitializeAreas() []Area {
	s.mu.Lock()
	defer s.mu.Unlock()

	areas := DefaultAreas()
	s.store.Set(StorageKey, areas)
	return areas
}

// Areas returns the current progress areas, defaulting to zero progress
// when nothing has been stored yet.
func (s *Service) Areas() []Area {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadAreas()
}

func (s *Service) loadAreas() []Area {
	var areas []Area
	if !s.store.Get(StorageKey, &areas) || len(areas) == 0 {
		return DefaultAreas()
	}
	return areas
}

// UpdateArea sets one area's progress; the status is derived from the new
// value.
func (s *Service) UpdateArea(id, progress int) error {
	if id < 1 || id > AreaCount {
		return fmt.Errorf("area %d out of range 1..%d", id, AreaCount)
	}
	if progress < 0 || progress > 100 {
		return fmt.Errorf("progress %d out of range 0..100", progress)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	areas := s.loadAreas()
	for i := range areas {
		if areas[i].ID == id {
			areas[i].Progress = progress
			areas[i].Status = StatusForProgress(progress)
		}
	}
	s.store.Set(StorageKey, areas)
	return nil
}

// OverallProgress is the rounded unweighted mean of all area progress
// values.
func (s *Service) OverallProgress() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return overall(s.loadAreas())
}

func overall(areas []Area) int {
	if len(areas) == 0 {
		return 0
	}
	sum := 0
	for _, a := range areas {
		sum += a.Progress
	}
	return int(math.Round(float64(sum) / float64(len(areas))))
}

// Summary is the client-facing dashboard view.
type Summary struct {
	ClientID        string              `json:"clientId"`
	Company         string              `json:"company"`
	Contact         string              `json:"contact"`
	Email           string              `json:"email"`
	Date            string              `json:"date"`
	Areas           []Area              `json:"areas"`
	OverallProgress int                 `json:"overallProgress"`
	KPIs            []kpi.ComparisonRow `json:"kpis"`
}

// Summary assembles the dashboard for a record and reporting period.
func (s *Service) Summary(rec *onboarding.Record, month string, week int) Summary {
	s.mu.Lock()
	areas := s.loadAreas()
	s.mu.Unlock()

	clientID := rec.ClientID()
	info := rec.OfferAndEconomics

	return Summary{
		ClientID:        clientID,
		Company:         stringField(info, "companyName"),
		Contact:         stringField(info, "clientName"),
		Email:           stringField(info, "clientEmail"),
		Date:            time.Now().Format("January 2, 2006"),
		Areas:           areas,
		OverallProgress: overall(areas),
		KPIs:            s.tracker.Comparison(clientID, month, week),
	}
}

func stringField(sec onboarding.Section, name string) string {
	if v, ok := sec[name].(string); ok && v != "" {
		return v
	}
	return "Not provided"
}
