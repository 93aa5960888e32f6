package delivery

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"energyplus/onboarding-portal/internal/dashboard"
	"energyplus/onboarding-portal/internal/onboarding"
	"energyplus/onboarding-portal/internal/store"
)

const storagePrefix = "delivery_"

// Update is one delivery log entry. Entries are append-only; nothing in
// the portal edits or removes a posted update.
type Update struct {
	ID          uuid.UUID `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
	AddedBy     string    `json:"addedBy"`
}

// AreaRecord is one area's delivery state within a reporting week.
type AreaRecord struct {
	Updates  []Update `json:"updates"`
	Progress int      `json:"progress"`
}

// ClientInfo identifies an onboarded client for the admin surface.
type ClientInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Tracker records the team's weekly delivery updates per client and area.
// Posting an update also pushes the area's progress into the dashboard.
type Tracker struct {
	mu        sync.Mutex
	store     *store.Store
	dashboard *dashboard.Service
	logger    *zap.Logger
}

func NewTracker(st *store.Store, dash *dashboard.Service, logger *zap.Logger) *Tracker {
	return &Tracker{
		store:     st,
		dashboard: dash,
		logger:    logger,
	}
}

func weekKey(clientID, month string, week int) string {
	return storagePrefix + clientID + "_" + month + "_week" + strconv.Itoa(week)
}

func areaKey(areaID int) string {
	return "area" + strconv.Itoa(areaID)
}

// UpdateRequest carries one new delivery update.
type UpdateRequest struct {
	ClientID    string    `json:"clientId"`
	Month       string    `json:"month"`
	Week        int       `json:"week"`
	AreaID      int       `json:"areaId"`
	Description string    `json:"description"`
	AddedBy     string    `json:"addedBy"`
	Progress    int       `json:"progress"`
	Timestamp   time.Time `json:"timestamp"`
}

// RecordUpdate appends a delivery update and sets the area's progress for
// the week. The progress scalar also feeds the client dashboard.
func (t *Tracker) RecordUpdate(req UpdateRequest) (Update, error) {
	if strings.TrimSpace(req.Description) == "" {
		return Update{}, fmt.Errorf("description is required")
	}
	if req.AreaID < 1 || req.AreaID > dashboard.AreaCount {
		return Update{}, fmt.Errorf("area %d out of range 1..%d", req.AreaID, dashboard.AreaCount)
	}
	if req.Progress < 0 || req.Progress > 100 {
		return Update{}, fmt.Errorf("progress %d out of range 0..100", req.Progress)
	}
	if _, err := time.Parse("2006-01", req.Month); err != nil {
		return Update{}, fmt.Errorf("invalid month %q, expected YYYY-MM", req.Month)
	}
	if req.Week < 1 || req.Week > 5 {
		return Update{}, fmt.Errorf("week %d out of range 1..5", req.Week)
	}

	update := Update{
		ID:          uuid.New(),
		Timestamp:   req.Timestamp,
		Description: strings.TrimSpace(req.Description),
		AddedBy:     strings.TrimSpace(req.AddedBy),
	}
	if update.Timestamp.IsZero() {
		update.Timestamp = time.Now().UTC()
	}
	if update.AddedBy == "" {
		update.AddedBy = "Admin"
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	key := weekKey(req.ClientID, req.Month, req.Week)
	week := map[string]AreaRecord{}
	t.store.Get(key, &week)

	area := week[areaKey(req.AreaID)]
	area.Updates = append(area.Updates, update)
	area.Progress = req.Progress
	week[areaKey(req.AreaID)] = area

	t.store.Set(key, week)

	if err := t.dashboard.UpdateArea(req.AreaID, req.Progress); err != nil {
		t.logger.Warn("Failed to push progress to dashboard", zap.Error(err))
	}

	return update, nil
}

// Week returns all six area records for a reporting week, with each
// area's updates ordered newest first.
func (t *Tracker) Week(clientID, month string, week int) map[string]AreaRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	stored := map[string]AreaRecord{}
	t.store.Get(weekKey(clientID, month, week), &stored)

	out := make(map[string]AreaRecord, dashboard.AreaCount)
	for id := 1; id <= dashboard.AreaCount; id++ {
		area := stored[areaKey(id)]
		if area.Updates == nil {
			area.Updates = []Update{}
		} else {
			area.Updates = sortedNewestFirst(area.Updates)
		}
		out[areaKey(id)] = area
	}
	return out
}

// ListUpdates returns one area's updates for a week, newest first.
func (t *Tracker) ListUpdates(clientID, month string, week, areaID int) ([]Update, error) {
	if areaID < 1 || areaID > dashboard.AreaCount {
		return nil, fmt.Errorf("area %d out of range 1..%d", areaID, dashboard.AreaCount)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	stored := map[string]AreaRecord{}
	t.store.Get(weekKey(clientID, month, week), &stored)
	return sortedNewestFirst(stored[areaKey(areaID)].Updates), nil
}

func sortedNewestFirst(updates []Update) []Update {
	out := make([]Update, len(updates))
	copy(out, updates)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// Clients lists onboarded clients that captured an email, scanning every
// stored onboarding record.
func (t *Tracker) Clients() []ClientInfo {
	t.mu.Lock()
	defer t.mu.Unlock()

	var clients []ClientInfo
	for _, key := range t.store.Keys("energyplus_onboarding_") {
		var rec onboarding.Record
		if !t.store.Get(key, &rec) {
			continue
		}

		email, _ := rec.OfferAndEconomics["clientEmail"].(string)
		if email == "" {
			continue
		}

		name, _ := rec.OfferAndEconomics["companyName"].(string)
		if name == "" {
			name, _ = rec.OfferAndEconomics["clientName"].(string)
		}
		if name == "" {
			name = "Unnamed Client"
		}

		clients = append(clients, ClientInfo{ID: email, Name: name, Email: email})
	}
	return clients
}
