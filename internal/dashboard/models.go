package dashboard

import "time"

// Area is one of the six delivery areas the team works through after
// onboarding. IDs are fixed 1..6 and line up with the intake sections.
type Area struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Progress int    `json:"progress"`
	Status   string `json:"status"`
}

// AreaCount is the number of delivery areas.
const AreaCount = 6

// AreaNames maps area IDs to display names.
var AreaNames = map[int]string{
	1: "Offer & Economics",
	2: "Lead Flow",
	3: "Appointment Flow",
	4: "Deal Flow",
	5: "Team Performance",
	6: "Systems & Access",
}

// StatusAwaitingReview is the status every area starts in.
const StatusAwaitingReview = "Awaiting team review..."

// DefaultAreas returns all six areas at zero progress.
func DefaultAreas() []Area {
	areas := make([]Area, 0, AreaCount)
	for id := 1; id <= AreaCount; id++ {
		areas = append(areas, Area{
			ID:       id,
			Name:     AreaNames[id],
			Progress: 0,
			Status:   StatusAwaitingReview,
		})
	}
	return areas
}

// StatusForProgress maps a progress value to its display status.
func StatusForProgress(progress int) string {
	switch {
	case progress == 0:
		return StatusAwaitingReview
	case progress < 25:
		return "Initial analysis in progress..."
	case progress < 50:
		return "Implementation underway..."
	case progress < 75:
		return "Active optimization..."
	case progress < 100:
		return "Finalizing..."
	default:
		return "Complete!"
	}
}

// SimulationEvent is one step of the demo progress playback.
type SimulationEvent struct {
	At       time.Duration `json:"at"`
	AreaID   int           `json:"areaId"`
	Progress int           `json:"progress"`
	Status   string        `json:"status"`
}

// SimulationEvents returns the demo playback script: a fixed sequence of
// area updates spaced two seconds apart, ending with every area complete.
// Callers decide whether and how to apply it; nothing here mutates state.
func SimulationEvents() []SimulationEvent {
	script := []struct {
		area     int
		progress int
		status   string
	}{
		{1, 25, "Team reviewing your offer structure..."},
		{2, 15, "Analyzing lead generation channels..."},
		{1, 50, "Optimizing pricing strategy..."},
		{3, 30, "Setting up appointment automation..."},
		{2, 40, "Creating content calendar..."},
		{4, 20, "Reviewing sales scripts..."},
		{1, 75, "Finalizing offer optimization..."},
		{5, 35, "Assessing team structure..."},
		{3, 60, "Implementing booking system..."},
		{6, 45, "Integrating core systems..."},
		{2, 70, "Launching lead campaigns..."},
		{4, 55, "Training on new sales process..."},
		{1, 100, "Offer optimization complete!"},
		{5, 65, "Team training in progress..."},
		{3, 85, "Fine-tuning appointment flow..."},
		{6, 80, "Finalizing system integrations..."},
		{2, 100, "Lead flow optimized!"},
		{4, 90, "Deal flow performing well..."},
		{3, 100, "Appointment system live!"},
		{5, 100, "Team optimization complete!"},
		{6, 100, "All systems integrated!"},
		{4, 100, "Deal flow maximized!"},
	}

	events := make([]SimulationEvent, 0, len(script))
	for i, s := range script {
		events = append(events, SimulationEvent{
			At:       time.Duration(i+1) * 2 * time.Second,
			AreaID:   s.area,
			Progress: s.progress,
			Status:   s.status,
		})
	}
	return events
}
