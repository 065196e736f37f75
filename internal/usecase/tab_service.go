package usecase

import (
	"fmt"
	"sync"

	"github.com/kickoffhq/matchday/internal/platform/logging"
)

// CategoryCounter reports which status categories are non-empty for a day.
// Implemented by MatchStoreService.
type CategoryCounter interface {
	Counts(day Day) CategoryCounts
}

// TabState is the current day/tab selection.
type TabState struct {
	SelectedDay    Day  `json:"selectedDay"`
	ActiveTab      Tab  `json:"activeTab"`
	ManualOverride bool `json:"manualOverride"`
}

// TabService chooses which status tab is appropriate for the selected day
// and protects an explicit user choice from being flapped away by polling.
//
// The appropriate tab is computed once at construction and again only on a
// day change; it is never recomputed behind the viewer's back, so a live
// match finishing does not yank them off the tab they are reading.
type TabService struct {
	counter CategoryCounter
	logger  *logging.Logger

	mu    sync.Mutex
	state TabState
}

func NewTabService(counter CategoryCounter, logger *logging.Logger) *TabService {
	if logger == nil {
		logger = logging.Default()
	}
	s := &TabService{
		counter: counter,
		logger:  logger,
	}
	s.state = TabState{
		SelectedDay: DayToday,
		ActiveTab:   DetermineAppropriateTab(DayToday, counter.Counts(DayToday)),
	}
	return s
}

// DetermineAppropriateTab applies the product rules: past days are for
// review only, future days for planning, and today prefers whatever is
// happening right now.
func DetermineAppropriateTab(day Day, counts CategoryCounts) Tab {
	switch day {
	case DayYesterday:
		return TabFinished
	case DayTomorrow:
		return TabScheduled
	default:
		switch {
		case counts.Live > 0:
			return TabLive
		case counts.Scheduled > 0:
			return TabScheduled
		case counts.Finished > 0:
			return TabFinished
		default:
			return TabScheduled
		}
	}
}

// State returns the current selection.
func (s *TabService) State() TabState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ActiveTab is a convenience for the polling cadence decision.
func (s *TabService) ActiveTab() Tab {
	return s.State().ActiveTab
}

// SelectDay switches the day, recomputes the appropriate tab and clears any
// manual override.
func (s *TabService) SelectDay(day Day) (TabState, error) {
	if !day.Valid() {
		return TabState{}, fmt.Errorf("%w: unknown day %q", ErrInvalidInput, day)
	}

	tab := DetermineAppropriateTab(day, s.counter.Counts(day))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = TabState{
		SelectedDay: day,
		ActiveTab:   tab,
	}
	return s.state, nil
}

// SelectTab records an explicit tab click. The override flag keeps the
// periodic refresh from ever changing the tab underneath the viewer.
func (s *TabService) SelectTab(tab Tab) (TabState, error) {
	if !tab.Valid() {
		return TabState{}, fmt.Errorf("%w: unknown tab %q", ErrInvalidInput, tab)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ActiveTab = tab
	s.state.ManualOverride = true
	return s.state, nil
}
