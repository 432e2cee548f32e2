package event

import (
	"sort"

	"github.com/jonboulle/clockwork"
)

// Manager implements the event operations on top of a Store.
type Manager struct {
	store *Store
	clock clockwork.Clock
	newID IDFunc
}

// NewManager creates a Manager. The clock decides what "upcoming" means.
func NewManager(store *Store, clock clockwork.Clock) *Manager {
	return &Manager{
		store: store,
		clock: clock,
		newID: NewID,
	}
}

// withIDFunc replaces the identifier generator.
func (m *Manager) withIDFunc(fn IDFunc) *Manager {
	m.newID = fn
	return m
}

// Create appends a new event to the user's sequence and persists the document.
func (m *Manager) Create(userID string, f Fields) Event {
	e := Event{
		ID:              m.newID(),
		Name:            f.Name,
		Description:     f.Description,
		DateTime:        CanonicalDateTime(f.DateTime),
		Category:        f.Category,
		ReminderMinutes: f.ReminderMinutes,
		Reminded:        false,
	}
	if e.Category == "" {
		e.Category = DefaultCategory
	}
	if e.ReminderMinutes < 0 {
		e.ReminderMinutes = 0
	}

	m.store.Update(func(doc *Document) {
		doc.Users[userID] = append(doc.Users[userID], e)
	})
	return e
}

// List returns the user's events matching filter, sorted by DateTime.
// The returned slice is never nil and never aliases stored state.
func (m *Manager) List(userID string, filter Filter) []Event {
	doc := m.store.Load()
	stored := doc.Users[userID]

	now := m.clock.Now()
	events := make([]Event, 0, len(stored))
	for _, e := range stored {
		if filter.Category != "" && e.Category != filter.Category {
			continue
		}
		if filter.UpcomingOnly && !e.DateTime.After(now) {
			continue
		}
		events = append(events, e)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].DateTime.Before(events[j].DateTime)
	})
	return events
}

// Get looks an event up by ID within the user's sequence.
func (m *Manager) Get(userID, id string) (Event, bool) {
	doc := m.store.Load()
	for _, e := range doc.Users[userID] {
		if e.ID == id {
			return e, true
		}
	}
	return Event{}, false
}

// MarkReminded flips the reminded flag of a single event.
// It reports false if the event does not exist or was already reminded.
func (m *Manager) MarkReminded(userID, id string) bool {
	var marked bool
	m.store.Update(func(doc *Document) {
		events := doc.Users[userID]
		for i := range events {
			if events[i].ID == id && !events[i].Reminded {
				events[i].Reminded = true
				marked = true
				return
			}
		}
	})
	return marked
}
