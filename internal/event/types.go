package event

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultCategory is assigned to events created without a category.
const DefaultCategory = "General"

// dateTimeLayout is the canonical ISO-8601 UTC form with millisecond precision.
const dateTimeLayout = "2006-01-02T15:04:05.000Z"

// Event is a single user appointment with an optional reminder.
type Event struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	DateTime        time.Time `json:"dateTime"`
	Category        string    `json:"category"`
	ReminderMinutes int       `json:"reminderMinutes"`
	Reminded        bool      `json:"reminded"`
}

type eventJSON struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	DateTime        string  `json:"dateTime"`
	Category        string  `json:"category"`
	ReminderMinutes minutes `json:"reminderMinutes"`
	Reminded        bool    `json:"reminded"`
}

// minutes also reads the loose forms older files contain: null,
// fractional numbers and numeric strings such as "15".
type minutes int

func (m *minutes) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	switch v := v.(type) {
	case nil:
		*m = 0
	case float64:
		*m = minutes(v)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			*m = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid reminderMinutes %q", v)
		}
		*m = minutes(f)
	default:
		return fmt.Errorf("invalid reminderMinutes %s", data)
	}
	return nil
}

// MarshalJSON writes DateTime in the canonical millisecond UTC form.
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(eventJSON{
		ID:              e.ID,
		Name:            e.Name,
		Description:     e.Description,
		DateTime:        FormatDateTime(e.DateTime),
		Category:        e.Category,
		ReminderMinutes: minutes(e.ReminderMinutes),
		Reminded:        e.Reminded,
	})
}

// UnmarshalJSON accepts any RFC 3339 timestamp for dateTime.
func (e *Event) UnmarshalJSON(data []byte) error {
	var raw eventJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	dt, err := time.Parse(time.RFC3339Nano, raw.DateTime)
	if err != nil {
		return fmt.Errorf("event %q: invalid dateTime %q: %w", raw.ID, raw.DateTime, err)
	}

	*e = Event{
		ID:              raw.ID,
		Name:            raw.Name,
		Description:     raw.Description,
		DateTime:        dt.UTC(),
		Category:        raw.Category,
		ReminderMinutes: int(raw.ReminderMinutes),
		Reminded:        raw.Reminded,
	}
	return nil
}

// ReminderTime returns the instant the reminder window opens.
func (e Event) ReminderTime() time.Time {
	return e.DateTime.Add(-time.Duration(e.ReminderMinutes) * time.Minute)
}

// ReminderDue reports whether a reminder should fire at now:
// one was requested, it has not fired yet, and now lies in
// [DateTime - ReminderMinutes, DateTime).
func (e Event) ReminderDue(now time.Time) bool {
	if e.ReminderMinutes <= 0 || e.Reminded {
		return false
	}
	return !now.Before(e.ReminderTime()) && now.Before(e.DateTime)
}

// Document is the root persisted object: every user's events keyed by user ID.
type Document struct {
	Users map[string][]Event `json:"users"`

	// unreadable holds stored entries that did not decode as events.
	// They are written back as found, after the user's readable events.
	unreadable map[string][]json.RawMessage
}

// MarshalJSON writes readable events followed by any unreadable entries.
func (d Document) MarshalJSON() ([]byte, error) {
	users := make(map[string][]any, len(d.Users))
	for userID, events := range d.Users {
		entries := make([]any, 0, len(events))
		for _, e := range events {
			entries = append(entries, e)
		}
		users[userID] = entries
	}
	for userID, raws := range d.unreadable {
		for _, raw := range raws {
			users[userID] = append(users[userID], raw)
		}
	}

	return json.Marshal(struct {
		Users map[string][]any `json:"users"`
	}{Users: users})
}

// Unreadable reports how many stored entries of userID could not be decoded.
func (d *Document) Unreadable(userID string) int {
	return len(d.unreadable[userID])
}

func (d *Document) keepUnreadable(userID string, raw json.RawMessage) {
	if d.unreadable == nil {
		d.unreadable = make(map[string][]json.RawMessage)
	}
	d.unreadable[userID] = append(d.unreadable[userID], raw)
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{Users: make(map[string][]Event)}
}

// Fields holds the caller-supplied values for a new event.
// Zero Category and ReminderMinutes fall back to defaults.
type Fields struct {
	Name            string
	Description     string
	DateTime        time.Time
	Category        string
	ReminderMinutes int
}

// Filter narrows List results. The zero value matches everything.
type Filter struct {
	Category     string
	UpcomingOnly bool
}

// FormatDateTime renders t in the canonical stored form.
func FormatDateTime(t time.Time) string {
	return t.UTC().Format(dateTimeLayout)
}

// CanonicalDateTime truncates t to what survives a save/load cycle.
func CanonicalDateTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
