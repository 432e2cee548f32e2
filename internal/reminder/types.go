package reminder

import (
	"context"
	"time"

	"github.com/notexe/event-reminders/internal/event"
)

// Reminder is one fired notification for a user's event.
type Reminder struct {
	UserID  string      `json:"user_id"`
	Event   event.Event `json:"event"`
	FiredAt time.Time   `json:"fired_at"`
}

// Notifier delivers a fired reminder somewhere.
type Notifier interface {
	Notify(ctx context.Context, r Reminder) error
}

// ForUser returns the reminders that belong to userID, in order.
func ForUser(reminders []Reminder, userID string) []Reminder {
	var own []Reminder
	for _, r := range reminders {
		if r.UserID == userID {
			own = append(own, r)
		}
	}
	return own
}
