package reminder

import (
	"context"
	"sort"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/notexe/event-reminders/internal/event"
)

// Sweeper scans every user's events and fires reminders whose window is open.
type Sweeper struct {
	store    *event.Store
	notifier Notifier
	clock    clockwork.Clock
	log      logrus.FieldLogger
}

// NewSweeper creates a Sweeper. A nil notifier logs reminders only.
func NewSweeper(store *event.Store, notifier Notifier, clock clockwork.Clock, log logrus.FieldLogger) *Sweeper {
	if notifier == nil {
		notifier = NewLogNotifier(log)
	}
	return &Sweeper{
		store:    store,
		notifier: notifier,
		clock:    clock,
		log:      log,
	}
}

// Sweep runs one full scan-and-persist cycle and returns the reminders it fired.
//
// The document is loaded and saved once. Each due event has its reminded flag
// set before the save, so an event fires at most once even if delivery fails.
// Events whose window closed before any sweep ran are never reminded.
func (s *Sweeper) Sweep(ctx context.Context) []Reminder {
	now := s.clock.Now()

	var fired []Reminder
	s.store.Update(func(doc *event.Document) {
		users := make([]string, 0, len(doc.Users))
		for userID := range doc.Users {
			users = append(users, userID)
		}
		sort.Strings(users)

		for _, userID := range users {
			events := doc.Users[userID]
			for i := range events {
				if !events[i].ReminderDue(now) {
					continue
				}
				events[i].Reminded = true
				fired = append(fired, Reminder{
					UserID:  userID,
					Event:   events[i],
					FiredAt: now,
				})
			}
		}
	})

	for _, r := range fired {
		if err := s.notifier.Notify(ctx, r); err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"user":  r.UserID,
				"event": r.Event.ID,
			}).Error("failed to deliver reminder")
		}
	}

	s.log.WithField("fired", len(fired)).Debug("reminder sweep finished")
	return fired
}
