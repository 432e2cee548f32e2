package reminder

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/notexe/event-reminders/internal/event"
)

var start = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu    sync.Mutex
	got   []Reminder
	err   error
	calls int
}

func (n *recordingNotifier) Notify(_ context.Context, r Reminder) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	n.got = append(n.got, r)
	return n.err
}

type fakeClock interface {
	clockwork.Clock
	Advance(d time.Duration)
}

type fixture struct {
	clock    fakeClock
	store    *event.Store
	manager  *event.Manager
	notifier *recordingNotifier
	sweeper  *Sweeper
	hook     *logtest.Hook
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	clock := clockwork.NewFakeClockAt(start)
	store := event.NewStore(filepath.Join(t.TempDir(), "events.json"), log)
	notifier := &recordingNotifier{}

	return &fixture{
		clock:    clock,
		store:    store,
		manager:  event.NewManager(store, clock),
		notifier: notifier,
		sweeper:  NewSweeper(store, notifier, clock, log),
		hook:     hook,
	}
}

func (f *fixture) get(t *testing.T, userID, id string) event.Event {
	t.Helper()
	e, ok := f.manager.Get(userID, id)
	require.True(t, ok)
	return e
}

func TestSweepFiresInsideWindow(t *testing.T) {
	f := newFixture(t)
	e := f.manager.Create("user1", event.Fields{
		Name:            "Standup",
		DateTime:        start.Add(30 * time.Second),
		ReminderMinutes: 1,
	})

	fired := f.sweeper.Sweep(context.Background())
	require.Len(t, fired, 1)
	require.Equal(t, "user1", fired[0].UserID)
	require.Equal(t, e.ID, fired[0].Event.ID)
	require.True(t, fired[0].Event.Reminded)
	require.Equal(t, start, fired[0].FiredAt)
	require.True(t, f.get(t, "user1", e.ID).Reminded)

	// Never fires twice and never flips back.
	f.clock.Advance(10 * time.Second)
	require.Empty(t, f.sweeper.Sweep(context.Background()))
	f.clock.Advance(time.Hour)
	require.Empty(t, f.sweeper.Sweep(context.Background()))
	require.True(t, f.get(t, "user1", e.ID).Reminded)
	require.Equal(t, 1, f.notifier.calls)
}

func TestSweepWaitsForWindow(t *testing.T) {
	f := newFixture(t)
	e := f.manager.Create("user1", event.Fields{
		Name:            "Lunch",
		DateTime:        start.Add(20 * time.Minute),
		ReminderMinutes: 15,
	})

	require.Empty(t, f.sweeper.Sweep(context.Background()))
	require.False(t, f.get(t, "user1", e.ID).Reminded)

	f.clock.Advance(4 * time.Minute)
	require.Empty(t, f.sweeper.Sweep(context.Background()))

	f.clock.Advance(time.Minute)
	fired := f.sweeper.Sweep(context.Background())
	require.Len(t, fired, 1)
	require.True(t, f.get(t, "user1", e.ID).Reminded)
}

func TestSweepSkipsElapsedAndUnrequested(t *testing.T) {
	f := newFixture(t)
	past := f.manager.Create("user1", event.Fields{
		Name:            "Missed",
		DateTime:        start.Add(-time.Second),
		ReminderMinutes: 60,
	})
	none := f.manager.Create("user1", event.Fields{
		Name:     "No reminder",
		DateTime: start.Add(30 * time.Second),
	})

	for i := 0; i < 3; i++ {
		require.Empty(t, f.sweeper.Sweep(context.Background()))
		f.clock.Advance(time.Minute)
	}

	require.False(t, f.get(t, "user1", past.ID).Reminded)
	require.False(t, f.get(t, "user1", none.ID).Reminded)
	require.Zero(t, f.notifier.calls)
}

func TestSweepAcrossUsers(t *testing.T) {
	f := newFixture(t)
	f.manager.Create("user2", event.Fields{Name: "b", DateTime: start.Add(time.Minute), ReminderMinutes: 5})
	f.manager.Create("user1", event.Fields{Name: "a", DateTime: start.Add(time.Minute), ReminderMinutes: 5})
	f.manager.Create("user1", event.Fields{Name: "later", DateTime: start.Add(time.Hour), ReminderMinutes: 5})

	fired := f.sweeper.Sweep(context.Background())
	require.Len(t, fired, 2)
	require.Equal(t, "user1", fired[0].UserID)
	require.Equal(t, "user2", fired[1].UserID)
}

func TestSweepDeliveryFailureStillMarks(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("telegram down")
	e := f.manager.Create("user1", event.Fields{Name: "x", DateTime: start.Add(time.Minute), ReminderMinutes: 2})

	require.Len(t, f.sweeper.Sweep(context.Background()), 1)
	require.True(t, f.get(t, "user1", e.ID).Reminded)

	var logged bool
	for _, entry := range f.hook.AllEntries() {
		if entry.Level == logrus.ErrorLevel && entry.Message == "failed to deliver reminder" {
			logged = true
			require.Equal(t, e.ID, entry.Data["event"])
		}
	}
	require.True(t, logged)
}

func TestSweepEmptyStorePersistsDocument(t *testing.T) {
	f := newFixture(t)
	require.Empty(t, f.sweeper.Sweep(context.Background()))
	require.FileExists(t, f.store.Path())
}

func TestSweeperDefaultNotifierLogs(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	clock := clockwork.NewFakeClockAt(start)
	store := event.NewStore(filepath.Join(t.TempDir(), "events.json"), log)
	manager := event.NewManager(store, clock)
	e := manager.Create("user1", event.Fields{Name: "Standup", DateTime: start.Add(time.Minute), ReminderMinutes: 1})

	NewSweeper(store, nil, clock, log).Sweep(context.Background())

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	require.Equal(t, logrus.InfoLevel, entry.Level)
	require.Equal(t, "Reminder for user1: Standup is happening soon!", entry.Message)
	require.Equal(t, e.ID, entry.Data["event"])
	require.Equal(t, "user1", entry.Data["user"])
}

func TestForUser(t *testing.T) {
	fired := []Reminder{
		{UserID: "user2", Event: event.Event{ID: "a"}},
		{UserID: "user1", Event: event.Event{ID: "b"}},
		{UserID: "user2", Event: event.Event{ID: "c"}},
	}

	own := ForUser(fired, "user2")
	require.Len(t, own, 2)
	require.Equal(t, "a", own[0].Event.ID)
	require.Equal(t, "c", own[1].Event.ID)

	require.Empty(t, ForUser(fired, "user3"))
	require.Empty(t, ForUser(nil, "user1"))
}
