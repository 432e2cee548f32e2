package app

import (
	"context"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/notexe/event-reminders/internal/auth"
	"github.com/notexe/event-reminders/internal/config"
	"github.com/notexe/event-reminders/internal/event"
	"github.com/notexe/event-reminders/internal/reminder"
	"github.com/notexe/event-reminders/internal/scheduler"
)

// App wires the event components together for a host process.
type App struct {
	Store    *event.Store
	Events   *event.Manager
	Verifier auth.Verifier

	cfg   *config.Config
	clock clockwork.Clock
	log   logrus.FieldLogger
}

func New(cfg *config.Config, clock clockwork.Clock, log logrus.FieldLogger) *App {
	store := event.NewStore(cfg.Storage.Path, log)

	return &App{
		Store:    store,
		Events:   event.NewManager(store, clock),
		Verifier: auth.NewStaticVerifier(nil),
		cfg:      cfg,
		clock:    clock,
		log:      log,
	}
}

// Reminders builds the sweeper and the scheduler that drives it. Reminders
// always go to the log, to Telegram when configured, and to any extra
// notifiers, such as a REPL that was built from a.Events.
func (a *App) Reminders(extra ...reminder.Notifier) (*reminder.Sweeper, *scheduler.Scheduler) {
	notifiers := reminder.Notifiers{reminder.NewLogNotifier(a.log)}
	if tg := a.cfg.Scheduler.Telegram; tg.Configured() {
		notifiers = append(notifiers, reminder.NewTelegramNotifier(tg.BotToken, tg.ChatID))
	}
	notifiers = append(notifiers, extra...)

	sweeper := reminder.NewSweeper(a.Store, notifiers, a.clock, a.log)
	sched := scheduler.New(func(ctx context.Context) {
		sweeper.Sweep(ctx)
	}, a.cfg.Scheduler, a.clock, a.log)

	return sweeper, sched
}
