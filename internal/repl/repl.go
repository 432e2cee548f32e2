package repl

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/chzyer/readline"

	"github.com/notexe/event-reminders/internal/auth"
	"github.com/notexe/event-reminders/internal/config"
	"github.com/notexe/event-reminders/internal/event"
	"github.com/notexe/event-reminders/internal/reminder"
	"github.com/notexe/event-reminders/internal/ui"
)

// Sweeper runs an on-demand reminder check.
type Sweeper interface {
	Sweep(ctx context.Context) []reminder.Reminder
}

type REPL struct {
	events    *event.Manager
	verifier  auth.Verifier
	sweeper   Sweeper
	config    *config.Config
	rl        *readline.Instance
	out       io.Writer
	formatter *ui.Formatter
	status    *ui.StatusDisplay

	mu     sync.RWMutex
	userID string
}

func NewREPL(events *event.Manager, verifier auth.Verifier, cfg *config.Config) (*REPL, error) {
	rl, err := setupReadline()
	if err != nil {
		return nil, fmt.Errorf("failed to setup readline: %w", err)
	}

	r := newREPL(events, verifier, cfg, rl.Stdout())
	r.rl = rl
	return r, nil
}

func newREPL(events *event.Manager, verifier auth.Verifier, cfg *config.Config, out io.Writer) *REPL {
	formatter := ui.NewFormatter(cfg.UI.ColoredOutput)

	return &REPL{
		events:    events,
		verifier:  verifier,
		config:    cfg,
		out:       out,
		formatter: formatter,
		status:    ui.NewStatusDisplay(out, formatter, true),
	}
}

// SetSweeper enables the /check command.
func (r *REPL) SetSweeper(s Sweeper) {
	r.sweeper = s
}

func (r *REPL) Start(ctx context.Context) error {
	defer r.rl.Close()

	r.displayWelcome()

	for {
		r.rl.SetPrompt(r.formatter.FormatPrompt(r.currentUser()))

		input, err := r.readInput()
		if err != nil {
			if sessionEnded(err) {
				fmt.Fprintln(r.out, "\nGoodbye!")
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		if input == "" {
			continue
		}

		isCommand, command, args := r.parseCommand(input)
		if !isCommand {
			r.displayError(fmt.Errorf("commands start with / (type /help for available commands)"))
			continue
		}

		if command == "/quit" || command == "/exit" || command == "/q" {
			fmt.Fprintln(r.out, "\nGoodbye!")
			return nil
		}

		if err := r.handleCommand(ctx, command, args); err != nil {
			r.displayError(err)
		}
	}
}

func (r *REPL) Stop() {
	if r.rl != nil {
		r.rl.Close()
	}
}

// Notify implements reminder.Notifier: reminders for the logged-in user
// are printed above the prompt.
func (r *REPL) Notify(_ context.Context, rem reminder.Reminder) error {
	if userID := r.currentUser(); userID == "" || userID != rem.UserID {
		return nil
	}
	fmt.Fprintln(r.out, r.formatter.FormatReminder(rem))
	return nil
}

func (r *REPL) currentUser() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.userID
}

func (r *REPL) setUser(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.userID = userID
}

func (r *REPL) requireUser() (string, error) {
	userID := r.currentUser()
	if userID == "" {
		return "", errNotLoggedIn
	}
	return userID, nil
}
