package repl

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/notexe/event-reminders/internal/auth"
	"github.com/notexe/event-reminders/internal/event"
	"github.com/notexe/event-reminders/internal/reminder"
)

var errNotLoggedIn = errors.New("not logged in (use /login <user> <password>)")

// localLayout is accepted alongside RFC 3339 and read in local time.
const localLayout = "2006-01-02 15:04"

func (r *REPL) handleCommand(ctx context.Context, command, args string) error {
	switch command {
	case "/help", "/h":
		r.displayHelp()
		return nil

	case "/login":
		return r.handleLogin(args)

	case "/logout":
		r.setUser("")
		r.displaySystem("Logged out.")
		return nil

	case "/whoami":
		userID, err := r.requireUser()
		if err != nil {
			return err
		}
		r.displayInfo(fmt.Sprintf("Logged in as %s.", userID))
		return nil

	case "/add", "/a":
		return r.handleAdd(args)

	case "/list", "/ls", "/l":
		return r.handleList(args)

	case "/show":
		return r.handleShow(args)

	case "/dismiss":
		return r.handleDismiss(args)

	case "/check":
		return r.handleCheck(ctx)

	default:
		return fmt.Errorf("unknown command: %s (type /help for available commands)", command)
	}
}

func (r *REPL) handleLogin(args string) error {
	parts := strings.Fields(args)
	if len(parts) != 2 {
		return fmt.Errorf("usage: /login <user> <password>")
	}

	userID, ok := auth.Authenticate(r.verifier, parts[0], parts[1])
	if !ok {
		return fmt.Errorf("not authenticated: invalid username or password")
	}

	r.setUser(userID)
	r.displaySuccess(fmt.Sprintf("Logged in as %s.", userID))
	return nil
}

func (r *REPL) handleAdd(args string) error {
	userID, err := r.requireUser()
	if err != nil {
		return err
	}

	fields, err := parseAddArgs(args)
	if err != nil {
		return err
	}

	created := r.events.Create(userID, fields)
	r.displaySuccess("Event created.")
	r.displayEvent(created)
	return nil
}

func (r *REPL) handleList(args string) error {
	userID, err := r.requireUser()
	if err != nil {
		return err
	}

	r.displayEvents(r.events.List(userID, parseListArgs(args)))
	return nil
}

func (r *REPL) handleShow(args string) error {
	userID, err := r.requireUser()
	if err != nil {
		return err
	}
	if args == "" {
		return fmt.Errorf("usage: /show <id>")
	}

	e, ok := r.events.Get(userID, args)
	if !ok {
		return fmt.Errorf("event %s not found", args)
	}
	r.displayEvent(e)
	return nil
}

func (r *REPL) handleDismiss(args string) error {
	userID, err := r.requireUser()
	if err != nil {
		return err
	}
	if args == "" {
		return fmt.Errorf("usage: /dismiss <id>")
	}

	if !r.events.MarkReminded(userID, args) {
		return fmt.Errorf("event %s not found or its reminder is already done", args)
	}
	r.displaySuccess("Reminder dismissed.")
	return nil
}

func (r *REPL) handleCheck(ctx context.Context) error {
	userID, err := r.requireUser()
	if err != nil {
		return err
	}
	if r.sweeper == nil {
		return fmt.Errorf("reminder checks are not available")
	}

	r.status.Show("Checking reminders...")
	fired := reminder.ForUser(r.sweeper.Sweep(ctx), userID)
	r.status.Hide()

	switch len(fired) {
	case 0:
		r.displayInfo("No reminders due.")
	case 1:
		r.displayInfo("1 reminder fired.")
	default:
		r.displayInfo(fmt.Sprintf("%d reminders fired.", len(fired)))
	}
	return nil
}

// parseAddArgs reads "name | time | description [| category [| minutes]]".
func parseAddArgs(args string) (event.Fields, error) {
	const usage = "usage: /add <name> | <time> | <description> [| <category> [| <minutes>]]"

	parts := strings.Split(args, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 3 || len(parts) > 5 {
		return event.Fields{}, errors.New(usage)
	}
	if parts[0] == "" {
		return event.Fields{}, fmt.Errorf("name is required")
	}

	dateTime, err := parseDateTime(parts[1])
	if err != nil {
		return event.Fields{}, err
	}

	fields := event.Fields{
		Name:        parts[0],
		DateTime:    dateTime,
		Description: parts[2],
	}
	if len(parts) > 3 {
		fields.Category = parts[3]
	}
	if len(parts) > 4 && parts[4] != "" {
		minutes, err := strconv.Atoi(parts[4])
		if err != nil || minutes < 0 {
			return event.Fields{}, fmt.Errorf("reminder minutes must be a non-negative integer, got %q", parts[4])
		}
		fields.ReminderMinutes = minutes
	}

	return fields, nil
}

func parseDateTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(localLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q (use RFC3339, e.g. 2025-01-15T09:00:00Z, or %q)", s, localLayout)
	}
	return t, nil
}

// parseListArgs reads "[category] [--upcoming]" in any order.
func parseListArgs(args string) event.Filter {
	var filter event.Filter
	var category []string

	for _, field := range strings.Fields(args) {
		switch field {
		case "--upcoming", "-u":
			filter.UpcomingOnly = true
		default:
			category = append(category, field)
		}
	}

	filter.Category = strings.Join(category, " ")
	return filter
}
