package repl

import (
	"fmt"

	"github.com/notexe/event-reminders/internal/event"
)

func (r *REPL) displayError(err error) {
	r.status.Hide()
	fmt.Fprintln(r.out, r.formatter.FormatError(err))
	fmt.Fprintln(r.out)
}

func (r *REPL) displayWelcome() {
	fmt.Fprint(r.out, r.formatter.FormatWelcome(r.config.Storage.Path))
}

func (r *REPL) displayHelp() {
	fmt.Fprint(r.out, r.formatter.FormatHelp())
}

func (r *REPL) displayInfo(msg string) {
	fmt.Fprintln(r.out, r.formatter.FormatInfo(msg))
}

func (r *REPL) displaySystem(msg string) {
	fmt.Fprintln(r.out, r.formatter.FormatSystem(msg))
}

func (r *REPL) displaySuccess(msg string) {
	fmt.Fprintln(r.out, r.formatter.FormatSuccess(msg))
}

func (r *REPL) displayEvent(e event.Event) {
	fmt.Fprintln(r.out, r.formatter.FormatEvent(e))
}

func (r *REPL) displayEvents(events []event.Event) {
	fmt.Fprintln(r.out, r.formatter.FormatEvents(events))
}
