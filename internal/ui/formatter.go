package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/notexe/event-reminders/internal/event"
	"github.com/notexe/event-reminders/internal/reminder"
)

var (
	UserStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")). // Bright cyan
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")). // Coral red
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("222")) // Warm yellow

	SystemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("183")). // Soft purple
			Italic(true)

	StatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")). // Medium gray
			Italic(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114")). // Green
			Bold(true)

	ReminderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("215")). // Orange
			Bold(true)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")). // Soft blue border
			Padding(0, 1)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

type Formatter struct {
	colored bool
}

func NewFormatter(colored bool) *Formatter {
	return &Formatter{colored: colored}
}

func (f *Formatter) render(style lipgloss.Style, s string) string {
	if f.colored {
		return style.Render(s)
	}
	return s
}

func (f *Formatter) FormatError(err error) string {
	return f.render(ErrorStyle, "Error: ") + err.Error()
}

func (f *Formatter) FormatInfo(info string) string {
	return f.render(InfoStyle, info)
}

func (f *Formatter) FormatSystem(msg string) string {
	return f.render(SystemStyle, msg)
}

func (f *Formatter) FormatStatus(msg string) string {
	return f.render(StatusStyle, msg)
}

func (f *Formatter) FormatSuccess(msg string) string {
	return f.render(SuccessStyle, msg)
}

// FormatReminder renders one fired reminder as a single line.
func (f *Formatter) FormatReminder(r reminder.Reminder) string {
	label := f.render(ReminderStyle, "⏰ Reminder:")
	return fmt.Sprintf("%s %s is happening soon (%s)", label, r.Event.Name, event.FormatDateTime(r.Event.DateTime))
}

// FormatEvent renders a single event as a key/value block.
func (f *Formatter) FormatEvent(e event.Event) string {
	remind := "none"
	if e.ReminderMinutes > 0 {
		remind = fmt.Sprintf("%d min before", e.ReminderMinutes)
		if e.Reminded {
			remind += " (sent)"
		}
	}

	lines := []string{
		f.render(HeaderStyle, e.Name),
		f.render(DimStyle, "id:       ") + e.ID,
		f.render(DimStyle, "when:     ") + event.FormatDateTime(e.DateTime),
		f.render(DimStyle, "category: ") + e.Category,
		f.render(DimStyle, "reminder: ") + remind,
	}
	if e.Description != "" {
		lines = append(lines, f.render(DimStyle, "details:  ")+e.Description)
	}

	content := strings.Join(lines, "\n")
	if f.colored {
		return BoxStyle.Render(content)
	}
	return content
}

// EventsMarkdown builds a markdown table of events.
func EventsMarkdown(events []event.Event) string {
	var b strings.Builder
	b.WriteString("| When | Name | Category | Reminder |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, e := range events {
		remind := "-"
		if e.ReminderMinutes > 0 {
			remind = fmt.Sprintf("%dm", e.ReminderMinutes)
			if e.Reminded {
				remind += " ✓"
			}
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			event.FormatDateTime(e.DateTime),
			escapeCell(e.Name),
			escapeCell(e.Category),
			remind,
		)
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// FormatEvents renders events as a table. Colored output goes through
// glamour; plain output is the markdown itself.
func (f *Formatter) FormatEvents(events []event.Event) string {
	if len(events) == 0 {
		return f.FormatInfo("No events found.")
	}

	md := EventsMarkdown(events)
	if !f.colored {
		return md
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return md
	}

	rendered, err := renderer.Render(md)
	if err != nil {
		return md
	}

	return strings.TrimRight(rendered, "\n")
}

func (f *Formatter) FormatWelcome(storagePath string) string {
	if f.colored {
		title := HeaderStyle.Render("Event Reminders")
		pathLine := DimStyle.Render("Storage: ") + SuccessStyle.Render(storagePath)
		helpLine := StatusStyle.Render("Type /help for commands, /login to start")

		return "\n" + BoxStyle.Render(strings.Join([]string{title, pathLine, "", helpLine}, "\n")) + "\n"
	}

	lines := []string{
		"",
		"Event Reminders",
		fmt.Sprintf("Storage: %s", storagePath),
		"Type /help for commands, /login to start",
		"",
	}

	return strings.Join(lines, "\n")
}

type helpEntry struct {
	cmd  string
	desc string
}

var helpEntries = []helpEntry{
	{"/login <user> <password>", "Authenticate"},
	{"/logout", "Forget the current user"},
	{"/whoami", "Show the current user"},
	{"/add <name> | <time> | <description> [| <category> [| <minutes>]]", "Create an event (time in RFC3339)"},
	{"/list [category] [--upcoming]", "List your events"},
	{"/show <id>", "Show one event"},
	{"/dismiss <id>", "Silence an event's pending reminder"},
	{"/check", "Run a reminder sweep now"},
	{"/help", "Show this help"},
	{"/quit", "Exit"},
}

func (f *Formatter) FormatHelp() string {
	lines := []string{"", f.render(HeaderStyle, "Commands"), ""}
	for _, h := range helpEntries {
		lines = append(lines, "  "+f.render(SuccessStyle, h.cmd)+"  "+h.desc)
	}
	lines = append(lines, "", f.render(DimStyle, "  Ctrl+C or Ctrl+D to exit"), "")
	return strings.Join(lines, "\n")
}

// FormatPrompt returns the input prompt, showing the logged-in user.
func (f *Formatter) FormatPrompt(userID string) string {
	if userID == "" {
		userID = "guest"
	}
	if f.colored {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Render(userID) +
			lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Bold(true).Render(" > ")
	}
	return userID + " > "
}
