package server

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mark3labs/mcp-go/mcp"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/notexe/event-reminders/internal/auth"
	"github.com/notexe/event-reminders/internal/event"
	"github.com/notexe/event-reminders/internal/reminder"
)

var now = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	log, _ := logtest.NewNullLogger()
	clock := clockwork.NewFakeClockAt(now)
	store := event.NewStore(filepath.Join(t.TempDir(), "events.json"), log)

	return NewServer(
		event.NewManager(store, clock),
		reminder.NewSweeper(store, nil, clock, log),
		auth.NewStaticVerifier(nil),
	)
}

func request(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func login(t *testing.T, s *Server) {
	t.Helper()
	res, err := s.handleAuthenticate(context.Background(), request(map[string]any{
		"username": "user1",
		"password": "pass123",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Equal(t, "Authenticated as user1.", resultText(t, res))
}

func TestAuthenticate(t *testing.T) {
	s := newTestServer(t)

	res, err := s.handleAuthenticate(context.Background(), request(map[string]any{
		"username": "user1",
		"password": "wrong",
	}))
	require.NoError(t, err)
	require.True(t, res.IsError)
	_, ok := s.currentUser()
	require.False(t, ok)

	login(t, s)
	userID, ok := s.currentUser()
	require.True(t, ok)
	require.Equal(t, "user1", userID)
}

func TestToolsRequireAuthentication(t *testing.T) {
	s := newTestServer(t)

	res, err := s.handleCreateEvent(context.Background(), request(map[string]any{
		"name":      "x",
		"date_time": "2026-10-16T12:00:00Z",
	}))
	require.NoError(t, err)
	require.True(t, res.IsError)

	res, err = s.handleListEvents(context.Background(), request(nil))
	require.NoError(t, err)
	require.True(t, res.IsError)
}

func TestCreateAndListEvents(t *testing.T) {
	s := newTestServer(t)
	login(t, s)

	res, err := s.handleCreateEvent(context.Background(), request(map[string]any{
		"name":             "Test Meeting",
		"description":      "Team sync",
		"date_time":        "2026-10-16T12:00:00Z",
		"category":         "Meetings",
		"reminder_minutes": float64(15),
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var created event.Event
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &created))
	require.NotEmpty(t, created.ID)
	require.Equal(t, "Test Meeting", created.Name)
	require.Equal(t, "Meetings", created.Category)
	require.Equal(t, 15, created.ReminderMinutes)
	require.False(t, created.Reminded)

	_, err = s.handleCreateEvent(context.Background(), request(map[string]any{
		"name":        "Old",
		"description": "",
		"date_time":   "2026-10-14T12:00:00Z",
	}))
	require.NoError(t, err)

	res, err = s.handleListEvents(context.Background(), request(map[string]any{"upcoming_only": true}))
	require.NoError(t, err)
	var upcoming []event.Event
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &upcoming))
	require.Len(t, upcoming, 1)
	require.Equal(t, created.ID, upcoming[0].ID)

	res, err = s.handleListEvents(context.Background(), request(map[string]any{"category": "General"}))
	require.NoError(t, err)
	var general []event.Event
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &general))
	require.Len(t, general, 1)
	require.Equal(t, "Old", general[0].Name)

	res, err = s.handleListEvents(context.Background(), request(map[string]any{"category": "Nope"}))
	require.NoError(t, err)
	require.Equal(t, "No events found.", resultText(t, res))
}

func TestCreateEventValidation(t *testing.T) {
	s := newTestServer(t)
	login(t, s)

	tests := []struct {
		name string
		args map[string]any
	}{
		{name: "missing name", args: map[string]any{"date_time": "2026-10-16T12:00:00Z"}},
		{name: "missing date", args: map[string]any{"name": "x"}},
		{name: "bad date", args: map[string]any{"name": "x", "date_time": "tomorrow"}},
		{name: "negative reminder", args: map[string]any{"name": "x", "date_time": "2026-10-16T12:00:00Z", "reminder_minutes": float64(-1)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := s.handleCreateEvent(context.Background(), request(tc.args))
			require.NoError(t, err)
			require.True(t, res.IsError)
		})
	}
}

func TestCheckReminders(t *testing.T) {
	s := newTestServer(t)
	login(t, s)

	res, err := s.handleCheckReminders(context.Background(), request(nil))
	require.NoError(t, err)
	require.Equal(t, "No reminders due.", resultText(t, res))

	_, err = s.handleCreateEvent(context.Background(), request(map[string]any{
		"name":             "Soon",
		"description":      "",
		"date_time":        now.Add(5 * time.Minute).Format(time.RFC3339),
		"reminder_minutes": float64(10),
	}))
	require.NoError(t, err)

	res, err = s.handleCheckReminders(context.Background(), request(nil))
	require.NoError(t, err)

	var fired []reminder.Reminder
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &fired))
	require.Len(t, fired, 1)
	require.Equal(t, "user1", fired[0].UserID)
	require.Equal(t, "Soon", fired[0].Event.Name)

	res, err = s.handleCheckReminders(context.Background(), request(nil))
	require.NoError(t, err)
	require.Equal(t, "No reminders due.", resultText(t, res))
}

func TestCheckRemindersRequiresAuthentication(t *testing.T) {
	s := newTestServer(t)
	s.events.Create("user2", event.Fields{
		Name:            "Doctor visit",
		Description:     "private",
		DateTime:        now.Add(5 * time.Minute),
		ReminderMinutes: 10,
	})

	res, err := s.handleCheckReminders(context.Background(), request(nil))
	require.NoError(t, err)
	require.True(t, res.IsError)
	require.NotContains(t, resultText(t, res), "Doctor visit")

	// Still pending, nothing was swept.
	pending := s.events.List("user2", event.Filter{})
	require.Len(t, pending, 1)
	require.False(t, pending[0].Reminded)
}

func TestCheckRemindersHidesOtherUsers(t *testing.T) {
	s := newTestServer(t)
	s.events.Create("user2", event.Fields{
		Name:            "Doctor visit",
		Description:     "private",
		DateTime:        now.Add(5 * time.Minute),
		ReminderMinutes: 10,
	})
	login(t, s)

	res, err := s.handleCheckReminders(context.Background(), request(nil))
	require.NoError(t, err)
	require.False(t, res.IsError)

	text := resultText(t, res)
	require.Equal(t, "No reminders due.", text)
	require.NotContains(t, text, "private")

	// The sweep itself is global: user2's reminder fired once.
	require.True(t, s.events.List("user2", event.Filter{})[0].Reminded)
}
