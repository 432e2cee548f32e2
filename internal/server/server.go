package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/notexe/event-reminders/internal/auth"
	"github.com/notexe/event-reminders/internal/event"
	"github.com/notexe/event-reminders/internal/reminder"
)

const (
	serverName    = "events"
	serverVersion = "1.0.0"
)

// Server is the MCP server for event management.
//
// A stdio MCP server talks to exactly one client, so the authenticated
// user is held on the server for the lifetime of the process.
type Server struct {
	mcpServer *server.MCPServer
	events    *event.Manager
	sweeper   *reminder.Sweeper
	verifier  auth.Verifier

	mu     sync.RWMutex
	userID string
}

// NewServer creates a new Events MCP server.
func NewServer(events *event.Manager, sweeper *reminder.Sweeper, verifier auth.Verifier) *Server {
	s := &Server{
		events:   events,
		sweeper:  sweeper,
		verifier: verifier,
	}

	s.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
	)

	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server for serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	// authenticate
	s.mcpServer.AddTool(
		mcp.NewTool("authenticate",
			mcp.WithDescription("Log in with a username and password. Other tools act on behalf of the logged-in user."),
			mcp.WithString("username", mcp.Required(), mcp.Description("Username")),
			mcp.WithString("password", mcp.Required(), mcp.Description("Password")),
		),
		s.handleAuthenticate,
	)

	// create_event
	s.mcpServer.AddTool(
		mcp.NewTool("create_event",
			mcp.WithDescription("Create an event with a name, description, date/time, optional category and reminder"),
			mcp.WithString("name", mcp.Required(), mcp.Description("Event name")),
			mcp.WithString("description", mcp.Required(), mcp.Description("Event description")),
			mcp.WithString("date_time", mcp.Required(), mcp.Description("Event time in RFC3339 format (e.g. 2025-01-15T09:00:00Z)")),
			mcp.WithString("category", mcp.Description("Category (default: General)")),
			mcp.WithNumber("reminder_minutes", mcp.Description("Minutes before the event to send a reminder (default: 0, no reminder)")),
		),
		s.handleCreateEvent,
	)

	// list_events
	s.mcpServer.AddTool(
		mcp.NewTool("list_events",
			mcp.WithDescription("List the logged-in user's events sorted by time, optionally filtered by category and upcoming only"),
			mcp.WithString("category", mcp.Description("Exact category to match")),
			mcp.WithBoolean("upcoming_only", mcp.Description("Only events later than now")),
		),
		s.handleListEvents,
	)

	// check_reminders
	s.mcpServer.AddTool(
		mcp.NewTool("check_reminders",
			mcp.WithDescription("Run a reminder sweep now and return the logged-in user's reminders it fired"),
		),
		s.handleCheckReminders,
	)
}

func (s *Server) currentUser() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID, s.userID != ""
}

func (s *Server) handleAuthenticate(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	username := req.GetString("username", "")
	password := req.GetString("password", "")

	userID, ok := auth.Authenticate(s.verifier, username, password)
	if !ok {
		return mcp.NewToolResultError("not authenticated: invalid username or password"), nil
	}

	s.mu.Lock()
	s.userID = userID
	s.mu.Unlock()

	return mcp.NewToolResultText(fmt.Sprintf("Authenticated as %s.", userID)), nil
}

func (s *Server) handleCreateEvent(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, ok := s.currentUser()
	if !ok {
		return mcp.NewToolResultError("not authenticated: call authenticate first"), nil
	}

	name := req.GetString("name", "")
	description := req.GetString("description", "")
	dateTimeStr := req.GetString("date_time", "")
	category := req.GetString("category", "")
	reminderMinutes := req.GetFloat("reminder_minutes", 0)

	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}
	if dateTimeStr == "" {
		return mcp.NewToolResultError("date_time is required"), nil
	}
	if reminderMinutes < 0 {
		return mcp.NewToolResultError("reminder_minutes must not be negative"), nil
	}

	dateTime, err := time.Parse(time.RFC3339, dateTimeStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid date_time format: %v (use RFC3339, e.g. 2025-01-15T09:00:00Z)", err)), nil
	}

	created := s.events.Create(userID, event.Fields{
		Name:            name,
		Description:     description,
		DateTime:        dateTime,
		Category:        category,
		ReminderMinutes: int(reminderMinutes),
	})

	output, _ := json.MarshalIndent(created, "", "  ")
	return mcp.NewToolResultText(string(output)), nil
}

func (s *Server) handleListEvents(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, ok := s.currentUser()
	if !ok {
		return mcp.NewToolResultError("not authenticated: call authenticate first"), nil
	}

	events := s.events.List(userID, event.Filter{
		Category:     req.GetString("category", ""),
		UpcomingOnly: req.GetBool("upcoming_only", false),
	})

	if len(events) == 0 {
		return mcp.NewToolResultText("No events found."), nil
	}

	output, _ := json.MarshalIndent(events, "", "  ")
	return mcp.NewToolResultText(string(output)), nil
}

func (s *Server) handleCheckReminders(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, ok := s.currentUser()
	if !ok {
		return mcp.NewToolResultError("not authenticated: call authenticate first"), nil
	}

	// The sweep covers every user; other users' reminders still go to
	// the configured notifiers but are never returned here.
	fired := reminder.ForUser(s.sweeper.Sweep(ctx), userID)

	if len(fired) == 0 {
		return mcp.NewToolResultText("No reminders due."), nil
	}

	output, _ := json.MarshalIndent(fired, "", "  ")
	return mcp.NewToolResultText(string(output)), nil
}
