// Command mcp-events provides an MCP server for per-user event management.
//
// Events are kept in a JSON file shared with the interactive events command.
// While the server runs, a background scheduler fires due reminders.
//
// Usage:
//
//	./mcp-events          # Start MCP server (stdio)
//	./mcp-events --help   # Show help
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/mark3labs/mcp-go/server"

	"github.com/notexe/event-reminders/internal/app"
	"github.com/notexe/event-reminders/internal/config"
	"github.com/notexe/event-reminders/internal/logger"
	mcpserver "github.com/notexe/event-reminders/internal/server"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--help", "-h":
			printHelp()
			return
		}
	}

	cfg, err := config.Load(os.Getenv("EVENTS_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the MCP stream.
	if cfg.Logger.Output == "stdout" {
		cfg.Logger.Output = "stderr"
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, closeLog, err := logger.New(cfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	a := app.New(cfg, clockwork.NewRealClock(), log)
	sweeper, sched := a.Reminders()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := sched.Run(ctx); err != nil {
			log.WithError(err).Error("scheduler stopped")
		}
	}()

	s := mcpserver.NewServer(a.Events, sweeper, a.Verifier)

	if err := server.ServeStdio(s.MCPServer()); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println(`MCP Events Server - Event management with reminders via MCP protocol

USAGE:
    mcp-events          Start MCP server (communicates via stdio)
    mcp-events --help   Show this help

ENVIRONMENT:
    EVENTS_CONFIG                   Path to a YAML configuration file
    EVENTS_STORAGE__PATH            Path to the events file
                                    Default: data/events.json
    EVENTS_SCHEDULER__ENABLED       Run the background reminder check (default: true)
    EVENTS_SCHEDULER__INTERVAL      Seconds between reminder checks (default: 60)
    EVENTS_LOGGER__LEVEL            Log level (default: info)
    CI                              When set, the background check is disabled

TOOLS:
    authenticate      Log in (username, password)
    create_event      Create an event (name, description, date_time, category, reminder_minutes)
    list_events       List your events (optional category, upcoming_only)
    check_reminders   Fire reminders that are due now

CONFIGURATION:
    Add to your MCP client configuration:
    {
      "mcpServers": {
        "events": {
          "command": "/path/to/mcp-events",
          "args": []
        }
      }
    }`)
}
