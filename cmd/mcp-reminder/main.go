// Command mcp-reminder provides an MCP server for reminder management.
//
// It serves the same reminders file as dailybell, so reminders created by an MCP
// client are delivered by a running "dailybell run". Writers from both processes
// serialize on an advisory lock next to the file.
//
// Usage:
//
//	./mcp-reminder          # Start MCP server (stdio)
//	./mcp-reminder --help   # Show help
//
// Environment:
//
//	DAILYBELL_STORE_PATH  Path to the reminders file (default: ~/.dailybell/reminders.json)
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/notexe/dailybell/internal/config"
	"github.com/notexe/dailybell/internal/logger"
	"github.com/notexe/dailybell/internal/reminder"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--help", "-h":
			printHelp()
			return
		}
	}

	cfg, err := config.Load(config.GetDefaultConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if cfg.Log.Output == "stdout" {
		cfg.Log.Output = "stderr"
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	store, err := reminder.Open(cfg.Store.Path, reminder.WithLogger(log))
	if err != nil {
		exit(log, "Failed to open reminders: %v", err)
	}

	s := reminder.NewServer(store)

	if err := server.ServeStdio(s.MCPServer()); err != nil {
		exit(log, "Server error: %v", err)
	}
	_ = log.Sync()
}

// exit flushes log before terminating, since os.Exit skips deferred calls.
func exit(log *zap.SugaredLogger, format string, args ...any) {
	log.Errorf(format, args...)
	_ = log.Sync()
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func printHelp() {
	fmt.Println(`MCP Reminder Server - DailyBell reminders via MCP protocol

USAGE:
    mcp-reminder          Start MCP server (communicates via stdio)
    mcp-reminder --help   Show this help

ENVIRONMENT:
    DAILYBELL_STORE_PATH  Path to the reminders file
                          Default: ~/.dailybell/reminders.json

TOOLS:
    add_reminder     Add a reminder (description, due_at, repeat)
    list_reminders   List all reminders in creation order
    get_reminder     Get one reminder by id
    update_reminder  Change description, due_at or repeat
    delete_reminder  Delete a reminder permanently

TIME FORMAT:
    due_at is local wall-clock time, "YYYY-MM-DD HH:MM"

CONFIGURATION:
    Add to your MCP client configuration:
    {
      "mcpServers": {
        "reminder": {
          "command": "/path/to/mcp-reminder",
          "args": []
        }
      }
    }`)
}
