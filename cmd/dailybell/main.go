// Command dailybell schedules desktop reminders.
//
// Usage:
//
//	dailybell                      # scheduler + interactive prompt
//	dailybell run --headless       # scheduler only
//	dailybell add 2026-10-17 09:30 Stand-up --repeat daily
//	dailybell list
//	dailybell mcp                  # MCP server over stdio
package main

import (
	"fmt"
	"os"

	"github.com/notexe/dailybell/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
