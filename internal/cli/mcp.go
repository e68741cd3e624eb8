package cli

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/notexe/dailybell/internal/reminder"
)

// NewMCPCommand creates the mcp command, serving the reminder tools over stdio.
func NewMCPCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve reminder tools over MCP (stdio)",
		Long: `Expose add_reminder, list_reminders, get_reminder, update_reminder and
delete_reminder to an MCP client over stdin/stdout. The scheduler is not started;
run "dailybell run --headless" alongside it to deliver reminders. Both processes
lock the reminders file while writing and pick up each other's changes.

Logs must not go to stdout in this mode.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(rootOpts)
			if err != nil {
				return err
			}
			defer e.close()

			if e.cfg.Log.Output == "stdout" {
				e.log.Warnw("log output is stdout and will corrupt the MCP stream")
			}

			return server.ServeStdio(reminder.NewServer(e.store).MCPServer())
		},
	}
}
