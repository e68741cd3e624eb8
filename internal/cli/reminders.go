package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/notexe/dailybell/internal/reminder"
	"github.com/notexe/dailybell/internal/ui"
)

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	var repeat string

	cmd := &cobra.Command{
		Use:   "add <YYYY-MM-DD> <HH:MM> <description...>",
		Short: "Set a reminder",
		Example: `  dailybell add 2026-10-17 09:30 Stand-up meeting --repeat daily
  dailybell add 2026-10-20 18:00 Pick up parcel`,
		Args:          cobra.MinimumNArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := parseArgs(args, repeat)
			if err != nil {
				return err
			}

			e, err := openEnv(rootOpts)
			if err != nil {
				return err
			}
			defer e.close()

			r, err := e.store.Add(in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reminder set: %s at %s (%s) [%s]\n",
				r.Description, reminder.FormatTime(r.DueAt), r.Repeat, r.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&repeat, "repeat", "r", "none", "repeat mode (none|daily|weekly)")
	return cmd
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var showIDs bool

	cmd := &cobra.Command{
		Use:           "list",
		Aliases:       []string{"ls"},
		Short:         "Show reminders",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(rootOpts)
			if err != nil {
				return err
			}
			defer e.close()

			list := e.store.List()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.NewFormatter(e.cfg.UI.ColoredOutput).FormatReminders(list, time.Now()))
			if showIDs {
				for i, r := range list {
					fmt.Fprintf(out, "%d  %s\n", i+1, r.ID)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showIDs, "ids", false, "print reminder ids after the table")
	return cmd
}

// NewEditCommand creates the edit command.
func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	var repeat string

	cmd := &cobra.Command{
		Use:   "edit <#|id> <YYYY-MM-DD> <HH:MM> <description...>",
		Short: "Change a reminder",
		Long: `Replace the date, time and description of a reminder.
The reminder is addressed by its row number in "dailybell list" or by its id.
The repeat mode is kept unless --repeat is given.`,
		Args:          cobra.MinimumNArgs(4),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			keepRepeat := !cmd.Flags().Changed("repeat")
			if keepRepeat {
				repeat = "none"
			}
			in, err := parseArgs(args[1:], repeat)
			if err != nil {
				return err
			}

			e, err := openEnv(rootOpts)
			if err != nil {
				return err
			}
			defer e.close()

			id, err := resolveID(args[0], e.store.List())
			if err != nil {
				return err
			}
			if keepRepeat {
				current, err := e.store.Get(id)
				if err != nil {
					return err
				}
				in.Repeat = current.Repeat
			}
			r, err := e.store.Update(id, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reminder updated: %s at %s (%s)\n",
				r.Description, reminder.FormatTime(r.DueAt), r.Repeat)
			return nil
		},
	}

	cmd.Flags().StringVarP(&repeat, "repeat", "r", "", "repeat mode (none|daily|weekly); keeps the current mode when unset")
	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <#|id>",
		Aliases:       []string{"rm"},
		Short:         "Delete a reminder",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(rootOpts)
			if err != nil {
				return err
			}
			defer e.close()

			id, err := resolveID(args[0], e.store.List())
			if err != nil {
				return err
			}
			if err := e.store.Remove(id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Reminder deleted")
			return nil
		},
	}
}

func parseArgs(args []string, repeat string) (reminder.Input, error) {
	if len(args) < 3 {
		return reminder.Input{}, errors.New("expected <YYYY-MM-DD> <HH:MM> <description>")
	}

	due, err := reminder.ParseTime(args[0] + " " + args[1])
	if err != nil {
		return reminder.Input{}, err
	}
	mode, err := reminder.ParseRepeat(repeat)
	if err != nil {
		return reminder.Input{}, err
	}

	return reminder.Input{
		Description: strings.Join(args[2:], " "),
		DueAt:       due,
		Repeat:      mode,
	}, nil
}

// resolveID maps a 1-based row number to an id; anything else is taken as an id.
func resolveID(token string, list []reminder.Reminder) (string, error) {
	n, err := strconv.Atoi(token)
	if err != nil {
		return token, nil
	}
	if n < 1 || n > len(list) {
		return "", fmt.Errorf("no reminder #%d (have %d)", n, len(list))
	}
	return list[n-1].ID, nil
}
