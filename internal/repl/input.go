package repl

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/notexe/dailybell/internal/reminder"
)

func (r *REPL) readInput() (string, error) {
	line, err := r.rl.Readline()
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(line), nil
}

func parseCommand(input string) (command, args string, ok bool) {
	if !strings.HasPrefix(input, "/") {
		return "", "", false
	}

	parts := strings.SplitN(input, " ", 2)
	command = strings.ToLower(parts[0])
	if len(parts) > 1 {
		args = strings.TrimSpace(parts[1])
	}

	return command, args, true
}

// parseEntry reads "<YYYY-MM-DD> <HH:MM> [none|daily|weekly] <description>".
// The repeat word is only taken as such when a description follows it. An empty
// description is passed through so the store can reject it.
func parseEntry(args string) (reminder.Input, error) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return reminder.Input{}, errors.New("expected <YYYY-MM-DD> <HH:MM> [none|daily|weekly] <description>")
	}

	due, err := reminder.ParseTime(fields[0] + " " + fields[1])
	if err != nil {
		return reminder.Input{}, err
	}

	rest := fields[2:]
	repeat := reminder.RepeatNone
	if len(rest) > 1 {
		if r, err := reminder.ParseRepeat(rest[0]); err == nil {
			repeat = r
			rest = rest[1:]
		}
	}

	return reminder.Input{
		Description: strings.Join(rest, " "),
		DueAt:       due,
		Repeat:      repeat,
	}, nil
}

// formatEntry is the inverse of parseEntry, used to prefill /edit.
func formatEntry(r reminder.Reminder) string {
	return fmt.Sprintf("%s %s %s", reminder.FormatTime(r.DueAt), strings.ToLower(string(r.Repeat)), r.Description)
}

// splitTarget separates a leading row number or id from the remaining arguments.
// Arguments that start with a date have no target.
func splitTarget(args string) (token, rest string) {
	args = strings.TrimSpace(args)
	if args == "" {
		return "", ""
	}

	parts := strings.SplitN(args, " ", 2)
	if _, err := time.Parse("2006-01-02", parts[0]); err == nil {
		return "", args
	}
	if len(parts) > 1 {
		rest = strings.TrimSpace(parts[1])
	}
	return parts[0], rest
}

// findReminder resolves a 1-based row number, a full id or a unique id prefix.
func findReminder(token string, list []reminder.Reminder) (int, error) {
	if n, err := strconv.Atoi(token); err == nil {
		if n < 1 || n > len(list) {
			return -1, fmt.Errorf("no reminder #%d (have %d)", n, len(list))
		}
		return n - 1, nil
	}

	match := -1
	for i, r := range list {
		if r.ID == token {
			return i, nil
		}
		if strings.HasPrefix(r.ID, token) {
			if match >= 0 {
				return -1, fmt.Errorf("id prefix %q is ambiguous", token)
			}
			match = i
		}
	}
	if match < 0 {
		return -1, &reminder.NotFoundError{ID: token}
	}
	return match, nil
}

func setupReadline(prompt string) (*readline.Instance, error) {
	return readline.NewEx(&readline.Config{
		Prompt:              prompt,
		InterruptPrompt:     "^C",
		EOFPrompt:           "exit",
		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
		AutoComplete: readline.NewPrefixCompleter(
			readline.PcItem("/add", readline.PcItem("none"), readline.PcItem("daily"), readline.PcItem("weekly")),
			readline.PcItem("/list"),
			readline.PcItem("/edit"),
			readline.PcItem("/delete"),
			readline.PcItem("/help"),
			readline.PcItem("/quit"),
		),
	})
}

func filterInput(r rune) (rune, bool) {
	switch r {
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func isEOF(err error) bool {
	return err == io.EOF || err == readline.ErrInterrupt
}
