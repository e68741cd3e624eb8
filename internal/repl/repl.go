package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/chzyer/readline"
	"go.uber.org/zap"

	"github.com/notexe/dailybell/internal/reminder"
	"github.com/notexe/dailybell/internal/ui"
)

// Store is the part of the reminder store the REPL drives.
type Store interface {
	Path() string
	Add(in reminder.Input) (reminder.Reminder, error)
	List() []reminder.Reminder
	Update(id string, in reminder.Input) (reminder.Reminder, error)
	Remove(id string) error
}

type REPL struct {
	store     Store
	rl        *readline.Instance
	out       io.Writer
	formatter *ui.Formatter
	spinner   *ui.Spinner
	now       func() time.Time
	log       *zap.SugaredLogger
	closeOnce sync.Once

	// pick chooses a row from the current list; swapped out in tests.
	pick func(question string, items []reminder.Reminder) (int, error)
	// prefill asks for a line with an editable default.
	prefill func(prompt, value string) (string, error)
}

func NewREPL(store Store, colored bool, log *zap.SugaredLogger) (*REPL, error) {
	formatter := ui.NewFormatter(colored)

	rl, err := setupReadline(formatter.FormatPrompt())
	if err != nil {
		return nil, fmt.Errorf("failed to setup readline: %w", err)
	}

	r := newREPL(store, rl.Stdout(), formatter, log)
	r.rl = rl
	r.prefill = r.readWithDefault
	return r, nil
}

func newREPL(store Store, out io.Writer, formatter *ui.Formatter, log *zap.SugaredLogger) *REPL {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	r := &REPL{
		store:     store,
		out:       out,
		formatter: formatter,
		spinner:   ui.NewSpinner(out, formatter.Colored()),
		now:       time.Now,
		log:       log.With("component", "repl"),
	}
	r.pick = r.selectReminder
	return r
}

func (r *REPL) Start(ctx context.Context) error {
	defer r.Stop()

	go func() {
		<-ctx.Done()
		r.Stop()
	}()

	r.displayWelcome()

	for {
		input, err := r.readInput()
		if err != nil {
			if isEOF(err) || ctx.Err() != nil {
				fmt.Fprintln(r.out, "\nGoodbye!")
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		if input == "" {
			continue
		}

		if quit := r.handleLine(ctx, input); quit {
			return nil
		}
	}
}

func (r *REPL) Stop() {
	if r.rl == nil {
		return
	}
	r.closeOnce.Do(func() { _ = r.rl.Close() })
}

// ShowFired prints a fired reminder above the prompt. Safe to call from the
// scheduler goroutine.
func (r *REPL) ShowFired(ev reminder.Fired) {
	fmt.Fprintln(r.out, r.formatter.FormatFired(ev))
	if r.rl != nil {
		r.rl.Refresh()
	}
}

// handleLine executes one input line and reports whether the session should end.
func (r *REPL) handleLine(ctx context.Context, input string) bool {
	command, args, ok := parseCommand(input)
	if !ok {
		r.displayWarning("Commands start with /. Type /help for available commands.")
		return false
	}

	if command == "/quit" || command == "/exit" || command == "/q" {
		fmt.Fprintln(r.out, "\nGoodbye!")
		return true
	}

	if err := r.handleCommand(ctx, command, args); err != nil {
		r.displayError(err)
	}
	return false
}

func (r *REPL) handleCommand(ctx context.Context, command, args string) error {
	switch command {
	case "/help", "/h":
		r.displayHelp()
		return nil

	case "/list", "/ls", "/l":
		r.displayList()
		return nil

	case "/add", "/a":
		return r.handleAdd(ctx, args)

	case "/edit", "/e":
		return r.handleEdit(ctx, args)

	case "/delete", "/del", "/rm":
		return r.handleDelete(ctx, args)

	default:
		return fmt.Errorf("unknown command: %s (type /help for available commands)", command)
	}
}

func (r *REPL) handleAdd(ctx context.Context, args string) error {
	if args == "" {
		return errors.New("usage: /add <YYYY-MM-DD> <HH:MM> [none|daily|weekly] <description>")
	}

	in, err := parseEntry(args)
	if err != nil {
		return err
	}

	var added reminder.Reminder
	err = r.mutate(ctx, "Saving reminder...", func() (err error) {
		added, err = r.store.Add(in)
		return err
	})
	if r.reportRejected(err) {
		return nil
	}
	if err != nil {
		return err
	}

	r.displaySuccess(fmt.Sprintf("Reminder set for %s (%s)", reminder.FormatTime(added.DueAt), added.Repeat))
	return nil
}

func (r *REPL) handleEdit(ctx context.Context, args string) error {
	list := r.store.List()
	target, rest, err := r.resolveTarget(args, list, "Edit which reminder?")
	if err != nil {
		return err
	}
	if target == nil {
		return nil
	}

	if rest == "" {
		if r.prefill == nil {
			return errors.New("usage: /edit <#> <YYYY-MM-DD> <HH:MM> [none|daily|weekly] <description>")
		}
		rest, err = r.prefill("New values: ", formatEntry(*target))
		if err != nil {
			return nil
		}
	}

	in, err := parseEntry(rest)
	if err != nil {
		return err
	}

	var updated reminder.Reminder
	err = r.mutate(ctx, "Saving reminder...", func() (err error) {
		updated, err = r.store.Update(target.ID, in)
		return err
	})
	if r.reportRejected(err) {
		return nil
	}
	if err != nil {
		return err
	}

	r.displaySuccess(fmt.Sprintf("Reminder updated: %s at %s (%s)",
		updated.Description, reminder.FormatTime(updated.DueAt), updated.Repeat))
	return nil
}

func (r *REPL) handleDelete(ctx context.Context, args string) error {
	list := r.store.List()
	target, _, err := r.resolveTarget(args, list, "Delete which reminder?")
	if err != nil {
		return err
	}
	if target == nil {
		return nil
	}

	err = r.mutate(ctx, "Deleting reminder...", func() error {
		return r.store.Remove(target.ID)
	})
	if r.reportRejected(err) {
		return nil
	}
	if err != nil {
		return err
	}

	r.displaySuccess("Reminder deleted: " + target.Description)
	return nil
}

// mutate runs fn off the input goroutine while the spinner animates, so a slow
// save shows progress instead of a frozen prompt.
func (r *REPL) mutate(ctx context.Context, message string, fn func() error) error {
	done := make(chan error, 1)
	go func() { done <- fn() }()

	return r.spinner.Do(message, func() error {
		select {
		case err := <-done:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

// resolveTarget picks the reminder named by the first argument (row number or id),
// or opens the selector when none is given. A nil target with nil error means the
// user cancelled.
func (r *REPL) resolveTarget(args string, list []reminder.Reminder, question string) (*reminder.Reminder, string, error) {
	if len(list) == 0 {
		r.displayInfo("No reminders set.")
		return nil, "", nil
	}

	token, rest := splitTarget(args)
	if token == "" {
		idx, err := r.pick(question, list)
		if errors.Is(err, ui.ErrCancelled) {
			return nil, "", nil
		}
		if err != nil {
			return nil, "", err
		}
		return &list[idx], rest, nil
	}

	idx, err := findReminder(token, list)
	if err != nil {
		return nil, "", err
	}
	return &list[idx], rest, nil
}

func (r *REPL) selectReminder(question string, items []reminder.Reminder) (int, error) {
	options := make([]ui.SelectorOption, len(items))
	for i, item := range items {
		options[i] = ui.SelectorOption{
			Label:       item.Description,
			Description: fmt.Sprintf("%s, %s", reminder.FormatTime(item.DueAt), item.Repeat),
		}
	}
	return ui.NewSelector(question, options, r.formatter.Colored()).Run()
}

func (r *REPL) readWithDefault(prompt, value string) (string, error) {
	old := r.rl.Config.Prompt
	r.rl.SetPrompt(prompt)
	defer r.rl.SetPrompt(old)

	line, err := r.rl.ReadlineWithDefault(value)
	if err != nil {
		return "", err
	}
	return line, nil
}
