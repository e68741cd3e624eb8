package repl

import (
	"errors"
	"fmt"

	"github.com/notexe/dailybell/internal/reminder"
)

// reportRejected shows validation and not-found errors as friendly warnings and
// reports whether err was one of them.
func (r *REPL) reportRejected(err error) bool {
	var verr *reminder.ValidationError
	if errors.As(err, &verr) {
		switch verr.Field {
		case "description":
			r.displayWarning("Please enter a reminder description.")
		case "due_at":
			r.displayWarning("Please select a future date and time.")
		default:
			r.displayWarning(verr.Error())
		}
		return true
	}

	if errors.Is(err, reminder.ErrNotFound) {
		r.displayWarning("That reminder no longer exists. Use /list to refresh.")
		return true
	}
	return false
}

func (r *REPL) displayError(err error) {
	r.log.Debugw("command failed", "error", err)
	fmt.Fprintln(r.out, r.formatter.FormatError(err))
	fmt.Fprintln(r.out)
}

func (r *REPL) displayWarning(msg string) {
	fmt.Fprintln(r.out, r.formatter.FormatWarning(msg))
	fmt.Fprintln(r.out)
}

func (r *REPL) displaySuccess(msg string) {
	fmt.Fprintln(r.out, r.formatter.FormatSuccess(msg))
	fmt.Fprintln(r.out)
}

func (r *REPL) displayInfo(msg string) {
	fmt.Fprintln(r.out, r.formatter.FormatInfo(msg))
	fmt.Fprintln(r.out)
}

func (r *REPL) displayWelcome() {
	fmt.Fprint(r.out, r.formatter.FormatWelcome(r.store.Path(), len(r.store.List())))
}

func (r *REPL) displayHelp() {
	fmt.Fprint(r.out, r.formatter.FormatHelp())
}

func (r *REPL) displayList() {
	fmt.Fprintln(r.out, r.formatter.FormatReminders(r.store.List(), r.now()))
	fmt.Fprintln(r.out)
}
