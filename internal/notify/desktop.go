package notify

import (
	"context"
	"os"
	"time"

	"github.com/gen2brain/beeep"
)

// Desktop shows native desktop notifications.
type Desktop struct {
	icon string
	show func(title, message, icon string) error
}

// NewDesktop creates a desktop notifier. icon is optional; a path that does not
// exist is ignored.
func NewDesktop(icon string) *Desktop {
	if icon != "" {
		if _, err := os.Stat(icon); err != nil {
			icon = ""
		}
	}
	return &Desktop{
		icon: icon,
		show: func(title, message, icon string) error {
			return beeep.Notify(title, message, icon)
		},
	}
}

// Notify shows the notification. The platform decides how long it stays visible,
// so timeout is advisory.
func (d *Desktop) Notify(ctx context.Context, title, message string, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.show(title, message, d.icon)
}
