// Package notify delivers fired reminders to the user: desktop notifications, an
// alarm sound and optional Telegram messages. Every sink is best-effort.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/notexe/dailybell/internal/reminder"
)

// Notifier shows a message to the user.
type Notifier interface {
	Notify(ctx context.Context, title, message string, timeout time.Duration) error
}

// Player plays a sound resource.
type Player interface {
	Play(ctx context.Context, resource string) error
}

// deliveryTimeout bounds one fired reminder's whole fan-out.
const deliveryTimeout = 30 * time.Second

// Dispatcher turns fired reminders into notifications and sounds. Handle never
// blocks the caller and never reports failures back to it.
type Dispatcher struct {
	notifiers []Notifier
	player    Player
	title     string
	timeout   time.Duration
	sound     string
	log       *zap.SugaredLogger

	wg sync.WaitGroup
}

// DispatcherConfig holds the presentation settings for notifications.
type DispatcherConfig struct {
	Title   string
	Timeout time.Duration
	Sound   string // sound resource passed to the Player
}

// NewDispatcher creates a dispatcher. player may be nil to disable sound.
func NewDispatcher(cfg DispatcherConfig, notifiers []Notifier, player Player, log *zap.SugaredLogger) *Dispatcher {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if cfg.Title == "" {
		cfg.Title = "Reminder"
	}
	return &Dispatcher{
		notifiers: notifiers,
		player:    player,
		title:     cfg.Title,
		timeout:   cfg.Timeout,
		sound:     cfg.Sound,
		log:       log.With("component", "notify"),
	}
}

// Handle delivers f asynchronously. It matches scheduler.Handler.
func (d *Dispatcher) Handle(f reminder.Fired) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		defer cancel()
		d.deliver(ctx, f)
	}()
}

// Wait blocks until every in-flight delivery has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) deliver(ctx context.Context, f reminder.Fired) {
	var wg sync.WaitGroup

	for _, n := range d.notifiers {
		wg.Add(1)
		go func(n Notifier) {
			defer wg.Done()
			if err := safeCall(func() error { return n.Notify(ctx, d.title, f.Description, d.timeout) }); err != nil {
				d.log.Warnw("notification failed", "id", f.ID, "notifier", fmt.Sprintf("%T", n), "error", err)
			}
		}(n)
	}

	if d.player != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := safeCall(func() error { return d.player.Play(ctx, d.sound) }); err != nil {
				d.log.Warnw("sound playback failed", "id", f.ID, "sound", d.sound, "error", err)
			}
		}()
	}

	wg.Wait()
	d.log.Debugw("reminder delivered", "id", f.ID, "due_at", reminder.FormatTime(f.DueAt))
}

func safeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
