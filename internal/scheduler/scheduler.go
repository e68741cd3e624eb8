package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/notexe/dailybell/internal/reminder"
)

// DefaultInterval is the sweep period.
const DefaultInterval = 60 * time.Second

// State is the scheduler's position in its Idle/Scanning cycle.
type State int32

const (
	Idle State = iota
	Scanning
)

func (s State) String() string {
	if s == Scanning {
		return "scanning"
	}
	return "idle"
}

// Sweeper is the part of the reminder store the scheduler needs.
type Sweeper interface {
	Sweep(now time.Time) ([]reminder.Fired, error)
}

// Handler receives each fired reminder.
type Handler func(reminder.Fired)

// Scheduler periodically sweeps the store and fans fired reminders out to handlers.
type Scheduler struct {
	store    Sweeper
	interval time.Duration
	now      func() time.Time
	log      *zap.SugaredLogger
	metrics  *Metrics

	state atomic.Int32

	mu       sync.RWMutex
	handlers []Handler
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithInterval sets how often the store is swept.
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) { s.interval = d }
}

// WithClock overrides the time source passed to each sweep.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(s *Scheduler) { s.log = log }
}

// WithMetrics records sweep metrics into m. A nil m disables them.
func WithMetrics(m *Metrics) Option {
	return func(s *Scheduler) { s.metrics = m }
}

// New creates a Scheduler over store.
func New(store Sweeper, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:    store,
		interval: DefaultInterval,
		now:      time.Now,
		log:      zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("component", "scheduler")
	return s
}

// OnFired registers h to be called for every fired reminder.
func (s *Scheduler) OnFired(h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, h)
}

// State reports whether a scan is in progress.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// Run blocks and runs Scan on interval + immediately on start.
// It exits when ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("scheduler interval must be positive, got %s", s.interval)
	}

	s.log.Infow("started", "interval", s.interval)

	s.scanAndLog(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("shutting down")
			return nil
		case <-ticker.C:
			s.scanAndLog(ctx)
		}
	}
}

func (s *Scheduler) scanAndLog(ctx context.Context) {
	if _, err := s.Scan(ctx); err != nil {
		s.log.Errorw("scan failed, retrying next tick", "error", err)
	}
}

// Scan runs one sweep at the current time and dispatches the fired reminders.
// Handlers run even when persisting the sweep failed.
func (s *Scheduler) Scan(ctx context.Context) ([]reminder.Fired, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.state.Store(int32(Scanning))
	defer s.state.Store(int32(Idle))

	start := time.Now()
	now := s.now()
	fired, err := s.store.Sweep(now)
	s.metrics.observeScan(time.Since(start), fired, err)

	if len(fired) > 0 {
		s.log.Infow("reminders fired", "count", len(fired), "at", reminder.FormatTime(now))
	} else {
		s.log.Debugw("no reminders due", "at", reminder.FormatTime(now))
	}

	s.mu.RLock()
	handlers := append([]Handler(nil), s.handlers...)
	s.mu.RUnlock()

	for _, f := range fired {
		for _, h := range handlers {
			s.dispatch(h, f)
		}
	}

	if err != nil {
		return fired, fmt.Errorf("persist sweep: %w", err)
	}
	return fired, nil
}

func (s *Scheduler) dispatch(h Handler, f reminder.Fired) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorw("fired handler panicked", "id", f.ID, "panic", r)
		}
	}()
	h(f)
}
