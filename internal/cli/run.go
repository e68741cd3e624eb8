package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/notexe/dailybell/internal/config"
	"github.com/notexe/dailybell/internal/notify"
	"github.com/notexe/dailybell/internal/repl"
	"github.com/notexe/dailybell/internal/scheduler"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Once     bool
	Headless bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the scheduler and the interactive prompt",
		Long: `Start the reminder scheduler. Due reminders are checked once per interval
(60 seconds by default) and delivered as desktop notifications, an alarm sound
and, when configured, Telegram messages.

Example:
  dailybell run
  dailybell run --headless
  dailybell run --once`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScheduler(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Once, "once", false, "sweep once, deliver due reminders and exit")
	cmd.Flags().BoolVar(&opts.Headless, "headless", false, "run without the interactive prompt")

	return cmd
}

func runScheduler(cmd *cobra.Command, opts *RunOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := openEnv(opts.RootOptions)
	if err != nil {
		return err
	}
	defer e.close()

	warnMissingResources(e.cfg, e.log, cmd.ErrOrStderr())

	var metrics *scheduler.Metrics
	if e.cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics = scheduler.NewMetrics(reg)
		stopMetrics := serveMetrics(e.cfg.Metrics.Addr, reg, e.log)
		defer stopMetrics()
	}

	sched := scheduler.New(e.store,
		scheduler.WithInterval(e.cfg.Scheduler.IntervalDuration()),
		scheduler.WithLogger(e.log),
		scheduler.WithMetrics(metrics),
	)

	dispatcher := newDispatcher(e.cfg, e.log)
	sched.OnFired(dispatcher.Handle)
	defer dispatcher.Wait()

	if opts.Once {
		fired, err := sched.Scan(ctx)
		fmt.Fprintf(cmd.OutOrStdout(), "%d reminder(s) fired\n", len(fired))
		return err
	}

	if opts.Headless {
		e.log.Infow("scheduler started", "store", e.store.Path(), "interval", e.cfg.Scheduler.IntervalDuration())
		return sched.Run(ctx)
	}

	r, err := repl.NewREPL(e.store, e.cfg.UI.ColoredOutput, e.log)
	if err != nil {
		return err
	}
	sched.OnFired(r.ShowFired)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	schedErr := make(chan error, 1)
	go func() { schedErr <- sched.Run(ctx) }()

	replErr := r.Start(ctx)
	cancel()
	if err := <-schedErr; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return replErr
}

func newDispatcher(cfg *config.Config, log *zap.SugaredLogger) *notify.Dispatcher {
	var notifiers []notify.Notifier
	if cfg.Notify.Enabled {
		notifiers = append(notifiers, notify.NewDesktop(cfg.Notify.Icon))
	}
	if cfg.Telegram.Enabled {
		notifiers = append(notifiers, notify.NewTelegramSender(
			cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.BaseURL, cfg.Telegram.PerMinute))
	}

	var player notify.Player
	if cfg.Sound.Enabled {
		player = notify.NewSoundPlayer(cfg.Sound.Command)
	}

	return notify.NewDispatcher(notify.DispatcherConfig{
		Title:   cfg.Notify.Title,
		Timeout: cfg.Notify.TimeoutDuration(),
		Sound:   cfg.Sound.File,
	}, notifiers, player, log)
}

// warnMissingResources reports configured sound and icon files that do not exist.
// Delivery still works without them.
func warnMissingResources(cfg *config.Config, log *zap.SugaredLogger, w io.Writer) {
	check := func(enabled bool, kind, path string) {
		if !enabled || path == "" {
			return
		}
		if _, err := os.Stat(path); err != nil {
			fmt.Fprintf(w, "Warning: %s file %s not found\n", kind, path)
			log.Warnw("resource missing", "kind", kind, "path", path)
		}
	}
	check(cfg.Sound.Enabled, "sound", cfg.Sound.File)
	check(cfg.Notify.Enabled, "icon", cfg.Notify.Icon)
}

func serveMetrics(addr string, reg *prometheus.Registry, log *zap.SugaredLogger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Infow("metrics listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("metrics server failed", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
