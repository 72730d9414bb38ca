package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/roomwarden/roomwarden/internal/application/constant"
)

// DeadlineWatchdog periodically sweeps expired naming deadlines and, once a
// day, decays stale spam escalation levels. It runs independently of the
// event stream.
type DeadlineWatchdog struct {
	lifecycle LifecycleUsecase
	spam      SpamUsecase
	tick      time.Duration
	cron      *cron.Cron
}

func NewDeadlineWatchdog(lifecycle LifecycleUsecase, spam SpamUsecase, tick time.Duration) *DeadlineWatchdog {
	return &DeadlineWatchdog{
		lifecycle: lifecycle,
		spam:      spam,
		tick:      tick,
		cron:      cron.New(),
	}
}

// Start registers the sweeps and launches the scheduler.
func (w *DeadlineWatchdog) Start(ctx context.Context) error {
	_, err := w.cron.AddFunc(fmt.Sprintf("@every %s", w.tick), func() {
		if err := w.lifecycle.EnforceDeadlines(ctx); err != nil {
			slog.Error("enforce deadlines", slog.Any(constant.Error, err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule deadline sweep: %w", err)
	}

	_, err = w.cron.AddFunc("@every 24h", func() {
		reset, err := w.spam.ResetStaleLevels(ctx)
		if err != nil {
			slog.Error("reset stale spam levels", slog.Any(constant.Error, err))

			return
		}

		if reset > 0 {
			slog.Info("reset stale spam levels", slog.Int64("count", reset))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule spam decay sweep: %w", err)
	}

	w.cron.Start()

	slog.Info("deadline watchdog started", slog.Duration("tick", w.tick))

	return nil
}

// Stop halts the scheduler and waits for running sweeps to finish.
func (w *DeadlineWatchdog) Stop() {
	<-w.cron.Stop().Done()
}
