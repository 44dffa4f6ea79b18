// Package maintenance runs periodic housekeeping jobs.
package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule purges expired codes every quarter hour.
const DefaultSchedule = "@every 15m"

// CodePurger removes verification codes that expire at or before reference.
type CodePurger interface {
	DeleteExpiredVerificationCodes(ctx context.Context, reference time.Time) (int64, error)
}

// Janitor purges expired verification codes on a cron schedule.
type Janitor struct {
	cron    *cron.Cron
	purger  CodePurger
	now     func() time.Time
	timeout time.Duration
	logger  *slog.Logger
}

// NewJanitor registers the purge job under schedule, a standard five field
// cron expression or a descriptor such as "@every 15m".
func NewJanitor(purger CodePurger, schedule string, now func() time.Time, logger *slog.Logger) (*Janitor, error) {
	if purger == nil {
		return nil, fmt.Errorf("maintenance: purger is required")
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	schedule = strings.TrimSpace(schedule)
	if schedule == "" {
		schedule = DefaultSchedule
	}

	j := &Janitor{
		purger:  purger,
		now:     now,
		timeout: 30 * time.Second,
		logger:  logger.With("component", "janitor"),
	}
	j.cron = cron.New(cron.WithChain(cron.Recover(cronLogger{j.logger}), cron.SkipIfStillRunning(cronLogger{j.logger})))
	if _, err := j.cron.AddFunc(schedule, j.run); err != nil {
		return nil, fmt.Errorf("maintenance: invalid schedule %q: %w", schedule, err)
	}
	return j, nil
}

// Start begins running scheduled jobs in the background.
func (j *Janitor) Start() {
	j.logger.Info("janitor started", "jobs", len(j.cron.Entries()))
	j.cron.Start()
}

// Stop halts the scheduler and waits for a running purge to finish or for
// ctx to be done.
func (j *Janitor) Stop(ctx context.Context) {
	done := j.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
	j.logger.Info("janitor stopped")
}

// PurgeExpired deletes expired codes once and returns how many were removed.
func (j *Janitor) PurgeExpired(ctx context.Context) (int64, error) {
	removed, err := j.purger.DeleteExpiredVerificationCodes(ctx, j.now())
	if err != nil {
		return 0, fmt.Errorf("purge verification codes: %w", err)
	}
	return removed, nil
}

func (j *Janitor) run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	removed, err := j.PurgeExpired(ctx)
	if err != nil {
		j.logger.Error("purge failed", "error", err)
		return
	}
	if removed > 0 {
		j.logger.Info("expired verification codes purged", "removed", removed)
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
