package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/streakboard/internal/calendar"
	"github.com/wonny/streakboard/internal/contracts"
	"github.com/wonny/streakboard/pkg/logger"
)

// CalendarSyncer refreshes a year of the trading calendar (calendar.Store)
type CalendarSyncer interface {
	Sync(ctx context.Context, year int) (*calendar.YearCalendar, error)
}

// CalendarSyncJob refreshes the current year's calendar monthly
// ⭐ SSOT: 캘린더 동기화 스케줄은 이 Job에서만
type CalendarSyncJob struct {
	syncer CalendarSyncer
	logger *logger.Logger
	now    func() time.Time
}

// NewCalendarSyncJob creates a new calendar sync job
func NewCalendarSyncJob(syncer CalendarSyncer, log *logger.Logger) *CalendarSyncJob {
	return &CalendarSyncJob{
		syncer: syncer,
		logger: log,
		now:    time.Now,
	}
}

// Name returns the job name
func (j *CalendarSyncJob) Name() string {
	return "calendar_sync"
}

// Schedule returns the cron schedule (1st of every month, midnight)
func (j *CalendarSyncJob) Schedule() string {
	return "0 0 0 1 * *"
}

// Run syncs the current exchange year (CST, not host time); the next year
// is best-effort since the source usually publishes it late in the year
func (j *CalendarSyncJob) Run(ctx context.Context) error {
	year := contracts.MarketDate(j.now()).Year()

	y, err := j.syncer.Sync(ctx, year)
	if err != nil {
		return fmt.Errorf("sync calendar %d: %w", year, err)
	}

	if _, err := j.syncer.Sync(ctx, year+1); err != nil {
		j.logger.WithField("year", year+1).WithError(err).Warn("Next year calendar not available yet")
	}

	j.logger.WithFields(map[string]interface{}{
		"year":         year,
		"trading_days": y.TradingDays(),
	}).Info("Scheduled calendar sync completed")

	return nil
}
