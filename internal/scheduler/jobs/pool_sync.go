package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/streakboard/internal/contracts"
	"github.com/wonny/streakboard/internal/stockpool"
	"github.com/wonny/streakboard/pkg/logger"
)

// PoolSyncer pulls every enabled pool for a date (stockpool.Syncer)
type PoolSyncer interface {
	SyncAll(ctx context.Context, date time.Time) ([]stockpool.SyncResult, error)
}

// TradingDayChecker tells whether a date is a trading day
type TradingDayChecker interface {
	IsTradingDay(ctx context.Context, date time.Time) (bool, error)
}

// PoolSyncJob ingests the day's pools after the close
// ⭐ SSOT: 풀 수집 스케줄은 이 Job에서만
type PoolSyncJob struct {
	syncer   PoolSyncer
	calendar TradingDayChecker
	logger   *logger.Logger
	now      func() time.Time
}

// NewPoolSyncJob creates a new pool sync job
func NewPoolSyncJob(syncer PoolSyncer, cal TradingDayChecker, log *logger.Logger) *PoolSyncJob {
	return &PoolSyncJob{
		syncer:   syncer,
		calendar: cal,
		logger:   log,
		now:      time.Now,
	}
}

// Name returns the job name
func (j *PoolSyncJob) Name() string {
	return "pool_sync"
}

// Schedule returns the cron schedule (weekdays 15:30, after the close)
func (j *PoolSyncJob) Schedule() string {
	return "0 30 15 * * 1-5"
}

// Run syncs today's pools, skipping non-trading days
func (j *PoolSyncJob) Run(ctx context.Context) error {
	today := contracts.MarketDate(j.now())
	log := j.logger.WithDate("trade_date", today)

	trading, err := j.calendar.IsTradingDay(ctx, today)
	if err != nil {
		return fmt.Errorf("check trading day: %w", err)
	}
	if !trading {
		log.Info("Not a trading day, skipping pool sync")
		return nil
	}

	results, err := j.syncer.SyncAll(ctx, today)
	if err != nil {
		return fmt.Errorf("sync pools: %w", err)
	}

	var inserted int64
	for _, r := range results {
		inserted += r.Inserted
	}
	log.WithFields(map[string]interface{}{
		"pools":    len(results),
		"inserted": inserted,
	}).Info("Scheduled pool sync completed")

	return nil
}
