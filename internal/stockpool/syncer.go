package stockpool

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/streakboard/internal/contracts"
	"github.com/wonny/streakboard/pkg/logger"
)

// SnapshotWriter stores fetched snapshots (Repository)
type SnapshotWriter interface {
	InsertIgnore(ctx context.Context, snapshots []contracts.StockPoolSnapshot) (int64, error)
}

// SyncResult reports one pool sync
type SyncResult struct {
	TradeDate time.Time          `json:"trade_date"`
	PoolType  contracts.PoolType `json:"pool_type"`
	Fetched   int                `json:"fetched"`
	Inserted  int64              `json:"inserted"`
}

// Syncer pulls pools from upstream into the repository
type Syncer struct {
	source   contracts.PoolSource
	writer   SnapshotWriter
	resolver contracts.TradingDayResolver
	pools    []contracts.PoolType
	logger   *logger.Logger
}

// NewSyncer creates a syncer for the given enabled pools
func NewSyncer(source contracts.PoolSource, writer SnapshotWriter, resolver contracts.TradingDayResolver, pools []contracts.PoolType, log *logger.Logger) *Syncer {
	return &Syncer{
		source:   source,
		writer:   writer,
		resolver: resolver,
		pools:    pools,
		logger:   log,
	}
}

// Sync fetches one pool for the trading day on or before date
func (s *Syncer) Sync(ctx context.Context, date time.Time, poolType contracts.PoolType) (*SyncResult, error) {
	tradeDate, err := s.resolver.ResolveValidTradingDay(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("resolve trading day: %w", err)
	}
	return s.syncResolved(ctx, tradeDate, poolType)
}

// SyncAll fetches every enabled pool; failures are aggregated, successes kept
func (s *Syncer) SyncAll(ctx context.Context, date time.Time) ([]SyncResult, error) {
	tradeDate, err := s.resolver.ResolveValidTradingDay(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("resolve trading day: %w", err)
	}

	var results []SyncResult
	var errs []error
	for _, pool := range s.pools {
		res, err := s.syncResolved(ctx, tradeDate, pool)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		results = append(results, *res)
	}

	return results, errors.Join(errs...)
}

func (s *Syncer) syncResolved(ctx context.Context, tradeDate time.Time, poolType contracts.PoolType) (*SyncResult, error) {
	log := s.logger.WithDate("trade_date", tradeDate).WithField("pool_type", string(poolType))

	snapshots, err := s.source.FetchPool(ctx, tradeDate, poolType)
	if err != nil {
		log.WithError(err).Error("Pool fetch failed")
		return nil, fmt.Errorf("sync %s: %w", poolType, err)
	}

	inserted, err := s.writer.InsertIgnore(ctx, snapshots)
	if err != nil {
		log.WithError(err).Error("Pool insert failed")
		return nil, fmt.Errorf("store %s: %w", poolType, err)
	}

	log.WithFields(map[string]interface{}{
		"fetched":  len(snapshots),
		"inserted": inserted,
	}).Info("Pool synced")

	return &SyncResult{
		TradeDate: tradeDate,
		PoolType:  poolType,
		Fetched:   len(snapshots),
		Inserted:  inserted,
	}, nil
}
