package stockpool

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/streakboard/internal/contracts"
	"github.com/wonny/streakboard/internal/ladder"
	"github.com/wonny/streakboard/pkg/logger"
)

// PoolSyncer refills missing pool data (Syncer)
type PoolSyncer interface {
	Sync(ctx context.Context, date time.Time, poolType contracts.PoolType) (*SyncResult, error)
	SyncAll(ctx context.Context, date time.Time) ([]SyncResult, error)
}

// Service answers ladder and pool queries.
// Flow: resolve trading day → load snapshots → (data gap → sync once) → build
type Service struct {
	repo     contracts.StockPoolRepository
	syncer   PoolSyncer
	resolver contracts.TradingDayResolver
	logger   *logger.Logger
}

// NewService creates a stock pool service
func NewService(repo contracts.StockPoolRepository, syncer PoolSyncer, resolver contracts.TradingDayResolver, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		syncer:   syncer,
		resolver: resolver,
		logger:   log,
	}
}

// Ladder builds the promotion ladder for the trading day on or before date
func (s *Service) Ladder(ctx context.Context, date time.Time, excludeST bool) (*contracts.LadderReport, error) {
	requested := contracts.DateOf(date)
	tradeDate, err := s.resolver.ResolveValidTradingDay(ctx, requested)
	if err != nil {
		return nil, fmt.Errorf("resolve trading day: %w", err)
	}

	snapshots, err := s.loadPools(ctx, tradeDate, contracts.LadderPoolTypes())
	if err != nil {
		return nil, err
	}

	if len(snapshots) == 0 {
		// 데이터 공백: 한 번만 동기화 후 재조회, 실패는 로그만 남김
		log := s.logger.WithDate("trade_date", tradeDate)
		log.Info("No pool data for trade date, syncing")
		if _, err := s.syncer.SyncAll(ctx, tradeDate); err != nil {
			log.WithError(err).Warn("On-demand pool sync incomplete")
		}
		if snapshots, err = s.loadPools(ctx, tradeDate, contracts.LadderPoolTypes()); err != nil {
			return nil, err
		}
	}

	return &contracts.LadderReport{
		RequestedDate: requested,
		TradeDate:     tradeDate,
		ExcludeST:     excludeST,
		Rungs:         ladder.Build(snapshots, ladder.Options{ExcludeST: excludeST}),
	}, nil
}

// Pool returns one pool grouped by streak
func (s *Service) Pool(ctx context.Context, date time.Time, poolType contracts.PoolType, excludeST bool) (*contracts.PoolReport, error) {
	requested := contracts.DateOf(date)
	tradeDate, err := s.resolver.ResolveValidTradingDay(ctx, requested)
	if err != nil {
		return nil, fmt.Errorf("resolve trading day: %w", err)
	}

	snapshots, err := s.repo.Query(ctx, tradeDate, poolType)
	if err != nil {
		return nil, err
	}

	if len(snapshots) == 0 {
		log := s.logger.WithDate("trade_date", tradeDate).WithField("pool_type", string(poolType))
		log.Info("No pool data for trade date, syncing")
		if _, err := s.syncer.Sync(ctx, tradeDate, poolType); err != nil {
			log.WithError(err).Warn("On-demand pool sync failed")
		}
		if snapshots, err = s.repo.Query(ctx, tradeDate, poolType); err != nil {
			return nil, err
		}
	}

	snapshots = ladder.FilterST(snapshots, excludeST)
	return &contracts.PoolReport{
		RequestedDate: requested,
		TradeDate:     tradeDate,
		PoolType:      poolType,
		Total:         len(snapshots),
		Groups:        ladder.GroupByStreak(snapshots, poolType),
	}, nil
}

// dayQuerier is implemented by repositories that read several pools at once
type dayQuerier interface {
	QueryDay(ctx context.Context, tradeDate time.Time, pools []contracts.PoolType) ([]contracts.StockPoolSnapshot, error)
}

func (s *Service) loadPools(ctx context.Context, tradeDate time.Time, pools []contracts.PoolType) ([]contracts.StockPoolSnapshot, error) {
	if dq, ok := s.repo.(dayQuerier); ok {
		return dq.QueryDay(ctx, tradeDate, pools)
	}

	var all []contracts.StockPoolSnapshot
	for _, pool := range pools {
		snapshots, err := s.repo.Query(ctx, tradeDate, pool)
		if err != nil {
			return nil, err
		}
		all = append(all, snapshots...)
	}
	return all, nil
}
