package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/streakboard/internal/calendar"
	"github.com/wonny/streakboard/internal/contracts"
	"github.com/wonny/streakboard/internal/stockpool"
	"github.com/wonny/streakboard/pkg/database"
	"github.com/wonny/streakboard/pkg/redis"
)

var errBoom = errors.New("boom")

func d(s string) time.Time {
	t, err := contracts.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

type fakeStore struct {
	fail   error
	synced []int
}

func (f *fakeStore) GetYear(_ context.Context, year int) (*calendar.YearCalendar, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	return calendar.NewYearCalendar(year, calendar.BuildYear(year, nil)), nil
}

func (f *fakeStore) Sync(ctx context.Context, year int) (*calendar.YearCalendar, error) {
	f.synced = append(f.synced, year)
	return f.GetYear(ctx, year)
}

// fakeResolver walks weekends back to Friday
type fakeResolver struct {
	fail error
}

func (f fakeResolver) IsTradingDay(_ context.Context, date time.Time) (bool, error) {
	return !contracts.IsWeekend(date), f.fail
}

func (f fakeResolver) ResolveValidTradingDay(_ context.Context, target time.Time) (time.Time, error) {
	if f.fail != nil {
		return time.Time{}, f.fail
	}
	for contracts.IsWeekend(target) {
		target = target.AddDate(0, 0, -1)
	}
	return target, nil
}

type ladderCall struct {
	date      time.Time
	poolType  contracts.PoolType
	excludeST bool
}

type fakeService struct {
	fail  error
	calls []ladderCall
}

func (f *fakeService) Ladder(_ context.Context, date time.Time, excludeST bool) (*contracts.LadderReport, error) {
	f.calls = append(f.calls, ladderCall{date: date, excludeST: excludeST})
	if f.fail != nil {
		return nil, f.fail
	}
	return &contracts.LadderReport{RequestedDate: date, TradeDate: date, ExcludeST: excludeST}, nil
}

func (f *fakeService) Pool(_ context.Context, date time.Time, poolType contracts.PoolType, excludeST bool) (*contracts.PoolReport, error) {
	f.calls = append(f.calls, ladderCall{date: date, poolType: poolType, excludeST: excludeST})
	if f.fail != nil {
		return nil, f.fail
	}
	return &contracts.PoolReport{RequestedDate: date, TradeDate: date, PoolType: poolType}, nil
}

type fakeSyncer struct {
	results []stockpool.SyncResult
	fail    error
	pools   []contracts.PoolType
}

func (f *fakeSyncer) Sync(_ context.Context, date time.Time, poolType contracts.PoolType) (*stockpool.SyncResult, error) {
	f.pools = append(f.pools, poolType)
	if f.fail != nil {
		return nil, fmt.Errorf("sync %s: %w", poolType, f.fail)
	}
	return &stockpool.SyncResult{TradeDate: date, PoolType: poolType, Fetched: 2, Inserted: 2}, nil
}

func (f *fakeSyncer) SyncAll(_ context.Context, date time.Time) ([]stockpool.SyncResult, error) {
	return f.results, f.fail
}

type fakeCounter map[contracts.PoolType]int

func (f fakeCounter) CountByDate(context.Context, time.Time) (map[contracts.PoolType]int, error) {
	return f, nil
}

type fakeHealth struct {
	fail error
}

func (f fakeHealth) HealthCheck(context.Context) (*database.HealthStatus, error) {
	if f.fail != nil {
		return &database.HealthStatus{Error: f.fail.Error()}, f.fail
	}
	return &database.HealthStatus{Healthy: true}, nil
}

type fakeCacheHealth struct {
	fail error
}

func (f fakeCacheHealth) HealthCheck(context.Context) (*redis.HealthStatus, error) {
	if f.fail != nil {
		return &redis.HealthStatus{Enabled: true, Error: f.fail.Error()}, f.fail
	}
	return &redis.HealthStatus{Enabled: true, Healthy: true}, nil
}
