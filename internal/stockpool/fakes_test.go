package stockpool

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/streakboard/internal/contracts"
)

func date(s string) time.Time {
	t, err := time.Parse(contracts.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func snap(day, code string, pool contracts.PoolType, streak int, change string) contracts.StockPoolSnapshot {
	return contracts.StockPoolSnapshot{
		TradeDate:     date(day),
		StockCode:     code,
		StockName:     "name-" + code,
		PoolType:      pool,
		StreakDays:    streak,
		ChangePercent: decimal.RequireFromString(change),
	}
}

// fakeResolver maps weekends back to Friday
type fakeResolver struct {
	err error
}

func (r *fakeResolver) IsTradingDay(_ context.Context, d time.Time) (bool, error) {
	return !contracts.IsWeekend(d), r.err
}

func (r *fakeResolver) ResolveValidTradingDay(_ context.Context, d time.Time) (time.Time, error) {
	if r.err != nil {
		return time.Time{}, r.err
	}
	d = contracts.DateOf(d)
	for contracts.IsWeekend(d) {
		d = d.AddDate(0, 0, -1)
	}
	return d, nil
}

// memoryRepo is an in-memory snapshot store with insert-ignore semantics
type memoryRepo struct {
	mu      sync.Mutex
	rows    map[string]contracts.StockPoolSnapshot
	queries int
}

func newMemoryRepo(snapshots ...contracts.StockPoolSnapshot) *memoryRepo {
	r := &memoryRepo{rows: map[string]contracts.StockPoolSnapshot{}}
	r.InsertIgnore(context.Background(), snapshots)
	return r
}

func (r *memoryRepo) Query(_ context.Context, tradeDate time.Time, poolType contracts.PoolType) ([]contracts.StockPoolSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries++

	var out []contracts.StockPoolSnapshot
	for _, s := range r.rows {
		if s.TradeDate.Equal(contracts.DateOf(tradeDate)) && s.PoolType == poolType {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memoryRepo) InsertIgnore(_ context.Context, snapshots []contracts.StockPoolSnapshot) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, s := range snapshots {
		if _, ok := r.rows[s.Key()]; ok {
			continue
		}
		r.rows[s.Key()] = s
		n++
	}
	return n, nil
}

// fakeSource serves canned pools keyed by date/pool
type fakeSource struct {
	mu    sync.Mutex
	pools map[string][]contracts.StockPoolSnapshot
	fail  map[contracts.PoolType]bool
	calls []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{pools: map[string][]contracts.StockPoolSnapshot{}, fail: map[contracts.PoolType]bool{}}
}

func (f *fakeSource) add(snapshots ...contracts.StockPoolSnapshot) {
	for _, s := range snapshots {
		key := contracts.DateKey(s.TradeDate) + "/" + string(s.PoolType)
		f.pools[key] = append(f.pools[key], s)
	}
}

func (f *fakeSource) FetchPool(_ context.Context, tradeDate time.Time, poolType contracts.PoolType) ([]contracts.StockPoolSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := contracts.DateKey(tradeDate) + "/" + string(poolType)
	f.calls = append(f.calls, key)
	if f.fail[poolType] {
		return nil, contracts.ErrSourceUnavailable
	}
	return f.pools[key], nil
}

var errBoom = errors.New("boom")
