package calendar

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wonny/streakboard/internal/contracts"
)

func d(s string) time.Time {
	t, err := time.Parse(contracts.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func holiday(date, name string) contracts.HolidayEntry {
	return contracts.HolidayEntry{Date: d(date), Name: name, IsHoliday: true}
}

func makeup(date, name string) contracts.HolidayEntry {
	return contracts.HolidayEntry{Date: d(date), Name: name, IsMakeupWorkday: true}
}

// fakeSource serves fixed entries per year
type fakeSource struct {
	mu      sync.Mutex
	entries map[int][]contracts.HolidayEntry
	errs    map[int]error
	block   chan struct{}
	calls   int32
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		entries: map[int][]contracts.HolidayEntry{
			2024: {
				holiday("2024-01-01", "New Year"),
				holiday("2024-10-01", "National Day"),
				makeup("2024-09-29", "National Day makeup"),
			},
			2025: {
				holiday("2025-01-01", "New Year"),
				makeup("2025-01-26", "Spring Festival makeup"),
				holiday("2025-01-28", "Spring Festival"),
				holiday("2025-01-29", "Spring Festival"),
				holiday("2025-01-30", "Spring Festival"),
				holiday("2025-01-31", "Spring Festival"),
				holiday("2025-02-03", "Spring Festival"),
				holiday("2025-02-04", "Spring Festival"),
				makeup("2025-02-08", "Spring Festival makeup"),
			},
		},
		errs: map[int]error{},
	}
}

func (f *fakeSource) FetchYear(ctx context.Context, year int) ([]contracts.HolidayEntry, error) {
	atomic.AddInt32(&f.calls, 1)

	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[year]; err != nil {
		return nil, err
	}
	return f.entries[year], nil
}

func (f *fakeSource) setErr(year int, err error) {
	f.mu.Lock()
	f.errs[year] = err
	f.mu.Unlock()
}

func (f *fakeSource) callCount() int {
	return int(atomic.LoadInt32(&f.calls))
}

// fakeRepo is an in-memory CalendarRepository
type fakeRepo struct {
	mu       sync.Mutex
	years    map[int][]contracts.CalendarDay
	replaces int
	loads    int
	loadErr  error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{years: map[int][]contracts.CalendarDay{}}
}

func (r *fakeRepo) LoadYear(_ context.Context, year int) ([]contracts.CalendarDay, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads++
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	return append([]contracts.CalendarDay(nil), r.years[year]...), nil
}

func (r *fakeRepo) ReplaceYear(_ context.Context, year int, days []contracts.CalendarDay) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replaces++
	r.years[year] = append([]contracts.CalendarDay(nil), days...)
	return nil
}

func (r *fakeRepo) setLoadErr(err error) {
	r.mu.Lock()
	r.loadErr = err
	r.mu.Unlock()
}

func (r *fakeRepo) rows(year int) []contracts.CalendarDay {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.years[year]
}

// fakeCache is an in-memory L2 cache
type fakeCache struct {
	mu   sync.Mutex
	data map[string][]contracts.CalendarDay
}

func (c *fakeCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	days, ok := c.data[key]
	if !ok {
		return false, nil
	}
	*dest.(*[]contracts.CalendarDay) = append([]contracts.CalendarDay(nil), days...)
	return true, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value.([]contracts.CalendarDay)
	return nil
}
