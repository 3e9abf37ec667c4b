package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/streakboard/internal/calendar"
	"github.com/wonny/streakboard/internal/stockpool"
	"github.com/wonny/streakboard/pkg/logger"
)

type fakeCalendarSyncer struct {
	years []int
	fail  map[int]bool
}

func (f *fakeCalendarSyncer) Sync(_ context.Context, year int) (*calendar.YearCalendar, error) {
	f.years = append(f.years, year)
	if f.fail[year] {
		return nil, errors.New("unavailable")
	}
	return calendar.NewYearCalendar(year, calendar.BuildYear(year, nil)), nil
}

func TestCalendarSyncJob(t *testing.T) {
	syncer := &fakeCalendarSyncer{fail: map[int]bool{2026: true}}
	job := NewCalendarSyncJob(syncer, logger.Nop())
	job.now = func() time.Time { return time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC) }

	assert.Equal(t, "calendar_sync", job.Name())
	assert.Equal(t, "0 0 0 1 * *", job.Schedule())

	require.NoError(t, job.Run(context.Background()), "next year failure is best-effort")
	assert.Equal(t, []int{2025, 2026}, syncer.years)
}

func TestCalendarSyncJob_UsesExchangeYear(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want []int
	}{
		{"UTC new year eve is already Jan 1 in Shanghai", time.Date(2024, 12, 31, 16, 0, 0, 0, time.UTC), []int{2025, 2026}},
		{"just before Shanghai midnight", time.Date(2024, 12, 31, 15, 59, 0, 0, time.UTC), []int{2024, 2025}},
		{"host zone west of UTC", time.Date(2024, 12, 31, 20, 0, 0, 0, time.FixedZone("EST", -5*3600)), []int{2025, 2026}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			syncer := &fakeCalendarSyncer{}
			job := NewCalendarSyncJob(syncer, logger.Nop())
			job.now = func() time.Time { return tt.now }

			require.NoError(t, job.Run(context.Background()))
			assert.Equal(t, tt.want, syncer.years)
		})
	}
}

func TestCalendarSyncJob_CurrentYearFailure(t *testing.T) {
	syncer := &fakeCalendarSyncer{fail: map[int]bool{2025: true}}
	job := NewCalendarSyncJob(syncer, logger.Nop())
	job.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }

	assert.Error(t, job.Run(context.Background()))
	assert.Equal(t, []int{2025}, syncer.years)
}

type fakePoolSyncer struct {
	dates []time.Time
	err   error
}

func (f *fakePoolSyncer) SyncAll(_ context.Context, date time.Time) ([]stockpool.SyncResult, error) {
	f.dates = append(f.dates, date)
	return []stockpool.SyncResult{{TradeDate: date, Inserted: 3}}, f.err
}

type fakeChecker struct {
	trading bool
	err     error
}

func (f fakeChecker) IsTradingDay(context.Context, time.Time) (bool, error) {
	return f.trading, f.err
}

func TestPoolSyncJob(t *testing.T) {
	now := func() time.Time { return time.Date(2025, 1, 2, 15, 30, 0, 0, time.UTC) }

	tests := []struct {
		name      string
		checker   fakeChecker
		syncErr   error
		wantErr   bool
		wantSyncs int
	}{
		{"trading day", fakeChecker{trading: true}, nil, false, 1},
		{"holiday skipped", fakeChecker{trading: false}, nil, false, 0},
		{"calendar failure", fakeChecker{err: errors.New("down")}, nil, true, 0},
		{"sync failure", fakeChecker{trading: true}, errors.New("partial"), true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			syncer := &fakePoolSyncer{err: tt.syncErr}
			job := NewPoolSyncJob(syncer, tt.checker, logger.Nop())
			job.now = now

			err := job.Run(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Len(t, syncer.dates, tt.wantSyncs)
		})
	}
}
