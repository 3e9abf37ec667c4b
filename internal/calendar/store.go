package calendar

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/wonny/streakboard/internal/contracts"
	"github.com/wonny/streakboard/pkg/logger"
)

// DefaultFetchTimeout bounds a single holiday source call
const DefaultFetchTimeout = 15 * time.Second

// Cache is an optional second-level cache shared across processes.
// pkg/redis.Cache satisfies it
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Store caches trading calendars per year and refreshes them from a
// HolidaySource. Load order: memory → L2 cache → repository → sync.
// ⭐ SSOT: 캘린더 캐시는 Store만 소유 (Resolver는 읽기만)
type Store struct {
	source contracts.HolidaySource
	repo   contracts.CalendarRepository
	logger *logger.Logger

	cache        Cache
	cacheTTL     time.Duration
	cacheKey     func(year int) string
	fetchTimeout time.Duration
	refreshAfter time.Duration
	now          func() time.Time

	mu    sync.RWMutex
	years map[int]yearEntry

	group singleflight.Group
}

// yearEntry is an in-memory calendar stamped with when it was installed
type yearEntry struct {
	cal      *YearCalendar
	loadedAt time.Time
}

// Option configures a Store
type Option func(*Store)

// WithCache enables the L2 cache
func WithCache(cache Cache, ttl time.Duration, key func(year int) string) Option {
	return func(s *Store) {
		s.cache = cache
		s.cacheTTL = ttl
		s.cacheKey = key
	}
}

// WithFetchTimeout overrides DefaultFetchTimeout
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

// WithRefreshInterval expires in-memory years after d so a sync run by
// another process is picked up from L2 or the repository. 0 = never expire
func WithRefreshInterval(d time.Duration) Option {
	return func(s *Store) {
		if d >= 0 {
			s.refreshAfter = d
		}
	}
}

// NewStore creates a calendar store
func NewStore(source contracts.HolidaySource, repo contracts.CalendarRepository, log *logger.Logger, opts ...Option) *Store {
	s := &Store{
		source:       source,
		repo:         repo,
		logger:       log,
		fetchTimeout: DefaultFetchTimeout,
		now:          time.Now,
		years:        make(map[int]yearEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetYear returns the calendar of a year, loading or syncing it on a miss.
// An expired in-memory year is reloaded from L2 or the repository first.
// 동기화가 실패하고 저장된 데이터도 없으면 ErrSourceUnavailable
func (s *Store) GetYear(ctx context.Context, year int) (*YearCalendar, error) {
	if y, ok := s.cached(year); ok {
		return y, nil
	}

	return s.flight(ctx, fmt.Sprintf("load:%d", year), func(fctx context.Context) (*YearCalendar, error) {
		if y, ok := s.cached(year); ok {
			return y, nil
		}

		y, err := s.load(fctx, year)
		if y != nil {
			return y, nil
		}
		// 만료된 메모리 사본은 재로드 실패 시 그대로 유지
		if stale, ok := s.stale(year); ok {
			s.logger.WithField("year", year).WithError(err).Warn("Calendar reload failed, serving previous copy")
			return stale, nil
		}
		if err != nil {
			return nil, err
		}

		s.logger.WithField("year", year).Info("Calendar not persisted, syncing from source")
		return s.flight(fctx, fmt.Sprintf("sync:%d", year), func(sctx context.Context) (*YearCalendar, error) {
			return s.sync(sctx, year)
		})
	})
}

// Sync refreshes a year from the holiday source and replaces it wholesale.
// Concurrent callers for the same year share one fetch
func (s *Store) Sync(ctx context.Context, year int) (*YearCalendar, error) {
	return s.flight(ctx, fmt.Sprintf("sync:%d", year), func(fctx context.Context) (*YearCalendar, error) {
		return s.sync(fctx, year)
	})
}

// Cached reports whether a year is held in memory and not yet due for refresh
func (s *Store) Cached(year int) bool {
	_, ok := s.cached(year)
	return ok
}

func (s *Store) cached(year int) (*YearCalendar, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.years[year]
	if !ok {
		return nil, false
	}
	if s.refreshAfter > 0 && s.now().Sub(e.loadedAt) >= s.refreshAfter {
		return nil, false
	}
	return e.cal, true
}

func (s *Store) stale(year int) (*YearCalendar, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.years[year]
	return e.cal, ok
}

func (s *Store) install(y *YearCalendar) {
	s.mu.Lock()
	s.years[y.Year()] = yearEntry{cal: y, loadedAt: s.now()}
	s.mu.Unlock()
}

// flight runs fn once per key. The shared work is detached from the first
// caller's cancellation; each caller still stops waiting when its own ctx ends.
func (s *Store) flight(ctx context.Context, key string, fn func(context.Context) (*YearCalendar, error)) (*YearCalendar, error) {
	ch := s.group.DoChan(key, func() (interface{}, error) {
		return fn(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*YearCalendar), nil
	}
}

// load reads a year from L2 then the repository; nil means nothing persisted
func (s *Store) load(ctx context.Context, year int) (*YearCalendar, error) {
	log := s.logger.WithField("year", year)

	if s.cache != nil {
		var days []contracts.CalendarDay
		found, err := s.cache.Get(ctx, s.cacheKey(year), &days)
		if err != nil {
			log.WithError(err).Warn("Calendar cache read failed")
		}
		if found && len(days) == contracts.DaysInYear(year) {
			y := NewYearCalendar(year, days)
			s.install(y)
			log.Debug("Calendar loaded from cache")
			return y, nil
		}
	}

	days, err := s.repo.LoadYear(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("load calendar %d: %w", year, err)
	}
	if len(days) == 0 {
		return nil, nil
	}

	y := NewYearCalendar(year, days)
	s.install(y)
	s.writeCache(ctx, y)
	log.WithField("days", len(days)).Debug("Calendar loaded from database")

	return y, nil
}

func (s *Store) sync(ctx context.Context, year int) (*YearCalendar, error) {
	log := s.logger.WithField("year", year)

	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	entries, err := s.source.FetchYear(fetchCtx, year)
	cancel()

	if err != nil {
		log.WithError(err).Error("Holiday fetch failed, keeping existing calendar")
		if errors.Is(err, contracts.ErrSourceUnavailable) {
			return nil, fmt.Errorf("sync calendar %d: %w", year, err)
		}
		return nil, fmt.Errorf("sync calendar %d: %w: %v", year, contracts.ErrSourceUnavailable, err)
	}
	if len(entries) == 0 {
		log.Warn("Holiday source returned no data, keeping existing calendar")
		return nil, fmt.Errorf("sync calendar %d: %w: empty holiday data", year, contracts.ErrSourceUnavailable)
	}

	days := BuildYear(year, entries)
	if err := s.repo.ReplaceYear(ctx, year, days); err != nil {
		return nil, fmt.Errorf("persist calendar %d: %w", year, err)
	}

	y := NewYearCalendar(year, days)
	s.install(y)
	s.writeCache(ctx, y)

	log.WithFields(map[string]interface{}{
		"entries":      len(entries),
		"days":         y.Len(),
		"trading_days": y.TradingDays(),
	}).Info("Calendar synced")

	return y, nil
}

func (s *Store) writeCache(ctx context.Context, y *YearCalendar) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, s.cacheKey(y.Year()), y.Days(), s.cacheTTL); err != nil {
		s.logger.WithField("year", y.Year()).WithError(err).Warn("Calendar cache write failed")
	}
}
