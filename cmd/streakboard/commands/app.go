package commands

import (
	"fmt"

	"github.com/wonny/streakboard/internal/calendar"
	"github.com/wonny/streakboard/internal/external/timor"
	"github.com/wonny/streakboard/internal/external/xuangubao"
	"github.com/wonny/streakboard/internal/sourceconfig"
	"github.com/wonny/streakboard/internal/stockpool"
	"github.com/wonny/streakboard/pkg/config"
	"github.com/wonny/streakboard/pkg/database"
	"github.com/wonny/streakboard/pkg/httputil"
	"github.com/wonny/streakboard/pkg/logger"
	"github.com/wonny/streakboard/pkg/redis"
)

// app holds the wired dependencies shared by every command
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	db     *database.DB
	redis  *redis.Client
	source *sourceconfig.Config

	calendarStore *calendar.Store
	resolver      *calendar.Resolver
	poolRepo      *stockpool.Repository
	syncer        *stockpool.Syncer
	service       *stockpool.Service
}

// newApp wires config → logger → database → redis → sources → services
func newApp() (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Load source registry
	sources, err := sourceconfig.Load(cfg.SourcesFile)
	if err != nil {
		return nil, fmt.Errorf("load sources: %w", err)
	}
	if hash, err := sourceconfig.Hash(sources); err == nil {
		log.WithFields(map[string]interface{}{
			"file": cfg.SourcesFile,
			"hash": hash[:12],
		}).Debug("Source registry loaded")
	}

	// 4. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// 5. Connect to redis (disabled client if REDIS_ENABLED=false)
	rdb, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	limiter := redis.NewRateLimiter(rdb, "streakboard")

	// 6. External clients (각 소스별 HTTP 클라이언트 분리)
	holidayHTTP := httputil.New(log, cfg.Holiday.Timeout).
		WithRateLimiter(limiter, redis.HolidayRateLimit)
	poolHTTP := httputil.New(log, cfg.Pool.Timeout).
		WithRateLimiter(limiter, redis.PoolRateLimit)

	holidaySource := timor.NewClient(holidayHTTP, log, cfg.Holiday.BaseURL, sources.Holiday)
	poolSource := xuangubao.NewClient(poolHTTP, log, cfg.Pool.BaseURL, sources.Pool, cfg.Pool.RatePerSec)

	// 7. Calendar
	storeOpts := []calendar.Option{
		calendar.WithFetchTimeout(cfg.Holiday.Timeout),
		calendar.WithRefreshInterval(cfg.Calendar.RefreshInterval),
	}
	if rdb.Enabled() && cfg.Calendar.CacheTTL > 0 {
		storeOpts = append(storeOpts, calendar.WithCache(redis.NewCache(rdb, "streakboard"), cfg.Calendar.CacheTTL, redis.CalendarYearKey))
	}
	store := calendar.NewStore(holidaySource, calendar.NewRepository(db), log, storeOpts...)
	resolver := calendar.NewResolver(store, log)

	// 8. Stock pools
	poolRepo := stockpool.NewRepository(db)
	syncer := stockpool.NewSyncer(poolSource, poolRepo, resolver, sources.Pool.EnabledPools(), log)
	service := stockpool.NewService(poolRepo, syncer, resolver, log)

	return &app{
		cfg:           cfg,
		log:           log,
		db:            db,
		redis:         rdb,
		source:        sources,
		calendarStore: store,
		resolver:      resolver,
		poolRepo:      poolRepo,
		syncer:        syncer,
		service:       service,
	}, nil
}

func (a *app) Close() {
	if err := a.redis.Close(); err != nil {
		a.log.WithError(err).Warn("Failed to close redis")
	}
	a.db.Close()
}
