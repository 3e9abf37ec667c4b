package contracts

import (
	"context"
	"time"
)

// ⭐ SSOT: 컴포넌트 간 인터페이스 정의는 여기서만

// HolidaySource fetches one year of holiday and makeup-workday markings.
// Failure, timeout, non-success code or empty data → ErrSourceUnavailable
type HolidaySource interface {
	FetchYear(ctx context.Context, year int) ([]HolidayEntry, error)
}

// CalendarRepository persists whole years of CalendarDay rows
type CalendarRepository interface {
	// LoadYear returns the persisted days of a year, empty if none
	LoadYear(ctx context.Context, year int) ([]CalendarDay, error)
	// ReplaceYear deletes then inserts a year's rows in one transaction
	ReplaceYear(ctx context.Context, year int, days []CalendarDay) error
}

// PoolSource fetches one pool for one trade date from upstream
type PoolSource interface {
	FetchPool(ctx context.Context, tradeDate time.Time, poolType PoolType) ([]StockPoolSnapshot, error)
}

// StockPoolRepository reads ingested pool snapshots
type StockPoolRepository interface {
	Query(ctx context.Context, tradeDate time.Time, poolType PoolType) ([]StockPoolSnapshot, error)
}

// TradingDayResolver maps a calendar date onto the effective trading day
type TradingDayResolver interface {
	IsTradingDay(ctx context.Context, date time.Time) (bool, error)
	ResolveValidTradingDay(ctx context.Context, target time.Time) (time.Time, error)
}
