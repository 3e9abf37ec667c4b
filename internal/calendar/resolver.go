package calendar

import (
	"context"
	"time"

	"github.com/wonny/streakboard/internal/contracts"
	"github.com/wonny/streakboard/pkg/logger"
)

// MaxLookbackDays bounds the backward walk of ResolveValidTradingDay
const MaxLookbackDays = 60

// YearProvider supplies year calendars (Store)
type YearProvider interface {
	GetYear(ctx context.Context, year int) (*YearCalendar, error)
}

// Resolver answers trading-day questions against the calendar store
type Resolver struct {
	years  YearProvider
	logger *logger.Logger
}

// NewResolver creates a resolver
func NewResolver(years YearProvider, log *logger.Logger) *Resolver {
	return &Resolver{years: years, logger: log}
}

// IsTradingDay reports whether date is a trading day.
// holiday > makeup workday > weekend default
func (r *Resolver) IsTradingDay(ctx context.Context, date time.Time) (bool, error) {
	date = contracts.DateOf(date)

	y, err := r.years.GetYear(ctx, date.Year())
	if err != nil {
		return false, err
	}
	return isTradingIn(y, date), nil
}

// ResolveValidTradingDay walks backward from target (inclusive) to the first
// trading day. The prior year is loaded only when the walk crosses into it
// and degrades to the weekend default on failure. The walk is bounded
// by MaxLookbackDays; when exhausted the last date tried is returned.
func (r *Resolver) ResolveValidTradingDay(ctx context.Context, target time.Time) (time.Time, error) {
	target = contracts.DateOf(target)

	current, err := r.years.GetYear(ctx, target.Year())
	if err != nil {
		return time.Time{}, err
	}

	var previous *YearCalendar
	previousLoaded := false

	candidate := target
	for i := 0; i < MaxLookbackDays; i++ {
		candidate = target.AddDate(0, 0, -i)

		cal := current
		if candidate.Year() != target.Year() {
			if !previousLoaded {
				previous = r.priorYear(ctx, candidate.Year())
				previousLoaded = true
			}
			cal = previous
		}
		if isTradingIn(cal, candidate) {
			return candidate, nil
		}
	}

	r.logger.WithDate("target", target).WithDate("fallback", candidate).
		Warn("No trading day found within lookback window")
	return candidate, nil
}

// priorYear returns nil when the year cannot be loaded
func (r *Resolver) priorYear(ctx context.Context, year int) *YearCalendar {
	y, err := r.years.GetYear(ctx, year)
	if err != nil {
		r.logger.WithField("year", year).WithError(err).
			Warn("Prior year calendar unavailable, using weekend default")
		return nil
	}
	return y
}

func isTradingIn(y *YearCalendar, date time.Time) bool {
	if y != nil {
		if day, ok := y.Day(date); ok {
			return day.IsTradingDay()
		}
	}
	return !contracts.IsWeekend(date)
}
