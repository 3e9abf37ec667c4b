package contracts

import (
	"fmt"
	"time"
)

// DateLayout is the wire and storage format of every calendar date
const DateLayout = "2006-01-02"

// CalendarDay is one day of a year's trading calendar
// ⭐ SSOT: 연간 캘린더는 날짜마다 정확히 하나의 CalendarDay
type CalendarDay struct {
	Date            time.Time `json:"date"`
	Name            string    `json:"name,omitempty"`
	IsHoliday       bool      `json:"is_holiday"`
	IsMakeupWorkday bool      `json:"is_makeup_workday"`
	Year            int       `json:"year"`
	Month           int       `json:"month"`
}

// IsTradingDay applies holiday > makeup workday > weekend default
func (d CalendarDay) IsTradingDay() bool {
	if d.IsHoliday {
		return false
	}
	if d.IsMakeupWorkday {
		return true
	}
	return !IsWeekend(d.Date)
}

// HolidayEntry is a single marked day returned by a holiday source
type HolidayEntry struct {
	Date            time.Time `json:"date"`
	Name            string    `json:"name"`
	IsHoliday       bool      `json:"is_holiday"`
	IsMakeupWorkday bool      `json:"is_makeup_workday"`
}

// IsWeekend reports whether t falls on Saturday or Sunday
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// DateOf truncates t to its calendar date at UTC midnight.
// 모든 날짜 비교는 이 정규화된 값으로 수행
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MarketZone is the exchange timezone (Asia/Shanghai, no DST)
var MarketZone = time.FixedZone("CST", 8*3600)

// MarketDate returns the exchange calendar date of t
func MarketDate(t time.Time) time.Time {
	return DateOf(t.In(MarketZone))
}

// ParseDate parses a YYYY-MM-DD string
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// DateKey formats t as YYYY-MM-DD
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// DaysInYear returns 366 for leap years, 365 otherwise
func DaysInYear(year int) int {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).YearDay()
}
