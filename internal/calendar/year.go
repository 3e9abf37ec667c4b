package calendar

import (
	"time"

	"github.com/wonny/streakboard/internal/contracts"
)

// YearCalendar is an immutable snapshot of one year's calendar.
// 갱신 시 통째로 교체되며 내부 값은 절대 수정하지 않음
type YearCalendar struct {
	year  int
	days  []contracts.CalendarDay
	index map[string]int
}

// NewYearCalendar builds a snapshot from the days of one year
func NewYearCalendar(year int, days []contracts.CalendarDay) *YearCalendar {
	copied := make([]contracts.CalendarDay, len(days))
	copy(copied, days)

	index := make(map[string]int, len(copied))
	for i, d := range copied {
		index[contracts.DateKey(d.Date)] = i
	}

	return &YearCalendar{year: year, days: copied, index: index}
}

// Year returns the calendar year
func (y *YearCalendar) Year() int {
	return y.year
}

// Len returns the number of days held
func (y *YearCalendar) Len() int {
	return len(y.days)
}

// Day looks up a single date
func (y *YearCalendar) Day(date time.Time) (contracts.CalendarDay, bool) {
	i, ok := y.index[contracts.DateKey(contracts.DateOf(date))]
	if !ok {
		return contracts.CalendarDay{}, false
	}
	return y.days[i], true
}

// Days returns a copy of all days in date order
func (y *YearCalendar) Days() []contracts.CalendarDay {
	out := make([]contracts.CalendarDay, len(y.days))
	copy(out, y.days)
	return out
}

// TradingDays counts the trading days of the year
func (y *YearCalendar) TradingDays() int {
	n := 0
	for _, d := range y.days {
		if d.IsTradingDay() {
			n++
		}
	}
	return n
}
