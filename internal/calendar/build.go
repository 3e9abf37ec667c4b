package calendar

import (
	"time"

	"github.com/wonny/streakboard/internal/contracts"
)

const weekendName = "weekend"

// BuildYear expands a holiday source's markings into one CalendarDay for every
// date of the year. Unmarked weekend days become ordinary non-trading weekend
// entries. Entries outside the year are ignored; duplicate entries merge their
// flags so a holiday marking is never lost.
func BuildYear(year int, entries []contracts.HolidayEntry) []contracts.CalendarDay {
	marked := make(map[string]contracts.HolidayEntry, len(entries))
	for _, e := range entries {
		date := contracts.DateOf(e.Date)
		if date.Year() != year {
			continue
		}
		key := contracts.DateKey(date)
		if prev, ok := marked[key]; ok {
			e.IsHoliday = e.IsHoliday || prev.IsHoliday
			e.IsMakeupWorkday = e.IsMakeupWorkday || prev.IsMakeupWorkday
			if prev.Name != "" {
				e.Name = prev.Name
			}
		}
		e.Date = date
		marked[key] = e
	}

	total := contracts.DaysInYear(year)
	days := make([]contracts.CalendarDay, 0, total)

	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < total; i++ {
		date := start.AddDate(0, 0, i)
		day := contracts.CalendarDay{
			Date:  date,
			Year:  year,
			Month: int(date.Month()),
		}

		if e, ok := marked[contracts.DateKey(date)]; ok {
			day.Name = e.Name
			day.IsHoliday = e.IsHoliday
			day.IsMakeupWorkday = e.IsMakeupWorkday
		} else if contracts.IsWeekend(date) {
			day.Name = weekendName
		}

		days = append(days, day)
	}

	return days
}
