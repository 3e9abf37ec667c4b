package calendar

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/streakboard/internal/contracts"
	"github.com/wonny/streakboard/pkg/database"
)

// Repository persists calendars in data.trading_calendar
type Repository struct {
	db *database.DB
}

// NewRepository creates a new Repository instance
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// LoadYear returns the persisted days of a year in date order
func (r *Repository) LoadYear(ctx context.Context, year int) ([]contracts.CalendarDay, error) {
	query := `
		SELECT calendar_date, name, is_holiday, is_makeup_workday, year, month
		FROM data.trading_calendar
		WHERE year = $1
		ORDER BY calendar_date
	`

	rows, err := r.db.Pool.Query(ctx, query, year)
	if err != nil {
		return nil, fmt.Errorf("query trading calendar: %w", err)
	}
	defer rows.Close()

	var days []contracts.CalendarDay
	for rows.Next() {
		var d contracts.CalendarDay
		if err := rows.Scan(&d.Date, &d.Name, &d.IsHoliday, &d.IsMakeupWorkday, &d.Year, &d.Month); err != nil {
			return nil, fmt.Errorf("scan trading calendar: %w", err)
		}
		d.Date = contracts.DateOf(d.Date)
		days = append(days, d)
	}

	return days, rows.Err()
}

// ReplaceYear deletes then inserts a year's rows in one transaction
func (r *Repository) ReplaceYear(ctx context.Context, year int, days []contracts.CalendarDay) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM data.trading_calendar WHERE year = $1`, year); err != nil {
			return fmt.Errorf("delete trading calendar %d: %w", year, err)
		}

		batch := &pgx.Batch{}
		query := `
			INSERT INTO data.trading_calendar
				(calendar_date, name, is_holiday, is_makeup_workday, year, month, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW())`

		for _, d := range days {
			batch.Queue(query, d.Date, d.Name, d.IsHoliday, d.IsMakeupWorkday, d.Year, d.Month)
		}

		br := tx.SendBatch(ctx, batch)
		for range days {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("insert trading calendar %d: %w", year, err)
			}
		}

		return br.Close()
	})
}
