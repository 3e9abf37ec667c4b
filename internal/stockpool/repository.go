package stockpool

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/wonny/streakboard/internal/contracts"
	"github.com/wonny/streakboard/pkg/database"
)

// Repository persists pool snapshots in data.stock_pool_snapshots.
// Rows are keyed by (trade_date, stock_code, pool_type) and never updated
type Repository struct {
	db *database.DB
}

// NewRepository creates a new Repository instance
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

const selectSnapshots = `
	SELECT
		trade_date, stock_code, stock_name, pool_type, streak_days,
		change_percent::text, price::text, is_st,
		turnover_ratio::text, circulation_market_cap::text, total_market_cap::text,
		buy_lock_ratio::text, sell_lock_ratio::text, lock_amount::text,
		stock_reason, related_plates, detail
	FROM data.stock_pool_snapshots
`

// Query returns one pool of one trade date
func (r *Repository) Query(ctx context.Context, tradeDate time.Time, poolType contracts.PoolType) ([]contracts.StockPoolSnapshot, error) {
	rows, err := r.db.Pool.Query(ctx, selectSnapshots+`
		WHERE trade_date = $1 AND pool_type = $2
		ORDER BY stock_code
	`, contracts.DateOf(tradeDate), string(poolType))
	if err != nil {
		return nil, fmt.Errorf("query %s snapshots: %w", poolType, err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// QueryDay returns several pools of one trade date
func (r *Repository) QueryDay(ctx context.Context, tradeDate time.Time, poolTypes []contracts.PoolType) ([]contracts.StockPoolSnapshot, error) {
	keys := make([]string, len(poolTypes))
	for i, p := range poolTypes {
		keys[i] = string(p)
	}

	rows, err := r.db.Pool.Query(ctx, selectSnapshots+`
		WHERE trade_date = $1 AND pool_type = ANY($2)
		ORDER BY pool_type, stock_code
	`, contracts.DateOf(tradeDate), keys)
	if err != nil {
		return nil, fmt.Errorf("query day snapshots: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// InsertIgnore inserts snapshots, skipping rows that already exist.
// 반환값은 실제로 삽입된 행 수
func (r *Repository) InsertIgnore(ctx context.Context, snapshots []contracts.StockPoolSnapshot) (int64, error) {
	if len(snapshots) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO data.stock_pool_snapshots (
			trade_date, stock_code, stock_name, pool_type, streak_days,
			change_percent, price, is_st,
			turnover_ratio, circulation_market_cap, total_market_cap,
			buy_lock_ratio, sell_lock_ratio, lock_amount,
			stock_reason, related_plates, detail, created_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6::numeric, $7::numeric, $8,
			$9::numeric, $10::numeric, $11::numeric,
			$12::numeric, $13::numeric, $14::numeric,
			$15, $16, $17, NOW()
		)
		ON CONFLICT (trade_date, stock_code, pool_type) DO NOTHING`

	for _, s := range snapshots {
		plates, err := json.Marshal(s.RelatedPlates)
		if err != nil {
			return 0, fmt.Errorf("marshal related plates %s: %w", s.StockCode, err)
		}
		var detail []byte
		if s.Detail != nil {
			if detail, err = json.Marshal(s.Detail); err != nil {
				return 0, fmt.Errorf("marshal detail %s: %w", s.StockCode, err)
			}
		}

		batch.Queue(query,
			contracts.DateOf(s.TradeDate), s.StockCode, s.StockName, string(s.PoolType), s.StreakDays,
			s.ChangePercent.String(), s.Price.String(), s.IsST,
			s.TurnoverRatio.String(), s.CirculationMarketCap.String(), s.TotalMarketCap.String(),
			s.BuyLockRatio.String(), s.SellLockRatio.String(), s.LockAmount.String(),
			s.StockReason, plates, detail,
		)
	}

	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()

	var inserted int64
	for range snapshots {
		tag, err := br.Exec()
		if err != nil {
			return inserted, fmt.Errorf("insert snapshot: %w", err)
		}
		inserted += tag.RowsAffected()
	}

	return inserted, nil
}

// CountByDate returns row counts per pool for a trade date
func (r *Repository) CountByDate(ctx context.Context, tradeDate time.Time) (map[contracts.PoolType]int, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT pool_type, COUNT(*)
		FROM data.stock_pool_snapshots
		WHERE trade_date = $1
		GROUP BY pool_type
	`, contracts.DateOf(tradeDate))
	if err != nil {
		return nil, fmt.Errorf("count snapshots: %w", err)
	}
	defer rows.Close()

	counts := make(map[contracts.PoolType]int)
	for rows.Next() {
		var pool string
		var n int
		if err := rows.Scan(&pool, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[contracts.PoolType(pool)] = n
	}

	return counts, rows.Err()
}

func scanSnapshots(rows pgx.Rows) ([]contracts.StockPoolSnapshot, error) {
	var out []contracts.StockPoolSnapshot
	for rows.Next() {
		var (
			s          contracts.StockPoolSnapshot
			pool       string
			platesJSON []byte
			detailJSON []byte
		)
		var change, price, turnover, circ, tot, buyLock, sellLock, lockAmount string

		if err := rows.Scan(
			&s.TradeDate, &s.StockCode, &s.StockName, &pool, &s.StreakDays,
			&change, &price, &s.IsST,
			&turnover, &circ, &tot,
			&buyLock, &sellLock, &lockAmount,
			&s.StockReason, &platesJSON, &detailJSON,
		); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}

		s.TradeDate = contracts.DateOf(s.TradeDate)
		s.PoolType = contracts.PoolType(pool)

		var err error
		decimals := []struct {
			dst *decimal.Decimal
			src string
		}{
			{&s.ChangePercent, change}, {&s.Price, price}, {&s.TurnoverRatio, turnover},
			{&s.CirculationMarketCap, circ}, {&s.TotalMarketCap, tot},
			{&s.BuyLockRatio, buyLock}, {&s.SellLockRatio, sellLock}, {&s.LockAmount, lockAmount},
		}
		for _, d := range decimals {
			if *d.dst, err = decimal.NewFromString(d.src); err != nil {
				return nil, fmt.Errorf("parse decimal %q for %s: %w", d.src, s.StockCode, err)
			}
		}

		if len(platesJSON) > 0 {
			if err := json.Unmarshal(platesJSON, &s.RelatedPlates); err != nil {
				return nil, fmt.Errorf("unmarshal related plates: %w", err)
			}
		}
		if s.Detail, err = contracts.DecodePoolDetail(s.PoolType, detailJSON); err != nil {
			return nil, err
		}

		out = append(out, s)
	}

	return out, rows.Err()
}
