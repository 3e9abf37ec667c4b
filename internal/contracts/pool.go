package contracts

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PoolType identifies one of the daily limit pools
type PoolType string

// ⭐ SSOT: 풀 키는 여기서만 정의 (DB pool_type 컬럼, API 파라미터와 동일)
const (
	PoolLimitUp          PoolType = "zt"
	PoolLimitDown        PoolType = "dt"
	PoolYesterdayLimitUp PoolType = "yesterday_zt"
	PoolBrokenLimitUp    PoolType = "broken_zt"
	PoolStrong           PoolType = "super_stock"
)

// AllPoolTypes returns every pool in sync order
func AllPoolTypes() []PoolType {
	return []PoolType{PoolLimitUp, PoolLimitDown, PoolYesterdayLimitUp, PoolBrokenLimitUp, PoolStrong}
}

// LadderPoolTypes returns the pools the promotion ladder reads
func LadderPoolTypes() []PoolType {
	return []PoolType{PoolLimitUp, PoolLimitDown, PoolYesterdayLimitUp, PoolBrokenLimitUp}
}

// ParsePoolType validates a pool key
func ParsePoolType(s string) (PoolType, error) {
	p := PoolType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllPoolTypes() {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPoolType, s)
}

// Label returns a human readable pool name
func (p PoolType) Label() string {
	switch p {
	case PoolLimitUp:
		return "limit up"
	case PoolLimitDown:
		return "limit down"
	case PoolYesterdayLimitUp:
		return "yesterday limit up"
	case PoolBrokenLimitUp:
		return "broken limit up"
	case PoolStrong:
		return "strong"
	default:
		return string(p)
	}
}

// RelatedPlate is a sector tag attached to a surge reason
type RelatedPlate struct {
	Name   string `json:"plate_name"`
	Reason string `json:"plate_reason,omitempty"`
}

// StockPoolSnapshot is one stock's row in one pool on one trade date.
// Key: (TradeDate, StockCode, PoolType). 적재 후 불변
type StockPoolSnapshot struct {
	TradeDate time.Time `json:"trade_date"`
	StockCode string    `json:"stock_code"`
	StockName string    `json:"stock_name"`
	PoolType  PoolType  `json:"pool_type"`

	StreakDays    int             `json:"streak_days"`
	ChangePercent decimal.Decimal `json:"change_percent"`
	Price         decimal.Decimal `json:"price"`
	IsST          bool            `json:"is_st"`

	// 공통 시장 필드
	TurnoverRatio        decimal.Decimal `json:"turnover_ratio"`
	CirculationMarketCap decimal.Decimal `json:"circulation_market_cap"` // 억 단위
	TotalMarketCap       decimal.Decimal `json:"total_market_cap"`       // 억 단위
	BuyLockRatio         decimal.Decimal `json:"buy_lock_ratio"`
	SellLockRatio        decimal.Decimal `json:"sell_lock_ratio"`
	LockAmount           decimal.Decimal `json:"lock_amount"`

	StockReason   string         `json:"stock_reason,omitempty"`
	RelatedPlates []RelatedPlate `json:"related_plates,omitempty"`

	Detail PoolDetail `json:"detail,omitempty"`
}

// Key returns the identity of the snapshot
func (s StockPoolSnapshot) Key() string {
	return DateKey(s.TradeDate) + "/" + string(s.PoolType) + "/" + s.StockCode
}

// PoolDetail is the per-pool typed variant of a snapshot
type PoolDetail interface {
	PoolType() PoolType
}

// LimitUpDetail holds limit-up pool fields
type LimitUpDetail struct {
	BreakTimes     int        `json:"break_times"`
	FirstLimitUpAt *time.Time `json:"first_limit_up_at,omitempty"`
	LastLimitUpAt  *time.Time `json:"last_limit_up_at,omitempty"`
}

func (LimitUpDetail) PoolType() PoolType { return PoolLimitUp }

// LimitDownDetail holds limit-down pool fields
type LimitDownDetail struct {
	BreakTimes       int        `json:"break_times"`
	FirstLimitDownAt *time.Time `json:"first_limit_down_at,omitempty"`
	LastLimitDownAt  *time.Time `json:"last_limit_down_at,omitempty"`
}

func (LimitDownDetail) PoolType() PoolType { return PoolLimitDown }

// YesterdayLimitUpDetail holds the previous session's limit-up fields
type YesterdayLimitUpDetail struct {
	BreakTimes     int        `json:"break_times"`
	FirstLimitUpAt *time.Time `json:"first_limit_up_at,omitempty"`
	LastLimitUpAt  *time.Time `json:"last_limit_up_at,omitempty"`
}

func (YesterdayLimitUpDetail) PoolType() PoolType { return PoolYesterdayLimitUp }

// BrokenLimitUpDetail holds fields of stocks that touched the limit and opened
type BrokenLimitUpDetail struct {
	BreakTimes     int        `json:"break_times"`
	FirstLimitUpAt *time.Time `json:"first_limit_up_at,omitempty"`
	LastBreakAt    *time.Time `json:"last_break_at,omitempty"`
}

func (BrokenLimitUpDetail) PoolType() PoolType { return PoolBrokenLimitUp }

// StrongDetail holds strong-stock fields ("M days N boards")
type StrongDetail struct {
	Days           int        `json:"days"`
	Boards         int        `json:"boards"`
	FirstLimitUpAt *time.Time `json:"first_limit_up_at,omitempty"`
	LastLimitUpAt  *time.Time `json:"last_limit_up_at,omitempty"`
}

func (StrongDetail) PoolType() PoolType { return PoolStrong }

// MDaysNBoards formats the strong-stock streak as "5d3b"
func (d StrongDetail) MDaysNBoards() string {
	return fmt.Sprintf("%dd%db", d.Days, d.Boards)
}

// DecodePoolDetail restores the typed detail stored as JSON for a pool.
// 빈 값이면 nil 반환
func DecodePoolDetail(poolType PoolType, raw []byte) (PoolDetail, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var (
		detail PoolDetail
		err    error
	)
	switch poolType {
	case PoolLimitUp:
		var d LimitUpDetail
		err = json.Unmarshal(raw, &d)
		detail = d
	case PoolLimitDown:
		var d LimitDownDetail
		err = json.Unmarshal(raw, &d)
		detail = d
	case PoolYesterdayLimitUp:
		var d YesterdayLimitUpDetail
		err = json.Unmarshal(raw, &d)
		detail = d
	case PoolBrokenLimitUp:
		var d BrokenLimitUpDetail
		err = json.Unmarshal(raw, &d)
		detail = d
	case PoolStrong:
		var d StrongDetail
		err = json.Unmarshal(raw, &d)
		detail = d
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidPoolType, poolType)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s detail: %w", poolType, err)
	}
	return detail, nil
}
