package contracts

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Outcome is how a stock from yesterday's streak group fared today.
// 값이 작을수록 정렬 우선순위가 높음
type Outcome int

const (
	OutcomeAdvanced Outcome = iota
	OutcomeFellLimitDown
	OutcomeBroken
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAdvanced:
		return "advanced"
	case OutcomeFellLimitDown:
		return "fell_limit_down"
	case OutcomeBroken:
		return "broken"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// MarshalText renders the outcome by name in JSON
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// ClassifiedStock is a snapshot with its promotion outcome
type ClassifiedStock struct {
	StockPoolSnapshot
	Outcome Outcome `json:"outcome"`
}

// LadderRung is one "n promotes to n+1" row of the promotion ladder.
// ChanceRatio는 첫 진입 단계(Level 1)에서 nil
type LadderRung struct {
	Level       int               `json:"level"`
	FromStreak  int               `json:"from_streak"`
	Title       string            `json:"title"`
	ChanceRatio *decimal.Decimal  `json:"chance_ratio"`
	Members     []ClassifiedStock `json:"children"`
}

// MarshalJSON renders chance_ratio with exactly two decimals ("50.00")
func (r LadderRung) MarshalJSON() ([]byte, error) {
	type rung LadderRung
	var ratio *string
	if r.ChanceRatio != nil {
		s := r.ChanceRatio.StringFixed(2)
		ratio = &s
	}
	return json.Marshal(struct {
		rung
		ChanceRatio *string `json:"chance_ratio"`
	}{rung: rung(r), ChanceRatio: ratio})
}

// LadderReport is the answer to a ladder request
type LadderReport struct {
	RequestedDate time.Time    `json:"requested_date"`
	TradeDate     time.Time    `json:"trade_date"`
	ExcludeST     bool         `json:"exclude_st"`
	Rungs         []LadderRung `json:"rungs"`
}

// StreakGroup is one streak bucket of a single-pool view
type StreakGroup struct {
	Streak  int                 `json:"streak"`
	Title   string              `json:"title"`
	Members []StockPoolSnapshot `json:"children"`
}

// PoolReport is the answer to a single-pool request
type PoolReport struct {
	RequestedDate time.Time     `json:"requested_date"`
	TradeDate     time.Time     `json:"trade_date"`
	PoolType      PoolType      `json:"pool_type"`
	Total         int           `json:"total"`
	Groups        []StreakGroup `json:"groups"`
}
