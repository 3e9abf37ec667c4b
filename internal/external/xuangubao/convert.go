package xuangubao

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/wonny/streakboard/internal/contracts"
	"github.com/wonny/streakboard/internal/sourceconfig"
)

var (
	hundred     = decimal.NewFromInt(100)
	hundredMill = decimal.NewFromInt(100_000_000)
)

// convertRow maps one upstream row into a typed snapshot.
// 원시 문자열 키는 여기서만 다루고 코어에는 타입 있는 값만 전달
func convertRow(row gjson.Result, endpoint sourceconfig.PoolEndpoint, tradeDate time.Time) (contracts.StockPoolSnapshot, bool) {
	code := row.Get("symbol").String()
	if code == "" {
		return contracts.StockPoolSnapshot{}, false
	}
	name := row.Get("stock_chi_name").String()

	circulating := num(row, "non_restricted_capital")
	buyLock := num(row, "buy_lock_volume_ratio")
	sellLock := num(row, "sell_lock_volume_ratio")

	lockRatio := buyLock
	if endpoint.Key == contracts.PoolLimitDown {
		lockRatio = sellLock
	}

	s := contracts.StockPoolSnapshot{
		TradeDate:            tradeDate,
		StockCode:            code,
		StockName:            name,
		PoolType:             endpoint.Key,
		StreakDays:           streak(row, endpoint.StreakField),
		ChangePercent:        num(row, "change_percent").Mul(hundred).Round(2),
		Price:                num(row, "price").Round(2),
		IsST:                 strings.Contains(strings.ToUpper(name), "ST"),
		TurnoverRatio:        num(row, "turnover_ratio").Mul(hundred).Round(2),
		CirculationMarketCap: circulating.Div(hundredMill).Round(2),
		TotalMarketCap:       num(row, "total_capital").Div(hundredMill).Round(2),
		BuyLockRatio:         buyLock.Mul(hundred).Round(4),
		SellLockRatio:        sellLock.Mul(hundred).Round(4),
		LockAmount:           lockRatio.Mul(circulating).Round(2),
		StockReason:          row.Get("surge_reason.stock_reason").String(),
		RelatedPlates:        plates(row),
		Detail:               detail(row, endpoint.Key),
	}

	return s, true
}

func detail(row gjson.Result, poolType contracts.PoolType) contracts.PoolDetail {
	switch poolType {
	case contracts.PoolLimitUp:
		return contracts.LimitUpDetail{
			BreakTimes:     int(row.Get("break_limit_up_times").Int()),
			FirstLimitUpAt: unix(row, "first_limit_up"),
			LastLimitUpAt:  unix(row, "last_limit_up"),
		}
	case contracts.PoolLimitDown:
		return contracts.LimitDownDetail{
			BreakTimes:       int(row.Get("break_limit_down_times").Int()),
			FirstLimitDownAt: unix(row, "first_limit_down"),
			LastLimitDownAt:  unix(row, "last_limit_down"),
		}
	case contracts.PoolYesterdayLimitUp:
		return contracts.YesterdayLimitUpDetail{
			BreakTimes:     int(row.Get("yesterday_break_limit_up_times").Int()),
			FirstLimitUpAt: unix(row, "yesterday_first_limit_up"),
			LastLimitUpAt:  unix(row, "yesterday_last_limit_up"),
		}
	case contracts.PoolBrokenLimitUp:
		return contracts.BrokenLimitUpDetail{
			BreakTimes:     int(row.Get("break_limit_up_times").Int()),
			FirstLimitUpAt: unix(row, "first_limit_up"),
			LastBreakAt:    unix(row, "last_break_limit_up"),
		}
	case contracts.PoolStrong:
		return contracts.StrongDetail{
			Days:           int(row.Get("m_days_n_boards_days").Int()),
			Boards:         int(row.Get("m_days_n_boards_boards").Int()),
			FirstLimitUpAt: unix(row, "first_limit_up"),
			LastLimitUpAt:  unix(row, "last_limit_up"),
		}
	}
	return nil
}

// streak reads the pool's streak field; no field or a non-positive value is 1
func streak(row gjson.Result, field string) int {
	if field == "" {
		return 1
	}
	n := int(row.Get(field).Int())
	if n < 1 {
		return 1
	}
	return n
}

func num(row gjson.Result, field string) decimal.Decimal {
	v := row.Get(field)
	if !v.Exists() || v.Type == gjson.Null {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(v.Raw)
	if err != nil {
		return decimal.NewFromFloat(v.Float())
	}
	return d
}

func unix(row gjson.Result, field string) *time.Time {
	ts := row.Get(field).Int()
	if ts <= 0 {
		return nil
	}
	t := time.Unix(ts, 0).UTC()
	return &t
}

func plates(row gjson.Result) []contracts.RelatedPlate {
	var out []contracts.RelatedPlate
	row.Get("surge_reason.related_plates").ForEach(func(_, p gjson.Result) bool {
		name := p.Get("plate_name").String()
		if name != "" {
			out = append(out, contracts.RelatedPlate{Name: name, Reason: p.Get("plate_reason").String()})
		}
		return true
	})
	return out
}
