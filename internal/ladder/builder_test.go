package ladder

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/streakboard/internal/contracts"
)

func snap(code string, pool contracts.PoolType, streak int, change string) contracts.StockPoolSnapshot {
	return contracts.StockPoolSnapshot{
		StockCode:     code,
		StockName:     "name-" + code,
		PoolType:      pool,
		StreakDays:    streak,
		ChangePercent: decimal.RequireFromString(change),
	}
}

func codes(members []contracts.ClassifiedStock) []string {
	out := make([]string, len(members))
	for i, m := range members {
		out[i] = m.StockCode
	}
	return out
}

func findRung(t *testing.T, rungs []contracts.LadderRung, level int) contracts.LadderRung {
	t.Helper()
	for _, r := range rungs {
		if r.Level == level {
			return r
		}
	}
	t.Fatalf("rung level %d not found", level)
	return contracts.LadderRung{}
}

func TestBuild_TwoPromotesToThree(t *testing.T) {
	snapshots := []contracts.StockPoolSnapshot{
		snap("000001", contracts.PoolYesterdayLimitUp, 2, "3.10"),
		snap("000002", contracts.PoolYesterdayLimitUp, 2, "-2.00"),
		snap("000003", contracts.PoolYesterdayLimitUp, 2, "-9.98"),
		snap("000004", contracts.PoolYesterdayLimitUp, 2, "1.00"),
		snap("000001", contracts.PoolLimitUp, 3, "10.01"),
		snap("000004", contracts.PoolLimitUp, 3, "9.99"),
		snap("000003", contracts.PoolLimitDown, 1, "-9.98"),
	}

	rungs := Build(snapshots, Options{})
	require.Len(t, rungs, 1)

	rung := rungs[0]
	assert.Equal(t, 3, rung.Level)
	assert.Equal(t, 2, rung.FromStreak)
	assert.Equal(t, "2 promotes to 3", rung.Title)
	require.NotNil(t, rung.ChanceRatio)
	assert.Equal(t, "50.00", rung.ChanceRatio.StringFixed(2))

	assert.Equal(t, []string{"000004", "000001", "000003", "000002"}, codes(rung.Members))
	assert.Equal(t, contracts.OutcomeAdvanced, rung.Members[0].Outcome)
	assert.Equal(t, contracts.OutcomeAdvanced, rung.Members[1].Outcome)
	assert.Equal(t, contracts.OutcomeFellLimitDown, rung.Members[2].Outcome)
	assert.Equal(t, contracts.OutcomeFailed, rung.Members[3].Outcome)

	// 진급 종목은 오늘 스냅샷의 등락률을 가짐
	assert.Equal(t, "9.99", rung.Members[0].ChangePercent.String())
	assert.Equal(t, contracts.PoolLimitUp, rung.Members[0].PoolType)
}

func TestBuild_NoYesterdayGroupEmitsNoRung(t *testing.T) {
	snapshots := []contracts.StockPoolSnapshot{
		snap("600001", contracts.PoolLimitUp, 6, "10.00"),
		snap("600002", contracts.PoolYesterdayLimitUp, 3, "5.00"),
	}

	rungs := Build(snapshots, Options{})
	require.Len(t, rungs, 1)
	assert.Equal(t, 4, rungs[0].Level)
	assert.Equal(t, "0.00", rungs[0].ChanceRatio.StringFixed(2))
	assert.Equal(t, contracts.OutcomeFailed, rungs[0].Members[0].Outcome)
}

func TestBuild_FirstPromotionRung(t *testing.T) {
	snapshots := []contracts.StockPoolSnapshot{
		snap("300001", contracts.PoolLimitUp, 1, "20.00"),
		snap("300002", contracts.PoolLimitUp, 1, "10.00"),
		snap("300003", contracts.PoolBrokenLimitUp, 1, "4.00"),
		snap("300002", contracts.PoolBrokenLimitUp, 1, "6.00"),
	}

	rungs := Build(snapshots, Options{})
	require.Len(t, rungs, 1)

	first := rungs[0]
	assert.Equal(t, 1, first.Level)
	assert.Equal(t, "First promotion", first.Title)
	assert.Nil(t, first.ChanceRatio)
	assert.Equal(t, []string{"300002", "300001", "300003"}, codes(first.Members))
	assert.Equal(t, contracts.OutcomeAdvanced, first.Members[1].Outcome)
	assert.Equal(t, contracts.OutcomeBroken, first.Members[2].Outcome)
}

func TestBuild_BrokenOutcomeAndOrdering(t *testing.T) {
	snapshots := []contracts.StockPoolSnapshot{
		snap("A", contracts.PoolYesterdayLimitUp, 1, "1.00"),
		snap("B", contracts.PoolYesterdayLimitUp, 1, "2.00"),
		snap("C", contracts.PoolYesterdayLimitUp, 1, "3.00"),
		snap("D", contracts.PoolYesterdayLimitUp, 4, "0.00"),
		snap("E", contracts.PoolYesterdayLimitUp, 4, "0.00"),
		snap("A", contracts.PoolLimitUp, 2, "10.00"),
		snap("B", contracts.PoolBrokenLimitUp, 1, "5.00"),
		snap("C", contracts.PoolLimitDown, 1, "-10.00"),
		snap("C", contracts.PoolBrokenLimitUp, 1, "-10.00"),
		snap("E", contracts.PoolLimitUp, 5, "10.00"),
	}

	rungs := Build(snapshots, Options{})

	levels := make([]int, len(rungs))
	for i, r := range rungs {
		levels[i] = r.Level
	}
	assert.Equal(t, []int{5, 2, 1}, levels)

	two := findRung(t, rungs, 2)
	assert.Equal(t, []string{"A", "C", "B"}, codes(two.Members))
	assert.Equal(t, contracts.OutcomeFellLimitDown, two.Members[1].Outcome, "limit down beats broken")
	assert.Equal(t, contracts.OutcomeBroken, two.Members[2].Outcome)
	assert.Equal(t, "33.33", two.ChanceRatio.StringFixed(2))

	five := findRung(t, rungs, 5)
	assert.Equal(t, []string{"E", "D"}, codes(five.Members))
	assert.Equal(t, "50.00", five.ChanceRatio.StringFixed(2))
}

func TestBuild_ClassificationIsTotalAndExclusive(t *testing.T) {
	var snapshots []contracts.StockPoolSnapshot
	for i, code := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		snapshots = append(snapshots, snap(code, contracts.PoolYesterdayLimitUp, 1+i%3, "1.00"))
	}
	snapshots = append(snapshots,
		snap("a", contracts.PoolLimitUp, 2, "10.00"),
		snap("b", contracts.PoolLimitUp, 3, "10.00"),
		snap("e", contracts.PoolLimitDown, 1, "-10.00"),
		snap("g", contracts.PoolLimitUp, 5, "10.00"), // 연속일수 불일치 → Failed
		snap("a", contracts.PoolYesterdayLimitUp, 1, "1.00"), // 중복 코드
	)

	rungs := Build(snapshots, Options{})

	seen := map[string]int{}
	for _, r := range rungs {
		if r.Level == 1 {
			continue
		}
		advanced := 0
		for _, m := range r.Members {
			seen[m.StockCode]++
			if m.Outcome == contracts.OutcomeAdvanced {
				advanced++
			}
		}
		assert.True(t, ChanceRatio(advanced, len(r.Members)).Equal(*r.ChanceRatio))
	}

	for _, code := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		assert.Equal(t, 1, seen[code], "stock %s classified %d times", code, seen[code])
	}
}

func TestBuild_ExcludeST(t *testing.T) {
	st := snap("000005", contracts.PoolYesterdayLimitUp, 1, "1.00")
	st.StockName = "*ST Alpha"
	flagged := snap("000006", contracts.PoolYesterdayLimitUp, 1, "1.00")
	flagged.IsST = true

	snapshots := []contracts.StockPoolSnapshot{
		st,
		flagged,
		snap("000007", contracts.PoolYesterdayLimitUp, 1, "1.00"),
	}

	all := Build(snapshots, Options{})
	require.Len(t, all, 1)
	assert.Len(t, all[0].Members, 3)

	filtered := Build(snapshots, Options{ExcludeST: true})
	require.Len(t, filtered, 1)
	assert.Equal(t, []string{"000007"}, codes(filtered[0].Members))
}

func TestBuild_EmptyInput(t *testing.T) {
	assert.Empty(t, Build(nil, Options{}))
	assert.Empty(t, Build([]contracts.StockPoolSnapshot{}, Options{ExcludeST: true}))
}

func TestChanceRatio(t *testing.T) {
	tests := []struct {
		advanced, size int
		want           string
	}{
		{1, 2, "50.00"},
		{1, 3, "33.33"},
		{2, 3, "66.67"},
		{1, 8, "12.50"},
		{0, 5, "0.00"},
		{5, 5, "100.00"},
		{0, 0, "0.00"},
	}

	for _, tt := range tests {
		got := ChanceRatio(tt.advanced, tt.size)
		assert.Equal(t, tt.want, got.StringFixed(2), "%d/%d", tt.advanced, tt.size)
	}
}

func TestGroupByStreak(t *testing.T) {
	snapshots := []contracts.StockPoolSnapshot{
		snap("a", contracts.PoolLimitDown, 1, "-9.90"),
		snap("b", contracts.PoolLimitDown, 1, "-10.02"),
		snap("c", contracts.PoolLimitDown, 2, "-10.00"),
	}

	groups := GroupByStreak(snapshots, contracts.PoolLimitDown)
	require.Len(t, groups, 2)
	assert.Equal(t, 2, groups[0].Streak)
	assert.Equal(t, "2 consecutive", groups[0].Title)
	assert.Equal(t, "a", groups[1].Members[0].StockCode)
	assert.Equal(t, "b", groups[1].Members[1].StockCode)

	up := GroupByStreak([]contracts.StockPoolSnapshot{
		snap("x", contracts.PoolLimitUp, 1, "10.01"),
		snap("y", contracts.PoolLimitUp, 1, "9.98"),
	}, contracts.PoolLimitUp)
	assert.Equal(t, "y", up[0].Members[0].StockCode)
}
