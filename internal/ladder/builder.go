// Package ladder classifies a trading day's pool snapshots into the
// limit-up promotion ladder. Everything here is pure and stateless.
package ladder

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wonny/streakboard/internal/contracts"
)

// Options controls ladder building
type Options struct {
	ExcludeST bool
}

// day is one trading day's snapshots partitioned by pool
type day struct {
	limitUp   map[int]map[string]contracts.StockPoolSnapshot // streak → code → snapshot
	limitDown map[string]struct{}
	broken    map[string]contracts.StockPoolSnapshot
	yesterday map[int][]contracts.StockPoolSnapshot // streak → snapshots (code dedup)
}

// Build assembles the promotion ladder for one trading day.
// Rungs are ordered by level descending; an empty input yields an empty ladder.
func Build(snapshots []contracts.StockPoolSnapshot, opts Options) []contracts.LadderRung {
	td := partition(filterST(snapshots, opts.ExcludeST))

	var rungs []contracts.LadderRung
	for streak, group := range td.yesterday {
		if len(group) == 0 {
			continue
		}
		rungs = append(rungs, td.promotionRung(streak, group))
	}

	if first, ok := td.firstRung(); ok {
		rungs = append(rungs, first)
	}

	sort.Slice(rungs, func(i, j int) bool {
		return rungs[i].Level > rungs[j].Level
	})

	return rungs
}

// IsST reports whether a snapshot is a special-treatment stock
func IsST(s contracts.StockPoolSnapshot) bool {
	return s.IsST || strings.Contains(strings.ToUpper(s.StockName), "ST")
}

func filterST(snapshots []contracts.StockPoolSnapshot, exclude bool) []contracts.StockPoolSnapshot {
	if !exclude {
		return snapshots
	}
	out := make([]contracts.StockPoolSnapshot, 0, len(snapshots))
	for _, s := range snapshots {
		if !IsST(s) {
			out = append(out, s)
		}
	}
	return out
}

func partition(snapshots []contracts.StockPoolSnapshot) *day {
	td := &day{
		limitUp:   make(map[int]map[string]contracts.StockPoolSnapshot),
		limitDown: make(map[string]struct{}),
		broken:    make(map[string]contracts.StockPoolSnapshot),
		yesterday: make(map[int][]contracts.StockPoolSnapshot),
	}
	seenYesterday := make(map[string]struct{})

	for _, s := range snapshots {
		switch s.PoolType {
		case contracts.PoolLimitUp:
			if td.limitUp[s.StreakDays] == nil {
				td.limitUp[s.StreakDays] = make(map[string]contracts.StockPoolSnapshot)
			}
			td.limitUp[s.StreakDays][s.StockCode] = s
		case contracts.PoolLimitDown:
			td.limitDown[s.StockCode] = struct{}{}
		case contracts.PoolBrokenLimitUp:
			td.broken[s.StockCode] = s
		case contracts.PoolYesterdayLimitUp:
			if _, dup := seenYesterday[s.StockCode]; dup {
				continue
			}
			seenYesterday[s.StockCode] = struct{}{}
			if s.StreakDays < 1 {
				s.StreakDays = 1
			}
			td.yesterday[s.StreakDays] = append(td.yesterday[s.StreakDays], s)
		}
	}

	return td
}

// promotionRung classifies yesterday's streak-n group against today
func (td *day) promotionRung(streak int, group []contracts.StockPoolSnapshot) contracts.LadderRung {
	promoted := td.limitUp[streak+1]

	members := make([]contracts.ClassifiedStock, 0, len(group))
	advanced := 0
	for _, s := range group {
		if today, ok := promoted[s.StockCode]; ok {
			// 진급 종목은 오늘 상한가 스냅샷 기준으로 표시
			members = append(members, contracts.ClassifiedStock{StockPoolSnapshot: today, Outcome: contracts.OutcomeAdvanced})
			advanced++
			continue
		}
		members = append(members, contracts.ClassifiedStock{StockPoolSnapshot: s, Outcome: td.classifyLoser(s.StockCode)})
	}
	sortMembers(members)

	ratio := ChanceRatio(advanced, len(group))
	return contracts.LadderRung{
		Level:       streak + 1,
		FromStreak:  streak,
		Title:       fmt.Sprintf("%d promotes to %d", streak, streak+1),
		ChanceRatio: &ratio,
		Members:     members,
	}
}

func (td *day) classifyLoser(code string) contracts.Outcome {
	if _, ok := td.limitDown[code]; ok {
		return contracts.OutcomeFellLimitDown
	}
	if _, ok := td.broken[code]; ok {
		return contracts.OutcomeBroken
	}
	return contracts.OutcomeFailed
}

// firstRung is today's first boards plus today's broken boards
func (td *day) firstRung() (contracts.LadderRung, bool) {
	firsts := td.limitUp[1]

	members := make([]contracts.ClassifiedStock, 0, len(firsts)+len(td.broken))
	for _, s := range firsts {
		members = append(members, contracts.ClassifiedStock{StockPoolSnapshot: s, Outcome: contracts.OutcomeAdvanced})
	}
	for code, s := range td.broken {
		if _, ok := firsts[code]; ok {
			continue
		}
		members = append(members, contracts.ClassifiedStock{StockPoolSnapshot: s, Outcome: contracts.OutcomeBroken})
	}

	if len(members) == 0 {
		return contracts.LadderRung{}, false
	}
	sortMembers(members)

	return contracts.LadderRung{
		Level:      1,
		FromStreak: 0,
		Title:      "First promotion",
		Members:    members,
	}, true
}

// sortMembers orders by outcome, then changePercent ascending, then code
func sortMembers(members []contracts.ClassifiedStock) {
	sort.Slice(members, func(i, j int) bool {
		a, b := members[i], members[j]
		if a.Outcome != b.Outcome {
			return a.Outcome < b.Outcome
		}
		if c := a.ChangePercent.Cmp(b.ChangePercent); c != 0 {
			return c < 0
		}
		return a.StockCode < b.StockCode
	})
}

// ChanceRatio returns advanced*100/size rounded half-up to 2 decimals
func ChanceRatio(advanced, size int) decimal.Decimal {
	if size == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(advanced) * 100).DivRound(decimal.NewFromInt(int64(size)), 2)
}
