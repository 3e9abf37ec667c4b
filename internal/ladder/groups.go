package ladder

import (
	"fmt"
	"sort"

	"github.com/wonny/streakboard/internal/contracts"
)

// GroupByStreak buckets one pool's snapshots by streak, largest streak first.
// Inside a bucket the limit-down pool is ordered by change descending,
// every other pool ascending; stock code breaks ties.
func GroupByStreak(snapshots []contracts.StockPoolSnapshot, poolType contracts.PoolType) []contracts.StreakGroup {
	buckets := make(map[int][]contracts.StockPoolSnapshot)
	for _, s := range snapshots {
		buckets[s.StreakDays] = append(buckets[s.StreakDays], s)
	}

	groups := make([]contracts.StreakGroup, 0, len(buckets))
	for streak, members := range buckets {
		sortByChange(members, poolType == contracts.PoolLimitDown)
		groups = append(groups, contracts.StreakGroup{
			Streak:  streak,
			Title:   fmt.Sprintf("%d consecutive", streak),
			Members: members,
		})
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Streak > groups[j].Streak
	})
	return groups
}

// FilterST drops special-treatment stocks when exclude is set
func FilterST(snapshots []contracts.StockPoolSnapshot, exclude bool) []contracts.StockPoolSnapshot {
	return filterST(snapshots, exclude)
}

func sortByChange(members []contracts.StockPoolSnapshot, descending bool) {
	sort.Slice(members, func(i, j int) bool {
		a, b := members[i], members[j]
		if c := a.ChangePercent.Cmp(b.ChangePercent); c != 0 {
			if descending {
				return c > 0
			}
			return c < 0
		}
		return a.StockCode < b.StockCode
	})
}
