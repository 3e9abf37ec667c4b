package stockpool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/streakboard/internal/contracts"
	"github.com/wonny/streakboard/pkg/logger"
)

func ladderDay() []contracts.StockPoolSnapshot {
	return []contracts.StockPoolSnapshot{
		snap("2025-01-03", "A", contracts.PoolYesterdayLimitUp, 2, "1.00"),
		snap("2025-01-03", "B", contracts.PoolYesterdayLimitUp, 2, "2.00"),
		snap("2025-01-03", "A", contracts.PoolLimitUp, 3, "10.00"),
		snap("2025-01-03", "C", contracts.PoolLimitUp, 1, "10.00"),
		snap("2025-01-03", "D", contracts.PoolStrong, 1, "7.00"),
	}
}

func newTestService(repo *memoryRepo, source *fakeSource) *Service {
	resolver := &fakeResolver{}
	syncer := NewSyncer(source, repo, resolver, contracts.AllPoolTypes(), logger.Nop())
	return NewService(repo, syncer, resolver, logger.Nop())
}

func TestService_LadderFromStoredData(t *testing.T) {
	source := newFakeSource()
	svc := newTestService(newMemoryRepo(ladderDay()...), source)

	report, err := svc.Ladder(context.Background(), date("2025-01-05"), false)
	require.NoError(t, err)

	assert.Equal(t, "2025-01-05", contracts.DateKey(report.RequestedDate))
	assert.Equal(t, "2025-01-03", contracts.DateKey(report.TradeDate))
	require.Len(t, report.Rungs, 2)
	assert.Equal(t, 3, report.Rungs[0].Level)
	assert.Equal(t, "50.00", report.Rungs[0].ChanceRatio.StringFixed(2))
	assert.Equal(t, 1, report.Rungs[1].Level)
	assert.Empty(t, source.calls, "no sync when data exists")
}

func TestService_LadderSyncsOnDataGap(t *testing.T) {
	source := newFakeSource()
	source.add(ladderDay()...)
	repo := newMemoryRepo()
	svc := newTestService(repo, source)

	report, err := svc.Ladder(context.Background(), date("2025-01-03"), false)
	require.NoError(t, err)
	require.Len(t, report.Rungs, 2)
	assert.Len(t, source.calls, 5)

	_, err = svc.Ladder(context.Background(), date("2025-01-03"), false)
	require.NoError(t, err)
	assert.Len(t, source.calls, 5, "second request served from storage")
}

func TestService_LadderGapWithFailingSourceIsEmpty(t *testing.T) {
	source := newFakeSource()
	for _, p := range contracts.AllPoolTypes() {
		source.fail[p] = true
	}
	svc := newTestService(newMemoryRepo(), source)

	report, err := svc.Ladder(context.Background(), date("2025-01-03"), true)
	require.NoError(t, err)
	assert.Empty(t, report.Rungs)
	assert.True(t, report.ExcludeST)
}

func TestService_LadderResolveFailure(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, &fakeResolver{err: contracts.ErrSourceUnavailable}, logger.Nop())

	_, err := svc.Ladder(context.Background(), date("2025-01-03"), false)
	assert.ErrorIs(t, err, contracts.ErrSourceUnavailable)
}

func TestService_Pool(t *testing.T) {
	st := snap("2025-01-03", "E", contracts.PoolLimitDown, 1, "-10.00")
	st.StockName = "ST Echo"
	repo := newMemoryRepo(
		snap("2025-01-03", "A", contracts.PoolLimitDown, 1, "-9.90"),
		snap("2025-01-03", "B", contracts.PoolLimitDown, 2, "-10.01"),
		st,
	)
	svc := newTestService(repo, newFakeSource())

	report, err := svc.Pool(context.Background(), date("2025-01-03"), contracts.PoolLimitDown, false)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Total)
	require.Len(t, report.Groups, 2)
	assert.Equal(t, 2, report.Groups[0].Streak)
	assert.Equal(t, "A", report.Groups[1].Members[0].StockCode)

	filtered, err := svc.Pool(context.Background(), date("2025-01-03"), contracts.PoolLimitDown, true)
	require.NoError(t, err)
	assert.Equal(t, 2, filtered.Total)
}

func TestService_PoolSyncsOnDataGap(t *testing.T) {
	source := newFakeSource()
	source.add(snap("2025-01-03", "S", contracts.PoolStrong, 2, "6.50"))
	svc := newTestService(newMemoryRepo(), source)

	report, err := svc.Pool(context.Background(), date("2025-01-04"), contracts.PoolStrong, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Total)
	assert.Equal(t, []string{"2025-01-03/super_stock"}, source.calls)
}
