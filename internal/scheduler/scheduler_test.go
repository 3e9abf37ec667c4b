package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/streakboard/pkg/logger"
)

type stubJob struct {
	name     string
	schedule string
	failures int32 // fail this many times before succeeding
	calls    atomic.Int32
}

func (j *stubJob) Name() string     { return j.name }
func (j *stubJob) Schedule() string { return j.schedule }

func (j *stubJob) Run(ctx context.Context) error {
	n := j.calls.Add(1)
	if n <= j.failures {
		return errors.New("upstream unavailable")
	}
	return nil
}

func newTestScheduler(opts ...Option) *Scheduler {
	opts = append([]Option{WithRetry(2, time.Millisecond)}, opts...)
	return New(logger.Nop(), opts...)
}

func TestAddJob(t *testing.T) {
	s := newTestScheduler()

	require.NoError(t, s.AddJob(&stubJob{name: "pool_sync", schedule: "0 30 15 * * 1-5"}))
	require.NoError(t, s.AddJob(&stubJob{name: "calendar_sync", schedule: "0 0 0 1 * *"}))

	assert.Equal(t, []string{"calendar_sync", "pool_sync"}, s.GetAllJobs())

	err := s.AddJob(&stubJob{name: "pool_sync", schedule: "0 30 15 * * 1-5"})
	assert.Error(t, err, "duplicate job names are rejected")
}

func TestAddJob_InvalidSchedule(t *testing.T) {
	s := newTestScheduler()

	err := s.AddJob(&stubJob{name: "broken", schedule: "every day"})
	assert.Error(t, err)
	assert.Empty(t, s.GetAllJobs())
}

func TestRemoveJob(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.AddJob(&stubJob{name: "pool_sync", schedule: "0 30 15 * * 1-5"}))

	require.NoError(t, s.RemoveJob("pool_sync"))
	assert.Empty(t, s.GetAllJobs())

	_, ok := s.NextRun("pool_sync")
	assert.False(t, ok)

	assert.Error(t, s.RemoveJob("pool_sync"))
}

func TestRunJob_RetriesUntilSuccess(t *testing.T) {
	s := newTestScheduler()
	job := &stubJob{name: "pool_sync", schedule: "0 30 15 * * 1-5", failures: 2}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJob(context.Background(), "pool_sync")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.Empty(t, result.Error)
}

func TestRunJob_FailsAfterRetries(t *testing.T) {
	s := newTestScheduler()
	job := &stubJob{name: "calendar_sync", schedule: "0 0 0 1 * *", failures: 10}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJob(context.Background(), "calendar_sync")
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, "upstream unavailable", result.Error)

	history, err := s.GetJobHistory("calendar_sync")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.False(t, history[0].Success)
}

func TestRunJob_CancelledContextStopsRetrying(t *testing.T) {
	s := newTestScheduler(WithRetry(5, time.Hour))
	job := &stubJob{name: "pool_sync", schedule: "0 30 15 * * 1-5", failures: 10}
	require.NoError(t, s.AddJob(job))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.RunJob(ctx, "pool_sync")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Attempts)
}

func TestRunJob_UnknownJob(t *testing.T) {
	s := newTestScheduler()

	_, err := s.RunJob(context.Background(), "missing")
	assert.Error(t, err)

	_, err = s.GetJobHistory("missing")
	assert.Error(t, err)
}

func TestNextRun_UsesLocation(t *testing.T) {
	loc := time.FixedZone("CST", 8*3600)
	s := newTestScheduler(WithLocation(loc))
	require.NoError(t, s.AddJob(&stubJob{name: "pool_sync", schedule: "0 30 15 * * 1-5"}))

	s.Start()
	defer s.Stop()

	next, ok := s.NextRun("pool_sync")
	require.True(t, ok)
	next = next.In(loc)
	assert.Equal(t, 15, next.Hour())
	assert.Equal(t, 30, next.Minute())
	assert.NotEqual(t, time.Saturday, next.Weekday())
	assert.NotEqual(t, time.Sunday, next.Weekday())
}

func TestGetJobStats(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.AddJob(&stubJob{name: "ok", schedule: "0 0 0 1 * *"}))
	require.NoError(t, s.AddJob(&stubJob{name: "bad", schedule: "0 0 0 1 * *", failures: 100}))

	_, err := s.RunJob(context.Background(), "ok")
	require.NoError(t, err)
	_, err = s.RunJob(context.Background(), "bad")
	require.NoError(t, err)

	stats := s.GetJobStats()
	require.Len(t, stats, 2)

	assert.Equal(t, 1, stats["ok"].SuccessCount)
	assert.Equal(t, 1.0, stats["ok"].SuccessRate)
	assert.NotNil(t, stats["ok"].LastSuccess)
	assert.Nil(t, stats["ok"].LastFailure)

	assert.Equal(t, 1, stats["bad"].FailureCount)
	assert.NotNil(t, stats["bad"].LastFailure)
}

func TestJobHistory_Trims(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < maxHistory+5; i++ {
		h.AddResult(JobResult{Success: i%2 == 0})
	}

	assert.Len(t, h.Results, maxHistory)
	assert.Len(t, h.GetLatestResults(3), 3)
	assert.Len(t, h.GetLatestResults(1000), maxHistory)
	assert.InDelta(t, 0.5, h.GetSuccessRate(), 0.01)
}
