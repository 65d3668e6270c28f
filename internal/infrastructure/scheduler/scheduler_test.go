package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingExecutor struct {
	calls    atomic.Int32
	failures int32
	done     chan struct{}
}

func (e *countingExecutor) Execute(_ context.Context, _ *Job) error {
	n := e.calls.Add(1)
	if n <= e.failures {
		return errors.New("transient failure")
	}
	select {
	case e.done <- struct{}{}:
	default:
	}
	return nil
}

func testConfig() Config {
	return Config{
		Enabled:           true,
		MaxConcurrentJobs: 2,
		JobTimeout:        time.Second,
		RetryAttempts:     3,
		RetryDelay:        time.Millisecond,
	}
}

func TestScheduler_ExecutesSubmittedJob(t *testing.T) {
	executor := &countingExecutor{done: make(chan struct{}, 1)}
	s := NewScheduler(testConfig(), executor, zap.NewNop())

	require.NoError(t, s.Start(context.Background()))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	}()

	job := NewJob(JobKindDailyReport, time.Now().Add(-24*time.Hour), time.Now(), 3)
	require.NoError(t, s.SubmitJob(job))

	select {
	case <-executor.done:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not executed")
	}
	assert.Equal(t, int32(1), executor.calls.Load())
}

func TestScheduler_RetriesFailedJob(t *testing.T) {
	executor := &countingExecutor{failures: 2, done: make(chan struct{}, 1)}
	s := NewScheduler(testConfig(), executor, zap.NewNop())

	require.NoError(t, s.Start(context.Background()))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	}()

	job := NewJob(JobKindAppointmentReminders, time.Now(), time.Now().Add(24*time.Hour), 3)
	require.NoError(t, s.SubmitJob(job))

	select {
	case <-executor.done:
	case <-time.After(5 * time.Second):
		t.Fatal("job never succeeded after retries")
	}
	assert.Equal(t, int32(3), executor.calls.Load())
}

func TestScheduler_RejectsWhenStopped(t *testing.T) {
	s := NewScheduler(testConfig(), &countingExecutor{done: make(chan struct{}, 1)}, zap.NewNop())

	job := NewJob(JobKindDailyReport, time.Now(), time.Now(), 0)
	assert.ErrorIs(t, s.SubmitJob(job), ErrSchedulerNotRunning)
}

func TestJob_RetryBookkeeping(t *testing.T) {
	job := NewJob(JobKindDailyReport, time.Now(), time.Now(), 2)

	job.Start()
	assert.Equal(t, JobStatusRunning, job.Status)

	job.Fail("boom")
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.True(t, job.ShouldRetry())

	job.ScheduleRetry(time.Minute)
	assert.Equal(t, JobStatusPending, job.Status)
	assert.Equal(t, 1, job.RetryCount)
	require.NotNil(t, job.NextRetryAt)

	job.Fail("boom again")
	job.ScheduleRetry(time.Minute)
	job.Fail("final")
	assert.False(t, job.ShouldRetry())
}

func TestCronTrigger_TriggerManual(t *testing.T) {
	executor := &countingExecutor{done: make(chan struct{}, 1)}
	s := NewScheduler(testConfig(), executor, zap.NewNop())
	require.NoError(t, s.Start(context.Background()))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	}()

	trigger := NewCronTrigger(DefaultCronTriggerConfig(), s, zap.NewNop())

	err := trigger.TriggerManual(JobKindDailyReport, time.Now().Add(-24*time.Hour), time.Now())
	assert.NoError(t, err)

	err = trigger.TriggerManual(JobKind("BOGUS"), time.Now(), time.Now())
	assert.ErrorIs(t, err, ErrInvalidJobKind)
}
