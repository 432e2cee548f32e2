package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/notexe/event-reminders/internal/config"
)

const waitTimeout = 2 * time.Second

func waitRun(t *testing.T, runs <-chan time.Time) time.Time {
	t.Helper()
	select {
	case at := <-runs:
		return at
	case <-time.After(waitTimeout):
		t.Fatal("job did not run")
		return time.Time{}
	}
}

// tickAfter advances the clock and reports whether the job ran in response.
func tickAfter(clock interface{ Advance(time.Duration) }, runs <-chan time.Time, d time.Duration) func() bool {
	return func() bool {
		clock.Advance(d)
		select {
		case <-runs:
			return true
		case <-time.After(20 * time.Millisecond):
			return false
		}
	}
}

func TestSchedulerRunsOnInterval(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	start := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(start)

	runs := make(chan time.Time, 10)
	job := func(context.Context) { runs <- clock.Now() }

	s := New(job, config.SchedulerConfig{Enabled: true, Interval: 60}, clock, log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Equal(t, start, waitRun(t, runs))

	clock.Advance(30 * time.Second)
	select {
	case <-runs:
		t.Fatal("job ran before the interval elapsed")
	case <-time.After(50 * time.Millisecond):
	}

	require.Eventually(t, tickAfter(clock, runs, 30*time.Second), waitTimeout, 10*time.Millisecond)
	require.Eventually(t, tickAfter(clock, runs, time.Minute), waitTimeout, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(waitTimeout):
		t.Fatal("scheduler did not stop")
	}
}

func TestSchedulerDisabled(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	called := false
	job := func(context.Context) { called = true }

	s := New(job, config.SchedulerConfig{Enabled: false, Interval: 60}, clockwork.NewFakeClock(), log)
	require.NoError(t, s.Run(context.Background()))
	require.False(t, called)
	require.Equal(t, "Disabled, reminder checks will not run", hook.LastEntry().Message)
}

func TestSchedulerInvalidInterval(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	job := func(context.Context) {}

	s := New(job, config.SchedulerConfig{Enabled: true, Interval: 0}, clockwork.NewFakeClock(), log)
	require.EqualError(t, s.Run(context.Background()), "scheduler interval must be positive, got 0s")
}
