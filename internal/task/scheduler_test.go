package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSweeper counts invocations and returns a configured result.
type stubSweeper struct {
	calls   atomic.Int64
	retired int
	err     error
}

func (s *stubSweeper) RetireStaleCards(ctx context.Context) (int, error) {
	s.calls.Add(1)
	return s.retired, s.err
}

func TestNewSchedulerDefaults(t *testing.T) {
	t.Parallel()

	s := NewScheduler(&stubSweeper{}, SchedulerConfig{}, nil)

	assert.Equal(t, DefaultSweepInterval, s.config.SweepInterval)
	assert.Equal(t, DefaultSweepTimeout, s.config.SweepTimeout)
}

func TestNewSchedulerNilSweeperPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		NewScheduler(nil, SchedulerConfig{}, nil)
	})
}

func TestRunSweepNow(t *testing.T) {
	t.Parallel()

	sweeper := &stubSweeper{retired: 3}
	s := NewScheduler(sweeper, SchedulerConfig{}, nil)

	retired, err := s.RunSweepNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, retired)
	assert.Equal(t, int64(1), sweeper.calls.Load())
}

func TestRunSweepLogsAndSwallowsError(t *testing.T) {
	t.Parallel()

	sweeper := &stubSweeper{err: errors.New("backend down")}
	s := NewScheduler(sweeper, SchedulerConfig{SweepTimeout: time.Second}, nil)

	// The scheduled entry point must not panic or propagate the failure.
	s.runSweep()
	assert.Equal(t, int64(1), sweeper.calls.Load())
}

func TestSchedulerStartStop(t *testing.T) {
	t.Parallel()

	sweeper := &stubSweeper{}
	s := NewScheduler(sweeper, SchedulerConfig{
		// gocron runs the first tick immediately after the interval only,
		// so a short interval keeps this test fast.
		SweepInterval: 50 * time.Millisecond,
		SweepTimeout:  time.Second,
	}, nil)

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return sweeper.calls.Load() >= 1
	}, 2*time.Second, 10*time.Millisecond)
}
