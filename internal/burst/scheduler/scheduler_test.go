package scheduler

import (
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/ssfdust/burst-elastic/internal/common/bursterrors"
)

func TestStart_RunsInitOncePerThread(t *testing.T) {
	inits := atomic.NewInt32(0)
	s, err := Start(3, func() error {
		inits.Inc()
		return nil
	})
	require.NoError(t, err)
	defer s.Stop()

	assert.Equal(t, int32(3), inits.Load())
	assert.Equal(t, 3, s.Threads())
}

func TestStart_RejectsNonPositiveThreads(t *testing.T) {
	_, err := Start(0, nil)
	var invalidArg *bursterrors.ErrInvalidArgument
	assert.True(t, errors.As(err, &invalidArg))
}

func TestStart_InitFailureIsReturned(t *testing.T) {
	calls := atomic.NewInt32(0)
	s, err := Start(4, func() error {
		if calls.Inc() == 2 {
			return errors.New("sched_setaffinity: invalid argument")
		}
		return nil
	})
	assert.Nil(t, s)
	assert.ErrorContains(t, err, "sched_setaffinity")
}

func TestAwait_ReturnsResult(t *testing.T) {
	s, err := Start(1, nil)
	require.NoError(t, err)
	defer s.Stop()

	assert.Equal(t, 42, Await(s, func() int { return 42 }))
	assert.Equal(t, "done", Await(s, func() string { return "done" }))
}

func TestScheduler_RunsTasksInParallelAcrossThreads(t *testing.T) {
	const threads = 2
	s, err := Start(threads, nil)
	require.NoError(t, err)
	defer s.Stop()

	// Both tasks must be running at once to get past the barrier.
	var barrier sync.WaitGroup
	barrier.Add(threads)
	var done sync.WaitGroup
	done.Add(threads)
	for i := 0; i < threads; i++ {
		s.Spawn(func() {
			defer done.Done()
			barrier.Done()
			barrier.Wait()
		})
	}

	finished := make(chan struct{})
	go func() {
		done.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("tasks did not run concurrently")
	}
}

func TestScheduler_TaskHook(t *testing.T) {
	hooks := atomic.NewInt32(0)
	s, err := Start(2, nil, WithTaskHook(func() { hooks.Inc() }))
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		Await(s, func() struct{} { return struct{}{} })
	}
	s.Stop()
	assert.Equal(t, int32(10), hooks.Load())
}

func TestScheduler_StopDrainsQueuedTasksAndIsIdempotent(t *testing.T) {
	s, err := Start(1, nil)
	require.NoError(t, err)

	ran := atomic.NewInt32(0)
	for i := 0; i < 5; i++ {
		s.Spawn(func() { ran.Inc() })
	}
	s.Stop()
	s.Stop()
	assert.Equal(t, int32(5), ran.Load())
}
