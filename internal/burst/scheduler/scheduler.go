// Package scheduler provides the per-core task executor that core workers hand CPU-side work to.
//
// A Scheduler owns a fixed number of executor goroutines, each locked to its own OS thread for its whole life and
// initialised on that thread (typically by pinning it to the worker's core). Network waits never happen on an
// executor: they are parked in the runtime netpoller and only the work that follows them is spawned here.
package scheduler

import (
	"runtime"
	"sync"

	"github.com/pkg/errors"

	"github.com/ssfdust/burst-elastic/internal/common/bursterrors"
)

type Scheduler struct {
	threads  int
	tasks    chan func()
	wg       sync.WaitGroup
	stopOnce sync.Once
	onTask   func()
}

type Option func(*Scheduler)

// WithTaskHook registers a function run on the executor after every task, e.g. to count tasks.
func WithTaskHook(hook func()) Option {
	return func(s *Scheduler) {
		s.onTask = hook
	}
}

// Start launches threads executors and waits until each has run init on its own OS thread. If any init fails the
// scheduler is torn down and the first error is returned.
func Start(threads int, init func() error, opts ...Option) (*Scheduler, error) {
	if threads <= 0 {
		return nil, errors.WithStack(&bursterrors.ErrInvalidArgument{
			Name:    "threadNum",
			Value:   threads,
			Message: "scheduler needs at least one thread",
		})
	}
	s := &Scheduler{
		threads: threads,
		tasks:   make(chan func(), threads),
		onTask:  func() {},
	}
	for _, opt := range opts {
		opt(s)
	}

	ready := make(chan error, threads)
	for i := 0; i < threads; i++ {
		s.wg.Add(1)
		go s.executor(init, ready)
	}

	var initErr error
	for i := 0; i < threads; i++ {
		if err := <-ready; err != nil && initErr == nil {
			initErr = err
		}
	}
	if initErr != nil {
		s.Stop()
		return nil, errors.Wrap(initErr, "initialising scheduler thread")
	}
	return s, nil
}

func (s *Scheduler) executor(init func() error, ready chan<- error) {
	defer s.wg.Done()
	// Never unlocked, so the thread and its affinity exit with the executor.
	runtime.LockOSThread()

	if init != nil {
		if err := init(); err != nil {
			ready <- err
			return
		}
	}
	ready <- nil

	for task := range s.tasks {
		task()
		s.onTask()
	}
}

// Threads returns the number of executors.
func (s *Scheduler) Threads() int {
	return s.threads
}

// Spawn queues task to run on one of the executors. It blocks while every executor is busy and the queue is full.
// Spawn must not be called after Stop.
func (s *Scheduler) Spawn(task func()) {
	s.tasks <- task
}

// Stop lets queued tasks finish and then waits for every executor to exit. It is safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.tasks)
	})
	s.wg.Wait()
}

// Await runs fn on the scheduler and blocks the calling goroutine until its result is available.
func Await[T any](s *Scheduler, fn func() T) T {
	result := make(chan T, 1)
	s.Spawn(func() {
		result <- fn()
	})
	return <-result
}
