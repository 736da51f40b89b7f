// Package window holds the bounded set of outstanding operations a submission loop is waiting on.
//
// The cadence is fill fully, then drain fully: a loop issues operations until the window is full and then awaits
// every one of them, in whatever order they complete, before issuing again. Throughput is therefore
// wave-synchronised rather than continuously pipelined.
package window

import (
	"github.com/pkg/errors"
)

// ErrFull is returned by Issue when the window already holds its bound of outstanding operations.
var ErrFull = errors.New("concurrency window is full")

// Window is a bounded, unordered collection of outstanding operations producing results of type T.
// A Window is owned by a single goroutine and is not safe for concurrent use.
type Window[T any] struct {
	bound       int
	outstanding int
	peak        int
	done        chan T
}

// New returns an empty window holding at most bound operations. bound must be positive.
func New[T any](bound int) *Window[T] {
	if bound <= 0 {
		panic(errors.Errorf("window bound must be positive, got %d", bound))
	}
	return &Window[T]{
		bound: bound,
		done:  make(chan T, bound),
	}
}

// Issue starts op on its own goroutine and counts it as outstanding until it is drained.
func (w *Window[T]) Issue(op func() T) error {
	if w.outstanding >= w.bound {
		return ErrFull
	}
	w.outstanding++
	if w.outstanding > w.peak {
		w.peak = w.outstanding
	}
	go func() {
		w.done <- op()
	}()
	return nil
}

// Full reports whether no more operations may be issued until the window is drained.
func (w *Window[T]) Full() bool {
	return w.outstanding >= w.bound
}

// Len returns the number of outstanding operations.
func (w *Window[T]) Len() int {
	return w.outstanding
}

// Bound returns the maximum number of outstanding operations.
func (w *Window[T]) Bound() int {
	return w.bound
}

// Peak returns the largest number of operations that have been outstanding at once.
func (w *Window[T]) Peak() int {
	return w.peak
}

// Drain awaits every outstanding operation one at a time, in completion order, passing each result to onComplete.
// It returns once the window is empty and reports how many operations were drained.
func (w *Window[T]) Drain(onComplete func(T)) int {
	drained := 0
	for w.outstanding > 0 {
		result := <-w.done
		w.outstanding--
		drained++
		onComplete(result)
	}
	return drained
}
