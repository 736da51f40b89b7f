package progress

import (
	"go.uber.org/atomic"
)

// Called counts completed bulk round trips across every core of the process. It is never reset.
var Called = NewCounter()

// Counter is a monotonically increasing count of completed bulk requests, successful or not.
// It is read for diagnostics only.
type Counter struct {
	called atomic.Uint64
}

func NewCounter() *Counter {
	return &Counter{}
}

// Inc records one completion and returns the new total.
func (c *Counter) Inc() uint64 {
	return c.called.Inc()
}

func (c *Counter) Load() uint64 {
	return c.called.Load()
}
