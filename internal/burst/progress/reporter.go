package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"k8s.io/utils/clock"

	"github.com/ssfdust/burst-elastic/internal/common/task"
)

// Reporter is offered a chance to print progress after every drained completion.
type Reporter interface {
	Observe()
}

// SampledReporter prints the counter whenever a completion lands on a wall-clock millisecond that is an exact multiple
// of the modulus. The value printed is read at print time, so it includes completions from every core. Output is
// best effort: depending on completion timing it may print several times per period or not at all.
type SampledReporter struct {
	counter       *Counter
	clock         clock.PassiveClock
	modulusMillis int64
	out           io.Writer
	mu            sync.Mutex
}

func NewSampledReporter(counter *Counter, clock clock.PassiveClock, modulus time.Duration, out io.Writer) *SampledReporter {
	return &SampledReporter{
		counter:       counter,
		clock:         clock,
		modulusMillis: modulus.Milliseconds(),
		out:           out,
	}
}

func (r *SampledReporter) Observe() {
	if r.clock.Now().UnixMilli()%r.modulusMillis != 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	printCount(r.out, r.counter.Load())
}

// NopReporter ignores observations. Workers use it when progress is printed on an interval instead.
type NopReporter struct{}

func (NopReporter) Observe() {}

// StartIntervalReporting prints the counter every interval on the task manager until the manager is stopped.
func StartIntervalReporting(manager *task.BackgroundTaskManager, counter *Counter, out io.Writer, interval time.Duration) {
	manager.Register(func() {
		printCount(out, counter.Load())
	}, interval, "progress_report")
}

func printCount(out io.Writer, count uint64) {
	_, _ = fmt.Fprintf(out, "called %d\n", count)
}
