// Package dispatcher fans load generation out across CPU cores, one pinned OS thread per core.
package dispatcher

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/ssfdust/burst-elastic/internal/common/bursterrors"
	"github.com/ssfdust/burst-elastic/internal/common/logging"
)

// CoreRunner runs the work for one core on the calling goroutine, which is locked to an OS thread pinned to core.
type CoreRunner func(ctx context.Context, core int) error

type Dispatcher struct {
	coresNum int
	coreIDs  func() ([]int, error)
	pin      func(core int) error
	run      CoreRunner
	// Called once for every core that stops with an error.
	onFailure func(core int, err error)
}

func New(coresNum int, coreIDs func() ([]int, error), pin func(core int) error, run CoreRunner) *Dispatcher {
	return &Dispatcher{
		coresNum:  coresNum,
		coreIDs:   coreIDs,
		pin:       pin,
		run:       run,
		onFailure: func(int, error) {},
	}
}

// OnFailure registers a callback invoked as soon as a core stops with an error.
func (d *Dispatcher) OnFailure(f func(core int, err error)) *Dispatcher {
	d.onFailure = f
	return d
}

// Select returns the first n of the available core ids.
func Select(available []int, n int) ([]int, error) {
	if n <= 0 {
		return nil, errors.WithStack(&bursterrors.ErrInvalidArgument{
			Name:    "coresNum",
			Value:   n,
			Message: "at least one core is required",
		})
	}
	if n > len(available) {
		return nil, errors.WithStack(&bursterrors.ErrInvalidArgument{
			Name:    "coresNum",
			Value:   n,
			Message: fmt.Sprintf("only %d cores are available", len(available)),
		})
	}
	selected := make([]int, n)
	copy(selected, available[:n])
	return selected, nil
}

// Run starts one goroutine per selected core and blocks until all of them return. A core that fails is logged
// straight away and does not stop the others. Failures are combined into the returned error.
func (d *Dispatcher) Run(ctx context.Context) error {
	available, err := d.coreIDs()
	if err != nil {
		return errors.WithMessage(err, "listing cpu cores")
	}
	selected, err := Select(available, d.coresNum)
	if err != nil {
		return err
	}
	logging.Infof("Dispatching load generation to cores %v", selected)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		result *multierror.Error
	)
	for _, core := range selected {
		core := core
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := d.runCore(ctx, core); err != nil {
				logging.WithStacktrace(err).WithField("core", core).Error("Core worker failed")
				d.onFailure(core, err)
				mu.Lock()
				result = multierror.Append(result, err)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return result.ErrorOrNil()
}

// runCore never unlocks the OS thread, so the pinned thread exits with the goroutine instead of returning to the pool.
func (d *Dispatcher) runCore(ctx context.Context, core int) error {
	runtime.LockOSThread()
	if err := d.pin(core); err != nil {
		return &bursterrors.ErrCoreFailed{Core: core, Cause: err}
	}
	return d.run(ctx, core)
}
