// Package worker runs the load generation for a single CPU core.
//
// A Worker owns a per-core scheduler and one submission loop. The loop produces a batch, encodes it, and issues it
// into a concurrency window bounded by the chunk size. Once the window is full it is drained completely, and every
// drained completion is counted as one call, successful or not.
package worker

import (
	"context"

	"github.com/pkg/errors"

	"github.com/ssfdust/burst-elastic/internal/burst/generator"
	"github.com/ssfdust/burst-elastic/internal/burst/metrics"
	"github.com/ssfdust/burst-elastic/internal/burst/progress"
	"github.com/ssfdust/burst-elastic/internal/burst/scheduler"
	"github.com/ssfdust/burst-elastic/internal/burst/submitter"
	"github.com/ssfdust/burst-elastic/internal/burst/window"
	"github.com/ssfdust/burst-elastic/internal/common/bursterrors"
	"github.com/ssfdust/burst-elastic/internal/common/logging"
)

// BatchSubmitter splits a bulk call into its CPU and network halves so the worker can place each on the right thread.
type BatchSubmitter interface {
	Build(batch []generator.Record) (*submitter.BulkRequest, error)
	Send(ctx context.Context, req *submitter.BulkRequest) *submitter.Reply
	Finish(reply *submitter.Reply) submitter.Result
}

type Worker struct {
	core      int
	threadNum int
	chunkSize int
	producer  generator.Producer
	submitter BatchSubmitter
	counter   *progress.Counter
	reporter  progress.Reporter
	metrics   *metrics.Metrics
	// Binds a scheduler thread to core.
	pin func(core int) error
}

func New(
	core int,
	threadNum int,
	chunkSize int,
	producer generator.Producer,
	submitter BatchSubmitter,
	counter *progress.Counter,
	reporter progress.Reporter,
	metrics *metrics.Metrics,
	pin func(core int) error,
) *Worker {
	return &Worker{
		core:      core,
		threadNum: threadNum,
		chunkSize: chunkSize,
		producer:  producer,
		submitter: submitter,
		counter:   counter,
		reporter:  reporter,
		metrics:   metrics,
		pin:       pin,
	}
}

// Run starts the scheduler and runs the submission loop on the calling goroutine until ctx is cancelled.
// Outstanding requests are drained and counted before Run returns. The only error returned is a scheduler that
// could not be started.
func (w *Worker) Run(ctx context.Context) error {
	sched, err := scheduler.Start(
		w.threadNum,
		func() error { return w.pin(w.core) },
		scheduler.WithTaskHook(func() { w.metrics.RecordSchedulerTask(w.core) }),
	)
	if err != nil {
		return errors.WithStack(&bursterrors.ErrCoreFailed{Core: w.core, Cause: err})
	}
	defer sched.Stop()

	log := logging.WithFields(map[string]any{
		"core":      w.core,
		"threadNum": w.threadNum,
		"chunkSize": w.chunkSize,
	})
	log.Info("Core worker started")

	inFlight := window.New[submitter.Result](w.chunkSize)
	for ctx.Err() == nil {
		if err := w.issue(ctx, sched, inFlight); err != nil {
			w.drain(inFlight)
			return err
		}
		if inFlight.Full() {
			w.drain(inFlight)
		}
	}
	w.drain(inFlight)

	log.Infof("Core worker stopped with a peak of %d requests in flight", inFlight.Peak())
	return nil
}

// issue produces and encodes one batch, then starts its round trip. The network wait happens on the window's
// goroutine; decoding the response is handed to the scheduler.
func (w *Worker) issue(ctx context.Context, sched *scheduler.Scheduler, inFlight *window.Window[submitter.Result]) error {
	batch := w.producer.Batch(w.chunkSize)
	req, err := w.submitter.Build(batch)
	if err != nil {
		logging.WithStacktrace(err).WithField("core", w.core).Warn("Dropping batch that could not be encoded")
		return nil
	}

	err = inFlight.Issue(func() submitter.Result {
		reply := w.submitter.Send(ctx, req)
		return scheduler.Await(sched, func() submitter.Result {
			return w.submitter.Finish(reply)
		})
	})
	if err != nil {
		return errors.WithStack(err)
	}
	w.metrics.SetInFlight(w.core, inFlight.Len())
	return nil
}

func (w *Worker) drain(inFlight *window.Window[submitter.Result]) {
	drained := inFlight.Drain(func(result submitter.Result) {
		w.counter.Inc()
		w.reporter.Observe()
		w.metrics.RecordResult(result)
		if result.Err != nil {
			logging.WithError(result.Err).WithField("core", w.core).Debug("Bulk request failed")
		}
	})
	if drained > 0 {
		w.metrics.RecordDrainedWave(w.core)
	}
	w.metrics.SetInFlight(w.core, 0)
}
