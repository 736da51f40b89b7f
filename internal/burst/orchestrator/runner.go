package orchestrator

import (
	"context"
	"io"
	"time"

	"github.com/avast/retry-go"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
	"k8s.io/utils/clock"
	"sigs.k8s.io/yaml"

	"github.com/ssfdust/burst-elastic/internal/burst/affinity"
	"github.com/ssfdust/burst-elastic/internal/burst/configuration"
	"github.com/ssfdust/burst-elastic/internal/burst/dispatcher"
	"github.com/ssfdust/burst-elastic/internal/burst/generator"
	"github.com/ssfdust/burst-elastic/internal/burst/metrics"
	"github.com/ssfdust/burst-elastic/internal/burst/progress"
	"github.com/ssfdust/burst-elastic/internal/burst/submitter"
	"github.com/ssfdust/burst-elastic/internal/burst/worker"
	"github.com/ssfdust/burst-elastic/internal/common"
	"github.com/ssfdust/burst-elastic/internal/common/bursterrors"
	"github.com/ssfdust/burst-elastic/internal/common/logging"
	"github.com/ssfdust/burst-elastic/internal/common/task"
)

const backgroundTaskTimeout = 5 * time.Second

// Runner wires a configured load test together and runs it until the context is cancelled.
type Runner struct {
	config   configuration.Config
	registry *prometheus.Registry
	out      io.Writer
	counter  *progress.Counter
	clock    clock.PassiveClock
	coreIDs  func() ([]int, error)
	pin      func(core int) error
}

// NewRunner creates a Runner that reports progress to out and registers its metrics with registry.
func NewRunner(config configuration.Config, registry *prometheus.Registry, out io.Writer) *Runner {
	return &Runner{
		config:   config,
		registry: registry,
		out:      out,
		counter:  progress.Called,
		clock:    clock.RealClock{},
		coreIDs:  affinity.CoreIDs,
		pin:      affinity.Pin,
	}
}

// Run executes the load test.
//
// It performs the following steps:
//  1. Creates the shared client for the target
//  2. If enabled, makes sure the index exists, logging and ignoring any failure
//  3. Starts the metrics endpoint and interval reporting when configured
//  4. Dispatches one core worker per selected core and waits for them all to return
//
// Cancelling ctx stops every core after its outstanding requests have been drained.
func (r *Runner) Run(ctx context.Context) error {
	logging.Infof("Starting load generation against %s", submitter.NormalizeURL(r.config.Url))
	logging.Infof("Cores: %d, threads per core: %d, chunk size: %d", r.config.CoresNum, r.config.ThreadNum, r.config.ChunkSize)
	if rendered, err := yaml.Marshal(r.config); err != nil {
		logging.WithError(err).Warn("Failed to marshal configuration for output")
	} else {
		logging.Debugf("Running with configuration:\n%s", rendered)
	}

	client, err := submitter.NewClient(r.config)
	if err != nil {
		return err
	}
	return r.run(ctx, client)
}

func (r *Runner) run(ctx context.Context, transport esapi.Transport) error {
	if r.config.Index.Bootstrap {
		r.bootstrap(ctx, transport)
	}

	workerMetrics := metrics.NewMetrics(r.registry)
	tasks := task.NewBackgroundTaskManager(metrics.MetricsPrefix, r.registry)

	stopMetrics := func() {}
	if r.config.Metrics.Port > 0 {
		shutdown, err := common.ServeMetrics(r.config.Metrics.Port, r.registry)
		if err != nil {
			logging.WithStacktrace(err).Warn("Metrics endpoint not started")
		} else {
			stopMetrics = shutdown
		}
	}

	var reporter progress.Reporter
	if r.config.Report.Interval > 0 {
		progress.StartIntervalReporting(tasks, r.counter, r.out, r.config.Report.Interval)
		reporter = progress.NopReporter{}
	} else {
		reporter = progress.NewSampledReporter(r.counter, r.clock, r.config.Report.SampleModulus, r.out)
	}

	sub := submitter.NewSubmitter(transport, r.config.Index.Name, r.config.RequestTimeout)
	d := dispatcher.New(r.config.CoresNum, r.coreIDs, r.pin, func(ctx context.Context, core int) error {
		return worker.New(
			core,
			r.config.ThreadNum,
			r.config.ChunkSize,
			generator.NewFakeProducer(time.Now().UnixNano()+int64(core)),
			sub,
			r.counter,
			reporter,
			workerMetrics,
			r.pin,
		).Run(ctx)
	}).OnFailure(func(int, error) {
		workerMetrics.RecordCoreWorkerFailure()
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, runCtx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		defer cancel()
		return d.Run(runCtx)
	})
	g.Go(func() error {
		<-runCtx.Done()
		if tasks.StopAll(backgroundTaskTimeout) {
			logging.Warn("Timed out waiting for background tasks to stop")
		}
		stopMetrics()
		return nil
	})
	err := g.Wait()

	logging.Infof("Load generation finished after %d bulk requests", r.counter.Load())
	return err
}

// bootstrap runs the index check, retrying only while the target cannot be reached. Any failure is logged and
// load generation goes ahead regardless.
func (r *Runner) bootstrap(ctx context.Context, transport esapi.Transport) {
	err := retry.Do(
		func() error {
			_, err := submitter.EnsureIndex(ctx, transport, r.config.Index)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(r.config.Index.BootstrapAttempts),
		retry.Delay(r.config.Index.BootstrapRetryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isUnreachable),
		retry.OnRetry(func(n uint, err error) {
			logging.WithError(err).Warnf("Index check attempt %d failed; retrying", n+1)
		}),
	)
	if err != nil {
		logging.WithStacktrace(err).Errorf("Error while creating index %s; continuing", r.config.Index.Name)
	}
}

// isUnreachable reports whether err came from the transport rather than from a response.
func isUnreachable(err error) bool {
	var unexpected *bursterrors.ErrUnexpectedResponse
	return !errors.As(err, &unexpected)
}
