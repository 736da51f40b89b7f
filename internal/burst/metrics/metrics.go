package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ssfdust/burst-elastic/internal/burst/submitter"
)

const MetricsPrefix = "burst_elastic_"

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// Metrics records what the submission loops observe. Failures are tracked separately here even though every
// completion, failed or not, counts towards progress.
type Metrics struct {
	bulkRequests      *prometheus.CounterVec
	documentsSent     prometheus.Counter
	documentsFailed   prometheus.Counter
	bulkLatency       prometheus.Histogram
	inFlight          *prometheus.GaugeVec
	schedulerTasks    *prometheus.CounterVec
	drainedWaves      *prometheus.CounterVec
	coreWorkerFailure prometheus.Counter
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		bulkRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: MetricsPrefix + "bulk_requests_total",
			Help: "Number of completed bulk requests grouped by outcome",
		}, []string{"outcome"}),
		documentsSent: factory.NewCounter(prometheus.CounterOpts{
			Name: MetricsPrefix + "documents_sent_total",
			Help: "Number of documents carried by completed bulk requests",
		}),
		documentsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: MetricsPrefix + "documents_failed_total",
			Help: "Number of documents rejected inside otherwise successful bulk requests",
		}),
		bulkLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricsPrefix + "bulk_request_latency_seconds",
			Help:    "Bulk request round trip latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 16),
		}),
		inFlight: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: MetricsPrefix + "in_flight_requests",
			Help: "Number of bulk requests currently outstanding grouped by core",
		}, []string{"core"}),
		schedulerTasks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: MetricsPrefix + "scheduler_tasks_total",
			Help: "Number of tasks run by per-core schedulers grouped by core",
		}, []string{"core"}),
		drainedWaves: factory.NewCounterVec(prometheus.CounterOpts{
			Name: MetricsPrefix + "drained_waves_total",
			Help: "Number of fully drained concurrency windows grouped by core",
		}, []string{"core"}),
		coreWorkerFailure: factory.NewCounter(prometheus.CounterOpts{
			Name: MetricsPrefix + "core_worker_failures_total",
			Help: "Number of core workers that stopped with an error",
		}),
	}
}

func (m *Metrics) RecordResult(result submitter.Result) {
	outcome := outcomeSuccess
	if result.Failed() {
		outcome = outcomeFailure
	}
	m.bulkRequests.WithLabelValues(outcome).Inc()
	m.documentsSent.Add(float64(result.Documents))
	m.documentsFailed.Add(float64(result.FailedDocuments))
	m.bulkLatency.Observe(result.Latency.Seconds())
}

func (m *Metrics) SetInFlight(core int, n int) {
	m.inFlight.WithLabelValues(strconv.Itoa(core)).Set(float64(n))
}

func (m *Metrics) RecordSchedulerTask(core int) {
	m.schedulerTasks.WithLabelValues(strconv.Itoa(core)).Inc()
}

func (m *Metrics) RecordDrainedWave(core int) {
	m.drainedWaves.WithLabelValues(strconv.Itoa(core)).Inc()
}

func (m *Metrics) RecordCoreWorkerFailure() {
	m.coreWorkerFailure.Inc()
}
