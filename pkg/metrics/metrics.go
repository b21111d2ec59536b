package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const (
	namespace = "ptah"
	subsystem = "deploy"

	job = "ptah_deploy"

	StatusOK    = "ok"
	StatusError = "error"

	LabelStatus     = "status"
	LabelStatusCode = "status_code"
	LabelOutcome    = "outcome"
	LabelService    = "service"
)

// Registry holds every collector of the deploy client.
// It is kept apart from the default registry so only these series are pushed.
var Registry = prometheus.NewRegistry()

var (
	apiRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:      "api_requests",
		Help:      "number of deploy API requests made, by HTTP status code",
		Namespace: namespace,
		Subsystem: subsystem,
	},
		[]string{
			LabelStatusCode,
		},
	)

	apiRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:      "api_request_duration_seconds",
		Help:      "time spent waiting for the deploy API",
		Namespace: namespace,
		Subsystem: subsystem,
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
	},
		[]string{
			LabelStatus,
		},
	)

	processesSubmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Name:      "processes_submitted",
		Help:      "number of processes included in deployment requests",
		Namespace: namespace,
		Subsystem: subsystem,
	})

	runs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:      "runs",
		Help:      "number of finished runs, by outcome",
		Namespace: namespace,
		Subsystem: subsystem,
	},
		[]string{
			LabelOutcome,
		},
	)
)

func statusLabel(err error) string {
	if err == nil {
		return StatusOK
	}
	return StatusError
}

// APIRequest records one call to the deploy API.
// A zero statusCode means no response was received.
func APIRequest(t time.Time, statusCode int, err error) {
	elapsed := time.Since(t)
	apiRequestDuration.With(prometheus.Labels{
		LabelStatus: statusLabel(err),
	}).Observe(elapsed.Seconds())
	apiRequests.With(prometheus.Labels{
		LabelStatusCode: strconv.Itoa(statusCode),
	}).Inc()
}

func ProcessesSubmitted(count int) {
	processesSubmitted.Add(float64(count))
}

func RunFinished(outcome string) {
	runs.With(prometheus.Labels{
		LabelOutcome: outcome,
	}).Inc()
}

// Push sends all collected metrics to a Prometheus Pushgateway, grouped by service.
func Push(ctx context.Context, gatewayURL, service string) error {
	return push.New(gatewayURL, job).
		Gatherer(Registry).
		Grouping(LabelService, service).
		PushContext(ctx)
}

func init() {
	Registry.MustRegister(apiRequests)
	Registry.MustRegister(apiRequestDuration)
	Registry.MustRegister(processesSubmitted)
	Registry.MustRegister(runs)
}
