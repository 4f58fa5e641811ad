package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the gateway's Prometheus collectors.
type Metrics struct {
	Registry *prometheus.Registry

	JobsSubmitted     prometheus.Counter
	JobsCompleted     prometheus.Counter
	JobsFailed        prometheus.Counter
	MessagesPublished *prometheus.CounterVec
	PublishFailures   *prometheus.CounterVec
}

// New creates a Metrics instance backed by its own registry, so tests
// and multiple instances never collide on the global one.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		Registry: registry,
		JobsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "mint_jobs_submitted_total",
			Help: "Number of mint jobs accepted by the gateway.",
		}),
		JobsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "mint_jobs_completed_total",
			Help: "Number of mint jobs that reached the completed state.",
		}),
		JobsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "mint_jobs_failed_total",
			Help: "Number of mint jobs that reached the failed state.",
		}),
		MessagesPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "broker_messages_published_total",
			Help: "Messages successfully published to the broker, by queue.",
		}, []string{"queue"}),
		PublishFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "broker_publish_failures_total",
			Help: "Failed broker publishes, by queue.",
		}, []string{"queue"}),
	}
}
