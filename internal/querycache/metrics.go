package querycache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	hits          prometheus.Counter
	misses        prometheus.Counter
	collapsed     prometheus.Counter
	fetchErrors   prometheus.Counter
	backendErrors prometheus.Counter
	fetchDuration prometheus.Histogram
}

// newMetrics creates the client metrics; a nil registerer leaves them unregistered
func newMetrics(registerer prometheus.Registerer, namespace string) *metrics {
	factory := promauto.With(registerer)
	return &metrics{
		hits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query_cache",
			Name:      "hits_total",
			Help:      "Total number of queries served from a fresh cache entry",
		}),
		misses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query_cache",
			Name:      "misses_total",
			Help:      "Total number of queries that required a fetch",
		}),
		collapsed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query_cache",
			Name:      "collapsed_total",
			Help:      "Total number of queries that joined an identical in-flight fetch",
		}),
		fetchErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query_cache",
			Name:      "fetch_errors_total",
			Help:      "Total number of fetches that failed after all retries",
		}),
		backendErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query_cache",
			Name:      "backend_errors_total",
			Help:      "Total number of failed cache backend operations",
		}),
		fetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "query_cache",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of fetches including retries",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}
