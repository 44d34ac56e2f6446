package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collectors usa un registry propio para que los tests no choquen con el global.
type Collectors struct {
	Registry        *prometheus.Registry
	AdNamesParsed   *prometheus.CounterVec
	Categorizations *prometheus.CounterVec
	SyncedRows      *prometheus.CounterVec
	SyncDuration    prometheus.Histogram
	SyncRejected    prometheus.Counter
}

func NewCollectors() *Collectors {
	c := &Collectors{
		Registry: prometheus.NewRegistry(),
		AdNamesParsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ads",
			Name:      "ad_names_parsed_total",
			Help:      "Ad names parsed, by parser mode.",
		}, []string{"mode"}),
		Categorizations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ads",
			Name:      "categorizations_total",
			Help:      "Categorization results by rule set and source.",
		}, []string{"rule_set", "source"}),
		SyncedRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ads",
			Name:      "sync_rows_total",
			Help:      "Insight rows seen by the platform sync, by outcome.",
		}, []string{"platform", "outcome"}),
		SyncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ads",
			Name:      "sync_duration_seconds",
			Help:      "Duration of full platform syncs.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		SyncRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ads",
			Name:      "sync_rejected_total",
			Help:      "Sync requests rejected because another sync was running.",
		}),
	}
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.AdNamesParsed,
		c.Categorizations,
		c.SyncedRows,
		c.SyncDuration,
		c.SyncRejected,
	)
	return c
}

func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{})
}
