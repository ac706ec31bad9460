package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors for content loads, contact relays
// and page traffic.
type Metrics struct {
	ContentLoads        *prometheus.CounterVec
	ContentLoadDuration prometheus.Histogram
	OrphanSkills        prometheus.Gauge
	ContactMessages     *prometheus.CounterVec
	PageViews           *prometheus.CounterVec
}

// New constructs a Metrics instance registered with reg. A nil reg creates a
// private registry so tests and repeated construction never collide.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		ContentLoads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "portfolio",
				Subsystem: "content",
				Name:      "loads_total",
				Help:      "Content snapshot loads by outcome.",
			},
			[]string{"status"},
		),
		ContentLoadDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "portfolio",
				Subsystem: "content",
				Name:      "load_duration_seconds",
				Help:      "Time spent loading all content sources.",
				Buckets:   prometheus.DefBuckets,
			},
		),
		OrphanSkills: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "portfolio",
				Subsystem: "content",
				Name:      "orphan_skills",
				Help:      "Skill references missing from the taxonomy in the current snapshot.",
			},
		),
		ContactMessages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "portfolio",
				Subsystem: "contact",
				Name:      "messages_total",
				Help:      "Contact form submissions by driver and status.",
			},
			[]string{"driver", "status"},
		),
		PageViews: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "portfolio",
				Subsystem: "http",
				Name:      "page_views_total",
				Help:      "Rendered pages by route.",
			},
			[]string{"route"},
		),
	}

	reg.MustRegister(m.ContentLoads, m.ContentLoadDuration, m.OrphanSkills, m.ContactMessages, m.PageViews)
	return m
}
