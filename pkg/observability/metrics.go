package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/hsn/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hsn"

// Metrics holds the collectors fed by lifecycle hooks.
type Metrics struct {
	registry *prometheus.Registry

	Validations     *prometheus.CounterVec
	BatchSize       prometheus.Histogram
	Duration        prometheus.Histogram
	TableCodes      prometheus.Gauge
	TableLoads      *prometheus.CounterVec
	GuardrailBlocks *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors. A nil registry gets a
// fresh one with the Go and process collectors attached.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m := &Metrics{
		registry: reg,
		Validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validations_total",
				Help:      "Validation results by reason code.",
			},
			[]string{"reason"},
		),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "validation_batch_size",
			Help:      "Number of inputs per validation call.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 500},
		}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "validation_duration_seconds",
			Help:      "Time spent validating one batch.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		TableCodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "table_codes",
			Help:      "Codes in the active reference table.",
		}),
		TableLoads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "table_loads_total",
				Help:      "Reference table loads by outcome.",
			},
			[]string{"outcome"},
		),
		GuardrailBlocks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "guardrail_blocks_total",
				Help:      "Requests blocked by guardrails.",
			},
			[]string{"guard"},
		),
	}

	reg.MustRegister(m.Validations, m.BatchSize, m.Duration, m.TableCodes, m.TableLoads, m.GuardrailBlocks)

	for _, r := range domain.ReasonCodes {
		m.Validations.WithLabelValues(string(r))
	}
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Hooks returns lifecycle hooks that feed the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTableLoad: func(_ context.Context, e *domain.LoadEvent) {
			if e.Err != nil {
				m.TableLoads.WithLabelValues("failure").Inc()
				return
			}
			m.TableLoads.WithLabelValues("success").Inc()
			m.TableCodes.Set(float64(e.Codes))
		},
		OnValidate: func(_ context.Context, e *domain.ValidateEvent) {
			m.BatchSize.Observe(float64(e.Inputs))
			m.Duration.Observe(e.Duration.Seconds())
			for _, r := range e.Results {
				m.Validations.WithLabelValues(string(r.Reason)).Inc()
			}
		},
		OnGuardrail: func(_ context.Context, e *domain.GuardrailEvent) {
			m.GuardrailBlocks.WithLabelValues(e.Guard).Inc()
		},
	}
}
