package metrics

import (
	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "quoterotator"

// PrometheusRecorder implements Recorder with Prometheus collectors.
type PrometheusRecorder struct {
	rotations       *prom.CounterVec
	rotationSteps   prom.Histogram
	quotes          prom.Gauge
	persistFailures *prom.CounterVec
}

// NewPrometheusRecorder creates the collectors and registers them with reg.
// A nil reg gets a private registry.
func NewPrometheusRecorder(reg prom.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}

	pr := &PrometheusRecorder{
		rotations: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "rotations_total",
			Help:      "Changes of the current quote by trigger",
		}, []string{"trigger"}),
		rotationSteps: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "rotation_steps",
			Help:      "Positions advanced per scheduled rotation, >1 after sleep or downtime",
			Buckets:   []float64{1, 2, 3, 5, 10, 25, 100},
		}),
		quotes: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "quotes",
			Help:      "Number of quotes in the rotation",
		}),
		persistFailures: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "persist_failures_total",
			Help:      "Failed state loads, encodes and saves",
		}, []string{"op"}),
	}

	reg.MustRegister(pr.rotations, pr.rotationSteps, pr.quotes, pr.persistFailures)

	return pr
}

func (p *PrometheusRecorder) IncRotation(trigger Trigger) {
	if p == nil {
		return
	}

	p.rotations.WithLabelValues(string(trigger)).Inc()
}

func (p *PrometheusRecorder) ObserveRotationSteps(steps int) {
	if p == nil {
		return
	}

	p.rotationSteps.Observe(float64(steps))
}

func (p *PrometheusRecorder) SetQuoteCount(n int) {
	if p == nil {
		return
	}

	p.quotes.Set(float64(n))
}

func (p *PrometheusRecorder) IncPersistFailure(op string) {
	if p == nil {
		return
	}

	p.persistFailures.WithLabelValues(op).Inc()
}
