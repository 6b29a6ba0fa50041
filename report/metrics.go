package report

import "github.com/prometheus/client_golang/prometheus"

// Metrics exports the training curve of one run.
type Metrics struct {
	Cost       prometheus.Gauge
	Iterations prometheus.Counter
}

func NewMetrics(run string) *Metrics {
	labels := prometheus.Labels{"run": run}
	return &Metrics{
		Cost: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "binnet",
			Name:        "cost",
			Help:        "Cross-entropy cost of the latest iteration.",
			ConstLabels: labels,
		}),
		Iterations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "binnet",
			Name:        "iterations_total",
			Help:        "Gradient descent iterations completed.",
			ConstLabels: labels,
		}),
	}
}

// Register adds both collectors to r.
func (m *Metrics) Register(r prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.Cost, m.Iterations} {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) Report(_ int, cost float64) {
	m.Cost.Set(cost)
	m.Iterations.Inc()
}
