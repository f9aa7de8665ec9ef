package droppings

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Result label values of droppings_project_builds_total.
const (
	resultSucceeded = "succeeded"
	resultFailed    = "failed"
)

// Metrics holds the collectors updated during execution.
type Metrics struct {
	builds   *prometheus.CounterVec
	duration prometheus.Histogram
	waves    prometheus.Counter
	waveSize prometheus.Gauge
}

// NewMetrics creates the build collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		builds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "droppings_project_builds_total",
				Help: "Number of project builds by result.",
			},
			[]string{"result"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "droppings_project_build_duration_seconds",
				Help:    "Time taken to run a project's build commands.",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		waves: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "droppings_waves_total",
				Help: "Number of waves executed.",
			},
		),
		waveSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "droppings_wave_size",
				Help: "Number of projects in the wave currently executing.",
			},
		),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.builds, m.duration, m.waves, m.waveSize} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeWave(size int) {
	if m == nil {
		return
	}
	m.waves.Inc()
	m.waveSize.Set(float64(size))
}

func (m *Metrics) observeBuild(o Outcome) {
	if m == nil {
		return
	}
	result := resultSucceeded
	if !o.Succeeded {
		result = resultFailed
	}
	m.builds.WithLabelValues(result).Inc()
	m.duration.Observe(o.Duration.Seconds())
}
