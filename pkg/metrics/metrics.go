package metrics

import (
	"sync"
	"time"

	"github.com/codahale/hdrhistogram"
	"github.com/juju/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// step latencies above ten minutes are clamped
const maxStepMicros = int64(10 * time.Minute / time.Microsecond)

var stepDurationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 15, 30, 60}

// Recorder collects scenario outcomes and step latencies of one run.
type Recorder struct {
	reg *prometheus.Registry

	ScenarioTotal *prometheus.CounterVec
	StepDuration  *prometheus.HistogramVec

	mu   sync.Mutex
	hist *hdrhistogram.Histogram
}

// NewRecorder creates a recorder with its own registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		reg: reg,
		ScenarioTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sqllab_scenario_total",
			Help: "scenarios run, by result",
		}, []string{"scenario", "result"}),
		StepDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sqllab_step_duration_seconds",
			Help:    "step latency",
			Buckets: stepDurationBuckets,
		}, []string{"scenario", "step"}),
		hist: hdrhistogram.New(1, maxStepMicros, 3),
	}
}

// Registry returns the registry holding the recorder's metrics.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.reg
}

// ObserveStep records how long a step took.
func (r *Recorder) ObserveStep(scenario, step string, d time.Duration) {
	if r == nil {
		return
	}
	r.StepDuration.WithLabelValues(scenario, step).Observe(d.Seconds())

	us := d.Microseconds()
	if us < 1 {
		us = 1
	}
	if us > maxStepMicros {
		us = maxStepMicros
	}
	r.mu.Lock()
	_ = r.hist.RecordValue(us)
	r.mu.Unlock()
}

// ObserveScenario counts a finished scenario.
func (r *Recorder) ObserveScenario(scenario, result string) {
	if r == nil {
		return
	}
	r.ScenarioTotal.WithLabelValues(scenario, result).Inc()
}

// Summary is the step latency distribution of a run.
type Summary struct {
	Count int64         `json:"count"`
	P50   time.Duration `json:"p50"`
	P95   time.Duration `json:"p95"`
	Max   time.Duration `json:"max"`
}

// Summary summarises every observed step.
func (r *Recorder) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Summary{
		Count: r.hist.TotalCount(),
		P50:   time.Duration(r.hist.ValueAtQuantile(50)) * time.Microsecond,
		P95:   time.Duration(r.hist.ValueAtQuantile(95)) * time.Microsecond,
		Max:   time.Duration(r.hist.Max()) * time.Microsecond,
	}
}

// Push sends the metrics to a Prometheus push gateway.
func (r *Recorder) Push(gateway, job string) error {
	err := push.New(gateway, job).Gatherer(r.reg).Push()
	return errors.Annotatef(err, "push metrics to %s", gateway)
}
