package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "judging"

var statuses = []string{"INFEASIBLE", "FEASIBLE", "OPTIMAL"}

// Recorder collects solver telemetry for one run in a private registry, flushed to a node-exporter
// textfile once the run ends.
type Recorder struct {
	registry      *prometheus.Registry
	variables     prometheus.Gauge
	clauses       prometheus.Gauge
	solveDuration *prometheus.HistogramVec
	solves        *prometheus.CounterVec
	status        *prometheus.GaugeVec
	spread        prometheus.Gauge
}

func NewRecorder(runID string) *Recorder {
	registry := prometheus.NewRegistry()
	constLabels := prometheus.Labels{}
	if runID != "" {
		constLabels["run_id"] = runID
	}

	variables := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "model_variables",
		Help:        "Variables of the hard constraint instance",
		ConstLabels: constLabels,
	})

	clauses := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "model_clauses",
		Help:        "Clauses of the hard constraint instance",
		ConstLabels: constLabels,
	})

	solveDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   namespace,
		Name:        "solve_duration_seconds",
		Help:        "Duration of SAT solver invocations",
		Buckets:     prometheus.ExponentialBuckets(0.001, 4, 10),
		ConstLabels: constLabels,
	}, []string{"outcome"})

	solves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Name:        "solves_total",
		Help:        "SAT solver invocations by outcome",
		ConstLabels: constLabels,
	}, []string{"outcome"})

	status := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "result_status",
		Help:        "1 for the status of the final result, 0 otherwise",
		ConstLabels: constLabels,
	}, []string{"status"})

	spread := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "load_spread",
		Help:        "Difference between the busiest and the idlest ordinary judge",
		ConstLabels: constLabels,
	})

	registry.MustRegister(variables, clauses, solveDuration, solves, status, spread)

	return &Recorder{
		registry:      registry,
		variables:     variables,
		clauses:       clauses,
		solveDuration: solveDuration,
		solves:        solves,
		status:        status,
		spread:        spread,
	}
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) ObserveModel(variables, clauses uint64) {
	r.variables.Set(float64(variables))
	r.clauses.Set(float64(clauses))
}

func (r *Recorder) ObserveSolve(outcome string, duration time.Duration) {
	r.solveDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	r.solves.WithLabelValues(outcome).Inc()
}

func (r *Recorder) ObserveResult(status string, spread uint64) {
	for _, candidate := range statuses {
		value := 0.0
		if candidate == status {
			value = 1
		}
		r.status.WithLabelValues(candidate).Set(value)
	}
	r.spread.Set(float64(spread))
}

// WriteToTextfile atomically writes the registry in the text exposition format
func (r *Recorder) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
