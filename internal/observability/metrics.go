package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// analog scenario pipeline.
type Metrics struct {
	TracksConsumed          prometheus.Counter
	TrackParseErrors        prometheus.Counter
	SyntheticTracksProduced prometheus.Counter
	PipelineRunning         prometheus.Gauge

	// Scenario cycle metrics.
	ScenarioRuns     prometheus.Counter
	ScenarioErrors   prometheus.Counter
	ClustersFound    prometheus.Gauge
	NoiseTracks      prometheus.Gauge
	PoolSize         prometheus.Histogram
	ScenarioDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		TracksConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cyclone_analog",
			Name:      "tracks_consumed_total",
			Help:      "Total historical tracks read from the source topic.",
		}),
		TrackParseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cyclone_analog",
			Name:      "track_parse_errors_total",
			Help:      "Total source messages rejected during parse or validation.",
		}),
		SyntheticTracksProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cyclone_analog",
			Name:      "synthetic_tracks_produced_total",
			Help:      "Total synthetic scenario tracks written to the sink topic.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cyclone_analog",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		ScenarioRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cyclone_analog",
			Name:      "scenario_runs_total",
			Help:      "Total cluster-refine-synthesize cycles attempted.",
		}),
		ScenarioErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cyclone_analog",
			Name:      "scenario_errors_total",
			Help:      "Total scenario cycles that failed.",
		}),
		ClustersFound: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cyclone_analog",
			Name:      "clusters_found",
			Help:      "Clusters discovered in the most recent scenario cycle.",
		}),
		NoiseTracks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cyclone_analog",
			Name:      "noise_tracks",
			Help:      "Tracks labelled as noise in the most recent scenario cycle.",
		}),
		PoolSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cyclone_analog",
			Name:      "pool_size",
			Help:      "Number of tracks in the analog pool when a scenario cycle starts.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		ScenarioDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cyclone_analog",
			Name:      "scenario_duration_seconds",
			Help:      "Duration of a complete cluster-refine-synthesize cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
	}

	prometheus.MustRegister(
		m.TracksConsumed,
		m.TrackParseErrors,
		m.SyntheticTracksProduced,
		m.PipelineRunning,
		m.ScenarioRuns,
		m.ScenarioErrors,
		m.ClustersFound,
		m.NoiseTracks,
		m.PoolSize,
		m.ScenarioDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics without touching the default registry
// to avoid "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		TracksConsumed:          prometheus.NewCounter(prometheus.CounterOpts{Namespace: "cyclone_analog", Name: "tracks_consumed_total"}),
		TrackParseErrors:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "cyclone_analog", Name: "track_parse_errors_total"}),
		SyntheticTracksProduced: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "cyclone_analog", Name: "synthetic_tracks_produced_total"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "cyclone_analog", Name: "pipeline_running"}),
		ScenarioRuns:            prometheus.NewCounter(prometheus.CounterOpts{Namespace: "cyclone_analog", Name: "scenario_runs_total"}),
		ScenarioErrors:          prometheus.NewCounter(prometheus.CounterOpts{Namespace: "cyclone_analog", Name: "scenario_errors_total"}),
		ClustersFound:           prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "cyclone_analog", Name: "clusters_found"}),
		NoiseTracks:             prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "cyclone_analog", Name: "noise_tracks"}),
		PoolSize:                prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "cyclone_analog", Name: "pool_size"}),
		ScenarioDuration:        prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "cyclone_analog", Name: "scenario_duration_seconds"}),
	}
}
