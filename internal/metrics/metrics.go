package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline outcomes used as the "outcome" label of PipelineRuns.
const (
	OutcomeSuccess       = "success"
	OutcomeDecodeError   = "decode_error"
	OutcomeParseError    = "parse_error"
	OutcomeMissingColumn = "missing_column"
	OutcomeInternal      = "internal"
)

type Metrics struct {
	UploadsReceived *prometheus.CounterVec
	PipelineRuns    *prometheus.CounterVec
	RenderSeconds   prometheus.Histogram
	MapPoints       prometheus.Histogram
	ActiveSessions  prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		UploadsReceived: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "meridian_uploads_total",
			Help: "Total number of received file uploads.",
		}, []string{"status"}),
		PipelineRuns: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "meridian_pipeline_runs_total",
			Help: "Total number of dashboard pipeline runs by outcome.",
		}, []string{"outcome"}),
		RenderSeconds: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "meridian_render_duration_seconds",
			Help:    "Duration of a full decode, parse, filter and render pass.",
			Buckets: prometheus.DefBuckets,
		}),
		MapPoints: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "meridian_map_points",
			Help:    "Number of points drawn on the map per render.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		ActiveSessions: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "meridian_active_sessions",
			Help: "Current number of sessions holding an upload.",
		}),
	}
}
