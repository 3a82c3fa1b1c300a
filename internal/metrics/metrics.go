// Package metrics holds the Prometheus collectors for the transcription pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "soundblast"

// Outcome labels for soundblast_transcriptions_total.
const (
	OutcomeCreated = "created"
	OutcomeCached  = "cached"
	OutcomeShared  = "shared"
	OutcomeFailed  = "failed"
)

// Pipeline records transcription pipeline activity. A nil *Pipeline is a
// valid no-op recorder.
type Pipeline struct {
	transcriptions *prometheus.CounterVec
	stageDuration  *prometheus.HistogramVec
	cacheLookups   *prometheus.CounterVec
	toolFailures   *prometheus.CounterVec
	inFlight       prometheus.Gauge
}

// NewPipeline registers the pipeline collectors on reg.
func NewPipeline(reg prometheus.Registerer) *Pipeline {
	f := promauto.With(reg)
	return &Pipeline{
		transcriptions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcriptions_total",
			Help:      "Transcription requests by outcome.",
		}, []string{"outcome"}),
		stageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transcription_stage_seconds",
			Help:      "Time spent in each pipeline stage.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}, []string{"stage"}),
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcript_cache_total",
			Help:      "Transcript cache lookups by result.",
		}, []string{"result"}),
		toolFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_failures_total",
			Help:      "External tool runs that exited nonzero or could not start.",
		}, []string{"tool"}),
		inFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "transcriptions_in_flight",
			Help:      "Pipeline runs currently executing.",
		}),
	}
}

func (p *Pipeline) Transcription(outcome string) {
	if p == nil {
		return
	}
	p.transcriptions.WithLabelValues(outcome).Inc()
}

func (p *Pipeline) ObserveStage(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *Pipeline) CacheLookup(hit bool) {
	if p == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	p.cacheLookups.WithLabelValues(result).Inc()
}

func (p *Pipeline) ToolFailure(tool string) {
	if p == nil {
		return
	}
	p.toolFailures.WithLabelValues(tool).Inc()
}

// RunStarted increments the in-flight gauge and returns the matching decrement.
func (p *Pipeline) RunStarted() func() {
	if p == nil {
		return func() {}
	}
	p.inFlight.Inc()
	return p.inFlight.Dec
}
