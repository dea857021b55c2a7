package metrics

import (
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "sitemapper"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	itemsRecorded     *prom.CounterVec
	itemsExcluded     *prom.CounterVec
	entriesOverwrote  prom.Counter
	metadataIssues    *prom.CounterVec
	entriesEmitted    *prom.GaugeVec
	buildDuration     prom.Histogram
	buildOutcome      *prom.CounterVec
	lastBuildFinished prom.Gauge
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		itemsRecorded: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "items_recorded_total",
			Help:      "Announced content items that produced a sitemap entry, by content class",
		}, []string{"class"}),
		itemsExcluded: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "items_excluded_total",
			Help:      "Announced content items left out of the sitemap, by reason",
		}, []string{"reason"}),
		entriesOverwrote: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "entries_overwritten_total",
			Help:      "Entries replaced by a later item with the same loc",
		}),
		metadataIssues: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "metadata_issues_total",
			Help:      "Rejected per-item metadata values, by field",
		}, []string{"field"}),
		entriesEmitted: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "entries_emitted",
			Help:      "Entries written by the last finalized sitemap",
		}, []string{"format"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total sitemap build duration",
			Buckets:   prom.DefBuckets,
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Sitemap builds by final status",
		}, []string{"outcome"}),
		lastBuildFinished: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "last_build_timestamp_seconds",
			Help:      "Unix time the last sitemap build finished",
		}),
	}
	reg.MustRegister(
		pr.itemsRecorded,
		pr.itemsExcluded,
		pr.entriesOverwrote,
		pr.metadataIssues,
		pr.entriesEmitted,
		pr.buildDuration,
		pr.buildOutcome,
		pr.lastBuildFinished,
	)
	return pr
}

func (p *PrometheusRecorder) IncItemRecorded(class string) {
	if p == nil {
		return
	}
	p.itemsRecorded.WithLabelValues(class).Inc()
}

func (p *PrometheusRecorder) IncItemExcluded(reason ExclusionReason) {
	if p == nil {
		return
	}
	p.itemsExcluded.WithLabelValues(string(reason)).Inc()
}

func (p *PrometheusRecorder) IncEntryOverwritten() {
	if p == nil {
		return
	}
	p.entriesOverwrote.Inc()
}

func (p *PrometheusRecorder) IncMetadataIssue(field string) {
	if p == nil {
		return
	}
	p.metadataIssues.WithLabelValues(field).Inc()
}

func (p *PrometheusRecorder) SetEntriesEmitted(format string, n int) {
	if p == nil {
		return
	}
	p.entriesEmitted.Reset()
	p.entriesEmitted.WithLabelValues(format).Set(float64(n))
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcome) {
	if p == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
	p.lastBuildFinished.SetToCurrentTime()
}

// WriteTextfile writes every metric gathered from reg to path in the
// node_exporter textfile format. The file is replaced atomically.
func WriteTextfile(reg *prom.Registry, path string) error {
	if err := prom.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
