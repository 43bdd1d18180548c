package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	created          *prom.CounterVec
	dedupHits        *prom.CounterVec
	resolutionMisses *prom.CounterVec
	danglingMedia    prom.Counter
	documentDuration prom.Histogram
	documentOutcome  *prom.CounterVec
	sectionOutcome   *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers the ingestion metrics.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		created: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "medrecpro",
			Name:      "records_created_total",
			Help:      "Newly persisted records by entity",
		}, []string{"entity"}),
		dedupHits: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "medrecpro",
			Name:      "dedup_hits_total",
			Help:      "Find-or-create calls that matched an existing record",
		}, []string{"entity"}),
		resolutionMisses: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "medrecpro",
			Name:      "resolution_misses_total",
			Help:      "Cross-reference lookups with no target",
		}, []string{"kind"}),
		danglingMedia: prom.NewCounter(prom.CounterOpts{
			Namespace: "medrecpro",
			Name:      "dangling_media_references_total",
			Help:      "Media references with no matching asset in document scope",
		}),
		documentDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "medrecpro",
			Name:      "document_ingest_duration_seconds",
			Help:      "Wall time per document ingestion",
			Buckets:   prom.DefBuckets,
		}),
		documentOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "medrecpro",
			Name:      "document_outcomes_total",
			Help:      "Document ingestions by outcome",
		}, []string{"outcome"}),
		sectionOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "medrecpro",
			Name:      "section_outcomes_total",
			Help:      "Section processing results by outcome",
		}, []string{"outcome"}),
	}
	reg.MustRegister(pr.created, pr.dedupHits, pr.resolutionMisses, pr.danglingMedia,
		pr.documentDuration, pr.documentOutcome, pr.sectionOutcome)
	return pr
}

func (p *PrometheusRecorder) RecordCreated(entity string) {
	p.created.WithLabelValues(entity).Inc()
}

func (p *PrometheusRecorder) RecordDedupHit(entity string) {
	p.dedupHits.WithLabelValues(entity).Inc()
}

func (p *PrometheusRecorder) RecordResolutionMiss(kind string) {
	p.resolutionMisses.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) RecordDanglingMedia() {
	p.danglingMedia.Inc()
}

func (p *PrometheusRecorder) RecordDocument(duration time.Duration, success bool) {
	p.documentDuration.Observe(duration.Seconds())
	p.documentOutcome.WithLabelValues(outcome(success)).Inc()
}

func (p *PrometheusRecorder) RecordSection(success bool) {
	p.sectionOutcome.WithLabelValues(outcome(success)).Inc()
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

var _ Recorder = (*PrometheusRecorder)(nil)
