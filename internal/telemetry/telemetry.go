// Package telemetry exposes Prometheus metrics for the ingestion and
// query pipelines. Metrics are registered on the default registry and
// served by the HTTP API on /metrics.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/docent-labs/docent/internal/core/domain"
)

// Chunk and question outcome label values.
const (
	OutcomeIndexed   = "indexed"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
	OutcomeCompleted = "completed"
	OutcomeFallback  = "fallback"
)

var (
	documentsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docent_documents_ingested_total",
		Help: "Number of documents that completed an ingestion pass.",
	})

	chunksProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docent_ingest_chunks_total",
		Help: "Number of chunks processed during ingestion, by outcome.",
	}, []string{"outcome"})

	ingestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "docent_ingest_duration_seconds",
		Help:    "Wall-clock duration of one document ingestion.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	questionsAnswered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docent_questions_total",
		Help: "Number of questions processed, by outcome.",
	}, []string{"outcome"})

	answerDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "docent_answer_duration_seconds",
		Help:    "Wall-clock duration of one answered question.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	})
)

// ObserveIngest records the aggregate outcome of one ingestion run.
func ObserveIngest(result domain.IngestResult, elapsed time.Duration) {
	documentsIngested.Inc()
	ingestDuration.Observe(elapsed.Seconds())
	// Skips are counted here rather than per chunk; indexed and failed
	// chunks were already counted as they happened.
	chunksProcessed.WithLabelValues(OutcomeSkipped).Add(float64(result.ChunksSkipped))
}

// CountChunk records one chunk outcome during ingestion.
func CountChunk(outcome string) {
	chunksProcessed.WithLabelValues(outcome).Inc()
}

// ObserveQuestion records the outcome of one answered question.
func ObserveQuestion(outcome string, elapsed time.Duration) {
	questionsAnswered.WithLabelValues(outcome).Inc()
	answerDuration.Observe(elapsed.Seconds())
}
