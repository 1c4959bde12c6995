package metrics

import "github.com/prometheus/client_golang/prometheus"

// Ingest Prometheus metrics.
var (
	IngestFilesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "arcdex",
			Name:      "ingest_files_total",
			Help:      "Total number of files processed by ingest",
		},
		[]string{"extractor", "status"}, // status: indexed / corrupt / skipped / failed
	)

	IngestExtractionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "arcdex",
			Name:      "ingest_extraction_duration_seconds",
			Help:      "Per-file metadata extraction duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"extractor"},
	)

	IngestRecordsIndexed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "arcdex",
			Name:      "ingest_records_indexed_total",
			Help:      "Total number of records written to the index by ingest",
		},
	)

	ArchiveObjectsStaged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "arcdex",
			Name:      "archive_objects_staged_total",
			Help:      "Total number of objects staged from archive storage",
		},
	)
)

var ingestMetricsRegistered bool

// RegisterIngestMetrics registers Prometheus ingest metrics. Must be called once from main.
func RegisterIngestMetrics() {
	if ingestMetricsRegistered {
		return
	}
	prometheus.MustRegister(IngestFilesTotal)
	prometheus.MustRegister(IngestExtractionDuration)
	prometheus.MustRegister(IngestRecordsIndexed)
	prometheus.MustRegister(ArchiveObjectsStaged)
	ingestMetricsRegistered = true
}
