package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, route, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, route, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// AssetUpdatesTotal counts committed asset updates by table type.
	AssetUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_asset_updates_total",
			Help: "Asset updates committed, by table type",
		},
		[]string{"table_type"},
	)

	// AuditEntriesTotal counts history rows written by table type.
	AuditEntriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_audit_entries_total",
			Help: "Asset history entries written, by table type",
		},
		[]string{"table_type"},
	)

	// AuditWriteFailuresTotal counts updates whose history could not be written.
	AuditWriteFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_audit_write_failures_total",
			Help: "Committed asset updates whose history rows failed to persist",
		},
		[]string{"table_type"},
	)

	// SnapshotExportsTotal counts scheduled spreadsheet snapshots by result (ok, error).
	SnapshotExportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_snapshot_exports_total",
			Help: "Scheduled inventory snapshot exports by result",
		},
		[]string{"result"},
	)
)

var initOnce sync.Once

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestDuration, RequestTotal,
			AssetUpdatesTotal, AuditEntriesTotal, AuditWriteFailuresTotal,
			SnapshotExportsTotal,
		)
	})
}

// RecordRequest records duration and count for an HTTP request. route should be the router
// pattern (e.g. /fetchData/{tableType}) so label cardinality stays bounded.
func RecordRequest(method, route string, statusCode int, durationSeconds float64) {
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, route, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, route, status).Inc()
}

// RecordUpdate counts one committed update and the history entries it produced.
func RecordUpdate(tableType string, entries int) {
	AssetUpdatesTotal.WithLabelValues(tableType).Inc()
	AuditEntriesTotal.WithLabelValues(tableType).Add(float64(entries))
}

// RecordAuditFailure counts an update whose history rows were not written.
func RecordAuditFailure(tableType string) {
	AuditWriteFailuresTotal.WithLabelValues(tableType).Inc()
}

// RecordSnapshot counts a scheduled export run.
func RecordSnapshot(ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	SnapshotExportsTotal.WithLabelValues(result).Inc()
}
