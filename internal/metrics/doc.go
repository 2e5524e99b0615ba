// Package metrics provides Prometheus instrumentation for mediastream.
//
// All metrics are prefixed with "mediastream_" and registered with the
// default registry through promauto. They are served on the metrics port
// (METRICS_PORT, default 9090) at /metrics.
//
// # Metric Categories
//
// ## HTTP Metrics
//   - HTTPRequestsTotal: requests by method, route template, and status
//   - HTTPRequestDuration: request duration by method and route template
//   - HTTPRequestsInFlight: requests currently being processed
//
// ## Scanner and Search Metrics
//   - ScannerOperationsTotal: scans and single-entry lookups by status
//     (success, partial, canceled, error)
//   - ScannerOperationDuration, ScannerItemsReturned, ScannerFailuresTotal
//   - SearchQueriesTotal, SearchDuration, SearchResults
//
// ## Catalog Cache Metrics
//
// Only populated when CATALOG_CACHE is enabled:
//   - CatalogCacheRequests: hits and misses per library
//   - CatalogCacheInvalidations: by library and reason (watch, ttl, manual)
//   - WatcherEventsTotal, WatcherErrors, WatchedDirectories
//
// ## Streaming Metrics
//   - StreamRequestsTotal: by outcome (full, partial, not_found, bad_range)
//   - StreamBytesTotal: body bytes sent, by media kind
//   - StreamsActive: response bodies currently being written
//   - StreamInterruptionsTotal: by reason (client_gone, write_timeout, error)
//
// ## Filesystem Metrics
//
// Recorded through the filesystem.Observer returned by
// NewFilesystemObserver; the volume label is the owning library id:
//   - FilesystemOperationDuration, FilesystemOperationErrors
//   - FilesystemRetryAttempts, FilesystemRetrySuccess,
//     FilesystemRetryFailures, FilesystemStaleErrors
//
// ## Library Metrics
//   - LibraryAvailable: 1 when a library root is reachable, set by Collector
//
// ## Auth and Application Metrics
//   - AuthAttemptsTotal: basic auth attempts by result
//   - AppInfo: version, commit, and Go version labels
package metrics
