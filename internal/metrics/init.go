package metrics

import "mediastream/internal/filesystem"

// InitializeMetrics pre-populates the expected label combinations so that
// every metric is exported from the first scrape.
func InitializeMetrics(libraryIDs []string) {
	volumes := append([]string{filesystem.UnknownVolume}, libraryIDs...)

	for _, vol := range volumes {
		for _, op := range []string{"stat", "lstat", "open", "readdir"} {
			FilesystemOperationDuration.WithLabelValues(vol, op)
			FilesystemOperationErrors.WithLabelValues(vol, op)
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetrySuccess.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
		}
	}

	for _, id := range libraryIDs {
		ScannerItemsReturned.WithLabelValues(id)
		ScannerFailuresTotal.WithLabelValues(id)
		LibraryAvailable.WithLabelValues(id)
	}

	for _, op := range []string{"scan", "entry"} {
		for _, status := range []string{"success", "partial", "canceled", "error"} {
			ScannerOperationsTotal.WithLabelValues(op, status)
		}
		ScannerOperationDuration.WithLabelValues(op)
	}

	for _, outcome := range []string{"full", "partial", "not_found", "bad_range", "error"} {
		StreamRequestsTotal.WithLabelValues(outcome)
	}
	for _, kind := range []string{"video", "audio", "image", "other"} {
		StreamBytesTotal.WithLabelValues(kind)
	}
	for _, reason := range []string{"client_gone", "write_timeout", "error"} {
		StreamInterruptionsTotal.WithLabelValues(reason)
	}

	for _, result := range []string{"success", "failure", "missing"} {
		AuthAttemptsTotal.WithLabelValues(result)
	}
}
