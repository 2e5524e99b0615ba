/*
Package workers sizes the worker pools used for concurrent library scans.

Worker counts are derived from GOMAXPROCS rather than runtime.NumCPU, so they
respect container CPU limits. Library scans are I/O bound, so ForIO uses two
workers per available CPU:

	g.SetLimit(workers.ForIO(workers.DefaultScanLimit))

# Environment Variable Override

SCAN_WORKERS replaces the computed count. The limit passed by the caller
still caps it:

	SCAN_WORKERS=4 ./mediastream
*/
package workers
