package filesystem

import "sync/atomic"

// Observer records filesystem retry metrics. The metrics package provides
// the implementation so that this package stays free of Prometheus imports.
type Observer interface {
	// ObserveOperation records the duration and outcome of one operation.
	// volume is the library id that owns the path.
	ObserveOperation(volume, operation string, durationSeconds float64, err error)

	ObserveRetryAttempt(operation, volume string)
	ObserveRetrySuccess(operation, volume string)
	ObserveRetryFailure(operation, volume string)
	ObserveStaleError(operation, volume string)
}

type observerHolder struct{ Observer }

var defaultObserver atomic.Pointer[observerHolder]

// SetObserver installs the package-level observer. A nil observer disables
// metric recording.
func SetObserver(o Observer) {
	if o == nil {
		defaultObserver.Store(nil)
		return
	}
	defaultObserver.Store(&observerHolder{o})
}

func observe() Observer {
	h := defaultObserver.Load()
	if h == nil {
		return nil
	}
	return h.Observer
}
