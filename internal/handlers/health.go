package handlers

import (
	"net/http"
	"runtime"
	"time"

	"mediastream/internal/startup"
)

const (
	statusHealthy     = "healthy"
	statusDegraded    = "degraded"
	statusUnavailable = "unavailable"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status    string          `json:"status"`
	Ready     bool            `json:"ready"`
	Version   string          `json:"version"`
	Uptime    string          `json:"uptime"`
	Libraries map[string]bool `json:"libraries"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// libraryStatus summarises root reachability. The service is ready while at
// least one library root can be read, or when none are configured.
func libraryStatus(health map[string]bool) (status string, ready bool) {
	up := 0
	for _, ok := range health {
		if ok {
			up++
		}
	}

	switch {
	case up == len(health):
		return statusHealthy, true
	case up > 0:
		return statusDegraded, true
	default:
		return statusUnavailable, false
	}
}

// HealthCheck returns the health status of the service
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	libraries := h.catalog.LibraryHealth()
	status, ready := libraryStatus(libraries)

	response := HealthResponse{
		Status:       status,
		Ready:        ready,
		Version:      startup.Version,
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
		Libraries:    libraries,
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	}

	w.Header().Set("Content-Type", "application/json")

	// Return 503 only if no library can be served
	if !ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	writeJSON(w, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers (no body)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{
			"status": "alive",
		})
	}
}

// ReadinessCheck returns 200 only when the service is ready to accept traffic
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, ready := libraryStatus(h.catalog.LibraryHealth()); ready {
		w.WriteHeader(http.StatusOK)
		writeJSON(w, map[string]string{
			"status": "ready",
		})
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
		writeJSON(w, map[string]string{
			"status": "not_ready",
		})
	}
}
