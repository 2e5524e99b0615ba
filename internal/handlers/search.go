package handlers

import (
	"net/http"

	"mediastream/internal/logging"
)

// Search returns ranked entries across all libraries. Queries shorter than
// two characters yield an empty list.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	results, err := h.catalog.Search(r.Context(), query)
	if err != nil {
		logging.Debug("Search %q interrupted: %v", query, err)
		writeJSONError(w, "Search failed", http.StatusServiceUnavailable)
		return
	}

	writeJSONOK(w, results)
}
