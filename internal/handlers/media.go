package handlers

import (
	"context"
	"errors"
	"net/http"

	"mediastream/internal/catalog"
	"mediastream/internal/logging"

	"github.com/gorilla/mux"
)

// ListLibraries returns the configured libraries.
func (h *Handlers) ListLibraries(w http.ResponseWriter, _ *http.Request) {
	writeJSONOK(w, h.catalog.ListLibraries())
}

// ListLibrary returns every entry of the library named by the type route
// variable.
func (h *Handlers) ListLibrary(w http.ResponseWriter, r *http.Request) {
	libraryType := mux.Vars(r)["type"]

	entries, err := h.catalog.ListEntries(r.Context(), libraryType)
	if err != nil {
		if errors.Is(err, catalog.ErrLibraryNotFound) {
			writeJSONError(w, "Library not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, context.Canceled) {
			logging.Debug("ListLibrary %s canceled by client", libraryType)
			return
		}
		logging.Error("ListLibrary %s failed: %v", libraryType, err)
		writeJSONError(w, "Failed to scan library", http.StatusInternalServerError)
		return
	}

	writeJSONOK(w, entries)
}

// GetMedia resolves a single entry by its opaque id.
func (h *Handlers) GetMedia(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	entry, err := h.catalog.ResolveEntry(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			logging.Debug("GetMedia: %v", err)
			writeJSONError(w, "Media not found", http.StatusNotFound)
			return
		}
		logging.Debug("GetMedia canceled: %v", err)
		return
	}

	writeJSONOK(w, entry)
}

// DebugScan reports what every library root contains and what the scanner
// made of it.
func (h *Handlers) DebugScan(w http.ResponseWriter, r *http.Request) {
	report, err := h.catalog.DebugScan(r.Context())
	if err != nil {
		logging.Debug("DebugScan interrupted: %v", err)
		writeJSONError(w, "Scan interrupted", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSONOK(w, report)
}
