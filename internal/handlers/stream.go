package handlers

import (
	"errors"
	"net/http"

	"mediastream/internal/logging"
	"mediastream/internal/streaming"

	"github.com/gorilla/mux"
)

// Stream serves /stream/{type}/{path} with single-range support. The path
// variable is either a filename or folder/filename; folder may span several
// segments.
func (h *Handlers) Stream(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	libraryType := vars["type"]
	relPath := vars["path"]

	fullPath, err := h.catalog.ResolveFile(libraryType, relPath)
	if err != nil {
		logging.Debug("Stream: %v", err)
		w.Header().Set("Content-Disposition", "inline")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	outcome, err := h.streamer.Serve(w, r, fullPath)
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, streaming.ErrClientGone), errors.Is(err, streaming.ErrStreamCanceled):
		logging.Debug("Stream %s/%s ended by client: %v", libraryType, relPath, err)
	case outcome == streaming.NotFound, outcome == streaming.BadRange:
		logging.Debug("Stream %s/%s refused (%s): %v", libraryType, relPath, outcome, err)
	default:
		logging.Warn("Stream %s/%s failed (%s): %v", libraryType, relPath, outcome, err)
	}
}
