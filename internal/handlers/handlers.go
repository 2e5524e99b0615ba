package handlers

import (
	"time"

	"mediastream/internal/catalog"
	"mediastream/internal/streaming"
)

// Handlers holds the dependencies shared by every HTTP handler.
type Handlers struct {
	catalog   *catalog.Service
	streamer  *streaming.Server
	startTime time.Time
}

// New creates Handlers backed by the catalog and streamer.
func New(cat *catalog.Service, streamer *streaming.Server) *Handlers {
	return &Handlers{
		catalog:   cat,
		streamer:  streamer,
		startTime: time.Now(),
	}
}
