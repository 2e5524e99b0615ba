// Package main provides the entry point for the media stream server.
//
// The server catalogs media files under configured library roots and
// serves them to an authenticated browser client, with HTTP byte-range
// delivery for seeking and scrubbing.
//
// # Application Lifecycle
//
//  1. Log file setup: LOG_FILE enables rotated file output
//  2. Configuration Loading: environment variables and the libraries file
//  3. Filesystem instrumentation: retry observer and per-library volumes
//  4. Catalog: scanner plus the optional watch-invalidated cache
//  5. Metrics Collector: probes library roots every minute
//  6. HTTP Server Setup: routes, middleware, and listeners
//  7. Graceful Shutdown: SIGINT/SIGTERM stops everything cleanly
//
// # HTTP Server
//
// The application runs two HTTP servers:
//
//  1. Main Server (default port 3000):
//     - /api/libraries, /api/library/{type}, /api/media/{id}, /api/search
//     - /api/debug/scan scan diagnostics
//     - /stream/{type}/{path} byte-range delivery
//     - /health, /healthz, /livez, /readyz, /version
//
//  2. Metrics Server (default port 9090, optional):
//     - Prometheus metrics endpoint (/metrics)
//     - Liveness endpoint (/health)
//
// Every request on the main server passes through request id assignment,
// the W3C access log, gzip compression for JSON, and HTTP basic
// authentication when AUTH_USERNAME and AUTH_PASSWORD_HASH are set.
//
// # Catalog Freshness
//
// By default every catalog request rescans the filesystem, so results are
// always current. CATALOG_CACHE=true keeps one snapshot per library and
// drops it whenever fsnotify reports a change below that library's root, or
// after CATALOG_CACHE_TTL.
//
// # Related Packages
//
//   - [mediastream/internal/catalog]: library orchestration, search, cache
//   - [mediastream/internal/media]: entries and the library scanner
//   - [mediastream/internal/streaming]: range parsing and delivery
//   - [mediastream/internal/handlers]: HTTP request handlers
//   - [mediastream/internal/middleware]: logging, metrics, gzip, auth
//   - [mediastream/internal/startup]: configuration and initialization
package main
