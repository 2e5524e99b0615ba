// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// Server settings are loaded from environment variables via [LoadConfig]:
//
//   - PORT: HTTP server port (default: 3000)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - LIBRARIES_FILE: Libraries file, .json, .yaml/.yml or .toml (default: config.json)
//   - MEDIA_ROOT: Parent of the default libraries (default: ./media)
//   - CATALOG_CACHE: Cache library scans between filesystem changes (default: false)
//   - CATALOG_CACHE_TTL: Maximum age of a cached scan, 0 for none (default: 0)
//   - AUTH_USERNAME, AUTH_PASSWORD_HASH: Enable HTTP basic auth (bcrypt hash)
//   - STREAM_WRITE_TIMEOUT: Per-write deadline for streams (default: 30s)
//   - STREAM_IDLE_TIMEOUT: Abort streams that make no progress (default: 60s)
//   - SCAN_WORKERS: Libraries scanned concurrently
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_STATIC_FILES: Log static file requests (default: false)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//
// # Libraries File
//
// The libraries file lists media folders:
//
//	{"mediaFolders": [
//	    {"path": "/mnt/media/movies", "type": "movies"},
//	    {"path": "/mnt/media/anime", "type": "anime", "policy": "folder-per-title"}
//	]}
//
// A missing file, or one without folders, yields movies, tvshows and music
// under MEDIA_ROOT. Missing roots are created unless they live under /mnt/,
// /media/, /volume or /data/.
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
package startup
