// Package handlers provides the HTTP request handlers for the media catalog.
//
// It includes handlers for:
//   - Library listing and per-library catalogs
//   - Entry lookup by opaque id and ranked search
//   - Byte-range streaming of library files
//   - Scan diagnostics
//   - Health checks and version information
//
// Handlers trust that authentication has already happened in middleware.
package handlers
