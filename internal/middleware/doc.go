// Package middleware provides the HTTP middleware chain for mediastream.
//
// It includes:
//   - Request ids (X-Request-ID)
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics labeled by route template
//   - HTTP basic authentication against a bcrypt hash
//   - gzip compression for JSON and text responses
//
// Every response writer wrapper implements Unwrap so that
// http.ResponseController reaches the connection through the chain. Stream
// responses are never compressed.
package middleware
