// Package streaming delivers media files over HTTP with byte-range support.
//
// # Range Delivery
//
// Server.Serve sends a file in full (200) or a single byte range (206):
//
//	outcome, err := server.Serve(w, r, absPath)
//	if err != nil && !errors.Is(err, streaming.ErrClientGone) {
//		logging.Debug("stream %s ended with %s: %v", absPath, outcome, err)
//	}
//
// Only "bytes=start-[end]" is accepted. An omitted end, or one past the last
// byte, selects through the end of the file. Malformed headers, suffix ranges,
// multiple ranges, and ranges that start at or beyond the file size are
// answered with 416 and "Content-Range: bytes */size"; they are never
// downgraded to a full 200 response.
//
// Every response sets Content-Disposition: inline, X-Content-Type-Options:
// nosniff, and Accept-Ranges: bytes. These bias browsers toward inline playback
// and are not an access control.
//
// # Resource Handling
//
// The file is opened once per request and closed on every exit path. A scrubbing
// client issuing many overlapping range requests holds at most one descriptor
// per in-flight request.
//
// # Slow and Disconnected Clients
//
// Bodies are written through a TimeoutWriter. Each chunk write carries a
// connection write deadline set through http.ResponseController, and an idle
// checker cancels streams that make no progress:
//
//	config := streaming.DefaultTimeoutWriterConfig()
//	config.WriteTimeout = 60 * time.Second
//
// A client disconnect cancels the request context; the copy stops at the next
// chunk and Serve returns ErrClientGone.
//
// Middleware that wraps the http.ResponseWriter must implement
// Unwrap() http.ResponseWriter for deadlines and flushing to reach the
// connection.
package streaming
