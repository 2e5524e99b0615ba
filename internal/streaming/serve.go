package streaming

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strconv"
	"time"

	"mediastream/internal/filesystem"
	"mediastream/internal/logging"
	"mediastream/internal/mediatypes"
	"mediastream/internal/metrics"
)

// Outcome is the terminal state of a stream request.
type Outcome int

const (
	// Served200 sent the full file.
	Served200 Outcome = iota
	// Served206 sent a single byte range.
	Served206
	// NotFound means the file is missing or is not a regular file.
	NotFound
	// BadRange means the Range header was malformed or unsatisfiable.
	BadRange
	// Failed means the file could not be opened for a reason other than
	// absence.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Served200:
		return "full"
	case Served206:
		return "partial"
	case NotFound:
		return "not_found"
	case BadRange:
		return "bad_range"
	default:
		return "error"
	}
}

// ErrShortBody is returned when the file shrank while it was being sent.
var ErrShortBody = errors.New("file ended before the requested range")

const copyBufferSize = 64 * 1024

// Server delivers files with single-range support.
type Server struct {
	config TimeoutWriterConfig
	retry  filesystem.RetryConfig

	// overridable in tests
	open func(string) (*os.File, error)
}

// NewServer creates a Server whose response bodies are written through a
// TimeoutWriter configured with config.
func NewServer(config TimeoutWriterConfig) *Server {
	s := &Server{
		config: config,
		retry:  filesystem.DefaultRetryConfig(),
	}
	s.open = func(path string) (*os.File, error) {
		return filesystem.OpenWithRetry(path, s.retry)
	}
	return s
}

// Serve writes the file at path to w, honoring a single-range Range header.
// The response has always been written when Serve returns. The error
// describes why a stream ended early or was refused and is meant for
// logging; errors.Is matches ErrClientGone, ErrWriteTimeout, ErrInvalidRange
// and ErrRangeNotSatisfiable.
func (s *Server) Serve(w http.ResponseWriter, r *http.Request, path string) (outcome Outcome, err error) {
	defer func() {
		metrics.StreamRequestsTotal.WithLabelValues(outcome.String()).Inc()
	}()

	h := w.Header()
	h.Set("Content-Disposition", "inline")
	h.Set("X-Content-Type-Options", "nosniff")

	f, err := s.open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			http.Error(w, "Not found", http.StatusNotFound)
			return NotFound, err
		}
		logging.Error("Failed to open %s: %v", path, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return Failed, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logging.Warn("Failed to close %s: %v", path, cerr)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		logging.Error("Failed to stat %s: %v", path, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return Failed, err
	}
	if !info.Mode().IsRegular() {
		http.Error(w, "Not found", http.StatusNotFound)
		return NotFound, fmt.Errorf("%s is not a regular file", path)
	}
	size := info.Size()

	h.Set("Accept-Ranges", RangeUnit)

	status := http.StatusOK
	outcome = Served200
	span := ByteRange{Start: 0, End: size - 1}

	if header := r.Header.Get("Range"); header != "" {
		span, err = ParseRange(header, size)
		if err != nil {
			h.Set("Content-Range", UnsatisfiedContentRange(size))
			http.Error(w, "Requested range not satisfiable", http.StatusRequestedRangeNotSatisfiable)
			return BadRange, err
		}
		status = http.StatusPartialContent
		outcome = Served206
		h.Set("Content-Range", span.ContentRange(size))
	}

	length := span.Length()
	h.Set("Content-Type", mediatypes.MimeType(path))
	h.Set("Content-Length", strconv.FormatInt(length, 10))
	h.Set("Last-Modified", info.ModTime().UTC().Format(http.TimeFormat))
	w.WriteHeader(status)

	if r.Method == http.MethodHead || length == 0 {
		return outcome, nil
	}

	return outcome, s.copySpan(w, r, f, span, kindLabel(path))
}

func (s *Server) copySpan(w http.ResponseWriter, r *http.Request, f *os.File, span ByteRange, kind string) error {
	metrics.StreamsActive.Inc()
	defer metrics.StreamsActive.Dec()

	tw := NewTimeoutWriter(r.Context(), w, s.config)
	defer func() {
		if err := tw.Close(); err != nil {
			logging.Debug("Failed to reset stream deadline: %v", err)
		}
	}()

	length := span.Length()
	buf := make([]byte, copyBufferSize)
	n, err := io.CopyBuffer(tw, io.NewSectionReader(f, span.Start, length), buf)
	metrics.StreamBytesTotal.WithLabelValues(kind).Add(float64(n))

	if err == nil && n < length {
		err = fmt.Errorf("%w: sent %d of %d bytes", ErrShortBody, n, length)
	}

	if err != nil {
		metrics.StreamInterruptionsTotal.WithLabelValues(interruptionReason(err)).Inc()
		return err
	}

	_, duration := tw.Stats()
	logging.Debug("Stream completed: %d bytes in %v", n, duration.Round(time.Millisecond))
	return nil
}

func interruptionReason(err error) string {
	switch {
	case errors.Is(err, ErrClientGone), errors.Is(err, ErrStreamCanceled):
		return "client_gone"
	case errors.Is(err, ErrWriteTimeout):
		return "write_timeout"
	default:
		return "error"
	}
}

func kindLabel(path string) string {
	if c, ok := mediatypes.Classify(path); ok {
		return string(c.Kind)
	}
	return "other"
}
