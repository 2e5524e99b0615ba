package streaming

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"mediastream/internal/logging"
)

var (
	// ErrWriteTimeout indicates that a write stalled for longer than the
	// write timeout, or no write completed within the idle timeout.
	ErrWriteTimeout = errors.New("write timeout exceeded")

	// ErrClientGone indicates that the client disconnected before the
	// stream completed.
	ErrClientGone = errors.New("client disconnected")

	// ErrStreamCanceled indicates that the writer was closed.
	ErrStreamCanceled = errors.New("stream canceled")
)

// TimeoutWriterConfig configures the timeout writer behavior
type TimeoutWriterConfig struct {
	// WriteTimeout bounds a single chunk write (0 = no deadline).
	WriteTimeout time.Duration
	// IdleTimeout is the maximum time between successful writes (0 = none).
	IdleTimeout time.Duration
	// ChunkSize splits large writes and flushes after each chunk.
	ChunkSize int
}

// DefaultTimeoutWriterConfig returns the defaults used for media streams.
func DefaultTimeoutWriterConfig() TimeoutWriterConfig {
	return TimeoutWriterConfig{
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		ChunkSize:    64 * 1024,
	}
}

// TimeoutWriter wraps an http.ResponseWriter with write deadlines and idle
// detection. Deadlines are applied to the connection through
// http.ResponseController, so a stalled write fails in place rather than
// leaving a goroutine blocked on the connection.
type TimeoutWriter struct {
	w       http.ResponseWriter
	rc      *http.ResponseController
	parent  context.Context
	ctx     context.Context
	cancel  context.CancelFunc
	config  TimeoutWriterConfig
	timeout atomic.Bool

	// false when the underlying writer cannot take deadlines (e.g. httptest)
	deadlines bool

	mu           sync.Mutex
	startTime    time.Time
	lastWrite    time.Time
	bytesWritten int64
	closed       bool
}

// NewTimeoutWriter creates a new timeout-protected writer. Close must be
// called when the response body is complete.
func NewTimeoutWriter(ctx context.Context, w http.ResponseWriter, config TimeoutWriterConfig) *TimeoutWriter {
	writerCtx, cancel := context.WithCancel(ctx)
	rc := http.NewResponseController(w)

	tw := &TimeoutWriter{
		w:         w,
		rc:        rc,
		parent:    ctx,
		ctx:       writerCtx,
		cancel:    cancel,
		config:    config,
		startTime: time.Now(),
		lastWrite: time.Now(),
	}
	tw.deadlines = rc.SetWriteDeadline(time.Time{}) == nil

	go tw.idleChecker()

	return tw
}

// Write implements io.Writer.
func (tw *TimeoutWriter) Write(p []byte) (int, error) {
	tw.mu.Lock()
	closed := tw.closed
	tw.mu.Unlock()
	if closed {
		return 0, ErrStreamCanceled
	}

	total := 0
	for len(p) > 0 {
		if tw.ctx.Err() != nil {
			return total, tw.contextError()
		}

		chunk := p
		if tw.config.ChunkSize > 0 && len(chunk) > tw.config.ChunkSize {
			chunk = chunk[:tw.config.ChunkSize]
		}

		n, err := tw.writeChunk(chunk)
		total += n
		if err != nil {
			return total, err
		}
		p = p[len(chunk):]
	}

	return total, nil
}

func (tw *TimeoutWriter) writeChunk(p []byte) (int, error) {
	if tw.deadlines && tw.config.WriteTimeout > 0 {
		_ = tw.rc.SetWriteDeadline(time.Now().Add(tw.config.WriteTimeout))
	}

	n, err := tw.w.Write(p)

	tw.mu.Lock()
	tw.bytesWritten += int64(n)
	if err == nil {
		tw.lastWrite = time.Now()
	}
	tw.mu.Unlock()

	if err != nil {
		return n, tw.classify(err)
	}

	if err := tw.rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return n, tw.classify(err)
	}
	return n, nil
}

func (tw *TimeoutWriter) classify(err error) error {
	if errors.Is(err, os.ErrDeadlineExceeded) || tw.timeout.Load() {
		return ErrWriteTimeout
	}
	if tw.ctx.Err() != nil {
		return tw.contextError()
	}
	return err
}

// idleChecker cancels the stream when no write has completed within
// IdleTimeout, and forces any blocked write to return.
func (tw *TimeoutWriter) idleChecker() {
	if tw.config.IdleTimeout <= 0 {
		return
	}

	ticker := time.NewTicker(tw.config.IdleTimeout / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			tw.mu.Lock()
			idle := time.Since(tw.lastWrite)
			tw.mu.Unlock()

			if idle > tw.config.IdleTimeout {
				logging.Warn("Stream idle timeout exceeded: %v", idle)
				tw.timeout.Store(true)
				tw.cancel()
				if tw.deadlines {
					_ = tw.rc.SetWriteDeadline(time.Now())
				}
				return
			}

		case <-tw.ctx.Done():
			return
		}
	}
}

func (tw *TimeoutWriter) contextError() error {
	switch {
	case tw.timeout.Load():
		return ErrWriteTimeout
	case tw.parent.Err() != nil:
		return ErrClientGone
	default:
		return ErrStreamCanceled
	}
}

// Close stops the idle checker and clears the connection deadline so a
// kept-alive connection can serve the next request.
func (tw *TimeoutWriter) Close() error {
	tw.mu.Lock()
	if tw.closed {
		tw.mu.Unlock()
		return nil
	}
	tw.closed = true
	tw.mu.Unlock()

	tw.cancel()
	if tw.deadlines && !tw.timeout.Load() {
		if err := tw.rc.SetWriteDeadline(time.Time{}); err != nil {
			return err
		}
	}
	return nil
}

// Stats returns streaming statistics
func (tw *TimeoutWriter) Stats() (bytesWritten int64, duration time.Duration) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return tw.bytesWritten, time.Since(tw.startTime)
}
