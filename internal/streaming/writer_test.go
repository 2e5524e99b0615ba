package streaming

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDefaultTimeoutWriterConfig(t *testing.T) {
	config := DefaultTimeoutWriterConfig()

	if config.WriteTimeout != 30*time.Second {
		t.Errorf("WriteTimeout = %v, want 30s", config.WriteTimeout)
	}
	if config.IdleTimeout != 60*time.Second {
		t.Errorf("IdleTimeout = %v, want 60s", config.IdleTimeout)
	}
	if config.ChunkSize != 64*1024 {
		t.Errorf("ChunkSize = %d, want 64KB", config.ChunkSize)
	}
}

func TestTimeoutWriterWrite(t *testing.T) {
	rec := httptest.NewRecorder()
	tw := NewTimeoutWriter(context.Background(), rec, DefaultTimeoutWriterConfig())
	defer tw.Close()

	data := []byte("test data")
	n, err := tw.Write(data)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if n != len(data) {
		t.Errorf("wrote %d bytes, want %d", n, len(data))
	}

	written, _ := tw.Stats()
	if written != int64(len(data)) {
		t.Errorf("Stats bytes = %d, want %d", written, len(data))
	}
	if rec.Body.String() != "test data" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestTimeoutWriterChunks(t *testing.T) {
	rec := httptest.NewRecorder()
	config := DefaultTimeoutWriterConfig()
	config.ChunkSize = 4
	tw := NewTimeoutWriter(context.Background(), rec, config)
	defer tw.Close()

	n, err := tw.Write([]byte("0123456789"))
	if err != nil || n != 10 {
		t.Fatalf("Write = %d, %v", n, err)
	}
	if rec.Body.String() != "0123456789" {
		t.Errorf("body = %q", rec.Body.String())
	}
	if !rec.Flushed {
		t.Error("chunks were not flushed")
	}
}

func TestTimeoutWriterClosed(t *testing.T) {
	tw := NewTimeoutWriter(context.Background(), httptest.NewRecorder(), DefaultTimeoutWriterConfig())

	if err := tw.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if err := tw.Close(); err != nil {
		t.Errorf("second Close error: %v", err)
	}
	if _, err := tw.Write([]byte("x")); !errors.Is(err, ErrStreamCanceled) {
		t.Errorf("Write after Close error = %v, want ErrStreamCanceled", err)
	}
}

func TestTimeoutWriterClientGone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	tw := NewTimeoutWriter(ctx, httptest.NewRecorder(), DefaultTimeoutWriterConfig())
	defer tw.Close()

	cancel()

	if _, err := tw.Write([]byte("x")); !errors.Is(err, ErrClientGone) {
		t.Errorf("Write error = %v, want ErrClientGone", err)
	}
}

func TestTimeoutWriterIdleTimeout(t *testing.T) {
	config := DefaultTimeoutWriterConfig()
	config.IdleTimeout = 20 * time.Millisecond
	tw := NewTimeoutWriter(context.Background(), httptest.NewRecorder(), config)
	defer tw.Close()

	deadline := time.Now().Add(2 * time.Second)
	for tw.ctx.Err() == nil {
		if time.Now().After(deadline) {
			t.Fatal("idle checker never fired")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if _, err := tw.Write([]byte("late")); !errors.Is(err, ErrWriteTimeout) {
		t.Errorf("Write error = %v, want ErrWriteTimeout", err)
	}
}

func TestTimeoutWriterUsesConnectionDeadlines(t *testing.T) {
	supported := make(chan bool, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tw := NewTimeoutWriter(r.Context(), w, DefaultTimeoutWriterConfig())
		defer tw.Close()
		supported <- tw.deadlines
		_, _ = tw.Write([]byte("ok"))
	}))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if string(body) != "ok" {
		t.Errorf("body = %q", body)
	}
	if !<-supported {
		t.Error("write deadlines not available on a real connection")
	}
}
