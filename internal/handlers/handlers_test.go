package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediastream/internal/catalog"
	"mediastream/internal/library"
	"mediastream/internal/media"
	"mediastream/internal/mediaid"
	"mediastream/internal/startup"
	"mediastream/internal/streaming"

	"github.com/gorilla/mux"
)

// =============================================================================
// Fixtures
// =============================================================================

type fixture struct {
	handlers *Handlers
	router   *mux.Router
	movie    []byte
	roots    map[string]string
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	base := t.TempDir()
	roots := map[string]string{
		"movies":  filepath.Join(base, "movies"),
		"tvshows": filepath.Join(base, "tvshows"),
	}

	movie := make([]byte, 1000)
	for i := range movie {
		movie[i] = byte(i % 251)
	}

	writeFile(t, filepath.Join(roots["movies"], "Inception 2010", "movie.mp4"), movie)
	writeFile(t, filepath.Join(roots["movies"], "Notes", "readme.txt"), []byte("not media"))
	writeFile(t, filepath.Join(roots["tvshows"], "Season 1", "Show.S01E01.mkv"), []byte("episode"))
	writeFile(t, filepath.Join(roots["tvshows"], "Iron_Man-Special.mp4"), []byte("special"))

	set, err := library.NewSet([]library.Library{
		library.New("movies", roots["movies"]),
		library.New("tvshows", roots["tvshows"]),
	})
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}

	cat := catalog.New(set, media.NewScanner())
	h := New(cat, streaming.NewServer(streaming.DefaultTimeoutWriterConfig()))

	r := mux.NewRouter()
	r.HandleFunc("/api/libraries", h.ListLibraries).Methods(http.MethodGet)
	r.HandleFunc("/api/library/{type}", h.ListLibrary).Methods(http.MethodGet)
	r.HandleFunc("/api/media/{id}", h.GetMedia).Methods(http.MethodGet)
	r.HandleFunc("/api/search", h.Search).Methods(http.MethodGet)
	r.HandleFunc("/api/debug/scan", h.DebugScan).Methods(http.MethodGet)
	r.HandleFunc("/stream/{type}/{path:.+}", h.Stream).Methods(http.MethodGet, http.MethodHead)

	return &fixture{handlers: h, router: r, movie: movie, roots: roots}
}

func (f *fixture) do(t *testing.T, method, target string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, http.NoBody)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeEntries(t *testing.T, w *httptest.ResponseRecorder) []media.Entry {
	t.Helper()
	var entries []media.Entry
	if err := json.NewDecoder(w.Body).Decode(&entries); err != nil {
		t.Fatalf("Failed to decode entries: %v", err)
	}
	return entries
}

// =============================================================================
// Catalog endpoints
// =============================================================================

func TestListLibraries(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/libraries", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var got []library.Summary
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("Expected 2 libraries, got %d", len(got))
	}
	if got[0].ID != "movies" || got[0].Name != "Movies" || got[0].Type != "movies" {
		t.Errorf("Unexpected first library: %+v", got[0])
	}
	if got[1].Path != f.roots["tvshows"] {
		t.Errorf("Expected path %q, got %q", f.roots["tvshows"], got[1].Path)
	}
}

func TestListLibrary(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/library/movies", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	entries := decodeEntries(t, w)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 movie, got %d", len(entries))
	}

	e := entries[0]
	if e.Title != "Inception 2010" {
		t.Errorf("Expected title %q, got %q", "Inception 2010", e.Title)
	}
	if e.StreamPath != "/stream/movies/Inception%202010/movie.mp4" {
		t.Errorf("Unexpected stream path %q", e.StreamPath)
	}
	if e.Size != uint64(len(f.movie)) {
		t.Errorf("Expected size %d, got %d", len(f.movie), e.Size)
	}
}

func TestListLibraryUnknown(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/library/podcasts", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected JSON error body, got Content-Type %q", ct)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode error: %v", err)
	}
	if body["error"] == "" {
		t.Error("Expected error message in body")
	}
}

func TestGetMedia(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	tests := []struct {
		name       string
		id         string
		wantStatus int
		wantTitle  string
	}{
		{"movie", mediaid.Encode("movies", "Inception 2010/movie.mp4"), http.StatusOK, "Inception 2010"},
		{"nested episode", mediaid.Encode("tvshows", "Season 1/Show.S01E01.mkv"), http.StatusOK, "Show S01E01"},
		{"malformed id", "!!!not-base64", http.StatusNotFound, ""},
		{"missing file", mediaid.Encode("movies", "Gone/movie.mp4"), http.StatusNotFound, ""},
		{"not media", mediaid.Encode("movies", "Notes/readme.txt"), http.StatusNotFound, ""},
		{"unknown library", mediaid.Encode("podcasts", "a.mp3"), http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, http.MethodGet, "/api/media/"+tt.id, nil)
			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var e media.Entry
			if err := json.NewDecoder(w.Body).Decode(&e); err != nil {
				t.Fatalf("Failed to decode entry: %v", err)
			}
			if e.Title != tt.wantTitle {
				t.Errorf("Expected title %q, got %q", tt.wantTitle, e.Title)
			}
			if e.ID != tt.id {
				t.Errorf("Expected id %q, got %q", tt.id, e.ID)
			}
		})
	}
}

func TestSearch(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	tests := []struct {
		name   string
		query  string
		titles []string
	}{
		{"too short", "i", []string{}},
		{"empty", "", []string{}},
		{"movie by title", "incep", []string{"Inception 2010"}},
		{"separators become spaces", "iron man", []string{"Iron Man Special"}},
		{"group folder match", "season", []string{"Show S01E01"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, http.MethodGet, "/api/search?q="+strings.ReplaceAll(tt.query, " ", "+"), nil)
			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}

			entries := decodeEntries(t, w)
			if entries == nil {
				t.Fatal("Expected a JSON array, got null")
			}
			if len(entries) != len(tt.titles) {
				t.Fatalf("Expected %d results, got %d", len(tt.titles), len(entries))
			}
			for i, title := range tt.titles {
				if entries[i].Title != title {
					t.Errorf("Result %d: expected %q, got %q", i, title, entries[i].Title)
				}
			}
		})
	}
}

func TestDebugScan(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/debug/scan", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var report []catalog.LibraryScan
	if err := json.NewDecoder(w.Body).Decode(&report); err != nil {
		t.Fatalf("Failed to decode report: %v", err)
	}
	if len(report) != 2 {
		t.Fatalf("Expected 2 libraries, got %d", len(report))
	}
	if report[0].Type != "movies" || report[0].ItemCount != 1 || len(report[0].Entries) != 2 {
		t.Errorf("Unexpected movies report: %+v", report[0])
	}
	if report[1].ItemCount != 2 {
		t.Errorf("Expected 2 tvshows items, got %d", report[1].ItemCount)
	}
}

// =============================================================================
// Stream endpoint
// =============================================================================

func TestStream(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	target := "/stream/movies/Inception%202010/movie.mp4"

	tests := []struct {
		name          string
		rangeHeader   string
		wantStatus    int
		wantLength    string
		wantRange     string
		wantBodyStart int
		wantBodyEnd   int
	}{
		{"full body", "", http.StatusOK, "1000", "", 0, 1000},
		{"first hundred bytes", "bytes=0-99", http.StatusPartialContent, "100", "bytes 0-99/1000", 0, 100},
		{"open ended", "bytes=500-", http.StatusPartialContent, "500", "bytes 500-999/1000", 500, 1000},
		{"end clamped", "bytes=990-5000", http.StatusPartialContent, "10", "bytes 990-999/1000", 990, 1000},
		{"start past end", "bytes=1000-", http.StatusRequestedRangeNotSatisfiable, "", "bytes */1000", 0, 0},
		{"start after end", "bytes=50-10", http.StatusRequestedRangeNotSatisfiable, "", "bytes */1000", 0, 0},
		{"malformed", "items=0-1", http.StatusRequestedRangeNotSatisfiable, "", "bytes */1000", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.rangeHeader != "" {
				headers["Range"] = tt.rangeHeader
			}

			w := f.do(t, http.MethodGet, target, headers)
			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}

			if got := w.Header().Get("Content-Disposition"); got != "inline" {
				t.Errorf("Expected Content-Disposition inline, got %q", got)
			}
			if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
				t.Errorf("Expected nosniff, got %q", got)
			}
			if got := w.Header().Get("Content-Range"); got != tt.wantRange {
				t.Errorf("Expected Content-Range %q, got %q", tt.wantRange, got)
			}

			if tt.wantStatus == http.StatusRequestedRangeNotSatisfiable {
				return
			}

			if got := w.Header().Get("Content-Length"); got != tt.wantLength {
				t.Errorf("Expected Content-Length %s, got %s", tt.wantLength, got)
			}
			if got := w.Header().Get("Content-Type"); got != "video/mp4" {
				t.Errorf("Expected Content-Type video/mp4, got %q", got)
			}
			if got := w.Header().Get("Accept-Ranges"); got != "bytes" {
				t.Errorf("Expected Accept-Ranges bytes, got %q", got)
			}
			if !bytes.Equal(w.Body.Bytes(), f.movie[tt.wantBodyStart:tt.wantBodyEnd]) {
				t.Errorf("Body mismatch: got %d bytes", w.Body.Len())
			}
		})
	}
}

func TestStreamFlatFile(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/stream/tvshows/Season%201/Show.S01E01.mkv", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "episode" {
		t.Errorf("Expected episode body, got %q", w.Body.String())
	}
	if got := w.Header().Get("Content-Type"); got != "video/x-matroska" {
		t.Errorf("Expected Content-Type video/x-matroska, got %q", got)
	}
}

func TestStreamHead(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	w := f.do(t, http.MethodHead, "/stream/movies/Inception%202010/movie.mp4", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("Expected empty body for HEAD, got %d bytes", w.Body.Len())
	}
	if got := w.Header().Get("Content-Length"); got != "1000" {
		t.Errorf("Expected Content-Length 1000, got %s", got)
	}
}

func TestStreamNotFound(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	tests := []struct {
		name string
		vars map[string]string
	}{
		{"unknown library", map[string]string{"type": "podcasts", "path": "a.mp3"}},
		{"missing file", map[string]string{"type": "movies", "path": "Gone/movie.mp4"}},
		{"parent escape", map[string]string{"type": "movies", "path": "../tvshows/Iron_Man-Special.mp4"}},
		{"hidden file", map[string]string{"type": "movies", "path": ".secret/movie.mp4"}},
		{"directory", map[string]string{"type": "movies", "path": "Inception 2010"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/stream/x", http.NoBody)
			req = mux.SetURLVars(req, tt.vars)
			w := httptest.NewRecorder()

			f.handlers.Stream(w, req)

			if w.Code != http.StatusNotFound {
				t.Fatalf("Expected status 404, got %d", w.Code)
			}
			if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
				t.Errorf("Expected plain text 404, got Content-Type %q", ct)
			}
			if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
				t.Errorf("Expected nosniff on 404, got %q", got)
			}
		})
	}
}

// =============================================================================
// Health and version
// =============================================================================

func TestLibraryStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		health     map[string]bool
		wantStatus string
		wantReady  bool
	}{
		{"no libraries", map[string]bool{}, statusHealthy, true},
		{"all up", map[string]bool{"movies": true, "music": true}, statusHealthy, true},
		{"some down", map[string]bool{"movies": true, "music": false}, statusDegraded, true},
		{"all down", map[string]bool{"movies": false}, statusUnavailable, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, ready := libraryStatus(tt.health)
			if status != tt.wantStatus || ready != tt.wantReady {
				t.Errorf("libraryStatus() = (%q, %v), want (%q, %v)", status, ready, tt.wantStatus, tt.wantReady)
			}
		})
	}
}

func TestHealthCheck(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	w := httptest.NewRecorder()
	f.handlers.HealthCheck(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Status != statusHealthy || !resp.Ready {
		t.Errorf("Expected healthy and ready, got %q ready=%v", resp.Status, resp.Ready)
	}
	if !resp.Libraries["movies"] || !resp.Libraries["tvshows"] {
		t.Errorf("Expected both libraries reachable, got %v", resp.Libraries)
	}
	if resp.Version != startup.Version {
		t.Errorf("Expected version %q, got %q", startup.Version, resp.Version)
	}
}

func TestReadinessCheckUnavailable(t *testing.T) {
	t.Parallel()

	set, err := library.NewSet([]library.Library{
		library.New("movies", filepath.Join(t.TempDir(), "missing")),
	})
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}
	h := New(catalog.New(set, media.NewScanner()), streaming.NewServer(streaming.DefaultTimeoutWriterConfig()))

	req := httptest.NewRequest(http.MethodGet, "/readyz", http.NoBody)
	w := httptest.NewRecorder()
	h.ReadinessCheck(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.HealthCheck(w, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected health status 503, got %d", w.Code)
	}
}

func TestLivenessCheck(t *testing.T) {
	t.Parallel()

	h := &Handlers{}

	for _, method := range []string{http.MethodGet, http.MethodHead} {
		req := httptest.NewRequest(method, "/livez", http.NoBody)
		w := httptest.NewRecorder()
		h.LivenessCheck(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("%s: expected status 200, got %d", method, w.Code)
		}
		if method == http.MethodHead && w.Body.Len() != 0 {
			t.Errorf("Expected no body for HEAD, got %q", w.Body.String())
		}
	}
}

func TestGetVersion(t *testing.T) {
	t.Parallel()

	h := &Handlers{}

	req := httptest.NewRequest(http.MethodGet, "/version", http.NoBody)
	w := httptest.NewRecorder()
	h.GetVersion(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %q", ct)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "no-cache" {
		t.Errorf("Expected Cache-Control no-cache, got %q", cc)
	}

	var info startup.BuildInfo
	if err := json.NewDecoder(w.Body).Decode(&info); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if info.Version != startup.Version {
		t.Errorf("Expected version %q, got %q", startup.Version, info.Version)
	}
}

// =============================================================================
// JSON helpers
// =============================================================================

func TestWriteJSONError(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	writeJSONError(w, "Library not found", http.StatusNotFound)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"error":"Library not found"}` {
		t.Errorf("Unexpected body %s", got)
	}
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    interface{}
		expected string
	}{
		{"Simple map", map[string]string{"status": "ok"}, `{"status":"ok"}`},
		{"Empty slice", []media.Entry{}, `[]`},
		{"Null", nil, `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeJSON(w, tt.input)
			if got := strings.TrimSpace(w.Body.String()); got != tt.expected {
				t.Errorf("writeJSON() = %s, want %s", got, tt.expected)
			}
		})
	}
}
