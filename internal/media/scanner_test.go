package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediastream/internal/library"
	"mediastream/internal/mediaid"
	"mediastream/internal/mediatypes"
)

// writeTree creates files (with content equal to their path) below root.
func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		full := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte(f), 0o644); err != nil {
			t.Fatalf("write %s: %v", f, err)
		}
	}
}

func titles(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Title
	}
	return out
}

func TestScanFolderPerTitle(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"Inception 2010/a_movie.mkv",
		"Inception 2010/b_movie.mp4",
		"Notes/readme.txt",
		"Arrival/Arrival.mp4",
		"Arrival/poster.jpg",
		".hidden/secret.mp4",
		"loose.mp4",
	)
	if err := os.Mkdir(filepath.Join(root, "Empty"), 0o755); err != nil {
		t.Fatal(err)
	}

	lib := library.New("movies", root)
	res, err := NewScanner().Scan(context.Background(), lib)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if len(res.Failures) != 0 {
		t.Errorf("unexpected failures: %v", res.Failures)
	}

	got := titles(res.Entries)
	want := []string{"Arrival", "Inception 2010"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("titles = %v, want %v", got, want)
	}

	inception := res.Entries[1]
	if inception.Filename != "a_movie.mkv" {
		t.Errorf("first video not chosen: got %q", inception.Filename)
	}
	if inception.GroupFolder != "Inception 2010" {
		t.Errorf("GroupFolder = %q", inception.GroupFolder)
	}
	if inception.Kind != mediatypes.KindVideo {
		t.Errorf("Kind = %q", inception.Kind)
	}
	if inception.StreamPath != "/stream/movies/Inception%202010/a_movie.mkv" {
		t.Errorf("StreamPath = %q", inception.StreamPath)
	}
	if inception.Size != uint64(len("Inception 2010/a_movie.mkv")) {
		t.Errorf("Size = %d", inception.Size)
	}

	id, err := mediaid.Decode(inception.ID)
	if err != nil {
		t.Fatalf("Decode(%q): %v", inception.ID, err)
	}
	if id.LibraryID != "movies" || id.Folder() != "Inception 2010" || id.Filename() != "a_movie.mkv" {
		t.Errorf("decoded id = %+v", id)
	}
}

func TestScanFolderPerTitleSkipsNonVideo(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "OnlyText/notes.txt", "OnlyAudio/theme.mp3")

	res, err := NewScanner().Scan(context.Background(), library.New("movies", root))
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if len(res.Entries) != 0 {
		t.Errorf("entries = %v, want none", titles(res.Entries))
	}
}

func TestScanFolderPerTitleIsDeterministic(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "Heat/one.mp4", "Heat/two.mkv")

	s := NewScanner()
	lib := library.New("movies", root)
	first, err := s.Scan(context.Background(), lib)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Scan(context.Background(), lib)
	if err != nil {
		t.Fatal(err)
	}

	if len(first.Entries) != 1 || len(second.Entries) != 1 {
		t.Fatalf("entries = %d/%d, want 1/1", len(first.Entries), len(second.Entries))
	}
	if first.Entries[0].ID != second.Entries[0].ID {
		t.Errorf("ids differ across scans: %q vs %q", first.Entries[0].ID, second.Entries[0].ID)
	}
}

func TestScanFlatRecursive(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"Breaking_Bad-S01E01.mkv",
		"Show/Season 1/Show.S01E02.mp4",
		"Show/Season 1/cover.JPG",
		"Show/Season 1/info.nfo",
		".trash/old.mkv",
	)

	lib := library.New("tvshows", root)
	res, err := NewScanner().Scan(context.Background(), lib)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}

	byTitle := make(map[string]Entry)
	for _, e := range res.Entries {
		byTitle[e.Title] = e
	}
	if len(byTitle) != 3 {
		t.Fatalf("titles = %v, want 3 entries", titles(res.Entries))
	}

	top, ok := byTitle["Breaking Bad S01E01"]
	if !ok {
		t.Fatalf("missing top-level entry: %v", titles(res.Entries))
	}
	if top.GroupFolder != "" || top.StreamPath != "/stream/tvshows/Breaking_Bad-S01E01.mkv" {
		t.Errorf("top-level entry = %+v", top)
	}

	nested, ok := byTitle["Show S01E02"]
	if !ok {
		t.Fatalf("missing nested entry: %v", titles(res.Entries))
	}
	if nested.GroupFolder != "Show/Season 1" {
		t.Errorf("nested GroupFolder = %q", nested.GroupFolder)
	}
	if nested.StreamPath != "/stream/tvshows/Show/Season%201/Show.S01E02.mp4" {
		t.Errorf("nested StreamPath = %q", nested.StreamPath)
	}
	id, err := mediaid.Decode(nested.ID)
	if err != nil || id.RelativePath != "Show/Season 1/Show.S01E02.mp4" {
		t.Errorf("nested id decodes to %+v, %v", id, err)
	}

	if cover := byTitle["cover"]; cover.Kind != mediatypes.KindImage {
		t.Errorf("cover kind = %q, want image", cover.Kind)
	}
}

func TestScanPartialFailure(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"Album A/01.mp3",
		"Broken/02.mp3",
		"03.flac",
	)

	s := NewScanner()
	realReadDir := s.readDir
	broken := filepath.Join(root, "Broken")
	s.readDir = func(p string) ([]os.DirEntry, error) {
		if p == broken {
			return nil, os.ErrPermission
		}
		return realReadDir(p)
	}

	res, err := s.Scan(context.Background(), library.New("music", root))
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}

	if len(res.Entries) != 2 {
		t.Errorf("entries = %v, want 01 and 03", titles(res.Entries))
	}
	if len(res.Failures) != 1 {
		t.Fatalf("failures = %v, want 1", res.Failures)
	}
	if res.Failures[0].Path != broken || !errors.Is(res.Failures[0].Err, os.ErrPermission) {
		t.Errorf("failure = %+v", res.Failures[0])
	}
}

func TestScanMissingRoot(t *testing.T) {
	lib := library.New("music", filepath.Join(t.TempDir(), "missing"))

	res, err := NewScanner().Scan(context.Background(), lib)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if len(res.Entries) != 0 {
		t.Errorf("entries = %v", res.Entries)
	}
	if res.Entries == nil {
		t.Error("Entries should be empty, not nil")
	}
	if len(res.Failures) != 1 {
		t.Errorf("failures = %v, want 1", res.Failures)
	}
}

func TestScanCanceled(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.mp3")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewScanner().Scan(ctx, library.New("music", root))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Scan error = %v, want context.Canceled", err)
	}
}

func TestScanUnknownPolicy(t *testing.T) {
	lib := library.Library{ID: "odd", RootPath: t.TempDir(), Policy: library.TraversalPolicy(9)}
	if _, err := NewScanner().Scan(context.Background(), lib); !errors.Is(err, ErrUnknownPolicy) {
		t.Errorf("Scan error = %v, want ErrUnknownPolicy", err)
	}
}

func TestScannerEntry(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"Inception 2010/movie.mp4",
		"Inception 2010/extras/behind.mp4",
		"Inception 2010/notes.txt",
		"loose.mkv",
	)
	movies := library.New("movies", root)
	flat := library.New("tvshows", root)
	s := NewScanner()
	ctx := context.Background()

	e, err := s.Entry(ctx, movies, "Inception 2010/movie.mp4")
	if err != nil {
		t.Fatalf("Entry error: %v", err)
	}
	if e.Title != "Inception 2010" || e.GroupFolder != "Inception 2010" || e.Filename != "movie.mp4" {
		t.Errorf("movie entry = %+v", e)
	}
	if e.ID != mediaid.Encode("movies", "Inception 2010/movie.mp4") {
		t.Errorf("movie entry id = %q", e.ID)
	}

	e, err = s.Entry(ctx, flat, "Inception 2010/extras/behind.mp4")
	if err != nil {
		t.Fatalf("flat Entry error: %v", err)
	}
	if e.Title != "behind" || e.GroupFolder != "Inception 2010/extras" {
		t.Errorf("flat entry = %+v", e)
	}

	tests := []struct {
		name    string
		lib     library.Library
		relPath string
		want    error
	}{
		{"movie depth too deep", movies, "Inception 2010/extras/behind.mp4", ErrNotMedia},
		{"movie at root", movies, "loose.mkv", ErrNotMedia},
		{"unclassified", flat, "Inception 2010/notes.txt", ErrNotMedia},
		{"missing", flat, "gone.mp4", os.ErrNotExist},
		{"traversal", flat, "../etc/passwd.mp4", mediaid.ErrMalformed},
		{"directory", flat, "Inception 2010", ErrNotMedia},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Entry(ctx, tt.lib, tt.relPath)
			if !errors.Is(err, tt.want) {
				t.Errorf("Entry(%q) error = %v, want %v", tt.relPath, err, tt.want)
			}
		})
	}
}

func TestFilePath(t *testing.T) {
	root := t.TempDir()
	lib := library.New("music", root)

	got, err := FilePath(lib, "Artist/song.mp3")
	if err != nil {
		t.Fatalf("FilePath error: %v", err)
	}
	if want := filepath.Join(root, "Artist", "song.mp3"); got != want {
		t.Errorf("FilePath = %q, want %q", got, want)
	}

	for _, bad := range []string{"", "/abs.mp3", "a/../../x.mp3", "a//b.mp3"} {
		if _, err := FilePath(lib, bad); !errors.Is(err, mediaid.ErrMalformed) {
			t.Errorf("FilePath(%q) error = %v, want ErrMalformed", bad, err)
		}
	}
}
