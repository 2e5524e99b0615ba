package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"mediastream/internal/filesystem"
	"mediastream/internal/library"
	"mediastream/internal/logging"
	"mediastream/internal/mediaid"
	"mediastream/internal/mediatypes"
	"mediastream/internal/metrics"
)

var (
	// ErrNotMedia is returned when a path exists but would not be surfaced
	// by a scan of its library.
	ErrNotMedia = errors.New("not a media entry")
	// ErrUnknownPolicy is returned for a library whose policy has no traversal.
	ErrUnknownPolicy = errors.New("no traversal for policy")
)

// Failure records a directory that could not be read during a scan.
type Failure struct {
	Path string
	Err  error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Path, f.Err)
}

// Result is the outcome of scanning one library. Failures lists the subtrees
// that contributed no entries because they could not be read.
type Result struct {
	Library  library.Library
	Entries  []Entry
	Failures []Failure
}

// Scanner walks library roots and produces media entries.
type Scanner struct {
	retry filesystem.RetryConfig

	// overridable in tests
	readDir func(string) ([]os.DirEntry, error)
	stat    func(string) (os.FileInfo, error)
}

// NewScanner creates a Scanner that accesses the filesystem with the default
// retry configuration.
func NewScanner() *Scanner {
	s := &Scanner{retry: filesystem.DefaultRetryConfig()}
	s.readDir = func(p string) ([]os.DirEntry, error) {
		return filesystem.ReadDirWithRetry(p, s.retry)
	}
	s.stat = func(p string) (os.FileInfo, error) {
		return filesystem.StatWithRetry(p, s.retry)
	}
	return s
}

type traversal func(s *Scanner, ctx context.Context, lib library.Library, res *Result) error

var traversals = map[library.TraversalPolicy]traversal{
	library.FlatRecursive:     (*Scanner).scanFlat,
	library.OneFolderPerTitle: (*Scanner).scanFolderPerTitle,
}

// Scan enumerates lib from scratch. The returned error is non-nil only when
// ctx is done or the policy is unknown; unreadable directories are reported
// in Result.Failures.
func (s *Scanner) Scan(ctx context.Context, lib library.Library) (*Result, error) {
	start := time.Now()
	status := "success"
	defer func() {
		metrics.ScannerOperationsTotal.WithLabelValues("scan", status).Inc()
		metrics.ScannerOperationDuration.WithLabelValues("scan").Observe(time.Since(start).Seconds())
	}()

	walk, ok := traversals[lib.Policy]
	if !ok {
		status = "error"
		return nil, fmt.Errorf("%w: %v", ErrUnknownPolicy, lib.Policy)
	}

	res := &Result{Library: lib, Entries: []Entry{}}
	if err := walk(s, ctx, lib, res); err != nil {
		status = "canceled"
		return nil, err
	}

	if len(res.Failures) > 0 {
		status = "partial"
		metrics.ScannerFailuresTotal.WithLabelValues(lib.ID).Add(float64(len(res.Failures)))
	}
	metrics.ScannerItemsReturned.WithLabelValues(lib.ID).Observe(float64(len(res.Entries)))

	logging.Debug("Scanned library %s: %d entries, %d failures in %v",
		lib.ID, len(res.Entries), len(res.Failures), time.Since(start))

	return res, nil
}

func (s *Scanner) fail(res *Result, dir string, err error) {
	logging.Warn("Failed to read directory %s in library %s: %v", dir, res.Library.ID, err)
	res.Failures = append(res.Failures, Failure{Path: dir, Err: err})
}

// scanFolderPerTitle surfaces the first video in each immediate
// subdirectory of the root, in directory enumeration order.
func (s *Scanner) scanFolderPerTitle(ctx context.Context, lib library.Library, res *Result) error {
	folders, err := s.readDir(lib.RootPath)
	if err != nil {
		s.fail(res, lib.RootPath, err)
		return nil
	}

	for _, folder := range folders {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !folder.IsDir() || isHidden(folder.Name()) {
			continue
		}

		dir := filepath.Join(lib.RootPath, folder.Name())
		files, err := s.readDir(dir)
		if err != nil {
			s.fail(res, dir, err)
			continue
		}

		if entry, ok := s.firstVideo(lib, folder.Name(), dir, files); ok {
			res.Entries = append(res.Entries, entry)
		}
	}

	return nil
}

func (s *Scanner) firstVideo(lib library.Library, folderName, dir string, files []os.DirEntry) (Entry, bool) {
	for _, f := range files {
		if f.IsDir() || isHidden(f.Name()) || !mediatypes.IsKind(f.Name(), mediatypes.KindVideo) {
			continue
		}

		info, err := s.stat(filepath.Join(dir, f.Name()))
		if err != nil {
			logging.Debug("Skipping %s in %s: %v", f.Name(), dir, err)
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}

		relPath := folderName + "/" + f.Name()
		return newEntry(lib, relPath, folderName, mediatypes.KindVideo, info), true
	}
	return Entry{}, false
}

func (s *Scanner) scanFlat(ctx context.Context, lib library.Library, res *Result) error {
	return s.walkFlat(ctx, lib, res, lib.RootPath, "")
}

// walkFlat descends into real subdirectories only; symlinked files are
// followed, symlinked directories are not.
func (s *Scanner) walkFlat(ctx context.Context, lib library.Library, res *Result, dir, relDir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	children, err := s.readDir(dir)
	if err != nil {
		s.fail(res, dir, err)
		return nil
	}

	for _, child := range children {
		name := child.Name()
		if isHidden(name) {
			continue
		}
		relPath := path.Join(relDir, name)
		fullPath := filepath.Join(dir, name)

		if child.IsDir() {
			if err := s.walkFlat(ctx, lib, res, fullPath, relPath); err != nil {
				return err
			}
			continue
		}

		class, ok := mediatypes.Classify(name)
		if !ok {
			continue
		}

		info, err := s.stat(fullPath)
		if err != nil {
			logging.Debug("Skipping %s: %v", fullPath, err)
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}

		res.Entries = append(res.Entries, newEntry(lib, relPath, TitleFromFilename(name), class.Kind, info))
	}

	return nil
}

// FilePath joins a validated relative path onto the library root. The
// result never escapes the root lexically.
func FilePath(lib library.Library, relPath string) (string, error) {
	if err := mediaid.ValidateRelativePath(relPath); err != nil {
		return "", err
	}
	full := filepath.Join(lib.RootPath, filepath.FromSlash(relPath))

	rel, err := filepath.Rel(lib.RootPath, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q escapes library root", mediaid.ErrInvalidPath, relPath)
	}
	return full, nil
}

// Entry re-derives a single entry from live filesystem metadata. It returns
// ErrNotMedia when relPath exists but a scan of lib would not surface it.
func (s *Scanner) Entry(ctx context.Context, lib library.Library, relPath string) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}

	start := time.Now()
	status := "success"
	defer func() {
		metrics.ScannerOperationsTotal.WithLabelValues("entry", status).Inc()
		metrics.ScannerOperationDuration.WithLabelValues("entry").Observe(time.Since(start).Seconds())
	}()

	entry, err := s.entry(lib, relPath)
	if err != nil {
		status = "error"
	}
	return entry, err
}

func (s *Scanner) entry(lib library.Library, relPath string) (Entry, error) {
	full, err := FilePath(lib, relPath)
	if err != nil {
		return Entry{}, err
	}

	segments := strings.Split(relPath, "/")
	for _, segment := range segments {
		if isHidden(segment) {
			return Entry{}, fmt.Errorf("%w: hidden path %q", ErrNotMedia, relPath)
		}
	}

	class, ok := mediatypes.Classify(relPath)
	if !ok {
		return Entry{}, fmt.Errorf("%w: unclassified %q", ErrNotMedia, relPath)
	}

	title := TitleFromFilename(path.Base(relPath))
	switch lib.Policy {
	case library.OneFolderPerTitle:
		if len(segments) != 2 || class.Kind != mediatypes.KindVideo {
			return Entry{}, fmt.Errorf("%w: %q is not a title video", ErrNotMedia, relPath)
		}
		title = segments[0]
	case library.FlatRecursive:
	default:
		return Entry{}, fmt.Errorf("%w: %v", ErrUnknownPolicy, lib.Policy)
	}

	info, err := s.stat(full)
	if err != nil {
		return Entry{}, err
	}
	if !info.Mode().IsRegular() {
		return Entry{}, fmt.Errorf("%w: %q is not a regular file", ErrNotMedia, relPath)
	}

	return newEntry(lib, relPath, title, class.Kind, info), nil
}
