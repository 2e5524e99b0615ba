package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"mediastream/internal/filesystem"
	"mediastream/internal/library"
	"mediastream/internal/logging"
	"mediastream/internal/media"
	"mediastream/internal/mediaid"
	"mediastream/internal/metrics"
	"mediastream/internal/workers"

	"golang.org/x/sync/errgroup"
)

// MinQueryLength is the shortest query, in characters, that Search accepts.
const MinQueryLength = 2

var (
	// ErrLibraryNotFound is returned for an unknown library id.
	ErrLibraryNotFound = errors.New("library not found")
	// ErrNotFound is returned when an id or path does not resolve to a
	// media file. Malformed ids are reported as ErrNotFound.
	ErrNotFound = errors.New("media not found")
)

// Option configures a Service.
type Option func(*Service)

// WithCache enables snapshot caching of library scans.
func WithCache(c *Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithWorkers bounds the number of libraries scanned concurrently.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// Service orchestrates library scans.
type Service struct {
	libraries *library.Set
	scanner   *media.Scanner
	cache     *Cache
	workers   int
	retry     filesystem.RetryConfig

	// overridable in tests
	scan func(context.Context, library.Library) (*media.Result, error)
}

// New creates a Service over libs.
func New(libs *library.Set, scanner *media.Scanner, opts ...Option) *Service {
	s := &Service{
		libraries: libs,
		scanner:   scanner,
		workers:   workers.ForIO(workers.DefaultScanLimit),
		retry:     filesystem.DefaultRetryConfig(),
	}
	s.scan = scanner.Scan
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Libraries returns the configured library set.
func (s *Service) Libraries() *library.Set {
	return s.libraries
}

// ListLibraries returns the summaries of all configured libraries.
func (s *Service) ListLibraries() []library.Summary {
	return s.libraries.Summaries()
}

// ListEntries scans one library.
func (s *Service) ListEntries(ctx context.Context, libraryID string) ([]media.Entry, error) {
	lib, ok := s.libraries.Get(libraryID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrLibraryNotFound, libraryID)
	}
	return s.entries(ctx, lib)
}

// entries returns the entries of lib from the cache or a fresh scan.
func (s *Service) entries(ctx context.Context, lib library.Library) ([]media.Entry, error) {
	var gen uint64
	if s.cache != nil {
		if cached, ok := s.cache.Get(lib.ID); ok {
			return cached, nil
		}
		gen = s.cache.Generation(lib.ID)
	}

	res, err := s.scan(ctx, lib)
	if err != nil {
		return nil, err
	}

	// A partial scan is not cached; the next request retries the failed subtrees.
	if s.cache != nil && len(res.Failures) == 0 {
		s.cache.Put(lib.ID, gen, res.Entries)
	}
	return res.Entries, nil
}

// ResolveEntry decodes token and re-derives the entry it names from the
// filesystem.
func (s *Service) ResolveEntry(ctx context.Context, token string) (media.Entry, error) {
	id, err := mediaid.Decode(token)
	if err != nil {
		logging.Debug("Rejected media id %q: %v", token, err)
		return media.Entry{}, fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	lib, ok := s.libraries.Get(id.LibraryID)
	if !ok {
		return media.Entry{}, fmt.Errorf("%w: library %q", ErrNotFound, id.LibraryID)
	}

	entry, err := s.scanner.Entry(ctx, lib, id.RelativePath)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return media.Entry{}, ctxErr
		}
		return media.Entry{}, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return entry, nil
}

// ResolveFile maps a stream request onto an absolute path inside the
// library root. Existence is not checked.
func (s *Service) ResolveFile(libraryID, relPath string) (string, error) {
	lib, ok := s.libraries.Get(libraryID)
	if !ok {
		return "", fmt.Errorf("%w: library %q", ErrNotFound, libraryID)
	}

	for _, segment := range strings.Split(relPath, "/") {
		if strings.HasPrefix(segment, ".") {
			return "", fmt.Errorf("%w: %q", ErrNotFound, relPath)
		}
	}

	full, err := media.FilePath(lib, relPath)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return full, nil
}

// Search returns the ranked entries of every library whose title or group
// folder contains query, ignoring case. Queries shorter than MinQueryLength
// return no results.
func (s *Service) Search(ctx context.Context, query string) ([]media.Entry, error) {
	start := time.Now()
	results := []media.Entry{}
	if utf8.RuneCountInString(query) < MinQueryLength {
		return results, nil
	}
	needle := strings.ToLower(query)

	libs := s.libraries.All()
	perLibrary := make([][]media.Entry, len(libs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, lib := range libs {
		g.Go(func() error {
			entries, err := s.entries(gctx, lib)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				logging.Warn("Search skipped library %s: %v", lib.ID, err)
				return nil
			}
			perLibrary[i] = filterEntries(entries, needle)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, matches := range perLibrary {
		results = append(results, matches...)
	}
	rankEntries(results, needle)

	metrics.SearchQueriesTotal.Inc()
	metrics.SearchDuration.Observe(time.Since(start).Seconds())
	metrics.SearchResults.Observe(float64(len(results)))

	return results, nil
}

func filterEntries(entries []media.Entry, needle string) []media.Entry {
	var matches []media.Entry
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Title), needle) ||
			strings.Contains(strings.ToLower(e.GroupFolder), needle) {
			matches = append(matches, e)
		}
	}
	return matches
}

const (
	rankExact = iota
	rankPrefix
	rankContains
)

func rank(title, needle string) int {
	lower := strings.ToLower(title)
	switch {
	case lower == needle:
		return rankExact
	case strings.HasPrefix(lower, needle):
		return rankPrefix
	default:
		return rankContains
	}
}

// rankEntries orders by rank, then title ignoring case, then title, then id.
func rankEntries(entries []media.Entry, needle string) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		ra, rb := rank(a.Title, needle), rank(b.Title, needle)
		if ra != rb {
			return ra < rb
		}
		la, lb := strings.ToLower(a.Title), strings.ToLower(b.Title)
		if la != lb {
			return la < lb
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.ID < b.ID
	})
}

// LibraryHealth reports whether each library root is currently reachable.
func (s *Service) LibraryHealth() map[string]bool {
	health := make(map[string]bool, s.libraries.Len())
	for _, lib := range s.libraries.All() {
		info, err := filesystem.StatWithRetry(lib.RootPath, s.retry)
		health[lib.ID] = err == nil && info.IsDir()
	}
	return health
}
