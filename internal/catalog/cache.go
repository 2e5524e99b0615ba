package catalog

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"mediastream/internal/filesystem"
	"mediastream/internal/library"
	"mediastream/internal/logging"
	"mediastream/internal/media"
	"mediastream/internal/metrics"

	"github.com/fsnotify/fsnotify"
)

// Cache holds per-library scan snapshots. A zero TTL keeps snapshots until
// the watcher invalidates them.
type Cache struct {
	ttl time.Duration
	now func() time.Time

	mu        sync.RWMutex
	snapshots map[string]snapshot
	// generations counts invalidations per library; a scan started under an
	// older generation is not stored.
	generations map[string]uint64

	resolver *filesystem.VolumeResolver
	roots    map[string]string
}

type snapshot struct {
	entries []media.Entry
	taken   time.Time
}

// NewCache creates an empty cache.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:         ttl,
		now:         time.Now,
		snapshots:   make(map[string]snapshot),
		generations: make(map[string]uint64),
	}
}

// Get returns a copy of the snapshot for libraryID if one is present and
// fresh.
func (c *Cache) Get(libraryID string) ([]media.Entry, bool) {
	c.mu.RLock()
	snap, ok := c.snapshots[libraryID]
	c.mu.RUnlock()

	if ok && c.ttl > 0 && c.now().Sub(snap.taken) > c.ttl {
		c.invalidate(libraryID, "ttl")
		ok = false
	}

	if !ok {
		metrics.CatalogCacheRequests.WithLabelValues(libraryID, "miss").Inc()
		return nil, false
	}

	metrics.CatalogCacheRequests.WithLabelValues(libraryID, "hit").Inc()
	out := make([]media.Entry, len(snap.entries))
	copy(out, snap.entries)
	return out, true
}

// Generation returns the invalidation count for libraryID. Record it before
// scanning and pass it to Put.
func (c *Cache) Generation(libraryID string) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generations[libraryID]
}

// Put stores a snapshot of entries for libraryID taken at generation gen.
// It reports false and stores nothing if libraryID was invalidated since gen
// was read.
func (c *Cache) Put(libraryID string, gen uint64, entries []media.Entry) bool {
	stored := make([]media.Entry, len(entries))
	copy(stored, entries)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[libraryID] != gen {
		logging.Debug("Discarding catalog snapshot for %s: invalidated during scan", libraryID)
		return false
	}
	c.snapshots[libraryID] = snapshot{entries: stored, taken: c.now()}
	return true
}

// Invalidate drops the snapshot for libraryID.
func (c *Cache) Invalidate(libraryID string) {
	c.invalidate(libraryID, "manual")
}

func (c *Cache) invalidate(libraryID, reason string) {
	c.mu.Lock()
	_, existed := c.snapshots[libraryID]
	delete(c.snapshots, libraryID)
	c.generations[libraryID]++
	c.mu.Unlock()

	if existed {
		metrics.CatalogCacheInvalidations.WithLabelValues(libraryID, reason).Inc()
		logging.Debug("Catalog cache invalidated for %s (%s)", libraryID, reason)
	}
}

// Watch invalidates snapshots when files below a library root change. It
// returns once the watcher is running; events are processed until ctx is done.
func (c *Cache) Watch(ctx context.Context, libs []library.Library) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		metrics.WatcherErrors.Inc()
		return err
	}

	roots := make(map[string]string, len(libs))
	for _, lib := range libs {
		roots[lib.ID] = lib.RootPath
	}
	c.mu.Lock()
	c.resolver = filesystem.NewVolumeResolver(roots)
	c.roots = roots
	c.mu.Unlock()

	watchCount := 0
	for _, lib := range libs {
		watchCount += addDirectoriesToWatcher(watcher, lib.RootPath)
	}
	metrics.WatchedDirectories.Set(float64(watchCount))
	logging.Info("Catalog cache watching %d directories across %d libraries", watchCount, len(libs))

	go func() {
		defer func() {
			if err := watcher.Close(); err != nil {
				logging.Error("failed to close catalog watcher: %v", err)
			}
		}()
		c.processWatcherEvents(ctx, watcher)
	}()

	return nil
}

func addDirectoriesToWatcher(watcher *fsnotify.Watcher, root string) int {
	watchCount := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logging.Warn("skipping %s while adding watches: %v", path, err)
			metrics.WatcherErrors.Inc()
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return fs.SkipDir
		}
		if addErr := watcher.Add(path); addErr != nil {
			logging.Warn("failed to add path to watcher %s: %v", path, addErr)
			metrics.WatcherErrors.Inc()
			return nil
		}
		watchCount++
		return nil
	})
	if err != nil {
		logging.Error("failed to walk %s for watcher: %v", root, err)
		metrics.WatcherErrors.Inc()
	}
	return watchCount
}

func (c *Cache) processWatcherEvents(ctx context.Context, watcher *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			c.handleWatcherEvent(watcher, event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logging.Error("Catalog watcher error: %v", err)
			metrics.WatcherErrors.Inc()
		}
	}
}

func (c *Cache) handleWatcherEvent(watcher *fsnotify.Watcher, event fsnotify.Event) {
	metrics.WatcherEventsTotal.WithLabelValues(eventType(event.Op)).Inc()

	c.mu.RLock()
	resolver := c.resolver
	roots := c.roots
	c.mu.RUnlock()

	libraryID := resolver.Resolve(event.Name)
	if libraryID == filesystem.UnknownVolume {
		return
	}
	if hiddenBelow(roots[libraryID], event.Name) {
		return
	}

	c.invalidate(libraryID, "watch")

	if event.Op&fsnotify.Create != 0 {
		info, err := os.Stat(event.Name)
		if err == nil && info.IsDir() {
			added := addDirectoriesToWatcher(watcher, event.Name)
			metrics.WatchedDirectories.Add(float64(added))
		}
	}
}

// hiddenBelow reports whether any segment of path below root starts with a
// dot. Segments of root itself are not considered.
func hiddenBelow(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return false
	}
	for _, segment := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(segment, ".") && segment != ".." {
			return true
		}
	}
	return false
}

func eventType(op fsnotify.Op) string {
	switch {
	case op&fsnotify.Create != 0:
		return "create"
	case op&fsnotify.Write != 0:
		return "write"
	case op&fsnotify.Remove != 0:
		return "remove"
	case op&fsnotify.Rename != 0:
		return "rename"
	case op&fsnotify.Chmod != 0:
		return "chmod"
	default:
		return "unknown"
	}
}
