package catalog

import (
	"context"

	"mediastream/internal/filesystem"
	"mediastream/internal/media"

	"golang.org/x/sync/errgroup"
)

// LibraryScan is the diagnostic view of one library returned by DebugScan.
type LibraryScan struct {
	Type      string        `json:"type"`
	Path      string        `json:"path"`
	Entries   []string      `json:"entries"`
	ItemCount int           `json:"itemCount"`
	Items     []media.Entry `json:"items"`
	Failures  []string      `json:"failures,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// DebugScan scans every library, bypassing the cache, and reports the
// top-level directory names next to the entries they produced.
func (s *Service) DebugScan(ctx context.Context) ([]LibraryScan, error) {
	libs := s.libraries.All()
	out := make([]LibraryScan, len(libs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, lib := range libs {
		g.Go(func() error {
			report := LibraryScan{
				Type:    lib.ID,
				Path:    lib.RootPath,
				Entries: []string{},
				Items:   []media.Entry{},
			}

			dirEntries, err := filesystem.ReadDirWithRetry(lib.RootPath, s.retry)
			if err != nil {
				report.Error = err.Error()
				out[i] = report
				return nil
			}
			for _, de := range dirEntries {
				report.Entries = append(report.Entries, de.Name())
			}

			res, err := s.scan(gctx, lib)
			if err != nil {
				return err
			}
			report.Items = res.Entries
			report.ItemCount = len(res.Entries)
			for _, f := range res.Failures {
				report.Failures = append(report.Failures, f.Error())
			}

			out[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
