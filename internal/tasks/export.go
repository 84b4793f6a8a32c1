package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mcolella14/mixtape/internal/manifest"
	"github.com/mcolella14/mixtape/internal/services"
	"github.com/mcolella14/mixtape/internal/shared"
)

// ExportFailure records a playlist that could not be exported.
type ExportFailure struct {
	Playlist string
	Err      error
}

// ExportResult aggregates a full catalog export.
type ExportResult struct {
	Total     int
	Succeeded int
	Failed    int
	OutputDir string
	Files     []string
	Failures  []ExportFailure
}

// ExportEngineOpts configures an ExportEngine.
type ExportEngineOpts struct {
	Workers int // concurrent playlist exports (default 3)
}

// ExportEngine writes one manifest file per source playlist.
type ExportEngine struct {
	exporter services.Exporter
	workers  int
}

// NewExportEngine creates an ExportEngine around the given catalog exporter.
func NewExportEngine(exporter services.Exporter, opts ExportEngineOpts) *ExportEngine {
	if opts.Workers <= 0 {
		opts.Workers = 3
	}
	return &ExportEngine{exporter: exporter, workers: opts.Workers}
}

func (e *ExportEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// ExportAll lists the user's playlists and writes a manifest per playlist
// into dir. A single playlist's failure is recorded and does not abort the
// remaining exports.
func (e *ExportEngine) ExportAll(ctx context.Context, progress chan<- ProgressUpdate, userID, dir string) (*ExportResult, error) {
	if e.exporter == nil {
		return nil, fmt.Errorf("%w: exporter not initialized", shared.ErrServiceUnavailable)
	}

	refs, err := e.exporter.GetPlaylists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list playlists: %v", shared.ErrAPIRequest, err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: create manifest directory: %v", shared.ErrFilesystem, err)
	}

	result := &ExportResult{Total: len(refs), OutputDir: dir}
	e.sendProgress(progress, fetchPlaylistsUpdate(len(refs)))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, ref := range refs {
		g.Go(func() error {
			e.sendProgress(progress, exportingPlaylistUpdate(i+1, len(refs), ref.Name))

			path, err := e.exportOne(gctx, ref, dir)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				result.Failures = append(result.Failures, ExportFailure{Playlist: ref.Name, Err: err})
				e.sendProgress(progress, exportFailedUpdate(i+1, len(refs), ref.Name, err))
				return nil // keep exporting the other playlists
			}
			result.Succeeded++
			result.Files = append(result.Files, path)
			e.sendProgress(progress, exportCompletedUpdate(i+1, len(refs), ref.Name, path))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}

	return result, nil
}

// exportOne fetches a playlist's tracks and writes its manifest.
func (e *ExportEngine) exportOne(ctx context.Context, ref services.PlaylistRef, dir string) (string, error) {
	pl, err := e.exporter.ExportPlaylist(ctx, ref.ID)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, manifest.Sanitize(pl.Name)+".txt")
	if err := manifest.WriteFile(pl, path); err != nil {
		return "", err
	}

	return path, nil
}
