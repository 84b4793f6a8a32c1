package tasks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/time/rate"

	"github.com/mcolella14/mixtape/internal/manifest"
	"github.com/mcolella14/mixtape/internal/media"
	"github.com/mcolella14/mixtape/internal/services"
	"github.com/mcolella14/mixtape/internal/shared"
)

// OutcomeStatus is the terminal state of one track's pipeline run.
type OutcomeStatus int

const (
	StatusSkipped OutcomeStatus = iota
	StatusDownloaded
	StatusNotFound
	StatusFailed
)

func (s OutcomeStatus) String() string {
	switch s {
	case StatusSkipped:
		return "skipped"
	case StatusDownloaded:
		return "downloaded"
	case StatusNotFound:
		return "not_found"
	case StatusFailed:
		return "failed"
	default:
		return ""
	}
}

// DownloadOutcome records the terminal result for a single track.
// Every track of a processed playlist yields exactly one outcome.
type DownloadOutcome struct {
	Track  manifest.Track
	Status OutcomeStatus
	Path   string // existing or newly written file, empty otherwise
	Err    error  // cause for StatusFailed, nil otherwise
}

// BatchReport aggregates the outcomes of one playlist run.
// Outcomes are ordered to match the playlist's track order.
type BatchReport struct {
	Playlist   string
	OutputDir  string
	Outcomes   []DownloadOutcome
	Skipped    int
	Downloaded int
	NotFound   int
	Failed     int
}

// ManifestFailure records a manifest that could not be processed at all.
type ManifestFailure struct {
	Path string
	Err  error
}

// RunAllResult holds the reports of a full manifest-directory run.
type RunAllResult struct {
	Reports  []*BatchReport
	Failures []ManifestFailure
}

// TrackCacher persists resolved locators across runs.
// Implementations must tolerate duplicate puts.
type TrackCacher interface {
	Get(title, artists string) (string, bool, error)
	Put(title, artists, videoID string) error
}

// DownloaderOpts configures a Downloader.
type DownloaderOpts struct {
	Workers   int         // concurrent track workers (default 3)
	RateLimit float64     // search requests per second (default 5)
	Cache     TrackCacher // optional resolve cache
}

// Downloader orchestrates per-playlist track downloads over a bounded worker
// pool. Playlists run one at a time; tracks within a playlist run
// concurrently. A single track's failure never aborts its siblings.
type Downloader struct {
	resolver  services.Resolver
	fetcher   media.Fetcher
	cache     TrackCacher
	workers   int
	rateLimit float64
}

// NewDownloader creates a Downloader around the given resolver and fetcher.
func NewDownloader(resolver services.Resolver, fetcher media.Fetcher, opts DownloaderOpts) *Downloader {
	if opts.Workers <= 0 {
		opts.Workers = 3
	}
	if opts.Workers > 10 {
		opts.Workers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	return &Downloader{
		resolver:  resolver,
		fetcher:   fetcher,
		cache:     opts.Cache,
		workers:   opts.Workers,
		rateLimit: opts.RateLimit,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (d *Downloader) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

type downloadJob struct {
	index    int
	track    manifest.Track
	destBase string
}

type indexedOutcome struct {
	index   int
	outcome DownloadOutcome
}

// Run downloads one playlist's tracks into outputRoot/<sanitized name>/.
//
// Tracks whose target file already exists are recorded as skipped without
// touching the resolver or fetcher. Remaining tracks are fanned out across
// the worker pool; every track ends in exactly one outcome and the report is
// ordered to match the playlist.
func (d *Downloader) Run(ctx context.Context, progress chan<- ProgressUpdate, pl *manifest.Playlist, outputRoot string) (*BatchReport, error) {
	if d.resolver == nil || d.fetcher == nil {
		return nil, fmt.Errorf("%w: downloader not initialized", shared.ErrServiceUnavailable)
	}
	if pl == nil || pl.Name == "" {
		return nil, fmt.Errorf("%w: playlist has no name", shared.ErrManifestMalformed)
	}

	dir := filepath.Join(outputRoot, manifest.Sanitize(pl.Name))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: create playlist directory: %v", shared.ErrFilesystem, err)
	}

	total := len(pl.Tracks)
	report := &BatchReport{
		Playlist:  pl.Name,
		OutputDir: dir,
		Outcomes:  make([]DownloadOutcome, total),
	}

	d.sendProgress(progress, playlistStartUpdate(1, 1, pl.Name, total))

	jobs := make(chan downloadJob, total)
	results := make(chan indexedOutcome, total)
	pending := 0

	seen := make(map[string]struct{}, total)

	for i, track := range pl.Tracks {
		destBase := filepath.Join(dir, manifest.BaseFilename(track))
		finalPath := destBase + "." + d.fetcher.Ext()

		// Duplicate (title, artists) pairs map to the same file; only the
		// first occurrence is fetched.
		if _, dup := seen[finalPath]; dup {
			outcome := DownloadOutcome{Track: track, Status: StatusSkipped, Path: finalPath}
			report.Outcomes[i] = outcome
			d.sendProgress(progress, trackSkippedUpdate(i+1, total, outcome))
			continue
		}
		seen[finalPath] = struct{}{}

		if _, err := os.Stat(finalPath); err == nil {
			outcome := DownloadOutcome{Track: track, Status: StatusSkipped, Path: finalPath}
			report.Outcomes[i] = outcome
			d.sendProgress(progress, trackSkippedUpdate(i+1, total, outcome))
			continue
		}

		jobs <- downloadJob{index: i, track: track, destBase: destBase}
		pending++
	}
	close(jobs)

	limiter := rate.NewLimiter(rate.Limit(d.rateLimit), 1)

	var wg sync.WaitGroup
	for w := 0; w < d.workers; w++ {
		wg.Add(1)
		go d.downloadWorker(ctx, &wg, limiter, jobs, results, progress, total)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		report.Outcomes[res.index] = res.outcome
		d.sendProgress(progress, trackOutcomeUpdate(res.index+1, total, res.outcome))
	}

	for _, outcome := range report.Outcomes {
		switch outcome.Status {
		case StatusSkipped:
			report.Skipped++
		case StatusDownloaded:
			report.Downloaded++
		case StatusNotFound:
			report.NotFound++
		case StatusFailed:
			report.Failed++
		}
	}

	d.sendProgress(progress, playlistDoneUpdate(report))
	return report, nil
}

// downloadWorker consumes jobs until the channel is drained or the context is
// cancelled. Cancellation converts the remaining jobs to failed outcomes so
// every submitted track still ends in exactly one outcome.
func (d *Downloader) downloadWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan downloadJob,
	results chan<- indexedOutcome,
	progress chan<- ProgressUpdate,
	total int,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			results <- indexedOutcome{
				index:   job.index,
				outcome: DownloadOutcome{Track: job.track, Status: StatusFailed, Err: ctx.Err()},
			}
			continue
		default:
		}

		d.sendProgress(progress, trackResolvingUpdate(job.index+1, total, job.track.Title, job.track.Artists))
		results <- indexedOutcome{
			index:   job.index,
			outcome: d.downloadTrack(ctx, limiter, job),
		}
	}
}

// downloadTrack runs the resolve → fetch pipeline for one track.
// Any error is captured into the outcome; nothing propagates to siblings.
func (d *Downloader) downloadTrack(ctx context.Context, limiter *rate.Limiter, job downloadJob) DownloadOutcome {
	outcome := DownloadOutcome{Track: job.track}

	locator, err := d.resolve(ctx, limiter, job.track)
	if err != nil {
		if isNotFound(err) {
			outcome.Status = StatusNotFound
		} else {
			outcome.Status = StatusFailed
			outcome.Err = err
		}
		return outcome
	}

	path, err := d.fetcher.Fetch(ctx, *locator, job.destBase)
	if err != nil {
		outcome.Status = StatusFailed
		outcome.Err = err
		return outcome
	}

	outcome.Status = StatusDownloaded
	outcome.Path = path
	return outcome
}

// resolve consults the cache before hitting the search provider. Cache misses
// go through the rate limiter; successful resolutions are written back.
func (d *Downloader) resolve(ctx context.Context, limiter *rate.Limiter, track manifest.Track) (*services.Locator, error) {
	if d.cache != nil {
		if videoID, ok, err := d.cache.Get(track.Title, track.Artists); err == nil && ok {
			return &services.Locator{
				VideoID: videoID,
				URL:     fmt.Sprintf("https://music.youtube.com/watch?v=%s", videoID),
			}, nil
		}
	}

	if err := limiter.Wait(ctx); err != nil {
		return nil, err
	}

	locator, err := d.resolver.Resolve(ctx, track)
	if err != nil {
		return nil, err
	}

	if d.cache != nil && locator.VideoID != "" {
		// Best effort; a cache write failure must not fail the track.
		_ = d.cache.Put(track.Title, track.Artists, locator.VideoID)
	}

	return locator, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, shared.ErrTrackNotFound)
}

// RunAll processes every .txt manifest in manifestDir in name order.
//
// Manifest-level failures (unreadable file, missing playlist name) are
// recorded and reported; the remaining manifests still run.
func (d *Downloader) RunAll(ctx context.Context, progress chan<- ProgressUpdate, manifestDir, outputRoot string) (*RunAllResult, error) {
	paths, err := filepath.Glob(filepath.Join(manifestDir, "*.txt"))
	if err != nil {
		return nil, fmt.Errorf("%w: list manifests: %v", shared.ErrFilesystem, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no manifests found in %s", shared.ErrManifestUnreadable, manifestDir)
	}
	sort.Strings(paths)

	result := &RunAllResult{}

	for _, path := range paths {
		pl, err := manifest.ParseFile(path)
		if err == nil && pl.Name == "" {
			err = fmt.Errorf("%w: no playlist name in %s", shared.ErrManifestMalformed, path)
		}
		if err != nil {
			result.Failures = append(result.Failures, ManifestFailure{Path: path, Err: err})
			d.sendProgress(progress, manifestFailedUpdate(path, err))
			continue
		}

		report, err := d.Run(ctx, progress, pl, outputRoot)
		if err != nil {
			result.Failures = append(result.Failures, ManifestFailure{Path: path, Err: err})
			d.sendProgress(progress, manifestFailedUpdate(path, err))
			continue
		}
		result.Reports = append(result.Reports, report)

		if ctx.Err() != nil {
			break
		}
	}

	return result, nil
}
