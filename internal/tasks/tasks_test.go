package tasks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mcolella14/mixtape/internal/manifest"
	"github.com/mcolella14/mixtape/internal/services"
	"github.com/mcolella14/mixtape/internal/shared"
	mixtest "github.com/mcolella14/mixtape/internal/testing"
)

// stubFetcher writes a marker file and tracks concurrency.
type stubFetcher struct {
	mu       sync.Mutex
	calls    int
	inFlight int
	maxSeen  int
	delay    time.Duration
	failSubs []string // destBase substrings that should fail
}

func (f *stubFetcher) Ext() string { return "mp3" }

func (f *stubFetcher) Fetch(ctx context.Context, loc services.Locator, destBase string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.inFlight++
	if f.inFlight > f.maxSeen {
		f.maxSeen = f.inFlight
	}
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()

	for _, sub := range f.failSubs {
		if strings.Contains(destBase, sub) {
			return "", fmt.Errorf("%w: simulated fetch failure", shared.ErrFetchFailed)
		}
	}

	path := destBase + "." + f.Ext()
	if err := os.WriteFile(path, []byte("audio"), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// mapCache is an in-memory TrackCacher.
type mapCache struct {
	mu      sync.Mutex
	entries map[string]string
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string]string{}}
}

func (c *mapCache) Get(title, artists string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.entries[shared.NormalizeTrackKey(title, artists)]
	return id, ok, nil
}

func (c *mapCache) Put(title, artists, videoID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[shared.NormalizeTrackKey(title, artists)] = videoID
	return nil
}

func testPlaylist(titles ...string) *manifest.Playlist {
	pl := &manifest.Playlist{Name: "Test Mix", Owner: "someone"}
	for _, title := range titles {
		pl.Tracks = append(pl.Tracks, manifest.Track{Title: title, Artists: "Some Artist", Album: "Some Album"})
	}
	return pl
}

func countingResolver(calls *int, mu *sync.Mutex) *mixtest.MockResolver {
	return &mixtest.MockResolver{
		ResolveFunc: func(ctx context.Context, track manifest.Track) (*services.Locator, error) {
			mu.Lock()
			*calls++
			mu.Unlock()
			return &services.Locator{VideoID: "vid-" + track.Title, URL: "https://music.youtube.com/watch?v=vid"}, nil
		},
	}
}

func TestDownloaderRun(t *testing.T) {
	t.Run("downloads every track and preserves order", func(t *testing.T) {
		root := t.TempDir()
		fetcher := &stubFetcher{}
		dl := NewDownloader(&mixtest.MockResolver{}, fetcher, DownloaderOpts{Workers: 2})

		pl := testPlaylist("Alpha", "Beta", "Gamma")
		report, err := dl.Run(context.Background(), nil, pl, root)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		if report.Downloaded != 3 || report.Skipped != 0 || report.Failed != 0 || report.NotFound != 0 {
			t.Errorf("counts = %+v", report)
		}
		for i, title := range []string{"Alpha", "Beta", "Gamma"} {
			if report.Outcomes[i].Track.Title != title {
				t.Errorf("Outcomes[%d].Track.Title = %q, want %q", i, report.Outcomes[i].Track.Title, title)
			}
			if report.Outcomes[i].Status != StatusDownloaded {
				t.Errorf("Outcomes[%d].Status = %v, want downloaded", i, report.Outcomes[i].Status)
			}
			mixtest.AssertFileExists(t, filepath.Join(report.OutputDir, title+" - Some Artist.mp3"))
		}
	})

	t.Run("skips tracks whose file already exists", func(t *testing.T) {
		root := t.TempDir()
		dir := filepath.Join(root, "Test Mix")
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
		mixtest.MustWriteFile(t, filepath.Join(dir, "Alpha - Some Artist.mp3"), "existing")

		var resolveCalls int
		var mu sync.Mutex
		dl := NewDownloader(countingResolver(&resolveCalls, &mu), &stubFetcher{}, DownloaderOpts{})

		report, err := dl.Run(context.Background(), nil, testPlaylist("Alpha", "Beta"), root)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		if report.Skipped != 1 || report.Downloaded != 1 {
			t.Errorf("skipped = %d, downloaded = %d", report.Skipped, report.Downloaded)
		}
		if report.Outcomes[0].Status != StatusSkipped {
			t.Errorf("Outcomes[0].Status = %v, want skipped", report.Outcomes[0].Status)
		}
		if resolveCalls != 1 {
			t.Errorf("resolver called %d times, want 1", resolveCalls)
		}

		if content := mixtest.MustReadFile(t, filepath.Join(dir, "Alpha - Some Artist.mp3")); content != "existing" {
			t.Error("existing file was overwritten")
		}
	})

	t.Run("a second run over the same root skips everything", func(t *testing.T) {
		root := t.TempDir()
		var resolveCalls int
		var mu sync.Mutex
		dl := NewDownloader(countingResolver(&resolveCalls, &mu), &stubFetcher{}, DownloaderOpts{})
		pl := testPlaylist("Alpha", "Beta")

		first, err := dl.Run(context.Background(), nil, pl, root)
		if err != nil {
			t.Fatalf("first Run() error = %v", err)
		}
		if first.Downloaded != 2 {
			t.Fatalf("first run downloaded = %d, want 2", first.Downloaded)
		}

		second, err := dl.Run(context.Background(), nil, pl, root)
		if err != nil {
			t.Fatalf("second Run() error = %v", err)
		}

		if second.Skipped != 2 || second.Downloaded != 0 {
			t.Errorf("second run skipped = %d, downloaded = %d, want all skipped", second.Skipped, second.Downloaded)
		}
		for i, outcome := range second.Outcomes {
			if outcome.Status != StatusSkipped {
				t.Errorf("Outcomes[%d].Status = %v, want skipped", i, outcome.Status)
			}
		}
		if resolveCalls != 2 {
			t.Errorf("resolver called %d times across both runs, want 2", resolveCalls)
		}
	})

	t.Run("duplicate tracks fetch once", func(t *testing.T) {
		root := t.TempDir()
		fetcher := &stubFetcher{}
		var resolveCalls int
		var mu sync.Mutex
		dl := NewDownloader(countingResolver(&resolveCalls, &mu), fetcher, DownloaderOpts{})

		report, err := dl.Run(context.Background(), nil, testPlaylist("Alpha", "Alpha", "Beta"), root)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		if report.Downloaded != 2 || report.Skipped != 1 {
			t.Errorf("downloaded = %d, skipped = %d, want 2/1", report.Downloaded, report.Skipped)
		}
		if report.Outcomes[1].Status != StatusSkipped {
			t.Errorf("Outcomes[1].Status = %v, want the duplicate skipped", report.Outcomes[1].Status)
		}
		if fetcher.calls != 2 {
			t.Errorf("fetcher called %d times, want 2", fetcher.calls)
		}
		if resolveCalls != 2 {
			t.Errorf("resolver called %d times, want 2", resolveCalls)
		}
	})

	t.Run("a missing track does not abort its siblings", func(t *testing.T) {
		root := t.TempDir()
		resolver := &mixtest.MockResolver{
			ResolveFunc: func(ctx context.Context, track manifest.Track) (*services.Locator, error) {
				if track.Title == "Ghost" {
					return nil, fmt.Errorf("%w: no results", shared.ErrTrackNotFound)
				}
				return &services.Locator{VideoID: "vid"}, nil
			},
		}
		dl := NewDownloader(resolver, &stubFetcher{}, DownloaderOpts{})

		report, err := dl.Run(context.Background(), nil, testPlaylist("One", "Ghost", "Two", "Three", "Four"), root)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		if report.NotFound != 1 || report.Downloaded != 4 {
			t.Errorf("notFound = %d, downloaded = %d", report.NotFound, report.Downloaded)
		}
		if report.Outcomes[1].Status != StatusNotFound {
			t.Errorf("Outcomes[1].Status = %v, want not found", report.Outcomes[1].Status)
		}
	})

	t.Run("a fetch failure is captured in the outcome", func(t *testing.T) {
		root := t.TempDir()
		fetcher := &stubFetcher{failSubs: []string{"Broken"}}
		dl := NewDownloader(&mixtest.MockResolver{}, fetcher, DownloaderOpts{})

		report, err := dl.Run(context.Background(), nil, testPlaylist("Fine", "Broken"), root)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		if report.Failed != 1 || report.Downloaded != 1 {
			t.Errorf("failed = %d, downloaded = %d", report.Failed, report.Downloaded)
		}
		if report.Outcomes[1].Err == nil {
			t.Error("failed outcome has no error")
		}
		if !errors.Is(report.Outcomes[1].Err, shared.ErrFetchFailed) {
			t.Errorf("Outcomes[1].Err = %v, want ErrFetchFailed", report.Outcomes[1].Err)
		}
	})

	t.Run("concurrency stays within the worker bound", func(t *testing.T) {
		root := t.TempDir()
		fetcher := &stubFetcher{delay: 20 * time.Millisecond}
		dl := NewDownloader(&mixtest.MockResolver{}, fetcher, DownloaderOpts{Workers: 2, RateLimit: 1000})

		titles := make([]string, 8)
		for i := range titles {
			titles[i] = fmt.Sprintf("Track %d", i)
		}

		if _, err := dl.Run(context.Background(), nil, testPlaylist(titles...), root); err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		if fetcher.maxSeen > 2 {
			t.Errorf("max concurrent fetches = %d, want <= 2", fetcher.maxSeen)
		}
	})

	t.Run("cache hits bypass the resolver", func(t *testing.T) {
		root := t.TempDir()
		cache := newMapCache()
		if err := cache.Put("Cached", "Some Artist", "cached-vid"); err != nil {
			t.Fatal(err)
		}

		resolver := &mixtest.MockResolver{
			ResolveFunc: func(ctx context.Context, track manifest.Track) (*services.Locator, error) {
				return nil, errors.New("resolver should not be called")
			},
		}
		dl := NewDownloader(resolver, &stubFetcher{}, DownloaderOpts{Cache: cache})

		report, err := dl.Run(context.Background(), nil, testPlaylist("Cached"), root)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if report.Downloaded != 1 {
			t.Errorf("downloaded = %d, want 1 (from cache)", report.Downloaded)
		}
	})

	t.Run("successful resolutions are written back to the cache", func(t *testing.T) {
		root := t.TempDir()
		cache := newMapCache()
		dl := NewDownloader(&mixtest.MockResolver{}, &stubFetcher{}, DownloaderOpts{Cache: cache})

		if _, err := dl.Run(context.Background(), nil, testPlaylist("Fresh"), root); err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		if _, ok, _ := cache.Get("Fresh", "Some Artist"); !ok {
			t.Error("resolution was not cached")
		}
	})

	t.Run("rejects a nameless playlist", func(t *testing.T) {
		dl := NewDownloader(&mixtest.MockResolver{}, &stubFetcher{}, DownloaderOpts{})
		_, err := dl.Run(context.Background(), nil, &manifest.Playlist{}, t.TempDir())
		if !errors.Is(err, shared.ErrManifestMalformed) {
			t.Errorf("Run() error = %v, want ErrManifestMalformed", err)
		}
	})

	t.Run("rejects a downloader without resolver or fetcher", func(t *testing.T) {
		dl := NewDownloader(nil, nil, DownloaderOpts{})
		_, err := dl.Run(context.Background(), nil, testPlaylist("A"), t.TempDir())
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("Run() error = %v, want ErrServiceUnavailable", err)
		}
	})

	t.Run("emits start and done progress updates", func(t *testing.T) {
		root := t.TempDir()
		dl := NewDownloader(&mixtest.MockResolver{}, &stubFetcher{}, DownloaderOpts{})

		progress := make(chan ProgressUpdate, 100)
		if _, err := dl.Run(context.Background(), progress, testPlaylist("One", "Two"), root); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		close(progress)

		var sawStart, sawDone bool
		for update := range progress {
			switch update.Phase {
			case PlaylistStart:
				sawStart = true
			case PlaylistDone:
				sawDone = true
				if _, ok := update.Data.(*BatchReport); !ok {
					t.Error("PlaylistDone update carries no report")
				}
			}
		}
		if !sawStart || !sawDone {
			t.Errorf("sawStart = %v, sawDone = %v", sawStart, sawDone)
		}
	})
}

func TestDownloaderRunAll(t *testing.T) {
	writeManifest := func(t *testing.T, dir, name string, pl *manifest.Playlist) {
		t.Helper()
		if err := manifest.WriteFile(pl, filepath.Join(dir, name)); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("processes every manifest and records failures", func(t *testing.T) {
		manifestDir := t.TempDir()
		outputRoot := t.TempDir()

		writeManifest(t, manifestDir, "a.txt", testPlaylist("One"))
		writeManifest(t, manifestDir, "b.txt", testPlaylist("Two"))
		mixtest.MustWriteFile(t, filepath.Join(manifestDir, "broken.txt"), "no header here\n")

		dl := NewDownloader(&mixtest.MockResolver{}, &stubFetcher{}, DownloaderOpts{})
		result, err := dl.RunAll(context.Background(), nil, manifestDir, outputRoot)
		if err != nil {
			t.Fatalf("RunAll() error = %v", err)
		}

		if len(result.Reports) != 2 {
			t.Errorf("len(Reports) = %d, want 2", len(result.Reports))
		}
		if len(result.Failures) != 1 {
			t.Fatalf("len(Failures) = %d, want 1", len(result.Failures))
		}
		if !errors.Is(result.Failures[0].Err, shared.ErrManifestMalformed) {
			t.Errorf("failure = %v, want ErrManifestMalformed", result.Failures[0].Err)
		}
	})

	t.Run("empty manifest directory is an error", func(t *testing.T) {
		dl := NewDownloader(&mixtest.MockResolver{}, &stubFetcher{}, DownloaderOpts{})
		_, err := dl.RunAll(context.Background(), nil, t.TempDir(), t.TempDir())
		if !errors.Is(err, shared.ErrManifestUnreadable) {
			t.Errorf("RunAll() error = %v, want ErrManifestUnreadable", err)
		}
	})
}

func TestNewDownloaderDefaults(t *testing.T) {
	dl := NewDownloader(&mixtest.MockResolver{}, &stubFetcher{}, DownloaderOpts{Workers: -1})
	if dl.workers != 3 {
		t.Errorf("workers = %d, want default 3", dl.workers)
	}

	dl = NewDownloader(&mixtest.MockResolver{}, &stubFetcher{}, DownloaderOpts{Workers: 50})
	if dl.workers != 10 {
		t.Errorf("workers = %d, want cap 10", dl.workers)
	}

	if dl.rateLimit != 5.0 {
		t.Errorf("rateLimit = %v, want default 5.0", dl.rateLimit)
	}
}

func TestOutcomeStatusString(t *testing.T) {
	tests := []struct {
		status OutcomeStatus
		want   string
	}{
		{StatusSkipped, "skipped"},
		{StatusDownloaded, "downloaded"},
		{StatusNotFound, "not_found"},
		{StatusFailed, "failed"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}
