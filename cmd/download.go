package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/mcolella14/mixtape/internal/media"
	"github.com/mcolella14/mixtape/internal/shared"
	"github.com/mcolella14/mixtape/internal/tasks"
	"github.com/mcolella14/mixtape/internal/ui"
)

// Download mirrors every manifest in the manifest directory as local audio files.
func (r *Runner) Download(ctx context.Context, cmd *cli.Command) error {
	if r.resolver == nil {
		return fmt.Errorf("%w: YouTube Music service not initialized", shared.ErrServiceUnavailable)
	}
	if err := media.CheckDependencies(); err != nil {
		return err
	}

	manifestDir := cmd.String("manifest-dir")
	if manifestDir == "" {
		manifestDir = r.config.Download.ManifestDir
	}
	outputRoot := cmd.String("output")
	if outputRoot == "" {
		outputRoot = r.config.Download.OutputRoot
	}
	workers := int(cmd.Int("workers"))
	if workers <= 0 {
		workers = r.config.Download.Workers
	}

	opts := tasks.DownloaderOpts{
		Workers:   workers,
		RateLimit: r.config.Download.RateLimit,
	}

	if !cmd.Bool("no-cache") {
		cache, closeCache, err := r.openResolveCache()
		if err != nil {
			r.logger.Warn("resolve cache unavailable, continuing without it", "error", err)
		} else {
			defer closeCache()
			opts.Cache = cache
		}
	}

	downloader := tasks.NewDownloader(r.resolver, r.fetcher, opts)

	r.logger.Info("starting download run", "run_id", shared.GenerateID(),
		"manifest_dir", manifestDir, "output_root", outputRoot, "workers", workers)

	if cmd.Bool("tui") {
		return r.downloadTUI(ctx, downloader, manifestDir, outputRoot)
	}

	r.writePlain("Downloading manifests from %s into %s...\n", manifestDir, outputRoot)

	// Create progress channel and goroutine to handle updates
	progressCh := make(chan tasks.ProgressUpdate, 50)
	go func() {
		for update := range progressCh {
			switch update.Phase {
			case tasks.PlaylistStart:
				r.writePlain("\n📥 %s\n", update.Message)
			case tasks.TrackResolving:
				r.writePlain("   %s\n", update.Message)
			case tasks.TrackSkipped, tasks.TrackDownloaded, tasks.TrackNotFound, tasks.TrackFailed:
				r.writePlain("   %s\n", update.Message)
			case tasks.ManifestFailed:
				r.writePlain("\n%s\n", update.Message)
			}
		}
	}()

	result, err := downloader.RunAll(ctx, progressCh, manifestDir, outputRoot)
	close(progressCh)

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Download Complete!")
	r.writeRunSummary(result)

	return nil
}

// downloadTUI runs the same pipeline behind an interactive progress view.
// Quitting the view cancels the run.
func (r *Runner) downloadTUI(ctx context.Context, downloader *tasks.Downloader, manifestDir, outputRoot string) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/mixtape-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(shared.WithLogger(fileLogger, "view", "tui"))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})

	var result *tasks.RunAllResult
	var runErr error
	go func() {
		defer close(done)
		result, runErr = downloader.RunAll(runCtx, progressCh, manifestDir, outputRoot)
		close(progressCh)
	}()

	p := tea.NewProgram(ui.NewModel(progressCh))
	if _, err := p.Run(); err != nil {
		cancel()
		<-done
		return fmt.Errorf("error running TUI: %w", err)
	}

	cancel()
	<-done

	if runErr != nil {
		return runErr
	}

	r.writePlainHeader("Download Complete!")
	r.writeRunSummary(result)
	return nil
}

// writeRunSummary prints per-playlist counts and manifest-level failures.
func (r *Runner) writeRunSummary(result *tasks.RunAllResult) {
	for _, report := range result.Reports {
		r.writePlain("%s (%s)\n", report.Playlist, report.OutputDir)
		r.writePlain("  downloaded %d, skipped %d, not found %d, failed %d\n",
			report.Downloaded, report.Skipped, report.NotFound, report.Failed)

		for _, outcome := range report.Outcomes {
			switch outcome.Status {
			case tasks.StatusNotFound:
				r.writePlain("  ✗ no match: %s - %s\n", outcome.Track.Title, outcome.Track.Artists)
			case tasks.StatusFailed:
				r.writePlain("  ✗ failed: %s - %s: %v\n", outcome.Track.Title, outcome.Track.Artists, outcome.Err)
			}
		}
	}

	if len(result.Failures) > 0 {
		r.writePlain("\nManifests that could not be processed:\n")
		for _, failure := range result.Failures {
			r.writePlain("  - %s: %v\n", failure.Path, failure.Err)
		}
	}
}
