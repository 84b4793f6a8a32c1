package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/mcolella14/mixtape/internal/media"
	"github.com/mcolella14/mixtape/internal/shared"
)

// SetupConfig writes the starter config file.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("path")

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("created config file", "path", path)
	r.writePlain("✓ Created %s\n", path)
	r.writePlain("Edit it with your Spotify credentials, or set SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET in the environment.\n")
	return nil
}

// SetupDatabase initializes the resolve cache database.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	cache, closeCache, err := r.openResolveCache()
	if err != nil {
		return err
	}
	defer closeCache()

	count, err := cache.Count()
	if err != nil {
		return err
	}

	r.logger.Info("resolve cache initialized", "path", r.config.Database.Path, "entries", count)
	r.writePlain("✓ Resolve cache ready at %s (%d entries)\n", r.config.Database.Path, count)
	return nil
}

// CacheClear drops every cached track resolution.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	cache, closeCache, err := r.openResolveCache()
	if err != nil {
		return err
	}
	defer closeCache()

	if err := cache.Clear(); err != nil {
		return err
	}

	r.logger.Info("resolve cache cleared", "path", r.config.Database.Path)
	r.writePlain("✓ Resolve cache cleared\n")
	return nil
}

// Doctor reports whether the external binaries the fetcher needs are on PATH.
func (r *Runner) Doctor(ctx context.Context, cmd *cli.Command) error {
	report := media.DependencyStatus()

	r.writePlainHeader("Dependency Check")
	r.writeDependency("yt-dlp", report.YTDLPFound, report.YTDLPPath)
	r.writeDependency("ffmpeg", report.FFmpegFound, report.FFmpegPath)

	if !report.YTDLPFound || !report.FFmpegFound {
		return fmt.Errorf("missing required dependencies")
	}

	r.writePlain("\nAll dependencies found.\n")
	return nil
}

func (r *Runner) writeDependency(name string, found bool, path string) {
	if found {
		r.writePlain("✓ %s: %s\n", name, path)
		return
	}
	r.writePlain("✗ %s: not found on PATH\n", name)
}
