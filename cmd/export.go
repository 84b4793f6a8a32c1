package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/mcolella14/mixtape/internal/services"
	"github.com/mcolella14/mixtape/internal/shared"
	"github.com/mcolella14/mixtape/internal/tasks"
)

// Export writes one text manifest per playlist in the user's Spotify catalog.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	if r.exporter == nil {
		return fmt.Errorf("%w: Spotify service not initialized (set SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET)", shared.ErrServiceUnavailable)
	}

	user := cmd.String("user")
	if user == "" {
		user = r.config.Credentials.Spotify.UserURL
	}
	if user == "" {
		return fmt.Errorf("%w: no Spotify user (pass --user or set user_url in config)", shared.ErrMissingArgument)
	}

	userID := user
	if strings.Contains(user, "/") {
		id, err := services.UserIDFromURL(user)
		if err != nil {
			return err
		}
		userID = id
	}

	dir := cmd.String("dir")
	if dir == "" {
		dir = r.config.Download.ManifestDir
	}

	r.logger.Info("starting catalog export", "run_id", shared.GenerateID(), "user", userID, "dir", dir)
	r.writePlain("Exporting playlists for %s...\n\n", userID)

	engine := tasks.NewExportEngine(r.exporter, tasks.ExportEngineOpts{
		Workers: int(cmd.Int("workers")),
	})

	// Create progress channel and goroutine to handle updates
	progressCh := make(chan tasks.ProgressUpdate, 50)
	go func() {
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchPlaylists:
				r.writePlain("📥 %s\n\n", update.Message)
			case tasks.ExportPlaylist:
				r.writePlain("   %s\n", update.Message)
			}
		}
	}()

	result, err := engine.ExportAll(ctx, progressCh, userID, dir)
	close(progressCh)

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Export Complete!")
	r.writePlain("Playlists: %d\n", result.Total)
	r.writePlain("Exported: %d\n", result.Succeeded)
	r.writePlain("Failed: %d\n", result.Failed)
	r.writePlain("Manifests written to: %s\n", result.OutputDir)

	if len(result.Failures) > 0 {
		r.writePlain("\nFailed playlists:\n")
		for _, failure := range result.Failures {
			r.writePlain("  - %s: %v\n", failure.Playlist, failure.Err)
		}
	}

	return nil
}
