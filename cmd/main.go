package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/mcolella14/mixtape/internal/services"
	"github.com/mcolella14/mixtape/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)
	if os.Getenv("MIXTAPE_DEBUG") != "" {
		shared.SetLogLevel(logger, log.DebugLevel)
	}
	ctx := context.Background()

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	// One shared HTTP client for every resolver call in the process.
	httpClient := &http.Client{Timeout: 30 * time.Second}

	var exporter services.Exporter
	if svc, err := services.NewSpotifyService(ctx, config.Credentials.Spotify); err == nil {
		exporter = svc
	}

	resolver := services.NewYTMusicService(config.Search.BaseURL, httpClient)

	runner := NewRunner(RunnerOpts{
		Config:   config,
		Exporter: exporter,
		Resolver: resolver,
		Logger:   logger,
	})

	app := &cli.Command{
		Name:     "mixtape",
		Usage:    "Export Spotify playlists to text manifests and mirror them as local audio files",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(ctx, os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
