// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// exportCommand writes one manifest per Spotify playlist.
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "export",
		Aliases: []string{"exp"},
		Usage:   "Export Spotify playlists to text manifests",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "user",
				Usage: "Spotify profile URL or user ID (defaults to config)",
			},
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "Manifest output directory (defaults to config)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent playlist exports",
				Value: 3,
			},
		},
		Action: r.Export,
	}
}

// downloadCommand mirrors manifests into local audio files.
func downloadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "download",
		Aliases: []string{"dl"},
		Usage:   "Download every manifest's tracks as audio files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "manifest-dir",
				Usage: "Directory containing playlist manifests (defaults to config)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Root directory for downloaded audio (defaults to config)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent track downloads per playlist (defaults to config)",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Skip the SQLite resolve cache",
			},
			&cli.BoolFlag{
				Name:  "tui",
				Usage: "Show an interactive progress view",
			},
		},
		Action: r.Download,
	}
}

// searchCommand resolves a single ad hoc query for debugging.
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search YouTube Music for a track and print the first match",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "query",
			},
		},
		Action: r.Search,
	}
}

// setupCommand handles setup operations for configuration and the cache database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write a starter config.toml",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "path",
						Aliases: []string{"p"},
						Usage:   "Destination path for the config file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize the resolve cache database",
				Action: r.SetupDatabase,
			},
			{
				Name:  "cache-clear",
				Usage: "Drop all cached track resolutions",
				Action: r.CacheClear,
			},
		},
	}
}

// doctorCommand checks for required external binaries.
func doctorCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "doctor",
		Usage:  "Check that yt-dlp and ffmpeg are installed",
		Action: r.Doctor,
	}
}
