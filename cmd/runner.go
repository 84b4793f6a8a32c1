package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/mcolella14/mixtape/internal/media"
	"github.com/mcolella14/mixtape/internal/repositories"
	"github.com/mcolella14/mixtape/internal/services"
	"github.com/mcolella14/mixtape/internal/shared"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config   *shared.Config
	exporter services.Exporter
	resolver services.Resolver
	fetcher  media.Fetcher
	logger   *log.Logger
	output   io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config   *shared.Config
	Exporter services.Exporter
	Resolver services.Resolver
	Fetcher  media.Fetcher
	Logger   *log.Logger
	Output   io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Fetcher == nil {
		opts.Fetcher = media.NewYTDLPFetcher(opts.Config.Download.AudioFormat, opts.Config.Download.AudioQuality)
	}

	return &Runner{
		config:   opts.Config,
		exporter: opts.Exporter,
		resolver: opts.Resolver,
		fetcher:  opts.Fetcher,
		logger:   opts.Logger,
		output:   opts.Output,
	}
}

// SetLogger swaps the runner's logger, used when a TUI takes over the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		exportCommand, downloadCommand, searchCommand, setupCommand, doctorCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// openResolveCache opens the configured SQLite cache and runs its migration.
// Callers own the returned close function.
func (r *Runner) openResolveCache() (*repositories.ResolveCache, func(), error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	cache := repositories.NewResolveCache(db)
	if err := cache.Migrate(); err != nil {
		db.Close()
		return nil, nil, err
	}

	return cache, func() { db.Close() }, nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
