package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/mcolella14/mixtape/internal/services"
	"github.com/mcolella14/mixtape/internal/shared"
)

// maxSearchResults caps the rows printed by the search command.
const maxSearchResults = 5

// Search queries YouTube Music and prints the top matches.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: search query is required", shared.ErrMissingArgument)
	}

	svc, ok := r.resolver.(*services.YTMusicService)
	if !ok {
		return fmt.Errorf("%w: search requires the YouTube Music resolver", shared.ErrServiceUnavailable)
	}

	r.logger.Info("searching youtube music", "query", query)

	results, err := svc.Search(ctx, query)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		r.writePlain("No results for '%s'\n", query)
		return nil
	}

	if len(results) > maxSearchResults {
		results = results[:maxSearchResults]
	}

	r.writePlain("Results for '%s':\n\n", query)
	for i, result := range results {
		names := make([]string, 0, len(result.Artists))
		for _, artist := range result.Artists {
			names = append(names, artist.Name)
		}

		r.writePlain("%d. %s - %s", i+1, result.Title, strings.Join(names, ", "))
		if result.Duration != "" {
			r.writePlain(" (%s)", result.Duration)
		}
		r.writePlain("\n   https://music.youtube.com/watch?v=%s\n", result.VideoID)
	}

	return nil
}
