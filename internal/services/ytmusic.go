// YouTube Music [Resolver] implementation
//
// Communicates with a ytmusicapi-compatible proxy exposing GET /api/search.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mcolella14/mixtape/internal/manifest"
	"github.com/mcolella14/mixtape/internal/shared"
)

const defaultYTBaseURL = "http://localhost:8080"

const watchURLFormat = "https://music.youtube.com/watch?v=%s"

// YTMusicArtist represents an artist in YouTube Music responses.
type YTMusicArtist struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// YTMusicResult represents one search result from the proxy.
type YTMusicResult struct {
	VideoID     string          `json:"videoId"`
	Title       string          `json:"title"`
	Artists     []YTMusicArtist `json:"artists"`
	Duration    string          `json:"duration"`
	DurationSec int             `json:"duration_seconds"`
}

// YTMusicService implements [Resolver] against the YouTube Music proxy.
//
// The HTTP client is injected once and shared across calls; the service holds
// no per-call mutable state.
type YTMusicService struct {
	baseURL    string
	httpClient *http.Client
}

// NewYTMusicService creates a new YouTube Music resolver.
//
// baseURL defaults to the local proxy; httpClient defaults to [http.DefaultClient].
func NewYTMusicService(baseURL string, httpClient *http.Client) *YTMusicService {
	if baseURL == "" {
		baseURL = defaultYTBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &YTMusicService{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// Name returns the service name.
func (y *YTMusicService) Name() string {
	return "YouTube Music"
}

func (y *YTMusicService) doRequest(ctx context.Context, endpoint string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, y.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Detail string `json:"detail"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Detail != "" {
			return fmt.Errorf("%w: youtube music (status %d): %s", shared.ErrAPIRequest, resp.StatusCode, errResp.Detail)
		}
		return fmt.Errorf("%w: youtube music status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Search issues a free-text query and returns the provider-ordered results.
//
// Calls GET /api/search?q={query}&filter=songs on the proxy.
func (y *YTMusicService) Search(ctx context.Context, query string) ([]YTMusicResult, error) {
	endpoint := fmt.Sprintf("/api/search?q=%s&filter=songs", url.QueryEscape(query))

	var results []YTMusicResult
	if err := y.doRequest(ctx, endpoint, &results); err != nil {
		return nil, err
	}

	return results, nil
}

// Resolve searches for "{title} {artists}" and selects the first result.
//
// No ranking beyond provider-native ordering is applied. Zero results yield
// an error wrapping [shared.ErrTrackNotFound].
func (y *YTMusicService) Resolve(ctx context.Context, track manifest.Track) (*Locator, error) {
	query := fmt.Sprintf("%s %s", track.Title, track.Artists)

	results, err := y.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: no results for '%s' by '%s'", shared.ErrTrackNotFound, track.Title, track.Artists)
	}

	first := results[0]
	return &Locator{
		VideoID: first.VideoID,
		URL:     fmt.Sprintf(watchURLFormat, first.VideoID),
	}, nil
}
