// Spotify Web API implementation of [Exporter]
//
// Authenticates with the client-credentials grant, so it can read the public
// playlists of the profile named in the configuration without a browser flow.
package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/mcolella14/mixtape/internal/manifest"
	"github.com/mcolella14/mixtape/internal/shared"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	playlistPageLimit = 50
	trackPageLimit    = 100
)

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Artists []SpotifyArtist `json:"artists"`
	Album   SpotifyAlbum    `json:"album"`
}

type spotifyOwner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type spotifyPlaylistItem struct {
	Track *SpotifyTrack `json:"track"`
}

type spotifyPagedTracks struct {
	Items []spotifyPlaylistItem `json:"items"`
	Next  *string               `json:"next"`
}

// SpotifyPlaylist represents a playlist with paged track items.
type SpotifyPlaylist struct {
	ID     string             `json:"id"`
	Name   string             `json:"name"`
	Owner  spotifyOwner       `json:"owner"`
	Public bool               `json:"public"`
	Tracks spotifyPagedTracks `json:"tracks"`
}

type spotifyPagedPlaylists struct {
	Items []struct {
		ID     string       `json:"id"`
		Name   string       `json:"name"`
		Owner  spotifyOwner `json:"owner"`
		Public bool         `json:"public"`
		Tracks struct {
			Total int `json:"total"`
		} `json:"tracks"`
	} `json:"items"`
	Next *string `json:"next"`
}

// SpotifyService implements [Exporter] for the Spotify Web API.
//
// One resty client wraps the token-refreshing oauth2 client for the lifetime
// of the service; nothing is reconstructed per call.
type SpotifyService struct {
	client *resty.Client
}

// NewSpotifyService creates a Spotify exporter with the given credentials.
func NewSpotifyService(ctx context.Context, cfg shared.SpotifyConfig) (*SpotifyService, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client_id and client_secret are required", shared.ErrMissingCredentials)
	}

	creds := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     spotifyTokenURL,
	}

	client := resty.NewWithClient(creds.Client(ctx)).SetBaseURL(spotifyBaseURL)

	return &SpotifyService{client: client}, nil
}

// Name returns the service name.
func (s *SpotifyService) Name() string {
	return "Spotify"
}

// UserIDFromURL extracts the user ID from a profile URL such as
// https://open.spotify.com/user/yourname.
func UserIDFromURL(profileURL string) (string, error) {
	if profileURL == "" {
		return "", fmt.Errorf("%w: spotify user URL not configured", shared.ErrMissingCredentials)
	}

	parsed, err := url.Parse(profileURL)
	if err != nil {
		return "", fmt.Errorf("%w: invalid user URL: %v", shared.ErrInvalidCredentials, err)
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	userID := segments[len(segments)-1]
	if userID == "" {
		return "", fmt.Errorf("%w: user URL has no user ID", shared.ErrInvalidCredentials)
	}

	return userID, nil
}

func (s *SpotifyService) get(ctx context.Context, path string, params map[string]string, result any) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(result).
		Get(path)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: spotify status %d", shared.ErrAPIRequest, resp.StatusCode())
	}
	return nil
}

// GetPlaylists retrieves all playlists of the given user, following pagination.
func (s *SpotifyService) GetPlaylists(ctx context.Context, userID string) ([]PlaylistRef, error) {
	var refs []PlaylistRef
	offset := 0

	for {
		var page spotifyPagedPlaylists
		params := map[string]string{
			"limit":  fmt.Sprintf("%d", playlistPageLimit),
			"offset": fmt.Sprintf("%d", offset),
		}
		if err := s.get(ctx, fmt.Sprintf("/users/%s/playlists", userID), params, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			refs = append(refs, PlaylistRef{
				ID:         item.ID,
				Name:       item.Name,
				Owner:      item.Owner.DisplayName,
				Public:     item.Public,
				TrackCount: item.Tracks.Total,
			})
		}

		if page.Next == nil {
			break
		}
		offset += playlistPageLimit
	}

	return refs, nil
}

// ExportPlaylist fetches a playlist and all of its tracks, following
// pagination, and returns it in manifest form.
func (s *SpotifyService) ExportPlaylist(ctx context.Context, playlistID string) (*manifest.Playlist, error) {
	var sp SpotifyPlaylist
	if err := s.get(ctx, fmt.Sprintf("/playlists/%s", playlistID), nil, &sp); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrPlaylistNotFound, playlistID, err)
	}

	pl := &manifest.Playlist{
		Name:   sp.Name,
		Owner:  sp.Owner.DisplayName,
		Public: sp.Public,
	}

	items := sp.Tracks.Items
	next := sp.Tracks.Next
	offset := len(items)

	for {
		for _, item := range items {
			if track := toManifestTrack(item.Track); track != nil {
				pl.Tracks = append(pl.Tracks, *track)
			}
		}

		if next == nil {
			break
		}

		var page spotifyPagedTracks
		params := map[string]string{
			"limit":  fmt.Sprintf("%d", trackPageLimit),
			"offset": fmt.Sprintf("%d", offset),
			"fields": "items.track,next",
		}
		if err := s.get(ctx, fmt.Sprintf("/playlists/%s/tracks", playlistID), params, &page); err != nil {
			return nil, err
		}

		items = page.Items
		next = page.Next
		offset += len(page.Items)
	}

	return pl, nil
}

// toManifestTrack converts an API track to the manifest model.
// Local or removed tracks arrive as null and are skipped.
func toManifestTrack(st *SpotifyTrack) *manifest.Track {
	if st == nil {
		return nil
	}

	names := make([]string, 0, len(st.Artists))
	for _, artist := range st.Artists {
		if artist.Name != "" {
			names = append(names, artist.Name)
		}
	}

	title := st.Name
	if title == "" {
		title = "Unknown Title"
	}
	artists := strings.Join(names, ", ")
	if artists == "" {
		artists = "Unknown Artist"
	}
	album := st.Album.Name
	if album == "" {
		album = "Unknown Album"
	}

	return &manifest.Track{Title: title, Artists: artists, Album: album}
}
