package services

import (
	"context"

	"github.com/mcolella14/mixtape/internal/manifest"
)

// Locator is an opaque reference to a media item in the search provider.
// Produced by a Resolver and consumed immediately by a fetcher; not stored.
type Locator struct {
	VideoID string
	URL     string
}

// Resolver finds a best-effort media match for a track.
//
// Resolve returns the first candidate the provider reports, or an error
// wrapping [shared.ErrTrackNotFound] when the provider returns nothing.
// Implementations must be safe to call concurrently.
type Resolver interface {
	Resolve(ctx context.Context, track manifest.Track) (*Locator, error)
	Name() string
}

// Exporter lists and exports playlists from the source catalog.
type Exporter interface {
	GetPlaylists(ctx context.Context, userID string) ([]PlaylistRef, error)
	ExportPlaylist(ctx context.Context, playlistID string) (*manifest.Playlist, error)
	Name() string
}

// PlaylistRef identifies a playlist in the source catalog without its tracks.
type PlaylistRef struct {
	ID         string
	Name       string
	Owner      string
	Public     bool
	TrackCount int
}
