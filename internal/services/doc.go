// package services implements clients for the external catalogs.
//
// SpotifyService exports a user's playlists from the Spotify Web API.
// YTMusicService resolves tracks against a YouTube Music search endpoint
// (a ytmusicapi-compatible proxy). Both take an injected HTTP client and are
// safe for concurrent use.
package services
