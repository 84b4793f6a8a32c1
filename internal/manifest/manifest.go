package manifest

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mcolella14/mixtape/internal/shared"
)

const (
	playlistPrefix = "Playlist: "
	trackSeparator = " - "
	headerLines    = 5
)

// Track is an immutable record of one manifest track line.
type Track struct {
	Title   string
	Artists string // comma-joined display form
	Album   string
}

func (t Track) String() string {
	return fmt.Sprintf("%s - %s - %s", t.Title, t.Artists, t.Album)
}

// Playlist holds a manifest's name and its ordered tracks.
type Playlist struct {
	Name   string
	Owner  string
	Public bool
	Tracks []Track
}

// Parse reads manifest text and returns the playlist name and tracks.
//
// A missing or malformed header yields an empty playlist name; callers decide
// whether that is fatal. Lines with fewer or more than three segments are
// dropped rather than mis-parsed.
func Parse(r io.Reader) (*Playlist, error) {
	scanner := bufio.NewScanner(r)
	pl := &Playlist{}

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if lineNo == 1 && strings.HasPrefix(line, playlistPrefix) {
			pl.Name = strings.TrimSpace(strings.TrimPrefix(line, playlistPrefix))
			continue
		}
		if lineNo <= headerLines {
			continue
		}
		if line == "" {
			continue
		}

		parts := strings.Split(line, trackSeparator)
		if len(parts) != 3 {
			continue
		}
		pl.Tracks = append(pl.Tracks, Track{
			Title:   strings.TrimSpace(parts[0]),
			Artists: strings.TrimSpace(parts[1]),
			Album:   strings.TrimSpace(parts[2]),
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrManifestUnreadable, err)
	}

	return pl, nil
}

// ParseFile parses the manifest at path.
func ParseFile(path string) (*Playlist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrManifestUnreadable, path, err)
	}
	defer f.Close()

	return Parse(f)
}

// Render serializes a playlist to the manifest format.
func Render(pl *Playlist) []byte {
	var buf bytes.Buffer

	privacy := "Private"
	if pl.Public {
		privacy = "Public"
	}

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", pl.Name))
	buf.WriteString(fmt.Sprintf("Owner: %s\n", pl.Owner))
	buf.WriteString(fmt.Sprintf("Privacy: %s\n", privacy))
	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", len(pl.Tracks)))
	buf.WriteString("=== Tracks ===\n\n")

	for _, track := range pl.Tracks {
		buf.WriteString(track.String())
		buf.WriteString("\n")
	}

	return buf.Bytes()
}

// WriteFile renders the playlist and writes it to path.
func WriteFile(pl *Playlist, path string) error {
	if err := os.WriteFile(path, Render(pl), 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
