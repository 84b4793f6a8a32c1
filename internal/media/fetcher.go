package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mcolella14/mixtape/internal/services"
	"github.com/mcolella14/mixtape/internal/shared"
)

const stagedName = "audio"

// Fetcher downloads the audio for a locator and writes it to
// destBase + "." + ext, returning the final path.
type Fetcher interface {
	Fetch(ctx context.Context, loc services.Locator, destBase string) (string, error)
	Ext() string
}

// YTDLPFetcher implements [Fetcher] by invoking the yt-dlp binary.
type YTDLPFetcher struct {
	// AudioFormat is the target container/codec, e.g. "mp3".
	AudioFormat string
	// AudioQuality is the target bitrate passed to ffmpeg, e.g. "192K".
	AudioQuality string
}

// NewYTDLPFetcher creates a fetcher with the given target format and quality.
// Empty values fall back to mp3 at 192K.
func NewYTDLPFetcher(format, quality string) *YTDLPFetcher {
	if format == "" {
		format = "mp3"
	}
	if quality == "" {
		quality = "192K"
	}
	return &YTDLPFetcher{AudioFormat: format, AudioQuality: quality}
}

// Ext returns the file extension of fetched audio, without the dot.
func (f *YTDLPFetcher) Ext() string {
	return f.AudioFormat
}

// buildArgs assembles the yt-dlp argument list for one fetch into stagingDir.
func (f *YTDLPFetcher) buildArgs(loc services.Locator, stagingDir string) []string {
	return []string{
		"--no-playlist",
		"--no-warnings",
		"--newline",
		"-f", "bestaudio/best",
		"-x",
		"--audio-format", f.AudioFormat,
		"--audio-quality", f.AudioQuality,
		"-o", filepath.Join(stagingDir, stagedName+".%(ext)s"),
		loc.URL,
	}
}

// Fetch downloads and transcodes the locator's audio, writing the result to
// destBase + "." + Ext().
//
// yt-dlp writes into a staging directory beside the destination; the finished
// file is renamed into place on success. On failure the staging directory is
// removed and nothing appears under the final name.
func (f *YTDLPFetcher) Fetch(ctx context.Context, loc services.Locator, destBase string) (string, error) {
	destDir := filepath.Dir(destBase)
	stagingDir, err := os.MkdirTemp(destDir, ".mixtape-staging-*")
	if err != nil {
		return "", fmt.Errorf("%w: create staging dir: %v", shared.ErrFilesystem, err)
	}
	defer os.RemoveAll(stagingDir)

	cmd := exec.CommandContext(ctx, "yt-dlp", f.buildArgs(loc, stagingDir)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: yt-dlp: %v: %s", shared.ErrFetchFailed, err, strings.TrimSpace(stderr.String()))
	}

	staged := filepath.Join(stagingDir, stagedName+"."+f.AudioFormat)
	if _, err := os.Stat(staged); err != nil {
		return "", fmt.Errorf("%w: transcoded file missing: %v", shared.ErrFetchFailed, err)
	}

	finalPath := destBase + "." + f.AudioFormat
	if err := os.Rename(staged, finalPath); err != nil {
		return "", fmt.Errorf("%w: move into place: %v", shared.ErrFilesystem, err)
	}

	return finalPath, nil
}
