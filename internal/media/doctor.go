package media

import (
	"fmt"
	"os/exec"
)

// DependencyReport describes which external binaries were found on PATH.
type DependencyReport struct {
	YTDLPFound  bool   `json:"yt_dlp_found"`
	YTDLPPath   string `json:"yt_dlp_path,omitempty"`
	FFmpegFound bool   `json:"ffmpeg_found"`
	FFmpegPath  string `json:"ffmpeg_path,omitempty"`
}

// DependencyStatus probes PATH for yt-dlp and ffmpeg.
func DependencyStatus() DependencyReport {
	report := DependencyReport{}
	if path, err := exec.LookPath("yt-dlp"); err == nil {
		report.YTDLPFound = true
		report.YTDLPPath = path
	}
	if path, err := exec.LookPath("ffmpeg"); err == nil {
		report.FFmpegFound = true
		report.FFmpegPath = path
	}
	return report
}

// CheckDependencies returns an error naming the first missing binary.
func CheckDependencies() error {
	report := DependencyStatus()
	if !report.YTDLPFound {
		return fmt.Errorf("missing dependency: yt-dlp is not installed or not on PATH")
	}
	if !report.FFmpegFound {
		return fmt.Errorf("missing dependency: ffmpeg is required for audio transcoding and was not found on PATH")
	}
	return nil
}
