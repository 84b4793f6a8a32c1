package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ParseManifest Phase = iota
	PlaylistStart
	TrackSkipped
	TrackResolving
	TrackDownloaded
	TrackNotFound
	TrackFailed
	PlaylistDone
	ManifestFailed
	FetchPlaylists
	ExportPlaylist
)

func (p Phase) String() string {
	switch p {
	case ParseManifest:
		return "parse_manifest"
	case PlaylistStart:
		return "playlist_start"
	case TrackSkipped:
		return "track_skipped"
	case TrackResolving:
		return "track_resolving"
	case TrackDownloaded:
		return "track_downloaded"
	case TrackNotFound:
		return "track_not_found"
	case TrackFailed:
		return "track_failed"
	case PlaylistDone:
		return "playlist_done"
	case ManifestFailed:
		return "manifest_failed"
	case FetchPlaylists:
		return "fetch_playlists"
	case ExportPlaylist:
		return "export_playlist"
	default:
		return ""
	}
}

func playlistStartUpdate(step, total int, name string, trackCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PlaylistStart,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Found %d tracks in playlist: %s", trackCount, name),
	}
}

func trackSkippedUpdate(step, total int, outcome DownloadOutcome) ProgressUpdate {
	return ProgressUpdate{
		Phase:   TrackSkipped,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Already exists: %s - %s", step, total, outcome.Track.Title, outcome.Track.Artists),
		Data:    outcome,
	}
}

func trackResolvingUpdate(step, total int, title, artists string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   TrackResolving,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Searching: %s - %s", step, total, title, artists),
	}
}

func trackOutcomeUpdate(step, total int, outcome DownloadOutcome) ProgressUpdate {
	update := ProgressUpdate{
		Step:  step,
		Total: total,
		Data:  outcome,
	}

	switch outcome.Status {
	case StatusDownloaded:
		update.Phase = TrackDownloaded
		update.Message = fmt.Sprintf("[%d/%d] ✓ %s - %s", step, total, outcome.Track.Title, outcome.Track.Artists)
	case StatusNotFound:
		update.Phase = TrackNotFound
		update.Message = fmt.Sprintf("[%d/%d] ✗ No match for: %s - %s", step, total, outcome.Track.Title, outcome.Track.Artists)
	default:
		update.Phase = TrackFailed
		update.Message = fmt.Sprintf("[%d/%d] ✗ %s - %s: %v", step, total, outcome.Track.Title, outcome.Track.Artists, outcome.Err)
	}

	return update
}

func playlistDoneUpdate(report *BatchReport) ProgressUpdate {
	return ProgressUpdate{
		Phase: PlaylistDone,
		Step:  1,
		Total: 1,
		Message: fmt.Sprintf("%s: %d downloaded, %d skipped, %d not found, %d failed",
			report.Playlist, report.Downloaded, report.Skipped, report.NotFound, report.Failed),
		Data: report,
	}
}

func manifestFailedUpdate(path string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ManifestFailed,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("✗ %s: %v", path, err),
	}
}

func fetchPlaylistsUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylists,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d playlists", total),
	}
}

func exportingPlaylistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, name),
	}
}

func exportCompletedUpdate(step, total int, name, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s → %s", step, total, name, path),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}
