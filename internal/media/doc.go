// package media retrieves and transcodes audio for resolved tracks.
//
// The fetcher shells out to yt-dlp with the ffmpeg extract-audio
// postprocessor. Output goes to a staging directory next to the destination
// and is renamed into place only after the transcode succeeds, so a failed
// fetch never leaves a corrupt file under the final name.
package media
