// package tasks implements the export and download pipelines.
//
// The core abstraction is Downloader, which fans a playlist's tracks out over
// a bounded worker pool, resolving each track against the search provider and
// fetching its audio. ExportEngine walks the source catalog and writes one
// manifest per playlist. Operations emit progress updates via channels for
// non-blocking status reporting to CLI/UI layers.
package tasks
