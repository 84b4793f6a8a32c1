// package manifest defines the playlist manifest format and the track data model.
//
// A manifest is a plain-text file with a five line metadata header followed by
// one track per line:
//
//	Playlist: <name>
//	Owner: <name>
//	Privacy: Private|Public
//	Tracks: <count>
//	<blank>
//	<title> - <artists> - <album>
//	...
//
// Only the Playlist prefix on line 1 is consumed; the rest of the header is
// opaque metadata. Content lines that do not split into exactly three
// " - " separated segments are dropped.
package manifest
