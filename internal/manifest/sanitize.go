package manifest

import "strings"

// fallbackName is used when sanitizing leaves nothing usable for a path.
const fallbackName = "untitled"

var illegalChars = strings.NewReplacer(
	"<", "-",
	">", "-",
	":", "-",
	`"`, "-",
	"/", "-",
	`\`, "-",
	"|", "-",
	"?", "-",
	"*", "-",
)

// Sanitize maps raw text to a filesystem-safe name. It is total: every input
// yields a non-empty name containing no characters illegal on common
// filesystems.
func Sanitize(raw string) string {
	safe := illegalChars.Replace(raw)
	safe = strings.Trim(safe, " .")
	if safe == "" {
		return fallbackName
	}
	return safe
}

// BaseFilename returns the stable, extension-less filename for a track,
// derived from title and artists only. Two tracks with the same title and
// artists map to the same file regardless of album.
func BaseFilename(t Track) string {
	return Sanitize(t.Title + " - " + t.Artists)
}
