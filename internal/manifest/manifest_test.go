package manifest

import (
	"path/filepath"
	"strings"
	"testing"
)

const sampleManifest = `Playlist: Road Trip
Owner: someone
Privacy: Public
Tracks: 3

=== Tracks ===

Bohemian Rhapsody - Queen - A Night at the Opera
Hotel California - Eagles - Hotel California
Take Five - The Dave Brubeck Quartet - Time Out
`

func TestParse(t *testing.T) {
	t.Run("parses header and tracks", func(t *testing.T) {
		pl, err := Parse(strings.NewReader(sampleManifest))
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}

		if pl.Name != "Road Trip" {
			t.Errorf("Name = %q, want %q", pl.Name, "Road Trip")
		}
		if len(pl.Tracks) != 3 {
			t.Fatalf("len(Tracks) = %d, want 3", len(pl.Tracks))
		}

		want := Track{Title: "Bohemian Rhapsody", Artists: "Queen", Album: "A Night at the Opera"}
		if pl.Tracks[0] != want {
			t.Errorf("Tracks[0] = %+v, want %+v", pl.Tracks[0], want)
		}
	})

	t.Run("drops lines without exactly three segments", func(t *testing.T) {
		input := `Playlist: Odd Lines
Owner: someone
Privacy: Private
Tracks: 4

=== Tracks ===

Only A Title
Two Parts - Here
Good Track - Some Artist - Some Album
One - Two - Three - Four
`
		pl, err := Parse(strings.NewReader(input))
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if len(pl.Tracks) != 1 {
			t.Fatalf("len(Tracks) = %d, want 1", len(pl.Tracks))
		}
		if pl.Tracks[0].Title != "Good Track" {
			t.Errorf("Tracks[0].Title = %q, want %q", pl.Tracks[0].Title, "Good Track")
		}
	})

	t.Run("missing header yields empty name", func(t *testing.T) {
		input := "not a header\nline two\nline three\nline four\nline five\nA - B - C\n"
		pl, err := Parse(strings.NewReader(input))
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if pl.Name != "" {
			t.Errorf("Name = %q, want empty", pl.Name)
		}
		if len(pl.Tracks) != 1 {
			t.Errorf("len(Tracks) = %d, want 1", len(pl.Tracks))
		}
	})

	t.Run("empty input yields empty playlist", func(t *testing.T) {
		pl, err := Parse(strings.NewReader(""))
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if pl.Name != "" || len(pl.Tracks) != 0 {
			t.Errorf("got %+v, want empty playlist", pl)
		}
	})

	t.Run("trims whitespace around segments", func(t *testing.T) {
		input := sampleManifest + "  Spaced Out -  Some Artist  - Some Album  \n"
		pl, err := Parse(strings.NewReader(input))
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}

		last := pl.Tracks[len(pl.Tracks)-1]
		want := Track{Title: "Spaced Out", Artists: "Some Artist", Album: "Some Album"}
		if last != want {
			t.Errorf("last track = %+v, want %+v", last, want)
		}
	})
}

func TestRenderParseRoundTrip(t *testing.T) {
	original := &Playlist{
		Name:   "Mix 2024",
		Owner:  "someone",
		Public: true,
		Tracks: []Track{
			{Title: "Song One", Artists: "Artist A", Album: "Album X"},
			{Title: "Song Two", Artists: "Artist B, Artist C", Album: "Album Y"},
		},
	}

	rendered := Render(original)
	parsed, err := Parse(strings.NewReader(string(rendered)))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if parsed.Name != original.Name {
		t.Errorf("Name = %q, want %q", parsed.Name, original.Name)
	}
	if len(parsed.Tracks) != len(original.Tracks) {
		t.Fatalf("len(Tracks) = %d, want %d", len(parsed.Tracks), len(original.Tracks))
	}
	for i := range original.Tracks {
		if parsed.Tracks[i] != original.Tracks[i] {
			t.Errorf("Tracks[%d] = %+v, want %+v", i, parsed.Tracks[i], original.Tracks[i])
		}
	}
}

func TestRender(t *testing.T) {
	pl := &Playlist{Name: "Quiet", Owner: "someone", Public: false}
	out := string(Render(pl))

	for _, want := range []string{"Playlist: Quiet\n", "Owner: someone\n", "Privacy: Private\n", "Tracks: 0\n", "=== Tracks ===\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q in:\n%s", want, out)
		}
	}
}

func TestWriteAndParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mix.txt")

	pl := &Playlist{
		Name:   "Mix",
		Owner:  "someone",
		Tracks: []Track{{Title: "Song", Artists: "Artist", Album: "Album"}},
	}

	if err := WriteFile(pl, path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	parsed, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if parsed.Name != "Mix" || len(parsed.Tracks) != 1 {
		t.Errorf("parsed = %+v, want 1 track named Mix", parsed)
	}
}

func TestParseFileMissing(t *testing.T) {
	if _, err := ParseFile(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("ParseFile() expected error for missing file")
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain name unchanged", "My Playlist", "My Playlist"},
		{"slash replaced", "AC/DC", "AC-DC"},
		{"backslash replaced", `back\slash`, "back-slash"},
		{"colon replaced", "12:00", "12-00"},
		{"asterisk replaced", "star*", "star-"},
		{"question mark replaced", "what?", "what-"},
		{"quotes replaced", `say "hi"`, "say -hi-"},
		{"angle brackets replaced", "<tag>", "-tag-"},
		{"pipe replaced", "a|b", "a-b"},
		{"trailing dots trimmed", "name...", "name"},
		{"surrounding spaces trimmed", "  padded  ", "padded"},
		{"empty input falls back", "", "untitled"},
		{"only dots falls back", "...", "untitled"},
		{"only illegal chars kept as dashes", "???", "---"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestBaseFilename(t *testing.T) {
	a := Track{Title: "Song", Artists: "Artist", Album: "First Album"}
	b := Track{Title: "Song", Artists: "Artist", Album: "Deluxe Edition"}

	if BaseFilename(a) != BaseFilename(b) {
		t.Errorf("BaseFilename differs across albums: %q vs %q", BaseFilename(a), BaseFilename(b))
	}
	if got, want := BaseFilename(a), "Song - Artist"; got != want {
		t.Errorf("BaseFilename = %q, want %q", got, want)
	}
}
