// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"

	"github.com/mcolella14/mixtape/internal/manifest"
	"github.com/mcolella14/mixtape/internal/services"
)

// MockResolver is a test double for [services.Resolver].
//
// ResolveFunc may be nil, in which case every track resolves to a fixed
// locator.
type MockResolver struct {
	ResolveFunc func(ctx context.Context, track manifest.Track) (*services.Locator, error)
}

func (m *MockResolver) Resolve(ctx context.Context, track manifest.Track) (*services.Locator, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, track)
	}
	return &services.Locator{VideoID: "mock-video", URL: "https://music.youtube.com/watch?v=mock-video"}, nil
}

func (m *MockResolver) Name() string { return "mock" }

// MockExporter is a test double for [services.Exporter].
type MockExporter struct {
	Playlists    []services.PlaylistRef
	GetFunc      func(ctx context.Context, userID string) ([]services.PlaylistRef, error)
	ExportFunc   func(ctx context.Context, playlistID string) (*manifest.Playlist, error)
	ExportedByID map[string]*manifest.Playlist
}

func (m *MockExporter) GetPlaylists(ctx context.Context, userID string) ([]services.PlaylistRef, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, userID)
	}
	return m.Playlists, nil
}

func (m *MockExporter) ExportPlaylist(ctx context.Context, playlistID string) (*manifest.Playlist, error) {
	if m.ExportFunc != nil {
		return m.ExportFunc(ctx, playlistID)
	}
	if pl, ok := m.ExportedByID[playlistID]; ok {
		return pl, nil
	}
	return nil, errors.New("playlist not found")
}

func (m *MockExporter) Name() string { return "mock" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func MustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}
