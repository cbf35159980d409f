package assets

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/openzim/ted/internal/catalog"
	"github.com/openzim/ted/internal/fetch"
	"github.com/openzim/ted/internal/services"
)

func assetClient(t *testing.T) *fetch.Client {
	t.Helper()
	return fetch.NewClient(fetch.WithPacing(0), fetch.WithBackoffUnit(0))
}

func TestVideoAssets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/talk.mp4":
			_, _ = w.Write([]byte("media"))
		case "/thumb.webp":
			_, _ = w.Write([]byte("thumb"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	video := &catalog.Video{
		ID:             "42",
		VideoLink:      server.URL + "/talk.mp4",
		Thumbnail:      server.URL + "/thumb.webp?width=600",
		SpeakerPicture: server.URL + "/missing.jpg",
	}

	videoDir := filepath.Join(t.TempDir(), "42")
	downloader := NewDownloader(assetClient(t), nil)
	if err := downloader.VideoAssets(context.Background(), video, videoDir); err != nil {
		t.Fatalf("VideoAssets: %v", err)
	}

	media, err := os.ReadFile(filepath.Join(videoDir, "video.mp4"))
	if err != nil {
		t.Fatalf("read video: %v", err)
	}
	if string(media) != "media" {
		t.Errorf("video content = %q", media)
	}
	// Thumbnail keeps its served extension; query parameters are ignored.
	if _, err := os.Stat(filepath.Join(videoDir, "thumbnail.webp")); err != nil {
		t.Errorf("thumbnail: %v", err)
	}
	// A missing portrait is logged and skipped, not fatal.
	if _, err := os.Stat(filepath.Join(videoDir, "speaker.jpg")); !errors.Is(err, os.ErrNotExist) {
		t.Error("speaker portrait written despite 404")
	}
}

func TestVideoAssetsSkipsExistingFiles(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		_, _ = w.Write([]byte("fresh"))
	}))
	t.Cleanup(server.Close)

	videoDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(videoDir, "video.mp4"), []byte("cached"), 0o644); err != nil {
		t.Fatal(err)
	}

	video := &catalog.Video{ID: "1", VideoLink: server.URL + "/talk.mp4"}
	if err := NewDownloader(assetClient(t), nil).VideoAssets(context.Background(), video, videoDir); err != nil {
		t.Fatalf("VideoAssets: %v", err)
	}
	if requests != 0 {
		t.Errorf("requests = %d, want 0 for cached asset", requests)
	}
	raw, _ := os.ReadFile(filepath.Join(videoDir, "video.mp4"))
	if string(raw) != "cached" {
		t.Errorf("cached asset overwritten: %q", raw)
	}
}

func TestVideoAssetsRequiredFailurePropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	video := &catalog.Video{ID: "1", VideoLink: server.URL + "/talk.mp4"}
	err := NewDownloader(assetClient(t), nil).VideoAssets(context.Background(), video, t.TempDir())
	if !errors.Is(err, services.ErrExhausted) {
		t.Fatalf("err = %v, want ErrExhausted", err)
	}
}
