package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/openzim/ted/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults to a single topic crawl with one worker and applies any
// provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.BuildDir = filepath.Join(base, "build")
	cfg.Paths.OutputDir = filepath.Join(base, "output")
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Scraper.Topics = []string{"science"}

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithPlaylist switches the test config from topic mode to a playlist crawl.
func WithPlaylist(playlist string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Scraper.Topics = nil
		cfg.Scraper.Playlist = playlist
	}
}

// WithSubtitles sets the global subtitle setting on the test config.
func WithSubtitles(setting string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Scraper.Subtitles = setting
	}
}

// WithThreads sets the worker pool size on the test config.
func WithThreads(threads int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Scraper.Threads = threads
	}
}

// WithBaseURL points the test config at a local test server.
func WithBaseURL(baseURL string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Fetch.BaseURL = baseURL
	}
}
