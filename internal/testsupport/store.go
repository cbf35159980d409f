package testsupport

import (
	"context"
	"testing"

	"github.com/openzim/ted/internal/config"
	"github.com/openzim/ted/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewVideo enqueues a catalog video for tests using the provided store.
func NewVideo(t testing.TB, store *queue.Store, videoID, title, metadataJSON string) *queue.Item {
	t.Helper()

	item, err := store.NewVideo(context.Background(), videoID, title, "en", "en", metadataJSON, "test-run")
	if err != nil {
		t.Fatalf("store.NewVideo: %v", err)
	}
	return item
}
