package queue

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenPath(filepath.Join(t.TempDir(), "queue.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewVideoIsIdempotent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first, err := store.NewVideo(ctx, "1907", "The talk", "en", "en", `{"id":"1907"}`, "run-a")
	if err != nil {
		t.Fatalf("NewVideo: %v", err)
	}
	if first.Status != StatusPending {
		t.Fatalf("status = %s, want pending", first.Status)
	}

	again, err := store.NewVideo(ctx, "1907", "Renamed", "fr", "fr", `{}`, "run-b")
	if err != nil {
		t.Fatalf("NewVideo again: %v", err)
	}
	if again.ID != first.ID {
		t.Errorf("second insert created new row: id %d vs %d", again.ID, first.ID)
	}
	if again.Title != "The talk" {
		t.Errorf("second insert overwrote title: %q", again.Title)
	}
}

func TestClaimTransitionsOldestPending(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"1", "2", "3"} {
		if _, err := store.NewVideo(ctx, id, "t"+id, "en", "en", "{}", "run"); err != nil {
			t.Fatalf("NewVideo %s: %v", id, err)
		}
	}

	item, err := store.Claim(ctx, StatusPending, StatusDownloading)
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if item.VideoID != "1" {
		t.Errorf("claimed %s, want oldest (1)", item.VideoID)
	}
	if item.Status != StatusDownloading {
		t.Errorf("claimed status = %s, want downloading", item.Status)
	}

	pending, err := store.ListByStatus(ctx, StatusPending)
	if err != nil {
		t.Fatalf("ListByStatus: %v", err)
	}
	if len(pending) != 2 {
		t.Errorf("pending after claim = %d, want 2", len(pending))
	}
}

func TestClaimEmptyQueue(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.Claim(context.Background(), StatusPending, StatusDownloading); !errors.Is(err, ErrNoPending) {
		t.Fatalf("Claim on empty queue = %v, want ErrNoPending", err)
	}
}

func TestSetFailureAndStats(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	item, err := store.NewVideo(ctx, "42", "t", "en", "en", "{}", "run")
	if err != nil {
		t.Fatalf("NewVideo: %v", err)
	}
	if err := store.SetFailure(ctx, item.ID, StatusFailed, "retries exhausted: subtitles"); err != nil {
		t.Fatalf("SetFailure: %v", err)
	}

	got, err := store.GetByVideoID(ctx, "42")
	if err != nil {
		t.Fatalf("GetByVideoID: %v", err)
	}
	if got.Status != StatusFailed || got.ErrorMessage == "" {
		t.Errorf("item = %+v, want failed with message", got)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 1 || stats.ByStatus[StatusFailed] != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestResetProcessing(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	item, err := store.NewVideo(ctx, "9", "t", "en", "en", "{}", "run")
	if err != nil {
		t.Fatalf("NewVideo: %v", err)
	}
	if err := store.SetStatus(ctx, item.ID, StatusSubtitling); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if err := store.ResetProcessing(ctx); err != nil {
		t.Fatalf("ResetProcessing: %v", err)
	}
	got, err := store.GetByVideoID(ctx, "9")
	if err != nil {
		t.Fatalf("GetByVideoID: %v", err)
	}
	if got.Status != StatusDownloaded {
		t.Errorf("status after reset = %s, want downloaded", got.Status)
	}
}

func TestSetSubtitles(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	item, err := store.NewVideo(ctx, "7", "t", "en", "en", "{}", "run")
	if err != nil {
		t.Fatalf("NewVideo: %v", err)
	}
	payload := `[{"languageCode":"en","languageName":"English"}]`
	if err := store.SetSubtitles(ctx, item.ID, payload); err != nil {
		t.Fatalf("SetSubtitles: %v", err)
	}
	got, err := store.GetByVideoID(ctx, "7")
	if err != nil {
		t.Fatalf("GetByVideoID: %v", err)
	}
	if got.SubtitlesJSON != payload {
		t.Errorf("subtitles json = %q", got.SubtitlesJSON)
	}
}
