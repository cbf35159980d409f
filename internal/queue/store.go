package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/openzim/ted/internal/config"
)

// ErrNoPending signals an empty queue to claiming workers.
var ErrNoPending = errors.New("no pending items")

// Store manages queue persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the queue database and applies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(filepath.Join(cfg.Paths.StateDir, "queue.db"))
}

// OpenPath connects to the queue database at an explicit location.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

const itemColumns = "id, video_id, title, status, page_language, audio_language, metadata_json, subtitles_json, error_message, run_id, created_at, updated_at"

// NewVideo inserts a freshly extracted catalog video awaiting processing.
// Re-inserting a known video ID is a no-op returning the stored item, which
// keeps repeated runs cheap.
func (s *Store) NewVideo(ctx context.Context, videoID, title, pageLang, audioLang, metadataJSON, runID string) (*Item, error) {
	if videoID == "" {
		return nil, errors.New("empty video id")
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO videos (
            video_id, title, status, page_language, audio_language,
            metadata_json, run_id, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(video_id) DO NOTHING`,
		videoID,
		title,
		StatusPending,
		pageLang,
		audioLang,
		metadataJSON,
		runID,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert video: %w", err)
	}

	return s.GetByVideoID(ctx, videoID)
}

// GetByVideoID fetches an item by its catalog video identifier.
func (s *Store) GetByVideoID(ctx context.Context, videoID string) (*Item, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+itemColumns+" FROM videos WHERE video_id = ?", videoID)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return item, err
}

// List returns all items ordered by insertion.
func (s *Store) List(ctx context.Context) ([]*Item, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+itemColumns+" FROM videos ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListByStatus returns items currently in the given status.
func (s *Store) ListByStatus(ctx context.Context, status Status) ([]*Item, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+itemColumns+" FROM videos WHERE status = ? ORDER BY id", status)
	if err != nil {
		return nil, fmt.Errorf("list videos by status: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Claim atomically moves the oldest item in `from` to `to` and returns it.
// Returns ErrNoPending when nothing is waiting.
func (s *Store) Claim(ctx context.Context, from, to Status) (*Item, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin claim tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx,
		"SELECT "+itemColumns+" FROM videos WHERE status = ? ORDER BY id LIMIT 1", from)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoPending
	}
	if err != nil {
		return nil, err
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := tx.ExecContext(ctx,
		"UPDATE videos SET status = ?, updated_at = ? WHERE id = ? AND status = ?",
		to, timestamp, item.ID, from); err != nil {
		return nil, fmt.Errorf("claim video %s: %w", item.VideoID, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit claim: %w", err)
	}

	item.Status = to
	return item, nil
}

// SetStatus transitions an item and clears any stale error message when the
// new status is not a failure.
func (s *Store) SetStatus(ctx context.Context, id int64, status Status) error {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	errClause := ", error_message = NULL"
	if status == StatusFailed || status == StatusSkipped {
		errClause = ""
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE videos SET status = ?, updated_at = ?"+errClause+" WHERE id = ?",
		status, timestamp, id)
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set status rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("no item with id %d", id)
	}
	return nil
}

// SetFailure marks an item failed or skipped with the triggering error.
func (s *Store) SetFailure(ctx context.Context, id int64, status Status, message string) error {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx,
		"UPDATE videos SET status = ?, error_message = ?, updated_at = ? WHERE id = ?",
		status, message, timestamp, id); err != nil {
		return fmt.Errorf("set failure: %w", err)
	}
	return nil
}

// SetSubtitles records the final per-video subtitle language list. Languages
// whose download failed must already be filtered out by the caller.
func (s *Store) SetSubtitles(ctx context.Context, id int64, subtitlesJSON string) error {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx,
		"UPDATE videos SET subtitles_json = ?, updated_at = ? WHERE id = ?",
		subtitlesJSON, timestamp, id); err != nil {
		return fmt.Errorf("set subtitles: %w", err)
	}
	return nil
}

// ResetProcessing returns any in-flight items to their pre-stage status.
// Called at startup so a crashed run does not strand videos.
func (s *Store) ResetProcessing(ctx context.Context) error {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	transitions := []struct {
		from Status
		to   Status
	}{
		{StatusDownloading, StatusPending},
		{StatusSubtitling, StatusDownloaded},
	}
	for _, tr := range transitions {
		if _, err := s.db.ExecContext(ctx,
			"UPDATE videos SET status = ?, updated_at = ? WHERE status = ?",
			tr.to, timestamp, tr.from); err != nil {
			return fmt.Errorf("reset %s: %w", tr.from, err)
		}
	}
	return nil
}

// Clear removes every item. Used by the queue clear command.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM videos"); err != nil {
		return fmt.Errorf("clear queue: %w", err)
	}
	return nil
}

// Stats reports queue composition.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT status, COUNT(1) FROM videos GROUP BY status")
	if err != nil {
		return Stats{}, fmt.Errorf("queue stats: %w", err)
	}
	defer rows.Close()

	stats := Stats{ByStatus: make(map[Status]int, len(allStatuses))}
	for rows.Next() {
		var raw string
		var count int
		if err := rows.Scan(&raw, &count); err != nil {
			return Stats{}, fmt.Errorf("scan stats: %w", err)
		}
		status, ok := ParseStatus(raw)
		if !ok {
			continue
		}
		stats.ByStatus[status] = count
		stats.Total += count
	}
	return stats, rows.Err()
}

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id            int64
		videoID       string
		title         sql.NullString
		statusStr     string
		pageLanguage  sql.NullString
		audioLanguage sql.NullString
		metadata      sql.NullString
		subtitles     sql.NullString
		errorMessage  sql.NullString
		runID         sql.NullString
		createdRaw    string
		updatedRaw    string
	)

	if err := scanner.Scan(
		&id,
		&videoID,
		&title,
		&statusStr,
		&pageLanguage,
		&audioLanguage,
		&metadata,
		&subtitles,
		&errorMessage,
		&runID,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	status, ok := ParseStatus(statusStr)
	if !ok {
		return nil, fmt.Errorf("unknown status %q for video %s", statusStr, videoID)
	}

	item := &Item{
		ID:            id,
		VideoID:       videoID,
		Title:         title.String,
		Status:        status,
		PageLanguage:  pageLanguage.String,
		AudioLanguage: audioLanguage.String,
		MetadataJSON:  metadata.String,
		SubtitlesJSON: subtitles.String,
		ErrorMessage:  errorMessage.String,
		RunID:         runID.String,
	}
	item.CreatedAt = parseTimestamp(createdRaw)
	item.UpdatedAt = parseTimestamp(updatedRaw)
	return item, nil
}

func parseTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return ts
	}
	return time.Time{}
}
