package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a queue item.
type Status string

const (
	StatusPending     Status = "pending"
	StatusDownloading Status = "downloading"
	StatusDownloaded  Status = "downloaded"
	StatusSubtitling  Status = "subtitling"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
	StatusSkipped     Status = "skipped"
)

var allStatuses = []Status{
	StatusPending,
	StatusDownloading,
	StatusDownloaded,
	StatusSubtitling,
	StatusCompleted,
	StatusFailed,
	StatusSkipped,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusDownloading: {},
	StatusSubtitling:  {},
}

// ParseStatus validates a raw status string.
func ParseStatus(raw string) (Status, bool) {
	status := Status(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := statusSet[status]
	return status, ok
}

// IsTerminal reports whether an item in this status is done for the run.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusSkipped:
		return true
	}
	return false
}

// IsProcessing reports whether the status marks an in-flight stage.
func (s Status) IsProcessing() bool {
	_, ok := processingStatuses[s]
	return ok
}

// Item is one catalog video tracked through the pipeline.
type Item struct {
	ID            int64
	VideoID       string
	Title         string
	Status        Status
	PageLanguage  string
	AudioLanguage string
	MetadataJSON  string
	SubtitlesJSON string
	ErrorMessage  string
	RunID         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Stats summarizes queue composition for status displays.
type Stats struct {
	Total    int
	ByStatus map[Status]int
}
