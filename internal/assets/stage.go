package assets

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/openzim/ted/internal/config"
	"github.com/openzim/ted/internal/fetch"
	"github.com/openzim/ted/internal/logging"
	"github.com/openzim/ted/internal/queue"
	"github.com/openzim/ted/internal/stage"
)

// Stage downloads a queue item's media assets as a workflow step.
type Stage struct {
	downloader *Downloader
	videosDir  string
	logger     *slog.Logger
}

// NewStage wires the asset downloader into a workflow stage handler.
func NewStage(cfg *config.Config, client *fetch.Client, logger *slog.Logger) *Stage {
	return &Stage{
		downloader: NewDownloader(client, logger),
		videosDir:  cfg.VideosDir(),
		logger:     logging.NewComponentLogger(logger, "download"),
	}
}

// Prepare validates that the item carries usable catalog metadata.
func (s *Stage) Prepare(_ context.Context, item *queue.Item) error {
	_, err := stage.DecodeVideo(item)
	return err
}

// Execute downloads the video, thumbnail, and speaker portrait.
func (s *Stage) Execute(ctx context.Context, item *queue.Item) error {
	video, err := stage.DecodeVideo(item)
	if err != nil {
		return err
	}
	return s.downloader.VideoAssets(ctx, video, filepath.Join(s.videosDir, video.ID))
}

// HealthCheck reports stage readiness.
func (s *Stage) HealthCheck(context.Context) stage.Health {
	if s.downloader == nil {
		return stage.Unhealthy("download", "downloader not configured")
	}
	return stage.Healthy("download")
}
