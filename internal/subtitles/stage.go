package subtitles

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

// Stage runs subtitle selection and download for queue items.
type Stage struct {
	policy    Policy
	pipeline  *Pipeline
	store     *queue.Store
	videosDir string
	logger    *slog.Logger
}

// NewStage wires the selection policy and download pipeline into a workflow
// stage handler.
func NewStage(cfg *config.Config, client *fetch.Client, store *queue.Store, logger *slog.Logger, opts ...PipelineOption) *Stage {
	opts = append([]PipelineOption{WithLogger(logger)}, opts...)
	return &Stage{
		policy:    NewPolicy(cfg),
		pipeline:  NewPipeline(client, opts...),
		store:     store,
		videosDir: cfg.VideosDir(),
		logger:    logging.NewComponentLogger(logger, "subtitles"),
	}
}

// Prepare selects the subtitle languages for the item's video and persists
// the selection so the execute step and later runs see the same plan.
func (s *Stage) Prepare(ctx context.Context, item *queue.Item) error {
	video, err := stage.DecodeVideo(item)
	if err != nil {
		return err
	}

	tracks := s.policy.Select(video)
	encoded, err := stage.EncodeTracks(tracks)
	if err != nil {
		return err
	}
	if err := s.store.SetSubtitles(ctx, item.ID, encoded); err != nil {
		return err
	}
	item.SubtitlesJSON = encoded

	s.logger.Debug("subtitle languages selected",
		logging.String(logging.FieldVideoID, item.VideoID),
		logging.Int("languages", len(tracks)),
	)
	return nil
}

// Execute downloads the selected tracks and persists the filtered list of
// languages whose caption file actually exists.
func (s *Stage) Execute(ctx context.Context, item *queue.Item) error {
	tracks, err := stage.DecodeTracks(item)
	if err != nil {
		return err
	}

	videoDir := filepath.Join(s.videosDir, item.VideoID)
	result, err := s.pipeline.ProcessVideo(ctx, item.VideoID, videoDir, tracks)
	if err != nil {
		return err
	}

	// Persist the filtered list even on a skip: a short-circuited video may
	// have fewer files on disk than languages selected.
	encoded, err := stage.EncodeTracks(result.Tracks)
	if err != nil {
		return err
	}
	if err := s.store.SetSubtitles(ctx, item.ID, encoded); err != nil {
		return err
	}
	item.SubtitlesJSON = encoded
	return nil
}

// HealthCheck reports stage readiness.
func (s *Stage) HealthCheck(context.Context) stage.Health {
	if s.store == nil || s.pipeline == nil {
		return stage.Unhealthy("subtitles", "store or pipeline not configured")
	}
	return stage.Healthy("subtitles")
}
