package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/openzim/ted/internal/assets"
	"github.com/openzim/ted/internal/catalog"
	"github.com/openzim/ted/internal/config"
	"github.com/openzim/ted/internal/fetch"
	"github.com/openzim/ted/internal/logging"
	"github.com/openzim/ted/internal/queue"
	"github.com/openzim/ted/internal/stage"
	"github.com/openzim/ted/internal/subtitles"
	"github.com/openzim/ted/internal/workflow"
)

func newScrapeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Crawl the catalog, download media and subtitles, write the datafile",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runScrape(runCtx, cfg)
		},
	}
}

func runScrape(ctx context.Context, cfg *config.Config) error {
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return err
	}

	// One run per build directory; a second scraper would corrupt the tree.
	lock := flock.New(filepath.Join(cfg.Paths.BuildDir, "ted2zim.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire build lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("build directory %s is in use by another run", cfg.Paths.BuildDir)
	}
	defer func() { _ = lock.Unlock() }()

	runID := uuid.NewString()
	logger = logger.With(logging.String("run_id", runID))

	store, err := queue.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	client := newFetchClient(cfg, fetch.WithLogger(logger))

	videos, err := crawlCatalog(ctx, cfg, client, logger)
	if err != nil {
		return err
	}
	if err := enqueueVideos(ctx, store, videos, runID); err != nil {
		return err
	}
	logger.Info("catalog crawled", logging.Int("videos", len(videos)))

	manager := workflow.NewManager(cfg, store, logger,
		assets.NewStage(cfg, client, logger),
		subtitles.NewStage(cfg, client, store, logger),
	)
	summary, err := manager.Run(ctx)
	if err != nil {
		return err
	}

	if err := writeDatafile(ctx, cfg, store, videos); err != nil {
		return err
	}

	logger.Info("scrape finished",
		logging.Int("completed", summary.Completed),
		logging.Int("failed", summary.Failed),
		logging.Int("skipped", summary.Skipped),
	)
	return nil
}

func crawlCatalog(ctx context.Context, cfg *config.Config, client *fetch.Client, logger *slog.Logger) ([]*catalog.Video, error) {
	crawler := catalog.NewCrawler(client, catalog.CrawlerOptions{
		BaseURL:         cfg.Fetch.BaseURL,
		SourceLanguages: catalog.NormalizeSourceLanguages(cfg.Scraper.Languages),
		SubtitlesEnough: cfg.Scraper.SubtitlesEnough,
		TopicsMode:      len(cfg.Scraper.Topics) > 0,
		Logger:          logger,
	})

	if len(cfg.Scraper.Topics) > 0 {
		total := 0
		for _, topic := range cfg.Scraper.Topics {
			count, err := crawler.CrawlTopic(ctx, topic)
			if err != nil {
				return nil, err
			}
			total += count
		}
		if total == 0 {
			return nil, fmt.Errorf("%w: topics %v", catalog.ErrNoVideos, cfg.Scraper.Topics)
		}
	} else {
		title, description, err := crawler.CrawlPlaylist(ctx, cfg.Scraper.Playlist)
		if err != nil {
			return nil, err
		}
		if cfg.Scraper.Title == "" {
			cfg.Scraper.Title = title
		}
		if cfg.Scraper.Description == "" {
			cfg.Scraper.Description = description
		}
	}

	videos := crawler.Videos()
	for _, video := range videos {
		video.ApplyDefaultLanguage()
	}
	return videos, nil
}

func enqueueVideos(ctx context.Context, store *queue.Store, videos []*catalog.Video, runID string) error {
	for _, video := range videos {
		metadata, err := stage.EncodeVideo(video)
		if err != nil {
			return err
		}
		title := catalog.MainTitle(video.Titles, catalog.DefaultLang)
		if _, err := store.NewVideo(ctx, video.ID, title, video.PageLanguage, video.AudioLanguage, metadata, runID); err != nil {
			return err
		}
	}
	return nil
}

// writeDatafile splices the persisted subtitle lists back into the crawled
// videos and renders the datafile from the completed ones only.
func writeDatafile(ctx context.Context, cfg *config.Config, store *queue.Store, videos []*catalog.Video) error {
	items, err := store.List(ctx)
	if err != nil {
		return err
	}
	byID := make(map[string]*queue.Item, len(items))
	for _, item := range items {
		byID[item.VideoID] = item
	}

	final := make([]*catalog.Video, 0, len(videos))
	for _, video := range videos {
		item, ok := byID[video.ID]
		if !ok || item.Status != queue.StatusCompleted {
			continue
		}
		tracks, err := stage.DecodeTracks(item)
		if err != nil {
			return err
		}
		video.Subtitles = tracks
		final = append(final, video)
	}

	return catalog.GenerateDatafile(final, filepath.Join(cfg.Paths.BuildDir, "assets", "data.js"))
}
