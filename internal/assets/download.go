package assets

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/openzim/ted/internal/catalog"
	"github.com/openzim/ted/internal/fetch"
	"github.com/openzim/ted/internal/logging"
	"github.com/openzim/ted/internal/services"
)

// Downloader saves a video's media assets into its build directory. Files are
// stored as served; re-encoding happens elsewhere.
type Downloader struct {
	client *fetch.Client
	logger *slog.Logger
}

// NewDownloader constructs an asset downloader over the shared fetch client.
func NewDownloader(client *fetch.Client, logger *slog.Logger) *Downloader {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Downloader{
		client: client,
		logger: logging.NewComponentLogger(logger, "assets"),
	}
}

// VideoAssets downloads the talk media, thumbnail, and speaker portrait into
// videoDir. Assets already on disk are kept, so interrupted runs resume
// where they stopped.
func (d *Downloader) VideoAssets(ctx context.Context, video *catalog.Video, videoDir string) error {
	if err := os.MkdirAll(videoDir, 0o755); err != nil {
		return services.Wrap(services.ErrTransient, "download", "prepare",
			fmt.Sprintf("create %s", videoDir), err)
	}

	targets := []struct {
		url      string
		filename string
		required bool
	}{
		{video.VideoLink, "video.mp4", true},
		{video.Thumbnail, "thumbnail" + urlExtension(video.Thumbnail, ".jpg"), false},
		{video.SpeakerPicture, "speaker" + urlExtension(video.SpeakerPicture, ".jpg"), false},
	}

	for _, target := range targets {
		if target.url == "" || target.url == "-" {
			continue
		}
		if err := d.download(ctx, video.ID, target.url, filepath.Join(videoDir, target.filename)); err != nil {
			if target.required {
				return err
			}
			d.logger.Warn("optional asset unavailable",
				logging.String(logging.FieldVideoID, video.ID),
				logging.String("url", target.url),
				logging.Error(err),
			)
		}
	}
	return nil
}

func (d *Downloader) download(ctx context.Context, videoID, assetURL, destination string) error {
	if _, err := os.Stat(destination); err == nil {
		d.logger.Debug("asset already downloaded",
			logging.String(logging.FieldVideoID, videoID),
			logging.String("path", destination),
		)
		return nil
	}

	d.logger.Debug("downloading asset",
		logging.String(logging.FieldVideoID, videoID),
		logging.String("url", assetURL),
	)
	if err := d.client.Download(ctx, assetURL, destination); err != nil {
		if fetch.IsExhausted(err) {
			return services.Wrap(services.ErrExhausted, "download", "fetch", assetURL, err)
		}
		return err
	}
	return nil
}

// urlExtension extracts the file extension from a URL path, ignoring query
// parameters. CDN links often carry resize parameters after the name.
func urlExtension(rawURL, fallback string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fallback
	}
	if ext := path.Ext(parsed.Path); ext != "" {
		return ext
	}
	return fallback
}
