package subtitles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/openzim/ted/internal/catalog"
	"github.com/openzim/ted/internal/fetch"
	"github.com/openzim/ted/internal/logging"
	"github.com/openzim/ted/internal/services"
	"github.com/openzim/ted/internal/webvtt"
)

const (
	// languageThrottle spaces caption fetches within one video.
	languageThrottle = 500 * time.Millisecond

	subsDirName = "subs"
)

// Result reports the outcome of one video's subtitle processing.
type Result struct {
	// Tracks are the languages whose caption file exists on disk. Languages
	// that turned out unavailable are dropped; callers must persist this
	// list instead of the originally selected one.
	Tracks []catalog.SubtitleTrack
	// Skipped is true when the subs directory already existed and nothing
	// was fetched.
	Skipped bool
}

// Pipeline downloads and converts caption payloads for one video at a time.
type Pipeline struct {
	client   *fetch.Client
	offsetMS int64
	throttle time.Duration
	logger   *slog.Logger
}

// PipelineOption customizes a pipeline.
type PipelineOption func(*Pipeline)

// WithOffset overrides the caption timestamp offset.
func WithOffset(offsetMS int64) PipelineOption {
	return func(p *Pipeline) { p.offsetMS = offsetMS }
}

// WithThrottle overrides the inter-language pause. Tests shrink it.
func WithThrottle(throttle time.Duration) PipelineOption {
	return func(p *Pipeline) {
		if throttle >= 0 {
			p.throttle = throttle
		}
	}
}

// WithLogger attaches a logger for per-language diagnostics.
func WithLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logging.NewComponentLogger(logger, "subtitles")
		}
	}
}

// NewPipeline constructs a subtitle pipeline over the shared fetch client.
func NewPipeline(client *fetch.Client, opts ...PipelineOption) *Pipeline {
	pipeline := &Pipeline{
		client:   client,
		offsetMS: webvtt.DefaultOffsetMS,
		throttle: languageThrottle,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(pipeline)
	}
	return pipeline
}

// ProcessVideo fetches every selected track for a video, converts each to
// WebVTT, and writes subs_<code>.vtt files under <videoDir>/subs. Languages
// the source turns out not to have are dropped from the result. A subs
// directory left by an earlier run short-circuits the whole video.
func (p *Pipeline) ProcessVideo(ctx context.Context, videoID, videoDir string, tracks []catalog.SubtitleTrack) (Result, error) {
	if len(tracks) == 0 {
		return Result{}, nil
	}

	subsDir := filepath.Join(videoDir, subsDirName)
	if _, err := os.Stat(subsDir); err == nil {
		// An earlier run may have been interrupted mid-video, so the result
		// only reports languages whose file actually made it to disk.
		written := filterWritten(subsDir, tracks)
		p.logger.Debug("subtitles already present",
			logging.String(logging.FieldVideoID, videoID),
			logging.String("directory", subsDir),
			logging.Int("written", len(written)),
		)
		return Result{Tracks: written, Skipped: true}, nil
	}
	if err := os.MkdirAll(subsDir, 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrTransient, "subtitles", "prepare",
			fmt.Sprintf("create %s", subsDir), err)
	}

	valid := make([]catalog.SubtitleTrack, 0, len(tracks))
	for _, track := range tracks {
		// Fixed pause before every language so one video's captions do not
		// arrive as a burst.
		if err := sleepContext(ctx, p.throttle); err != nil {
			return Result{}, err
		}

		document, err := p.fetchTrack(ctx, track)
		if err != nil {
			if errors.Is(err, services.ErrUnavailable) {
				p.logger.Debug("no captions in language",
					logging.String(logging.FieldVideoID, videoID),
					logging.String(logging.FieldLanguage, track.LanguageCode),
					logging.Error(err),
				)
				continue
			}
			return Result{}, err
		}

		path := filepath.Join(subsDir, trackFilename(track))
		if err := os.WriteFile(path, []byte(document), 0o644); err != nil {
			return Result{}, services.Wrap(services.ErrTransient, "subtitles", "persist",
				fmt.Sprintf("write %s", path), err)
		}
		valid = append(valid, track)
	}

	p.logger.Info("subtitles processed",
		logging.String(logging.FieldVideoID, videoID),
		logging.Int("selected", len(tracks)),
		logging.Int("written", len(valid)),
	)
	return Result{Tracks: valid}, nil
}

// fetchTrack returns the converted document. A 404 or an unparseable body is
// tagged services.ErrUnavailable, the definitive-absent marker callers skip
// on; only an exhausted retry budget fails the video.
func (p *Pipeline) fetchTrack(ctx context.Context, track catalog.SubtitleTrack) (string, error) {
	resp, err := p.client.Get(ctx, track.Link)
	if err != nil {
		if errors.Is(err, fetch.ErrNotFound) {
			return "", services.Wrap(services.ErrUnavailable, "subtitles", "fetch",
				track.LanguageCode, err)
		}
		if fetch.IsExhausted(err) {
			return "", services.Wrap(services.ErrExhausted, "subtitles", "fetch",
				track.LanguageCode, err)
		}
		return "", err
	}

	var payload webvtt.Payload
	if err := resp.JSON(&payload); err != nil {
		return "", services.Wrap(services.ErrUnavailable, "subtitles", "decode",
			track.LanguageCode, err)
	}

	return webvtt.Convert(payload, p.offsetMS), nil
}

func trackFilename(track catalog.SubtitleTrack) string {
	return "subs_" + track.LanguageCode + ".vtt"
}

func filterWritten(subsDir string, tracks []catalog.SubtitleTrack) []catalog.SubtitleTrack {
	written := make([]catalog.SubtitleTrack, 0, len(tracks))
	for _, track := range tracks {
		if _, err := os.Stat(filepath.Join(subsDir, trackFilename(track))); err == nil {
			written = append(written, track)
		}
	}
	return written
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
