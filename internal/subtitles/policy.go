package subtitles

import (
	"strings"

	"github.com/openzim/ted/internal/catalog"
	"github.com/openzim/ted/internal/config"
	"github.com/openzim/ted/internal/language"
)

// Policy decides, per video, which of the available subtitle languages to
// download. Subtitles and audio language are independent axes: a talk spoken
// in one language may carry captions in dozens.
type Policy struct {
	// Setting is the global subtitle setting: all, matching, none, or a
	// comma list (already split into ExplicitCodes).
	Setting string
	// ExplicitCodes holds the parsed comma-list codes; nil for keywords.
	ExplicitCodes []string
	// SourceLanguages are the user-requested audio/page languages.
	SourceLanguages []string
	// SubtitlesEnough keeps a video when only its captions, not its audio,
	// match a requested language.
	SubtitlesEnough bool
	// TopicsMode is true when crawling topics rather than a playlist.
	TopicsMode bool
	// BaseURL is the source site root used to build caption links.
	BaseURL string
}

// NewPolicy builds the selection policy from the scraper configuration.
func NewPolicy(cfg *config.Config) Policy {
	return Policy{
		Setting:         cfg.Scraper.Subtitles,
		ExplicitCodes:   cfg.SubtitleCodes(),
		SourceLanguages: language.ToSourceCodes(cfg.Scraper.Languages),
		SubtitlesEnough: cfg.Scraper.SubtitlesEnough,
		TopicsMode:      len(cfg.Scraper.Topics) > 0,
		BaseURL:         cfg.Fetch.BaseURL,
	}
}

// Select applies the decision table to one video's available subtitle
// languages and returns the tracks to download, in source order.
func (p Policy) Select(video *catalog.Video) []catalog.SubtitleTrack {
	selected := p.pick(video)

	tracks := make([]catalog.SubtitleTrack, 0, len(selected))
	for _, lang := range selected {
		tracks = append(tracks, catalog.SubtitleTrack{
			LanguageCode: lang.LanguageCode,
			LanguageName: language.DisplayName(lang.LanguageCode, lang.LanguageName),
			Link:         p.captionLink(video.ID, lang.LanguageCode),
		})
	}
	return tracks
}

func (p Policy) pick(video *catalog.Video) []catalog.TrackLanguage {
	available := video.AvailableSubtitles

	switch {
	case p.Setting == config.SettingAll,
		len(p.SourceLanguages) == 0 && p.TopicsMode && p.Setting != config.SettingNone:
		return available

	case p.Setting == config.SettingMatching,
		p.SubtitlesEnough && p.Setting == config.SettingNone && video.PageLanguage != video.AudioLanguage:
		return filterLanguages(available, func(code string) bool {
			return code == video.PageLanguage
		})

	case len(p.ExplicitCodes) > 0:
		if !p.SubtitlesEnough && p.TopicsMode {
			return filterLanguages(available, func(code string) bool {
				return language.Contains(p.ExplicitCodes, code)
			})
		}
		return filterLanguages(available, func(code string) bool {
			return language.Contains(p.ExplicitCodes, code) || language.Contains(p.SourceLanguages, code)
		})
	}

	return nil
}

func (p Policy) captionLink(videoID, code string) string {
	return strings.TrimRight(p.BaseURL, "/") + "/talks/subtitles/id/" + videoID + "/lang/" + code
}

func filterLanguages(langs []catalog.TrackLanguage, keep func(code string) bool) []catalog.TrackLanguage {
	var out []catalog.TrackLanguage
	for _, lang := range langs {
		if keep(lang.LanguageCode) {
			out = append(out, lang)
		}
	}
	return out
}
