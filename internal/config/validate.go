package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateScraper(); err != nil {
		return err
	}
	if err := c.validateFetch(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateScraper() error {
	if len(c.Scraper.Topics) == 0 && c.Scraper.Playlist == "" {
		return errors.New("scraper.topics or scraper.playlist must be set")
	}
	if len(c.Scraper.Topics) > 0 && c.Scraper.Playlist != "" {
		return errors.New("scraper.topics and scraper.playlist are mutually exclusive")
	}
	switch c.Scraper.Subtitles {
	case SettingAll, SettingMatching, SettingNone:
	default:
		for _, code := range strings.Split(c.Scraper.Subtitles, ",") {
			if strings.TrimSpace(code) == "" {
				return fmt.Errorf("scraper.subtitles has an empty language code in %q", c.Scraper.Subtitles)
			}
		}
	}
	if c.Scraper.VideoFormat != "webm" && c.Scraper.VideoFormat != "mp4" {
		return fmt.Errorf("scraper.video_format must be webm or mp4, got %q", c.Scraper.VideoFormat)
	}
	if c.Scraper.Threads > 16 {
		return errors.New("scraper.threads must be 16 or fewer; the source rate limits aggressive crawls")
	}
	return nil
}

func (c *Config) validateFetch() error {
	if !strings.HasPrefix(c.Fetch.BaseURL, "http://") && !strings.HasPrefix(c.Fetch.BaseURL, "https://") {
		return fmt.Errorf("fetch.base_url must be an http(s) URL, got %q", c.Fetch.BaseURL)
	}
	return nil
}

// SubtitleCodes returns the explicit language codes when scraper.subtitles is
// a comma list, or nil for the all/matching/none keywords.
func (c *Config) SubtitleCodes() []string {
	switch c.Scraper.Subtitles {
	case SettingAll, SettingMatching, SettingNone:
		return nil
	}
	codes := make([]string, 0, 4)
	for _, code := range strings.Split(c.Scraper.Subtitles, ",") {
		if trimmed := strings.ToLower(strings.TrimSpace(code)); trimmed != "" {
			codes = append(codes, trimmed)
		}
	}
	return codes
}
