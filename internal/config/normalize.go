package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeScraper()
	c.normalizeFetch()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.BuildDir, err = expandPath(c.Paths.BuildDir); err != nil {
		return fmt.Errorf("paths.build_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeScraper() {
	topics := make([]string, 0, len(c.Scraper.Topics))
	for _, topic := range c.Scraper.Topics {
		if trimmed := strings.TrimSpace(topic); trimmed != "" {
			topics = append(topics, trimmed)
		}
	}
	c.Scraper.Topics = topics
	c.Scraper.Playlist = strings.TrimSpace(c.Scraper.Playlist)

	languages := make([]string, 0, len(c.Scraper.Languages))
	seen := make(map[string]struct{}, len(c.Scraper.Languages))
	for _, lang := range c.Scraper.Languages {
		normalized := strings.ToLower(strings.TrimSpace(lang))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		languages = append(languages, normalized)
	}
	c.Scraper.Languages = languages

	c.Scraper.Subtitles = strings.ToLower(strings.TrimSpace(c.Scraper.Subtitles))
	if c.Scraper.Subtitles == "" {
		c.Scraper.Subtitles = defaultSubtitles
	}
	if c.Scraper.Threads <= 0 {
		c.Scraper.Threads = defaultThreads
	}
	c.Scraper.VideoFormat = strings.ToLower(strings.TrimSpace(c.Scraper.VideoFormat))
	if c.Scraper.VideoFormat == "" {
		c.Scraper.VideoFormat = defaultVideoFormat
	}
	c.Scraper.Title = strings.TrimSpace(c.Scraper.Title)
	c.Scraper.Description = strings.TrimSpace(c.Scraper.Description)
}

func (c *Config) normalizeFetch() {
	if c.Fetch.RequestTimeout <= 0 {
		c.Fetch.RequestTimeout = defaultRequestTimeout
	}
	c.Fetch.UserAgent = strings.TrimSpace(c.Fetch.UserAgent)
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = defaultUserAgent
	}
	c.Fetch.BaseURL = strings.TrimRight(strings.TrimSpace(c.Fetch.BaseURL), "/")
	if c.Fetch.BaseURL == "" {
		c.Fetch.BaseURL = defaultBaseURL
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
