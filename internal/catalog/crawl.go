package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/openzim/ted/internal/fetch"
	"github.com/openzim/ted/internal/language"
	"github.com/openzim/ted/internal/logging"
)

var talkLinkPattern = regexp.MustCompile(`href="(/talks/[a-z0-9_]+)"`)

// ErrNoVideos reports a crawl target that produced nothing: a wrong topic
// slug or playlist identifier.
var ErrNoVideos = errors.New("no videos found")

// Crawler walks topic search results or a playlist and extracts every talk.
type Crawler struct {
	client          *fetch.Client
	baseURL         string
	sourceLanguages []string
	subtitlesEnough bool
	topicsMode      bool
	logger          *slog.Logger

	visited map[string]struct{}
	order   []string
	byID    map[string]*Video
}

// CrawlerOptions configures a crawl.
type CrawlerOptions struct {
	BaseURL         string
	SourceLanguages []string
	SubtitlesEnough bool
	TopicsMode      bool
	Logger          *slog.Logger
}

// NewCrawler constructs a crawler over the shared fetch client.
func NewCrawler(client *fetch.Client, opts CrawlerOptions) *Crawler {
	return &Crawler{
		client:          client,
		baseURL:         strings.TrimRight(opts.BaseURL, "/"),
		sourceLanguages: opts.SourceLanguages,
		subtitlesEnough: opts.SubtitlesEnough,
		topicsMode:      opts.TopicsMode,
		logger:          logging.NewComponentLogger(opts.Logger, "catalog"),
		visited:         make(map[string]struct{}),
		byID:            make(map[string]*Video),
	}
}

// Videos returns the crawl result in discovery order.
func (c *Crawler) Videos() []*Video {
	videos := make([]*Video, 0, len(c.order))
	for _, id := range c.order {
		videos = append(videos, c.byID[id])
	}
	return videos
}

// CrawlTopic walks the paged search results for one topic, in every
// requested source language. Returns the number of videos extracted.
func (c *Crawler) CrawlTopic(ctx context.Context, topic string) (int, error) {
	searchURLs := []string{c.baseURL + "/talks?topics%5B%5D=" + url.QueryEscape(topic)}
	if len(c.sourceLanguages) > 0 {
		searchURLs = searchURLs[:0]
		for _, lang := range c.sourceLanguages {
			searchURLs = append(searchURLs,
				c.baseURL+"/talks?topics%5B%5D="+url.QueryEscape(topic)+"&language="+url.QueryEscape(lang))
		}
	}

	total := 0
	for _, searchURL := range searchURLs {
		for page := 1; ; page++ {
			pageURL := fmt.Sprintf("%s&page=%d", searchURL, page)
			c.logger.Debug("crawling search page", logging.String("url", pageURL))
			resp, err := c.client.Get(ctx, pageURL)
			if err != nil {
				if errors.Is(err, fetch.ErrNotFound) {
					break
				}
				return total, err
			}
			links := extractTalkLinks(resp.Text())
			// Some result pages clamp past-the-end page numbers and serve
			// the last page again. A page with no unvisited talks ends the
			// scan, not just an empty one.
			newLinks := 0
			for _, link := range links {
				if _, dup := c.visited[visitKey(c.baseURL+link)]; dup {
					continue
				}
				newLinks++
				extracted, err := c.visitTalk(ctx, c.baseURL+link, "")
				if err != nil {
					return total, err
				}
				if extracted {
					total++
				}
			}
			if newLinks == 0 {
				break
			}
		}
	}
	c.logger.Info("topic crawled", logging.String("topic", topic), logging.Int("videos", total))
	return total, nil
}

// CrawlPlaylist extracts every talk on a playlist page and returns its title
// and description for use as collection metadata.
func (c *Crawler) CrawlPlaylist(ctx context.Context, playlist string) (title, description string, err error) {
	playlistURL := c.baseURL + "/playlists/" + url.PathEscape(playlist)
	c.logger.Debug("crawling playlist", logging.String("url", playlistURL))
	resp, err := c.client.Get(ctx, playlistURL)
	if err != nil {
		return "", "", err
	}
	html := resp.Text()
	title = firstTagText(html, "h1")
	description = firstTagText(html, "p")

	links := extractTalkLinks(html)
	if len(links) == 0 {
		return "", "", fmt.Errorf("%w: playlist %s", ErrNoVideos, playlist)
	}
	for _, link := range links {
		if _, err := c.visitTalk(ctx, c.baseURL+link, ""); err != nil {
			return "", "", err
		}
	}
	return title, description, nil
}

// visitTalk fetches one talk page, extracts its metadata, and merges it into
// the crawl result. When several source languages were requested it also
// visits the page's other language variants to pick up localized metadata.
func (c *Crawler) visitTalk(ctx context.Context, talkURL, wantLang string) (bool, error) {
	key := visitKey(talkURL)
	if _, seen := c.visited[key]; seen {
		return false, nil
	}
	c.visited[key] = struct{}{}

	resp, err := c.client.Get(ctx, talkURL)
	if err != nil {
		if errors.Is(err, fetch.ErrNotFound) {
			c.logger.Warn("talk page missing", logging.String("url", talkURL))
			return false, nil
		}
		return false, err
	}

	video, err := ExtractVideoPage(resp.Text())
	if err != nil {
		c.logger.Warn("skipping talk page", logging.String("url", talkURL), logging.Error(err))
		return false, nil
	}

	if wantLang != "" && video.PageLanguage != wantLang {
		c.logger.Debug("talk not translated yet",
			logging.String("url", talkURL),
			logging.String("language", wantLang),
		)
		return false, nil
	}

	// In topic mode a requested-language crawl only keeps talks actually
	// spoken in that language, unless subtitles alone are enough.
	if !c.subtitlesEnough && c.topicsMode && len(c.sourceLanguages) > 0 &&
		video.AudioLanguage != video.PageLanguage {
		return false, nil
	}

	if existing, ok := c.byID[video.ID]; ok {
		existing.MergeLocalization(video)
		return false, nil
	}
	c.byID[video.ID] = video
	c.order = append(c.order, video.ID)
	c.logger.Debug("extracted talk", logging.String(logging.FieldVideoID, video.ID))

	if len(c.sourceLanguages) > 1 {
		for _, lang := range c.sourceLanguages {
			if lang == video.PageLanguage {
				continue
			}
			langURL := talkURL + "?language=" + url.QueryEscape(lang)
			if _, err := c.visitTalk(ctx, langURL, lang); err != nil {
				return true, err
			}
		}
	}
	return true, nil
}

func extractTalkLinks(html string) []string {
	matches := talkLinkPattern.FindAllStringSubmatch(html, -1)
	links := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, match := range matches {
		link := match[1]
		if _, ok := seen[link]; ok {
			continue
		}
		seen[link] = struct{}{}
		links = append(links, link)
	}
	return links
}

func visitKey(talkURL string) string {
	parsed, err := url.Parse(talkURL)
	if err != nil {
		return talkURL
	}
	lang := parsed.Query().Get("language")
	if lang != "" {
		return parsed.Path + "?language=" + lang
	}
	return parsed.Path
}

func firstTagText(html, tag string) string {
	pattern := regexp.MustCompile(`(?s)<` + tag + `[^>]*>(.*?)</` + tag + `>`)
	match := pattern.FindStringSubmatch(html)
	if match == nil {
		return ""
	}
	return strings.TrimSpace(stripTags(match[1]))
}

var innerTagPattern = regexp.MustCompile(`<[^>]+>`)

func stripTags(fragment string) string {
	return innerTagPattern.ReplaceAllString(fragment, "")
}

// NormalizeSourceLanguages is a convenience for callers wiring config into a
// crawler: it converts the configured queries into source codes.
func NormalizeSourceLanguages(queries []string) []string {
	return language.ToSourceCodes(queries)
}
