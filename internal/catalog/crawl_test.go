package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openzim/ted/internal/fetch"
)

func crawlClient(t *testing.T) *fetch.Client {
	t.Helper()
	return fetch.NewClient(fetch.WithPacing(0), fetch.WithBackoffUnit(0))
}

func TestCrawlTopic(t *testing.T) {
	pageOne := `<div><a href="/talks/talk_one">one</a><a href="/talks/talk_one">dup</a></div>`
	talkOne := talkPage(t, map[string]any{
		"id":         "1",
		"language":   "en",
		"title":      "First",
		"playerData": basePlayer(t),
	})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/talks":
			if r.URL.Query().Get("page") == "1" {
				_, _ = w.Write([]byte(pageOne))
				return
			}
			_, _ = w.Write([]byte(`<div>no results</div>`))
		case "/talks/talk_one":
			_, _ = w.Write([]byte(talkOne))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	crawler := NewCrawler(crawlClient(t), CrawlerOptions{BaseURL: server.URL, TopicsMode: true})
	count, err := crawler.CrawlTopic(context.Background(), "science")
	if err != nil {
		t.Fatalf("CrawlTopic: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
	videos := crawler.Videos()
	if len(videos) != 1 || videos[0].ID != "1" {
		t.Fatalf("videos = %+v, want single talk 1", videos)
	}
}

func TestCrawlTopicStopsOnRepeatedPages(t *testing.T) {
	talkOne := talkPage(t, map[string]any{
		"id":         "1",
		"language":   "en",
		"title":      "First",
		"playerData": basePlayer(t),
	})

	var searchPages int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/talks":
			// Past-the-end page numbers serve the last page again instead
			// of an empty result, like the live site does.
			searchPages++
			_, _ = w.Write([]byte(`<a href="/talks/talk_one">one</a>`))
		case "/talks/talk_one":
			_, _ = w.Write([]byte(talkOne))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	crawler := NewCrawler(crawlClient(t), CrawlerOptions{BaseURL: server.URL, TopicsMode: true})
	count, err := crawler.CrawlTopic(context.Background(), "science")
	if err != nil {
		t.Fatalf("CrawlTopic: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
	if searchPages != 2 {
		t.Errorf("search pages fetched = %d, want 2", searchPages)
	}
}

func TestCrawlTopicSkipsMissingTalkPages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/talks":
			if r.URL.Query().Get("page") == "1" {
				_, _ = w.Write([]byte(`<a href="/talks/gone">gone</a>`))
				return
			}
			_, _ = w.Write([]byte(`<div></div>`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	crawler := NewCrawler(crawlClient(t), CrawlerOptions{BaseURL: server.URL, TopicsMode: true})
	count, err := crawler.CrawlTopic(context.Background(), "science")
	if err != nil {
		t.Fatalf("CrawlTopic: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}

func TestCrawlPlaylist(t *testing.T) {
	talkOne := talkPage(t, map[string]any{
		"id":         "11",
		"language":   "en",
		"title":      "Playlist talk",
		"playerData": basePlayer(t),
	})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/playlists/7":
			_, _ = w.Write([]byte(`<h1 class="hero">The <b>best</b> talks</h1>` +
				`<p>Hand picked.</p><a href="/talks/pl_talk">talk</a>`))
		case "/talks/pl_talk":
			_, _ = w.Write([]byte(talkOne))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	crawler := NewCrawler(crawlClient(t), CrawlerOptions{BaseURL: server.URL})
	title, description, err := crawler.CrawlPlaylist(context.Background(), "7")
	if err != nil {
		t.Fatalf("CrawlPlaylist: %v", err)
	}
	if title != "The best talks" {
		t.Errorf("title = %q", title)
	}
	if description != "Hand picked." {
		t.Errorf("description = %q", description)
	}
	if len(crawler.Videos()) != 1 {
		t.Errorf("videos = %d, want 1", len(crawler.Videos()))
	}
}

func TestCrawlPlaylistEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<h1>Empty</h1>`))
	}))
	defer server.Close()

	crawler := NewCrawler(crawlClient(t), CrawlerOptions{BaseURL: server.URL})
	_, _, err := crawler.CrawlPlaylist(context.Background(), "7")
	if !errors.Is(err, ErrNoVideos) {
		t.Fatalf("err = %v, want ErrNoVideos", err)
	}
}
