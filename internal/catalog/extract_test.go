package catalog

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func talkPage(t *testing.T, video map[string]any) string {
	t.Helper()
	payload := map[string]any{
		"props": map[string]any{
			"pageProps": map[string]any{
				"videoData": video,
			},
		},
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	return `<html><body>` + nextDataMarker + string(encoded) + `</script></body></html>`
}

func playerJSON(t *testing.T, player map[string]any) string {
	t.Helper()
	encoded, err := json.Marshal(player)
	if err != nil {
		t.Fatalf("marshal player fixture: %v", err)
	}
	return string(encoded)
}

func basePlayer(t *testing.T) string {
	t.Helper()
	return playerJSON(t, map[string]any{
		"languages": []map[string]string{
			{"languageCode": "en", "languageName": "English"},
			{"languageCode": "fr", "languageName": "French"},
		},
		"nativeLanguage": "en",
		"thumb":          "https://example.org/thumb.jpg",
		"resources": map[string]any{
			"h264": []map[string]any{
				{"file": "https://example.org/talk.mp4", "bitrate": 320},
			},
		},
	})
}

func TestExtractVideoPage(t *testing.T) {
	page := talkPage(t, map[string]any{
		"id":                   1234,
		"language":             "en",
		"title":                "Why dig",
		"description":          "A talk about digging.",
		"recordedOn":           "2019-04-15T00:00:00Z",
		"duration":             754,
		"presenterDisplayName": "Ada Lovelace",
		"playerData":           basePlayer(t),
		"speakers": []map[string]string{
			{
				"firstname":   "Ada",
				"lastname":    "Lovelace",
				"description": "Mathematician",
				"whoTheyAre":  "Wrote the first program.",
				"photoUrl":    "https://example.org/ada.jpg",
			},
		},
	})

	video, err := ExtractVideoPage(page)
	if err != nil {
		t.Fatalf("ExtractVideoPage: %v", err)
	}
	if video.ID != "1234" {
		t.Errorf("ID = %q, want 1234", video.ID)
	}
	if video.Speaker != "Ada Lovelace" {
		t.Errorf("Speaker = %q, want Ada Lovelace", video.Speaker)
	}
	if video.SpeakerProfession != "Mathematician" {
		t.Errorf("SpeakerProfession = %q", video.SpeakerProfession)
	}
	if video.Date != "15 April 2019" {
		t.Errorf("Date = %q, want 15 April 2019", video.Date)
	}
	if video.VideoLink != "https://example.org/talk.mp4" {
		t.Errorf("VideoLink = %q", video.VideoLink)
	}
	if video.LengthMinutes != 12 {
		t.Errorf("LengthMinutes = %d, want 12", video.LengthMinutes)
	}
	if video.PageLanguage != "en" || video.AudioLanguage != "en" {
		t.Errorf("languages = %q/%q, want en/en", video.PageLanguage, video.AudioLanguage)
	}
	if len(video.AvailableSubtitles) != 2 {
		t.Fatalf("AvailableSubtitles = %d entries, want 2", len(video.AvailableSubtitles))
	}
	if video.AvailableSubtitles[1].LanguageCode != "fr" {
		t.Errorf("second subtitle = %q, want fr", video.AvailableSubtitles[1].LanguageCode)
	}
}

func TestExtractVideoPageSpeakerNodesShape(t *testing.T) {
	page := talkPage(t, map[string]any{
		"id":         "99",
		"language":   "en",
		"playerData": basePlayer(t),
		"speakers": map[string]any{
			"nodes": []map[string]string{
				{"firstname": "Grace", "middlename": "Brewster", "lastname": "Hopper"},
			},
		},
	})

	video, err := ExtractVideoPage(page)
	if err != nil {
		t.Fatalf("ExtractVideoPage: %v", err)
	}
	if video.Speaker != "Grace Brewster Hopper" {
		t.Errorf("Speaker = %q, want Grace Brewster Hopper", video.Speaker)
	}
}

func TestExtractVideoPageNoSpeakers(t *testing.T) {
	page := talkPage(t, map[string]any{
		"id":                   "7",
		"language":             "en",
		"playerData":           basePlayer(t),
		"presenterDisplayName": "The Presenter",
		"speakers":             []any{},
	})

	video, err := ExtractVideoPage(page)
	if err != nil {
		t.Fatalf("ExtractVideoPage: %v", err)
	}
	if video.Speaker != "The Presenter" {
		t.Errorf("Speaker = %q, want presenter fallback", video.Speaker)
	}
	if video.SpeakerBio != "None" {
		t.Errorf("SpeakerBio = %q, want None", video.SpeakerBio)
	}
}

func TestExtractVideoPageMissingMarker(t *testing.T) {
	_, err := ExtractVideoPage("<html><body>nothing here</body></html>")
	if !errors.Is(err, ErrNoVideoData) {
		t.Fatalf("err = %v, want ErrNoVideoData", err)
	}
}

func TestExtractVideoPageNoMediaLink(t *testing.T) {
	player := playerJSON(t, map[string]any{
		"languages":      []map[string]string{},
		"nativeLanguage": "en",
		"resources":      map[string]any{"h264": []any{}},
	})
	page := talkPage(t, map[string]any{
		"id":         "55",
		"language":   "en",
		"playerData": player,
	})

	_, err := ExtractVideoPage(page)
	if err == nil || !strings.Contains(err.Error(), "no h264 media link") {
		t.Fatalf("err = %v, want media link failure", err)
	}
}

func TestExtractVideoPageEmptyTitleFallsBack(t *testing.T) {
	page := talkPage(t, map[string]any{
		"id":         "8",
		"language":   "en",
		"title":      "  ",
		"playerData": basePlayer(t),
	})

	video, err := ExtractVideoPage(page)
	if err != nil {
		t.Fatalf("ExtractVideoPage: %v", err)
	}
	if got := MainTitle(video.Titles, "en"); got != "n/a" {
		t.Errorf("MainTitle = %q, want n/a", got)
	}
}
