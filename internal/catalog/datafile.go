package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const datafilePrefix = "json_data = "

var slugStripPattern = regexp.MustCompile(`[^a-z0-9]+`)

type datafileEntry struct {
	ID          string   `json:"id"`
	Languages   []string `json:"languages"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Speaker     string   `json:"speaker"`
	Slug        string   `json:"slug"`
}

// GenerateDatafile writes the search index the viewer loads as a script:
// a JSON list of every video assigned to a "json_data" variable. Languages
// are the union of selected subtitle tracks and scraped metadata languages.
func GenerateDatafile(videos []*Video, path string) error {
	entries := make([]datafileEntry, 0, len(videos))
	for _, video := range videos {
		title := MainTitle(video.Titles, DefaultLang)
		entries = append(entries, datafileEntry{
			ID:          video.ID,
			Languages:   datafileLanguages(video),
			Title:       title,
			Description: mainDescription(video.Descriptions),
			Speaker:     video.Speaker,
			Slug:        Slugify(title),
		})
	}

	encoded, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return fmt.Errorf("encode datafile: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create datafile directory: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(datafilePrefix), encoded...), 0o644); err != nil {
		return fmt.Errorf("write datafile: %w", err)
	}
	return nil
}

func datafileLanguages(video *Video) []string {
	codes := make([]string, 0, len(video.Subtitles)+len(video.Languages))
	seen := make(map[string]struct{})
	add := func(code string) {
		if code == "" {
			return
		}
		if _, ok := seen[code]; ok {
			return
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	for _, track := range video.Subtitles {
		add(track.LanguageCode)
	}
	for _, lang := range video.Languages {
		add(lang.LanguageCode)
	}
	return codes
}

func mainDescription(descriptions []LocalizedText) string {
	for _, lang := range []string{DefaultLang, "en"} {
		for _, description := range descriptions {
			if description.Lang == lang && strings.TrimSpace(description.Text) != "" {
				return description.Text
			}
		}
	}
	if len(descriptions) > 0 {
		return descriptions[0].Text
	}
	return ""
}

// Slugify lowercases a title and collapses every non-alphanumeric run into a
// single hyphen.
func Slugify(title string) string {
	slug := slugStripPattern.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}
