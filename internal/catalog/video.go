package catalog

import (
	"strings"
)

// DefaultLang marks the localization slot rendered when no reader preference
// matches.
const DefaultLang = "default"

// LocalizedText is one language's variant of a title or description.
type LocalizedText struct {
	Lang string `json:"lang"`
	Text string `json:"text"`
}

// TrackLanguage identifies one language the source offers for a video.
type TrackLanguage struct {
	LanguageCode string `json:"languageCode"`
	LanguageName string `json:"languageName"`
}

// SubtitleTrack is a selected subtitle language plus the URL its caption
// payload is fetched from.
type SubtitleTrack struct {
	LanguageCode string `json:"languageCode"`
	LanguageName string `json:"languageName"`
	Link         string `json:"link"`
}

// Video is one talk assembled from one or more localized page visits.
type Video struct {
	ID                 string          `json:"id"`
	Languages          []TrackLanguage `json:"languages"`
	Titles             []LocalizedText `json:"title"`
	Descriptions       []LocalizedText `json:"description"`
	Speaker            string          `json:"speaker"`
	SpeakerProfession  string          `json:"speaker_profession"`
	SpeakerBio         string          `json:"speaker_bio"`
	SpeakerPicture     string          `json:"speaker_picture"`
	Date               string          `json:"date"`
	Thumbnail          string          `json:"thumbnail"`
	VideoLink          string          `json:"video_link"`
	LengthMinutes      int             `json:"length"`
	PageLanguage       string          `json:"page_language"`
	AudioLanguage      string          `json:"audio_language"`
	AvailableSubtitles []TrackLanguage `json:"available_subtitles"`
	Subtitles          []SubtitleTrack `json:"subtitles"`
}

// HasLanguage reports whether a localization for code was already merged.
func (v *Video) HasLanguage(code string) bool {
	for _, lang := range v.Languages {
		if lang.LanguageCode == code {
			return true
		}
	}
	return false
}

// MergeLocalization folds another page visit's language variant into the
// video. Duplicate languages are ignored.
func (v *Video) MergeLocalization(other *Video) {
	if other == nil || v.HasLanguage(other.PageLanguage) {
		return
	}
	v.Languages = append(v.Languages, other.Languages...)
	v.Titles = append(v.Titles, other.Titles...)
	v.Descriptions = append(v.Descriptions, other.Descriptions...)
}

// ApplyDefaultLanguage prepends a "default" localization slot: English when
// available, otherwise the first language scraped.
func (v *Video) ApplyDefaultLanguage() {
	index := 0
	for i, lang := range v.Languages {
		if lang.LanguageCode == "en" {
			index = i
			break
		}
	}
	if index < len(v.Titles) {
		v.Titles = append([]LocalizedText{{Lang: DefaultLang, Text: v.Titles[index].Text}}, v.Titles...)
	}
	if index < len(v.Descriptions) {
		v.Descriptions = append([]LocalizedText{{Lang: DefaultLang, Text: v.Descriptions[index].Text}}, v.Descriptions...)
	}
}

// MainTitle picks a display title with fallback: preferred language, the
// default slot, English, then "n/a".
func MainTitle(titles []LocalizedText, preferredLang string) string {
	const missing = "n/a"
	if len(titles) == 0 {
		return missing
	}
	for _, lang := range []string{preferredLang, DefaultLang, "en"} {
		if lang == "" {
			continue
		}
		for _, title := range titles {
			if title.Lang == lang && strings.TrimSpace(title.Text) != "" {
				return title.Text
			}
		}
	}
	return missing
}
