package catalog

import "testing"

func sampleVideo(lang, title string) *Video {
	return &Video{
		ID:           "42",
		Languages:    []TrackLanguage{{LanguageCode: lang, LanguageName: lang}},
		Titles:       []LocalizedText{{Lang: lang, Text: title}},
		Descriptions: []LocalizedText{{Lang: lang, Text: title + " description"}},
		PageLanguage: lang,
	}
}

func TestMergeLocalization(t *testing.T) {
	video := sampleVideo("en", "Hello")
	video.MergeLocalization(sampleVideo("fr", "Bonjour"))

	if len(video.Titles) != 2 {
		t.Fatalf("Titles = %d entries, want 2", len(video.Titles))
	}
	if !video.HasLanguage("fr") {
		t.Error("expected fr localization after merge")
	}

	// Merging the same language again is a no-op.
	video.MergeLocalization(sampleVideo("fr", "Salut"))
	if len(video.Titles) != 2 {
		t.Errorf("Titles = %d entries after duplicate merge, want 2", len(video.Titles))
	}
}

func TestApplyDefaultLanguagePrefersEnglish(t *testing.T) {
	video := sampleVideo("fr", "Bonjour")
	video.MergeLocalization(sampleVideo("en", "Hello"))
	video.ApplyDefaultLanguage()

	if video.Titles[0].Lang != DefaultLang {
		t.Fatalf("first title lang = %q, want %q", video.Titles[0].Lang, DefaultLang)
	}
	if video.Titles[0].Text != "Hello" {
		t.Errorf("default title = %q, want English variant", video.Titles[0].Text)
	}
}

func TestApplyDefaultLanguageFallsBackToFirst(t *testing.T) {
	video := sampleVideo("es", "Hola")
	video.ApplyDefaultLanguage()

	if video.Titles[0].Lang != DefaultLang || video.Titles[0].Text != "Hola" {
		t.Errorf("default title = %+v, want first scraped language", video.Titles[0])
	}
}

func TestMainTitle(t *testing.T) {
	titles := []LocalizedText{
		{Lang: DefaultLang, Text: "Default"},
		{Lang: "en", Text: "Hello"},
		{Lang: "fr", Text: "Bonjour"},
	}

	if got := MainTitle(titles, "fr"); got != "Bonjour" {
		t.Errorf("MainTitle(fr) = %q", got)
	}
	if got := MainTitle(titles, "de"); got != "Default" {
		t.Errorf("MainTitle(de) = %q, want default slot", got)
	}
	if got := MainTitle(nil, "en"); got != "n/a" {
		t.Errorf("MainTitle(nil) = %q, want n/a", got)
	}
}
