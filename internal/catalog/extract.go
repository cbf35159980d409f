package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const nextDataMarker = `<script id="__NEXT_DATA__" type="application/json">`

// ErrNoVideoData reports a page without the embedded JSON block every talk
// page carries.
var ErrNoVideoData = fmt.Errorf("page has no embedded video data")

type nextData struct {
	Props struct {
		PageProps struct {
			VideoData videoData `json:"videoData"`
		} `json:"pageProps"`
	} `json:"props"`
}

type videoData struct {
	ID                   json.Number     `json:"id"`
	Language             string          `json:"language"`
	PlayerData           string          `json:"playerData"`
	Title                string          `json:"title"`
	Description          string          `json:"description"`
	RecordedOn           string          `json:"recordedOn"`
	Duration             int             `json:"duration"`
	PresenterDisplayName string          `json:"presenterDisplayName"`
	Speakers             json.RawMessage `json:"speakers"`
}

type playerData struct {
	Languages      []TrackLanguage `json:"languages"`
	NativeLanguage string          `json:"nativeLanguage"`
	Thumb          string          `json:"thumb"`
	Resources      struct {
		H264 []struct {
			File    string `json:"file"`
			Bitrate int    `json:"bitrate"`
		} `json:"h264"`
	} `json:"resources"`
}

type speakerInfo struct {
	Firstname   string `json:"firstname"`
	Middlename  string `json:"middlename"`
	Lastname    string `json:"lastname"`
	Description string `json:"description"`
	WhoTheyAre  string `json:"whoTheyAre"`
	PhotoURL    string `json:"photoUrl"`
}

// ExtractVideoPage parses a talk page's embedded JSON into a Video. It
// returns ErrNoVideoData when the marker script is absent, and an error when
// the talk has no usable media link.
func ExtractVideoPage(pageHTML string) (*Video, error) {
	raw, err := cutNextData(pageHTML)
	if err != nil {
		return nil, err
	}

	var data nextData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("decode page json: %w", err)
	}
	return videoFromData(data.Props.PageProps.VideoData)
}

func cutNextData(pageHTML string) (string, error) {
	start := strings.Index(pageHTML, nextDataMarker)
	if start < 0 {
		return "", ErrNoVideoData
	}
	rest := pageHTML[start+len(nextDataMarker):]
	end := strings.Index(rest, "</script>")
	if end < 0 {
		return "", ErrNoVideoData
	}
	return rest[:end], nil
}

func videoFromData(data videoData) (*Video, error) {
	if data.ID.String() == "" {
		return nil, fmt.Errorf("video data missing id")
	}

	var player playerData
	if err := json.Unmarshal([]byte(data.PlayerData), &player); err != nil {
		return nil, fmt.Errorf("decode player data: %w", err)
	}

	videoLink := ""
	if len(player.Resources.H264) > 0 {
		videoLink = player.Resources.H264[0].File
	}
	if videoLink == "" {
		return nil, fmt.Errorf("video %s has no h264 media link", data.ID)
	}

	langName := data.Language
	for _, lang := range player.Languages {
		if lang.LanguageCode == data.Language {
			langName = lang.LanguageName
		}
	}

	speaker, info := decodeSpeakers(data.Speakers, data.PresenterDisplayName)

	video := &Video{
		ID: data.ID.String(),
		Languages: []TrackLanguage{
			{LanguageCode: data.Language, LanguageName: langName},
		},
		Titles:             []LocalizedText{{Lang: data.Language, Text: textOr(data.Title, "n/a")}},
		Descriptions:       []LocalizedText{{Lang: data.Language, Text: textOr(data.Description, "n/a")}},
		Speaker:            speaker,
		SpeakerProfession:  info.Description,
		SpeakerBio:         textOr(info.WhoTheyAre, "-"),
		SpeakerPicture:     textOr(info.PhotoURL, "-"),
		Date:               formatRecordedOn(data.RecordedOn),
		Thumbnail:          player.Thumb,
		VideoLink:          videoLink,
		LengthMinutes:      data.Duration / 60,
		PageLanguage:       data.Language,
		AudioLanguage:      player.NativeLanguage,
		AvailableSubtitles: player.Languages,
	}
	return video, nil
}

// decodeSpeakers tolerates the two shapes the source emits: a bare list of
// speaker objects or a connection wrapper with a nodes list.
func decodeSpeakers(raw json.RawMessage, presenterName string) (string, speakerInfo) {
	var info speakerInfo

	var list []speakerInfo
	if err := json.Unmarshal(raw, &list); err != nil {
		var wrapper struct {
			Nodes []speakerInfo `json:"nodes"`
		}
		if err := json.Unmarshal(raw, &wrapper); err == nil {
			list = wrapper.Nodes
		}
	}

	if len(list) == 0 {
		name := presenterName
		if name == "" {
			name = "None"
		}
		return name, speakerInfo{Description: "None", WhoTheyAre: "None"}
	}

	info = list[0]
	parts := make([]string, 0, 3)
	for _, part := range []string{info.Firstname, info.Middlename, info.Lastname} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	name := strings.Join(parts, " ")
	if name == "" {
		name = textOr(presenterName, "None")
	}
	return name, info
}

func formatRecordedOn(raw string) string {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.Format("02 January 2006")
		}
	}
	return raw
}

func textOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
