package stage

import (
	"encoding/json"

	"github.com/openzim/ted/internal/catalog"
	"github.com/openzim/ted/internal/queue"
	"github.com/openzim/ted/internal/services"
)

// DecodeVideo parses the catalog metadata persisted on a queue item. On
// failure it returns a services.ErrValidation suitable for stage Execute
// methods.
func DecodeVideo(item *queue.Item) (*catalog.Video, error) {
	var video catalog.Video
	if err := json.Unmarshal([]byte(item.MetadataJSON), &video); err != nil {
		return nil, services.Wrap(
			services.ErrValidation, "stage", "decode metadata",
			"video metadata missing or invalid; re-run the crawl", err)
	}
	return &video, nil
}

// EncodeVideo serializes a video for queue persistence.
func EncodeVideo(video *catalog.Video) (string, error) {
	encoded, err := json.Marshal(video)
	if err != nil {
		return "", services.Wrap(
			services.ErrValidation, "stage", "encode metadata", "", err)
	}
	return string(encoded), nil
}

// DecodeTracks parses the subtitle track list persisted on a queue item. An
// empty column yields an empty selection, which is valid.
func DecodeTracks(item *queue.Item) ([]catalog.SubtitleTrack, error) {
	if item.SubtitlesJSON == "" {
		return nil, nil
	}
	var tracks []catalog.SubtitleTrack
	if err := json.Unmarshal([]byte(item.SubtitlesJSON), &tracks); err != nil {
		return nil, services.Wrap(
			services.ErrValidation, "stage", "decode subtitle tracks", "", err)
	}
	return tracks, nil
}

// EncodeTracks serializes a subtitle track list for queue persistence.
func EncodeTracks(tracks []catalog.SubtitleTrack) (string, error) {
	encoded, err := json.Marshal(tracks)
	if err != nil {
		return "", services.Wrap(
			services.ErrValidation, "stage", "encode subtitle tracks", "", err)
	}
	return string(encoded), nil
}
