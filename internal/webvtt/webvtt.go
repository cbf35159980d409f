package webvtt

import (
	"strconv"
	"strings"
)

// DefaultOffsetMS compensates for the intro slate the source prepends to its
// media files; caption timestamps are relative to the talk itself.
const DefaultOffsetMS = 11820

const header = "WEBVTT\n\n"

// Caption is one timed utterance from the source payload.
type Caption struct {
	StartTime int64  `json:"startTime"`
	Duration  int64  `json:"duration"`
	Content   string `json:"content"`
}

// Payload is the decoded caption JSON. A missing captions field is valid and
// means the track is legitimately empty.
type Payload struct {
	Captions []Caption `json:"captions"`
}

// Convert renders a payload into a WebVTT document, shifting every cue by
// offsetMS. Cues keep their source order.
func Convert(payload Payload, offsetMS int64) string {
	var doc strings.Builder
	doc.Grow(len(header) + len(payload.Captions)*48)
	doc.WriteString(header)

	for _, caption := range payload.Captions {
		start := caption.StartTime + offsetMS
		end := start + caption.Duration
		doc.WriteString(FormatTimestamp(start))
		doc.WriteString(" --> ")
		doc.WriteString(FormatTimestamp(end))
		doc.WriteByte('\n')
		doc.WriteString(strings.TrimSpace(caption.Content))
		doc.WriteString("\n\n")
	}

	return doc.String()
}

// FormatTimestamp renders milliseconds as a zero-padded HH:MM:SS.mmm time
// code. Hours are not capped: a track may run past a day boundary.
func FormatTimestamp(ms int64) string {
	hours := ms / 3_600_000
	remainder := ms % 3_600_000
	minutes := remainder / 60_000
	remainder %= 60_000
	seconds := remainder / 1_000
	millis := remainder % 1_000

	var b strings.Builder
	b.Grow(12)
	writePadded(&b, hours, 2)
	b.WriteByte(':')
	writePadded(&b, minutes, 2)
	b.WriteByte(':')
	writePadded(&b, seconds, 2)
	b.WriteByte('.')
	writePadded(&b, millis, 3)
	return b.String()
}

func writePadded(b *strings.Builder, value int64, width int) {
	text := strconv.FormatInt(value, 10)
	for pad := width - len(text); pad > 0; pad-- {
		b.WriteByte('0')
	}
	b.WriteString(text)
}
