// Package subtitles selects which caption languages a video should carry and
// downloads them into per-video WebVTT files. Selection crosses the global
// subtitle setting with the requested source languages; the download pipeline
// treats a missing language as a per-language skip and only a fully exhausted
// fetch as a stage failure.
package subtitles
