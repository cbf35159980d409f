// Package webvtt converts the source site's proprietary caption JSON into
// WebVTT documents. Conversion is a pure function over exact integer
// millisecond arithmetic: the same payload and offset always produce a
// byte-identical document, and cue order is trusted from the source rather
// than re-sorted.
package webvtt
