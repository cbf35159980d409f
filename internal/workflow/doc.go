// Package workflow drains the video queue through the download and subtitle
// stages using a bounded worker pool. Each worker takes one video through
// every stage before claiming the next, so stage failures are always scoped
// to a single video.
package workflow
