// Package logging wraps log/slog with the handlers and attribute helpers the
// scraper uses everywhere: a human-oriented console handler that surfaces the
// component, video, and stage of every record, a JSON handler for machine
// consumption, and context plumbing that carries video and stage identifiers
// across goroutine boundaries.
package logging
