// Package services defines shared utilities consumed by the workflow stage
// handlers and network-facing integrations.
//
// Key responsibilities:
//   - Context helpers that stamp video IDs, stage names, and correlation
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent queue statuses and distinguish a resource that is
//     definitively absent from one whose retrieval exhausted its retries.
//
// Use these helpers when wiring new stage logic so operational behaviour (error
// handling, observability, retries) stays uniform across the pipeline.
package services
