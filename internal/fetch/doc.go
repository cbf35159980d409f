// Package fetch implements the resilient HTTP client every network-facing
// component goes through. The source site is flaky under load, so each
// request waits a fixed pacing interval before every attempt, retries rate
// limited responses with a growing backoff, and treats 404 as a definitive
// absence rather than a transient failure. Retry policy lives here and only
// here; call sites never roll their own loops.
package fetch
