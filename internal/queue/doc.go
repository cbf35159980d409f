// Package queue persists per-video pipeline state in SQLite.
//
// Each catalog video becomes one queue item that moves through the statuses
// pending -> downloading -> downloaded -> subtitling -> completed, with
// failed and skipped as terminal side exits. The store is the only state
// shared between pipeline stages; stages take and return items explicitly
// rather than mutating a shared video list.
package queue
