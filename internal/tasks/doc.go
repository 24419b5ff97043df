// Package tasks orchestrates reconciliation cycles over every tracked
// user with real-time progress reporting.
//
// # Core Operations
//
// The [TrackerEngine] drives the pipeline:
//
//  1. [TrackerEngine.SyncAll] : reconcile every tracked user
//     - Lists tracked users from the registry
//     - Reconciles each user's owned playlists in turn
//     - Returns a report aggregating per-user results
//
//  2. [TrackerEngine.SyncUser] : reconcile one user's playlists
//     - Lists the user's owned playlists from the provider
//     - Replays each playlist's history, diffs it against the observed
//       summary, and appends the resulting events
//     - Records one run history row per playlist
//
// A failing playlist never aborts the batch: its error is captured in the
// report and the cycle moves on to the next playlist.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, and messages
// for display. Updates use select with default to prevent blocking.
//
// # Run History
//
// The optional [RunRecorder] interface persists one row per reconciled
// playlist. Recording failures are logged and ignored so history never
// disrupts a sync.
package tasks
