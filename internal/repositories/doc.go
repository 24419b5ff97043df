// Package repositories implements SQLite persistence for the tracked-user
// registry and the sync run history.
//
// Each repository implements [models.Repository] for one entity type,
// handling CRUD operations with atomic sequence generation for
// human-readable ordering. Tracked users support soft deletes via
// deleted_at timestamps and are excluded from queries once removed; sync
// runs are append-only history and are never deleted.
//
// Key Implementations:
//   - [UserRepository] : tracked Spotify identity persistence with spotify_id lookups
//   - [RunRepository] : per-playlist reconciliation history with outcome tracking
//
// Sequence numbers provide stable, human-readable ordering (e.g., user #3,
// run #120) independent of UUIDs and creation timestamps. The
// [NextSequence] function atomically increments per-table sequence
// counters in dedicated sequence tables.
package repositories
