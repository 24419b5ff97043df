// package events implements the event-sourcing kernel for playlist
// tracking: the domain event and command vocabulary, the pure aggregate
// state machine, the append-only file-backed event store, the reconciler
// that diffs replayed state against fresh snapshots, and the dispatcher
// gluing commands to the store.
//
// The package has no knowledge of the remote service; it operates on
// [models.Playlist] snapshots supplied by callers.
package events
