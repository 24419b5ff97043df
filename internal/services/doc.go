// Package services defines the Provider interface for observing remote
// playlist state over HTTP APIs.
//
// A Provider is the read-only collaborator of the reconciliation pipeline:
// it lists a user's owned playlists as shallow summaries and fetches full
// playlist snapshots on demand. The sole implementation is
// [SpotifyService], built on OAuth2 with an on-disk token cache and a
// client-side rate limiter.
//
// Providers never touch the event log; the pipeline decides what the
// observations mean.
package services
