package services

import (
	"context"

	"github.com/desertthunder/spt/internal/models"
)

// Provider defines the interface for remote playlist sources that the
// reconciliation pipeline observes.
type Provider interface {
	// Authenticate loads cached credentials and prepares the provider for
	// API calls. Returns an error when no usable token is available.
	Authenticate(ctx context.Context) error

	// CurrentUser retrieves the authenticated user's identity.
	CurrentUser(ctx context.Context) (*models.User, error)

	// ListOwnedPlaylists retrieves shallow summaries of the playlists the
	// given user owns. Summaries carry the revision marker used to gate
	// full fetches.
	ListOwnedPlaylists(ctx context.Context, userID string) ([]models.PlaylistSummary, error)

	// FetchPlaylist retrieves the full playlist snapshot including every
	// item, following pagination.
	FetchPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error)

	// Name returns the name of the provider (e.g., "Spotify")
	Name() string
}
