// Spotify API implementation of [Provider]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/desertthunder/spt/internal/models"
	"github.com/desertthunder/spt/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// Spotify caps page sizes at 50 for playlists and 100 for items.
	playlistPageLimit = 50
	itemPageLimit     = 100
)

type spotifyOwner struct {
	ID          string  `json:"id"`
	DisplayName *string `json:"display_name"`
}

// spotifyUser represents a Spotify user profile.
type spotifyUser struct {
	ID          string  `json:"id"`
	DisplayName *string `json:"display_name"`
}

type spotifyArtist struct {
	ID   *string `json:"id"`
	Name string  `json:"name"`
}

type spotifyAlbum struct {
	ID      *string         `json:"id"`
	Name    string          `json:"name"`
	Artists []spotifyArtist `json:"artists"`
}

// spotifyItem is the playable object inside a playlist entry. Type
// distinguishes tracks from podcast episodes.
type spotifyItem struct {
	ID      *string         `json:"id"`
	Name    string          `json:"name"`
	Type    string          `json:"type"`
	Artists []spotifyArtist `json:"artists"`
	Album   spotifyAlbum    `json:"album"`
}

// spotifyPlaylistItem represents one playlist entry with add metadata.
type spotifyPlaylistItem struct {
	AddedAt string        `json:"added_at"`
	AddedBy *spotifyOwner `json:"added_by"`
	Track   *spotifyItem  `json:"track"`
}

// spotifyPaginatedItems represents a paginated page of playlist entries.
type spotifyPaginatedItems struct {
	Items  []spotifyPlaylistItem `json:"items"`
	Total  int                   `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
	Next   *string               `json:"next"`
}

type spotifyFollowers struct {
	Total int `json:"total"`
}

// spotifyPlaylist represents a full playlist object.
type spotifyPlaylist struct {
	ID            string                `json:"id"`
	Name          string                `json:"name"`
	Description   *string               `json:"description"`
	Collaborative bool                  `json:"collaborative"`
	Public        *bool                 `json:"public"`
	Owner         spotifyOwner          `json:"owner"`
	Followers     spotifyFollowers      `json:"followers"`
	SnapshotID    string                `json:"snapshot_id"`
	Tracks        spotifyPaginatedItems `json:"tracks"`
}

// spotifySimplePlaylist represents a simplified playlist object (used in lists).
type spotifySimplePlaylist struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Owner      spotifyOwner `json:"owner"`
	SnapshotID string       `json:"snapshot_id"`
}

// spotifyPaginatedPlaylists represents a paginated response of playlists.
type spotifyPaginatedPlaylists struct {
	Items  []spotifySimplePlaylist `json:"items"`
	Total  int                     `json:"total"`
	Limit  int                     `json:"limit"`
	Offset int                     `json:"offset"`
	Next   *string                 `json:"next"`
}

// SpotifyService implements the [Provider] interface for Spotify API
// interactions. Uses [oauth2] for authentication with an on-disk token
// cache and rate-limits outgoing requests.
type SpotifyService struct {
	config     *oauth2.Config
	token      *oauth2.Token
	httpClient *http.Client
	limiter    *rate.Limiter
	tokenPath  string
	baseURL    string
}

// NewSpotifyService creates a new Spotify service from the given credentials.
func NewSpotifyService(creds shared.SpotifyConfig) (*SpotifyService, error) {
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: client_id and client_secret are required", shared.ErrMissingCredentials)
	}

	redirectURI := creds.RedirectURI
	if redirectURI == "" {
		redirectURI = "http://localhost:65432/callback"
	}

	tokenPath := creds.TokenPath
	if tokenPath == "" {
		tokenPath = "token.json"
	}

	config := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"playlist-read-private",
			"playlist-read-collaborative",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:     config,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
		tokenPath:  tokenPath,
		baseURL:    spotifyBaseURL,
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for a token and caches it on disk.
func (s *SpotifyService) Exchange(ctx context.Context, code string) error {
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
	}

	s.token = token
	s.httpClient = s.config.Client(ctx, token)

	if err := s.saveToken(token); err != nil {
		return err
	}
	return nil
}

// Authenticate loads the cached token and prepares the HTTP client. The
// oauth2 client refreshes expired tokens transparently when a refresh
// token is present.
func (s *SpotifyService) Authenticate(ctx context.Context) error {
	token, err := s.loadToken()
	if err != nil {
		return err
	}

	if !token.Valid() && token.RefreshToken == "" {
		return fmt.Errorf("%w: cached token expired", shared.ErrTokenExpired)
	}

	s.token = token
	s.httpClient = s.config.Client(ctx, token)
	return nil
}

// TokenStatus reports whether a cached token exists and whether it is
// still valid without touching the network.
func (s *SpotifyService) TokenStatus() (exists, valid bool) {
	token, err := s.loadToken()
	if err != nil {
		return false, false
	}
	return true, token.Valid() || token.RefreshToken != ""
}

func (s *SpotifyService) loadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.tokenPath)
	if err != nil {
		return nil, fmt.Errorf("%w: no cached token at %s", shared.ErrNotAuthenticated, s.tokenPath)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("%w: malformed token cache %s: %v", shared.ErrNotAuthenticated, s.tokenPath, err)
	}

	return &token, nil
}

func (s *SpotifyService) saveToken(token *oauth2.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	if err := os.WriteFile(s.tokenPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write token cache: %w", err)
	}
	return nil
}

// doRequest performs a rate-limited, authenticated GET against the Spotify API.
func (s *SpotifyService) doRequest(ctx context.Context, endpoint string, result any) error {
	if s.token == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter interrupted: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d on %s", shared.ErrAuthFailed, resp.StatusCode, endpoint)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, endpoint)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d on %s", shared.ErrServiceUnavailable, resp.StatusCode, endpoint)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: status %d on %s", shared.ErrAPIRequest, resp.StatusCode, endpoint)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
		}
	}

	return nil
}

// CurrentUser retrieves the authenticated user's identity.
func (s *SpotifyService) CurrentUser(ctx context.Context) (*models.User, error) {
	var user spotifyUser
	if err := s.doRequest(ctx, "/me", &user); err != nil {
		return nil, err
	}
	return &models.User{ID: user.ID, DisplayName: user.DisplayName}, nil
}

// ListOwnedPlaylists retrieves summaries of the playlists the given user
// owns, following pagination. Playlists the user merely follows are
// filtered out.
func (s *SpotifyService) ListOwnedPlaylists(ctx context.Context, userID string) ([]models.PlaylistSummary, error) {
	var summaries []models.PlaylistSummary
	offset := 0

	for {
		endpoint := fmt.Sprintf("/users/%s/playlists?limit=%d&offset=%d", userID, playlistPageLimit, offset)

		var page spotifyPaginatedPlaylists
		if err := s.doRequest(ctx, endpoint, &page); err != nil {
			return nil, err
		}

		for _, sp := range page.Items {
			if sp.Owner.ID != userID {
				continue
			}
			summaries = append(summaries, models.PlaylistSummary{
				ID:         sp.ID,
				Name:       sp.Name,
				Owner:      models.User{ID: sp.Owner.ID, DisplayName: sp.Owner.DisplayName},
				SnapshotID: sp.SnapshotID,
			})
		}

		if page.Next == nil {
			break
		}
		offset += playlistPageLimit
	}

	return summaries, nil
}

// FetchPlaylist retrieves the full playlist snapshot including every item.
func (s *SpotifyService) FetchPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	var sp spotifyPlaylist
	if err := s.doRequest(ctx, fmt.Sprintf("/playlists/%s", playlistID), &sp); err != nil {
		return nil, err
	}

	playlist := models.Playlist{
		Collaborative: sp.Collaborative,
		Description:   sp.Description,
		Followers:     sp.Followers.Total,
		ID:            sp.ID,
		Name:          sp.Name,
		Owner:         models.User{ID: sp.Owner.ID, DisplayName: sp.Owner.DisplayName},
		Public:        sp.Public,
		Tracks:        convertItems(sp.Tracks.Items),
		SnapshotID:    sp.SnapshotID,
	}

	// The embedded first page may be truncated; follow the item endpoint
	// until exhausted.
	next := sp.Tracks.Next
	offset := len(sp.Tracks.Items)
	for next != nil {
		endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d&offset=%d", playlistID, itemPageLimit, offset)

		var page spotifyPaginatedItems
		if err := s.doRequest(ctx, endpoint, &page); err != nil {
			return nil, err
		}

		playlist.Tracks = append(playlist.Tracks, convertItems(page.Items)...)
		next = page.Next
		offset += len(page.Items)
	}

	return &playlist, nil
}

// convertItems maps Spotify playlist entries to domain items, skipping
// entries whose playable object is absent (removed or unavailable media).
func convertItems(items []spotifyPlaylistItem) models.PlaylistItems {
	converted := make(models.PlaylistItems, 0, len(items))
	for _, item := range items {
		if item.Track == nil {
			continue
		}

		entry := models.PlaylistItem{Item: convertPlayable(item.Track)}

		if item.AddedAt != "" {
			if at, err := time.Parse(time.RFC3339, item.AddedAt); err == nil {
				entry.AddedAt = &at
			}
		}
		if item.AddedBy != nil {
			entry.AddedBy = &models.User{ID: item.AddedBy.ID, DisplayName: item.AddedBy.DisplayName}
		}

		converted = append(converted, entry)
	}
	return converted
}

func convertPlayable(item *spotifyItem) *models.PlayableItem {
	if item.Type == "episode" {
		id := ""
		if item.ID != nil {
			id = *item.ID
		}
		return &models.PlayableItem{Episode: &models.Episode{ID: id, Name: item.Name}}
	}

	track := models.Track{
		ID:   item.ID,
		Name: item.Name,
		Album: models.Album{
			ID:      item.Album.ID,
			Name:    item.Album.Name,
			Artists: convertArtists(item.Album.Artists),
		},
		Artists: convertArtists(item.Artists),
	}
	return &models.PlayableItem{Track: &track}
}

func convertArtists(artists []spotifyArtist) []models.Artist {
	if len(artists) == 0 {
		return nil
	}
	converted := make([]models.Artist, 0, len(artists))
	for _, a := range artists {
		converted = append(converted, models.Artist{ID: a.ID, Name: a.Name})
	}
	return converted
}
