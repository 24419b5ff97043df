package models

import (
	"fmt"
	"time"
)

// Model defines the base interface for all persistent models.
// Implementations include TrackedUser and SyncRun.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// TrackedUser is a registered Spotify identity whose owned playlists are
// reconciled on every sync run.
type TrackedUser struct {
	id          string
	sequence    int
	spotifyID   string
	displayName string
	createdAt   time.Time
	updatedAt   time.Time
	deletedAt   *time.Time
}

// NewTrackedUser creates a TrackedUser for the given Spotify id and display name.
func NewTrackedUser(sequence int, spotifyID, displayName string) *TrackedUser {
	now := time.Now()
	return &TrackedUser{
		sequence:    sequence,
		spotifyID:   spotifyID,
		displayName: displayName,
		createdAt:   now,
		updatedAt:   now,
	}
}

func (u *TrackedUser) ID() string            { return u.id }
func (u *TrackedUser) Sequence() int         { return u.sequence }
func (u *TrackedUser) SpotifyID() string     { return u.spotifyID }
func (u *TrackedUser) DisplayName() string   { return u.displayName }
func (u *TrackedUser) CreatedAt() time.Time  { return u.createdAt }
func (u *TrackedUser) UpdatedAt() time.Time  { return u.updatedAt }
func (u *TrackedUser) DeletedAt() *time.Time { return u.deletedAt }

func (u *TrackedUser) SetID(id string)             { u.id = id }
func (u *TrackedUser) SetSequence(seq int)         { u.sequence = seq }
func (u *TrackedUser) SetDisplayName(name string)  { u.displayName = name; u.updatedAt = time.Now() }
func (u *TrackedUser) SetUpdatedAt(t time.Time)    { u.updatedAt = t }
func (u *TrackedUser) SetDeletedAt(t *time.Time)   { u.deletedAt = t }
func (u *TrackedUser) SetCreatedAt(t time.Time)    { u.createdAt = t }
func (u *TrackedUser) SetSpotifyID(spotify string) { u.spotifyID = spotify }

// NameOrID returns the display name when set, the Spotify id otherwise.
func (u *TrackedUser) NameOrID() string {
	if u.displayName != "" {
		return u.displayName
	}
	return u.spotifyID
}

// Validate checks that required fields are present.
func (u *TrackedUser) Validate() error {
	if u.spotifyID == "" {
		return fmt.Errorf("tracked user requires a spotify id")
	}
	return nil
}

// SyncRun records one reconciliation cycle for a single playlist: how many
// events were appended and whether the cycle failed.
type SyncRun struct {
	id             string
	sequence       int
	userID         string
	playlistID     string
	playlistName   string
	eventsAppended int
	errMessage     string
	startedAt      time.Time
	finishedAt     time.Time
}

// NewSyncRun creates a SyncRun for the given user and playlist.
func NewSyncRun(sequence int, userID, playlistID, playlistName string) *SyncRun {
	now := time.Now()
	return &SyncRun{
		sequence:     sequence,
		userID:       userID,
		playlistID:   playlistID,
		playlistName: playlistName,
		startedAt:    now,
		finishedAt:   now,
	}
}

func (r *SyncRun) ID() string            { return r.id }
func (r *SyncRun) Sequence() int         { return r.sequence }
func (r *SyncRun) UserID() string        { return r.userID }
func (r *SyncRun) PlaylistID() string    { return r.playlistID }
func (r *SyncRun) PlaylistName() string  { return r.playlistName }
func (r *SyncRun) EventsAppended() int   { return r.eventsAppended }
func (r *SyncRun) ErrMessage() string    { return r.errMessage }
func (r *SyncRun) StartedAt() time.Time  { return r.startedAt }
func (r *SyncRun) FinishedAt() time.Time { return r.finishedAt }

// CreatedAt and UpdatedAt satisfy Model using the run's timing fields.
func (r *SyncRun) CreatedAt() time.Time { return r.startedAt }
func (r *SyncRun) UpdatedAt() time.Time { return r.finishedAt }

func (r *SyncRun) SetID(id string)             { r.id = id }
func (r *SyncRun) SetSequence(seq int)         { r.sequence = seq }
func (r *SyncRun) SetEventsAppended(n int)     { r.eventsAppended = n }
func (r *SyncRun) SetErrMessage(msg string)    { r.errMessage = msg }
func (r *SyncRun) SetStartedAt(t time.Time)    { r.startedAt = t }
func (r *SyncRun) SetFinishedAt(t time.Time)   { r.finishedAt = t }
func (r *SyncRun) SetPlaylistName(name string) { r.playlistName = name }

// Validate checks that required fields are present.
func (r *SyncRun) Validate() error {
	if r.userID == "" {
		return fmt.Errorf("sync run requires a user id")
	}
	if r.playlistID == "" {
		return fmt.Errorf("sync run requires a playlist id")
	}
	return nil
}
