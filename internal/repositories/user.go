package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/spt/internal/models"
	"github.com/desertthunder/spt/internal/shared"
)

// UserRepository implements [models.Repository] for [models.TrackedUser] persistence.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new [UserRepository] with the given database connection
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new tracked user into the database with generated ID and sequence
func (r *UserRepository) Create(user *models.TrackedUser) error {
	sequence, err := NextSequence(r.db, "users")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	user.SetID(id)
	user.SetSequence(sequence)

	if err := user.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO users (id, sequence, spotify_id, display_name, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, id, sequence, user.SpotifyID(), user.DisplayName(), user.CreatedAt(), user.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// Get retrieves a tracked user by ID, excluding soft-deleted users
func (r *UserRepository) Get(id string) (*models.TrackedUser, error) {
	query := `
		SELECT id, sequence, spotify_id, display_name, created_at, updated_at, deleted_at
		FROM users
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id), id)
}

// GetBySpotifyID retrieves a tracked user by Spotify ID, excluding soft-deleted users
func (r *UserRepository) GetBySpotifyID(spotifyID string) (*models.TrackedUser, error) {
	query := `
		SELECT id, sequence, spotify_id, display_name, created_at, updated_at, deleted_at
		FROM users
		WHERE spotify_id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, spotifyID), spotifyID)
}

func (r *UserRepository) scanOne(row *sql.Row, ref string) (*models.TrackedUser, error) {
	var (
		userID      string
		sequence    int
		spotifyID   string
		displayName sql.NullString
		createdAt   time.Time
		updatedAt   time.Time
		deletedAt   sql.NullTime
	)

	err := row.Scan(&userID, &sequence, &spotifyID, &displayName, &createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrUserNotFound, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	user := models.NewTrackedUser(sequence, spotifyID, displayName.String)
	user.SetID(userID)
	user.SetCreatedAt(createdAt)
	user.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		user.SetDeletedAt(&deletedAt.Time)
	}

	return user, nil
}

// Update modifies an existing tracked user in the database
func (r *UserRepository) Update(user *models.TrackedUser) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	user.SetUpdatedAt(now)

	query := `
		UPDATE users
		SET spotify_id = ?, display_name = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, user.SpotifyID(), user.DisplayName(), now, user.ID())
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrUserNotFound, user.ID())
	}

	return nil
}

// Delete soft-deletes a tracked user by ID
func (r *UserRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE users
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrUserNotFound, id)
	}

	return nil
}

// List retrieves all tracked users matching the given criteria, excluding soft-deleted users
func (r *UserRepository) List(criteria map[string]any) ([]*models.TrackedUser, error) {
	query := `
		SELECT id, sequence, spotify_id, display_name, created_at, updated_at, deleted_at
		FROM users
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if spotifyID, ok := criteria["spotify_id"].(string); ok && spotifyID != "" {
		query += " AND spotify_id = ?"
		args = append(args, spotifyID)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*models.TrackedUser
	for rows.Next() {
		var (
			userID      string
			sequence    int
			spotifyID   string
			displayName sql.NullString
			createdAt   time.Time
			updatedAt   time.Time
			deletedAt   sql.NullTime
		)

		err := rows.Scan(&userID, &sequence, &spotifyID, &displayName, &createdAt, &updatedAt, &deletedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}

		user := models.NewTrackedUser(sequence, spotifyID, displayName.String)
		user.SetID(userID)
		user.SetCreatedAt(createdAt)
		user.SetUpdatedAt(updatedAt)
		if deletedAt.Valid {
			user.SetDeletedAt(&deletedAt.Time)
		}

		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return users, nil
}
