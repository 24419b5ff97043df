package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/spt/internal/models"
	"github.com/desertthunder/spt/internal/shared"
)

// RunRepository implements [models.Repository] for [models.SyncRun] persistence.
//
// Runs are append-only history: Update rewrites the outcome fields of a run
// that finished, Delete is unsupported.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new [RunRepository] with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new sync run into the database with generated ID and sequence
func (r *RunRepository) Create(run *models.SyncRun) error {
	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	run.SetID(id)
	run.SetSequence(sequence)

	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO runs (id, sequence, user_id, playlist_id, playlist_name, events_appended, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, id, sequence, run.UserID(), run.PlaylistID(), run.PlaylistName(),
		run.EventsAppended(), nullableString(run.ErrMessage()), run.StartedAt(), run.FinishedAt())
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// Get retrieves a sync run by ID
func (r *RunRepository) Get(id string) (*models.SyncRun, error) {
	query := `
		SELECT id, sequence, user_id, playlist_id, playlist_name, events_appended, error, started_at, finished_at
		FROM runs
		WHERE id = ?
	`

	run, err := scanRun(r.db.QueryRow(query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	return run, nil
}

// Update rewrites the outcome fields of an existing sync run
func (r *RunRepository) Update(run *models.SyncRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		UPDATE runs
		SET playlist_name = ?, events_appended = ?, error = ?, finished_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query, run.PlaylistName(), run.EventsAppended(),
		nullableString(run.ErrMessage()), run.FinishedAt(), run.ID())
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found: %s", run.ID())
	}

	return nil
}

// Delete is unsupported; run history is append-only
func (r *RunRepository) Delete(id string) error {
	return fmt.Errorf("%w: runs are append-only history", shared.ErrNotImplemented)
}

// List retrieves sync runs matching the given criteria, most recent first
func (r *RunRepository) List(criteria map[string]any) ([]*models.SyncRun, error) {
	query := `
		SELECT id, sequence, user_id, playlist_id, playlist_name, events_appended, error, started_at, finished_at
		FROM runs
		WHERE 1 = 1
	`

	args := []any{}

	if userID, ok := criteria["user_id"].(string); ok && userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}
	if playlistID, ok := criteria["playlist_id"].(string); ok && playlistID != "" {
		query += " AND playlist_id = ?"
		args = append(args, playlistID)
	}

	query += " ORDER BY started_at DESC, sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.SyncRun
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

func scanRun(scan func(dest ...any) error) (*models.SyncRun, error) {
	var (
		runID          string
		sequence       int
		userID         string
		playlistID     string
		playlistName   string
		eventsAppended int
		errMessage     sql.NullString
		startedAt      sql.NullTime
		finishedAt     sql.NullTime
	)

	err := scan(&runID, &sequence, &userID, &playlistID, &playlistName, &eventsAppended, &errMessage, &startedAt, &finishedAt)
	if err != nil {
		return nil, err
	}

	run := models.NewSyncRun(sequence, userID, playlistID, playlistName)
	run.SetID(runID)
	run.SetEventsAppended(eventsAppended)
	if errMessage.Valid {
		run.SetErrMessage(errMessage.String)
	}
	if startedAt.Valid {
		run.SetStartedAt(startedAt.Time)
	}
	if finishedAt.Valid {
		run.SetFinishedAt(finishedAt.Time)
	}

	return run, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
