package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/playrelay/internal/models"
	"github.com/desertthunder/playrelay/internal/shared"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 200
)

// PlayRepository persists [models.Play] records.
type PlayRepository struct {
	db *sql.DB
}

// NewPlayRepository creates a new [PlayRepository] with the given database connection
func NewPlayRepository(db *sql.DB) *PlayRepository {
	return &PlayRepository{db: db}
}

// Record inserts play, assigning an ID and creation time when they are unset.
func (r *PlayRepository) Record(ctx context.Context, play *models.Play) error {
	if err := play.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if play.ID == "" {
		play.ID = shared.GenerateID()
	}
	if play.CreatedAt.IsZero() {
		play.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO plays (id, track_uri, outcome, status, attempts, refreshed, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		play.ID, play.TrackURI, play.Outcome, play.Status, play.Attempts, play.Refreshed, play.Detail, play.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert play: %w", err)
	}

	return nil
}

// Recent returns up to limit plays, newest first. Non-positive limits use the default of 20.
func (r *PlayRepository) Recent(ctx context.Context, limit int) ([]models.Play, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	query := `
		SELECT id, track_uri, outcome, status, attempts, refreshed, detail, created_at
		FROM plays
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query plays: %w", err)
	}
	defer rows.Close()

	plays := []models.Play{}
	for rows.Next() {
		var p models.Play
		if err := rows.Scan(&p.ID, &p.TrackURI, &p.Outcome, &p.Status, &p.Attempts, &p.Refreshed, &p.Detail, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan play: %w", err)
		}
		plays = append(plays, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating plays: %w", err)
	}

	return plays, nil
}

// Get retrieves a play by ID.
func (r *PlayRepository) Get(ctx context.Context, id string) (*models.Play, error) {
	query := `
		SELECT id, track_uri, outcome, status, attempts, refreshed, detail, created_at
		FROM plays
		WHERE id = ?
	`

	var p models.Play
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&p.ID, &p.TrackURI, &p.Outcome, &p.Status, &p.Attempts, &p.Refreshed, &p.Detail, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlayNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query play: %w", err)
	}

	return &p, nil
}
