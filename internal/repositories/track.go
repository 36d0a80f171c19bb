package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/lfmgenre/internal/models"
	"github.com/desertthunder/lfmgenre/internal/shared"
)

const trackColumns = `id, sequence, run_id, path, artist, title, album, album_artist, match_key, genre, status, error, created_at, updated_at`

// TrackRepository implements [models.TrackStore].
//
// A file path identifies a track; tagging the same file again updates its row through [TrackRepository.Save].
type TrackRepository struct {
	db *sql.DB
}

var _ models.TrackStore = (*TrackRepository)(nil)

// NewTrackRepository creates a new TrackRepository with the given database connection
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

// Create inserts a new [models.Track] with a generated ID and sequence
func (r *TrackRepository) Create(track *models.Track) error {
	if err := track.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "tracks")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	query := `INSERT INTO tracks (` + trackColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.Exec(query,
		id,
		sequence,
		nullString(track.RunID()),
		track.Path(),
		track.Artist(),
		track.Title(),
		track.Album(),
		track.AlbumArtist(),
		track.MatchKey(),
		track.Genre(),
		string(track.Status()),
		track.Error(),
		track.CreatedAt(),
		track.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert track: %w", err)
	}

	track.SetID(id)
	track.SetSequence(sequence)
	return nil
}

// Get retrieves a track by ID
func (r *TrackRepository) Get(id string) (*models.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE id = ?`
	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByPath retrieves the track stored for a file path
func (r *TrackRepository) GetByPath(path string) (*models.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE path = ?`
	return r.scanOne(r.db.QueryRow(query, path))
}

// Update modifies an existing track in the database
func (r *TrackRepository) Update(track *models.Track) error {
	if err := track.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	track.SetUpdatedAt(now)

	query := `
		UPDATE tracks
		SET run_id = ?, artist = ?, title = ?, album = ?, album_artist = ?, match_key = ?,
			genre = ?, status = ?, error = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		nullString(track.RunID()),
		track.Artist(),
		track.Title(),
		track.Album(),
		track.AlbumArtist(),
		track.MatchKey(),
		track.Genre(),
		string(track.Status()),
		track.Error(),
		now,
		track.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update track: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrTrackNotFound, track.ID())
	}

	return nil
}

// Save updates the row stored for the track's path, or creates one.
func (r *TrackRepository) Save(track *models.Track) error {
	existing, err := r.GetByPath(track.Path())
	switch {
	case errors.Is(err, shared.ErrTrackNotFound):
		return r.Create(track)
	case err != nil:
		return err
	}

	track.SetID(existing.ID())
	track.SetSequence(existing.Sequence())
	track.SetCreatedAt(existing.CreatedAt())
	return r.Update(track)
}

// Delete removes a track by ID
func (r *TrackRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM tracks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete track: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
	}

	return nil
}

// List retrieves all tracks matching the given criteria.
//
// Supported criteria: "status" (string or models.TrackStatus), "run_id", "artist"
// (case-insensitive exact match) and "limit" (int).
func (r *TrackRepository) List(criteria map[string]any) ([]*models.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE 1 = 1`
	args := []any{}

	switch status := criteria["status"].(type) {
	case models.TrackStatus:
		query += " AND status = ?"
		args = append(args, string(status))
	case string:
		if status != "" {
			query += " AND status = ?"
			args = append(args, status)
		}
	}

	if runID, ok := criteria["run_id"].(string); ok && runID != "" {
		query += " AND run_id = ?"
		args = append(args, runID)
	}

	if artist, ok := criteria["artist"].(string); ok && artist != "" {
		query += " AND artist = ? COLLATE NOCASE"
		args = append(args, artist)
	}

	query += " ORDER BY sequence ASC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*models.Track
	for rows.Next() {
		track, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tracks, nil
}

// CountByStatus returns how many tracks are stored per status.
func (r *TrackRepository) CountByStatus() (map[models.TrackStatus]int, error) {
	rows, err := r.db.Query(`SELECT status, COUNT(*) FROM tracks GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count tracks: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.TrackStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[models.TrackStatus(status)] = n
	}
	return counts, rows.Err()
}

func (r *TrackRepository) scanOne(row *sql.Row) (*models.Track, error) {
	track, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrTrackNotFound
	}
	return track, err
}

// scan reads one row selected with trackColumns into a [models.Track]
func (r *TrackRepository) scan(row rowScanner) (*models.Track, error) {
	var (
		id          string
		sequence    int
		runID       sql.NullString
		path        string
		artist      string
		title       string
		album       string
		albumArtist string
		matchKey    string
		genre       string
		status      string
		errMsg      string
		createdAt   time.Time
		updatedAt   time.Time
	)

	err := row.Scan(&id, &sequence, &runID, &path, &artist, &title, &album, &albumArtist, &matchKey, &genre, &status, &errMsg, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan track: %w", err)
	}

	track := models.NewTrack(path, artist, title, album, albumArtist)
	track.SetID(id)
	track.SetSequence(sequence)
	track.SetRunID(runID.String)
	track.SetMatchKey(matchKey)
	track.SetGenre(genre)
	track.SetStatus(models.TrackStatus(status), errMsg)
	track.SetCreatedAt(createdAt)
	track.SetUpdatedAt(updatedAt)

	return track, nil
}
