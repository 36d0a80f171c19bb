package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/lfmgenre/internal/models"
	"github.com/desertthunder/lfmgenre/internal/shared"
)

const runColumns = `id, sequence, started_at, finished_at, dry_run, total, tagged, skipped, failed`

// RunRepository implements models.Repository[*models.TagRun]
type RunRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.TagRun] = (*RunRepository)(nil)

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new [models.TagRun] with a generated ID and sequence
func (r *RunRepository) Create(run *models.TagRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "tag_runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	query := `INSERT INTO tag_runs (` + runColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.Exec(query,
		id,
		sequence,
		run.StartedAt(),
		run.FinishedAt(),
		run.DryRun(),
		run.Total(),
		run.Tagged(),
		run.Skipped(),
		run.Failed(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert tag run: %w", err)
	}

	run.SetID(id)
	run.SetSequence(sequence)
	return nil
}

// Get retrieves a run by ID
func (r *RunRepository) Get(id string) (*models.TagRun, error) {
	query := `SELECT ` + runColumns + ` FROM tag_runs WHERE id = ?`
	return r.scanOne(r.db.QueryRow(query, id))
}

// GetBySequence retrieves a run by its "#N" sequence number
func (r *RunRepository) GetBySequence(sequence int) (*models.TagRun, error) {
	query := `SELECT ` + runColumns + ` FROM tag_runs WHERE sequence = ?`
	return r.scanOne(r.db.QueryRow(query, sequence))
}

// Latest retrieves the most recently started run
func (r *RunRepository) Latest() (*models.TagRun, error) {
	query := `SELECT ` + runColumns + ` FROM tag_runs ORDER BY sequence DESC LIMIT 1`
	return r.scanOne(r.db.QueryRow(query))
}

// Update stores the run's counters and finish time
func (r *RunRepository) Update(run *models.TagRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		UPDATE tag_runs
		SET finished_at = ?, total = ?, tagged = ?, skipped = ?, failed = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		run.FinishedAt(),
		run.Total(),
		run.Tagged(),
		run.Skipped(),
		run.Failed(),
		run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update tag run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRunNotFound, run.ID())
	}

	return nil
}

// Delete removes a run by ID. Its tracks are kept with their run cleared.
func (r *RunRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM tag_runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tag run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRunNotFound, id)
	}

	return nil
}

// List retrieves runs newest first.
//
// Supported criteria: "dry_run" (bool), "finished" (bool) and "limit" (int).
func (r *RunRepository) List(criteria map[string]any) ([]*models.TagRun, error) {
	query := `SELECT ` + runColumns + ` FROM tag_runs WHERE 1 = 1`
	args := []any{}

	if dryRun, ok := criteria["dry_run"].(bool); ok {
		query += " AND dry_run = ?"
		args = append(args, dryRun)
	}

	if finished, ok := criteria["finished"].(bool); ok {
		if finished {
			query += " AND finished_at IS NOT NULL"
		} else {
			query += " AND finished_at IS NULL"
		}
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tag runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.TagRun
	for rows.Next() {
		run, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

func (r *RunRepository) scanOne(row *sql.Row) (*models.TagRun, error) {
	run, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrRunNotFound
	}
	return run, err
}

func (r *RunRepository) scan(row rowScanner) (*models.TagRun, error) {
	var (
		id         string
		sequence   int
		startedAt  time.Time
		finishedAt sql.NullTime
		dryRun     bool
		total      int
		tagged     int
		skipped    int
		failed     int
	)

	err := row.Scan(&id, &sequence, &startedAt, &finishedAt, &dryRun, &total, &tagged, &skipped, &failed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan tag run: %w", err)
	}

	run := models.NewTagRun(dryRun)
	run.SetID(id)
	run.SetSequence(sequence)
	run.SetStartedAt(startedAt)
	if finishedAt.Valid {
		at := finishedAt.Time
		run.SetFinishedAt(&at)
	}
	run.SetCounts(total, tagged, skipped, failed)

	return run, nil
}
