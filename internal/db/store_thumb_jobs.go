package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/framehaus/framehaus/internal/models"
	"github.com/google/uuid"
)

// EnqueueThumbJob inserts a pending thumbnail job.
func (db *DB) EnqueueThumbJob(ctx context.Context, job *models.ThumbJob) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO thumb_jobs (id, photo_id, state, attempts, last_error, enqueued_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, job.ID, job.PhotoID, string(job.State), job.Attempts, job.LastError, job.EnqueuedAt)
	if err != nil {
		return fmt.Errorf("enqueue thumb job: %w", err)
	}
	return nil
}

// ClaimThumbJob atomically claims the oldest pending job, marking it running
// and bumping its attempt count. Returns nil when the queue is empty.
// SKIP LOCKED lets multiple workers poll without blocking each other.
func (db *DB) ClaimThumbJob(ctx context.Context) (*models.ThumbJob, error) {
	var job models.ThumbJob
	var stateStr string
	err := db.Pool.QueryRow(ctx, `
		UPDATE thumb_jobs SET state = 'running', attempts = attempts + 1, started_at = NOW()
		WHERE id = (
			SELECT id FROM thumb_jobs
			WHERE state = 'pending'
			ORDER BY enqueued_at
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		RETURNING id, photo_id, state, attempts, last_error, enqueued_at, started_at, finished_at
	`).Scan(
		&job.ID, &job.PhotoID, &stateStr, &job.Attempts, &job.LastError,
		&job.EnqueuedAt, &job.StartedAt, &job.FinishedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("claim thumb job: %w", err)
	}
	job.State = models.ThumbJobState(stateStr)
	return &job, nil
}

// CompleteThumbJob marks a job done.
func (db *DB) CompleteThumbJob(ctx context.Context, id uuid.UUID) error {
	result, err := db.Pool.Exec(ctx, `
		UPDATE thumb_jobs SET state = 'done', finished_at = NOW() WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("complete thumb job: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("thumb job not found")
	}
	return nil
}

// FailThumbJob records a failure. Jobs under the retry budget return to
// pending; exhausted jobs are marked failed terminally.
func (db *DB) FailThumbJob(ctx context.Context, id uuid.UUID, jobErr string) (terminal bool, err error) {
	var state string
	err = db.Pool.QueryRow(ctx, `
		UPDATE thumb_jobs SET
			state = CASE WHEN attempts >= $1 THEN 'failed' ELSE 'pending' END,
			last_error = $2,
			finished_at = CASE WHEN attempts >= $1 THEN NOW() ELSE NULL END
		WHERE id = $3
		RETURNING state
	`, models.MaxThumbAttempts, jobErr, id).Scan(&state)
	if err != nil {
		return false, fmt.Errorf("fail thumb job: %w", err)
	}
	return state == string(models.ThumbJobFailed), nil
}

// CountThumbJobs returns the number of jobs in the given state.
func (db *DB) CountThumbJobs(ctx context.Context, state models.ThumbJobState) (int, error) {
	var count int
	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM thumb_jobs WHERE state = $1`, string(state)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count thumb jobs: %w", err)
	}
	return count, nil
}
