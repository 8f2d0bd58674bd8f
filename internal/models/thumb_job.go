package models

import (
	"time"

	"github.com/google/uuid"
)

// ThumbJobState tracks a thumbnail job through the queue.
type ThumbJobState string

const (
	// ThumbJobPending is waiting to be claimed by a worker.
	ThumbJobPending ThumbJobState = "pending"
	// ThumbJobRunning has been claimed and is processing.
	ThumbJobRunning ThumbJobState = "running"
	// ThumbJobDone finished successfully.
	ThumbJobDone ThumbJobState = "done"
	// ThumbJobFailed exhausted its retries.
	ThumbJobFailed ThumbJobState = "failed"
)

// MaxThumbAttempts is the retry budget before a job is marked failed.
const MaxThumbAttempts = 3

// ThumbJob is one queued thumbnail generation task.
type ThumbJob struct {
	ID         uuid.UUID     `json:"id"`
	PhotoID    uuid.UUID     `json:"photo_id"`
	State      ThumbJobState `json:"state"`
	Attempts   int           `json:"attempts"`
	LastError  string        `json:"last_error,omitempty"`
	EnqueuedAt time.Time     `json:"enqueued_at"`
	StartedAt  *time.Time    `json:"started_at,omitempty"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
}

// NewThumbJob creates a pending job for the given photo.
func NewThumbJob(photoID uuid.UUID) *ThumbJob {
	return &ThumbJob{
		ID:         uuid.New(),
		PhotoID:    photoID,
		State:      ThumbJobPending,
		EnqueuedAt: time.Now(),
	}
}
