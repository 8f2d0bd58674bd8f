package thumbs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/framehaus/framehaus/internal/metrics"
	"github.com/framehaus/framehaus/internal/models"
	"github.com/framehaus/framehaus/internal/storage"
)

// pollInterval is how long an idle worker sleeps between queue polls.
const pollInterval = 2 * time.Second

// Store defines the data access the thumbnail workers need.
type Store interface {
	ClaimThumbJob(ctx context.Context) (*models.ThumbJob, error)
	CompleteThumbJob(ctx context.Context, id uuid.UUID) error
	FailThumbJob(ctx context.Context, id uuid.UUID, jobErr string) (terminal bool, err error)
	GetPhotoByID(ctx context.Context, id uuid.UUID) (*models.Photo, error)
	SetPhotoThumb(ctx context.Context, id uuid.UUID, thumbKey string, width, height int) error
	SetPhotoThumbStatus(ctx context.Context, id uuid.UUID, status models.ThumbStatus) error
}

// ObjectStore is the slice of object storage the workers use.
type ObjectStore interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, key, contentType string, data []byte) error
}

// Pool runs a fixed number of workers that claim queued thumbnail jobs,
// render thumbnails, and upload them next to the originals.
type Pool struct {
	store   Store
	objects ObjectStore
	workers int
	logger  zerolog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPool creates a worker pool with the given concurrency.
func NewPool(store Store, objects ObjectStore, workers int, logger zerolog.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		store:   store,
		objects: objects,
		workers: workers,
		logger:  logger.With().Str("component", "thumbs").Logger(),
	}
}

// Start launches the workers. Call Stop on shutdown.
func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run(ctx, i)
	}
	p.logger.Info().Int("workers", p.workers).Msg("thumbnail workers started")
}

// Stop signals the workers and waits for in-flight jobs to finish.
func (p *Pool) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	p.logger.Info().Msg("thumbnail workers stopped")
}

func (p *Pool) run(ctx context.Context, id int) {
	defer p.wg.Done()
	logger := p.logger.With().Int("worker", id).Logger()

	for {
		job, err := p.store.ClaimThumbJob(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error().Err(err).Msg("claim thumb job")
		} else if job != nil {
			p.process(ctx, logger, job)
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(pollInterval):
		}
	}
}

func (p *Pool) process(ctx context.Context, logger zerolog.Logger, job *models.ThumbJob) {
	err := p.generate(ctx, job)
	if err == nil {
		if err := p.store.CompleteThumbJob(ctx, job.ID); err != nil {
			logger.Error().Err(err).Str("job_id", job.ID.String()).Msg("complete thumb job")
			return
		}
		metrics.ThumbJobsProcessed.WithLabelValues("done").Inc()
		logger.Debug().
			Str("job_id", job.ID.String()).
			Str("photo_id", job.PhotoID.String()).
			Msg("thumbnail generated")
		return
	}

	terminal, failErr := p.store.FailThumbJob(ctx, job.ID, err.Error())
	if failErr != nil {
		logger.Error().Err(failErr).Str("job_id", job.ID.String()).Msg("record thumb job failure")
		return
	}

	if terminal {
		metrics.ThumbJobsProcessed.WithLabelValues("failed").Inc()
		if err := p.store.SetPhotoThumbStatus(ctx, job.PhotoID, models.ThumbFailed); err != nil {
			logger.Error().Err(err).Str("photo_id", job.PhotoID.String()).Msg("mark photo thumb failed")
		}
		logger.Error().Err(err).
			Str("job_id", job.ID.String()).
			Str("photo_id", job.PhotoID.String()).
			Int("attempts", job.Attempts).
			Msg("thumbnail job failed terminally")
		return
	}

	metrics.ThumbJobsProcessed.WithLabelValues("retried").Inc()
	logger.Warn().Err(err).
		Str("job_id", job.ID.String()).
		Int("attempts", job.Attempts).
		Msg("thumbnail job failed, will retry")
}

// generate renders and uploads the thumbnail for one job.
func (p *Pool) generate(ctx context.Context, job *models.ThumbJob) error {
	photo, err := p.store.GetPhotoByID(ctx, job.PhotoID)
	if err != nil {
		return err
	}
	if photo == nil {
		return fmt.Errorf("photo %s no longer exists", job.PhotoID)
	}
	if photo.ThumbStatus == models.ThumbReady {
		// Another worker already processed a duplicate job.
		return nil
	}

	original, err := p.objects.Download(ctx, photo.ObjectKey)
	if err != nil {
		return err
	}

	thumb, width, height, err := Resize(original)
	if err != nil {
		return err
	}

	thumbKey := storage.ThumbKey(photo.BrandID, photo.ID)
	if err := p.objects.Upload(ctx, thumbKey, "image/jpeg", thumb); err != nil {
		return err
	}

	return p.store.SetPhotoThumb(ctx, photo.ID, thumbKey, width, height)
}
