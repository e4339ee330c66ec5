package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/dept-timetable-api/internal/dto"
	appErrors "github.com/noah-isme/dept-timetable-api/pkg/errors"
	"github.com/noah-isme/dept-timetable-api/pkg/jobs"
)

const autoAssignJobType = "auto_assign"

type autoAssignRunner interface {
	Run(ctx context.Context) (*dto.AutoAssignSummary, error)
}

// AutoAssignJobsConfig tunes the background auto-assign queue.
type AutoAssignJobsConfig struct {
	JobTTL     time.Duration
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
}

// AutoAssignJobs runs auto-assign passes in the background, one at a time.
type AutoAssignJobs struct {
	runner autoAssignRunner
	queue  *jobs.Queue
	store  *jobStore
	logger *zap.Logger
}

// NewAutoAssignJobs builds the job runner on a single-worker queue.
func NewAutoAssignJobs(runner autoAssignRunner, cfg AutoAssignJobsConfig, logger *zap.Logger) *AutoAssignJobs {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 30 * time.Minute
	}
	svc := &AutoAssignJobs{
		runner: runner,
		store:  newJobStore(cfg.JobTTL),
		logger: logger,
	}
	svc.queue = jobs.NewQueue("auto-assign", svc.handle, jobs.QueueConfig{
		Workers:    1,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		OnFailure:  svc.fail,
		Logger:     logger,
	})
	return svc
}

// Start launches the worker.
func (s *AutoAssignJobs) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the worker.
func (s *AutoAssignJobs) Stop() {
	s.queue.Stop()
}

// Submit enqueues a pass and returns its tracking record.
func (s *AutoAssignJobs) Submit(ctx context.Context) (*dto.AutoAssignJob, error) {
	job := dto.AutoAssignJob{ID: uuid.NewString(), Status: dto.JobStatusQueued, CreatedAt: time.Now().UTC()}
	s.store.Save(job)

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: autoAssignJobType}); err != nil {
		s.store.Delete(job.ID)
		if errors.Is(err, jobs.ErrQueueFull) {
			return nil, appErrors.Clone(appErrors.ErrPassInProgress, "too many auto-assign jobs queued")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue auto-assign job")
	}
	s.logger.Info("auto-assign job queued", zap.String("job_id", job.ID), zap.Int("pending", s.queue.Pending()))
	return &job, nil
}

// Get returns a job that has not yet expired.
func (s *AutoAssignJobs) Get(_ context.Context, id string) (*dto.AutoAssignJob, error) {
	job, ok := s.store.Get(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "auto-assign job not found")
	}
	return &job, nil
}

func (s *AutoAssignJobs) handle(ctx context.Context, j jobs.Job) error {
	s.store.Update(j.ID, func(job *dto.AutoAssignJob) {
		job.Status = dto.JobStatusRunning
	})
	summary, err := s.runner.Run(ctx)
	if err != nil {
		return err
	}
	s.store.Update(j.ID, func(job *dto.AutoAssignJob) {
		now := time.Now().UTC()
		job.Status = dto.JobStatusSucceeded
		job.Summary = summary
		job.Error = ""
		job.FinishedAt = &now
	})
	return nil
}

func (s *AutoAssignJobs) fail(j jobs.Job, err error) {
	s.store.Update(j.ID, func(job *dto.AutoAssignJob) {
		now := time.Now().UTC()
		job.Status = dto.JobStatusFailed
		job.Error = err.Error()
		job.FinishedAt = &now
	})
}

type jobStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]dto.AutoAssignJob
}

func newJobStore(ttl time.Duration) *jobStore {
	return &jobStore{
		ttl:   ttl,
		items: make(map[string]dto.AutoAssignJob),
	}
}

func (s *jobStore) Save(job dto.AutoAssignJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()
	s.items[job.ID] = job
}

func (s *jobStore) Update(id string, fn func(job *dto.AutoAssignJob)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.items[id]
	if !ok {
		return
	}
	fn(&job)
	s.items[id] = job
}

func (s *jobStore) Get(id string) (dto.AutoAssignJob, bool) {
	s.mu.RLock()
	job, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return dto.AutoAssignJob{}, false
	}
	if time.Since(job.CreatedAt) > s.ttl {
		s.Delete(id)
		return dto.AutoAssignJob{}, false
	}
	return job, true
}

func (s *jobStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}

// sweep drops expired jobs. Callers hold mu.
func (s *jobStore) sweep() {
	for id, job := range s.items {
		if time.Since(job.CreatedAt) > s.ttl {
			delete(s.items, id)
		}
	}
}
