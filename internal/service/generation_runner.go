package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/jobs"
)

const generationJobType = "timetable.generate"

type timetableGenerator interface {
	Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error)
}

// GenerationRunnerConfig sizes the background worker pool.
type GenerationRunnerConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	RunTTL     time.Duration
}

// GenerationRunner executes timetable generations on the background queue and
// tracks their status for polling clients.
type GenerationRunner struct {
	generator timetableGenerator
	queue     *jobs.Queue
	runs      *runStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGenerationRunner constructs the runner. Call Start before submitting.
func NewGenerationRunner(generator timetableGenerator, validate *validator.Validate, logger *zap.Logger, cfg GenerationRunnerConfig) *GenerationRunner {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RunTTL <= 0 {
		cfg.RunTTL = time.Hour
	}
	r := &GenerationRunner{
		generator: generator,
		runs:      newRunStore(cfg.RunTTL),
		validator: validate,
		logger:    logger,
	}
	r.queue = jobs.NewQueue("generation", r.handle, jobs.QueueConfig{
		Workers:     cfg.Workers,
		BufferSize:  cfg.BufferSize,
		MaxRetries:  cfg.MaxRetries,
		RetryDelay:  cfg.RetryDelay,
		OnExhausted: r.exhausted,
		Logger:      logger,
	})
	return r
}

// Start launches the workers.
func (r *GenerationRunner) Start(ctx context.Context) {
	r.queue.Start(ctx)
}

// Stop drains the workers.
func (r *GenerationRunner) Stop() {
	r.queue.Stop()
}

// Submit validates the request and queues a generation run.
func (r *GenerationRunner) Submit(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerationRunResponse, error) {
	if err := r.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generate timetable payload")
	}

	run := dto.GenerationRunResponse{
		ID:          uuid.NewString(),
		Status:      dto.GenerationRunPending,
		Request:     req,
		SubmittedAt: time.Now().UTC(),
	}
	r.runs.Save(run)

	if err := r.queue.Enqueue(jobs.Job{ID: run.ID, Type: generationJobType, Payload: req}); err != nil {
		r.runs.Delete(run.ID)
		return nil, appErrors.Wrap(err, appErrors.ErrServiceUnavailable.Code, appErrors.ErrServiceUnavailable.Status, "generation queue unavailable")
	}

	r.logger.Info("generation run submitted", zap.String("run_id", run.ID), zap.String("name", req.Name))
	return &run, nil
}

// Get returns the current state of a run.
func (r *GenerationRunner) Get(_ context.Context, id string) (*dto.GenerationRunResponse, error) {
	run, ok := r.runs.Get(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "generation run not found or expired")
	}
	return &run, nil
}

func (r *GenerationRunner) handle(ctx context.Context, job jobs.Job) error {
	req, ok := job.Payload.(dto.GenerateTimetableRequest)
	if !ok {
		r.finish(job.ID, nil, errors.New("unexpected job payload"))
		return nil
	}

	r.runs.Update(job.ID, func(run *dto.GenerationRunResponse) {
		now := time.Now().UTC()
		run.Status = dto.GenerationRunRunning
		run.Attempts = job.Attempt + 1
		if run.StartedAt == nil {
			run.StartedAt = &now
		}
	})

	resp, err := r.generator.Generate(ctx, req)
	if err != nil {
		if !retryable(err) {
			r.finish(job.ID, nil, err)
			return nil
		}
		r.runs.Update(job.ID, func(run *dto.GenerationRunResponse) {
			run.Error = err.Error()
		})
		return err
	}

	r.finish(job.ID, resp, nil)
	return nil
}

func (r *GenerationRunner) exhausted(job jobs.Job, err error) {
	r.finish(job.ID, nil, err)
}

func (r *GenerationRunner) finish(id string, resp *dto.GenerateTimetableResponse, err error) {
	r.runs.Update(id, func(run *dto.GenerationRunResponse) {
		now := time.Now().UTC()
		run.FinishedAt = &now
		if err != nil {
			run.Status = dto.GenerationRunFailed
			run.Error = err.Error()
			return
		}
		run.Status = dto.GenerationRunSucceeded
		run.Result = resp
		run.Error = ""
	})
	if err != nil {
		r.logger.Warn("generation run failed", zap.String("run_id", id), zap.Error(err))
		return
	}
	r.logger.Info("generation run succeeded", zap.String("run_id", id))
}

// retryable reports whether a failed generation may succeed on another attempt.
// Client errors such as validation or malformed constraints never do.
func retryable(err error) bool {
	return appErrors.FromError(err).Status >= http.StatusInternalServerError
}

type runStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]dto.GenerationRunResponse
}

func newRunStore(ttl time.Duration) *runStore {
	return &runStore{ttl: ttl, items: make(map[string]dto.GenerationRunResponse)}
}

func (s *runStore) Save(run dto.GenerationRunResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, existing := range s.items {
		if existing.FinishedAt != nil && now.Sub(*existing.FinishedAt) > s.ttl {
			delete(s.items, id)
		}
	}
	s.items[run.ID] = run
}

func (s *runStore) Get(id string) (dto.GenerationRunResponse, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.items[id]
	if !ok {
		return dto.GenerationRunResponse{}, false
	}
	if run.FinishedAt != nil && time.Since(*run.FinishedAt) > s.ttl {
		return dto.GenerationRunResponse{}, false
	}
	return run, true
}

func (s *runStore) Update(id string, mutate func(*dto.GenerationRunResponse)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.items[id]
	if !ok {
		return
	}
	mutate(&run)
	s.items[id] = run
}

func (s *runStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}
