package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/scheduler"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type courseReader interface {
	List(ctx context.Context) ([]models.Course, error)
}

type instructorReader interface {
	List(ctx context.Context) ([]models.Instructor, error)
}

type classroomReader interface {
	List(ctx context.Context) ([]models.Classroom, error)
}

type constraintReader interface {
	List(ctx context.Context) ([]models.Constraint, error)
}

type timetableWriter interface {
	Create(ctx context.Context, exec sqlx.ExtContext, timetable *models.Timetable) error
	FindByID(ctx context.Context, id int64) (*models.Timetable, error)
	Activate(ctx context.Context, exec sqlx.ExtContext, id int64) error
}

type scheduledClassWriter interface {
	BulkCreate(ctx context.Context, exec sqlx.ExtContext, classes []models.ScheduledClass) error
	DeleteByTimetable(ctx context.Context, exec sqlx.ExtContext, timetableID int64) (int64, error)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// CatalogReaders groups the read accessors for the generation inputs.
type CatalogReaders struct {
	Courses     courseReader
	Instructors instructorReader
	Classrooms  classroomReader
	Constraints constraintReader
}

// TimetableGeneratorConfig governs generator behaviour.
type TimetableGeneratorConfig struct {
	ProposalTTL time.Duration
}

// TimetableGeneratorService runs the assignment engine over the stored
// catalogue and persists the resulting timetables.
type TimetableGeneratorService struct {
	catalog    CatalogReaders
	timetables timetableWriter
	classes    scheduledClassWriter
	tx         txProvider
	engine     *scheduler.Engine
	cache      *CacheService
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	store      *proposalStore
}

// NewTimetableGeneratorService wires generator dependencies.
func NewTimetableGeneratorService(
	catalog CatalogReaders,
	timetables timetableWriter,
	classes scheduledClassWriter,
	tx txProvider,
	engine *scheduler.Engine,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg TimetableGeneratorConfig,
) *TimetableGeneratorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if engine == nil {
		engine = scheduler.NewEngine(scheduler.Options{Logger: logger})
	}
	if cfg.ProposalTTL <= 0 {
		cfg.ProposalTTL = 30 * time.Minute
	}
	return &TimetableGeneratorService{
		catalog:    catalog,
		timetables: timetables,
		classes:    classes,
		tx:         tx,
		engine:     engine,
		cache:      cache,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		store:      newProposalStore(cfg.ProposalTTL),
	}
}

// Generate builds a new timetable and persists it with its classes in one transaction.
func (s *TimetableGeneratorService) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generate timetable payload")
	}

	result, err := s.run(ctx, req.Seed, req.Sections, 0)
	if err != nil {
		return nil, err
	}

	timetable := &models.Timetable{Name: req.Name, Semester: req.Semester}
	if err := s.persist(ctx, timetable, true, result.Classes, req.Activate); err != nil {
		return nil, err
	}

	s.logger.Info("timetable generated",
		zap.Int64("timetable_id", timetable.ID),
		zap.Int64("seed", result.Seed),
		zap.Int("classes", len(result.Classes)),
		zap.Int("unplaced", len(result.Unplaced)),
	)
	return buildGenerateResponse(timetable, result), nil
}

// Regenerate replaces the classes of an existing timetable with a fresh run.
func (s *TimetableGeneratorService) Regenerate(ctx context.Context, timetableID int64, req dto.RegenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid regenerate timetable payload")
	}

	timetable, err := s.timetables.FindByID(ctx, timetableID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}

	result, err := s.run(ctx, req.Seed, req.Sections, timetable.ID)
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx, timetable, false, result.Classes, false); err != nil {
		return nil, err
	}
	_ = s.cache.Delete(ctx, conflictCacheKey(timetable.ID))

	s.logger.Info("timetable regenerated",
		zap.Int64("timetable_id", timetable.ID),
		zap.Int64("seed", result.Seed),
		zap.Int("classes", len(result.Classes)),
	)
	return buildGenerateResponse(timetable, result), nil
}

// Preview runs the engine without persisting and keeps the proposal for a later commit.
func (s *TimetableGeneratorService) Preview(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid preview payload")
	}

	result, err := s.run(ctx, req.Seed, req.Sections, 0)
	if err != nil {
		return nil, err
	}

	proposal := timetableProposal{
		ID:          uuid.NewString(),
		Request:     req,
		Result:      result,
		RequestedAt: time.Now().UTC(),
	}
	s.store.Save(proposal)

	resp := buildGenerateResponse(nil, result)
	resp.ProposalID = proposal.ID
	expires := proposal.RequestedAt.Add(s.store.ttl)
	resp.ExpiresAt = &expires
	return resp, nil
}

// Commit persists a previously previewed proposal.
func (s *TimetableGeneratorService) Commit(ctx context.Context, proposalID string, req dto.CommitProposalRequest) (*dto.GenerateTimetableResponse, error) {
	// Take is atomic: of two concurrent commits for one id, only one persists.
	proposal, ok := s.store.Take(proposalID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}

	classes := append([]models.ScheduledClass(nil), proposal.Result.Classes...)
	timetable := &models.Timetable{Name: proposal.Request.Name, Semester: proposal.Request.Semester}
	if err := s.persist(ctx, timetable, true, classes, proposal.Request.Activate || req.Activate); err != nil {
		s.store.Restore(proposal)
		return nil, err
	}

	committed := *proposal.Result
	committed.Classes = classes
	resp := buildGenerateResponse(timetable, &committed)
	resp.ProposalID = proposalID
	return resp, nil
}

// run loads the catalogue and executes one engine pass.
func (s *TimetableGeneratorService) run(ctx context.Context, seed *int64, sections []string, timetableID int64) (*scheduler.Result, error) {
	input, err := s.loadInput(ctx)
	if err != nil {
		return nil, err
	}
	input.TimetableID = timetableID

	engine := s.engine.WithSections(sections)
	if seed != nil {
		engine = engine.WithSeed(*seed)
	}

	start := time.Now()
	result, err := engine.Generate(input)
	s.metrics.ObserveGeneration(result, time.Since(start))
	if err != nil {
		if errors.Is(err, scheduler.ErrMalformedConstraint) {
			return nil, appErrors.Wrap(err, appErrors.ErrMalformedConstraint.Code, appErrors.ErrMalformedConstraint.Status, err.Error())
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate timetable")
	}
	return result, nil
}

func (s *TimetableGeneratorService) loadInput(ctx context.Context) (scheduler.Input, error) {
	var input scheduler.Input
	var err error

	if input.Courses, err = s.catalog.Courses.List(ctx); err != nil {
		return input, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
	}
	if input.Instructors, err = s.catalog.Instructors.List(ctx); err != nil {
		return input, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructors")
	}
	if input.Classrooms, err = s.catalog.Classrooms.List(ctx); err != nil {
		return input, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classrooms")
	}
	if input.Constraints, err = s.catalog.Constraints.List(ctx); err != nil {
		return input, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load constraints")
	}
	return input, nil
}

// persist writes the timetable (or clears its old classes) and inserts the new
// classes inside a single transaction.
func (s *TimetableGeneratorService) persist(ctx context.Context, timetable *models.Timetable, create bool, classes []models.ScheduledClass, activate bool) (err error) {
	if s.tx == nil {
		return appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if create {
		if err = s.timetables.Create(ctx, tx, timetable); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create timetable")
		}
	} else {
		if _, err = s.classes.DeleteByTimetable(ctx, tx, timetable.ID); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear timetable classes")
		}
	}

	for i := range classes {
		classes[i].TimetableID = timetable.ID
	}
	if err = s.classes.BulkCreate(ctx, tx, classes); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist scheduled classes")
	}

	if activate {
		if err = s.timetables.Activate(ctx, tx, timetable.ID); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to activate timetable")
		}
		timetable.IsActive = true
	}

	if err = tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit timetable")
	}
	return nil
}

func buildGenerateResponse(timetable *models.Timetable, result *scheduler.Result) *dto.GenerateTimetableResponse {
	return &dto.GenerateTimetableResponse{
		Timetable:  timetable,
		Classes:    result.Classes,
		ClassCount: len(result.Classes),
		Unplaced:   result.Unplaced,
		Stats:      result.Stats,
		Seed:       result.Seed,
		Complete:   result.Complete(),
	}
}

type timetableProposal struct {
	ID          string
	Request     dto.GenerateTimetableRequest
	Result      *scheduler.Result
	RequestedAt time.Time
}

type proposalStore struct {
	ttl   time.Duration
	mu    sync.Mutex
	items map[string]timetableProposal
}

func newProposalStore(ttl time.Duration) *proposalStore {
	return &proposalStore{
		ttl:   ttl,
		items: make(map[string]timetableProposal),
	}
}

func (s *proposalStore) Save(proposal timetableProposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictExpiredLocked(time.Now())
	s.items[proposal.ID] = proposal
}

// Take removes and returns a live proposal in one step.
func (s *proposalStore) Take(id string) (timetableProposal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	proposal, ok := s.items[id]
	if !ok {
		return timetableProposal{}, false
	}
	delete(s.items, id)
	if time.Since(proposal.RequestedAt) > s.ttl {
		return timetableProposal{}, false
	}
	return proposal, true
}

// Restore puts back a proposal whose commit failed, keeping its original expiry.
func (s *proposalStore) Restore(proposal timetableProposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[proposal.ID]; !exists {
		s.items[proposal.ID] = proposal
	}
}

func (s *proposalStore) evictExpiredLocked(now time.Time) {
	for id, proposal := range s.items {
		if now.Sub(proposal.RequestedAt) > s.ttl {
			delete(s.items, id)
		}
	}
}
