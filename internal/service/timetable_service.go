package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type timetableStore interface {
	List(ctx context.Context) ([]models.Timetable, error)
	FindByID(ctx context.Context, id int64) (*models.Timetable, error)
	FindActive(ctx context.Context) (*models.Timetable, error)
	Activate(ctx context.Context, exec sqlx.ExtContext, id int64) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id int64) error
}

type detailedClassLister interface {
	ListDetailedByTimetable(ctx context.Context, timetableID int64) ([]models.DetailedClass, error)
}

// TimetableService exposes stored timetables.
type TimetableService struct {
	timetables timetableStore
	classes    detailedClassLister
	tx         txProvider
	cache      *CacheService
	logger     *zap.Logger
}

// NewTimetableService constructs the service.
func NewTimetableService(timetables timetableStore, classes detailedClassLister, tx txProvider, cache *CacheService, logger *zap.Logger) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{timetables: timetables, classes: classes, tx: tx, cache: cache, logger: logger}
}

// List returns every timetable, newest first.
func (s *TimetableService) List(ctx context.Context) ([]models.Timetable, error) {
	timetables, err := s.timetables.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetables")
	}
	if timetables == nil {
		timetables = []models.Timetable{}
	}
	return timetables, nil
}

// Get returns a timetable with its classes joined to their references.
func (s *TimetableService) Get(ctx context.Context, id int64) (*models.TimetableWithClasses, error) {
	timetable, err := s.timetables.FindByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(err)
	}
	return s.withClasses(ctx, timetable)
}

// Active returns the active timetable with its classes.
func (s *TimetableService) Active(ctx context.Context) (*models.TimetableWithClasses, error) {
	timetable, err := s.timetables.FindActive(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no active timetable")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active timetable")
	}
	return s.withClasses(ctx, timetable)
}

// Activate makes the timetable the only active one.
func (s *TimetableService) Activate(ctx context.Context, id int64) (timetable *models.Timetable, err error) {
	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.timetables.Activate(ctx, tx, id); err != nil {
		return nil, s.lookupError(err)
	}
	if err = tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit activation")
	}

	timetable, err = s.timetables.FindByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(err)
	}
	s.logger.Info("timetable activated", zap.Int64("timetable_id", id))
	return timetable, nil
}

// Delete removes a timetable and its classes.
func (s *TimetableService) Delete(ctx context.Context, id int64) error {
	if err := s.timetables.Delete(ctx, nil, id); err != nil {
		return s.lookupError(err)
	}
	_ = s.cache.Delete(ctx, conflictCacheKey(id))
	s.logger.Info("timetable deleted", zap.Int64("timetable_id", id))
	return nil
}

func (s *TimetableService) withClasses(ctx context.Context, timetable *models.Timetable) (*models.TimetableWithClasses, error) {
	classes, err := s.classes.ListDetailedByTimetable(ctx, timetable.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scheduled classes")
	}
	if classes == nil {
		classes = []models.DetailedClass{}
	}
	return &models.TimetableWithClasses{Timetable: *timetable, Classes: classes}, nil
}

func (s *TimetableService) lookupError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
}
