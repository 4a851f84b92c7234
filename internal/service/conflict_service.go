package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/scheduler"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

const conflictCachePrefix = "conflicts:timetable"

func conflictCacheKey(timetableID int64) string {
	return fmt.Sprintf("%s:%d", conflictCachePrefix, timetableID)
}

type timetableFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Timetable, error)
}

type scheduledClassLister interface {
	ListByTimetable(ctx context.Context, timetableID int64) ([]models.ScheduledClass, error)
}

// ConflictServiceConfig controls report caching.
type ConflictServiceConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// ConflictService audits timetables for double bookings.
type ConflictService struct {
	timetables timetableFinder
	classes    scheduledClassLister
	cache      *CacheService
	validator  *validator.Validate
	logger     *zap.Logger
	cfg        ConflictServiceConfig
}

// NewConflictService constructs the conflict audit service.
func NewConflictService(timetables timetableFinder, classes scheduledClassLister, cache *CacheService, validate *validator.Validate, logger *zap.Logger, cfg ConflictServiceConfig) *ConflictService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictService{
		timetables: timetables,
		classes:    classes,
		cache:      cache,
		validator:  validate,
		logger:     logger,
		cfg:        cfg,
	}
}

// Check dispatches a request to the stored-timetable or payload audit.
func (s *ConflictService) Check(ctx context.Context, req dto.ConflictCheckRequest) (*dto.ConflictCheckResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "provide either timetableId or classes")
	}
	if req.TimetableID != nil {
		return s.CheckTimetable(ctx, *req.TimetableID)
	}
	return s.CheckClasses(ctx, req.Classes), nil
}

// CheckTimetable audits the classes stored for a timetable. Reports are cached
// by timetable id until the timetable changes.
func (s *ConflictService) CheckTimetable(ctx context.Context, timetableID int64) (*dto.ConflictCheckResponse, error) {
	key := conflictCacheKey(timetableID)
	if s.cfg.CacheEnabled {
		var cached dto.ConflictCheckResponse
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			cached.Cached = true
			return &cached, nil
		}
	}

	if _, err := s.timetables.FindByID(ctx, timetableID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}

	classes, err := s.classes.ListByTimetable(ctx, timetableID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scheduled classes")
	}

	resp := buildConflictResponse(scheduler.CheckConflicts(classes))
	resp.TimetableID = &timetableID

	if resp.HasConflicts {
		s.logger.Warn("timetable has conflicts", zap.Int64("timetable_id", timetableID), zap.Int("groups", resp.Total))
	}
	if s.cfg.CacheEnabled {
		_ = s.cache.Set(ctx, key, resp, s.cfg.CacheTTL)
	}
	return resp, nil
}

// CheckClasses audits an ad-hoc list of classes without touching storage.
func (s *ConflictService) CheckClasses(_ context.Context, classes []models.ScheduledClass) *dto.ConflictCheckResponse {
	return buildConflictResponse(scheduler.CheckConflicts(classes))
}

func buildConflictResponse(report scheduler.ConflictReport) *dto.ConflictCheckResponse {
	return &dto.ConflictCheckResponse{
		HasConflicts: report.HasConflicts(),
		Total:        report.Total(),
		Conflicts:    report,
		CheckedAt:    time.Now().UTC(),
	}
}
