package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/bnu-scit/registrar-api/internal/models"
	appErrors "github.com/bnu-scit/registrar-api/pkg/errors"
)

const catalogCachePrefix = "catalog:sections"

type catalogScheduleReader interface {
	ListDetailedForCatalog(ctx context.Context, semester int, degree string) ([]models.ScheduleDetail, error)
}

// CatalogService serves the scheduled-course catalog students pick sections
// from, keyed by their semester and degree. Listings are cached in Redis
// and invalidated whenever a schedule is assigned or removed.
type CatalogService struct {
	schedules catalogScheduleReader
	students  studentReader
	cache     *CacheService
	logger    *zap.Logger
}

// NewCatalogService constructs CatalogService.
func NewCatalogService(schedules catalogScheduleReader, students studentReader, cache *CacheService, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{schedules: schedules, students: students, cache: cache, logger: logger}
}

// SectionsForStudent returns scheduled courses matching the student's
// semester and degree.
func (s *CatalogService) SectionsForStudent(ctx context.Context, studentID string) ([]models.ScheduleDetail, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load student")
	}
	return s.Sections(ctx, student.Semester, student.Degree)
}

// Sections returns scheduled courses for a semester and degree, from cache
// when possible.
func (s *CatalogService) Sections(ctx context.Context, semester int, degree string) ([]models.ScheduleDetail, error) {
	key := fmt.Sprintf("%s:%d:%s", catalogCachePrefix, semester, degree)

	var cached []models.ScheduleDetail
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	details, err := s.schedules.ListDetailedForCatalog(ctx, semester, degree)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load catalog")
	}

	if err := s.cache.Set(ctx, key, details, 0); err != nil {
		s.logger.Warn("catalog cache write failed", zap.Error(err))
	}
	return details, nil
}

// InvalidateCatalog drops every cached catalog listing. Called after any
// schedule assignment or removal.
func (s *CatalogService) InvalidateCatalog(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, catalogCachePrefix+":*"); err != nil {
		s.logger.Warn("catalog cache invalidation failed", zap.Error(err))
	}
}
