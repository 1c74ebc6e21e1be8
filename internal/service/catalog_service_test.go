package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bnu-scit/registrar-api/internal/models"
	appErrors "github.com/bnu-scit/registrar-api/pkg/errors"
)

type mockCatalogScheduleReader struct {
	details []models.ScheduleDetail
	err     error
	calls   int
}

func (m *mockCatalogScheduleReader) ListDetailedForCatalog(ctx context.Context, semester int, degree string) ([]models.ScheduleDetail, error) {
	m.calls++
	return m.details, m.err
}

// memoryCacheRepo backs cache tests with an in-process map.
type memoryCacheRepo struct {
	entries map[string][]byte
	deleted []string
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: map[string][]byte{}}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.deleted = append(m.deleted, pattern)
	m.entries = map[string][]byte{}
	return nil
}

func newCatalogFixture(schedules *mockCatalogScheduleReader, students *mockStudentReader) (*CatalogService, *memoryCacheRepo) {
	repo := newMemoryCacheRepo()
	cache := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)
	return NewCatalogService(schedules, students, cache, zap.NewNop()), repo
}

func TestCatalogServiceSectionsCachesListing(t *testing.T) {
	schedules := &mockCatalogScheduleReader{details: []models.ScheduleDetail{{ScheduleID: 7, CourseCode: "CS101"}}}
	svc, repo := newCatalogFixture(schedules, &mockStudentReader{})

	first, err := svc.Sections(context.Background(), 5, "BSCS")
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, schedules.calls)
	assert.Len(t, repo.entries, 1)

	second, err := svc.Sections(context.Background(), 5, "BSCS")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, schedules.calls, "second read must come from cache")
}

func TestCatalogServiceSectionsForStudent(t *testing.T) {
	schedules := &mockCatalogScheduleReader{details: []models.ScheduleDetail{{ScheduleID: 7, CourseCode: "CS101"}}}
	students := &mockStudentReader{student: &models.Student{ID: "2021-CS-042", Semester: 5, Degree: "BSCS"}}
	svc, _ := newCatalogFixture(schedules, students)

	sections, err := svc.SectionsForStudent(context.Background(), "2021-CS-042")
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, "CS101", sections[0].CourseCode)
}

func TestCatalogServiceSectionsForStudentMissing(t *testing.T) {
	svc, _ := newCatalogFixture(&mockCatalogScheduleReader{}, &mockStudentReader{err: sql.ErrNoRows})

	_, err := svc.SectionsForStudent(context.Background(), "ghost")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestCatalogServiceInvalidateDropsListings(t *testing.T) {
	schedules := &mockCatalogScheduleReader{details: []models.ScheduleDetail{{ScheduleID: 7}}}
	svc, repo := newCatalogFixture(schedules, &mockStudentReader{})

	_, err := svc.Sections(context.Background(), 5, "BSCS")
	require.NoError(t, err)
	require.Len(t, repo.entries, 1)

	svc.InvalidateCatalog(context.Background())
	assert.Empty(t, repo.entries)
	require.Len(t, repo.deleted, 1)
	assert.Equal(t, "catalog:sections:*", repo.deleted[0])

	_, err = svc.Sections(context.Background(), 5, "BSCS")
	require.NoError(t, err)
	assert.Equal(t, 2, schedules.calls)
}

func TestCatalogServiceWorksWithoutCache(t *testing.T) {
	schedules := &mockCatalogScheduleReader{details: []models.ScheduleDetail{{ScheduleID: 7}}}
	svc := NewCatalogService(schedules, &mockStudentReader{}, nil, zap.NewNop())

	sections, err := svc.Sections(context.Background(), 5, "BSCS")
	require.NoError(t, err)
	require.Len(t, sections, 1)

	_, err = svc.Sections(context.Background(), 5, "BSCS")
	require.NoError(t, err)
	assert.Equal(t, 2, schedules.calls)
}
