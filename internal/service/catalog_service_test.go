package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/leslesan/geniuz-api/internal/models"
	appErrors "github.com/leslesan/geniuz-api/pkg/errors"
)

type fakeCatalogRepo struct {
	classes []models.Class
	missing bool
	created *models.Class
	deleted []string
}

func (f *fakeCatalogRepo) ListClasses(context.Context, models.ListFilter) ([]models.Class, int, error) {
	return f.classes, len(f.classes), nil
}

func (f *fakeCatalogRepo) GetClass(_ context.Context, id string) (*models.Class, error) {
	if f.missing {
		return nil, sql.ErrNoRows
	}
	return &models.Class{ID: id, Name: "Go Basics"}, nil
}

func (f *fakeCatalogRepo) CreateClass(_ context.Context, class *models.Class) error {
	class.ID = "c-new"
	f.created = class
	return nil
}

func (f *fakeCatalogRepo) UpdateClass(_ context.Context, class *models.Class) error {
	if f.missing {
		return sql.ErrNoRows
	}
	return nil
}

func (f *fakeCatalogRepo) DeleteClass(_ context.Context, id string) error {
	if f.missing {
		return sql.ErrNoRows
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeCatalogRepo) ListMentors(context.Context, models.ListFilter) ([]models.Mentor, int, error) {
	return nil, 0, nil
}
func (f *fakeCatalogRepo) CreateMentor(context.Context, *models.Mentor) error { return nil }
func (f *fakeCatalogRepo) UpdateMentor(context.Context, *models.Mentor) error { return nil }
func (f *fakeCatalogRepo) DeleteMentor(context.Context, string) error         { return nil }

func (f *fakeCatalogRepo) ListFaculties(context.Context, models.ListFilter) ([]models.Faculty, int, error) {
	return nil, 0, nil
}
func (f *fakeCatalogRepo) CreateFaculty(context.Context, *models.Faculty) error { return nil }
func (f *fakeCatalogRepo) UpdateFaculty(context.Context, *models.Faculty) error { return nil }
func (f *fakeCatalogRepo) DeleteFaculty(context.Context, string) error          { return nil }

func (f *fakeCatalogRepo) ListMaterials(context.Context, models.ListFilter) ([]models.Material, int, error) {
	return nil, 0, nil
}
func (f *fakeCatalogRepo) CreateMaterial(context.Context, *models.Material) error { return nil }
func (f *fakeCatalogRepo) UpdateMaterial(context.Context, *models.Material) error { return nil }
func (f *fakeCatalogRepo) DeleteMaterial(context.Context, string) error           { return nil }

func (f *fakeCatalogRepo) ListAssignments(context.Context, models.ListFilter) ([]models.Assignment, int, error) {
	return nil, 0, nil
}
func (f *fakeCatalogRepo) CreateAssignment(context.Context, *models.Assignment) error { return nil }
func (f *fakeCatalogRepo) UpdateAssignment(context.Context, *models.Assignment) error { return nil }
func (f *fakeCatalogRepo) DeleteAssignment(context.Context, string) error             { return nil }

func TestCreateClassValidates(t *testing.T) {
	svc := NewCatalogService(&fakeCatalogRepo{}, nil, nil, zap.NewNop())

	_, err := svc.CreateClass(context.Background(), models.ClassRequest{Name: "Go Basics"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCreateClass(t *testing.T) {
	repo := &fakeCatalogRepo{}
	svc := NewCatalogService(repo, nil, nil, zap.NewNop())

	class, err := svc.CreateClass(context.Background(), models.ClassRequest{Name: "Go Basics", FacultyID: "f1", MentorID: "m1"})
	require.NoError(t, err)
	assert.Equal(t, "c-new", class.ID)
	require.NotNil(t, repo.created)
	assert.Equal(t, "Go Basics", repo.created.Name)
}

func TestUpdateClassNotFound(t *testing.T) {
	svc := NewCatalogService(&fakeCatalogRepo{missing: true}, nil, nil, zap.NewNop())

	_, err := svc.UpdateClass(context.Background(), "missing", models.ClassRequest{Name: "X", FacultyID: "f1", MentorID: "m1"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Equal(t, 404, appErr.Status)
}

func TestDeleteClassInvalidatesAnalyticsCache(t *testing.T) {
	repo := &fakeCatalogRepo{}
	backing := newMemoryCache()
	cache := NewCacheService(backing, nil, 0, zap.NewNop(), true)
	backing.store["analytics:overview:a:b"] = []byte(`{}`)

	svc := NewCatalogService(repo, nil, cache, zap.NewNop())
	require.NoError(t, svc.DeleteClass(context.Background(), "c1"))

	assert.Equal(t, []string{"c1"}, repo.deleted)
	assert.Empty(t, backing.store)
}

func TestListClassesPagination(t *testing.T) {
	repo := &fakeCatalogRepo{classes: []models.Class{{ID: "c1"}, {ID: "c2"}}}
	svc := NewCatalogService(repo, nil, nil, zap.NewNop())

	classes, pagination, err := svc.ListClasses(context.Background(), models.ListFilter{Page: 0, PageSize: 0})
	require.NoError(t, err)
	assert.Len(t, classes, 2)
	require.NotNil(t, pagination)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 2, pagination.TotalCount)
}
