package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/leslesan/geniuz-api/internal/models"
	appErrors "github.com/leslesan/geniuz-api/pkg/errors"
)

// CatalogRepository describes the persistence layer required by CatalogService.
type CatalogRepository interface {
	ListClasses(ctx context.Context, filter models.ListFilter) ([]models.Class, int, error)
	GetClass(ctx context.Context, id string) (*models.Class, error)
	CreateClass(ctx context.Context, class *models.Class) error
	UpdateClass(ctx context.Context, class *models.Class) error
	DeleteClass(ctx context.Context, id string) error

	ListMentors(ctx context.Context, filter models.ListFilter) ([]models.Mentor, int, error)
	CreateMentor(ctx context.Context, mentor *models.Mentor) error
	UpdateMentor(ctx context.Context, mentor *models.Mentor) error
	DeleteMentor(ctx context.Context, id string) error

	ListFaculties(ctx context.Context, filter models.ListFilter) ([]models.Faculty, int, error)
	CreateFaculty(ctx context.Context, faculty *models.Faculty) error
	UpdateFaculty(ctx context.Context, faculty *models.Faculty) error
	DeleteFaculty(ctx context.Context, id string) error

	ListMaterials(ctx context.Context, filter models.ListFilter) ([]models.Material, int, error)
	CreateMaterial(ctx context.Context, material *models.Material) error
	UpdateMaterial(ctx context.Context, material *models.Material) error
	DeleteMaterial(ctx context.Context, id string) error

	ListAssignments(ctx context.Context, filter models.ListFilter) ([]models.Assignment, int, error)
	CreateAssignment(ctx context.Context, assignment *models.Assignment) error
	UpdateAssignment(ctx context.Context, assignment *models.Assignment) error
	DeleteAssignment(ctx context.Context, id string) error
}

// CatalogService manages the curriculum catalog entities.
type CatalogService struct {
	repo      CatalogRepository
	validator *validator.Validate
	cache     *CacheService
	logger    *zap.Logger
}

// NewCatalogService constructs a catalog service.
func NewCatalogService(repo CatalogRepository, validate *validator.Validate, cache *CacheService, logger *zap.Logger) *CatalogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{repo: repo, validator: validate, cache: cache, logger: logger}
}

// catalog mutations invalidate cached analytics snapshots: reference counts
// change with every create and delete.
func (s *CatalogService) invalidateAnalytics(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "analytics:*"); err != nil {
		s.logger.Warn("invalidate analytics cache", zap.Error(err))
	}
}

func (s *CatalogService) validate(payload interface{}) error {
	if err := s.validator.Struct(payload); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	return nil
}

func mapRepoError(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, what+" not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "catalog operation failed")
}

func buildPagination(filter models.ListFilter, total int) *models.Pagination {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size < 1 {
		size = 20
	}
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}

// ListClasses returns a page of classes.
func (s *CatalogService) ListClasses(ctx context.Context, filter models.ListFilter) ([]models.Class, *models.Pagination, error) {
	classes, total, err := s.repo.ListClasses(ctx, filter)
	if err != nil {
		return nil, nil, mapRepoError(err, "class")
	}
	return classes, buildPagination(filter, total), nil
}

// GetClass returns a single class by id.
func (s *CatalogService) GetClass(ctx context.Context, id string) (*models.Class, error) {
	class, err := s.repo.GetClass(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "class")
	}
	return class, nil
}

// CreateClass validates and persists a new class.
func (s *CatalogService) CreateClass(ctx context.Context, req models.ClassRequest) (*models.Class, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	class := &models.Class{Name: req.Name, FacultyID: req.FacultyID, MentorID: req.MentorID, CreatedAt: now, UpdatedAt: now}
	if err := s.repo.CreateClass(ctx, class); err != nil {
		return nil, mapRepoError(err, "class")
	}
	s.invalidateAnalytics(ctx)
	return class, nil
}

// UpdateClass applies the payload to an existing class.
func (s *CatalogService) UpdateClass(ctx context.Context, id string, req models.ClassRequest) (*models.Class, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	class := &models.Class{ID: id, Name: req.Name, FacultyID: req.FacultyID, MentorID: req.MentorID, UpdatedAt: time.Now().UTC()}
	if err := s.repo.UpdateClass(ctx, class); err != nil {
		return nil, mapRepoError(err, "class")
	}
	s.invalidateAnalytics(ctx)
	return class, nil
}

// DeleteClass removes a class.
func (s *CatalogService) DeleteClass(ctx context.Context, id string) error {
	if err := s.repo.DeleteClass(ctx, id); err != nil {
		return mapRepoError(err, "class")
	}
	s.invalidateAnalytics(ctx)
	return nil
}

// ListMentors returns a page of mentors.
func (s *CatalogService) ListMentors(ctx context.Context, filter models.ListFilter) ([]models.Mentor, *models.Pagination, error) {
	mentors, total, err := s.repo.ListMentors(ctx, filter)
	if err != nil {
		return nil, nil, mapRepoError(err, "mentor")
	}
	return mentors, buildPagination(filter, total), nil
}

// CreateMentor validates and persists a new mentor.
func (s *CatalogService) CreateMentor(ctx context.Context, req models.MentorRequest) (*models.Mentor, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	mentor := &models.Mentor{FullName: req.FullName, Expertise: req.Expertise, CreatedAt: time.Now().UTC()}
	if err := s.repo.CreateMentor(ctx, mentor); err != nil {
		return nil, mapRepoError(err, "mentor")
	}
	s.invalidateAnalytics(ctx)
	return mentor, nil
}

// UpdateMentor applies the payload to an existing mentor.
func (s *CatalogService) UpdateMentor(ctx context.Context, id string, req models.MentorRequest) (*models.Mentor, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	mentor := &models.Mentor{ID: id, FullName: req.FullName, Expertise: req.Expertise}
	if err := s.repo.UpdateMentor(ctx, mentor); err != nil {
		return nil, mapRepoError(err, "mentor")
	}
	s.invalidateAnalytics(ctx)
	return mentor, nil
}

// DeleteMentor removes a mentor.
func (s *CatalogService) DeleteMentor(ctx context.Context, id string) error {
	if err := s.repo.DeleteMentor(ctx, id); err != nil {
		return mapRepoError(err, "mentor")
	}
	s.invalidateAnalytics(ctx)
	return nil
}

// ListFaculties returns a page of faculties.
func (s *CatalogService) ListFaculties(ctx context.Context, filter models.ListFilter) ([]models.Faculty, *models.Pagination, error) {
	faculties, total, err := s.repo.ListFaculties(ctx, filter)
	if err != nil {
		return nil, nil, mapRepoError(err, "faculty")
	}
	return faculties, buildPagination(filter, total), nil
}

// CreateFaculty validates and persists a new faculty.
func (s *CatalogService) CreateFaculty(ctx context.Context, req models.FacultyRequest) (*models.Faculty, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	faculty := &models.Faculty{Name: req.Name, CreatedAt: time.Now().UTC()}
	if err := s.repo.CreateFaculty(ctx, faculty); err != nil {
		return nil, mapRepoError(err, "faculty")
	}
	s.invalidateAnalytics(ctx)
	return faculty, nil
}

// UpdateFaculty applies the payload to an existing faculty.
func (s *CatalogService) UpdateFaculty(ctx context.Context, id string, req models.FacultyRequest) (*models.Faculty, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	faculty := &models.Faculty{ID: id, Name: req.Name}
	if err := s.repo.UpdateFaculty(ctx, faculty); err != nil {
		return nil, mapRepoError(err, "faculty")
	}
	s.invalidateAnalytics(ctx)
	return faculty, nil
}

// DeleteFaculty removes a faculty.
func (s *CatalogService) DeleteFaculty(ctx context.Context, id string) error {
	if err := s.repo.DeleteFaculty(ctx, id); err != nil {
		return mapRepoError(err, "faculty")
	}
	s.invalidateAnalytics(ctx)
	return nil
}

// ListMaterials returns a page of materials.
func (s *CatalogService) ListMaterials(ctx context.Context, filter models.ListFilter) ([]models.Material, *models.Pagination, error) {
	materials, total, err := s.repo.ListMaterials(ctx, filter)
	if err != nil {
		return nil, nil, mapRepoError(err, "material")
	}
	return materials, buildPagination(filter, total), nil
}

// CreateMaterial validates and persists a new material.
func (s *CatalogService) CreateMaterial(ctx context.Context, req models.MaterialRequest) (*models.Material, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	material := &models.Material{ClassID: req.ClassID, Title: req.Title, ContentURL: req.ContentURL, CreatedAt: time.Now().UTC()}
	if err := s.repo.CreateMaterial(ctx, material); err != nil {
		return nil, mapRepoError(err, "material")
	}
	s.invalidateAnalytics(ctx)
	return material, nil
}

// UpdateMaterial applies the payload to an existing material.
func (s *CatalogService) UpdateMaterial(ctx context.Context, id string, req models.MaterialRequest) (*models.Material, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	material := &models.Material{ID: id, ClassID: req.ClassID, Title: req.Title, ContentURL: req.ContentURL}
	if err := s.repo.UpdateMaterial(ctx, material); err != nil {
		return nil, mapRepoError(err, "material")
	}
	s.invalidateAnalytics(ctx)
	return material, nil
}

// DeleteMaterial removes a material.
func (s *CatalogService) DeleteMaterial(ctx context.Context, id string) error {
	if err := s.repo.DeleteMaterial(ctx, id); err != nil {
		return mapRepoError(err, "material")
	}
	s.invalidateAnalytics(ctx)
	return nil
}

// ListAssignments returns a page of assignments.
func (s *CatalogService) ListAssignments(ctx context.Context, filter models.ListFilter) ([]models.Assignment, *models.Pagination, error) {
	assignments, total, err := s.repo.ListAssignments(ctx, filter)
	if err != nil {
		return nil, nil, mapRepoError(err, "assignment")
	}
	return assignments, buildPagination(filter, total), nil
}

// CreateAssignment validates and persists a new assignment.
func (s *CatalogService) CreateAssignment(ctx context.Context, req models.AssignmentRequest) (*models.Assignment, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	assignment := &models.Assignment{ClassID: req.ClassID, Title: req.Title, Deadline: req.Deadline, CreatedAt: time.Now().UTC()}
	if err := s.repo.CreateAssignment(ctx, assignment); err != nil {
		return nil, mapRepoError(err, "assignment")
	}
	s.invalidateAnalytics(ctx)
	return assignment, nil
}

// UpdateAssignment applies the payload to an existing assignment.
func (s *CatalogService) UpdateAssignment(ctx context.Context, id string, req models.AssignmentRequest) (*models.Assignment, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	assignment := &models.Assignment{ID: id, ClassID: req.ClassID, Title: req.Title, Deadline: req.Deadline}
	if err := s.repo.UpdateAssignment(ctx, assignment); err != nil {
		return nil, mapRepoError(err, "assignment")
	}
	s.invalidateAnalytics(ctx)
	return assignment, nil
}

// DeleteAssignment removes an assignment.
func (s *CatalogService) DeleteAssignment(ctx context.Context, id string) error {
	if err := s.repo.DeleteAssignment(ctx, id); err != nil {
		return mapRepoError(err, "assignment")
	}
	s.invalidateAnalytics(ctx)
	return nil
}
