package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/leslesan/geniuz-api/internal/models"
)

// CatalogRepository backs the thin CRUD surface for the reference entities
// the dashboard counts: classes, mentors, faculties, materials and
// assignments.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository creates a new instance of CatalogRepository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func normalisePage(filter models.ListFilter) (limit, offset int) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return pageSize, (page - 1) * pageSize
}

// ListClasses returns classes ordered by creation time with total count.
func (r *CatalogRepository) ListClasses(ctx context.Context, filter models.ListFilter) ([]models.Class, int, error) {
	limit, offset := normalisePage(filter)
	query := fmt.Sprintf(`SELECT id, name, faculty_id, mentor_id, created_at, updated_at FROM classes ORDER BY created_at DESC LIMIT %d OFFSET %d`, limit, offset)

	classes := make([]models.Class, 0)
	if err := r.db.SelectContext(ctx, &classes, query); err != nil {
		return nil, 0, fmt.Errorf("list classes: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM classes`); err != nil {
		return nil, 0, fmt.Errorf("count classes: %w", err)
	}
	return classes, total, nil
}

// GetClass returns a class by identifier.
func (r *CatalogRepository) GetClass(ctx context.Context, id string) (*models.Class, error) {
	const query = `SELECT id, name, faculty_id, mentor_id, created_at, updated_at FROM classes WHERE id = $1 LIMIT 1`
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get class: %w", err)
	}
	return &class, nil
}

// CreateClass inserts a new class.
func (r *CatalogRepository) CreateClass(ctx context.Context, class *models.Class) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	class.CreatedAt = now
	class.UpdatedAt = now

	const query = `INSERT INTO classes (id, name, faculty_id, mentor_id, created_at, updated_at) VALUES (:id, :name, :faculty_id, :mentor_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// UpdateClass updates mutable fields of a class.
func (r *CatalogRepository) UpdateClass(ctx context.Context, class *models.Class) error {
	class.UpdatedAt = time.Now().UTC()
	const query = `UPDATE classes SET name = :name, faculty_id = :faculty_id, mentor_id = :mentor_id, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, class)
	if err != nil {
		return fmt.Errorf("update class: %w", err)
	}
	return requireRowAffected(res, "class")
}

// DeleteClass removes a class.
func (r *CatalogRepository) DeleteClass(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM classes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	return requireRowAffected(res, "class")
}

// ListMentors returns mentors with total count.
func (r *CatalogRepository) ListMentors(ctx context.Context, filter models.ListFilter) ([]models.Mentor, int, error) {
	limit, offset := normalisePage(filter)
	query := fmt.Sprintf(`SELECT id, full_name, expertise, created_at FROM mentors ORDER BY created_at DESC LIMIT %d OFFSET %d`, limit, offset)

	mentors := make([]models.Mentor, 0)
	if err := r.db.SelectContext(ctx, &mentors, query); err != nil {
		return nil, 0, fmt.Errorf("list mentors: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM mentors`); err != nil {
		return nil, 0, fmt.Errorf("count mentors: %w", err)
	}
	return mentors, total, nil
}

// CreateMentor inserts a new mentor.
func (r *CatalogRepository) CreateMentor(ctx context.Context, mentor *models.Mentor) error {
	if mentor.ID == "" {
		mentor.ID = uuid.NewString()
	}
	mentor.CreatedAt = time.Now().UTC()

	const query = `INSERT INTO mentors (id, full_name, expertise, created_at) VALUES (:id, :full_name, :expertise, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, mentor); err != nil {
		return fmt.Errorf("create mentor: %w", err)
	}
	return nil
}

// UpdateMentor updates mutable fields of a mentor.
func (r *CatalogRepository) UpdateMentor(ctx context.Context, mentor *models.Mentor) error {
	const query = `UPDATE mentors SET full_name = :full_name, expertise = :expertise WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, mentor)
	if err != nil {
		return fmt.Errorf("update mentor: %w", err)
	}
	return requireRowAffected(res, "mentor")
}

// DeleteMentor removes a mentor.
func (r *CatalogRepository) DeleteMentor(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM mentors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete mentor: %w", err)
	}
	return requireRowAffected(res, "mentor")
}

// ListFaculties returns faculties with total count.
func (r *CatalogRepository) ListFaculties(ctx context.Context, filter models.ListFilter) ([]models.Faculty, int, error) {
	limit, offset := normalisePage(filter)
	query := fmt.Sprintf(`SELECT id, name, created_at FROM faculties ORDER BY created_at DESC LIMIT %d OFFSET %d`, limit, offset)

	faculties := make([]models.Faculty, 0)
	if err := r.db.SelectContext(ctx, &faculties, query); err != nil {
		return nil, 0, fmt.Errorf("list faculties: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM faculties`); err != nil {
		return nil, 0, fmt.Errorf("count faculties: %w", err)
	}
	return faculties, total, nil
}

// CreateFaculty inserts a new faculty.
func (r *CatalogRepository) CreateFaculty(ctx context.Context, faculty *models.Faculty) error {
	if faculty.ID == "" {
		faculty.ID = uuid.NewString()
	}
	faculty.CreatedAt = time.Now().UTC()

	const query = `INSERT INTO faculties (id, name, created_at) VALUES (:id, :name, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, faculty); err != nil {
		return fmt.Errorf("create faculty: %w", err)
	}
	return nil
}

// UpdateFaculty updates mutable fields of a faculty.
func (r *CatalogRepository) UpdateFaculty(ctx context.Context, faculty *models.Faculty) error {
	const query = `UPDATE faculties SET name = :name WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, faculty)
	if err != nil {
		return fmt.Errorf("update faculty: %w", err)
	}
	return requireRowAffected(res, "faculty")
}

// DeleteFaculty removes a faculty.
func (r *CatalogRepository) DeleteFaculty(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM faculties WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete faculty: %w", err)
	}
	return requireRowAffected(res, "faculty")
}

// ListMaterials returns materials with total count.
func (r *CatalogRepository) ListMaterials(ctx context.Context, filter models.ListFilter) ([]models.Material, int, error) {
	limit, offset := normalisePage(filter)
	query := fmt.Sprintf(`SELECT id, class_id, title, content_url, created_at FROM materials ORDER BY created_at DESC LIMIT %d OFFSET %d`, limit, offset)

	materials := make([]models.Material, 0)
	if err := r.db.SelectContext(ctx, &materials, query); err != nil {
		return nil, 0, fmt.Errorf("list materials: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM materials`); err != nil {
		return nil, 0, fmt.Errorf("count materials: %w", err)
	}
	return materials, total, nil
}

// CreateMaterial inserts a new material.
func (r *CatalogRepository) CreateMaterial(ctx context.Context, material *models.Material) error {
	if material.ID == "" {
		material.ID = uuid.NewString()
	}
	material.CreatedAt = time.Now().UTC()

	const query = `INSERT INTO materials (id, class_id, title, content_url, created_at) VALUES (:id, :class_id, :title, :content_url, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, material); err != nil {
		return fmt.Errorf("create material: %w", err)
	}
	return nil
}

// UpdateMaterial updates mutable fields of a material.
func (r *CatalogRepository) UpdateMaterial(ctx context.Context, material *models.Material) error {
	const query = `UPDATE materials SET class_id = :class_id, title = :title, content_url = :content_url WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, material)
	if err != nil {
		return fmt.Errorf("update material: %w", err)
	}
	return requireRowAffected(res, "material")
}

// DeleteMaterial removes a material.
func (r *CatalogRepository) DeleteMaterial(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM materials WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete material: %w", err)
	}
	return requireRowAffected(res, "material")
}

// ListAssignments returns assignments with total count.
func (r *CatalogRepository) ListAssignments(ctx context.Context, filter models.ListFilter) ([]models.Assignment, int, error) {
	limit, offset := normalisePage(filter)
	query := fmt.Sprintf(`SELECT id, class_id, title, deadline, created_at FROM assignments ORDER BY created_at DESC LIMIT %d OFFSET %d`, limit, offset)

	assignments := make([]models.Assignment, 0)
	if err := r.db.SelectContext(ctx, &assignments, query); err != nil {
		return nil, 0, fmt.Errorf("list assignments: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM assignments`); err != nil {
		return nil, 0, fmt.Errorf("count assignments: %w", err)
	}
	return assignments, total, nil
}

// CreateAssignment inserts a new assignment.
func (r *CatalogRepository) CreateAssignment(ctx context.Context, assignment *models.Assignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	assignment.CreatedAt = time.Now().UTC()

	const query = `INSERT INTO assignments (id, class_id, title, deadline, created_at) VALUES (:id, :class_id, :title, :deadline, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// UpdateAssignment updates mutable fields of an assignment.
func (r *CatalogRepository) UpdateAssignment(ctx context.Context, assignment *models.Assignment) error {
	const query = `UPDATE assignments SET class_id = :class_id, title = :title, deadline = :deadline WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, assignment)
	if err != nil {
		return fmt.Errorf("update assignment: %w", err)
	}
	return requireRowAffected(res, "assignment")
}

// DeleteAssignment removes an assignment.
func (r *CatalogRepository) DeleteAssignment(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return requireRowAffected(res, "assignment")
}

func requireRowAffected(res sql.Result, what string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", what, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
