package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/leslesan/geniuz-api/internal/models"
	appErrors "github.com/leslesan/geniuz-api/pkg/errors"
)

// AnalyticsRepository is the row source behind the KPI aggregator. Windowed
// fetches apply the half-open predicate field >= start AND field < end and
// normalise nullable numeric columns into the typed records, so the service
// layer never sees raw row shapes. Counting variants exist for the cases
// where only the cardinality matters.
type AnalyticsRepository struct {
	db *sqlx.DB
}

// NewAnalyticsRepository instantiates the repository.
func NewAnalyticsRepository(db *sqlx.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// PaymentsInWindow returns succeeded payments whose paid_at falls in w.
func (r *AnalyticsRepository) PaymentsInWindow(ctx context.Context, w models.TimeWindow) ([]models.PaymentRecord, error) {
	const query = `SELECT amount, paid_at, status FROM payments WHERE status = $1 AND paid_at >= $2 AND paid_at < $3`

	type row struct {
		Amount sql.NullFloat64 `db:"amount"`
		PaidAt sql.NullTime    `db:"paid_at"`
		Status string          `db:"status"`
	}

	var rows []row
	if err := r.db.SelectContext(ctx, &rows, query, models.PaymentSucceeded, w.Start, w.End); err != nil {
		return nil, fetchFailed(err, "payments")
	}

	records := make([]models.PaymentRecord, 0, len(rows))
	for _, rr := range rows {
		rec := models.PaymentRecord{Status: rr.Status}
		if rr.Amount.Valid {
			rec.Amount = rr.Amount.Float64
		}
		if rr.PaidAt.Valid {
			rec.PaidAt = rr.PaidAt.Time
		}
		records = append(records, rec)
	}
	return records, nil
}

// ProgressInWindow returns progress rows updated inside w. Rows lacking a
// user or class reference are dropped at this boundary.
func (r *AnalyticsRepository) ProgressInWindow(ctx context.Context, w models.TimeWindow) ([]models.ProgressRecord, error) {
	const query = `SELECT user_id, class_id, total_tasks, tasks_done, percent, updated_at FROM class_progress WHERE updated_at >= $1 AND updated_at < $2`

	type row struct {
		UserID     sql.NullString  `db:"user_id"`
		ClassID    sql.NullString  `db:"class_id"`
		TotalTasks sql.NullInt64   `db:"total_tasks"`
		TasksDone  sql.NullInt64   `db:"tasks_done"`
		Percent    sql.NullFloat64 `db:"percent"`
		UpdatedAt  sql.NullTime    `db:"updated_at"`
	}

	var rows []row
	if err := r.db.SelectContext(ctx, &rows, query, w.Start, w.End); err != nil {
		return nil, fetchFailed(err, "class progress")
	}

	records := make([]models.ProgressRecord, 0, len(rows))
	for _, rr := range rows {
		if !rr.UserID.Valid || !rr.ClassID.Valid {
			continue
		}
		rec := models.ProgressRecord{
			UserID:  rr.UserID.String,
			ClassID: rr.ClassID.String,
		}
		if rr.TotalTasks.Valid && rr.TotalTasks.Int64 > 0 {
			rec.TotalTasks = int(rr.TotalTasks.Int64)
		}
		if rr.TasksDone.Valid && rr.TasksDone.Int64 > 0 {
			rec.TasksDone = int(rr.TasksDone.Int64)
		}
		if rr.Percent.Valid {
			pct := rr.Percent.Float64
			rec.Percent = &pct
		}
		if rr.UpdatedAt.Valid {
			rec.UpdatedAt = rr.UpdatedAt.Time
		}
		records = append(records, rec)
	}
	return records, nil
}

// SubmissionsInWindow returns submissions handed in inside w. Rows lacking a
// user reference are dropped at this boundary.
func (r *AnalyticsRepository) SubmissionsInWindow(ctx context.Context, w models.TimeWindow) ([]models.SubmissionRecord, error) {
	const query = `SELECT user_id, class_id, submitted_at FROM submissions WHERE submitted_at >= $1 AND submitted_at < $2`

	type row struct {
		UserID      sql.NullString `db:"user_id"`
		ClassID     sql.NullString `db:"class_id"`
		SubmittedAt sql.NullTime   `db:"submitted_at"`
	}

	var rows []row
	if err := r.db.SelectContext(ctx, &rows, query, w.Start, w.End); err != nil {
		return nil, fetchFailed(err, "submissions")
	}

	records := make([]models.SubmissionRecord, 0, len(rows))
	for _, rr := range rows {
		if !rr.UserID.Valid {
			continue
		}
		rec := models.SubmissionRecord{UserID: rr.UserID.String, ClassID: rr.ClassID.String}
		if rr.SubmittedAt.Valid {
			rec.SubmittedAt = rr.SubmittedAt.Time
		}
		records = append(records, rec)
	}
	return records, nil
}

// EnrollmentsInWindow returns enrollment rows created inside w. The KPI
// aggregator only needs EnrollmentCountInWindow; the full fetch feeds the
// monthly chart series.
func (r *AnalyticsRepository) EnrollmentsInWindow(ctx context.Context, w models.TimeWindow) ([]models.EnrollmentRecord, error) {
	const query = `SELECT id, enrolled_at FROM enrollments WHERE enrolled_at >= $1 AND enrolled_at < $2`

	type row struct {
		ID         sql.NullString `db:"id"`
		EnrolledAt sql.NullTime   `db:"enrolled_at"`
	}

	var rows []row
	if err := r.db.SelectContext(ctx, &rows, query, w.Start, w.End); err != nil {
		return nil, fetchFailed(err, "enrollments")
	}

	records := make([]models.EnrollmentRecord, 0, len(rows))
	for _, rr := range rows {
		if !rr.ID.Valid {
			continue
		}
		rec := models.EnrollmentRecord{ID: rr.ID.String}
		if rr.EnrolledAt.Valid {
			rec.EnrolledAt = rr.EnrolledAt.Time
		}
		records = append(records, rec)
	}
	return records, nil
}

// EnrollmentCountInWindow returns the enrollment cardinality for w without
// transferring rows.
func (r *AnalyticsRepository) EnrollmentCountInWindow(ctx context.Context, w models.TimeWindow) (int, error) {
	const query = `SELECT COUNT(*) FROM enrollments WHERE enrolled_at >= $1 AND enrolled_at < $2`

	var count int
	if err := r.db.GetContext(ctx, &count, query, w.Start, w.End); err != nil {
		return 0, fetchFailed(err, "enrollment count")
	}
	return count, nil
}

// Unwindowed existence counts of the catalog entities.

func (r *AnalyticsRepository) CountClasses(ctx context.Context) (int, error) {
	return r.countTable(ctx, "classes")
}

func (r *AnalyticsRepository) CountMentors(ctx context.Context) (int, error) {
	return r.countTable(ctx, "mentors")
}

func (r *AnalyticsRepository) CountFaculties(ctx context.Context) (int, error) {
	return r.countTable(ctx, "faculties")
}

func (r *AnalyticsRepository) CountMaterials(ctx context.Context) (int, error) {
	return r.countTable(ctx, "materials")
}

func (r *AnalyticsRepository) CountAssignments(ctx context.Context) (int, error) {
	return r.countTable(ctx, "assignments")
}

func (r *AnalyticsRepository) CountUsers(ctx context.Context) (int, error) {
	return r.countTable(ctx, "users")
}

// countableTables whitelists the relations countTable may touch.
var countableTables = map[string]struct{}{
	"classes":     {},
	"mentors":     {},
	"faculties":   {},
	"materials":   {},
	"assignments": {},
	"users":       {},
}

func (r *AnalyticsRepository) countTable(ctx context.Context, table string) (int, error) {
	if _, ok := countableTables[table]; !ok {
		return 0, fmt.Errorf("count on unknown table %q", table)
	}

	var count int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fetchFailed(err, table+" count")
	}
	return count, nil
}

func fetchFailed(err error, what string) error {
	return appErrors.Wrap(err, appErrors.ErrFetchFailed.Code, appErrors.ErrFetchFailed.Status, "fetch "+what)
}
