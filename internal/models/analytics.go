package models

import "time"

// PaymentSucceeded is the only payment status that counts toward revenue.
const PaymentSucceeded = "succeeded"

// TimeWindow is a half-open interval [Start, End) scoping one KPI pass.
type TimeWindow struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}

// Contains reports whether ts falls inside the window.
func (w TimeWindow) Contains(ts time.Time) bool {
	return !ts.Before(w.Start) && ts.Before(w.End)
}

// PaymentRecord is a normalized payment row.
type PaymentRecord struct {
	Amount float64   `db:"amount" json:"amount"`
	PaidAt time.Time `db:"paid_at" json:"paid_at"`
	Status string    `db:"status" json:"status"`
}

// ProgressRecord is a normalized class-progress row. Percent is nil when the
// source row carried no explicit percentage.
type ProgressRecord struct {
	UserID     string    `db:"user_id" json:"user_id"`
	ClassID    string    `db:"class_id" json:"class_id"`
	TotalTasks int       `db:"total_tasks" json:"total_tasks"`
	TasksDone  int       `db:"tasks_done" json:"tasks_done"`
	Percent    *float64  `db:"percent" json:"percent,omitempty"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// SubmissionRecord marks that a user handed in work, independent of grade.
type SubmissionRecord struct {
	UserID      string    `db:"user_id" json:"user_id"`
	ClassID     string    `db:"class_id" json:"class_id"`
	SubmittedAt time.Time `db:"submitted_at" json:"submitted_at"`
}

// EnrollmentRecord is a normalized enrollment row.
type EnrollmentRecord struct {
	ID         string    `db:"id" json:"id"`
	EnrolledAt time.Time `db:"enrolled_at" json:"enrolled_at"`
}

// KPIDeltas carries period-over-period percentage changes. A nil delta means
// the previous-period base was zero, never Inf or NaN.
type KPIDeltas struct {
	RevenuePct          *float64 `json:"revenuePct"`
	ActiveStudentsPct   *float64 `json:"activeStudentsPct"`
	CompletedClassesPct *float64 `json:"completedClassesPct"`
	AvgProgressPct      *float64 `json:"avgProgressPct"`
	EnrollPct           *float64 `json:"enrollPct"`
}

// KPISet aggregates the headline numbers for one window.
type KPISet struct {
	TotalRevenue       float64   `json:"totalRevenue"`
	ActiveStudents     int       `json:"activeStudents"`
	CompletedClasses   int       `json:"completedClasses"`
	AvgProgressPercent float64   `json:"avgProgressPercent"`
	EnrollCount        int       `json:"enrollCount"`
	Deltas             KPIDeltas `json:"kpiDelta"`
}

// ReferenceCounts are unwindowed existence counts of catalog entities.
type ReferenceCounts struct {
	Classes     int `json:"classes"`
	Mentors     int `json:"mentors"`
	Faculties   int `json:"faculties"`
	Materials   int `json:"materials"`
	Assignments int `json:"assignments"`
	Users       int `json:"users"`
}

// KPISnapshot is the full dashboard aggregate, recomputed per request.
type KPISnapshot struct {
	Window          TimeWindow      `json:"range"`
	KPIs            KPISet          `json:"kpis"`
	ReferenceCounts ReferenceCounts `json:"reference_counts"`
}
