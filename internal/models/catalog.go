package models

import "time"

// Class is a course offered by a faculty and led by a mentor.
type Class struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	FacultyID string    `db:"faculty_id" json:"faculty_id"`
	MentorID  string    `db:"mentor_id" json:"mentor_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Mentor leads one or more classes.
type Mentor struct {
	ID        string    `db:"id" json:"id"`
	FullName  string    `db:"full_name" json:"full_name"`
	Expertise *string   `db:"expertise" json:"expertise,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Faculty groups related classes.
type Faculty struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Material is a learning resource attached to a class.
type Material struct {
	ID         string    `db:"id" json:"id"`
	ClassID    string    `db:"class_id" json:"class_id"`
	Title      string    `db:"title" json:"title"`
	ContentURL *string   `db:"content_url" json:"content_url,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Assignment is gradeable work attached to a class.
type Assignment struct {
	ID        string     `db:"id" json:"id"`
	ClassID   string     `db:"class_id" json:"class_id"`
	Title     string     `db:"title" json:"title"`
	Deadline  *time.Time `db:"deadline" json:"deadline,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// ClassRequest is the create/update payload for classes.
type ClassRequest struct {
	Name      string `json:"name" validate:"required"`
	FacultyID string `json:"faculty_id" validate:"required"`
	MentorID  string `json:"mentor_id" validate:"required"`
}

// MentorRequest is the create/update payload for mentors.
type MentorRequest struct {
	FullName  string  `json:"full_name" validate:"required"`
	Expertise *string `json:"expertise"`
}

// FacultyRequest is the create/update payload for faculties.
type FacultyRequest struct {
	Name string `json:"name" validate:"required"`
}

// MaterialRequest is the create/update payload for materials.
type MaterialRequest struct {
	ClassID    string  `json:"class_id" validate:"required"`
	Title      string  `json:"title" validate:"required"`
	ContentURL *string `json:"content_url"`
}

// AssignmentRequest is the create/update payload for assignments.
type AssignmentRequest struct {
	ClassID  string     `json:"class_id" validate:"required"`
	Title    string     `json:"title" validate:"required"`
	Deadline *time.Time `json:"deadline"`
}

// ListFilter captures shared pagination input for catalog listings.
type ListFilter struct {
	Page     int
	PageSize int
}
