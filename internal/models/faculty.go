package models

import "time"

// FacultyStatus represents the employment state of a faculty member.
type FacultyStatus string

const (
	FacultyStatusActive   FacultyStatus = "ACTIVE"
	FacultyStatusInactive FacultyStatus = "INACTIVE"
	FacultyStatusOnLeave  FacultyStatus = "ON_LEAVE"
)

// Faculty represents a staff member who may be assigned to subjects.
type Faculty struct {
	ID           int64         `db:"id" json:"id"`
	Name         string        `db:"name" json:"name"`
	Email        string        `db:"email" json:"email"`
	Position     string        `db:"position" json:"position"`
	DepartmentID int64         `db:"department_id" json:"department_id"`
	Status       FacultyStatus `db:"status" json:"status"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
}

// FacultySubject links a faculty member to a subject they may teach.
// It is the only source of teach eligibility.
type FacultySubject struct {
	ID        int64 `db:"id" json:"id"`
	FacultyID int64 `db:"faculty_id" json:"faculty_id"`
	SubjectID int64 `db:"subject_id" json:"subject_id"`
}
