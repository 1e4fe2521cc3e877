package models

import "time"

// Course represents a degree program offered by a department.
type Course struct {
	ID             int64     `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Code           string    `db:"code" json:"code"`
	DepartmentID   int64     `db:"department_id" json:"department_id"`
	TotalSemesters int       `db:"total_semesters" json:"total_semesters"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// CourseSummary is the compact course shape embedded in timetable responses.
type CourseSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// Summary projects the course into its response shape.
func (c *Course) Summary() CourseSummary {
	return CourseSummary{ID: c.ID, Name: c.Name, Code: c.Code}
}

// Pagination carries list metadata in response envelopes.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
