package models

import "time"

// SubjectType determines the scheduling shape of a subject.
type SubjectType string

const (
	SubjectTypeLecture  SubjectType = "LECTURE"
	SubjectTypeLab      SubjectType = "LAB"
	SubjectTypeWorkshop SubjectType = "WORKSHOP"
	SubjectTypeFaculty  SubjectType = "FACULTY"
	SubjectTypeVirtual  SubjectType = "VIRTUAL"
)

// Practical reports whether the subject needs a contiguous double period.
func (t SubjectType) Practical() bool {
	return t == SubjectTypeLab || t == SubjectTypeWorkshop
}

// Subject represents a taught unit belonging to a course semester.
type Subject struct {
	ID        int64       `db:"id" json:"id"`
	CourseID  int64       `db:"course_id" json:"course_id"`
	Name      string      `db:"name" json:"name"`
	Code      string      `db:"code" json:"code"`
	Semester  int         `db:"semester" json:"semester"`
	Type      SubjectType `db:"type" json:"type"`
	Credits   int         `db:"credits" json:"credits"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
}
