package models

import "time"

// TimetableSlot is one scheduled cell for a course semester.
// Times are HH:MM strings; day_of_week runs 1 (Monday) to 5 (Friday).
type TimetableSlot struct {
	ID        int64     `db:"id" json:"id"`
	CourseID  int64     `db:"course_id" json:"course_id"`
	SubjectID int64     `db:"subject_id" json:"subject_id"`
	FacultyID int64     `db:"faculty_id" json:"faculty_id"`
	RoomID    int64     `db:"room_id" json:"room_id"`
	Semester  int       `db:"semester" json:"semester"`
	DayOfWeek int       `db:"day_of_week" json:"day_of_week"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// TimetableEntry is a slot joined with subject, faculty and room summaries
// for display and export.
type TimetableEntry struct {
	TimetableSlot
	SubjectName  string      `db:"subject_name" json:"subject_name"`
	SubjectCode  string      `db:"subject_code" json:"subject_code"`
	SubjectType  SubjectType `db:"subject_type" json:"subject_type"`
	FacultyName  string      `db:"faculty_name" json:"faculty_name"`
	RoomName     string      `db:"room_name" json:"room_name"`
	RoomType     RoomType    `db:"room_type" json:"room_type"`
	RoomBuilding string      `db:"room_building" json:"room_building"`
}

// PlacementWarning records a subject the generator could not fully place.
// Warnings are a normal outcome of the heuristic, not a failure.
type PlacementWarning struct {
	SubjectID   int64  `json:"subject_id"`
	SubjectName string `json:"subject_name"`
	Reason      string `json:"reason"`
}
