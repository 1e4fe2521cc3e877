package dto

import "github.com/mrsingh7112/campusmind-api/internal/models"

// GenerateTimetableRequest triggers a generation run for a course semester.
// Seed is optional; when set, two runs with the same seed produce the same
// timetable (used by tests and reproducibility tooling).
type GenerateTimetableRequest struct {
	CourseID int64  `json:"courseId" validate:"required,min=1"`
	Semester int    `json:"semester" validate:"required,min=1"`
	Seed     *int64 `json:"seed"`
}

// TimetableQuery identifies a course semester for reads and exports.
type TimetableQuery struct {
	CourseID int64 `form:"courseId" json:"courseId"`
	Semester int   `form:"semester" json:"semester"`
}

// TimetableResponse is the rendered slot set for a course semester.
type TimetableResponse struct {
	Course   models.CourseSummary      `json:"course"`
	Semester int                       `json:"semester"`
	Slots    []models.TimetableEntry   `json:"slots"`
	Warnings []models.PlacementWarning `json:"warnings,omitempty"`
}

// GenerationStats summarises one generation run.
type GenerationStats struct {
	RunID    string `json:"runId"`
	Seed     int64  `json:"seed"`
	Placed   int    `json:"placed"`
	Expected int    `json:"expected"`
}

// GenerateTimetableResult pairs the new timetable with run statistics.
type GenerateTimetableResult struct {
	TimetableResponse
	Stats GenerationStats `json:"stats"`
}

// EditSlotRequest mutates one timetable cell in place. Unset optional
// fields leave the corresponding assignment unchanged.
type EditSlotRequest struct {
	CourseID  int64  `json:"courseId" validate:"required,min=1"`
	Semester  int    `json:"semester" validate:"required,min=1"`
	Day       int    `json:"day" validate:"required,min=1,max=5"`
	StartTime string `json:"startTime" validate:"required"`
	SubjectID *int64 `json:"subjectId" validate:"omitempty,min=1"`
	FacultyID *int64 `json:"facultyId" validate:"omitempty,min=1"`
	RoomID    *int64 `json:"roomId" validate:"omitempty,min=1"`
}
