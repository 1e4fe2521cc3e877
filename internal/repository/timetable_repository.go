package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mrsingh7112/campusmind-api/internal/models"
)

// TimetableRepository persists generated timetable slots.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs a TimetableRepository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

func (r *TimetableRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// DeleteByCourseSemester removes every slot for the course semester.
// Run inside the replacement transaction so a failed insert never leaves
// a half-cleared timetable.
func (r *TimetableRepository) DeleteByCourseSemester(ctx context.Context, exec sqlx.ExtContext, courseID int64, semester int) error {
	const query = `DELETE FROM timetable_slots WHERE course_id = $1 AND semester = $2`
	if _, err := r.exec(exec).ExecContext(ctx, query, courseID, semester); err != nil {
		return fmt.Errorf("delete timetable slots: %w", err)
	}
	return nil
}

// BulkInsert writes the computed slot set, practicals first then lectures,
// in the order the generator produced them.
func (r *TimetableRepository) BulkInsert(ctx context.Context, exec sqlx.ExtContext, slots []models.TimetableSlot) error {
	if len(slots) == 0 {
		return nil
	}
	target := r.exec(exec)

	const query = `
INSERT INTO timetable_slots (course_id, subject_id, faculty_id, room_id, semester, day_of_week, start_time, end_time)
VALUES (:course_id, :subject_id, :faculty_id, :room_id, :semester, :day_of_week, :start_time, :end_time)`

	for i := range slots {
		if _, err := sqlx.NamedExecContext(ctx, target, query, &slots[i]); err != nil {
			return fmt.Errorf("insert timetable slot: %w", err)
		}
	}
	return nil
}

// ListByCourseSemester returns the raw slots for a course semester
// ordered by day and start time.
func (r *TimetableRepository) ListByCourseSemester(ctx context.Context, courseID int64, semester int) ([]models.TimetableSlot, error) {
	const query = `SELECT id, course_id, subject_id, faculty_id, room_id, semester, day_of_week, start_time, end_time, created_at
FROM timetable_slots WHERE course_id = $1 AND semester = $2 ORDER BY day_of_week ASC, start_time ASC`
	var slots []models.TimetableSlot
	if err := r.db.SelectContext(ctx, &slots, query, courseID, semester); err != nil {
		return nil, fmt.Errorf("list timetable slots: %w", err)
	}
	return slots, nil
}

// ListEntries returns slots joined with subject, faculty and room
// summaries, ordered by day and start time for display.
func (r *TimetableRepository) ListEntries(ctx context.Context, courseID int64, semester int) ([]models.TimetableEntry, error) {
	const query = `
SELECT ts.id, ts.course_id, ts.subject_id, ts.faculty_id, ts.room_id, ts.semester,
       ts.day_of_week, ts.start_time, ts.end_time, ts.created_at,
       s.name AS subject_name, s.code AS subject_code, s.type AS subject_type,
       f.name AS faculty_name,
       r.name AS room_name, r.type AS room_type, r.building AS room_building
FROM timetable_slots ts
JOIN subjects s ON s.id = ts.subject_id
JOIN faculty f ON f.id = ts.faculty_id
JOIN rooms r ON r.id = ts.room_id
WHERE ts.course_id = $1 AND ts.semester = $2
ORDER BY ts.day_of_week ASC, ts.start_time ASC`
	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, courseID, semester); err != nil {
		return nil, fmt.Errorf("list timetable entries: %w", err)
	}
	return entries, nil
}

// FindCell fetches the slot at one (day, startTime) cell of a course
// semester. Returns sql.ErrNoRows when the cell is empty.
func (r *TimetableRepository) FindCell(ctx context.Context, courseID int64, semester, day int, startTime string) (*models.TimetableSlot, error) {
	const query = `SELECT id, course_id, subject_id, faculty_id, room_id, semester, day_of_week, start_time, end_time, created_at
FROM timetable_slots WHERE course_id = $1 AND semester = $2 AND day_of_week = $3 AND start_time = $4`
	var slot models.TimetableSlot
	if err := r.db.GetContext(ctx, &slot, query, courseID, semester, day, startTime); err != nil {
		return nil, err
	}
	return &slot, nil
}

// UpdateAssignments rewrites the subject/faculty/room assignment of one slot.
func (r *TimetableRepository) UpdateAssignments(ctx context.Context, slot *models.TimetableSlot) error {
	const query = `UPDATE timetable_slots SET subject_id = :subject_id, faculty_id = :faculty_id, room_id = :room_id WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("update timetable slot: %w", err)
	}
	return nil
}
