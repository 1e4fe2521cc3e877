package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/mrsingh7112/campusmind-api/internal/models"
)

func newTimetableRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTimetableRepositoryReplaceWithinTx(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetable_slots WHERE course_id = $1 AND semester = $2")).
		WithArgs(int64(1), 3).
		WillReturnResult(sqlmock.NewResult(0, 30))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetable_slots")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetable_slots")).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteByCourseSemester(context.Background(), tx, 1, 3))
	require.NoError(t, repo.BulkInsert(context.Background(), tx, []models.TimetableSlot{
		{CourseID: 1, SubjectID: 1, FacultyID: 1, RoomID: 1, Semester: 3, DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00"},
		{CourseID: 1, SubjectID: 2, FacultyID: 2, RoomID: 2, Semester: 3, DayOfWeek: 1, StartTime: "10:00", EndTime: "12:00"},
	}))
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryBulkInsertEmptyIsNoop(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	require.NoError(t, repo.BulkInsert(context.Background(), nil, nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryFindCell(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	rows := sqlmock.NewRows([]string{"id", "course_id", "subject_id", "faculty_id", "room_id", "semester", "day_of_week", "start_time", "end_time", "created_at"}).
		AddRow(int64(7), int64(1), int64(2), int64(3), int64(4), 3, 2, "10:00", "11:00", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, course_id, subject_id, faculty_id, room_id")).
		WithArgs(int64(1), 3, 2, "10:00").
		WillReturnRows(rows)

	slot, err := repo.FindCell(context.Background(), 1, 3, 2, "10:00")
	require.NoError(t, err)
	require.Equal(t, int64(7), slot.ID)
	require.Equal(t, "11:00", slot.EndTime)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryUpdateAssignments(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE timetable_slots SET subject_id")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateAssignments(context.Background(), &models.TimetableSlot{
		ID: 7, SubjectID: 9, FacultyID: 8, RoomID: 6,
	}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryListEntries(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	rows := sqlmock.NewRows([]string{
		"id", "course_id", "subject_id", "faculty_id", "room_id", "semester", "day_of_week", "start_time", "end_time", "created_at",
		"subject_name", "subject_code", "subject_type", "faculty_name", "room_name", "room_type", "room_building",
	}).AddRow(int64(1), int64(1), int64(2), int64(3), int64(4), 3, 1, "09:00", "10:00", time.Now(),
		"Algorithms", "CS201", "LECTURE", "Dr. Iyer", "LT-1", "LECTURE", "Main Block")
	mock.ExpectQuery("SELECT ts.id, ts.course_id").
		WithArgs(int64(1), 3).
		WillReturnRows(rows)

	entries, err := repo.ListEntries(context.Background(), 1, 3)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "Algorithms", entries[0].SubjectName)
	require.Equal(t, models.RoomTypeLecture, entries[0].RoomType)
	require.NoError(t, mock.ExpectationsWereMet())
}
