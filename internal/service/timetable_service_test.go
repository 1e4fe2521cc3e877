package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrsingh7112/campusmind-api/internal/dto"
	"github.com/mrsingh7112/campusmind-api/internal/models"
	appErrors "github.com/mrsingh7112/campusmind-api/pkg/errors"
)

func seedOf(v int64) *int64 { return &v }

func TestTimetableServiceGenerateFillsGrid(t *testing.T) {
	fx := newTimetableFixture(t, timetableFixtureConfig{})
	fx.expectReplacement()

	result, err := fx.svc.Generate(context.Background(), dto.GenerateTimetableRequest{
		CourseID: 1, Semester: 3, Seed: seedOf(42),
	})
	require.NoError(t, err)
	assert.NoError(t, fx.mock.ExpectationsWereMet())

	// 5 lecture subjects x 5 lectures each fill all 25 teaching cells.
	assert.Equal(t, 25, result.Stats.Placed)
	assert.Equal(t, 25, result.Stats.Expected)
	assert.Len(t, result.Slots, 25)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, int64(42), result.Stats.Seed)
	assert.NotEmpty(t, result.Stats.RunID)

	perSubject := map[int64]int{}
	seen := map[string]bool{}
	for _, entry := range result.Slots {
		perSubject[entry.SubjectID]++
		cell := fmt.Sprintf("%d/%s", entry.DayOfWeek, entry.StartTime)
		assert.False(t, seen[cell], "cell %s scheduled twice", cell)
		seen[cell] = true
		assert.NotEqual(t, "13:00", entry.StartTime, "nothing may start in the break hour")
		assert.GreaterOrEqual(t, entry.StartTime, "09:00")
		assert.LessOrEqual(t, entry.EndTime, "16:00")
		assert.Equal(t, int64(1), entry.RoomID, "lectures share the single lecture room")
	}
	for subjectID, count := range perSubject {
		assert.Equal(t, 5, count, "subject %d should get 5 lectures", subjectID)
	}
}

func TestTimetableServiceGenerateDeterministic(t *testing.T) {
	run := func() []string {
		fx := newTimetableFixture(t, timetableFixtureConfig{})
		fx.expectReplacement()
		result, err := fx.svc.Generate(context.Background(), dto.GenerateTimetableRequest{
			CourseID: 1, Semester: 3, Seed: seedOf(7),
		})
		require.NoError(t, err)
		keys := make([]string, 0, len(result.Slots))
		for _, entry := range result.Slots {
			keys = append(keys, fmt.Sprintf("%d/%s/%d/%d/%d", entry.DayOfWeek, entry.StartTime, entry.SubjectID, entry.FacultyID, entry.RoomID))
		}
		sort.Strings(keys)
		return keys
	}

	assert.Equal(t, run(), run())
}

func TestTimetableServiceGeneratePracticalDoublePeriod(t *testing.T) {
	fx := newTimetableFixture(t, timetableFixtureConfig{
		subjects: []models.Subject{
			{ID: 1, CourseID: 1, Name: "Physics Lab", Code: "PHY101L", Semester: 3, Type: models.SubjectTypeLab},
			{ID: 2, CourseID: 1, Name: "Mathematics", Code: "MTH101", Semester: 3, Type: models.SubjectTypeLecture},
		},
		faculty: []models.Faculty{
			{ID: 1, Name: "Dr. Rao", Position: "Professor", Status: models.FacultyStatusActive},
		},
		links: []models.FacultySubject{
			{ID: 1, FacultyID: 1, SubjectID: 1},
			{ID: 2, FacultyID: 1, SubjectID: 2},
		},
		rooms: []models.Room{
			{ID: 1, Name: "LT-1", Type: models.RoomTypeLecture, Status: models.RoomStatusActive},
			{ID: 2, Name: "Physics Lab A", Type: models.RoomTypeLab, Status: models.RoomStatusActive},
		},
	})
	fx.expectReplacement()

	result, err := fx.svc.Generate(context.Background(), dto.GenerateTimetableRequest{
		CourseID: 1, Semester: 3, Seed: seedOf(11),
	})
	require.NoError(t, err)

	validPairs := map[string]string{"09:00": "11:00", "10:00": "12:00", "11:00": "13:00", "14:00": "16:00"}
	var practicals int
	for _, entry := range result.Slots {
		if entry.SubjectID != 1 {
			continue
		}
		practicals++
		assert.Equal(t, int64(2), entry.RoomID, "lab subjects must land in a LAB room")
		end, ok := validPairs[entry.StartTime]
		require.True(t, ok, "practical start %s is not a double-period opening", entry.StartTime)
		assert.Equal(t, end, entry.EndTime, "practical must span two back-to-back windows")
	}
	assert.Equal(t, 1, practicals, "a practical subject is placed exactly once")
}

func TestTimetableServiceGenerateCourseNotFound(t *testing.T) {
	fx := newTimetableFixture(t, timetableFixtureConfig{})

	_, err := fx.svc.Generate(context.Background(), dto.GenerateTimetableRequest{CourseID: 99, Semester: 3})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceGenerateNoSubjects(t *testing.T) {
	fx := newTimetableFixture(t, timetableFixtureConfig{subjects: []models.Subject{{ID: 1}}})
	fx.subjects.items = nil

	_, err := fx.svc.Generate(context.Background(), dto.GenerateTimetableRequest{CourseID: 1, Semester: 3})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceGenerateNoLectureRooms(t *testing.T) {
	fx := newTimetableFixture(t, timetableFixtureConfig{
		rooms: []models.Room{{ID: 2, Name: "Lab A", Type: models.RoomTypeLab, Status: models.RoomStatusActive}},
	})

	_, err := fx.svc.Generate(context.Background(), dto.GenerateTimetableRequest{CourseID: 1, Semester: 3})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceGenerateAllFacultyNonTeaching(t *testing.T) {
	fx := newTimetableFixture(t, timetableFixtureConfig{
		faculty: []models.Faculty{
			{ID: 1, Name: "Dean of Science", Position: "Dean", Status: models.FacultyStatusActive},
			{ID: 2, Name: "CS HOD", Position: "HOD", Status: models.FacultyStatusActive},
		},
	})

	_, err := fx.svc.Generate(context.Background(), dto.GenerateTimetableRequest{CourseID: 1, Semester: 3})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceGenerateBlacklistedLinkWarns(t *testing.T) {
	fx := newTimetableFixture(t, timetableFixtureConfig{
		subjects: []models.Subject{
			{ID: 1, CourseID: 1, Name: "Ethics", Code: "HUM101", Semester: 3, Type: models.SubjectTypeLecture},
			{ID: 2, CourseID: 1, Name: "Algorithms", Code: "CS201", Semester: 3, Type: models.SubjectTypeLecture},
		},
		faculty: []models.Faculty{
			{ID: 1, Name: "Registrar", Position: "Registrar", Status: models.FacultyStatusActive},
			{ID: 2, Name: "Dr. Iyer", Position: "Assistant Professor", Status: models.FacultyStatusActive},
		},
		links: []models.FacultySubject{
			// Ethics is only covered by a non-teaching position.
			{ID: 1, FacultyID: 1, SubjectID: 1},
			{ID: 2, FacultyID: 2, SubjectID: 2},
		},
	})
	fx.expectReplacement()

	result, err := fx.svc.Generate(context.Background(), dto.GenerateTimetableRequest{CourseID: 1, Semester: 3, Seed: seedOf(3)})
	require.NoError(t, err)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, int64(1), result.Warnings[0].SubjectID)
	assert.Contains(t, result.Warnings[0].Reason, "no eligible faculty")
	for _, entry := range result.Slots {
		assert.NotEqual(t, int64(1), entry.SubjectID)
		assert.NotEqual(t, int64(1), entry.FacultyID)
	}
}

func TestTimetableServiceGenerateVirtualFacultyFallback(t *testing.T) {
	fx := newTimetableFixture(t, timetableFixtureConfig{
		subjects: []models.Subject{
			{ID: 1, CourseID: 1, Name: "Algorithms", Code: "CS201", Semester: 3, Type: models.SubjectTypeLecture},
			{ID: 2, CourseID: 1, Name: "Compilers", Code: "CS202", Semester: 3, Type: models.SubjectTypeLecture},
		},
		faculty: []models.Faculty{
			{ID: 1, Name: "Dr. Iyer", Position: "Professor", Status: models.FacultyStatusActive},
		},
		links: []models.FacultySubject{{ID: 1, FacultyID: 1, SubjectID: 1}},
		svcCfg: TimetableConfig{VirtualFallback: true},
	})
	fx.expectReplacement()

	result, err := fx.svc.Generate(context.Background(), dto.GenerateTimetableRequest{CourseID: 1, Semester: 3, Seed: seedOf(9)})
	require.NoError(t, err)

	assert.Empty(t, result.Warnings)
	virtual := fx.faculty.byEmail("virtual.cs202@campusmind.local")
	require.NotNil(t, virtual, "a virtual stand-in should be materialized for the uncovered subject")
	var covered int
	for _, entry := range result.Slots {
		if entry.SubjectID == 2 {
			covered++
			assert.Equal(t, virtual.ID, entry.FacultyID)
		}
	}
	assert.Equal(t, 5, covered)
}

func TestTimetableServiceGenerateVirtualRoomFallback(t *testing.T) {
	fx := newTimetableFixture(t, timetableFixtureConfig{
		subjects: []models.Subject{
			{ID: 1, CourseID: 1, Name: "Welding Workshop", Code: "ME101W", Semester: 3, Type: models.SubjectTypeWorkshop},
		},
		faculty: []models.Faculty{{ID: 1, Name: "Dr. Rao", Position: "Professor", Status: models.FacultyStatusActive}},
		links:   []models.FacultySubject{{ID: 1, FacultyID: 1, SubjectID: 1}},
		svcCfg:  TimetableConfig{VirtualFallback: true},
	})
	fx.expectReplacement()

	result, err := fx.svc.Generate(context.Background(), dto.GenerateTimetableRequest{CourseID: 1, Semester: 3, Seed: seedOf(5)})
	require.NoError(t, err)

	assert.Empty(t, result.Warnings)
	require.Len(t, result.Slots, 1)
	room, err := fx.rooms.FindByID(context.Background(), result.Slots[0].RoomID)
	require.NoError(t, err)
	assert.Equal(t, models.RoomTypeVirtual, room.Type)
}

func TestTimetableServiceGenerateWorkshopWithoutRoomWarns(t *testing.T) {
	fx := newTimetableFixture(t, timetableFixtureConfig{
		subjects: []models.Subject{
			{ID: 1, CourseID: 1, Name: "Welding Workshop", Code: "ME101W", Semester: 3, Type: models.SubjectTypeWorkshop},
		},
		faculty: []models.Faculty{{ID: 1, Name: "Dr. Rao", Position: "Professor", Status: models.FacultyStatusActive}},
		links:   []models.FacultySubject{{ID: 1, FacultyID: 1, SubjectID: 1}},
	})
	fx.expectReplacement()

	result, err := fx.svc.Generate(context.Background(), dto.GenerateTimetableRequest{CourseID: 1, Semester: 3})
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0].Reason, "workshop rooms")
	assert.Empty(t, result.Slots)
}

func TestTimetableServiceGenerateReplacesPreviousRun(t *testing.T) {
	fx := newTimetableFixture(t, timetableFixtureConfig{})

	fx.expectReplacement()
	_, err := fx.svc.Generate(context.Background(), dto.GenerateTimetableRequest{CourseID: 1, Semester: 3, Seed: seedOf(1)})
	require.NoError(t, err)

	fx.expectReplacement()
	result, err := fx.svc.Generate(context.Background(), dto.GenerateTimetableRequest{CourseID: 1, Semester: 3, Seed: seedOf(2)})
	require.NoError(t, err)

	assert.Equal(t, 2, fx.store.deletes, "each run clears the previous slot set first")
	assert.Len(t, fx.store.slots, 25, "only the latest run remains stored")
	assert.Len(t, result.Slots, 25)
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestTimetableServiceGenerateConcurrentRunRejected(t *testing.T) {
	fx := newTimetableFixture(t, timetableFixtureConfig{})
	require.True(t, fx.svc.locks.acquire(generationKey(1, 3)))
	defer fx.svc.locks.release(generationKey(1, 3))

	_, err := fx.svc.Generate(context.Background(), dto.GenerateTimetableRequest{CourseID: 1, Semester: 3})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	// A different semester is unaffected by the held lock; it proceeds
	// past locking and fails later on its missing subject list.
	_, err = fx.svc.Generate(context.Background(), dto.GenerateTimetableRequest{CourseID: 1, Semester: 4})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceGenerateValidation(t *testing.T) {
	fx := newTimetableFixture(t, timetableFixtureConfig{})

	_, err := fx.svc.Generate(context.Background(), dto.GenerateTimetableRequest{CourseID: 0, Semester: 3})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceGetNotFoundCourse(t *testing.T) {
	fx := newTimetableFixture(t, timetableFixtureConfig{})

	_, err := fx.svc.Get(context.Background(), dto.TimetableQuery{CourseID: 404, Semester: 1})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceEditSlotConflicts(t *testing.T) {
	fx := newTimetableFixture(t, timetableFixtureConfig{
		subjects: []models.Subject{
			{ID: 1, CourseID: 1, Name: "Physics Lab", Code: "PHY101L", Semester: 3, Type: models.SubjectTypeLab},
			{ID: 2, CourseID: 1, Name: "Mathematics", Code: "MTH101", Semester: 3, Type: models.SubjectTypeLecture},
		},
		faculty: []models.Faculty{
			{ID: 1, Name: "Dr. Rao", Position: "Professor", Status: models.FacultyStatusActive},
			{ID: 2, Name: "Dr. Iyer", Position: "Professor", Status: models.FacultyStatusActive},
		},
		rooms: []models.Room{
			{ID: 1, Name: "LT-1", Type: models.RoomTypeLecture, Status: models.RoomStatusActive},
			{ID: 2, Name: "Physics Lab A", Type: models.RoomTypeLab, Status: models.RoomStatusActive},
		},
	})
	// A practical spanning 09:00-11:00 and a lecture inside its second hour.
	fx.store.slots = []models.TimetableSlot{
		{ID: 1, CourseID: 1, SubjectID: 1, FacultyID: 2, RoomID: 2, Semester: 3, DayOfWeek: 1, StartTime: "09:00", EndTime: "11:00"},
		{ID: 2, CourseID: 1, SubjectID: 2, FacultyID: 1, RoomID: 1, Semester: 3, DayOfWeek: 1, StartTime: "10:00", EndTime: "11:00"},
	}

	_, err := fx.svc.EditSlot(context.Background(), dto.EditSlotRequest{
		CourseID: 1, Semester: 3, Day: 1, StartTime: "10:00", FacultyID: seedOf(2),
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "faculty already booked")

	_, err = fx.svc.EditSlot(context.Background(), dto.EditSlotRequest{
		CourseID: 1, Semester: 3, Day: 1, StartTime: "10:00", RoomID: seedOf(2),
	})
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Message, "room already booked")
}

func TestTimetableServiceEditSlotUpdatesAssignment(t *testing.T) {
	fx := newTimetableFixture(t, timetableFixtureConfig{})
	fx.store.slots = []models.TimetableSlot{
		{ID: 1, CourseID: 1, SubjectID: 1, FacultyID: 1, RoomID: 1, Semester: 3, DayOfWeek: 2, StartTime: "09:00", EndTime: "10:00"},
	}

	resp, err := fx.svc.EditSlot(context.Background(), dto.EditSlotRequest{
		CourseID: 1, Semester: 3, Day: 2, StartTime: "09:00", FacultyID: seedOf(4), SubjectID: seedOf(2),
	})
	require.NoError(t, err)
	require.Len(t, resp.Slots, 1)
	assert.Equal(t, int64(4), resp.Slots[0].FacultyID)
	assert.Equal(t, int64(2), resp.Slots[0].SubjectID)
	assert.Equal(t, int64(1), resp.Slots[0].RoomID, "unset fields keep their assignment")
}

func TestTimetableServiceEditSlotNotFound(t *testing.T) {
	fx := newTimetableFixture(t, timetableFixtureConfig{})

	_, err := fx.svc.EditSlot(context.Background(), dto.EditSlotRequest{
		CourseID: 1, Semester: 3, Day: 1, StartTime: "09:00",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceExportCSV(t *testing.T) {
	fx := newTimetableFixture(t, timetableFixtureConfig{})
	fx.expectReplacement()
	_, err := fx.svc.Generate(context.Background(), dto.GenerateTimetableRequest{CourseID: 1, Semester: 3, Seed: seedOf(21)})
	require.NoError(t, err)

	payload, filename, err := fx.svc.Export(context.Background(), dto.TimetableQuery{CourseID: 1, Semester: 3}, "csv")
	require.NoError(t, err)
	assert.Equal(t, "timetable-bcs-sem3.csv", filename)
	body := string(payload)
	assert.True(t, strings.HasPrefix(body, "Day,Start,End,Subject,Faculty,Room"))
	assert.Contains(t, body, "Monday")
	assert.Contains(t, body, "SUB1")
}

func TestTimetableServiceExportUnknownFormat(t *testing.T) {
	fx := newTimetableFixture(t, timetableFixtureConfig{})

	_, _, err := fx.svc.Export(context.Background(), dto.TimetableQuery{CourseID: 1, Semester: 3}, "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

// --- Fixtures ---

type timetableFixtureConfig struct {
	subjects []models.Subject
	faculty  []models.Faculty
	links    []models.FacultySubject
	rooms    []models.Room
	svcCfg   TimetableConfig
}

type timetableFixture struct {
	svc      *TimetableService
	mock     sqlmock.Sqlmock
	subjects *subjectReaderStub
	faculty  *facultyCatalogStub
	rooms    *roomCatalogStub
	store    *slotStoreStub
}

func newTimetableFixture(t *testing.T, cfg timetableFixtureConfig) *timetableFixture {
	if cfg.subjects == nil {
		for i := int64(1); i <= 5; i++ {
			cfg.subjects = append(cfg.subjects, models.Subject{
				ID: i, CourseID: 1, Name: fmt.Sprintf("Subject %d", i), Code: fmt.Sprintf("SUB%d", i),
				Semester: 3, Type: models.SubjectTypeLecture,
			})
		}
	}
	if cfg.faculty == nil {
		for i := int64(1); i <= 5; i++ {
			cfg.faculty = append(cfg.faculty, models.Faculty{
				ID: i, Name: fmt.Sprintf("Faculty %d", i), Email: fmt.Sprintf("f%d@campus.edu", i),
				Position: "Professor", Status: models.FacultyStatusActive,
			})
		}
		if cfg.links == nil {
			for i := int64(1); i <= 5; i++ {
				cfg.links = append(cfg.links, models.FacultySubject{ID: i, FacultyID: i, SubjectID: i})
			}
		}
	}
	if cfg.rooms == nil {
		cfg.rooms = []models.Room{{ID: 1, Name: "LT-1", Type: models.RoomTypeLecture, Status: models.RoomStatusActive}}
	}

	courses := &courseReaderStub{items: map[int64]models.Course{
		1: {ID: 1, Name: "BSc Computer Science", Code: "BCS", DepartmentID: 1, TotalSemesters: 6},
	}}
	subjects := &subjectReaderStub{items: cfg.subjects}
	faculty := newFacultyCatalogStub(cfg.faculty, cfg.links)
	rooms := newRoomCatalogStub(cfg.rooms)
	store := &slotStoreStub{subjects: subjects, faculty: faculty, rooms: rooms}
	tx, mock := newTxProviderMock(t)

	svc := NewTimetableService(courses, subjects, faculty, rooms, store, tx, nil, nil, nil, nil, cfg.svcCfg)
	return &timetableFixture{svc: svc, mock: mock, subjects: subjects, faculty: faculty, rooms: rooms, store: store}
}

// expectReplacement arms the tx mock for one delete-then-insert run.
func (fx *timetableFixture) expectReplacement() {
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()
}

type courseReaderStub struct {
	items map[int64]models.Course
}

func (s *courseReaderStub) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	course, ok := s.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &course, nil
}

type subjectReaderStub struct {
	items []models.Subject
}

func (s *subjectReaderStub) ListByCourseSemester(ctx context.Context, courseID int64, semester int) ([]models.Subject, error) {
	var out []models.Subject
	for _, subject := range s.items {
		if subject.CourseID == courseID && subject.Semester == semester {
			out = append(out, subject)
		}
	}
	return out, nil
}

func (s *subjectReaderStub) FindByID(ctx context.Context, id int64) (*models.Subject, error) {
	for _, subject := range s.items {
		if subject.ID == id {
			found := subject
			return &found, nil
		}
	}
	// Edits may reference subjects outside the fixture semester.
	return &models.Subject{ID: id, Name: fmt.Sprintf("Subject %d", id)}, nil
}

type facultyCatalogStub struct {
	members map[int64]models.Faculty
	links   []models.FacultySubject
	nextID  int64
}

func newFacultyCatalogStub(members []models.Faculty, links []models.FacultySubject) *facultyCatalogStub {
	s := &facultyCatalogStub{members: make(map[int64]models.Faculty), links: links, nextID: 1000}
	for _, member := range members {
		s.members[member.ID] = member
	}
	return s
}

func (s *facultyCatalogStub) byEmail(email string) *models.Faculty {
	for _, member := range s.members {
		if member.Email == email {
			found := member
			return &found
		}
	}
	return nil
}

func (s *facultyCatalogStub) ListActive(ctx context.Context) ([]models.Faculty, error) {
	ids := make([]int64, 0, len(s.members))
	for id := range s.members {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]models.Faculty, 0, len(ids))
	for _, id := range ids {
		if member := s.members[id]; member.Status == models.FacultyStatusActive {
			out = append(out, member)
		}
	}
	return out, nil
}

func (s *facultyCatalogStub) ListSubjectLinks(ctx context.Context, subjectIDs []int64) ([]models.FacultySubject, error) {
	wanted := make(map[int64]struct{}, len(subjectIDs))
	for _, id := range subjectIDs {
		wanted[id] = struct{}{}
	}
	var out []models.FacultySubject
	for _, link := range s.links {
		if _, ok := wanted[link.SubjectID]; ok {
			out = append(out, link)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SubjectID != out[j].SubjectID {
			return out[i].SubjectID < out[j].SubjectID
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *facultyCatalogStub) FindByID(ctx context.Context, id int64) (*models.Faculty, error) {
	if member, ok := s.members[id]; ok {
		return &member, nil
	}
	// Edits may assign faculty outside the fixture roster.
	return &models.Faculty{ID: id, Status: models.FacultyStatusActive}, nil
}

func (s *facultyCatalogStub) FindByEmail(ctx context.Context, email string) (*models.Faculty, error) {
	if member := s.byEmail(email); member != nil {
		return member, nil
	}
	return nil, sql.ErrNoRows
}

func (s *facultyCatalogStub) Create(ctx context.Context, member *models.Faculty) error {
	s.nextID++
	member.ID = s.nextID
	s.members[member.ID] = *member
	return nil
}

func (s *facultyCatalogStub) LinkSubject(ctx context.Context, facultyID, subjectID int64) error {
	for _, link := range s.links {
		if link.FacultyID == facultyID && link.SubjectID == subjectID {
			return nil
		}
	}
	s.links = append(s.links, models.FacultySubject{ID: int64(len(s.links) + 1), FacultyID: facultyID, SubjectID: subjectID})
	return nil
}

type roomCatalogStub struct {
	rooms  map[int64]models.Room
	nextID int64
}

func newRoomCatalogStub(rooms []models.Room) *roomCatalogStub {
	s := &roomCatalogStub{rooms: make(map[int64]models.Room), nextID: 2000}
	for _, room := range rooms {
		s.rooms[room.ID] = room
	}
	return s
}

func (s *roomCatalogStub) ListActive(ctx context.Context) ([]models.Room, error) {
	ids := make([]int64, 0, len(s.rooms))
	for id := range s.rooms {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]models.Room, 0, len(ids))
	for _, id := range ids {
		if room := s.rooms[id]; room.Status == models.RoomStatusActive {
			out = append(out, room)
		}
	}
	return out, nil
}

func (s *roomCatalogStub) FindByID(ctx context.Context, id int64) (*models.Room, error) {
	if room, ok := s.rooms[id]; ok {
		return &room, nil
	}
	return &models.Room{ID: id, Status: models.RoomStatusActive}, nil
}

func (s *roomCatalogStub) FindFirstByType(ctx context.Context, roomType models.RoomType) (*models.Room, error) {
	ids := make([]int64, 0, len(s.rooms))
	for id := range s.rooms {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if room := s.rooms[id]; room.Type == roomType {
			return &room, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *roomCatalogStub) Create(ctx context.Context, room *models.Room) error {
	s.nextID++
	room.ID = s.nextID
	s.rooms[room.ID] = *room
	return nil
}

type slotStoreStub struct {
	slots    []models.TimetableSlot
	nextID   int64
	deletes  int
	subjects *subjectReaderStub
	faculty  *facultyCatalogStub
	rooms    *roomCatalogStub
}

func (s *slotStoreStub) DeleteByCourseSemester(ctx context.Context, exec sqlx.ExtContext, courseID int64, semester int) error {
	s.deletes++
	kept := s.slots[:0]
	for _, slot := range s.slots {
		if slot.CourseID != courseID || slot.Semester != semester {
			kept = append(kept, slot)
		}
	}
	s.slots = kept
	return nil
}

func (s *slotStoreStub) BulkInsert(ctx context.Context, exec sqlx.ExtContext, slots []models.TimetableSlot) error {
	for _, slot := range slots {
		s.nextID++
		slot.ID = s.nextID
		s.slots = append(s.slots, slot)
	}
	return nil
}

func (s *slotStoreStub) ListByCourseSemester(ctx context.Context, courseID int64, semester int) ([]models.TimetableSlot, error) {
	var out []models.TimetableSlot
	for _, slot := range s.slots {
		if slot.CourseID == courseID && slot.Semester == semester {
			out = append(out, slot)
		}
	}
	return out, nil
}

func (s *slotStoreStub) ListEntries(ctx context.Context, courseID int64, semester int) ([]models.TimetableEntry, error) {
	raw, _ := s.ListByCourseSemester(ctx, courseID, semester)
	entries := make([]models.TimetableEntry, 0, len(raw))
	for _, slot := range raw {
		subject, _ := s.subjects.FindByID(ctx, slot.SubjectID)
		member, _ := s.faculty.FindByID(ctx, slot.FacultyID)
		room, _ := s.rooms.FindByID(ctx, slot.RoomID)
		entries = append(entries, models.TimetableEntry{
			TimetableSlot: slot,
			SubjectName:   subject.Name,
			SubjectCode:   subject.Code,
			SubjectType:   subject.Type,
			FacultyName:   member.Name,
			RoomName:      room.Name,
			RoomType:      room.Type,
			RoomBuilding:  room.Building,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].DayOfWeek != entries[j].DayOfWeek {
			return entries[i].DayOfWeek < entries[j].DayOfWeek
		}
		return entries[i].StartTime < entries[j].StartTime
	})
	return entries, nil
}

func (s *slotStoreStub) FindCell(ctx context.Context, courseID int64, semester, day int, startTime string) (*models.TimetableSlot, error) {
	for _, slot := range s.slots {
		if slot.CourseID == courseID && slot.Semester == semester && slot.DayOfWeek == day && slot.StartTime == startTime {
			found := slot
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *slotStoreStub) UpdateAssignments(ctx context.Context, slot *models.TimetableSlot) error {
	for idx := range s.slots {
		if s.slots[idx].ID == slot.ID {
			s.slots[idx].SubjectID = slot.SubjectID
			s.slots[idx].FacultyID = slot.FacultyID
			s.slots[idx].RoomID = slot.RoomID
			return nil
		}
	}
	return sql.ErrNoRows
}

type txProviderMock struct {
	db *sqlx.DB
}

func newTxProviderMock(t *testing.T) (txProvider, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlxdb}, mock
}

func (t *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return t.db.BeginTxx(ctx, opts)
}
