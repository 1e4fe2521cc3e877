package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/mrsingh7112/campusmind-api/internal/dto"
	"github.com/mrsingh7112/campusmind-api/internal/models"
	appErrors "github.com/mrsingh7112/campusmind-api/pkg/errors"
	"github.com/mrsingh7112/campusmind-api/pkg/export"
)

type courseReader interface {
	FindByID(ctx context.Context, id int64) (*models.Course, error)
}

type subjectReader interface {
	ListByCourseSemester(ctx context.Context, courseID int64, semester int) ([]models.Subject, error)
	FindByID(ctx context.Context, id int64) (*models.Subject, error)
}

type facultyCatalog interface {
	ListActive(ctx context.Context) ([]models.Faculty, error)
	ListSubjectLinks(ctx context.Context, subjectIDs []int64) ([]models.FacultySubject, error)
	FindByID(ctx context.Context, id int64) (*models.Faculty, error)
	FindByEmail(ctx context.Context, email string) (*models.Faculty, error)
	Create(ctx context.Context, member *models.Faculty) error
	LinkSubject(ctx context.Context, facultyID, subjectID int64) error
}

type roomCatalog interface {
	ListActive(ctx context.Context) ([]models.Room, error)
	FindByID(ctx context.Context, id int64) (*models.Room, error)
	FindFirstByType(ctx context.Context, roomType models.RoomType) (*models.Room, error)
	Create(ctx context.Context, room *models.Room) error
}

type slotStore interface {
	DeleteByCourseSemester(ctx context.Context, exec sqlx.ExtContext, courseID int64, semester int) error
	BulkInsert(ctx context.Context, exec sqlx.ExtContext, slots []models.TimetableSlot) error
	ListByCourseSemester(ctx context.Context, courseID int64, semester int) ([]models.TimetableSlot, error)
	ListEntries(ctx context.Context, courseID int64, semester int) ([]models.TimetableEntry, error)
	FindCell(ctx context.Context, courseID int64, semester, day int, startTime string) (*models.TimetableSlot, error)
	UpdateAssignments(ctx context.Context, slot *models.TimetableSlot) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// TimetableConfig carries the scheduling policy injected from configuration.
type TimetableConfig struct {
	NonTeachingPositions []string
	LecturesPerSubject   int
	VirtualFallback      bool
	CacheTTL             time.Duration
}

// TimetableService generates, reads and edits weekly timetables for a
// course semester.
type TimetableService struct {
	courses   courseReader
	subjects  subjectReader
	faculty   facultyCatalog
	rooms     roomCatalog
	slots     slotStore
	tx        txProvider
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       TimetableConfig

	csv *export.CSVExporter
	pdf *export.PDFExporter

	locks generationLocks
}

// NewTimetableService wires timetable dependencies.
func NewTimetableService(
	courses courseReader,
	subjects subjectReader,
	faculty facultyCatalog,
	rooms roomCatalog,
	slots slotStore,
	tx txProvider,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg TimetableConfig,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.LecturesPerSubject <= 0 {
		cfg.LecturesPerSubject = 5
	}
	if len(cfg.NonTeachingPositions) == 0 {
		cfg.NonTeachingPositions = []string{"Dean", "HOD", "Registrar", "Admin", "Support", "Clerk", "Librarian"}
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	return &TimetableService{
		courses:   courses,
		subjects:  subjects,
		faculty:   faculty,
		rooms:     rooms,
		slots:     slots,
		tx:        tx,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
	}
}

// Generate replaces the timetable for a course semester with a freshly
// computed slot set. Practical (LAB/WORKSHOP) subjects are placed first
// into contiguous double periods, then lectures fill the remaining grid.
func (s *TimetableService) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "courseId and semester are required")
	}

	key := generationKey(req.CourseID, req.Semester)
	if !s.locks.acquire(key) {
		return nil, appErrors.Clone(appErrors.ErrConflict, "generation already in progress for this course and semester")
	}
	defer s.locks.release(key)

	start := time.Now()
	seed := time.Now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}
	runID := uuid.NewString()
	log := s.logger.With(
		zap.String("run_id", runID),
		zap.Int64("course_id", req.CourseID),
		zap.Int("semester", req.Semester),
		zap.Int64("seed", seed),
	)

	catalog, err := s.loadCatalog(ctx, req.CourseID, req.Semester)
	if err != nil {
		return nil, err
	}

	run := &generationRun{
		rng:     rand.New(rand.NewSource(seed)),
		catalog: catalog,
		load:    newFacultyLoad(),
	}
	run.grid = newWeekGrid(run.rng)
	run.lectureRoom = catalog.lectureRooms[run.rng.Intn(len(catalog.lectureRooms))]

	s.schedulePracticals(ctx, req, run, log)
	s.scheduleLectures(ctx, req, run, log)

	if err := s.replaceSlots(ctx, req.CourseID, req.Semester, run.placements); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx, req.CourseID, req.Semester)

	entries, err := s.slots.ListEntries(ctx, req.CourseID, req.Semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload generated timetable")
	}

	if s.metrics != nil {
		s.metrics.ObserveGeneration(time.Since(start), len(run.placements), len(run.warnings))
	}
	log.Info("timetable_generated",
		zap.Int("placed", len(run.placements)),
		zap.Int("expected", run.expected),
		zap.Int("warnings", len(run.warnings)),
		zap.Duration("took", time.Since(start)),
	)

	return &dto.GenerateTimetableResult{
		TimetableResponse: dto.TimetableResponse{
			Course:   catalog.course.Summary(),
			Semester: req.Semester,
			Slots:    entries,
			Warnings: run.warnings,
		},
		Stats: dto.GenerationStats{
			RunID:    runID,
			Seed:     seed,
			Placed:   len(run.placements),
			Expected: run.expected,
		},
	}, nil
}

// Get returns the stored timetable for a course semester, served from
// cache when possible.
func (s *TimetableService) Get(ctx context.Context, query dto.TimetableQuery) (*dto.TimetableResponse, error) {
	if query.CourseID <= 0 || query.Semester <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "courseId and semester are required")
	}

	key := cacheKey(query.CourseID, query.Semester)
	var cached dto.TimetableResponse
	if s.cache != nil {
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			return &cached, nil
		}
	}

	course, err := s.courses.FindByID(ctx, query.CourseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	entries, err := s.slots.ListEntries(ctx, query.CourseID, query.Semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}

	resp := &dto.TimetableResponse{
		Course:   course.Summary(),
		Semester: query.Semester,
		Slots:    entries,
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, resp, s.cfg.CacheTTL)
	}
	return resp, nil
}

// Export renders the stored timetable as CSV or PDF for download.
func (s *TimetableService) Export(ctx context.Context, query dto.TimetableQuery, format string) ([]byte, string, error) {
	resp, err := s.Get(ctx, query)
	if err != nil {
		return nil, "", err
	}

	data := export.Dataset{Headers: []string{"Day", "Start", "End", "Subject", "Faculty", "Room"}}
	for _, entry := range resp.Slots {
		data.Rows = append(data.Rows, map[string]string{
			"Day":     dayName(entry.DayOfWeek),
			"Start":   entry.StartTime,
			"End":     entry.EndTime,
			"Subject": fmt.Sprintf("%s (%s)", entry.SubjectName, entry.SubjectCode),
			"Faculty": entry.FacultyName,
			"Room":    entry.RoomName,
		})
	}

	base := fmt.Sprintf("timetable-%s-sem%d", strings.ToLower(resp.Course.Code), resp.Semester)
	switch strings.ToLower(format) {
	case "csv":
		payload, err := s.csv.Render(data)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return payload, base + ".csv", nil
	case "pdf":
		title := fmt.Sprintf("%s - Semester %d", resp.Course.Name, resp.Semester)
		payload, err := s.pdf.Render(data, title)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return payload, base + ".pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

// EditSlot mutates one timetable cell in place, re-validating faculty and
// room disjointness for that cell against the rest of the slot set.
func (s *TimetableService) EditSlot(ctx context.Context, req dto.EditSlotRequest) (*dto.TimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid edit slot payload")
	}

	slot, err := s.slots.FindCell(ctx, req.CourseID, req.Semester, req.Day, req.StartTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no slot at the given day and time")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slot")
	}

	updated := *slot
	if req.SubjectID != nil {
		if _, err := s.subjects.FindByID(ctx, *req.SubjectID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
		}
		updated.SubjectID = *req.SubjectID
	}
	if req.FacultyID != nil {
		if _, err := s.faculty.FindByID(ctx, *req.FacultyID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
		}
		updated.FacultyID = *req.FacultyID
	}
	if req.RoomID != nil {
		if _, err := s.rooms.FindByID(ctx, *req.RoomID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
		}
		updated.RoomID = *req.RoomID
	}

	siblings, err := s.slots.ListByCourseSemester(ctx, req.CourseID, req.Semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable slots")
	}
	for _, other := range siblings {
		if other.ID == updated.ID || other.DayOfWeek != updated.DayOfWeek {
			continue
		}
		if !overlaps(other.StartTime, other.EndTime, updated.StartTime, updated.EndTime) {
			continue
		}
		if other.FacultyID == updated.FacultyID {
			return nil, appErrors.Clone(appErrors.ErrConflict, "faculty already booked at this time")
		}
		if other.RoomID == updated.RoomID {
			return nil, appErrors.Clone(appErrors.ErrConflict, "room already booked at this time")
		}
	}

	if err := s.slots.UpdateAssignments(ctx, &updated); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update slot")
	}
	s.invalidateCache(ctx, req.CourseID, req.Semester)

	return s.Get(ctx, dto.TimetableQuery{CourseID: req.CourseID, Semester: req.Semester})
}

// --- Catalog loading ---

// runCatalog is the read-only resource snapshot for one generation run.
type runCatalog struct {
	course         *models.Course
	subjects       []models.Subject
	lectureRooms   []models.Room
	labRooms       []models.Room
	workshopRooms  []models.Room
	facultyByID    map[int64]models.Faculty
	subjectFaculty map[int64]int64
}

func (s *TimetableService) loadCatalog(ctx context.Context, courseID int64, semester int) (*runCatalog, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	subjects, err := s.subjects.ListByCourseSemester(ctx, courseID, semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subjects")
	}
	if len(subjects) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no subjects defined for this course and semester")
	}

	allFaculty, err := s.faculty.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
	}
	teaching := make(map[int64]models.Faculty, len(allFaculty))
	for _, member := range allFaculty {
		if s.nonTeaching(member.Position) {
			continue
		}
		teaching[member.ID] = member
	}
	if len(teaching) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no teaching faculty available")
	}

	rooms, err := s.rooms.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	catalog := &runCatalog{
		course:         course,
		subjects:       subjects,
		facultyByID:    teaching,
		subjectFaculty: make(map[int64]int64, len(subjects)),
	}
	for _, room := range rooms {
		switch room.Type {
		case models.RoomTypeLecture:
			catalog.lectureRooms = append(catalog.lectureRooms, room)
		case models.RoomTypeLab:
			catalog.labRooms = append(catalog.labRooms, room)
		case models.RoomTypeWorkshop:
			catalog.workshopRooms = append(catalog.workshopRooms, room)
		}
	}
	if len(catalog.lectureRooms) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no active lecture rooms available")
	}

	subjectIDs := make([]int64, 0, len(subjects))
	for _, subject := range subjects {
		subjectIDs = append(subjectIDs, subject.ID)
	}
	links, err := s.faculty.ListSubjectLinks(ctx, subjectIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty assignments")
	}
	// First eligible link per subject wins; links arrive ordered by id.
	for _, link := range links {
		if _, assigned := catalog.subjectFaculty[link.SubjectID]; assigned {
			continue
		}
		if _, eligible := teaching[link.FacultyID]; !eligible {
			continue
		}
		catalog.subjectFaculty[link.SubjectID] = link.FacultyID
	}

	return catalog, nil
}

// nonTeaching reports whether the position matches the injected blacklist.
func (s *TimetableService) nonTeaching(position string) bool {
	lowered := strings.ToLower(position)
	for _, entry := range s.cfg.NonTeachingPositions {
		if entry == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(entry)) {
			return true
		}
	}
	return false
}

// --- Generation run state ---

type generationRun struct {
	rng         *rand.Rand
	catalog     *runCatalog
	grid        *weekGrid
	load        *facultyLoad
	lectureRoom models.Room
	placements  []models.TimetableSlot
	warnings    []models.PlacementWarning
	expected    int
}

func (r *generationRun) warn(subject models.Subject, reason string) {
	r.warnings = append(r.warnings, models.PlacementWarning{
		SubjectID:   subject.ID,
		SubjectName: subject.Name,
		Reason:      reason,
	})
}

// resolveFaculty returns the faculty member assigned to the subject,
// falling back to a materialized virtual member when the policy allows.
func (s *TimetableService) resolveFaculty(ctx context.Context, run *generationRun, subject models.Subject, log *zap.Logger) (int64, bool) {
	if facultyID, ok := run.catalog.subjectFaculty[subject.ID]; ok {
		return facultyID, true
	}
	if !s.cfg.VirtualFallback {
		return 0, false
	}
	facultyID, err := s.ensureVirtualFaculty(ctx, run.catalog.course, subject)
	if err != nil {
		log.Warn("virtual faculty fallback failed", zap.Int64("subject_id", subject.ID), zap.Error(err))
		return 0, false
	}
	run.catalog.subjectFaculty[subject.ID] = facultyID
	return facultyID, true
}

// schedulePracticals places LAB/WORKSHOP subjects into contiguous double
// periods in matching specialized rooms. Tightest constraints go first,
// so practicals run before the lecture fill.
func (s *TimetableService) schedulePracticals(ctx context.Context, req dto.GenerateTimetableRequest, run *generationRun, log *zap.Logger) {
	for _, subject := range run.catalog.subjects {
		if !subject.Type.Practical() {
			continue
		}
		run.expected++

		facultyID, ok := s.resolveFaculty(ctx, run, subject, log)
		if !ok {
			run.warn(subject, "no eligible faculty assigned")
			continue
		}

		pool := run.catalog.labRooms
		if subject.Type == models.SubjectTypeWorkshop {
			pool = run.catalog.workshopRooms
		}
		if len(pool) == 0 {
			if s.cfg.VirtualFallback {
				room, err := s.ensureVirtualRoom(ctx)
				if err != nil {
					log.Warn("virtual room fallback failed", zap.Int64("subject_id", subject.ID), zap.Error(err))
					run.warn(subject, fmt.Sprintf("no active %s rooms available", strings.ToLower(string(subject.Type))))
					continue
				}
				pool = []models.Room{*room}
			} else {
				run.warn(subject, fmt.Sprintf("no active %s rooms available", strings.ToLower(string(subject.Type))))
				continue
			}
		}

		placed := false
		for _, day := range shuffledDays(run.rng) {
			for slot := 0; slot < slotsPerDay-1; slot++ {
				if !run.grid.PairFree(day, slot) {
					continue
				}
				if run.load.Busy(facultyID, day, slot) || run.load.Busy(facultyID, day, slot+1) {
					continue
				}
				room := pool[run.rng.Intn(len(pool))]
				run.grid.Claim(day, slot)
				run.grid.Claim(day, slot+1)
				run.load.Reserve(facultyID, day, slot)
				run.load.Reserve(facultyID, day, slot+1)
				run.placements = append(run.placements, models.TimetableSlot{
					CourseID:  req.CourseID,
					SubjectID: subject.ID,
					FacultyID: facultyID,
					RoomID:    room.ID,
					Semester:  req.Semester,
					DayOfWeek: day,
					StartTime: slotWindows[slot].Start,
					EndTime:   slotWindows[slot+1].End,
				})
				placed = true
				break
			}
			if placed {
				break
			}
		}
		if !placed {
			run.warn(subject, "no conflict-free double period available")
		}
	}
}

// scheduleLectures fills remaining single cells with non-practical
// subjects round-robin, all in the one room chosen for the run. The fill
// stops at lectureSubjects x LecturesPerSubject placements, a heuristic
// cap rather than a credit-derived target.
func (s *TimetableService) scheduleLectures(ctx context.Context, req dto.GenerateTimetableRequest, run *generationRun, log *zap.Logger) {
	type lectureCandidate struct {
		subject   models.Subject
		facultyID int64
	}
	var rotation []lectureCandidate
	for _, subject := range run.catalog.subjects {
		if subject.Type.Practical() {
			continue
		}
		facultyID, ok := s.resolveFaculty(ctx, run, subject, log)
		if !ok {
			run.warn(subject, "no eligible faculty assigned")
			continue
		}
		rotation = append(rotation, lectureCandidate{subject: subject, facultyID: facultyID})
	}
	if len(rotation) == 0 {
		return
	}

	target := len(rotation) * s.cfg.LecturesPerSubject
	run.expected += target

	cells := run.grid.FreeCells()
	run.rng.Shuffle(len(cells), func(i, j int) {
		cells[i], cells[j] = cells[j], cells[i]
	})

	placed := 0
	next := 0
	for _, cell := range cells {
		if placed >= target {
			break
		}
		// On a faculty clash the rotation advances but the cell stays
		// open for the next subject; each subject gets one try per cell.
		for attempt := 0; attempt < len(rotation); attempt++ {
			candidate := rotation[next%len(rotation)]
			next++
			if run.load.Busy(candidate.facultyID, cell.Day, cell.Slot) {
				continue
			}
			run.grid.Claim(cell.Day, cell.Slot)
			run.load.Reserve(candidate.facultyID, cell.Day, cell.Slot)
			run.placements = append(run.placements, models.TimetableSlot{
				CourseID:  req.CourseID,
				SubjectID: candidate.subject.ID,
				FacultyID: candidate.facultyID,
				RoomID:    run.lectureRoom.ID,
				Semester:  req.Semester,
				DayOfWeek: cell.Day,
				StartTime: slotWindows[cell.Slot].Start,
				EndTime:   slotWindows[cell.Slot].End,
			})
			placed++
			break
		}
	}
}

// replaceSlots swaps the stored slot set inside one transaction so a
// failure never leaves a partially written timetable.
func (s *TimetableService) replaceSlots(ctx context.Context, courseID int64, semester int, slots []models.TimetableSlot) error {
	if s.tx == nil {
		return appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.slots.DeleteByCourseSemester(ctx, tx, courseID, semester); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear previous timetable")
	}
	if err = s.slots.BulkInsert(ctx, tx, slots); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist timetable slots")
	}
	if err = tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit timetable")
	}
	return nil
}

// --- Virtual resource fallback ---

// ensureVirtualFaculty finds or creates the synthetic stand-in for a
// subject with no real coverage, and links it so later runs resolve it
// through the normal eligibility path.
func (s *TimetableService) ensureVirtualFaculty(ctx context.Context, course *models.Course, subject models.Subject) (int64, error) {
	email := fmt.Sprintf("virtual.%s@campusmind.local", strings.ToLower(subject.Code))
	member, err := s.faculty.FindByEmail(ctx, email)
	if err == nil {
		if linkErr := s.faculty.LinkSubject(ctx, member.ID, subject.ID); linkErr != nil {
			return 0, linkErr
		}
		return member.ID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	created := &models.Faculty{
		Name:         fmt.Sprintf("Virtual Faculty (%s)", subject.Code),
		Email:        email,
		Position:     "Virtual Faculty",
		DepartmentID: course.DepartmentID,
		Status:       models.FacultyStatusActive,
	}
	if err := s.faculty.Create(ctx, created); err != nil {
		return 0, err
	}
	if err := s.faculty.LinkSubject(ctx, created.ID, subject.ID); err != nil {
		return 0, err
	}
	return created.ID, nil
}

// ensureVirtualRoom finds or creates the shared ONLINE room used when a
// specialized pool is empty.
func (s *TimetableService) ensureVirtualRoom(ctx context.Context) (*models.Room, error) {
	room, err := s.rooms.FindFirstByType(ctx, models.RoomTypeVirtual)
	if err == nil {
		return room, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	created := &models.Room{
		Name:     "Virtual Room",
		Capacity: 100,
		Type:     models.RoomTypeVirtual,
		Building: "ONLINE",
		Floor:    0,
		Status:   models.RoomStatusActive,
	}
	if err := s.rooms.Create(ctx, created); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *TimetableService) invalidateCache(ctx context.Context, courseID int64, semester int) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, cacheKey(courseID, semester))
}

// --- Helpers ---

// generationLocks serializes generation per (courseId, semester) key.
// A second request for a held key is rejected rather than queued.
type generationLocks struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func (l *generationLocks) acquire(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held == nil {
		l.held = make(map[string]struct{})
	}
	if _, busy := l.held[key]; busy {
		return false
	}
	l.held[key] = struct{}{}
	return true
}

func (l *generationLocks) release(key string) {
	l.mu.Lock()
	delete(l.held, key)
	l.mu.Unlock()
}

func generationKey(courseID int64, semester int) string {
	return fmt.Sprintf("%d:%d", courseID, semester)
}

func cacheKey(courseID int64, semester int) string {
	return fmt.Sprintf("timetable:%d:%d", courseID, semester)
}

func shuffledDays(rng *rand.Rand) []int {
	days := make([]int, daysPerWeek)
	for i := range days {
		days[i] = i + 1
	}
	rng.Shuffle(len(days), func(i, j int) {
		days[i], days[j] = days[j], days[i]
	})
	return days
}

// overlaps reports whether two HH:MM intervals intersect. Lexicographic
// comparison is sound for zero-padded 24h times.
func overlaps(aStart, aEnd, bStart, bEnd string) bool {
	return aStart < bEnd && bStart < aEnd
}

var dayNames = map[int]string{
	1: "Monday",
	2: "Tuesday",
	3: "Wednesday",
	4: "Thursday",
	5: "Friday",
}

func dayName(day int) string {
	if name, ok := dayNames[day]; ok {
		return name
	}
	return fmt.Sprintf("Day %d", day)
}
