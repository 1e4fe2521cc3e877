package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mrsingh7112/campusmind-api/internal/models"
)

// FacultyRepository manages faculty records and their subject links.
type FacultyRepository struct {
	db *sqlx.DB
}

// NewFacultyRepository constructs a FacultyRepository.
func NewFacultyRepository(db *sqlx.DB) *FacultyRepository {
	return &FacultyRepository{db: db}
}

// ListActive returns faculty with ACTIVE status ordered by id.
// Position-based filtering happens in the service layer, where the
// non-teaching blacklist is injected from configuration.
func (r *FacultyRepository) ListActive(ctx context.Context) ([]models.Faculty, error) {
	const query = `SELECT id, name, email, position, department_id, status, created_at
FROM faculty WHERE status = 'ACTIVE' ORDER BY id ASC`
	var faculty []models.Faculty
	if err := r.db.SelectContext(ctx, &faculty, query); err != nil {
		return nil, fmt.Errorf("list active faculty: %w", err)
	}
	return faculty, nil
}

// ListSubjectLinks returns faculty-subject links for the given subjects,
// ordered by link id so "first match" is stable.
func (r *FacultyRepository) ListSubjectLinks(ctx context.Context, subjectIDs []int64) ([]models.FacultySubject, error) {
	if len(subjectIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id, faculty_id, subject_id FROM faculty_subjects WHERE subject_id IN (?) ORDER BY subject_id ASC, id ASC`, subjectIDs)
	if err != nil {
		return nil, fmt.Errorf("build subject links query: %w", err)
	}
	query = r.db.Rebind(query)
	var links []models.FacultySubject
	if err := r.db.SelectContext(ctx, &links, query, args...); err != nil {
		return nil, fmt.Errorf("list subject links: %w", err)
	}
	return links, nil
}

// FindByID fetches a faculty member by ID.
func (r *FacultyRepository) FindByID(ctx context.Context, id int64) (*models.Faculty, error) {
	const query = `SELECT id, name, email, position, department_id, status, created_at FROM faculty WHERE id = $1`
	var member models.Faculty
	if err := r.db.GetContext(ctx, &member, query, id); err != nil {
		return nil, err
	}
	return &member, nil
}

// FindByEmail fetches a faculty member by email.
func (r *FacultyRepository) FindByEmail(ctx context.Context, email string) (*models.Faculty, error) {
	const query = `SELECT id, name, email, position, department_id, status, created_at FROM faculty WHERE LOWER(email) = LOWER($1)`
	var member models.Faculty
	if err := r.db.GetContext(ctx, &member, query, email); err != nil {
		return nil, err
	}
	return &member, nil
}

// Create inserts a faculty record and fills in its generated id.
// The generator uses this to materialize virtual faculty.
func (r *FacultyRepository) Create(ctx context.Context, member *models.Faculty) error {
	const query = `INSERT INTO faculty (name, email, position, department_id, status)
VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, query, member.Name, member.Email, member.Position, member.DepartmentID, member.Status)
	if err := row.Scan(&member.ID, &member.CreatedAt); err != nil {
		return fmt.Errorf("create faculty: %w", err)
	}
	return nil
}

// LinkSubject records that a faculty member may teach a subject.
func (r *FacultyRepository) LinkSubject(ctx context.Context, facultyID, subjectID int64) error {
	const query = `INSERT INTO faculty_subjects (faculty_id, subject_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, facultyID, subjectID); err != nil {
		return fmt.Errorf("link faculty subject: %w", err)
	}
	return nil
}
