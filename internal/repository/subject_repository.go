package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mrsingh7112/campusmind-api/internal/models"
)

// SubjectRepository reads subject records for scheduling.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs a SubjectRepository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// ListByCourseSemester returns the subjects taught in a course semester,
// ordered by id so generation walks them deterministically.
func (r *SubjectRepository) ListByCourseSemester(ctx context.Context, courseID int64, semester int) ([]models.Subject, error) {
	const query = `SELECT id, course_id, name, code, semester, type, credits, created_at
FROM subjects WHERE course_id = $1 AND semester = $2 ORDER BY id ASC`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, courseID, semester); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// FindByID fetches a subject by ID.
func (r *SubjectRepository) FindByID(ctx context.Context, id int64) (*models.Subject, error) {
	const query = `SELECT id, course_id, name, code, semester, type, credits, created_at FROM subjects WHERE id = $1`
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		return nil, err
	}
	return &subject, nil
}
