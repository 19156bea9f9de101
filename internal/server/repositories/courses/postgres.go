package courses

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"

	"github.com/dmitrijs2005/coursevault/internal/common"
	"github.com/dmitrijs2005/coursevault/internal/dbx"
	"github.com/dmitrijs2005/coursevault/internal/server/models"
	"github.com/dmitrijs2005/coursevault/internal/server/query"
)

// PostgresRepository implements course storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a course. Code format and faculty are enforced by table
// constraints.
func (r *PostgresRepository) Create(ctx context.Context, course *models.Course) (*models.Course, error) {
	q := `INSERT INTO courses (code, title, faculty)
		VALUES ($1, $2, $3)
		RETURNING id`

	if err := r.db.QueryRowContext(ctx, q, course.Code, course.Title, course.Faculty).Scan(&course.ID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return course, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Course, error) {
	q := `SELECT id, code, title, faculty FROM courses WHERE id = $1`

	c := &models.Course{}
	err := r.db.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.Code, &c.Title, &c.Faculty)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

// List returns courses with their material counts.
func (r *PostgresRepository) List(ctx context.Context, spec query.Spec) iter.Seq2[*models.CourseView, error] {
	q, args, err := query.Build(query.Postgres, query.Courses, spec)
	if err != nil {
		return query.Error[*models.CourseView](err)
	}
	return query.Rows(ctx, r.db, q, args, func(s query.Scanner) (*models.CourseView, error) {
		v := &models.CourseView{}
		if err := s.Scan(&v.ID, &v.Code, &v.Title, &v.Faculty, &v.MaterialCount); err != nil {
			return nil, err
		}
		return v, nil
	})
}
