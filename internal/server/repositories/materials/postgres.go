package materials

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

// PostgresRepository implements material storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the row without file information and fills in ID and
// CreatedAt.
func (r *PostgresRepository) Create(ctx context.Context, m *models.Material) (*models.Material, error) {
	q := `
		INSERT INTO materials (title, description, tags, course_id, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, q, m.Title, m.Description, m.Tags, m.CourseID, m.UserID).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

// SetFile records the stored file's extension and size.
func (r *PostgresRepository) SetFile(ctx context.Context, id int64, fileType string, sizeKB int64) error {
	q := `UPDATE materials SET file_type = $2, size_kb = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, fileType, sizeKB)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, id int64) (*models.Material, error) {
	q := `
		SELECT id, title, description, tags, points, created_at, course_id, user_id, comment_count, size_kb, file_type
		FROM materials
		WHERE id = $1
		FOR UPDATE
	`
	m := &models.Material{}
	err := r.db.QueryRowContext(ctx, q, id).Scan(&m.ID, &m.Title, &m.Description, &m.Tags, &m.Points,
		&m.CreatedAt, &m.CourseID, &m.UserID, &m.CommentCount, &m.SizeKB, &m.FileType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

// Get returns one material with its course and owner.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.MaterialView, error) {
	if id <= 0 {
		return nil, common.ErrorNotFound
	}
	for v, err := range r.List(ctx, query.Spec{
		Filters: []query.Filter{query.Eq{Column: query.MaterialID, Value: id}},
		Limit:   1,
	}) {
		return v, err
	}
	return nil, common.ErrorNotFound
}

func (r *PostgresRepository) List(ctx context.Context, spec query.Spec) iter.Seq2[*models.MaterialView, error] {
	q, args, err := query.Build(query.Postgres, query.Materials, spec)
	if err != nil {
		return query.Error[*models.MaterialView](err)
	}
	return query.Rows(ctx, r.db, q, args, scanView)
}

func (r *PostgresRepository) AddPoints(ctx context.Context, id int64, delta int64) (int64, error) {
	q := `UPDATE materials SET points = points + $2 WHERE id = $1 RETURNING points`
	return r.returning(ctx, q, id, delta)
}

func (r *PostgresRepository) IncrementCommentCount(ctx context.Context, id int64) (int64, error) {
	q := `UPDATE materials SET comment_count = comment_count + 1 WHERE id = $1 RETURNING comment_count`
	return r.returning(ctx, q, id)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM materials WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

func (r *PostgresRepository) returning(ctx context.Context, q string, args ...any) (int64, error) {
	var v int64
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return v, nil
}

func expectOne(res sql.Result) error {
	n, err := dbx.RowsAffected(res)
	if err != nil {
		return err
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func scanView(s query.Scanner) (*models.MaterialView, error) {
	v := &models.MaterialView{}
	err := s.Scan(&v.ID, &v.Title, &v.Description, &v.Tags, &v.Points, &v.CreatedAt,
		&v.CourseID, &v.UserID, &v.CommentCount, &v.SizeKB, &v.FileType,
		&v.CourseCode, &v.CourseTitle, &v.Faculty, &v.OwnerName, &v.OwnerPoints)
	if err != nil {
		return nil, err
	}
	return v, nil
}
