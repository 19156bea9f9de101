package comments

import (
	"context"
	"fmt"
	"iter"

	"github.com/dmitrijs2005/coursevault/internal/dbx"
	"github.com/dmitrijs2005/coursevault/internal/server/models"
	"github.com/dmitrijs2005/coursevault/internal/server/query"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	q := `
		INSERT INTO comments (content, user_id, material_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowContext(ctx, q, c.Content, c.UserID, c.MaterialID).Scan(&c.ID, &c.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) DeleteByMaterial(ctx context.Context, materialID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE material_id = $1`, materialID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return dbx.RowsAffected(res)
}

func (r *PostgresRepository) List(ctx context.Context, materialID int64, limit uint64) iter.Seq2[*models.CommentView, error] {
	q, args, err := query.Build(query.Postgres, query.Comments, query.Spec{
		Filters: []query.Filter{query.Eq{Column: query.CommentMaterialID, Value: materialID}},
		Limit:   limit,
	})
	if err != nil {
		return query.Error[*models.CommentView](err)
	}
	return query.Rows(ctx, r.db, q, args, func(s query.Scanner) (*models.CommentView, error) {
		v := &models.CommentView{}
		if err := s.Scan(&v.ID, &v.MaterialID, &v.UserID, &v.Content, &v.CreatedAt, &v.AuthorName); err != nil {
			return nil, err
		}
		return v, nil
	})
}
