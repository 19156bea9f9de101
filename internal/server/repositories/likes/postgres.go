package likes

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/coursevault/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Add(ctx context.Context, materialID, userID int64) (bool, error) {
	q := `
		INSERT INTO material_likes (material_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (material_id, user_id) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, q, materialID, userID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := dbx.RowsAffected(res)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *PostgresRepository) DeleteByMaterial(ctx context.Context, materialID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM material_likes WHERE material_id = $1`, materialID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return dbx.RowsAffected(res)
}

// ListByUser returns the ids of the materials the user liked, oldest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]int64, error) {
	q := `SELECT material_id FROM material_likes WHERE user_id = $1 ORDER BY created_at, material_id`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ids, nil
}
