package users

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

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	q :=
		`INSERT INTO users (name, privilege)
         VALUES ($1, $2)
		 RETURNING id, joined_at
		 `

	err := r.db.QueryRowContext(ctx, q, user.Name, user.Privilege).Scan(&user.ID, &user.JoinedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	q :=
		`SELECT id, name, privilege, points, joined_at FROM users
		 WHERE id = $1
		 `

	user, err := scanUser(r.db.QueryRowContext(ctx, q, id))

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) AddPoints(ctx context.Context, id int64, delta int64) (int64, error) {
	q :=
		`UPDATE users SET points = points + $2
		 WHERE id = $1
		 RETURNING points
		 `

	var points int64
	err := r.db.QueryRowContext(ctx, q, id, delta).Scan(&points)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}

	return points, nil
}

// List returns users from the query.Users template.
func (r *PostgresRepository) List(ctx context.Context, spec query.Spec) iter.Seq2[*models.User, error] {
	q, args, err := query.Build(query.Postgres, query.Users, spec)
	if err != nil {
		return query.Error[*models.User](err)
	}
	return query.Rows(ctx, r.db, q, args, scanUser)
}

func scanUser(s query.Scanner) (*models.User, error) {
	u := &models.User{}
	if err := s.Scan(&u.ID, &u.Name, &u.Privilege, &u.Points, &u.JoinedAt); err != nil {
		return nil, err
	}
	return u, nil
}
