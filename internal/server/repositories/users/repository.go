package users

import (
	"context"
	"iter"

	"github.com/dmitrijs2005/coursevault/internal/server/models"
	"github.com/dmitrijs2005/coursevault/internal/server/query"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	// AddPoints adds delta (possibly negative) to the user's points and
	// returns the new total.
	AddPoints(ctx context.Context, id int64, delta int64) (int64, error)
	List(ctx context.Context, spec query.Spec) iter.Seq2[*models.User, error]
}
