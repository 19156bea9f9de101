package comments

import (
	"context"
	"iter"

	"github.com/dmitrijs2005/coursevault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, c *models.Comment) (*models.Comment, error)
	DeleteByMaterial(ctx context.Context, materialID int64) (int64, error)
	// List yields the material's comments oldest first, at most limit of them.
	List(ctx context.Context, materialID int64, limit uint64) iter.Seq2[*models.CommentView, error]
}
