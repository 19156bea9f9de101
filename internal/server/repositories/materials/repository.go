package materials

import (
	"context"
	"iter"

	"github.com/dmitrijs2005/coursevault/internal/server/models"
	"github.com/dmitrijs2005/coursevault/internal/server/query"
)

type Repository interface {
	Create(ctx context.Context, m *models.Material) (*models.Material, error)
	SetFile(ctx context.Context, id int64, fileType string, sizeKB int64) error
	// GetForUpdate reads the row and locks it until the transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*models.Material, error)
	Get(ctx context.Context, id int64) (*models.MaterialView, error)
	List(ctx context.Context, spec query.Spec) iter.Seq2[*models.MaterialView, error]
	AddPoints(ctx context.Context, id int64, delta int64) (int64, error)
	IncrementCommentCount(ctx context.Context, id int64) (int64, error)
	Delete(ctx context.Context, id int64) error
}
