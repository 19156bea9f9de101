package courses

import (
	"context"
	"iter"

	"github.com/dmitrijs2005/coursevault/internal/server/models"
	"github.com/dmitrijs2005/coursevault/internal/server/query"
)

type Repository interface {
	Create(ctx context.Context, course *models.Course) (*models.Course, error)
	Get(ctx context.Context, id int64) (*models.Course, error)
	List(ctx context.Context, spec query.Spec) iter.Seq2[*models.CourseView, error]
}
