package likes

import "context"

// Repository manages the material_likes join table, at most one row per
// (material, user).
type Repository interface {
	// Add records the like and reports whether a new row was inserted.
	Add(ctx context.Context, materialID, userID int64) (bool, error)
	DeleteByMaterial(ctx context.Context, materialID int64) (int64, error)
	ListByUser(ctx context.Context, userID int64) ([]int64, error)
}
