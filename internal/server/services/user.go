// Package services contains server-side business logic: materials and their
// files, likes, comments and user lookups.
package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/dmitrijs2005/coursevault/internal/server/models"
	"github.com/dmitrijs2005/coursevault/internal/server/query"
	"github.com/dmitrijs2005/coursevault/internal/server/repositories/repomanager"
)

// UserService provides read access to accounts. Registration and login
// belong to the authentication flow.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	listLimit   int
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, listLimit int) *UserService {
	return &UserService{db: db, repomanager: m, listLimit: listLimit}
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

// Top returns users ordered by points, optionally filtered by a name
// substring.
func (s *UserService) Top(ctx context.Context, search string, limit int) ([]*models.User, error) {
	if limit <= 0 {
		limit = s.listLimit
	}
	spec := query.Spec{
		OrderBy: []query.Order{query.Desc(query.UserPoints), query.Asc(query.UserID)},
		Limit:   uint64(min(limit, maxListLimit)),
	}
	if search = strings.TrimSpace(search); search != "" {
		spec.Filters = []query.Filter{query.Search{Term: search}}
	}
	return query.Collect(s.repomanager.Users(s.db).List(ctx, spec))
}
