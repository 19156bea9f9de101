package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/coursevault/internal/dbx"
	"github.com/dmitrijs2005/coursevault/internal/server/repositories/comments"
	"github.com/dmitrijs2005/coursevault/internal/server/repositories/courses"
	"github.com/dmitrijs2005/coursevault/internal/server/repositories/likes"
	"github.com/dmitrijs2005/coursevault/internal/server/repositories/materials"
	"github.com/dmitrijs2005/coursevault/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Courses(db dbx.DBTX) courses.Repository
	Materials(db dbx.DBTX) materials.Repository
	Likes(db dbx.DBTX) likes.Repository
	Comments(db dbx.DBTX) comments.Repository
}
