package services

import (
	"context"
	"database/sql"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/coursevault/internal/common"
	"github.com/dmitrijs2005/coursevault/internal/dbx"
	"github.com/dmitrijs2005/coursevault/internal/logging"
	"github.com/dmitrijs2005/coursevault/internal/server/models"
	"github.com/dmitrijs2005/coursevault/internal/server/query"
	"github.com/dmitrijs2005/coursevault/internal/server/repositories/repomanager"
)

const commentListLimit = 100

// CommentService appends comments and keeps materials.comment_count equal
// to the number of comment rows.
type CommentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewCommentService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *CommentService {
	return &CommentService{db: db, repomanager: m, log: log.With("module", "comments")}
}

// Add stores a comment and returns the material's new comment count.
func (s *CommentService) Add(ctx context.Context, req models.Requester, materialID int64, content string) (int64, error) {
	if utf8.RuneCountInString(content) > models.MaxCommentLength {
		return 0, common.ErrorTooLong
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return 0, &common.ValidationError{Field: "content", Reason: "must not be empty"}
	}

	var count int64
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		n, err := s.repomanager.Materials(tx).IncrementCommentCount(ctx, materialID)
		if err != nil {
			return err
		}
		if _, err := s.repomanager.Comments(tx).Create(ctx, &models.Comment{
			MaterialID: materialID,
			UserID:     req.UserID,
			Content:    content,
		}); err != nil {
			return err
		}
		count = n
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Debug(ctx, "comment added", "material_id", materialID, "user_id", req.UserID, "count", count)
	return count, nil
}

// List returns up to 100 comments of the material, oldest first.
func (s *CommentService) List(ctx context.Context, materialID int64) ([]*models.CommentView, error) {
	return query.Collect(s.repomanager.Comments(s.db).List(ctx, materialID, commentListLimit))
}
