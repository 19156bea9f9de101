package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/coursevault/internal/common"
	"github.com/dmitrijs2005/coursevault/internal/dbx"
	"github.com/dmitrijs2005/coursevault/internal/logging"
	"github.com/dmitrijs2005/coursevault/internal/server/models"
	"github.com/dmitrijs2005/coursevault/internal/server/repositories/repomanager"
)

// LikeService moves one point from nowhere to a material and its owner per
// (user, material) pair. Self-likes and repeated likes change nothing.
type LikeService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewLikeService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *LikeService {
	return &LikeService{db: db, repomanager: m, log: log.With("module", "likes")}
}

// Like records req's like of the material. The material row stays locked
// for the whole transaction so a concurrent delete cannot lose the point.
func (s *LikeService) Like(ctx context.Context, req models.Requester, materialID int64) (models.LikeResult, error) {
	var res models.LikeResult

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		liker, err := s.repomanager.Users(tx).GetByID(ctx, req.UserID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorPermission
			}
			return err
		}
		if liker.Privilege < common.PrivilegeConfirmed {
			return common.ErrorPermission
		}

		m, err := s.repomanager.Materials(tx).GetForUpdate(ctx, materialID)
		if err != nil {
			return err
		}
		res.Points = m.Points
		if m.UserID == liker.ID {
			return nil
		}

		added, err := s.repomanager.Likes(tx).Add(ctx, materialID, liker.ID)
		if err != nil || !added {
			return err
		}

		points, err := s.repomanager.Materials(tx).AddPoints(ctx, materialID, 1)
		if err != nil {
			return err
		}
		if _, err := s.repomanager.Users(tx).AddPoints(ctx, m.UserID, 1); err != nil {
			return err
		}
		res = models.LikeResult{Points: points, Applied: true}
		return nil
	})
	if err != nil {
		return models.LikeResult{}, err
	}

	if res.Applied {
		s.log.Info(ctx, "material liked", "material_id", materialID, "user_id", req.UserID, "points", res.Points)
	}
	return res, nil
}

// LikedBy returns the ids of the materials userID has liked.
func (s *LikeService) LikedBy(ctx context.Context, userID int64) ([]int64, error) {
	return s.repomanager.Likes(s.db).ListByUser(ctx, userID)
}
