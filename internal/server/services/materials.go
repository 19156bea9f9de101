package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/dmitrijs2005/coursevault/internal/common"
	"github.com/dmitrijs2005/coursevault/internal/dbx"
	"github.com/dmitrijs2005/coursevault/internal/logging"
	"github.com/dmitrijs2005/coursevault/internal/server/config"
	"github.com/dmitrijs2005/coursevault/internal/server/models"
	"github.com/dmitrijs2005/coursevault/internal/server/query"
	"github.com/dmitrijs2005/coursevault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/coursevault/internal/server/storage"
	"github.com/dmitrijs2005/coursevault/internal/server/upload"
)

const (
	sortedListLimit = 10
	maxListLimit    = 1000
)

// MaterialService keeps material rows and their stored files in step.
// It is the only writer under the storage root.
type MaterialService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       *storage.Store
	validator   *upload.Validator
	log         logging.Logger
	listLimit   int
}

func NewMaterialService(db *sql.DB, m repomanager.RepositoryManager, store *storage.Store,
	v *upload.Validator, log logging.Logger, cfg *config.Config) *MaterialService {
	return &MaterialService{
		db:          db,
		repomanager: m,
		store:       store,
		validator:   v,
		log:         log.With("module", "materials"),
		listLimit:   cfg.ListLimit,
	}
}

// Create inserts a material without a file and returns its id. The
// requester must hold a confirmed account.
func (s *MaterialService) Create(ctx context.Context, req models.Requester, in models.NewMaterial) (int64, error) {
	if err := requirePrivilege(ctx, s.repomanager, s.db, req, common.PrivilegeConfirmed); err != nil {
		return 0, err
	}

	in.Title = normalizeText(in.Title)
	in.Description = normalizeText(in.Description)
	in.Tags = strings.TrimSpace(in.Tags)
	if err := validateInput(in); err != nil {
		return 0, err
	}

	if _, err := s.repomanager.Courses(s.db).Get(ctx, in.CourseID); err != nil {
		return 0, err
	}

	m, err := s.repomanager.Materials(s.db).Create(ctx, &models.Material{
		Title:       in.Title,
		Description: in.Description,
		Tags:        in.Tags,
		CourseID:    in.CourseID,
		UserID:      req.UserID,
	})
	if err != nil {
		return 0, err
	}
	return m.ID, nil
}

// AttachFile stores the upload for a freshly created material. On any
// failure the material row is deleted and no file is left behind. A
// material that already has a file is refused and left untouched.
func (s *MaterialService) AttachFile(ctx context.Context, id int64, filename string, r io.Reader) error {
	m, err := s.repomanager.Materials(s.db).Get(ctx, id)
	if err != nil {
		return err
	}
	if m.FileType != "" {
		return &common.ValidationError{Field: "file", Reason: "already attached"}
	}

	ext, err := s.validator.ValidateName(filename)
	if err != nil {
		return s.abandon(ctx, id, err)
	}

	staged, err := s.store.Stage(ctx, r)
	if err != nil {
		return s.abandon(ctx, id, err)
	}

	if _, err := s.validator.Validate(filename, staged, staged.Size()); err != nil {
		_ = s.store.Discard(staged)
		return s.abandon(ctx, id, err)
	}

	path, err := s.store.Place(staged, id, ext)
	if err != nil {
		return s.abandon(ctx, id, err)
	}

	if err := s.repomanager.Materials(s.db).SetFile(ctx, id, ext, staged.Size()/1024); err != nil {
		if rmErr := s.store.Remove(path); rmErr != nil {
			s.log.Error(ctx, "placed file left behind", "material_id", id, "path", path, "inconsistency", true, "error", rmErr)
		}
		return s.abandon(ctx, id, err)
	}

	s.log.Info(ctx, "material file stored", "material_id", id, "type", ext, "size", staged.Size())
	return nil
}

// Upload creates a material and attaches its file.
func (s *MaterialService) Upload(ctx context.Context, req models.Requester, in models.NewMaterial, filename string, r io.Reader) (int64, error) {
	id, err := s.Create(ctx, req, in)
	if err != nil {
		return 0, err
	}
	if err := s.AttachFile(ctx, id, filename, r); err != nil {
		return 0, err
	}
	return id, nil
}

// abandon removes the row of a material whose file could not be stored and
// returns cause.
func (s *MaterialService) abandon(ctx context.Context, id int64, cause error) error {
	ctx = context.WithoutCancel(ctx)
	if err := s.repomanager.Materials(s.db).Delete(ctx, id); err != nil && !errors.Is(err, common.ErrorNotFound) {
		s.log.Error(ctx, "material row left without file", "material_id", id, "inconsistency", true, "error", err)
	}
	s.log.Warn(ctx, "material upload rejected", "material_id", id, "error", cause)
	return cause
}

// Delete removes a material together with its likes, comments and file and
// takes its points back from the owner. Only the owner or an admin may
// delete.
func (s *MaterialService) Delete(ctx context.Context, req models.Requester, id int64) error {
	var deleted *models.Material

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		m, err := s.repomanager.Materials(tx).GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if m.UserID != req.UserID {
			if err := requirePrivilege(ctx, s.repomanager, tx, req, common.PrivilegeAdmin); err != nil {
				return err
			}
		}
		if m.Points != 0 {
			if _, err := s.repomanager.Users(tx).AddPoints(ctx, m.UserID, -m.Points); err != nil {
				return err
			}
		}
		if _, err := s.repomanager.Likes(tx).DeleteByMaterial(ctx, id); err != nil {
			return err
		}
		if _, err := s.repomanager.Comments(tx).DeleteByMaterial(ctx, id); err != nil {
			return err
		}
		if err := s.repomanager.Materials(tx).Delete(ctx, id); err != nil {
			return err
		}
		deleted = m
		return nil
	})
	if err != nil {
		return err
	}

	if deleted.FileType == "" {
		return nil
	}
	rel, err := s.store.Allocator().RelPath(id, deleted.FileType)
	if err == nil {
		err = s.store.Remove(rel)
	}
	if err != nil {
		s.log.Error(ctx, "material file removal failed", "material_id", id, "path", rel, "inconsistency", true, "error", err)
		return &common.StorageInconsistencyError{MaterialID: id, Path: rel, Err: err}
	}

	s.log.Info(ctx, "material deleted", "material_id", id, "by", req.UserID)
	return nil
}

func (s *MaterialService) Get(ctx context.Context, id int64) (*models.MaterialView, error) {
	return s.repomanager.Materials(s.db).Get(ctx, id)
}

// List yields materials matching c. Exactly one criterion applies, chosen in
// the order search, sort, faculty, owner, course.
func (s *MaterialService) List(ctx context.Context, c models.ListCriteria) iter.Seq2[*models.MaterialView, error] {
	spec, err := s.listSpec(c)
	if err != nil {
		return query.Error[*models.MaterialView](err)
	}
	return s.repomanager.Materials(s.db).List(ctx, spec)
}

func (s *MaterialService) listSpec(c models.ListCriteria) (query.Spec, error) {
	spec := query.Spec{}
	limit := s.listLimit

	switch {
	case strings.TrimSpace(c.Search) != "":
		spec.Filters = []query.Filter{query.Search{Term: c.Search}}
	case c.Sort != "":
		switch c.Sort {
		case models.SortNewest:
			spec.OrderBy = []query.Order{query.Desc(query.MaterialCreatedAt), query.Desc(query.MaterialID)}
		case models.SortMostCommented:
			spec.OrderBy = []query.Order{query.Desc(query.MaterialCommentCount), query.Desc(query.MaterialID)}
		case models.SortMostLiked:
			spec.OrderBy = []query.Order{query.Desc(query.MaterialPoints), query.Desc(query.MaterialID)}
		default:
			return spec, &common.ValidationError{Field: "sort", Reason: fmt.Sprintf("unknown order %q", c.Sort)}
		}
		limit = sortedListLimit
	case c.Faculty != "":
		if !models.ValidFaculty(c.Faculty) {
			return spec, &common.ValidationError{Field: "faculty", Reason: fmt.Sprintf("unknown faculty %q", c.Faculty)}
		}
		spec.Filters = []query.Filter{query.Eq{Column: query.CourseFaculty, Value: c.Faculty}}
	case c.OwnerID > 0:
		spec.Filters = []query.Filter{query.Eq{Column: query.MaterialOwnerID, Value: c.OwnerID}}
	case c.CourseID > 0:
		spec.Filters = []query.Filter{query.Eq{Column: query.MaterialCourseID, Value: c.CourseID}}
	}

	if c.Limit > 0 {
		limit = min(c.Limit, maxListLimit)
	}
	spec.Limit = uint64(limit)
	return spec, nil
}

// ListCourses returns courses matching search with their material counts.
func (s *MaterialService) ListCourses(ctx context.Context, search string, limit int) ([]*models.CourseView, error) {
	if limit <= 0 {
		limit = s.listLimit
	}
	spec := query.Spec{
		Filters: []query.Filter{query.Search{Term: search}},
		Limit:   uint64(min(limit, maxListLimit)),
	}
	return query.Collect(s.repomanager.Courses(s.db).List(ctx, spec))
}

// FilePath returns the stored file's path relative to the storage root, or
// "" when the material has no file.
func (s *MaterialService) FilePath(v *models.MaterialView) string {
	if v == nil || v.FileType == "" {
		return ""
	}
	rel, err := s.store.Allocator().RelPath(v.ID, v.FileType)
	if err != nil {
		return ""
	}
	return rel
}

// requirePrivilege loads the requester and checks their privilege level.
// An unknown requester is unauthorized.
func requirePrivilege(ctx context.Context, m repomanager.RepositoryManager, db dbx.DBTX, req models.Requester, level int) error {
	u, err := m.Users(db).GetByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorUnauthorized
		}
		return err
	}
	if u.Privilege < level {
		return common.ErrorPermission
	}
	return nil
}
