package httpapi

import (
	"context"
	"io"
	"iter"
	"slices"

	"github.com/dmitrijs2005/coursevault/internal/common"
	"github.com/dmitrijs2005/coursevault/internal/server/models"
)

type uploadCall struct {
	req      models.Requester
	in       models.NewMaterial
	filename string
	body     string
}

type fakeMaterials struct {
	views     map[int64]*models.MaterialView
	courses   []*models.CourseView
	lastCrit  models.ListCriteria
	uploads   []uploadCall
	uploadErr error
	deleted   []int64
	deleteErr error
}

func (f *fakeMaterials) Upload(_ context.Context, req models.Requester, in models.NewMaterial, filename string, r io.Reader) (int64, error) {
	b, _ := io.ReadAll(r)
	f.uploads = append(f.uploads, uploadCall{req: req, in: in, filename: filename, body: string(b)})
	if f.uploadErr != nil {
		return 0, f.uploadErr
	}
	return 77, nil
}

func (f *fakeMaterials) Delete(_ context.Context, _ models.Requester, id int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeMaterials) Get(_ context.Context, id int64) (*models.MaterialView, error) {
	v, ok := f.views[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return v, nil
}

func (f *fakeMaterials) List(_ context.Context, c models.ListCriteria) iter.Seq2[*models.MaterialView, error] {
	f.lastCrit = c
	if c.Sort == "bogus" {
		return func(yield func(*models.MaterialView, error) bool) {
			yield(nil, &common.ValidationError{Field: "sort", Reason: "unknown order"})
		}
	}
	ids := make([]int64, 0, len(f.views))
	for id := range f.views {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return func(yield func(*models.MaterialView, error) bool) {
		for _, id := range ids {
			if !yield(f.views[id], nil) {
				return
			}
		}
	}
}

func (f *fakeMaterials) ListCourses(context.Context, string, int) ([]*models.CourseView, error) {
	return f.courses, nil
}

func (f *fakeMaterials) FilePath(v *models.MaterialView) string {
	if v.FileType == "" {
		return ""
	}
	return "000/005." + v.FileType
}

type fakeLikes struct {
	res     models.LikeResult
	err     error
	likedBy map[int64][]int64
}

func (f *fakeLikes) Like(context.Context, models.Requester, int64) (models.LikeResult, error) {
	return f.res, f.err
}

func (f *fakeLikes) LikedBy(_ context.Context, userID int64) ([]int64, error) {
	ids := f.likedBy[userID]
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

type fakeComments struct {
	byMaterial map[int64][]*models.CommentView
	addErr     error
}

func (f *fakeComments) Add(_ context.Context, req models.Requester, materialID int64, content string) (int64, error) {
	if f.addErr != nil {
		return 0, f.addErr
	}
	id := int64(len(f.byMaterial[materialID]) + 1)
	f.byMaterial[materialID] = append(f.byMaterial[materialID], &models.CommentView{
		Comment:    models.Comment{ID: id, MaterialID: materialID, UserID: req.UserID, Content: content},
		AuthorName: "alice",
	})
	return id, nil
}

func (f *fakeComments) List(_ context.Context, materialID int64) ([]*models.CommentView, error) {
	return f.byMaterial[materialID], nil
}

type fakeUsers struct {
	users      []*models.User
	lastSearch string
	lastLimit  int
}

func (f *fakeUsers) Top(_ context.Context, search string, limit int) ([]*models.User, error) {
	f.lastSearch, f.lastLimit = search, limit
	return f.users, nil
}
