package services

import (
	"cmp"
	"context"
	"database/sql"
	"iter"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/coursevault/internal/common"
	"github.com/dmitrijs2005/coursevault/internal/dbx"
	"github.com/dmitrijs2005/coursevault/internal/server/models"
	"github.com/dmitrijs2005/coursevault/internal/server/query"
	"github.com/dmitrijs2005/coursevault/internal/server/repositories/comments"
	"github.com/dmitrijs2005/coursevault/internal/server/repositories/courses"
	"github.com/dmitrijs2005/coursevault/internal/server/repositories/likes"
	"github.com/dmitrijs2005/coursevault/internal/server/repositories/materials"
	"github.com/dmitrijs2005/coursevault/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// world is an in-memory stand-in for the database shared by all fake
// repositories. Errors can be injected per operation name.
type world struct {
	mu        sync.Mutex
	users     map[int64]*models.User
	courses   map[int64]*models.Course
	materials map[int64]*models.Material
	likes     map[[2]int64]bool
	comments  []*models.Comment
	nextID    int64
	fail      map[string]error
	lastSpec  query.Spec
}

func newWorld() *world {
	return &world{
		users:     map[int64]*models.User{},
		courses:   map[int64]*models.Course{},
		materials: map[int64]*models.Material{},
		likes:     map[[2]int64]bool{},
		nextID:    1000,
		fail:      map[string]error{},
	}
}

func (w *world) addUser(id int64, name string, privilege int, points int64) {
	w.users[id] = &models.User{ID: id, Name: name, Privilege: privilege, Points: points}
}

func (w *world) addCourse(id int64, code, faculty string) {
	w.courses[id] = &models.Course{ID: id, Code: code, Title: code + " title", Faculty: faculty}
}

func (w *world) addMaterial(m models.Material) {
	mm := m
	w.materials[m.ID] = &mm
}

func (w *world) err(op string) error { return w.fail[op] }

func (w *world) view(m *models.Material) *models.MaterialView {
	v := &models.MaterialView{Material: *m}
	if c, ok := w.courses[m.CourseID]; ok {
		v.CourseCode, v.CourseTitle, v.Faculty = c.Code, c.Title, c.Faculty
	}
	if u, ok := w.users[m.UserID]; ok {
		v.OwnerName, v.OwnerPoints = u.Name, u.Points
	}
	return v
}

func seq[T any](items []T) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for _, it := range items {
			if !yield(it, nil) {
				return
			}
		}
	}
}

// --- users ---

type fakeUsers struct {
	users.Repository
	w *world
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	if err := f.w.err("users.GetByID"); err != nil {
		return nil, err
	}
	u, ok := f.w.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) AddPoints(_ context.Context, id int64, delta int64) (int64, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	if err := f.w.err("users.AddPoints"); err != nil {
		return 0, err
	}
	u, ok := f.w.users[id]
	if !ok {
		return 0, common.ErrorNotFound
	}
	u.Points += delta
	return u.Points, nil
}

func (f *fakeUsers) List(_ context.Context, spec query.Spec) iter.Seq2[*models.User, error] {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	f.w.lastSpec = spec
	var out []*models.User
	for _, u := range f.w.users {
		out = append(out, u)
	}
	slices.SortFunc(out, func(a, b *models.User) int {
		return cmp.Or(cmp.Compare(b.Points, a.Points), cmp.Compare(a.ID, b.ID))
	})
	return seq(out)
}

// --- courses ---

type fakeCourses struct {
	courses.Repository
	w *world
}

func (f *fakeCourses) Get(_ context.Context, id int64) (*models.Course, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	c, ok := f.w.courses[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return c, nil
}

func (f *fakeCourses) List(_ context.Context, spec query.Spec) iter.Seq2[*models.CourseView, error] {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	f.w.lastSpec = spec
	var out []*models.CourseView
	for _, c := range f.w.courses {
		v := &models.CourseView{Course: *c}
		for _, m := range f.w.materials {
			if m.CourseID == c.ID {
				v.MaterialCount++
			}
		}
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b *models.CourseView) int { return strings.Compare(a.Code, b.Code) })
	return seq(out)
}

// --- materials ---

type fakeMaterials struct {
	materials.Repository
	w *world
}

func (f *fakeMaterials) Create(_ context.Context, m *models.Material) (*models.Material, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	if err := f.w.err("materials.Create"); err != nil {
		return nil, err
	}
	f.w.nextID++
	m.ID = f.w.nextID
	m.CreatedAt = time.Now()
	cp := *m
	f.w.materials[m.ID] = &cp
	return m, nil
}

func (f *fakeMaterials) SetFile(_ context.Context, id int64, fileType string, sizeKB int64) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	if err := f.w.err("materials.SetFile"); err != nil {
		return err
	}
	m, ok := f.w.materials[id]
	if !ok {
		return common.ErrorNotFound
	}
	m.FileType, m.SizeKB = fileType, sizeKB
	return nil
}

func (f *fakeMaterials) GetForUpdate(_ context.Context, id int64) (*models.Material, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	m, ok := f.w.materials[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMaterials) Get(_ context.Context, id int64) (*models.MaterialView, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	m, ok := f.w.materials[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return f.w.view(m), nil
}

func (f *fakeMaterials) List(_ context.Context, spec query.Spec) iter.Seq2[*models.MaterialView, error] {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	f.w.lastSpec = spec
	var out []*models.MaterialView
	for _, m := range f.w.materials {
		out = append(out, f.w.view(m))
	}
	slices.SortFunc(out, func(a, b *models.MaterialView) int { return cmp.Compare(a.ID, b.ID) })
	return seq(out)
}

func (f *fakeMaterials) AddPoints(_ context.Context, id int64, delta int64) (int64, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	m, ok := f.w.materials[id]
	if !ok {
		return 0, common.ErrorNotFound
	}
	m.Points += delta
	return m.Points, nil
}

func (f *fakeMaterials) IncrementCommentCount(_ context.Context, id int64) (int64, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	m, ok := f.w.materials[id]
	if !ok {
		return 0, common.ErrorNotFound
	}
	m.CommentCount++
	return m.CommentCount, nil
}

func (f *fakeMaterials) Delete(_ context.Context, id int64) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	if err := f.w.err("materials.Delete"); err != nil {
		return err
	}
	if _, ok := f.w.materials[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.w.materials, id)
	return nil
}

// --- likes ---

type fakeLikes struct {
	likes.Repository
	w *world
}

func (f *fakeLikes) Add(_ context.Context, materialID, userID int64) (bool, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	if err := f.w.err("likes.Add"); err != nil {
		return false, err
	}
	key := [2]int64{materialID, userID}
	if f.w.likes[key] {
		return false, nil
	}
	f.w.likes[key] = true
	return true, nil
}

func (f *fakeLikes) DeleteByMaterial(_ context.Context, materialID int64) (int64, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	var n int64
	for k := range f.w.likes {
		if k[0] == materialID {
			delete(f.w.likes, k)
			n++
		}
	}
	return n, nil
}

func (f *fakeLikes) ListByUser(_ context.Context, userID int64) ([]int64, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	ids := []int64{}
	for k := range f.w.likes {
		if k[1] == userID {
			ids = append(ids, k[0])
		}
	}
	slices.Sort(ids)
	return ids, nil
}

// --- comments ---

type fakeComments struct {
	comments.Repository
	w *world
}

func (f *fakeComments) Create(_ context.Context, c *models.Comment) (*models.Comment, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	if err := f.w.err("comments.Create"); err != nil {
		return nil, err
	}
	f.w.nextID++
	c.ID = f.w.nextID
	cp := *c
	f.w.comments = append(f.w.comments, &cp)
	return c, nil
}

func (f *fakeComments) DeleteByMaterial(_ context.Context, materialID int64) (int64, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	kept := f.w.comments[:0]
	var n int64
	for _, c := range f.w.comments {
		if c.MaterialID == materialID {
			n++
			continue
		}
		kept = append(kept, c)
	}
	f.w.comments = kept
	return n, nil
}

func (f *fakeComments) List(_ context.Context, materialID int64, limit uint64) iter.Seq2[*models.CommentView, error] {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	var out []*models.CommentView
	for _, c := range f.w.comments {
		if c.MaterialID != materialID || uint64(len(out)) >= limit {
			continue
		}
		v := &models.CommentView{Comment: *c}
		if u, ok := f.w.users[c.UserID]; ok {
			v.AuthorName = u.Name
		}
		out = append(out, v)
	}
	return seq(out)
}

// --- manager ---

type fakeRepoManager struct {
	w *world
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return &fakeUsers{w: m.w} }
func (m *fakeRepoManager) Courses(dbx.DBTX) courses.Repository          { return &fakeCourses{w: m.w} }
func (m *fakeRepoManager) Materials(dbx.DBTX) materials.Repository      { return &fakeMaterials{w: m.w} }
func (m *fakeRepoManager) Likes(dbx.DBTX) likes.Repository              { return &fakeLikes{w: m.w} }
func (m *fakeRepoManager) Comments(dbx.DBTX) comments.Repository        { return &fakeComments{w: m.w} }
