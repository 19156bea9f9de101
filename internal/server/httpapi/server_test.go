package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/coursevault/internal/common"
	"github.com/dmitrijs2005/coursevault/internal/logging"
	"github.com/dmitrijs2005/coursevault/internal/server/auth"
	"github.com/dmitrijs2005/coursevault/internal/server/csrf"
	"github.com/dmitrijs2005/coursevault/internal/server/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("httpapi-test-secret")

type fixture struct {
	t        *testing.T
	handler  http.Handler
	guard    *csrf.Guard
	mats     *fakeMaterials
	likes    *fakeLikes
	comments *fakeComments
	users    *fakeUsers
	session  string
	csrf     string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &fixture{
		t:     t,
		guard: csrf.NewGuard(csrf.NewMemoryStore(), logging.Nop{}),
		mats: &fakeMaterials{views: map[int64]*models.MaterialView{
			5: {
				Material:   models.Material{ID: 5, Title: "Notes", CourseID: 10, UserID: 1, FileType: "pdf", SizeKB: 12},
				CourseCode: "ITKA100", Faculty: "IT", OwnerName: "alice",
			},
			6: {Material: models.Material{ID: 6, Title: "Slides", CourseID: 10, UserID: 2}},
		}},
		likes:    &fakeLikes{likedBy: map[int64][]int64{1: {5, 6}}},
		comments: &fakeComments{byMaterial: map[int64][]*models.CommentView{}},
		users:    &fakeUsers{users: []*models.User{{ID: 1, Name: "alice", Points: 20}}},
	}

	srv := NewServer(Options{Address: "127.0.0.1:0", SecretKey: secret, MaxUploadSize: 4096}, logging.Nop{}, Deps{
		Materials: f.mats,
		Likes:     f.likes,
		Comments:  f.comments,
		Users:     f.users,
		Guard:     f.guard,
	})
	f.handler = srv.Handler()

	tok, err := auth.GenerateToken(1, "sess-1", secret, time.Hour)
	require.NoError(t, err)
	f.session = tok
	f.csrf, err = f.guard.Token(context.Background(), "sess-1")
	require.NoError(t, err)
	return f
}

// do sends req, signed in and carrying the CSRF header unless told otherwise.
func (f *fixture) do(req *http.Request, signedIn, withCSRF bool) *httptest.ResponseRecorder {
	if signedIn {
		req.Header.Set("Authorization", "Bearer "+f.session)
	}
	if withCSRF {
		req.Header.Set(common.CSRFHeaderName, f.csrf)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func multipartUpload(t *testing.T, fields map[string]string, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		fw, err := w.CreateFormFile("myfile", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestListMaterials(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/materials?sort=newest&faculty=IT&user=3&course=10&limit=5", nil), false, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ListCriteria{Sort: "newest", Faculty: "IT", OwnerID: 3, CourseID: 10, Limit: 5}, f.mats.lastCrit)

	body := decode(t, rec)
	list := body["materials"].([]any)
	require.Len(t, list, 2)
	first := list[0].(map[string]any)
	assert.Equal(t, "Notes", first["title"])
	assert.Equal(t, "ITKA100", first["course_code"])
	assert.NotContains(t, first, "path")
}

func TestListMaterials_BadInput(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/materials?user=abc", nil), false, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/materials?sort=bogus", nil), false, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetMaterial(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/materials/5", nil), false, false)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "000/005.pdf", body["path"])
	assert.EqualValues(t, 12, body["size_kb"])

	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/materials/99", nil), false, false)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/materials/x", nil), false, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCSRFEndpoint(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/csrf", nil), true, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, f.csrf, decode(t, rec)["token"])
	assert.Equal(t, f.csrf, rec.Header().Get(common.CSRFHeaderName))

	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/csrf", nil), false, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUploadMaterial(t *testing.T) {
	f := newFixture(t)
	fields := map[string]string{"title": "notes", "description": "week 1", "tags": "exam"}

	body, ct := multipartUpload(t, fields, "notes.pdf", []byte("%PDF-1.4"))
	req := httptest.NewRequest(http.MethodPost, "/api/courses/10/materials", body)
	req.Header.Set("Content-Type", ct)
	rec := f.do(req, true, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.EqualValues(t, 77, decode(t, rec)["id"])

	require.Len(t, f.mats.uploads, 1)
	call := f.mats.uploads[0]
	assert.Equal(t, models.Requester{UserID: 1, SessionID: "sess-1"}, call.req)
	assert.Equal(t, models.NewMaterial{CourseID: 10, Title: "notes", Description: "week 1", Tags: "exam"}, call.in)
	assert.Equal(t, "notes.pdf", call.filename)
	assert.Equal(t, "%PDF-1.4", call.body)
}

func TestUploadMaterial_CSRFInFormField(t *testing.T) {
	f := newFixture(t)

	body, ct := multipartUpload(t, map[string]string{"title": "t", common.CSRFFormField: ""}, "a.txt", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/api/courses/10/materials", body)
	req.Header.Set("Content-Type", ct)
	rec := f.do(req, true, false)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	body, ct = multipartUpload(t, map[string]string{"title": "t", common.CSRFFormField: f.csrf}, "a.txt", []byte("x"))
	req = httptest.NewRequest(http.MethodPost, "/api/courses/10/materials", body)
	req.Header.Set("Content-Type", ct)
	rec = f.do(req, true, false)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestUploadMaterial_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"bad type", common.ErrBadFileType, http.StatusBadRequest},
		{"bad archive", common.ErrBadArchiveContents, http.StatusBadRequest},
		{"oversize", common.ErrorOversizeUpload, http.StatusRequestEntityTooLarge},
		{"unconfirmed", common.ErrorPermission, http.StatusForbidden},
		{"no course", common.ErrorNotFound, http.StatusNotFound},
		{"db down", errors.New("db error: boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.mats.uploadErr = tt.err

			body, ct := multipartUpload(t, map[string]string{"title": "t"}, "a.exe", []byte("x"))
			req := httptest.NewRequest(http.MethodPost, "/api/courses/10/materials", body)
			req.Header.Set("Content-Type", ct)
			rec := f.do(req, true, true)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestUploadMaterial_MissingFileAndNoSession(t *testing.T) {
	f := newFixture(t)

	body, ct := multipartUpload(t, map[string]string{"title": "t"}, "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/courses/10/materials", body)
	req.Header.Set("Content-Type", ct)
	rec := f.do(req, true, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, ct = multipartUpload(t, map[string]string{"title": "t"}, "a.txt", []byte("x"))
	req = httptest.NewRequest(http.MethodPost, "/api/courses/10/materials", body)
	req.Header.Set("Content-Type", ct)
	rec = f.do(req, false, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, f.mats.uploads)
}

func TestUploadMaterial_BodyTooLarge(t *testing.T) {
	f := newFixture(t)

	body, ct := multipartUpload(t, map[string]string{"title": "t"}, "big.txt", bytes.Repeat([]byte("a"), 4096+formOverhead+1))
	req := httptest.NewRequest(http.MethodPost, "/api/courses/10/materials", body)
	req.Header.Set("Content-Type", ct)
	rec := f.do(req, true, true)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Empty(t, f.mats.uploads)
}

func TestDeleteMaterial(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodDelete, "/api/materials/5", nil), true, true)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []int64{5}, f.mats.deleted)

	rec = f.do(httptest.NewRequest(http.MethodDelete, "/api/materials/5", nil), true, false)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	f.mats.deleteErr = &common.StorageInconsistencyError{MaterialID: 5, Path: "000/005.pdf", Err: errors.New("eio")}
	rec = f.do(httptest.NewRequest(http.MethodDelete, "/api/materials/5", nil), true, true)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, common.ErrorInternal.Error(), decode(t, rec)["error"])

	f.mats.deleteErr = common.ErrorPermission
	rec = f.do(httptest.NewRequest(http.MethodDelete, "/api/materials/6", nil), true, true)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLikeMaterial(t *testing.T) {
	f := newFixture(t)
	f.likes.res = models.LikeResult{Points: 4, Applied: true}

	rec := f.do(httptest.NewRequest(http.MethodPost, "/api/materials/5/like", nil), true, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"points":4,"applied":true}`, rec.Body.String())

	f.likes.err = common.ErrorPermission
	rec = f.do(httptest.NewRequest(http.MethodPost, "/api/materials/5/like", nil), true, true)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestComments(t *testing.T) {
	f := newFixture(t)

	form := url.Values{"content": {"great notes"}}
	req := httptest.NewRequest(http.MethodPost, "/api/materials/5/comments", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := f.do(req, true, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	list := decode(t, rec)["comments"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, "great notes", list[0].(map[string]any)["content"])

	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/materials/5/comments", nil), false, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["comments"].([]any), 1)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/materials/6/comments", nil), false, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"comments":[]}`, rec.Body.String())

	f.comments.addErr = common.ErrorTooLong
	req = httptest.NewRequest(http.MethodPost, "/api/materials/5/comments", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = f.do(req, true, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCoursesUsersAndLikes(t *testing.T) {
	f := newFixture(t)
	f.mats.courses = []*models.CourseView{{Course: models.Course{ID: 10, Code: "ITKA100", Title: "Intro", Faculty: "IT"}, MaterialCount: 2}}

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/courses?search=itka", nil), false, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"courses":[{"id":10,"code":"ITKA100","title":"Intro","faculty":"IT","material_count":2}]}`, rec.Body.String())

	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/users?search=ali&limit=3", nil), false, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ali", f.users.lastSearch)
	assert.Equal(t, 3, f.users.lastLimit)
	assert.Len(t, decode(t, rec)["users"].([]any), 1)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/users/me/likes", nil), true, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"liked":[5,6]}`, rec.Body.String())

	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/users/me/likes", nil), false, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestInvalidSessionToken(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/api/materials", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec := f.do(req, false, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
