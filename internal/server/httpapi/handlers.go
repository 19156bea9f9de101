package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/coursevault/internal/common"
	"github.com/dmitrijs2005/coursevault/internal/server/models"
	"github.com/gin-gonic/gin"
)

func requester(c *gin.Context) models.Requester {
	req, _ := models.RequesterFromContext(c.Request.Context())
	return req
}

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, &common.ValidationError{Field: "id", Reason: fmt.Sprintf("bad id %q", c.Param("id"))}
	}
	return id, nil
}

// queryInt parses an optional numeric query parameter; absent means 0.
func queryInt(c *gin.Context, name string) (int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0, &common.ValidationError{Field: name, Reason: fmt.Sprintf("bad number %q", raw)}
	}
	return n, nil
}

func (h *handlers) csrfToken(c *gin.Context) {
	token, err := h.Guard.Token(c.Request.Context(), requester(c).SessionID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *handlers) listMaterials(c *gin.Context) {
	crit := models.ListCriteria{
		Search:  c.Query("search"),
		Sort:    c.Query("sort"),
		Faculty: c.Query("faculty"),
	}
	var err error
	if crit.OwnerID, err = queryInt(c, "user"); err != nil {
		h.fail(c, err)
		return
	}
	if crit.CourseID, err = queryInt(c, "course"); err != nil {
		h.fail(c, err)
		return
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		h.fail(c, err)
		return
	}
	crit.Limit = int(limit)

	out := []materialJSON{}
	for v, err := range h.Materials.List(c.Request.Context(), crit) {
		if err != nil {
			h.fail(c, err)
			return
		}
		out = append(out, toMaterialJSON(v, ""))
	}
	c.JSON(http.StatusOK, gin.H{"materials": out})
}

func (h *handlers) getMaterial(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	v, err := h.Materials.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toMaterialJSON(v, h.Materials.FilePath(v)))
}

func (h *handlers) uploadMaterial(c *gin.Context) {
	courseID, err := pathID(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	fh, err := c.FormFile("myfile")
	if err != nil {
		if statusOf(err) == http.StatusRequestEntityTooLarge {
			h.fail(c, err)
			return
		}
		h.fail(c, &common.ValidationError{Field: "myfile", Reason: "is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.fail(c, err)
		return
	}
	defer f.Close()

	in := models.NewMaterial{
		CourseID:    courseID,
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Tags:        c.PostForm("tags"),
	}
	id, err := h.Materials.Upload(c.Request.Context(), requester(c), in, fh.Filename, f)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *handlers) deleteMaterial(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.Materials.Delete(c.Request.Context(), requester(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) likeMaterial(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	res, err := h.Likes.Like(c.Request.Context(), requester(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"points": res.Points, "applied": res.Applied})
}

func (h *handlers) writeComments(c *gin.Context, status int, materialID int64) {
	list, err := h.Comments.List(c.Request.Context(), materialID)
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]commentJSON, 0, len(list))
	for _, cm := range list {
		out = append(out, commentJSON{
			ID:         cm.ID,
			UserID:     cm.UserID,
			AuthorName: cm.AuthorName,
			Content:    cm.Content,
			CreatedAt:  cm.CreatedAt,
		})
	}
	c.JSON(status, gin.H{"comments": out})
}

func (h *handlers) listComments(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.writeComments(c, http.StatusOK, id)
}

func (h *handlers) addComment(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	if _, err := h.Comments.Add(c.Request.Context(), requester(c), id, c.PostForm("content")); err != nil {
		h.fail(c, err)
		return
	}
	h.writeComments(c, http.StatusCreated, id)
}

func (h *handlers) listCourses(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		h.fail(c, err)
		return
	}
	list, err := h.Materials.ListCourses(c.Request.Context(), c.Query("search"), int(limit))
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]courseJSON, 0, len(list))
	for _, cv := range list {
		out = append(out, courseJSON{ID: cv.ID, Code: cv.Code, Title: cv.Title, Faculty: cv.Faculty, MaterialCount: cv.MaterialCount})
	}
	c.JSON(http.StatusOK, gin.H{"courses": out})
}

func (h *handlers) listUsers(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		h.fail(c, err)
		return
	}
	list, err := h.Users.Top(c.Request.Context(), c.Query("search"), int(limit))
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]userJSON, 0, len(list))
	for _, u := range list {
		out = append(out, userJSON{ID: u.ID, Name: u.Name, Points: u.Points, JoinedAt: u.JoinedAt})
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}

func (h *handlers) myLikes(c *gin.Context) {
	ids, err := h.Likes.LikedBy(c.Request.Context(), requester(c).UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": ids})
}
